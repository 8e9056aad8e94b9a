package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) a state database at path and runs pending
// migrations. Use ":memory:" for an in-memory store.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Meta returns the persisted stack identity, or nil if none is recorded.
func (s *SQLiteStore) Meta() (*Meta, error) {
	row := s.db.QueryRow(`SELECT project, environment, token, created_at FROM stack_meta WHERE id = 1`)
	var m Meta
	err := row.Scan(&m.Project, &m.Environment, &m.Token, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stack meta: %w", err)
	}
	return &m, nil
}

// SetMeta records the stack identity once.
func (s *SQLiteStore) SetMeta(project, environment, token string) error {
	existing, err := s.Meta()
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Project != project || existing.Environment != environment {
			return fmt.Errorf("state file belongs to stack %s/%s, not %s/%s",
				existing.Project, existing.Environment, project, environment)
		}
		return nil
	}
	_, err = s.db.Exec(
		`INSERT INTO stack_meta (id, project, environment, token, created_at) VALUES (1, ?, ?, ?, ?)`,
		project, environment, token, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record stack meta: %w", err)
	}
	return nil
}

// Upsert writes or replaces a resource record.
func (s *SQLiteStore) Upsert(rec *Record) error {
	outputsJSON, err := ctyjson.Marshal(rec.Outputs, cty.DynamicPseudoType)
	if err != nil {
		return fmt.Errorf("failed to encode outputs for '%s': %w", rec.Address, err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(`
		INSERT INTO resources (address, type, args_hash, outputs_json, trust_pending, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			type = excluded.type,
			args_hash = excluded.args_hash,
			outputs_json = excluded.outputs_json,
			trust_pending = excluded.trust_pending,
			updated_at = excluded.updated_at`,
		rec.Address, rec.Type, rec.ArgsHash, string(outputsJSON), boolToInt(rec.TrustPending), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert resource '%s': %w", rec.Address, err)
	}
	return nil
}

// Get returns the record for an address, or nil if none exists.
func (s *SQLiteStore) Get(address string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT address, type, args_hash, outputs_json, trust_pending, created_at, updated_at
		FROM resources WHERE address = ?`, address)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read resource '%s': %w", address, err)
	}
	return rec, nil
}

// List returns all records in reverse insertion order, so dependents created
// later come first. Teardown of records no longer present in the definition
// walks this order.
func (s *SQLiteStore) List() ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT address, type, args_hash, outputs_json, trust_pending, created_at, updated_at
		FROM resources ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes a record.
func (s *SQLiteStore) Delete(address string) error {
	if _, err := s.db.Exec(`DELETE FROM resources WHERE address = ?`, address); err != nil {
		return fmt.Errorf("failed to delete resource '%s': %w", address, err)
	}
	return nil
}

// SetTrustPending flips the trust-pending flag on a record.
func (s *SQLiteStore) SetTrustPending(address string, pending bool) error {
	res, err := s.db.Exec(
		`UPDATE resources SET trust_pending = ?, updated_at = ? WHERE address = ?`,
		boolToInt(pending), time.Now().UTC(), address,
	)
	if err != nil {
		return fmt.Errorf("failed to update trust flag for '%s': %w", address, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("no such resource in state: '%s'", address)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var outputsJSON string
	var pending int
	if err := row.Scan(&rec.Address, &rec.Type, &rec.ArgsHash, &outputsJSON, &pending, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.TrustPending = pending != 0

	// Outputs are stored dynamically typed, so the payload carries its own
	// cty type alongside the value.
	var err error
	rec.Outputs, err = ctyjson.Unmarshal([]byte(outputsJSON), cty.DynamicPseudoType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode outputs for '%s': %w", rec.Address, err)
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLiteStore)(nil)
