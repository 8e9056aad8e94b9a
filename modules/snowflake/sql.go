package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/vk/icebridge/internal/ctxlog"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// quoteIdent validates and double-quotes a Snowflake identifier. Only
// unquoted-style identifiers are accepted so resource names can never
// smuggle DDL fragments.
func quoteIdent(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid snowflake identifier %q", name)
	}
	return `"` + strings.ToUpper(name) + `"`, nil
}

// quoteQualified quotes each part of a dotted object path.
func quoteQualified(parts ...string) (string, error) {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		q, err := quoteIdent(p)
		if err != nil {
			return "", err
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, "."), nil
}

// quoteLiteral renders a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// execDDL runs one DDL statement against the shared connection.
func execDDL(ctx context.Context, stmt string) error {
	logger := ctxlog.FromContext(ctx)
	c, err := conn(ctx)
	if err != nil {
		return err
	}
	logger.Debug("Executing DDL", "statement", stmt)
	if _, err := c.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ddl failed: %w", err)
	}
	return nil
}

// queryRows runs a metadata query and returns its rows.
func queryRows(ctx context.Context, stmt string) (*sql.Rows, error) {
	c, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}
