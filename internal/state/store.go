// Package state persists the applied state of a stack: one record per
// created resource, holding the argument hash the plan diff compares against
// and the provider-assigned output attributes later resources bind to.
package state

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Meta is the persisted stack identity. The token is recorded on first apply
// so that generated names stay stable across re-applies.
type Meta struct {
	Project     string
	Environment string
	Token       string
	CreatedAt   time.Time
}

// Record is the applied state of a single resource.
type Record struct {
	Address      string
	Type         string
	ArgsHash     string
	Outputs      cty.Value
	TrustPending bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store is the applied-state persistence contract.
type Store interface {
	// Meta returns the persisted stack identity, or nil if none is recorded.
	Meta() (*Meta, error)
	// SetMeta records the stack identity. Recording a different identity over
	// an existing one is an error; state files are single-stack.
	SetMeta(project, environment, token string) error

	Upsert(rec *Record) error
	Get(address string) (*Record, error)
	List() ([]*Record, error)
	Delete(address string) error
	SetTrustPending(address string, pending bool) error

	Close() error
}
