package registry

import (
	"fmt"
	"log/slog"
)

// Module is the interface a provider package implements to contribute its
// resource types to a registry.
type Module interface {
	Register(r *Registry)
}

// RegisteredResource holds the compiled Go parts of a resource type's lifecycle.
type RegisteredResource struct {
	// NewInput returns a pointer to the typed argument struct the engine
	// decodes a resource's arguments block into.
	NewInput func() any

	// Outputs names the attributes the Create handler's result object
	// carries. Attribute references in stack files are validated against
	// this list at graph build time.
	Outputs []string

	// CreateFn has signature func(ctx context.Context, input *T) (cty.Value, error).
	// The returned object value must contain exactly the declared outputs.
	CreateFn any

	// DestroyFn has signature func(ctx context.Context, prior cty.Value) error,
	// where prior is the output object recorded at create time.
	DestroyFn any

	// TrustPending marks types whose create leaves a deliberately incomplete
	// trust relationship that a later sync pass must close.
	TrustPending bool

	// SyncTrustFn, when set, has signature
	// func(ctx context.Context, prior cty.Value, principalARN, externalID string) (cty.Value, error)
	// and patches the incomplete trust relationship in place.
	SyncTrustFn any
}

// Registry holds all registered resource types for a single application instance.
type Registry struct {
	Types map[string]*RegisteredResource
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{Types: make(map[string]*RegisteredResource)}
}

// RegisterType registers the lifecycle handlers for a resource type.
func (r *Registry) RegisterType(name string, res *RegisteredResource) {
	if _, exists := r.Types[name]; exists {
		panic(fmt.Sprintf("resource type '%s' already registered", name))
	}
	slog.Debug("Registering resource type.", "type", name)
	r.Types[name] = res
}
