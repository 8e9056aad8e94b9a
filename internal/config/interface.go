package config

import (
	"context"
)

// Loader is the interface for a format-specific stack definition loader.
type Loader interface {
	// Load reads stack definition files from the given path (a single file
	// or a directory), translates them into the format-agnostic model, and
	// validates that exactly one stack block is present.
	Load(ctx context.Context, path string) (*Model, error)
}
