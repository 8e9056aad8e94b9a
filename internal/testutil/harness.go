package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/icebridge/internal/app"
	"github.com/vk/icebridge/internal/hcl"
	"github.com/vk/icebridge/internal/registry"
	"github.com/vk/icebridge/internal/state"
)

// Harness wires a stack definition, an in-memory state store, and fake
// provider modules into a runnable App for integration tests.
type Harness struct {
	App   *app.App
	Store *state.SQLiteStore
	Log   *SafeBuffer
	// Err holds the startup error if App construction panicked.
	Err error

	config *app.Config
}

// NewHarness writes the given HCL files to a temp dir and constructs the app
// against an in-memory state store. Construction panics become Harness.Err so
// tests can assert on startup failures too.
func NewHarness(t *testing.T, files map[string]string, modules ...registry.Module) *Harness {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	store, err := state.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logBuffer := &SafeBuffer{}
	config, err := app.NewConfig(app.Config{
		Verb:        app.VerbPlan,
		StackPath:   tmpDir,
		StatePath:   ":memory:",
		LogFormat:   "text",
		LogLevel:    "debug",
		WorkerCount: 4,
	})
	require.NoError(t, err)

	h := &Harness{Store: store, Log: logBuffer, config: config}
	func() {
		defer func() {
			if r := recover(); r != nil {
				h.Err = fmt.Errorf("startup failed: %v", r)
			}
		}()
		h.App = app.NewApp(logBuffer, config, hcl.NewLoader(), store, modules...)
	}()
	return h
}

// Run dispatches one verb against the app.
func (h *Harness) Run(verb string) error {
	cfg := *h.config
	cfg.Verb = verb
	return h.App.Run(context.Background(), &cfg)
}
