package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vk/icebridge/internal/config"
	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/dag"
	"github.com/vk/icebridge/internal/engine"
	"github.com/vk/icebridge/internal/registry"
	"github.com/vk/icebridge/internal/state"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	store    state.Store
	engine   *engine.Engine
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, registry, state
// store, and engine. A nil store opens the SQLite database named by the
// config; tests pass a store directly.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, store state.Store, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.StackPath)
	if err != nil {
		// A failure to load the stack declaration is a fatal startup error.
		panic(fmt.Errorf("failed to load stack configuration: %w", err))
	}
	logger.Debug("Stack configuration loaded.", "resources", len(model.Resources))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All provider modules registered.", "count", len(modules))

	if err := reg.Validate(ctx, model); err != nil {
		// A resource type with no registered handler is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	if store == nil {
		store, err = state.Open(appConfig.StatePath)
		if err != nil {
			panic(fmt.Errorf("failed to open state store: %w", err))
		}
	}

	if err := resolveToken(model, store); err != nil {
		panic(err)
	}
	logger.Debug("Stack identity resolved.", "project", model.Stack.Project, "environment", model.Stack.Environment, "token", model.Stack.Token)

	graph, err := dag.Build(ctx, model, reg)
	if err != nil {
		panic(fmt.Errorf("failed to build dependency graph: %w", err))
	}
	logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		store:    store,
		engine:   engine.New(graph, model, reg, store, appConfig.WorkerCount),
	}
}

// resolveToken fixes the stack's uniqueness token. The first run generates
// one and persists it; later runs reuse the persisted token so generated
// names stay stable across invocations.
func resolveToken(model *config.Model, store state.Store) error {
	meta, err := store.Meta()
	if err != nil {
		return fmt.Errorf("failed to read stack metadata: %w", err)
	}
	if meta != nil {
		if meta.Project != model.Stack.Project || meta.Environment != model.Stack.Environment {
			return fmt.Errorf("state belongs to stack '%s/%s', not '%s/%s'",
				meta.Project, meta.Environment, model.Stack.Project, model.Stack.Environment)
		}
		if model.Stack.Token != "" && model.Stack.Token != meta.Token {
			return fmt.Errorf("declared token %q conflicts with persisted token %q", model.Stack.Token, meta.Token)
		}
		model.Stack.Token = meta.Token
		return nil
	}

	if model.Stack.Token == "" {
		model.Stack.Token = strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	return store.SetMeta(model.Stack.Project, model.Stack.Environment, model.Stack.Token)
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Close releases the state store.
func (a *App) Close() error {
	return a.store.Close()
}
