package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/config"
	"github.com/vk/icebridge/internal/ctxlog"
)

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

// modelUsing returns a minimal model with one resource per type name.
func modelUsing(types ...string) *config.Model {
	m := &config.Model{Stack: &config.Stack{Project: "acme", Environment: "dev"}}
	for _, typeName := range types {
		m.Resources = append(m.Resources, &config.Resource{Type: typeName, Name: "a"})
	}
	return m
}

type thingInput struct {
	Name string `hcl:"name"`
}

func goodCreate(ctx context.Context, input *thingInput) (cty.Value, error) {
	return cty.EmptyObjectVal, nil
}

func goodDestroy(ctx context.Context, prior cty.Value) error {
	return nil
}

func goodSync(ctx context.Context, prior cty.Value, principalARN, externalID string) (cty.Value, error) {
	return prior, nil
}

// conforming returns a fully valid registration for tests to corrupt.
func conforming() *RegisteredResource {
	return &RegisteredResource{
		NewInput:  func() any { return new(thingInput) },
		Outputs:   []string{"id"},
		CreateFn:  goodCreate,
		DestroyFn: goodDestroy,
	}
}

func TestValidate_AcceptsConformingHandlers(t *testing.T) {
	// Arrange
	r := New()
	res := conforming()
	res.TrustPending = true
	res.SyncTrustFn = goodSync
	r.RegisterType("thing", res)

	// Act & Assert
	require.NoError(t, r.Validate(testCtx(), modelUsing("thing")))
}

func TestValidate_RejectsUnregisteredType(t *testing.T) {
	r := New()
	r.RegisterType("thing", conforming())

	err := r.Validate(testCtx(), modelUsing("thing", "gadget"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource 'resource.gadget.a' uses unregistered type 'gadget'")
}

func TestValidate_RejectsMissingHandlers(t *testing.T) {
	r := New()
	res := conforming()
	res.CreateFn = nil
	res.DestroyFn = nil
	r.RegisterType("thing", res)

	err := r.Validate(testCtx(), modelUsing("thing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no create handler")
	assert.Contains(t, err.Error(), "has no destroy handler")
}

func TestValidate_RejectsCreateHandlerWithWrongArity(t *testing.T) {
	r := New()
	res := conforming()
	res.CreateFn = func(ctx context.Context) (cty.Value, error) {
		return cty.EmptyObjectVal, nil
	}
	r.RegisterType("thing", res)

	err := r.Validate(testCtx(), modelUsing("thing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create handler takes 1 parameters, want 2")
}

func TestValidate_RejectsCreateHandlerWithForeignInputType(t *testing.T) {
	type otherInput struct {
		Name string `hcl:"name"`
	}

	r := New()
	res := conforming()
	res.CreateFn = func(ctx context.Context, input *otherInput) (cty.Value, error) {
		return cty.EmptyObjectVal, nil
	}
	r.RegisterType("thing", res)

	err := r.Validate(testCtx(), modelUsing("thing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create handler parameter 1")
}

func TestValidate_RejectsCreateHandlerWithWrongResults(t *testing.T) {
	r := New()
	res := conforming()
	res.CreateFn = func(ctx context.Context, input *thingInput) error { return nil }
	r.RegisterType("thing", res)

	err := r.Validate(testCtx(), modelUsing("thing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create handler returns 1 values, want 2")
}

func TestValidate_RejectsNonFunctionHandler(t *testing.T) {
	r := New()
	res := conforming()
	res.DestroyFn = "not a function"
	r.RegisterType("thing", res)

	err := r.Validate(testCtx(), modelUsing("thing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "destroy handler is not a function")
}

func TestValidate_RejectsMalformedSyncHandler(t *testing.T) {
	r := New()
	res := conforming()
	res.TrustPending = true
	res.SyncTrustFn = func(ctx context.Context, prior cty.Value) (cty.Value, error) {
		return prior, nil
	}
	r.RegisterType("thing", res)

	err := r.Validate(testCtx(), modelUsing("thing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync handler takes 2 parameters, want 4")
}

func TestValidate_RejectsInputConstructorNotReturningStructPointer(t *testing.T) {
	r := New()
	res := conforming()
	res.NewInput = func() any { return "nope" }
	r.RegisterType("thing", res)

	err := r.Validate(testCtx(), modelUsing("thing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "input constructor must return a pointer to a struct")
}
