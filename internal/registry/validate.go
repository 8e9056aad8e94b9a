package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/config"
	"github.com/vk/icebridge/internal/ctxlog"
)

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	ctyValueType = reflect.TypeOf(cty.Value{})
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// Validate performs a strict parity check between the stack definition and
// the compiled handlers. It checks both that every resource type used is
// registered and that each registered handler's signature conforms to the
// lifecycle contract, so a mis-registered handler is a startup error rather
// than a reflection panic inside an apply worker.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	checked := make(map[string]struct{})
	for _, res := range model.Resources {
		def, ok := r.Types[res.Type]
		if !ok {
			errs = append(errs, fmt.Sprintf("resource '%s' uses unregistered type '%s'", res.Address(), res.Type))
			continue
		}
		if _, done := checked[res.Type]; done {
			continue
		}
		checked[res.Type] = struct{}{}
		errs = append(errs, validateType(res.Type, def)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "types_checked", len(checked))
	return nil
}

// validateType checks one registered type's handler set for completeness and
// signature conformance.
func validateType(typeName string, def *RegisteredResource) []string {
	var errs []string

	if def.NewInput == nil {
		errs = append(errs, fmt.Sprintf("resource type '%s' has no input constructor", typeName))
	}
	if def.CreateFn == nil {
		errs = append(errs, fmt.Sprintf("resource type '%s' has no create handler", typeName))
	}
	if def.DestroyFn == nil {
		errs = append(errs, fmt.Sprintf("resource type '%s' has no destroy handler", typeName))
	}
	if def.TrustPending && def.SyncTrustFn == nil {
		errs = append(errs, fmt.Sprintf("resource type '%s' is trust-pending but has no sync handler", typeName))
	}
	if len(errs) > 0 {
		return errs
	}

	inputType := reflect.TypeOf(def.NewInput())
	if inputType == nil || inputType.Kind() != reflect.Ptr || inputType.Elem().Kind() != reflect.Struct {
		return []string{fmt.Sprintf("resource type '%s': input constructor must return a pointer to a struct, got %v", typeName, inputType)}
	}

	if err := checkSignature(def.CreateFn,
		[]reflect.Type{contextType, inputType},
		[]reflect.Type{ctyValueType, errorType},
	); err != nil {
		errs = append(errs, fmt.Sprintf("resource type '%s': create handler %v", typeName, err))
	}
	if err := checkSignature(def.DestroyFn,
		[]reflect.Type{contextType, ctyValueType},
		[]reflect.Type{errorType},
	); err != nil {
		errs = append(errs, fmt.Sprintf("resource type '%s': destroy handler %v", typeName, err))
	}
	if def.SyncTrustFn != nil {
		if err := checkSignature(def.SyncTrustFn,
			[]reflect.Type{contextType, ctyValueType, reflect.TypeOf(""), reflect.TypeOf("")},
			[]reflect.Type{ctyValueType, errorType},
		); err != nil {
			errs = append(errs, fmt.Sprintf("resource type '%s': sync handler %v", typeName, err))
		}
	}
	return errs
}

// checkSignature verifies that fn is a func with exactly the given parameter
// and result types.
func checkSignature(fn any, in, out []reflect.Type) error {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("is not a function, got %v", t)
	}
	if t.NumIn() != len(in) {
		return fmt.Errorf("takes %d parameters, want %d", t.NumIn(), len(in))
	}
	for i, want := range in {
		if t.In(i) != want {
			return fmt.Errorf("parameter %d is %v, want %v", i, t.In(i), want)
		}
	}
	if t.NumOut() != len(out) {
		return fmt.Errorf("returns %d values, want %d", t.NumOut(), len(out))
	}
	for i, want := range out {
		if t.Out(i) != want {
			return fmt.Errorf("result %d is %v, want %v", i, t.Out(i), want)
		}
	}
	return nil
}
