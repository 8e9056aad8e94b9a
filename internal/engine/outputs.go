package engine

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/icebridge/internal/ctxlog"
)

// OutputValue is one resolved entry of the stack's output surface.
type OutputValue struct {
	Name  string
	Value string
}

// Outputs evaluates the stack's output blocks against applied state and
// returns them in declaration order. The names and values are the stable
// handoff surface for follow-up SQL; an output that references an unapplied
// resource is an error, not a guess.
func (e *Engine) Outputs(ctx context.Context) ([]OutputValue, []string, error) {
	logger := ctxlog.FromContext(ctx)

	records, err := e.store.List()
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]cty.Value, len(records))
	var trustPending []string
	for _, rec := range records {
		known[rec.Address] = rec.Outputs
		if rec.TrustPending {
			trustPending = append(trustPending, rec.Address)
		}
	}
	evalCtx := e.buildEvalContext(known)

	values := make([]OutputValue, 0, len(e.model.Outputs))
	for _, out := range e.model.Outputs {
		val, diags := out.Value.Value(evalCtx)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to resolve output '%s' (is the stack applied?): %w", out.Name, diags)
		}
		strVal, err := convert.Convert(val, cty.String)
		if err != nil || strVal.IsNull() {
			return nil, nil, fmt.Errorf("output '%s' does not resolve to a string", out.Name)
		}
		values = append(values, OutputValue{Name: out.Name, Value: strVal.AsString()})
	}

	logger.Debug("Outputs resolved.", "count", len(values), "trust_pending", len(trustPending))
	return values, trustPending, nil
}

// CopyCommand renders the load command template against the resolved output
// surface. The referenced identifiers are exactly the stack's outputs, so the
// template stays valid as long as the outputs do. Returns "" when the stack
// does not export the identifiers the template needs.
func CopyCommand(values []OutputValue) string {
	byName := make(map[string]string, len(values))
	for _, v := range values {
		byName[v.Name] = v.Value
	}
	for _, need := range []string{"database_name", "schema_name", "table_name", "stage_name", "csv_format_name"} {
		if byName[need] == "" {
			return ""
		}
	}
	qualified := func(object string) string {
		return fmt.Sprintf("%s.%s.%s", byName["database_name"], byName["schema_name"], object)
	}
	return fmt.Sprintf(
		"COPY INTO %s\n  FROM @%s\n  FILE_FORMAT = (FORMAT_NAME = %s)\n  MATCH_BY_COLUMN_NAME = CASE_INSENSITIVE;",
		qualified(byName["table_name"]),
		qualified(byName["stage_name"]),
		qualified(byName["csv_format_name"]),
	)
}
