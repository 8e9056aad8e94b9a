package engine

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// buildEvalContext creates the HCL evaluation context for decoding resource
// arguments and output values. Only recorded outputs appear under `resource`;
// an expression that reaches for an attribute of a not-yet-created resource
// fails to evaluate rather than guessing a value.
func (e *Engine) buildEvalContext(known map[string]cty.Value) *hcl.EvalContext {
	byType := make(map[string]map[string]cty.Value)

	for _, node := range e.graph.Nodes {
		val, ok := known[node.ID]
		if !ok {
			continue
		}
		resType := node.Resource.Type
		if _, ok := byType[resType]; !ok {
			byType[resType] = make(map[string]cty.Value)
		}
		byType[resType][node.Resource.Name] = val
	}

	resourceVal := make(map[string]cty.Value, len(byType))
	for resType, instances := range byType {
		resourceVal[resType] = cty.ObjectVal(instances)
	}

	vars := map[string]cty.Value{
		"stack": e.stackValue(),
	}
	if len(resourceVal) > 0 {
		vars["resource"] = cty.ObjectVal(resourceVal)
	}
	return &hcl.EvalContext{Variables: vars}
}

// stackValue exposes the stack identity and every derived name to stack
// expressions. Names are computed here, never written literally in HCL, so a
// definition cannot drift from the naming scheme.
func (e *Engine) stackValue() cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"project":             cty.StringVal(e.model.Stack.Project),
		"environment":         cty.StringVal(e.model.Stack.Environment),
		"token":               cty.StringVal(e.model.Stack.Token),
		"region":              cty.StringVal(e.model.Stack.Region),
		"bucket_name":         cty.StringVal(e.names.Bucket),
		"role_name":           cty.StringVal(e.names.RoleName),
		"policy_name":         cty.StringVal(e.names.PolicyName),
		"warehouse_name":      cty.StringVal(e.names.Warehouse),
		"database_name":       cty.StringVal(e.names.Database),
		"schema_name":         cty.StringVal(e.names.Schema),
		"integration_name":    cty.StringVal(e.names.Integration),
		"stage_name":          cty.StringVal(e.names.Stage),
		"table_name":          cty.StringVal(e.names.Table),
		"csv_format_name":     cty.StringVal(e.names.FormatCSV),
		"parquet_format_name": cty.StringVal(e.names.FormatParquet),
	})
}
