package hcl

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/icebridge/internal/config"
	"github.com/vk/icebridge/internal/schema"
)

// translateStack converts the HCL-specific stack schema into the agnostic model.
func translateStack(s *schema.Stack) *config.Stack {
	return &config.Stack{
		Project:     s.Project,
		Environment: s.Environment,
		Token:       s.Token,
		Region:      s.Region,
	}
}

// translateResource converts the HCL-specific resource schema into the
// agnostic model. Both views of the arguments block are retained: the
// attribute expression map feeds dependency analysis, the raw body feeds
// typed decoding at apply time.
func (l *Loader) translateResource(s *schema.Resource) *config.Resource {
	r := &config.Resource{
		Type:      s.Type,
		Name:      s.Name,
		DependsOn: s.DependsOn,
	}
	if s.Arguments != nil {
		r.ArgsBody = s.Arguments.Body
		r.Arguments = extractBodyAttributes(s.Arguments.Body)
	}
	return r
}

// extractBodyAttributes flattens an arguments body into a name -> expression map.
func extractBodyAttributes(body hcl.Body) map[string]hcl.Expression {
	if body == nil {
		return nil
	}
	attrs, _ := body.JustAttributes()
	if attrs == nil {
		return nil
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap
}
