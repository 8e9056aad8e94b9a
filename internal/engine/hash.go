package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/icebridge/internal/config"
)

// resolveArgs evaluates every argument expression of a resource against the
// given context, producing the fully bound argument object.
func resolveArgs(res *config.Resource, evalCtx *hcl.EvalContext) (cty.Value, error) {
	if len(res.Arguments) == 0 {
		return cty.EmptyObjectVal, nil
	}

	names := make([]string, 0, len(res.Arguments))
	for name := range res.Arguments {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make(map[string]cty.Value, len(names))
	for _, name := range names {
		val, diags := res.Arguments[name].Value(evalCtx)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("failed to evaluate argument '%s' of '%s': %w", name, res.Address(), diags)
		}
		attrs[name] = val
	}
	return cty.ObjectVal(attrs), nil
}

// hashArgs produces the stable fingerprint of a resolved argument object
// that plan diffs compare against applied state.
func hashArgs(args cty.Value) (string, error) {
	raw, err := ctyjson.Marshal(args, cty.DynamicPseudoType)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments for hashing: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
