package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/icebridge/internal/config"
	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/schema"
)

// Loader implements config.Loader for HCL stack files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads all .hcl files under path, decodes them into the HCL schema,
// and translates the result into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findStackFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl stack files found under '%s'", path)
	}
	logger.Debug("Discovered stack files.", "count", len(files), "path", path)

	model := &config.Model{}
	for _, file := range files {
		hclFile, diags := l.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse '%s': %w", file, diags)
		}

		var parsed schema.StackConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode '%s': %w", file, diags)
		}

		if parsed.Stack != nil {
			if model.Stack != nil {
				return nil, fmt.Errorf("duplicate stack block in '%s': a stack definition may declare exactly one", file)
			}
			model.Stack = translateStack(parsed.Stack)
		}
		for _, r := range parsed.Resources {
			model.Resources = append(model.Resources, l.translateResource(r))
		}
		for _, o := range parsed.Outputs {
			model.Outputs = append(model.Outputs, &config.Output{Name: o.Name, Value: o.Value})
		}
	}

	if model.Stack == nil {
		return nil, fmt.Errorf("no stack block found under '%s'", path)
	}
	if model.Stack.Project == "" || model.Stack.Environment == "" {
		return nil, fmt.Errorf("stack block must set both project and environment")
	}

	logger.Debug("Stack definition loaded.",
		"project", model.Stack.Project,
		"environment", model.Stack.Environment,
		"resources", len(model.Resources),
		"outputs", len(model.Outputs),
	)
	return model, nil
}

// findStackFiles resolves path to a sorted list of .hcl files. A file path is
// returned as-is; a directory is scanned non-recursively.
func findStackFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stack path '%s': %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stack directory '%s': %w", path, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".hcl") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

var _ config.Loader = (*Loader)(nil)
