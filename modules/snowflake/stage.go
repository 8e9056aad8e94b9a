package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// StageInput configures an external stage backed by a storage integration.
type StageInput struct {
	Name        string `hcl:"name"`
	Database    string `hcl:"database"`
	Schema      string `hcl:"schema"`
	URL         string `hcl:"url"`
	Integration string `hcl:"storage_integration"`
	FileFormat  string `hcl:"file_format,optional"`
}

// stageDDL builds the CREATE STAGE statement.
func stageDDL(in *StageInput) (string, error) {
	qualified, err := quoteQualified(in.Database, in.Schema, in.Name)
	if err != nil {
		return "", err
	}
	integration, err := quoteIdent(in.Integration)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE STAGE IF NOT EXISTS %s", qualified)
	fmt.Fprintf(&b, " URL = %s", quoteLiteral(in.URL))
	fmt.Fprintf(&b, " STORAGE_INTEGRATION = %s", integration)
	if in.FileFormat != "" {
		format, err := quoteQualified(in.Database, in.Schema, in.FileFormat)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " FILE_FORMAT = (FORMAT_NAME = %s)", format)
	}
	return b.String(), nil
}

// CreateStage provisions the stage.
func CreateStage(ctx context.Context, input *StageInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Creating stage.", "stage", input.Name, "url", input.URL)

	stmt, err := stageDDL(input)
	if err != nil {
		return cty.NilVal, err
	}
	if err := execDDL(ctx, stmt); err != nil {
		return cty.NilVal, fmt.Errorf("create stage '%s': %w", input.Name, err)
	}

	database := strings.ToUpper(input.Database)
	schemaName := strings.ToUpper(input.Schema)
	name := strings.ToUpper(input.Name)
	return cty.ObjectVal(map[string]cty.Value{
		"name":      cty.StringVal(name),
		"qualified": cty.StringVal(database + "." + schemaName + "." + name),
		"url":       cty.StringVal(input.URL),
	}), nil
}

// DestroyStage drops the stage.
func DestroyStage(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	qualified := prior.GetAttr("qualified").AsString()
	logger.Info("Dropping stage.", "stage", qualified)

	parts := strings.Split(qualified, ".")
	q, err := quoteQualified(parts...)
	if err != nil {
		return err
	}
	return execDDL(ctx, fmt.Sprintf("DROP STAGE IF EXISTS %s", q))
}
