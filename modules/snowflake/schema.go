package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// SchemaInput configures a schema inside a database.
type SchemaInput struct {
	Name     string `hcl:"name"`
	Database string `hcl:"database"`
}

// schemaDDL builds the CREATE SCHEMA statement.
func schemaDDL(in *SchemaInput) (string, error) {
	qualified, err := quoteQualified(in.Database, in.Name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", qualified), nil
}

// CreateSchema provisions the schema.
func CreateSchema(ctx context.Context, input *SchemaInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Creating schema.", "database", input.Database, "schema", input.Name)

	stmt, err := schemaDDL(input)
	if err != nil {
		return cty.NilVal, err
	}
	if err := execDDL(ctx, stmt); err != nil {
		return cty.NilVal, fmt.Errorf("create schema '%s.%s': %w", input.Database, input.Name, err)
	}

	database := strings.ToUpper(input.Database)
	name := strings.ToUpper(input.Name)
	return cty.ObjectVal(map[string]cty.Value{
		"name":      cty.StringVal(name),
		"database":  cty.StringVal(database),
		"qualified": cty.StringVal(database + "." + name),
	}), nil
}

// DestroySchema drops the schema.
func DestroySchema(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	database := prior.GetAttr("database").AsString()
	name := prior.GetAttr("name").AsString()
	logger.Info("Dropping schema.", "database", database, "schema", name)

	qualified, err := quoteQualified(database, name)
	if err != nil {
		return err
	}
	return execDDL(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", qualified))
}
