package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// DatabaseInput configures a database.
type DatabaseInput struct {
	Name    string `hcl:"name"`
	Comment string `hcl:"comment,optional"`
}

// databaseDDL builds the CREATE DATABASE statement.
func databaseDDL(in *DatabaseInput) (string, error) {
	name, err := quoteIdent(in.Name)
	if err != nil {
		return "", err
	}
	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", name)
	if in.Comment != "" {
		stmt += fmt.Sprintf(" COMMENT = %s", quoteLiteral(in.Comment))
	}
	return stmt, nil
}

// CreateDatabase provisions the database.
func CreateDatabase(ctx context.Context, input *DatabaseInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Creating database.", "database", input.Name)

	stmt, err := databaseDDL(input)
	if err != nil {
		return cty.NilVal, err
	}
	if err := execDDL(ctx, stmt); err != nil {
		return cty.NilVal, fmt.Errorf("create database '%s': %w", input.Name, err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal(strings.ToUpper(input.Name)),
	}), nil
}

// DestroyDatabase drops the database and everything in it.
func DestroyDatabase(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	name := prior.GetAttr("name").AsString()
	logger.Info("Dropping database.", "database", name)

	q, err := quoteIdent(name)
	if err != nil {
		return err
	}
	return execDDL(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s CASCADE", q))
}
