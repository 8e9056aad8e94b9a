package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// TableInput configures the destination table. Columns is a list of objects
// with "name", "type" and an optional "default" expression, kept as a raw
// value so the declaration order survives decoding.
type TableInput struct {
	Name     string    `hcl:"name"`
	Database string    `hcl:"database"`
	Schema   string    `hcl:"schema"`
	Columns  cty.Value `hcl:"columns"`
}

// column is one decoded table column.
type column struct {
	Name    string
	Type    string
	Default string
}

var colTypeRe = identRe

// decodeColumns unpacks the columns value, preserving order.
func decodeColumns(v cty.Value) ([]column, error) {
	if v.IsNull() || !v.CanIterateElements() {
		return nil, fmt.Errorf("columns must be a list of objects")
	}

	var cols []column
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		if el.IsNull() || !el.Type().IsObjectType() {
			return nil, fmt.Errorf("each column must be an object with name and type")
		}
		ty := el.Type()
		if !ty.HasAttribute("name") || !ty.HasAttribute("type") {
			return nil, fmt.Errorf("each column must declare name and type")
		}
		col := column{
			Name: el.GetAttr("name").AsString(),
			Type: el.GetAttr("type").AsString(),
		}
		if ty.HasAttribute("default") {
			d := el.GetAttr("default")
			if !d.IsNull() {
				col.Default = d.AsString()
			}
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table needs at least one column")
	}
	return cols, nil
}

// tableDDL builds the CREATE TABLE statement. Column types pass through as
// written but must parse as a bare type word; defaults pass through verbatim
// only for a small set of known expressions.
func tableDDL(in *TableInput) (string, error) {
	qualified, err := quoteQualified(in.Database, in.Schema, in.Name)
	if err != nil {
		return "", err
	}
	cols, err := decodeColumns(in.Columns)
	if err != nil {
		return "", err
	}

	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		name, err := quoteIdent(c.Name)
		if err != nil {
			return "", err
		}
		if err := validateColumnType(c.Type); err != nil {
			return "", err
		}
		def := fmt.Sprintf("%s %s", name, strings.ToUpper(c.Type))
		if c.Default != "" {
			if err := validateDefault(c.Default); err != nil {
				return "", err
			}
			def += fmt.Sprintf(" DEFAULT %s", strings.ToUpper(c.Default))
		}
		defs = append(defs, def)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qualified, strings.Join(defs, ", ")), nil
}

// validateColumnType accepts a type word with an optional precision suffix,
// e.g. VARCHAR, NUMBER(38,0), TIMESTAMP_NTZ.
func validateColumnType(t string) error {
	base, rest, found := strings.Cut(t, "(")
	if !colTypeRe.MatchString(base) {
		return fmt.Errorf("invalid column type %q", t)
	}
	if found {
		args, ok := strings.CutSuffix(rest, ")")
		if !ok {
			return fmt.Errorf("invalid column type %q", t)
		}
		for _, a := range strings.Split(args, ",") {
			a = strings.TrimSpace(a)
			if a == "" || strings.IndexFunc(a, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
				return fmt.Errorf("invalid column type %q", t)
			}
		}
	}
	return nil
}

// allowed DEFAULT expressions
var knownDefaults = map[string]struct{}{
	"CURRENT_TIMESTAMP()": {},
	"CURRENT_DATE()":      {},
	"NULL":                {},
}

func validateDefault(d string) error {
	if _, ok := knownDefaults[strings.ToUpper(d)]; !ok {
		return fmt.Errorf("unsupported column default %q", d)
	}
	return nil
}

// CreateTable provisions the table.
func CreateTable(ctx context.Context, input *TableInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Creating table.", "table", input.Name)

	stmt, err := tableDDL(input)
	if err != nil {
		return cty.NilVal, err
	}
	if err := execDDL(ctx, stmt); err != nil {
		return cty.NilVal, fmt.Errorf("create table '%s': %w", input.Name, err)
	}

	database := strings.ToUpper(input.Database)
	schemaName := strings.ToUpper(input.Schema)
	name := strings.ToUpper(input.Name)
	return cty.ObjectVal(map[string]cty.Value{
		"name":      cty.StringVal(name),
		"qualified": cty.StringVal(database + "." + schemaName + "." + name),
	}), nil
}

// DestroyTable drops the table.
func DestroyTable(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	qualified := prior.GetAttr("qualified").AsString()
	logger.Info("Dropping table.", "table", qualified)

	parts := strings.Split(qualified, ".")
	q, err := quoteQualified(parts...)
	if err != nil {
		return err
	}
	return execDDL(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", q))
}
