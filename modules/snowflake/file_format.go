package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// FileFormatInput configures a named file format.
type FileFormatInput struct {
	Name        string   `hcl:"name"`
	Database    string   `hcl:"database"`
	Schema      string   `hcl:"schema"`
	Kind        string   `hcl:"kind"`
	SkipHeader  *int     `hcl:"skip_header,optional"`
	Delimiter   string   `hcl:"field_delimiter,optional"`
	NullIf      []string `hcl:"null_if,optional"`
	Compression string   `hcl:"compression,optional"`
}

// fileFormatDDL builds the CREATE FILE FORMAT statement. CSV formats get
// header and delimiter clauses; Parquet formats only type and compression.
func fileFormatDDL(in *FileFormatInput) (string, error) {
	qualified, err := quoteQualified(in.Database, in.Schema, in.Name)
	if err != nil {
		return "", err
	}

	kind := strings.ToUpper(in.Kind)
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE FILE FORMAT IF NOT EXISTS %s", qualified)

	switch kind {
	case "CSV":
		b.WriteString(" TYPE = CSV")
		skip := 1
		if in.SkipHeader != nil {
			skip = *in.SkipHeader
		}
		fmt.Fprintf(&b, " SKIP_HEADER = %d", skip)
		delim := in.Delimiter
		if delim == "" {
			delim = ","
		}
		fmt.Fprintf(&b, " FIELD_DELIMITER = %s", quoteLiteral(delim))
		b.WriteString(` FIELD_OPTIONALLY_ENCLOSED_BY = '"'`)
		if len(in.NullIf) > 0 {
			lits := make([]string, 0, len(in.NullIf))
			for _, n := range in.NullIf {
				lits = append(lits, quoteLiteral(n))
			}
			fmt.Fprintf(&b, " NULL_IF = (%s)", strings.Join(lits, ", "))
		}
	case "PARQUET":
		b.WriteString(" TYPE = PARQUET")
	default:
		return "", fmt.Errorf("unsupported file format kind %q", in.Kind)
	}

	if in.Compression != "" {
		fmt.Fprintf(&b, " COMPRESSION = %s", quoteLiteral(strings.ToUpper(in.Compression)))
	}
	return b.String(), nil
}

// CreateFileFormat provisions the file format.
func CreateFileFormat(ctx context.Context, input *FileFormatInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Creating file format.", "format", input.Name, "kind", input.Kind)

	stmt, err := fileFormatDDL(input)
	if err != nil {
		return cty.NilVal, err
	}
	if err := execDDL(ctx, stmt); err != nil {
		return cty.NilVal, fmt.Errorf("create file format '%s': %w", input.Name, err)
	}

	database := strings.ToUpper(input.Database)
	schemaName := strings.ToUpper(input.Schema)
	name := strings.ToUpper(input.Name)
	return cty.ObjectVal(map[string]cty.Value{
		"name":      cty.StringVal(name),
		"qualified": cty.StringVal(database + "." + schemaName + "." + name),
		"kind":      cty.StringVal(strings.ToUpper(input.Kind)),
	}), nil
}

// DestroyFileFormat drops the file format.
func DestroyFileFormat(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	qualified := prior.GetAttr("qualified").AsString()
	logger.Info("Dropping file format.", "format", qualified)

	parts := strings.Split(qualified, ".")
	q, err := quoteQualified(parts...)
	if err != nil {
		return err
	}
	return execDDL(ctx, fmt.Sprintf("DROP FILE FORMAT IF EXISTS %s", q))
}
