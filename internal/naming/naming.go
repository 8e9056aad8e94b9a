// Package naming derives every generated resource name from the stack
// identity. Names are a pure function of (project, environment, token), so a
// stack re-applied with the same identity always produces the same names,
// and two environments under one project can never collide.
package naming

import (
	"fmt"
	"strings"
)

// Names holds the derived identifiers for one stack instantiation.
type Names struct {
	// Bucket is globally scoped, so it carries the uniqueness token.
	Bucket string

	RoleName   string
	PolicyName string

	// Snowflake object names are scoped to account / database / schema and
	// follow Snowflake's unquoted upper-case convention.
	Warehouse     string
	Database      string
	Schema        string
	Integration   string
	Stage         string
	Table         string
	FormatCSV     string
	FormatParquet string
}

// New derives the full name set. Project and environment are lower-cased for
// the AWS side and upper-cased for the Snowflake side; the token only ever
// contributes to globally scoped names.
func New(project, environment, token string) Names {
	lowProj := sanitize(strings.ToLower(project))
	lowEnv := sanitize(strings.ToLower(environment))
	upper := fmt.Sprintf("%s_%s", strings.ToUpper(sanitizeIdent(project)), strings.ToUpper(sanitizeIdent(environment)))

	return Names{
		Bucket:        fmt.Sprintf("%s-%s-landing-%s", lowProj, lowEnv, sanitize(strings.ToLower(token))),
		RoleName:      fmt.Sprintf("%s-%s-snowflake-loader", lowProj, lowEnv),
		PolicyName:    fmt.Sprintf("%s-%s-landing-read", lowProj, lowEnv),
		Warehouse:     upper + "_WH",
		Database:      upper + "_DB",
		Schema:        "LANDING",
		Integration:   upper + "_S3_INT",
		Stage:         "LANDING_STAGE",
		Table:         "LANDING_EVENTS",
		FormatCSV:     "CSV_STANDARD",
		FormatParquet: "PARQUET_STANDARD",
	}
}

// sanitize strips characters outside the S3 bucket-name alphabet.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '_', r == ' ', r == '.':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// sanitizeIdent strips characters outside the unquoted SQL identifier alphabet.
func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-', r == ' ', r == '.':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
