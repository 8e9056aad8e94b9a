package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestQuoteIdent(t *testing.T) {
	q, err := quoteIdent("landing_events")
	require.NoError(t, err)
	assert.Equal(t, `"LANDING_EVENTS"`, q)

	for _, bad := range []string{"", "has space", `x";DROP TABLE y`, "3leading", "dotted.name"} {
		_, err := quoteIdent(bad)
		assert.Error(t, err, "identifier %q must be rejected", bad)
	}
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'s3://bucket/'", quoteLiteral("s3://bucket/"))
	assert.Equal(t, "'it''s'", quoteLiteral("it's"))
}

func TestWarehouseDDL_Defaults(t *testing.T) {
	stmt, err := warehouseDDL(&WarehouseInput{Name: "acme_dev_wh"})
	require.NoError(t, err)

	assert.Contains(t, stmt, `CREATE WAREHOUSE IF NOT EXISTS "ACME_DEV_WH"`)
	assert.Contains(t, stmt, "WAREHOUSE_SIZE = 'XSMALL'")
	assert.Contains(t, stmt, "AUTO_SUSPEND = 60")
	assert.Contains(t, stmt, "AUTO_RESUME = true")
	assert.Contains(t, stmt, "INITIALLY_SUSPENDED = true")
}

func TestWarehouseDDL_Overrides(t *testing.T) {
	suspend := 300
	resume := false
	stmt, err := warehouseDDL(&WarehouseInput{
		Name:               "wh",
		Size:               "SMALL",
		AutoSuspendSeconds: &suspend,
		AutoResume:         &resume,
	})
	require.NoError(t, err)

	assert.Contains(t, stmt, "WAREHOUSE_SIZE = 'SMALL'")
	assert.Contains(t, stmt, "AUTO_SUSPEND = 300")
	assert.Contains(t, stmt, "AUTO_RESUME = false")
}

func TestDatabaseDDL(t *testing.T) {
	stmt, err := databaseDDL(&DatabaseInput{Name: "acme_dev_db", Comment: "it's raw"})
	require.NoError(t, err)
	assert.Equal(t, `CREATE DATABASE IF NOT EXISTS "ACME_DEV_DB" COMMENT = 'it''s raw'`, stmt)
}

func TestSchemaDDL(t *testing.T) {
	stmt, err := schemaDDL(&SchemaInput{Name: "landing", Database: "acme_dev_db"})
	require.NoError(t, err)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "ACME_DEV_DB"."LANDING"`, stmt)
}

func TestIntegrationDDL(t *testing.T) {
	stmt, err := integrationDDL(&IntegrationInput{
		Name:            "acme_dev_s3_int",
		RoleARN:         "arn:aws:iam::123456789012:role/acme-dev-snowflake-loader",
		AllowedLocation: "s3://acme-dev-landing-x/",
	})
	require.NoError(t, err)

	assert.Contains(t, stmt, `CREATE STORAGE INTEGRATION IF NOT EXISTS "ACME_DEV_S3_INT"`)
	assert.Contains(t, stmt, "TYPE = EXTERNAL_STAGE")
	assert.Contains(t, stmt, "STORAGE_PROVIDER = 'S3'")
	assert.Contains(t, stmt, "ENABLED = TRUE")
	assert.Contains(t, stmt, "STORAGE_AWS_ROLE_ARN = 'arn:aws:iam::123456789012:role/acme-dev-snowflake-loader'")
	assert.Contains(t, stmt, "STORAGE_ALLOWED_LOCATIONS = ('s3://acme-dev-landing-x/')")
}

func TestFileFormatDDL_CSV(t *testing.T) {
	stmt, err := fileFormatDDL(&FileFormatInput{
		Name:     "csv_standard",
		Database: "db",
		Schema:   "landing",
		Kind:     "CSV",
		NullIf:   []string{"", "NULL"},
	})
	require.NoError(t, err)

	assert.Contains(t, stmt, `CREATE FILE FORMAT IF NOT EXISTS "DB"."LANDING"."CSV_STANDARD"`)
	assert.Contains(t, stmt, "TYPE = CSV")
	assert.Contains(t, stmt, "SKIP_HEADER = 1")
	assert.Contains(t, stmt, "FIELD_DELIMITER = ','")
	assert.Contains(t, stmt, `FIELD_OPTIONALLY_ENCLOSED_BY = '"'`)
	assert.Contains(t, stmt, "NULL_IF = ('', 'NULL')")
}

func TestFileFormatDDL_Parquet(t *testing.T) {
	stmt, err := fileFormatDDL(&FileFormatInput{
		Name:        "parquet_standard",
		Database:    "db",
		Schema:      "landing",
		Kind:        "parquet",
		Compression: "snappy",
	})
	require.NoError(t, err)

	assert.Contains(t, stmt, "TYPE = PARQUET")
	assert.Contains(t, stmt, "COMPRESSION = 'SNAPPY'")
	assert.NotContains(t, stmt, "SKIP_HEADER")
}

func TestFileFormatDDL_UnknownKindFails(t *testing.T) {
	_, err := fileFormatDDL(&FileFormatInput{Name: "x", Database: "db", Schema: "s", Kind: "AVRO"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format kind")
}

func TestStageDDL(t *testing.T) {
	stmt, err := stageDDL(&StageInput{
		Name:        "landing_stage",
		Database:    "db",
		Schema:      "landing",
		URL:         "s3://acme-dev-landing-x/",
		Integration: "acme_dev_s3_int",
		FileFormat:  "csv_standard",
	})
	require.NoError(t, err)

	assert.Contains(t, stmt, `CREATE STAGE IF NOT EXISTS "DB"."LANDING"."LANDING_STAGE"`)
	assert.Contains(t, stmt, "URL = 's3://acme-dev-landing-x/'")
	assert.Contains(t, stmt, `STORAGE_INTEGRATION = "ACME_DEV_S3_INT"`)
	assert.Contains(t, stmt, `FILE_FORMAT = (FORMAT_NAME = "DB"."LANDING"."CSV_STANDARD")`)
}

func columnsVal(cols ...cty.Value) cty.Value {
	return cty.TupleVal(cols)
}

func col(name, colType string) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal(name),
		"type": cty.StringVal(colType),
	})
}

func colWithDefault(name, colType, def string) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"name":    cty.StringVal(name),
		"type":    cty.StringVal(colType),
		"default": cty.StringVal(def),
	})
}

func TestTableDDL_PreservesColumnOrder(t *testing.T) {
	stmt, err := tableDDL(&TableInput{
		Name:     "landing_events",
		Database: "db",
		Schema:   "landing",
		Columns: columnsVal(
			col("event_id", "VARCHAR"),
			col("payload", "VARIANT"),
			colWithDefault("loaded_at", "TIMESTAMP_NTZ", "CURRENT_TIMESTAMP()"),
		),
	})
	require.NoError(t, err)

	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "DB"."LANDING"."LANDING_EVENTS" (`+
			`"EVENT_ID" VARCHAR, "PAYLOAD" VARIANT, "LOADED_AT" TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP())`,
		stmt)
}

func TestTableDDL_TypePrecisionSuffix(t *testing.T) {
	stmt, err := tableDDL(&TableInput{
		Name: "t", Database: "db", Schema: "s",
		Columns: columnsVal(col("amount", "NUMBER(38,2)")),
	})
	require.NoError(t, err)
	assert.Contains(t, stmt, `"AMOUNT" NUMBER(38,2)`)
}

func TestTableDDL_RejectsBadInput(t *testing.T) {
	_, err := tableDDL(&TableInput{
		Name: "t", Database: "db", Schema: "s",
		Columns: columnsVal(col("x", "VARCHAR; DROP TABLE y")),
	})
	require.Error(t, err)

	_, err = tableDDL(&TableInput{
		Name: "t", Database: "db", Schema: "s",
		Columns: columnsVal(colWithDefault("x", "VARCHAR", "EVIL()")),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported column default")

	_, err = tableDDL(&TableInput{
		Name: "t", Database: "db", Schema: "s",
		Columns: cty.EmptyTupleVal,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one column")
}
