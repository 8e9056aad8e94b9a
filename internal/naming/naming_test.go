package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DerivesFullNameSet(t *testing.T) {
	names := New("acme", "dev", "a1b2c3")

	assert.Equal(t, "acme-dev-landing-a1b2c3", names.Bucket)
	assert.Equal(t, "acme-dev-snowflake-loader", names.RoleName)
	assert.Equal(t, "acme-dev-landing-read", names.PolicyName)
	assert.Equal(t, "ACME_DEV_WH", names.Warehouse)
	assert.Equal(t, "ACME_DEV_DB", names.Database)
	assert.Equal(t, "ACME_DEV_S3_INT", names.Integration)
	assert.Equal(t, "LANDING", names.Schema)
	assert.Equal(t, "LANDING_STAGE", names.Stage)
	assert.Equal(t, "LANDING_EVENTS", names.Table)
	assert.Equal(t, "CSV_STANDARD", names.FormatCSV)
	assert.Equal(t, "PARQUET_STANDARD", names.FormatParquet)
}

func TestNew_IsDeterministic(t *testing.T) {
	a := New("acme", "prod", "token")
	b := New("acme", "prod", "token")
	assert.Equal(t, a, b)
}

func TestNew_EnvironmentsDoNotCollide(t *testing.T) {
	dev := New("acme", "dev", "token")
	prod := New("acme", "prod", "token")

	assert.NotEqual(t, dev.Bucket, prod.Bucket)
	assert.NotEqual(t, dev.RoleName, prod.RoleName)
	assert.NotEqual(t, dev.Database, prod.Database)
}

func TestNew_SanitizesAwkwardIdentity(t *testing.T) {
	names := New("My App", "Dev.1", "T_0")

	assert.Equal(t, "my-app-dev-1-landing-t-0", names.Bucket)
	assert.Equal(t, "MY_APP_DEV_1_WH", names.Warehouse)
}
