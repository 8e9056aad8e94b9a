// Package snowflake provides the warehouse-side resource types of the
// landing stack: compute, namespaces, the cross-cloud storage integration,
// file formats, the external stage, and the destination table. All of them
// are DDL over a single database/sql connection using the gosnowflake driver.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/snowflakedb/gosnowflake"

	"github.com/vk/icebridge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// dsnEnv names the environment variable carrying the Snowflake DSN,
// e.g. "user:pass@account/SNOWFLAKE_SAMPLE_DATA?role=SYSADMIN".
const dsnEnv = "SNOWFLAKE_DSN"

var (
	dbOnce sync.Once
	db     *sql.DB
	dbErr  error
)

// conn opens the shared Snowflake connection on first use.
func conn(ctx context.Context) (*sql.DB, error) {
	dbOnce.Do(func() {
		dsn := os.Getenv(dsnEnv)
		if dsn == "" {
			dbErr = fmt.Errorf("%s is not set", dsnEnv)
			return
		}
		db, dbErr = sql.Open("snowflake", dsn)
		if dbErr != nil {
			dbErr = fmt.Errorf("failed to open snowflake connection: %w", dbErr)
			return
		}
		dbErr = db.PingContext(ctx)
		if dbErr != nil {
			dbErr = fmt.Errorf("failed to ping snowflake: %w", dbErr)
		}
	})
	return db, dbErr
}

// Register registers the resource types with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("snowflake_warehouse", &registry.RegisteredResource{
		NewInput:  func() any { return new(WarehouseInput) },
		Outputs:   []string{"name"},
		CreateFn:  CreateWarehouse,
		DestroyFn: DestroyWarehouse,
	})
	r.RegisterType("snowflake_database", &registry.RegisteredResource{
		NewInput:  func() any { return new(DatabaseInput) },
		Outputs:   []string{"name"},
		CreateFn:  CreateDatabase,
		DestroyFn: DestroyDatabase,
	})
	r.RegisterType("snowflake_schema", &registry.RegisteredResource{
		NewInput:  func() any { return new(SchemaInput) },
		Outputs:   []string{"name", "database", "qualified"},
		CreateFn:  CreateSchema,
		DestroyFn: DestroySchema,
	})
	r.RegisterType("snowflake_storage_integration", &registry.RegisteredResource{
		NewInput:  func() any { return new(IntegrationInput) },
		Outputs:   []string{"name", "role_arn", "allowed_location", "iam_user_arn", "external_id"},
		CreateFn:  CreateIntegration,
		DestroyFn: DestroyIntegration,
	})
	r.RegisterType("snowflake_file_format", &registry.RegisteredResource{
		NewInput:  func() any { return new(FileFormatInput) },
		Outputs:   []string{"name", "qualified", "kind"},
		CreateFn:  CreateFileFormat,
		DestroyFn: DestroyFileFormat,
	})
	r.RegisterType("snowflake_stage", &registry.RegisteredResource{
		NewInput:  func() any { return new(StageInput) },
		Outputs:   []string{"name", "qualified", "url"},
		CreateFn:  CreateStage,
		DestroyFn: DestroyStage,
	})
	r.RegisterType("snowflake_table", &registry.RegisteredResource{
		NewInput:  func() any { return new(TableInput) },
		Outputs:   []string{"name", "qualified"},
		CreateFn:  CreateTable,
		DestroyFn: DestroyTable,
	})
}
