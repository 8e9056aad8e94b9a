package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// WarehouseInput configures a virtual warehouse.
type WarehouseInput struct {
	Name               string `hcl:"name"`
	Size               string `hcl:"size,optional"`
	AutoSuspendSeconds *int   `hcl:"auto_suspend,optional"`
	AutoResume         *bool  `hcl:"auto_resume,optional"`
	InitiallySuspended *bool  `hcl:"initially_suspended,optional"`
}

const (
	defaultWarehouseSize = "XSMALL"
	defaultAutoSuspend   = 60
)

// warehouseDDL builds the CREATE WAREHOUSE statement.
func warehouseDDL(in *WarehouseInput) (string, error) {
	name, err := quoteIdent(in.Name)
	if err != nil {
		return "", err
	}

	size := in.Size
	if size == "" {
		size = defaultWarehouseSize
	}
	suspend := defaultAutoSuspend
	if in.AutoSuspendSeconds != nil {
		suspend = *in.AutoSuspendSeconds
	}
	resume := true
	if in.AutoResume != nil {
		resume = *in.AutoResume
	}
	suspended := true
	if in.InitiallySuspended != nil {
		suspended = *in.InitiallySuspended
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE WAREHOUSE IF NOT EXISTS %s", name)
	fmt.Fprintf(&b, " WAREHOUSE_SIZE = %s", quoteLiteral(size))
	fmt.Fprintf(&b, " AUTO_SUSPEND = %d", suspend)
	fmt.Fprintf(&b, " AUTO_RESUME = %t", resume)
	fmt.Fprintf(&b, " INITIALLY_SUSPENDED = %t", suspended)
	return b.String(), nil
}

// CreateWarehouse provisions the warehouse.
func CreateWarehouse(ctx context.Context, input *WarehouseInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Creating warehouse.", "warehouse", input.Name)

	stmt, err := warehouseDDL(input)
	if err != nil {
		return cty.NilVal, err
	}
	if err := execDDL(ctx, stmt); err != nil {
		return cty.NilVal, fmt.Errorf("create warehouse '%s': %w", input.Name, err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal(strings.ToUpper(input.Name)),
	}), nil
}

// DestroyWarehouse drops the warehouse.
func DestroyWarehouse(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	name := prior.GetAttr("name").AsString()
	logger.Info("Dropping warehouse.", "warehouse", name)

	q, err := quoteIdent(name)
	if err != nil {
		return err
	}
	return execDDL(ctx, fmt.Sprintf("DROP WAREHOUSE IF EXISTS %s", q))
}
