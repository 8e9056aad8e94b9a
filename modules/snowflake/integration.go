package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// IntegrationInput configures an S3 storage integration.
type IntegrationInput struct {
	Name            string `hcl:"name"`
	RoleARN         string `hcl:"role_arn"`
	AllowedLocation string `hcl:"allowed_location"`
}

// DESC STORAGE INTEGRATION property names carrying the identity Snowflake
// assumes the role with. The trust sync step patches these into the role.
const (
	propIAMUserARN = "STORAGE_AWS_IAM_USER_ARN"
	propExternalID = "STORAGE_AWS_EXTERNAL_ID"
)

// integrationDDL builds the CREATE STORAGE INTEGRATION statement.
func integrationDDL(in *IntegrationInput) (string, error) {
	name, err := quoteIdent(in.Name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE STORAGE INTEGRATION IF NOT EXISTS %s", name)
	b.WriteString(" TYPE = EXTERNAL_STAGE")
	b.WriteString(" STORAGE_PROVIDER = 'S3'")
	b.WriteString(" ENABLED = TRUE")
	fmt.Fprintf(&b, " STORAGE_AWS_ROLE_ARN = %s", quoteLiteral(in.RoleARN))
	fmt.Fprintf(&b, " STORAGE_ALLOWED_LOCATIONS = (%s)", quoteLiteral(in.AllowedLocation))
	return b.String(), nil
}

// describeIntegration reads the integration's generated identity properties.
func describeIntegration(ctx context.Context, name string) (iamUserARN, externalID string, err error) {
	q, err := quoteIdent(name)
	if err != nil {
		return "", "", err
	}
	rows, err := queryRows(ctx, fmt.Sprintf("DESC STORAGE INTEGRATION %s", q))
	if err != nil {
		return "", "", err
	}
	defer rows.Close()

	for rows.Next() {
		var property, propertyType, value, defaultValue string
		if err := rows.Scan(&property, &propertyType, &value, &defaultValue); err != nil {
			return "", "", fmt.Errorf("scan DESC row: %w", err)
		}
		switch property {
		case propIAMUserARN:
			iamUserARN = value
		case propExternalID:
			externalID = value
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", err
	}
	if iamUserARN == "" || externalID == "" {
		return "", "", fmt.Errorf("DESC STORAGE INTEGRATION '%s' did not report %s and %s", name, propIAMUserARN, propExternalID)
	}
	return iamUserARN, externalID, nil
}

// CreateIntegration provisions the integration and captures the IAM identity
// Snowflake generated for it.
func CreateIntegration(ctx context.Context, input *IntegrationInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Creating storage integration.", "integration", input.Name, "location", input.AllowedLocation)

	stmt, err := integrationDDL(input)
	if err != nil {
		return cty.NilVal, err
	}
	if err := execDDL(ctx, stmt); err != nil {
		return cty.NilVal, fmt.Errorf("create storage integration '%s': %w", input.Name, err)
	}

	iamUserARN, externalID, err := describeIntegration(ctx, input.Name)
	if err != nil {
		return cty.NilVal, err
	}
	logger.Info("Captured integration identity.", "iam_user_arn", iamUserARN)

	return cty.ObjectVal(map[string]cty.Value{
		"name":             cty.StringVal(strings.ToUpper(input.Name)),
		"role_arn":         cty.StringVal(input.RoleARN),
		"allowed_location": cty.StringVal(input.AllowedLocation),
		"iam_user_arn":     cty.StringVal(iamUserARN),
		"external_id":      cty.StringVal(externalID),
	}), nil
}

// DestroyIntegration drops the integration.
func DestroyIntegration(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	name := prior.GetAttr("name").AsString()
	logger.Info("Dropping storage integration.", "integration", name)

	q, err := quoteIdent(name)
	if err != nil {
		return err
	}
	return execDDL(ctx, fmt.Sprintf("DROP STORAGE INTEGRATION IF EXISTS %s", q))
}
