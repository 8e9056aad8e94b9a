// Package policy builds the IAM JSON documents the landing stack attaches to
// its bucket and role. The documents are fixed shapes; only ARNs and the
// external id vary.
package policy

import (
	"encoding/json"
	"fmt"
)

// PlaceholderExternalID is the sentinel external id used in the initial trust
// policy, before the storage integration's generated identity is known.
const PlaceholderExternalID = "0000"

// Document is the top-level IAM policy document shape.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single IAM policy statement.
type Statement struct {
	Sid       string         `json:"Sid,omitempty"`
	Effect    string         `json:"Effect"`
	Principal map[string]any `json:"Principal,omitempty"`
	Action    any            `json:"Action"`
	Resource  any            `json:"Resource,omitempty"`
	Condition map[string]any `json:"Condition,omitempty"`
}

const policyVersion = "2012-10-17"

// BucketSecureTransport denies any access to the bucket over plain HTTP.
// This is the only bucket-level document the stack attaches; the read grant
// lives on the role, not the bucket.
func BucketSecureTransport(bucketARN string) (string, error) {
	doc := Document{
		Version: policyVersion,
		Statement: []Statement{{
			Sid:       "DenyInsecureTransport",
			Effect:    "Deny",
			Principal: map[string]any{"AWS": "*"},
			Action:    "s3:*",
			Resource:  []string{bucketARN, bucketARN + "/*"},
			Condition: map[string]any{
				"Bool": map[string]any{"aws:SecureTransport": "false"},
			},
		}},
	}
	return marshal(doc)
}

// RoleReadAccess grants the loader role read and list access, scoped to the
// landing bucket and its objects.
func RoleReadAccess(bucketARN string) (string, error) {
	doc := Document{
		Version: policyVersion,
		Statement: []Statement{
			{
				Sid:      "ListLandingBucket",
				Effect:   "Allow",
				Action:   []string{"s3:ListBucket", "s3:GetBucketLocation"},
				Resource: bucketARN,
			},
			{
				Sid:      "ReadLandingObjects",
				Effect:   "Allow",
				Action:   []string{"s3:GetObject", "s3:GetObjectVersion"},
				Resource: bucketARN + "/*",
			},
		},
	}
	return marshal(doc)
}

// PlaceholderTrust is the deliberately incomplete assume-role document the
// role is created with. The wildcard principal and sentinel external id are
// replaced by SyncedTrust once the storage integration's generated identity
// has been read back.
func PlaceholderTrust() (string, error) {
	doc := Document{
		Version: policyVersion,
		Statement: []Statement{{
			Sid:       "SnowflakeAssume",
			Effect:    "Allow",
			Principal: map[string]any{"AWS": "*"},
			Action:    "sts:AssumeRole",
			Condition: map[string]any{
				"StringEquals": map[string]any{"sts:ExternalId": PlaceholderExternalID},
			},
		}},
	}
	return marshal(doc)
}

// SyncedTrust is the completed assume-role document, pinned to the storage
// integration's generated IAM user and external id.
func SyncedTrust(principalARN, externalID string) (string, error) {
	if principalARN == "" || externalID == "" {
		return "", fmt.Errorf("trust sync requires both a principal ARN and an external id")
	}
	doc := Document{
		Version: policyVersion,
		Statement: []Statement{{
			Sid:       "SnowflakeAssume",
			Effect:    "Allow",
			Principal: map[string]any{"AWS": principalARN},
			Action:    "sts:AssumeRole",
			Condition: map[string]any{
				"StringEquals": map[string]any{"sts:ExternalId": externalID},
			},
		}},
	}
	return marshal(doc)
}

func marshal(doc Document) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return string(raw), nil
}
