package hcl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/icebridge/internal/ctxlog"
)

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoad_SingleFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.hcl": `
			stack {
				project     = "acme"
				environment = "dev"
				region      = "eu-west-1"
			}
			resource "aws_s3_bucket" "landing" {
				arguments {
					name          = stack.bucket_name
					force_destroy = true
				}
			}
			output "bucket_name" {
				value = resource.aws_s3_bucket.landing.name
			}
		`,
	})

	model, err := NewLoader().Load(testCtx(), dir)
	require.NoError(t, err)

	assert.Equal(t, "acme", model.Stack.Project)
	assert.Equal(t, "dev", model.Stack.Environment)
	assert.Equal(t, "eu-west-1", model.Stack.Region)

	require.Len(t, model.Resources, 1)
	res := model.Resources[0]
	assert.Equal(t, "aws_s3_bucket", res.Type)
	assert.Equal(t, "landing", res.Name)
	assert.Equal(t, "resource.aws_s3_bucket.landing", res.Address())
	assert.Contains(t, res.Arguments, "name")
	assert.Contains(t, res.Arguments, "force_destroy")

	require.Len(t, model.Outputs, 1)
	assert.Equal(t, "bucket_name", model.Outputs[0].Name)
}

func TestLoad_MergesDirectoryFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"10-stack.hcl": `
			stack {
				project     = "acme"
				environment = "dev"
			}
		`,
		"20-resources.hcl": `
			resource "aws_s3_bucket" "landing" {
				arguments { name = "x" }
			}
		`,
		"30-outputs.hcl": `
			output "bucket_name" {
				value = resource.aws_s3_bucket.landing.name
			}
		`,
	})

	model, err := NewLoader().Load(testCtx(), dir)
	require.NoError(t, err)
	assert.Equal(t, "acme", model.Stack.Project)
	assert.Len(t, model.Resources, 1)
	assert.Len(t, model.Outputs, 1)
}

func TestLoad_AcceptsDirectFilePath(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"stack.hcl": `
			stack {
				project     = "acme"
				environment = "dev"
			}
		`,
	})

	model, err := NewLoader().Load(testCtx(), filepath.Join(dir, "stack.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "acme", model.Stack.Project)
}

func TestLoad_MissingStackBlockFails(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.hcl": `
			resource "aws_s3_bucket" "landing" {
				arguments { name = "x" }
			}
		`,
	})

	_, err := NewLoader().Load(testCtx(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stack block")
}

func TestLoad_DuplicateStackBlockFails(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.hcl": `
			stack {
				project     = "acme"
				environment = "dev"
			}
		`,
		"b.hcl": `
			stack {
				project     = "other"
				environment = "dev"
			}
		`,
	})

	_, err := NewLoader().Load(testCtx(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate stack block")
}

func TestLoad_IncompleteIdentityFails(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.hcl": `
			stack {
				project     = "acme"
				environment = ""
			}
		`,
	})

	_, err := NewLoader().Load(testCtx(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project and environment")
}

func TestLoad_EmptyDirFails(t *testing.T) {
	_, err := NewLoader().Load(testCtx(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl stack files")
}

func TestLoad_MalformedHCLFails(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.hcl": `stack {{{`,
	})

	_, err := NewLoader().Load(testCtx(), dir)
	require.Error(t, err)
}
