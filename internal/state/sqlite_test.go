package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	meta, err := s.Meta()
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestSetMeta_RecordsIdentityOnce(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetMeta("acme", "dev", "a1b2c3"))

	meta, err := s.Meta()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "acme", meta.Project)
	assert.Equal(t, "dev", meta.Environment)
	assert.Equal(t, "a1b2c3", meta.Token)
	assert.False(t, meta.CreatedAt.IsZero())

	// Re-recording the same identity is a no-op; the token survives.
	require.NoError(t, s.SetMeta("acme", "dev", "different"))
	meta, err = s.Meta()
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3", meta.Token)
}

func TestSetMeta_RejectsForeignStack(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SetMeta("acme", "dev", "a1b2c3"))

	err := s.SetMeta("acme", "prod", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to stack acme/dev")
}

func TestUpsert_RoundTripsOutputs(t *testing.T) {
	s := openTestStore(t)

	outputs := cty.ObjectVal(map[string]cty.Value{
		"name":          cty.StringVal("acme-dev-landing-x"),
		"arn":           cty.StringVal("arn:aws:s3:::acme-dev-landing-x"),
		"force_destroy": cty.True,
	})
	require.NoError(t, s.Upsert(&Record{
		Address:  "resource.aws_s3_bucket.landing",
		Type:     "aws_s3_bucket",
		ArgsHash: "abc123",
		Outputs:  outputs,
	}))

	rec, err := s.Get("resource.aws_s3_bucket.landing")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "aws_s3_bucket", rec.Type)
	assert.Equal(t, "abc123", rec.ArgsHash)
	assert.False(t, rec.TrustPending)
	assert.Equal(t, "acme-dev-landing-x", rec.Outputs.GetAttr("name").AsString())
	assert.True(t, rec.Outputs.GetAttr("force_destroy").True())
}

func TestUpsert_ReplacesExistingRecord(t *testing.T) {
	s := openTestStore(t)

	rec := &Record{
		Address: "resource.thing.a", Type: "thing", ArgsHash: "h1",
		Outputs: cty.ObjectVal(map[string]cty.Value{"id": cty.StringVal("one")}),
	}
	require.NoError(t, s.Upsert(rec))

	rec.ArgsHash = "h2"
	rec.Outputs = cty.ObjectVal(map[string]cty.Value{"id": cty.StringVal("two")})
	require.NoError(t, s.Upsert(rec))

	got, err := s.Get("resource.thing.a")
	require.NoError(t, err)
	assert.Equal(t, "h2", got.ArgsHash)
	assert.Equal(t, "two", got.Outputs.GetAttr("id").AsString())

	all, err := s.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGet_MissingAddressReturnsNil(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Get("resource.thing.missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestList_ReverseInsertionOrder(t *testing.T) {
	s := openTestStore(t)

	// Addresses chosen so alphabetical order disagrees with insertion order;
	// back-to-back inserts share a wall-clock timestamp.
	for _, addr := range []string{"resource.thing.a", "resource.widget.z", "resource.thing.m"} {
		require.NoError(t, s.Upsert(&Record{
			Address: addr, Type: "thing", ArgsHash: "h",
			Outputs: cty.EmptyObjectVal,
		}))
	}

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "resource.thing.m", recs[0].Address)
	assert.Equal(t, "resource.widget.z", recs[1].Address)
	assert.Equal(t, "resource.thing.a", recs[2].Address)
}

func TestList_ReinsertedRecordBecomesNewest(t *testing.T) {
	s := openTestStore(t)

	for _, addr := range []string{"resource.thing.a", "resource.thing.b"} {
		require.NoError(t, s.Upsert(&Record{
			Address: addr, Type: "thing", ArgsHash: "h",
			Outputs: cty.EmptyObjectVal,
		}))
	}

	// A replace deletes the old record before inserting the new one, so the
	// recreated resource must surface as the newest.
	require.NoError(t, s.Delete("resource.thing.a"))
	require.NoError(t, s.Upsert(&Record{
		Address: "resource.thing.a", Type: "thing", ArgsHash: "h2",
		Outputs: cty.EmptyObjectVal,
	}))

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "resource.thing.a", recs[0].Address)
	assert.Equal(t, "resource.thing.b", recs[1].Address)
}

func TestDelete_RemovesRecord(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(&Record{
		Address: "resource.thing.a", Type: "thing", Outputs: cty.EmptyObjectVal,
	}))

	require.NoError(t, s.Delete("resource.thing.a"))

	rec, err := s.Get("resource.thing.a")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Deleting an absent record is not an error.
	require.NoError(t, s.Delete("resource.thing.a"))
}

func TestSetTrustPending(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(&Record{
		Address: "resource.aws_iam_role.loader", Type: "aws_iam_role",
		Outputs: cty.EmptyObjectVal, TrustPending: true,
	}))

	require.NoError(t, s.SetTrustPending("resource.aws_iam_role.loader", false))
	rec, err := s.Get("resource.aws_iam_role.loader")
	require.NoError(t, err)
	assert.False(t, rec.TrustPending)

	err = s.SetTrustPending("resource.thing.missing", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such resource in state")
}
