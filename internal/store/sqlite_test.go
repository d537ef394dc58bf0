package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsight/sic-cli/internal/model"
)

func testRun(id string, created time.Time) model.ResolutionRun {
	return model.ResolutionRun{
		ID: id,
		Input: model.ClassificationPayload{
			SICCode:       "01110",
			SICCandidates: []model.SICCandidate{{SICCode: "01120", Likelihood: 0.4}},
		},
		Output: model.ClassificationPayload{
			SICCode:        "01110",
			SICDescription: "Crop growing",
			SICCandidates:  []model.SICCandidate{{SICCode: "01120", Descriptive: "Rice growing", Likelihood: 0.4}},
		},
		Issues:    []model.Issue{{Index: -1, SICCode: "01110", Reason: "no reviewed description for code"}},
		CreatedAt: created,
	}
}

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	st := openTestSQLite(t)
	ctx := context.Background()

	run := testRun("run-1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Input, got.Input)
	assert.Equal(t, run.Output, got.Output)
	assert.Equal(t, run.Issues, got.Issues)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteStore_SaveNoIssues(t *testing.T) {
	st := openTestSQLite(t)
	ctx := context.Background()

	run := testRun("run-2", time.Now().UTC())
	run.Issues = nil
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, got.Issues)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	st := openTestSQLite(t)

	_, err := st.GetRun(context.Background(), "absent")
	require.Error(t, err)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	st := openTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := testRun(id, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, st.SaveRun(ctx, run))
	}

	runs, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Most recent first.
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)

	// A non-positive limit falls back to the default.
	runs, err = st.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLiteStore_DuplicateID(t *testing.T) {
	st := openTestSQLite(t)
	ctx := context.Background()

	run := testRun("run-dup", time.Now().UTC())
	require.NoError(t, st.SaveRun(ctx, run))
	require.Error(t, st.SaveRun(ctx, run))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	st, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)
}
