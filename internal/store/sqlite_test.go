package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "intake.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRecord(t *testing.T) *model.Record {
	t.Helper()
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))
	rec.Meta.Sources["passport.surname"] = model.SourceMRZ
	rec.Meta.Confidence["passport.surname"] = 0.97
	return rec
}

func TestSQLiteRunLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, sampleRecord(t))
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusExtracted, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Eriksson", got.Record.Passport.Surname)
	assert.Equal(t, model.SourceMRZ, got.Record.Meta.Sources["passport.surname"])
	assert.Nil(t, got.Summary)
	assert.Nil(t, got.Autofill)

	summary := json.RawMessage(`{"ready_for_autofill":true}`)
	require.NoError(t, s.UpdateRunSummary(ctx, run.ID, summary))

	report := model.NewAutofillReport("https://forms.example.test")
	report.Record(&model.FieldResult{Path: "passport.surname", Attempted: true, Result: model.OutcomePass})
	require.NoError(t, s.UpdateRunAutofill(ctx, run.ID, report))

	require.NoError(t, s.UpdateRunCoverage(ctx, run.ID, json.RawMessage(`{"total_fields":1}`)))

	rec := got.Record
	require.NoError(t, rec.SetPath("passport.surname", "Svensson"))
	require.NoError(t, s.UpdateRunRecord(ctx, run.ID, rec, RunStatusReviewed))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusReviewed, got.Status)
	assert.Equal(t, "Svensson", got.Record.Passport.Surname)
	assert.JSONEq(t, string(summary), string(got.Summary))
	require.NotNil(t, got.Autofill)
	assert.Equal(t, []string{"passport.surname"}, got.Autofill.Filled)
	assert.NotNil(t, got.Coverage)
}

func TestSQLiteStatusTransitions(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, sampleRecord(t))
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunSummary(ctx, run.ID, json.RawMessage(`{}`)))
	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusResolved, got.Status)

	require.NoError(t, s.UpdateRunAutofill(ctx, run.ID, model.NewAutofillReport("")))
	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusAutofilled, got.Status)
}

func TestSQLiteNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "missing")
	assert.Error(t, err)
	assert.Error(t, s.UpdateRunSummary(ctx, "missing", json.RawMessage(`{}`)))
	assert.Error(t, s.UpdateRunRecord(ctx, "missing", model.NewRecord(), RunStatusResolved))
	assert.Error(t, s.UpdateRunCoverage(ctx, "missing", json.RawMessage(`{}`)))
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, sampleRecord(t))
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, sampleRecord(t))
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunSummary(ctx, b.ID, json.RawMessage(`{}`)))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	resolved, err := s.ListRuns(ctx, RunFilter{Status: RunStatusResolved})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, b.ID, resolved[0].ID)

	extracted, err := s.ListRuns(ctx, RunFilter{Status: RunStatusExtracted})
	require.NoError(t, err)
	require.Len(t, extracted, 1)
	assert.Equal(t, a.ID, extracted[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteFieldHistory(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, sampleRecord(t))
	require.NoError(t, err)

	for v := 1; v <= 3; v++ {
		field := &model.ResolvedField{
			Path: "passport.surname", Value: "Eriksson",
			Status: model.StatusGreen, Version: v,
		}
		require.NoError(t, s.AppendFieldVersion(ctx, run.ID, field))
	}

	history, err := s.FieldHistory(ctx, run.ID, "passport.surname")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, field := range history {
		assert.Equal(t, i+1, field.Version)
	}

	empty, err := s.FieldHistory(ctx, run.ID, "passport.sex")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
