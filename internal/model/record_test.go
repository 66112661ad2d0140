package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathAccessors(t *testing.T) {
	t.Parallel()

	rec := NewRecord()
	require.NoError(t, rec.SetPath("rep.attorney.address.city", "New York"))

	got, err := rec.GetPath("rep.attorney.address.city")
	require.NoError(t, err)
	assert.Equal(t, "New York", got)
	assert.Equal(t, "New York", rec.Rep.Attorney.Address.City)

	_, err = rec.GetPath("rep.attorney.address.planet")
	assert.Error(t, err)
	assert.Error(t, rec.SetPath("rep.attorney.address.planet", "Earth"))
}

func TestConflictFields(t *testing.T) {
	t.Parallel()

	rec := NewRecord()
	rec.Meta.Conflicts["rep.client.address.country"] = Conflict{
		Field: "rep.client.address.country", ValueA: "USA", ValueB: "Canada",
	}
	rec.Meta.Warnings = append(rec.Meta.Warnings,
		Warning{Code: "conflict", Field: "passport.surname", Message: "sources disagree"},
		Warning{Code: "ocr_noise", Field: "passport.sex", Message: "low quality"},
		Warning{Code: "conflict", Message: "no field"},
	)

	conflicts := rec.ConflictFields()
	assert.True(t, conflicts["rep.client.address.country"])
	assert.True(t, conflicts["passport.surname"])
	assert.False(t, conflicts["passport.sex"])
	assert.Len(t, conflicts, 2)
}

func TestAddSuggestionDedup(t *testing.T) {
	t.Parallel()

	rec := NewRecord()
	rec.AddSuggestion("passport.surname", Suggestion{Value: "Eriksson", Source: SourceLLM})
	rec.AddSuggestion("passport.surname", Suggestion{Value: "Eriksson", Source: SourceLLM})
	rec.AddSuggestion("passport.surname", Suggestion{Value: "Eriksson", Source: SourceMRZ})
	rec.AddSuggestion("passport.surname", Suggestion{Value: "Erikson", Source: SourceLLM})

	assert.Len(t, rec.Meta.Suggestions["passport.surname"], 3)
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	rec := NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))
	rec.Meta.Sources["passport.surname"] = SourceMRZ
	rec.Meta.Confidence["passport.surname"] = 0.97
	rec.Meta.Status["passport.surname"] = StatusGreen

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	decoded := NewRecord()
	require.NoError(t, json.Unmarshal(raw, decoded))
	assert.Equal(t, "Eriksson", decoded.Passport.Surname)
	assert.Equal(t, SourceMRZ, decoded.Meta.Sources["passport.surname"])
	assert.Equal(t, StatusGreen, decoded.Meta.Status["passport.surname"])
}

func TestAutofillReportRecord(t *testing.T) {
	t.Parallel()

	report := NewAutofillReport("https://forms.example.test/intake")
	report.Record(&FieldResult{Path: "passport.surname", Attempted: true, Result: OutcomePass})
	report.Record(&FieldResult{Path: "passport.sex", Attempted: true, Result: OutcomeFail, FailureReason: FailNoRadioMatch})
	report.Record(&FieldResult{Path: "rep.attorney.address.unit", Result: OutcomeSkip, FailureReason: FailNoValue})

	assert.Equal(t, []string{"passport.surname", "passport.sex"}, report.Attempted)
	assert.Equal(t, []string{"passport.surname"}, report.Filled)
	assert.Equal(t, FailNoRadioMatch, report.Failures["passport.sex"])
	assert.Len(t, report.Results, 3)
}

func TestOptionalSkip(t *testing.T) {
	t.Parallel()

	assert.True(t, OptionalSkip(FailSelectorNotFound))
	assert.True(t, OptionalSkip(FailCheckboxFalse))
	assert.True(t, OptionalSkip(FailDuplicateTarget))
	assert.False(t, OptionalSkip(FailReadbackMismatch))
	assert.False(t, OptionalSkip(FailSubmitGuard))
	assert.False(t, OptionalSkip(FailReadbackEmpty))
}
