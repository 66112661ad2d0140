package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOrdering(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusRed.Worse(StatusAmber))
	assert.True(t, StatusAmber.Worse(StatusGreen))
	assert.False(t, StatusGreen.Worse(StatusGreen))
	assert.False(t, StatusUnknown.Worse(StatusGreen))

	assert.Equal(t, StatusAmber, StatusGreen.Floor(StatusAmber))
	assert.Equal(t, StatusRed, StatusRed.Floor(StatusAmber))
	assert.Equal(t, StatusGreen, StatusGreen.Floor(StatusGreen))
}

func TestResolvedFieldFrozen(t *testing.T) {
	t.Parallel()

	var nilField *ResolvedField
	assert.False(t, nilField.Frozen())

	assert.True(t, (&ResolvedField{Locked: true, Source: SourceUser}).Frozen())
	assert.True(t, (&ResolvedField{Locked: true, Source: SourceAI}).Frozen())
	assert.False(t, (&ResolvedField{Locked: true, Source: SourceMRZ}).Frozen())
	assert.False(t, (&ResolvedField{Locked: false, Source: SourceUser}).Frozen())
}
