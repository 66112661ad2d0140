package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/intake-cli/internal/model"
)

func TestFinalStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		det, llm, want model.Status
	}{
		{model.StatusGreen, model.StatusGreen, model.StatusGreen},
		{model.StatusGreen, model.StatusAmber, model.StatusAmber},
		{model.StatusGreen, model.StatusRed, model.StatusAmber},
		{model.StatusAmber, model.StatusGreen, model.StatusGreen},
		{model.StatusAmber, model.StatusAmber, model.StatusAmber},
		{model.StatusAmber, model.StatusRed, model.StatusRed},
		{model.StatusRed, model.StatusGreen, model.StatusAmber},
		{model.StatusRed, model.StatusAmber, model.StatusRed},
		{model.StatusRed, model.StatusRed, model.StatusRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, finalStatus(tt.det, tt.llm), "%s + %s", tt.det, tt.llm)
	}
}

func TestNormalizeVerdict(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.StatusGreen, normalizeVerdict("green"))
	assert.Equal(t, model.StatusAmber, normalizeVerdict(" AMBER "))
	assert.Equal(t, model.StatusRed, normalizeVerdict("Red"))
	assert.Equal(t, model.Status(""), normalizeVerdict("maybe"))
}

func TestSuggestionGrounded(t *testing.T) {
	t.Parallel()

	assert.True(t, suggestionGrounded("Eriksson", "Surname: ERIKSSON"))
	assert.True(t, suggestionGrounded("L898902C3", "passport no. L 898 902 C3"))
	assert.True(t, suggestionGrounded("212-555-0173", "Phone: (212) 555 0173"))
	assert.False(t, suggestionGrounded("Eriksson", "Surname: SVENSSON"))
	assert.False(t, suggestionGrounded("", "anything"))
	assert.False(t, suggestionGrounded("value", ""))
}

func TestTrivialNormalization(t *testing.T) {
	t.Parallel()

	assert.True(t, trivialNormalization("NEW YORK", "new york"))
	assert.True(t, trivialNormalization("212-555-0173", "(212) 555 0173"))
	assert.False(t, trivialNormalization("Eriksson", "Erikson"))
	assert.False(t, trivialNormalization("", "x"))
}
