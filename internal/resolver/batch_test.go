package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/rules"
)

func TestBatchSize(t *testing.T) {
	t.Parallel()

	t.Run("small payload goes in one request", func(t *testing.T) {
		t.Parallel()
		contexts := []model.FieldContext{{Field: "passport.surname"}, {Field: "passport.sex"}}
		assert.Equal(t, 0, batchSize(contexts, 3500))
	})

	t.Run("large payload splits", func(t *testing.T) {
		t.Parallel()
		var contexts []model.FieldContext
		filler := strings.Repeat("evidence text ", 40)
		for i := 0; i < 60; i++ {
			contexts = append(contexts, model.FieldContext{
				Field:    fmt.Sprintf("field.%d", i),
				Evidence: filler,
			})
		}
		size := batchSize(contexts, 3500)
		require.Greater(t, size, 0)
		assert.GreaterOrEqual(t, size, minBatchSize)
		assert.Less(t, size, len(contexts))
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, batchSize(nil, 3500))
	})
}

func TestChunkContexts(t *testing.T) {
	t.Parallel()

	contexts := make([]model.FieldContext, 7)
	chunks := chunkContexts(contexts, 3)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[1], 3)
	assert.Len(t, chunks[2], 1)

	whole := chunkContexts(contexts, 0)
	require.Len(t, whole, 1)
	assert.Len(t, whole[0], 7)
}

// countingLLM records batch shapes under lock; batches run concurrently.
type countingLLM struct {
	mu      sync.Mutex
	batches [][]model.FieldContext
	fail    bool
}

func (c *countingLLM) ValidateFields(ctx context.Context, contexts []model.FieldContext) ([]model.LLMVerdict, error) {
	c.mu.Lock()
	c.batches = append(c.batches, contexts)
	c.mu.Unlock()
	if c.fail {
		return nil, fmt.Errorf("upstream unavailable")
	}
	out := make([]model.LLMVerdict, len(contexts))
	for i, fc := range contexts {
		out[i] = model.LLMVerdict{Field: fc.Field, Verdict: model.StatusGreen}
	}
	return out, nil
}

func TestRunLLMBatches(t *testing.T) {
	t.Parallel()

	t.Run("merges results across batches", func(t *testing.T) {
		t.Parallel()
		llm := &countingLLM{}
		r := New(model.DefaultRegistry(), rules.New(), WithLLM(llm, ScopeAll), WithTokenTarget(200))

		var contexts []model.FieldContext
		filler := strings.Repeat("x", 200)
		for i := 0; i < 20; i++ {
			contexts = append(contexts, model.FieldContext{Field: fmt.Sprintf("field.%d", i), Evidence: filler})
		}

		results, errMsg := r.runLLMBatches(context.Background(), contexts)
		assert.Empty(t, errMsg)
		assert.Len(t, results, 20)
		assert.Greater(t, len(llm.batches), 1)
	})

	t.Run("failed batch reported as warning", func(t *testing.T) {
		t.Parallel()
		llm := &countingLLM{fail: true}
		r := New(model.DefaultRegistry(), rules.New(), WithLLM(llm, ScopeAll))

		results, errMsg := r.runLLMBatches(context.Background(), []model.FieldContext{{Field: "passport.surname"}})
		assert.Empty(t, results)
		assert.Contains(t, errMsg, "upstream unavailable")
	})
}
