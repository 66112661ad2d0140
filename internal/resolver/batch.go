package resolver

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/intake-cli/internal/model"
)

// LLMClient reviews a batch of field contexts and returns one verdict per
// field. Implementations must treat a malformed upstream response as an
// error, never a panic.
type LLMClient interface {
	ValidateFields(ctx context.Context, contexts []model.FieldContext) ([]model.LLMVerdict, error)
}

const (
	defaultTargetTokens   = 3500
	defaultTokensPerField = 40
	minBatchSize          = 5
)

// estimateTokens is the usual chars/4 approximation; it only drives batch
// sizing, not billing.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

func estimateContextTokens(contexts []model.FieldContext) int {
	payload, err := json.Marshal(contexts)
	if err != nil {
		return defaultTokensPerField * len(contexts)
	}
	return estimateTokens(string(payload)) + defaultTokensPerField*len(contexts)
}

// batchSize splits contexts so each request stays near the token target.
// Zero means "send everything in one request".
func batchSize(contexts []model.FieldContext, targetTokens int) int {
	if len(contexts) == 0 {
		return 0
	}
	if targetTokens <= 0 {
		targetTokens = defaultTargetTokens
	}
	est := estimateContextTokens(contexts)
	if est <= targetTokens {
		return 0
	}
	perItem := est / len(contexts)
	if perItem < 1 {
		perItem = 1
	}
	batch := targetTokens / perItem
	if batch < minBatchSize {
		batch = minBatchSize
	}
	if batch >= len(contexts) {
		return 0
	}
	return batch
}

func chunkContexts(contexts []model.FieldContext, size int) [][]model.FieldContext {
	if size <= 0 {
		return [][]model.FieldContext{contexts}
	}
	var out [][]model.FieldContext
	for i := 0; i < len(contexts); i += size {
		end := i + size
		if end > len(contexts) {
			end = len(contexts)
		}
		out = append(out, contexts[i:end])
	}
	return out
}

// runLLMBatches fans the batches out concurrently and merges results back by
// field path. Batch order carries no meaning. A failed batch surfaces as a
// warning string, never an error: one flaky call must not block the run.
func (r *Resolver) runLLMBatches(ctx context.Context, contexts []model.FieldContext) (map[string]model.LLMVerdict, string) {
	results := make(map[string]model.LLMVerdict, len(contexts))
	var (
		mu     sync.Mutex
		errs   []string
		seen   = make(map[string]bool)
		g, gtx = errgroup.WithContext(ctx)
	)
	g.SetLimit(r.llmConcurrency)

	for _, batch := range chunkContexts(contexts, batchSize(contexts, r.llmTargetTokens)) {
		batch := batch
		g.Go(func() error {
			if r.limiter != nil {
				if err := r.limiter.Wait(gtx); err != nil {
					mu.Lock()
					errs = append(errs, err.Error())
					mu.Unlock()
					return nil
				}
			}
			verdicts, err := r.llm.ValidateFields(gtx, batch)
			if err != nil {
				zap.L().Warn("llm validation batch failed",
					zap.Int("fields", len(batch)), zap.Error(err))
				mu.Lock()
				errs = append(errs, err.Error())
				mu.Unlock()
				return nil
			}
			mu.Lock()
			for _, v := range verdicts {
				if v.Field != "" {
					results[v.Field] = v
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var unique []string
	for _, e := range errs {
		if !seen[e] {
			seen[e] = true
			unique = append(unique, e)
		}
	}
	return results, strings.Join(unique, "; ")
}
