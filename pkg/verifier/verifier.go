package verifier

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
)

const defaultModel = "claude-haiku-4-5-20251001"

const systemPrompt = `You review fields extracted by OCR from scanned identity and legal intake documents. For each field you receive the canonical value, the raw document evidence, and the outcome of deterministic validation.

For every input field return one verdict object:
- "field": the field path, copied exactly from the input.
- "verdict": "GREEN" when the value is clearly correct, "AMBER" when it is plausible but uncertain, "RED" when it is wrong or looks like captured form-label text instead of an answer.
- "score": your confidence in the verdict, 0.0 to 1.0.
- "reason": one short sentence.
- "suggested_value": a corrected value, ONLY if that exact text appears in the provided evidence. Never invent, reformat beyond whitespace, or guess. Omit when you have no grounded correction.
- "suggested_value_reason": why the suggestion is right, when present.
- "evidence": the evidence snippet supporting your verdict, when available.
- "requires_human_input": true when a person must decide.

Respond with a JSON array only. No prose, no markdown fences.`

// Verifier reviews field contexts through the Anthropic API. It satisfies
// the resolver's LLM client contract.
type Verifier struct {
	client      Client
	model       string
	maxTokens   int64
	temperature float64
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(v *Verifier) {
		if model != "" {
			v.model = model
		}
	}
}

// WithMaxTokens bounds the response size.
func WithMaxTokens(n int64) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.maxTokens = n
		}
	}
}

// New builds a Verifier over an Anthropic client.
func New(client Client, opts ...Option) *Verifier {
	v := &Verifier{
		client:    client,
		model:     defaultModel,
		maxTokens: 4096,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateFields sends one batch of field contexts for review and returns
// the parsed verdicts. A response that is not a parseable verdict array is
// an error; the caller decides how to degrade.
func (v *Verifier) ValidateFields(ctx context.Context, contexts []model.FieldContext) ([]model.LLMVerdict, error) {
	if len(contexts) == 0 {
		return nil, nil
	}

	payload, err := json.MarshalIndent(contexts, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "verifier: marshal contexts")
	}

	resp, err := v.client.CreateMessage(ctx, MessageRequest{
		Model:       v.model,
		MaxTokens:   v.maxTokens,
		Temperature: &v.temperature,
		System: []SystemBlock{{
			Text:         systemPrompt,
			CacheControl: &CacheControl{TTL: "5m"},
		}},
		Messages: []Message{{Role: "user", Content: string(payload)}},
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(v.model, "field_review")

	verdicts, err := parseVerdicts(resp)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("field review complete",
		zap.Int("fields", len(contexts)),
		zap.Int("verdicts", len(verdicts)),
	)
	return verdicts, nil
}

// parseVerdicts extracts the verdict array from the response text. Models
// occasionally wrap JSON in fences or preamble despite instructions, so the
// parser tolerates surrounding text but nothing looser.
func parseVerdicts(resp *MessageResponse) ([]model.LLMVerdict, error) {
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, eris.New("verifier: empty response")
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, eris.Errorf("verifier: no JSON array in response (stop_reason=%s)", resp.StopReason)
	}

	var verdicts []model.LLMVerdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &verdicts); err != nil {
		return nil, eris.Wrap(err, "verifier: malformed verdict array")
	}
	return verdicts, nil
}
