// Package confidence scores extracted values by source authority and content
// richness. Scores are deterministic: the same inputs always produce the
// same score, and within one source tier a denser, evidenced value never
// scores below a sparser one.
package confidence

import (
	"math"
	"strings"
	"unicode"

	"github.com/sells-group/intake-cli/internal/model"
)

// MatchQuality distinguishes how an OCR value was located in the text.
type MatchQuality string

const (
	MatchExact MatchQuality = "exact"
	MatchFuzzy MatchQuality = "fuzzy"
)

// Base returns the source-tier base score. MRZ outranks derived sources,
// which outrank model output, which outranks raw OCR.
func Base(source model.Source, quality MatchQuality) float64 {
	switch source {
	case model.SourceMRZ:
		return 0.95
	case model.SourceUser:
		return 1.0
	case model.SourceValidator, model.SourceMerge, model.SourcePassport:
		return 0.85
	case model.SourceLLM, model.SourceAI:
		return 0.7
	case model.SourceOCR:
		if quality == MatchFuzzy {
			return 0.6
		}
		return 0.75
	}
	return 0.7
}

// richness returns a bounded [0, 0.15] bonus: up to 0.1 for length, up to
// 0.03 for alphanumeric balance, 0.02 for having surrounding evidence.
func richness(value, evidence string) float64 {
	text := strings.TrimSpace(value)
	if text == "" {
		return 0
	}
	lengthBonus := math.Min(float64(len(text))/32, 1.0) * 0.1

	hasAlpha, hasDigit := false, false
	for _, ch := range text {
		if unicode.IsLetter(ch) {
			hasAlpha = true
		}
		if unicode.IsDigit(ch) {
			hasDigit = true
		}
	}
	balanceBonus := 0.0
	if hasAlpha {
		balanceBonus += 0.015
	}
	if hasDigit {
		balanceBonus += 0.015
	}

	evidenceBonus := 0.0
	if evidence != "" {
		evidenceBonus = 0.02
	}
	return lengthBonus + balanceBonus + evidenceBonus
}

// Estimate scores one value. USER is pinned to 1.0; everything else is
// capped at 0.99 and rounded to two decimals.
func Estimate(source model.Source, value, evidence string, quality MatchQuality) float64 {
	if source == model.SourceUser {
		return 1.0
	}
	score := Base(source, quality) + richness(value, evidence)
	score = math.Max(0, math.Min(0.99, score))
	return math.Round(score*100) / 100
}

// SetField writes a value into the record graph and records its provenance.
// A nil-equivalent empty value is ignored. Pass confidence < 0 to have it
// estimated from the source and evidence.
func SetField(rec *model.Record, path, value string, source model.Source, conf float64, evidence string, quality MatchQuality) error {
	if value == "" {
		return nil
	}
	if err := rec.SetPath(path, value); err != nil {
		return err
	}
	rec.Meta.Sources[path] = source
	if conf < 0 {
		conf = Estimate(source, value, evidence, quality)
	}
	rec.Meta.Confidence[path] = conf
	if _, ok := rec.Meta.Status[path]; !ok {
		rec.Meta.Status[path] = model.StatusUnknown
	}
	if evidence != "" {
		rec.Meta.Evidence[path] = evidence
	}
	return nil
}
