package rules

import (
	"regexp"
	"strings"
)

// Values that mean "nothing here" rather than a wrong answer.
var placeholderValues = map[string]bool{
	"n/a": true, "na": true, "none": true,
	"not applicable": true, "not available": true,
	"unknown": true, "nil": true, "-": true,
}

// Phrases that indicate the OCR captured the form's own prompt text instead
// of a filled-in value.
var labelNoisePhrases = []string{
	"uscis online account number",
	"online account number",
	"account number",
	"receipt number",
	"alien registration number",
	"a-number",
	"if applicable",
	"if any",
	"ifapplicable",
	"ifany",
	"email address",
	"address if any",
	"street number and name",
	"street number",
	"number and name",
	"city or town",
	"zip code",
	"postal code",
	"usps zip code lookup",
	"family name",
	"given name",
	"middle name",
	"last name",
	"first name",
	"law firm name",
	"name of law firm",
	"organization name",
	"licensing authority",
	"bar number",
	"bar no",
	"daytime phone",
	"phone number",
	"mobile phone",
	"mobile number",
	"mobile telephone",
	"country",
	"state",
	"street",
	"address",
	"city",
	"town",
	"email",
	"phone",
	"telephone",
	"apt",
	"ste",
	"suite",
	"flr",
	"fir",
	"floor",
	"unit",
}

var headerTokens = []string{
	"form g-28",
	"notice of entry of appearance",
	"department of homeland security",
	"u.s. citizenship and immigration services",
	"uscis",
	"dhs",
	"attorney or accredited representative",
}

var labelNoiseWords = func() map[string]bool {
	words := make(map[string]bool)
	for _, phrase := range labelNoisePhrases {
		for _, tok := range strings.Fields(phrase) {
			words[tok] = true
		}
	}
	return words
}()

var (
	reNonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	reOnlySymbols = regexp.MustCompile(`^[^A-Za-z0-9]+$`)
	reHintMeta    = regexp.MustCompile(`[\\^$.|?*+()\[\]{}]`)
)

func noiseNormalize(text string) string {
	return strings.TrimSpace(reNonAlnum.ReplaceAllString(strings.ToLower(text), " "))
}

// normalizeLabelHint flattens a hint that may be a regex fragment into plain
// comparable words.
func normalizeLabelHint(pattern string) string {
	cleaned := strings.ReplaceAll(pattern, `\s`, " ")
	cleaned = reHintMeta.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, "_", " ")
	return noiseNormalize(cleaned)
}

// IsPlaceholder reports whether value is a "nothing here" marker.
func IsPlaceholder(value string) bool {
	if value == "" {
		return false
	}
	normalized := noiseNormalize(value)
	if normalized == "" {
		return true
	}
	collapsed := strings.ReplaceAll(normalized, " ", "")
	return placeholderValues[normalized] || placeholderValues[collapsed]
}

func tokensSubset(valueTokens, hintTokens []string) bool {
	if len(valueTokens) == 0 {
		return false
	}
	hintSet := make(map[string]bool, len(hintTokens))
	for _, t := range hintTokens {
		hintSet[t] = true
	}
	for _, t := range valueTokens {
		if !hintSet[t] {
			return false
		}
	}
	return true
}

// LooksLikeLabelValue detects an extracted value that is really the field's
// own prompt or placeholder, via the noise vocabulary and token-subset
// comparison against the field's label hints.
func LooksLikeLabelValue(value string, labelHints []string) bool {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return true
	}
	if IsPlaceholder(raw) {
		return true
	}
	normalized := noiseNormalize(raw)
	if normalized == "" {
		return true
	}

	if strings.Contains(normalized, "if any") || strings.Contains(normalized, "if applicable") {
		return true
	}

	for _, phrase := range labelNoisePhrases {
		if !strings.Contains(normalized, phrase) {
			continue
		}
		if normalized == phrase {
			return true
		}
		if len(strings.Fields(phrase)) >= 2 && len(strings.Fields(normalized)) <= 4 {
			return true
		}
	}

	for _, hint := range labelHints {
		hintNorm := normalizeLabelHint(hint)
		if hintNorm == "" {
			continue
		}
		if normalized == hintNorm {
			return true
		}
		hintTokens := strings.Fields(hintNorm)
		valueTokens := strings.Fields(normalized)
		if tokensSubset(valueTokens, hintTokens) && len(valueTokens) <= len(hintTokens)+1 {
			return true
		}
	}

	if reOnlySymbols.MatchString(raw) {
		return true
	}

	tokens := strings.Fields(normalized)
	if len(tokens) > 0 && len(tokens) <= 4 {
		all := true
		for _, t := range tokens {
			if !labelNoiseWords[t] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}

	return false
}

// LooksLikeLabelOrHeader extends label detection with document header text
// (form titles, agency names) that OCR tends to capture near field zones.
func LooksLikeLabelOrHeader(value string, labelHints []string) bool {
	if LooksLikeLabelValue(value, labelHints) {
		return true
	}
	lowered := strings.ToLower(value)
	for _, token := range headerTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}
