package resolver

import (
	"regexp"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

var (
	reWS       = regexp.MustCompile(`\s+`)
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]`)
)

// finalStatus merges the deterministic status with an LLM verdict. The
// merge is asymmetric: the model can settle an amber either way, soften a
// green by one step, and lift a red no higher than amber. It can never turn
// a deterministic red green or a deterministic green red.
func finalStatus(det model.Status, llm model.Status) model.Status {
	switch det {
	case model.StatusRed:
		if llm == model.StatusGreen {
			return model.StatusAmber
		}
		return model.StatusRed
	case model.StatusAmber:
		switch llm {
		case model.StatusGreen:
			return model.StatusGreen
		case model.StatusRed:
			return model.StatusRed
		}
		return model.StatusAmber
	case model.StatusGreen:
		if llm == model.StatusAmber || llm == model.StatusRed {
			return model.StatusAmber
		}
		return model.StatusGreen
	}
	if llm != "" {
		return llm
	}
	return det
}

func normalizeVerdict(raw model.Status) model.Status {
	switch model.Status(strings.ToUpper(strings.TrimSpace(string(raw)))) {
	case model.StatusGreen:
		return model.StatusGreen
	case model.StatusAmber:
		return model.StatusAmber
	case model.StatusRed:
		return model.StatusRed
	}
	return ""
}

// suggestionGrounded reports whether the suggested value appears in the
// cited evidence, verbatim or after whitespace/punctuation stripping. An
// ungrounded suggestion is discarded no matter how confident the model was.
func suggestionGrounded(suggested, evidence string) bool {
	if suggested == "" || evidence == "" {
		return false
	}
	if strings.Contains(strings.ToLower(evidence), strings.ToLower(suggested)) {
		return true
	}
	evNorm := strings.ToLower(reWS.ReplaceAllString(evidence, ""))
	valNorm := strings.ToLower(reWS.ReplaceAllString(suggested, ""))
	if valNorm != "" && strings.Contains(evNorm, valNorm) {
		return true
	}
	evAlnum := reNonAlnum.ReplaceAllString(strings.ToLower(evidence), "")
	valAlnum := reNonAlnum.ReplaceAllString(strings.ToLower(suggested), "")
	return valAlnum != "" && strings.Contains(evAlnum, valAlnum)
}

// trivialNormalization reports whether a and b differ only in case,
// whitespace, or punctuation.
func trivialNormalization(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aNorm := reNonAlnum.ReplaceAllString(strings.ToLower(a), "")
	bNorm := reNonAlnum.ReplaceAllString(strings.ToLower(b), "")
	return aNorm != "" && aNorm == bNorm
}

// Issue types for which a grounded replacement suggestion may be proposed
// even without a conflict.
var suggestibleIssues = map[string]bool{
	model.IssueSuspectLabelCapture: true,
	model.IssueInvalidFormat:       true,
	model.IssueEmptyRequired:       true,
	model.IssueEmptyOptionalFound:  true,
	model.IssueNotPresentInDoc:     true,
}
