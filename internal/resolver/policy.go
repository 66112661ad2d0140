package resolver

import "github.com/sells-group/intake-cli/internal/model"

// Scope controls which fields get an LLM verification pass.
type Scope string

const (
	// ScopeSmart skips clear non-issues and focuses on autofilled and
	// risky fields. The default.
	ScopeSmart Scope = "smart"
	// ScopeAll reviews every field.
	ScopeAll Scope = "all"
	// ScopeIssues reviews only conflicted, failed, or non-green fields.
	ScopeIssues Scope = "issues"
	// ScopeRequiredOnly reviews required fields that carry a value.
	ScopeRequiredOnly Scope = "required_only"
)

// ParseScope maps a config string to a Scope, defaulting to smart.
func ParseScope(raw string) Scope {
	switch Scope(raw) {
	case ScopeAll, ScopeSmart, ScopeRequiredOnly:
		return Scope(raw)
	case ScopeIssues, "issues_only":
		return ScopeIssues
	}
	return ScopeSmart
}

// Types where a value that passed the cheap rules can still be wrong in
// expensive ways.
var highRiskTypes = map[model.FieldType]bool{
	model.TypeName:           true,
	model.TypeDatePast:       true,
	model.TypeDateFuture:     true,
	model.TypePassportNumber: true,
	model.TypeEmail:          true,
	model.TypePhone:          true,
	model.TypeState:          true,
	model.TypeZip:            true,
	model.TypeSex:            true,
}

// shouldInvokeLLM decides whether one field gets an LLM pass. Locked fields
// are excluded by the caller before this runs.
func (s Scope) shouldInvokeLLM(spec *model.FieldSpec, det model.Status, conflict bool, failureReason string, presence model.Presence, valueMissing, attempted bool) bool {
	switch s {
	case ScopeAll:
		return true
	case ScopeIssues:
		return conflict || failureReason != "" || det == model.StatusAmber || det == model.StatusRed
	case ScopeRequiredOnly:
		return spec.Required && !valueMissing
	}

	if spec.LLMAlways && !valueMissing {
		return true
	}
	if spec.HumanRequired {
		return false
	}
	if valueMissing && !spec.Required && presence == model.PresenceAbsent && !attempted {
		return false
	}
	if conflict || failureReason != "" || det == model.StatusAmber || det == model.StatusRed {
		return true
	}
	if attempted {
		return true
	}
	if spec.Required && !valueMissing {
		return true
	}
	return !valueMissing && highRiskTypes[spec.Type]
}
