package model

import "time"

// Source identifies where a field value came from.
type Source string

const (
	SourceMRZ       Source = "MRZ"
	SourceOCR       Source = "OCR"
	SourceLLM       Source = "LLM"
	SourceAI        Source = "AI"
	SourceUser      Source = "USER"
	SourceMerge     Source = "MERGE"
	SourcePassport  Source = "PASSPORT"
	SourceValidator Source = "VALIDATOR"
)

// Status is the reconciliation traffic light for a field.
type Status string

const (
	StatusUnknown Status = "UNKNOWN"
	StatusGreen   Status = "GREEN"
	StatusAmber   Status = "AMBER"
	StatusRed     Status = "RED"
)

// rank orders statuses by severity for floor/ceiling comparisons.
func (s Status) rank() int {
	switch s {
	case StatusGreen:
		return 0
	case StatusAmber:
		return 1
	case StatusRed:
		return 2
	default:
		return -1
	}
}

// Worse reports whether s is more severe than other.
func (s Status) Worse(other Status) bool { return s.rank() > other.rank() }

// Floor returns the more severe of s and floor.
func (s Status) Floor(floor Status) Status {
	if floor.rank() > s.rank() {
		return floor
	}
	return s
}

// Presence signals whether a field's label was found in the source document,
// independent of whether a value was captured for it.
type Presence string

const (
	PresencePresent Presence = "present"
	PresenceAbsent  Presence = "absent"
	PresenceUnknown Presence = "unknown"
)

// Issue types attached to non-green resolutions.
const (
	IssueHumanRequired       = "HUMAN_REQUIRED"
	IssueAutofillFailed      = "AUTOFILL_FAILED"
	IssueNotPresentInDoc     = "NOT_PRESENT_IN_DOC"
	IssueEmptyRequired       = "EMPTY_REQUIRED"
	IssueEmptyOptional       = "EMPTY_OPTIONAL"
	IssueEmptyOptionalFound  = "EMPTY_OPTIONAL_PRESENT"
	IssueSuspectLabelCapture = "SUSPECT_LABEL_CAPTURE"
	IssueInvalidFormat       = "INVALID_FORMAT"
	IssueConflict            = "CONFLICT"
)

// HumanReasonCategory tells a reviewer why a field needs their attention.
type HumanReasonCategory string

const (
	ReasonOptionalEmpty     HumanReasonCategory = "OPTIONAL_EMPTY"
	ReasonMissingNotFound   HumanReasonCategory = "MISSING_NOT_FOUND"
	ReasonConflictSources   HumanReasonCategory = "CONFLICT_SOURCES"
	ReasonAutofillFailed    HumanReasonCategory = "AUTOFILL_FAILED"
	ReasonInvalidFormat     HumanReasonCategory = "INVALID_FORMAT"
	ReasonAmbiguousEvidence HumanReasonCategory = "AMBIGUOUS_EVIDENCE"
	ReasonHumanConsent      HumanReasonCategory = "HUMAN_CONSENT"
)

// Candidate is one extracted value for a field, as delivered by upstream
// extraction. Several may coexist; the resolver picks or confirms one.
type Candidate struct {
	Path       string   `json:"path"`
	Value      string   `json:"value"`
	Source     Source   `json:"source"`
	Evidence   string   `json:"evidence,omitempty"`
	Confidence float64  `json:"confidence"`
	Presence   Presence `json:"presence,omitempty"`
}

// Suggestion is an alternative value offered to the reviewer, never applied
// directly to the canonical record.
type Suggestion struct {
	Value    string `json:"value"`
	Source   Source `json:"source"`
	Reason   string `json:"reason,omitempty"`
	Evidence string `json:"evidence,omitempty"`
}

// Conflict records two credible sources disagreeing after normalization.
type Conflict struct {
	Field  string `json:"field"`
	ValueA string `json:"value_a"`
	ValueB string `json:"value_b"`
}

// RuleVerdict is the deterministic validator's outcome for one value.
type RuleVerdict struct {
	IsValid         bool     `json:"is_valid"`
	ReasonCodes     []string `json:"reason_codes,omitempty"`
	NormalizedValue string   `json:"normalized_value,omitempty"`
	ConfidenceDelta float64  `json:"confidence_delta"`
}

// LLMVerdict is the language-model reviewer's judgment for one field.
type LLMVerdict struct {
	Field                string  `json:"field"`
	Verdict              Status  `json:"verdict"`
	Score                float64 `json:"score"`
	Reason               string  `json:"reason,omitempty"`
	SuggestedValue       string  `json:"suggested_value,omitempty"`
	SuggestedValueReason string  `json:"suggested_value_reason,omitempty"`
	Evidence             string  `json:"evidence,omitempty"`
	RequiresHumanInput   bool    `json:"requires_human_input"`
}

// FieldContext is what the LLM reviewer sees for one field.
type FieldContext struct {
	Field               string   `json:"field"`
	Label               string   `json:"label"`
	ExpectedType        string   `json:"expected_type"`
	ExtractedValue      string   `json:"extracted_value"`
	DOMReadback         string   `json:"dom_readback_value,omitempty"`
	Evidence            string   `json:"evidence,omitempty"`
	Presence            Presence `json:"presence,omitempty"`
	DeterministicStatus Status   `json:"deterministic_status"`
	ReasonCodes         []string `json:"deterministic_reason_codes,omitempty"`
	DeterministicReason string   `json:"deterministic_reason,omitempty"`
	HumanRequired       bool     `json:"human_required"`
	HumanRequiredReason string   `json:"human_required_reason,omitempty"`
}

// ResolvedField is the versioned canonical snapshot for one field. Once
// Locked with Source USER or AI, Value and Status are frozen.
type ResolvedField struct {
	Path                string              `json:"path"`
	Value               string              `json:"value"`
	Status              Status              `json:"status"`
	Confidence          float64             `json:"confidence"`
	Source              Source              `json:"source"`
	Locked              bool                `json:"locked"`
	RequiresHumanInput  bool                `json:"requires_human_input"`
	Reason              string              `json:"reason,omitempty"`
	IssueType           string              `json:"issue_type,omitempty"`
	HumanReasonCategory HumanReasonCategory `json:"human_reason_category,omitempty"`
	Deterministic       *RuleVerdict        `json:"deterministic_validation,omitempty"`
	LLM                 *LLMVerdict         `json:"llm_validation,omitempty"`
	Suggestions         []Suggestion        `json:"suggestions,omitempty"`
	LastValidatedAt     time.Time           `json:"last_validated_at"`
	Version             int                 `json:"version"`
}

// Frozen reports whether the entry may no longer change value or status.
func (rf *ResolvedField) Frozen() bool {
	return rf != nil && rf.Locked && (rf.Source == SourceUser || rf.Source == SourceAI)
}
