package model

// Autofill outcome classes.
const (
	OutcomePass = "PASS"
	OutcomeFail = "FAIL"
	OutcomeSkip = "SKIP"
)

// Stable failure reason codes. SKIP-vs-FAIL policy branches on these, so the
// strings are part of the contract.
const (
	FailSelectorNotFound   = "selector_not_found"
	FailNoMatch            = "no_match"
	FailNoSelectMatch      = "no_select_match"
	FailNoRadioMatch       = "no_radio_match"
	FailDuplicateTarget    = "duplicate_target"
	FailCheckboxFalse      = "checkbox_value_false"
	FailSubmitGuard        = "submit_guard"
	FailReadbackMismatch   = "readback_mismatch"
	FailReadbackEmpty      = "readback_empty"
	FailUnsupportedElement = "unsupported_element"
	FailElementError       = "element_error"
	FailNoValue            = "no_value"
)

// optionalSkipReasons are the failures that downgrade to SKIP when the field
// is optional.
var optionalSkipReasons = map[string]bool{
	FailSelectorNotFound: true,
	FailNoMatch:          true,
	FailNoSelectMatch:    true,
	FailNoRadioMatch:     true,
	FailDuplicateTarget:  true,
	FailCheckboxFalse:    true,
}

// OptionalSkip reports whether reason downgrades an optional field's failure
// to SKIP.
func OptionalSkip(reason string) bool { return optionalSkipReasons[reason] }

// FieldResult is the autofill outcome for one field in one run.
type FieldResult struct {
	Path             string   `json:"path"`
	Attempted        bool     `json:"attempted"`
	SelectorUsed     string   `json:"selector_used,omitempty"`
	DOMReadback      string   `json:"dom_readback_value,omitempty"`
	Result           string   `json:"result"`
	FailureReason    string   `json:"failure_reason,omitempty"`
	InputType        string   `json:"input_type,omitempty"`
	AvailableOptions []string `json:"available_options,omitempty"`
}

// AutofillReport aggregates one automation run.
type AutofillReport struct {
	Attempted []string                `json:"attempted_fields"`
	Filled    []string                `json:"filled_fields"`
	Failures  map[string]string       `json:"fill_failures"`
	Results   map[string]*FieldResult `json:"results"`
	FormURL   string                  `json:"form_url"`
	Fatal     string                  `json:"fatal_error,omitempty"`
}

// NewAutofillReport returns an empty report for url.
func NewAutofillReport(url string) *AutofillReport {
	return &AutofillReport{
		Failures: make(map[string]string),
		Results:  make(map[string]*FieldResult),
		FormURL:  url,
	}
}

// Record files one field result into the aggregate views.
func (r *AutofillReport) Record(res *FieldResult) {
	r.Results[res.Path] = res
	if res.Attempted {
		r.Attempted = append(r.Attempted, res.Path)
	}
	switch res.Result {
	case OutcomePass:
		r.Filled = append(r.Filled, res.Path)
	case OutcomeFail:
		r.Failures[res.Path] = res.FailureReason
	}
}
