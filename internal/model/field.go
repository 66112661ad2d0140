package model

// FieldType classifies a field for validation and autofill dispatch.
type FieldType string

const (
	TypeName           FieldType = "name"
	TypeDatePast       FieldType = "date_past"
	TypeDateFuture     FieldType = "date_future"
	TypeEmail          FieldType = "email"
	TypePhone          FieldType = "phone"
	TypeState          FieldType = "state"
	TypeZip            FieldType = "zip"
	TypePassportNumber FieldType = "passport_number"
	TypeSex            FieldType = "sex"
	TypeText           FieldType = "text"
	TypeCheckbox       FieldType = "checkbox"
)

// AutofillSpec declares how a field maps onto the destination form.
// Labels are ordered from most to least specific.
type AutofillSpec struct {
	Labels []string `json:"labels" yaml:"labels"`
	Order  int      `json:"order" yaml:"order"`
}

// FieldSpec is the static declaration of one canonical field.
type FieldSpec struct {
	Path                string        `json:"path" yaml:"path"`
	Group               string        `json:"group" yaml:"group"`
	Type                FieldType     `json:"type" yaml:"type"`
	Required            bool          `json:"required" yaml:"required"`
	Label               string        `json:"label" yaml:"label"`
	LabelHints          []string      `json:"label_hints,omitempty" yaml:"label_hints,omitempty"`
	Autofill            *AutofillSpec `json:"autofill,omitempty" yaml:"autofill,omitempty"`
	Validate            bool          `json:"validate" yaml:"validate"`
	HumanRequired       bool          `json:"human_required" yaml:"human_required"`
	HumanRequiredReason string        `json:"human_required_reason,omitempty" yaml:"human_required_reason,omitempty"`
	// LLMAlways forces the LLM verification pass for this field regardless
	// of the scope policy's skip heuristics.
	LLMAlways bool `json:"llm_always" yaml:"llm_always"`
}
