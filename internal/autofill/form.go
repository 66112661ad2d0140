// Package autofill drives canonical field values into a third-party web
// form. Discovery and matching are fuzzy; every write is verified against a
// DOM readback, and nothing is ever submitted.
package autofill

// Option is one choice in a select or radio group.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Readback is the post-write state of an element, re-read from the live DOM.
type Readback struct {
	Value     string
	InputType string
	Checked   bool
	Selected  *Option
}

// Element is one interactive form control. Implementations wrap a live DOM
// node; tests use in-memory fakes. Mutators return an error for any DOM
// interaction failure, which the executor treats as that candidate's
// failure only.
type Element interface {
	// Tag returns the lowercase tag name (input, select, textarea, button).
	Tag() (string, error)
	// InputType returns the lowercase type attribute for inputs, or the
	// tag name for other elements.
	InputType() (string, error)
	// Fill sets a text-like value.
	Fill(value string) error
	// Options lists a select element's options.
	Options() ([]Option, error)
	// SelectByValue / SelectByLabel choose a select option.
	SelectByValue(value string) error
	SelectByLabel(label string) error
	// RadioOptions lists the element's radio group by shared name.
	RadioOptions() ([]Option, error)
	// CheckRadio clicks the group member whose value matches.
	CheckRadio(value string) error
	// Check ticks a checkbox.
	Check() error
	// Readback re-reads the element's current state.
	Readback() (Readback, error)
}

// Form is a loaded page's fillable surface. Writes go through Element;
// the Form itself is read-only traversal.
type Form interface {
	// URL returns the form's current address.
	URL() string
	// Candidates discovers the interactive elements and their associated
	// label text. Rebuilt per run, never persisted.
	Candidates() ([]FormCandidate, error)
	// Element resolves a candidate locator to a live element.
	Element(locator string) (Element, error)
	// Query returns the first element matching a CSS selector, if any.
	Query(selector string) (Element, bool)
}

// FormCandidate pairs discovered label text with an element locator.
type FormCandidate struct {
	Label   string
	Locator string
}
