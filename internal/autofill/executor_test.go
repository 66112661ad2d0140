package autofill

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

// fakeElement is an in-memory form control.
type fakeElement struct {
	tag        string
	inputType  string
	value      string
	checked    bool
	options    []Option
	selected   *Option
	radioGroup []Option
	picked     string

	fillErr        error
	stickyValue    string // readback returns this instead of the written value
	stuckUnchecked bool   // Check succeeds but the DOM never reflects it
}

func (e *fakeElement) Tag() (string, error)       { return e.tag, nil }
func (e *fakeElement) InputType() (string, error) { return e.inputType, nil }

func (e *fakeElement) Fill(value string) error {
	if e.fillErr != nil {
		return e.fillErr
	}
	e.value = value
	return nil
}

func (e *fakeElement) Options() ([]Option, error) { return e.options, nil }

func (e *fakeElement) SelectByValue(value string) error {
	for i := range e.options {
		if e.options[i].Value == value {
			e.selected = &e.options[i]
			return nil
		}
	}
	return eris.Errorf("no option %q", value)
}

func (e *fakeElement) SelectByLabel(label string) error {
	for i := range e.options {
		if e.options[i].Label == label {
			e.selected = &e.options[i]
			return nil
		}
	}
	return eris.Errorf("no option %q", label)
}

func (e *fakeElement) RadioOptions() ([]Option, error) { return e.radioGroup, nil }

func (e *fakeElement) CheckRadio(value string) error {
	for _, opt := range e.radioGroup {
		if opt.Value == value {
			e.picked = value
			return nil
		}
	}
	return eris.Errorf("no radio %q", value)
}

func (e *fakeElement) Check() error {
	if !e.stuckUnchecked {
		e.checked = true
	}
	return nil
}

func (e *fakeElement) Readback() (Readback, error) {
	rb := Readback{Value: e.value, InputType: e.inputType, Checked: e.checked}
	if e.stickyValue != "" {
		rb.Value = e.stickyValue
	}
	switch e.tag {
	case "select":
		rb.InputType = "select"
		if e.selected != nil {
			rb.Value = e.selected.Value
			rb.Selected = e.selected
		}
	case "input":
		if e.inputType == "radio" {
			rb.Value = e.picked
		}
	}
	return rb, nil
}

// fakeForm holds elements by locator and by query selector.
type fakeForm struct {
	url        string
	candidates []FormCandidate
	candErr    error
	elements   map[string]*fakeElement
	queries    map[string]*fakeElement
}

func (f *fakeForm) URL() string { return f.url }

func (f *fakeForm) Candidates() ([]FormCandidate, error) {
	if f.candErr != nil {
		return nil, f.candErr
	}
	return f.candidates, nil
}

func (f *fakeForm) Element(locator string) (Element, error) {
	el, ok := f.elements[locator]
	if !ok {
		return nil, eris.Errorf("no element at %s", locator)
	}
	return el, nil
}

func (f *fakeForm) Query(selector string) (Element, bool) {
	el, ok := f.queries[selector]
	return el, ok
}

func textInput() *fakeElement { return &fakeElement{tag: "input", inputType: "text"} }

func mustRegistry(t *testing.T, specs ...model.FieldSpec) *model.Registry {
	t.Helper()
	reg, err := model.NewRegistry(specs)
	require.NoError(t, err)
	return reg
}

func surnameSpec(required bool) model.FieldSpec {
	return model.FieldSpec{
		Path: "passport.surname", Group: "passport", Type: model.TypeName, Required: required,
		Autofill: &model.AutofillSpec{Labels: []string{"family name", "last name"}, Order: 1},
	}
}

func TestExecutorFillsTextField(t *testing.T) {
	t.Parallel()

	el := textInput()
	form := &fakeForm{
		url:        "https://forms.example.test/intake",
		candidates: []FormCandidate{{Label: "Family Name", Locator: "#family"}},
		elements:   map[string]*fakeElement{"#family": el},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))

	report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(rec)

	res := report.Results["passport.surname"]
	require.NotNil(t, res)
	assert.Equal(t, model.OutcomePass, res.Result)
	assert.Equal(t, "#family", res.SelectorUsed)
	assert.Equal(t, "Eriksson", res.DOMReadback)
	assert.Equal(t, "Eriksson", el.value)
	assert.Equal(t, []string{"passport.surname"}, report.Filled)
}

func TestExecutorResolvedOverrideWins(t *testing.T) {
	t.Parallel()

	el := textInput()
	form := &fakeForm{
		candidates: []FormCandidate{{Label: "Family Name", Locator: "#family"}},
		elements:   map[string]*fakeElement{"#family": el},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Erikson"))
	rec.Meta.Resolved["passport.surname"] = &model.ResolvedField{
		Path: "passport.surname", Value: "Eriksson", Source: model.SourceUser, Locked: true,
	}

	report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(rec)
	assert.Equal(t, "Eriksson", el.value)
	assert.Equal(t, model.OutcomePass, report.Results["passport.surname"].Result)
}

func TestExecutorSkipsEmptyValue(t *testing.T) {
	t.Parallel()

	form := &fakeForm{candidates: []FormCandidate{{Label: "Family Name", Locator: "#family"}}}
	report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(model.NewRecord())

	res := report.Results["passport.surname"]
	assert.Equal(t, model.OutcomeSkip, res.Result)
	assert.Equal(t, model.FailNoValue, res.FailureReason)
	assert.False(t, res.Attempted)
}

func TestExecutorSelectorNotFound(t *testing.T) {
	t.Parallel()

	form := &fakeForm{candidates: []FormCandidate{{Label: "Passport Number", Locator: "#pn"}}}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))

	t.Run("required fails", func(t *testing.T) {
		t.Parallel()
		report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(rec)
		res := report.Results["passport.surname"]
		assert.Equal(t, model.OutcomeFail, res.Result)
		assert.Equal(t, model.FailSelectorNotFound, res.FailureReason)
	})

	t.Run("optional skips", func(t *testing.T) {
		t.Parallel()
		report := NewExecutor(form, mustRegistry(t, surnameSpec(false))).Run(rec)
		res := report.Results["passport.surname"]
		assert.Equal(t, model.OutcomeSkip, res.Result)
		assert.Equal(t, model.FailSelectorNotFound, res.FailureReason)
	})
}

func TestExecutorSubmitGuard(t *testing.T) {
	t.Parallel()

	// The label heuristic blocks the write before any DOM interaction.
	form := &fakeForm{
		candidates: []FormCandidate{{Label: "Last Name Sign", Locator: "#submit"}},
		elements:   map[string]*fakeElement{"#submit": {tag: "input", inputType: "submit"}},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))

	report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(rec)
	res := report.Results["passport.surname"]
	assert.Equal(t, model.OutcomeFail, res.Result)
	assert.Equal(t, model.FailSubmitGuard, res.FailureReason)
	assert.Empty(t, report.Filled)
}

func TestExecutorButtonNeverWritten(t *testing.T) {
	t.Parallel()

	form := &fakeForm{
		candidates: []FormCandidate{{Label: "Last name", Locator: "#btn"}},
		elements:   map[string]*fakeElement{"#btn": {tag: "button", inputType: "button"}},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))

	report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(rec)
	assert.Equal(t, model.FailSubmitGuard, report.Results["passport.surname"].FailureReason)
}

func TestExecutorReadbackMismatchFallsThrough(t *testing.T) {
	t.Parallel()

	// First-ranked element silently drops the write; the fold moves to the
	// next candidate and succeeds there.
	sticky := &fakeElement{tag: "input", inputType: "text", stickyValue: "autocomplete junk"}
	good := textInput()
	form := &fakeForm{
		candidates: []FormCandidate{
			{Label: "Family Name", Locator: "#a"},
			{Label: "Family Name", Locator: "#b"},
		},
		elements: map[string]*fakeElement{"#a": sticky, "#b": good},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))

	report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(rec)
	res := report.Results["passport.surname"]
	assert.Equal(t, model.OutcomePass, res.Result)
	assert.Equal(t, "#b", res.SelectorUsed)
}

func TestExecutorReadbackMismatchIsFatalWhenAlone(t *testing.T) {
	t.Parallel()

	sticky := &fakeElement{tag: "input", inputType: "text", stickyValue: "junk"}
	form := &fakeForm{
		candidates: []FormCandidate{{Label: "Family Name", Locator: "#a"}},
		elements:   map[string]*fakeElement{"#a": sticky},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))

	// readback_mismatch never downgrades to SKIP, even for optional fields.
	report := NewExecutor(form, mustRegistry(t, surnameSpec(false))).Run(rec)
	res := report.Results["passport.surname"]
	assert.Equal(t, model.OutcomeFail, res.Result)
	assert.Equal(t, model.FailReadbackMismatch, res.FailureReason)
}

func TestExecutorDuplicateTarget(t *testing.T) {
	t.Parallel()

	shared := textInput()
	reg := mustRegistry(t,
		surnameSpec(true),
		model.FieldSpec{
			Path: "rep.client.family_name", Group: "client", Type: model.TypeName,
			Autofill: &model.AutofillSpec{Labels: []string{"family name"}, Order: 2},
		},
	)
	form := &fakeForm{
		candidates: []FormCandidate{{Label: "Family Name", Locator: "#family"}},
		elements:   map[string]*fakeElement{"#family": shared},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))
	require.NoError(t, rec.SetPath("rep.client.family_name", "Eriksson"))

	report := NewExecutor(form, reg).Run(rec)

	assert.Equal(t, model.OutcomePass, report.Results["passport.surname"].Result)
	second := report.Results["rep.client.family_name"]
	assert.Equal(t, model.OutcomeSkip, second.Result)
	assert.Equal(t, model.FailDuplicateTarget, second.FailureReason)
}

func TestExecutorSelect(t *testing.T) {
	t.Parallel()

	stateSpec := model.FieldSpec{
		Path: "rep.client.address.state", Group: "client", Type: model.TypeState, Required: true,
		Autofill: &model.AutofillSpec{Labels: []string{"state"}, Order: 1},
	}
	options := []Option{{Value: "NY", Label: "New York"}, {Value: "CA", Label: "California"}}

	run := func(t *testing.T, value string) (*fakeElement, *model.FieldResult) {
		t.Helper()
		el := &fakeElement{tag: "select", inputType: "select", options: options}
		form := &fakeForm{
			candidates: []FormCandidate{{Label: "State", Locator: "#state"}},
			elements:   map[string]*fakeElement{"#state": el},
		}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.client.address.state", value))
		report := NewExecutor(form, mustRegistry(t, stateSpec)).Run(rec)
		return el, report.Results["rep.client.address.state"]
	}

	t.Run("by value", func(t *testing.T) {
		t.Parallel()
		el, res := run(t, "NY")
		assert.Equal(t, model.OutcomePass, res.Result)
		require.NotNil(t, el.selected)
		assert.Equal(t, "NY", el.selected.Value)
		assert.Equal(t, []string{"New York", "California"}, res.AvailableOptions)
	})

	t.Run("by label", func(t *testing.T) {
		t.Parallel()
		el, res := run(t, "California")
		assert.Equal(t, model.OutcomePass, res.Result)
		require.NotNil(t, el.selected)
		assert.Equal(t, "CA", el.selected.Value)
	})

	t.Run("no option", func(t *testing.T) {
		t.Parallel()
		_, res := run(t, "Texas")
		assert.Equal(t, model.OutcomeFail, res.Result)
		assert.Equal(t, model.FailNoSelectMatch, res.FailureReason)
	})
}

func TestExecutorRadio(t *testing.T) {
	t.Parallel()

	sexSpec := model.FieldSpec{
		Path: "passport.sex", Group: "passport", Type: model.TypeSex, Required: true,
		Autofill: &model.AutofillSpec{Labels: []string{"sex", "gender"}, Order: 1},
	}
	group := []Option{{Value: "male", Label: "Male"}, {Value: "female", Label: "Female"}}

	el := &fakeElement{tag: "input", inputType: "radio", radioGroup: group}
	form := &fakeForm{
		candidates: []FormCandidate{{Label: "Sex", Locator: "#sex-m"}},
		elements:   map[string]*fakeElement{"#sex-m": el},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.sex", "F"))

	report := NewExecutor(form, mustRegistry(t, sexSpec)).Run(rec)
	res := report.Results["passport.sex"]
	assert.Equal(t, model.OutcomePass, res.Result)
	assert.Equal(t, "female", el.picked)
	assert.Equal(t, "female", res.DOMReadback)
}

func TestExecutorCheckbox(t *testing.T) {
	t.Parallel()

	consentSpec := func(required bool) model.FieldSpec {
		return model.FieldSpec{
			Path: "rep.consent.send_notices_to_attorney", Group: "consent", Type: model.TypeCheckbox, Required: required,
			Autofill: &model.AutofillSpec{Labels: []string{"send notices"}, Order: 1},
		}
	}

	t.Run("truthy value checks", func(t *testing.T) {
		t.Parallel()
		el := &fakeElement{tag: "input", inputType: "checkbox"}
		form := &fakeForm{
			candidates: []FormCandidate{{Label: "Send notices", Locator: "#notices"}},
			elements:   map[string]*fakeElement{"#notices": el},
		}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.consent.send_notices_to_attorney", "Yes"))

		report := NewExecutor(form, mustRegistry(t, consentSpec(true))).Run(rec)
		assert.Equal(t, model.OutcomePass, report.Results["rep.consent.send_notices_to_attorney"].Result)
		assert.True(t, el.checked)
	})

	t.Run("falsy value skips when optional", func(t *testing.T) {
		t.Parallel()
		el := &fakeElement{tag: "input", inputType: "checkbox"}
		form := &fakeForm{
			candidates: []FormCandidate{{Label: "Send notices", Locator: "#notices"}},
			elements:   map[string]*fakeElement{"#notices": el},
		}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.consent.send_notices_to_attorney", "no"))

		report := NewExecutor(form, mustRegistry(t, consentSpec(false))).Run(rec)
		res := report.Results["rep.consent.send_notices_to_attorney"]
		assert.Equal(t, model.OutcomeSkip, res.Result)
		assert.Equal(t, model.FailCheckboxFalse, res.FailureReason)
		assert.False(t, el.checked)
	})
}

func TestExecutorUnitField(t *testing.T) {
	t.Parallel()

	unitSpec := model.FieldSpec{
		Path: "rep.attorney.address.unit", Group: "attorney", Type: model.TypeText,
		Autofill: &model.AutofillSpec{Labels: []string{"apt ste flr"}, Order: 1},
	}

	t.Run("checkbox plus number input", func(t *testing.T) {
		t.Parallel()
		check := &fakeElement{tag: "input", inputType: "checkbox"}
		number := textInput()
		form := &fakeForm{
			queries: map[string]*fakeElement{
				"input[type='checkbox']#apt, input[type='checkbox'][value='apt']":       check,
				"input[type='text']#apt-number, input[type='text'][name='apt-number']": number,
			},
		}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.attorney.address.unit", "Apt 4B"))

		report := NewExecutor(form, mustRegistry(t, unitSpec)).Run(rec)
		res := report.Results["rep.attorney.address.unit"]
		assert.Equal(t, model.OutcomePass, res.Result)
		assert.True(t, check.checked)
		assert.Equal(t, "4B", number.value)
		assert.Equal(t, "#apt, #apt-number", res.SelectorUsed)
	})

	t.Run("plain text shape", func(t *testing.T) {
		t.Parallel()
		text := textInput()
		form := &fakeForm{
			queries: map[string]*fakeElement{
				"input[type='text']#ste, input[type='text'][name='ste']": text,
			},
		}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.attorney.address.unit", "Suite 400"))

		report := NewExecutor(form, mustRegistry(t, unitSpec)).Run(rec)
		res := report.Results["rep.attorney.address.unit"]
		assert.Equal(t, model.OutcomePass, res.Result)
		assert.Equal(t, "400", text.value)
	})

	t.Run("no unit controls skips optional", func(t *testing.T) {
		t.Parallel()
		form := &fakeForm{}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.attorney.address.unit", "Apt 4B"))

		report := NewExecutor(form, mustRegistry(t, unitSpec)).Run(rec)
		res := report.Results["rep.attorney.address.unit"]
		assert.Equal(t, model.OutcomeSkip, res.Result)
		assert.Equal(t, model.FailSelectorNotFound, res.FailureReason)
	})

	t.Run("unchecked readback fails the checkbox shape", func(t *testing.T) {
		t.Parallel()
		check := &fakeElement{tag: "input", inputType: "checkbox", stuckUnchecked: true}
		form := &fakeForm{
			queries: map[string]*fakeElement{
				"input[type='checkbox']#apt, input[type='checkbox'][value='apt']": check,
			},
		}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.attorney.address.unit", "Apt 4B"))

		report := NewExecutor(form, mustRegistry(t, unitSpec)).Run(rec)
		res := report.Results["rep.attorney.address.unit"]
		assert.Equal(t, model.OutcomeFail, res.Result)
		assert.Equal(t, model.FailReadbackMismatch, res.FailureReason)
		assert.Empty(t, res.SelectorUsed)
	})

	t.Run("mismatched readback fails the text shape", func(t *testing.T) {
		t.Parallel()
		sticky := &fakeElement{tag: "input", inputType: "text", stickyValue: "autocomplete junk"}
		form := &fakeForm{
			queries: map[string]*fakeElement{
				"input[type='text']#ste, input[type='text'][name='ste']": sticky,
			},
		}
		rec := model.NewRecord()
		require.NoError(t, rec.SetPath("rep.attorney.address.unit", "Suite 400"))

		report := NewExecutor(form, mustRegistry(t, unitSpec)).Run(rec)
		res := report.Results["rep.attorney.address.unit"]
		assert.Equal(t, model.OutcomeFail, res.Result)
		assert.Equal(t, model.FailReadbackMismatch, res.FailureReason)
	})
}

func TestExecutorUnitConsumesTargets(t *testing.T) {
	t.Parallel()

	// The first unit fill claims the shared number input, so the second
	// address's unit field skips it as a duplicate target instead of
	// overwriting the value.
	reg := mustRegistry(t,
		model.FieldSpec{
			Path: "rep.attorney.address.unit", Group: "attorney", Type: model.TypeText,
			Autofill: &model.AutofillSpec{Labels: []string{"apt ste flr"}, Order: 1},
		},
		model.FieldSpec{
			Path: "rep.client.address.unit", Group: "client", Type: model.TypeText,
			Autofill: &model.AutofillSpec{Labels: []string{"apt ste flr"}, Order: 2},
		},
	)
	number := textInput()
	form := &fakeForm{
		queries: map[string]*fakeElement{
			"input[type='text']#apt-number, input[type='text'][name='apt-number']": number,
		},
	}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("rep.attorney.address.unit", "Apt 4B"))
	require.NoError(t, rec.SetPath("rep.client.address.unit", "Apt 7C"))

	report := NewExecutor(form, reg).Run(rec)

	first := report.Results["rep.attorney.address.unit"]
	assert.Equal(t, model.OutcomePass, first.Result)
	assert.Equal(t, "4B", number.value)

	second := report.Results["rep.client.address.unit"]
	assert.Equal(t, model.OutcomeSkip, second.Result)
	assert.Equal(t, model.FailDuplicateTarget, second.FailureReason)
	assert.Equal(t, "4B", number.value)
}

func TestExecutorDiscoveryFailureIsFatal(t *testing.T) {
	t.Parallel()

	form := &fakeForm{url: "https://forms.example.test", candErr: eris.New("page crashed")}
	rec := model.NewRecord()
	require.NoError(t, rec.SetPath("passport.surname", "Eriksson"))

	report := NewExecutor(form, mustRegistry(t, surnameSpec(true))).Run(rec)
	assert.NotEmpty(t, report.Fatal)
	assert.Empty(t, report.Results)
}

func TestExecutorDeterministic(t *testing.T) {
	t.Parallel()

	build := func() (*fakeForm, *model.Record) {
		form := &fakeForm{
			candidates: []FormCandidate{
				{Label: "Family Name", Locator: "#family"},
				{Label: "Given Name", Locator: "#given"},
			},
			elements: map[string]*fakeElement{
				"#family": textInput(),
				"#given":  textInput(),
			},
		}
		rec := model.NewRecord()
		_ = rec.SetPath("passport.surname", "Eriksson")
		return form, rec
	}

	reg := mustRegistry(t, surnameSpec(true))
	formA, recA := build()
	formB, recB := build()
	a := NewExecutor(formA, reg).Run(recA)
	b := NewExecutor(formB, reg).Run(recB)
	assert.Equal(t, a.Results, b.Results)
	assert.Equal(t, a.Filled, b.Filled)
}
