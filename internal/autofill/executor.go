package autofill

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/rules"
)

var (
	reUnitApt   = regexp.MustCompile(`(?i)\bapt\b|\bapartment\b`)
	reUnitSte   = regexp.MustCompile(`(?i)\bste\b|\bsuite\b`)
	reUnitFlr   = regexp.MustCompile(`(?i)\bflr\b|\bfloor\b`)
	reUnitWords = regexp.MustCompile(`(?i)\b(apt|apartment|ste|suite|flr|floor|unit)\b`)
	reUnitWS    = regexp.MustCompile(`\s+`)
)

// falsy values that mean "leave the checkbox unchecked".
var checkboxFalsy = map[string]bool{
	"false": true, "no": true, "0": true, "off": true, "n": true,
}

// shouldCheck reports whether value means a checked checkbox. Any non-empty
// value outside the falsy vocabulary counts as true.
func shouldCheck(value string) bool {
	text := strings.ToLower(strings.TrimSpace(value))
	if text == "" {
		return false
	}
	return !checkboxFalsy[text]
}

// normalizeForInput adapts a canonical value to the element's input type.
// Date inputs want ISO format; everything else passes through.
func normalizeForInput(value, inputType string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	if inputType == "date" {
		if normalized := rules.NormalizeDate(raw, false); normalized != "" {
			return normalized
		}
	}
	return raw
}

// matchSelectOption picks a select option for raw: option value, then option
// label, then a short (<=3 char) initialism, then fuzzy label match. First
// hit in that priority wins.
func matchSelectOption(options []Option, raw string) (Option, string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Option{}, "empty_value", false
	}
	if len(options) == 0 {
		return Option{}, "no_select_options", false
	}
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt.Value), raw) {
			return opt, "matched_value", true
		}
	}
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt.Label), raw) {
			return opt, "matched_label", true
		}
	}
	if len(raw) <= 3 {
		for _, opt := range options {
			if abbrev(opt.Label) == strings.ToUpper(raw) {
				return opt, "matched_abbrev", true
			}
		}
	}
	best := Option{}
	bestScore := 0.0
	for _, opt := range options {
		if s := Similarity(raw, opt.Label); s > bestScore {
			bestScore = s
			best = opt
		}
	}
	if bestScore >= 0.82 && best.Label != "" {
		return best, fmt.Sprintf("matched_fuzzy:%.2f", bestScore), true
	}
	return Option{}, model.FailNoSelectMatch, false
}

var reRadioNorm = regexp.MustCompile(`[^a-z0-9]+`)

func radioKey(s string) string {
	return reRadioNorm.ReplaceAllString(strings.ToLower(s), "")
}

// matchRadio picks a radio group member: exact value or label match first,
// then a short target as a label prefix.
func matchRadio(options []Option, target string) (Option, bool) {
	key := radioKey(target)
	if key == "" {
		return Option{}, false
	}
	for _, opt := range options {
		if radioKey(opt.Value) == key || radioKey(opt.Label) == key {
			return opt, true
		}
	}
	if len(key) <= 2 {
		for _, opt := range options {
			if strings.HasPrefix(radioKey(opt.Label), key) {
				return opt, true
			}
		}
	}
	return Option{}, false
}

// matchesExpected compares the written value against the DOM readback,
// type-aware: checkbox compares intent to checked state, select and radio
// accept the option's value or label, text compares after normalization.
func matchesExpected(expected string, rb Readback) bool {
	if rb.InputType == "checkbox" {
		return shouldCheck(expected) == rb.Checked
	}
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(rb.Value) == "" {
		return false
	}
	expectedNorm := normalizeCompare(normalizeForInput(expected, rb.InputType))
	if rb.InputType == "select" || rb.InputType == "radio" {
		candidates := []string{rb.Value}
		if rb.Selected != nil {
			candidates = append(candidates, rb.Selected.Value, rb.Selected.Label)
		}
		for _, c := range candidates {
			if normalizeCompare(c) == expectedNorm {
				return true
			}
		}
		return false
	}
	return expectedNorm == normalizeCompare(normalizeForInput(rb.Value, rb.InputType))
}

// parseUnitValue splits a compound unit value ("Apt 4B") into its type
// marker and number.
func parseUnitValue(value string) (unitType, unitNumber string) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", ""
	}
	switch {
	case reUnitApt.MatchString(raw):
		unitType = "apt"
	case reUnitSte.MatchString(raw):
		unitType = "ste"
	case reUnitFlr.MatchString(raw):
		unitType = "flr"
	}
	number := reUnitWords.ReplaceAllString(raw, "")
	number = strings.ReplaceAll(number, "#", " ")
	number = strings.TrimSpace(reUnitWS.ReplaceAllString(number, " "))
	return unitType, number
}

// Executor fills one form from one canonical record. Strictly sequential:
// a write can change DOM visibility for later fields, and duplicate-target
// tracking needs a total order.
type Executor struct {
	form     Form
	registry *model.Registry
	used     map[string]bool
}

// NewExecutor builds an executor over an open form.
func NewExecutor(form Form, registry *model.Registry) *Executor {
	return &Executor{form: form, registry: registry, used: make(map[string]bool)}
}

// payloadValue returns the value to drive into the form: a USER/AI resolved
// override wins over the extracted record graph.
func payloadValue(rec *model.Record, path string) string {
	if entry := rec.Meta.Resolved[path]; entry != nil {
		if (entry.Source == model.SourceUser || entry.Source == model.SourceAI) && strings.TrimSpace(entry.Value) != "" {
			return entry.Value
		}
	}
	value, err := rec.GetPath(path)
	if err != nil {
		return ""
	}
	return value
}

// Run drives every autofill-mapped field into the form in registry fill
// order and returns the per-field outcomes. Identical input against an
// unchanged form produces identical results.
func (e *Executor) Run(rec *model.Record) *model.AutofillReport {
	report := model.NewAutofillReport(e.form.URL())

	candidates, err := e.form.Candidates()
	if err != nil {
		report.Fatal = err.Error()
		zap.L().Error("form discovery failed", zap.Error(err))
		return report
	}
	SortCandidates(candidates)
	zap.L().Info("form candidates discovered", zap.Int("count", len(candidates)))

	for _, spec := range e.registry.AutofillFields() {
		path := spec.Path
		value := payloadValue(rec, path)
		if strings.TrimSpace(value) == "" {
			report.Record(&model.FieldResult{
				Path:          path,
				Result:        model.OutcomeSkip,
				FailureReason: model.FailNoValue,
			})
			continue
		}

		var res *model.FieldResult
		if strings.HasSuffix(path, "address.unit") {
			res = e.fillUnit(path, spec.Required, value)
		} else {
			res = e.fillField(&spec, value, candidates)
		}
		report.Record(res)
	}
	return report
}

// outcome resolves FAIL vs SKIP: required fields always fail, optional
// fields skip for the fixed allow-list of benign reasons.
func outcome(required bool, reason string) string {
	if !required && model.OptionalSkip(reason) {
		return model.OutcomeSkip
	}
	return model.OutcomeFail
}

// fillField is an explicit fold over the ranked candidates: first verified
// write wins, otherwise the last failure reason is the field's reason.
func (e *Executor) fillField(spec *model.FieldSpec, value string, candidates []FormCandidate) *model.FieldResult {
	ranked := Rank(candidates, spec.Autofill.Labels)
	if len(ranked) == 0 || ranked[0].Score < MinScore {
		reason := model.FailSelectorNotFound
		return &model.FieldResult{
			Path:          spec.Path,
			Result:        outcome(spec.Required, reason),
			FailureReason: reason,
		}
	}

	res := &model.FieldResult{Path: spec.Path}
	lastReason := model.FailNoMatch

	for _, rc := range ranked {
		if rc.Score < MinScore {
			break
		}
		if IsSubmitLike(rc.Candidate.Label) {
			lastReason = model.FailSubmitGuard
			continue
		}
		if e.used[rc.Candidate.Locator] {
			lastReason = model.FailDuplicateTarget
			continue
		}

		reason, ok := e.tryCandidate(res, rc.Candidate, value)
		if ok {
			e.used[rc.Candidate.Locator] = true
			res.Result = model.OutcomePass
			res.SelectorUsed = rc.Candidate.Locator
			return res
		}
		lastReason = reason
	}

	if lastReason == model.FailNoMatch {
		lastReason = model.FailSelectorNotFound
	}
	res.Result = outcome(spec.Required, lastReason)
	res.FailureReason = lastReason
	return res
}

// tryCandidate attempts one fill-and-verify against one element. Any DOM
// error is this candidate's failure only; the fold moves on.
func (e *Executor) tryCandidate(res *model.FieldResult, candidate FormCandidate, value string) (string, bool) {
	el, err := e.form.Element(candidate.Locator)
	if err != nil {
		return model.FailSelectorNotFound, false
	}
	tag, err := el.Tag()
	if err != nil {
		return model.FailElementError, false
	}
	if tag == "button" {
		return model.FailSubmitGuard, false
	}
	inputType, err := el.InputType()
	if err != nil {
		return model.FailElementError, false
	}
	res.InputType = inputType
	fillValue := normalizeForInput(value, inputType)

	switch {
	case tag == "select":
		options, err := el.Options()
		if err != nil {
			return model.FailElementError, false
		}
		res.AvailableOptions = optionLabels(options)
		res.Attempted = true
		opt, reason, ok := matchSelectOption(options, fillValue)
		if !ok {
			return reason, false
		}
		if reason == "matched_value" {
			err = el.SelectByValue(opt.Value)
		} else {
			err = el.SelectByLabel(opt.Label)
		}
		if err != nil {
			return model.FailElementError, false
		}
		// Verify against the option we picked, not the raw value: a fuzzy
		// or abbreviation match legitimately differs from the readback.
		fillValue = opt.Value
	case tag == "textarea":
		res.Attempted = true
		if err := el.Fill(fillValue); err != nil {
			return model.FailElementError, false
		}
	case tag == "input" && (inputType == "submit" || inputType == "button" || inputType == "image"):
		return model.FailSubmitGuard, false
	case tag == "input" && inputType == "radio":
		options, err := el.RadioOptions()
		if err != nil {
			return model.FailElementError, false
		}
		res.AvailableOptions = optionLabels(options)
		res.Attempted = true
		opt, ok := matchRadio(options, fillValue)
		if !ok {
			return model.FailNoRadioMatch, false
		}
		if err := el.CheckRadio(opt.Value); err != nil {
			return model.FailElementError, false
		}
		fillValue = opt.Value
	case tag == "input" && inputType == "checkbox":
		if !shouldCheck(fillValue) {
			return model.FailCheckboxFalse, false
		}
		res.Attempted = true
		if err := el.Check(); err != nil {
			return model.FailElementError, false
		}
	case tag == "input":
		res.Attempted = true
		if err := el.Fill(fillValue); err != nil {
			return model.FailElementError, false
		}
	default:
		return model.FailUnsupportedElement, false
	}

	rb, err := el.Readback()
	if err != nil {
		return model.FailElementError, false
	}
	if rb.InputType != "" {
		res.InputType = rb.InputType
	}
	res.DOMReadback = rb.Value
	if rb.InputType != "checkbox" && strings.TrimSpace(rb.Value) == "" {
		return model.FailReadbackEmpty, false
	}
	if !matchesExpected(fillValue, rb) {
		return model.FailReadbackMismatch, false
	}
	return "", true
}

func optionLabels(options []Option) []string {
	if len(options) == 0 {
		return nil
	}
	out := make([]string, len(options))
	for i, opt := range options {
		if opt.Label != "" {
			out[i] = opt.Label
		} else {
			out[i] = opt.Value
		}
	}
	return out
}

// fillUnit handles the compound apartment/suite/floor field. Destination
// forms model it either as a type checkbox plus a number input or as plain
// text inputs, so both shapes are tried.
func (e *Executor) fillUnit(path string, required bool, value string) *model.FieldResult {
	unitType, unitNumber := parseUnitValue(value)
	if unitType == "" {
		unitType = "apt"
	}
	numberValue := unitNumber
	if numberValue == "" {
		numberValue = strings.TrimSpace(value)
	}

	res := &model.FieldResult{Path: path}
	var selectors []string
	filled := false
	duplicate := false
	failReason := ""

	if el, ok := e.form.Query(fmt.Sprintf("input[type='checkbox']#%s, input[type='checkbox'][value='%s']", unitType, unitType)); ok {
		if e.used["#"+unitType] {
			duplicate = true
		} else {
			res.Attempted = true
			res.InputType = "checkbox"
			if err := el.Check(); err != nil {
				failReason = model.FailElementError
			} else if rb, err := el.Readback(); err != nil || !rb.Checked {
				failReason = model.FailReadbackMismatch
			} else {
				filled = true
				selectors = append(selectors, "#"+unitType)
				e.used["#"+unitType] = true
				res.DOMReadback = unitType
			}
		}
	} else if el, ok := e.form.Query(fmt.Sprintf("input[type='text']#%s, input[type='text'][name='%s']", unitType, unitType)); ok && numberValue != "" {
		if e.used["#"+unitType] {
			duplicate = true
		} else {
			res.Attempted = true
			res.InputType = "text"
			if err := el.Fill(numberValue); err != nil {
				failReason = model.FailElementError
			} else if rb, err := el.Readback(); err != nil || strings.TrimSpace(rb.Value) == "" {
				failReason = model.FailReadbackEmpty
			} else if normalizeCompare(rb.Value) != normalizeCompare(numberValue) {
				failReason = model.FailReadbackMismatch
			} else {
				filled = true
				selectors = append(selectors, "#"+unitType)
				e.used["#"+unitType] = true
				res.DOMReadback = rb.Value
			}
		}
	}

	// A separate unit-number input may sit alongside either shape.
	if numberValue != "" && failReason == "" {
		if el, ok := e.form.Query("input[type='text']#apt-number, input[type='text'][name='apt-number']"); ok {
			if e.used["#apt-number"] {
				duplicate = true
			} else {
				res.Attempted = true
				res.InputType = "text"
				if err := el.Fill(numberValue); err != nil {
					failReason = model.FailElementError
				} else if rb, err := el.Readback(); err != nil || strings.TrimSpace(rb.Value) == "" {
					failReason = model.FailReadbackEmpty
				} else if normalizeCompare(rb.Value) != normalizeCompare(numberValue) {
					failReason = model.FailReadbackMismatch
				} else {
					filled = true
					selectors = append(selectors, "#apt-number")
					e.used["#apt-number"] = true
					res.DOMReadback = rb.Value
				}
			}
		}
	}

	if !filled && failReason == "" {
		failReason = model.FailSelectorNotFound
		if duplicate {
			failReason = model.FailDuplicateTarget
		}
	}
	if filled {
		res.Result = model.OutcomePass
		res.SelectorUsed = strings.Join(selectors, ", ")
		return res
	}
	res.Result = outcome(required, failReason)
	res.FailureReason = failReason
	return res
}
