// Package resolver is the per-field status engine: it merges extracted
// values, deterministic rule verdicts, autofill outcomes, conflicts, and
// optional LLM review into versioned canonical field entries.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/intake-cli/internal/confidence"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/rules"
)

// FieldReport is the full per-field audit entry for one resolver pass.
type FieldReport struct {
	Field                string              `json:"field"`
	Status               model.Status        `json:"status"`
	DeterministicStatus  model.Status        `json:"deterministic_status"`
	DeterministicVerdict string              `json:"deterministic_verdict"`
	IssueType            string              `json:"issue_type"`
	DeterministicReason  string              `json:"deterministic_reason"`
	DeterministicCodes   []string            `json:"deterministic_codes"`
	LLM                  *model.LLMVerdict   `json:"llm_validation,omitempty"`
	LLMInvoked           bool                `json:"llm_validation_invoked"`
	ExtractedValue       string              `json:"extracted_value,omitempty"`
	ResolvedOverride     string              `json:"resolved_override_value,omitempty"`
	DOMReadback          string              `json:"dom_readback_value,omitempty"`
	Attempted            bool                `json:"attempted_autofill"`
	AutofillResult       string              `json:"autofill_result"`
	AutofillFailure      string              `json:"autofill_failure,omitempty"`
	SelectorUsed         string              `json:"autofill_selector_used,omitempty"`
	AvailableOptions     []string            `json:"autofill_available_options,omitempty"`
	Locked               bool                `json:"locked"`
	RequiresHumanInput   bool                `json:"requires_human_input"`
	HumanReason          string              `json:"human_reason"`
	HumanReasonCategory  model.HumanReasonCategory `json:"human_reason_category"`
	HumanAction          string              `json:"human_action"`
}

// Summary is the outcome of one resolver pass over the whole record.
type Summary struct {
	LLMUsed          bool                    `json:"llm_used"`
	LLMError         string                  `json:"llm_error,omitempty"`
	Fields           map[string]*FieldReport `json:"fields"`
	ReadyForAutofill bool                    `json:"ready_for_autofill"`
}

// Resolver runs reconciliation passes. It holds no per-run state; the record
// under construction is the only mutable input.
type Resolver struct {
	registry        *model.Registry
	validator       *rules.Validator
	llm             LLMClient
	scope           Scope
	limiter         *rate.Limiter
	llmConcurrency  int
	llmTargetTokens int
	now             func() time.Time

	labelLimit    int
	valueLimit    int
	evidenceLimit int
	reasonLimit   int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLLM enables the LLM review pass under the given scope policy.
func WithLLM(client LLMClient, scope Scope) Option {
	return func(r *Resolver) {
		r.llm = client
		r.scope = scope
	}
}

// WithRateLimit caps LLM request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(r *Resolver) { r.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithTokenTarget tunes the per-batch token budget.
func WithTokenTarget(tokens int) Option {
	return func(r *Resolver) { r.llmTargetTokens = tokens }
}

// New builds a Resolver over the loaded registry.
func New(registry *model.Registry, validator *rules.Validator, opts ...Option) *Resolver {
	r := &Resolver{
		registry:        registry,
		validator:       validator,
		scope:           ScopeSmart,
		llmConcurrency:  4,
		llmTargetTokens: defaultTargetTokens,
		now:             time.Now,
		labelLimit:      80,
		valueLimit:      120,
		evidenceLimit:   320,
		reasonLimit:     160,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func deterministicVerdict(status model.Status) string {
	switch status {
	case model.StatusGreen:
		return "VERIFIED"
	case model.StatusAmber:
		return "NEEDS_REVIEW"
	case model.StatusRed:
		return "MISSING_OR_INCORRECT"
	}
	return "NEEDS_REVIEW"
}

var issueReasons = map[string]string{
	"OK":                          "Looks valid.",
	model.IssueEmptyRequired:      "Expected in document but extraction likely failed.",
	model.IssueEmptyOptional:      "Optional field left empty.",
	model.IssueEmptyOptionalFound: "Label present but optional field missing.",
	model.IssueInvalidFormat:      "Value format looks invalid.",
	model.IssueSuspectLabelCapture: "Looks like a label or header, not a value.",
	model.IssueConflict:           "Conflicts with other fields.",
	model.IssueAutofillFailed:     "Autofill failed to set this field.",
	model.IssueNotPresentInDoc:    "Not found in document; needs human input.",
	model.IssueHumanRequired:      "Human consent required; do not autofill.",
}

func deterministicReason(issueType, detail string) string {
	base, ok := issueReasons[issueType]
	if !ok {
		base = "Needs review."
	}
	if detail != "" {
		return base + " " + detail
	}
	return base
}

// allowPlaceholder lets optional unit and phone fields carry "N/A"-style
// markers without failing validation.
func allowPlaceholder(spec *model.FieldSpec) bool {
	if spec == nil || spec.Required {
		return false
	}
	if strings.HasSuffix(spec.Path, "address.unit") {
		return true
	}
	return strings.Contains(spec.Path, "phone")
}

var reLLMWS = regexp.MustCompile(`\s+`)

func clampText(value string, limit int) string {
	text := reLLMWS.ReplaceAllString(strings.TrimSpace(value), " ")
	if len(text) <= limit {
		return text
	}
	return strings.TrimRight(text[:limit], " ") + "…"
}

func isEmpty(value string) bool { return strings.TrimSpace(value) == "" }

// llmInput carries per-field loop state forward to the LLM context pass,
// which runs only after the cross-field consistency checks have settled
// every deterministic status.
type llmInput struct {
	presence     model.Presence
	valueMissing bool
	attempted    bool
	failure      string
	extracted    string
	domValue     string
	humanReason  string
}

type humanPayload struct {
	required bool
	reason   string
	category model.HumanReasonCategory
	action   string
}

func humanReason(spec *model.FieldSpec, presence model.Presence, conflict bool, issueType, failureReason string, codes []string, valueMissing bool) humanPayload {
	if conflict {
		return humanPayload{true, "Conflict between credible sources; user confirmation required.", model.ReasonConflictSources, "Confirm which source is correct."}
	}
	if failureReason != "" {
		if spec.Required {
			return humanPayload{true, fmt.Sprintf("Autofill failed: %s.", failureReason), model.ReasonAutofillFailed, "Enter manually or update the form selector mapping."}
		}
		return humanPayload{false, "Optional field autofill failed.", model.ReasonOptionalEmpty, "Enter manually if needed."}
	}
	if valueMissing {
		if spec.Required {
			reason := "Value missing from extraction."
			switch presence {
			case model.PresencePresent:
				reason = "Label found but value missing in extraction."
			case model.PresenceAbsent:
				reason = "Value not found in the document."
			}
			return humanPayload{true, reason, model.ReasonMissingNotFound, "Enter manually or re-upload a clearer document."}
		}
		return humanPayload{false, "Optional field left blank.", model.ReasonOptionalEmpty, "No action required."}
	}
	switch issueType {
	case model.IssueSuspectLabelCapture:
		return humanPayload{true, "Captured value looks like a label, not a real value.", model.ReasonMissingNotFound, "Enter the correct value manually."}
	case model.IssueInvalidFormat:
		for _, code := range codes {
			if code == "date_format" {
				return humanPayload{true, "Ambiguous date format; cannot normalize safely.", model.ReasonAmbiguousEvidence, "Confirm the correct date format."}
			}
		}
		return humanPayload{true, "Value format looks invalid.", model.ReasonInvalidFormat, "Correct the value manually."}
	}
	return humanPayload{false, "", model.ReasonOptionalEmpty, ""}
}

// Resolve runs one reconciliation pass. report may be nil on a pre-autofill
// pass; afterwards it folds DOM readback in as fresh evidence. The record's
// resolved entries are replaced with new versions; locked USER/AI entries
// are carried forward untouched except their validation timestamp.
func (r *Resolver) Resolve(ctx context.Context, rec *model.Record, report *model.AutofillReport) *Summary {
	summary := &Summary{Fields: make(map[string]*FieldReport)}
	conflictFields := rec.ConflictFields()
	now := r.now().UTC()

	var contexts []model.FieldContext
	llmInvoked := make(map[string]bool)
	inputs := make(map[string]llmInput)

	for _, spec := range r.registry.Fields() {
		spec := spec
		path := spec.Path
		existing := rec.Meta.Resolved[path]
		extracted, err := rec.GetPath(path)
		if err != nil {
			zap.L().Warn("unresolvable field path", zap.String("path", path), zap.Error(err))
			continue
		}

		var (
			entry         *model.FieldResult
			domValue      string
			selectorUsed  string
			autofillRes   string
			failureReason string
			attempted     bool
			options       []string
		)
		if report != nil {
			entry = report.Results[path]
		}
		if entry != nil {
			domValue = entry.DOMReadback
			selectorUsed = entry.SelectorUsed
			autofillRes = entry.Result
			failureReason = entry.FailureReason
			attempted = entry.Attempted
			options = entry.AvailableOptions
		}
		if autofillRes == "" {
			switch {
			case failureReason != "":
				autofillRes = model.OutcomeFail
			case attempted:
				autofillRes = model.OutcomePass
			default:
				autofillRes = model.OutcomeSkip
			}
		}
		presence := rec.Meta.Presence[path]
		if presence == "" {
			presence = model.PresenceUnknown
		}

		value := extracted
		if domValue != "" {
			value = domValue
		}
		value = strings.TrimSpace(value)
		valueMissing := isEmpty(value)
		conflict := conflictFields[path]

		override := ""
		if existing != nil && (existing.Source == model.SourceUser || existing.Source == model.SourceAI) && !isEmpty(existing.Value) {
			override = existing.Value
		}

		if existing.Frozen() {
			status := existing.Status
			if status == "" || status == model.StatusUnknown {
				status = model.StatusGreen
			}
			reason := existing.Reason
			if reason == "" {
				reason = "Locked by user."
			}
			category := model.ReasonOptionalEmpty
			if existing.RequiresHumanInput {
				category = model.ReasonMissingNotFound
			}
			action := "No action required."
			if existing.RequiresHumanInput {
				action = "Confirm or enter manually."
			}
			summary.Fields[path] = &FieldReport{
				Field:                path,
				Status:               status,
				DeterministicStatus:  status,
				DeterministicVerdict: deterministicVerdict(status),
				IssueType:            "OK",
				DeterministicReason:  reason,
				ExtractedValue:       extracted,
				ResolvedOverride:     override,
				DOMReadback:          domValue,
				Attempted:            attempted,
				AutofillResult:       autofillRes,
				AutofillFailure:      failureReason,
				SelectorUsed:         selectorUsed,
				AvailableOptions:     options,
				Locked:               true,
				RequiresHumanInput:   existing.RequiresHumanInput,
				HumanReason:          reason,
				HumanReasonCategory:  category,
				HumanAction:          action,
			}
			llmInvoked[path] = false
			continue
		}

		issueType := "OK"
		status := model.StatusGreen
		var codes []string
		detReason := ""

		humanRequiredReason := spec.HumanRequiredReason
		if humanRequiredReason == "" {
			humanRequiredReason = deterministicReason(model.IssueHumanRequired, "")
		}
		failureForRules := ""
		if autofillRes == model.OutcomeFail {
			failureForRules = failureReason
		}
		skipRules := false

		if spec.HumanRequired && valueMissing {
			status = model.StatusAmber
			issueType = model.IssueHumanRequired
			codes = append(codes, "human_required")
			detReason = humanRequiredReason
			skipRules = true
		}

		if !skipRules {
			switch {
			case failureForRules != "":
				status = model.StatusAmber
				if spec.Required {
					status = model.StatusRed
				}
				issueType = model.IssueAutofillFailed
				codes = append(codes, "autofill_"+failureForRules)
				detReason = deterministicReason(issueType, failureForRules)
			case valueMissing:
				codes = append(codes, "empty")
				if spec.Required {
					status = model.StatusRed
					issueType = model.IssueEmptyRequired
					if presence == model.PresenceAbsent {
						issueType = model.IssueNotPresentInDoc
					}
				} else if presence == model.PresencePresent {
					status = model.StatusAmber
					issueType = model.IssueEmptyOptionalFound
				} else {
					status = model.StatusGreen
					issueType = model.IssueEmptyOptional
				}
				detReason = deterministicReason(issueType, "")
			default:
				placeholderOK := allowPlaceholder(&spec)
				if placeholderOK && rules.IsPlaceholder(value) {
					status = model.StatusAmber
					issueType = model.IssueEmptyOptional
					codes = append(codes, "placeholder_ok")
					detReason = deterministicReason(issueType, "")
				} else {
					country := ""
					if spec.Type == model.TypeZip {
						if base, ok := strings.CutSuffix(path, ".zip"); ok {
							country, _ = rec.GetPath(base + ".country")
						}
					}
					verdict := r.validator.Validate(path, spec.Type, value, spec.LabelHints, rules.Context{
						Country:          country,
						AllowPlaceholder: placeholderOK,
					})
					if !verdict.IsValid {
						status = model.StatusRed
						issueType = model.IssueInvalidFormat
						for _, code := range verdict.ReasonCodes {
							switch code {
							case "label_noise", "address_label", "email_label", "phone_label":
								issueType = model.IssueSuspectLabelCapture
							}
						}
					} else if rules.HasBenignAmber(verdict.ReasonCodes) {
						status = model.StatusAmber
					} else {
						status = model.StatusGreen
					}
					codes = append(codes, verdict.ReasonCodes...)
					detReason = deterministicReason(issueType, "")
				}
			}

			if conflict {
				codes = append(codes, "conflict_sources")
				if status == model.StatusGreen {
					status = model.StatusAmber
					issueType = model.IssueConflict
					detReason = deterministicReason(issueType, "")
				}
			}
		}

		detStatus := status
		if detReason == "" {
			detReason = deterministicReason(issueType, "")
		}

		var human humanPayload
		if spec.HumanRequired && valueMissing {
			human = humanPayload{true, humanRequiredReason, model.ReasonHumanConsent, "Complete manually in the form."}
		} else {
			human = humanReason(&spec, presence, conflict, issueType, failureForRules, codes, valueMissing)
		}

		summary.Fields[path] = &FieldReport{
			Field:                path,
			Status:               status,
			DeterministicStatus:  detStatus,
			DeterministicVerdict: deterministicVerdict(detStatus),
			IssueType:            issueType,
			DeterministicReason:  detReason,
			DeterministicCodes:   codes,
			ExtractedValue:       extracted,
			ResolvedOverride:     override,
			DOMReadback:          domValue,
			Attempted:            attempted,
			AutofillResult:       autofillRes,
			AutofillFailure:      failureReason,
			SelectorUsed:         selectorUsed,
			AvailableOptions:     options,
			Locked:               existing != nil && existing.Locked,
			RequiresHumanInput:   human.required,
			HumanReason:          human.reason,
			HumanReasonCategory:  human.category,
			HumanAction:          human.action,
		}

		inputs[path] = llmInput{
			presence:     presence,
			valueMissing: valueMissing,
			attempted:    attempted,
			failure:      failureForRules,
			extracted:    extracted,
			domValue:     domValue,
			humanReason:  humanRequiredReason,
		}
	}

	// Cross-field checks settle statuses before the LLM contexts are built,
	// so the verifier reviews what the reviewer will actually see.
	r.applyAddressConsistency(rec, summary)

	for _, spec := range r.registry.Fields() {
		spec := spec
		path := spec.Path
		in, ok := inputs[path]
		if !ok {
			continue
		}
		entry := summary.Fields[path]
		conflict := conflictFields[path] || entry.IssueType == model.IssueConflict
		needed := r.llm != nil && r.scope.shouldInvokeLLM(&spec, entry.DeterministicStatus, conflict, in.failure, in.presence, in.valueMissing, in.attempted)
		llmInvoked[path] = needed
		if !needed {
			continue
		}
		humanReasonText := ""
		if spec.HumanRequired {
			humanReasonText = clampText(in.humanReason, r.reasonLimit)
		}
		evidence := rec.Meta.Evidence[path]
		if evidence == "" {
			evidence = "not found"
		}
		contexts = append(contexts, model.FieldContext{
			Field:               path,
			Label:               clampText(spec.Label, r.labelLimit),
			ExpectedType:        string(spec.Type),
			ExtractedValue:      clampText(in.extracted, r.valueLimit),
			DOMReadback:         clampText(in.domValue, r.valueLimit),
			Evidence:            clampText(evidence, r.evidenceLimit),
			Presence:            in.presence,
			DeterministicStatus: entry.DeterministicStatus,
			ReasonCodes:         entry.DeterministicCodes,
			DeterministicReason: clampText(entry.DeterministicReason, r.reasonLimit),
			HumanRequired:       spec.HumanRequired,
			HumanRequiredReason: humanReasonText,
		})
	}

	var llmResults map[string]model.LLMVerdict
	if r.llm != nil && len(contexts) > 0 {
		summary.LLMUsed = true
		llmResults, summary.LLMError = r.runLLMBatches(ctx, contexts)
	}

	for path, entry := range summary.Fields {
		entry.LLMInvoked = llmInvoked[path]
		verdict, ok := llmResults[path]
		if ok {
			r.mergeVerdict(rec, entry, verdict, conflictFields)
		}
		rec.Meta.Status[path] = entry.Status
	}

	r.emitResolved(rec, summary, now)
	summary.ReadyForAutofill = r.readyForAutofill(rec, conflictFields)
	return summary
}

// mergeVerdict folds one LLM verdict into the field report and, when
// grounded, into the suggestion list.
func (r *Resolver) mergeVerdict(rec *model.Record, entry *FieldReport, raw model.LLMVerdict, conflictFields map[string]bool) {
	verdict := normalizeVerdict(raw.Verdict)
	evidence := raw.Evidence
	if evidence == "" {
		evidence = "not found"
	}
	if verdict != "" {
		merged := finalStatus(entry.DeterministicStatus, verdict)
		// A conflicted field never settles green on a verdict alone; only a
		// user decision clears the conflict.
		if merged == model.StatusGreen && (conflictFields[entry.Field] || entry.IssueType == model.IssueConflict) {
			merged = model.StatusAmber
		}
		entry.Status = merged
		stored := raw
		stored.Verdict = verdict
		stored.Evidence = evidence
		entry.LLM = &stored
	}

	suggested := raw.SuggestedValue
	allowed := suggested != "" && evidence != "" && evidence != "not found"
	if entry.DeterministicStatus == model.StatusGreen {
		allowed = false
	}
	if allowed && !suggestionGrounded(suggested, evidence) {
		allowed = false
	}
	if allowed {
		conflict := conflictFields[entry.Field]
		var conflictPair *model.Conflict
		if conflict {
			if c, ok := rec.Meta.Conflicts[entry.Field]; ok {
				conflictPair = &c
			}
		}
		switch {
		case trivialNormalization(entry.ExtractedValue, suggested):
		case suggestibleIssues[entry.IssueType]:
		case conflict && conflictPair != nil:
			allowed = suggested == conflictPair.ValueA || suggested == conflictPair.ValueB
		default:
			allowed = false
		}
	}
	if allowed {
		reason := raw.SuggestedValueReason
		if reason == "" {
			reason = raw.Reason
		}
		if reason == "" {
			reason = "LLM suggestion"
		}
		rec.AddSuggestion(entry.Field, model.Suggestion{
			Value:    suggested,
			Source:   model.SourceLLM,
			Reason:   reason,
			Evidence: evidence,
		})
	}
}

// applyAddressConsistency runs the cross-field check after all per-field
// passes: a US-shaped state and ZIP next to a country value that is not the
// canonical "United States" spelling needs a human to confirm the country.
func (r *Resolver) applyAddressConsistency(rec *model.Record, summary *Summary) {
	for _, group := range []string{"rep.attorney.address", "rep.client.address"} {
		state, _ := rec.GetPath(group + ".state")
		zip, _ := rec.GetPath(group + ".zip")
		country, _ := rec.GetPath(group + ".country")
		if state == "" || zip == "" || country == "" {
			continue
		}
		if !rules.IsUSState(state) || !isFiveDigitZip(zip) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(country), "United States") {
			continue
		}
		path := group + ".country"
		entry, ok := summary.Fields[path]
		if !ok {
			continue
		}
		entry.Status = model.StatusAmber
		entry.DeterministicStatus = model.StatusAmber
		entry.IssueType = model.IssueConflict
		entry.DeterministicReason = deterministicReason(model.IssueConflict, "")
		entry.DeterministicCodes = append(entry.DeterministicCodes, "country_conflict")
		entry.DeterministicVerdict = deterministicVerdict(model.StatusAmber)
		entry.RequiresHumanInput = true
		entry.HumanReasonCategory = model.ReasonConflictSources
		entry.HumanReason = "Conflict between country and state/ZIP."
		entry.HumanAction = "Confirm the correct country."
	}
}

var reFiveZip = regexp.MustCompile(`^\d{5}$`)

func isFiveDigitZip(zip string) bool { return reFiveZip.MatchString(strings.TrimSpace(zip)) }

// emitResolved writes a new ResolvedField version per path. Frozen entries
// get only a timestamp refresh.
func (r *Resolver) emitResolved(rec *model.Record, summary *Summary, now time.Time) {
	resolved := make(map[string]*model.ResolvedField, len(summary.Fields))
	for path, entry := range summary.Fields {
		existing := rec.Meta.Resolved[path]
		if existing.Frozen() {
			carried := *existing
			carried.LastValidatedAt = now
			resolved[path] = &carried
			continue
		}

		value := entry.DOMReadback
		if value == "" {
			value = entry.ExtractedValue
		}
		value = strings.TrimSpace(value)

		reason := entry.HumanReason
		if reason == "" && entry.LLM != nil {
			reason = entry.LLM.Reason
		}
		if reason == "" {
			reason = entry.DeterministicReason
		}

		source := rec.Meta.Sources[path]
		version := 1
		locked := false
		if existing != nil {
			version = existing.Version + 1
			locked = existing.Locked
		}
		if source == model.SourceUser {
			locked = true
		}

		det := &model.RuleVerdict{
			IsValid:     entry.DeterministicStatus != model.StatusRed,
			ReasonCodes: entry.DeterministicCodes,
		}
		resolved[path] = &model.ResolvedField{
			Path:                path,
			Value:               value,
			Status:              entry.Status,
			Confidence:          rec.Meta.Confidence[path],
			Source:              source,
			Locked:              locked,
			RequiresHumanInput:  entry.RequiresHumanInput,
			Reason:              reason,
			IssueType:           entry.IssueType,
			HumanReasonCategory: entry.HumanReasonCategory,
			Deterministic:       det,
			LLM:                 entry.LLM,
			Suggestions:         rec.Meta.Suggestions[path],
			LastValidatedAt:     now,
			Version:             version,
		}
	}
	rec.Meta.Resolved = resolved
}

// readyForAutofill is the run-wide gate: true iff no field still carries an
// unresolved conflict. A conflict is resolved once a USER or AI locked entry
// covers the path.
func (r *Resolver) readyForAutofill(rec *model.Record, conflictFields map[string]bool) bool {
	for path := range conflictFields {
		if entry := rec.Meta.Resolved[path]; entry.Frozen() {
			continue
		}
		return false
	}
	return true
}

// ApplyUserEdit pins a reviewer-entered value: source USER, confidence 1.0,
// locked, green. Later passes may refresh metadata only.
func (r *Resolver) ApplyUserEdit(rec *model.Record, path, value string) error {
	if err := confidence.SetField(rec, path, value, model.SourceUser, 1.0, "", confidence.MatchExact); err != nil {
		return err
	}
	existing := rec.Meta.Resolved[path]
	version := 1
	if existing != nil {
		version = existing.Version + 1
	}
	rec.Meta.Status[path] = model.StatusGreen
	rec.Meta.Resolved[path] = &model.ResolvedField{
		Path:            path,
		Value:           value,
		Status:          model.StatusGreen,
		Confidence:      1.0,
		Source:          model.SourceUser,
		Locked:          true,
		Reason:          "Entered by user.",
		LastValidatedAt: r.now().UTC(),
		Version:         version,
	}
	delete(rec.Meta.Conflicts, path)
	return nil
}
