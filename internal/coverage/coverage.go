// Package coverage joins the resolution summary, the autofill report, and
// the field registry into one per-field view, and exports it for operator
// review.
package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/resolver"
)

// Row is one field's full story across extraction, resolution, and autofill.
type Row struct {
	Path            string   `json:"path"`
	Label           string   `json:"label"`
	Group           string   `json:"group"`
	Required        bool     `json:"required"`
	Value           string   `json:"value,omitempty"`
	Status          string   `json:"status"`
	Verdict         string   `json:"verdict,omitempty"`
	IssueType       string   `json:"issue_type,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	Confidence      float64  `json:"confidence"`
	Sources         []string `json:"sources,omitempty"`
	LLMInvoked      bool     `json:"llm_invoked"`
	LLMVerdict      string   `json:"llm_verdict,omitempty"`
	AutofillResult  string   `json:"autofill_result,omitempty"`
	AutofillFailure string   `json:"autofill_failure,omitempty"`
	SelectorUsed    string   `json:"selector_used,omitempty"`
	DOMReadback     string   `json:"dom_readback,omitempty"`
	Suggestion      string   `json:"suggestion,omitempty"`
	HumanAction     string   `json:"human_action,omitempty"`
	Locked          bool     `json:"locked"`
}

// Report is the exportable run digest.
type Report struct {
	GeneratedAt      time.Time `json:"generated_at"`
	FormURL          string    `json:"form_url,omitempty"`
	TotalFields      int       `json:"total_fields"`
	Green            int       `json:"green"`
	Amber            int       `json:"amber"`
	Red              int       `json:"red"`
	Filled           int       `json:"filled"`
	Failed           int       `json:"failed"`
	Skipped          int       `json:"skipped"`
	ReadyForAutofill bool      `json:"ready_for_autofill"`
	Rows             []Row     `json:"rows"`
}

// Build joins the three views. The registry drives row order; fields absent
// from the summary still get a row so gaps are visible.
func Build(registry *model.Registry, rec *model.Record, summary *resolver.Summary, autofill *model.AutofillReport) *Report {
	report := &Report{GeneratedAt: time.Now().UTC()}
	if autofill != nil {
		report.FormURL = autofill.FormURL
	}
	if summary != nil {
		report.ReadyForAutofill = summary.ReadyForAutofill
	}

	byField := map[string]*resolver.FieldReport{}
	if summary != nil {
		for path, fr := range summary.Fields {
			byField[path] = fr
		}
	}

	for _, spec := range registry.Fields() {
		row := Row{
			Path:     spec.Path,
			Label:    spec.Label,
			Group:    spec.Group,
			Required: spec.Required,
			Status:   string(model.StatusUnknown),
		}
		if rec != nil {
			if value, err := rec.GetPath(spec.Path); err == nil {
				row.Value = value
			}
			row.Confidence = rec.Meta.Confidence[spec.Path]
			if src := rec.Meta.Sources[spec.Path]; src != "" {
				row.Sources = append(row.Sources, string(src))
			}
			for _, s := range rec.Meta.Suggestions[spec.Path] {
				row.Suggestion = s.Value
				break
			}
		}
		if fr, ok := byField[spec.Path]; ok {
			row.Status = string(fr.Status)
			row.Verdict = fr.DeterministicVerdict
			row.IssueType = fr.IssueType
			row.Reason = fr.DeterministicReason
			row.LLMInvoked = fr.LLMInvoked
			if fr.LLM != nil {
				row.LLMVerdict = string(fr.LLM.Verdict)
			}
			row.Locked = fr.Locked
			if fr.HumanAction != "" {
				row.HumanAction = fr.HumanAction
			}
		}
		if autofill != nil {
			if res, ok := autofill.Results[spec.Path]; ok {
				row.AutofillResult = res.Result
				row.AutofillFailure = res.FailureReason
				row.SelectorUsed = res.SelectorUsed
				row.DOMReadback = res.DOMReadback
				switch res.Result {
				case model.OutcomePass:
					report.Filled++
				case model.OutcomeFail:
					report.Failed++
				case model.OutcomeSkip:
					report.Skipped++
				}
			}
		}
		switch model.Status(row.Status) {
		case model.StatusGreen:
			report.Green++
		case model.StatusAmber:
			report.Amber++
		case model.StatusRed:
			report.Red++
		}
		report.Rows = append(report.Rows, row)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		if report.Rows[i].Group != report.Rows[j].Group {
			return report.Rows[i].Group < report.Rows[j].Group
		}
		return report.Rows[i].Path < report.Rows[j].Path
	})
	report.TotalFields = len(report.Rows)
	return report
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "coverage: marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "coverage: write report")
	}
	return nil
}

var xlsxHeader = []string{
	"Field", "Label", "Group", "Required", "Value", "Status", "Verdict",
	"Issue", "Reason", "Confidence", "Sources", "LLM", "Autofill",
	"Failure", "Selector", "DOM Readback", "Suggestion", "Human Action",
}

// WriteXLSX exports the report as a single-sheet workbook.
func WriteXLSX(report *Report, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Coverage")
	if err != nil {
		return eris.Wrap(err, "coverage: add sheet")
	}

	header := sheet.AddRow()
	for _, title := range xlsxHeader {
		header.AddCell().SetString(title)
	}

	for _, r := range report.Rows {
		row := sheet.AddRow()
		llm := ""
		if r.LLMInvoked {
			llm = r.LLMVerdict
			if llm == "" {
				llm = "invoked"
			}
		}
		cells := []string{
			r.Path, r.Label, r.Group, boolMark(r.Required), r.Value, r.Status,
			r.Verdict, r.IssueType, r.Reason, fmt.Sprintf("%.2f", r.Confidence),
			strings.Join(r.Sources, ", "), llm, r.AutofillResult, r.AutofillFailure,
			r.SelectorUsed, r.DOMReadback, r.Suggestion, r.HumanAction,
		}
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	summary := sheet.AddRow()
	summary.AddCell().SetString(fmt.Sprintf(
		"green=%d amber=%d red=%d filled=%d failed=%d skipped=%d ready=%t",
		report.Green, report.Amber, report.Red,
		report.Filled, report.Failed, report.Skipped, report.ReadyForAutofill,
	))

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "coverage: save workbook")
	}
	return nil
}

func boolMark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
