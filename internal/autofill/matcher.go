package autofill

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

var (
	reMatchNonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)
	reMatchWS       = regexp.MustCompile(`\s+`)
	reSubmitLike    = regexp.MustCompile(`(?i)(submit|sign|confirm)`)
	reCompareStrip  = regexp.MustCompile(`\s+`)
	reAbbrevSplit   = regexp.MustCompile(`[^A-Za-z]+`)
)

func normalizeLabel(text string) string {
	text = strings.ToLower(text)
	text = reMatchNonAlnum.ReplaceAllString(text, " ")
	text = reMatchWS.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Similarity scores two labels after case and punctuation normalization.
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(normalizeLabel(a), normalizeLabel(b), nil)
}

// IsSubmitLike flags labels that could trigger a submission. These elements
// are never written to, regardless of match score.
func IsSubmitLike(text string) bool { return reSubmitLike.MatchString(text) }

// MinScore is the eligibility floor for a candidate match.
const MinScore = 0.6

// RankedCandidate is a form candidate scored against a field's label hints.
type RankedCandidate struct {
	Score     float64
	Candidate FormCandidate
}

// Rank scores every candidate against the field's ordered label hints (a
// candidate's score is its best hint) and sorts by score descending with
// label then locator as tie-breaks, so identical inputs always rank
// identically.
func Rank(candidates []FormCandidate, labels []string) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		best := 0.0
		for _, label := range labels {
			if s := Similarity(label, c.Label); s > best {
				best = s
			}
		}
		ranked = append(ranked, RankedCandidate{Score: best, Candidate: c})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		li, lj := strings.ToLower(ranked[i].Candidate.Label), strings.ToLower(ranked[j].Candidate.Label)
		if li != lj {
			return li < lj
		}
		return ranked[i].Candidate.Locator < ranked[j].Candidate.Locator
	})
	return ranked
}

// SortCandidates puts discovered candidates into a stable order before
// ranking, so discovery order cannot leak into match results.
func SortCandidates(candidates []FormCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		li, lj := strings.ToLower(candidates[i].Label), strings.ToLower(candidates[j].Label)
		if li != lj {
			return li < lj
		}
		return candidates[i].Locator < candidates[j].Locator
	})
}

// normalizeCompare flattens a value for readback comparison.
func normalizeCompare(value string) string {
	return reCompareStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "")
}

// abbrev reduces a label to its initialism ("New York" -> "NY").
func abbrev(label string) string {
	var b strings.Builder
	for _, part := range reAbbrevSplit.Split(strings.TrimSpace(label), -1) {
		if part != "" {
			b.WriteByte(part[0])
		}
	}
	return strings.ToUpper(b.String())
}
