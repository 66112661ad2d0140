package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reNonDigit = regexp.MustCompile(`\D`)

	titleCaser = cases.Title(language.AmericanEnglish)
)

var countryAliases = map[string]string{
	"USA":                      "United States",
	"U.S.A.":                   "United States",
	"US":                       "United States",
	"U.S.":                     "United States",
	"UNITED STATES OF AMERICA": "United States",
	"UNITED STATES":            "United States",
}

// NormalizeName collapses whitespace and title-cases the result.
func NormalizeName(value string) string {
	cleaned := reSpaces.ReplaceAllString(strings.TrimSpace(value), " ")
	if cleaned == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(cleaned))
}

// NormalizeSex maps to the M/F/X vocabulary, empty when unrecognized.
func NormalizeSex(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch v {
	case "M", "F", "X":
		return v
	}
	return ""
}

// NormalizePhone formats 10-digit US numbers as NNN-NNN-NNNN, stripping a
// leading country code 1. Anything else comes back trimmed but unformatted.
func NormalizePhone(value string) string {
	digits := reNonDigit.ReplaceAllString(value, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return fmt.Sprintf("%s-%s-%s", digits[0:3], digits[3:6], digits[6:10])
	}
	return strings.TrimSpace(value)
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeCountry resolves common US aliases and title-cases the rest.
func NormalizeCountry(value string) string {
	cleaned := reSpaces.ReplaceAllString(strings.TrimSpace(value), " ")
	if cleaned == "" {
		return ""
	}
	if canonical, ok := countryAliases[strings.ToUpper(cleaned)]; ok {
		return canonical
	}
	return titleCaser.String(strings.ToLower(cleaned))
}

// NormalizePassportNumber strips whitespace and uppercases.
func NormalizePassportNumber(value string) string {
	return strings.ToUpper(reSpaces.ReplaceAllString(strings.TrimSpace(value), ""))
}

// NormalizeFullName joins the non-empty parts and normalizes as a name.
func NormalizeFullName(given, middle, family string) string {
	var parts []string
	for _, p := range []string{given, middle, family} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return NormalizeName(strings.Join(parts, " "))
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 January 2006",
	"Jan 02 2006",
}

var reMRZDate = regexp.MustCompile(`^\d{6}$`)

// NormalizeDate parses common scanned-document date shapes into ISO
// YYYY-MM-DD. mrzStyle treats a bare 6-digit value as MRZ YYMMDD with a
// sliding century window. Returns empty when nothing parses.
func NormalizeDate(value string, mrzStyle bool) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	if mrzStyle && reMRZDate.MatchString(raw) {
		return NormalizeMRZDate(raw)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// NormalizeMRZDate expands a YYMMDD value: two-digit years at or below the
// current year land in 2000s, the rest in 1900s.
func NormalizeMRZDate(raw string) string {
	if !reMRZDate.MatchString(raw) {
		return ""
	}
	year := int(raw[0]-'0')*10 + int(raw[1]-'0')
	century := 1900
	if year <= time.Now().Year()%100 {
		century = 2000
	}
	t, err := time.Parse("2006-01-02", fmt.Sprintf("%04d-%s-%s", century+year, raw[2:4], raw[4:6]))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
