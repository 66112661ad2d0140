package rules

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/sells-group/intake-cli/internal/model"
)

var (
	reEmail       = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	rePassport    = regexp.MustCompile(`^[A-Z0-9]{7,9}$`)
	reZipUS       = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	rePostal      = regexp.MustCompile(`^[A-Za-z0-9 -]{3,10}$`)
	reDigit       = regexp.MustCompile(`\d`)
	reAlphaRun    = regexp.MustCompile(`[A-Za-z]{2,}`)
	reUnitMarker  = regexp.MustCompile(`(?i)\b(apt|ste|suite|flr|floor|unit|#)\b`)
	reLetters     = regexp.MustCompile(`[A-Za-z]`)
	reStripSpaces = regexp.MustCompile(`\s+`)
)

var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true,
}

// IsUSState reports whether code is a standard 2-letter state abbreviation.
func IsUSState(code string) bool { return usStates[strings.ToUpper(strings.TrimSpace(code))] }

// IsUSCountry reports whether value names the United States.
func IsUSCountry(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "united states", "usa", "us":
		return true
	}
	return false
}

// Context carries cross-field inputs a single-value check may need.
type Context struct {
	// Country gates ZIP validation: non-US addresses accept generic
	// postal codes.
	Country string
	// AllowPlaceholder lets unit fields accept "N/A"-style markers.
	AllowPlaceholder bool
}

// Validator runs deterministic per-value checks. It never touches the
// network; the clock is injectable for date-direction tests.
type Validator struct {
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New returns a Validator with the real clock.
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func invalid(codes []string, normalized string, delta float64) model.RuleVerdict {
	return model.RuleVerdict{IsValid: false, ReasonCodes: codes, NormalizedValue: normalized, ConfidenceDelta: delta}
}

func valid(codes []string, normalized string, delta float64) model.RuleVerdict {
	return model.RuleVerdict{IsValid: true, ReasonCodes: codes, NormalizedValue: normalized, ConfidenceDelta: delta}
}

func alphaRatio(value string) float64 {
	letters, total := 0, 0
	for _, ch := range value {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			total++
			if unicode.IsLetter(ch) {
				letters++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// Validate dispatches on the field's path and type, mirroring how a reviewer
// would check the value by hand. Empty values are a distinct signal from a
// wrong format.
func (v *Validator) Validate(path string, fieldType model.FieldType, value string, labelHints []string, ctx Context) model.RuleVerdict {
	value = strings.TrimSpace(value)
	if value == "" {
		return invalid([]string{"empty"}, "", -0.2)
	}
	switch {
	case strings.HasSuffix(path, "address.street"):
		return v.validateStreet(value, labelHints)
	case strings.HasSuffix(path, "address.unit"):
		return v.validateUnit(value, labelHints, ctx.AllowPlaceholder)
	case strings.HasSuffix(path, "address.city"):
		return v.validateCity(value, labelHints)
	case strings.HasSuffix(path, "address.state"):
		return v.validateState(value)
	case strings.HasSuffix(path, "address.zip"):
		return v.validateZip(value, ctx.Country)
	case strings.HasSuffix(path, "address.country"):
		return v.validateCountry(value, labelHints)
	case strings.HasSuffix(path, "online_account_number"):
		return v.validateAccountNumber(value, labelHints)
	}
	switch fieldType {
	case model.TypeName:
		return v.validateName(value, labelHints)
	case model.TypeEmail:
		return v.validateEmail(value, labelHints)
	case model.TypePhone:
		return v.validatePhone(value, labelHints)
	case model.TypePassportNumber:
		return v.validatePassportNumber(value)
	case model.TypeSex:
		return v.validateSex(value)
	case model.TypeDatePast, model.TypeDateFuture:
		return v.validateDate(value, fieldType)
	case model.TypeZip:
		return v.validateZip(value, ctx.Country)
	case model.TypeState:
		return v.validateState(value)
	}
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"label_noise"}, "", -0.3)
	}
	return valid([]string{"text_ok"}, "", 0)
}

func (v *Validator) validateName(value string, labelHints []string) model.RuleVerdict {
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"label_noise"}, "", -0.3)
	}
	if reOnlySymbols.MatchString(value) {
		return invalid([]string{"name_length"}, "", -0.3)
	}
	if reDigit.MatchString(value) {
		return invalid([]string{"name_numeric"}, "", -0.2)
	}
	if len(strings.TrimSpace(value)) < 2 {
		return invalid([]string{"name_length"}, "", -0.2)
	}
	if len(strings.Fields(value)) > 6 {
		return invalid([]string{"name_word_count"}, "", -0.1)
	}
	if alphaRatio(value) < 0.5 {
		return invalid([]string{"name_format"}, "", -0.2)
	}
	if normalized := NormalizeName(value); normalized != "" && normalized != value {
		return valid([]string{"name_normalize"}, normalized, 0.05)
	}
	return valid([]string{"name_ok"}, "", 0)
}

func (v *Validator) validateEmail(value string, labelHints []string) model.RuleVerdict {
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"email_label"}, "", -0.3)
	}
	cleaned := reStripSpaces.ReplaceAllString(value, "")
	normalized := NormalizeEmail(cleaned)
	if normalized != "" && reEmail.MatchString(normalized) {
		if normalized != value {
			return valid([]string{"email_normalize"}, normalized, 0.05)
		}
		return valid([]string{"email_ok"}, "", 0)
	}
	return invalid([]string{"email_format"}, "", -0.2)
}

func (v *Validator) validatePhone(value string, labelHints []string) model.RuleVerdict {
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"phone_label"}, "", -0.3)
	}
	digits := reNonDigit.ReplaceAllString(value, "")
	if len(digits) < 7 || len(digits) > 15 {
		normalized := NormalizePhone(value)
		if normalized == value {
			normalized = ""
		}
		return invalid([]string{"phone_format"}, normalized, -0.2)
	}
	if normalized := NormalizePhone(value); normalized != "" && normalized != value {
		return valid([]string{"phone_normalize"}, normalized, 0.05)
	}
	return valid([]string{"phone_ok"}, "", 0)
}

func (v *Validator) validatePassportNumber(value string) model.RuleVerdict {
	normalized := NormalizePassportNumber(value)
	if normalized == "" || !rePassport.MatchString(normalized) {
		return invalid([]string{"passport_format"}, normalized, -0.2)
	}
	if normalized != value {
		return valid([]string{"passport_normalize"}, normalized, 0.05)
	}
	return valid([]string{"passport_ok"}, "", 0)
}

func (v *Validator) validateSex(value string) model.RuleVerdict {
	normalized := NormalizeSex(value)
	if normalized == "" {
		return invalid([]string{"sex_value"}, "", -0.2)
	}
	if normalized != value {
		return valid([]string{"sex_normalize"}, normalized, 0.05)
	}
	return valid([]string{"sex_ok"}, "", 0)
}

func (v *Validator) validateState(value string) model.RuleVerdict {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if reDigit.MatchString(raw) || len(raw) < 2 {
		return invalid([]string{"state_format"}, "", -0.2)
	}
	if len(raw) == 2 {
		normalized := ""
		if raw != value {
			normalized = raw
		}
		return valid([]string{"state_ok"}, normalized, 0)
	}
	if len(raw) <= 30 && isAlpha(raw) {
		// Full state names pass with a penalty so they surface amber.
		return valid([]string{"state_non_standard"}, NormalizeName(value), -0.1)
	}
	return invalid([]string{"state_format"}, "", -0.2)
}

func isAlpha(s string) bool {
	for _, ch := range s {
		if !unicode.IsLetter(ch) {
			return false
		}
	}
	return s != ""
}

func (v *Validator) validateZip(value, country string) model.RuleVerdict {
	raw := strings.TrimSpace(value)
	if reZipUS.MatchString(raw) {
		return valid([]string{"zip_ok"}, "", 0)
	}
	if country != "" && !IsUSCountry(country) && rePostal.MatchString(raw) {
		return valid([]string{"postal_ok"}, "", -0.1)
	}
	return invalid([]string{"zip_format"}, "", -0.2)
}

func (v *Validator) validateDate(value string, fieldType model.FieldType) model.RuleVerdict {
	normalized := ""
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		normalized = NormalizeDate(value, false)
		if normalized == "" {
			return invalid([]string{"date_format"}, "", -0.2)
		}
		parsed, err = time.Parse("2006-01-02", normalized)
		if err != nil {
			return invalid([]string{"date_format"}, normalized, -0.2)
		}
	}
	today := v.now().Truncate(24 * time.Hour)
	if fieldType == model.TypeDatePast && parsed.After(today) {
		out := normalized
		if out == "" {
			out = value
		}
		return invalid([]string{"date_future"}, out, -0.2)
	}
	if fieldType == model.TypeDateFuture && parsed.Before(today) {
		out := normalized
		if out == "" {
			out = value
		}
		return invalid([]string{"date_past"}, out, -0.2)
	}
	if normalized != "" && normalized != value {
		return valid([]string{"date_normalize"}, normalized, 0.05)
	}
	return valid([]string{"date_ok"}, "", 0)
}

func (v *Validator) validateStreet(value string, labelHints []string) model.RuleVerdict {
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"address_label"}, "", -0.3)
	}
	if !reDigit.MatchString(value) || !reAlphaRun.MatchString(value) {
		return invalid([]string{"address_street_format"}, "", -0.2)
	}
	return valid([]string{"address_street_ok"}, "", 0)
}

func (v *Validator) validateUnit(value string, labelHints []string, allowPlaceholder bool) model.RuleVerdict {
	if allowPlaceholder && IsPlaceholder(value) {
		return valid([]string{"unit_placeholder"}, strings.TrimSpace(value), -0.05)
	}
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"address_label"}, "", -0.3)
	}
	if reUnitMarker.MatchString(value) || reDigit.MatchString(value) {
		return valid([]string{"address_unit_ok"}, "", 0)
	}
	return invalid([]string{"address_unit_format"}, "", -0.1)
}

func (v *Validator) validateCity(value string, labelHints []string) model.RuleVerdict {
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"address_label"}, "", -0.3)
	}
	if reDigit.MatchString(value) || !reAlphaRun.MatchString(value) {
		return invalid([]string{"address_city_format"}, "", -0.2)
	}
	return valid([]string{"address_city_ok"}, "", 0)
}

func (v *Validator) validateCountry(value string, labelHints []string) model.RuleVerdict {
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"address_label"}, "", -0.3)
	}
	if reDigit.MatchString(value) || !reAlphaRun.MatchString(value) {
		return invalid([]string{"address_country_format"}, "", -0.2)
	}
	if normalized := NormalizeCountry(value); normalized != "" && normalized != value {
		return valid([]string{"country_normalize"}, normalized, 0.05)
	}
	return valid([]string{"address_country_ok"}, "", 0)
}

func (v *Validator) validateAccountNumber(value string, labelHints []string) model.RuleVerdict {
	if LooksLikeLabelOrHeader(value, labelHints) {
		return invalid([]string{"label_noise"}, "", -0.3)
	}
	raw := strings.TrimSpace(value)
	digits := reNonDigit.ReplaceAllString(raw, "")
	if digits == "" {
		return invalid([]string{"account_number_missing_digits"}, "", -0.2)
	}
	if reLetters.MatchString(raw) {
		return valid([]string{"account_number_unverified"}, "", -0.1)
	}
	if len(digits) < 8 || len(digits) > 15 {
		return valid([]string{"account_number_unverified"}, "", -0.1)
	}
	if digits != raw {
		return valid([]string{"account_number_normalize"}, digits, 0.02)
	}
	return valid([]string{"account_number_ok"}, "", 0)
}

// BenignAmberCodes are validation reason codes that pass but should surface
// as amber rather than green.
var BenignAmberCodes = map[string]bool{
	"state_non_standard":        true,
	"postal_ok":                 true,
	"unit_placeholder":          true,
	"account_number_unverified": true,
}

// HasBenignAmber reports whether any reason code downgrades a pass to amber.
func HasBenignAmber(codes []string) bool {
	for _, c := range codes {
		if BenignAmberCodes[c] {
			return true
		}
	}
	return false
}
