package mrz

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/confidence"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/rules"
)

// Apply merges a parsed MRZ into the record as machine-zone candidates. A
// field whose check digit failed is written with OCR-tier confidence
// instead of the MRZ tier, so the resolver treats it as a weaker source.
func Apply(rec *model.Record, res *Result) error {
	if res == nil {
		return nil
	}
	evidence := strings.TrimSpace(res.RawLines[0] + "\n" + res.RawLines[1])

	set := func(path, value string, checkOK bool) error {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		source := model.SourceMRZ
		if !checkOK {
			source = model.SourceOCR
		}
		return confidence.SetField(rec, path, value, source, -1, evidence, confidence.MatchExact)
	}

	steps := []error{
		set("passport.surname", res.Surname, true),
		set("passport.given_names", res.GivenNames, true),
		set("passport.full_name", res.FullName, true),
		set("passport.passport_number", res.PassportNumber, res.Checks.PassportNumber),
		set("passport.nationality", res.Nationality, true),
		set("passport.country_of_issue", res.CountryOfIssue, true),
		set("passport.date_of_birth", res.DateOfBirth, res.Checks.DateOfBirth),
		set("passport.date_of_expiration", res.DateOfExpiration, res.Checks.DateOfExpiration),
		set("passport.sex", rules.NormalizeSex(res.Sex), true),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}

	zap.L().Info("machine zone merged",
		zap.String("passport_number", res.PassportNumber),
		zap.Bool("checks_valid", res.Checks.AllValid()),
	)
	return nil
}
