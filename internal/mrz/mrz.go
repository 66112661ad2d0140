// Package mrz parses the TD3 machine-readable zone on a passport identity
// page: two 44-character lines with 7-3-1 weighted check digits. Input is
// raw OCR text, so line recovery tolerates dropped newlines and stray
// characters.
package mrz

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/intake-cli/internal/rules"
)

var (
	reLine      = regexp.MustCompile(`^[A-Z0-9<]{30,46}$`)
	reCandidate = regexp.MustCompile(`[A-Z0-9<]{44}`)
	reAlpha3    = regexp.MustCompile(`^[A-Z]{3}$`)
	reSixDigits = regexp.MustCompile(`^\d{6}$`)
)

// Checks reports which TD3 check digits verified.
type Checks struct {
	PassportNumber   bool
	DateOfBirth      bool
	DateOfExpiration bool
}

// AllValid reports whether every check digit verified.
func (c Checks) AllValid() bool {
	return c.PassportNumber && c.DateOfBirth && c.DateOfExpiration
}

// Result is a parsed TD3 zone.
type Result struct {
	DocumentCode     string
	GivenNames       string
	Surname          string
	FullName         string
	Nationality      string
	CountryOfIssue   string
	PassportNumber   string
	DateOfBirth      string
	DateOfExpiration string
	Sex              string
	Checks           Checks
	RawLines         [2]string
}

// CheckDigit computes the 7-3-1 weighted check digit over value. Digits
// carry their own value, '<' is zero, letters are ord-55.
func CheckDigit(value string) byte {
	weights := [3]int{7, 3, 1}
	total := 0
	for i := 0; i < len(value); i++ {
		ch := value[i]
		var v int
		switch {
		case ch >= '0' && ch <= '9':
			v = int(ch - '0')
		case ch == '<':
			v = 0
		default:
			v = int(ch) - 55
		}
		total += v * weights[i%3]
	}
	return byte('0' + total%10)
}

// ValidCheckDigit reports whether digit verifies value.
func ValidCheckDigit(value, digit string) bool {
	if digit == "" || digit == "<" {
		return false
	}
	return digit[0] == CheckDigit(value)
}

func normalizeLine(raw string) string {
	line := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '<' {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// ExtractLines recovers the two TD3 lines from OCR text. Clean matching
// lines win; otherwise two 44-char chunks are pulled from concatenated
// text, biased toward the bottom of the page.
func ExtractLines(text string) []string {
	var lines, longLines []string
	for _, raw := range strings.Split(text, "\n") {
		line := normalizeLine(raw)
		if reLine.MatchString(line) && strings.Contains(line, "<") {
			lines = append(lines, line)
		} else if len(line) >= 44 {
			longLines = append(longLines, line)
		}
	}
	if len(lines) >= 2 {
		return lines[len(lines)-2:]
	}
	for i := len(longLines) - 1; i >= 0; i-- {
		if chunks := extractChunks(longLines[i]); chunks != nil {
			return chunks
		}
	}
	if chunks := extractChunks(normalizeLine(text)); chunks != nil {
		return chunks
	}
	return nil
}

func extractChunks(line string) []string {
	if len(line) >= 88 {
		tail := line[len(line)-88:]
		if strings.Contains(tail, "<") {
			return []string{tail[:44], tail[44:88]}
		}
	}
	var chunks []string
	for _, chunk := range reCandidate.FindAllString(line, -1) {
		if strings.Contains(chunk, "<") {
			chunks = append(chunks, chunk)
		}
	}
	if len(chunks) >= 2 {
		return chunks[len(chunks)-2:]
	}
	return nil
}

// bestLine1 trims an overlong first line, anchoring on the "P<" document
// code when present.
func bestLine1(line string) string {
	if len(line) <= 44 {
		return line
	}
	if idx := strings.Index(line, "P<"); idx >= 0 {
		candidate := line[idx:]
		if len(candidate) > 44 {
			candidate = candidate[:44]
		}
		if len(candidate) >= 40 {
			return candidate
		}
	}
	return line[:44]
}

// bestLine2 slides a 44-char window over an overlong second line and keeps
// the offset whose check digits verify best.
func bestLine2(line string) string {
	if len(line) <= 44 {
		return line
	}
	best := line[:44]
	bestScore := -1.0
	for idx := 0; idx+44 <= len(line); idx++ {
		candidate := line[idx : idx+44]
		if !strings.Contains(candidate, "<") {
			continue
		}
		score := 0.0
		if ValidCheckDigit(candidate[0:9], candidate[9:10]) {
			score += 2.0
		}
		if ValidCheckDigit(candidate[13:19], candidate[19:20]) {
			score += 1.5
		}
		if ValidCheckDigit(candidate[21:27], candidate[27:28]) {
			score += 1.5
		}
		if reAlpha3.MatchString(candidate[10:13]) {
			score += 0.5
		}
		switch candidate[20] {
		case 'M', 'F', 'X':
			score += 0.25
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

func birthDate(raw string) string {
	return rules.NormalizeMRZDate(strings.TrimSpace(raw))
}

// expiryDate expands YYMMDD preferring the nearest non-past date: an expiry
// already decades in the past almost always means a 1900s century guess was
// wrong.
func expiryDate(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !reSixDigits.MatchString(cleaned) {
		return rules.NormalizeDate(cleaned, true)
	}
	var candidates []time.Time
	for _, century := range []int{2000, 1900} {
		year := century + int(cleaned[0]-'0')*10 + int(cleaned[1]-'0')
		t, err := time.Parse("2006-01-02", fmt.Sprintf("%04d-%s-%s", year, cleaned[2:4], cleaned[4:6]))
		if err != nil {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return ""
	}
	today := time.Now().Truncate(24 * time.Hour)
	var chosen time.Time
	found := false
	for _, c := range candidates {
		if !c.Before(today) && (!found || c.Before(chosen)) {
			chosen = c
			found = true
		}
	}
	if !found {
		for _, c := range candidates {
			if c.After(chosen) {
				chosen = c
			}
		}
	}
	return chosen.Format("2006-01-02")
}

func stripFiller(s string) string {
	return strings.ReplaceAll(s, "<", "")
}

// Parse interprets two recovered TD3 lines. Short lines are padded with
// filler; overlong lines are windowed down to 44 characters.
func Parse(lines []string) (*Result, bool) {
	if len(lines) < 2 {
		return nil, false
	}
	line1 := bestLine1(lines[0])
	line2 := bestLine2(lines[1])
	if len(line1) < 44 {
		line1 = line1 + strings.Repeat("<", 44-len(line1))
	}
	if len(line2) < 44 {
		line2 = line2 + strings.Repeat("<", 44-len(line2))
	}
	line1, line2 = line1[:44], line2[:44]

	documentCode := line1[0:2]
	issuingCountry := stripFiller(line1[2:5])
	namesRaw := line1[5:44]

	passportNumber := stripFiller(line2[0:9])
	passportCD := line2[9:10]
	nationality := stripFiller(line2[10:13])
	dobRaw := line2[13:19]
	dobCD := line2[19:20]
	sex := line2[20:21]
	expiryRaw := line2[21:27]
	expiryCD := line2[27:28]

	// A first line missing its country code shifts the name field left;
	// realign using the nationality from line two.
	if nationality != "" && issuingCountry != "" && issuingCountry != nationality {
		pre := strings.SplitN(line1, "<<", 2)[0]
		pre = strings.TrimPrefix(pre, "P<")
		if len(pre) >= 5 && !strings.HasPrefix(pre, nationality) {
			issuingCountry = nationality
			namesRaw = line1[2:44]
		}
	}
	if nationality != "" && len(issuingCountry) < 3 {
		issuingCountry = nationality
	}

	nameParts := strings.Split(namesRaw, "<<")
	surname := strings.TrimSpace(strings.ReplaceAll(nameParts[0], "<", " "))
	givenNames := ""
	if len(nameParts) > 1 {
		givenNames = strings.TrimSpace(strings.ReplaceAll(strings.Join(nameParts[1:], " "), "<", " "))
	}

	normalizedGiven := rules.NormalizeName(givenNames)
	normalizedSurname := rules.NormalizeName(surname)

	res := &Result{
		DocumentCode:     documentCode,
		GivenNames:       normalizedGiven,
		Surname:          normalizedSurname,
		FullName:         rules.NormalizeFullName(normalizedGiven, "", normalizedSurname),
		Nationality:      nationality,
		CountryOfIssue:   issuingCountry,
		PassportNumber:   passportNumber,
		DateOfBirth:      birthDate(dobRaw),
		DateOfExpiration: expiryDate(expiryRaw),
		Sex:              rules.NormalizeSex(sex),
		Checks: Checks{
			PassportNumber:   ValidCheckDigit(line2[0:9], passportCD),
			DateOfBirth:      ValidCheckDigit(dobRaw, dobCD),
			DateOfExpiration: ValidCheckDigit(expiryRaw, expiryCD),
		},
		RawLines: [2]string{line1, line2},
	}
	return res, true
}

// ParseText recovers and parses the TD3 zone from raw OCR text.
func ParseText(text string) (*Result, bool) {
	lines := ExtractLines(text)
	if lines == nil {
		return nil, false
	}
	return Parse(lines)
}
