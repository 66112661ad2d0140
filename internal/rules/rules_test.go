package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestValidator() *Validator {
	return New(WithClock(fixedClock))
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	tests := []struct {
		name    string
		value   string
		valid   bool
		code    string
		norm    string
	}{
		{"plain name", "Garcia", true, "name_ok", ""},
		{"normalizes case", "GARCIA", true, "name_normalize", "Garcia"},
		{"digits rejected", "G4rcia", false, "name_numeric", ""},
		{"too short", "G", false, "name_length", ""},
		{"too many words", "a b c d e f g", false, "name_word_count", ""},
		{"label capture", "Family Name (Last Name)", false, "label_noise", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verdict := v.Validate("passport.surname", model.TypeName, tt.value, []string{"family name", "last name"}, Context{})
			assert.Equal(t, tt.valid, verdict.IsValid)
			assert.Contains(t, verdict.ReasonCodes, tt.code)
			if tt.norm != "" {
				assert.Equal(t, tt.norm, verdict.NormalizedValue)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	verdict := v.Validate("rep.client.email", model.TypeEmail, "maria@example.com", nil, Context{})
	assert.True(t, verdict.IsValid)

	verdict = v.Validate("rep.client.email", model.TypeEmail, "maria @ example.com", nil, Context{})
	assert.True(t, verdict.IsValid, "internal whitespace is stripped before matching")
	assert.Equal(t, "maria@example.com", verdict.NormalizedValue)

	verdict = v.Validate("rep.client.email", model.TypeEmail, "not-an-email", nil, Context{})
	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.ReasonCodes, "email_format")
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	tests := []struct {
		name  string
		value string
		valid bool
		norm  string
	}{
		{"ten digits formatted", "(212) 555-0173", true, "212-555-0173"},
		{"eleven with country code", "1-212-555-0173", true, "212-555-0173"},
		{"already canonical", "212-555-0173", true, ""},
		{"too short", "555-01", false, ""},
		{"too long", "123456789012345678", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verdict := v.Validate("rep.attorney.phone", model.TypePhone, tt.value, nil, Context{})
			assert.Equal(t, tt.valid, verdict.IsValid)
			if tt.norm != "" {
				assert.Equal(t, tt.norm, verdict.NormalizedValue)
			}
		})
	}
}

func TestValidateState(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	t.Run("two letter code is green", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.state", model.TypeState, "NY", nil, Context{})
		require.True(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "state_ok")
		assert.False(t, HasBenignAmber(verdict.ReasonCodes))
	})

	t.Run("full name passes amber", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.state", model.TypeState, "California", nil, Context{})
		require.True(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "state_non_standard")
		assert.True(t, HasBenignAmber(verdict.ReasonCodes))
		assert.Negative(t, verdict.ConfidenceDelta)
	})

	t.Run("spaces in name rejected", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.state", model.TypeState, "NEW YORK", nil, Context{})
		assert.False(t, verdict.IsValid)
	})

	t.Run("digits rejected", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.state", model.TypeState, "N1", nil, Context{})
		assert.False(t, verdict.IsValid)
	})
}

func TestValidateZip(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	t.Run("us five digit", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.zip", model.TypeZip, "10001", nil, Context{})
		assert.True(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "zip_ok")
	})

	t.Run("us plus four", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.zip", model.TypeZip, "10001-1234", nil, Context{})
		assert.True(t, verdict.IsValid)
	})

	t.Run("foreign postal needs non-us country", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.zip", model.TypeZip, "SW1A 1AA", nil, Context{Country: "United Kingdom"})
		require.True(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "postal_ok")
		assert.True(t, HasBenignAmber(verdict.ReasonCodes))
	})

	t.Run("foreign postal with us country fails", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.client.address.zip", model.TypeZip, "SW1A 1AA", nil, Context{Country: "USA"})
		assert.False(t, verdict.IsValid)
	})
}

func TestValidateDates(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	t.Run("past date ok for date_past", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("passport.date_of_birth", model.TypeDatePast, "1974-08-12", nil, Context{})
		assert.True(t, verdict.IsValid)
	})

	t.Run("future birth date rejected", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("passport.date_of_birth", model.TypeDatePast, "2031-01-01", nil, Context{})
		assert.False(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "date_future")
	})

	t.Run("expired passport rejected for date_future", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("passport.date_of_expiration", model.TypeDateFuture, "2012-04-15", nil, Context{})
		assert.False(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "date_past")
	})

	t.Run("us format normalizes", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("passport.date_of_birth", model.TypeDatePast, "08/12/1974", nil, Context{})
		require.True(t, verdict.IsValid)
		assert.Equal(t, "1974-08-12", verdict.NormalizedValue)
	})

	t.Run("garbage fails", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("passport.date_of_birth", model.TypeDatePast, "not a date", nil, Context{})
		assert.False(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "date_format")
	})
}

func TestValidatePassportNumber(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	verdict := v.Validate("passport.passport_number", model.TypePassportNumber, "L898902C3", nil, Context{})
	assert.True(t, verdict.IsValid)

	verdict = v.Validate("passport.passport_number", model.TypePassportNumber, "l 898902c3", nil, Context{})
	require.True(t, verdict.IsValid)
	assert.Equal(t, "L898902C3", verdict.NormalizedValue)

	verdict = v.Validate("passport.passport_number", model.TypePassportNumber, "12", nil, Context{})
	assert.False(t, verdict.IsValid)
}

func TestValidateStreet(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	verdict := v.Validate("rep.attorney.address.street", model.TypeText, "123 Main Street", nil, Context{})
	assert.True(t, verdict.IsValid)

	verdict = v.Validate("rep.attorney.address.street", model.TypeText, "Street Number and Name", []string{"street number and name"}, Context{})
	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.ReasonCodes, "address_label")

	verdict = v.Validate("rep.attorney.address.street", model.TypeText, "Main Street", nil, Context{})
	assert.False(t, verdict.IsValid, "street needs a number")
}

func TestValidateUnit(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	t.Run("placeholder allowed when optional", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.attorney.address.unit", model.TypeText, "N/A", nil, Context{AllowPlaceholder: true})
		require.True(t, verdict.IsValid)
		assert.Contains(t, verdict.ReasonCodes, "unit_placeholder")
	})

	t.Run("unit marker passes", func(t *testing.T) {
		t.Parallel()
		verdict := v.Validate("rep.attorney.address.unit", model.TypeText, "Apt 4B", nil, Context{})
		assert.True(t, verdict.IsValid)
	})
}

func TestValidateAccountNumber(t *testing.T) {
	t.Parallel()

	v := newTestValidator()

	verdict := v.Validate("rep.client.online_account_number", model.TypeText, "123456789", nil, Context{})
	assert.True(t, verdict.IsValid)
	assert.Contains(t, verdict.ReasonCodes, "account_number_ok")

	verdict = v.Validate("rep.client.online_account_number", model.TypeText, "123-456-789", nil, Context{})
	require.True(t, verdict.IsValid)
	assert.Equal(t, "123456789", verdict.NormalizedValue)

	verdict = v.Validate("rep.client.online_account_number", model.TypeText, "A1234567", nil, Context{})
	require.True(t, verdict.IsValid)
	assert.Contains(t, verdict.ReasonCodes, "account_number_unverified")
	assert.True(t, HasBenignAmber(verdict.ReasonCodes))

	verdict = v.Validate("rep.client.online_account_number", model.TypeText, "none at all", nil, Context{})
	assert.False(t, verdict.IsValid)
}

func TestValidateEmpty(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	verdict := v.Validate("passport.surname", model.TypeName, "   ", nil, Context{})
	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.ReasonCodes, "empty")
}
