package model

const attestationReason = "Human attestation required; do not autofill."
const consentReason = "Client consent required; do not autofill."

// defaultFields is the built-in field table: passport identity page plus the
// representation form's attorney, client, and consent sections. Autofill
// labels are ordered most specific first; Order controls fill sequence.
func defaultFields() []FieldSpec {
	return []FieldSpec{
		// Passport
		{
			Path: "passport.given_names", Group: "passport", Type: TypeName, Required: true,
			Label:      "Passport given names",
			LabelHints: []string{"Given Names", "First Name"},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"1.b. First Name(s)", "Given Name", "First Name"}, Order: 31},
		},
		{
			Path: "passport.surname", Group: "passport", Type: TypeName, Required: true,
			Label:      "Passport surname",
			LabelHints: []string{"Surname", "Last Name"},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"1.a. Last Name", "Family Name", "Last Name"}, Order: 30},
		},
		{
			Path: "passport.full_name", Group: "passport", Type: TypeName,
			Label: "Passport full name",
		},
		{
			Path: "passport.date_of_birth", Group: "passport", Type: TypeDatePast, Required: true,
			Label:      "Date of birth",
			LabelHints: []string{"Date of Birth", "DOB"},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"5.a. Date of Birth", "Date of Birth", "DOB"}, Order: 33},
		},
		{
			Path: "passport.place_of_birth", Group: "passport", Type: TypeText,
			Label:      "Place of birth",
			LabelHints: []string{"Place of Birth"},
			Autofill:   &AutofillSpec{Labels: []string{"5.b. Place of Birth", "Place of Birth"}, Order: 37},
			// OCR routinely mangles place names that pass the cheap rules.
			LLMAlways: true,
		},
		{
			Path: "passport.nationality", Group: "passport", Type: TypeText,
			Label:      "Nationality",
			LabelHints: []string{"Nationality"},
			Autofill:   &AutofillSpec{Labels: []string{"4. Nationality", "Nationality"}, Order: 36},
		},
		{
			Path: "passport.country_of_issue", Group: "passport", Type: TypeText,
			Label:      "Country of issue",
			LabelHints: []string{"Country of Issue", "Issuing Country"},
			Autofill:   &AutofillSpec{Labels: []string{"3. Country of Issue", "Country of Issue"}, Order: 35},
		},
		{
			Path: "passport.passport_number", Group: "passport", Type: TypePassportNumber, Required: true,
			Label:      "Passport number",
			LabelHints: []string{"Passport Number", "Passport No"},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"2. Passport Number", "Passport Number"}, Order: 34},
		},
		{
			Path: "passport.date_of_issue", Group: "passport", Type: TypeDatePast,
			Label:      "Date of issue",
			LabelHints: []string{"Date of Issue"},
			Autofill:   &AutofillSpec{Labels: []string{"7.a. Date of Issue", "Date of Issue"}, Order: 38},
		},
		{
			Path: "passport.date_of_expiration", Group: "passport", Type: TypeDateFuture, Required: true,
			Label:      "Date of expiration",
			LabelHints: []string{"Date of Expiry", "Expiration", "Expiry"},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"7.b. Date of Expiration", "Date of Expiry", "Expiration"}, Order: 39},
		},
		{
			Path: "passport.sex", Group: "passport", Type: TypeSex,
			Label:      "Sex",
			LabelHints: []string{"Sex"},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"6. Sex", "Sex"}, Order: 32},
		},

		// Attorney
		{
			Path: "rep.attorney.online_account_number", Group: "rep.attorney", Type: TypeText,
			Label:      "Online account number",
			LabelHints: []string{"Online Account Number"},
			Autofill:   &AutofillSpec{Labels: []string{"1. Online Account Number (if any)", "Online Account Number"}, Order: 0},
		},
		{
			Path: "rep.attorney.family_name", Group: "rep.attorney", Type: TypeName, Required: true,
			Label:      "Attorney family name",
			LabelHints: []string{"Family Name", "Last Name", `2\s*\.?a`, `2a\.?`},
			Validate:   true,
			Autofill: &AutofillSpec{
				Labels: []string{"2.a. Family Name (Last Name)", "2.a. Family Name", "Family Name", "Last Name"},
				Order:  1,
			},
		},
		{
			Path: "rep.attorney.given_name", Group: "rep.attorney", Type: TypeName, Required: true,
			Label:      "Attorney given name",
			LabelHints: []string{"Given Name", "First Name", `2\s*\.?b`, `2b\.?`},
			Validate:   true,
			Autofill: &AutofillSpec{
				Labels: []string{"2.b. Given Name (First Name)", "2.b. Given Name", "Given Name", "First Name"},
				Order:  2,
			},
		},
		{
			Path: "rep.attorney.middle_name", Group: "rep.attorney", Type: TypeName,
			Label:      "Attorney middle name",
			LabelHints: []string{"Middle Name", `2\s*\.?c`, `2c\.?`},
			Autofill:   &AutofillSpec{Labels: []string{"2.c. Middle Name", "Middle Name"}, Order: 3},
		},
		{
			Path: "rep.attorney.full_name", Group: "rep.attorney", Type: TypeName,
			Label: "Attorney full name",
		},
		{
			Path: "rep.attorney.law_firm_name", Group: "rep.attorney", Type: TypeText,
			Label:      "Law firm name",
			LabelHints: []string{"Law Firm", "Organization Name", "Name of Law Firm"},
			Autofill: &AutofillSpec{
				Labels: []string{
					"1.d. Name of Law Firm or Organization (if applicable)",
					"Name of Law Firm or Organization",
					"Law Firm",
					"Organization Name",
				},
				Order: 4,
			},
		},
		{
			Path: "rep.attorney.licensing_authority", Group: "rep.attorney", Type: TypeText,
			Label:      "Licensing authority",
			LabelHints: []string{"Licensing Authority", "State Bar"},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"Licensing Authority"}, Order: 14},
		},
		{
			Path: "rep.attorney.bar_number", Group: "rep.attorney", Type: TypeText,
			Label:      "Bar number",
			LabelHints: []string{"Bar Number", `Bar\s*#`, "Bar No", `1\s*\.?b`, `1b\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"1.b. Bar Number (if applicable)", "Bar Number"}, Order: 15},
		},
		{
			Path: "rep.attorney.email", Group: "rep.attorney", Type: TypeEmail, Required: true,
			Label:      "Attorney email",
			LabelHints: []string{"Email", "Email Address", `6\s*\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"6. Email Address (if any)", "Email Address", "Email"}, Order: 13},
		},
		{
			Path: "rep.attorney.phone_daytime", Group: "rep.attorney", Type: TypePhone,
			Label:      "Attorney daytime phone",
			LabelHints: []string{"Daytime Phone", "Phone Number", "Daytime Telephone", `4\s*\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"4. Daytime Telephone Number", "Daytime Phone Number", "Phone"}, Order: 11},
		},
		{
			Path: "rep.attorney.phone_mobile", Group: "rep.attorney", Type: TypePhone,
			Label:      "Attorney mobile phone",
			LabelHints: []string{"Mobile Phone", "Mobile Number", "Cell", "Mobile Telephone", `5\s*\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"5. Mobile Telephone Number (if any)", "Mobile Phone Number", "Mobile"}, Order: 12},
		},
		{
			Path: "rep.attorney.address.street", Group: "rep.attorney", Type: TypeText, Required: true,
			Label:      "Attorney street",
			LabelHints: []string{"Street", "Number and Name", "Street Number", `3\s*\.?a`, `3a\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"3.a. Street Number and Name", "Street Number and Name", "Street"}, Order: 5},
		},
		{
			Path: "rep.attorney.address.unit", Group: "rep.attorney", Type: TypeText,
			Label:      "Attorney unit",
			LabelHints: []string{`\bApt\b`, `\bSte\b`, `\bSuite\b`, `\bFlr\b`, `3\s*\.?b`, `3b\.?`},
			Autofill:   &AutofillSpec{Labels: []string{"Apt.", "Ste.", "Flr.", "Apt", "Suite", "Apt./Ste./Flr."}, Order: 6},
		},
		{
			Path: "rep.attorney.address.city", Group: "rep.attorney", Type: TypeText, Required: true,
			Label:      "Attorney city",
			LabelHints: []string{"City", "Town", `3\s*\.?c`, `3c\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"3.c. City", "City or Town", "City"}, Order: 7},
		},
		{
			Path: "rep.attorney.address.state", Group: "rep.attorney", Type: TypeState, Required: true,
			Label:      "Attorney state",
			LabelHints: []string{"State", `3\s*\.?d`, `3d\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"3.d. State", "State"}, Order: 8},
		},
		{
			Path: "rep.attorney.address.zip", Group: "rep.attorney", Type: TypeZip, Required: true,
			Label:      "Attorney ZIP",
			LabelHints: []string{"ZIP", "Postal", "Postal Code", `3\s*\.?e`, `3e\.?`},
			Validate:   true,
			Autofill:   &AutofillSpec{Labels: []string{"3.e. ZIP Code", "ZIP Code", "Postal"}, Order: 9},
		},
		{
			Path: "rep.attorney.address.country", Group: "rep.attorney", Type: TypeText,
			Label:      "Attorney country",
			LabelHints: []string{"Country", `3\s*\.?h`, `3h\.?`},
			Autofill:   &AutofillSpec{Labels: []string{"3.f. Country", "Country"}, Order: 10},
		},

		// Attorney eligibility attestations
		{
			Path: "rep.attorney.eligibility.attorney_eligible", Group: "rep.attorney.eligibility", Type: TypeCheckbox,
			Label:         "Eligible to practice law and in good standing",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.subject_to_orders_no", Group: "rep.attorney.eligibility", Type: TypeCheckbox,
			Label:         "Not subject to any order restricting practice",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.subject_to_orders_yes", Group: "rep.attorney.eligibility", Type: TypeCheckbox,
			Label:         "Subject to order restricting practice",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.accredited_representative", Group: "rep.attorney.eligibility", Type: TypeCheckbox,
			Label:         "Accredited representative",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.recognized_organization_name", Group: "rep.attorney.eligibility", Type: TypeText,
			Label:         "Recognized organization name",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.accreditation_date", Group: "rep.attorney.eligibility", Type: TypeDatePast,
			Label:         "Accreditation date",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.associated_with", Group: "rep.attorney.eligibility", Type: TypeCheckbox,
			Label:         "Associated with a previously filed appearance",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.associated_with_name", Group: "rep.attorney.eligibility", Type: TypeText,
			Label:         "Name of previously filed attorney/representative",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.law_student", Group: "rep.attorney.eligibility", Type: TypeCheckbox,
			Label:         "Law student or graduate under supervision",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},
		{
			Path: "rep.attorney.eligibility.law_student_name", Group: "rep.attorney.eligibility", Type: TypeText,
			Label:         "Name of law student or graduate",
			HumanRequired: true, HumanRequiredReason: attestationReason,
		},

		// Client
		{
			Path: "rep.client.family_name", Group: "rep.client", Type: TypeName,
			Label: "Client family name",
			LabelHints: []string{
				"Family Name", "Last Name",
				"Client.*Family Name", "Applicant.*Family Name", "Petitioner.*Family Name",
				`6\s*\.?a`, `6a\.?`,
			},
		},
		{
			Path: "rep.client.given_name", Group: "rep.client", Type: TypeName,
			Label: "Client given name",
			LabelHints: []string{
				"Given Name", "First Name",
				"Client.*Given Name", "Applicant.*Given Name", "Petitioner.*Given Name",
				`6\s*\.?b`, `6b\.?`,
			},
		},
		{
			Path: "rep.client.middle_name", Group: "rep.client", Type: TypeName,
			Label: "Client middle name",
			LabelHints: []string{
				"Middle Name", "Client.*Middle Name", "Applicant.*Middle Name",
				`6\s*\.?c`, `6c\.?`,
			},
		},
		{
			Path: "rep.client.full_name", Group: "rep.client", Type: TypeName,
			Label: "Client full name",
		},
		{
			Path: "rep.client.email", Group: "rep.client", Type: TypeEmail,
			Label:      "Client email",
			LabelHints: []string{"Email", "Email Address", "Client.*Email", "Applicant.*Email", `12\s*\.?`},
		},
		{
			Path: "rep.client.phone", Group: "rep.client", Type: TypePhone,
			Label:      "Client phone",
			LabelHints: []string{"Daytime Telephone", "Phone", "Client.*Phone", "Applicant.*Phone", `10\s*\.?`},
		},
		{
			Path: "rep.client.address.street", Group: "rep.client", Type: TypeText,
			Label:      "Client street",
			LabelHints: []string{"Street", "Street Number", "Client.*Street", "Applicant.*Street", `13\s*\.?a`, `13a\.?`},
		},
		{
			Path: "rep.client.address.unit", Group: "rep.client", Type: TypeText,
			Label:      "Client unit",
			LabelHints: []string{`\bApt\b`, `\bSte\b`, `\bSuite\b`, `\bFlr\b`, `13\s*\.?b`, `13b\.?`},
		},
		{
			Path: "rep.client.address.city", Group: "rep.client", Type: TypeText,
			Label:      "Client city",
			LabelHints: []string{"City", "Town", "Client.*City", "Applicant.*City", `13\s*\.?c`, `13c\.?`},
		},
		{
			Path: "rep.client.address.state", Group: "rep.client", Type: TypeState,
			Label:      "Client state",
			LabelHints: []string{"State", "Client.*State", "Applicant.*State", `13\s*\.?d`, `13d\.?`},
		},
		{
			Path: "rep.client.address.zip", Group: "rep.client", Type: TypeZip,
			Label:      "Client ZIP",
			LabelHints: []string{"ZIP", "Postal", "Postal Code", "Client.*ZIP", "Applicant.*ZIP", `13\s*\.?e`, `13e\.?`},
		},
		{
			Path: "rep.client.address.country", Group: "rep.client", Type: TypeText,
			Label:      "Client country",
			LabelHints: []string{"Country", "Client.*Country", "Applicant.*Country", `13\s*\.?h`, `13h\.?`},
		},

		// Consent and signatures
		{
			Path: "rep.consent.send_notices_to_attorney", Group: "rep.consent", Type: TypeCheckbox,
			Label:         "Request notices be sent to attorney",
			HumanRequired: true, HumanRequiredReason: consentReason,
		},
		{
			Path: "rep.consent.send_documents_to_attorney", Group: "rep.consent", Type: TypeCheckbox,
			Label:         "Request documents be sent to attorney",
			HumanRequired: true, HumanRequiredReason: consentReason,
		},
		{
			Path: "rep.consent.send_documents_to_client", Group: "rep.consent", Type: TypeCheckbox,
			Label:         "Request documents be sent to client",
			HumanRequired: true, HumanRequiredReason: consentReason,
		},
		{
			Path: "rep.consent.client_signature_date", Group: "rep.consent", Type: TypeDatePast, Required: true,
			Label:         "Client signature date",
			HumanRequired: true, HumanRequiredReason: "Signature date must be provided by the client.",
		},
		{
			Path: "rep.consent.attorney_signature_date", Group: "rep.consent", Type: TypeDatePast, Required: true,
			Label:         "Attorney signature date",
			HumanRequired: true, HumanRequiredReason: "Signature date must be provided by the attorney.",
		},
	}
}
