package model

import "github.com/rotisserie/eris"

// Accessor is a typed getter/setter pair for one dotted field path.
type Accessor struct {
	Get func(*Record) string
	Set func(*Record, string)
}

// accessors maps every known field path onto the record graph. The registry
// validates its specs against this table at load time, so a bad path fails at
// startup instead of mid-run.
var accessors = map[string]Accessor{
	"passport.given_names": {
		Get: func(r *Record) string { return r.Passport.GivenNames },
		Set: func(r *Record, v string) { r.Passport.GivenNames = v },
	},
	"passport.surname": {
		Get: func(r *Record) string { return r.Passport.Surname },
		Set: func(r *Record, v string) { r.Passport.Surname = v },
	},
	"passport.full_name": {
		Get: func(r *Record) string { return r.Passport.FullName },
		Set: func(r *Record, v string) { r.Passport.FullName = v },
	},
	"passport.date_of_birth": {
		Get: func(r *Record) string { return r.Passport.DateOfBirth },
		Set: func(r *Record, v string) { r.Passport.DateOfBirth = v },
	},
	"passport.place_of_birth": {
		Get: func(r *Record) string { return r.Passport.PlaceOfBirth },
		Set: func(r *Record, v string) { r.Passport.PlaceOfBirth = v },
	},
	"passport.nationality": {
		Get: func(r *Record) string { return r.Passport.Nationality },
		Set: func(r *Record, v string) { r.Passport.Nationality = v },
	},
	"passport.country_of_issue": {
		Get: func(r *Record) string { return r.Passport.CountryOfIssue },
		Set: func(r *Record, v string) { r.Passport.CountryOfIssue = v },
	},
	"passport.passport_number": {
		Get: func(r *Record) string { return r.Passport.PassportNumber },
		Set: func(r *Record, v string) { r.Passport.PassportNumber = v },
	},
	"passport.date_of_issue": {
		Get: func(r *Record) string { return r.Passport.DateOfIssue },
		Set: func(r *Record, v string) { r.Passport.DateOfIssue = v },
	},
	"passport.date_of_expiration": {
		Get: func(r *Record) string { return r.Passport.DateOfExpiration },
		Set: func(r *Record, v string) { r.Passport.DateOfExpiration = v },
	},
	"passport.sex": {
		Get: func(r *Record) string { return r.Passport.Sex },
		Set: func(r *Record, v string) { r.Passport.Sex = v },
	},

	"rep.attorney.online_account_number": {
		Get: func(r *Record) string { return r.Rep.Attorney.OnlineAccountNumber },
		Set: func(r *Record, v string) { r.Rep.Attorney.OnlineAccountNumber = v },
	},
	"rep.attorney.family_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.FamilyName },
		Set: func(r *Record, v string) { r.Rep.Attorney.FamilyName = v },
	},
	"rep.attorney.given_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.GivenName },
		Set: func(r *Record, v string) { r.Rep.Attorney.GivenName = v },
	},
	"rep.attorney.middle_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.MiddleName },
		Set: func(r *Record, v string) { r.Rep.Attorney.MiddleName = v },
	},
	"rep.attorney.full_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.FullName },
		Set: func(r *Record, v string) { r.Rep.Attorney.FullName = v },
	},
	"rep.attorney.law_firm_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.LawFirmName },
		Set: func(r *Record, v string) { r.Rep.Attorney.LawFirmName = v },
	},
	"rep.attorney.licensing_authority": {
		Get: func(r *Record) string { return r.Rep.Attorney.LicensingAuthority },
		Set: func(r *Record, v string) { r.Rep.Attorney.LicensingAuthority = v },
	},
	"rep.attorney.bar_number": {
		Get: func(r *Record) string { return r.Rep.Attorney.BarNumber },
		Set: func(r *Record, v string) { r.Rep.Attorney.BarNumber = v },
	},
	"rep.attorney.email": {
		Get: func(r *Record) string { return r.Rep.Attorney.Email },
		Set: func(r *Record, v string) { r.Rep.Attorney.Email = v },
	},
	"rep.attorney.phone_daytime": {
		Get: func(r *Record) string { return r.Rep.Attorney.PhoneDaytime },
		Set: func(r *Record, v string) { r.Rep.Attorney.PhoneDaytime = v },
	},
	"rep.attorney.phone_mobile": {
		Get: func(r *Record) string { return r.Rep.Attorney.PhoneMobile },
		Set: func(r *Record, v string) { r.Rep.Attorney.PhoneMobile = v },
	},
	"rep.attorney.address.street": {
		Get: func(r *Record) string { return r.Rep.Attorney.Address.Street },
		Set: func(r *Record, v string) { r.Rep.Attorney.Address.Street = v },
	},
	"rep.attorney.address.unit": {
		Get: func(r *Record) string { return r.Rep.Attorney.Address.Unit },
		Set: func(r *Record, v string) { r.Rep.Attorney.Address.Unit = v },
	},
	"rep.attorney.address.city": {
		Get: func(r *Record) string { return r.Rep.Attorney.Address.City },
		Set: func(r *Record, v string) { r.Rep.Attorney.Address.City = v },
	},
	"rep.attorney.address.state": {
		Get: func(r *Record) string { return r.Rep.Attorney.Address.State },
		Set: func(r *Record, v string) { r.Rep.Attorney.Address.State = v },
	},
	"rep.attorney.address.zip": {
		Get: func(r *Record) string { return r.Rep.Attorney.Address.Zip },
		Set: func(r *Record, v string) { r.Rep.Attorney.Address.Zip = v },
	},
	"rep.attorney.address.country": {
		Get: func(r *Record) string { return r.Rep.Attorney.Address.Country },
		Set: func(r *Record, v string) { r.Rep.Attorney.Address.Country = v },
	},

	"rep.attorney.eligibility.attorney_eligible": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.AttorneyEligible },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.AttorneyEligible = v },
	},
	"rep.attorney.eligibility.subject_to_orders_no": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.SubjectToOrdersNo },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.SubjectToOrdersNo = v },
	},
	"rep.attorney.eligibility.subject_to_orders_yes": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.SubjectToOrdersYes },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.SubjectToOrdersYes = v },
	},
	"rep.attorney.eligibility.accredited_representative": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.AccreditedRepresentative },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.AccreditedRepresentative = v },
	},
	"rep.attorney.eligibility.recognized_organization_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.RecognizedOrganizationName },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.RecognizedOrganizationName = v },
	},
	"rep.attorney.eligibility.accreditation_date": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.AccreditationDate },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.AccreditationDate = v },
	},
	"rep.attorney.eligibility.associated_with": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.AssociatedWith },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.AssociatedWith = v },
	},
	"rep.attorney.eligibility.associated_with_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.AssociatedWithName },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.AssociatedWithName = v },
	},
	"rep.attorney.eligibility.law_student": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.LawStudent },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.LawStudent = v },
	},
	"rep.attorney.eligibility.law_student_name": {
		Get: func(r *Record) string { return r.Rep.Attorney.Eligibility.LawStudentName },
		Set: func(r *Record, v string) { r.Rep.Attorney.Eligibility.LawStudentName = v },
	},

	"rep.client.family_name": {
		Get: func(r *Record) string { return r.Rep.Client.FamilyName },
		Set: func(r *Record, v string) { r.Rep.Client.FamilyName = v },
	},
	"rep.client.given_name": {
		Get: func(r *Record) string { return r.Rep.Client.GivenName },
		Set: func(r *Record, v string) { r.Rep.Client.GivenName = v },
	},
	"rep.client.middle_name": {
		Get: func(r *Record) string { return r.Rep.Client.MiddleName },
		Set: func(r *Record, v string) { r.Rep.Client.MiddleName = v },
	},
	"rep.client.full_name": {
		Get: func(r *Record) string { return r.Rep.Client.FullName },
		Set: func(r *Record, v string) { r.Rep.Client.FullName = v },
	},
	"rep.client.email": {
		Get: func(r *Record) string { return r.Rep.Client.Email },
		Set: func(r *Record, v string) { r.Rep.Client.Email = v },
	},
	"rep.client.phone": {
		Get: func(r *Record) string { return r.Rep.Client.Phone },
		Set: func(r *Record, v string) { r.Rep.Client.Phone = v },
	},
	"rep.client.address.street": {
		Get: func(r *Record) string { return r.Rep.Client.Address.Street },
		Set: func(r *Record, v string) { r.Rep.Client.Address.Street = v },
	},
	"rep.client.address.unit": {
		Get: func(r *Record) string { return r.Rep.Client.Address.Unit },
		Set: func(r *Record, v string) { r.Rep.Client.Address.Unit = v },
	},
	"rep.client.address.city": {
		Get: func(r *Record) string { return r.Rep.Client.Address.City },
		Set: func(r *Record, v string) { r.Rep.Client.Address.City = v },
	},
	"rep.client.address.state": {
		Get: func(r *Record) string { return r.Rep.Client.Address.State },
		Set: func(r *Record, v string) { r.Rep.Client.Address.State = v },
	},
	"rep.client.address.zip": {
		Get: func(r *Record) string { return r.Rep.Client.Address.Zip },
		Set: func(r *Record, v string) { r.Rep.Client.Address.Zip = v },
	},
	"rep.client.address.country": {
		Get: func(r *Record) string { return r.Rep.Client.Address.Country },
		Set: func(r *Record, v string) { r.Rep.Client.Address.Country = v },
	},

	"rep.consent.send_notices_to_attorney": {
		Get: func(r *Record) string { return r.Rep.Consent.SendNoticesToAttorney },
		Set: func(r *Record, v string) { r.Rep.Consent.SendNoticesToAttorney = v },
	},
	"rep.consent.send_documents_to_attorney": {
		Get: func(r *Record) string { return r.Rep.Consent.SendDocumentsToAttorney },
		Set: func(r *Record, v string) { r.Rep.Consent.SendDocumentsToAttorney = v },
	},
	"rep.consent.send_documents_to_client": {
		Get: func(r *Record) string { return r.Rep.Consent.SendDocumentsToClient },
		Set: func(r *Record, v string) { r.Rep.Consent.SendDocumentsToClient = v },
	},
	"rep.consent.client_signature_date": {
		Get: func(r *Record) string { return r.Rep.Consent.ClientSignatureDate },
		Set: func(r *Record, v string) { r.Rep.Consent.ClientSignatureDate = v },
	},
	"rep.consent.attorney_signature_date": {
		Get: func(r *Record) string { return r.Rep.Consent.AttorneySignatureDate },
		Set: func(r *Record, v string) { r.Rep.Consent.AttorneySignatureDate = v },
	},
}

// AccessorFor returns the accessor for path.
func AccessorFor(path string) (Accessor, error) {
	acc, ok := accessors[path]
	if !ok {
		return Accessor{}, eris.Errorf("model: no accessor for path %q", path)
	}
	return acc, nil
}

// GetPath reads the value at path from the record graph.
func (r *Record) GetPath(path string) (string, error) {
	acc, err := AccessorFor(path)
	if err != nil {
		return "", err
	}
	return acc.Get(r), nil
}

// SetPath writes the value at path into the record graph.
func (r *Record) SetPath(path, value string) error {
	acc, err := AccessorFor(path)
	if err != nil {
		return err
	}
	acc.Set(r, value)
	return nil
}
