package model

// Address is a postal address block shared by attorney and client records.
type Address struct {
	Street  string `json:"street,omitempty"`
	Unit    string `json:"unit,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// Passport holds identity-page fields extracted from a passport.
type Passport struct {
	GivenNames       string `json:"given_names,omitempty"`
	Surname          string `json:"surname,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	PlaceOfBirth     string `json:"place_of_birth,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	CountryOfIssue   string `json:"country_of_issue,omitempty"`
	PassportNumber   string `json:"passport_number,omitempty"`
	DateOfIssue      string `json:"date_of_issue,omitempty"`
	DateOfExpiration string `json:"date_of_expiration,omitempty"`
	Sex              string `json:"sex,omitempty"`
	MRZ              string `json:"mrz,omitempty"`
}

// Eligibility holds the attorney's attestation checkboxes. These are
// human-required and never auto-populated.
type Eligibility struct {
	AttorneyEligible           string `json:"attorney_eligible,omitempty"`
	SubjectToOrdersNo          string `json:"subject_to_orders_no,omitempty"`
	SubjectToOrdersYes         string `json:"subject_to_orders_yes,omitempty"`
	AccreditedRepresentative   string `json:"accredited_representative,omitempty"`
	RecognizedOrganizationName string `json:"recognized_organization_name,omitempty"`
	AccreditationDate          string `json:"accreditation_date,omitempty"`
	AssociatedWith             string `json:"associated_with,omitempty"`
	AssociatedWithName         string `json:"associated_with_name,omitempty"`
	LawStudent                 string `json:"law_student,omitempty"`
	LawStudentName             string `json:"law_student_name,omitempty"`
}

// Attorney is the representative section of the representation form.
type Attorney struct {
	OnlineAccountNumber string      `json:"online_account_number,omitempty"`
	FamilyName          string      `json:"family_name,omitempty"`
	GivenName           string      `json:"given_name,omitempty"`
	MiddleName          string      `json:"middle_name,omitempty"`
	FullName            string      `json:"full_name,omitempty"`
	LawFirmName         string      `json:"law_firm_name,omitempty"`
	LicensingAuthority  string      `json:"licensing_authority,omitempty"`
	BarNumber           string      `json:"bar_number,omitempty"`
	Email               string      `json:"email,omitempty"`
	PhoneDaytime        string      `json:"phone_daytime,omitempty"`
	PhoneMobile         string      `json:"phone_mobile,omitempty"`
	Address             Address     `json:"address"`
	Eligibility         Eligibility `json:"eligibility"`
}

// Client is the represented-party section of the representation form.
type Client struct {
	FamilyName string  `json:"family_name,omitempty"`
	GivenName  string  `json:"given_name,omitempty"`
	MiddleName string  `json:"middle_name,omitempty"`
	FullName   string  `json:"full_name,omitempty"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Address    Address `json:"address"`
}

// Consent holds signature and notice-routing fields that must come from
// explicit human attestation.
type Consent struct {
	SendNoticesToAttorney   string `json:"send_notices_to_attorney,omitempty"`
	SendDocumentsToAttorney string `json:"send_documents_to_attorney,omitempty"`
	SendDocumentsToClient   string `json:"send_documents_to_client,omitempty"`
	ClientSignatureDate     string `json:"client_signature_date,omitempty"`
	AttorneySignatureDate   string `json:"attorney_signature_date,omitempty"`
}

// Rep is the representation form record.
type Rep struct {
	Attorney Attorney `json:"attorney"`
	Client   Client   `json:"client"`
	Consent  Consent  `json:"consent"`
}

// Record is the full canonical record under reconciliation: the typed value
// graph plus per-field metadata.
type Record struct {
	Passport Passport `json:"passport"`
	Rep      Rep      `json:"rep"`
	Meta     Meta     `json:"meta"`
}

// Meta carries per-path reconciliation state keyed by dotted field path.
type Meta struct {
	Sources     map[string]Source         `json:"sources"`
	Confidence  map[string]float64        `json:"confidence"`
	Status      map[string]Status         `json:"status"`
	Evidence    map[string]string         `json:"evidence"`
	Presence    map[string]Presence       `json:"presence"`
	Suggestions map[string][]Suggestion   `json:"suggestions"`
	Conflicts   map[string]Conflict       `json:"conflicts"`
	Warnings    []Warning                 `json:"warnings"`
	Resolved    map[string]*ResolvedField `json:"resolved_fields"`
}

// Warning is a non-fatal extraction or reconciliation note.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewRecord returns an empty record with initialized metadata maps.
func NewRecord() *Record {
	return &Record{
		Meta: Meta{
			Sources:     make(map[string]Source),
			Confidence:  make(map[string]float64),
			Status:      make(map[string]Status),
			Evidence:    make(map[string]string),
			Presence:    make(map[string]Presence),
			Suggestions: make(map[string][]Suggestion),
			Conflicts:   make(map[string]Conflict),
			Resolved:    make(map[string]*ResolvedField),
		},
	}
}

// ConflictFields returns the set of paths with a recorded conflict, either in
// the conflict map or flagged by a conflict warning.
func (r *Record) ConflictFields() map[string]bool {
	out := make(map[string]bool, len(r.Meta.Conflicts))
	for path := range r.Meta.Conflicts {
		out[path] = true
	}
	for _, w := range r.Meta.Warnings {
		if w.Code == "conflict" && w.Field != "" {
			out[w.Field] = true
		}
	}
	return out
}

// AddSuggestion appends a suggestion for path, dropping exact duplicates from
// the same source.
func (r *Record) AddSuggestion(path string, s Suggestion) {
	for _, existing := range r.Meta.Suggestions[path] {
		if existing.Value == s.Value && existing.Source == s.Source {
			return
		}
	}
	r.Meta.Suggestions[path] = append(r.Meta.Suggestions[path], s)
}
