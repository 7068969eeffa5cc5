package domain

// TaxpayerRepository is the interface that holds all the taxpayer record related
// repository methods. Implementations own no concurrency control; callers are
// expected to serialize access (the server holds one lock across every command).
type TaxpayerRepository interface {
	// InsertTaxpayer persists a full taxpayer record. The record is split over
	// the personal, contact and tax sub-records, all keyed by the national ID.
	// Either every sub-record is written or none of them are.
	InsertTaxpayer(t *Taxpayer) error

	// SearchAny returns the personal info of every taxpayer matching ANY of the
	// supplied query fields. Empty fields are not constraints. This is the wide,
	// OR-style match used by the find_user command.
	SearchAny(q SearchQuery) ([]*PersonalInfo, error)

	// SearchNarrow returns the personal info of every taxpayer matching ALL of
	// the supplied query fields. Empty fields are not constraints.
	SearchNarrow(q SearchQuery) ([]*PersonalInfo, error)

	// RetrieveFull joins the personal, contact and tax sub-records for the given
	// national ID. The returned slice is empty when no record exists.
	RetrieveFull(nationalID string) ([]*Taxpayer, error)
}

// SearchQuery carries the optional filters for taxpayer searches.
// An empty string means the field was not supplied by the caller.
// DateOfBirth must already be in canonical ISO form ("2006-01-02").
type SearchQuery struct {
	NationalID  string
	FirstName   string
	LastName    string
	DateOfBirth string
}

// IsEmpty reports whether no filter at all was supplied.
func (q SearchQuery) IsEmpty() bool {
	return q.NationalID == "" && q.FirstName == "" && q.LastName == "" && q.DateOfBirth == ""
}

// PersonalInfo is the identifying sub-record of a taxpayer.
// NationalID is the natural key shared by all sub-records.
type PersonalInfo struct {
	NationalID  string // Natural key, unique per taxpayer
	FirstName   string
	LastName    string
	DateOfBirth string // Canonical ISO form "2006-01-02", stored as TEXT
	Gender      string
}

// ContactInfo is the address and phone sub-record of a taxpayer.
type ContactInfo struct {
	AddressCountry     string
	AddressZipCode     string
	AddressCity        string
	AddressStreet      string
	AddressHouseNumber string
	PhoneCountryCode   string
	PhoneNumber        string
}

// TaxInfo is the tax assessment sub-record of a taxpayer.
type TaxInfo struct {
	MaritalStatus   string
	TaxRate         float64
	YearlyIncome    float64
	AdvanceTax      float64
	TaxPaidThisYear float64
	PropertyValue   float64
	Loans           float64
	PropertyTax     float64
}

// Taxpayer is the complete record as seen by the retrieve_user_details command.
type Taxpayer struct {
	PersonalInfo
	ContactInfo
	TaxInfo
}
