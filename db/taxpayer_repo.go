package db

import (
	"fmt"
	"strings"

	"github.com/tfkr-ae/taxreg/domain"
)

var _ domain.TaxpayerRepository = (*Repository)(nil)

// dbPersonalInfo represents a row of the personal_info table.
type dbPersonalInfo struct {
	NationalID  string `db:"national_id"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	DateOfBirth string `db:"date_of_birth"`
	Gender      string `db:"gender"`
}

// dbContactInfo represents a row of the contact_info table.
type dbContactInfo struct {
	NationalID         string `db:"national_id"`
	AddressCountry     string `db:"address_country"`
	AddressZipCode     string `db:"address_zip_code"`
	AddressCity        string `db:"address_city"`
	AddressStreet      string `db:"address_street"`
	AddressHouseNumber string `db:"address_house_number"`
	PhoneCountryCode   string `db:"phone_country_code"`
	PhoneNumber        string `db:"phone_number"`
}

// dbTaxInfo represents a row of the tax_info table.
type dbTaxInfo struct {
	NationalID      string  `db:"national_id"`
	MaritalStatus   string  `db:"marital_status"`
	TaxRate         float64 `db:"tax_rate"`
	YearlyIncome    float64 `db:"yearly_income"`
	AdvanceTax      float64 `db:"advance_tax"`
	TaxPaidThisYear float64 `db:"tax_paid_this_year"`
	PropertyValue   float64 `db:"property_value"`
	Loans           float64 `db:"loans"`
	PropertyTax     float64 `db:"property_tax"`
}

// dbTaxpayer is the flat result of joining all three sub-record tables.
type dbTaxpayer struct {
	dbPersonalInfo
	AddressCountry     string  `db:"address_country"`
	AddressZipCode     string  `db:"address_zip_code"`
	AddressCity        string  `db:"address_city"`
	AddressStreet      string  `db:"address_street"`
	AddressHouseNumber string  `db:"address_house_number"`
	PhoneCountryCode   string  `db:"phone_country_code"`
	PhoneNumber        string  `db:"phone_number"`
	MaritalStatus      string  `db:"marital_status"`
	TaxRate            float64 `db:"tax_rate"`
	YearlyIncome       float64 `db:"yearly_income"`
	AdvanceTax         float64 `db:"advance_tax"`
	TaxPaidThisYear    float64 `db:"tax_paid_this_year"`
	PropertyValue      float64 `db:"property_value"`
	Loans              float64 `db:"loans"`
	PropertyTax        float64 `db:"property_tax"`
}

// toDomainPersonalInfo converts a dbPersonalInfo to a domain.PersonalInfo.
func toDomainPersonalInfo(p *dbPersonalInfo) *domain.PersonalInfo {
	return &domain.PersonalInfo{
		NationalID:  p.NationalID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
	}
}

// toDomainTaxpayer converts a joined dbTaxpayer row to a domain.Taxpayer.
func toDomainTaxpayer(t *dbTaxpayer) *domain.Taxpayer {
	return &domain.Taxpayer{
		PersonalInfo: *toDomainPersonalInfo(&t.dbPersonalInfo),
		ContactInfo: domain.ContactInfo{
			AddressCountry:     t.AddressCountry,
			AddressZipCode:     t.AddressZipCode,
			AddressCity:        t.AddressCity,
			AddressStreet:      t.AddressStreet,
			AddressHouseNumber: t.AddressHouseNumber,
			PhoneCountryCode:   t.PhoneCountryCode,
			PhoneNumber:        t.PhoneNumber,
		},
		TaxInfo: domain.TaxInfo{
			MaritalStatus:   t.MaritalStatus,
			TaxRate:         t.TaxRate,
			YearlyIncome:    t.YearlyIncome,
			AdvanceTax:      t.AdvanceTax,
			TaxPaidThisYear: t.TaxPaidThisYear,
			PropertyValue:   t.PropertyValue,
			Loans:           t.Loans,
			PropertyTax:     t.PropertyTax,
		},
	}
}

// InsertTaxpayer persists a taxpayer record across the personal_info,
// contact_info and tax_info tables in a single transaction. The personal info
// row is written first so the referential integrity of the sub-records holds at
// every point inside the transaction; any failure rolls back all three writes.
func (repo *Repository) InsertTaxpayer(t *domain.Taxpayer) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("beginning taxpayer insert: %w", err)
	}
	defer tx.Rollback()

	personal := dbPersonalInfo{
		NationalID:  t.NationalID,
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		DateOfBirth: t.DateOfBirth,
		Gender:      t.Gender,
	}
	query := `INSERT INTO personal_info (national_id, first_name, last_name, date_of_birth, gender)
	          VALUES (:national_id, :first_name, :last_name, :date_of_birth, :gender)`
	if _, err := tx.NamedExec(query, personal); err != nil {
		return fmt.Errorf("inserting personal info for %s: %w", t.NationalID, err)
	}

	contact := dbContactInfo{
		NationalID:         t.NationalID,
		AddressCountry:     t.AddressCountry,
		AddressZipCode:     t.AddressZipCode,
		AddressCity:        t.AddressCity,
		AddressStreet:      t.AddressStreet,
		AddressHouseNumber: t.AddressHouseNumber,
		PhoneCountryCode:   t.PhoneCountryCode,
		PhoneNumber:        t.PhoneNumber,
	}
	query = `INSERT INTO contact_info (national_id, address_country, address_zip_code, address_city,
	             address_street, address_house_number, phone_country_code, phone_number)
	         VALUES (:national_id, :address_country, :address_zip_code, :address_city,
	             :address_street, :address_house_number, :phone_country_code, :phone_number)`
	if _, err := tx.NamedExec(query, contact); err != nil {
		return fmt.Errorf("inserting contact info for %s: %w", t.NationalID, err)
	}

	tax := dbTaxInfo{
		NationalID:      t.NationalID,
		MaritalStatus:   t.MaritalStatus,
		TaxRate:         t.TaxRate,
		YearlyIncome:    t.YearlyIncome,
		AdvanceTax:      t.AdvanceTax,
		TaxPaidThisYear: t.TaxPaidThisYear,
		PropertyValue:   t.PropertyValue,
		Loans:           t.Loans,
		PropertyTax:     t.PropertyTax,
	}
	query = `INSERT INTO tax_info (national_id, marital_status, tax_rate, yearly_income, advance_tax,
	             tax_paid_this_year, property_value, loans, property_tax)
	         VALUES (:national_id, :marital_status, :tax_rate, :yearly_income, :advance_tax,
	             :tax_paid_this_year, :property_value, :loans, :property_tax)`
	if _, err := tx.NamedExec(query, tax); err != nil {
		return fmt.Errorf("inserting tax info for %s: %w", t.NationalID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing taxpayer insert for %s: %w", t.NationalID, err)
	}
	return nil
}

// SearchAny returns taxpayers whose personal info matches ANY supplied field.
// The OR semantics mirror the behaviour the find_user command depends on; do
// not tighten this to a conjunction.
func (repo *Repository) SearchAny(q domain.SearchQuery) ([]*domain.PersonalInfo, error) {
	clauses, params := searchFilters(q)
	if len(clauses) == 0 {
		return []*domain.PersonalInfo{}, nil
	}

	query := `SELECT national_id, first_name, last_name, date_of_birth, gender FROM personal_info WHERE ` +
		strings.Join(clauses, " OR ")

	var rows []*dbPersonalInfo
	if err := repo.dbConn.Select(&rows, query, params...); err != nil {
		return nil, fmt.Errorf("searching personal info: %w", err)
	}

	results := make([]*domain.PersonalInfo, len(rows))
	for i, row := range rows {
		results[i] = toDomainPersonalInfo(row)
	}
	return results, nil
}

// SearchNarrow returns taxpayers whose personal info matches ALL supplied fields.
func (repo *Repository) SearchNarrow(q domain.SearchQuery) ([]*domain.PersonalInfo, error) {
	clauses, params := searchFilters(q)

	query := `SELECT national_id, first_name, last_name, date_of_birth, gender FROM personal_info`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}

	var rows []*dbPersonalInfo
	if err := repo.dbConn.Select(&rows, query, params...); err != nil {
		return nil, fmt.Errorf("searching personal info: %w", err)
	}

	results := make([]*domain.PersonalInfo, len(rows))
	for i, row := range rows {
		results[i] = toDomainPersonalInfo(row)
	}
	return results, nil
}

// searchFilters builds the per-field equality clauses for the search queries.
// Absent fields contribute no clause.
func searchFilters(q domain.SearchQuery) (clauses []string, params []any) {
	if q.NationalID != "" {
		clauses = append(clauses, "national_id = ?")
		params = append(params, q.NationalID)
	}
	if q.FirstName != "" {
		clauses = append(clauses, "first_name = ?")
		params = append(params, q.FirstName)
	}
	if q.LastName != "" {
		clauses = append(clauses, "last_name = ?")
		params = append(params, q.LastName)
	}
	if q.DateOfBirth != "" {
		clauses = append(clauses, "date_of_birth = ?")
		params = append(params, q.DateOfBirth)
	}
	return clauses, params
}

// RetrieveFull joins the personal, contact and tax sub-records for a national ID.
// The result is empty when no personal info row exists.
func (repo *Repository) RetrieveFull(nationalID string) ([]*domain.Taxpayer, error) {
	query := `SELECT p.national_id, p.first_name, p.last_name, p.date_of_birth, p.gender,
	              c.address_country, c.address_zip_code, c.address_city, c.address_street,
	              c.address_house_number, c.phone_country_code, c.phone_number,
	              t.marital_status, t.tax_rate, t.yearly_income, t.advance_tax,
	              t.tax_paid_this_year, t.property_value, t.loans, t.property_tax
	          FROM personal_info p
	          JOIN contact_info c ON p.national_id = c.national_id
	          JOIN tax_info t ON p.national_id = t.national_id
	          WHERE p.national_id = ?`

	var rows []*dbTaxpayer
	if err := repo.dbConn.Select(&rows, query, nationalID); err != nil {
		return nil, fmt.Errorf("retrieving taxpayer %s: %w", nationalID, err)
	}

	results := make([]*domain.Taxpayer, len(rows))
	for i, row := range rows {
		results[i] = toDomainTaxpayer(row)
	}
	return results, nil
}
