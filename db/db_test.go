package db

import (
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tfkr-ae/taxreg/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewRegistryRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func testTaxpayer(nationalID, firstName, lastName, dateOfBirth string) *domain.Taxpayer {
	return &domain.Taxpayer{
		PersonalInfo: domain.PersonalInfo{
			NationalID:  nationalID,
			FirstName:   firstName,
			LastName:    lastName,
			DateOfBirth: dateOfBirth,
			Gender:      "Female",
		},
		ContactInfo: domain.ContactInfo{
			AddressCountry:     "Estonia",
			AddressZipCode:     "10115",
			AddressCity:        "Tallinn",
			AddressStreet:      "Pikk",
			AddressHouseNumber: "7",
			PhoneCountryCode:   "+372",
			PhoneNumber:        "5551234",
		},
		TaxInfo: domain.TaxInfo{
			MaritalStatus: "Single",
			TaxRate:       20,
			YearlyIncome:  24000,
		},
	}
}

func insertTestTaxpayer(t *testing.T, repo *Repository, nationalID, firstName, lastName, dateOfBirth string) *domain.Taxpayer {
	t.Helper()

	taxpayer := testTaxpayer(nationalID, firstName, lastName, dateOfBirth)
	if err := repo.InsertTaxpayer(taxpayer); err != nil {
		t.Fatalf("inserting taxpayer: %v", err)
	}
	return taxpayer
}

func insertTestCredential(t *testing.T, repo *Repository, username, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if err := repo.CreateCredential(username, string(hash)); err != nil {
		t.Fatalf("creating credential: %v", err)
	}
}
