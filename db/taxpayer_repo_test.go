package db

import (
	"reflect"
	"testing"

	"github.com/tfkr-ae/taxreg/domain"
)

func TestTaxpayerRepo_InsertTaxpayer(t *testing.T) {
	t.Run("should persist all three sub-records", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		want := insertTestTaxpayer(t, repo, "38001010001", "Mari", "Tamm", "1980-01-01")

		got, err := repo.RetrieveFull("38001010001")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("\nwanted:\n1 record\ngot:\n%d", len(got))
		}
		if !reflect.DeepEqual(want, got[0]) {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got[0])
		}
	})

	t.Run("should roll back every sub-record when one insert fails", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		insertTestTaxpayer(t, repo, "38001010001", "Mari", "Tamm", "1980-01-01")

		// Same national_id violates the personal_info primary key.
		err := repo.InsertTaxpayer(testTaxpayer("38001010001", "Jaan", "Kask", "1975-05-05"))
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}

		got, err := repo.SearchNarrow(domain.SearchQuery{FirstName: "Jaan"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 0 {
			t.Fatalf("\nwanted:\n0 records\ngot:\n%d", len(got))
		}
	})
}

func TestTaxpayerRepo_SearchAny(t *testing.T) {
	t.Run("should match when any supplied field matches", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		insertTestTaxpayer(t, repo, "38001010001", "Mari", "Tamm", "1980-01-01")
		insertTestTaxpayer(t, repo, "37505050002", "Jaan", "Tamm", "1975-05-05")
		insertTestTaxpayer(t, repo, "39012120003", "Piret", "Kask", "1990-12-12")

		// first_name matches only Mari, last_name matches both Tamms; the OR
		// semantics must include all of them.
		got, err := repo.SearchAny(domain.SearchQuery{FirstName: "Mari", LastName: "Tamm"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 2 {
			t.Fatalf("\nwanted:\n2 records\ngot:\n%d", len(got))
		}
	})

	t.Run("should not treat absent fields as constraints", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		insertTestTaxpayer(t, repo, "38001010001", "Mari", "Tamm", "1980-01-01")

		got, err := repo.SearchAny(domain.SearchQuery{DateOfBirth: "1980-01-01"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("\nwanted:\n1 record\ngot:\n%d", len(got))
		}
	})

	t.Run("should return nothing for an empty query", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		insertTestTaxpayer(t, repo, "38001010001", "Mari", "Tamm", "1980-01-01")

		got, err := repo.SearchAny(domain.SearchQuery{})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 0 {
			t.Fatalf("\nwanted:\n0 records\ngot:\n%d", len(got))
		}
	})

	t.Run("should match case sensitively", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		insertTestTaxpayer(t, repo, "38001010001", "Mari", "Tamm", "1980-01-01")

		got, err := repo.SearchAny(domain.SearchQuery{FirstName: "mari"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 0 {
			t.Fatalf("\nwanted:\n0 records\ngot:\n%d", len(got))
		}
	})
}

func TestTaxpayerRepo_SearchNarrow(t *testing.T) {
	t.Run("should require every supplied field to match", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		insertTestTaxpayer(t, repo, "38001010001", "Mari", "Tamm", "1980-01-01")
		insertTestTaxpayer(t, repo, "37505050002", "Jaan", "Tamm", "1975-05-05")

		got, err := repo.SearchNarrow(domain.SearchQuery{FirstName: "Mari", LastName: "Tamm"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("\nwanted:\n1 record\ngot:\n%d", len(got))
		}
		if got[0].NationalID != "38001010001" {
			t.Fatalf("\nwanted:\n38001010001\ngot:\n%s", got[0].NationalID)
		}
	})
}

func TestTaxpayerRepo_RetrieveFull(t *testing.T) {
	t.Run("should return an empty slice for an unknown national id", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		got, err := repo.RetrieveFull("00000000000")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 0 {
			t.Fatalf("\nwanted:\n0 records\ngot:\n%d", len(got))
		}
	})
}
