package taxreg

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/taxreg/core"
	"github.com/tfkr-ae/taxreg/domain"
	"github.com/tfkr-ae/taxreg/wire"
	"golang.org/x/crypto/bcrypt"
)

// Dates travel over the wire in the display form the desktop forms use and are
// stored in ISO form so the TEXT columns sort and compare correctly.
const (
	wireDateLayout  = "02.01.2006"
	storeDateLayout = "2006-01-02"
)

// dispatch executes a decoded request against the repository and produces the
// single response payload. The caller holds the store lock for the full call.
func (server *Server) dispatch(req wire.Request, connID uuid.UUID) []byte {
	switch r := req.(type) {
	case *wire.LoginRequest:
		return server.handleLogin(r, connID)
	case *wire.RegisterUserRequest:
		return server.handleRegisterUser(r, connID)
	case *wire.SaveNewUserRequest:
		return server.handleSaveNewUser(r, connID)
	case *wire.FindUserRequest:
		return server.handleFindUser(r, connID)
	case *wire.RetrieveUserDetailsRequest:
		return server.handleRetrieveUserDetails(r, connID)
	default:
		// DecodeRequest only returns the variants above; this is unreachable
		// unless a new command is added without a handler.
		server.WriteLog("ERROR", fmt.Sprintf("No handler for command %q", req.Command()), core.LogWithConnID(connID))
		return []byte(wire.StatusInvalidJSON)
	}
}

func (server *Server) handleLogin(req *wire.LoginRequest, connID uuid.UUID) []byte {
	if req.Username == "" || req.Password == "" {
		return []byte(wire.StatusMissingCredentials)
	}
	ok, err := server.Repo.CheckCredentials(req.Username, req.Password)
	if err != nil {
		server.WriteLog("ERROR", fmt.Sprintf("Credential check failed: %v", err), core.LogWithConnID(connID))
		return []byte(wire.StatusLoginServerError)
	}
	if !ok {
		server.WriteLog("WARN", fmt.Sprintf("Failed login attempt for %q", req.Username), core.LogWithConnID(connID))
		return []byte(wire.StatusInvalidCredentials)
	}
	server.WriteLog("INFO", fmt.Sprintf("User %q logged in", req.Username), core.LogWithConnID(connID))
	return []byte(wire.StatusLoggedIn)
}

func (server *Server) handleRegisterUser(req *wire.RegisterUserRequest, connID uuid.UUID) []byte {
	if req.Username == "" || req.Password == "" {
		return []byte(wire.StatusMissingCredentials)
	}
	if !domain.ValidatePassword(req.Password) {
		return []byte(wire.StatusWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		server.WriteLog("ERROR", fmt.Sprintf("Hashing password: %v", err), core.LogWithConnID(connID))
		return []byte(wire.StatusRegisterServerError)
	}
	err = server.Repo.CreateCredential(req.Username, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return []byte(wire.StatusUsernameTaken)
		}
		server.WriteLog("ERROR", fmt.Sprintf("Creating credential: %v", err), core.LogWithConnID(connID))
		return []byte(wire.StatusRegisterServerError)
	}
	server.WriteLog("INFO", fmt.Sprintf("Registered user %q", req.Username), core.LogWithConnID(connID))
	return []byte(wire.StatusUserRegistered)
}

func (server *Server) handleSaveNewUser(req *wire.SaveNewUserRequest, connID uuid.UUID) []byte {
	dob, err := parseWireDate(req.DateOfBirth)
	if err != nil {
		return saveStatus("failure", wire.StatusInvalidDate)
	}
	taxpayer := &domain.Taxpayer{
		PersonalInfo: domain.PersonalInfo{
			NationalID:  req.NationalID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			DateOfBirth: dob,
			Gender:      req.Gender,
		},
		ContactInfo: domain.ContactInfo{
			AddressCountry:     req.AddressCountry,
			AddressZipCode:     req.AddressZipCode,
			AddressCity:        req.AddressCity,
			AddressStreet:      req.AddressStreet,
			AddressHouseNumber: req.AddressHouseNumber,
			PhoneCountryCode:   req.PhoneCountryCode,
			PhoneNumber:        req.PhoneNumber,
		},
		TaxInfo: domain.TaxInfo{
			MaritalStatus: req.MaritalStatus,
		},
	}
	err = server.Repo.InsertTaxpayer(taxpayer)
	if err != nil {
		server.WriteLog("ERROR", fmt.Sprintf("Inserting taxpayer %q: %v", req.NationalID, err), core.LogWithConnID(connID))
		return saveStatus("failure", fmt.Sprintf("Could not save record for %s", req.NationalID))
	}
	server.WriteLog("INFO", fmt.Sprintf("Saved new taxpayer record %q", req.NationalID), core.LogWithConnID(connID))
	return saveStatus("success", fmt.Sprintf("Record for %s saved", req.NationalID))
}

func (server *Server) handleFindUser(req *wire.FindUserRequest, connID uuid.UUID) []byte {
	query := domain.SearchQuery{
		NationalID: req.NationalID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	}
	if req.DateOfBirth != "" {
		dob, err := parseWireDate(req.DateOfBirth)
		if err != nil {
			// A malformed date is a request failure, kept distinct from a
			// search that simply found nothing.
			server.WriteLog("WARN", fmt.Sprintf("Rejected search with malformed date %q", req.DateOfBirth), core.LogWithConnID(connID))
			return []byte(wire.StatusInvalidDate)
		}
		query.DateOfBirth = dob
	}

	matches, err := server.Repo.SearchAny(query)
	if err != nil {
		server.WriteLog("ERROR", fmt.Sprintf("Searching taxpayers: %v", err), core.LogWithConnID(connID))
		return mustMarshal(wire.SearchResponse{Command: wire.ResultSearchUnsuccessful})
	}
	if len(matches) == 0 {
		return mustMarshal(wire.SearchResponse{Command: wire.ResultSearchUnsuccessful})
	}

	summaries := make([]wire.UserSummary, 0, len(matches))
	for _, match := range matches {
		summaries = append(summaries, wire.UserSummary{
			NationalID:  match.NationalID,
			FirstName:   match.FirstName,
			LastName:    match.LastName,
			DateOfBirth: formatWireDate(match.DateOfBirth),
		})
	}
	return mustMarshal(wire.SearchResponse{Command: wire.ResultSearchSuccessful, UserInfo: summaries})
}

func (server *Server) handleRetrieveUserDetails(req *wire.RetrieveUserDetailsRequest, connID uuid.UUID) []byte {
	records, err := server.Repo.RetrieveFull(req.NationalID)
	if err != nil {
		server.WriteLog("ERROR", fmt.Sprintf("Retrieving taxpayer %q: %v", req.NationalID, err), core.LogWithConnID(connID))
		return mustMarshal(wire.DetailsResponse{Command: wire.ResultRetrievingUnsuccessful})
	}
	if len(records) == 0 {
		return mustMarshal(wire.DetailsResponse{Command: wire.ResultRetrievingUnsuccessful})
	}

	details := make([]wire.UserDetails, 0, len(records))
	for _, record := range records {
		details = append(details, wire.UserDetails{
			NationalID:         record.NationalID,
			FirstName:          record.FirstName,
			LastName:           record.LastName,
			DateOfBirth:        formatWireDate(record.DateOfBirth),
			Gender:             record.Gender,
			AddressCountry:     record.AddressCountry,
			AddressZipCode:     record.AddressZipCode,
			AddressCity:        record.AddressCity,
			AddressStreet:      record.AddressStreet,
			AddressHouseNumber: record.AddressHouseNumber,
			PhoneCountryCode:   record.PhoneCountryCode,
			PhoneNumber:        record.PhoneNumber,
			MaritalStatus:      record.MaritalStatus,
			TaxRate:            record.TaxRate,
			YearlyIncome:       record.YearlyIncome,
			AdvanceTax:         record.AdvanceTax,
			TaxPaidThisYear:    record.TaxPaidThisYear,
			PropertyValue:      record.PropertyValue,
			Loans:              record.Loans,
			PropertyTax:        record.PropertyTax,
		})
	}
	return mustMarshal(wire.DetailsResponse{Command: wire.ResultRetrievingSuccessful, UserInfo: details})
}

// parseWireDate converts a display-form date into the stored ISO form.
func parseWireDate(value string) (string, error) {
	t, err := time.Parse(wireDateLayout, value)
	if err != nil {
		return "", fmt.Errorf("parsing date %q : %w", value, err)
	}
	return t.Format(storeDateLayout), nil
}

// formatWireDate converts a stored ISO date back to the display form. Values
// that fail to parse are returned unchanged rather than dropped.
func formatWireDate(value string) string {
	t, err := time.Parse(storeDateLayout, value)
	if err != nil {
		return value
	}
	return t.Format(wireDateLayout)
}

func saveStatus(status string, message string) []byte {
	return mustMarshal(wire.SaveStatus{Status: status, Message: message})
}

// mustMarshal serializes response values built entirely from plain structs;
// marshaling them cannot fail.
func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
