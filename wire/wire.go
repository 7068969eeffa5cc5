// Package wire defines the message format spoken between the taxreg client and
// server: UTF-8 JSON envelopes terminated by a CRLF delimiter, carrying one
// command per message. Requests decode into a closed set of typed commands so
// that unrecognized commands and missing fields surface at the parsing
// boundary instead of deep inside the dispatcher.
package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Delimiter terminates every message on the wire. It never appears unescaped
// inside the JSON payload itself.
var Delimiter = []byte("\r\n")

// The closed set of command names a request may carry.
const (
	CommandLogin               = "login_request"
	CommandRegisterUser        = "register_user"
	CommandSaveNewUser         = "save_new_user"
	CommandFindUser            = "find_user"
	CommandRetrieveUserDetails = "retrieve_user_details"
)

// Result tags carried by structured responses.
const (
	ResultSearchSuccessful       = "search_successful"
	ResultSearchUnsuccessful     = "search_unsuccessful"
	ResultRetrievingSuccessful   = "retrieving_successful"
	ResultRetrievingUnsuccessful = "retrieving_unsuccessful"
)

// Simple status responses sent as bare strings.
const (
	StatusLoggedIn            = "User logged in successfully"
	StatusInvalidCredentials  = "Invalid username or password"
	StatusMissingCredentials  = "Username and password must be provided"
	StatusLoginServerError    = "Server error during login"
	StatusInvalidJSON         = "Invalid JSON format"
	StatusUserRegistered      = "User registered successfully"
	StatusUsernameTaken       = "Username already taken"
	StatusWeakPassword        = "Password does not meet requirements"
	StatusRegisterServerError = "Server error during registration"
	StatusInvalidDate         = "Invalid date of birth format"
)

// Header is the envelope header sent with every request.
type Header struct {
	ContentType string `json:"Content-Type"`
	Encoding    string `json:"Encoding"`
}

// DefaultHeader returns the header every client request carries.
func DefaultHeader() Header {
	return Header{
		ContentType: "application/json",
		Encoding:    "utf-8",
	}
}

// Request is implemented by every typed command in the closed command set.
type Request interface {
	// Command returns the wire name of the command.
	Command() string
}

// LoginRequest checks a username/password pair against the stored credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (LoginRequest) Command() string { return CommandLogin }

// RegisterUserRequest creates a new login credential.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (RegisterUserRequest) Command() string { return CommandRegisterUser }

// SaveNewUserRequest persists a new taxpayer record. The fields mirror the
// registration form; tax assessment figures are filled in out of band and are
// not part of this command.
type SaveNewUserRequest struct {
	NationalID         string `json:"national_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	DateOfBirth        string `json:"date_of_birth"`
	Gender             string `json:"gender"`
	AddressCountry     string `json:"address_country"`
	AddressZipCode     string `json:"address_zip_code"`
	AddressCity        string `json:"address_city"`
	AddressStreet      string `json:"address_street"`
	AddressHouseNumber string `json:"address_house_number"`
	PhoneCountryCode   string `json:"phone_country_code"`
	PhoneNumber        string `json:"phone_number"`
	MaritalStatus      string `json:"marital_status"`
}

func (SaveNewUserRequest) Command() string { return CommandSaveNewUser }

// FindUserRequest searches taxpayers by any of the supplied fields.
// DateOfBirth, when present, is in the display form "02.01.2006" and is
// canonicalised by the server before it reaches the store.
type FindUserRequest struct {
	NationalID  string `json:"national_id,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

func (FindUserRequest) Command() string { return CommandFindUser }

// RetrieveUserDetailsRequest fetches the complete record for one national ID.
type RetrieveUserDetailsRequest struct {
	NationalID string `json:"national_id"`
}

func (RetrieveUserDetailsRequest) Command() string { return CommandRetrieveUserDetails }

// UnknownCommandError is returned by DecodeRequest for a command outside the
// closed set, or a request with no command at all.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	if e.Command == "" {
		return "request carries no command"
	}
	return fmt.Sprintf("unrecognized command %q", e.Command)
}

// envelope is the outer JSON object of every request message.
type envelope struct {
	Header  Header          `json:"header"`
	Request json.RawMessage `json:"request"`
}

// DecodeRequest parses a request envelope (without the delimiter) into one of
// the typed commands. It returns an *UnknownCommandError for commands outside
// the closed set and a plain error for malformed JSON.
func DecodeRequest(data []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding request envelope : %w", err)
	}
	if len(env.Request) == 0 {
		return nil, &UnknownCommandError{}
	}

	var probe struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(env.Request, &probe); err != nil {
		return nil, fmt.Errorf("decoding request body : %w", err)
	}

	var req Request
	switch probe.Command {
	case CommandLogin:
		req = &LoginRequest{}
	case CommandRegisterUser:
		req = &RegisterUserRequest{}
	case CommandSaveNewUser:
		req = &SaveNewUserRequest{}
	case CommandFindUser:
		req = &FindUserRequest{}
	case CommandRetrieveUserDetails:
		req = &RetrieveUserDetailsRequest{}
	default:
		return nil, &UnknownCommandError{Command: probe.Command}
	}

	if err := json.Unmarshal(env.Request, req); err != nil {
		return nil, fmt.Errorf("decoding %s fields : %w", probe.Command, err)
	}
	return req, nil
}

// EncodeRequest wraps a typed command in the request envelope and returns the
// JSON message, without the delimiter.
func EncodeRequest(req Request) ([]byte, error) {
	fields, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s fields : %w", req.Command(), err)
	}

	body := map[string]any{}
	if err := json.Unmarshal(fields, &body); err != nil {
		return nil, fmt.Errorf("flattening %s fields : %w", req.Command(), err)
	}
	body["command"] = req.Command()

	message, err := json.Marshal(map[string]any{
		"header":  DefaultHeader(),
		"request": body,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request envelope : %w", err)
	}
	return message, nil
}

// UserSummary is the limited view of a taxpayer returned by find_user.
type UserSummary struct {
	NationalID  string `json:"national_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

// UserDetails is the full taxpayer view returned by retrieve_user_details.
type UserDetails struct {
	NationalID         string  `json:"national_id"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	DateOfBirth        string  `json:"date_of_birth"`
	Gender             string  `json:"gender"`
	AddressCountry     string  `json:"address_country"`
	AddressZipCode     string  `json:"address_zip_code"`
	AddressCity        string  `json:"address_city"`
	AddressStreet      string  `json:"address_street"`
	AddressHouseNumber string  `json:"address_house_number"`
	PhoneCountryCode   string  `json:"phone_country_code"`
	PhoneNumber        string  `json:"phone_number"`
	MaritalStatus      string  `json:"marital_status"`
	TaxRate            float64 `json:"tax_rate"`
	YearlyIncome       float64 `json:"yearly_income"`
	AdvanceTax         float64 `json:"advance_tax"`
	TaxPaidThisYear    float64 `json:"tax_paid_this_year"`
	PropertyValue      float64 `json:"property_value"`
	Loans              float64 `json:"loans"`
	PropertyTax        float64 `json:"property_tax"`
}

// SearchResponse is the structured response of the find_user command.
type SearchResponse struct {
	Command  string        `json:"command"`
	UserInfo []UserSummary `json:"user_info,omitempty"`
}

// DetailsResponse is the structured response of the retrieve_user_details command.
type DetailsResponse struct {
	Command  string        `json:"command"`
	UserInfo []UserDetails `json:"user_info,omitempty"`
}

// SaveStatus is the structured response of the save_new_user command.
type SaveStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReadMessage reads from r until the full delimiter has been observed, even
// when the delimiter spans multiple reads, and returns the message without it.
// Hitting EOF before a complete delimiter is an error; io.EOF is returned
// untouched only when no bytes were read at all.
func ReadMessage(r *bufio.Reader) ([]byte, error) {
	var data []byte
	for {
		chunk, err := r.ReadBytes('\n')
		data = append(data, chunk...)
		if bytes.HasSuffix(data, Delimiter) {
			return data[:len(data)-len(Delimiter)], nil
		}
		if err != nil {
			if err == io.EOF {
				if len(data) == 0 {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("connection closed mid-message : %w", io.ErrUnexpectedEOF)
			}
			return nil, fmt.Errorf("reading message : %w", err)
		}
	}
}

// WriteMessage writes the payload followed by the delimiter in a single write.
func WriteMessage(w io.Writer, payload []byte) error {
	framed := make([]byte, 0, len(payload)+len(Delimiter))
	framed = append(framed, payload...)
	framed = append(framed, Delimiter...)
	if _, err := w.Write(framed); err != nil {
		return fmt.Errorf("writing message : %w", err)
	}
	return nil
}
