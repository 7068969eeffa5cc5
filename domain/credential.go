package domain

import (
	"errors"
	"unicode"
)

// ErrUsernameTaken is returned by CreateCredential when the username already exists.
var ErrUsernameTaken = errors.New("username already taken")

// CredentialRepository defines the interface for managing login credentials.
// Passwords are never stored in the clear; only bcrypt hashes reach the repository.
type CredentialRepository interface {
	// CheckCredentials reports whether the given username/password pair matches a
	// stored credential. It fails closed: an unknown username or a hash mismatch
	// both yield false. Only infrastructure failures produce an error.
	CheckCredentials(username, password string) (bool, error)

	// CreateCredential stores a new credential for username with the given
	// bcrypt password hash. It returns ErrUsernameTaken when the username exists.
	CreateCredential(username, passwordHash string) error
}

// Credential represents a stored login credential.
type Credential struct {
	Username     string // Natural key, unique per user
	PasswordHash string // bcrypt hash of the password
}

// ValidatePassword reports whether a password meets the registration rules:
// longer than seven characters, not digits only, not letters only, and
// containing both upper and lower case.
func ValidatePassword(password string) bool {
	if len(password) <= 7 {
		return false
	}

	allDigits := true
	allLetters := true
	hasUpper := false
	hasLower := false
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
		}
		if !unicode.IsLetter(r) {
			allLetters = false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}

	if allDigits || allLetters {
		return false
	}
	// Reject single-case passwords; passwords without any cased character pass.
	if hasLower != hasUpper {
		return false
	}
	return true
}
