package db

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tfkr-ae/taxreg/domain"
)

var _ domain.CredentialRepository = (*Repository)(nil)

// dbCredential represents a login credential as stored in the database.
type dbCredential struct {
	Username     string `db:"username"`      // Natural key for the credential.
	PasswordHash string `db:"password_hash"` // bcrypt hash of the password.
}

// CheckCredentials reports whether the username/password pair matches a stored
// credential. An unknown username and a hash mismatch both yield false; the
// bcrypt comparison is the only place a password is ever inspected.
func (repo *Repository) CheckCredentials(username, password string) (bool, error) {
	var cred dbCredential
	query := `SELECT username, password_hash FROM tms_users WHERE username = ?`

	err := repo.dbConn.Get(&cred, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetching credential for %s: %w", username, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password))
	if err != nil {
		// Mismatch and malformed stored hash both fail closed.
		return false, nil
	}
	return true, nil
}

// CreateCredential stores a new credential. It returns domain.ErrUsernameTaken
// when a credential for the username already exists. Callers serialize access
// through the server's store lock, so the existence check and the insert do not
// race with each other.
func (repo *Repository) CreateCredential(username, passwordHash string) error {
	var count int
	query := `SELECT COUNT(*) FROM tms_users WHERE username = ?`
	if err := repo.dbConn.Get(&count, query, username); err != nil {
		return fmt.Errorf("checking username %s: %w", username, err)
	}
	if count > 0 {
		return domain.ErrUsernameTaken
	}

	query = `INSERT INTO tms_users (username, password_hash) VALUES (?, ?)`
	if _, err := repo.dbConn.Exec(query, username, passwordHash); err != nil {
		return fmt.Errorf("inserting credential for %s: %w", username, err)
	}
	return nil
}
