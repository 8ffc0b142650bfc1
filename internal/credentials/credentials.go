// Package credentials holds the account rules shared by /auth/signup and
// cmd/create-user, so both produce identical users rows.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields   = errors.New("email and password are required")
	ErrPasswordTooLong = errors.New("password is too long")
)

// Account is a validated new user ready to insert.
type Account struct {
	Name         string
	Email        string
	PasswordHash string
	AuthToken    string
}

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccount validates the input, hashes the password with bcrypt and issues
// a fresh auth token.
func NewAccount(name, email, password string) (Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Account{}, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Account{}, ErrPasswordTooLong
		}
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	return Account{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		AuthToken:    uuid.New().String(),
	}, nil
}
