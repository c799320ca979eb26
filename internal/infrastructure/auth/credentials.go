package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/shopbot/backend/internal/infrastructure/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown admin or a wrong password
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username is unknown so both paths
// cost one bcrypt comparison
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shopbot-unknown-admin"), bcrypt.DefaultCost)

// AdminAuthenticator checks admin credentials against configured bcrypt hashes
type AdminAuthenticator struct {
	hashes map[string][]byte
}

// NewAdminAuthenticator validates the configured admins
func NewAdminAuthenticator(admins []config.AdminCredential) (*AdminAuthenticator, error) {
	hashes := make(map[string][]byte, len(admins))
	for i, a := range admins {
		if a.Username == "" {
			return nil, fmt.Errorf("auth.admins[%d]: username is required", i)
		}
		if _, err := bcrypt.Cost([]byte(a.PasswordHash)); err != nil {
			return nil, fmt.Errorf("auth.admins[%d]: password_hash is not a bcrypt hash: %w", i, err)
		}
		if _, dup := hashes[a.Username]; dup {
			return nil, fmt.Errorf("auth.admins[%d]: duplicate username %q", i, a.Username)
		}
		hashes[a.Username] = []byte(a.PasswordHash)
	}
	return &AdminAuthenticator{hashes: hashes}, nil
}

// Authenticate returns nil when password matches the admin's hash
func (a *AdminAuthenticator) Authenticate(username, password string) error {
	hash, known := a.lookup(username)
	if !known {
		hash = dummyHash
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if !known || err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (a *AdminAuthenticator) lookup(username string) ([]byte, bool) {
	var found []byte
	for name, hash := range a.hashes {
		if subtle.ConstantTimeCompare([]byte(name), []byte(username)) == 1 {
			found = hash
		}
	}
	return found, found != nil
}

// HashPassword returns a bcrypt hash for configuring an admin
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
