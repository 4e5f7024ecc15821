package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// AdminAuthenticator verifies the admin credential against a bcrypt hash
// supplied through configuration. Member identity is entirely external;
// only the admin login lives here so the admin endpoints can mint tokens
// without a separate identity service in small deployments.
type AdminAuthenticator struct {
	passwordHash []byte
}

// NewAdminAuthenticator creates an authenticator for the configured hash.
func NewAdminAuthenticator(passwordHash string) *AdminAuthenticator {
	return &AdminAuthenticator{passwordHash: []byte(passwordHash)}
}

// HashPassword produces a bcrypt hash for provisioning the admin
// credential.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate checks the password against the configured hash.
func (a *AdminAuthenticator) Authenticate(password string) error {
	if len(a.passwordHash) == 0 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
