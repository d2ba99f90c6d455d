// Package auth implements the admin credential check and admin session
// tokens.
//
// The game trusts a single static username/password pair supplied through
// configuration. This is deliberately not a hardened auth boundary: there
// is no account store and no rate limiting, which is acceptable for the
// toy trust level of a party game behind a shared link.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AdminAuthenticator verifies the static admin credential pair.
type AdminAuthenticator struct {
	username string
	password string
}

// NewAdminAuthenticator creates an authenticator for the configured pair.
// The password may be given either in plaintext or as a bcrypt hash
// (recognized by its "$2" prefix), so deployments can avoid keeping the
// plaintext in their environment.
func NewAdminAuthenticator(username, password string) *AdminAuthenticator {
	return &AdminAuthenticator{username: username, password: password}
}

// Authenticate checks the supplied credentials. Comparison is constant
// time; the returned error does not say which field was wrong.
func (a *AdminAuthenticator) Authenticate(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(a.username), []byte(username)) == 1

	var passOK bool
	if strings.HasPrefix(a.password, "$2") {
		passOK = bcrypt.CompareHashAndPassword([]byte(a.password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(a.password), []byte(password)) == 1
	}

	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
