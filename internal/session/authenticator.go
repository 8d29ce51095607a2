package session

import (
	"crypto/subtle"
	"strings"
)

// Credential is one static username/password pair.
type Credential struct {
	Username string
	Password string
}

// Authenticator checks login attempts against the static per-role
// credentials from configuration. Credential storage hardening is out of
// scope; gating behavior is not.
type Authenticator struct {
	credentials map[Role]Credential
}

// NewAuthenticator constructs an authenticator over the given credential set.
func NewAuthenticator(credentials map[Role]Credential) *Authenticator {
	copied := make(map[Role]Credential, len(credentials))
	for role, credential := range credentials {
		copied[role] = credential
	}
	return &Authenticator{credentials: copied}
}

// Authenticate validates a login attempt and returns the session user.
func (a *Authenticator) Authenticate(role Role, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return User{}, ErrMissingCredentials
	}
	expected, ok := a.credentials[role]
	if !ok {
		return User{}, ErrUnknownRole
	}
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(expected.Username)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(expected.Password)) == 1
	if !userMatch || !passMatch {
		return User{}, ErrInvalidCredentials
	}
	return User{Role: role, Name: username}, nil
}
