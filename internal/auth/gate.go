// Package auth holds the admin gate: a single shared secret compared in
// constant time. An empty secret disables admin mode.
package auth

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrAdminDisabled = errors.New("admin mode is not configured")
	ErrWrongPassword = errors.New("incorrect admin password")
)

type Gate struct {
	secret []byte
}

func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Enabled reports whether a secret is configured.
func (g *Gate) Enabled() bool {
	return len(g.secret) > 0
}

// Check compares attempt with the configured secret.
func (g *Gate) Check(attempt string) error {
	if !g.Enabled() {
		return ErrAdminDisabled
	}
	if subtle.ConstantTimeCompare([]byte(attempt), g.secret) != 1 {
		return ErrWrongPassword
	}
	return nil
}
