package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential is returned when a supplied credential does not match
// the configured reference.
var ErrInvalidCredential = errors.New("invalid credential")

// Provider checks a supplied credential against a configured reference
// without exposing the reference value to its callers.
type Provider interface {
	Check(credential string) error
}

// BcryptProvider compares credentials against a bcrypt hash.
type BcryptProvider struct {
	hash []byte
}

// NewBcryptProvider creates a Provider backed by the given bcrypt hash.
func NewBcryptProvider(hash string) *BcryptProvider {
	return &BcryptProvider{hash: []byte(hash)}
}

// HashCredential hashes a plaintext credential with the given bcrypt cost.
// Used by provisioning tooling; the server itself only ever sees the hash.
func HashCredential(credential string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), cost)
	return string(hash), err
}

// Check compares a plaintext credential against the configured hash.
func (p *BcryptProvider) Check(credential string) error {
	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(credential)); err != nil {
		return ErrInvalidCredential
	}
	return nil
}
