package catalog

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const APIKeyHeader = "X-API-Key"

const (
	msgAuthMissing = "Authentication required: X-API-Key header is missing"
	msgAuthInvalid = "Authentication failed: Invalid API Key"
)

var ErrNoKeyConfigured = errors.New("catalog: no api key configured")

// KeyChecker verifies the X-API-Key credential against either a plaintext
// secret or a bcrypt hash of it.
type KeyChecker struct {
	key  []byte
	hash []byte
}

func NewKeyChecker(key string) (*KeyChecker, error) {
	if key == "" {
		return nil, ErrNoKeyConfigured
	}
	return &KeyChecker{key: []byte(key)}, nil
}

func NewHashedKeyChecker(hash string) (*KeyChecker, error) {
	if hash == "" {
		return nil, ErrNoKeyConfigured
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &KeyChecker{hash: []byte(hash)}, nil
}

// Authenticate distinguishes a missing credential from a wrong one. An
// empty header value counts as missing.
func (c *KeyChecker) Authenticate(provided string, present bool) error {
	if !present || provided == "" {
		return Validation(msgAuthMissing)
	}
	if !c.matches(provided) {
		return Validation(msgAuthInvalid)
	}
	return nil
}

func (c *KeyChecker) matches(provided string) bool {
	if c.hash != nil {
		return bcrypt.CompareHashAndPassword(c.hash, []byte(provided)) == nil
	}
	return subtle.ConstantTimeCompare(c.key, []byte(provided)) == 1
}
