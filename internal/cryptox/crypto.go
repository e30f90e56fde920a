// Package cryptox derives and checks password verifiers with Argon2id.
package cryptox

import (
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated salt.
const SaltSize = 16

// DeriveKey stretches password with salt into a 32-byte Argon2id key.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// Verifier holds a salted Argon2id hash of a secret so the plaintext need
// not stay in memory after startup.
type Verifier struct {
	salt []byte
	hash []byte
}

// NewVerifier hashes secret under a random salt. The caller may wipe secret
// afterwards.
func NewVerifier(secret []byte) (*Verifier, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	if salt == nil {
		return nil, errors.New("random source unavailable")
	}
	return &Verifier{salt: salt, hash: DeriveKey(secret, salt)}, nil
}

// Verify reports whether candidate matches the stored secret. The hash
// comparison is constant-time.
func (v *Verifier) Verify(candidate []byte) bool {
	return subtle.ConstantTimeCompare(v.hash, DeriveKey(candidate, v.salt)) == 1
}

// EqualConstantTime compares two strings without early exit.
func EqualConstantTime(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
