// Package password produces and checks credential digests.
//
// The digest is hex(SHA-256(password + salt)), which keeps accounts created
// by earlier releases able to sign in.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// DefaultSalt is the salt existing digests were created with.
const DefaultSalt = "kira_salt_2024"

// MinLength is the shortest accepted password.
const MinLength = 6

// Hasher computes salted digests.
type Hasher struct {
	salt string
}

// NewHasher returns a hasher using salt, or DefaultSalt when salt is empty.
func NewHasher(salt string) *Hasher {
	if salt == "" {
		salt = DefaultSalt
	}
	return &Hasher{salt: salt}
}

// Hash returns the hex encoded digest of password.
func (h *Hasher) Hash(password string) string {
	sum := sha256.Sum256([]byte(password + h.salt))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether password matches digest.
func (h *Hasher) Verify(password, digest string) bool {
	got := h.Hash(password)
	want := strings.ToLower(strings.TrimSpace(digest))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
