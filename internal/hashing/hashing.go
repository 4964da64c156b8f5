// Package hashing provides content-addressed identifiers for deployment
// artifacts. Digests serve both as upload keys and as audit-manifest values,
// so the same bytes must always produce the same digest regardless of how
// the content was obtained.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the lowercase hex SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestString returns the digest of the UTF-8 bytes of s.
func DigestString(s string) string {
	return Digest([]byte(s))
}
