// Package checksum produces the content digests used as If-Match tokens on
// file updates.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of content. Two byte-identical
// files always share a digest, so it doubles as a cheap equality check.
func Sum(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// Matches reports whether content hashes to the given digest.
func Matches(content []byte, digest string) bool {
	return digest != "" && Sum(content) == digest
}
