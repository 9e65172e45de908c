package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// ClaimHash returns the hex SHA-256 digest of the claim text. This is the
// dedup key for claims: the same text from the same source is the same
// claim. Changing the digest function invalidates every stored hash, so it
// is fixed here rather than configurable.
func ClaimHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
