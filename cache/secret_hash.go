package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashSecret hashes a link secret before it is used as a cache key, so the
// raw secret never sits in cache storage (or a shared redis) verbatim.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
