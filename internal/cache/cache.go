package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched page bodies keyed by URL hash
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PageKey generates a cache key for a page URL
func PageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "mzalendo:v1:" + hex.EncodeToString(hash[:])
}
