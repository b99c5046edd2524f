// Package cache provides the layered record cache sitting in front of the
// MCP data-access layer.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by the memory and disk layers.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key for a document in a named container.
func Key(container, id string) string {
	hash := sha256.Sum256([]byte(container + "/" + id))
	return "claimpilot:v1:" + hex.EncodeToString(hash[:])
}
