package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key builds a cache key as prefix:sha256(parts...). Parts are hashed in
// their JSON form, so equal inputs give equal keys across runs.
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
