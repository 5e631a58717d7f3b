package detector

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashImage computes the SHA-256 hash of the raw image bytes.
func HashImage(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from an image hash and a provider chain fingerprint.
func CacheKey(hash, chain string) string {
	if chain == "" {
		return hash
	}
	return hash + ":" + chain
}

// ChainFingerprint identifies an ordered provider chain. Results produced by
// different chains are cached separately.
func ChainFingerprint(providers []Provider) string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	sum := sha256.Sum256([]byte(strings.Join(names, ",")))
	return hex.EncodeToString(sum[:4])
}
