package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// HashHeader carries the hex HMAC-SHA256 of the request body.
const HashHeader = "HashSHA256"

// Hasher computes keyed HMAC-SHA256 signatures. Instances of hash.Hash are
// pooled to avoid an allocation per request.
//
// A Hasher with an empty key is disabled: [Hasher.Enabled] reports false and
// callers skip signing and verification.
type Hasher struct {
	key  []byte
	pool sync.Pool
}

// NewHasher returns a Hasher for key.
//
// Example usage:
//
//	h := utils.NewHasher("my-secret-key")
//	sig := h.Sign(body)
func NewHasher(key string) *Hasher {
	h := &Hasher{key: []byte(key)}
	h.pool.New = func() any {
		return hmac.New(sha256.New, h.key)
	}
	return h
}

// Enabled reports whether a key was configured.
func (h *Hasher) Enabled() bool {
	return h != nil && len(h.key) > 0
}

// Hash computes the raw HMAC-SHA256 digest of data.
func (h *Hasher) Hash(data []byte) []byte {
	mac := h.pool.Get().(hash.Hash)
	mac.Reset()

	mac.Write(data)
	sum := mac.Sum(nil)

	mac.Reset()
	h.pool.Put(mac)

	return sum
}

// Sign returns the hex-encoded digest of data, the value sent in
// [HashHeader].
func (h *Hasher) Sign(data []byte) string {
	return hex.EncodeToString(h.Hash(data))
}

// Verify reports whether signature is the hex digest of data. The comparison
// is constant-time.
func (h *Hasher) Verify(data []byte, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, h.Hash(data))
}
