package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough to tell runs apart in logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeListHash hashes named ordered lists. Order matters: the same names in a
// different order produce a different hash.
func ComputeListHash(lists ...[]string) Hash {
	var data strings.Builder
	for _, list := range lists {
		for _, item := range list {
			data.WriteString(item)
			data.WriteByte(0)
		}
		data.WriteByte(1)
	}
	return NewHash([]byte(data.String()))
}
