package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
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

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Domain-specific hash types
type (
	// StatKey caches one statistic computation. It covers the statistic
	// name, its parameters, and the selection state the computation
	// depends on, so any table edit invalidates the cached result.
	StatKey Hash

	// SelectionHash fingerprints the current sample set assignment and
	// selection flags of the individuals table.
	SelectionHash Hash
)

func (h StatKey) String() string       { return Hash(h).String() }
func (h SelectionHash) String() string { return Hash(h).String() }

// ComputeStatKey derives the cache key for a statistic computation.
func ComputeStatKey(statistic string, params map[string]any, selection SelectionHash) StatKey {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(statistic)
	data.WriteString("|")
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%v;", params[key]))
	}
	data.WriteString("|")
	data.WriteString(selection.String())

	return StatKey(NewHash([]byte(data.String())))
}

// ComputeSelectionHash fingerprints per-individual state. Callers pass
// one entry per individual, in table order, each encoding the fields a
// statistic depends on (selected flag and sample set assignment).
func ComputeSelectionHash(entries []string) SelectionHash {
	var data strings.Builder
	for _, e := range entries {
		data.WriteString(e)
		data.WriteString("\n")
	}
	return SelectionHash(NewHash([]byte(data.String())))
}
