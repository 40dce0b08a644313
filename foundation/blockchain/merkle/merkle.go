// Package merkle reduces an ordered set of transaction ids down to a single
// root hash for inclusion in a block header.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
)

// zeroRoot is the root reported for a block that carries no transactions.
const zeroRoot = "0000000000000000000000000000000000000000000000000000000000000000"

// RootHex computes the merkle root over the specified transaction ids. The
// ids are expected in their big-endian hex display form and the root is
// returned the same way. The calculation is order sensitive, reordering the
// ids produces a different root.
func RootHex(txIDs []string) (string, error) {
	if len(txIDs) == 0 {
		return zeroRoot, nil
	}

	// Work on the little-endian byte form of each id, the same form the
	// ids are hashed in when a transaction is encoded.
	level := make([][]byte, len(txIDs))
	for i, id := range txIDs {
		data, err := hex.DecodeString(id)
		if err != nil {
			return "", err
		}
		level[i] = reverse(data)
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			pair := append(append([]byte{}, level[i]...), level[i+1]...)
			next = append(next, doubleHash(pair))
		}
		level = next
	}

	return hex.EncodeToString(reverse(level[0])), nil
}

// ZeroRoot returns the root value that represents an empty set of
// transactions.
func ZeroRoot() string {
	return zeroRoot
}

// =============================================================================

// doubleHash applies the hash of the hash over the specified data.
func doubleHash(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// reverse returns a copy of the specified bytes in the opposite order. This
// flips a value between its big-endian display form and the little-endian
// form used for hashing.
func reverse(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[len(data)-1-i] = b
	}
	return out
}
