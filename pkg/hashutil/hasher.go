package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"lukechampine.com/blake3"
)

// NewHasher returns a streaming hash.Hash for the specified algorithm.
// Use HexSum to render the digest.
func NewHasher(algo HashAlgo) (hash.Hash, error) {
	switch algo {
	case HashAlgoSHA256:
		return sha256.New(), nil
	case HashAlgoBLAKE3:
		return blake3.New(32, nil), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// HexSum renders a hasher's current digest as a hex string.
func HexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
