// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"crypto/sha256"
	"io"
)

// HashB calculates the hash of the given bytes using sha256.
func HashB(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

// HashH calculates the hash of the given bytes using sha256 and returns the
// resulting bytes as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashB calculates the double sha256 hash (SHA256(SHA256(b))) of the
// given bytes and returns it as a byte slice. This is the universal commit
// function used to derive every identity hash in the protocol.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH calculates the double sha256 hash of the given bytes and
// returns it as a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// DoubleHashRaw calculates the double sha256 hash of the serialized data
// written to it by write and returns it as a Hash. It is used by callers
// that want to avoid buffering the pre-image, such as the Merkle engine
// concatenating two child hashes.
func DoubleHashRaw(write func(w io.Writer) error) Hash {
	h := sha256.New()
	// Serialization to a sha256.digest never errors.
	_ = write(h)
	first := h.Sum(nil)
	second := sha256.Sum256(first)
	return Hash(second)
}
