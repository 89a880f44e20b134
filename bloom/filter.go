// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bloom implements the BIP37 Bloom filter and the partial Merkle
// tree scanner built on top of it (spec.md §4.9): given a block and a
// filter, produce the subset of transactions that match along with a
// compact proof of their inclusion.
package bloom

import (
	"math"
)

// ln2Squared and ln2 are used in the filter size estimation formulas BIP37
// specifies.
const (
	ln2Squared = 0.4804530139182014246671025263266649717305529515945455
	ln2        = 0.6931471805599453094172321214581765680755001343602552

	// MaxFilterLoadHashFuncs is the maximum number of hash functions a
	// filter may request.
	MaxFilterLoadHashFuncs = 50

	// MaxFilterLoadFilterSize is the maximum size in bytes a filter's
	// data bitmap may occupy.
	MaxFilterLoadFilterSize = 36000

	// ksmMultiplier is the constant BIP37 defines for seeding each of a
	// filter's n_hash_funcs independent hash functions:
	// seed_i = i*0xFBA4C795 + tweak.
	ksmMultiplier = 0xfba4c795
)

// UpdateFlag defines how the filter is updated when a data element within a
// transaction's output matches.
type UpdateFlag uint8

const (
	// BloomUpdateNone indicates the filter is not adaptively updated with
	// matching outputs.
	BloomUpdateNone UpdateFlag = 0

	// BloomUpdateAll indicates the filter is updated with the outpoint of
	// every matching output.
	BloomUpdateAll UpdateFlag = 1

	// BloomUpdateP2PubkeyOnly indicates the filter is updated only with
	// the outpoint of outputs matching a bare pay-to-pubkey script;
	// multisig outputs do not trigger the update.
	BloomUpdateP2PubkeyOnly UpdateFlag = 2
)

// Filter defines a BIP37 bloom filter that is used to selectively match
// transactions against a set of data elements without revealing the
// elements themselves.
type Filter struct {
	bitmap     []byte
	hashFuncs  uint32
	tweak      uint32
	updateFlag UpdateFlag
}

// NewFilter creates a new bloom filter instance, using the same size and
// false-positive-rate formulas the reference client uses: elements is the
// expected number of elements to be inserted, and fpRate the desired false
// positive rate in [0,1].
func NewFilter(elements, tweak uint32, fpRate float64, updateFlag UpdateFlag) *Filter {
	dataLen := uint32(-1 * float64(elements) * math.Log(fpRate) / ln2Squared / 8)
	if dataLen > MaxFilterLoadFilterSize {
		dataLen = MaxFilterLoadFilterSize
	} else if dataLen == 0 {
		dataLen = 1
	}

	hashFuncs := uint32(float64(dataLen*8) / float64(elements) * ln2)
	if hashFuncs > MaxFilterLoadHashFuncs {
		hashFuncs = MaxFilterLoadHashFuncs
	} else if hashFuncs == 0 {
		hashFuncs = 1
	}

	return &Filter{
		bitmap:     make([]byte, dataLen),
		hashFuncs:  hashFuncs,
		tweak:      tweak,
		updateFlag: updateFlag,
	}
}

// LoadFilter creates a bloom filter instance directly from its wire
// representation, for a caller that already has the filter's bytes (e.g.
// deserialized from a filterload message).
func LoadFilter(bitmap []byte, hashFuncs, tweak uint32, updateFlag UpdateFlag) *Filter {
	return &Filter{
		bitmap:     bitmap,
		hashFuncs:  hashFuncs,
		tweak:      tweak,
		updateFlag: updateFlag,
	}
}

// UpdateFlag returns the filter's configured update behavior.
func (f *Filter) UpdateFlag() UpdateFlag {
	return f.updateFlag
}

// hash computes the bit index within the bitmap that hashFuncIndex's
// independent hash function maps data to, per BIP37: MurmurHash3 x86_32
// seeded by hashFuncIndex*0xFBA4C795+tweak, reduced modulo the bitmap's
// total bit count.
func (f *Filter) hash(hashFuncIndex uint32, data []byte) uint32 {
	seed := hashFuncIndex*ksmMultiplier + f.tweak
	return murmurHash3(seed, data) % (uint32(len(f.bitmap)) * 8)
}

// Matches returns true if the data element matches against any of the
// filter's hash functions.
func (f *Filter) Matches(data []byte) bool {
	if len(f.bitmap) == 1 && f.bitmap[0] == 0xff {
		// A single 0xff byte is the reference client's convention for
		// a filter that matches everything.
		return true
	}

	for i := uint32(0); i < f.hashFuncs; i++ {
		idx := f.hash(i, data)
		if f.bitmap[idx>>3]&(1<<(idx&7)) == 0 {
			return false
		}
	}
	return true
}

// Add inserts a data element into the filter by setting the bit each of its
// hash functions selects.
func (f *Filter) Add(data []byte) {
	for i := uint32(0); i < f.hashFuncs; i++ {
		idx := f.hash(i, data)
		f.bitmap[idx>>3] |= 1 << (idx & 7)
	}
}

// MatchesOutPoint reports whether the 36-byte wire serialization of an
// outpoint (hash || index) matches the filter.
func (f *Filter) MatchesOutPoint(outPointBytes []byte) bool {
	return f.Matches(outPointBytes)
}

// murmurHash3 implements the 32-bit x86 variant of MurmurHash3 as BIP37
// specifies it.
func murmurHash3(seed uint32, data []byte) uint32 {
	const (
		c1 = 0xcc9e2d51
		c2 = 0x1b873593
	)

	h1 := seed
	nblocks := len(data) / 4

	for i := 0; i < nblocks; i++ {
		k1 := uint32(data[i*4]) | uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24

		k1 *= c1
		k1 = rotl32(k1, 15)
		k1 *= c2

		h1 ^= k1
		h1 = rotl32(h1, 13)
		h1 = h1*5 + 0xe6546b64
	}

	tail := data[nblocks*4:]
	var k1 uint32
	switch len(tail) {
	case 3:
		k1 ^= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint32(tail[0])
		k1 *= c1
		k1 = rotl32(k1, 15)
		k1 *= c2
		h1 ^= k1
	}

	h1 ^= uint32(len(data))
	h1 ^= h1 >> 16
	h1 *= 0x85ebca6b
	h1 ^= h1 >> 13
	h1 *= 0xc2b2ae35
	h1 ^= h1 >> 16

	return h1
}

func rotl32(x uint32, r uint8) uint32 {
	return (x << r) | (x >> (32 - r))
}
