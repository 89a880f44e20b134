// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterAddThenMatches(t *testing.T) {
	f := NewFilter(10, 0, 0.01, BloomUpdateAll)

	elem := []byte("some data element")
	assert.False(t, f.Matches(elem))

	f.Add(elem)
	assert.True(t, f.Matches(elem))
}

func TestFilterDoesNotMatchUnrelatedData(t *testing.T) {
	f := NewFilter(10, 0, 0.01, BloomUpdateAll)
	f.Add([]byte("alpha"))

	// Not a guarantee in general (false positives are inherent to a bloom
	// filter), but with a single small insertion at a low false-positive
	// rate an unrelated element overwhelmingly does not match.
	assert.False(t, f.Matches([]byte("something else entirely")))
}

func TestFilterAllMatchSentinel(t *testing.T) {
	f := LoadFilter([]byte{0xff}, 1, 0, BloomUpdateAll)
	assert.True(t, f.Matches([]byte("anything")))
	assert.True(t, f.Matches([]byte{}))
}

func TestNewFilterSizeIsBounded(t *testing.T) {
	f := NewFilter(100_000_000, 0, 0.00001, BloomUpdateAll)
	assert.LessOrEqual(t, len(f.bitmap), MaxFilterLoadFilterSize)
	assert.LessOrEqual(t, f.hashFuncs, uint32(MaxFilterLoadHashFuncs))
}

func TestNewFilterNeverDegeneratesToZero(t *testing.T) {
	f := NewFilter(1, 0, 0.999999, BloomUpdateAll)
	assert.GreaterOrEqual(t, len(f.bitmap), 1)
	assert.GreaterOrEqual(t, f.hashFuncs, uint32(1))
}

func TestLoadFilterRoundTripsUpdateFlag(t *testing.T) {
	f := LoadFilter(make([]byte, 8), 3, 42, BloomUpdateP2PubkeyOnly)
	assert.Equal(t, BloomUpdateP2PubkeyOnly, f.UpdateFlag())
}

func TestMurmurHash3Deterministic(t *testing.T) {
	data := []byte("deterministic input")
	h1 := murmurHash3(12345, data)
	h2 := murmurHash3(12345, data)
	assert.Equal(t, h1, h2)
}

func TestMurmurHash3VariesWithSeed(t *testing.T) {
	data := []byte("some data")
	assert.NotEqual(t, murmurHash3(0, data), murmurHash3(1, data))
}

func TestMurmurHash3EmptyInput(t *testing.T) {
	// The empty-input, zero-seed case reduces to the finalizer mix alone
	// applied to the seed, with length 0 folded in; it must not panic on
	// the zero-length tail slice.
	assert.NotPanics(t, func() { murmurHash3(0, nil) })
}

func TestMatchesOutPointUsesRaw36ByteEncoding(t *testing.T) {
	f := NewFilter(10, 7, 0.01, BloomUpdateAll)
	outpoint := make([]byte, 36)
	for i := range outpoint {
		outpoint[i] = byte(i)
	}

	assert.False(t, f.MatchesOutPoint(outpoint))
	f.Add(outpoint)
	assert.True(t, f.MatchesOutPoint(outpoint))
}
