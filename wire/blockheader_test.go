// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreforge/btccore/chaincfg/chainhash"
)

func sampleBlockHeader() *BlockHeader {
	return &BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{0x01},
		MerkleRoot: chainhash.Hash{0x02},
		Timestamp:  time.Unix(1_700_000_000, 0),
		Bits:       0x1d00ffff,
		Nonce:      12345,
	}
}

func TestBlockHeaderSerializeIsAlways80Bytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleBlockHeader().Serialize(&buf))
	assert.Len(t, buf.Bytes(), BlockHeaderLen)
}

func TestBlockHeaderSerializeDeserializeRoundTrip(t *testing.T) {
	h := sampleBlockHeader()

	var buf bytes.Buffer
	require.NoError(t, h.Serialize(&buf))

	var got BlockHeader
	require.NoError(t, got.Deserialize(&buf))
	assert.Equal(t, *h, got)
}

func TestBlockHeaderHashIsDeterministic(t *testing.T) {
	h := sampleBlockHeader()
	assert.Equal(t, h.BlockHash(), h.BlockHash())
}

func TestBlockHeaderHashChangesWithNonce(t *testing.T) {
	h1 := sampleBlockHeader()
	h2 := sampleBlockHeader()
	h2.Nonce++

	assert.NotEqual(t, h1.BlockHash(), h2.BlockHash())
}

func TestNewBlockHeaderSetsFields(t *testing.T) {
	prev := chainhash.Hash{0xaa}
	root := chainhash.Hash{0xbb}

	h := NewBlockHeader(2, &prev, &root, 0x1d00ffff, 99)

	assert.Equal(t, int32(2), h.Version)
	assert.Equal(t, prev, h.PrevBlock)
	assert.Equal(t, root, h.MerkleRoot)
	assert.Equal(t, uint32(0x1d00ffff), h.Bits)
	assert.Equal(t, uint32(99), h.Nonce)
}
