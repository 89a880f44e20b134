// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/wire"
)

func txWithOutputScript(seed byte, script []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{seed}, Index: 0},
		SignatureScript:  []byte{0x51},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(wire.NewTxOut(1, script))
	return tx
}

func blockOfTx(txs ...*wire.MsgTx) *wire.MsgBlock {
	block := &wire.MsgBlock{Header: wire.BlockHeader{}}
	for _, tx := range txs {
		block.AddTransaction(tx)
	}
	return block
}

func TestFilterBlockMatchesOutputPush(t *testing.T) {
	needle := []byte("needle")
	matching := txWithOutputScript(1, append([]byte{byte(len(needle))}, needle...))
	other := txWithOutputScript(2, []byte{0x51})
	block := blockOfTx(matching, other)

	f := NewFilter(10, 0, 0.0001, BloomUpdateAll)
	f.Add(needle)

	result := FilterBlock(block, f)
	require.Len(t, result.MatchedTx, 1)
	assert.Equal(t, matching.TxHash(), result.MatchedTx[0].TxHash())
	assert.Equal(t, uint32(2), result.MerkleBlock.Transactions)
}

func TestFilterBlockMatchesNothing(t *testing.T) {
	block := blockOfTx(txWithOutputScript(1, []byte{0x51}), txWithOutputScript(2, []byte{0x52}))
	f := NewFilter(10, 0, 0.0001, BloomUpdateAll)

	result := FilterBlock(block, f)
	assert.Empty(t, result.MatchedTx)
}

func TestFilterBlockUpdateAllAddsMatchedOutpoint(t *testing.T) {
	needle := []byte("needle")
	matching := txWithOutputScript(1, append([]byte{byte(len(needle))}, needle...))
	block := blockOfTx(matching)

	f := NewFilter(10, 0, 0.0001, BloomUpdateAll)
	f.Add(needle)

	FilterBlock(block, f)

	hash := matching.TxHash()
	outpoint := append(append([]byte{}, hash[:]...), 0, 0, 0, 0)
	assert.True(t, f.MatchesOutPoint(outpoint))
}

func TestCalcTreeWidth(t *testing.T) {
	assert.Equal(t, uint32(5), calcTreeWidth(5, 0))
	assert.Equal(t, uint32(3), calcTreeWidth(5, 1))
	assert.Equal(t, uint32(2), calcTreeWidth(5, 2))
	assert.Equal(t, uint32(1), calcTreeWidth(5, 3))
}

func TestPackBits(t *testing.T) {
	bits := []bool{true, false, true, true, false, false, false, false, true}
	packed := packBits(bits)
	require.Len(t, packed, 2)
	assert.Equal(t, byte(0b00001101), packed[0])
	assert.Equal(t, byte(0b00000001), packed[1])
}

func TestBuildPartialMerkleTreeSingleLeafAllMatch(t *testing.T) {
	leaves := []chainhash.Hash{{0x01}}
	hashes, bits := buildPartialMerkleTree(leaves, []bool{true})
	require.Len(t, hashes, 1)
	assert.Equal(t, leaves[0], *hashes[0])
	assert.Equal(t, []bool{true}, bits)
}

func TestBuildPartialMerkleTreeNoMatchesCollapsesToRoot(t *testing.T) {
	leaves := []chainhash.Hash{{0x01}, {0x02}, {0x03}}
	hashes, bits := buildPartialMerkleTree(leaves, []bool{false, false, false})

	require.Len(t, hashes, 1)
	assert.Equal(t, []bool{false}, bits)
}

func TestLooksLikePubKeyScript(t *testing.T) {
	compressed := make([]byte, 35)
	compressed[0] = 0x21
	compressed[34] = 0xac
	assert.True(t, looksLikePubKeyScript(compressed))

	uncompressed := make([]byte, 67)
	uncompressed[0] = 0x41
	uncompressed[66] = 0xac
	assert.True(t, looksLikePubKeyScript(uncompressed))

	assert.False(t, looksLikePubKeyScript([]byte{0x76, 0xa9}))
}
