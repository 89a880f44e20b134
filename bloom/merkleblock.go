// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"bytes"

	"github.com/coreforge/btccore/blockchain"
	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/txscript"
	"github.com/coreforge/btccore/wire"
)

// FilteredBlock is the result of running a bloom filter over a block: the
// block's header, a BIP37 partial Merkle tree proving the matched
// transactions' membership, and the matched transactions themselves.
type FilteredBlock struct {
	Header      wire.BlockHeader
	MerkleBlock wire.MsgMerkleBlock
	MatchedTx   []*wire.MsgTx
}

// partialMerkleBuilder holds the state needed to walk a Merkle tree
// depth-first while emitting BIP37's flag bits and hash list, following the
// reference client's CPartialMerkleTree recursion.
type partialMerkleBuilder struct {
	numTx   uint32
	allHash []chainhash.Hash
	matches []bool
	bits    []bool
	hashes  []*chainhash.Hash
}

// calcTreeWidth returns the number of nodes at the given height of a tree
// whose base level has numTx leaves (height 0 is the leaf level).
func calcTreeWidth(numTx uint32, height uint32) uint32 {
	return (numTx + (1 << height) - 1) >> height
}

// calcHash recomputes the node hash at (height, pos) from the original leaf
// hashes, applying the same odd-leaf duplication rule used everywhere else
// in this module (spec.md §4.6).
func (b *partialMerkleBuilder) calcHash(height, pos uint32) chainhash.Hash {
	if height == 0 {
		return b.allHash[pos]
	}

	left := b.calcHash(height-1, pos*2)
	width := calcTreeWidth(b.numTx, height-1)
	right := left
	if pos*2+1 < width {
		right = b.calcHash(height-1, pos*2+1)
	}
	return blockchain.HashMerkleBranches(&left, &right)
}

// traverseAndBuild walks the tree depth-first, recording one flag bit per
// node (1 if the subtree rooted there contains a match) and the hash of
// every node whose bit is 0 or that is a matched leaf, per spec.md §4.6's
// partial Merkle tree construction.
func (b *partialMerkleBuilder) traverseAndBuild(height, pos uint32) {
	var anyMatch bool
	from := pos << height
	to := (pos + 1) << height
	if to > b.numTx {
		to = b.numTx
	}
	for i := from; i < to; i++ {
		if i < uint32(len(b.matches)) && b.matches[i] {
			anyMatch = true
			break
		}
	}

	b.bits = append(b.bits, anyMatch)

	if height == 0 || !anyMatch {
		hash := b.calcHash(height, pos)
		b.hashes = append(b.hashes, &hash)
		return
	}

	b.traverseAndBuild(height-1, pos*2)
	if pos*2+1 < calcTreeWidth(b.numTx, height-1) {
		b.traverseAndBuild(height-1, pos*2+1)
	}
}

// buildPartialMerkleTree constructs the BIP37 partial Merkle tree over
// leaves, given which leaf indices matched the filter.
func buildPartialMerkleTree(leaves []chainhash.Hash, matches []bool) ([]*chainhash.Hash, []bool) {
	b := &partialMerkleBuilder{
		numTx:   uint32(len(leaves)),
		allHash: leaves,
		matches: matches,
	}

	height := uint32(0)
	for calcTreeWidth(b.numTx, height) > 1 {
		height++
	}

	b.traverseAndBuild(height, 0)
	return b.hashes, b.bits
}

// packBits converts a slice of bools into the byte-packed, LSB-first
// representation BIP37's wire format uses, padding the final byte with
// zero bits.
func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			out[i>>3] |= 1 << uint(i&7)
		}
	}
	return out
}

// FilterBlock scans every transaction in block against filter and returns
// the filtered block: a partial Merkle tree proving which transactions
// matched, plus the matched transactions themselves, per spec.md §4.9.
func FilterBlock(block *wire.MsgBlock, filter *Filter) *FilteredBlock {
	txns := block.Transactions
	leaves := make([]chainhash.Hash, len(txns))
	matches := make([]bool, len(txns))
	var matchedTx []*wire.MsgTx

	for i, tx := range txns {
		leaves[i] = tx.TxHash()
		if matchTransaction(filter, tx) {
			matches[i] = true
			matchedTx = append(matchedTx, tx)
		}
	}

	log.Tracef("Filtering block with %d transactions, %d matched", len(txns), len(matchedTx))

	hashes, bits := buildPartialMerkleTree(leaves, matches)

	mb := wire.MsgMerkleBlock{
		Header:       block.Header,
		Transactions: uint32(len(txns)),
		Hashes:       hashes,
		Flags:        packBits(bits),
	}

	return &FilteredBlock{
		Header:      block.Header,
		MerkleBlock: mb,
		MatchedTx:   matchedTx,
	}
}

// matchTransaction applies the four matching rules of spec.md §4.9 to a
// single transaction, mutating filter in place per its UpdateFlag when an
// output match occurs.
func matchTransaction(filter *Filter, tx *wire.MsgTx) bool {
	hash := tx.TxHash()
	matched := filter.Matches(hash[:])

	for i, txOut := range tx.TxOut {
		if matchesPushData(filter, txOut.PkScript) {
			matched = true

			if filter.UpdateFlag() == BloomUpdateAll ||
				(filter.UpdateFlag() == BloomUpdateP2PubkeyOnly && looksLikePubKeyScript(txOut.PkScript)) {

				var buf bytes.Buffer
				buf.Write(hash[:])
				idx := uint32(i)
				buf.WriteByte(byte(idx))
				buf.WriteByte(byte(idx >> 8))
				buf.WriteByte(byte(idx >> 16))
				buf.WriteByte(byte(idx >> 24))
				filter.Add(buf.Bytes())
			}
		}
	}

	if !matched {
		for _, txIn := range tx.TxIn {
			var buf bytes.Buffer
			buf.Write(txIn.PreviousOutPoint.Hash[:])
			idx := txIn.PreviousOutPoint.Index
			buf.WriteByte(byte(idx))
			buf.WriteByte(byte(idx >> 8))
			buf.WriteByte(byte(idx >> 16))
			buf.WriteByte(byte(idx >> 24))
			if filter.Matches(buf.Bytes()) {
				matched = true
				break
			}
			if matchesPushData(filter, txIn.SignatureScript) {
				matched = true
				break
			}
		}
	}

	return matched
}

// matchesPushData scans script's data pushes and reports whether any of
// them match the filter.
func matchesPushData(filter *Filter, script []byte) bool {
	for _, push := range txscript.Script(script).PushedData() {
		if filter.Matches(push) {
			return true
		}
	}
	return false
}

// looksLikePubKeyScript reports whether script is shaped like a bare
// pay-to-pubkey script, the only shape BloomUpdateP2PubkeyOnly reacts to.
func looksLikePubKeyScript(script []byte) bool {
	return (len(script) == 35 && script[0] == 0x21 && script[34] == 0xac) ||
		(len(script) == 67 && script[0] == 0x41 && script[66] == 0xac)
}
