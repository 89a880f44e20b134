// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/txscript"
	"github.com/coreforge/btccore/wire"
)

// nextPowerOfTwo returns the next highest power of two from a given number
// if it is not already a power of two. This is a helper function used
// during the calculation of a merkle tree.
func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	exponent := uint(math.Log2(float64(n))) + 1
	return 1 << exponent
}

// HashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation. This is a helper
// function used to aid in the generation of a merkle tree.
func HashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])

	return chainhash.DoubleHashRaw(func(w io.Writer) error {
		_, err := w.Write(buf[:])
		return err
	})
}

// txLeafHash returns the hash a transaction contributes as a merkle tree
// leaf: the txid when witness is false, or the wtxid when witness is true -
// except that the coinbase transaction (always index 0) always contributes
// the all-zero hash to a witness tree, per spec.md §4.4 and §4.6.
func txLeafHash(tx *wire.MsgTx, index int, witness bool) chainhash.Hash {
	if witness {
		if index == 0 {
			return chainhash.Hash{}
		}
		return tx.WitnessHash()
	}
	return tx.TxHash()
}

// BuildMerkleTreeStore creates a merkle tree from a slice of transactions,
// stores it using a linear array, and returns the backing array. A linear
// array was chosen as opposed to an actual tree structure since it uses
// about half as much memory.
//
// A merkle tree is a tree in which every non-leaf node is the hash of its
// children nodes. A diagram depicting how this works for bitcoin
// transactions where h(x) is a double sha256 follows:
//
//	         root = h1234 = h(h12 + h34)
//	        /                           \
//	  h12 = h(h1 + h2)            h34 = h(h3 + h4)
//	   /            \              /            \
//	h1 = h(tx1)  h2 = h(tx2)    h3 = h(tx3)  h4 = h(tx4)
//
// The above stored as a linear array is as follows:
//
//	[h1 h2 h3 h4 h12 h34 root]
//
// The merkle root is always the last element in the array.
//
// The number of inputs is not always a power of two which results in a
// balanced tree structure as above. In that case, parent nodes with no
// children are also zero and parent nodes with only a single left node are
// calculated by concatenating the left node with itself before hashing.
// Since this function uses nodes that are pointers to the hashes, empty
// nodes will be nil.
//
// The witness parameter indicates if the tree is being generated using
// wtxids rather than txids; in that case the coinbase's contribution is the
// all-zero hash.
func BuildMerkleTreeStore(transactions []*wire.MsgTx, witness bool) []*chainhash.Hash {
	nextPoT := nextPowerOfTwo(len(transactions))
	arraySize := nextPoT*2 - 1
	merkles := make([]*chainhash.Hash, arraySize)

	for i, tx := range transactions {
		h := txLeafHash(tx, i, witness)
		merkles[i] = &h
	}

	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		case merkles[i] == nil:
			merkles[offset] = nil

		case merkles[i+1] == nil:
			newHash := HashMerkleBranches(merkles[i], merkles[i])
			merkles[offset] = &newHash

		default:
			newHash := HashMerkleBranches(merkles[i], merkles[i+1])
			merkles[offset] = &newHash
		}
		offset++
	}

	return merkles
}

// CalcMerkleRoot computes the merkle root over a set of transactions,
// following the same leaf-hash and pairing rule as BuildMerkleTreeStore but
// without retaining the interior nodes.
func CalcMerkleRoot(transactions []*wire.MsgTx, witness bool) chainhash.Hash {
	leaves := make([]chainhash.Hash, len(transactions))
	for i, tx := range transactions {
		leaves[i] = txLeafHash(tx, i, witness)
	}
	return calcMerkleRootFromLeaves(leaves)
}

// calcMerkleRootFromLeaves implements spec.md §4.6's pairing algorithm
// directly over a slice of already-computed leaf hashes.
func calcMerkleRootFromLeaves(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}
	level := leaves
	for len(level) > 1 {
		next := make([]chainhash.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			l := level[i]
			r := level[i]
			if i+1 < len(level) {
				r = level[i+1]
			}
			next = append(next, HashMerkleBranches(&l, &r))
		}
		level = next
	}
	return level[0]
}

// ValidateNoDuplicateConsecutiveTx enforces the CVE-2012-2459 guard: a
// block whose transaction list contains two consecutive transactions with
// identical txids is rejected outright, since the duplicate-last-leaf
// padding rule used by BuildMerkleTreeStore makes such a list
// indistinguishable from one with a different transaction count at the
// merkle-root level.
func ValidateNoDuplicateConsecutiveTx(transactions []*wire.MsgTx) error {
	for i := 1; i < len(transactions); i++ {
		if transactions[i].TxHash() == transactions[i-1].TxHash() {
			str := fmt.Sprintf("block contains duplicate consecutive "+
				"transactions at positions %d and %d", i-1, i)
			return ruleError(ErrDuplicateTx, str)
		}
	}
	return nil
}

// ExtractWitnessCommitment attempts to locate the witness commitment within
// a coinbase transaction's outputs, delegating shape recognition to
// txscript.Script.Classify. It returns the committed 32-byte hash and
// whether one was found; the scan runs from the last output backward,
// matching the reference client's behavior of preferring the last matching
// output when more than one exists.
func ExtractWitnessCommitment(coinbase *wire.MsgTx) ([]byte, bool) {
	if !coinbase.IsCoinBase() {
		return nil, false
	}

	for i := len(coinbase.TxOut) - 1; i >= 0; i-- {
		class, hash := txscript.Script(coinbase.TxOut[i].PkScript).Classify()
		if class == txscript.WitnessCommitmentTy {
			h := hash
			return h[:], true
		}
	}
	return nil, false
}

// ValidateWitnessCommitment validates the witness commitment, if any, found
// within the coinbase transaction of the passed block, per spec.md §4.8
// item 8.
func ValidateWitnessCommitment(transactions []*wire.MsgTx) error {
	if len(transactions) == 0 {
		return ruleError(ErrNoTransactions,
			"cannot validate witness commitment of block without transactions")
	}

	coinbaseTx := transactions[0]
	if len(coinbaseTx.TxIn) == 0 {
		return ruleError(ErrNoTxInputs, "transaction has no inputs")
	}

	witnessCommitment, witnessFound := ExtractWitnessCommitment(coinbaseTx)

	if !witnessFound {
		for _, tx := range transactions {
			if tx.HasWitness() {
				return ruleError(ErrUnexpectedWitness,
					"block contains transaction with witness data, yet no witness commitment present")
			}
		}
		return nil
	}

	coinbaseWitness := coinbaseTx.TxIn[0].Witness
	if len(coinbaseWitness) != 1 {
		str := fmt.Sprintf("the coinbase transaction has %d items in "+
			"its witness stack when only one is allowed", len(coinbaseWitness))
		return ruleError(ErrInvalidWitnessCommitment, str)
	}
	witnessNonce := coinbaseWitness[0]
	if len(witnessNonce) != CoinbaseWitnessDataLen {
		str := fmt.Sprintf("the coinbase transaction witness nonce has "+
			"%d bytes when it must be %d bytes", len(witnessNonce), CoinbaseWitnessDataLen)
		return ruleError(ErrInvalidWitnessCommitment, str)
	}

	witnessMerkleRoot := CalcMerkleRoot(transactions, true)

	var witnessPreimage [chainhash.HashSize * 2]byte
	copy(witnessPreimage[:], witnessMerkleRoot[:])
	copy(witnessPreimage[chainhash.HashSize:], witnessNonce)

	computedCommitment := chainhash.DoubleHashB(witnessPreimage[:])
	if !bytes.Equal(computedCommitment, witnessCommitment) {
		str := fmt.Sprintf("witness commitment does not match: computed %x, "+
			"coinbase includes %x", computedCommitment, witnessCommitment)
		return ruleError(ErrWitnessCommitmentMismatch, str)
	}

	return nil
}
