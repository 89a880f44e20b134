// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/coreforge/btccore/wire"
)

func rapidTxList(t *rapid.T) []*wire.MsgTx {
	n := rapid.IntRange(1, 9).Draw(t, "numTx")
	txs := make([]*wire.MsgTx, n)
	txs[0] = coinbaseTx()
	for i := 1; i < n; i++ {
		txs[i] = plainTx(byte(rapid.IntRange(1, 255).Draw(t, "seed")))
	}
	return txs
}

// TestRapidCalcMerkleRootMatchesTreeStore checks, over arbitrarily sized
// transaction lists, that CalcMerkleRoot always agrees with the root
// BuildMerkleTreeStore produces (its array's final element), for both the
// classic and witness trees.
func TestRapidCalcMerkleRootMatchesTreeStore(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		txs := rapidTxList(t)
		witness := rapid.Bool().Draw(t, "witness")

		root := CalcMerkleRoot(txs, witness)
		store := BuildMerkleTreeStore(txs, witness)

		want := store[len(store)-1]
		if want == nil {
			t.Fatalf("BuildMerkleTreeStore produced a nil root")
		}
		if *want != root {
			t.Fatalf("CalcMerkleRoot = %v, BuildMerkleTreeStore root = %v", root, *want)
		}
	})
}

// TestRapidMerkleTreeStoreSizeInvariant checks that the
// linear merkle array always has exactly 2*nextPowerOfTwo(n)-1 entries, the
// invariant the whole indexing scheme in BuildMerkleTreeStore depends on.
func TestRapidMerkleTreeStoreSizeInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		txs := rapidTxList(t)
		store := BuildMerkleTreeStore(txs, false)

		pot := nextPowerOfTwo(len(txs))
		want := pot*2 - 1
		if len(store) != want {
			t.Fatalf("len(store) = %d, want %d", len(store), want)
		}
	})
}

// TestRapidDuplicateConsecutiveTxAlwaysRejected checks that inserting any
// transaction immediately after a copy of itself is always caught by
// ValidateNoDuplicateConsecutiveTx, regardless of where in the list it's
// inserted or what the rest of the list looks like.
func TestRapidDuplicateConsecutiveTxAlwaysRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		txs := rapidTxList(t)
		pos := rapid.IntRange(0, len(txs)-1).Draw(t, "pos")

		dup := txs[pos]
		withDup := append(append([]*wire.MsgTx{}, txs[:pos+1]...), dup)
		withDup = append(withDup, txs[pos+1:]...)

		err := ValidateNoDuplicateConsecutiveTx(withDup)
		if err == nil {
			t.Fatalf("expected rejection of duplicate consecutive tx at %d", pos)
		}
		var ruleErr RuleError
		if !isRuleError(err, &ruleErr) || ruleErr.ErrorCode != ErrDuplicateTx {
			t.Fatalf("expected ErrDuplicateTx, got %v", err)
		}
	})
}

func isRuleError(err error, target *RuleError) bool {
	re, ok := err.(RuleError)
	if !ok {
		return false
	}
	*target = re
	return true
}
