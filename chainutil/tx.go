// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainutil wraps wire's bare codec types with the caching and
// parent-link behavior spec.md §9's design notes call for: an external
// cache keyed by identity hash rather than the back-reference cycles the
// original source used, with mutation forced through the wrapper's own API
// so the cache can never silently go stale.
package chainutil

import (
	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/wire"
)

// Tx defines a transaction that provides easier and more efficient manipulation
// of raw transactions. It also memoizes the txid/wtxid so subsequent calls do
// not have to repeat the hashing work.
type Tx struct {
	msgTx   *wire.MsgTx
	txHash  *chainhash.Hash
	wTxHash *chainhash.Hash

	// index is this transaction's position within its parent block, or
	// TxIndexUnknown if it is free-standing. Spent only for diagnostics;
	// the verifier never relies on it.
	index int
}

// TxIndexUnknown is the value returned by Index when the transaction's
// position within a parent block has never been set.
const TxIndexUnknown = -1

// NewTx returns a new instance of a transaction given an underlying MsgTx.
// The cache fields start out empty and are populated lazily on first
// access.
func NewTx(msgTx *wire.MsgTx) *Tx {
	return &Tx{msgTx: msgTx, index: TxIndexUnknown}
}

// MsgTx returns the underlying wire.MsgTx for the transaction. Callers must
// not mutate the fields of the returned value directly - doing so bypasses
// cache invalidation. Use the mutation helpers on Tx instead.
func (t *Tx) MsgTx() *wire.MsgTx {
	return t.msgTx
}

// Hash returns the txid for the transaction, generating and memoizing it if
// needed.
func (t *Tx) Hash() *chainhash.Hash {
	if t.txHash != nil {
		return t.txHash
	}
	hash := t.msgTx.TxHash()
	t.txHash = &hash
	return t.txHash
}

// WitnessHash returns the wtxid for the transaction, generating and
// memoizing it if needed. Per spec.md §4.4, a coinbase transaction's wtxid
// is defined as the all-zero hash regardless of its actual witness bytes -
// IsCoinBase is a pure function of the transaction's own shape (a single
// input with the coinbase sentinel outpoint), so no block context is
// required to apply this rule correctly.
func (t *Tx) WitnessHash() *chainhash.Hash {
	if t.wTxHash != nil {
		return t.wTxHash
	}

	var hash chainhash.Hash
	if !t.msgTx.IsCoinBase() {
		hash = t.msgTx.WitnessHash()
	}
	t.wTxHash = &hash
	return t.wTxHash
}

// Index returns the saved index of the transaction within a block. This
// value will be TxIndexUnknown if it hasn't already explicitly been set.
func (t *Tx) Index() int {
	return t.index
}

// SetIndex sets the index of the transaction within its containing block.
func (t *Tx) SetIndex(index int) {
	t.index = index
}

// invalidateCache drops any memoized hashes. Every mutating method on Tx
// must call this before returning so a stale Hash/WitnessHash can never be
// observed after a mutation, per spec.md §5's ordering guarantee.
func (t *Tx) invalidateCache() {
	t.txHash = nil
	t.wTxHash = nil
}

// AddTxIn appends an input to the underlying transaction and invalidates
// the cached hashes.
func (t *Tx) AddTxIn(in *wire.TxIn) {
	t.msgTx.AddTxIn(in)
	t.invalidateCache()
}

// AddTxOut appends an output to the underlying transaction and invalidates
// the cached hashes.
func (t *Tx) AddTxOut(out *wire.TxOut) {
	t.msgTx.AddTxOut(out)
	t.invalidateCache()
}

// ClearInputs removes every input from the underlying transaction and
// invalidates the cached hashes.
func (t *Tx) ClearInputs() {
	t.msgTx.ClearInputs()
	t.invalidateCache()
}

// ClearOutputs removes every output from the underlying transaction and
// invalidates the cached hashes.
func (t *Tx) ClearOutputs() {
	t.msgTx.ClearOutputs()
	t.invalidateCache()
}

// SetLockTime sets the transaction's lock time and invalidates the cached
// hashes.
func (t *Tx) SetLockTime(lockTime uint32) {
	t.msgTx.LockTime = lockTime
	t.invalidateCache()
}

// SetSequence sets the sequence number of the input at the given index and
// invalidates the cached hashes.
func (t *Tx) SetSequence(inputIndex int, sequence uint32) {
	t.msgTx.TxIn[inputIndex].Sequence = sequence
	t.invalidateCache()
}
