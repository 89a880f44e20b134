// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/wire"
)

func baseMsgTx() *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0},
		SignatureScript:  []byte{0x51},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(wire.NewTxOut(1, []byte{0x51}))
	return tx
}

func TestTxHashIsMemoized(t *testing.T) {
	tx := NewTx(baseMsgTx())

	h1 := tx.Hash()
	h2 := tx.Hash()
	assert.Same(t, h1, h2)
	assert.Equal(t, tx.MsgTx().TxHash(), *h1)
}

func TestTxWitnessHashZeroForCoinbase(t *testing.T) {
	cb := wire.NewMsgTx(wire.TxVersion)
	cb.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: wire.CoinbaseOutpointHash, Index: wire.MaxPrevOutIndex},
		SignatureScript:  []byte{0x01, 0x02},
		Witness:          wire.TxWitness{{0xde, 0xad}},
	})
	cb.AddTxOut(wire.NewTxOut(1, []byte{0x51}))

	tx := NewTx(cb)
	assert.Equal(t, chainhash.Hash{}, *tx.WitnessHash())
}

func TestTxMutationInvalidatesCache(t *testing.T) {
	tx := NewTx(baseMsgTx())
	before := *tx.Hash()

	tx.AddTxOut(wire.NewTxOut(2, []byte{0x52}))
	after := *tx.Hash()

	assert.NotEqual(t, before, after)
	assert.Equal(t, tx.MsgTx().TxHash(), after)
}

func TestTxClearInputsInvalidatesCache(t *testing.T) {
	tx := NewTx(baseMsgTx())
	_ = tx.Hash()

	tx.ClearInputs()
	assert.Empty(t, tx.MsgTx().TxIn)
	assert.Equal(t, tx.MsgTx().TxHash(), *tx.Hash())
}

func TestTxSetLockTimeInvalidatesCache(t *testing.T) {
	tx := NewTx(baseMsgTx())
	before := *tx.Hash()

	tx.SetLockTime(500)
	assert.NotEqual(t, before, *tx.Hash())
}

func TestTxSetSequenceInvalidatesCache(t *testing.T) {
	tx := NewTx(baseMsgTx())
	before := *tx.Hash()

	tx.SetSequence(0, 0xfffffffe)
	assert.NotEqual(t, before, *tx.Hash())
}

func TestTxIndexDefaultsUnknown(t *testing.T) {
	tx := NewTx(baseMsgTx())
	assert.Equal(t, TxIndexUnknown, tx.Index())

	tx.SetIndex(3)
	assert.Equal(t, 3, tx.Index())
}
