// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/txscript"
	"github.com/coreforge/btccore/wire"
)

func TestVerifyRejectsNoInputs(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(1, []byte{0x51}))

	err := Verify(tx)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrNoTxInputs, ruleErr.ErrorCode)
}

func TestVerifyRejectsNoOutputs(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}})

	err := Verify(tx)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrNoTxOutputs, ruleErr.ErrorCode)
}

func TestVerifyRejectsNegativeOutputValue(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}})
	tx.AddTxOut(wire.NewTxOut(-1, []byte{0x51}))

	err := Verify(tx)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrInvalidTxOutValue, ruleErr.ErrorCode)
}

func TestVerifyRejectsValueAboveMaxSatoshi(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}})
	tx.AddTxOut(wire.NewTxOut(MaxSatoshi+1, []byte{0x51}))

	err := Verify(tx)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrInvalidTxOutValue, ruleErr.ErrorCode)
}

func TestVerifyRejectsDuplicateInputs(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	outpoint := wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: outpoint})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: outpoint})
	tx.AddTxOut(wire.NewTxOut(1, []byte{0x51}))

	err := Verify(tx)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrDuplicateTxInputs, ruleErr.ErrorCode)
}

func TestVerifyRejectsSpendOfCoinbaseSentinelByNonCoinbase(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: wire.CoinbaseOutpointHash, Index: wire.MaxPrevOutIndex},
	})
	tx.AddTxOut(wire.NewTxOut(1, []byte{0x51}))

	err := Verify(tx)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrBadTxInput, ruleErr.ErrorCode)
}

func TestVerifyRejectsUndersizedCoinbaseScript(t *testing.T) {
	tx := coinbaseTx()
	tx.TxIn[0].SignatureScript = []byte{0x01}

	err := Verify(tx)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrBadCoinbaseScriptLen, ruleErr.ErrorCode)
}

func TestVerifyAcceptsWellFormedCoinbase(t *testing.T) {
	assert.NoError(t, Verify(coinbaseTx()))
}

func validBlock() *wire.MsgBlock {
	cb := coinbaseTx()
	other := plainTx(1)
	txs := []*wire.MsgTx{cb, other}

	block := &wire.MsgBlock{Header: wire.BlockHeader{
		Version:    1,
		MerkleRoot: CalcMerkleRoot(txs, false),
	}}
	for _, tx := range txs {
		block.AddTransaction(tx)
	}
	return block
}

func TestVerifyTransactionsAcceptsWellFormedBlock(t *testing.T) {
	assert.NoError(t, VerifyTransactions(validBlock(), -1, 0))
}

func TestVerifyTransactionsRejectsEmptyBlock(t *testing.T) {
	block := &wire.MsgBlock{Header: wire.BlockHeader{}}
	err := VerifyTransactions(block, -1, 0)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrNoTransactions, ruleErr.ErrorCode)
}

func TestVerifyTransactionsRejectsMissingLeadingCoinbase(t *testing.T) {
	block := validBlock()
	block.Transactions[0] = plainTx(9)

	err := VerifyTransactions(block, -1, 0)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrFirstTxNotCoinbase, ruleErr.ErrorCode)
}

func TestVerifyTransactionsRejectsSecondCoinbase(t *testing.T) {
	block := validBlock()
	block.Transactions = append(block.Transactions, coinbaseTx())
	block.Header.MerkleRoot = CalcMerkleRoot(block.Transactions, false)

	err := VerifyTransactions(block, -1, 0)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrMultipleCoinbases, ruleErr.ErrorCode)
}

func TestVerifyTransactionsRejectsBadMerkleRoot(t *testing.T) {
	block := validBlock()
	block.Header.MerkleRoot = chainhash.Hash{0xff}

	err := VerifyTransactions(block, -1, 0)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrBadMerkleRoot, ruleErr.ErrorCode)
}

func TestVerifyTransactionsEnforcesBIP34HeightInCoinbase(t *testing.T) {
	cb := coinbaseTx()
	cb.TxIn[0].SignatureScript = serializeMinimalNum(42)
	other := plainTx(1)
	txs := []*wire.MsgTx{cb, other}

	block := &wire.MsgBlock{Header: wire.BlockHeader{MerkleRoot: CalcMerkleRoot(txs, false)}}
	for _, tx := range txs {
		block.AddTransaction(tx)
	}

	assert.NoError(t, VerifyTransactions(block, 42, HeightInCoinbase))

	err := VerifyTransactions(block, 43, HeightInCoinbase)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrBadCoinbaseHeight, ruleErr.ErrorCode)
}

func TestSerializeMinimalNum(t *testing.T) {
	assert.Equal(t, []byte{txscript.OP_0}, serializeMinimalNum(0))
	assert.Equal(t, []byte{txscript.OP_1}, serializeMinimalNum(1))
	assert.Equal(t, []byte{byte(txscript.OP_1 + 15)}, serializeMinimalNum(16))
	assert.Equal(t, []byte{1, 17}, serializeMinimalNum(17))
	assert.Equal(t, []byte{1, 0x80 | 17}, serializeMinimalNum(-17))
}

func TestVerifyTransactionsRejectsTooManySigOps(t *testing.T) {
	cb := coinbaseTx()
	heavy := plainTx(1)
	heavyScript := make(txscript.Script, 0, MaxBlockSigOps+10)
	for i := uint32(0); i < MaxBlockSigOps+1; i++ {
		heavyScript = append(heavyScript, txscript.OP_CHECKSIG)
	}
	heavy.TxOut[0].PkScript = heavyScript

	txs := []*wire.MsgTx{cb, heavy}
	block := &wire.MsgBlock{Header: wire.BlockHeader{MerkleRoot: CalcMerkleRoot(txs, false)}}
	for _, tx := range txs {
		block.AddTransaction(tx)
	}

	err := VerifyTransactions(block, -1, 0)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrTooManySigOps, ruleErr.ErrorCode)
}
