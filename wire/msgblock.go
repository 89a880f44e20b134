// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/coreforge/btccore/chaincfg/chainhash"
)

// maxTxPerBlock bounds the number of transactions a single block message can
// declare, by dividing the maximum payload by minTxOutPayload, a size no
// serialized transaction can be smaller than.
const maxTxPerBlock = (MaxMessagePayload / minTxOutPayload) + 1

// MsgBlock implements the block wire message: a BlockHeader followed by a
// varint-prefixed list of transactions, each possibly BIP144-encoded.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// ClearTransactions removes all transactions from the message.
func (msg *MsgBlock) ClearTransactions() {
	msg.Transactions = make([]*MsgTx, 0, defaultTxInOutAlloc)
}

// BlockHash computes the block identity hash, which is exclusively a
// function of the 80-byte header and never touches the transaction list -
// this is what lets a header be validated (proof of work, timestamp) before
// a single transaction byte is read.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// Deserialize decodes a whole block - header plus every transaction,
// each parsed with BIP144 witness detection enabled - from r.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	if err := msg.Header.Deserialize(r); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxTxPerBlock {
		return messageErrorf("MsgBlock.Deserialize", ErrOversizedCount,
			"too many transactions to fit into max message size [count %d, max %d]",
			count, maxTxPerBlock)
	}

	log.Tracef("Deserializing block with %d transactions", count)

	msg.Transactions = make([]*MsgTx, 0, count)
	for i := uint64(0); i < count; i++ {
		tx := MsgTx{}
		if err := tx.Deserialize(r, true); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, &tx)
	}
	return nil
}

// Serialize encodes the block to w: the header, followed by each
// transaction re-serialized with Serialize's usual witness-if-present rule.
func (msg *MsgBlock) Serialize(w io.Writer) error {
	if err := msg.Header.Serialize(w); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// SerializeSize returns the number of bytes the BIP144-aware serialization
// of the block would take.
func (msg *MsgBlock) SerializeSize() int {
	n := BlockHeaderLen + VarIntSerializeSize(uint64(len(msg.Transactions)))
	for _, tx := range msg.Transactions {
		if tx.HasWitness() {
			n += tx.SerializeSizeWitness()
		} else {
			n += tx.SerializeSize()
		}
	}
	return n
}

// Bytes returns the serialized form of the block. Panics are impossible here
// since bytes.Buffer never returns a write error.
func (msg *MsgBlock) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.Serialize(&buf)
	return buf.Bytes()
}

// TxHashes returns the txid of every transaction in the block, in order.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(msg.Transactions))
	for i, tx := range msg.Transactions {
		hashes[i] = tx.TxHash()
	}
	return hashes
}
