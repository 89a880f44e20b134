// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/wire"
)

// Block defines a block that provides easier and more efficient manipulation
// of raw wire blocks. It memoizes the block hash and lazily wraps each
// transaction in a Tx on first access, rather than maintaining the
// child-to-parent back-references spec.md §9 warns against.
type Block struct {
	msgBlock *wire.MsgBlock
	hash     *chainhash.Hash
	txns     []*Tx
	height   int32
}

// BlockHeightUnknown is returned by Height when a block's height has never
// been set.
const BlockHeightUnknown = -1

// NewBlock returns a new instance of a block given an underlying MsgBlock.
func NewBlock(msgBlock *wire.MsgBlock) *Block {
	return &Block{msgBlock: msgBlock, height: BlockHeightUnknown}
}

// MsgBlock returns the underlying wire.MsgBlock for the block.
func (b *Block) MsgBlock() *wire.MsgBlock {
	return b.msgBlock
}

// Hash returns the block identity hash, generating and memoizing it if
// needed.
func (b *Block) Hash() *chainhash.Hash {
	if b.hash != nil {
		return b.hash
	}
	hash := b.msgBlock.BlockHash()
	b.hash = &hash
	return b.hash
}

// Height returns the saved height of the block. This value will be
// BlockHeightUnknown if it hasn't already explicitly been set via
// SetHeight.
func (b *Block) Height() int32 {
	return b.height
}

// SetHeight sets the height of the block.
func (b *Block) SetHeight(height int32) {
	b.height = height
}

// Transactions returns the transactions in the block wrapped in the Tx
// caching type, creating and caching the wrapper slice the first time it is
// requested. Each wrapped transaction has its block-relative Index set.
func (b *Block) Transactions() []*Tx {
	if len(b.txns) == len(b.msgBlock.Transactions) {
		return b.txns
	}

	b.txns = make([]*Tx, len(b.msgBlock.Transactions))
	for i, tx := range b.msgBlock.Transactions {
		newTx := NewTx(tx)
		newTx.SetIndex(i)
		b.txns[i] = newTx
	}
	return b.txns
}

// Tx returns the transaction at the provided index, wrapped in the caching
// Tx type, or nil if the index is out of range.
func (b *Block) Tx(txIndex int) *Tx {
	transactions := b.Transactions()
	if txIndex < 0 || txIndex >= len(transactions) {
		return nil
	}
	return transactions[txIndex]
}
