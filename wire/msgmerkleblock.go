// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/coreforge/btccore/chaincfg/chainhash"
)

// maxFlagsPerMerkleBlock bounds the number of flag bytes a MsgMerkleBlock
// can declare, derived from the maximum number of hashes that could fit.
const maxFlagsPerMerkleBlock = MaxMessagePayload / chainhash.HashSize

// MsgMerkleBlock implements the BIP37 merkleblock message: a block header,
// the total transaction count, the set of hashes a matching Bloom filter
// selected out of the partial Merkle tree, and the flag bits describing the
// tree's shape. The bloom package builds the hashes and flag bits this
// carries; this type only concerns
// itself with the wire encoding spec.md §4.9 specifies:
//
//	header || total_tx(u32 LE) || varint(n_hashes) || hashes ||
//	varint(n_flag_bytes) || flag_bytes
type MsgMerkleBlock struct {
	Header       BlockHeader
	Transactions uint32
	Hashes       []*chainhash.Hash
	Flags        []byte
}

// AddTxHash adds a new transaction hash to the message.
func (msg *MsgMerkleBlock) AddTxHash(hash *chainhash.Hash) error {
	if len(msg.Hashes)+1 > maxFlagsPerMerkleBlock {
		return messageErrorf("MsgMerkleBlock.AddTxHash", ErrOversizedCount,
			"too many hashes for a merkle block [max %d]", maxFlagsPerMerkleBlock)
	}
	msg.Hashes = append(msg.Hashes, hash)
	return nil
}

// Deserialize decodes a BIP37 merkle block message from r.
func (msg *MsgMerkleBlock) Deserialize(r io.Reader) error {
	if err := msg.Header.Deserialize(r); err != nil {
		return err
	}
	if err := readElement(r, &msg.Transactions); err != nil {
		return err
	}

	hashCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if hashCount > maxFlagsPerMerkleBlock {
		return messageErrorf("MsgMerkleBlock.Deserialize", ErrOversizedCount,
			"too many hashes for message [count %d, max %d]", hashCount, maxFlagsPerMerkleBlock)
	}

	hashes := make([]chainhash.Hash, hashCount)
	msg.Hashes = make([]*chainhash.Hash, 0, hashCount)
	for i := uint64(0); i < hashCount; i++ {
		h := &hashes[i]
		if err := readElement(r, h); err != nil {
			return err
		}
		msg.Hashes = append(msg.Hashes, h)
	}

	flags, err := ReadVarBytes(r, maxFlagsPerMerkleBlock, "merkle block flags")
	if err != nil {
		return err
	}
	msg.Flags = flags
	return nil
}

// Serialize encodes the merkle block message to w.
func (msg *MsgMerkleBlock) Serialize(w io.Writer) error {
	if err := msg.Header.Serialize(w); err != nil {
		return err
	}
	if err := writeElement(w, msg.Transactions); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.Hashes))); err != nil {
		return err
	}
	for _, hash := range msg.Hashes {
		if err := writeElement(w, *hash); err != nil {
			return err
		}
	}

	return WriteVarBytes(w, msg.Flags)
}

// SerializeSize returns the number of bytes the encoded message takes.
func (msg *MsgMerkleBlock) SerializeSize() int {
	n := BlockHeaderLen + 4
	n += VarIntSerializeSize(uint64(len(msg.Hashes)))
	n += len(msg.Hashes) * chainhash.HashSize
	n += VarIntSerializeSize(uint64(len(msg.Flags))) + len(msg.Flags)
	return n
}
