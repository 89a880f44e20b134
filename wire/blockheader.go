// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/coreforge/btccore/chaincfg/chainhash"
)

// BlockHeaderLen is the number of bytes a block header takes on the wire:
// 4 (version) + 32 (prev block) + 32 (merkle root) + 4 (time) + 4 (bits) +
// 4 (nonce).
const BlockHeaderLen = 80

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and merkleblock (MsgMerkleBlock) messages.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version int32

	// Hash of the previous block header in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created. This is, unfortunately, encoded as a
	// uint32 on the wire and therefore is limited to 2106.
	Timestamp time.Time

	// Difficulty target for the block, encoded in compact ("bits") form.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// BlockHash computes the block identity hash: double-SHA-256 of the 80-byte
// fixed-size header serialization, in natural byte order.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(BlockHeaderLen)
	_ = writeBlockHeader(&buf, h)
	return doubleSHA256(buf.Bytes())
}

// Serialize encodes the block header to w. There is no variant of this
// encoding - the header is always exactly 80 bytes.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// Deserialize decodes a block header from r.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, difficulty bits, and nonce used to
// generate the block with defaults for the remaining fields.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash,
	bits uint32, nonce uint32) *BlockHeader {

	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}

func readBlockHeader(r io.Reader, h *BlockHeader) error {
	if err := readElement(r, &h.Version); err != nil {
		return err
	}
	if err := readElement(r, &h.PrevBlock); err != nil {
		return err
	}
	if err := readElement(r, &h.MerkleRoot); err != nil {
		return err
	}

	var sec uint32
	if err := readElement(r, &sec); err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(sec), 0)

	if err := readElement(r, &h.Bits); err != nil {
		return err
	}
	return readElement(r, &h.Nonce)
}

func writeBlockHeader(w io.Writer, h *BlockHeader) error {
	if err := writeElement(w, h.Version); err != nil {
		return err
	}
	if err := writeElement(w, h.PrevBlock); err != nil {
		return err
	}
	if err := writeElement(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := writeElement(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeElement(w, h.Bits); err != nil {
		return err
	}
	return writeElement(w, h.Nonce)
}
