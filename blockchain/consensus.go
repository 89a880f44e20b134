// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/coreforge/btccore/wire"

// Consensus-critical constants. These are fixed by the network and are
// listed here verbatim, not tunable at runtime, per spec.md §6.
const (
	// MaxBlockSize is the maximum number of bytes a classic (no-witness)
	// serialized block may occupy.
	MaxBlockSize = 1_000_000

	// MaxBlockSigOps is the maximum number of signature operations a
	// block may contain, derived as MaxBlockSize / 50.
	MaxBlockSigOps = MaxBlockSize / 50

	// MaxSatoshi is the maximum number of satoshi that may exist, and so
	// the upper bound for any single output value or output sum.
	MaxSatoshi = 2_100_000_000_000_000

	// CoinbaseMaturity is the number of blocks required before newly
	// generated coins via the coinbase transaction may be spent. Enforced
	// by the chain-context collaborator, not by this package.
	CoinbaseMaturity = 100

	// LockTimeThreshold marks the boundary between a lock_time interpreted
	// as a block height and one interpreted as a Unix timestamp.
	LockTimeThreshold = 500_000_000

	// HeaderSize is the fixed size in bytes of a block header.
	HeaderSize = wire.BlockHeaderLen

	// MaxTimeOffsetSeconds is the allowed clock-skew tolerance for a
	// block's timestamp: a timestamp more than this far in the future is
	// rejected outright.
	MaxTimeOffsetSeconds = 2 * 60 * 60

	// CoinbaseWitnessDataLen is the required length of the coinbase
	// transaction's single witness element (the "witness reserved value")
	// when a witness commitment is present.
	CoinbaseWitnessDataLen = 32

	// CoinbaseWitnessPkScriptLength is the length of the OP_RETURN output
	// carrying the witness commitment: OP_RETURN, OP_DATA_36, and the
	// 36-byte push (4-byte magic + 32-byte hash).
	CoinbaseWitnessPkScriptLength = 38

	// MinCoinbaseScriptLen and MaxCoinbaseScriptLen bound the length of
	// the coinbase transaction's signature script.
	MinCoinbaseScriptLen = 2
	MaxCoinbaseScriptLen = 100

	// EasiestDifficultyTarget is the compact-form difficulty bits used by
	// test fixtures that need a proof-of-work check to pass quickly.
	EasiestDifficultyTarget = 0x207fffff
)

// WitnessMagicBytes is the prefix marker within the public key script of a
// coinbase output that indicates the output holds a block's witness
// commitment (BIP141).
var WitnessMagicBytes = []byte{
	txscriptOpReturn,
	txscriptOpData36,
	0xaa,
	0x21,
	0xa9,
	0xed,
}

// txscriptOpReturn/txscriptOpData36 are local copies of the txscript
// package's OP_RETURN and OP_DATA_36 opcode values.
const (
	txscriptOpReturn  = 0x6a
	txscriptOpData36  = 0x24
)

// VerifyFlags controls optional block-verification behavior.
type VerifyFlags uint32

const (
	// HeightInCoinbase requires the coinbase's signature script to begin
	// with a minimal push of the block's height (BIP34).
	HeightInCoinbase VerifyFlags = 1 << iota

	// BypassProofOfWork skips the proof-of-work predicate, for test
	// fixtures that exercise every other check without mining a block.
	BypassProofOfWork
)
