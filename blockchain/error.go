// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a specific kind of block or transaction validation
// failure, per the kinds enumerated in spec.md §7. Parsing errors live in
// wire.MessageErrorCode instead, so a peer-layer collaborator can apply
// different DoS scoring to the two categories.
type ErrorCode int

const (
	// ErrNoTransactions indicates a block contains no transactions.
	ErrNoTransactions ErrorCode = iota

	// ErrNoTxInputs indicates a transaction has no inputs.
	ErrNoTxInputs

	// ErrNoTxOutputs indicates a transaction has no outputs.
	ErrNoTxOutputs

	// ErrBlockTooBig indicates the classic serialization of a block
	// exceeds MaxBlockSize.
	ErrBlockTooBig

	// ErrTxTooBig indicates the classic serialization of a transaction
	// exceeds MaxBlockSize.
	ErrTxTooBig

	// ErrFirstTxNotCoinbase indicates the first transaction in a block is
	// not a coinbase transaction.
	ErrFirstTxNotCoinbase

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases

	// ErrBadCoinbaseScriptLen indicates a coinbase's signature script
	// length is outside [MinCoinbaseScriptLen, MaxCoinbaseScriptLen].
	ErrBadCoinbaseScriptLen

	// ErrBadCoinbaseHeight indicates BIP34 height-in-coinbase enforcement
	// is active and the coinbase script does not begin with a minimal
	// push of the expected height.
	ErrBadCoinbaseHeight

	// ErrDuplicateTxInputs indicates a single transaction spends the same
	// outpoint more than once.
	ErrDuplicateTxInputs

	// ErrBadTxInput indicates a non-coinbase transaction has an input
	// using the reserved coinbase sentinel outpoint.
	ErrBadTxInput

	// ErrInvalidTxOutValue indicates an output's value is negative or
	// exceeds MaxSatoshi.
	ErrInvalidTxOutValue

	// ErrTotalTxOutTooBig indicates the sum of a transaction's output
	// values exceeds MaxSatoshi.
	ErrTotalTxOutTooBig

	// ErrBadMerkleRoot indicates the computed transaction Merkle root
	// does not match the value recorded in the block header.
	ErrBadMerkleRoot

	// ErrDuplicateTx indicates the block's transaction list contains two
	// consecutive transactions with identical txids, the CVE-2012-2459
	// Merkle-tree malleability guard.
	ErrDuplicateTx

	// ErrTooManySigOps indicates a block's accumulated signature
	// operation count exceeds MaxBlockSigOps.
	ErrTooManySigOps

	// ErrImmatureSpend indicates an attempt to spend a coinbase output
	// before it reached CoinbaseMaturity confirmations. Detected by the
	// chain-context collaborator, reserved here for completeness.
	ErrImmatureSpend

	// ErrInvalidTime indicates a header's timestamp is malformed.
	ErrInvalidTime

	// ErrTimeTooNew indicates a header's timestamp is further in the
	// future than MaxTimeOffsetSeconds allows.
	ErrTimeTooNew

	// ErrUnexpectedWitness indicates a transaction in the block carries
	// witness data but the coinbase has no witness commitment output.
	ErrUnexpectedWitness

	// ErrInvalidWitnessCommitment indicates the coinbase's witness
	// commitment output or witness stack is malformed.
	ErrInvalidWitnessCommitment

	// ErrWitnessCommitmentMismatch indicates the computed witness root
	// does not reconcile with the commitment recorded in the coinbase.
	ErrWitnessCommitmentMismatch

	// ErrHighHash indicates the block hash, interpreted as a big-endian
	// number, exceeds the difficulty target derived from the header's
	// bits field.
	ErrHighHash

	// ErrUnexpectedDifficulty indicates the header's bits field decodes
	// to a negative or overflowing target.
	ErrUnexpectedDifficulty
)

var errorCodeStrings = map[ErrorCode]string{
	ErrNoTransactions:            "ErrNoTransactions",
	ErrNoTxInputs:                "ErrNoTxInputs",
	ErrNoTxOutputs:               "ErrNoTxOutputs",
	ErrBlockTooBig:               "ErrBlockTooBig",
	ErrTxTooBig:                  "ErrTxTooBig",
	ErrFirstTxNotCoinbase:        "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:         "ErrMultipleCoinbases",
	ErrBadCoinbaseScriptLen:      "ErrBadCoinbaseScriptLen",
	ErrBadCoinbaseHeight:         "ErrBadCoinbaseHeight",
	ErrDuplicateTxInputs:         "ErrDuplicateTxInputs",
	ErrBadTxInput:                "ErrBadTxInput",
	ErrInvalidTxOutValue:         "ErrInvalidTxOutValue",
	ErrTotalTxOutTooBig:          "ErrTotalTxOutTooBig",
	ErrBadMerkleRoot:             "ErrBadMerkleRoot",
	ErrDuplicateTx:               "ErrDuplicateTx",
	ErrTooManySigOps:             "ErrTooManySigOps",
	ErrImmatureSpend:             "ErrImmatureSpend",
	ErrInvalidTime:               "ErrInvalidTime",
	ErrTimeTooNew:                "ErrTimeTooNew",
	ErrUnexpectedWitness:         "ErrUnexpectedWitness",
	ErrInvalidWitnessCommitment:  "ErrInvalidWitnessCommitment",
	ErrWitnessCommitmentMismatch: "ErrWitnessCommitmentMismatch",
	ErrHighHash:                  "ErrHighHash",
	ErrUnexpectedDifficulty:      "ErrUnexpectedDifficulty",
}

// String returns the ErrorCode in human-readable form.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation encountered while validating a
// block or transaction. It carries an ErrorCode so that callers can branch
// on the kind of failure rather than parsing the description string.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

// Is reports whether target is a RuleError with the same ErrorCode,
// enabling idiomatic errors.Is comparisons against sentinel codes.
func (e RuleError) Is(target error) bool {
	other, ok := target.(RuleError)
	if !ok {
		return false
	}
	return e.ErrorCode == other.ErrorCode
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
