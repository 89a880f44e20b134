// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// MessageErrorCode identifies the specific wire-level parsing failure kind,
// distinct from the validation-level blockchain.ErrorCode family so that a
// peer-layer collaborator can apply different DoS scoring per spec.md §7.
type MessageErrorCode int

const (
	// ErrShortRead indicates the buffer ended mid-field.
	ErrShortRead MessageErrorCode = iota

	// ErrBadMarker indicates a BIP144 flag byte with an unknown value.
	ErrBadMarker

	// ErrSuperfluousWitness indicates the witness flag was set but no
	// input carried a non-empty witness stack.
	ErrSuperfluousWitness

	// ErrOversizedCount indicates a declared element count would exceed
	// the safety cap derived from the remaining message size.
	ErrOversizedCount

	// ErrNegativeValue indicates a transaction output value was negative
	// outside of the reserved SIGHASH_SINGLE sentinel.
	ErrNegativeValue

	// ErrValueOutOfRange indicates a transaction output value exceeded
	// MAX_MONEY.
	ErrValueOutOfRange
)

var messageErrorCodeStrings = map[MessageErrorCode]string{
	ErrShortRead:          "ErrShortRead",
	ErrBadMarker:          "ErrBadMarker",
	ErrSuperfluousWitness: "ErrSuperfluousWitness",
	ErrOversizedCount:     "ErrOversizedCount",
	ErrNegativeValue:      "ErrNegativeValue",
	ErrValueOutOfRange:    "ErrValueOutOfRange",
}

// String returns the MessageErrorCode in human-readable form.
func (e MessageErrorCode) String() string {
	if s, ok := messageErrorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown MessageErrorCode (%d)", int(e))
}

// MessageError describes an issue encountered while parsing or serializing
// a wire message. It is distinguished by its Code so that callers can
// branch on the specific failure kind named in spec.md §7.
type MessageError struct {
	Func        string
	Code        MessageErrorCode
	Description string
}

// Error satisfies the error interface.
func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}

// Is reports whether target is a *MessageError with the same Code, enabling
// idiomatic errors.Is comparisons against sentinel codes.
func (e *MessageError) Is(target error) bool {
	other, ok := target.(*MessageError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

func messageError(fn, desc string) *MessageError {
	return &MessageError{Func: fn, Description: desc}
}

func messageErrorf(fn string, code MessageErrorCode, format string, args ...interface{}) *MessageError {
	return &MessageError{Func: fn, Code: code, Description: fmt.Sprintf(format, args...)}
}
