// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/coreforge/btccore/chaincfg/chainhash"

// Signer is the collaborator contract the core consumes for signature
// production and verification, per spec.md §6. Deterministic signing
// (RFC6979) is assumed of any implementation.
type Signer interface {
	Sign(hash [32]byte) (signature []byte, err error)
	Verify(pubKey, hash, signature []byte) bool
}

// ScriptInterpreter is the collaborator contract for everything the core
// delegates to the scripting engine: sigop accounting, codeseparator
// stripping, and pattern classification. Script execution itself
// (Execute) is outside the core's concern and is never called by it - the
// method exists on this interface only so a single collaborator type can
// satisfy both roles.
type ScriptInterpreter interface {
	SigOpCount(script []byte, accurateP2SH bool) uint32
	StripOp(script []byte, opcode byte) []byte
	Classify(script []byte) (class int, commitment chainhash.Hash)
	Execute(scriptSig, scriptPubKey []byte, tx interface{}, inputIndex int) error
}

// ChainContext is the collaborator contract for block-chain-level state the
// per-block verifier in this package never needs: height lookups and
// median-time-past. Higher layers (not this package) consume it to enforce
// CoinbaseMaturity and the lower-bound half of the timestamp check.
type ChainContext interface {
	GetHeight(prevBlock *chainhash.Hash) (height int32, ok bool)
	MedianTimePast(prevBlock *chainhash.Hash) uint32
}
