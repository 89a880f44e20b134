// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"golang.org/x/crypto/ripemd160"

	"github.com/coreforge/btccore/chaincfg/chainhash"
)

// defaultMultisigSigOps is the sigop cost attributed to a bare
// OP_CHECKMULTISIG(VERIFY) when it is not immediately preceded by a literal
// OP_1..OP_16 push of the number of public keys, or when sigops are counted
// without accurateP2SH, per spec.md §4.3.
const defaultMultisigSigOps = 20

// Script is an opaque view over a public-key or signature script's raw
// bytes, offering exactly the three capabilities spec.md §4.3 describes:
// sigop counting, OP_CODESEPARATOR stripping, and shape classification.
// Script never executes anything.
type Script []byte

// SigOpCount counts the signature operations a script contributes, per the
// consensus accounting rules: OP_CHECKSIG/OP_CHECKSIGVERIFY count as one
// apiece; OP_CHECKMULTISIG/OP_CHECKMULTISIGVERIFY count as
// defaultMultisigSigOps, except that when accurateP2SH is true and the
// immediately preceding instruction is a literal OP_1..OP_16 push, that
// literal's value is used. When
// accurateP2SH is true and the script looks like the redeem half of a P2SH
// spend, the sigops of the embedded redeem script are counted instead of
// the outer push.
func (s Script) SigOpCount(accurateP2SH bool) uint32 {
	if accurateP2SH {
		if redeem, ok := extractP2SHRedeemScript(s); ok {
			return Script(redeem).SigOpCount(true)
		}
	}
	return countSigOps(s, accurateP2SH)
}

func countSigOps(script []byte, precise bool) uint32 {
	var n uint32
	lastOp := -1 // no opcode seen yet
	for pos := 0; pos < len(script); {
		length, ok := opcodeLen(script, pos)
		if !ok {
			log.Tracef("short-circuiting sigop scan at offset %d of %d byte script", pos, len(script))
			break
		}
		op := script[pos]
		switch op {
		case OP_CHECKSIG, OP_CHECKSIGVERIFY:
			n++
		case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
			if precise && lastOp >= OP_1 && lastOp <= OP_16 {
				n += uint32(asSmallInt(byte(lastOp)))
			} else {
				n += defaultMultisigSigOps
			}
		}
		lastOp = int(op)
		pos += length
	}
	return n
}

// extractP2SHRedeemScript returns the final push of a script, interpreted
// as an embedded redeem script, when the script's last instruction is a
// data push. This mirrors how a scriptSig spending a P2SH output is shaped:
// ...signatures... <redeemScript>.
func extractP2SHRedeemScript(script []byte) ([]byte, bool) {
	pos := 0
	lastPushStart, lastPushLen := -1, 0
	for pos < len(script) {
		length, ok := opcodeLen(script, pos)
		if !ok {
			return nil, false
		}
		op := script[pos]
		if op >= OP_DATA_1 && op <= OP_PUSHDATA4 {
			lastPushStart, lastPushLen = pos, length
		} else {
			lastPushStart = -1
		}
		pos += length
	}
	if lastPushStart < 0 {
		return nil, false
	}
	push := script[lastPushStart : lastPushStart+lastPushLen]
	// Strip the instruction's own opcode/length prefix to get at the
	// pushed bytes themselves.
	op := push[0]
	switch {
	case op >= OP_DATA_1 && op <= OP_DATA_75:
		return push[1:], true
	case op == OP_PUSHDATA1:
		return push[2:], true
	case op == OP_PUSHDATA2:
		return push[3:], true
	case op == OP_PUSHDATA4:
		return push[5:], true
	}
	return nil, false
}

// RemoveOpcode returns a copy of the script with every instruction whose
// opcode equals opcode removed. This is used exclusively by the legacy
// signature-hash routine to strip OP_CODESEPARATOR from scriptCode before
// hashing (spec.md §4.5 step 3).
func (s Script) RemoveOpcode(opcode byte) Script {
	out := make([]byte, 0, len(s))
	for pos := 0; pos < len(s); {
		length, ok := opcodeLen(s, pos)
		if !ok {
			// Malformed tail: copy the remaining bytes verbatim,
			// matching the historical behavior of the reference
			// client's script stripper.
			out = append(out, s[pos:]...)
			break
		}
		if s[pos] != opcode {
			out = append(out, s[pos:pos+length]...)
		}
		pos += length
	}
	return out
}

// removeOpcodeRaw is the package-internal free function form used by the
// sighash builder, mirroring the grounding reference's naming.
func removeOpcodeRaw(script []byte, opcode byte) []byte {
	return Script(script).RemoveOpcode(opcode)
}

// ScriptClass identifies a recognized output script shape. Script never
// inspects spending intent beyond pattern matching: execution correctness
// is the scripting collaborator's concern, not this package's.
type ScriptClass int

const (
	// NonStandardTy means the script doesn't match any recognized shape.
	NonStandardTy ScriptClass = iota

	// PubKeyTy is a pay-to-pubkey script.
	PubKeyTy

	// PubKeyHashTy is a pay-to-pubkey-hash script.
	PubKeyHashTy

	// ScriptHashTy is a pay-to-script-hash script.
	ScriptHashTy

	// WitnessV0PubKeyHashTy is a pay-to-witness-pubkey-hash script.
	WitnessV0PubKeyHashTy

	// WitnessV0ScriptHashTy is a pay-to-witness-script-hash script.
	WitnessV0ScriptHashTy

	// WitnessCommitmentTy is the OP_RETURN output a coinbase transaction
	// uses to commit to the block's witness root (BIP141).
	WitnessCommitmentTy
)

var scriptClassNames = map[ScriptClass]string{
	NonStandardTy:         "nonstandard",
	PubKeyTy:              "pubkey",
	PubKeyHashTy:          "pubkeyhash",
	ScriptHashTy:          "scripthash",
	WitnessV0PubKeyHashTy: "witness_v0_keyhash",
	WitnessV0ScriptHashTy: "witness_v0_scripthash",
	WitnessCommitmentTy:   "witness_commitment",
}

// String returns the ScriptClass in human-readable form.
func (c ScriptClass) String() string {
	if s, ok := scriptClassNames[c]; ok {
		return s
	}
	return "nonstandard"
}

// witnessCommitmentPrefix is the four-byte magic BIP141 prescribes for the
// OP_RETURN push that commits to a block's witness root.
var witnessCommitmentPrefix = []byte{0xaa, 0x21, 0xa9, 0xed}

// Classify performs shape recognition over the script and returns a
// ScriptClass. For WitnessCommitmentTy, the committed 32-byte hash is also
// returned; for every other class the returned hash is the zero value.
func (s Script) Classify() (ScriptClass, chainhash.Hash) {
	switch {
	case isPubKeyHash(s):
		return PubKeyHashTy, chainhash.Hash{}
	case isPubKey(s):
		return PubKeyTy, chainhash.Hash{}
	case isScriptHash(s):
		return ScriptHashTy, chainhash.Hash{}
	case isWitnessPubKeyHash(s):
		return WitnessV0PubKeyHashTy, chainhash.Hash{}
	case isWitnessScriptHash(s):
		return WitnessV0ScriptHashTy, chainhash.Hash{}
	}
	if hash, ok := witnessCommitmentHash(s); ok {
		return WitnessCommitmentTy, hash
	}
	return NonStandardTy, chainhash.Hash{}
}

// isPubKeyHash matches OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG.
func isPubKeyHash(s []byte) bool {
	return len(s) == 25 &&
		s[0] == OP_DUP && s[1] == OP_HASH160 && s[2] == OP_DATA_20 &&
		s[23] == OP_EQUALVERIFY && s[24] == OP_CHECKSIG
}

// isPubKey matches <33 or 65 byte pubkey> OP_CHECKSIG.
func isPubKey(s []byte) bool {
	if len(s) == 35 && s[0] == OP_DATA_33 && s[34] == OP_CHECKSIG {
		return true
	}
	return len(s) == 67 && s[0] == OP_DATA_65 && s[66] == OP_CHECKSIG
}

// isScriptHash matches OP_HASH160 <20 bytes> OP_EQUAL.
func isScriptHash(s []byte) bool {
	return len(s) == 23 && s[0] == OP_HASH160 && s[1] == OP_DATA_20 && s[22] == OP_EQUAL
}

// isWitnessPubKeyHash matches OP_0 <20 bytes>, the v0 P2WPKH program shape.
func isWitnessPubKeyHash(s []byte) bool {
	return len(s) == 22 && s[0] == OP_0 && s[1] == OP_DATA_20
}

// isWitnessScriptHash matches OP_0 <32 bytes>, the v0 P2WSH program shape.
func isWitnessScriptHash(s []byte) bool {
	return len(s) == 34 && s[0] == OP_0 && s[1] == OP_DATA_32
}

// witnessCommitmentHash extracts the committed hash from an
// OP_RETURN <0xaa21a9ed || 32-byte hash> output, per BIP141.
func witnessCommitmentHash(s []byte) (chainhash.Hash, bool) {
	if len(s) < 38 || s[0] != OP_RETURN {
		return chainhash.Hash{}, false
	}
	length, ok := opcodeLen(s, 1)
	if !ok || 1+length != len(s) {
		return chainhash.Hash{}, false
	}
	push, ok := extractPush(s, 1, length)
	if !ok || len(push) != 36 || !bytes.Equal(push[:4], witnessCommitmentPrefix) {
		return chainhash.Hash{}, false
	}
	var hash chainhash.Hash
	copy(hash[:], push[4:])
	return hash, true
}

func extractPush(script []byte, pos, length int) ([]byte, bool) {
	op := script[pos]
	switch {
	case op >= OP_DATA_1 && op <= OP_DATA_75:
		return script[pos+1 : pos+length], true
	case op == OP_PUSHDATA1:
		return script[pos+2 : pos+length], true
	case op == OP_PUSHDATA2:
		return script[pos+3 : pos+length], true
	case op == OP_PUSHDATA4:
		return script[pos+5 : pos+length], true
	}
	return nil, false
}

// PushedData returns the data pushed by every push instruction in script,
// in order. A malformed trailing push short-circuits the scan, matching the
// sigop-counting and codeseparator-stripping functions' behavior. This is
// the primitive the Bloom filter scanner (bloom package) uses to implement
// the "output/input script contains a matching data push" rules of
// spec.md §4.9.
func (s Script) PushedData() [][]byte {
	var pushes [][]byte
	for pos := 0; pos < len(s); {
		length, ok := opcodeLen(s, pos)
		if !ok {
			break
		}
		if push, ok := extractPush(s, pos, length); ok {
			pushes = append(pushes, push)
		}
		pos += length
	}
	return pushes
}

// Hash160 calculates the RIPEMD160(SHA256(b)) digest used throughout the
// protocol to derive pubkey hashes and script hashes.
func Hash160(b []byte) []byte {
	sha := chainhash.HashB(b)
	ripemd := ripemd160.New()
	_, _ = ripemd.Write(sha)
	return ripemd.Sum(nil)
}
