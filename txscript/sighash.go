// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is
	// used to identify which outputs are signed.
	sigHashMask = 0x1f
)

// shallowCopyTx creates a shallow copy of the transaction for use when
// calculating the signature hash. It is used over MsgTx.Copy since that is
// a deep copy and therefore allocates much more than needed here - only
// the slices of pointers and a handful of scalar fields are mutated by the
// algorithms in this file.
func shallowCopyTx(tx *wire.MsgTx) wire.MsgTx {
	txCopy := wire.MsgTx{
		Version:  tx.Version,
		TxIn:     make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:    make([]*wire.TxOut, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}
	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, oldTxIn := range tx.TxIn {
		txIns[i] = *oldTxIn
		txCopy.TxIn[i] = &txIns[i]
	}
	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, oldTxOut := range tx.TxOut {
		txOuts[i] = *oldTxOut
		txCopy.TxOut[i] = &txOuts[i]
	}
	return txCopy
}

// CalcSignatureHash computes the legacy (pre-segwit) signature hash
// pre-image for the given script, sighash type, transaction and input
// index, per spec.md §4.5. The transaction passed in is never mutated; all
// work happens on an internal shallow copy.
func CalcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx, idx int) []byte {
	// The SigHashSingle signature type signs only the corresponding
	// input and output. Since transactions can have more inputs than
	// outputs, using SigHashSingle on an index with no matching output
	// is invalid by intent - but a bug in the original Satoshi client
	// means such an index produces a signature hash of the literal
	// value 1 (as a little-endian uint256) instead of an error. This
	// buggy behavior is now part of consensus and MUST be preserved.
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:]
	}

	sigScript := removeOpcodeRaw(script, OP_CODESEPARATOR)

	txCopy := shallowCopyTx(tx)
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = sigScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
		txCopy.TxIn[i].Witness = nil
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// Consensus treats undefined hash types like SigHashAll for
		// purposes of hash generation, including the historical
		// sighash_byte = 0 transaction spec.md §4.5 calls out.
		fallthrough
	case SigHashOld:
		fallthrough
	case SigHashAll:
		// No special-casing required.
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var wbuf bytes.Buffer
	wbuf.Grow(txCopy.SerializeSize() + 4)
	_ = txCopy.SerializeNoWitness(&wbuf)
	_ = binary.Write(&wbuf, binary.LittleEndian, uint32(hashType))
	return chainhash.DoubleHashB(wbuf.Bytes())
}

// CalcWitnessSignatureHash computes the BIP143 signature hash pre-image for
// a segwit input, per spec.md §4.5's witness pre-image table. scriptCode is
// the script actually executed (the P2WSH witness script, or the implicit
// P2PKH-shaped script substituted for a P2WPKH spend); prevValue is the
// amount of the output being spent, which segwit signatures commit to even
// though the legacy algorithm never needed it.
func CalcWitnessSignatureHash(scriptCode []byte, hashType SigHashType, tx *wire.MsgTx, idx int, prevValue int64) []byte {
	txIn := tx.TxIn[idx]

	var hashPrevouts, hashSequence, hashOutputs chainhash.Hash

	if hashType&SigHashAnyOneCanPay == 0 {
		var b bytes.Buffer
		for _, in := range tx.TxIn {
			b.Write(in.PreviousOutPoint.Hash[:])
			_ = binary.Write(&b, binary.LittleEndian, in.PreviousOutPoint.Index)
		}
		hashPrevouts = chainhash.DoubleHashH(b.Bytes())
	}

	if hashType&SigHashAnyOneCanPay == 0 &&
		hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {
		var b bytes.Buffer
		for _, in := range tx.TxIn {
			_ = binary.Write(&b, binary.LittleEndian, in.Sequence)
		}
		hashSequence = chainhash.DoubleHashH(b.Bytes())
	}

	switch {
	case hashType&sigHashMask != SigHashSingle && hashType&sigHashMask != SigHashNone:
		var b bytes.Buffer
		for _, out := range tx.TxOut {
			_ = binary.Write(&b, binary.LittleEndian, out.Value)
			_ = wire.WriteVarBytes(&b, out.PkScript)
		}
		hashOutputs = chainhash.DoubleHashH(b.Bytes())

	case hashType&sigHashMask == SigHashSingle && idx < len(tx.TxOut):
		var b bytes.Buffer
		out := tx.TxOut[idx]
		_ = binary.Write(&b, binary.LittleEndian, out.Value)
		_ = wire.WriteVarBytes(&b, out.PkScript)
		hashOutputs = chainhash.DoubleHashH(b.Bytes())
	}

	var sigHash bytes.Buffer
	_ = binary.Write(&sigHash, binary.LittleEndian, tx.Version)
	sigHash.Write(hashPrevouts[:])
	sigHash.Write(hashSequence[:])
	sigHash.Write(txIn.PreviousOutPoint.Hash[:])
	_ = binary.Write(&sigHash, binary.LittleEndian, txIn.PreviousOutPoint.Index)
	_ = wire.WriteVarBytes(&sigHash, scriptCode)
	_ = binary.Write(&sigHash, binary.LittleEndian, prevValue)
	_ = binary.Write(&sigHash, binary.LittleEndian, txIn.Sequence)
	sigHash.Write(hashOutputs[:])
	_ = binary.Write(&sigHash, binary.LittleEndian, tx.LockTime)
	_ = binary.Write(&sigHash, binary.LittleEndian, uint32(hashType))

	return chainhash.DoubleHashB(sigHash.Bytes())
}
