// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"time"

	"github.com/coreforge/btccore/txscript"
	"github.com/coreforge/btccore/wire"
)

// VerifyHeader checks the two properties of a block header that require no
// context beyond the header itself: proof of work and timestamp drift, per
// spec.md §4.8.
func VerifyHeader(header *wire.BlockHeader, flags VerifyFlags) error {
	if err := CheckProofOfWork(header, flags); err != nil {
		return err
	}
	return CheckTimestamp(header, time.Now())
}

// VerifyTransactions runs the full transaction-list checklist spec.md §4.8
// describes against a block: structural sanity, the coinbase position
// rule, BIP34 height-in-coinbase (when requested), the Merkle root, the
// aggregate sigop budget, every transaction's individual invariants, and
// the witness commitment.
func VerifyTransactions(block *wire.MsgBlock, height int32, flags VerifyFlags) error {
	transactions := block.Transactions

	if len(transactions) == 0 {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}

	serializedSize := wire.BlockHeaderLen + wire.VarIntSerializeSize(uint64(len(transactions)))
	for _, tx := range transactions {
		serializedSize += tx.SerializeSize()
	}
	if serializedSize > MaxBlockSize {
		str := fmt.Sprintf("serialized block is too big - got %d, max %d",
			serializedSize, MaxBlockSize)
		return ruleError(ErrBlockTooBig, str)
	}

	log.Tracef("Verifying %d transactions at height %d", len(transactions), height)

	if !transactions[0].IsCoinBase() {
		return ruleError(ErrFirstTxNotCoinbase, "first transaction in block is not a coinbase")
	}
	for i, tx := range transactions[1:] {
		if tx.IsCoinBase() {
			str := fmt.Sprintf("block contains second coinbase at index %d", i+1)
			return ruleError(ErrMultipleCoinbases, str)
		}
	}

	if flags&HeightInCoinbase != 0 && height >= 0 {
		if err := checkCoinbaseHeight(transactions[0], height); err != nil {
			return err
		}
	}

	if err := ValidateNoDuplicateConsecutiveTx(transactions); err != nil {
		return err
	}

	calculatedRoot := CalcMerkleRoot(transactions, false)
	if calculatedRoot != block.Header.MerkleRoot {
		str := fmt.Sprintf("block merkle root is invalid - block header "+
			"indicates %v, but calculated value is %v",
			block.Header.MerkleRoot, calculatedRoot)
		return ruleError(ErrBadMerkleRoot, str)
	}

	var totalSigOps uint32
	for _, tx := range transactions {
		totalSigOps += countTxSigOps(tx)
		if totalSigOps > MaxBlockSigOps {
			str := fmt.Sprintf("block contains too many signature "+
				"operations - got %d, max %d", totalSigOps, MaxBlockSigOps)
			return ruleError(ErrTooManySigOps, str)
		}
	}

	for _, tx := range transactions {
		if err := Verify(tx); err != nil {
			return err
		}
	}

	return ValidateWitnessCommitment(transactions)
}

// Verify checks a single transaction's structural invariants, independent
// of block context: spec.md §4.4's per-transaction checklist. It never
// executes any script.
func Verify(tx *wire.MsgTx) error {
	if len(tx.TxIn) == 0 {
		return ruleError(ErrNoTxInputs, "transaction has no inputs")
	}
	if len(tx.TxOut) == 0 {
		return ruleError(ErrNoTxOutputs, "transaction has no outputs")
	}

	serializedSize := tx.SerializeSize()
	if serializedSize > MaxBlockSize {
		str := fmt.Sprintf("serialized transaction is too big - got %d, max %d",
			serializedSize, MaxBlockSize)
		return ruleError(ErrTxTooBig, str)
	}

	var totalSatoshi int64
	for _, txOut := range tx.TxOut {
		if txOut.Value < 0 {
			str := fmt.Sprintf("transaction output has negative value of %d", txOut.Value)
			return ruleError(ErrInvalidTxOutValue, str)
		}
		if txOut.Value > MaxSatoshi {
			str := fmt.Sprintf("transaction output value of %d is higher "+
				"than max allowed value of %d", txOut.Value, MaxSatoshi)
			return ruleError(ErrInvalidTxOutValue, str)
		}

		totalSatoshi += txOut.Value
		if totalSatoshi > MaxSatoshi {
			str := fmt.Sprintf("total value of all transaction outputs "+
				"exceeds max allowed value of %d", MaxSatoshi)
			return ruleError(ErrTotalTxOutTooBig, str)
		}
		if totalSatoshi < 0 {
			str := "total value of all transaction outputs overflowed"
			return ruleError(ErrTotalTxOutTooBig, str)
		}
	}

	existingOutPoints := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	isCoinBase := tx.IsCoinBase()
	for _, txIn := range tx.TxIn {
		if _, exists := existingOutPoints[txIn.PreviousOutPoint]; exists {
			return ruleError(ErrDuplicateTxInputs, "transaction contains duplicate inputs")
		}
		existingOutPoints[txIn.PreviousOutPoint] = struct{}{}

		if !isCoinBase && txIn.PreviousOutPoint.IsCoinBaseSentinel() {
			return ruleError(ErrBadTxInput, "transaction input refers to "+
				"the reserved coinbase outpoint without being a coinbase")
		}
	}

	if isCoinBase {
		return checkCoinbaseScriptLen(tx)
	}

	return nil
}

func checkCoinbaseScriptLen(tx *wire.MsgTx) error {
	slen := len(tx.TxIn[0].SignatureScript)
	if slen < MinCoinbaseScriptLen || slen > MaxCoinbaseScriptLen {
		str := fmt.Sprintf("coinbase transaction script length of %d is out "+
			"of range (min: %d, max: %d)", slen, MinCoinbaseScriptLen, MaxCoinbaseScriptLen)
		return ruleError(ErrBadCoinbaseScriptLen, str)
	}
	return nil
}

// checkCoinbaseHeight enforces BIP34: the coinbase's signature script must
// begin with a minimal push of the block's height.
func checkCoinbaseHeight(coinbase *wire.MsgTx, height int32) error {
	sigScript := coinbase.TxIn[0].SignatureScript
	expected := serializeMinimalNum(int64(height))

	if len(sigScript) < len(expected) {
		str := fmt.Sprintf("coinbase signature script is too short to "+
			"contain the expected height %d", height)
		return ruleError(ErrBadCoinbaseHeight, str)
	}
	for i, b := range expected {
		if sigScript[i] != b {
			str := fmt.Sprintf("coinbase signature script does not begin "+
				"with a minimal push of height %d", height)
			return ruleError(ErrBadCoinbaseHeight, str)
		}
	}
	return nil
}

// serializeMinimalNum returns the minimal script push encoding of n: a
// single-byte opcode for -1 and 1..16, OP_0 for zero, and a length-prefixed
// little-endian, sign-and-magnitude push for everything else.
func serializeMinimalNum(n int64) []byte {
	if n == 0 {
		return []byte{txscript.OP_0}
	}
	if n == -1 {
		return []byte{txscript.OP_1NEGATE}
	}
	if n >= 1 && n <= 16 {
		return []byte{byte(txscript.OP_1 + n - 1)}
	}

	neg := n < 0
	abs := n
	if neg {
		abs = -n
	}

	var b []byte
	for abs > 0 {
		b = append(b, byte(abs&0xff))
		abs >>= 8
	}
	if b[len(b)-1]&0x80 != 0 {
		if neg {
			b = append(b, 0x80)
		} else {
			b = append(b, 0x00)
		}
	} else if neg {
		b[len(b)-1] |= 0x80
	}

	return append([]byte{byte(len(b))}, b...)
}

// countTxSigOps returns the sigop contribution of a transaction: the sum of
// its output scripts' sigop counts plus, for spends of a prior P2SH output,
// the accurate count of the embedded redeem script's sigops. Since the core
// never has access to the UTXO set being spent, the accurate-P2SH counting
// mode is applied to every input's own signature script on a best-effort
// basis, matching the scripting collaborator's contract in spec.md §4.3.
func countTxSigOps(tx *wire.MsgTx) uint32 {
	var n uint32
	for _, txOut := range tx.TxOut {
		n += txscript.Script(txOut.PkScript).SigOpCount(false)
	}
	if !tx.IsCoinBase() {
		for _, txIn := range tx.TxIn {
			n += txscript.Script(txIn.SignatureScript).SigOpCount(true)
		}
	}
	return n
}
