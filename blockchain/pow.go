// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/wire"
)

var (
	// bigOne is 1 represented as a big.Int. Defined here to avoid the
	// overhead of repeated allocation.
	bigOne = big.NewInt(1)

	// oneLsh256 is 1 shifted left 256 bits, used to compute a target's
	// equivalent difficulty.
	oneLsh256 = new(big.Int).Lsh(bigOne, 256)
)

// CompactToBig converts a compact representation of a whole number N to a
// big.Int, which is negative when the sign bit is set. The representation is similar to IEEE754 floating
// point numbers: the high 8 bits hold the base-256 exponent and the low 23
// bits (with the 24th reserved as a sign bit, the "negative" flag spec.md
// §4.7 calls out) hold the mantissa.
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number, the inverse of CompactToBig.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// CalcWork calculates a work value from the difficulty bits field of a
// block header. Work is defined as the number of tries needed to solve a
// block in the average case, i.e. 2**256 / (target+1).
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}

	denominator := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(oneLsh256, denominator)
}

// CheckProofOfWork ensures the block header's claimed proof of work matches
// the actual proof of work by decoding the header's compact difficulty bits
// and comparing the block hash, interpreted as a 256-bit big-endian number,
// against the resulting target.
func CheckProofOfWork(header *wire.BlockHeader, flags VerifyFlags) error {
	if flags&BypassProofOfWork != 0 {
		return nil
	}

	target := CompactToBig(header.Bits)

	if target.Sign() <= 0 {
		str := fmt.Sprintf("block target difficulty of %064x is too low", target)
		return ruleError(ErrUnexpectedDifficulty, str)
	}
	if target.Cmp(oneLsh256) >= 0 {
		str := fmt.Sprintf("block target difficulty of %064x is higher than max of %064x",
			target, new(big.Int).Sub(oneLsh256, bigOne))
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	hash := header.BlockHash()
	hashNum := hashToBig(&hash)
	if hashNum.Cmp(target) > 0 {
		str := fmt.Sprintf("block hash of %064x is higher than expected max of %064x",
			hashNum, target)
		return ruleError(ErrHighHash, str)
	}

	return nil
}

// hashToBig converts a chainhash.Hash, which is stored in natural (wire)
// byte order, into a big.Int interpreted big-endian - the wire order is the
// reverse of big-endian, so the bytes are flipped first.
func hashToBig(hash *chainhash.Hash) *big.Int {
	buf := hash.CloneBytes()
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf)
}

// CheckTimestamp rejects a header whose timestamp is further in the future
// than MaxTimeOffsetSeconds allows. Lower-bound checks (median-time-past
// over the previous eleven blocks) require chain context and are the
// responsibility of the ChainContext collaborator, not this function.
func CheckTimestamp(header *wire.BlockHeader, now time.Time) error {
	maxTimestamp := now.Add(MaxTimeOffsetSeconds * time.Second)
	if header.Timestamp.After(maxTimestamp) {
		str := fmt.Sprintf("block timestamp of %v is too far in the future; "+
			"latest acceptable is %v", header.Timestamp, maxTimestamp)
		return ruleError(ErrTimeTooNew, str)
	}
	return nil
}

// Solve increments header.Nonce until the proof-of-work predicate for
// header.Bits is satisfied. It is a pure CPU loop with no cancellation, for
// use only by test fixtures constructing deterministic block vectors -
// production code paths never call it (spec.md §5, §4.7).
func Solve(header *wire.BlockHeader) {
	for {
		if err := CheckProofOfWork(header, 0); err == nil {
			return
		}
		header.Nonce++
	}
}
