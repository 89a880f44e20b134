// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreforge/btccore/chaincfg/chainhash"
	"github.com/coreforge/btccore/wire"
)

// TestCompactToBigRoundTrip checks CompactToBig against known genesis-block
// style difficulty bits values and their round trip through BigToCompact.
func TestCompactToBigRoundTrip(t *testing.T) {
	cases := []uint32{0x1d00ffff, 0x207fffff, 0x1b0404cb}
	for _, compact := range cases {
		n := CompactToBig(compact)
		assert.Equal(t, compact, BigToCompact(n))
	}
}

func TestCompactToBigNegative(t *testing.T) {
	n := CompactToBig(0x03800001)
	assert.Equal(t, -1, n.Sign())
}

func TestCalcWork(t *testing.T) {
	work := CalcWork(0x207fffff)
	assert.Equal(t, 1, work.Sign())
}

func TestCheckProofOfWorkBypass(t *testing.T) {
	header := &wire.BlockHeader{Bits: 0x01000001}
	err := CheckProofOfWork(header, BypassProofOfWork)
	assert.NoError(t, err)
}

func TestCheckProofOfWorkRejectsOutOfRangeTarget(t *testing.T) {
	header := &wire.BlockHeader{Bits: 0x00800001}
	err := CheckProofOfWork(header, 0)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrUnexpectedDifficulty, ruleErr.ErrorCode)
}

// TestSolveProducesValidProofOfWork mines a header with the easiest possible
// target and confirms CheckProofOfWork then accepts it.
func TestSolveProducesValidProofOfWork(t *testing.T) {
	header := wire.NewBlockHeader(1, &chainhash.Hash{}, &chainhash.Hash{}, EasiestDifficultyTarget, 0)
	Solve(header)
	assert.NoError(t, CheckProofOfWork(header, 0))
}

func TestHashToBigReversesByteOrder(t *testing.T) {
	var h chainhash.Hash
	h[chainhash.HashSize-1] = 0x01
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 248), hashToBig(&h))
}

func TestCheckTimestampTooNew(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := &wire.BlockHeader{Timestamp: now.Add(3 * time.Hour)}
	err := CheckTimestamp(header, now)
	require.Error(t, err)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, ErrTimeTooNew, ruleErr.ErrorCode)
}

func TestCheckTimestampWithinWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := &wire.BlockHeader{Timestamp: now.Add(time.Hour)}
	assert.NoError(t, CheckTimestamp(header, now))
}
