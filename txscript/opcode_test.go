// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeLen(t *testing.T) {
	tests := []struct {
		name    string
		script  []byte
		pos     int
		wantN   int
		wantOK  bool
	}{
		{"single byte opcode", []byte{OP_DUP}, 0, 1, true},
		{"direct push", []byte{OP_DATA_1, 0xaa}, 0, 2, true},
		{"pushdata1", []byte{OP_PUSHDATA1, 0x02, 0xaa, 0xbb}, 0, 4, true},
		{"pushdata2", []byte{OP_PUSHDATA2, 0x02, 0x00, 0xaa, 0xbb}, 0, 5, true},
		{"pushdata1 truncated", []byte{OP_PUSHDATA1, 0x05, 0xaa}, 0, 0, false},
		{"direct push truncated", []byte{OP_DATA_20, 0x01}, 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, ok := opcodeLen(tc.script, tc.pos)
			assert.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.wantN, n)
			}
		})
	}
}

// TestOpcodeLenPushdata2Precedence guards against reintroducing the
// operator-precedence bug where 3 + a | b<<8 parsed as (3+a) | (b<<8)
// instead of 3 + (a | b<<8).
func TestOpcodeLenPushdata2Precedence(t *testing.T) {
	// length = 0x0100 = 256, so total instruction length is 3+256=259.
	script := make([]byte, 259)
	script[0] = OP_PUSHDATA2
	script[1] = 0x00
	script[2] = 0x01

	n, ok := opcodeLen(script, 0)
	assert.True(t, ok)
	assert.Equal(t, 259, n)
}

func TestAsSmallInt(t *testing.T) {
	assert.Equal(t, 0, asSmallInt(OP_0))
	assert.Equal(t, 1, asSmallInt(OP_1))
	assert.Equal(t, 16, asSmallInt(OP_16))
	assert.Equal(t, -1, asSmallInt(OP_DUP))
}
