// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the Bitcoin wire format: little-endian integer and
// varint encoding, and the block/transaction message types that are
// serialized bit-exactly the way the peer-to-peer network expects. Message
// framing, magic bytes, and the rest of the peer protocol are out of scope;
// this package only concerns itself with the bytes of a block or
// transaction, never with how they arrived.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/coreforge/btccore/chaincfg/chainhash"
)

// MaxMessagePayload is the maximum bytes a message can be regardless of other
// individual limits imposed by messages themselves.
const MaxMessagePayload = (1024 * 1024 * 32) // 32MB

// MaxVarIntPayload is the maximum payload size for a variable length integer.
const MaxVarIntPayload = 9

// little-endian is the only byte order used on the wire.
var littleEndian = binary.LittleEndian

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = int32(littleEndian.Uint32(b[:]))
		return nil

	case *uint32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint32(b[:])
		return nil

	case *int64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = int64(littleEndian.Uint64(b[:]))
		return nil

	case *uint64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint64(b[:])
		return nil

	case *bool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = b[0] != 0
		return nil

	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	}

	return binary.Read(r, littleEndian, element)
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		var b [4]byte
		littleEndian.PutUint32(b[:], uint32(e))
		_, err := w.Write(b[:])
		return err

	case uint32:
		var b [4]byte
		littleEndian.PutUint32(b[:], e)
		_, err := w.Write(b[:])
		return err

	case int64:
		var b [8]byte
		littleEndian.PutUint64(b[:], uint64(e))
		_, err := w.Write(b[:])
		return err

	case uint64:
		var b [8]byte
		littleEndian.PutUint64(b[:], e)
		_, err := w.Write(b[:])
		return err

	case bool:
		var b [1]byte
		if e {
			b[0] = 1
		}
		_, err := w.Write(b[:])
		return err

	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	}

	return binary.Write(w, littleEndian, element)
}

// ReadVarInt reads a variably sized unsigned integer from r and returns it as
// a uint64. It decodes the one-byte discriminant described in spec.md §4.1:
// values below 0xfd are encoded directly in that byte; 0xfd/0xfe/0xff signal
// that 2/4/8 further little-endian bytes follow. Non-canonical (non-shortest)
// encodings are accepted on read per spec.md §4.1 - only WriteVarInt's output
// is guaranteed canonical.
func ReadVarInt(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[0:1]); err != nil {
		return 0, err
	}

	var rv uint64
	switch b[0] {
	case 0xff:
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		rv = littleEndian.Uint64(b[:])

	case 0xfe:
		if _, err := io.ReadFull(r, b[:4]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint32(b[:4]))

	case 0xfd:
		if _, err := io.ReadFull(r, b[:2]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint16(b[:2]))

	default:
		rv = uint64(b[0])
	}

	return rv, nil
}

const (
	maxVarIntU16 = 0xffff
	maxVarIntU32 = 0xffffffff
)

// WriteVarInt serializes val to w using the canonical (shortest) variable
// length integer encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		_, err := w.Write([]byte{byte(val)})
		return err
	}

	if val <= maxVarIntU16 {
		var buf [3]byte
		buf[0] = 0xfd
		littleEndian.PutUint16(buf[1:], uint16(val))
		_, err := w.Write(buf[:])
		return err
	}

	if val <= maxVarIntU32 {
		var buf [5]byte
		buf[0] = 0xfe
		littleEndian.PutUint32(buf[1:], uint32(val))
		_, err := w.Write(buf[:])
		return err
	}

	var buf [9]byte
	buf[0] = 0xff
	littleEndian.PutUint64(buf[1:], val)
	_, err := w.Write(buf[:])
	return err
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= maxVarIntU16 {
		return 3
	}
	if val <= maxVarIntU32 {
		return 5
	}
	return 9
}

// ReadVarBytes reads a variable length byte array. A byte array is encoded
// as a varInt containing the length of the array followed by the bytes
// themselves. An error is returned if the length is greater than the
// passed maxAllowed parameter, which protects against memory exhaustion
// attacks via a maliciously crafted message declaring an absurd length.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > maxAllowed {
		return nil, messageErrorf("ReadVarBytes", ErrOversizedCount,
			"%s is larger than the max allowed size [count %d, max %d]",
			fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as
// varint(len(bytes)) || bytes.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	if err := WriteVarInt(w, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}

// doubleSHA256 is the universal commit function used throughout the wire
// format: SHA256(SHA256(x)).
func doubleSHA256(b []byte) chainhash.Hash {
	return chainhash.DoubleHashH(b)
}
