// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package verdictdb is a small goleveldb-backed cache mapping a block hash
// to the last verdict the verifier reached for it. It exists purely as a
// convenience for a long-running caller (the CLI) that may re-see the same
// candidate block; it is never consulted to skip verification, only to
// avoid redoing it (spec.md §4.12).
package verdictdb

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/coreforge/btccore/blockchain"
	"github.com/coreforge/btccore/chaincfg/chainhash"
)

// Verdict is the cached outcome of verifying a single block.
type Verdict struct {
	Valid     bool
	ErrorCode blockchain.ErrorCode
	Timestamp time.Time
}

// DB wraps a goleveldb handle dedicated to verdict storage.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if necessary) a verdict database at path.
func Open(path string) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying leveldb handle.
func (db *DB) Close() error {
	return db.ldb.Close()
}

// Put records the verdict reached for blockHash.
func (db *DB) Put(blockHash chainhash.Hash, v Verdict) error {
	return db.ldb.Put(blockHash[:], encodeVerdict(v), nil)
}

// Get returns the cached verdict for blockHash, if any. ok is false on a
// cache miss; callers must fall through to full verification in that case.
func (db *DB) Get(blockHash chainhash.Hash) (v Verdict, ok bool, err error) {
	raw, err := db.ldb.Get(blockHash[:], nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Verdict{}, false, nil
	}
	if err != nil {
		return Verdict{}, false, err
	}
	v, err = decodeVerdict(raw)
	if err != nil {
		return Verdict{}, false, err
	}
	return v, true, nil
}

// encodeVerdict packs a Verdict into a fixed-layout record: 1 valid byte,
// 4-byte LE error code, 8-byte LE unix timestamp.
func encodeVerdict(v Verdict) []byte {
	buf := make([]byte, 13)
	if v.Valid {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:5], uint32(v.ErrorCode))
	binary.LittleEndian.PutUint64(buf[5:13], uint64(v.Timestamp.Unix()))
	return buf
}

func decodeVerdict(raw []byte) (Verdict, error) {
	if len(raw) != 13 {
		return Verdict{}, errors.New("verdictdb: malformed record")
	}
	return Verdict{
		Valid:     raw[0] == 1,
		ErrorCode: blockchain.ErrorCode(binary.LittleEndian.Uint32(raw[1:5])),
		Timestamp: time.Unix(int64(binary.LittleEndian.Uint64(raw[5:13])), 0).UTC(),
	}, nil
}
