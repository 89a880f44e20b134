// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/coreforge/btccore/chaincfg/chainhash"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 1

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be. A value of MaxTxInSequenceNum disables
	// relative lock-time semantics for that input.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be; it is also the sentinel index used by coinbase
	// outpoints.
	MaxPrevOutIndex uint32 = 0xffffffff

	// defaultTxInOutAlloc is the default backing array size for the
	// transaction input/output slices.
	defaultTxInOutAlloc = 8

	// minTxInPayload is the minimum payload size for a transaction input:
	// 32-byte outpoint hash + 4-byte index + 1-byte varint for a zero
	// length script + 4-byte sequence.
	minTxInPayload = 9 + chainhash.HashSize

	// maxTxInPerMessage bounds the number of inputs ReadVarInt can declare
	// for a transaction, derived from how many minimum-size inputs could
	// possibly fit in a max-size message.
	maxTxInPerMessage = (MaxMessagePayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction
	// output: 8-byte value + 1-byte varint for a zero length script.
	minTxOutPayload = 9

	// maxTxOutPerMessage bounds the number of outputs ReadVarInt can
	// declare for a transaction.
	maxTxOutPerMessage = (MaxMessagePayload / minTxOutPayload) + 1

	// maxWitnessItemsPerInput bounds the number of witness stack items
	// a single input can declare, derived from the smallest possible
	// encoding of a witness item (a single zero-length push, 1 byte).
	maxWitnessItemsPerInput = MaxMessagePayload

	// maxWitnessItemSize bounds the size of a single witness stack item.
	maxWitnessItemSize = MaxMessagePayload

	// WitnessMarkerByte is the first byte of the two-byte witness marker
	// inserted after the version field of a BIP144-encoded transaction.
	WitnessMarkerByte = 0x00

	// WitnessFlagByte is the second byte of the witness marker; its low
	// bit set indicates the transaction carries witness data.
	WitnessFlagByte = 0x01
)

// CoinbaseOutpointHash is the all-zero hash half of the sentinel outpoint
// that identifies a coinbase input.
var CoinbaseOutpointHash chainhash.Hash

// MessageEncoding specifies whether BIP144 witness fields should be
// serialized/parsed. A parser or serializer that does not request
// WitnessEncoding never emits or interprets a marker/flag byte, which is
// the compatibility flag spec.md §9 calls for on header-only message paths.
type MessageEncoding uint32

const (
	// BaseEncoding denotes the classic, witness-free transaction format.
	BaseEncoding MessageEncoding = 1 << iota

	// WitnessEncoding denotes the BIP144 encoding, which is used
	// automatically whenever the transaction being serialized actually
	// carries a witness.
	WitnessEncoding
)

// OutPoint defines a data type that is used to track previous transaction
// outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint with the provided hash and
// index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// IsCoinBaseSentinel reports whether the outpoint is the sentinel
// (0x00...00, 0xffffffff) that identifies a coinbase input.
func (o OutPoint) IsCoinBaseSentinel() bool {
	return o.Index == MaxPrevOutIndex && o.Hash == CoinbaseOutpointHash
}

// TxWitness defines the witness for a TxIn: a finite ordered sequence of
// byte-array stack items. An empty-but-non-nil TxWitness is distinct from a
// nil TxWitness only in that HasWitness() below treats both as "no witness"
// for the purposes of marker-byte emission, matching BIP144 (a witness
// stack with zero items contributes nothing to serialization either way).
type TxWitness [][]byte

// SerializeSize returns the number of bytes it would take to serialize the
// witness stack: a varint count followed by each push's varint-length
// prefix and data.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += VarIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}

func (t TxWitness) serialize(w io.Writer) error {
	if err := WriteVarInt(w, uint64(len(t))); err != nil {
		return err
	}
	for _, item := range t {
		if err := WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
	Witness          TxWitness
}

// NewTxIn returns a new transaction input with the provided previous
// outpoint and signature script, defaulting Sequence to MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
		Witness:          witness,
	}
}

// SerializeSize returns the number of bytes the input takes in the classic
// (no-witness) encoding: the witness stack, if any, is never part of this
// count.
func (t *TxIn) SerializeSize() int {
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript)
}

// IsCoinBase reports whether this input's outpoint is the coinbase sentinel.
func (t *TxIn) IsCoinBase() bool {
	return t.PreviousOutPoint.IsCoinBaseSentinel()
}

// TxOut defines a transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new transaction output with the provided value and
// public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// SerializeSize returns the number of bytes it would take to serialize the
// output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// MsgTx implements the transaction wire message: the fixed-shape part of a
// transaction (version, inputs, outputs, lock time) parsed and serialized
// exactly as spec.md §4.4 describes. MsgTx itself does not cache its
// identity hashes - see the chainutil package for the caching transaction
// model spec.md §9 calls for.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction message with no inputs or outputs and
// a zero lock time.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// ClearInputs removes every input from the message.
func (msg *MsgTx) ClearInputs() {
	msg.TxIn = msg.TxIn[:0]
}

// ClearOutputs removes every output from the message.
func (msg *MsgTx) ClearOutputs() {
	msg.TxOut = msg.TxOut[:0]
}

// HasWitness reports whether any input carries a non-empty witness stack.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) > 0 {
			return true
		}
	}
	return false
}

// IsCoinBase determines whether the transaction is a coinbase transaction: a
// single input whose previous outpoint is the coinbase sentinel.
func (msg *MsgTx) IsCoinBase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].IsCoinBase()
}

// Copy creates a deep copy of the transaction so mutations to the copy never
// touch the original. The legacy signature-hash code in txscript does not
// use it; it works on its own shallow copy.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		var newScript []byte
		if len(oldTxIn.SignatureScript) > 0 {
			newScript = make([]byte, len(oldTxIn.SignatureScript))
			copy(newScript, oldTxIn.SignatureScript)
		}
		var newWitness TxWitness
		if len(oldTxIn.Witness) > 0 {
			newWitness = make(TxWitness, len(oldTxIn.Witness))
			for i, item := range oldTxIn.Witness {
				newWitness[i] = append([]byte(nil), item...)
			}
		}
		newTx.TxIn = append(newTx.TxIn, &TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  newScript,
			Sequence:         oldTxIn.Sequence,
			Witness:          newWitness,
		})
	}

	for _, oldTxOut := range msg.TxOut {
		var newScript []byte
		if len(oldTxOut.PkScript) > 0 {
			newScript = make([]byte, len(oldTxOut.PkScript))
			copy(newScript, oldTxOut.PkScript)
		}
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    oldTxOut.Value,
			PkScript: newScript,
		})
	}

	return &newTx
}

// SerializeSize returns the number of bytes the classic (no-witness)
// encoding of the transaction takes.
func (msg *MsgTx) SerializeSize() int {
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	return n
}

// SerializeSizeWitness returns the number of bytes the BIP144 encoding of
// the transaction takes, including the marker/flag bytes and every input's
// witness stack.
func (msg *MsgTx) SerializeSizeWitness() int {
	n := msg.SerializeSize()
	if !msg.HasWitness() {
		return n
	}
	n += 2 // marker, flag
	for _, txIn := range msg.TxIn {
		n += txIn.Witness.SerializeSize()
	}
	return n
}

// Weight returns the transaction's weight units as defined in spec.md §4.4:
// 3*size_classic + size_bip144 when witnesses are present, else 4*size.
func (msg *MsgTx) Weight() int64 {
	if !msg.HasWitness() {
		return int64(msg.SerializeSize()) * 4
	}
	return int64(msg.SerializeSize())*3 + int64(msg.SerializeSizeWitness())
}

// VSize returns the ceiling of Weight()/4.
func (msg *MsgTx) VSize() int64 {
	w := msg.Weight()
	return (w + 3) / 4
}

// TxHash computes the double-SHA-256 of the classic (no-witness)
// serialization, in natural byte order. This is the txid, computed
// regardless of whether the transaction carries witnesses.
func (msg *MsgTx) TxHash() chainhash.Hash {
	return doubleSHA256(msg.serializeNoWitnessBytes())
}

// WitnessHash computes the double-SHA-256 of the BIP144 serialization, in
// natural byte order. Callers that need the spec.md §4.4 coinbase-wtxid-is-
// zero override should use chainutil.Tx.WitnessHash instead; this method always
// reflects the transaction's actual bytes.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if !msg.HasWitness() {
		return msg.TxHash()
	}
	return doubleSHA256(msg.serializeWitnessBytes())
}

func (msg *MsgTx) serializeNoWitnessBytes() []byte {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.serialize(&buf, BaseEncoding)
	return buf.Bytes()
}

func (msg *MsgTx) serializeWitnessBytes() []byte {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSizeWitness())
	_ = msg.serialize(&buf, WitnessEncoding)
	return buf.Bytes()
}

// Serialize encodes the transaction to w, automatically using the BIP144
// encoding when the transaction carries a witness and the classic encoding
// otherwise - this is the canonical re-serialization spec.md §8's round-trip
// property requires.
func (msg *MsgTx) Serialize(w io.Writer) error {
	enc := BaseEncoding
	if msg.HasWitness() {
		enc = WitnessEncoding
	}
	return msg.serialize(w, enc)
}

// SerializeNoWitness encodes the transaction to w using the classic
// (no-witness) encoding regardless of whether it carries a witness. This is
// the serialization txid and the legacy signature hash are computed over.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	return msg.serialize(w, BaseEncoding)
}

func (msg *MsgTx) serialize(w io.Writer, enc MessageEncoding) error {
	if err := writeElement(w, msg.Version); err != nil {
		return err
	}

	doWitness := enc == WitnessEncoding && msg.HasWitness()
	if doWitness {
		if _, err := w.Write([]byte{WitnessMarkerByte, WitnessFlagByte}); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}

	if doWitness {
		for _, ti := range msg.TxIn {
			if err := ti.Witness.serialize(w); err != nil {
				return err
			}
		}
	}

	return writeElement(w, msg.LockTime)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := writeElement(w, ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := writeElement(w, ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	return writeElement(w, ti.Sequence)
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeElement(w, to.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}

// Deserialize parses a transaction from r, following spec.md §4.4's
// single-pass algorithm: read version, peek the next varint to detect the
// BIP144 marker, then branch into either the witness or classic path.
// allowWitness gates whether the marker/flag is recognized at all - a
// caller parsing a context where BIP144 is known not to apply (e.g. a pre-
// segwit protocol version) should pass false so that a leading zero varint
// is read as a zero input count, which is then rejected.
func (msg *MsgTx) Deserialize(r io.Reader, allowWitness bool) error {
	var version int32
	if err := readElement(r, &version); err != nil {
		return err
	}
	msg.Version = version

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	var flag [1]byte
	if count == 0 && allowWitness {
		if _, err := io.ReadFull(r, flag[:]); err != nil {
			return err
		}
		if flag[0]&WitnessFlagByte == 0 {
			return &MessageError{Func: "MsgTx.Deserialize", Code: ErrBadMarker,
				Description: "witness marker byte present with invalid flag"}
		}
		if flag[0]&^WitnessFlagByte != 0 {
			return &MessageError{Func: "MsgTx.Deserialize", Code: ErrBadMarker,
				Description: "unknown witness flag bits set"}
		}

		count, err = ReadVarInt(r)
		if err != nil {
			return err
		}
	} else if count == 0 {
		// A zero-input transaction with no witness marker is the
		// ambiguous case spec.md §9 calls out: protocol versions
		// disagree on whether to accept it. This parser follows the
		// prevailing consensus behavior and rejects it.
		return messageError("MsgTx.Deserialize", "transaction has no inputs and no witness marker")
	}

	if count > maxTxInPerMessage {
		return messageErrorf("MsgTx.Deserialize", ErrOversizedCount,
			"too many input transactions to fit into max message size [count %d, max %d]",
			count, maxTxInPerMessage)
	}

	txIns := make([]TxIn, count)
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		msg.TxIn[i] = ti
		if err := readTxIn(r, ti); err != nil {
			return err
		}
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxTxOutPerMessage {
		return messageErrorf("MsgTx.Deserialize", ErrOversizedCount,
			"too many output transactions to fit into max message size [count %d, max %d]",
			count, maxTxOutPerMessage)
	}

	txOuts := make([]TxOut, count)
	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		to := &txOuts[i]
		msg.TxOut[i] = to
		if err := readTxOut(r, to); err != nil {
			return err
		}
	}

	sawWitness := false
	if allowWitness && flag[0]&WitnessFlagByte != 0 {
		for _, ti := range msg.TxIn {
			witness, err := readTxWitness(r)
			if err != nil {
				return err
			}
			ti.Witness = witness
			if len(witness) > 0 {
				sawWitness = true
			}
		}
		if !sawWitness {
			return &MessageError{Func: "MsgTx.Deserialize", Code: ErrSuperfluousWitness,
				Description: "witness flag set but no input carried a witness"}
		}
	}

	return readElement(r, &msg.LockTime)
}

func readTxIn(r io.Reader, ti *TxIn) error {
	if err := readElement(r, &ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := readElement(r, &ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	script, err := ReadVarBytes(r, MaxMessagePayload, "transaction input signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script
	return readElement(r, &ti.Sequence)
}

func readTxOut(r io.Reader, to *TxOut) error {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}
	if to.Value < 0 {
		return &MessageError{Func: "readTxOut", Code: ErrNegativeValue,
			Description: fmt.Sprintf("transaction output value of %d is negative", to.Value)}
	}
	script, err := ReadVarBytes(r, MaxMessagePayload, "transaction output public key script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}

func readTxWitness(r io.Reader) (TxWitness, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxWitnessItemsPerInput {
		return nil, messageErrorf("readTxWitness", ErrOversizedCount,
			"too many witness items to fit into max message size [count %d, max %d]",
			count, maxWitnessItemsPerInput)
	}

	witness := make(TxWitness, count)
	for i := uint64(0); i < count; i++ {
		item, err := ReadVarBytes(r, maxWitnessItemSize, "witness item")
		if err != nil {
			return nil, err
		}
		witness[i] = item
	}
	return witness, nil
}
