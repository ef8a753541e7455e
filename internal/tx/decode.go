package tx

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrTruncated reports transaction bytes that end before a field completes.
// The pool controls these bytes, so every read is bounds-checked.
var ErrTruncated = errors.New("truncated transaction")

// Transaction is a deserialized transaction. Re-serializing must reproduce
// the exact input bytes.
type Transaction struct {
	Version  int32
	Inputs   []Input
	Outputs  []Output
	LockTime uint32
}

// Input is one transaction input. PrevTxID is kept in wire order.
type Input struct {
	PrevTxID     []byte // 32 bytes
	PrevIndex    uint32
	UnlockScript []byte
	Sequence     uint32
}

// Output is one transaction output.
type Output struct {
	Value  uint64 // satoshis
	Script []byte
}

// reader is a forward-only cursor over the raw bytes.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.pos, r.remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) varint() (uint64, error) {
	v, n, err := readVarInt(r.buf[r.pos:])
	if err != nil {
		return 0, fmt.Errorf("%w: %s at offset %d", ErrTruncated, err, r.pos)
	}
	r.pos += n
	return v, nil
}

// varBytes reads a varint length prefix followed by that many bytes.
func (r *reader) varBytes() ([]byte, error) {
	n, err := r.varint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: declared length %d exceeds %d remaining bytes", ErrTruncated, n, r.remaining())
	}
	return r.take(int(n))
}

// Decode parses a raw transaction: version, inputs, outputs, locktime.
// Script semantics and signatures are not inspected. Trailing bytes after the
// locktime are ignored.
func Decode(raw []byte) (*Transaction, error) {
	r := &reader{buf: raw}
	t := &Transaction{}

	var err error
	if t.Version, err = r.i32(); err != nil {
		return nil, err
	}

	inCount, err := r.varint()
	if err != nil {
		return nil, err
	}
	// Each input occupies at least 41 bytes, so an honest count is bounded by
	// the remaining buffer. Checking up front keeps a hostile count from
	// driving a huge allocation.
	if inCount > uint64(r.remaining())/41 {
		return nil, fmt.Errorf("%w: input count %d exceeds buffer", ErrTruncated, inCount)
	}
	t.Inputs = make([]Input, 0, inCount)
	for i := uint64(0); i < inCount; i++ {
		var in Input
		if in.PrevTxID, err = r.take(32); err != nil {
			return nil, err
		}
		if in.PrevIndex, err = r.u32(); err != nil {
			return nil, err
		}
		if in.UnlockScript, err = r.varBytes(); err != nil {
			return nil, err
		}
		if in.Sequence, err = r.u32(); err != nil {
			return nil, err
		}
		t.Inputs = append(t.Inputs, in)
	}

	outCount, err := r.varint()
	if err != nil {
		return nil, err
	}
	// Minimum output size is 9 bytes (value + empty script).
	if outCount > uint64(r.remaining())/9 {
		return nil, fmt.Errorf("%w: output count %d exceeds buffer", ErrTruncated, outCount)
	}
	t.Outputs = make([]Output, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		var out Output
		if out.Value, err = r.u64(); err != nil {
			return nil, err
		}
		if out.Script, err = r.varBytes(); err != nil {
			return nil, err
		}
		t.Outputs = append(t.Outputs, out)
	}

	if t.LockTime, err = r.u32(); err != nil {
		return nil, err
	}
	return t, nil
}

// DecodeHex parses a hex-encoded transaction.
func DecodeHex(s string) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return Decode(raw)
}

// Serialize re-encodes the transaction. Decode followed by Serialize yields
// the original bytes.
func (t *Transaction) Serialize() []byte {
	size := 4 + 4
	for _, in := range t.Inputs {
		size += 32 + 4 + 9 + len(in.UnlockScript) + 4
	}
	for _, out := range t.Outputs {
		size += 8 + 9 + len(out.Script)
	}
	buf := make([]byte, 0, size+18)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.Version))
	buf = append(buf, writeVarInt(uint64(len(t.Inputs)))...)
	for _, in := range t.Inputs {
		buf = append(buf, in.PrevTxID...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PrevIndex)
		buf = append(buf, writeVarInt(uint64(len(in.UnlockScript)))...)
		buf = append(buf, in.UnlockScript...)
		buf = binary.LittleEndian.AppendUint32(buf, in.Sequence)
	}
	buf = append(buf, writeVarInt(uint64(len(t.Outputs)))...)
	for _, out := range t.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
		buf = append(buf, writeVarInt(uint64(len(out.Script)))...)
		buf = append(buf, out.Script...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, t.LockTime)
	return buf
}

// TotalOutput sums the output values in satoshis.
func (t *Transaction) TotalOutput() uint64 {
	var total uint64
	for _, out := range t.Outputs {
		total += out.Value
	}
	return total
}
