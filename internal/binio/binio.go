// Package binio provides small little-endian/big-endian encode and decode
// helpers for on-disk layouts. The DMK header codec uses GetU16LE and
// PutU16LE; the other codec packages index byte slices directly or use
// encoding/binary.
//
// It is adapted from the teacher's internal/proto wire-codec helper: same
// bounds-checked Decoder/Encoder shape, generalized with big-endian reads.
package binio

import (
	"encoding/binary"
	"fmt"
)

// Decoder reads primitives from a byte slice, tracking a read cursor and
// refusing to read past the end of the buffer.
type Decoder struct {
	b []byte
	o int
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{b: b}
}

func (d *Decoder) Remaining() int { return len(d.b) - d.o }

func (d *Decoder) Offset() int { return d.o }

func (d *Decoder) Seek(off int) error {
	if off < 0 || off > len(d.b) {
		return fmt.Errorf("binio: seek %d out of range [0,%d]", off, len(d.b))
	}
	d.o = off
	return nil
}

func (d *Decoder) ReadU8() (byte, error) {
	if d.Remaining() < 1 {
		return 0, fmt.Errorf("binio: need 1 byte, have %d", d.Remaining())
	}
	v := d.b[d.o]
	d.o++
	return v, nil
}

func (d *Decoder) ReadU16LE() (uint16, error) {
	if d.Remaining() < 2 {
		return 0, fmt.Errorf("binio: need 2 bytes, have %d", d.Remaining())
	}
	v := binary.LittleEndian.Uint16(d.b[d.o : d.o+2])
	d.o += 2
	return v, nil
}

func (d *Decoder) ReadU32LE() (uint32, error) {
	if d.Remaining() < 4 {
		return 0, fmt.Errorf("binio: need 4 bytes, have %d", d.Remaining())
	}
	v := binary.LittleEndian.Uint32(d.b[d.o : d.o+4])
	d.o += 4
	return v, nil
}

func (d *Decoder) ReadU32BE() (uint32, error) {
	if d.Remaining() < 4 {
		return 0, fmt.Errorf("binio: need 4 bytes, have %d", d.Remaining())
	}
	v := binary.BigEndian.Uint32(d.b[d.o : d.o+4])
	d.o += 4
	return v, nil
}

func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("binio: negative length %d", n)
	}
	if d.Remaining() < n {
		return nil, fmt.Errorf("binio: need %d bytes, have %d", n, d.Remaining())
	}
	v := d.b[d.o : d.o+n]
	d.o += n
	return v, nil
}

// Encoder builds little-endian byte buffers incrementally.
type Encoder struct {
	b []byte
}

func NewEncoder(capacity int) *Encoder {
	if capacity < 0 {
		capacity = 0
	}
	return &Encoder{b: make([]byte, 0, capacity)}
}

func (e *Encoder) Bytes() []byte { return e.b }

func (e *Encoder) WriteU8(v byte) { e.b = append(e.b, v) }

func (e *Encoder) WriteU16LE(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

func (e *Encoder) WriteU32LE(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

func (e *Encoder) WriteBytes(b []byte) { e.b = append(e.b, b...) }

// PutU16LE writes v at a fixed offset inside an existing buffer, the way
// DMK IDAM table pointers and D64 block counts are patched in place after
// their surrounding structure has already been laid out.
func PutU16LE(buf []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(buf[offset:offset+2], v)
}

func GetU16LE(buf []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(buf[offset : offset+2])
}
