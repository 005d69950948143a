// Package dmk implements the DMK variable-length MFM/FM track container:
// header parsing, the per-track IDAM offset table, sector extraction with
// CRC-CCITT validation, and reconstruction of a track from sector records.
package dmk

import (
	"github.com/pkg/errors"

	"uftcore/internal/binio"
	"uftcore/internal/errs"
)

const (
	HeaderSize   = 16
	IDAMTableLen = 128 // 64 little-endian u16 pointers
	maxIDAMSlots = IDAMTableLen / 2
)

// Header option-flag bits (byte offset 4 of the 16-byte header).
const (
	optSingleSided  = 1 << 4
	optRX02         = 1 << 5
	optSingleDens   = 1 << 6
	optIgnoreDensLg = 1 << 7
)

// Header is the 16-byte DMK image header.
type Header struct {
	WriteProtected bool
	NumTracks      int
	TrackLength    int
	SingleSided    bool
	RX02           bool
	SingleDensity  bool
	IgnoreDensity  bool // legacy "ignore density" quirk bit
	Quirks         byte
	NativeMagic    uint32
}

// Heads returns 1 for single-sided images, 2 otherwise.
func (h Header) Heads() int {
	if h.SingleSided {
		return 1
	}
	return 2
}

// ParseHeader parses the fixed 16-byte DMK header.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, errs.New(errs.InvalidImage, "dmk header truncated: have %d bytes, need %d", len(b), HeaderSize)
	}
	var h Header
	h.WriteProtected = b[0] == 0xFF
	h.NumTracks = int(b[1])
	h.TrackLength = int(binio.GetU16LE(b, 2))
	flags := b[4]
	h.SingleSided = flags&optSingleSided != 0
	h.RX02 = flags&optRX02 != 0
	h.SingleDensity = flags&optSingleDens != 0
	h.IgnoreDensity = flags&optIgnoreDensLg != 0
	h.Quirks = b[5]
	h.NativeMagic = uint32(binio.GetU16LE(b, 12)) | uint32(binio.GetU16LE(b, 14))<<16

	if h.TrackLength < IDAMTableLen {
		return Header{}, errs.New(errs.InvalidImage, "dmk track length %d smaller than IDAM table", h.TrackLength)
	}
	if h.NumTracks <= 0 {
		return Header{}, errs.New(errs.InvalidImage, "dmk track count must be positive, got %d", h.NumTracks)
	}
	return h, nil
}

// Bytes serializes the header back to its 16-byte on-disk form.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	if h.WriteProtected {
		b[0] = 0xFF
	}
	b[1] = byte(h.NumTracks)
	binio.PutU16LE(b, 2, uint16(h.TrackLength))
	var flags byte
	if h.SingleSided {
		flags |= optSingleSided
	}
	if h.RX02 {
		flags |= optRX02
	}
	if h.SingleDensity {
		flags |= optSingleDens
	}
	if h.IgnoreDensity {
		flags |= optIgnoreDensLg
	}
	b[4] = flags
	b[5] = h.Quirks
	binio.PutU16LE(b, 12, uint16(h.NativeMagic&0xFFFF))
	binio.PutU16LE(b, 14, uint16(h.NativeMagic>>16))
	return b
}

// expectedImageSize returns the total byte size of an image with this header.
func (h Header) expectedImageSize() int {
	return HeaderSize + h.NumTracks*h.Heads()*h.TrackLength
}

func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
