// Package bits implements the bit-level primitives that every MFM/FM
// decoder in this module is built on: reading a byte/word/dword starting
// at an arbitrary, non-byte-aligned bit position, scanning for a sync
// pattern at bit granularity, and validating MFM clock bits.
//
// Sync patterns in a raw flux-derived bitstream are not byte-aligned once
// the PLL has re-locked after a gap, so every higher-level decoder (DMK
// sector extraction, CopyLock, Longtrack) reaches for these instead of
// scattering shift/mask logic through its own loops.
package bits

// ByteAtBit extracts the 8-bit value starting at bitPos (0 = MSB of
// data[0]) by combining the two bytes that straddle it.
func ByteAtBit(data []byte, bitPos int) (byte, error) {
	if bitPos < 0 {
		return 0, errInvalid("negative bit position")
	}
	byteIdx := bitPos / 8
	shift := uint(bitPos % 8)
	if byteIdx >= len(data) {
		return 0, errInvalid("bit position past end of buffer")
	}
	if shift == 0 {
		return data[byteIdx], nil
	}
	hi := data[byteIdx]
	var lo byte
	if byteIdx+1 < len(data) {
		lo = data[byteIdx+1]
	}
	return (hi << shift) | (lo >> (8 - shift)), nil
}

// WordAtBit extracts a 16-bit big-endian-over-the-bitstream value starting
// at bitPos.
func WordAtBit(data []byte, bitPos int) (uint16, error) {
	hi, err := ByteAtBit(data, bitPos)
	if err != nil {
		return 0, err
	}
	lo, err := ByteAtBit(data, bitPos+8)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// DWordAtBit extracts a 32-bit big-endian-over-the-bitstream value
// starting at bitPos.
func DWordAtBit(data []byte, bitPos int) (uint32, error) {
	hi, err := WordAtBit(data, bitPos)
	if err != nil {
		return 0, err
	}
	lo, err := WordAtBit(data, bitPos+16)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// FindSync scans data at 8-bit stride starting at startBit, returning the
// first bit position whose extracted word/dword equals pattern, or -1.
// width must be 16 or 32.
func FindSync(data []byte, totalBits int, pattern uint32, width int, startBit int) int {
	if width != 16 && width != 32 {
		return -1
	}
	if startBit < 0 {
		startBit = 0
	}
	last := totalBits - width
	for bit := startBit; bit <= last; bit += 8 {
		var v uint32
		var err error
		if width == 16 {
			var w uint16
			w, err = WordAtBit(data, bit)
			v = uint32(w)
		} else {
			v, err = DWordAtBit(data, bit)
		}
		if err != nil {
			break
		}
		if v == pattern {
			return bit
		}
	}
	return -1
}

// MFMClockValid performs the real MFM clock-bit check: in MFM a clock bit
// is present between two data bits iff both adjacent data bits are zero.
// prevBit and nextBit are the surrounding data bits (0 or 1); clockBit is
// the candidate clock bit between them. Only this one clock bit is
// checked; whether two adjacent clock bits are both set is not. The
// original C header this module replaces always returned true here.
func MFMClockValid(prevBit, clockBit, nextBit int) bool {
	if prevBit != 0 && prevBit != 1 {
		return false
	}
	if nextBit != 0 && nextBit != 1 {
		return false
	}
	if clockBit != 0 && clockBit != 1 {
		return false
	}
	// A clock bit is 1 exactly when both surrounding data bits are 0.
	return (clockBit == 1) == (prevBit == 0 && nextBit == 0)
}

type bitsError string

func (e bitsError) Error() string { return string(e) }

func errInvalid(msg string) error { return bitsError("bits: " + msg) }
