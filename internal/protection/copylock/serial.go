package copylock

import "encoding/binary"

// Serial is the outcome of deriving a disk's serial number from sector 6.
type Serial struct {
	SignatureValid bool
	SerialValid    bool
	SerialNumber   uint32
	Checksum       uint32
	ExtSigTitle    string
}

// ExtractSerial implements the Rob Northen key derivation from the original
// disassembly at $298-$2B8: verify the "Rob Northen Comp" signature, then
// subtract six big-endian longwords from zero. Zero minus the first four
// longwords (the signature text itself) must equal sigCRC; the serial is what
// remains after subtracting the following two LFSR-derived longwords.
func ExtractSerial(sector6 []byte) (Serial, bool) {
	var s Serial
	if len(sector6) < serialSpan {
		return s, false
	}
	if string(sector6[:sigLen]) != signature {
		return s, false
	}

	var checksum uint32
	for i := 0; i < 4; i++ {
		checksum -= binary.BigEndian.Uint32(sector6[i*4 : i*4+4])
	}
	s.Checksum = checksum
	if checksum != sigCRC {
		return s, false
	}
	s.SignatureValid = true

	if len(sector6) >= sigLen+8 {
		var ext [8]byte
		copy(ext[:], sector6[sigLen:sigLen+8])
		for _, e := range extSignatures {
			if e.bytes == ext {
				s.ExtSigTitle = e.title
				break
			}
		}
	}

	for i := 4; i < 6; i++ {
		checksum -= binary.BigEndian.Uint32(sector6[i*4 : i*4+4])
	}
	s.SerialNumber = checksum
	s.SerialValid = true
	return s, true
}

// VerifySerial reports whether sector6's derived serial matches expected.
func VerifySerial(sector6 []byte, expected uint32) bool {
	s, ok := ExtractSerial(sector6)
	return ok && s.SerialValid && s.SerialNumber == expected
}
