package dmk

import (
	"uftcore/internal/bits"
	"uftcore/internal/errs"
)

// SectorSpec is the caller-supplied description of one sector to lay into
// a freshly written track.
type SectorSpec struct {
	Cylinder byte
	Head     byte
	Number   byte
	SizeCode byte
	Encoding Encoding
	Deleted  bool
	Data     []byte
}

// trackLengthTable is the small lookup the spec calls for, keyed by
// (driveSectors5_25in, doubleDensity); callers may always override it by
// passing an explicit trackLen to WriteTrack.
var trackLengthTable = map[[2]bool]int{
	{true, false}:  0x0CC0, // 5.25" single density
	{true, true}:   0x1900, // 5.25" double density
	{false, false}: 0x1980, // 8" single density
	{false, true}:  0x3100, // 8" double density
}

// DefaultTrackLength looks up the conventional DMK track length for a
// drive/density combination.
func DefaultTrackLength(fiveAndQuarterInch, doubleDensity bool) int {
	return trackLengthTable[[2]bool{fiveAndQuarterInch, doubleDensity}]
}

const (
	gapFillMFM  = 0x4E
	gapFillFM   = 0xFF
	syncFillLen = 12
	gapIDToData = 22
	gapInterSec = 24
)

// WriteTrack lays sectors out into a single track block of length
// trackLen, rebuilding the IDAM offset table to point at each produced ID
// mark. Gap bytes, sync, and CRCs follow the WD177x conventions the
// reader in idam.go expects.
func WriteTrack(sectors []SectorSpec, trackLen int) ([]byte, error) {
	if trackLen < IDAMTableLen {
		return nil, errs.New(errs.InvalidInput, "track length %d too small for IDAM table", trackLen)
	}

	block := make([]byte, IDAMTableLen, trackLen)
	var pointers []uint16

	gapFill := byte(gapFillFM)
	for _, s := range sectors {
		if s.Encoding == MFM {
			gapFill = gapFillMFM
			break
		}
	}

	appendGap := func(n int, fill byte) {
		for i := 0; i < n; i++ {
			block = append(block, fill)
		}
	}
	appendSync := func() {
		appendGap(syncFillLen, 0x00)
		block = append(block, mfmSyncByte, mfmSyncByte, mfmSyncByte)
	}

	for _, s := range sectors {
		appendGap(10, gapFill)

		idStart := len(block)
		if s.Encoding == MFM {
			appendSync()
			idStart = len(block) - 3
		}
		idamOffset := len(block)
		if idamOffset >= 1<<14 {
			return nil, errs.New(errs.InvalidInput, "track too long: IDAM offset %d exceeds 14-bit field", idamOffset)
		}

		block = append(block, markIDAM, s.Cylinder, s.Head, s.Number, s.SizeCode)
		idCRC := bits.CRCCCITTBuffer(block[idStart:], bits.FMInitialCRC)
		block = append(block, byte(idCRC>>8), byte(idCRC))

		var ptr uint16 = uint16(idamOffset)
		if s.Encoding == MFM {
			ptr |= idamDoubleDensBit
		}
		pointers = append(pointers, ptr)

		appendGap(gapIDToData, gapFill)

		damStart := len(block)
		if s.Encoding == MFM {
			appendSync()
			damStart = len(block) - 3
		}
		mark := byte(markDAMNormal)
		if s.Deleted {
			mark = markDAMDeleted
		}
		block = append(block, mark)
		block = append(block, s.Data...)
		dataCRC := bits.CRCCCITTBuffer(block[damStart:], bits.FMInitialCRC)
		block = append(block, byte(dataCRC>>8), byte(dataCRC))

		appendGap(gapInterSec, gapFill)
	}

	if len(block) > trackLen {
		return nil, errs.New(errs.InvalidInput, "encoded track (%d bytes) exceeds track length %d", len(block), trackLen)
	}
	appendGap(trackLen-len(block), gapFill)

	for i, p := range pointers {
		block[i*2] = byte(p)
		block[i*2+1] = byte(p >> 8)
	}

	return block, nil
}
