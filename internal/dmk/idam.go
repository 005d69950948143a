package dmk

import (
	"uftcore/internal/bits"
	"uftcore/internal/errs"
)

// IDAMPointer is one decoded entry from a track's 128-byte IDAM table.
type IDAMPointer struct {
	Offset        int  // byte offset into the track block
	DoubleDensity bool
	ExtraInfo     bool
}

// ParseIDAMTable walks the first 128 bytes of trackBlock as up to 64
// little-endian u16 pointers, stripping the two flag bits from each and
// verifying 128 <= offset < len(trackBlock). It stops at the first zero
// pointer, per spec §4.4.
func ParseIDAMTable(trackBlock []byte) ([]IDAMPointer, error) {
	if len(trackBlock) < IDAMTableLen {
		return nil, errs.New(errs.InvalidImage, "track block shorter than IDAM table (%d bytes)", len(trackBlock))
	}
	var out []IDAMPointer
	for i := 0; i < maxIDAMSlots; i++ {
		raw := uint16(trackBlock[i*2]) | uint16(trackBlock[i*2+1])<<8
		if raw == 0 {
			break
		}
		off := int(raw & idamPointerMask)
		if off < IDAMTableLen || off >= len(trackBlock) {
			return nil, errs.New(errs.InvalidImage, "idam pointer %d out of range: %d", i, off)
		}
		out = append(out, IDAMPointer{
			Offset:        off,
			DoubleDensity: raw&idamDoubleDensBit != 0,
			ExtraInfo:     raw&idamExtraInfoBit != 0,
		})
	}
	return out, nil
}

// ExtractSectors walks every valid IDAM pointer in trackBlock and derives
// a Sector record for each, per the state machine in spec §4.4. wd1771NonIBM
// and rx02 select the non-standard size-code and doubled-data-length
// variants; both are normally false.
func ExtractSectors(trackBlock []byte, wd1771NonIBM, rx02 bool) ([]*Sector, error) {
	pointers, err := ParseIDAMTable(trackBlock)
	if err != nil {
		return nil, err
	}

	sectors := make([]*Sector, 0, len(pointers))
	for _, p := range pointers {
		sec, ok := extractOneSector(trackBlock, p, wd1771NonIBM, rx02)
		if ok {
			sectors = append(sectors, sec)
		}
		// A missing DAM aborts only this sector, never the whole track.
	}
	return sectors, nil
}

func extractOneSector(trackBlock []byte, p IDAMPointer, wd1771NonIBM, rx02 bool) (*Sector, bool) {
	off := p.Offset
	encoding := FM
	idStart := off

	// MFM sectors are preceded immediately by a 3-byte 0xA1 sync; detect it
	// by looking at the three bytes before the mark.
	if off >= 3 &&
		trackBlock[off-3] == mfmSyncByte &&
		trackBlock[off-2] == mfmSyncByte &&
		trackBlock[off-1] == mfmSyncByte {
		encoding = MFM
		idStart = off - 3
	}

	if trackBlock[off] != markIDAM {
		return nil, false
	}
	// ID field: mark + cylinder + head + sector + size-code + 2 CRC bytes = 7 bytes (after any sync).
	const idFieldLen = 7
	if off+idFieldLen > len(trackBlock) {
		return nil, false
	}

	cyl := trackBlock[off+1]
	head := trackBlock[off+2]
	num := trackBlock[off+3]
	sizeCode := trackBlock[off+4]
	storedIDCRC := uint16(trackBlock[off+5])<<8 | uint16(trackBlock[off+6])

	computedIDCRC := bits.CRCCCITTBuffer(trackBlock[idStart:off+5], bits.FMInitialCRC)

	sec := &Sector{
		Cylinder:      cyl,
		Head:          head,
		Number:        num,
		SizeCode:      sizeCode,
		Encoding:      encoding,
		IDOffset:      off,
		StoredIDCRC:   storedIDCRC,
		ComputedIDCRC: computedIDCRC,
		IDCRCValid:    storedIDCRC == computedIDCRC,
	}

	// Scan forward up to damScanWindow bytes for a DAM.
	dataMarkPos := -1
	scanStart := off + idFieldLen
	scanEnd := scanStart + damScanWindow
	if scanEnd > len(trackBlock) {
		scanEnd = len(trackBlock)
	}
	damSyncStart := -1
	for pos := scanStart; pos < scanEnd; pos++ {
		b := trackBlock[pos]
		if b == markDAMNormal || b == markDAMDeleted || (rx02 && b == markDAMRX02Dbl) {
			dataMarkPos = pos
			if encoding == MFM && pos >= 3 &&
				trackBlock[pos-3] == mfmSyncByte &&
				trackBlock[pos-2] == mfmSyncByte &&
				trackBlock[pos-1] == mfmSyncByte {
				damSyncStart = pos - 3
			}
			break
		}
	}
	if dataMarkPos < 0 {
		// No DAM found within the scan window: sector ID is still valid,
		// but there is no data to extract.
		return sec, true
	}

	sec.Deleted = trackBlock[dataMarkPos] == markDAMDeleted
	rx02Double := rx02 && trackBlock[dataMarkPos] == markDAMRX02Dbl
	dataLen := DataLength(sizeCode, wd1771NonIBM, rx02Double)

	dataStart := dataMarkPos + 1
	dataEnd := dataStart + dataLen
	if dataEnd+2 > len(trackBlock) {
		// Truncated data field: keep whatever bytes were collected and
		// mark the CRC as errored, per spec's "unterminated data field"
		// failure mode.
		avail := len(trackBlock) - dataStart
		if avail < 0 {
			avail = 0
		}
		sec.DataOffset = dataStart
		sec.Data = append([]byte(nil), trackBlock[dataStart:dataStart+avail]...)
		sec.DataCRCValid = false
		return sec, true
	}

	sec.DataOffset = dataStart
	sec.Data = append([]byte(nil), trackBlock[dataStart:dataEnd]...)

	storedDataCRC := uint16(trackBlock[dataEnd])<<8 | uint16(trackBlock[dataEnd+1])
	crcRangeStart := dataMarkPos
	if damSyncStart >= 0 {
		crcRangeStart = damSyncStart
	}
	computedDataCRC := bits.CRCCCITTBuffer(trackBlock[crcRangeStart:dataEnd], bits.FMInitialCRC)

	sec.StoredDataCRC = storedDataCRC
	sec.ComputedDataCRC = computedDataCRC
	sec.DataCRCValid = storedDataCRC == computedDataCRC

	return sec, true
}
