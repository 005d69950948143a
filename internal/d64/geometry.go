// Package d64 implements a bit-accurate, buffer-owning reader/writer for
// Commodore 1541 disk images: track/sector geometry, the Block
// Allocation Map, the flat directory, and file sector-chain traversal.
//
// Every operation here works against a caller-supplied byte slice; the
// package never opens a file or holds process-wide state. Callers that
// want persistence read a file into memory, call Open, mutate, then
// write Image.Bytes() back out themselves.
package d64

import "uftcore/internal/errs"

const (
	SectorSize         = 256
	DataBytesPerSector = 254
	dirTrack           = 18
	bamSector          = 0
	firstDirSector     = 1
	minTracks          = 35
	maxTracks          = 42
)

// SectorsPerTrack returns the 1541 sector count for a given track number
// (1-based), per the standard zone layout.
func SectorsPerTrack(track int) int {
	switch {
	case track >= 1 && track <= 17:
		return 21
	case track >= 18 && track <= 24:
		return 19
	case track >= 25 && track <= 30:
		return 18
	case track >= 31:
		return 17
	default:
		return 0
	}
}

// trackOffsets returns the byte offset of the start of each track, 1-indexed
// (index 0 unused), plus the total image size implied by tracks.
func trackOffsets(tracks int) ([]int64, int64) {
	offs := make([]int64, tracks+1)
	var cum int64
	for t := 1; t <= tracks; t++ {
		offs[t] = cum
		cum += int64(SectorsPerTrack(t)) * SectorSize
	}
	return offs, cum
}

// DetectLayout infers track count from an image's raw byte length, per
// spec's accepted 35/40/42-track images (with or without the per-sector
// error-info byte appended).
func DetectLayout(size int) (tracks int, hasErrorInfo bool, err error) {
	if size <= 0 {
		return 0, false, errs.New(errs.InvalidImage, "empty image")
	}

	var sectors int
	switch {
	case size%257 == 0:
		sectors = size / 257
		hasErrorInfo = true
	case size%256 == 0:
		sectors = size / 256
	default:
		return 0, false, errs.New(errs.InvalidImage, "unsupported image size %d", size)
	}

	if sectors < 683 {
		return 0, false, errs.New(errs.InvalidImage, "too few sectors (%d)", sectors)
	}
	extra := sectors - 683
	if extra%17 != 0 {
		return 0, false, errs.New(errs.InvalidImage, "unsupported sector count (%d)", sectors)
	}
	tracks = minTracks + extra/17
	if tracks < minTracks || tracks > maxTracks {
		return 0, false, errs.New(errs.InvalidImage, "unsupported track count (%d)", tracks)
	}
	return tracks, hasErrorInfo, nil
}

// ImageSize returns the raw (no error-info) byte size of a tracks-track image.
func ImageSize(tracks int) int64 {
	_, size := trackOffsets(tracks)
	return size
}
