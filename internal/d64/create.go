package d64

import "uftcore/internal/errs"

// bamDiskNameOffset is where the BAM sector's 16-byte disk-name field
// starts; the disk ID and DOS type follow it.
const bamDiskNameOffset = 0x90

// CreateImage builds a fresh, empty D64 image with the given track count
// (35, 40, or 42 — the sizes spec.md accepts), an initialized BAM marking
// every sector free except the BAM sector and the first directory
// sector, and a single empty directory sector.
func CreateImage(tracks int, diskName, diskID string) (*Image, error) {
	if tracks != 35 && tracks != 40 && tracks != 42 {
		return nil, errs.New(errs.InvalidInput, "unsupported track count %d", tracks)
	}

	buf := make([]byte, ImageSize(tracks))
	img := &Image{buf: buf, tracks: tracks}

	bamSec, err := img.sector(dirTrack, bamSector)
	if err != nil {
		return nil, err
	}
	bamSec[0] = dirTrack
	bamSec[1] = firstDirSector
	bamSec[2] = 0x41 // DOS version 'A'

	for t := 1; t <= tracks; t++ {
		base := bamTrackBase(t)
		sp := SectorsPerTrack(t)
		bamSec[base] = byte(sp)
		for s := 0; s < sp; s++ {
			byteIdx := base + 1 + s/8
			bamSec[byteIdx] |= 1 << uint(s%8)
		}
	}

	for i := bamDiskNameOffset; i < bamDiskNameOffset+27; i++ {
		bamSec[i] = 0xA0
	}
	copy(bamSec[bamDiskNameOffset:bamDiskNameOffset+16], asciiToPETSCII16(diskName))
	copy(bamSec[bamDiskNameOffset+18:bamDiskNameOffset+20], asciiToPETSCII16(diskID)[:2])
	bamSec[bamDiskNameOffset+21] = 0x32 // DOS type "2A"
	bamSec[bamDiskNameOffset+22] = 0x41

	bam := newBAM(bamSec, tracks)
	if err := bam.Allocate(dirTrack, bamSector); err != nil {
		return nil, err
	}
	if err := bam.Allocate(dirTrack, firstDirSector); err != nil {
		return nil, err
	}

	dirSec, err := img.sector(dirTrack, firstDirSector)
	if err != nil {
		return nil, err
	}
	dirSec[0] = 0
	dirSec[1] = 0xFF

	return img, nil
}
