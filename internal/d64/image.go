package d64

import (
	"sort"
	"strings"

	"uftcore/internal/errs"
)

// file type codes, low 3 bits of the directory entry's type byte.
const (
	TypeDEL byte = 0
	TypeSEQ byte = 1
	TypePRG byte = 2
	TypeUSR byte = 3
	TypeREL byte = 4

	flagClosed byte = 0x80
	flagLocked byte = 0x40
)

// DirEntry is one parsed directory slot.
type DirEntry struct {
	Name        string
	Type        byte
	Locked      bool
	Closed      bool
	StartTrack  int
	StartSector int
	Blocks      int

	dirTrack, dirSector int
	slotIndex            int
}

// Image is a fully buffer-owned, parsed D64 disk image. All reads and
// writes go through buf; callers obtain bytes to persist via Bytes().
type Image struct {
	buf    []byte
	tracks int
}

// Open parses a raw D64 image. The input is copied; the caller may reuse
// or discard it afterward.
func Open(data []byte) (*Image, error) {
	tracks, hasErrInfo, err := DetectLayout(len(data))
	if err != nil {
		return nil, err
	}
	size := ImageSize(tracks)
	raw := data
	if hasErrInfo {
		raw = stripErrorInfo(data, tracks)
	}
	if int64(len(raw)) < size {
		return nil, errs.New(errs.InvalidImage, "image truncated: have %d bytes, need %d", len(raw), size)
	}
	buf := append([]byte(nil), raw[:size]...)
	return &Image{buf: buf, tracks: tracks}, nil
}

func stripErrorInfo(data []byte, tracks int) []byte {
	out := make([]byte, 0, ImageSize(tracks))
	for off := 0; off+SectorSize <= len(data); off += SectorSize + 1 {
		out = append(out, data[off:off+SectorSize]...)
	}
	return out
}

// Bytes returns the current raw image contents, ready to persist.
func (img *Image) Bytes() []byte {
	return append([]byte(nil), img.buf...)
}

// Tracks returns the image's track count.
func (img *Image) Tracks() int { return img.tracks }

func (img *Image) sectorOffset(track, sector int) (int, error) {
	if track < 1 || track > img.tracks {
		return 0, errs.New(errs.InvalidImage, "track %d out of range", track)
	}
	sp := SectorsPerTrack(track)
	if sector < 0 || sector >= sp {
		return 0, errs.New(errs.InvalidImage, "sector %d out of range on track %d", sector, track)
	}
	offs, _ := trackOffsets(img.tracks)
	return int(offs[track]) + sector*SectorSize, nil
}

func (img *Image) sector(track, sector int) ([]byte, error) {
	off, err := img.sectorOffset(track, sector)
	if err != nil {
		return nil, err
	}
	return img.buf[off : off+SectorSize], nil
}

// BAM returns a view onto the image's Block Allocation Map sector.
func (img *Image) BAM() *BAM {
	sec, err := img.sector(dirTrack, bamSector)
	if err != nil {
		// Track 18 sector 0 always exists for any image DetectLayout accepted.
		panic("d64: BAM sector unexpectedly out of range")
	}
	return newBAM(sec, img.tracks)
}

const (
	entriesPerDirSector = 8
	entryLen            = 32
)

func entryOffset(slot int) int { return 2 + slot*entryLen }

// Directory returns every non-deleted entry in the image's flat directory,
// walking the chain from track 18 sector 1.
func (img *Image) Directory() ([]DirEntry, error) {
	var out []DirEntry
	t, s := dirTrack, firstDirSector
	visited := map[[2]int]bool{}
	for t != 0 {
		key := [2]int{t, s}
		if visited[key] {
			return nil, errs.New(errs.InvalidImage, "directory chain loop at %d/%d", t, s)
		}
		visited[key] = true

		sec, err := img.sector(t, s)
		if err != nil {
			return nil, err
		}
		nextT, nextS := int(sec[0]), int(sec[1])

		for i := 0; i < entriesPerDirSector; i++ {
			off := entryOffset(i)
			ft := sec[off]
			if ft == 0 {
				continue
			}
			out = append(out, DirEntry{
				Name:        petsciiToASCII(sec[off+3 : off+19]),
				Type:        ft & 0x07,
				Locked:      ft&flagLocked != 0,
				Closed:      ft&flagClosed != 0,
				StartTrack:  int(sec[off+1]),
				StartSector: int(sec[off+2]),
				Blocks:      int(sec[off+28]) | int(sec[off+29])<<8,
				dirTrack:    t,
				dirSector:   s,
				slotIndex:   i,
			})
		}

		if nextT == 0 {
			break
		}
		t, s = nextT, nextS
	}
	return out, nil
}

// Lookup finds a directory entry by case-insensitive name.
func (img *Image) Lookup(name string) (DirEntry, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	entries, err := img.Directory()
	if err != nil {
		return DirEntry{}, err
	}
	for _, e := range entries {
		if strings.ToUpper(e.Name) == key {
			return e, nil
		}
	}
	return DirEntry{}, errs.New(errs.NotFound, "file %q not found", name)
}

// sectorChain walks a file's sector chain, returning each (track,sector)
// visited and total bytes of payload.
func (img *Image) sectorChain(startTrack, startSector int) ([][2]int, uint64, error) {
	if startTrack == 0 {
		return nil, 0, nil
	}
	var chain [][2]int
	var size uint64
	visited := map[[2]int]bool{}
	t, s := startTrack, startSector
	for {
		key := [2]int{t, s}
		if visited[key] {
			return nil, 0, errs.New(errs.InvalidImage, "sector chain loop at %d/%d", t, s)
		}
		visited[key] = true

		sec, err := img.sector(t, s)
		if err != nil {
			return nil, 0, errs.New(errs.InvalidImage, "broken sector chain: %v", err)
		}
		chain = append(chain, key)
		nextT, nextS := int(sec[0]), int(sec[1])
		if nextT == 0 {
			dataLen := nextS
			if dataLen <= 0 || dataLen > DataBytesPerSector {
				dataLen = DataBytesPerSector
			}
			size += uint64(dataLen)
			break
		}
		size += DataBytesPerSector
		t, s = nextT, nextS
	}
	return chain, size, nil
}

// ExtractFile returns a file's full contents by name.
func (img *Image) ExtractFile(name string) ([]byte, error) {
	e, err := img.Lookup(name)
	if err != nil {
		return nil, err
	}
	chain, size, err := img.sectorChain(e.StartTrack, e.StartSector)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for i, ts := range chain {
		sec, _ := img.sector(ts[0], ts[1])
		if i == len(chain)-1 {
			dataLen := int(sec[1])
			if dataLen <= 0 || dataLen > DataBytesPerSector {
				dataLen = DataBytesPerSector
			}
			out = append(out, sec[2:2+dataLen]...)
		} else {
			out = append(out, sec[2:2+DataBytesPerSector]...)
		}
	}
	return out, nil
}

// DetectCrossLinks reports every (track,sector) pair referenced by more
// than one file's chain, the corruption pattern 1541 tools call
// "cross-linked files".
func (img *Image) DetectCrossLinks() (map[[2]int][]string, error) {
	entries, err := img.Directory()
	if err != nil {
		return nil, err
	}
	owners := map[[2]int][]string{}
	for _, e := range entries {
		chain, _, err := img.sectorChain(e.StartTrack, e.StartSector)
		if err != nil {
			continue
		}
		for _, ts := range chain {
			owners[ts] = append(owners[ts], e.Name)
		}
	}
	crossed := map[[2]int][]string{}
	for ts, names := range owners {
		if len(names) > 1 {
			crossed[ts] = names
		}
	}
	return crossed, nil
}

// Names returns every file name in the directory, sorted.
func (img *Image) Names() ([]string, error) {
	entries, err := img.Directory()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names, nil
}
