package d64

import "uftcore/internal/errs"

// bamTrackBase is the byte offset within the BAM sector of the 4-byte
// (freeCount, bitmap0, bitmap1, bitmap2) record for a track.
func bamTrackBase(track int) int { return 0x04 + (track-1)*4 }

// BAM is a view onto the 256-byte Block Allocation Map sector of an open
// image. It never copies: all methods read and write through to the
// Image's backing buffer, so mutations are immediately reflected in
// Image.Bytes().
type BAM struct {
	buf    []byte // the 256-byte BAM sector, aliased into the image buffer
	tracks int
}

func newBAM(buf []byte, tracks int) *BAM {
	return &BAM{buf: buf, tracks: tracks}
}

func (b *BAM) trackBounds(track int) (base int, ok bool) {
	if track < 1 || track > b.tracks {
		return 0, false
	}
	base = bamTrackBase(track)
	return base, base+3 < len(b.buf)
}

// IsFree reports whether (track, sector) is currently marked free.
func (b *BAM) IsFree(track, sector int) bool {
	base, ok := b.trackBounds(track)
	if !ok || sector < 0 || sector >= SectorsPerTrack(track) {
		return false
	}
	byteIdx := base + 1 + sector/8
	return b.buf[byteIdx]&(1<<uint(sector%8)) != 0
}

// Allocate marks (track, sector) used, decrementing the track's free
// count. It is idempotent: allocating an already-used sector is a no-op.
func (b *BAM) Allocate(track, sector int) error {
	base, ok := b.trackBounds(track)
	if !ok || sector < 0 || sector >= SectorsPerTrack(track) {
		return errs.New(errs.InvalidInput, "sector %d/%d out of range", track, sector)
	}
	byteIdx := base + 1 + sector/8
	mask := byte(1 << uint(sector%8))
	if b.buf[byteIdx]&mask == 0 {
		return nil
	}
	b.buf[byteIdx] &^= mask
	if b.buf[base] > 0 {
		b.buf[base]--
	}
	return nil
}

// Free marks (track, sector) free, incrementing the track's free count.
// Idempotent, mirroring Allocate.
func (b *BAM) Free(track, sector int) error {
	base, ok := b.trackBounds(track)
	if !ok || sector < 0 || sector >= SectorsPerTrack(track) {
		return errs.New(errs.InvalidInput, "sector %d/%d out of range", track, sector)
	}
	byteIdx := base + 1 + sector/8
	mask := byte(1 << uint(sector%8))
	if b.buf[byteIdx]&mask != 0 {
		return nil
	}
	b.buf[byteIdx] |= mask
	b.buf[base]++
	return nil
}

// FreeBlockCount returns the BAM's recorded free-sector count for a track.
func (b *BAM) FreeBlockCount(track int) int {
	base, ok := b.trackBounds(track)
	if !ok {
		return 0
	}
	return int(b.buf[base])
}

// TotalFree sums the per-track free-sector count across every track
// except the directory track, which the DOS never allocates file data
// into and so never counts toward free space.
func (b *BAM) TotalFree() int {
	total := 0
	for t := 1; t <= b.tracks; t++ {
		if t == dirTrack {
			continue
		}
		total += b.FreeBlockCount(t)
	}
	return total
}

// allocationOrder is the expanding-ring search the 1541 DOS uses to place
// new sectors: expand outward from track 18 (the directory track),
// alternating above and below, but never allocate on track 18 itself.
func (b *BAM) allocationOrder() []int {
	order := make([]int, 0, b.tracks)
	for d := 1; d <= b.tracks; d++ {
		if t := dirTrack + d; t <= b.tracks {
			order = append(order, t)
		}
		if t := dirTrack - d; t >= 1 {
			order = append(order, t)
		}
	}
	return order
}

// AllocateNextFree finds and allocates the next free sector using the
// standard expanding-ring-from-track-18 search order, per spec's
// allocation policy.
func (b *BAM) AllocateNextFree() (track, sector int, err error) {
	for _, t := range b.allocationOrder() {
		sp := SectorsPerTrack(t)
		for s := 0; s < sp; s++ {
			if b.IsFree(t, s) {
				_ = b.Allocate(t, s)
				return t, s, nil
			}
		}
	}
	return 0, 0, errs.New(errs.Full, "disk full: no free sectors")
}

// Validate recomputes each track's free-sector count from its bitmap and
// reports any track whose stored free count disagrees — the I-BAM
// invariant scenario 1541 tools call "BAM corruption".
func (b *BAM) Validate() []int {
	var bad []int
	for t := 1; t <= b.tracks; t++ {
		base, ok := b.trackBounds(t)
		if !ok {
			continue
		}
		count := 0
		for s := 0; s < SectorsPerTrack(t); s++ {
			if b.IsFree(t, s) {
				count++
			}
		}
		if int(b.buf[base]) != count {
			bad = append(bad, t)
		}
	}
	return bad
}

// Repair recomputes and rewrites the stored free-sector count for every
// track whose bitmap and count disagree.
func (b *BAM) Repair() {
	for _, t := range b.Validate() {
		base, _ := b.trackBounds(t)
		count := 0
		for s := 0; s < SectorsPerTrack(t); s++ {
			if b.IsFree(t, s) {
				count++
			}
		}
		b.buf[base] = byte(count)
	}
}
