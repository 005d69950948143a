package d64

import (
	"strings"

	"uftcore/internal/errs"
)

func (img *Image) freeChain(track, sector int) error {
	bam := img.BAM()
	chain, _, err := img.sectorChain(track, sector)
	if err != nil {
		return err
	}
	for _, ts := range chain {
		if err := bam.Free(ts[0], ts[1]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteFile removes a file's directory entry and frees its sector chain.
func (img *Image) DeleteFile(name string) error {
	e, err := img.Lookup(name)
	if err != nil {
		return err
	}
	if e.StartTrack != 0 {
		if err := img.freeChain(e.StartTrack, e.StartSector); err != nil {
			return err
		}
	}
	sec, err := img.sector(e.dirTrack, e.dirSector)
	if err != nil {
		return err
	}
	off := entryOffset(e.slotIndex)
	for i := 0; i < entryLen-2; i++ {
		sec[off+i] = 0
	}
	return nil
}

// RenameFile renames a file, optionally overwriting an existing
// destination (which is deleted first).
func (img *Image) RenameFile(oldName, newName string, allowOverwrite bool) error {
	src, err := img.Lookup(oldName)
	if err != nil {
		return err
	}
	if strings.EqualFold(oldName, newName) {
		return nil
	}
	if _, err := img.Lookup(newName); err == nil {
		if !allowOverwrite {
			return errs.New(errs.Exists, "destination %q already exists", newName)
		}
		if err := img.DeleteFile(newName); err != nil {
			return err
		}
	}

	sec, err := img.sector(src.dirTrack, src.dirSector)
	if err != nil {
		return err
	}
	off := entryOffset(src.slotIndex)
	copy(sec[off+3:off+19], asciiToPETSCII16(newName))
	return nil
}

// LockFile sets or clears a file's write-protect flag.
func (img *Image) LockFile(name string, locked bool) error {
	e, err := img.Lookup(name)
	if err != nil {
		return err
	}
	sec, err := img.sector(e.dirTrack, e.dirSector)
	if err != nil {
		return err
	}
	off := entryOffset(e.slotIndex)
	if locked {
		sec[off] |= flagLocked
	} else {
		sec[off] &^= flagLocked
	}
	return nil
}

// findFreeSlotOrExtend locates a free directory slot, extending the
// directory chain onto a new sector on track 18 if none exists.
func (img *Image) findFreeSlotOrExtend() (dirT, dirS, slot int, err error) {
	t, s := dirTrack, firstDirSector
	var lastT, lastS int
	visited := map[[2]int]bool{}
	for t != 0 {
		key := [2]int{t, s}
		if visited[key] {
			return 0, 0, 0, errs.New(errs.InvalidImage, "directory chain loop")
		}
		visited[key] = true

		sec, serr := img.sector(t, s)
		if serr != nil {
			return 0, 0, 0, serr
		}
		lastT, lastS = t, s
		for i := 0; i < entriesPerDirSector; i++ {
			if sec[entryOffset(i)] == 0 {
				return t, s, i, nil
			}
		}
		nextT, nextS := int(sec[0]), int(sec[1])
		if nextT == 0 {
			break
		}
		t, s = nextT, nextS
	}

	bam := img.BAM()
	sp := SectorsPerTrack(dirTrack)
	for cand := 2; cand < sp; cand++ {
		if bam.IsFree(dirTrack, cand) {
			if err := bam.Allocate(dirTrack, cand); err != nil {
				return 0, 0, 0, err
			}
			lastSec, err := img.sector(lastT, lastS)
			if err != nil {
				return 0, 0, 0, err
			}
			lastSec[0], lastSec[1] = byte(dirTrack), byte(cand)

			newSec, err := img.sector(dirTrack, cand)
			if err != nil {
				return 0, 0, 0, err
			}
			for i := range newSec {
				newSec[i] = 0
			}
			return dirTrack, cand, 0, nil
		}
	}
	return 0, 0, 0, errs.New(errs.Full, "no free directory sector")
}

// InsertFile creates a new directory entry for name and writes data into
// a freshly allocated sector chain. It fails with errs.Exists if name is
// already present; callers wanting overwrite semantics should DeleteFile
// first.
func (img *Image) InsertFile(name string, fileType byte, data []byte) error {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return errs.New(errs.InvalidInput, "empty file name")
	}
	if strings.ContainsAny(key, "/\\") {
		return errs.New(errs.InvalidInput, "subdirectories are not supported")
	}
	if _, err := img.Lookup(name); err == nil {
		return errs.New(errs.Exists, "file %q already exists", name)
	}

	dirT, dirS, slot, err := img.findFreeSlotOrExtend()
	if err != nil {
		return err
	}

	bam := img.BAM()
	var startTrack, startSector int
	blocks := 0

	if len(data) > 0 {
		t, s, aerr := bam.AllocateNextFree()
		if aerr != nil {
			return aerr
		}
		startTrack, startSector = t, s
		blocks = 1

		remaining := data
		curT, curS := t, s
		for {
			sec, serr := img.sector(curT, curS)
			if serr != nil {
				return serr
			}
			for i := range sec {
				sec[i] = 0
			}
			n := len(remaining)
			if n > DataBytesPerSector {
				n = DataBytesPerSector
			}
			copy(sec[2:2+n], remaining[:n])
			remaining = remaining[n:]

			if len(remaining) == 0 {
				sec[0] = 0
				sec[1] = byte(n)
				if n == DataBytesPerSector {
					sec[1] = 0
				}
				break
			}

			nt, ns, aerr := bam.AllocateNextFree()
			if aerr != nil {
				return aerr
			}
			sec[0], sec[1] = byte(nt), byte(ns)
			curT, curS = nt, ns
			blocks++
		}
	}

	sec, err := img.sector(dirT, dirS)
	if err != nil {
		return err
	}
	off := entryOffset(slot)
	sec[off] = flagClosed | (fileType & 0x07)
	sec[off+1] = byte(startTrack)
	sec[off+2] = byte(startSector)
	copy(sec[off+3:off+19], asciiToPETSCII16(name))
	sec[off+28] = byte(blocks)
	sec[off+29] = byte(blocks >> 8)
	return nil
}
