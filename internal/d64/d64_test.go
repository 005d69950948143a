package d64

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// S1: creating a fresh 35-track image yields an empty directory and a
// fully-free BAM except for the BAM and first directory sectors.
func TestCreateImage_EmptyDirectory(t *testing.T) {
	img, err := CreateImage(35, "MY DISK", "1A")
	require.NoError(t, err)

	entries, err := img.Directory()
	require.NoError(t, err)
	assert.Empty(t, entries)

	bam := img.BAM()
	assert.False(t, bam.IsFree(18, 0))
	assert.False(t, bam.IsFree(18, 1))
	assert.True(t, bam.IsFree(1, 0))
	assert.Equal(t, SectorsPerTrack(1), bam.FreeBlockCount(1))
	assert.Equal(t, SectorsPerTrack(18)-2, bam.FreeBlockCount(18))
	assert.Equal(t, 664, bam.TotalFree())
}

func TestCreateImage_RejectsBadTrackCount(t *testing.T) {
	_, err := CreateImage(36, "X", "1A")
	assert.Error(t, err)
}

// S2/S3-ish: insert, extract, delete, rename round trip.
func TestInsertExtractDeleteFile(t *testing.T) {
	img, err := CreateImage(35, "TEST", "1A")
	require.NoError(t, err)

	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i * 3)
	}
	require.NoError(t, img.InsertFile("HELLO.PRG", TypePRG, payload))

	entries, err := img.Directory()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "HELLO.PRG", entries[0].Name)
	assert.Equal(t, TypePRG, entries[0].Type)

	got, err := img.ExtractFile("HELLO.PRG")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, img.RenameFile("HELLO.PRG", "WORLD.PRG", false))
	_, err = img.Lookup("HELLO.PRG")
	assert.Error(t, err)
	got2, err := img.ExtractFile("WORLD.PRG")
	require.NoError(t, err)
	assert.Equal(t, payload, got2)

	require.NoError(t, img.DeleteFile("WORLD.PRG"))
	entries2, err := img.Directory()
	require.NoError(t, err)
	assert.Empty(t, entries2)

	bam := img.BAM()
	assert.Equal(t, SectorsPerTrack(18)-2, bam.FreeBlockCount(18))
}

func TestInsertFile_DuplicateNameRejected(t *testing.T) {
	img, err := CreateImage(35, "TEST", "1A")
	require.NoError(t, err)
	require.NoError(t, img.InsertFile("A", TypePRG, []byte("x")))
	err = img.InsertFile("A", TypePRG, []byte("y"))
	assert.Error(t, err)
}

func TestLockFile(t *testing.T) {
	img, err := CreateImage(35, "TEST", "1A")
	require.NoError(t, err)
	require.NoError(t, img.InsertFile("A", TypePRG, []byte("x")))
	require.NoError(t, img.LockFile("A", true))
	e, err := img.Lookup("A")
	require.NoError(t, err)
	assert.True(t, e.Locked)
	require.NoError(t, img.LockFile("A", false))
	e, err = img.Lookup("A")
	require.NoError(t, err)
	assert.False(t, e.Locked)
}

func TestDetectCrossLinks_None(t *testing.T) {
	img, err := CreateImage(35, "TEST", "1A")
	require.NoError(t, err)
	require.NoError(t, img.InsertFile("A", TypePRG, make([]byte, 600)))
	require.NoError(t, img.InsertFile("B", TypePRG, make([]byte, 600)))
	crossed, err := img.DetectCrossLinks()
	require.NoError(t, err)
	assert.Empty(t, crossed)
}

func TestBAM_AllocateFreeInverse(t *testing.T) {
	img, err := CreateImage(35, "TEST", "1A")
	require.NoError(t, err)
	bam := img.BAM()
	before := bam.FreeBlockCount(5)
	require.NoError(t, bam.Allocate(5, 3))
	assert.Equal(t, before-1, bam.FreeBlockCount(5))
	require.NoError(t, bam.Free(5, 3))
	assert.Equal(t, before, bam.FreeBlockCount(5))
}

func TestBAM_ValidateDetectsMismatch(t *testing.T) {
	img, err := CreateImage(35, "TEST", "1A")
	require.NoError(t, err)
	bam := img.BAM()
	assert.Empty(t, bam.Validate())

	sec, err := img.sector(18, 0)
	require.NoError(t, err)
	sec[bamTrackBase(5)] = 0 // corrupt the stored free count for track 5

	bad := bam.Validate()
	assert.Contains(t, bad, 5)
	bam.Repair()
	assert.Empty(t, bam.Validate())
}

func TestGeometry_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tracks := rapid.SampledFrom([]int{35, 40, 42}).Draw(rt, "tracks")
		track := rapid.IntRange(1, tracks).Draw(rt, "track")
		sp := SectorsPerTrack(track)
		if sp == 0 {
			rt.Fatalf("unexpected zero sector count for track %d", track)
		}
		offs, total := trackOffsets(tracks)
		assert.Equal(t, total, ImageSize(tracks))
		if track < tracks {
			assert.Less(t, offs[track], offs[track+1])
		}
	})
}

func TestDetectLayout_RejectsGarbageSize(t *testing.T) {
	_, _, err := DetectLayout(12345)
	assert.Error(t, err)
}
