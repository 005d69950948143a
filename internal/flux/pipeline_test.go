package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMFMTrackIntervals(sectors [][]byte) []uint32 {
	var cells []int
	prev := 0
	appendSync := func() {
		cells = append(cells, mfmSyncCells16...)
		cells = append(cells, mfmSyncCells16...)
		cells = append(cells, mfmSyncCells16...)
		prev = 1
	}
	appendByte := func(b byte) {
		cells = append(cells, mfmEncodeBitsWithClock(bitsOf(b), &prev)...)
	}

	for n, data := range sectors {
		for i := 0; i < 20; i++ {
			appendByte(0x4E)
		}
		appendSync()
		appendByte(0xFE)
		appendByte(0x00)
		appendByte(0x00)
		appendByte(byte(n + 1))
		appendByte(0x01)
		// id CRC placeholder bytes: correctness of CRC isn't required for
		// this decode-plumbing test, only that bytes survive the round trip
		// and dmk.ExtractSectors can locate the marks.
		appendByte(0x00)
		appendByte(0x00)
		for i := 0; i < 22; i++ {
			appendByte(0x4E)
		}
		appendSync()
		appendByte(0xFB)
		for _, b := range data {
			appendByte(b)
		}
		appendByte(0x00)
		appendByte(0x00)
		for i := 0; i < 24; i++ {
			appendByte(0x4E)
		}
	}
	return cellsToIntervals(cells)
}

func TestDecodeTrackToDMK_FindsSectors(t *testing.T) {
	data1 := make([]byte, 256)
	for i := range data1 {
		data1[i] = byte(i)
	}
	intervals := buildMFMTrackIntervals([][]byte{data1})

	cfg := mfmCfg
	track, stats, err := DecodeTrackToDMK(intervals, cfg, 0x1900)
	require.NoError(t, err)
	require.Len(t, track.Sectors, 1)
	assert.Equal(t, byte(1), track.Sectors[0].Number)
	assert.True(t, stats.SectorsFound >= 1)
	assert.Len(t, track.Raw, 0x1900)
}

func TestMergeRevolutions_ReturnsDecodedTrack(t *testing.T) {
	data := make([]byte, 256)
	goodIntervals := buildMFMTrackIntervals([][]byte{data})

	badIntervals := append([]uint32(nil), goodIntervals...)
	// Lengthen a handful of intervals mid-stream by one tick; the decode
	// thresholds absorb that, so both revolutions still decode.
	for i := len(badIntervals) / 2; i < len(badIntervals)/2+4 && i < len(badIntervals); i++ {
		badIntervals[i] = badIntervals[i] + 1
	}

	track, stats, err := MergeRevolutions([][]uint32{badIntervals, goodIntervals}, mfmCfg, 0x1900)
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.GreaterOrEqual(t, stats.SectorsFound, 0)
}
