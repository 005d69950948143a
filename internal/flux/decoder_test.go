package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const testCellTicks = 4.0

var mfmCfg = Config{
	Encoding:   MFM,
	CellTicks:  testCellTicks,
	Thresholds: Thresholds{T0: 10 * testCellTicks / 4, T1: 14 * testCellTicks / 4},
}

// mfmEncodeBitsWithClock turns plain data bits into interleaved clock/data
// MFM cells using the standard clock rule: a clock bit is 1 only when both
// surrounding data bits are 0.
func mfmEncodeBitsWithClock(dataBits []int, prevData *int) []int {
	var cells []int
	for _, d := range dataBits {
		clock := 0
		if *prevData == 0 && d == 0 {
			clock = 1
		}
		cells = append(cells, clock, d)
		*prevData = d
	}
	return cells
}

func bitsOf(b byte) []int {
	out := make([]int, 8)
	for i := 0; i < 8; i++ {
		out[7-i] = int((b >> uint(i)) & 1)
	}
	return out
}

// mfmSyncCells16 are the 16 raw cells (clock+data already interleaved) for
// one clock-violated 0xA1 sync mark.
var mfmSyncCells16 = []int{0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 0, 0, 1, 0, 0, 1}

func cellsToIntervals(cells []int) []uint32 {
	var out []uint32
	count := 0
	for _, c := range cells {
		count++
		if c == 1 {
			out = append(out, uint32(count)*uint32(testCellTicks))
			count = 0
		}
	}
	return out
}

// buildMFMStream encodes three sync marks followed by plain bytes, and
// returns the flux intervals alongside the bytes a correct decoder should
// produce (the three sync bytes plus the plain bytes).
func buildMFMStream(payload []byte) ([]uint32, []byte) {
	var cells []int
	cells = append(cells, mfmSyncCells16...)
	cells = append(cells, mfmSyncCells16...)
	cells = append(cells, mfmSyncCells16...)
	prev := 1 // last data bit of the third sync mark
	for _, b := range payload {
		cells = append(cells, mfmEncodeBitsWithClock(bitsOf(b), &prev)...)
	}
	// A closing flux transition, so the last data cell is delimited and
	// reaches the decoder.
	cells = append(cells, 1)
	want := append([]byte{0xA1, 0xA1, 0xA1}, payload...)
	return cellsToIntervals(cells), want
}

func TestDecoder_MFMRoundTrip(t *testing.T) {
	payload := []byte{0xFE, 0x00, 0x00, 0x01, 0x01, 0x12, 0x34}
	intervals, want := buildMFMStream(payload)

	dec := NewDecoder(mfmCfg)
	var got []byte
	for _, iv := range intervals {
		got = append(got, dec.Feed(iv)...)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 3, dec.SyncCount)
}

func TestDecoder_MFM_NoSyncProducesNothing(t *testing.T) {
	prev := 0
	cells := mfmEncodeBitsWithClock(bitsOf(0x55), &prev)
	dec := NewDecoder(mfmCfg)
	var got []byte
	for _, iv := range cellsToIntervals(cells) {
		got = append(got, dec.Feed(iv)...)
	}
	assert.Empty(t, got, "bytes before the first sync must be discarded")
}

var fmCfg = Config{
	Encoding:   FM,
	CellTicks:  testCellTicks,
	Thresholds: Thresholds{T0: 6},
}

func fmEncodeBit(d int) []int {
	if d == 1 {
		return []int{1}
	}
	return []int{0, 1}
}

func fmBitsOf16(v uint16) []int {
	out := make([]int, 16)
	for i := 0; i < 16; i++ {
		out[15-i] = int((v >> uint(i)) & 1)
	}
	return out
}

func buildFMStream(payload []byte) ([]uint32, []byte) {
	var cells []int
	for _, b := range fmBitsOf16(fmSyncPattern16) {
		cells = append(cells, fmEncodeBit(b)...)
	}
	for _, b := range payload {
		for _, d := range bitsOf(b) {
			cells = append(cells, fmEncodeBit(d)...)
		}
	}
	return cellsToIntervals(cells), payload
}

func TestDecoder_FMRoundTrip(t *testing.T) {
	payload := []byte{0xFE, 0x02, 0x00, 0x03, 0x01, 0xAB, 0xCD}
	intervals, want := buildFMStream(payload)

	dec := NewDecoder(fmCfg)
	var got []byte
	for _, iv := range intervals {
		got = append(got, dec.Feed(iv)...)
	}
	require.Len(t, got, len(want))
	assert.Equal(t, want, got)
}

func TestPostCompensate_PullsTowardBoundary(t *testing.T) {
	corrected := PostCompensate(9, 4, 0.5)
	assert.InDelta(t, 8.5, corrected, 0.001)
}

func TestPostCompensate_NoFactorIsIdentity(t *testing.T) {
	assert.Equal(t, float64(123), PostCompensate(123, 4, 0))
}

func TestPostCompensate_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ticks := rapid.Float64Range(1, 1000).Draw(rt, "ticks")
		cell := rapid.Float64Range(1, 50).Draw(rt, "cell")
		factor := rapid.Float64Range(0, 1).Draw(rt, "factor")
		a := PostCompensate(ticks, cell, factor)
		b := PostCompensate(ticks, cell, factor)
		assert.Equal(t, a, b)
	})
}
