package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMFMHistogram() *Histogram {
	h := New(1.0, 125) // 1 tick per bucket, 125ns per tick -> 8MHz sample clock
	// Three peaks at 16 (2us), 24 (3us), 32 (4us) ticks, classic MFM 2/3/4 cell pattern.
	for i := 0; i < 500; i++ {
		h.Add(16)
	}
	for i := 0; i < 300; i++ {
		h.Add(24)
	}
	for i := 0; i < 200; i++ {
		h.Add(32)
	}
	return h
}

func buildFMHistogram() *Histogram {
	h := New(1.0, 125)
	for i := 0; i < 500; i++ {
		h.Add(16)
	}
	for i := 0; i < 500; i++ {
		h.Add(32)
	}
	return h
}

func TestAnalyze_MFM(t *testing.T) {
	h := buildMFMHistogram()
	a, err := h.Analyze()
	require.NoError(t, err)
	assert.Equal(t, MFM, a.Encoding)
	require.Len(t, a.Peaks, 3)
	require.Len(t, a.Thresholds, 2)
	assert.InDelta(t, 20, a.Thresholds[0], 0.1)
	assert.InDelta(t, 28, a.Thresholds[1], 0.1)
}

func TestAnalyze_FM(t *testing.T) {
	h := buildFMHistogram()
	a, err := h.Analyze()
	require.NoError(t, err)
	assert.Equal(t, FM, a.Encoding)
	require.Len(t, a.Peaks, 2)
	require.Len(t, a.Thresholds, 1)
	assert.InDelta(t, 24, a.Thresholds[0], 0.1)
}

func TestAnalyze_InsufficientSamples(t *testing.T) {
	h := New(1.0, 125)
	h.Add(16)
	_, err := h.Analyze()
	assert.Error(t, err)
}

func TestAnalyze_Overflow(t *testing.T) {
	h := New(1.0, 125)
	h.Add(1000)
	assert.Equal(t, uint32(1), h.Overflow())
}

func TestAnalyzeWithRevolution(t *testing.T) {
	h := buildMFMHistogram()
	// 8MHz clock, want ~300rpm -> revolution period 200ms -> ticks = 1.6e6
	a, err := h.AnalyzeWithRevolution(1.6e6)
	require.NoError(t, err)
	assert.InDelta(t, 300, a.RPM, 1)
}
