package speedlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"uftcore/internal/dmk"
)

// syntheticTrack builds a timing sample stream with a normal region, a long
// (110%) region starting at the typical offset, a short (90%) region, and
// a return to normal, mirroring a genuine Speedlock track shape.
func syntheticTrack() (*dmk.Track, []TimingSample) {
	const base = 2000.0 // arbitrary raw unit, e.g. nanoseconds per bitcell
	var samples []TimingSample
	bit := 0
	add := func(count int, ratioPct float64) {
		for i := 0; i < count; i++ {
			samples = append(samples, TimingSample{BitOffset: bit, RawValue: base * ratioPct / 100})
			bit++
		}
	}
	add(expectedLongStartTypical, 100)
	add(2000, regionLongRatioPct)
	add(2000, regionShortRatioPct)
	add(500, 100)

	track := &dmk.Track{Raw: make([]byte, 105000/8)}
	return track, samples
}

func TestDetect_FindsSpeedlockSequence(t *testing.T) {
	track, samples := syntheticTrack()
	r := Detect(track, samples)
	assert.True(t, r.Detected)
	assert.True(t, r.ValidSequence)
	assert.True(t, r.ValidPosition)
	assert.Equal(t, ConfCertain, r.Confidence)
	assert.Len(t, r.Regions, 4)
}

func TestDetect_RejectsTrackWithNoLongRegion(t *testing.T) {
	track := &dmk.Track{Raw: make([]byte, 105000/8)}
	samples := make([]TimingSample, 3000)
	for i := range samples {
		samples[i] = TimingSample{BitOffset: i, RawValue: 2000}
	}
	r := Detect(track, samples)
	assert.False(t, r.Detected)
}

func TestDetect_RejectsShortTrack(t *testing.T) {
	track := &dmk.Track{Raw: make([]byte, 10)}
	r := Detect(track, nil)
	assert.False(t, r.Detected)
}

func TestBaseline_AveragesFirstSamples(t *testing.T) {
	samples := make([]TimingSample, 10)
	for i := range samples {
		samples[i] = TimingSample{BitOffset: i, RawValue: 100}
	}
	assert.Equal(t, 100.0, baseline(samples))
}
