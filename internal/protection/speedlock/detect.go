package speedlock

import (
	"fmt"

	"uftcore/internal/dmk"
)

// baseline averages the first (up to baselineSampleMax) raw timing samples,
// giving the nominal bitcell width the rest of the track is measured
// against.
func baseline(samples []TimingSample) float64 {
	n := len(samples)
	if n > baselineSampleMax {
		n = baselineSampleMax
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples[:n] {
		sum += s.RawValue
	}
	return sum / float64(n)
}

func ratioOf(sample TimingSample, base float64) float64 {
	if base == 0 {
		return 100
	}
	return sample.RawValue / base * 100
}

// sampleIndexAtBit returns the index of the first sample at or past
// bitOffset, clamped to the sample slice: a non-positive bitOffset returns
// 0 and a bitOffset past every sample returns len(samples).
func sampleIndexAtBit(samples []TimingSample, bitOffset int) int {
	if bitOffset <= 0 {
		return 0
	}
	for i, s := range samples {
		if s.BitOffset >= bitOffset {
			return i
		}
	}
	return len(samples)
}

// findRunStart scans samples from fromIdx for the first run of windowSize
// consecutive samples whose ratio crosses threshold (above, if above is
// true; below otherwise), returning the index of the run's first sample.
func findRunStart(ratios []float64, fromIdx int, threshold float64, above bool) (int, bool) {
	run := 0
	for i := fromIdx; i < len(ratios); i++ {
		match := ratios[i] > threshold
		if !above {
			match = ratios[i] < threshold
		}
		if match {
			run++
			if run >= windowSize {
				return i - windowSize + 1, true
			}
		} else {
			run = 0
		}
	}
	return -1, false
}

// Detect analyzes a track's timing samples for the Speedlock variable
// density signature: a run to Normal->Long->Short->Normal densities, with
// the long region required to start before the short region and (for full
// confidence) to begin within the expected bit-offset window.
func Detect(track *dmk.Track, samples []TimingSample) Result {
	r := Result{Track: track.Cylinder, Head: track.Head, TrackBits: len(track.Raw) * 8}
	if r.TrackBits < minTrackBits || len(samples) < windowSize*2 {
		r.Info = "track too short for Speedlock analysis"
		return r
	}

	base := baseline(samples)
	ratios := make([]float64, len(samples))
	for i, s := range samples {
		ratios[i] = ratioOf(s, base)
	}

	// The long (slow) region is only expected from roughly bit 75,000
	// onward; starting the scan 5000 bits earlier, as the original does,
	// keeps early-track noise from a false long-region match.
	scanStartBit := expectedLongStartMin - 5000
	longStartIdx, longFound := findRunStart(ratios, sampleIndexAtBit(samples, scanStartBit), thresholdLongPct, true)
	if !longFound {
		r.Info = "no long (slow) density region found"
		return r
	}
	longEndIdx, longEndFound := findRunStart(ratios, longStartIdx+windowSize, thresholdBaselinePct, false)
	if !longEndFound {
		longEndIdx = len(ratios) - 1
	}

	shortStartIdx, shortFound := findRunStart(ratios, longEndIdx, thresholdShortPct, false)
	if !shortFound {
		r.Info = "long region found but no short (fast) density region follows"
		return r
	}
	shortEndIdx, shortEndFound := findRunStart(ratios, shortStartIdx+windowSize, thresholdBaselinePct, true)
	if !shortEndFound {
		shortEndIdx = len(ratios) - 1
	}

	avgRatio := func(from, to int) float64 {
		if to <= from {
			return ratios[from]
		}
		var sum float64
		for i := from; i < to; i++ {
			sum += ratios[i]
		}
		return sum / float64(to-from)
	}

	r.Regions = []Region{
		{Type: RegionNormal, StartBit: samples[0].BitOffset, EndBit: samples[longStartIdx].BitOffset, AvgRatioPct: avgRatio(0, longStartIdx)},
		{Type: RegionLong, StartBit: samples[longStartIdx].BitOffset, EndBit: samples[longEndIdx].BitOffset, AvgRatioPct: avgRatio(longStartIdx, longEndIdx)},
		{Type: RegionShort, StartBit: samples[shortStartIdx].BitOffset, EndBit: samples[shortEndIdx].BitOffset, AvgRatioPct: avgRatio(shortStartIdx, shortEndIdx)},
		{Type: RegionNormal, StartBit: samples[shortEndIdx].BitOffset, EndBit: samples[len(samples)-1].BitOffset, AvgRatioPct: avgRatio(shortEndIdx, len(samples))},
	}

	r.ValidSequence = longStartIdx < shortStartIdx
	longBitOffset := samples[longStartIdx].BitOffset
	r.ValidPosition = longBitOffset >= expectedLongStartMin && longBitOffset <= expectedLongStartMax

	r.TimingMatches = 0
	for _, region := range r.Regions {
		switch region.Type {
		case RegionLong:
			if region.AvgRatioPct >= thresholdLongPct {
				r.TimingMatches++
			}
		case RegionShort:
			if region.AvgRatioPct <= thresholdShortPct {
				r.TimingMatches++
			}
		default:
			diff := region.AvgRatioPct - regionNormalRatioPct
			if diff < 0 {
				diff = -diff
			}
			if diff <= 100-thresholdBaselinePct {
				r.TimingMatches++
			}
		}
	}

	switch {
	case r.ValidSequence && r.ValidPosition && r.TimingMatches >= 2:
		r.Confidence = ConfCertain
	case r.ValidSequence || r.TimingMatches >= 1:
		r.Confidence = ConfLikely
	default:
		r.Confidence = ConfPossible
	}
	r.Detected = true

	r.Info = fmt.Sprintf("Speedlock %s: long@%d short@%d sequence=%v position=%v",
		r.Confidence, longBitOffset, samples[shortStartIdx].BitOffset, r.ValidSequence, r.ValidPosition)
	return r
}
