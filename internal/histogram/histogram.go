// Package histogram buckets raw flux-interval samples and derives the
// FM/MFM bit-cell thresholds a decoder needs, the way a real controller's
// capture firmware would before handing a track over to a software
// decoder.
package histogram

import "math"

const numBuckets = 256

// Histogram buckets pulse-interval samples, expressed in device ticks,
// converted to buckets via TicksPerBucket.
type Histogram struct {
	TicksPerBucket float64
	TickPeriodNs   float64 // duration of one device tick, in nanoseconds

	buckets  [numBuckets]uint32
	overflow uint32
	total    uint32
}

func New(ticksPerBucket, tickPeriodNs float64) *Histogram {
	return &Histogram{TicksPerBucket: ticksPerBucket, TickPeriodNs: tickPeriodNs}
}

// Add buckets one flux-interval sample (in device ticks).
func (h *Histogram) Add(ticks uint32) {
	h.total++
	bucket := int(float64(ticks) / h.TicksPerBucket)
	if bucket >= numBuckets {
		h.overflow++
		return
	}
	h.buckets[bucket]++
}

func (h *Histogram) Overflow() uint32 { return h.overflow }
func (h *Histogram) Total() uint32    { return h.total }

// Encoding classifies a track by its peak count.
type Encoding int

const (
	Unknown Encoding = iota
	FM
	MFM
)

func (e Encoding) String() string {
	switch e {
	case FM:
		return "FM"
	case MFM:
		return "MFM"
	default:
		return "unknown"
	}
}

// Peak is one local maximum found in the histogram.
type Peak struct {
	Bucket  int
	Count   uint32
	StdDev  float64
	TicksAt float64 // Bucket expressed back in device ticks
}

// Analysis is the derived result of a completed histogram.
type Analysis struct {
	Encoding   Encoding
	Peaks      []Peak
	Thresholds []float64 // 1 threshold for FM, 2 for MFM (in ticks)
	BitRateHz  float64
	DataClock  float64
	RPM        float64 // 0 if no index interval was supplied
}

// minPeakDistance is the minimum bucket separation enforced between two
// accepted peaks, preventing a single broad peak from being split in two.
const minPeakDistance = 8

// Analyze locates up to three distinct peaks and derives thresholds. It
// returns an error if there are too few samples or no clear peaks, in
// which case callers should fall back to caller-supplied nominal timing.
func (h *Histogram) Analyze() (Analysis, error) {
	if h.total < 16 {
		return Analysis{}, errInsufficientSamples
	}

	peaks := h.findPeaks(3)
	if len(peaks) < 2 {
		return Analysis{}, errNoClearPeaks
	}

	var a Analysis
	switch len(peaks) {
	case 2:
		a.Encoding = FM
		a.Thresholds = []float64{(peaks[0].TicksAt + peaks[1].TicksAt) / 2}
	default:
		a.Encoding = MFM
		a.Thresholds = []float64{
			(peaks[0].TicksAt + peaks[1].TicksAt) / 2,
			(peaks[1].TicksAt + peaks[2].TicksAt) / 2,
		}
	}
	a.Peaks = peaks

	shortPeakTicks := peaks[0].TicksAt
	periodSec := shortPeakTicks * h.TickPeriodNs * 1e-9
	if periodSec > 0 {
		a.BitRateHz = 1.0 / periodSec
	}
	if a.Encoding == MFM {
		a.DataClock = a.BitRateHz / 2
	} else {
		a.DataClock = a.BitRateHz
	}
	return a, nil
}

// AnalyzeWithRevolution is like Analyze but also derives RPM from the
// total elapsed ticks of one full index-to-index revolution.
func (h *Histogram) AnalyzeWithRevolution(totalTicksPerRevolution float64) (Analysis, error) {
	a, err := h.Analyze()
	if err != nil {
		return a, err
	}
	if totalTicksPerRevolution > 0 && h.TickPeriodNs > 0 {
		revSeconds := totalTicksPerRevolution * h.TickPeriodNs * 1e-9
		if revSeconds > 0 {
			a.RPM = 60.0 / revSeconds
		}
	}
	return a, nil
}

// findPeaks returns up to max local maxima, ordered by bucket position
// (ascending, i.e. short cell first), each separated from its neighbors
// by at least minPeakDistance buckets.
func (h *Histogram) findPeaks(max int) []Peak {
	type cand struct {
		bucket int
		count  uint32
	}
	var all []cand
	for i := 0; i < numBuckets; i++ {
		c := h.buckets[i]
		if c == 0 {
			continue
		}
		isLocalMax := true
		for j := i - minPeakDistance/2; j <= i+minPeakDistance/2; j++ {
			if j < 0 || j >= numBuckets || j == i {
				continue
			}
			if h.buckets[j] > c {
				isLocalMax = false
				break
			}
		}
		if isLocalMax {
			all = append(all, cand{bucket: i, count: c})
		}
	}

	// Greedy select strongest peaks first, enforcing minimum spacing.
	selected := make([]cand, 0, max)
	for len(selected) < max && len(all) > 0 {
		bestIdx := 0
		for i, c := range all {
			if c.count > all[bestIdx].count {
				bestIdx = i
			}
		}
		best := all[bestIdx]
		tooClose := false
		for _, s := range selected {
			if absInt(s.bucket-best.bucket) < minPeakDistance {
				tooClose = true
				break
			}
		}
		all = append(all[:bestIdx], all[bestIdx+1:]...)
		if tooClose {
			continue
		}
		selected = append(selected, best)
	}

	peaks := make([]Peak, 0, len(selected))
	for _, s := range selected {
		peaks = append(peaks, Peak{
			Bucket:  s.bucket,
			Count:   s.count,
			StdDev:  h.stdDevAround(s.bucket),
			TicksAt: float64(s.bucket) * h.TicksPerBucket,
		})
	}
	// Sort ascending by bucket (short cell first).
	for i := 1; i < len(peaks); i++ {
		for j := i; j > 0 && peaks[j].Bucket < peaks[j-1].Bucket; j-- {
			peaks[j], peaks[j-1] = peaks[j-1], peaks[j]
		}
	}
	return peaks
}

// stdDevAround estimates the standard deviation of samples contributing to
// the peak at center, over a small window, weighted by bucket counts.
func (h *Histogram) stdDevAround(center int) float64 {
	const window = 4
	lo := center - window
	hi := center + window
	if lo < 0 {
		lo = 0
	}
	if hi >= numBuckets {
		hi = numBuckets - 1
	}
	var n float64
	var mean float64
	for i := lo; i <= hi; i++ {
		c := float64(h.buckets[i])
		n += c
		mean += c * float64(i)
	}
	if n == 0 {
		return 0
	}
	mean /= n
	var variance float64
	for i := lo; i <= hi; i++ {
		c := float64(h.buckets[i])
		d := float64(i) - mean
		variance += c * d * d
	}
	variance /= n
	return math.Sqrt(variance)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type histErr string

func (e histErr) Error() string { return string(e) }

const (
	errInsufficientSamples = histErr("histogram: insufficient samples")
	errNoClearPeaks        = histErr("histogram: no clear peaks found")
)
