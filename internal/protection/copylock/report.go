package copylock

import "fmt"

// Report renders a human-readable summary of a detection result, in the
// style of the original uft_copylock_report text dump.
func (r Result) Report() string {
	s := fmt.Sprintf("=== CopyLock Analysis ===\nDetected: %v\nVariant: %s\nConfidence: %s\nTrack: %d, Head: %d\n",
		r.Detected, r.Variant, r.Confidence, r.Track, r.Head)
	s += fmt.Sprintf("Syncs found: %d/%d\n", len(r.SyncsFound), syncCount)
	if r.SignatureFound {
		s += fmt.Sprintf("Signature: %q valid, seed=0x%06X\n", signature, r.LFSRSeed)
	}
	for _, t := range r.Timings {
		s += fmt.Sprintf("  sync=0x%04X offset=%d expected=%d%% valid=%v\n",
			t.SyncWord, t.BitOffset, t.ExpectedPct, t.TimingValid)
	}
	return s
}
