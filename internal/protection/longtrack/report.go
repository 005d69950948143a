package longtrack

import "fmt"

// Report renders a human-readable summary of a detection result.
func (r Result) Report() string {
	s := fmt.Sprintf("=== Longtrack Analysis ===\nDetected: %v\nConfidence: %s\n"+
		"Track: %d, Head: %d\nTrack bits: %d (%.1f%% of normal)\n",
		r.Detected, r.Confidence, r.Track, r.Head, r.TrackBits,
		float64(r.TrackBits)/AmigaNormalBits*100)
	if r.Detected {
		p := r.Primary
		s += fmt.Sprintf("Primary: %s\n  Sync: 0x%X @ bit %d\n  Pattern: 0x%02X (%.1f%% match, %d bits)\n",
			p.Type, p.SyncWord, p.SyncOffset, p.PatternByte, p.PatternMatchPct, p.PatternLengthBit)
		if p.SignatureFound {
			s += fmt.Sprintf("  Signature: %q\n", p.Signature)
		}
	}
	for i, c := range r.Candidates {
		s += fmt.Sprintf("Candidate %d: %s (sync=0x%X)\n", i+1, c.Type, c.SyncWord)
	}
	return s
}
