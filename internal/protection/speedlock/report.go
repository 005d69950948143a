package speedlock

import "fmt"

// Report renders a human-readable summary of a detection result.
func (r Result) Report() string {
	s := fmt.Sprintf("=== Speedlock Analysis ===\nDetected: %v\nConfidence: %s\nTrack: %d, Head: %d\n",
		r.Detected, r.Confidence, r.Track, r.Head)
	s += fmt.Sprintf("Valid sequence: %v, valid position: %v, timing matches: %d\n",
		r.ValidSequence, r.ValidPosition, r.TimingMatches)
	for _, reg := range r.Regions {
		s += fmt.Sprintf("  %-6s bits[%d:%d] avg=%.1f%%\n", reg.Type, reg.StartBit, reg.EndBit, reg.AvgRatioPct)
	}
	return s
}
