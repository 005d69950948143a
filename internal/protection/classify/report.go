package classify

import (
	"encoding/json"
	"fmt"
)

func (c Confidence) String() string {
	switch {
	case c >= ConfCertain:
		return "Certain"
	case c >= ConfProbable:
		return "Probable"
	case c >= ConfLikely:
		return "Likely"
	case c >= ConfPossible:
		return "Possible"
	default:
		return "Not Detected"
	}
}

// Report renders a human-readable summary of an analysis result.
func (a Analysis) Report() string {
	s := fmt.Sprintf("=== Protection Analysis ===\nPlatform: %s (requested: %s)\nProtected: %v\n%s\n\n",
		a.DetectedPlatform, a.RequestedPlatform, a.IsProtected, a.Summary)
	for i, d := range a.Detections {
		s += fmt.Sprintf("Detection %d: %s [%s] confidence=%s\n  %s\n",
			i+1, d.Name, d.Variant, d.Confidence, d.Detail)
	}
	if a.IsProtected {
		s += fmt.Sprintf("\nAll reconstructable: %v\n", a.AllReconstructable)
	}
	return s
}

// Text is an alias for Report, named to match the other serialization
// entry point below.
func (a Analysis) Text() string {
	return a.Report()
}

// JSON serializes the analysis, CopyLock/Speedlock/Longtrack sub-results
// included, for callers that want machine-readable output instead of Text.
func (a Analysis) JSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Report renders a single detection in isolation.
func (d Detection) Report() string {
	return fmt.Sprintf("%s (%s) on track %d/%d: confidence=%s requires_timing=%v requires_flux=%v reconstructable=%v\n  %s",
		d.Name, d.Variant, d.Track, d.Head, d.Confidence, d.RequiresTiming, d.RequiresFlux, d.Reconstructable, d.Detail)
}
