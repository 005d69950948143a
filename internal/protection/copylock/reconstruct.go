package copylock

import "uftcore/internal/errs"

// ReconParams describes a track reconstruction request from a recovered
// LFSR seed.
type ReconParams struct {
	Seed          uint32
	Variant       Variant
	IncludeTiming bool
}

// sectorPayload is the number of LFSR-generated data bytes per sector body;
// the original protection fills each sector with raw LFSR output rather
// than a fixed-format payload.
const sectorPayload = 512

// ReconBufferSize returns the byte size a reconstructed track needs: 11
// sectors of LFSR payload plus their sync words.
func ReconBufferSize(v Variant) int {
	return syncCount * (2 + sectorPayload)
}

// ReconResult is what Reconstruct produces: the track bytes, plus the
// per-sector bit-cell timing annotation a flux writer needs to reproduce
// CopyLock's variable-density sectors (95%/100%/105%), when requested.
type ReconResult struct {
	Data    []byte
	Timings []SectorTiming // nil unless ReconParams.IncludeTiming was set
}

// Reconstruct regenerates a complete CopyLock track from an LFSR seed: each
// of the 11 sectors is the sync word from the variant's table followed by
// sectorPayload bytes of continuing LFSR output. When params.IncludeTiming
// is set, it also returns each sector's expected bit-cell timing ratio
// (sector 4 at 95%, sector 6 at 105%, the rest at 100%) so a flux writer
// can reproduce the variable-density encoding, not just the payload bytes.
func Reconstruct(params ReconParams) (ReconResult, error) {
	if params.Seed > lfsrMask {
		return ReconResult{}, errs.New(errs.InvalidInput, "seed %#x exceeds 23-bit LFSR range", params.Seed)
	}
	table := syncTableFor(params.Variant)
	lfsr := NewLFSR(params.Seed)

	out := make([]byte, 0, ReconBufferSize(params.Variant))
	var timings []SectorTiming
	if params.IncludeTiming {
		timings = make([]SectorTiming, 0, syncCount)
	}
	for _, sync := range table {
		bitOffset := len(out) * 8
		out = append(out, byte(sync>>8), byte(sync))
		out = append(out, lfsr.Generate(sectorPayload)...)
		if params.IncludeTiming {
			timings = append(timings, SectorTiming{
				SyncWord:       sync,
				BitOffset:      bitOffset,
				TimingRatioPct: float64(expectedTiming(sync)),
				TimingValid:    true,
				ExpectedPct:    int(expectedTiming(sync)),
			})
		}
	}
	return ReconResult{Data: out, Timings: timings}, nil
}

// VerifySeed reconstructs a track from seed and reports whether it matches
// original byte for byte.
func VerifySeed(params ReconParams, original []byte) bool {
	rebuilt, err := Reconstruct(params)
	if err != nil || len(rebuilt.Data) != len(original) {
		return false
	}
	for i := range rebuilt.Data {
		if rebuilt.Data[i] != original[i] {
			return false
		}
	}
	return true
}
