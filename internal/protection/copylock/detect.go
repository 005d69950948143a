package copylock

import (
	"fmt"

	"uftcore/internal/bits"
	"uftcore/internal/dmk"
)

// BitTiming is one sample of measured timing, expressed as a percentage of
// the track's nominal bitcell (100 = nominal), indexed by the bit offset it
// was measured at. Detect consults it only at the offsets where a sync word
// was found, to check sector 4/6's deliberate timing variation.
type BitTiming struct {
	BitOffset int
	RatioPct  float64
}

func timingAt(timing []BitTiming, bitOffset int) (float64, bool) {
	for _, t := range timing {
		if t.BitOffset == bitOffset {
			return t.RatioPct, true
		}
	}
	return 0, false
}

// QuickCheck counts how many of CopyLock's 11 sync markers (either table)
// appear in data, for fast screening ahead of a full Detect.
func QuickCheck(data []byte, trackBits int) int {
	found := 0
	for _, sync := range syncStandard {
		if bits.FindSync(data, trackBits, uint32(sync), 16, 0) >= 0 {
			found++
		}
	}
	for _, sync := range syncOld {
		if bits.FindSync(data, trackBits, uint32(sync), 16, 0) >= 0 {
			found++
		}
	}
	return found
}

// Detect analyzes a single track's raw bytes for CopyLock protection: it
// locates however many of the 11 sync markers are present (in whichever
// table has more hits), checks sector 4/6 timing when timing data is
// supplied, and attempts signature/serial extraction from sector 6.
func Detect(track *dmk.Track, timing []BitTiming) Result {
	r := Result{Track: track.Cylinder, Head: track.Head}
	data := track.Raw
	trackBits := len(data) * 8
	r.TrackBits = trackBits

	standardHits := findSyncs(data, trackBits, syncStandard)
	oldHits := findSyncs(data, trackBits, syncOld)

	variant := VariantStandard
	table := syncStandard
	hits := standardHits
	if len(oldHits) > len(standardHits) {
		variant = VariantOld
		table = syncOld
		hits = oldHits
	}

	if len(hits) == 0 {
		r.Info = "no CopyLock sync markers found"
		return r
	}

	r.Variant = variant
	for sector, pos := range hits {
		if pos < 0 {
			continue
		}
		r.SyncsFound = append(r.SyncsFound, table[sector])
		st := SectorTiming{SyncWord: table[sector], BitOffset: pos, ExpectedPct: int(expectedTiming(table[sector]))}
		if ratio, ok := timingAt(timing, pos); ok {
			st.TimingRatioPct = ratio
			diff := ratio - float64(st.ExpectedPct)
			if diff < 0 {
				diff = -diff
			}
			st.TimingValid = diff < 5.0
		}
		r.Timings = append(r.Timings, st)
	}
	r.Detected = true

	timingMatches := 0
	for _, t := range r.Timings {
		if t.TimingValid {
			timingMatches++
		}
	}

	// Attempt signature/serial extraction from sector 6's sync position.
	if sigPos, ok := hits[sigSector]; ok {
		sectorStart := sigPos/8 + 2 // skip the 16-bit sync word itself
		if sectorStart+serialSpan <= len(data) {
			if serial, ok := ExtractSerial(data[sectorStart : sectorStart+serialSpan]); ok {
				r.SignatureFound = serial.SignatureValid
				copy(r.Signature[:], signature)
				r.LFSRSeed = serial.SerialNumber
				r.SeedValid = serial.SerialValid
			}
		}
	}

	switch {
	case r.SignatureFound:
		r.Confidence = ConfCertain
	case len(hits) >= 8 && timingMatches >= 1:
		r.Confidence = ConfLikely
	case len(hits) >= 3:
		r.Confidence = ConfPossible
	default:
		r.Confidence = ConfNone
		r.Detected = false
	}

	r.Info = fmt.Sprintf("CopyLock %s (%s): %d/%d syncs found, signature=%v",
		variant, r.Confidence, len(hits), syncCount, r.SignatureFound)
	return r
}

// findSyncs locates each of table's 11 sync words in data, returning a
// map from sector (0..10) to the bit offset found; sectors whose sync
// word is absent have no entry.
func findSyncs(data []byte, trackBits int, table [syncCount]uint16) map[int]int {
	out := map[int]int{}
	for i, sync := range table {
		pos := bits.FindSync(data, trackBits, uint32(sync), 16, 0)
		if pos >= 0 {
			out[i] = pos
		}
	}
	return out
}
