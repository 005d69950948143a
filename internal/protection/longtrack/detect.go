package longtrack

import (
	"fmt"

	"uftcore/internal/bits"
	"uftcore/internal/dmk"
)

const patternAnalyzeMaxBytes = 1000

// byteHistogram finds the most frequent byte value in data and what
// fraction of data it accounts for.
func byteHistogram(data []byte) (dominant byte, homogeneityPct float64) {
	if len(data) == 0 {
		return 0, 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	maxCount := 0
	for v, c := range counts {
		if c > maxCount {
			maxCount = c
			dominant = byte(v)
		}
	}
	return dominant, float64(maxCount) / float64(len(data)) * 100
}

// analyzePattern finds the dominant fill byte starting at startBit and how
// well it matches across the analyzed window (capped at
// patternAnalyzeMaxBytes, as the original implementation does).
func analyzePattern(data []byte, startBit int) (pattern byte, matchPct float64, runBits int) {
	startByte := startBit / 8
	if startByte >= len(data) {
		return 0, 0, 0
	}
	window := data[startByte:]
	if len(window) > patternAnalyzeMaxBytes {
		window = window[:patternAnalyzeMaxBytes]
	}
	dominant, match := byteHistogram(window)

	run, best := 0, 0
	for _, b := range window {
		if b == dominant {
			run++
			if run > best {
				best = run
			}
		} else if run <= 100 {
			run = 0
		} else {
			break
		}
	}
	return dominant, match, best * 8
}

func findSync16(data []byte, trackBits int, sync uint16) int {
	return bits.FindSync(data, trackBits, uint32(sync), 16, 0)
}

func findSync32(data []byte, trackBits int, sync uint32) int {
	return bits.FindSync(data, trackBits, sync, 32, 0)
}

func containsSignature(data []byte, fromBit int, sig string) bool {
	start := fromBit / 8
	end := start + 256
	if end > len(data)-len(sig) {
		end = len(data) - len(sig)
	}
	for i := start; i < end; i++ {
		if i < 0 || i+len(sig) > len(data) {
			continue
		}
		if string(data[i:i+len(sig)]) == sig {
			return true
		}
	}
	return false
}

func baseInfo(def Def, trackBits, syncOffset int, pattern byte, matchPct float64, runBits int) Info {
	return Info{
		Type:             def.Type,
		SyncWord:         def.SyncWord,
		SyncOffset:       syncOffset,
		MinTrackBits:     def.MinBits,
		ActualTrackBits:  trackBits,
		LengthRatio:      float64(trackBits) / AmigaNormalBits,
		PatternByte:      pattern,
		PatternStart:     syncOffset + 16,
		PatternLengthBit: runBits,
		PatternMatchPct:  matchPct,
	}
}

func detectPROTEC(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(PROTEC)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	pos := findSync16(data, trackBits, uint16(def.SyncWord))
	if pos < 0 {
		return Info{}, false
	}
	pattern, match, run := analyzePattern(data, pos+16)
	return baseInfo(def, trackBits, pos, pattern, match, run), true
}

func detectSilmarils(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(Silmarils)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	pos := findSync16(data, trackBits, uint16(def.SyncWord))
	if pos < 0 {
		return Info{}, false
	}
	if !containsSignature(data, pos, def.Signature) {
		return Info{}, false // signature required for Silmarils
	}
	pattern, match, run := analyzePattern(data, pos+16)
	info := baseInfo(def, trackBits, pos, pattern, match, run)
	info.SignatureFound = true
	info.Signature = def.Signature
	return info, true
}

func detectInfogrames(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(Infogrames)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	pos := findSync16(data, trackBits, uint16(def.SyncWord))
	if pos < 0 {
		return Info{}, false
	}
	// Shares Silmarils' sync word; must confirm the signature is ABSENT.
	if containsSignature(data, pos, "ROD0") {
		return Info{}, false
	}
	pattern, match, run := analyzePattern(data, pos+16)
	return baseInfo(def, trackBits, pos, pattern, match, run), true
}

func detectAPP(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(APP)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	pos := findSync16(data, trackBits, uint16(def.SyncWord))
	if pos < 0 {
		return Info{}, false
	}
	pattern, match, run := analyzePattern(data, pos+16)
	if pattern != def.PatternByte && match < 50.0 {
		return Info{}, false
	}
	return baseInfo(def, trackBits, pos, pattern, match, run), true
}

func detectProlance(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(Prolance)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	pos := findSync16(data, trackBits, uint16(def.SyncWord))
	if pos < 0 {
		return Info{}, false
	}
	pattern, match, run := analyzePattern(data, pos+16)
	return baseInfo(def, trackBits, pos, pattern, match, run), true
}

func detectTiertex(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(Tiertex)
	if trackBits < def.MinBits || trackBits > def.MaxBits {
		return Info{}, false
	}
	pos := findSync32(data, trackBits, def.SyncWord)
	if pos < 0 {
		return Info{}, false
	}
	pattern, match, run := analyzePattern(data, pos+32)
	info := baseInfo(def, trackBits, pos, pattern, match, run)
	info.PatternStart = pos + 32
	return info, true
}

func detectProtoscan(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(Protoscan)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	pos := findSync32(data, trackBits, def.SyncWord)
	if pos < 0 {
		return Info{}, false
	}
	pattern, match, run := analyzePattern(data, pos+32)
	if pattern != 0x00 || match < 70.0 {
		return Info{}, false
	}
	info := baseInfo(def, trackBits, pos, pattern, match, run)
	info.PatternStart = pos + 32
	return info, true
}

func detectSevenCities(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(SevenCities)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	syncWord := def.SyncWord
	pos := findSync16(data, trackBits, uint16(syncWord))
	if pos < 0 && def.SyncWordAlt != 0 {
		pos = findSync16(data, trackBits, uint16(def.SyncWordAlt))
		syncWord = def.SyncWordAlt
	}
	if pos < 0 {
		return Info{}, false
	}
	pattern, match, run := analyzePattern(data, pos+16)
	info := baseInfo(def, trackBits, pos, pattern, match, run)
	info.SyncWord = syncWord
	return info, true
}

func detectSuperMethaneBros(data []byte, trackBits int) (Info, bool) {
	def, _ := DefFor(SuperMethaneBros)
	if trackBits < def.MinBits {
		return Info{}, false
	}
	pos := findSync32(data, trackBits, def.SyncWord)
	if pos < 0 {
		return Info{}, false
	}
	return Info{
		Type:            SuperMethaneBros,
		SyncWord:        def.SyncWord,
		SyncOffset:      pos,
		MinTrackBits:    def.MinBits,
		ActualTrackBits: trackBits,
		LengthRatio:     float64(trackBits) / (AmigaNormalBits / 2),
		PatternByte:     0xFF,
		PatternStart:    pos + 32,
	}, true
}

type detectorFn func(data []byte, trackBits int) (Info, bool)

// detectorOrder is the priority-ordered detector list: Silmarils must run
// before Infogrames since both match sync word 0xA144 and Infogrames must
// verify the signature is absent; Tiertex must run before Protoscan since
// both match sync word 0x41244124 but Tiertex has a narrower length range.
var detectorOrder = []detectorFn{
	detectPROTEC,
	detectSilmarils,
	detectInfogrames,
	detectAPP,
	detectProlance,
	detectTiertex,
	detectProtoscan,
	detectSevenCities,
	detectSuperMethaneBros,
}

// Detect analyzes a single track for longtrack protection: it runs every
// named detector in priority order, each checking the track length
// against its own definition's range, taking the first match as primary
// and up to three further matches as candidates. If nothing named
// matches and the track is long (IsLong), it falls back to
// Empty/Zeroes/Unknown based on byte homogeneity; a track that is not
// long and matches nothing named is not detected.
func Detect(track *dmk.Track) Result {
	data := track.Raw
	trackBits := len(data) * 8
	r := Result{Track: track.Cylinder, Head: track.Head, TrackBits: trackBits}

	r.DominantByte, r.Homogeneity = byteHistogram(data)

	for _, detector := range detectorOrder {
		info, ok := detector(data, trackBits)
		if !ok {
			continue
		}
		if !r.Detected {
			r.Detected = true
			r.Primary = info
			switch {
			case info.SignatureFound:
				r.Confidence = ConfCertain
			case info.PatternMatchPct > 80.0:
				r.Confidence = ConfCertain
			case info.SyncOffset >= 0:
				r.Confidence = ConfLikely
			default:
				r.Confidence = ConfPossible
			}
		} else if len(r.Candidates) < 3 {
			r.Candidates = append(r.Candidates, info)
		}
	}

	if !r.Detected {
		if !IsLong(trackBits) {
			r.Info = fmt.Sprintf("no longtrack variant matched; track is not long (%d bits)", trackBits)
			return r
		}
		r.Detected = true
		r.Confidence = ConfPossible
		switch {
		case r.DominantByte == 0xFF && r.Homogeneity > 90.0:
			r.Primary.Type = Empty
		case r.DominantByte == 0x00 && r.Homogeneity > 90.0:
			r.Primary.Type = Zeroes
		default:
			r.Primary.Type = Unknown
		}
		r.Primary.ActualTrackBits = trackBits
		r.Primary.LengthRatio = float64(trackBits) / AmigaNormalBits
		r.Primary.PatternByte = r.DominantByte
		r.Primary.PatternMatchPct = r.Homogeneity
		r.Primary.SyncOffset = -1
	}

	r.Info = fmt.Sprintf("%s longtrack: %d bits (%.1f%%), sync=0x%X, pattern=0x%02X (%.1f%%)",
		r.Primary.Type, trackBits, r.Primary.LengthRatio*100, r.Primary.SyncWord,
		r.Primary.PatternByte, r.Primary.PatternMatchPct)
	return r
}
