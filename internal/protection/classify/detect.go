package classify

import (
	"fmt"

	"uftcore/internal/dmk"
	"uftcore/internal/protection/copylock"
	"uftcore/internal/protection/longtrack"
	"uftcore/internal/protection/speedlock"
)

// MaxDetections bounds how many detections a single Analysis aggregates.
const MaxDetections = 16

// Detection is one identified protection instance on a track.
type Detection struct {
	Type            Type
	Category        Category
	Platform        Platform
	Confidence      Confidence
	Track           int
	Head            int
	Name            string
	Variant         string
	Detail          string
	RequiresTiming  bool
	RequiresFlux    bool
	Reconstructable bool
	Seed            uint32

	CopyLock   *copylock.Result
	Speedlock  *speedlock.Result
	Longtrack  *longtrack.Result
}

// Analysis is the complete outcome of classifying one track.
type Analysis struct {
	DetectedPlatform  Platform
	RequestedPlatform Platform
	Detections        []Detection
	Primary           *Detection
	IsProtected       bool
	IsStandard        bool
	AllReconstructable bool
	TracksAnalyzed    int
	TracksProtected   int
	Summary           string
}

// Context configures a classification pass; the zero value is not valid,
// use NewContext.
type Context struct {
	Platform        Platform
	QuickScan       bool
	DeepScan        bool
	StartTrack      int
	EndTrack        int // 0 = all tracks
	DetectTiming    bool
	DetectWeakBits  bool
	DetectLongtrack bool
	DetectGCR       bool
	IncludeRawData  bool
	Verbose         bool
}

// NewContext returns a Context with the original library's defaults:
// auto-detect platform, deep scan enabled, every detector category on.
func NewContext() Context {
	return Context{
		Platform:        PlatformAuto,
		DeepScan:        true,
		DetectTiming:    true,
		DetectWeakBits:  true,
		DetectLongtrack: true,
		DetectGCR:       true,
	}
}

// DetectPlatform guesses a track's disk format from byte patterns, the
// same heuristics as uft_protect_detect_platform: Amiga's 0x4489 sync in
// a 100000-120000 bit track, C64's repeated 0xFF,0xFF runs in a
// 40000-80000 bit track, Apple II's D5 AA 96 address-field prologue in a
// 48000-56000 bit track, PC's repeated 0xA1,0xA1,0xA1 sync in a
// 50000-100000 bit track.
func DetectPlatform(data []byte, trackBits int) Platform {
	if trackBits < 1000 || len(data) < 4 {
		return PlatformUnknown
	}
	n := len(data)

	if trackBits >= 100000 && trackBits <= 120000 {
		for i := 0; i < n-1; i++ {
			if data[i] == 0x44 && data[i+1] == 0x89 {
				return PlatformAmiga
			}
		}
	}

	if trackBits >= 40000 && trackBits <= 80000 {
		count := 0
		for i := 0; i < n-1; i++ {
			if data[i] == 0xFF && data[i+1] == 0xFF {
				count++
			}
		}
		if count >= 10 {
			return PlatformC64
		}
	}

	if trackBits >= 48000 && trackBits <= 56000 {
		for i := 0; i < n-2; i++ {
			if data[i] == 0xD5 && data[i+1] == 0xAA && data[i+2] == 0x96 {
				return PlatformApple2
			}
		}
	}

	if trackBits >= 50000 && trackBits <= 100000 {
		count := 0
		for i := 0; i < n-2; i++ {
			if data[i] == 0xA1 && data[i+1] == 0xA1 && data[i+2] == 0xA1 {
				count++
			}
		}
		if count >= 9 {
			return PlatformPC
		}
	}

	return PlatformUnknown
}

var longtrackToType = map[longtrack.Type]Type{
	longtrack.PROTEC:            TypeLongtrackPROTEC,
	longtrack.Protoscan:         TypeLongtrackProtoscan,
	longtrack.Tiertex:           TypeLongtrackTiertex,
	longtrack.Silmarils:         TypeLongtrackSilmarils,
	longtrack.Infogrames:        TypeLongtrackInfogrames,
	longtrack.Prolance:          TypeLongtrackProlance,
	longtrack.APP:               TypeLongtrackAPP,
	longtrack.SevenCities:       TypeLongtrackSevenCities,
	longtrack.SuperMethaneBros:  TypeLongtrackSMBGCR,
}

// detectAmiga runs every Amiga-platform detector and appends its findings
// to analysis, mirroring uft_protect_detect_amiga's sequential
// CopyLock -> Speedlock (if timing present) -> Longtrack dispatch.
func detectAmiga(track *dmk.Track, copyTiming []copylock.BitTiming, speedSamples []speedlock.TimingSample, analysis *Analysis) int {
	added := 0

	cl := copylock.Detect(track, copyTiming)
	if cl.Detected && len(analysis.Detections) < MaxDetections {
		t := TypeCopyLock
		if cl.Variant == copylock.VariantOld {
			t = TypeCopyLockOld
		}
		analysis.Detections = append(analysis.Detections, Detection{
			Type: t, Category: CatLFSREncoded, Platform: PlatformAmiga,
			Confidence: Confidence(int(cl.Confidence) * 25),
			Track: track.Cylinder, Head: track.Head,
			Name: "CopyLock", Variant: cl.Variant.String(), Detail: cl.Info,
			RequiresTiming: true, Reconstructable: cl.SeedValid, Seed: cl.LFSRSeed,
			CopyLock: &cl,
		})
		added++
	}

	if speedSamples != nil {
		sl := speedlock.Detect(track, speedSamples)
		if sl.Detected && len(analysis.Detections) < MaxDetections {
			analysis.Detections = append(analysis.Detections, Detection{
				Type: TypeSpeedlock, Category: CatVariableDensity, Platform: PlatformAmiga,
				Confidence: Confidence(int(sl.Confidence) * 25),
				Track: track.Cylinder, Head: track.Head,
				Name: "Speedlock", Detail: sl.Info,
				RequiresTiming: true, RequiresFlux: true,
				Speedlock: &sl,
			})
			added++
		}
	}

	lt := longtrack.Detect(track)
	if lt.Detected && len(analysis.Detections) < MaxDetections {
		t, ok := longtrackToType[lt.Primary.Type]
		if !ok {
			t = TypeUnknown
		}
		analysis.Detections = append(analysis.Detections, Detection{
			Type: t, Category: CatLongtrack, Platform: PlatformAmiga,
			Confidence: Confidence(int(lt.Confidence) * 25),
			Track: track.Cylinder, Head: track.Head,
			Name: lt.Primary.Type.String(), Detail: lt.Info,
			Longtrack: &lt,
		})
		added++
	}

	return added
}

// detectC64, detectApple2, detectAtariST are stubs: this module carries
// their registry entries (see Database) without working decoders, the
// same way uft_protect_detect_c64/apple2/atari_st are left as TODOs.
func detectC64(*dmk.Track, *Analysis) int    { return 0 }
func detectApple2(*dmk.Track, *Analysis) int { return 0 }
func detectAtariST(*dmk.Track, *Analysis) int { return 0 }

// Classify analyzes a single track with the detectors of one platform,
// auto-detecting the platform unless ctx pins one. Platforms without a
// dispatcher of their own (Unknown, PC) get the Amiga detectors.
func Classify(track *dmk.Track, copyTiming []copylock.BitTiming, speedSamples []speedlock.TimingSample, ctx Context) Analysis {
	a := Analysis{RequestedPlatform: ctx.Platform}

	data := track.Raw
	trackBits := len(data) * 8

	if ctx.Platform == PlatformAuto {
		a.DetectedPlatform = DetectPlatform(data, trackBits)
	} else {
		a.DetectedPlatform = ctx.Platform
	}

	switch a.DetectedPlatform {
	case PlatformAmiga:
		detectAmiga(track, copyTiming, speedSamples, &a)
	case PlatformC64:
		detectC64(track, &a)
	case PlatformApple2:
		detectApple2(track, &a)
	case PlatformAtariST:
		detectAtariST(track, &a)
	default:
		detectAmiga(track, copyTiming, speedSamples, &a)
	}

	a.TracksAnalyzed = 1
	a.IsProtected = len(a.Detections) > 0
	a.IsStandard = !a.IsProtected

	if a.IsProtected {
		best := &a.Detections[0]
		for i := range a.Detections {
			if a.Detections[i].Confidence > best.Confidence {
				best = &a.Detections[i]
			}
		}
		a.Primary = best
		a.TracksProtected = 1

		a.AllReconstructable = true
		for _, d := range a.Detections {
			if !d.Reconstructable {
				a.AllReconstructable = false
				break
			}
		}

		a.Summary = fmt.Sprintf("%d protection(s) detected on track %d/%d: %s",
			len(a.Detections), track.Cylinder, track.Head, best.Name)
	} else {
		a.Summary = fmt.Sprintf("No protection detected on track %d/%d", track.Cylinder, track.Head)
	}

	return a
}
