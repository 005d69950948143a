// Package classify provides the unified, platform-spanning entry point
// over the individual protection detectors: it auto-detects a track's
// platform from byte patterns, dispatches to the relevant detector(s),
// and aggregates their results into one report. Grounded on
// uft_protection_classify.h/.c.
package classify

// Platform identifies the disk format family a track belongs to.
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformAmiga
	PlatformC64
	PlatformApple2
	PlatformAtariST
	PlatformAtari8bit
	PlatformPC
	PlatformBBC
	PlatformMSX
	PlatformSpectrum
	PlatformCPC
	PlatformAuto
)

func (p Platform) String() string {
	switch p {
	case PlatformAmiga:
		return "Amiga"
	case PlatformC64:
		return "C64"
	case PlatformApple2:
		return "Apple II"
	case PlatformAtariST:
		return "Atari ST"
	case PlatformAtari8bit:
		return "Atari 8-bit"
	case PlatformPC:
		return "PC"
	case PlatformBBC:
		return "BBC Micro"
	case PlatformMSX:
		return "MSX"
	case PlatformSpectrum:
		return "ZX Spectrum"
	case PlatformCPC:
		return "Amstrad CPC"
	case PlatformAuto:
		return "Auto"
	default:
		return "Unknown"
	}
}

// Category groups protection types by detection/encoding technique.
type Category int

const (
	CatNone Category = iota
	CatVariableDensity
	CatTimingSensitive
	CatLongtrack
	CatShorttrack
	CatHalftrack
	CatExtraTracks
	CatLFSREncoded
	CatEncrypted
	CatSignature
	CatCustomSync
	CatCustomFormat
	CatInvalidData
	CatWeakBits
	CatNoFlux
	CatGCRTiming
	CatGCRInvalid
	CatFatTrack
	CatMultiTechnique
)

// Type is the full protection-type taxonomy across every supported
// platform.
type Type int

const (
	TypeUnknown Type = iota
	// Amiga
	TypeCopyLock
	TypeCopyLockOld
	TypeSpeedlock
	TypeLongtrackPROTEC
	TypeLongtrackProtoscan
	TypeLongtrackTiertex
	TypeLongtrackSilmarils
	TypeLongtrackInfogrames
	TypeLongtrackProlance
	TypeLongtrackAPP
	TypeLongtrackSevenCities
	TypeLongtrackSMBGCR
	// C64
	TypeVMaxV1
	TypeVMaxV2
	TypeVMaxV3
	TypeRapidLokV1
	TypeRapidLokV2
	TypeRapidLokV3
	TypeRapidLokV4
	TypeVorpal
	TypePirateSlayer
	TypeTimeload
	TypeFatTrack
	// Apple II
	TypeAppleSpiralDOS
	TypeAppleNibbleCount
	TypeAppleHalftrack
	TypeAppleTiming
	// Atari ST
	TypeCopyLockST
	TypeMacroDOS
	TypeFuzzyBits
	// PC
	TypeWeakSector
	TypeLongSector
	TypeDuplicateSector
)

// Confidence is expressed as a percentage (0-100), matching the original
// API's scaling of its four-step ladder by 25.
type Confidence int

const (
	ConfNone     Confidence = 0
	ConfPossible Confidence = 25
	ConfLikely   Confidence = 50
	ConfProbable Confidence = 75
	ConfCertain  Confidence = 100
)

// DBEntry is one static registry entry describing a known protection
// scheme: its category, platform, era, and reconstructability, whether or
// not this module has a working detector for it.
type DBEntry struct {
	Type            Type
	Name            string
	Publisher       string
	Description     string
	Category        Category
	Platform        Platform
	YearIntroduced  int
	RequiresTiming  bool
	RequiresFlux    bool
	Reconstructable bool
}

// Database is the static protection registry. Amiga entries have working
// detectors (copylock/speedlock/longtrack); the rest are named-but-stub
// entries awaiting platform-specific decoders, as the original leaves
// uft_protect_detect_c64/apple2/atari_st as TODO stubs.
var Database = []DBEntry{
	{Type: TypeCopyLock, Name: "CopyLock", Publisher: "Rob Northen Computing",
		Description: "LFSR-based protection with 11 sync markers and timing variations",
		Category: CatLFSREncoded, Platform: PlatformAmiga, YearIntroduced: 1988,
		RequiresTiming: true, Reconstructable: true},
	{Type: TypeCopyLockOld, Name: "CopyLock (Old)", Publisher: "Rob Northen Computing",
		Description: "Early CopyLock variant with 0x65xx sync patterns",
		Category: CatLFSREncoded, Platform: PlatformAmiga, YearIntroduced: 1987,
		RequiresTiming: true, Reconstructable: true},
	{Type: TypeSpeedlock, Name: "Speedlock", Publisher: "Speedlock Associates",
		Description: "Variable-density protection with long/short bitcell regions",
		Category: CatVariableDensity, Platform: PlatformAmiga, YearIntroduced: 1989,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeLongtrackPROTEC, Name: "PROTEC Longtrack", Publisher: "Various",
		Description: "Extended track length with 0x4454 sync",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1989},
	{Type: TypeLongtrackProtoscan, Name: "Protoscan", Publisher: "Magnetic Fields",
		Description: "Longtrack protection used in Lotus series",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1990},
	{Type: TypeLongtrackTiertex, Name: "Tiertex", Publisher: "Tiertex",
		Description: "Longtrack protection used in Strider II",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1990},
	{Type: TypeLongtrackSilmarils, Name: "Silmarils", Publisher: "Silmarils",
		Description: "French publisher longtrack with ROD0 signature",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1989},
	{Type: TypeLongtrackInfogrames, Name: "Infogrames", Publisher: "Infogrames",
		Description: "Infogrames longtrack protection",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1988},
	{Type: TypeLongtrackProlance, Name: "Prolance", Publisher: "Ubisoft",
		Description: "Longtrack protection used in B.A.T.",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1990},
	{Type: TypeLongtrackAPP, Name: "APP", Publisher: "Amiga Power Pack",
		Description: "Amiga Power Pack longtrack protection",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1991},
	{Type: TypeLongtrackSevenCities, Name: "Seven Cities", Publisher: "Electronic Arts",
		Description: "Seven Cities of Gold longtrack protection",
		Category: CatLongtrack, Platform: PlatformAmiga, YearIntroduced: 1989},
	{Type: TypeLongtrackSMBGCR, Name: "Super Methane Bros (GCR)", Publisher: "Llamasoft",
		Description: "GCR-encoded longtrack used in Super Methane Brothers",
		Category: CatGCRTiming, Platform: PlatformAmiga, YearIntroduced: 1991},

	{Type: TypeVMaxV1, Name: "V-MAX! v1", Publisher: "Vorpal",
		Description: "V-MAX! copy protection version 1",
		Category: CatGCRTiming, Platform: PlatformC64, YearIntroduced: 1986,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeVMaxV2, Name: "V-MAX! v2", Publisher: "Vorpal",
		Description: "V-MAX! copy protection version 2",
		Category: CatGCRTiming, Platform: PlatformC64, YearIntroduced: 1987,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeVMaxV3, Name: "V-MAX! v3", Publisher: "Vorpal",
		Description: "V-MAX! copy protection version 3",
		Category: CatGCRTiming, Platform: PlatformC64, YearIntroduced: 1988,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeRapidLokV1, Name: "RapidLok v1", Publisher: "Rapidlok Systems",
		Description: "RapidLok copy protection version 1",
		Category: CatGCRTiming, Platform: PlatformC64, YearIntroduced: 1985,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeRapidLokV2, Name: "RapidLok v2", Publisher: "Rapidlok Systems",
		Description: "RapidLok copy protection version 2",
		Category: CatGCRTiming, Platform: PlatformC64, YearIntroduced: 1986,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeRapidLokV3, Name: "RapidLok v3", Publisher: "Rapidlok Systems",
		Description: "RapidLok copy protection version 3",
		Category: CatGCRTiming, Platform: PlatformC64, YearIntroduced: 1987,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeRapidLokV4, Name: "RapidLok v4", Publisher: "Rapidlok Systems",
		Description: "RapidLok copy protection version 4",
		Category: CatGCRTiming, Platform: PlatformC64, YearIntroduced: 1988,
		RequiresTiming: true, RequiresFlux: true},
	{Type: TypeVorpal, Name: "Vorpal", Publisher: "Microsmith",
		Description: "Vorpal fast loader with protection",
		Category: CatCustomFormat, Platform: PlatformC64, YearIntroduced: 1984},
	{Type: TypePirateSlayer, Name: "PirateSlayer", Publisher: "Various",
		Description: "PirateSlayer copy protection",
		Category: CatCustomSync, Platform: PlatformC64, YearIntroduced: 1986,
		RequiresTiming: true},
	{Type: TypeTimeload, Name: "Timeload", Publisher: "Various",
		Description: "Timing-sensitive loader protection",
		Category: CatTimingSensitive, Platform: PlatformC64, YearIntroduced: 1985,
		RequiresTiming: true},
	{Type: TypeFatTrack, Name: "FatTrack", Publisher: "Various",
		Description: "Oversized track-width protection",
		Category: CatFatTrack, Platform: PlatformC64, YearIntroduced: 1987},

	{Type: TypeAppleSpiralDOS, Name: "Spiral DOS", Publisher: "Various",
		Description: "Non-standard sector interleaving",
		Category: CatCustomFormat, Platform: PlatformApple2, YearIntroduced: 1982},
	{Type: TypeAppleNibbleCount, Name: "Nibble Count", Publisher: "Various",
		Description: "Protection relying on an exact nibble count per track",
		Category: CatCustomFormat, Platform: PlatformApple2, YearIntroduced: 1983},
	{Type: TypeAppleHalftrack, Name: "Half-Track", Publisher: "Various",
		Description: "Data on half-tracks between standard tracks",
		Category: CatHalftrack, Platform: PlatformApple2, YearIntroduced: 1983,
		RequiresFlux: true},
	{Type: TypeAppleTiming, Name: "Timing", Publisher: "Various",
		Description: "Apple II timing-sensitive protection",
		Category: CatTimingSensitive, Platform: PlatformApple2, YearIntroduced: 1984,
		RequiresTiming: true},

	{Type: TypeCopyLockST, Name: "CopyLock ST", Publisher: "Rob Northen Computing",
		Description: "CopyLock adapted for Atari ST",
		Category: CatLFSREncoded, Platform: PlatformAtariST, YearIntroduced: 1988,
		RequiresTiming: true, Reconstructable: true},
	{Type: TypeMacroDOS, Name: "MacroDOS", Publisher: "Various",
		Description: "Custom sector layout protection for Atari ST",
		Category: CatCustomFormat, Platform: PlatformAtariST, YearIntroduced: 1989},
	{Type: TypeFuzzyBits, Name: "Fuzzy Bits", Publisher: "Various",
		Description: "Intentionally weak/fuzzy bits",
		Category: CatWeakBits, Platform: PlatformAtariST, YearIntroduced: 1988,
		RequiresFlux: true},

	{Type: TypeWeakSector, Name: "Weak Sector", Publisher: "Various",
		Description: "Sector with intentionally weak data",
		Category: CatWeakBits, Platform: PlatformPC, YearIntroduced: 1985,
		RequiresFlux: true},
	{Type: TypeLongSector, Name: "Long Sector", Publisher: "Various",
		Description: "Sector formatted with extra data bytes",
		Category: CatLongtrack, Platform: PlatformPC, YearIntroduced: 1986},
	{Type: TypeDuplicateSector, Name: "Duplicate Sector", Publisher: "Various",
		Description: "Multiple sectors sharing the same sector ID",
		Category: CatCustomFormat, Platform: PlatformPC, YearIntroduced: 1986},
}

var dbByType = func() map[Type]DBEntry {
	m := make(map[Type]DBEntry, len(Database))
	for _, e := range Database {
		m[e.Type] = e
	}
	return m
}()

// Lookup finds a protection's database entry.
func Lookup(t Type) (DBEntry, bool) {
	e, ok := dbByType[t]
	return e, ok
}
