// Package flux implements the PLL-free, clocked shift-register decoder
// that turns a stream of raw flux-transition intervals (device ticks
// between adjacent magnetic transitions) into a decoded MFM/FM byte
// stream, plus the pipeline that assembles that byte stream into a DMK
// track using the histogram and dmk packages.
//
// The decoder is single-threaded and incremental by design (see spec
// Design Notes): feed one interval, optionally receive zero or more
// produced bytes. This is what lets a caller merge revolutions or bail
// out early instead of committing to a whole-track decode up front.
package flux

import (
	"math"

	"uftcore/internal/errs"
	"uftcore/internal/histogram"
)

// Encoding selects which self-clocking scheme produced the flux stream.
type Encoding int

const (
	FM Encoding = iota
	MFM
	RX02 // DEC RX02: MFM clocking with double-density data marks
)

// mfmSyncPattern16 is the 16-bit decoded value of the clock-violated MFM
// sync cell pattern (data byte 0xA1 with a deliberately missing clock bit)
// that every IDAM/DAM is preceded by. It can never occur from legally
// MFM-encoded data, which is exactly why hardware uses it to re-align a
// PLL-free decoder to byte boundaries.
const mfmSyncPattern16 = 0x4489

// fmSyncPattern16 is this decoder's FM equivalent: a single reserved
// 16-bit cell pattern marking an address-mark boundary. FM has no
// separate clock/data decimation step, so this plays the same
// byte-alignment role mfmSyncPattern16 plays for MFM.
const fmSyncPattern16 = 0xF77A

// syncDecodedByte is the literal byte value the DMK assembler expects to
// see for every detected MFM/RX02 sync cell: three of these always precede
// an IDAM or DAM mark byte in the decoded stream.
const syncDecodedByte = 0xA1

const shiftRegMask = (1 << 48) - 1

// Thresholds are the valley-derived cell-boundary thresholds from
// histogram.Analysis, in device ticks.
type Thresholds struct {
	T0 float64
	T1 float64 // unused for FM
}

// Config parameterizes one decode pass.
type Config struct {
	Encoding       Encoding
	CellTicks      float64 // nominal single-cell duration, used for post-compensation
	Thresholds     Thresholds
	PostCompFactor float64 // typical 0.5; 0 disables post-compensation
}

// Decoder is one incremental flux-to-bytes decode pass. One instance
// covers exactly one track decode, per spec's Flux-decoder-state lifetime.
type Decoder struct {
	cfg Config

	shiftReg         uint64
	synced           bool
	rawBitsSinceSync int
	dataAcc          byte
	dataBitCount     int

	// Stats, exposed for the pipeline's revolution-merge heuristic.
	BytesProduced int
	SyncCount     int
}

// ConfigFromAnalysis builds a decode Config from a histogram.Analysis,
// the normal way a caller wires the two packages together: bucket a
// track's flux samples, analyze the peaks, then decode with the
// thresholds that analysis found.
func ConfigFromAnalysis(a histogram.Analysis, ticksPerBucket float64) (Config, error) {
	var cfg Config
	switch a.Encoding {
	case histogram.FM:
		cfg.Encoding = FM
		if len(a.Thresholds) < 1 {
			return Config{}, errs.New(errs.InvalidInput, "FM analysis missing threshold")
		}
		cfg.Thresholds = Thresholds{T0: a.Thresholds[0]}
		cfg.CellTicks = a.Thresholds[0] / 1.5 // short pulse ~= 1 cell, long ~= 2
	case histogram.MFM:
		cfg.Encoding = MFM
		if len(a.Thresholds) < 2 {
			return Config{}, errs.New(errs.InvalidInput, "MFM analysis missing thresholds")
		}
		cfg.Thresholds = Thresholds{T0: a.Thresholds[0], T1: a.Thresholds[1]}
		cfg.CellTicks = a.Thresholds[0] / 2.5 // shortest (2-cell) peak / 2.5
	default:
		return Config{}, errs.New(errs.InvalidInput, "cannot decode: unresolved encoding")
	}
	cfg.PostCompFactor = 0.5
	return cfg, nil
}

// NewDecoder builds a decoder for one track pass. cfg is used as given; a
// zero PostCompFactor leaves post-compensation off.
func NewDecoder(cfg Config) *Decoder {
	return &Decoder{cfg: cfg}
}

// PostCompensate pushes an incoming interval toward the nearest expected
// cell boundary, counteracting magnetic interaction between adjacent
// transitions (bit-shift / peak-shift effects).
func PostCompensate(intervalTicks, cellTicks, factor float64) float64 {
	if cellTicks <= 0 || factor == 0 {
		return intervalTicks
	}
	nearest := math.Round(intervalTicks/cellTicks) * cellTicks
	return intervalTicks - factor*(intervalTicks-nearest)
}

// cellsForInterval classifies a (post-compensated) interval into a cell
// count using the single FM threshold or the two MFM/RX02 thresholds.
func (d *Decoder) cellsForInterval(ticks float64) int {
	th := d.cfg.Thresholds
	switch d.cfg.Encoding {
	case FM:
		if ticks < th.T0 {
			return 1
		}
		return 2
	default: // MFM, RX02
		switch {
		case ticks < th.T0:
			return 2
		case ticks < th.T1:
			return 3
		default:
			return 4
		}
	}
}

// Feed consumes one flux interval (in device ticks) and returns zero or
// more decoded bytes produced as a result.
//
// FM and MFM/RX02 map intervals to bits differently. FM has one flux pulse
// per data bit (short pulse = 1, long pulse = 0), so one interval yields
// exactly one raw bit. MFM interleaves a clock bit between every data bit,
// so an interval spans 2-4 half-bit cells and the data bit only falls out
// after decimating clock positions away in shiftBit.
func (d *Decoder) Feed(intervalTicks uint32) []byte {
	corrected := PostCompensate(float64(intervalTicks), d.cfg.CellTicks, d.cfg.PostCompFactor)
	cells := d.cellsForInterval(corrected)

	if d.cfg.Encoding == FM {
		bit := 0
		if cells == 1 {
			bit = 1
		}
		return d.shiftBit(bit)
	}

	var out []byte
	for i := 0; i < cells-1; i++ {
		out = append(out, d.shiftBit(0)...)
	}
	out = append(out, d.shiftBit(1)...)
	return out
}

func (d *Decoder) syncPattern() uint64 {
	if d.cfg.Encoding == FM {
		return fmSyncPattern16
	}
	return mfmSyncPattern16
}

func (d *Decoder) shiftBit(bit int) []byte {
	d.shiftReg = ((d.shiftReg << 1) | uint64(bit)) & shiftRegMask

	if d.shiftReg&0xFFFF == d.syncPattern() {
		d.synced = true
		d.rawBitsSinceSync = 0
		d.dataAcc = 0
		d.dataBitCount = 0
		d.SyncCount++
		if d.cfg.Encoding == FM {
			// FM tracks carry no 0xA1 preamble; the match only re-aligns.
			return nil
		}
		d.BytesProduced++
		return []byte{syncDecodedByte}
	}

	if !d.synced {
		return nil
	}

	d.rawBitsSinceSync++

	isDataBit := true
	if d.cfg.Encoding != FM {
		// Bits alternate clock,data,clock,data,... starting with a clock
		// bit immediately after a sync match.
		isDataBit = d.rawBitsSinceSync%2 == 0
	}
	if !isDataBit {
		return nil
	}

	d.dataAcc = (d.dataAcc << 1) | byte(bit)
	d.dataBitCount++
	if d.dataBitCount < 8 {
		return nil
	}
	b := d.dataAcc
	d.dataAcc = 0
	d.dataBitCount = 0
	d.BytesProduced++
	return []byte{b}
}
