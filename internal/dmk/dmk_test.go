package dmk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S5: DMK header bytes 00 28 00 19 10 00 00 00 00 00 00 00 00 00 00 00
// (40 tracks, track length 0x1900, single-sided) is accepted.
func TestParseHeader_S5(t *testing.T) {
	raw := []byte{0x00, 0x28, 0x00, 0x19, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	h, err := ParseHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, 40, h.NumTracks)
	assert.Equal(t, 0x1900, h.TrackLength)
	assert.Equal(t, 1, h.Heads())
	assert.False(t, h.SingleDensity)
	assert.False(t, h.WriteProtected)
}

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{WriteProtected: true, NumTracks: 35, TrackLength: 0x1900, SingleSided: true, Quirks: 0x02, NativeMagic: 0x12345678}
	raw := h.Bytes()
	got, err := ParseHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestWriteTrack_ExtractRoundTrip_MFM(t *testing.T) {
	trackLen := DefaultTrackLength(true, true)
	var specs []SectorSpec
	for n := byte(1); n <= 9; n++ {
		data := make([]byte, 256)
		for i := range data {
			data[i] = byte(int(n)*7 + i)
		}
		specs = append(specs, SectorSpec{Cylinder: 0, Head: 0, Number: n, SizeCode: 1, Encoding: MFM, Data: data})
	}
	block, err := WriteTrack(specs, trackLen)
	require.NoError(t, err)
	require.Len(t, block, trackLen)

	sectors, err := ExtractSectors(block, false, false)
	require.NoError(t, err)
	require.Len(t, sectors, len(specs))
	for i, sec := range sectors {
		assert.True(t, sec.IDCRCValid, "sector %d id crc", i)
		assert.True(t, sec.DataCRCValid, "sector %d data crc", i)
		assert.Equal(t, specs[i].Data, sec.Data)
		assert.Equal(t, specs[i].Number, sec.Number)
		assert.False(t, sec.Deleted)
	}
}

func TestWriteTrack_DeletedSectorFlag(t *testing.T) {
	trackLen := DefaultTrackLength(true, true)
	specs := []SectorSpec{{Cylinder: 1, Head: 0, Number: 1, SizeCode: 1, Encoding: MFM, Deleted: true, Data: make([]byte, 256)}}
	block, err := WriteTrack(specs, trackLen)
	require.NoError(t, err)
	sectors, err := ExtractSectors(block, false, false)
	require.NoError(t, err)
	require.Len(t, sectors, 1)
	assert.True(t, sectors[0].Deleted)
}

func TestExtractSectors_CorruptedDataCRC(t *testing.T) {
	trackLen := DefaultTrackLength(true, true)
	specs := []SectorSpec{{Cylinder: 0, Head: 0, Number: 1, SizeCode: 1, Encoding: MFM, Data: make([]byte, 256)}}
	block, err := WriteTrack(specs, trackLen)
	require.NoError(t, err)

	sectors, err := ExtractSectors(block, false, false)
	require.NoError(t, err)
	require.Len(t, sectors, 1)
	dataStart := sectors[0].DataOffset
	block[dataStart] ^= 0xFF // corrupt one data byte

	sectors2, err := ExtractSectors(block, false, false)
	require.NoError(t, err)
	require.Len(t, sectors2, 1)
	assert.False(t, sectors2[0].DataCRCValid)
	assert.True(t, sectors2[0].IDCRCValid)
}

func TestImage_WriteToReadBack(t *testing.T) {
	trackLen := DefaultTrackLength(true, true)
	h := Header{NumTracks: 2, TrackLength: trackLen, SingleSided: true}
	img := &Image{Header: h}
	for cyl := 0; cyl < 2; cyl++ {
		specs := []SectorSpec{{Cylinder: byte(cyl), Head: 0, Number: 1, SizeCode: 1, Encoding: MFM, Data: make([]byte, 256)}}
		block, err := WriteTrack(specs, trackLen)
		require.NoError(t, err)
		img.Tracks = append(img.Tracks, &Track{Cylinder: cyl, Head: 0, Raw: block})
	}
	raw, err := img.WriteTo()
	require.NoError(t, err)

	got, err := ReadImage(raw, false, false)
	require.NoError(t, err)
	require.Len(t, got.Tracks, 2)
	assert.Len(t, got.Track(0, 0).Sectors, 1)
	assert.Len(t, got.Track(1, 0).Sectors, 1)
}

func TestParseIDAMTable_ZeroTerminated(t *testing.T) {
	trackLen := DefaultTrackLength(true, true)
	specs := []SectorSpec{{Cylinder: 0, Head: 0, Number: 1, SizeCode: 1, Encoding: FM, Data: make([]byte, 256)}}
	block, err := WriteTrack(specs, trackLen)
	require.NoError(t, err)
	pointers, err := ParseIDAMTable(block)
	require.NoError(t, err)
	assert.Len(t, pointers, 1)
}
