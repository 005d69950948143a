package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestByteAtBit_ByteAligned(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	for i, want := range data {
		got, err := ByteAtBit(data, i*8)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestByteAtBit_Unaligned(t *testing.T) {
	data := []byte{0b10110010, 0b01101101}
	got, err := ByteAtBit(data, 4)
	require.NoError(t, err)
	assert.Equal(t, byte(0b00100110), got)
}

func TestWordAtBit_ByteAligned(t *testing.T) {
	data := []byte{0xA1, 0xA1, 0xA1}
	got, err := WordAtBit(data, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xA1A1), got)
}

func TestFindSync_Found(t *testing.T) {
	data := []byte{0x00, 0xA1, 0xA1, 0x00}
	pos := FindSync(data, len(data)*8, 0xA1A1, 16, 0)
	assert.Equal(t, 8, pos)
}

func TestFindSync_NotFound(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00}
	pos := FindSync(data, len(data)*8, 0xA1A1, 16, 0)
	assert.Equal(t, -1, pos)
}

func TestMFMClockValid(t *testing.T) {
	assert.True(t, MFMClockValid(0, 1, 0))
	assert.False(t, MFMClockValid(1, 1, 0))
	assert.False(t, MFMClockValid(0, 1, 1))
	assert.True(t, MFMClockValid(1, 0, 1))
}

// S6: CRC-CCITT of A1 A1 A1 seeded with 0xFFFF equals 0xCDB4.
func TestCRCCCITT_SyncPrestate(t *testing.T) {
	got := CRCCCITTBuffer([]byte{0xA1, 0xA1, 0xA1}, FMInitialCRC)
	assert.Equal(t, MFMDataInitialCRC, got)
}

// Property: CRC computation is a pure, deterministic function of its inputs.
func TestCRCCCITT_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data")
		seed := rapid.Uint16().Draw(t, "seed")

		a := CRCCCITTBuffer(data, seed)
		b := CRCCCITTBuffer(data, seed)
		assert.Equal(t, a, b)

		var viaBytes uint16 = seed
		for _, bt := range data {
			viaBytes = UpdateCRCByte(viaBytes, bt)
		}
		assert.Equal(t, a, viaBytes)
	})
}
