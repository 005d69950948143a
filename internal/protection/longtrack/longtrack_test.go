package longtrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"uftcore/internal/dmk"
)

func trackWithSync16(sync uint16, totalBits int, fill byte) *dmk.Track {
	data := make([]byte, totalBits/8)
	for i := range data {
		data[i] = fill
	}
	data[0] = byte(sync >> 8)
	data[1] = byte(sync)
	return &dmk.Track{Raw: data}
}

func TestDetect_NormalLengthTrackNotDetected(t *testing.T) {
	track := &dmk.Track{Raw: make([]byte, AmigaNormalBits/8)}
	r := Detect(track)
	assert.False(t, r.Detected)
}

func TestDetect_PROTEC(t *testing.T) {
	track := trackWithSync16(0x4454, 107456, 0x33)
	r := Detect(track)
	assert.True(t, r.Detected)
	assert.Equal(t, PROTEC, r.Primary.Type)
}

func TestDetect_SilmarilsRequiresSignature(t *testing.T) {
	track := trackWithSync16(0xA144, 104320, 0x00)
	copy(track.Raw[50:], "ROD0")
	r := Detect(track)
	assert.True(t, r.Detected)
	assert.Equal(t, Silmarils, r.Primary.Type)
	assert.True(t, r.Primary.SignatureFound)
}

func TestDetect_InfogramesWhenNoSignature(t *testing.T) {
	track := trackWithSync16(0xA144, 104320, 0x00)
	r := Detect(track)
	assert.True(t, r.Detected)
	assert.Equal(t, Infogrames, r.Primary.Type)
}

func TestDetect_TiertexBeforeProtoscanWithinNarrowRange(t *testing.T) {
	// 103040 bits falls inside BOTH Tiertex's (99328-103680) and
	// Protoscan's (>=102400) ranges; Tiertex must win since it runs first.
	data := make([]byte, 103040/8)
	data[0], data[1], data[2], data[3] = 0x41, 0x24, 0x41, 0x24
	track := &dmk.Track{Raw: data}
	r := Detect(track)
	assert.True(t, r.Detected)
	assert.Equal(t, Tiertex, r.Primary.Type)
}

func TestDetect_ProtoscanOutsideTiertexRange(t *testing.T) {
	data := make([]byte, 110000/8)
	data[0], data[1], data[2], data[3] = 0x41, 0x24, 0x41, 0x24
	track := &dmk.Track{Raw: data}
	r := Detect(track)
	assert.True(t, r.Detected)
	assert.Equal(t, Protoscan, r.Primary.Type)
}

func TestDetect_EmptyFallback(t *testing.T) {
	data := make([]byte, 106000/8)
	for i := range data {
		data[i] = 0xFF
	}
	track := &dmk.Track{Raw: data}
	r := Detect(track)
	assert.True(t, r.Detected)
	assert.Equal(t, Empty, r.Primary.Type)
}

func TestDetect_ZeroesFallback(t *testing.T) {
	data := make([]byte, 106000/8)
	track := &dmk.Track{Raw: data}
	r := Detect(track)
	assert.True(t, r.Detected)
	assert.Equal(t, Zeroes, r.Primary.Type)
}

func TestIsLong(t *testing.T) {
	assert.False(t, IsLong(AmigaNormalBits))
	assert.False(t, IsLong(AmigaNormalBits+500))
	assert.True(t, IsLong(AmigaNormalBits+501))
}

func TestByteHistogram_Dominance(t *testing.T) {
	data := []byte{1, 1, 1, 2}
	dominant, pct := byteHistogram(data)
	assert.Equal(t, byte(1), dominant)
	assert.InDelta(t, 75.0, pct, 0.01)
}
