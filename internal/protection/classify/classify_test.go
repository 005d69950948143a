package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"uftcore/internal/dmk"
)

func TestDetectPlatform_Amiga(t *testing.T) {
	data := make([]byte, 105000/8)
	data[100], data[101] = 0x44, 0x89
	assert.Equal(t, PlatformAmiga, DetectPlatform(data, 105000))
}

func TestDetectPlatform_C64(t *testing.T) {
	data := make([]byte, 50000/8)
	for i := 0; i < 11; i++ {
		data[i*2], data[i*2+1] = 0xFF, 0xFF
	}
	assert.Equal(t, PlatformC64, DetectPlatform(data, 50000))
}

func TestDetectPlatform_Apple2(t *testing.T) {
	data := make([]byte, 50000/8)
	data[10], data[11], data[12] = 0xD5, 0xAA, 0x96
	assert.Equal(t, PlatformApple2, DetectPlatform(data, 50000))
}

func TestDetectPlatform_PC(t *testing.T) {
	data := make([]byte, 60000/8)
	for i := 0; i < 10; i++ {
		base := i * 4
		data[base], data[base+1], data[base+2] = 0xA1, 0xA1, 0xA1
	}
	assert.Equal(t, PlatformPC, DetectPlatform(data, 60000))
}

func TestDetectPlatform_UnknownWhenTooShort(t *testing.T) {
	assert.Equal(t, PlatformUnknown, DetectPlatform(make([]byte, 4), 10))
}

func TestClassify_NoProtectionOnPlainTrack(t *testing.T) {
	track := &dmk.Track{Raw: make([]byte, 105000/8)}
	a := Classify(track, nil, nil, NewContext())
	assert.False(t, a.IsProtected)
	assert.True(t, a.IsStandard)
	assert.Nil(t, a.Primary)
}

func TestClassify_DetectsLongtrackOnAmigaTrack(t *testing.T) {
	data := make([]byte, 107456/8)
	data[0], data[1] = 0x44, 0x54 // PROTEC sync
	for i := 2; i < len(data); i++ {
		data[i] = 0x33
	}
	data[100], data[101] = 0x44, 0x89 // Amiga platform marker
	track := &dmk.Track{Raw: data}
	a := Classify(track, nil, nil, NewContext())
	assert.True(t, a.IsProtected)
	assert.NotNil(t, a.Primary)
	assert.Equal(t, PlatformAmiga, a.DetectedPlatform)
}

func TestLookup_KnownAndUnknown(t *testing.T) {
	e, ok := Lookup(TypeCopyLock)
	assert.True(t, ok)
	assert.Equal(t, "Rob Northen Computing", e.Publisher)

	_, ok = Lookup(TypeUnknown)
	assert.False(t, ok)
}

func TestDatabase_NonAmigaEntriesPresentAsStubs(t *testing.T) {
	e, ok := Lookup(TypeVMaxV1)
	assert.True(t, ok)
	assert.Equal(t, PlatformC64, e.Platform)
}
