package dmk

import "uftcore/internal/errs"

// Track is one physical track block: the raw encoded bytes (including the
// leading IDAM table) plus the sectors derived from it. A Track owns its
// raw-byte buffer and its derived sector array, per the ownership model in
// spec §3/§5; releasing the parent Image releases both.
type Track struct {
	Cylinder int
	Head     int
	Raw      []byte // full track block: IDAM table + encoded track bytes
	Sectors  []*Sector
}

// Image is a fully parsed DMK disk image.
type Image struct {
	Header Header
	Tracks []*Track // ordered physical-track order: cylinder-major, head-minor
}

// ReadImage parses a complete DMK image buffer. The caller retains
// ownership of data for the duration of the call only; all track and
// sector data returned is copied out.
func ReadImage(data []byte, wd1771NonIBM, rx02 bool) (*Image, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	want := h.expectedImageSize()
	if len(data) < want {
		return nil, errs.New(errs.InvalidImage, "dmk image truncated: have %d bytes, need %d", len(data), want)
	}

	img := &Image{Header: h}
	heads := h.Heads()
	off := HeaderSize
	for cyl := 0; cyl < h.NumTracks; cyl++ {
		for head := 0; head < heads; head++ {
			block := data[off : off+h.TrackLength]
			sectors, err := ExtractSectors(block, wd1771NonIBM, rx02||h.RX02)
			if err != nil {
				return nil, err
			}
			img.Tracks = append(img.Tracks, &Track{
				Cylinder: cyl,
				Head:     head,
				Raw:      append([]byte(nil), block...),
				Sectors:  sectors,
			})
			off += h.TrackLength
		}
	}
	return img, nil
}

// Track looks up a parsed track by (cylinder, head); returns nil if absent.
func (img *Image) Track(cylinder, head int) *Track {
	for _, t := range img.Tracks {
		if t.Cylinder == cylinder && t.Head == head {
			return t
		}
	}
	return nil
}

// WriteTo serializes the image back to its on-disk byte form. Tracks are
// emitted in the same physical-track order they were parsed (or
// constructed) in, per the ordering guarantee in spec §5.
func (img *Image) WriteTo() ([]byte, error) {
	out := make([]byte, 0, img.Header.expectedImageSize())
	out = append(out, img.Header.Bytes()...)
	for _, t := range img.Tracks {
		if len(t.Raw) != img.Header.TrackLength {
			return nil, errs.New(errs.InvalidImage, "track %d/%d has length %d, want %d", t.Cylinder, t.Head, len(t.Raw), img.Header.TrackLength)
		}
		out = append(out, t.Raw...)
	}
	return out, nil
}
