package d64

import "strings"

// petsciiToASCII converts a 16-byte PETSCII directory-name field to an
// upper-case ASCII string, trimming the 0xA0 shift-space padding the 1541
// always fills unused name bytes with.
func petsciiToASCII(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		switch {
		case c == 0xA0:
			runes = append(runes, ' ')
		case c >= 0x20 && c <= 0x7E:
			r := rune(c)
			if r == '/' || r == '\\' {
				r = '_'
			}
			runes = append(runes, r)
		default:
			runes = append(runes, '_')
		}
	}
	s := strings.TrimRight(string(runes), " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// asciiToPETSCII16 encodes a name into the 16-byte PETSCII field, padding
// with 0xA0, storing a space as 0xA0, and substituting '_' for control
// characters, non-ASCII bytes, '/' and '\'.
func asciiToPETSCII16(name string) []byte {
	out := make([]byte, 16)
	for i := range out {
		out[i] = 0xA0
	}
	up := strings.ToUpper(strings.TrimSpace(name))
	for i := 0; i < len(up) && i < 16; i++ {
		c := up[i]
		switch {
		case c == ' ':
			out[i] = 0xA0
		case c < 0x20 || c > 0x7E || c == '/' || c == '\\':
			out[i] = '_'
		default:
			out[i] = c
		}
	}
	return out
}
