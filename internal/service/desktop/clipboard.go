package desktop

import "unicode/utf16"

// utf16Text decodes CF_UNICODETEXT data up to the first NUL. buf covers the
// whole allocation, so text without a terminator ends at len(buf).
func utf16Text(buf []uint16) string {
	for i, c := range buf {
		if c == 0 {
			return string(utf16.Decode(buf[:i]))
		}
	}
	return string(utf16.Decode(buf))
}
