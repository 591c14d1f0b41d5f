package util

import "unicode/utf8"

// MaxLogBodySize is the default maximum body size for logging (10KB).
const MaxLogBodySize = 10 * 1024

const truncatedMarker = "...(truncated)"

// TruncateBody caps a SOAP envelope at maxSize bytes for logging and appends
// "...(truncated)" when it was cut. The cut never splits a UTF-8 sequence.
// If maxSize <= 0, MaxLogBodySize is used.
func TruncateBody(data string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogBodySize
	}
	if len(data) <= maxSize {
		return data
	}
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return data[:cut] + truncatedMarker
}
