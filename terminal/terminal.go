// Package terminal makes server-supplied text safe to print.
//
// Agent replies, tool results and API fields are untrusted: an escape
// sequence in any of them could move the cursor, retitle the window or
// rewrite what is already on screen.
package terminal

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips escape sequences (CSI, OSC, DCS and friends) and control
// characters from s. Tabs and newlines survive and CRLF becomes LF. A lone
// CR is dropped rather than honored, so text cannot hide what precedes it.
func Sanitize(s string) string {
	if isPlain(s) {
		return s
	}
	s = ansi.Strip(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
		case r >= 0x80 && r <= 0x9f: // C1 controls
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Line sanitizes s and folds every run of whitespace, newlines included,
// into one space.
func Line(s string) string {
	return strings.Join(strings.Fields(Sanitize(s)), " ")
}

func isPlain(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 || c == 0x7f || (c < 0x20 && c != '\t' && c != '\n') {
			return false
		}
	}
	return true
}
