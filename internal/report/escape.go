// Package report renders collected run-queue state into the tool's output
// shapes: the verbose per-CPU dump, the current-task table, and the
// cross-CPU lag listing.
package report

import (
	"fmt"
	"strings"
)

// EscapeComm makes a raw command-name buffer safe to print. Printable ASCII
// passes through; tab, newline, and carriage return become their C escapes;
// everything else becomes \xHH. Comm buffers are copied out of kernel
// memory and must never be assumed to be valid text.
func EscapeComm(comm []byte) string {
	var b strings.Builder
	b.Grow(len(comm))
	for _, c := range comm {
		switch {
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c >= 0x20 && c <= 0x7e:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}
