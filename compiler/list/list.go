package list

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/bfc-lang/bfc/compiler/ir"
)

// Listing appends a human-readable program listing: zero-padded index, two
// spaces, instruction mnemonic and operands, one instruction per line.
func Listing(b []byte, p []ir.Insn) []byte {
	if len(p) == 0 {
		return b
	}

	width := 1
	for n := len(p); n >= 10; n /= 10 {
		width++
	}

	for i, x := range p {
		b = hfmt.Appendf(b, "%0*d  %s\n", width, i, x)
	}

	return b
}
