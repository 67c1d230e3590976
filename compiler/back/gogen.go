package back

import (
	"fmt"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/bfc-lang/bfc/compiler/ir"
)

// Go appends a standalone Go program reproducing the interpreter semantics:
// wrapping byte arithmetic, keep-last Read with zero fill on short input,
// a wrapping tape for the finite policy and a growing, left-clamped one
// otherwise. Loop pairs come out as structured for loops.
func Go(b []byte, p []ir.Insn, size ir.TapeSize) []byte {
	hasRead := false

	for _, x := range p {
		if x.Op == ir.OpRead {
			hasRead = true
			break
		}
	}

	b = hfmt.Appendf(b, "package main\n\n")
	b = hfmt.Appendf(b, "import (\n\t\"bufio\"\n\t\"os\"\n)\n\n")
	b = hfmt.Appendf(b, "func main() {\n")

	if hasRead {
		b = hfmt.Appendf(b, "\tin := bufio.NewReader(os.Stdin)\n")
	}

	b = hfmt.Appendf(b, "\tout := bufio.NewWriter(os.Stdout)\n\tdefer out.Flush()\n\n")
	b = hfmt.Appendf(b, "\thead := 0\n")

	if size.IsFinite() {
		n := size.Cells()

		b = hfmt.Appendf(b, "\ttape := make([]byte, %d)\n\n", n)
		b = hfmt.Appendf(b, "\tat := func(i int) *byte {\n")
		b = hfmt.Appendf(b, "\t\ti %%= %d\n\t\tif i < 0 {\n\t\t\ti += %d\n\t\t}\n\n", n, n)
		b = hfmt.Appendf(b, "\t\treturn &tape[i]\n\t}\n\n")
	} else {
		b = hfmt.Appendf(b, "\ttape := make([]byte, %d)\n\n", standardCells)
		b = hfmt.Appendf(b, "\tat := func(i int) *byte {\n")
		b = hfmt.Appendf(b, "\t\tif i < 0 {\n\t\t\ti = 0\n\t\t}\n")
		b = hfmt.Appendf(b, "\t\tif i >= len(tape) {\n\t\t\ttape = append(tape, make([]byte, i+1-len(tape)+32)...)\n\t\t}\n\n")
		b = hfmt.Appendf(b, "\t\treturn &tape[i]\n\t}\n\n")
	}

	b = hfmt.Appendf(b, "\t_ = at(head)\n\n")

	ind := "\t"

	line := func(format string, args ...any) {
		b = append(b, ind...)
		b = hfmt.Appendf(b, format, args...)
		b = append(b, '\n')
	}

	move := func(delta int) {
		if size.IsFinite() {
			n := size.Cells()
			line("head = ((head+%d)%%%d + %d) %% %d", delta, n, n, n)

			return
		}

		line("head += %d", delta)

		if delta < 0 {
			line("if head < 0 {")
			line("\thead = 0")
			line("}")
		}
	}

	// always the wrapping form: a negated int8 literal can overflow byte
	addAt := func(expr string, amount int8) {
		line("*at(%s) += %d", expr, byte(amount))
	}

	vector := func(vec [ir.VectorSize]int8) {
		for k, a := range vec {
			if a == 0 {
				continue
			}

			addAt(fmt.Sprintf("head + %d", k), a)
		}
	}

	for _, x := range p {
		switch x.Op {
		case ir.OpAdd:
			addAt("head", x.Amt)
		case ir.OpMove:
			move(x.Arg)
		case ir.OpWrite:
			switch {
			case x.Arg == 1:
				line("out.WriteByte(*at(head))")
			case x.Arg > 1:
				line("for k := 0; k < %d; k++ {", x.Arg)
				line("\tout.WriteByte(*at(head))")
				line("}")
			}
		case ir.OpRead:
			if x.Arg == 0 {
				break
			}

			line("for k := 0; k < %d; k++ {", x.Arg)
			line("\tc, err := in.ReadByte()")
			line("\tif err != nil {")
			line("\t\tc = 0")
			line("\t}")
			line("\t*at(head) = c")
			line("}")
		case ir.OpJumpIfZero:
			line("for *at(head) != 0 {")
			ind += "\t"
		case ir.OpJumpIfNotZero:
			ind = ind[:len(ind)-1]
			line("}")
		case ir.OpSetValue:
			line("*at(head) = %d", byte(x.Amt))
		case ir.OpAddRelative:
			addAt(fmt.Sprintf("head + (%d)", x.Arg), x.Amt)
		case ir.OpAddVector:
			vector(x.Vec)
		case ir.OpAddVectorMove:
			vector(x.Vec)
			move(x.Arg)
		case ir.OpMoveRightToZero, ir.OpMoveLeftToZero:
			stride := x.Arg
			if x.Op == ir.OpMoveLeftToZero {
				stride = -stride
			}

			line("for *at(head) != 0 {")
			ind += "\t"

			if x.Amt != 0 {
				addAt("head", x.Amt)
			}

			move(stride)

			ind = ind[:len(ind)-1]
			line("}")
		}
	}

	b = hfmt.Appendf(b, "}\n")

	return b
}
