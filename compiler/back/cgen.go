package back

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/bfc-lang/bfc/compiler/ir"
)

const standardCells = 30_000

// C appends a standalone C program. The infinite policy degrades to a fixed
// 30000-cell array with the head clamped at zero: the generated code cannot
// grow the tape, it only mirrors interpreter semantics while the program
// stays inside the array.
func C(b []byte, p []ir.Insn, size ir.TapeSize) []byte {
	cells := standardCells
	if size.IsFinite() {
		cells = size.Cells()
	}

	b = hfmt.Appendf(b, "#include <stdio.h>\n\n")
	b = hfmt.Appendf(b, "#define TAPE_SIZE %d\n\n", cells)
	b = hfmt.Appendf(b, "static unsigned char tape[TAPE_SIZE] = {0};\nstatic long head = 0;\n\n")

	if size.IsFinite() {
		b = hfmt.Appendf(b, "static long at(long i) { return ((i %% TAPE_SIZE) + TAPE_SIZE) %% TAPE_SIZE; }\n\n")
	} else {
		b = hfmt.Appendf(b, "static long at(long i) { return i < 0 ? 0 : i; }\n\n")
	}

	b = hfmt.Appendf(b, "int main(void) {\n")

	for i, x := range p {
		switch x.Op {
		case ir.OpAdd:
			b = hfmt.Appendf(b, "\ttape[at(head)] += %d;\n", x.Amt)
		case ir.OpMove:
			b = hfmt.Appendf(b, "\thead = at(head + (%d));\n", x.Arg)
		case ir.OpWrite:
			switch {
			case x.Arg == 1:
				b = hfmt.Appendf(b, "\tputchar(tape[at(head)]);\n")
			case x.Arg > 1:
				b = hfmt.Appendf(b, "\tfor (int k = 0; k < %d; k++) putchar(tape[at(head)]);\n", x.Arg)
			}
		case ir.OpRead:
			if x.Arg > 0 {
				b = hfmt.Appendf(b, "\tfor (int k = 0; k < %d; k++) { int c = getchar(); tape[at(head)] = c < 0 ? 0 : (unsigned char)c; }\n", x.Arg)
			}
		case ir.OpJumpIfZero:
			b = hfmt.Appendf(b, "jump_%d:\n\tif (tape[at(head)] == 0) goto jump_%d;\n", i, x.Arg)
		case ir.OpJumpIfNotZero:
			b = hfmt.Appendf(b, "jump_%d:\n\tif (tape[at(head)] != 0) goto jump_%d;\n", i, x.Arg)
		case ir.OpSetValue:
			b = hfmt.Appendf(b, "\ttape[at(head)] = %d;\n", byte(x.Amt))
		case ir.OpAddRelative:
			b = hfmt.Appendf(b, "\ttape[at(head + (%d))] += %d;\n", x.Arg, x.Amt)
		case ir.OpAddVector:
			b = appendCVector(b, x.Vec)
		case ir.OpAddVectorMove:
			b = appendCVector(b, x.Vec)
			b = hfmt.Appendf(b, "\thead = at(head + (%d));\n", x.Arg)
		case ir.OpMoveRightToZero:
			b = hfmt.Appendf(b, "\twhile (tape[at(head)] != 0) {\n")
			if x.Amt != 0 {
				b = hfmt.Appendf(b, "\t\ttape[at(head)] += %d;\n", x.Amt)
			}
			b = hfmt.Appendf(b, "\t\thead = at(head + %d);\n\t}\n", x.Arg)
		case ir.OpMoveLeftToZero:
			b = hfmt.Appendf(b, "\twhile (tape[at(head)] != 0) {\n")
			if x.Amt != 0 {
				b = hfmt.Appendf(b, "\t\ttape[at(head)] += %d;\n", x.Amt)
			}
			b = hfmt.Appendf(b, "\t\thead = at(head - %d);\n\t}\n", x.Arg)
		}
	}

	b = hfmt.Appendf(b, "\treturn 0;\n}\n")

	return b
}

func appendCVector(b []byte, vec [ir.VectorSize]int8) []byte {
	for k, a := range vec {
		if a == 0 {
			continue
		}

		b = hfmt.Appendf(b, "\ttape[at(head + %d)] += %d;\n", k, a)
	}

	return b
}
