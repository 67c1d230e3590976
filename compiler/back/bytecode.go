package back

import "github.com/bfc-lang/bfc/compiler/ir"

const bytecodeVersion = 1

const (
	opcodeAdd  = 1
	opcodeMove = 2
)

// Bytecode appends the compact encoding: a 'B' 'F' 'C' <version> header
// followed by (opcode, operand) byte pairs.
//
// Only Add and Move are encodable, every other instruction is skipped, and
// Move deltas truncate to one byte. The format is a known-limited toy, not
// a durable interchange format; extending it means a new version byte.
func Bytecode(b []byte, p []ir.Insn) []byte {
	b = append(b, 'B', 'F', 'C', bytecodeVersion)

	for _, x := range p {
		switch x.Op {
		case ir.OpAdd:
			b = append(b, opcodeAdd, byte(x.Amt))
		case ir.OpMove:
			b = append(b, opcodeMove, byte(x.Arg))
		}
	}

	return b
}
