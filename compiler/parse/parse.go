package parse

import (
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfc-lang/bfc/compiler/ir"
)

type (
	// UnmatchedBracketError is a syntax error: a loop bracket with no
	// partner. Pos is the byte offset of the bracket in the source.
	UnmatchedBracketError struct {
		Pos  int
		Char byte
	}

	pending struct {
		insn int // JumpIfZero index in the program
		pos  int // byte offset in the source
	}
)

func ParseFile(ctx context.Context, name string) ([]ir.Insn, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Parse(ctx, text)
}

// Parse turns source text into a runnable instruction sequence. The eight
// operator characters are recognized, everything else is a comment. Loop
// brackets are resolved as they close, so the result carries valid jump
// targets even before optimization.
func Parse(ctx context.Context, text []byte) (p []ir.Insn, err error) {
	var stack []pending

	for pos, c := range text {
		switch c {
		case '+':
			p = append(p, ir.Add(1))
		case '-':
			p = append(p, ir.Add(-1))
		case '>':
			p = append(p, ir.Move(1))
		case '<':
			p = append(p, ir.Move(-1))
		case '.':
			p = append(p, ir.Write(1))
		case ',':
			p = append(p, ir.Read(1))
		case '[':
			stack = append(stack, pending{insn: len(p), pos: pos})
			p = append(p, ir.JumpIfZero(0))
		case ']':
			if len(stack) == 0 {
				return nil, UnmatchedBracketError{Pos: pos, Char: ']'}
			}

			start := stack[len(stack)-1].insn
			stack = stack[:len(stack)-1]

			p[start] = ir.JumpIfZero(len(p))
			p = append(p, ir.JumpIfNotZero(start))
		}
	}

	if len(stack) != 0 {
		return nil, UnmatchedBracketError{Pos: stack[len(stack)-1].pos, Char: '['}
	}

	tlog.SpanFromContext(ctx).Printw("parsed", "insns", len(p))

	return p, nil
}

func (e UnmatchedBracketError) Error() string {
	return fmt.Sprintf("unmatched %q at offset %d", e.Char, e.Pos)
}
