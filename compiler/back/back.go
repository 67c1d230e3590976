package back

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfc-lang/bfc/compiler/ir"
)

type Format int

const (
	FormatBytecode Format = iota
	FormatC
	FormatGo
)

// Compile translates a finalized program into the requested output format.
// Generators are stateless: the same program and tape size always produce
// the same bytes.
func Compile(ctx context.Context, b []byte, p []ir.Insn, size ir.TapeSize, f Format) (_ []byte, err error) {
	tlog.SpanFromContext(ctx).Printw("generate", "format", f, "insns", len(p))

	switch f {
	case FormatBytecode:
		return Bytecode(b, p), nil
	case FormatC:
		return C(b, p, size), nil
	case FormatGo:
		return Go(b, p, size), nil
	}

	return nil, errors.New("unsupported format: %v", f)
}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "bytecode":
		return FormatBytecode, nil
	case "c":
		return FormatC, nil
	case "go":
		return FormatGo, nil
	}

	return -1, errors.New("unknown format: %v", s)
}

func (f Format) String() string {
	switch f {
	case FormatBytecode:
		return "bytecode"
	case FormatC:
		return "c"
	case FormatGo:
		return "go"
	}

	return "unknown"
}
