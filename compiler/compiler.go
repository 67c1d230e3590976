package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfc-lang/bfc/compiler/ir"
	"github.com/bfc-lang/bfc/compiler/optimize"
	"github.com/bfc-lang/bfc/compiler/parse"
)

func BuildFile(ctx context.Context, name string, opt bool, size ir.TapeSize) (p []ir.Insn, err error) {
	p, err = parse.ParseFile(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "parse file")
	}

	return build(ctx, p, opt, size)
}

func Build(ctx context.Context, text []byte, opt bool, size ir.TapeSize) (p []ir.Insn, err error) {
	p, err = parse.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	return build(ctx, p, opt, size)
}

func build(ctx context.Context, p []ir.Insn, opt bool, size ir.TapeSize) ([]ir.Insn, error) {
	if !opt {
		return p, nil
	}

	raw := len(p)
	p = optimize.Optimize(ctx, p, size)

	tlog.SpanFromContext(ctx).Printw("built", "raw_insns", raw, "insns", len(p))

	return p, nil
}
