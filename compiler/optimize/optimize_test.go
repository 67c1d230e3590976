package optimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfc-lang/bfc/compiler/ir"
	"github.com/bfc-lang/bfc/compiler/parse"
)

func mustParse(t *testing.T, src string) []ir.Insn {
	t.Helper()

	p, err := parse.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	return p
}

func TestSquashRuns(t *testing.T) {
	p := Optimize(context.Background(), mustParse(t, "+++++-->>><<<<<,....,,"), ir.Infinite)

	exp := []ir.Insn{
		ir.Add(3),
		ir.Move(-2),
		ir.Read(1),
		ir.Write(4),
		ir.Read(2),
	}

	assert.Equal(t, exp, p)
}

func TestDropDeadLoops(t *testing.T) {
	p := Optimize(context.Background(), mustParse(t, "[.][[[>]]][[]]"), ir.Infinite)

	assert.Empty(t, p)
}

func TestPatterns(t *testing.T) {
	for _, tc := range []struct {
		src string
		exp []ir.Insn
	}{
		{"[+]", []ir.Insn{ir.SetValue(0)}},
		{"[-]", []ir.Insn{ir.SetValue(0)}},
		{">>>-----<<<", []ir.Insn{ir.AddRelative(3, -5)}},
		{"<<<+++++>>>", []ir.Insn{ir.AddRelative(-3, 5)}},
		{"+++>++>>", []ir.Insn{ir.AddVectorMove(3, [ir.VectorSize]int8{3, 2, 0, 0})}},
		{"[++>>>]", []ir.Insn{ir.MoveRightToZero(2, 3)}},
		{"[++<<<]", []ir.Insn{ir.MoveLeftToZero(2, 3)}},
		{"[>]+++", []ir.Insn{ir.MoveRightToZero(0, 1), ir.SetValue(3)}},
	} {
		p := Optimize(context.Background(), mustParse(t, tc.src), ir.Infinite)

		assert.Equal(t, tc.exp, p, "source: %v", tc.src)
	}
}

func TestFixLoops(t *testing.T) {
	p := Optimize(context.Background(), mustParse(t, "+[>+<-]"), ir.Infinite)

	exp := []ir.Insn{
		ir.Add(1),
		ir.JumpIfZero(3),
		ir.AddVector([ir.VectorSize]int8{-1, 1, 0, 0}),
		ir.JumpIfNotZero(1),
	}

	assert.Equal(t, exp, p)
}

func TestIdempotent(t *testing.T) {
	for _, src := range []string{
		"+++>++>>",
		"+[>+<-]>.",
		"[->+<]",
		">>>-----<<<,.",
	} {
		p := Optimize(context.Background(), mustParse(t, src), ir.Infinite)

		q := Optimize(context.Background(), append([]ir.Insn{}, p...), ir.Infinite)

		assert.Equal(t, p, q, "source: %v", src)
	}
}
