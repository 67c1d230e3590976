package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfc-lang/bfc/compiler/ir"
	"github.com/bfc-lang/bfc/compiler/parse"
)

func TestBuild(t *testing.T) {
	p, err := Build(context.Background(), []byte("[-]"), false, ir.Infinite)
	require.NoError(t, err)
	assert.Equal(t, []ir.Insn{ir.JumpIfZero(2), ir.Add(-1), ir.JumpIfNotZero(0)}, p)

	p, err = Build(context.Background(), []byte("[-]"), true, ir.Infinite)
	require.NoError(t, err)
	assert.Equal(t, []ir.Insn{ir.SetValue(0)}, p)
}

func TestBuildSyntaxError(t *testing.T) {
	_, err := Build(context.Background(), []byte("[[["), true, ir.Infinite)
	require.Error(t, err)

	var e parse.UnmatchedBracketError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, byte('['), e.Char)
}

func TestBuildFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "prog.bf")

	err := os.WriteFile(name, []byte("+++>++>>"), 0o644)
	require.NoError(t, err)

	p, err := BuildFile(context.Background(), name, true, ir.Infinite)
	require.NoError(t, err)
	assert.Equal(t, []ir.Insn{ir.AddVectorMove(3, [ir.VectorSize]int8{3, 2, 0, 0})}, p)
}
