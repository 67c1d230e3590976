package parse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfc-lang/bfc/compiler/ir"
)

func TestParse(t *testing.T) {
	p, err := Parse(context.Background(), []byte("+[,.]"))
	require.NoError(t, err)

	exp := []ir.Insn{
		ir.Add(1),
		ir.JumpIfZero(4),
		ir.Read(1),
		ir.Write(1),
		ir.JumpIfNotZero(1),
	}

	assert.Equal(t, exp, p)
}

func TestParseComments(t *testing.T) {
	p, err := Parse(context.Background(), []byte("say plus and minus once each\n+-\n"))
	require.NoError(t, err)

	assert.Equal(t, []ir.Insn{ir.Add(1), ir.Add(-1)}, p)

	// operator characters count even in the middle of prose
	p, err = Parse(context.Background(), []byte("2 + 2 makes 4\n"))
	require.NoError(t, err)

	assert.Equal(t, []ir.Insn{ir.Add(1)}, p)
}

func TestParseNested(t *testing.T) {
	p, err := Parse(context.Background(), []byte("[[]]"))
	require.NoError(t, err)

	exp := []ir.Insn{
		ir.JumpIfZero(3),
		ir.JumpIfZero(2),
		ir.JumpIfNotZero(1),
		ir.JumpIfNotZero(0),
	}

	assert.Equal(t, exp, p)
}

func TestParseUnmatched(t *testing.T) {
	_, err := Parse(context.Background(), []byte("+]"))
	require.Equal(t, UnmatchedBracketError{Pos: 1, Char: ']'}, err)

	_, err = Parse(context.Background(), []byte("[[]"))
	require.Equal(t, UnmatchedBracketError{Pos: 0, Char: '['}, err)

	require.Contains(t, err.Error(), "unmatched")
}

func TestParseFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "prog.bf")

	err := os.WriteFile(name, []byte("+++."), 0o644)
	require.NoError(t, err)

	p, err := ParseFile(context.Background(), name)
	require.NoError(t, err)
	assert.Len(t, p, 4)

	_, err = ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.bf"))
	require.Error(t, err)
}
