package interp

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfc-lang/bfc/compiler/ir"
	"github.com/bfc-lang/bfc/compiler/optimize"
	"github.com/bfc-lang/bfc/compiler/parse"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func run(t *testing.T, src, input string, opt bool, size ir.TapeSize) string {
	t.Helper()

	p, err := parse.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	if opt {
		p = optimize.Optimize(context.Background(), p, size)
	}

	var out bytes.Buffer

	_, err = Run(p, strings.NewReader(input), &out, size)
	require.NoError(t, err)

	return out.String()
}

func TestHelloWorld(t *testing.T) {
	raw := run(t, helloWorld, "", false, ir.Infinite)
	opt := run(t, helloWorld, "", true, ir.Infinite)

	assert.Equal(t, "Hello World!\n", raw)
	assert.Equal(t, raw, opt)
}

func TestEcho(t *testing.T) {
	assert.Equal(t, "A", run(t, ",[->+<]>.", "A", false, ir.Infinite))
	assert.Equal(t, "A", run(t, ",[->+<]>.", "A", true, ir.Infinite))
}

func TestReadKeepsLast(t *testing.T) {
	assert.Equal(t, "c", run(t, ",,,.", "abc", false, ir.Infinite))
	assert.Equal(t, "c", run(t, ",,,.", "abc", true, ir.Infinite))
}

func TestReadPastEOF(t *testing.T) {
	// bytes past the end of input read as zero
	assert.Equal(t, "\x00", run(t, ",,,.", "a", false, ir.Infinite))
	assert.Equal(t, "\x00", run(t, ",,,.", "a", true, ir.Infinite))
}

func TestCellWraps(t *testing.T) {
	// 300 mod 256
	assert.Equal(t, "\x2c", run(t, strings.Repeat("+", 300)+".", "", false, ir.Infinite))
}

func TestFiniteTapeWraps(t *testing.T) {
	// three cells: head comes back around to the start
	assert.Equal(t, "\x01", run(t, "+>>>.", "", false, ir.Finite(3)))
	assert.Equal(t, "\x01", run(t, "+<<<.", "", false, ir.Finite(3)))
}

func TestInfiniteTapeClampsLeft(t *testing.T) {
	// moving off the left edge stays at cell zero
	assert.Equal(t, "\x01", run(t, "+<<<.", "", false, ir.Infinite))
}

func TestExecutedCount(t *testing.T) {
	p, err := parse.Parse(context.Background(), []byte("+[-]"))
	require.NoError(t, err)

	n, err := Run(p, strings.NewReader(""), &bytes.Buffer{}, ir.Infinite)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	// a drain loop is a single instruction however many cells it walks
	n, err = Run([]ir.Insn{ir.MoveRightToZero(2, 3)}, strings.NewReader(""), &bytes.Buffer{}, ir.Infinite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFlushesBufferedOutput(t *testing.T) {
	p, err := parse.Parse(context.Background(), []byte("+."))
	require.NoError(t, err)

	var out bytes.Buffer
	bw := bufio.NewWriter(&out)

	_, err = Run(p, strings.NewReader(""), bw, ir.Infinite)
	require.NoError(t, err)

	assert.Equal(t, "\x01", out.String())
}

func TestMemory(t *testing.T) {
	m := NewMemory(ir.Infinite)

	m.Move(-10)
	assert.Equal(t, 0, m.Head())

	m.AddAt(50_000, 3)
	assert.Equal(t, byte(3), m.CellAt(50_000))
	assert.GreaterOrEqual(t, m.Len(), 50_001)

	m = NewMemory(ir.Finite(4))

	m.Move(-1)
	assert.Equal(t, 3, m.Head())

	m.Add(7)
	assert.Equal(t, byte(7), m.CellAt(-1))
	assert.Equal(t, 4, m.Len())
}
