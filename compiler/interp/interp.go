package interp

import (
	"io"

	"tlog.app/go/errors"

	"github.com/bfc-lang/bfc/compiler/ir"
)

const (
	standardTapeSize = 30_000

	// growSlack spares a reallocation on the next few cells to the right.
	growSlack = 32

	ioBufferSize = 8
)

type (
	// Memory is the tape: a byte buffer, a head index and a size policy.
	// Every accessor establishes bounds before touching the buffer:
	// finite tapes wrap indices, the infinite tape clamps negative ones
	// at zero and grows to the right on demand. Created fresh per run.
	Memory struct {
		head int
		tape []byte
		size ir.TapeSize
	}

	flusher interface {
		Flush() error
	}
)

func NewMemory(size ir.TapeSize) *Memory {
	n := standardTapeSize
	if size.IsFinite() {
		n = size.Cells()
	}

	return &Memory{
		tape: make([]byte, n),
		size: size,
	}
}

func (m *Memory) Head() int { return m.head }

func (m *Memory) Move(delta int) {
	if m.size.IsFinite() {
		n := m.size.Cells()
		m.head = ((m.head+delta)%n + n) % n

		return
	}

	m.head += delta

	if m.head < 0 {
		m.head = 0
	}
}

func (m *Memory) MoveRight(n int) { m.Move(n) }
func (m *Memory) MoveLeft(n int)  { m.Move(-n) }

func (m *Memory) Cell() byte { return *m.cell(m.head) }

func (m *Memory) SetCell(v byte) { *m.cell(m.head) = v }

func (m *Memory) Add(amount int8) { *m.cell(m.head) += byte(amount) }

func (m *Memory) CellAt(i int) byte { return *m.cell(i) }

func (m *Memory) AddAt(i int, amount int8) { *m.cell(i) += byte(amount) }

// AddVector adds the lanes to the cells at head+0..3 without moving the head.
func (m *Memory) AddVector(vec [ir.VectorSize]int8) {
	for k, a := range vec {
		*m.cell(m.head+k) += byte(a)
	}
}

// Len is the current backing buffer length. The infinite tape only grows.
func (m *Memory) Len() int { return len(m.tape) }

func (m *Memory) cell(i int) *byte {
	if m.size.IsFinite() {
		n := m.size.Cells()
		i = (i%n + n) % n

		return &m.tape[i]
	}

	if i < 0 {
		i = 0
	}

	if i >= len(m.tape) {
		m.tape = append(m.tape, make([]byte, i+1-len(m.tape)+growSlack)...)
	}

	return &m.tape[i]
}

// Run executes a program from instruction 0 until the counter runs off the
// end and returns the number of instructions executed. Input and output are
// already-open streams owned by the caller; if out is flushable it is
// flushed on every exit path. Short input is not an error: bytes past the
// end of input read as zero.
func Run(p []ir.Insn, in io.Reader, out io.Writer, size ir.TapeSize) (executed int64, err error) {
	m := NewMemory(size)
	buf := make([]byte, ioBufferSize)

	if f, ok := out.(flusher); ok {
		defer func() {
			e := f.Flush()
			if err == nil && e != nil {
				err = errors.Wrap(e, "flush output")
			}
		}()
	}

	for pc := 0; pc < len(p); {
		x := p[pc]
		pc++
		executed++

		switch x.Op {
		case ir.OpAdd:
			m.Add(x.Amt)
		case ir.OpMove:
			m.Move(x.Arg)
		case ir.OpWrite:
			if x.Arg == 0 {
				break
			}

			if x.Arg > len(buf) {
				buf = make([]byte, x.Arg)
			}

			b := buf[:x.Arg]
			v := m.Cell()

			for j := range b {
				b[j] = v
			}

			_, e := out.Write(b)
			if e != nil {
				return executed, errors.Wrap(e, "write output")
			}
		case ir.OpRead:
			if x.Arg == 0 {
				break
			}

			if x.Arg > len(buf) {
				buf = make([]byte, x.Arg)
			}

			b := buf[:x.Arg]

			n, e := io.ReadFull(in, b)
			switch {
			case errors.Is(e, io.EOF) || errors.Is(e, io.ErrUnexpectedEOF):
				for j := n; j < len(b); j++ {
					b[j] = 0
				}
			case e != nil:
				return executed, errors.Wrap(e, "read input")
			}

			// only the last byte of a merged run survives
			m.SetCell(b[len(b)-1])
		case ir.OpJumpIfZero:
			if m.Cell() == 0 {
				pc = x.Arg
			}
		case ir.OpJumpIfNotZero:
			if m.Cell() != 0 {
				pc = x.Arg
			}
		case ir.OpSetValue:
			m.SetCell(byte(x.Amt))
		case ir.OpAddRelative:
			m.AddAt(m.head+x.Arg, x.Amt)
		case ir.OpAddVector:
			m.AddVector(x.Vec)
		case ir.OpAddVectorMove:
			m.AddVector(x.Vec)
			m.Move(x.Arg)
		case ir.OpMoveRightToZero:
			for m.Cell() != 0 {
				m.Add(x.Amt)
				m.MoveRight(x.Arg)
			}
		case ir.OpMoveLeftToZero:
			for m.Cell() != 0 {
				m.Add(x.Amt)
				m.MoveLeft(x.Arg)
			}
		default:
			panic(errors.New("invalid instruction at %d: %v", pc-1, x))
		}
	}

	return executed, nil
}
