package optimize

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"

	"github.com/bfc-lang/bfc/compiler/ir"
)

var zeroVec [ir.VectorSize]int8

// Optimize rewrites the program into an equivalent, typically shorter one.
// Five passes run in a cycle until a full cycle stops shrinking the program,
// then jump targets are recomputed. Every pass reads one buffer and appends
// to another, so no pass observes its own rewrites mid-iteration.
//
// The tape size is a hint only: rewrites are not bound-aware.
func Optimize(ctx context.Context, p []ir.Insn, size ir.TapeSize) []ir.Insn {
	tr := tlog.SpanFromContext(ctx)

	start := len(p)
	buf := make([]ir.Insn, 0, len(p))

	apply := func(pass func(dst, src []ir.Insn) []ir.Insn) {
		buf = pass(buf[:0], p)
		p, buf = buf, p
	}

	for prev := len(p) + 1; len(p) < prev; {
		prev = len(p)

		apply(squash)
		apply(window4)
		apply(window3)
		apply(window2)
		apply(dropDeadLoops)

		tlog.V("optimize").Printw("optimizer cycle", "insns", len(p), "removed", prev-len(p), "initial", start, "tape", size)
	}

	fixLoops(p)

	tr.Printw("optimized", "insns", len(p), "initial", start)

	return p
}

// squash merges maximal runs of accumulator-style instructions and drops
// the ones that sum to a no-op.
func squash(dst, src []ir.Insn) []ir.Insn {
	for i := 0; i < len(src); {
		x := src[i]

		switch x.Op {
		case ir.OpAdd:
			acc := x.Amt
			j := i + 1

			for ; j < len(src) && src[j].Op == ir.OpAdd; j++ {
				acc += src[j].Amt
			}

			if acc != 0 {
				dst = append(dst, ir.Add(acc))
			}

			i = j
		case ir.OpMove, ir.OpWrite, ir.OpRead:
			// counts do not wrap: overflow ends the run early
			acc := x.Arg
			j := i + 1

			for ; j < len(src) && src[j].Op == x.Op; j++ {
				sum, ok := addChecked(acc, src[j].Arg)
				if !ok {
					break
				}

				acc = sum
			}

			if acc != 0 {
				dst = append(dst, ir.Insn{Op: x.Op, Arg: acc})
			}

			i = j
		case ir.OpSetValue:
			// the last one shadows the rest
			v := x.Amt
			j := i + 1

			for ; j < len(src) && src[j].Op == ir.OpSetValue; j++ {
				v = src[j].Amt
			}

			dst = append(dst, ir.SetValue(v))
			i = j
		case ir.OpAddRelative:
			acc := x.Amt
			j := i + 1

			for ; j < len(src) && src[j].Op == ir.OpAddRelative && src[j].Arg == x.Arg; j++ {
				acc += src[j].Amt
			}

			switch {
			case acc == 0:
			case x.Arg == 0:
				dst = append(dst, ir.Add(acc))
			default:
				dst = append(dst, ir.AddRelative(x.Arg, acc))
			}

			i = j
		case ir.OpAddVector:
			vec := x.Vec
			j := i + 1

			for ; j < len(src) && src[j].Op == ir.OpAddVector; j++ {
				for k, a := range src[j].Vec {
					vec[k] += a
				}
			}

			if vec != zeroVec {
				dst = append(dst, demote(vec))
			}

			i = j
		case ir.OpAddVectorMove:
			switch {
			case x.Vec == zeroVec:
				if x.Arg != 0 {
					dst = append(dst, ir.Move(x.Arg))
				}
			case x.Arg == 0:
				dst = append(dst, demote(x.Vec))
			default:
				dst = append(dst, x)
			}

			i++
		case ir.OpMoveRightToZero, ir.OpMoveLeftToZero:
			// once the cell is zero the following ones never run
			dst = append(dst, x)
			j := i + 1

			for ; j < len(src) && (src[j].Op == ir.OpMoveRightToZero || src[j].Op == ir.OpMoveLeftToZero); j++ {
			}

			i = j
		default:
			dst = append(dst, x)
			i++
		}
	}

	return dst
}

// demote lowers a vector with at most one nonzero lane to the plain form.
func demote(vec [ir.VectorSize]int8) ir.Insn {
	lane := -1

	for k, a := range vec {
		if a == 0 {
			continue
		}

		if lane >= 0 {
			return ir.AddVector(vec)
		}

		lane = k
	}

	if lane <= 0 {
		return ir.Add(vec[0])
	}

	return ir.AddRelative(lane, vec[lane])
}

func window4(dst, src []ir.Insn) []ir.Insn {
	for i := 0; i < len(src); {
		if i+3 < len(src) {
			if out, ok := fuse4(dst, src[i], src[i+1], src[i+2], src[i+3]); ok {
				dst = out
				i += 4

				continue
			}
		}

		dst = append(dst, src[i])
		i++
	}

	return dst
}

func window3(dst, src []ir.Insn) []ir.Insn {
	for i := 0; i < len(src); {
		if i+2 < len(src) {
			if out, ok := fuse3(dst, src[i], src[i+1], src[i+2]); ok {
				dst = out
				i += 3

				continue
			}
		}

		dst = append(dst, src[i])
		i++
	}

	return dst
}

func window2(dst, src []ir.Insn) []ir.Insn {
	for i := 0; i < len(src); {
		if i+1 < len(src) {
			if out, ok := fuse2(dst, src[i], src[i+1]); ok {
				dst = out
				i += 2

				continue
			}
		}

		dst = append(dst, src[i])
		i++
	}

	return dst
}

func fuse4(dst []ir.Insn, a, b, c, d ir.Insn) ([]ir.Insn, bool) {
	switch {
	case a.Op == ir.OpAdd && b.Op == ir.OpMove && c.Op == ir.OpAdd && d.Op == ir.OpMove:
		m1, m2 := b.Arg, d.Arg
		total := m1 + m2

		if m1 > 0 && m2 > 0 && total < ir.VectorSize {
			var vec [ir.VectorSize]int8
			vec[0] = a.Amt
			vec[m1] = c.Amt

			return append(dst, ir.AddVectorMove(total, vec)), true
		}

		if m1 < 0 && m2 < 0 && total > -ir.VectorSize {
			// lanes are offsets from the final head position
			var vec [ir.VectorSize]int8
			vec[-m2] = c.Amt
			vec[-total] = a.Amt

			return append(dst, ir.Move(total), ir.AddVector(vec)), true
		}
	case a.Op == ir.OpMove && b.Op == ir.OpAdd && c.Op == ir.OpMove && d.Op == ir.OpAdd:
		m1, m2 := a.Arg, c.Arg
		total := m1 + m2

		if m1 > 0 && m2 > 0 && total < ir.VectorSize {
			var vec [ir.VectorSize]int8
			vec[m1] = b.Amt
			vec[total] = d.Amt

			return append(dst, ir.AddVectorMove(total, vec)), true
		}

		if m1 < 0 && m2 < 0 && total > -ir.VectorSize {
			var vec [ir.VectorSize]int8
			vec[0] = d.Amt
			vec[-m2] = b.Amt

			return append(dst, ir.Move(total), ir.AddVector(vec)), true
		}
	case a.Op == ir.OpJumpIfZero && b.Op == ir.OpAdd && c.Op == ir.OpMove && d.Op == ir.OpJumpIfNotZero && c.Arg != 0:
		if c.Arg > 0 {
			return append(dst, ir.MoveRightToZero(b.Amt, c.Arg)), true
		}

		return append(dst, ir.MoveLeftToZero(b.Amt, -c.Arg)), true
	case a.Op == ir.OpAddRelative && d.Op == ir.OpAddRelative && a.Arg == d.Arg &&
		b.Stable() && !b.Touches(a.Arg) && c.Stable() && !c.Touches(a.Arg):
		return append(dst, ir.AddRelative(a.Arg, a.Amt+d.Amt), b, c), true
	}

	return dst, false
}

func fuse3(dst []ir.Insn, a, b, c ir.Insn) ([]ir.Insn, bool) {
	switch {
	case a.Op == ir.OpAdd && b.Op == ir.OpMove && c.Op == ir.OpAdd && b.Arg > 0 && b.Arg < ir.VectorSize:
		var vec [ir.VectorSize]int8
		vec[0] = a.Amt
		vec[b.Arg] = c.Amt

		return append(dst, ir.AddVectorMove(b.Arg, vec)), true
	case a.Op == ir.OpAdd && b.Op == ir.OpMove && c.Op == ir.OpAdd && b.Arg < 0 && b.Arg > -ir.VectorSize:
		var vec [ir.VectorSize]int8
		vec[0] = c.Amt
		vec[-b.Arg] = a.Amt

		return append(dst, ir.Move(b.Arg), ir.AddVector(vec)), true
	case a.Op == ir.OpMove && b.Op == ir.OpAdd && c.Op == ir.OpMove:
		if a.Arg == -c.Arg {
			return append(dst, ir.AddRelative(a.Arg, b.Amt)), true
		}

		return append(dst, ir.AddRelative(a.Arg, b.Amt), ir.Move(a.Arg+c.Arg)), true
	case a.Op == ir.OpJumpIfZero && b.Op == ir.OpAdd && c.Op == ir.OpJumpIfNotZero && (b.Amt == 1 || b.Amt == -1):
		// a one-step loop drains the cell whatever it held
		return append(dst, ir.SetValue(0)), true
	case a.Op == ir.OpJumpIfZero && b.Op == ir.OpMove && c.Op == ir.OpJumpIfNotZero && b.Arg != 0:
		if b.Arg > 0 {
			return append(dst, ir.MoveRightToZero(0, b.Arg)), true
		}

		return append(dst, ir.MoveLeftToZero(0, -b.Arg)), true
	case a.Op == ir.OpAddRelative && c.Op == ir.OpAddRelative && a.Arg == c.Arg && b.Stable() && !b.Touches(a.Arg):
		return append(dst, ir.AddRelative(a.Arg, a.Amt+c.Amt), b), true
	}

	return dst, false
}

func fuse2(dst []ir.Insn, a, b ir.Insn) ([]ir.Insn, bool) {
	switch {
	case a.Op == ir.OpAdd && b.Op == ir.OpSetValue:
		// the Add is dead
		return append(dst, b), true
	case a.Op == ir.OpSetValue && b.Op == ir.OpAdd:
		return append(dst, ir.SetValue(a.Amt+b.Amt)), true
	case a.Op == ir.OpSetValue && a.Amt == 0 && (b.Op == ir.OpMoveRightToZero || b.Op == ir.OpMoveLeftToZero):
		// the loop guard is vacuously satisfied
		return append(dst, a), true
	case a.Op == ir.OpMove && b.Op == ir.OpAdd && a.Arg > 0 && a.Arg < ir.VectorSize:
		var vec [ir.VectorSize]int8
		vec[a.Arg] = b.Amt

		return append(dst, ir.AddVectorMove(a.Arg, vec)), true
	case a.Op == ir.OpAdd && b.Op == ir.OpAddRelative && b.Arg > 0 && b.Arg < ir.VectorSize:
		var vec [ir.VectorSize]int8
		vec[0] = a.Amt
		vec[b.Arg] = b.Amt

		return append(dst, ir.AddVector(vec)), true
	case a.Op == ir.OpAddRelative && b.Op == ir.OpAdd && a.Arg > 0 && a.Arg < ir.VectorSize:
		var vec [ir.VectorSize]int8
		vec[0] = b.Amt
		vec[a.Arg] = a.Amt

		return append(dst, ir.AddVector(vec)), true
	case a.Op == ir.OpAdd && (b.Op == ir.OpAddVector || b.Op == ir.OpAddVectorMove):
		b.Vec[0] += a.Amt

		return append(dst, b), true
	case a.Op == ir.OpAddRelative && (b.Op == ir.OpAddVector || b.Op == ir.OpAddVectorMove) && a.Arg >= 0 && a.Arg < ir.VectorSize:
		b.Vec[a.Arg] += a.Amt

		return append(dst, b), true
	case a.Op == ir.OpAddRelative && b.Op == ir.OpMove && a.Arg >= 0 && a.Arg < ir.VectorSize:
		var vec [ir.VectorSize]int8
		vec[a.Arg] = a.Amt

		return append(dst, ir.AddVectorMove(b.Arg, vec)), true
	case a.Op == ir.OpAddVector && b.Op == ir.OpAdd:
		a.Vec[0] += b.Amt

		return append(dst, a), true
	case a.Op == ir.OpAddVectorMove && b.Op == ir.OpAdd && a.Arg >= 0 && a.Arg < ir.VectorSize:
		a.Vec[a.Arg] += b.Amt

		return append(dst, a), true
	case a.Op == ir.OpAddVector && b.Op == ir.OpMove:
		return append(dst, ir.AddVectorMove(b.Arg, a.Vec)), true
	case a.Op == ir.OpAddVectorMove && b.Op == ir.OpMove:
		a.Arg += b.Arg

		return append(dst, a), true
	case (a.Op == ir.OpMoveRightToZero || a.Op == ir.OpMoveLeftToZero) && b.Op == ir.OpAdd:
		// the loop left the cell at zero, so the Add is absolute
		return append(dst, a, ir.SetValue(b.Amt)), true
	}

	return dst, false
}

// dropDeadLoops removes loops guarded by a cell that is statically known to
// be zero. The flag starts true: the tape is zeroed before the first
// instruction runs.
func dropDeadLoops(dst, src []ir.Insn) []ir.Insn {
	zero := true

	for i := 0; i < len(src); i++ {
		x := src[i]

		if x.Op == ir.OpJumpIfZero && zero {
			for depth := 1; depth > 0; {
				i++

				switch src[i].Op {
				case ir.OpJumpIfZero:
					depth++
				case ir.OpJumpIfNotZero:
					depth--
				}
			}

			continue
		}

		dst = append(dst, x)

		switch x.Op {
		case ir.OpSetValue:
			zero = x.Amt == 0
		case ir.OpAdd, ir.OpMove, ir.OpRead, ir.OpAddRelative, ir.OpAddVector, ir.OpAddVectorMove:
			zero = false
		case ir.OpJumpIfNotZero, ir.OpMoveRightToZero, ir.OpMoveLeftToZero:
			// the loop just exited, the cell is zero
			zero = true
		}
	}

	return dst
}

// fixLoops recomputes jump targets after all length-changing rewrites.
// An unbalanced stream here is a defect in the passes above, not user input.
func fixLoops(p []ir.Insn) {
	var stack []int

	for i, x := range p {
		switch x.Op {
		case ir.OpJumpIfZero:
			stack = append(stack, i)
		case ir.OpJumpIfNotZero:
			if len(stack) == 0 {
				panic(fmt.Sprintf("fix loops: unbalanced loop end at %d", i))
			}

			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			p[j].Arg = i
			p[i].Arg = j
		}
	}

	if len(stack) != 0 {
		panic(fmt.Sprintf("fix loops: unbalanced loop start at %d", stack[len(stack)-1]))
	}
}

func addChecked(a, b int) (int, bool) {
	s := a + b
	if b > 0 && s < a || b < 0 && s > a {
		return a, false
	}

	return s, true
}
