package ir

import "fmt"

// VectorSize is the number of tape cells an AddVector instruction touches.
const VectorSize = 4

type (
	Op uint8

	// Insn is one executable operation. The zero value is not a valid
	// instruction. Insn is comparable; structural equality is ==.
	//
	// Field use per Op:
	//
	//	Add             Amt = amount
	//	Move            Arg = pointer delta
	//	Write           Arg = repeat count
	//	Read            Arg = bytes to consume, the last one is kept
	//	JumpIfZero      Arg = target index
	//	JumpIfNotZero   Arg = target index
	//	SetValue        Amt = value
	//	AddRelative     Arg = cell offset, Amt = amount
	//	AddVector       Vec = amounts for cells head+0..3
	//	AddVectorMove   Vec = amounts, Arg = move stride applied after
	//	MoveRightToZero Amt = increment, Arg = stride (positive)
	//	MoveLeftToZero  Amt = increment, Arg = stride (positive)
	Insn struct {
		Op  Op
		Amt int8
		Arg int
		Vec [VectorSize]int8
	}

	// TapeSize selects the memory policy: Infinite is an unbounded,
	// monotonically growing tape, any positive value is a fixed tape of
	// that many cells with wrapping pointer arithmetic.
	TapeSize int
)

const (
	OpInvalid Op = iota

	OpAdd
	OpMove
	OpWrite
	OpRead
	OpJumpIfZero
	OpJumpIfNotZero

	OpSetValue
	OpAddRelative
	OpAddVector
	OpAddVectorMove
	OpMoveRightToZero
	OpMoveLeftToZero
)

const Infinite TapeSize = 0

func Finite(cells int) TapeSize { return TapeSize(cells) }

func (s TapeSize) IsFinite() bool { return s > 0 }

func (s TapeSize) Cells() int { return int(s) }

func Add(amount int8) Insn { return Insn{Op: OpAdd, Amt: amount} }
func Move(delta int) Insn  { return Insn{Op: OpMove, Arg: delta} }
func Write(count int) Insn { return Insn{Op: OpWrite, Arg: count} }
func Read(count int) Insn  { return Insn{Op: OpRead, Arg: count} }

func JumpIfZero(target int) Insn    { return Insn{Op: OpJumpIfZero, Arg: target} }
func JumpIfNotZero(target int) Insn { return Insn{Op: OpJumpIfNotZero, Arg: target} }

func SetValue(value int8) Insn { return Insn{Op: OpSetValue, Amt: value} }

func AddRelative(offset int, amount int8) Insn {
	return Insn{Op: OpAddRelative, Arg: offset, Amt: amount}
}

func AddVector(vec [VectorSize]int8) Insn { return Insn{Op: OpAddVector, Vec: vec} }

func AddVectorMove(stride int, vec [VectorSize]int8) Insn {
	return Insn{Op: OpAddVectorMove, Arg: stride, Vec: vec}
}

func MoveRightToZero(increment int8, stride int) Insn {
	return Insn{Op: OpMoveRightToZero, Amt: increment, Arg: stride}
}

func MoveLeftToZero(increment int8, stride int) Insn {
	return Insn{Op: OpMoveLeftToZero, Amt: increment, Arg: stride}
}

// PreservesHead reports whether executing the instruction leaves the tape
// pointer where it was.
func (i Insn) PreservesHead() bool {
	switch i.Op {
	case OpMove, OpAddVectorMove, OpMoveRightToZero, OpMoveLeftToZero:
		return false
	}

	return true
}

// Stable reports whether the instruction keeps the tape pointer in place and
// touches no cell beyond the single one it declares. Stable instructions can
// be crossed when merging AddRelative pairs.
func (i Insn) Stable() bool {
	switch i.Op {
	case OpAdd, OpWrite, OpRead, OpSetValue, OpAddRelative:
		return true
	}

	return false
}

// Touches reports whether a stable instruction reads or writes the cell at
// the given offset from the head.
func (i Insn) Touches(offset int) bool {
	if i.Op == OpAddRelative {
		return i.Arg == offset
	}

	return offset == 0
}

func (i Insn) String() string {
	switch i.Op {
	case OpAdd:
		return fmt.Sprintf("%-16s%+d", "Add", i.Amt)
	case OpMove:
		return fmt.Sprintf("%-16s%c%d", "Move", dir(i.Arg), abs(i.Arg))
	case OpWrite:
		return fmt.Sprintf("%-16s.%d", "Write", i.Arg)
	case OpRead:
		return fmt.Sprintf("%-16s,%d", "Read", i.Arg)
	case OpJumpIfZero:
		return fmt.Sprintf("%-16s[%d", "JumpIfZero", i.Arg)
	case OpJumpIfNotZero:
		return fmt.Sprintf("%-16s]%d", "JumpIfNotZero", i.Arg)
	case OpSetValue:
		return fmt.Sprintf("%-16s%d", "SetValue", i.Amt)
	case OpAddRelative:
		return fmt.Sprintf("%-16s%+d~%+d", "AddRelative", i.Arg, i.Amt)
	case OpAddVector:
		return fmt.Sprintf("%-16s%v", "AddVector", i.Vec)
	case OpAddVectorMove:
		return fmt.Sprintf("%-16s%v%+d", "AddVectorMove", i.Vec, i.Arg)
	case OpMoveRightToZero:
		return fmt.Sprintf("%-16s%+d>%d", "MoveToZero", i.Amt, i.Arg)
	case OpMoveLeftToZero:
		return fmt.Sprintf("%-16s%+d<%d", "MoveToZero", i.Amt, i.Arg)
	}

	return fmt.Sprintf("%-16s%d %d %v", "Invalid", i.Amt, i.Arg, i.Vec)
}

func dir(x int) byte {
	if x > 0 {
		return '>'
	}

	return '<'
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
