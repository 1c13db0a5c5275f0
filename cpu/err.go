package cpu

import (
	"errors"

	"github.com/ezrec/uctrace/translate"
)

var f = translate.From

var (
	// Decode errors
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOpcodeTruncated = errors.New(f("opcode truncated"))
	ErrRegisterInvalid = errors.New(f("register invalid"))

	// Execution errors
	ErrCpuHalted = errors.New(f("cpu halted"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrOriginSyntax    = errors.New(f(".org syntax"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrOpcodeArgs      = errors.New(f("bad argument count"))
)

// ErrFault indicates a fetch or execution fault at a program counter.
type ErrFault struct {
	Pc  uint64
	Err error
}

func (err *ErrFault) Error() string {
	return f("fault at pc 0x%x: %v", err.Pc, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrLabelMissing indicates a reference to an undefined label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrParseNumber indicates a word that is not a number.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseRegister indicates a word that is not a register name.
type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

// ErrParseExpression indicates a $() expression that failed to evaluate.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax indicates the location of an assembler syntax error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
