package cpu

import (
	"errors"

	"github.com/tayenx3/machina/isa"
	"github.com/tayenx3/machina/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrOpcodeUnknown = errors.New(f("opcode unknown"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOperandCount       = errors.New(f("invalid operand count"))
	ErrInstructionInvalid = errors.New(f("unrecognized instruction"))
	ErrRelativeFlag       = errors.New(f("expected register or relative flag"))
	ErrImmediateInvalid   = errors.New(f("invalid immediate"))
	ErrCharacterInvalid   = errors.New(f("invalid character literal"))
	ErrTargetInvalid      = errors.New(f("invalid jump target"))
	ErrRegisterInvalid    = isa.ErrRegisterInvalid
)

// ErrOpcode is an undefined opcode met by a strict CPU.
type ErrOpcode isa.Opcode

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x", uint8(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrOpcodeUnknown {
		return true
	}
	_, ok = err.(ErrOpcode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrImmediate string

func (err ErrImmediate) Error() string {
	return f("invalid immediate '%v'", string(err))
}

func (err ErrImmediate) Is(target error) bool {
	return target == ErrImmediateInvalid
}

type ErrCharacter string

func (err ErrCharacter) Error() string {
	return f("invalid character literal %v", string(err))
}

func (err ErrCharacter) Is(target error) bool {
	return target == ErrCharacterInvalid
}

type ErrTarget string

func (err ErrTarget) Error() string {
	return f("invalid jump target '%v'", string(err))
}

func (err ErrTarget) Is(target error) bool {
	return target == ErrTargetInvalid
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
