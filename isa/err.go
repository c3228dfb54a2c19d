package isa

import (
	"errors"

	"github.com/tayenx3/machina/translate"
)

var f = translate.From

var (
	ErrRegisterInvalid = errors.New(f("invalid register"))
)

// ErrRegister names a register operand that did not resolve.
type ErrRegister string

func (er ErrRegister) Error() string {
	return f("invalid register '%v'", string(er))
}

func (er ErrRegister) Is(err error) bool {
	return err == ErrRegisterInvalid
}

// ErrRegisterRetired names a general purpose register that no longer
// exists.
type ErrRegisterRetired string

func (er ErrRegisterRetired) Error() string {
	return f("register '%v' is not available, its slot is used by rz", string(er))
}

func (er ErrRegisterRetired) Is(err error) bool {
	return err == ErrRegisterInvalid
}
