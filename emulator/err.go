package emulator

import (
	"errors"

	"github.com/tayenx3/machina/translate"
)

var f = translate.From

var (
	ErrWatchdog      = errors.New(f("watchdog expired"))
	ErrConfigUnknown = errors.New(f("unknown configuration key"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Addr   uint32
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (%#08x) %v", err.LineNo, err.Addr, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
