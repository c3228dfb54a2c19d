package rom

import (
	"errors"

	"github.com/tayenx3/machina/translate"
)

var f = translate.From

var (
	// Image errors
	ErrRomSize = errors.New(f("program exceeds code region capacity"))
)
