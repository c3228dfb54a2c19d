// Package rom handles M0-32 binary program images. An image is the raw
// concatenation of 6-byte instruction words in source order, with no header.
package rom

import (
	"iter"

	"github.com/tayenx3/machina/isa"
)

const (
	EXT_SOURCE = ".m0asm" // Assembly source file extension.
	EXT_BINARY = ".m0bin" // Binary image file extension.
)

// Rom is a program image destined for the code region.
type Rom struct {
	Data []byte
}

// CheckSize returns ErrRomSize if an image of size bytes cannot fit in
// the code region.
func CheckSize(size int64) error {
	if size > isa.CODE_SIZE {
		return ErrRomSize
	}
	return nil
}

// Validate checks the image against the code region capacity.
func (rc *Rom) Validate() error {
	return CheckSize(int64(len(rc.Data)))
}

// Len returns the number of instruction words, counting a trailing
// partial word.
func (rc *Rom) Len() int {
	return (len(rc.Data) + isa.INSTRUCTION_SIZE - 1) / isa.INSTRUCTION_SIZE
}

// Words yields each instruction word with its offset from the start of the
// image. A trailing partial word is zero filled, as it would read from
// freshly loaded memory.
func (rc *Rom) Words() iter.Seq2[uint32, isa.Word] {
	return func(yield func(offset uint32, word isa.Word) bool) {
		for offset := 0; offset < len(rc.Data); offset += isa.INSTRUCTION_SIZE {
			if !yield(uint32(offset), isa.ReadWord(rc.Data[offset:])) {
				return
			}
		}
	}
}
