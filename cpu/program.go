package cpu

import (
	"iter"
	"strings"

	"github.com/tayenx3/machina/isa"
	"github.com/tayenx3/machina/rom"
)

// Statement is one assembled instruction and where it came from.
type Statement struct {
	LineNo      int             // Source line number, 1-based.
	Addr        uint32          // Offset of the word from the start of the image.
	Words       []string        // Source words, label removed.
	Instruction isa.Instruction // Encoded instruction.
}

// String returns the source words of the statement.
func (stmt *Statement) String() string {
	return strings.Join(stmt.Words, " ")
}

// Program is the result of assembling a source file.
type Program struct {
	Statements []Statement
}

// Debug returns the statement that occupies the runtime address addr, or
// nil if addr is outside the program.
func (prog *Program) Debug(addr uint32) (stmt *Statement) {
	offset := addr - isa.CODE_BASE
	for n := range prog.Statements {
		st := &prog.Statements[n]
		if offset >= st.Addr && offset < st.Addr+isa.INSTRUCTION_SIZE {
			stmt = st
			break
		}
	}

	return
}

// Codes yields the image offset and encoded word of every statement.
func (prog *Program) Codes() iter.Seq2[uint32, isa.Word] {
	return func(yield func(addr uint32, word isa.Word) bool) {
		for _, st := range prog.Statements {
			if !yield(st.Addr, isa.Encode(st.Instruction)) {
				return
			}
		}
	}
}

// Binary returns the raw image: each word in order, no header.
func (prog *Program) Binary() (data []byte) {
	data = make([]byte, 0, len(prog.Statements)*isa.INSTRUCTION_SIZE)
	for _, word := range prog.Codes() {
		data = append(data, word[:]...)
	}

	return
}

// Rom returns the program as a loadable image.
func (prog *Program) Rom() *rom.Rom {
	return &rom.Rom{Data: prog.Binary()}
}
