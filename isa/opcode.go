package isa

import (
	"strings"
)

// Opcode is the first byte of an instruction word.
type Opcode uint8

//go:generate go tool stringer -linecomment -type=Opcode
const (
	NOP   = Opcode(0x00) // nop
	HLT   = Opcode(0x01) // hlt
	LDI   = Opcode(0x02) // ldi
	ADD   = Opcode(0x03) // add
	SUB   = Opcode(0x04) // sub
	BOR   = Opcode(0x05) // bor
	BAND  = Opcode(0x06) // band
	BXOR  = Opcode(0x07) // bxor
	BNOT  = Opcode(0x08) // bnot
	LOR   = Opcode(0x09) // lor
	LAND  = Opcode(0x0A) // land
	LXOR  = Opcode(0x0B) // lxor
	LNOT  = Opcode(0x0C) // lnot
	SB    = Opcode(0x0D) // sb
	SW    = Opcode(0x0E) // sw
	LBS   = Opcode(0x0F) // lbs
	LBU   = Opcode(0x10) // lbu
	LW    = Opcode(0x11) // lw
	JMR   = Opcode(0x12) // jmr
	JRI   = Opcode(0x13) // jri
	CAR   = Opcode(0x14) // car
	CRI   = Opcode(0x15) // cri
	RET   = Opcode(0x16) // ret
	EQ    = Opcode(0x17) // eq
	NE    = Opcode(0x18) // ne
	GT    = Opcode(0x19) // gt
	LT    = Opcode(0x1A) // lt
	GE    = Opcode(0x1B) // ge
	LE    = Opcode(0x1C) // le
	JMI   = Opcode(0x1D) // jmi
	JII   = Opcode(0x1E) // jii
	CAI   = Opcode(0x1F) // cai
	CII   = Opcode(0x20) // cii
	ADDI  = Opcode(0x21) // addi
	SUBI  = Opcode(0x22) // subi
	INC   = Opcode(0x23) // inc
	DEC   = Opcode(0x24) // dec
	MUL   = Opcode(0x25) // mul
	MULHS = Opcode(0x26) // mulhs
	MULHU = Opcode(0x27) // mulhu
	DIV   = Opcode(0x28) // div
	DIVS  = Opcode(0x29) // divs
	REM   = Opcode(0x2A) // rem
	REMS  = Opcode(0x2B) // rems
	SHL   = Opcode(0x2C) // shl
	SHR   = Opcode(0x2D) // shr
	SAR   = Opcode(0x2E) // sar
	ROL   = Opcode(0x2F) // rol
	ROR   = Opcode(0x30) // ror
	FADD  = Opcode(0x31) // fadd
	FSUB  = Opcode(0x32) // fsub
	FMUL  = Opcode(0x33) // fmul
	FDIV  = Opcode(0x34) // fdiv
	FREM  = Opcode(0x35) // frem

	opcodeCount = 0x36
)

// Format is the operand layout of an instruction word.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_NONE      = Format(0) // none
	FORMAT_R         = Format(1) // r
	FORMAT_RR        = Format(2) // rr
	FORMAT_RRR       = Format(3) // rrr
	FORMAT_RI_NIBBLE = Format(4) // ri
	FORMAT_RRI       = Format(5) // rri
	FORMAT_RR_FLAG   = Format(6) // rr.flag
	FORMAT_I_FLAG    = Format(7) // i.flag
	FORMAT_IR_FLAG   = Format(8) // ir.flag
)

// formatOf maps each defined opcode to its operand layout.
var formatOf = [opcodeCount]Format{
	NOP: FORMAT_NONE,
	HLT: FORMAT_NONE,
	RET: FORMAT_NONE,

	LDI: FORMAT_RI_NIBBLE,

	ADD:   FORMAT_RRR,
	SUB:   FORMAT_RRR,
	BOR:   FORMAT_RRR,
	BAND:  FORMAT_RRR,
	BXOR:  FORMAT_RRR,
	LOR:   FORMAT_RRR,
	LAND:  FORMAT_RRR,
	LXOR:  FORMAT_RRR,
	EQ:    FORMAT_RRR,
	NE:    FORMAT_RRR,
	GT:    FORMAT_RRR,
	LT:    FORMAT_RRR,
	GE:    FORMAT_RRR,
	LE:    FORMAT_RRR,
	MUL:   FORMAT_RRR,
	MULHS: FORMAT_RRR,
	MULHU: FORMAT_RRR,
	DIV:   FORMAT_RRR,
	DIVS:  FORMAT_RRR,
	REM:   FORMAT_RRR,
	REMS:  FORMAT_RRR,
	SHL:   FORMAT_RRR,
	SHR:   FORMAT_RRR,
	SAR:   FORMAT_RRR,
	ROL:   FORMAT_RRR,
	ROR:   FORMAT_RRR,
	FADD:  FORMAT_RRR,
	FSUB:  FORMAT_RRR,
	FMUL:  FORMAT_RRR,
	FDIV:  FORMAT_RRR,
	FREM:  FORMAT_RRR,

	BNOT: FORMAT_RR,
	LNOT: FORMAT_RR,
	SB:   FORMAT_RR,
	SW:   FORMAT_RR,
	LBS:  FORMAT_RR,
	LBU:  FORMAT_RR,
	LW:   FORMAT_RR,
	INC:  FORMAT_RR,
	DEC:  FORMAT_RR,

	JMR: FORMAT_R,
	CAR: FORMAT_R,

	JRI: FORMAT_RR_FLAG,
	CRI: FORMAT_RR_FLAG,

	JMI: FORMAT_I_FLAG,
	CAI: FORMAT_I_FLAG,

	JII: FORMAT_IR_FLAG,
	CII: FORMAT_IR_FLAG,

	ADDI: FORMAT_RRI,
	SUBI: FORMAT_RRI,
}

// mnemonics maps lowercase assembly names to opcodes.
var mnemonics = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for op := range Opcode(opcodeCount) {
		m[op.String()] = op
	}
	return m
}()

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

// Format returns the operand layout of the opcode.
// Undefined opcodes report FORMAT_NONE.
func (op Opcode) Format() Format {
	if !op.Valid() {
		return FORMAT_NONE
	}
	return formatOf[op]
}

// Jump returns true for the jump and call family, which accept a relative
// addressing flag.
func (op Opcode) Jump() bool {
	switch op.Format() {
	case FORMAT_R, FORMAT_RR_FLAG, FORMAT_I_FLAG, FORMAT_IR_FLAG:
		return true
	}
	return false
}

// Call returns true if the opcode pushes a return address.
func (op Opcode) Call() bool {
	switch op {
	case CAR, CRI, CAI, CII:
		return true
	}
	return false
}

// Lookup finds an opcode by mnemonic, ignoring case.
func Lookup(mnemonic string) (op Opcode, ok bool) {
	op, ok = mnemonics[strings.ToLower(mnemonic)]
	return
}

// Operands returns the number of assembly operands the format takes,
// not counting the optional relative flag token.
func (f Format) Operands() int {
	switch f {
	case FORMAT_NONE:
		return 0
	case FORMAT_R, FORMAT_I_FLAG:
		return 1
	case FORMAT_RR, FORMAT_RI_NIBBLE, FORMAT_RR_FLAG, FORMAT_IR_FLAG:
		return 2
	case FORMAT_RRR, FORMAT_RRI:
		return 3
	}
	return 0
}
