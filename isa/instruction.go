package isa

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	INSTRUCTION_SIZE = 6 // Bytes per instruction word.

	relativeBit = 0x10 // Relative flag in a register nibble byte.
)

// Word is one raw instruction as stored in memory.
type Word [INSTRUCTION_SIZE]byte

// ReadWord copies the first INSTRUCTION_SIZE bytes of data into a Word.
// Short input is zero filled.
func ReadWord(data []byte) (w Word) {
	copy(w[:], data)
	return
}

// WordOf converts the low 48 bits of a little-endian integer to a Word.
func WordOf(value uint64) (w Word) {
	for n := range INSTRUCTION_SIZE {
		w[n] = byte(value >> (8 * n))
	}
	return
}

// Uint64 returns the word as a little-endian integer.
func (w Word) Uint64() (value uint64) {
	for n := range INSTRUCTION_SIZE {
		value |= uint64(w[n]) << (8 * n)
	}
	return
}

// Opcode returns the opcode byte.
func (w Word) Opcode() Opcode {
	return Opcode(w[0])
}

// Instruction is the decoded form of a Word. Which fields are meaningful
// depends on the opcode Format:
//
//	FORMAT_R          Dest (jump target), Relative
//	FORMAT_RR         Dest, Src1
//	FORMAT_RRR        Dest, Src1, Src2
//	FORMAT_RI_NIBBLE  Dest, Imm
//	FORMAT_RRI        Dest, Src1, Imm
//	FORMAT_RR_FLAG    Dest (jump target), Src1 (condition), Relative
//	FORMAT_I_FLAG     Imm (address or offset), Relative
//	FORMAT_IR_FLAG    Imm (address or offset), Src1 (condition), Relative
type Instruction struct {
	Op       Opcode
	Dest     Register
	Src1     Register
	Src2     Register
	Imm      uint32
	Relative bool
}

func flagByte(relative bool) byte {
	if relative {
		return 1
	}
	return 0
}

func regPair(low, high Register) byte {
	return byte(low&0xf) | byte(high&0xf)<<4
}

// Encode packs an instruction into its wire format.
func Encode(inst Instruction) (w Word) {
	w[0] = byte(inst.Op)

	switch inst.Op.Format() {
	case FORMAT_NONE:
	case FORMAT_R:
		w[1] = byte(inst.Dest & 0xf)
		if inst.Relative {
			w[1] |= relativeBit
		}
	case FORMAT_RR:
		w[1] = regPair(inst.Dest, inst.Src1)
	case FORMAT_RRR:
		w[1] = regPair(inst.Dest, inst.Src1)
		w[2] = byte(inst.Src2 & 0xf)
	case FORMAT_RI_NIBBLE:
		imm := inst.Imm
		w[1] = byte(inst.Dest&0xf) | byte(imm&0xf)<<4
		w[2] = byte(imm >> 4)
		w[3] = byte(imm >> 12)
		w[4] = byte(imm >> 20)
		w[5] = byte(imm>>28) & 0xf
	case FORMAT_RRI:
		w[1] = regPair(inst.Dest, inst.Src1)
		binary.LittleEndian.PutUint32(w[2:6], inst.Imm)
	case FORMAT_RR_FLAG:
		w[1] = regPair(inst.Dest, inst.Src1)
		w[2] = flagByte(inst.Relative)
	case FORMAT_I_FLAG:
		binary.LittleEndian.PutUint32(w[1:5], inst.Imm)
		w[5] = flagByte(inst.Relative)
	case FORMAT_IR_FLAG:
		binary.LittleEndian.PutUint32(w[1:5], inst.Imm)
		w[5] = byte(inst.Src1 & 0xf)
		if inst.Relative {
			w[5] |= relativeBit
		}
	}

	return
}

// Decode unpacks a word. Undefined opcodes decode with no operands.
func Decode(w Word) (inst Instruction) {
	inst.Op = w.Opcode()

	low := func(b byte) Register { return Register(b & 0xf) }
	high := func(b byte) Register { return Register(b >> 4) }

	switch inst.Op.Format() {
	case FORMAT_NONE:
	case FORMAT_R:
		inst.Dest = low(w[1])
		inst.Relative = (w[1] & relativeBit) != 0
	case FORMAT_RR:
		inst.Dest = low(w[1])
		inst.Src1 = high(w[1])
	case FORMAT_RRR:
		inst.Dest = low(w[1])
		inst.Src1 = high(w[1])
		inst.Src2 = low(w[2])
	case FORMAT_RI_NIBBLE:
		inst.Dest = low(w[1])
		inst.Imm = uint32(w[1]>>4) |
			uint32(w[2])<<4 |
			uint32(w[3])<<12 |
			uint32(w[4])<<20 |
			uint32(w[5]&0xf)<<28
	case FORMAT_RRI:
		inst.Dest = low(w[1])
		inst.Src1 = high(w[1])
		inst.Imm = binary.LittleEndian.Uint32(w[2:6])
	case FORMAT_RR_FLAG:
		inst.Dest = low(w[1])
		inst.Src1 = high(w[1])
		inst.Relative = (w[2] & 1) != 0
	case FORMAT_I_FLAG:
		inst.Imm = binary.LittleEndian.Uint32(w[1:5])
		inst.Relative = (w[5] & 1) != 0
	case FORMAT_IR_FLAG:
		inst.Imm = binary.LittleEndian.Uint32(w[1:5])
		inst.Src1 = low(w[5])
		inst.Relative = (w[5] & relativeBit) != 0
	}

	return
}

// String returns the instruction as assembly text that reassembles to the
// same word.
func (inst Instruction) String() string {
	words := []string{inst.Op.String()}

	if inst.Op.Jump() && inst.Relative {
		words = append(words, "rel")
	}

	imm := fmt.Sprintf("%#x", inst.Imm)

	switch inst.Op.Format() {
	case FORMAT_R:
		words = append(words, inst.Dest.String())
	case FORMAT_RR, FORMAT_RR_FLAG:
		words = append(words, inst.Dest.String(), inst.Src1.String())
	case FORMAT_RRR:
		words = append(words, inst.Dest.String(), inst.Src1.String(), inst.Src2.String())
	case FORMAT_RI_NIBBLE:
		words = append(words, inst.Dest.String(), imm)
	case FORMAT_RRI:
		words = append(words, inst.Dest.String(), inst.Src1.String(), imm)
	case FORMAT_I_FLAG:
		words = append(words, imm)
	case FORMAT_IR_FLAG:
		words = append(words, imm, inst.Src1.String())
	}

	return strings.Join(words, " ")
}
