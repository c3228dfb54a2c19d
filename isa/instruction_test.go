package isa

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name string
		inst Instruction
		word Word
	}{
		{"hlt", Instruction{Op: HLT}, Word{0x01, 0, 0, 0, 0, 0}},
		{"ldi small", Instruction{Op: LDI, Dest: GR0, Imm: 5},
			Word{0x02, 0x51, 0, 0, 0, 0}},
		{"ldi all ones", Instruction{Op: LDI, Dest: GR0, Imm: 0xffffffff},
			Word{0x02, 0xf1, 0xff, 0xff, 0xff, 0x0f}},
		{"ldi nibbles", Instruction{Op: LDI, Dest: GR1, Imm: 0x12345678},
			Word{0x02, 0x82, 0x67, 0x45, 0x23, 0x01}},
		{"add", Instruction{Op: ADD, Dest: GR2, Src1: GR0, Src2: GR1},
			Word{0x03, 0x13, 0x02, 0, 0, 0}},
		{"bnot", Instruction{Op: BNOT, Dest: RPC, Src1: RZ},
			Word{0x08, 0x0f, 0, 0, 0, 0}},
		{"addi", Instruction{Op: ADDI, Dest: GR0, Src1: GR1, Imm: 0x11223344},
			Word{0x21, 0x21, 0x44, 0x33, 0x22, 0x11}},
		{"jmr abs", Instruction{Op: JMR, Dest: GR0},
			Word{0x12, 0x01, 0, 0, 0, 0}},
		{"jmr rel", Instruction{Op: JMR, Dest: GR0, Relative: true},
			Word{0x12, 0x11, 0, 0, 0, 0}},
		{"jri rel", Instruction{Op: JRI, Dest: GR0, Src1: GR1, Relative: true},
			Word{0x13, 0x21, 0x01, 0, 0, 0}},
		{"jmi rel", Instruction{Op: JMI, Imm: 0xfffffff4, Relative: true},
			Word{0x1d, 0xf4, 0xff, 0xff, 0xff, 0x01}},
		{"cai abs", Instruction{Op: CAI, Imm: CODE_BASE},
			Word{0x1f, 0x00, 0x00, 0x00, 0xc0, 0x00}},
		{"jii rel", Instruction{Op: JII, Imm: CODE_BASE, Src1: GR1, Relative: true},
			Word{0x1e, 0x00, 0x00, 0x00, 0xc0, 0x12}},
		{"cii abs", Instruction{Op: CII, Imm: 6, Src1: GRA},
			Word{0x20, 0x06, 0x00, 0x00, 0x00, 0x0b}},
	}

	for _, entry := range table {
		word := Encode(entry.inst)
		assert.Equal(entry.word, word, entry.name)

		decoded := Decode(word)
		if diff := cmp.Diff(entry.inst, decoded); diff != "" {
			t.Errorf("%v: decode mismatch (-want +got):\n%s", entry.name, diff)
		}
	}
}

func TestEncodeIgnoresUnusedFields(t *testing.T) {
	assert := assert.New(t)

	word := Encode(Instruction{Op: RET, Dest: GR5, Imm: 0xdead, Relative: true})
	assert.Equal(Word{0x16, 0, 0, 0, 0, 0}, word)

	word = Encode(Instruction{Op: ADD, Dest: GR0, Src1: GR1, Src2: GR2, Relative: true})
	assert.Equal(Word{0x03, 0x21, 0x03, 0, 0, 0}, word)
}

func TestDecodeUnknown(t *testing.T) {
	assert := assert.New(t)

	inst := Decode(Word{0xee, 0xff, 0xff, 0xff, 0xff, 0xff})
	assert.Equal(Instruction{Op: Opcode(0xee)}, inst)
}

func TestDecodeFlagBits(t *testing.T) {
	assert := assert.New(t)

	// Only bit 0 of a flag byte is significant.
	inst := Decode(Word{byte(JMI), 0x10, 0, 0, 0, 0x02})
	assert.False(inst.Relative)
	assert.Equal(uint32(0x10), inst.Imm)

	// A src2 byte only contributes its low nibble.
	inst = Decode(Word{byte(SUB), 0x21, 0xf3, 0, 0, 0})
	assert.Equal(GR2, inst.Src2)
}

func TestWordUint64(t *testing.T) {
	assert := assert.New(t)

	word := Word{0x02, 0x51, 0x00, 0x00, 0x00, 0x80}
	value := word.Uint64()
	assert.Equal(uint64(0x8000_0000_5102), value)
	assert.Equal(word, WordOf(value))
	assert.Equal(word, WordOf(value|0xffff_0000_0000_0000))
	assert.Equal(LDI, word.Opcode())

	assert.Equal(Word{0x01, 0x02}, ReadWord([]byte{0x01, 0x02}))
	assert.Equal(Word{1, 2, 3, 4, 5, 6}, ReadWord([]byte{1, 2, 3, 4, 5, 6, 7}))
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		inst Instruction
		text string
	}{
		{Instruction{Op: HLT}, "hlt"},
		{Instruction{Op: LDI, Dest: GR0, Imm: 5}, "ldi gr0 0x5"},
		{Instruction{Op: ADD, Dest: GR2, Src1: GR0, Src2: GR1}, "add gr2 gr0 gr1"},
		{Instruction{Op: SW, Dest: RSP, Src1: GR3}, "sw rsp gr3"},
		{Instruction{Op: ADDI, Dest: GR0, Src1: GR0, Imm: 1}, "addi gr0 gr0 0x1"},
		{Instruction{Op: JMR, Dest: GR4, Relative: true}, "jmr rel gr4"},
		{Instruction{Op: CRI, Dest: GR4, Src1: GR5}, "cri gr4 gr5"},
		{Instruction{Op: JMI, Imm: 0xfffffffa, Relative: true}, "jmi rel 0xfffffffa"},
		{Instruction{Op: JII, Imm: 0xc0000000, Src1: GR0}, "jii 0xc0000000 gr0"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.inst.String())
	}
}
