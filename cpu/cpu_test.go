package cpu

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tayenx3/machina/isa"
	"github.com/tayenx3/machina/rom"
)

func f32bits(f float32) uint32 {
	return math.Float32bits(f)
}

// runSource assembles source, loads it, and runs it to hlt.
func runSource(t *testing.T, source string) (cpu *Cpu) {
	assert := assert.New(t)

	data, err := Assemble(source)
	if !assert.NoError(err) {
		t.FailNow()
	}

	cpu = NewCpu()
	if !assert.NoError(cpu.Load(&rom.Rom{Data: data})) {
		t.FailNow()
	}

	assert.NoError(cpu.Run())
	return
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.False(cpu.Running)
	assert.Equal(uint32(isa.CODE_BASE), cpu.Register[isa.RPC])
	assert.Equal(uint32(isa.CALL_STACK_TOP), cpu.Register[isa.CSP])
	assert.Equal(uint32(isa.DATA_STACK_TOP), cpu.Register[isa.RSP])
	assert.Equal(0, cpu.Memory.Pages())

	cpu.Register[isa.GR0] = 5
	cpu.Memory.Store32(0x1000, 0xdeadbeef)
	cpu.Ticks = 10
	cpu.Reset()

	assert.Equal(uint32(0), cpu.Register[isa.GR0])
	assert.Equal(uint32(0), cpu.Memory.Load32(0x1000))
	assert.Equal(0, cpu.Ticks)
}

func TestCpuAlu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		op     isa.Opcode
		a, b   uint32
		expect uint32
	}){
		{"add", isa.ADD, 0xffffffff, 2, 1},
		{"sub", isa.SUB, 1, 2, 0xffffffff},
		{"inc", isa.INC, 0xffffffff, 0, 0},
		{"dec", isa.DEC, 0, 0, 0xffffffff},
		{"mul", isa.MUL, 0x10000, 0x10000, 0},
		{"mulhu", isa.MULHU, 0x10000, 0x10000, 1},
		{"mulhu wide", isa.MULHU, 0xffffffff, 2, 1},
		{"mulhs", isa.MULHS, 0xffffffff, 2, 0xffffffff},
		{"mulhs positive", isa.MULHS, 0x40000000, 8, 2},
		{"div", isa.DIV, 7, 2, 3},
		{"div zero", isa.DIV, 7, 0, 0xffffffff},
		{"divs", isa.DIVS, 0xfffffff9, 2, 0xfffffffd},
		{"divs zero", isa.DIVS, 7, 0, 0xffffffff},
		{"divs overflow", isa.DIVS, 0x80000000, 0xffffffff, 0x80000000},
		{"rem", isa.REM, 7, 2, 1},
		{"rem zero", isa.REM, 7, 0, 7},
		{"rems", isa.REMS, 0xfffffff9, 2, 0xffffffff},
		{"rems zero", isa.REMS, 0xfffffff9, 0, 0xfffffff9},
		{"rems overflow", isa.REMS, 0x80000000, 0xffffffff, 0},
		{"bor", isa.BOR, 0xf0, 0x0f, 0xff},
		{"band", isa.BAND, 0xf0, 0x3c, 0x30},
		{"bxor", isa.BXOR, 0xf0, 0x3c, 0xcc},
		{"bnot", isa.BNOT, 0, 0, 0xffffffff},
		{"shl", isa.SHL, 1, 33, 2},
		{"shr", isa.SHR, 0x80000000, 31, 1},
		{"sar", isa.SAR, 0x80000000, 4, 0xf8000000},
		{"rol", isa.ROL, 0x80000001, 1, 3},
		{"ror", isa.ROR, 3, 1, 0x80000001},
		{"lor", isa.LOR, 0, 5, 1},
		{"lor false", isa.LOR, 0, 0, 0},
		{"land", isa.LAND, 3, 0, 0},
		{"land true", isa.LAND, 3, 9, 1},
		{"lxor", isa.LXOR, 3, 5, 0},
		{"lxor true", isa.LXOR, 0, 5, 1},
		{"lnot", isa.LNOT, 0, 0, 1},
		{"lnot true", isa.LNOT, 7, 0, 0},
		{"eq", isa.EQ, 5, 5, 1},
		{"ne", isa.NE, 5, 5, 0},
		{"gt unsigned", isa.GT, 0xffffffff, 1, 1},
		{"lt unsigned", isa.LT, 0xffffffff, 1, 0},
		{"ge", isa.GE, 2, 2, 1},
		{"le", isa.LE, 3, 2, 0},
		{"fadd", isa.FADD, f32bits(1.5), f32bits(2.25), f32bits(3.75)},
		{"fsub", isa.FSUB, f32bits(1.5), f32bits(2.25), f32bits(-0.75)},
		{"fmul", isa.FMUL, f32bits(1.5), f32bits(-2), f32bits(-3)},
		{"fdiv", isa.FDIV, f32bits(1), f32bits(0), 0x7f800000},
		{"frem", isa.FREM, f32bits(7.5), f32bits(2), f32bits(1.5)},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.Register[isa.GR1] = entry.a
		cpu.Register[isa.GR2] = entry.b

		err := cpu.Execute(isa.Instruction{Op: entry.op, Dest: isa.GR0, Src1: isa.GR1, Src2: isa.GR2})
		assert.NoError(err, entry.name)
		assert.Equal(entry.expect, cpu.Register[isa.GR0], entry.name)
	}
}

func TestCpuAddWraps(t *testing.T) {
	assert := assert.New(t)

	values := []uint32{0, 1, 2, 0x7fffffff, 0x80000000, 0xfffffffe, 0xffffffff, 0x12345678}
	for _, u1 := range values {
		for _, u2 := range values {
			cpu := NewCpu()
			cpu.Register[isa.GR1] = u1
			cpu.Register[isa.GR2] = u2

			assert.NoError(cpu.Execute(isa.Instruction{Op: isa.ADD, Dest: isa.GR0, Src1: isa.GR1, Src2: isa.GR2}))
			assert.Equal(uint32((uint64(u1)+uint64(u2))%(1<<32)), cpu.Register[isa.GR0])

			assert.NoError(cpu.Execute(isa.Instruction{Op: isa.SUB, Dest: isa.GR0, Src1: isa.GR1, Src2: isa.GR2}))
			assert.Equal(uint32((uint64(u1)+(1<<32)-uint64(u2))%(1<<32)), cpu.Register[isa.GR0])
		}
	}
}

func TestCpuImmediate(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[isa.GR1] = 10

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.LDI, Dest: isa.GR0, Imm: 0xcafe}))
	assert.Equal(uint32(0xcafe), cpu.Register[isa.GR0])

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.ADDI, Dest: isa.GR2, Src1: isa.GR1, Imm: 0xffffffff}))
	assert.Equal(uint32(9), cpu.Register[isa.GR2])

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.SUBI, Dest: isa.GR2, Src1: isa.GR1, Imm: 11}))
	assert.Equal(uint32(0xffffffff), cpu.Register[isa.GR2])
}

func TestCpuMemory(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[isa.GR0] = 0x1000
	cpu.Register[isa.GR1] = 0xaabbccdd

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.SW, Dest: isa.GR0, Src1: isa.GR1}))
	assert.Equal(uint32(0xaabbccdd), cpu.Memory.Load32(0x1000))
	assert.Equal(uint8(0xdd), cpu.Memory.Load8(0x1000))
	assert.Equal(uint8(0xaa), cpu.Memory.Load8(0x1003))

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.LBS, Dest: isa.GR2, Src1: isa.GR0}))
	assert.Equal(uint32(0xffffffdd), cpu.Register[isa.GR2])

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.LBU, Dest: isa.GR2, Src1: isa.GR0}))
	assert.Equal(uint32(0xdd), cpu.Register[isa.GR2])

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.LW, Dest: isa.GR2, Src1: isa.GR0}))
	assert.Equal(uint32(0xaabbccdd), cpu.Register[isa.GR2])

	cpu.Register[isa.GR1] = 0x1234
	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.SB, Dest: isa.GR0, Src1: isa.GR1}))
	assert.Equal(uint32(0xaabbcc34), cpu.Memory.Load32(0x1000))

	// Words straddle the top of memory.
	cpu.Register[isa.GR0] = 0xfffffffe
	cpu.Register[isa.GR1] = 0x11223344
	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.SW, Dest: isa.GR0, Src1: isa.GR1}))
	assert.Equal(uint8(0x44), cpu.Memory.Load8(0xfffffffe))
	assert.Equal(uint8(0x22), cpu.Memory.Load8(0x00000000))
	assert.Equal(uint8(0x11), cpu.Memory.Load8(0x00000001))
}

func TestCpuJump(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		pc     uint32
		inst   isa.Instruction
		cond   uint32
		target uint32
		expect uint32
	}){
		{"jmi", isa.CODE_BASE + 6, isa.Instruction{Op: isa.JMI, Imm: 0xc0000100}, 0, 0, 0xc0000100},
		{"jmi rel back", isa.CODE_BASE + 18, isa.Instruction{Op: isa.JMI, Imm: 0xfffffff4, Relative: true}, 0, 0, isa.CODE_BASE + 6},
		{"jmi rel floor", 4, isa.Instruction{Op: isa.JMI, Imm: 0xffffff9c, Relative: true}, 0, 0, 0},
		{"jmi rel ceiling", 0xfffffff0, isa.Instruction{Op: isa.JMI, Imm: 0x100, Relative: true}, 0, 0, 0xffffffff},
		{"jii taken", 0x100, isa.Instruction{Op: isa.JII, Imm: 0x200, Src1: isa.GR1}, 1, 0, 0x200},
		{"jii not taken", 0x100, isa.Instruction{Op: isa.JII, Imm: 0x200, Src1: isa.GR1}, 0, 0, 0x100},
		{"jmr", 0x100, isa.Instruction{Op: isa.JMR, Dest: isa.GR2}, 0, 0x300, 0x300},
		{"jmr rel", 0x100, isa.Instruction{Op: isa.JMR, Dest: isa.GR2, Relative: true}, 0, 0xfffffff0, 0xf0},
		{"jri taken", 0x100, isa.Instruction{Op: isa.JRI, Dest: isa.GR2, Src1: isa.GR1, Relative: true}, 7, 0x10, 0x110},
		{"jri not taken", 0x100, isa.Instruction{Op: isa.JRI, Dest: isa.GR2, Src1: isa.GR1}, 0, 0x10, 0x100},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.Register[isa.RPC] = entry.pc
		cpu.Register[isa.GR1] = entry.cond
		cpu.Register[isa.GR2] = entry.target

		assert.NoError(cpu.Execute(entry.inst), entry.name)
		assert.Equal(entry.expect, cpu.Register[isa.RPC], entry.name)
		assert.Equal(uint32(isa.CALL_STACK_TOP), cpu.Register[isa.CSP], entry.name)
	}
}

func TestCpuCall(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[isa.RPC] = isa.CODE_BASE + 6

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.CAI, Imm: 0xc0000100}))
	assert.Equal(uint32(0xc0000100), cpu.Register[isa.RPC])
	assert.Equal(uint32(isa.CALL_STACK_TOP-4), cpu.Register[isa.CSP])
	assert.Equal(uint32(isa.CODE_BASE+6), cpu.Memory.Load32(isa.CALL_STACK_TOP-4))
	assert.Equal([]uint32{isa.CODE_BASE + 6}, cpu.Backtrace())

	// Conditional call with a zero condition does nothing.
	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.CII, Imm: 0x10, Src1: isa.GR1}))
	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.CRI, Dest: isa.GR2, Src1: isa.GR1}))
	assert.Equal(uint32(0xc0000100), cpu.Register[isa.RPC])
	assert.Equal(uint32(isa.CALL_STACK_TOP-4), cpu.Register[isa.CSP])

	cpu.Register[isa.GR2] = 0xc0000200
	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.CAR, Dest: isa.GR2}))
	assert.Equal(uint32(0xc0000200), cpu.Register[isa.RPC])
	assert.Equal([]uint32{0xc0000100, isa.CODE_BASE + 6}, cpu.Backtrace())

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.RET}))
	assert.Equal(uint32(0xc0000100), cpu.Register[isa.RPC])

	assert.NoError(cpu.Execute(isa.Instruction{Op: isa.RET}))
	assert.Equal(uint32(isa.CODE_BASE+6), cpu.Register[isa.RPC])
	assert.Equal(uint32(isa.CALL_STACK_TOP), cpu.Register[isa.CSP])
	assert.Empty(cpu.Backtrace())
}

func TestCpuSum(t *testing.T) {
	assert := assert.New(t)

	cpu := runSource(t, "ldi gr0 5\nldi gr1 7\nadd gr2 gr0 gr1\nhlt\n")
	assert.Equal(uint32(12), cpu.Register[isa.GR2])
	assert.Equal(4, cpu.Ticks)
	assert.False(cpu.Running)
}

func TestCpuLoop(t *testing.T) {
	assert := assert.New(t)

	source := `
	ldi gr0 10
	ldi gr1 0
loop:
	inc gr1 gr1
	dec gr0 gr0
	jii rel loop gr0   ; until gr0 is zero
	hlt
`
	cpu := runSource(t, source)
	assert.Equal(uint32(0), cpu.Register[isa.GR0])
	assert.Equal(uint32(10), cpu.Register[isa.GR1])
}

func TestCpuSubroutine(t *testing.T) {
	assert := assert.New(t)

	source := `
	ldi gr0 1
	cai rel sub
	hlt
sub:
	ldi gr1 42
	ret
`
	cpu := runSource(t, source)
	assert.Equal(uint32(42), cpu.Register[isa.GR1])
	assert.Equal(uint32(isa.CALL_STACK_TOP), cpu.Register[isa.CSP])
	assert.Equal(uint32(isa.CODE_BASE+18), cpu.Register[isa.RPC])
}

func TestCpuStoreLoad(t *testing.T) {
	assert := assert.New(t)

	source := `
	ldi gr0 -1
	ldi gr1 0x1000
	sw gr1 gr0
	lw gr2 gr1
	hlt
`
	cpu := runSource(t, source)
	assert.Equal(uint32(0xffffffff), cpu.Register[isa.GR2])
}

func TestCpuForwardBranch(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader("jmi rel skip\nldi gr0 1\nskip:\nhlt\n"))
	if !assert.NoError(err) {
		return
	}

	cpu := NewCpu()
	assert.NoError(cpu.Load(prog.Rom()))
	assert.NoError(cpu.Tick())
	assert.Equal(isa.CODE_BASE+asm.Label["skip"], cpu.Register[isa.RPC])
}

func TestCpuZeroRegister(t *testing.T) {
	assert := assert.New(t)

	cpu := runSource(t, "ldi rz 5\nadd zero rz gr0\ninc rz rz\nhlt\n")
	assert.Equal(uint32(0), cpu.Register[isa.RZ])

	cpu = NewCpu()
	data, err := Assemble("ldi rz 5")
	assert.NoError(err)
	assert.NoError(cpu.Load(&rom.Rom{Data: data}))
	assert.NoError(cpu.Tick())
	assert.Equal(uint32(0), cpu.Register[isa.RZ])
}

func TestCpuHalt(t *testing.T) {
	assert := assert.New(t)

	data, err := Assemble("hlt")
	assert.NoError(err)

	cpu := NewCpu()
	assert.NoError(cpu.Load(&rom.Rom{Data: data}))
	before := cpu.Register

	cpu.Running = true
	assert.NoError(cpu.Tick())
	assert.False(cpu.Running)
	assert.Equal(1, cpu.Ticks)

	expect := before
	expect[isa.RPC] += isa.INSTRUCTION_SIZE
	assert.Equal(expect, cpu.Register)
}

func TestCpuUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	image := &rom.Rom{Data: []byte{0xff, 1, 2, 3, 4, 5, byte(isa.HLT), 0, 0, 0, 0, 0}}

	cpu := NewCpu()
	assert.NoError(cpu.Load(image))
	assert.NoError(cpu.Run())
	assert.Equal(2, cpu.Ticks)

	cpu = NewCpu()
	cpu.Strict = true
	assert.NoError(cpu.Load(image))
	err := cpu.Run()
	assert.ErrorIs(err, ErrOpcodeUnknown)
	assert.ErrorIs(err, ErrOpcode(0))
	assert.Equal(ErrOpcode(0xff), err)
	assert.False(cpu.Running)
	assert.Equal(1, cpu.Ticks)
	assert.Equal(uint32(isa.CODE_BASE+6), cpu.Register[isa.RPC])
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Load(&rom.Rom{Data: []byte{1, 2, 3}}))
	assert.Equal(uint8(1), cpu.Memory.Load8(isa.CODE_BASE))
	assert.Equal(uint8(3), cpu.Memory.Load8(isa.CODE_BASE+2))
	assert.Equal(isa.Word{1, 2, 3, 0, 0, 0}, cpu.Fetch())
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	text := cpu.String()
	assert.Contains(text, " rpc: C000_0000\n")
	assert.Contains(text, " csp: C000_0000\n")
	assert.Contains(text, "  rz: 0000_0000\n")
}
