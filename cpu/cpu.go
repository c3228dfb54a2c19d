package cpu

import (
	"fmt"
	"log"
	"math"
	"math/bits"

	"github.com/tayenx3/machina/isa"
	"github.com/tayenx3/machina/rom"
)

// Cpu is the M0-32 execution engine: a register file, a memory, and the
// fetch-decode-execute cycle.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.
	Strict  bool // Set to fault on undefined opcodes instead of ignoring them.

	Register [isa.REGISTER_COUNT]uint32 // Register file.
	Memory   *Memory                    // Owned memory.
	Running  bool                       // Cleared by hlt.

	Ticks int // Cycles executed since reset.
}

// NewCpu creates a halted CPU with zeroed memory.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Memory: &Memory{},
	}

	cpu.Reset()

	return
}

// Reset the CPU state.
// - Clears registers and memory.
// - Sets rpc to CODE_BASE, csp to CALL_STACK_TOP, rsp to DATA_STACK_TOP.
// - Zeros the tick counter and halts.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Memory.Reset()

	cpu.Register[isa.RPC] = isa.CODE_BASE
	cpu.Register[isa.CSP] = isa.CALL_STACK_TOP
	cpu.Register[isa.RSP] = isa.DATA_STACK_TOP

	cpu.Running = false
	cpu.Ticks = 0
}

// Load copies a program image to CODE_BASE. Oversized images are
// rejected before memory is touched.
func (cpu *Cpu) Load(rc *rom.Rom) (err error) {
	err = rc.Validate()
	if err != nil {
		return
	}

	cpu.Memory.Write(isa.CODE_BASE, rc.Data)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at %#x", len(rc.Data), isa.CODE_BASE)
	}

	return
}

// String returns the register file as text.
func (cpu *Cpu) String() (text string) {
	for n, value := range cpu.Register {
		text += fmt.Sprintf("%4s: %04X_%04X\n", isa.Register(n), value>>16, value&0xffff)
	}

	return
}

// Fetch reads the instruction word at rpc.
func (cpu *Cpu) Fetch() (word isa.Word) {
	cpu.Memory.Read(cpu.Register[isa.RPC], word[:])
	return
}

// Run sets the CPU running and ticks until hlt or an error.
func (cpu *Cpu) Run() (err error) {
	cpu.Running = true

	for cpu.Running {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Tick executes a single instruction cycle. rpc advances past the
// instruction before it executes, and rz is zeroed after it executes.
// An error halts the CPU; the cycle still completes.
func (cpu *Cpu) Tick() (err error) {
	ip := cpu.Register[isa.RPC]
	word := cpu.Fetch()
	cpu.Register[isa.RPC] = ip + isa.INSTRUCTION_SIZE

	inst := isa.Decode(word)
	if cpu.Verbose {
		log.Printf("%08x: %v", ip, inst)
	}

	err = cpu.Execute(inst)

	cpu.Register[isa.RZ] = 0
	cpu.Ticks++

	if err != nil {
		cpu.Running = false
	}

	return
}

// target resolves a jump destination. Relative offsets are signed and
// taken from the already-advanced rpc, saturating at the ends of the
// address space.
func (cpu *Cpu) target(value uint32, relative bool) uint32 {
	if !relative {
		return value
	}

	next := int64(cpu.Register[isa.RPC]) + int64(int32(value))
	switch {
	case next < 0:
		return 0
	case next > isa.ADDRESS_MASK:
		return isa.ADDRESS_MASK
	}

	return uint32(next)
}

func (cpu *Cpu) jump(value uint32, relative bool) {
	cpu.Register[isa.RPC] = cpu.target(value, relative)
}

func (cpu *Cpu) call(dest isa.Register, relative bool) {
	cpu.push(cpu.Register[isa.RPC])
	cpu.jump(cpu.Register[dest], relative)
}

func (cpu *Cpu) callImmediate(value uint32, relative bool) {
	cpu.push(cpu.Register[isa.RPC])
	cpu.jump(value, relative)
}

func b2u(cond bool) uint32 {
	if cond {
		return 1
	}
	return 0
}

func f32(value uint32) float32 {
	return math.Float32frombits(value)
}

func u32(value float32) uint32 {
	return math.Float32bits(value)
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(inst isa.Instruction) (err error) {
	reg := &cpu.Register
	mem := cpu.Memory

	dst := inst.Dest
	a := reg[inst.Src1]
	b := reg[inst.Src2]
	rel := inst.Relative

	switch inst.Op {
	case isa.NOP:
	case isa.HLT:
		cpu.Running = false
	case isa.LDI:
		reg[dst] = inst.Imm

	// Integer arithmetic wraps.
	case isa.ADD:
		reg[dst] = a + b
	case isa.SUB:
		reg[dst] = a - b
	case isa.ADDI:
		reg[dst] = a + inst.Imm
	case isa.SUBI:
		reg[dst] = a - inst.Imm
	case isa.INC:
		reg[dst] = a + 1
	case isa.DEC:
		reg[dst] = a - 1
	case isa.MUL:
		reg[dst] = a * b
	case isa.MULHS:
		reg[dst] = uint32(uint64(int64(int32(a))*int64(int32(b))) >> 32)
	case isa.MULHU:
		reg[dst], _ = bits.Mul32(a, b)
	case isa.DIV:
		if b == 0 {
			reg[dst] = math.MaxUint32
		} else {
			reg[dst] = a / b
		}
	case isa.DIVS:
		if b == 0 {
			reg[dst] = math.MaxUint32
		} else {
			reg[dst] = uint32(int32(a) / int32(b))
		}
	case isa.REM:
		if b == 0 {
			reg[dst] = a
		} else {
			reg[dst] = a % b
		}
	case isa.REMS:
		if b == 0 {
			reg[dst] = a
		} else {
			reg[dst] = uint32(int32(a) % int32(b))
		}

	// Bitwise.
	case isa.BOR:
		reg[dst] = a | b
	case isa.BAND:
		reg[dst] = a & b
	case isa.BXOR:
		reg[dst] = a ^ b
	case isa.BNOT:
		reg[dst] = ^a
	case isa.SHL:
		reg[dst] = a << (b & 0x1f)
	case isa.SHR:
		reg[dst] = a >> (b & 0x1f)
	case isa.SAR:
		reg[dst] = uint32(int32(a) >> (b & 0x1f))
	case isa.ROL:
		reg[dst] = bits.RotateLeft32(a, int(b&0x1f))
	case isa.ROR:
		reg[dst] = bits.RotateLeft32(a, -int(b&0x1f))

	// Logical: non-zero is true.
	case isa.LOR:
		reg[dst] = b2u(a != 0 || b != 0)
	case isa.LAND:
		reg[dst] = b2u(a != 0 && b != 0)
	case isa.LXOR:
		reg[dst] = b2u((a != 0) != (b != 0))
	case isa.LNOT:
		reg[dst] = b2u(a == 0)

	// Unsigned comparison.
	case isa.EQ:
		reg[dst] = b2u(a == b)
	case isa.NE:
		reg[dst] = b2u(a != b)
	case isa.GT:
		reg[dst] = b2u(a > b)
	case isa.LT:
		reg[dst] = b2u(a < b)
	case isa.GE:
		reg[dst] = b2u(a >= b)
	case isa.LE:
		reg[dst] = b2u(a <= b)

	// Memory. The address is the value held in the register.
	case isa.SB:
		mem.Store8(reg[dst], uint8(a))
	case isa.SW:
		mem.Store32(reg[dst], a)
	case isa.LBS:
		reg[dst] = uint32(int32(int8(mem.Load8(a))))
	case isa.LBU:
		reg[dst] = uint32(mem.Load8(a))
	case isa.LW:
		reg[dst] = mem.Load32(a)

	// Control flow. Conditional forms do nothing when the condition is zero.
	case isa.JMR:
		cpu.jump(reg[dst], rel)
	case isa.JRI:
		if a != 0 {
			cpu.jump(reg[dst], rel)
		}
	case isa.JMI:
		cpu.jump(inst.Imm, rel)
	case isa.JII:
		if a != 0 {
			cpu.jump(inst.Imm, rel)
		}
	case isa.CAR:
		cpu.call(dst, rel)
	case isa.CRI:
		if a != 0 {
			cpu.call(dst, rel)
		}
	case isa.CAI:
		cpu.callImmediate(inst.Imm, rel)
	case isa.CII:
		if a != 0 {
			cpu.callImmediate(inst.Imm, rel)
		}
	case isa.RET:
		reg[isa.RPC] = cpu.pop()

	// IEEE-754 binary32 on the raw register bits.
	case isa.FADD:
		reg[dst] = u32(f32(a) + f32(b))
	case isa.FSUB:
		reg[dst] = u32(f32(a) - f32(b))
	case isa.FMUL:
		reg[dst] = u32(f32(a) * f32(b))
	case isa.FDIV:
		reg[dst] = u32(f32(a) / f32(b))
	case isa.FREM:
		reg[dst] = u32(float32(math.Mod(float64(f32(a)), float64(f32(b)))))

	default:
		if cpu.Strict {
			err = ErrOpcode(inst.Op)
		}
	}

	return
}
