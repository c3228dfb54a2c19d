package cpu

import (
	"github.com/tayenx3/machina/isa"
)

const (
	STACK_WORD  = 4  // Bytes per call stack entry.
	STACK_LIMIT = 64 // Maximum frames reported by Backtrace.
)

// push stores a return address on the call stack. csp is decremented first,
// then the value is written little-endian at the new csp.
func (cpu *Cpu) push(value uint32) {
	cpu.Register[isa.CSP] -= STACK_WORD
	cpu.Memory.Store32(cpu.Register[isa.CSP], value)
}

// pop is the inverse of push.
func (cpu *Cpu) pop() (value uint32) {
	value = cpu.Memory.Load32(cpu.Register[isa.CSP])
	cpu.Register[isa.CSP] += STACK_WORD
	return
}

// Backtrace returns the return addresses on the call stack, innermost
// first, up to STACK_LIMIT frames. A csp above CALL_STACK_TOP has
// underflowed and reports no frames.
func (cpu *Cpu) Backtrace() (frames []uint32) {
	csp := cpu.Register[isa.CSP]
	if csp > isa.CALL_STACK_TOP {
		return
	}

	for sp := csp; sp < isa.CALL_STACK_TOP && len(frames) < STACK_LIMIT; sp += STACK_WORD {
		frames = append(frames, cpu.Memory.Load32(sp))
	}

	return
}
