package isa

// Memory map. Addresses wrap modulo 2^32.
const (
	ADDRESS_MASK   = 0xffff_ffff
	CODE_BASE      = 0xc000_0000 // Programs are loaded here.
	CODE_SIZE      = 0x4000_0000 // Code region capacity, CODE_BASE up to the top of memory.
	CALL_STACK_TOP = CODE_BASE   // csp starts here and grows down.
	DATA_STACK_TOP = 0xbf00_0000 // rsp starts here and grows down.
)
