// Package cpu implements the execution engine and assembler for the M0-32
// machine.
//
// The CPU consists of a sixteen entry 32-bit register file (rz reads as
// zero after every cycle, rpc is the program counter, csp the call stack
// pointer), a flat 4 GiB little-endian memory, and a fetch-decode-execute
// loop that runs until hlt.
//
// The assembler is two pass: labels are bound first so that forward
// references resolve, then each line is encoded into one 6-byte word.
// It supports labels, equates, and compile-time expression evaluation.
package cpu
