// Package isa defines the M0-32 instruction set: opcodes, operand formats,
// the register file layout, the memory map, and the bit-exact 6-byte
// instruction word encoding shared by the assembler and the CPU.
//
// Every instruction occupies exactly INSTRUCTION_SIZE bytes. Byte 0 is the
// opcode; bytes 1-5 carry operands whose layout depends on the opcode
// Format. Two immediate conventions coexist: FORMAT_RI_NIBBLE (ldi) packs
// the 32-bit immediate on nibble boundaries after the destination register,
// while FORMAT_RRI, FORMAT_I_FLAG and FORMAT_IR_FLAG carry a byte-aligned
// little-endian immediate.
//
// The register file has eleven general purpose registers, gr0 through gra.
// The names grb and gr11 are rejected with ErrRegisterRetired, as their
// slot is the hardwired zero register rz.
package isa
