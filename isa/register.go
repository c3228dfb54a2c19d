package isa

import (
	"strings"
)

// Register is an index into the 16-entry register file.
type Register uint8

const (
	RZ  = Register(0)  // Hardwired zero.
	GR0 = Register(1)  // General purpose.
	GR1 = Register(2)  // General purpose.
	GR2 = Register(3)  // General purpose.
	GR3 = Register(4)  // General purpose.
	GR4 = Register(5)  // General purpose.
	GR5 = Register(6)  // General purpose.
	GR6 = Register(7)  // General purpose.
	GR7 = Register(8)  // General purpose.
	GR8 = Register(9)  // General purpose.
	GR9 = Register(10) // General purpose.
	GRA = Register(11) // General purpose.
	RDS = Register(12) // Default output register.
	RSP = Register(13) // Data stack pointer.
	CSP = Register(14) // Call stack pointer.
	RPC = Register(15) // Program counter.

	REGISTER_COUNT = 16
)

var registerName = [REGISTER_COUNT]string{
	"rz",
	"gr0", "gr1", "gr2", "gr3", "gr4", "gr5", "gr6", "gr7", "gr8", "gr9", "gra",
	"rds", "rsp", "csp", "rpc",
}

// registerAlias holds the accepted spellings that are not canonical names.
var registerAlias = map[string]Register{
	"zero": RZ,
	"gr10": GRA,
}

// registerRetired holds names of the twelfth general purpose register,
// whose slot is now rz.
var registerRetired = map[string]bool{
	"grb":  true,
	"gr11": true,
}

// String returns the canonical assembly name of the register.
func (reg Register) String() string {
	return registerName[reg&0xf]
}

// ParseRegister resolves a register name, ignoring case.
func ParseRegister(name string) (reg Register, err error) {
	lower := strings.ToLower(name)
	for n, canon := range registerName {
		if lower == canon {
			reg = Register(n)
			return
		}
	}

	reg, ok := registerAlias[lower]
	switch {
	case ok:
	case registerRetired[lower]:
		err = ErrRegisterRetired(name)
	default:
		err = ErrRegister(name)
	}

	return
}
