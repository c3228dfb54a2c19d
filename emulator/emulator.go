package emulator

import (
	"io"
	"iter"
	"log"
	"maps"
	"path/filepath"

	"github.com/tayenx3/machina/cpu"
	"github.com/tayenx3/machina/internal"
	"github.com/tayenx3/machina/isa"
	"github.com/tayenx3/machina/rom"
)

var _emulator_defines = map[string]string{
	"RESULT": isa.RDS.String(),
}

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Strict   bool         // If set, undefined opcodes stop the run.
	MaxTicks int          // If positive, Run stops after this many ticks.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	defines map[string]string
	loaded  bool // An image is in memory and has not been reset away.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
		defines: map[string]string{},
	}

	return
}

// Define adds an equate for programs assembled by this emulator.
func (emu *Emulator) Define(name string, value string) {
	emu.defines[name] = value
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines), maps.All(emu.defines))
}

// assembler returns an assembler with the emulator defines applied.
func (emu *Emulator) assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	return
}

// Reset the machine, keeping the current program listing.
func (emu *Emulator) Reset() {
	emu.loaded = false
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Strict = emu.Strict
	emu.Cpu.Reset()
}

// load places an image in the code region of a freshly reset machine.
// The machine is left halted; Run or Tick starts it. An oversized image
// is rejected before the machine is touched.
func (emu *Emulator) load(image *rom.Rom) (err error) {
	err = image.Validate()
	if err != nil {
		return
	}

	emu.Reset()

	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	emu.loaded = true
	return
}

// LoadProgram loads a raw binary image. The listing is cleared.
func (emu *Emulator) LoadProgram(data []byte) (err error) {
	err = emu.load(&rom.Rom{Data: data})
	if err != nil {
		return
	}

	emu.Program = &cpu.Program{}
	return
}

// Assemble assembles source text and loads the result.
func (emu *Emulator) Assemble(source io.Reader) (err error) {
	prog, err := emu.assembler().Parse(source)
	if err != nil {
		return
	}

	err = emu.load(prog.Rom())
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// LoadProgramFromPath loads a program from a file. Assembly sources are
// assembled, with the image written next to the source; any other file is
// a raw binary image, size checked before it is read.
func (emu *Emulator) LoadProgramFromPath(path string) (err error) {
	if filepath.Ext(path) == rom.EXT_SOURCE {
		var prog *cpu.Program
		prog, _, err = emu.assembler().AssembleFile(path)
		if err != nil {
			return
		}
		err = emu.load(prog.Rom())
		if err == nil {
			emu.Program = prog
		}
	} else {
		var image *rom.Rom
		image, err = rom.Open(path)
		if err != nil {
			return
		}
		err = emu.load(image)
		if err == nil {
			emu.Program = &cpu.Program{}
		}
	}

	if err == nil && emu.Verbose {
		log.Printf("%v: loaded", path)
	}

	return
}

// LineNo returns the current line number for the executing instruction,
// or 0 if there is no listing for it.
func (emu *Emulator) LineNo() int {
	stmt := emu.Program.Debug(emu.Cpu.Register[isa.RPC])
	if stmt == nil {
		return 0
	}

	return stmt.LineNo
}

// Result returns the value of a register.
func (emu *Emulator) Result(reg isa.Register) uint32 {
	return emu.Cpu.Register[reg&0xf]
}

// Tick performs a single tick of the emulator. done is set once the
// machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Strict = emu.Strict

	// A freshly loaded machine starts on its first tick.
	if !emu.Cpu.Running && emu.loaded && emu.Cpu.Ticks == 0 {
		emu.Cpu.Running = true
	}

	if !emu.Cpu.Running {
		done = true
		return
	}

	lineno := emu.LineNo()
	addr := emu.Cpu.Register[isa.RPC]
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Addr: addr, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	done = !emu.Cpu.Running

	return
}

// Run sets a loaded machine running and ticks until it halts, an error
// occurs, or the watchdog expires.
func (emu *Emulator) Run() (err error) {
	emu.Cpu.Running = emu.loaded

	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			break
		}

		if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
			err = &ErrRuntime{
				LineNo: emu.LineNo(),
				Addr:   emu.Cpu.Register[isa.RPC],
				Err:    ErrWatchdog,
			}
			break
		}
	}

	if err != nil && emu.Verbose {
		log.Printf("backtrace: %#x", emu.Cpu.Backtrace())
		log.Print(emu.Cpu.String())
	}

	return
}
