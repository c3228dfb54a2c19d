package main

import (
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tayenx3/machina/emulator"
	"github.com/tayenx3/machina/isa"
	"github.com/tayenx3/machina/rom"
)

// defineFlag collects repeated -D NAME=VALUE options.
type defineFlag map[string]string

func (df defineFlag) String() string {
	var defs []string
	for _, name := range slices.Sorted(maps.Keys(df)) {
		defs = append(defs, name+"="+df[name])
	}
	return strings.Join(defs, ",")
}

func (df defineFlag) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		return fmt.Errorf("expected NAME=VALUE, got %q", text)
	}
	df[name] = value
	return nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] <program%v|program%v> [register]\n",
		filepath.Base(os.Args[0]), rom.EXT_SOURCE, rom.EXT_BINARY)
	flag.PrintDefaults()
}

// listing prints each word of the loaded program, with its source line
// when there is one.
func listing(emu *emulator.Emulator, path string) (err error) {
	image := emu.Program.Rom()
	if len(emu.Program.Statements) == 0 {
		image, err = rom.Open(path)
		if err != nil {
			return
		}
	}

	for offset, word := range image.Words() {
		addr := uint32(isa.CODE_BASE) + offset
		text := fmt.Sprintf("%08x: % x  %v", addr, word[:], isa.Decode(word))
		stmt := emu.Program.Debug(addr)
		if stmt != nil {
			text = fmt.Sprintf("%-48v; %d: %v", text, stmt.LineNo, stmt)
		}
		fmt.Println(text)
	}

	return
}

func main() {
	var config string
	var verbose bool
	var strict bool
	var maxTicks int
	var list bool
	defines := defineFlag{}

	flag.StringVar(&config, "config", "", "TOML configuration file")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&strict, "strict", false, "Stop on undefined opcodes")
	flag.IntVar(&maxTicks, "max-ticks", 0, "Stop after this many ticks (0 for no limit)")
	flag.BoolVar(&list, "l", false, "Print a listing, do not execute")
	flag.Var(defines, "D", "Predefine an equate as NAME=VALUE (repeatable)")
	flag.Usage = usage

	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	path := flag.Arg(0)

	conf := &emulator.Config{}
	if len(config) != 0 {
		var err error
		conf, err = emulator.LoadConfig(config)
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
	}

	reg, err := conf.OutputRegister()
	if err != nil {
		log.Fatalf("%v: %v", config, err)
	}
	if flag.NArg() == 2 {
		reg, err = isa.ParseRegister(flag.Arg(1))
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
	}

	emu := emulator.NewEmulator()
	conf.Apply(emu)
	emu.Verbose = emu.Verbose || verbose
	emu.Strict = emu.Strict || strict
	if maxTicks > 0 {
		emu.MaxTicks = maxTicks
	}
	for name, value := range defines {
		emu.Define(name, value)
	}

	if emu.Verbose {
		effective := maps.Collect(emu.Defines())
		for _, name := range slices.Sorted(maps.Keys(effective)) {
			log.Printf("define %v = %v", name, effective[name])
		}
	}

	err = emu.LoadProgramFromPath(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	if list {
		err = listing(emu, path)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		return
	}

	err = emu.Run()
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	fmt.Println(emu.Result(reg))
}
