package emulator

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tayenx3/machina/isa"
)

// Config holds the emulator settings that may be kept in a TOML file.
//
//	verbose = false
//	strict = true
//	max_ticks = 1000000
//	output = "gr2"
//
//	[defines]
//	SEED = "0x2a"
type Config struct {
	Verbose  bool              `toml:"verbose"`
	Strict   bool              `toml:"strict"`
	MaxTicks int               `toml:"max_ticks"`
	Output   string            `toml:"output"`
	Defines  map[string]string `toml:"defines"`
}

// ParseConfig decodes a TOML configuration. Unknown keys are an error.
func ParseConfig(input io.Reader) (conf *Config, err error) {
	conf = &Config{}

	md, err := toml.NewDecoder(input).Decode(conf)
	if err != nil {
		conf = nil
		return
	}

	undecoded := md.Undecoded()
	if len(undecoded) > 0 {
		conf = nil
		err = errors.Join(ErrConfigUnknown, fmt.Errorf("%v", undecoded))
		return
	}

	return
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (conf *Config, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	conf, err = ParseConfig(file)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}

	return
}

// OutputRegister returns the register to report, rds if unset.
func (conf *Config) OutputRegister() (reg isa.Register, err error) {
	if len(conf.Output) == 0 {
		reg = isa.RDS
		return
	}

	return isa.ParseRegister(conf.Output)
}

// Apply copies the settings onto an emulator.
func (conf *Config) Apply(emu *Emulator) {
	emu.Verbose = conf.Verbose
	emu.Strict = conf.Strict
	emu.MaxTicks = conf.MaxTicks

	for name, value := range conf.Defines {
		emu.Define(name, value)
	}
}
