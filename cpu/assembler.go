package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/tayenx3/machina/isa"
	"github.com/tayenx3/machina/rom"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":           "0",
	"CODE_BASE":        fmt.Sprintf("%#x", isa.CODE_BASE),
	"CODE_SIZE":        fmt.Sprintf("%#x", isa.CODE_SIZE),
	"CALL_STACK_TOP":   fmt.Sprintf("%#x", isa.CALL_STACK_TOP),
	"DATA_STACK_TOP":   fmt.Sprintf("%#x", isa.DATA_STACK_TOP),
	"INSTRUCTION_SIZE": fmt.Sprintf("%d", isa.INSTRUCTION_SIZE),
}

// relFlags are the tokens that select relative addressing.
var relFlags = []string{"rel", "relative", "r", "REL", "RELATIVE", "R"}

// floatLiteral matches the decimal float forms accepted as immediates.
var floatLiteral = regexp.MustCompile(`^(\d+\.\d*|\.\d+|\d+)([eE][+-]?\d+)?$`)

// parenExpr matches a compile-time $(...) expression.
var parenExpr = regexp.MustCompile(`\$\(.*\)`)

// Assembler is a two pass assembler for the M0-32 machine.
type Assembler struct {
	Verbose bool              // If set, verbosely logs the assembler actions.
	Label   map[string]uint32 // Map of labels to image offsets.
	Equate  map[string]string // Map of equates.

	predefine map[string]string // Predefines
	duplicate map[int]string    // Lines that redefine a label.
}

// Predefine defines a new equate or redefines an existing equate before
// the next Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// sourceLine is one line of source, split into words.
type sourceLine struct {
	lineNo int
	text   string
	label  string
	words  []string
}

// instruction returns true if the line emits a word.
func (sl *sourceLine) instruction() bool {
	return len(sl.words) > 0 && sl.words[0] != ".equ"
}

// tokenize splits a line into words. A ';' outside of a quoted character
// literal starts a comment. Quoted literals and $(...) expressions are
// kept as single words even if they contain spaces.
func tokenize(line string) (words []string) {
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	for n := 0; n < len(line); n++ {
		c := line[n]
		switch {
		case c == ';':
			flush()
			return
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f':
			flush()
		case c == '\'' && word.Len() == 0:
			word.WriteByte(c)
			for n++; n < len(line); n++ {
				word.WriteByte(line[n])
				if line[n] == '\\' && n+1 < len(line) {
					n++
					word.WriteByte(line[n])
					continue
				}
				if line[n] == '\'' {
					break
				}
			}
		case c == '$' && n+1 < len(line) && line[n+1] == '(':
			depth := 0
			for ; n < len(line); n++ {
				word.WriteByte(line[n])
				if line[n] == '(' {
					depth++
				} else if line[n] == ')' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
		default:
			word.WriteByte(c)
		}
	}

	flush()

	return
}

// parseCharacter returns the code point of a quoted character literal.
func parseCharacter(word string) (value uint32, err error) {
	if len(word) < 3 || word[0] != '\'' || word[len(word)-1] != '\'' {
		err = ErrCharacter(word)
		return
	}

	inner := word[1 : len(word)-1]
	if inner == "'" {
		// A bare quote must be escaped.
		err = ErrCharacter(word)
		return
	}

	if inner[0] == '\\' {
		if len(inner) != 2 {
			err = ErrCharacter(word)
			return
		}
		switch inner[1] {
		case 'n':
			value = '\n'
		case 't':
			value = '\t'
		case 'r':
			value = '\r'
		case '\\':
			value = '\\'
		case '\'':
			value = '\''
		case '0':
			value = 0
		default:
			err = ErrCharacter(word)
		}
		return
	}

	r, size := utf8.DecodeRuneInString(inner)
	if r == utf8.RuneError || size != len(inner) {
		err = ErrCharacter(word)
		return
	}

	value = uint32(r)
	return
}

// parseMagnitude parses an unsigned literal, reporting whether it was a
// float.
func parseMagnitude(digits string) (value uint32, float bool, err error) {
	var v64 uint64

	lower := strings.ToLower(digits)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v64, err = strconv.ParseUint(digits[2:], 16, 32)
	case strings.HasPrefix(lower, "0b"):
		v64, err = strconv.ParseUint(digits[2:], 2, 32)
	case strings.HasPrefix(lower, "0o"):
		v64, err = strconv.ParseUint(digits[2:], 8, 32)
	case floatLiteral.MatchString(digits) && strings.ContainsAny(digits, ".eE"):
		var f64 float64
		f64, err = strconv.ParseFloat(digits, 32)
		if err != nil {
			return
		}
		value = math.Float32bits(float32(f64))
		float = true
		return
	default:
		v64, err = strconv.ParseUint(digits, 10, 32)
	}

	value = uint32(v64)
	return
}

// parseImmediate parses an immediate operand. A leading '-' negates by
// two's complement, or by the sign bit for float literals.
func parseImmediate(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrImmediate(word)
		return
	}

	if word[0] == '\'' {
		return parseCharacter(word)
	}

	digits := word
	negative := false
	switch digits[0] {
	case '+':
		digits = digits[1:]
	case '-':
		negative = true
		digits = digits[1:]
	}

	value, float, err := parseMagnitude(digits)
	if err != nil {
		err = ErrImmediate(word)
		return
	}

	if negative {
		if float {
			value ^= 0x8000_0000
		} else {
			value = -value
		}
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value32, err := parseImmediate(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeUint64(uint64(value32))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	value = uint32(st_int64)
	return
}

// expand substitutes equates and evaluates $(...) in a word.
func (asm *Assembler) expand(word string) (out string, err error) {
	out = word
	equate, ok := asm.Equate[word]
	if ok {
		out = equate
	}

	out = parenExpr.ReplaceAllStringFunc(out, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})

	return
}

// scan splits the input into lines of words, and runs the first pass:
// labels are bound to the offset of the next instruction. Scanning
// never fails on content; redefined labels are reported by the second
// pass.
func (asm *Assembler) scan(input io.Reader) (lines []sourceLine, err error) {
	scanner := bufio.NewScanner(input)

	asm.Label = make(map[string]uint32)
	asm.duplicate = make(map[int]string)

	var offset uint32
	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno++

		sl := sourceLine{
			lineNo: lineno,
			text:   strings.TrimSpace(text),
			words:  tokenize(text),
		}

		if len(sl.words) > 0 && len(sl.words[0]) > 1 && strings.HasSuffix(sl.words[0], ":") {
			sl.label = strings.TrimSuffix(sl.words[0], ":")
			sl.words = sl.words[1:]

			_, ok := asm.Label[sl.label]
			if ok {
				asm.duplicate[lineno] = sl.label
			} else {
				asm.Label[sl.label] = offset
				if asm.Verbose {
					log.Printf("%v: %v = %#x", lineno, sl.label, offset)
				}
			}
		}

		if sl.instruction() {
			offset += isa.INSTRUCTION_SIZE
		}

		lines = append(lines, sl)
	}

	err = scanner.Err()

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	lines, err := asm.scan(input)
	if err != nil {
		return
	}

	var sl sourceLine

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: sl.lineNo, Line: sl.text, Err: err}
			prog = nil
		}
	}()

	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)

	prog = &Program{}

	var offset uint32
	for _, sl = range lines {
		if asm.Verbose {
			log.Printf("%v: %v", sl.lineNo, sl.text)
		}

		// Set line number.
		asm.Equate["LINENO"] = fmt.Sprintf("%v", sl.lineNo)

		if _, ok := asm.duplicate[sl.lineNo]; ok {
			err = ErrLabelDuplicate
			return
		}

		if len(sl.words) == 0 {
			continue
		}

		// .equ CONST VALUE
		if sl.words[0] == ".equ" {
			err = asm.parseEquate(sl.words)
			if err != nil {
				return
			}
			continue
		}

		var inst isa.Instruction
		inst, err = asm.parseWords(sl.words, offset)
		if err != nil {
			return
		}

		prog.Statements = append(prog.Statements, Statement{
			LineNo:      sl.lineNo,
			Addr:        offset,
			Words:       slices.Clone(sl.words),
			Instruction: inst,
		})

		offset += isa.INSTRUCTION_SIZE
	}

	return
}

// parseEquate handles '.equ NAME VALUE'.
func (asm *Assembler) parseEquate(words []string) (err error) {
	if len(words) != 3 {
		err = ErrEquateSyntax
		return
	}

	_, ok := asm.Equate[words[1]]
	if ok {
		err = ErrEquateDuplicate
		return
	}

	value, err := asm.expand(words[2])
	if err != nil {
		return
	}

	asm.Equate[words[1]] = value
	return
}

// register parses a register operand.
func (asm *Assembler) register(word string) (reg isa.Register, err error) {
	return isa.ParseRegister(word)
}

// target resolves a jump or call destination. Immediates are used as is;
// otherwise the word names a label. Relative targets are measured from
// the instruction following the one at offset.
func (asm *Assembler) target(word string, offset uint32, relative bool) (value uint32, err error) {
	value, err = parseImmediate(word)
	if err == nil {
		return
	}

	label, ok := asm.Label[word]
	if !ok {
		err = ErrTarget(word)
		return
	}

	err = nil
	if relative {
		value = label - (offset + isa.INSTRUCTION_SIZE)
	} else {
		value = isa.CODE_BASE + label
	}

	return
}

// parseWords evaluates the words of an instruction at image offset.
func (asm *Assembler) parseWords(words []string, offset uint32) (inst isa.Instruction, err error) {
	op, ok := isa.Lookup(words[0])
	if !ok {
		err = ErrInstructionInvalid
		return
	}
	inst.Op = op

	args := make([]string, 0, len(words)-1)
	for _, word := range words[1:] {
		var arg string
		arg, err = asm.expand(word)
		if err != nil {
			return
		}
		args = append(args, arg)
	}

	format := op.Format()
	count := format.Operands()
	switch {
	case op.Jump() && len(args) == count+1:
		if !slices.Contains(relFlags, args[0]) {
			err = ErrRelativeFlag
			return
		}
		inst.Relative = true
		args = args[1:]
	case len(args) != count:
		err = ErrOperandCount
		return
	}

	// Destination register first, for the formats that have one.
	switch format {
	case isa.FORMAT_R, isa.FORMAT_RR, isa.FORMAT_RRR, isa.FORMAT_RI_NIBBLE, isa.FORMAT_RRI, isa.FORMAT_RR_FLAG:
		inst.Dest, err = asm.register(args[0])
		if err != nil {
			return
		}
	}

	switch format {
	case isa.FORMAT_RR, isa.FORMAT_RRR, isa.FORMAT_RRI, isa.FORMAT_RR_FLAG:
		inst.Src1, err = asm.register(args[1])
		if err != nil {
			return
		}
	}

	switch format {
	case isa.FORMAT_RRR:
		inst.Src2, err = asm.register(args[2])
	case isa.FORMAT_RI_NIBBLE:
		inst.Imm, err = parseImmediate(args[1])
	case isa.FORMAT_RRI:
		inst.Imm, err = parseImmediate(args[2])
	case isa.FORMAT_I_FLAG:
		inst.Imm, err = asm.target(args[0], offset, inst.Relative)
	case isa.FORMAT_IR_FLAG:
		inst.Imm, err = asm.target(args[0], offset, inst.Relative)
		if err != nil {
			return
		}
		inst.Src1, err = asm.register(args[1])
	}

	return
}

// AssembleFile assembles the source at path and writes the image next to
// it, named by rom.BinaryName.
func (asm *Assembler) AssembleFile(path string) (prog *Program, binPath string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	prog, err = asm.Parse(file)
	if err != nil {
		return
	}

	binPath = rom.BinaryName(path)
	err = prog.Rom().Save(binPath)
	if err != nil {
		prog = nil
		binPath = ""
		return
	}

	if asm.Verbose {
		log.Printf("%v: %d bytes", binPath, len(prog.Statements)*isa.INSTRUCTION_SIZE)
	}

	return
}

// Assemble assembles source text into a binary image.
func Assemble(source string) (data []byte, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	data = prog.Binary()
	return
}

// AssembleFile assembles the source at path, writes the image next to it,
// and returns the image path.
func AssembleFile(path string) (binPath string, err error) {
	asm := &Assembler{}
	_, binPath, err = asm.AssembleFile(path)
	return
}
