// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"BLOCK_LIMIT": fmt.Sprintf("%v", BLOCK_LIMIT),
}

// Assembler is a single pass assembler for the uctrace instruction set.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	Label  map[string]uint64 // Map of labels to addresses.
	Equate map[string]string // Map of equates.

	predefine map[string]string // Predefines
	addr      uint64            // Assembly address cursor.
}

// Opcode represents a line of assembled code with its source location
// and generated bytes.
type Opcode struct {
	LineNo    int
	Addr      uint64
	Words     []string
	Bytes     []byte
	LinkLabel string // Label patched into the trailing immediate.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]Reg{}

// opMap is a map of mnemonics to opcodes.
var opMap = map[string]Op{}

func init() {
	for n := 0; n < REG_COUNT; n++ {
		regMap[fmt.Sprintf("r%d", n)] = Reg(n)
	}
	for op, layout := range opLayouts {
		opMap[layout.Name] = op
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint64, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}

	value, err = strconv.ParseUint(word, 0, 64)
	if err != nil {
		var v64 int64
		v64, err = strconv.ParseInt(word, 0, 64)
		if err != nil {
			err = ErrParseNumber(word)
			return
		}
		value = uint64(v64)
	}

	if invert {
		value = ^value
	}

	return
}

// regOf returns the register index of a word.
func (asm *Assembler) regOf(word string) (reg Reg, err error) {
	reg, ok := regMap[word]
	if !ok {
		err = ErrParseRegister(word)
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 uint64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeUint64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Uint64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// parseLine parses a single line into assembler words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Split(line, " ")
	for n, word := range words {
		words[n] = strings.TrimSuffix(word, ",")
	}
	words = slices.DeleteFunc(words, func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	// Check for equates next
	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint64, 16)
		}
		asm.Label[label] = asm.addr
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// assemble encodes a single line of words into an Opcode.
func (asm *Assembler) assemble(words []string, lineno int) (err error) {
	opcode := Opcode{
		LineNo: lineno,
		Addr:   asm.addr,
		Words:  slices.Clone(words),
	}

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOriginSyntax
			return
		}
		asm.addr, err = asm.valueOf(words[1])
		return

	case ".byte":
		for _, word := range words[1:] {
			var value uint64
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			opcode.Bytes = append(opcode.Bytes, byte(value))
		}

	default:
		op, ok := opMap[words[0]]
		if !ok {
			err = ErrOpcodeUnknown
			return
		}
		layout := opLayouts[op]

		args := words[1:]
		count := layout.Regs
		if layout.Imm {
			count++
		}
		if len(args) != count {
			err = ErrOpcodeArgs
			return
		}

		inst := Instruction{Op: op}
		if layout.Regs >= 1 {
			inst.A, err = asm.regOf(args[0])
			if err != nil {
				return
			}
			args = args[1:]
		}
		if layout.Regs >= 2 {
			inst.B, err = asm.regOf(args[0])
			if err != nil {
				return
			}
			args = args[1:]
		}
		if layout.Imm {
			inst.Imm, err = asm.valueOf(args[0])
			if err != nil {
				// Not a number; defer to the label fixup pass.
				opcode.LinkLabel = args[0]
				err = nil
			}
		}

		opcode.Bytes = inst.Encode()
	}

	if asm.Verbose {
		log.Printf("asm: %08x: % x %v", opcode.Addr, opcode.Bytes, words)
	}

	asm.Opcode = append(asm.Opcode, opcode)
	asm.addr += uint64(len(opcode.Bytes))
	return
}

// link patches label references into their trailing immediates.
func (asm *Assembler) link() (err error) {
	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		if op.LinkLabel == "" {
			continue
		}

		addr, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}

		binary.LittleEndian.PutUint64(op.Bytes[len(op.Bytes)-8:], addr)
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.addr = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
		if len(words) == 0 {
			continue
		}

		err = asm.assemble(words, lineno)
		if err != nil {
			return
		}
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	err = asm.link()
	if err != nil {
		return
	}

	prog = &Program{Opcodes: slices.Clone(asm.Opcode)}
	return
}
