package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parse(t *testing.T, lines ...string) (prog *Program, err error) {
	asm := &Assembler{}
	prog, err = asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		binary  []byte
	}){
		{"nop", []string{"nop"}, []byte{0x00}},
		{"hlt", []string{"hlt"}, []byte{0x01}},
		{"movi", []string{"movi r1 0x1234"},
			[]byte{0x10, 0x01, 0x34, 0x12, 0, 0, 0, 0, 0, 0}},
		{"movi_comma", []string{"movi r1, 0x1234"},
			[]byte{0x10, 0x01, 0x34, 0x12, 0, 0, 0, 0, 0, 0}},
		{"mov", []string{"mov r3 r4"}, []byte{0x11, 0x03, 0x04}},
		{"comment", []string{"nop ; does nothing", "; whole line", "hlt"},
			[]byte{0x00, 0x01}},
		{"bytes", []string{".byte 0xfe 0x01 2"}, []byte{0xfe, 0x01, 0x02}},
		{"equate", []string{".equ COUNT 7", "movi r0 COUNT"},
			[]byte{0x10, 0x00, 0x07, 0, 0, 0, 0, 0, 0, 0}},
		{"expression", []string{".equ BASE 0x100", "movi r0 $(BASE + 2 * 8)"},
			[]byte{0x10, 0x00, 0x10, 0x01, 0, 0, 0, 0, 0, 0}},
		{"invert", []string{"movi r0 ~0"},
			[]byte{0x10, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"label_back", []string{"loop: nop", "jmp loop"},
			[]byte{0x00, 0x40, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"label_fwd", []string{"jnz r0 done", "done: hlt"},
			[]byte{0x41, 0x00, 0x0a, 0, 0, 0, 0, 0, 0, 0, 0x01}},
	}

	for _, entry := range table {
		prog, err := parse(t, entry.program...)
		assert.NoError(err, entry.name)
		if err != nil {
			continue
		}
		assert.Equal(entry.binary, prog.Binary(), entry.name)
	}
}

func TestAssemblerOrigin(t *testing.T) {
	assert := assert.New(t)

	prog, err := parse(t,
		".org 0x10",
		"start: hlt",
		".org 0x0",
		"jmp start",
	)
	assert.NoError(err)

	binary := prog.Binary()
	assert.Len(binary, 0x11)
	assert.Equal(byte(0x40), binary[0])
	assert.Equal(byte(0x10), binary[1])
	assert.Equal(byte(0x01), binary[0x10])
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("ENTRY", "0x40")
	prog, err := asm.Parse(strings.NewReader("jmp ENTRY"))
	assert.NoError(err)
	assert.Equal([]byte{0x40, 0x40, 0, 0, 0, 0, 0, 0, 0}, prog.Binary())
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		err     error
	}){
		{"equ_syntax", []string{".equ ONLY"}, ErrEquateSyntax},
		{"equ_dup", []string{".equ A 1", ".equ A 2"}, ErrEquateDuplicate},
		{"label_dup", []string{"a: nop", "a: nop"}, ErrLabelDuplicate},
		{"label_missing", []string{"jmp nowhere"}, ErrLabelMissing("nowhere")},
		{"unknown", []string{"frobnicate r0"}, ErrOpcodeUnknown},
		{"args", []string{"mov r0"}, ErrOpcodeArgs},
		{"register", []string{"mov r0 r9"}, ErrParseRegister("r9")},
		{"org", []string{".org"}, ErrOriginSyntax},
	}

	for _, entry := range table {
		_, err := parse(t, entry.program...)
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.ErrorAs(err, &syntax, entry.name) {
			assert.NotZero(syntax.LineNo, entry.name)
		}
	}
}

func TestProgramDebug(t *testing.T) {
	assert := assert.New(t)

	prog, err := parse(t,
		"movi r0 1", // 0..9
		"hlt",       // 10
	)
	assert.NoError(err)

	dbg := prog.Debug(4)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(4, dbg.Offset)

	dbg = prog.Debug(10)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.LineNo)

	dbg = prog.Debug(100)
	assert.Nil(dbg.Opcode)
}
