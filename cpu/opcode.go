package cpu

import (
	"encoding/binary"
	"fmt"
)

const (
	MAX_OPCODE_BYTES = 16  // Maximum bytes any supported decoder may need.
	BLOCK_LIMIT      = 128 // Maximum instructions in a translated block.
)

// Op is an instruction opcode byte.
type Op int

const (
	OP_NOP  = Op(0x00) // nop
	OP_HLT  = Op(0x01) // hlt
	OP_MOVI = Op(0x10) // movi
	OP_MOV  = Op(0x11) // mov
	OP_ADD  = Op(0x20) // add
	OP_SUB  = Op(0x21) // sub
	OP_MUL  = Op(0x22) // mul
	OP_LD   = Op(0x30) // ld
	OP_ST   = Op(0x31) // st
	OP_JMP  = Op(0x40) // jmp
	OP_JNZ  = Op(0x41) // jnz
	OP_OUT  = Op(0x50) // out
)

// opLayout describes the encoding of a single opcode.
type opLayout struct {
	Name string
	Size int
	Regs int  // count of register operand bytes after the opcode
	Imm  bool // trailing 64-bit little-endian immediate
}

var opLayouts = map[Op]opLayout{
	OP_NOP:  {Name: "nop", Size: 1},
	OP_HLT:  {Name: "hlt", Size: 1},
	OP_MOVI: {Name: "movi", Size: 10, Regs: 1, Imm: true},
	OP_MOV:  {Name: "mov", Size: 3, Regs: 2},
	OP_ADD:  {Name: "add", Size: 3, Regs: 2},
	OP_SUB:  {Name: "sub", Size: 3, Regs: 2},
	OP_MUL:  {Name: "mul", Size: 3, Regs: 2},
	OP_LD:   {Name: "ld", Size: 3, Regs: 2},
	OP_ST:   {Name: "st", Size: 3, Regs: 2},
	OP_JMP:  {Name: "jmp", Size: 9, Imm: true},
	OP_JNZ:  {Name: "jnz", Size: 10, Regs: 1, Imm: true},
	OP_OUT:  {Name: "out", Size: 2, Regs: 1},
}

// String returns the mnemonic for the opcode.
func (op Op) String() string {
	layout, ok := opLayouts[op]
	if !ok {
		return fmt.Sprintf("op(0x%02x)", int(op))
	}

	return layout.Name
}

// EndsBlock returns true if the opcode terminates a translated block.
func (op Op) EndsBlock() bool {
	switch op {
	case OP_HLT, OP_JMP, OP_JNZ:
		return true
	}

	return false
}

// Reg is a general purpose register index.
type Reg int

const (
	REG_COUNT = 8 // r0..r7
)

// String returns the register name.
func (reg Reg) String() string {
	return fmt.Sprintf("r%d", int(reg))
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Op   Op
	A    Reg    // First register operand.
	B    Reg    // Second register operand.
	Imm  uint64 // Immediate operand.
	Size int    // Encoded length in bytes.
}

// String returns the instruction in assembler syntax.
func (inst Instruction) String() (text string) {
	layout := opLayouts[inst.Op]

	text = layout.Name
	switch {
	case layout.Regs == 2:
		text = fmt.Sprintf("%v %v %v", layout.Name, inst.A, inst.B)
	case layout.Regs == 1 && layout.Imm:
		text = fmt.Sprintf("%v %v 0x%x", layout.Name, inst.A, inst.Imm)
	case layout.Regs == 1:
		text = fmt.Sprintf("%v %v", layout.Name, inst.A)
	case layout.Imm:
		text = fmt.Sprintf("%v 0x%x", layout.Name, inst.Imm)
	}

	return
}

// Encode returns the binary encoding of the instruction.
func (inst Instruction) Encode() (code []byte) {
	layout := opLayouts[inst.Op]

	code = append(code, byte(inst.Op))
	if layout.Regs >= 1 {
		code = append(code, byte(inst.A))
	}
	if layout.Regs >= 2 {
		code = append(code, byte(inst.B))
	}
	if layout.Imm {
		code = binary.LittleEndian.AppendUint64(code, inst.Imm)
	}

	return
}

// DecodeInstruction decodes a single instruction from the start of code.
// A truncated or unknown encoding is an error; the decode window may be
// longer than the instruction.
func DecodeInstruction(code []byte) (inst Instruction, err error) {
	if len(code) == 0 {
		err = ErrOpcodeTruncated
		return
	}

	op := Op(code[0])
	layout, ok := opLayouts[op]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}
	if len(code) < layout.Size {
		err = ErrOpcodeTruncated
		return
	}

	inst = Instruction{Op: op, Size: layout.Size}

	next := 1
	if layout.Regs >= 1 {
		inst.A = Reg(code[next])
		next++
	}
	if layout.Regs >= 2 {
		inst.B = Reg(code[next])
		next++
	}
	if inst.A >= REG_COUNT || inst.B >= REG_COUNT {
		err = ErrRegisterInvalid
		inst = Instruction{}
		return
	}
	if layout.Imm {
		inst.Imm = binary.LittleEndian.Uint64(code[next:])
	}

	return
}
