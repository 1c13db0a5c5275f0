// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package disasm decodes single instructions from raw code bytes for
// trace rendering. Adapters exist for the native instruction set and
// for x86-64 via golang.org/x/arch.
package disasm

// Inst is one decoded instruction.
type Inst struct {
	Size   int    // Encoded length in bytes.
	Opcode string // Lowercase hex of the encoded bytes.
	Text   string // Assembly text.
}

// Disassembler decodes the instruction at the start of a code window.
// A false return means the window does not start a valid instruction.
type Disassembler interface {
	TryDecode(address uint64, code []byte) (inst Inst, ok bool)
}
