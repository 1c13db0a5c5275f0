// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package disasm

import (
	"encoding/hex"

	"golang.org/x/arch/x86/x86asm"
)

type x86 struct {
	mode int // 16, 32 or 64
}

// X86 returns a disassembler for 64-bit x86 code.
func X86() Disassembler {
	return x86{mode: 64}
}

func (d x86) TryDecode(address uint64, code []byte) (inst Inst, ok bool) {
	decoded, err := x86asm.Decode(code, d.mode)
	if err != nil {
		return
	}

	inst = Inst{
		Size:   decoded.Len,
		Opcode: hex.EncodeToString(code[:decoded.Len]),
		Text:   x86asm.GNUSyntax(decoded, address, nil),
	}
	ok = true
	return
}
