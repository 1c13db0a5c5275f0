// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package disasm

import (
	"encoding/hex"

	"github.com/ezrec/uctrace/cpu"
)

type native struct{}

// Native returns a disassembler for the native instruction set.
func Native() Disassembler {
	return native{}
}

func (native) TryDecode(address uint64, code []byte) (inst Inst, ok bool) {
	decoded, err := cpu.DecodeInstruction(code)
	if err != nil {
		return
	}

	inst = Inst{
		Size:   decoded.Size,
		Opcode: hex.EncodeToString(code[:decoded.Size]),
		Text:   decoded.String(),
	}
	ok = true
	return
}
