package cpu

// Program is an assembled instruction listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source line for an address.
type Debug struct {
	*Opcode
	Offset int
}

// Debug returns the opcode containing the program counter.
func (prog *Program) Debug(pc uint64) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if pc >= op.Addr && pc < op.Addr+uint64(len(op.Bytes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Offset: int(pc - op.Addr),
			}
			break
		}
	}

	return
}

// Size returns the extent of the program image in bytes.
func (prog *Program) Size() (size uint64) {
	for _, op := range prog.Opcodes {
		end := op.Addr + uint64(len(op.Bytes))
		if end > size {
			size = end
		}
	}

	return
}

// Binary returns the program as a flat image starting at address zero.
// Gaps between opcodes are zero filled.
func (prog *Program) Binary() (image []byte) {
	image = make([]byte, prog.Size())
	for _, op := range prog.Opcodes {
		copy(image[op.Addr:], op.Bytes)
	}

	return
}
