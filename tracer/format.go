// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package tracer

import (
	"fmt"
	"strings"

	"github.com/ezrec/uctrace/disasm"
)

// TraceFormat selects what each trace line contains.
type TraceFormat int

const (
	TRACE_FORMAT_ADDRESS        = TraceFormat(iota) // address
	TRACE_FORMAT_OPCODE                             // opcode
	TRACE_FORMAT_ADDRESS_OPCODE                     // address+opcode
)

var formatNames = map[TraceFormat]string{
	TRACE_FORMAT_ADDRESS:        "address",
	TRACE_FORMAT_OPCODE:         "opcode",
	TRACE_FORMAT_ADDRESS_OPCODE: "address+opcode",
}

// String returns the format name.
func (format TraceFormat) String() string {
	name, ok := formatNames[format]
	if !ok {
		return fmt.Sprintf("format(%d)", int(format))
	}

	return name
}

// ParseFormat converts a format name to a TraceFormat.
func ParseFormat(name string) (format TraceFormat, err error) {
	for format, fname := range formatNames {
		if fname == name {
			return format, nil
		}
	}

	err = ErrFormatUnknown(name)
	return
}

// render returns the trace line for one instruction, with trailing
// newline. Opcode bytes are rendered in uppercase hex. An unrecognized
// format renders no line.
func (format TraceFormat) render(address uint64, inst disasm.Inst) (line string, ok bool) {
	ok = true
	switch format {
	case TRACE_FORMAT_ADDRESS:
		line = fmt.Sprintf("0x%x\n", address)
	case TRACE_FORMAT_OPCODE:
		line = fmt.Sprintf("0x%v\n", strings.ToUpper(inst.Opcode))
	case TRACE_FORMAT_ADDRESS_OPCODE:
		line = fmt.Sprintf("0x%x: 0x%v\n", address, strings.ToUpper(inst.Opcode))
	default:
		ok = false
	}

	return
}
