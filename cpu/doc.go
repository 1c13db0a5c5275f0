// Package cpu implements the traced microprocessor and its assembler.
//
// The CPU is a 64-bit little-endian machine with eight general-purpose
// registers (r0-r7), a variable-length instruction encoding (1 to 10 bytes),
// and a byte-addressed system bus. Execution proceeds in translated blocks:
// runs of instructions ending at a control-flow instruction, a halt, a
// decode fault, or the block size limit. Observers register block-end hooks
// and are notified synchronously with the block's start address and
// instruction count.
//
// The assembler provides a single-pass assembly language for the instruction
// set, supporting labels, equates, origin control, and compile-time $()
// expression evaluation.
package cpu
