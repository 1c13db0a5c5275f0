// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"encoding/binary"
	"io"
	"log"
	"sync"

	"github.com/ezrec/uctrace/bus"
)

// BlockEndHook is called at the end of every translated block with the
// block's starting address and the count of instructions it executed.
// Hooks run synchronously on the execution goroutine and must not block.
type BlockEndHook = func(startAddress uint64, instructionCount uint64)

// Cpu is the simulation context for the traced processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Bus bus.Bus // System bus for instruction fetch and data access.

	Pc       uint64            // Current program counter.
	Register [REG_COUNT]uint64 // Register bank.
	Halted   bool              // Set once a hlt instruction retires.

	Output io.Writer // Destination of the 'out' port, may be nil.

	Ticks  uint64 // Instructions executed.
	Blocks uint64 // Translated blocks completed.

	mu       sync.Mutex
	hooks    map[int]BlockEndHook
	nextHook int
}

// NewCpu creates a CPU attached to a system bus.
func NewCpu(b bus.Bus) (cpu *Cpu) {
	cpu = &Cpu{
		Bus: b,
	}

	return
}

// Reset returns the CPU to its power-on state. Hooks remain installed.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Ticks = 0
	cpu.Blocks = 0
}

// AddBlockEndHook installs a block-end hook and returns its id.
func (cpu *Cpu) AddBlockEndHook(hook BlockEndHook) (id int) {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if cpu.hooks == nil {
		cpu.hooks = map[int]BlockEndHook{}
	}

	id = cpu.nextHook
	cpu.nextHook++
	cpu.hooks[id] = hook
	return
}

// RemoveBlockEndHook removes a single hook by id. Unknown ids are ignored.
func (cpu *Cpu) RemoveBlockEndHook(id int) {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	delete(cpu.hooks, id)
}

// RemoveBlockEndHooks removes every installed hook.
func (cpu *Cpu) RemoveBlockEndHooks() {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	clear(cpu.hooks)
}

// blockEnd reports a completed translated block to all hooks.
// A panicking hook is contained; it cannot take down the execution loop.
func (cpu *Cpu) blockEnd(startAddress uint64, instructionCount uint64) {
	cpu.mu.Lock()
	hooks := make([]BlockEndHook, 0, len(cpu.hooks))
	for _, hook := range cpu.hooks {
		hooks = append(hooks, hook)
	}
	cpu.mu.Unlock()

	for _, hook := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("cpu: block hook panic: %v", r)
				}
			}()
			hook(startAddress, instructionCount)
		}()
	}

	cpu.Blocks++
}

// fetch reads the decode window at the current Pc and decodes one
// instruction. Short windows at the end of mapped memory are allowed.
func (cpu *Cpu) fetch() (inst Instruction, err error) {
	var window [MAX_OPCODE_BYTES]byte

	n, err := cpu.Bus.ReadBytes(cpu.Pc, window[:])
	if err != nil {
		return
	}

	inst, err = DecodeInstruction(window[:n])
	return
}

// execute runs a single decoded instruction. Control-flow instructions
// update Pc themselves; all others advance it by the instruction size.
func (cpu *Cpu) execute(inst Instruction) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: %08x: %v", cpu.Pc, inst)
	}

	next := cpu.Pc + uint64(inst.Size)

	switch inst.Op {
	case OP_NOP:
	case OP_HLT:
		cpu.Halted = true
	case OP_MOVI:
		cpu.Register[inst.A] = inst.Imm
	case OP_MOV:
		cpu.Register[inst.A] = cpu.Register[inst.B]
	case OP_ADD:
		cpu.Register[inst.A] += cpu.Register[inst.B]
	case OP_SUB:
		cpu.Register[inst.A] -= cpu.Register[inst.B]
	case OP_MUL:
		cpu.Register[inst.A] *= cpu.Register[inst.B]
	case OP_LD:
		var word [8]byte
		_, err = cpu.Bus.ReadBytes(cpu.Register[inst.B], word[:])
		if err != nil {
			return
		}
		cpu.Register[inst.A] = binary.LittleEndian.Uint64(word[:])
	case OP_ST:
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], cpu.Register[inst.B])
		_, err = cpu.Bus.WriteBytes(cpu.Register[inst.A], word[:])
		if err != nil {
			return
		}
	case OP_JMP:
		next = inst.Imm
	case OP_JNZ:
		if cpu.Register[inst.A] != 0 {
			next = inst.Imm
		}
	case OP_OUT:
		if cpu.Output != nil {
			_, err = cpu.Output.Write([]byte{byte(cpu.Register[inst.A])})
			if err != nil {
				return
			}
		}
	}

	cpu.Pc = next
	cpu.Ticks++
	return
}

// Step executes a single translated block: instructions from the current
// Pc up to and including a control-flow instruction or hlt, or up to
// BLOCK_LIMIT instructions. The block is reported to block-end hooks even
// when a fault cuts it short.
func (cpu *Cpu) Step() (done bool, err error) {
	if cpu.Halted {
		err = ErrCpuHalted
		return
	}

	start := cpu.Pc
	var count uint64

	for {
		var inst Instruction
		inst, err = cpu.fetch()
		if err != nil {
			err = &ErrFault{Pc: cpu.Pc, Err: err}
			break
		}

		err = cpu.execute(inst)
		if err != nil {
			err = &ErrFault{Pc: cpu.Pc, Err: err}
			break
		}
		count++

		if cpu.Halted || inst.Op.EndsBlock() || count >= BLOCK_LIMIT {
			break
		}
	}

	cpu.blockEnd(start, count)
	done = cpu.Halted
	return
}

// Run executes translated blocks until the CPU halts or faults.
func (cpu *Cpu) Run() (err error) {
	for {
		done, err := cpu.Step()
		if err != nil || done {
			return err
		}
	}
}
