// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package machine assembles a complete traced system: RAM on a system
// bus, the CPU, and a per-machine registry of execution tracers.
package machine

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ezrec/uctrace/bus"
	"github.com/ezrec/uctrace/cpu"
	"github.com/ezrec/uctrace/disasm"
	"github.com/ezrec/uctrace/logging"
	"github.com/ezrec/uctrace/tracer"
)

const DEFAULT_MEMORY = 64 * 1024 // Default RAM size in bytes.

// Machine is a CPU with RAM and attached execution tracers.
type Machine struct {
	Verbose bool

	Bus     *bus.System
	Ram     *bus.Memory
	Cpu     *cpu.Cpu
	Tracers *tracer.Registry

	log *log.Logger
}

// NewMachine creates a machine with RAM mapped at address zero.
func NewMachine(memory int) (machine *Machine, err error) {
	if memory <= 0 {
		memory = DEFAULT_MEMORY
	}

	machine = &Machine{
		Bus:     &bus.System{},
		Ram:     bus.NewMemory(memory),
		Tracers: tracer.NewRegistry(),
		log:     logging.Default(),
	}

	err = machine.Bus.Map(0, machine.Ram.Size(), machine.Ram)
	if err != nil {
		machine = nil
		return
	}

	machine.Cpu = cpu.NewCpu(machine.Bus)
	machine.Cpu.Output = os.Stdout
	return
}

// LoadImage copies a binary image into RAM at address zero and resets
// the CPU.
func (machine *Machine) LoadImage(image []byte) (err error) {
	_, err = machine.Bus.WriteBytes(0, image)
	if err != nil {
		return
	}

	machine.Cpu.Reset()
	machine.Cpu.Verbose = machine.Verbose
	return
}

// LoadSource assembles a source listing and loads the resulting image.
func (machine *Machine) LoadSource(source io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: machine.Verbose}
	prog, err = asm.Parse(source)
	if err != nil {
		return
	}

	err = machine.LoadImage(prog.Binary())
	return
}

// TraceOption adjusts a tracer attachment.
type TraceOption func(*tracer.Config)

// WithQueue selects the trace queue's overflow policy and capacity.
func WithQueue(policy tracer.QueuePolicy, capacity int) TraceOption {
	return func(cfg *tracer.Config) {
		cfg.Policy = policy
		cfg.Capacity = capacity
	}
}

// TraceExecution attaches a named execution tracer to the CPU, writing
// to path in the given format. The trace file is truncated.
func (machine *Machine) TraceExecution(name string, path string, format tracer.TraceFormat, opts ...TraceOption) (tr *tracer.Tracer, err error) {
	cfg := tracer.Config{
		Engine:       machine.Cpu,
		Memory:       machine.Bus,
		Disassembler: disasm.Native(),
		OutputPath:   path,
		Format:       format,
		Log:          machine.log,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	tr, err = machine.Tracers.Attach(name, cfg)
	return
}

// StopTracing detaches one named tracer, draining its queue first.
func (machine *Machine) StopTracing(name string) (err error) {
	return machine.Tracers.Detach(machine.Cpu, name)
}

// Run executes the loaded program until the CPU halts or faults.
func (machine *Machine) Run() (err error) {
	return machine.Cpu.Run()
}

// Close detaches every tracer, draining their queues.
func (machine *Machine) Close() {
	machine.Tracers.Close()
}
