// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package tracer records the execution of translated blocks to a text
// file. A block-end hook on the engine pushes completed blocks onto a
// closeable queue; a background worker pops them, replays each block by
// reading code from memory and decoding one instruction at a time, and
// appends the rendered lines to the output file.
package tracer

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ezrec/uctrace/disasm"
	"github.com/ezrec/uctrace/logging"
)

const DECODE_WINDOW = 16 // Bytes read from memory per instruction decode.

// TracerState is the lifecycle state of a tracer.
type TracerState int

const (
	TRACER_IDLE     = TracerState(iota) // Created, worker not started.
	TRACER_RUNNING                      // Hook installed, worker draining.
	TRACER_STOPPING                     // Queue closed, worker finishing.
	TRACER_STOPPED                      // Worker joined, sink closed.
)

var stateNames = map[TracerState]string{
	TRACER_IDLE:     "idle",
	TRACER_RUNNING:  "running",
	TRACER_STOPPING: "stopping",
	TRACER_STOPPED:  "stopped",
}

// String returns the state name.
func (state TracerState) String() string {
	name, ok := stateNames[state]
	if !ok {
		return fmt.Sprintf("state(%d)", int(state))
	}

	return name
}

// Engine is the execution engine a tracer attaches to.
type Engine interface {
	AddBlockEndHook(hook func(startAddress uint64, instructionCount uint64)) (id int)
	RemoveBlockEndHook(id int)
}

// Reader reads code bytes from the engine's memory. Short reads at the
// end of mapped memory are allowed.
type Reader interface {
	ReadBytes(address uint64, p []byte) (n int, err error)
}

// Config describes a tracer attachment.
type Config struct {
	Engine       Engine              // Engine to hook.
	Memory       Reader              // Code memory for block replay.
	Disassembler disasm.Disassembler // Instruction decoder.

	OutputPath string      // Trace file, truncated on creation.
	Format     TraceFormat // Line format.

	Policy   QueuePolicy // Queue overflow policy.
	Capacity int         // Queue capacity for the bounded policies.

	Log *log.Logger // Defaults to the process logger.
}

// Tracer records translated blocks from one engine to one output file.
type Tracer struct {
	cfg  Config
	sink *os.File
	log  *log.Logger

	mu     sync.Mutex
	state  TracerState
	queue  *Queue
	hookId int
	wg     sync.WaitGroup
}

// New creates a tracer and its output file. The output file is
// truncated; a creation failure is reported as *ErrSink and leaves the
// engine untouched.
func New(cfg Config) (tracer *Tracer, err error) {
	if cfg.Engine == nil || cfg.Memory == nil || cfg.Disassembler == nil {
		err = ErrTracerConfig
		return
	}

	sink, err := os.Create(cfg.OutputPath)
	if err != nil {
		err = &ErrSink{Path: cfg.OutputPath, Err: err}
		return
	}

	lg := cfg.Log
	if lg == nil {
		lg = logging.Default()
	}

	tracer = &Tracer{
		cfg:  cfg,
		sink: sink,
		log:  lg,
	}
	return
}

// State returns the tracer lifecycle state.
func (tracer *Tracer) State() TracerState {
	tracer.mu.Lock()
	defer tracer.mu.Unlock()

	return tracer.state
}

// Policy returns the queue overflow policy in effect.
func (tracer *Tracer) Policy() QueuePolicy {
	return tracer.cfg.Policy
}

// Capacity returns the configured queue capacity in blocks; zero means
// the default.
func (tracer *Tracer) Capacity() int {
	return tracer.cfg.Capacity
}

// Start installs the block-end hook and launches the trace worker. Only
// an idle tracer may start.
func (tracer *Tracer) Start() (err error) {
	tracer.mu.Lock()
	defer tracer.mu.Unlock()

	if tracer.state != TRACER_IDLE {
		err = ErrTracerStarted
		return
	}

	tracer.queue = NewQueue(tracer.cfg.Policy, tracer.cfg.Capacity)
	tracer.hookId = tracer.cfg.Engine.AddBlockEndHook(tracer.onBlockEnd)
	tracer.state = TRACER_RUNNING

	tracer.wg.Add(1)
	go tracer.worker()

	tracer.log.Debug("trace started",
		"output", tracer.cfg.OutputPath,
		"format", tracer.cfg.Format,
		"queue", tracer.cfg.Policy)
	return
}

// onBlockEnd runs on the execution goroutine. It must stay cheap: no
// logging, no file access, just a queue push. Empty blocks are not
// queued, and a push onto a closed queue is dropped.
func (tracer *Tracer) onBlockEnd(startAddress uint64, instructionCount uint64) {
	if instructionCount == 0 {
		return
	}

	_ = tracer.queue.Push(Block{
		Address:          startAddress,
		InstructionCount: instructionCount,
	})
}

// worker drains the queue until it is closed and empty.
func (tracer *Tracer) worker() {
	defer tracer.wg.Done()

	for {
		block, ok := tracer.queue.Pop()
		if !ok {
			return
		}

		tracer.trace(block)
	}
}

// trace replays one block and appends its transcript to the sink as a
// single write. An instruction that fails to decode ends the replay
// with a marker line; the rest of the block is abandoned.
func (tracer *Tracer) trace(block Block) {
	var sb strings.Builder
	var window [DECODE_WINDOW]byte

	pc := block.Address
	for n := uint64(0); n < block.InstructionCount; n++ {
		count, err := tracer.cfg.Memory.ReadBytes(pc, window[:])
		if err != nil {
			count = 0
		}

		inst, ok := tracer.cfg.Disassembler.TryDecode(pc, window[:count])
		if !ok {
			fmt.Fprintf(&sb, "Couldn't disassemble opcode at PC 0x%x\n", pc)
			break
		}

		line, ok := tracer.cfg.Format.render(pc, inst)
		if !ok {
			// Unrecognized format: skip the line, keep replaying.
			tracer.log.Warn("unknown trace format", "format", int(tracer.cfg.Format))
		} else {
			sb.WriteString(line)
		}
		pc += uint64(inst.Size)
	}

	_, err := tracer.sink.WriteString(sb.String())
	if err != nil {
		tracer.log.Error("trace write failed",
			"output", tracer.cfg.OutputPath, "err", err)
	}
}

// Stop detaches the hook, closes the queue, and waits for the worker to
// drain every queued block, then closes the output file. There is no
// timeout on the join: a sink that blocks forever blocks Stop forever.
// Stop is idempotent.
func (tracer *Tracer) Stop() {
	tracer.mu.Lock()

	switch tracer.state {
	case TRACER_STOPPED:
		tracer.mu.Unlock()
		return

	case TRACER_IDLE:
		tracer.state = TRACER_STOPPED
		tracer.sink.Close()
		tracer.mu.Unlock()
		return

	case TRACER_RUNNING:
		tracer.state = TRACER_STOPPING
		tracer.cfg.Engine.RemoveBlockEndHook(tracer.hookId)
		tracer.queue.Close()
	}

	tracer.mu.Unlock()
	tracer.wg.Wait()

	tracer.mu.Lock()
	defer tracer.mu.Unlock()

	if tracer.state == TRACER_STOPPING {
		tracer.state = TRACER_STOPPED
		tracer.sink.Close()
		tracer.log.Debug("trace stopped", "output", tracer.cfg.OutputPath)
	}
}
