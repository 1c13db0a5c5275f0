package machine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/uctrace/tracer"
)

func loadMachine(t *testing.T, program []string) (machine *Machine) {
	assert := assert.New(t)

	machine, err := NewMachine(4096)
	assert.NoError(err)

	_, err = machine.LoadSource(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	return
}

func TestMachineTraceExecution(t *testing.T) {
	assert := assert.New(t)

	machine := loadMachine(t, []string{
		"movi r0 5", // 0, 10 bytes
		"movi r1 7", // 10, 10 bytes
		"add r0 r1", // 20, 3 bytes
		"hlt",       // 23, 1 byte
	})

	path := filepath.Join(t.TempDir(), "trace.txt")
	_, err := machine.TraceExecution("exec", path, tracer.TRACE_FORMAT_ADDRESS_OPCODE)
	assert.NoError(err)

	assert.NoError(machine.Run())
	machine.Close()

	data, err := os.ReadFile(path)
	assert.NoError(err)

	expected := strings.Join([]string{
		"0x0: 0x10000500000000000000",
		"0xa: 0x10010700000000000000",
		"0x14: 0x200001",
		"0x17: 0x01",
		"",
	}, "\n")
	assert.Equal(expected, string(data))
}

func TestMachineTraceLoop(t *testing.T) {
	assert := assert.New(t)

	machine := loadMachine(t, []string{
		"        movi r0 2",   // 0
		"        movi r1 1",   // 10
		"loop:   sub r0 r1",   // 20
		"        jnz r0 loop", // 23
		"        hlt",         // 33
	})

	path := filepath.Join(t.TempDir(), "trace.txt")
	_, err := machine.TraceExecution("exec", path, tracer.TRACE_FORMAT_ADDRESS)
	assert.NoError(err)

	assert.NoError(machine.Run())
	assert.NoError(machine.StopTracing("exec"))

	data, err := os.ReadFile(path)
	assert.NoError(err)

	expected := strings.Join([]string{
		"0x0", "0xa", "0x14", "0x17", // first pass
		"0x14", "0x17", // loop retaken
		"0x21", // hlt
		"",
	}, "\n")
	assert.Equal(expected, string(data))
}

func TestMachineTwoTracers(t *testing.T) {
	assert := assert.New(t)

	machine := loadMachine(t, []string{
		"movi r0 1",
		"hlt",
	})

	dir := t.TempDir()
	addrPath := filepath.Join(dir, "addr.txt")
	opPath := filepath.Join(dir, "op.txt")

	_, err := machine.TraceExecution("addr", addrPath, tracer.TRACE_FORMAT_ADDRESS)
	assert.NoError(err)
	_, err = machine.TraceExecution("op", opPath, tracer.TRACE_FORMAT_OPCODE)
	assert.NoError(err)

	// Names are unique per machine.
	_, err = machine.TraceExecution("addr", filepath.Join(dir, "dup.txt"),
		tracer.TRACE_FORMAT_ADDRESS)
	assert.ErrorIs(err, tracer.ErrTracerExists("addr"))

	assert.NoError(machine.Run())
	machine.Close()

	data, err := os.ReadFile(addrPath)
	assert.NoError(err)
	assert.Equal("0x0\n0xa\n", string(data))

	data, err = os.ReadFile(opPath)
	assert.NoError(err)
	assert.Equal("0x10000100000000000000\n0x01\n", string(data))
}

func TestMachineTraceQueueOptions(t *testing.T) {
	assert := assert.New(t)

	machine := loadMachine(t, []string{
		"        movi r0 2",
		"        movi r1 1",
		"loop:   sub r0 r1",
		"        jnz r0 loop",
		"        hlt",
	})

	dir := t.TempDir()

	tr, err := machine.TraceExecution("bounded",
		filepath.Join(dir, "bounded.txt"), tracer.TRACE_FORMAT_ADDRESS,
		WithQueue(tracer.QUEUE_BOUND, 1))
	assert.NoError(err)
	assert.Equal(tracer.QUEUE_BOUND, tr.Policy())
	assert.Equal(1, tr.Capacity())

	tr, err = machine.TraceExecution("dropping",
		filepath.Join(dir, "dropping.txt"), tracer.TRACE_FORMAT_ADDRESS,
		WithQueue(tracer.QUEUE_DROP_OLDEST, 256))
	assert.NoError(err)
	assert.Equal(tracer.QUEUE_DROP_OLDEST, tr.Policy())
	assert.Equal(256, tr.Capacity())

	tr, err = machine.TraceExecution("plain",
		filepath.Join(dir, "plain.txt"), tracer.TRACE_FORMAT_ADDRESS)
	assert.NoError(err)
	assert.Equal(tracer.QUEUE_UNBOUNDED, tr.Policy())

	assert.NoError(machine.Run())
	machine.Close()

	// A bound capacity-1 queue delivers every block, in order.
	data, err := os.ReadFile(filepath.Join(dir, "bounded.txt"))
	assert.NoError(err)

	expected := strings.Join([]string{
		"0x0", "0xa", "0x14", "0x17",
		"0x14", "0x17",
		"0x21",
		"",
	}, "\n")
	assert.Equal(expected, string(data))
}

func TestMachineSnapshot(t *testing.T) {
	assert := assert.New(t)

	machine := loadMachine(t, []string{
		"movi r0 0x1234",
		"movi r1 0x100",
		"st r1 r0",
		"hlt",
	})

	assert.NoError(machine.Run())

	path := filepath.Join(t.TempDir(), "machine.snap")
	assert.NoError(machine.SaveSnapshot(path))

	restored, err := NewMachine(4096)
	assert.NoError(err)
	assert.NoError(restored.LoadSnapshot(path))

	assert.Equal(machine.Cpu.Pc, restored.Cpu.Pc)
	assert.Equal(machine.Cpu.Register, restored.Cpu.Register)
	assert.True(restored.Cpu.Halted)
	assert.Equal(machine.Cpu.Ticks, restored.Cpu.Ticks)
	assert.Equal(machine.Cpu.Blocks, restored.Cpu.Blocks)
	assert.Equal(machine.Ram.Data, restored.Ram.Data)
}

func TestMachineSnapshotTooLarge(t *testing.T) {
	assert := assert.New(t)

	machine := loadMachine(t, []string{"hlt"})
	assert.NoError(machine.Run())

	path := filepath.Join(t.TempDir(), "machine.snap")
	assert.NoError(machine.SaveSnapshot(path))

	small, err := NewMachine(64)
	assert.NoError(err)

	err = small.LoadSnapshot(path)
	assert.ErrorIs(err, ErrSnapshotSize(4096))
}
