// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ezrec/uctrace/cpu"
)

// Snapshot is the serializable machine state.
type Snapshot struct {
	Pc       uint64   `msgpack:"pc"`
	Register []uint64 `msgpack:"register"`
	Halted   bool     `msgpack:"halted"`
	Ticks    uint64   `msgpack:"ticks"`
	Blocks   uint64   `msgpack:"blocks"`
	Ram      []byte   `msgpack:"ram"`
}

// SaveSnapshot writes the CPU and RAM state to a file.
func (machine *Machine) SaveSnapshot(path string) (err error) {
	snapshot := Snapshot{
		Pc:       machine.Cpu.Pc,
		Register: machine.Cpu.Register[:],
		Halted:   machine.Cpu.Halted,
		Ticks:    machine.Cpu.Ticks,
		Blocks:   machine.Cpu.Blocks,
		Ram:      machine.Ram.Data,
	}

	file, err := os.Create(path)
	if err != nil {
		return
	}
	defer file.Close()

	err = msgpack.NewEncoder(file).Encode(&snapshot)
	return
}

// LoadSnapshot restores the CPU and RAM state from a file. The snapshot
// RAM must fit the machine's RAM.
func (machine *Machine) LoadSnapshot(path string) (err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	var snapshot Snapshot
	err = msgpack.NewDecoder(file).Decode(&snapshot)
	if err != nil {
		return
	}

	if len(snapshot.Ram) > len(machine.Ram.Data) {
		err = ErrSnapshotSize(len(snapshot.Ram))
		return
	}
	if len(snapshot.Register) != cpu.REG_COUNT {
		err = ErrSnapshotRegisters(len(snapshot.Register))
		return
	}

	clear(machine.Ram.Data)
	copy(machine.Ram.Data, snapshot.Ram)

	machine.Cpu.Pc = snapshot.Pc
	copy(machine.Cpu.Register[:], snapshot.Register)
	machine.Cpu.Halted = snapshot.Halted
	machine.Cpu.Ticks = snapshot.Ticks
	machine.Cpu.Blocks = snapshot.Blocks
	return
}
