// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads a uctrace session description from a TOML file.
package config

import (
	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"github.com/ezrec/uctrace/tracer"
)

// Config is a complete session description.
type Config struct {
	Machine MachineConfig  `toml:"machine"`
	Tracer  []TracerConfig `toml:"tracer"`
}

// MachineConfig describes the machine to build.
type MachineConfig struct {
	Memory int64 `toml:"memory"` // RAM size in bytes, 0 for the default.
}

// TracerConfig describes one tracer attachment.
type TracerConfig struct {
	Name     string `toml:"name"`
	Output   string `toml:"output"`
	Format   string `toml:"format"`   // Empty selects "address".
	Queue    string `toml:"queue"`    // Empty selects "unbounded".
	Capacity int64  `toml:"capacity"` // Blocks, 0 for the default.
}

// Load reads and validates a session description.
func Load(path string) (cfg *Config, err error) {
	cfg = &Config{}
	_, err = toml.DecodeFile(path, cfg)
	if err != nil {
		cfg = nil
		return
	}

	err = cfg.Validate()
	if err != nil {
		cfg = nil
		return
	}

	return
}

// Validate checks tracer names, outputs, formats and queue policies.
func (cfg *Config) Validate() (err error) {
	names := map[string]bool{}
	for _, tc := range cfg.Tracer {
		if tc.Name == "" {
			err = ErrTracerName(tc.Output)
			return
		}
		if names[tc.Name] {
			err = ErrTracerDuplicate(tc.Name)
			return
		}
		names[tc.Name] = true

		if tc.Output == "" {
			err = ErrTracerOutput(tc.Name)
			return
		}

		_, err = tc.ParsedFormat()
		if err != nil {
			return
		}
		_, err = tc.ParsedPolicy()
		if err != nil {
			return
		}
		_, err = tc.ParsedCapacity()
		if err != nil {
			return
		}
	}

	_, err = cfg.Machine.ParsedMemory()
	return
}

// ParsedMemory returns the RAM size in bytes.
func (mc *MachineConfig) ParsedMemory() (memory int, err error) {
	memory, err = safecast.Conv[int](mc.Memory)
	return
}

// ParsedFormat returns the trace format, defaulting to address-only.
func (tc *TracerConfig) ParsedFormat() (format tracer.TraceFormat, err error) {
	if tc.Format == "" {
		format = tracer.TRACE_FORMAT_ADDRESS
		return
	}

	format, err = tracer.ParseFormat(tc.Format)
	return
}

// ParsedPolicy returns the queue policy, defaulting to unbounded.
func (tc *TracerConfig) ParsedPolicy() (policy tracer.QueuePolicy, err error) {
	if tc.Queue == "" {
		policy = tracer.QUEUE_UNBOUNDED
		return
	}

	policy, err = tracer.ParseQueuePolicy(tc.Queue)
	return
}

// ParsedCapacity returns the queue capacity in blocks.
func (tc *TracerConfig) ParsedCapacity() (capacity int, err error) {
	capacity, err = safecast.Conv[int](tc.Capacity)
	return
}
