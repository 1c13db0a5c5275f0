// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/uctrace/config"
	"github.com/ezrec/uctrace/logging"
	"github.com/ezrec/uctrace/machine"
	"github.com/ezrec/uctrace/tracer"
)

var (
	runMemory      int
	runConfig      string
	runTrace       string
	runTraceFormat string
	runSnapshot    string
)

var runCmd = &cobra.Command{
	Use:   "run <program>",
	Short: "Run a program, recording execution traces",
	Long:  "Run assembles (for .s sources) or loads (for binary images) a\nprogram and executes it to completion. Tracers come from the session\nconfig and the --trace flag.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lg := logging.Default()

		memory := runMemory
		var traces []config.TracerConfig

		if runConfig != "" {
			cfg, err := config.Load(runConfig)
			if err != nil {
				return err
			}
			if memory == 0 {
				memory, err = cfg.Machine.ParsedMemory()
				if err != nil {
					return err
				}
			}
			traces = cfg.Tracer
		}

		mach, err := machine.NewMachine(memory)
		if err != nil {
			return err
		}
		defer mach.Close()
		mach.Verbose = verbose

		err = loadProgram(mach, args[0])
		if err != nil {
			return err
		}

		for _, tc := range traces {
			format, err := tc.ParsedFormat()
			if err != nil {
				return err
			}
			policy, err := tc.ParsedPolicy()
			if err != nil {
				return err
			}
			capacity, err := tc.ParsedCapacity()
			if err != nil {
				return err
			}
			_, err = mach.TraceExecution(tc.Name, tc.Output, format,
				machine.WithQueue(policy, capacity))
			if err != nil {
				return err
			}
			lg.Info("tracing", "name", tc.Name, "output", tc.Output,
				"format", format, "queue", policy)
		}

		if runTrace != "" {
			format, err := tracer.ParseFormat(runTraceFormat)
			if err != nil {
				return err
			}
			_, err = mach.TraceExecution("cli", runTrace, format)
			if err != nil {
				return err
			}
			lg.Info("tracing", "name", "cli", "output", runTrace, "format", format)
		}

		err = mach.Run()
		if err != nil {
			return err
		}

		mach.Close()

		if runSnapshot != "" {
			err = mach.SaveSnapshot(runSnapshot)
			if err != nil {
				return err
			}
		}

		lg.Info("halted", "ticks", mach.Cpu.Ticks, "blocks", mach.Cpu.Blocks)
		return nil
	},
}

// loadProgram assembles .s sources and loads anything else as a flat
// binary image.
func loadProgram(mach *machine.Machine, path string) (err error) {
	if strings.HasSuffix(path, ".s") || strings.HasSuffix(path, ".asm") {
		inf, err := os.Open(path)
		if err != nil {
			return err
		}
		defer inf.Close()

		_, err = mach.LoadSource(inf)
		return err
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return
	}

	err = mach.LoadImage(image)
	return
}

func init() {
	runCmd.Flags().IntVarP(&runMemory, "memory", "m", 0,
		"RAM size in bytes (default 64K)")
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "",
		"session config (TOML)")
	runCmd.Flags().StringVarP(&runTrace, "trace", "t", "",
		"execution trace output path")
	runCmd.Flags().StringVar(&runTraceFormat, "trace-format", "address",
		"trace line format: address, opcode, address+opcode")
	runCmd.Flags().StringVar(&runSnapshot, "snapshot", "",
		"save machine state after the run")
	rootCmd.AddCommand(runCmd)
}
