// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/uctrace/cpu"
)

var asmOutput string

var asmCmd = &cobra.Command{
	Use:   "asm <source>",
	Short: "Assemble a source listing into a binary image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inf, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		prog, err := asm.Parse(inf)
		if err != nil {
			return err
		}

		return os.WriteFile(asmOutput, prog.Binary(), 0o644)
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "a.bin",
		"binary image output path")
	rootCmd.AddCommand(asmCmd)
}
