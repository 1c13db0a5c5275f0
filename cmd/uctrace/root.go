// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "uctrace",
	Short:         "Traced 64-bit CPU emulator",
	Long:          "uctrace assembles and runs programs for a small 64-bit CPU,\nrecording execution traces of translated blocks to text files.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose execution logging")
}
