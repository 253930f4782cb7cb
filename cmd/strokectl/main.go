package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "strokectl",
		Short:         "Batch utilities for the stroke warning system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.profile, "env", "", "config profile (development, testing, production); defaults to APP_ENV")

	root.AddCommand(
		newImportCmd(e),
		newClearCmd(e),
		newSeedSamplesCmd(e),
		newTrainCmd(e),
		newUserCmd(e),
	)
	return root
}
