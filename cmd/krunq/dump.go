package main

import (
	"github.com/spf13/cobra"

	"krunq/internal/app"
)

var (
	dumpCPUs       string
	dumpTimestamps bool
	dumpLag        bool
	dumpRuntime    bool
	dumpGroup      bool
)

func init() {
	rootCmd.AddCommand(cmdDump)

	cmdDump.Flags().StringVarP(&dumpCPUs, "cpus", "c", "", "CPU filter, e.g. \"0,2-4\" (default: all online CPUs)")
	cmdDump.Flags().BoolVarP(&dumpTimestamps, "timestamps", "t", false, "Table output with raw run-queue and task timestamps")
	cmdDump.Flags().BoolVarP(&dumpLag, "lag", "T", false, "Print per-CPU clock lag behind the maximum run-queue clock")
	cmdDump.Flags().BoolVarP(&dumpRuntime, "runtime", "m", false, "Table output with formatted elapsed run time")
	cmdDump.Flags().BoolVarP(&dumpGroup, "group", "g", false, "Show the root task group with the current task only")
	cmdDump.MarkFlagsMutuallyExclusive("timestamps", "lag", "runtime", "group")
}

var cmdDump = &cobra.Command{
	Use:   "dump",
	Short: "Display the tasks on the run queues of each CPU",
	Long:  `Reads every selected CPU's run queue from the snapshot and prints the current task plus the RT and CFS waiting tasks. Table, lag, and group modes are mutually exclusive; without them the verbose per-CPU dump is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, _, err := controllerFactory()
		if err != nil {
			return err
		}
		if err := openController(ctrl); err != nil {
			return err
		}
		defer ctrl.Close()

		params := app.DumpParams{
			CPUSpec:    dumpCPUs,
			Timestamps: dumpTimestamps,
			Lag:        dumpLag,
			Runtime:    dumpRuntime,
			Group:      dumpGroup,
		}
		return ctrl.Dump(cmd.Context(), params, cmd.OutOrStdout())
	},
}
