package main

import (
	"time"

	"github.com/spf13/cobra"

	"krunq/internal/tui"
)

var (
	watchCPUs     string
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(cmdWatch)

	cmdWatch.Flags().StringVarP(&watchCPUs, "cpus", "c", "", "CPU filter, e.g. \"0,2-4\" (default: all online CPUs)")
	cmdWatch.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "Refresh interval (default from config, 2s)")
}

var cmdWatch = &cobra.Command{
	Use:   "watch",
	Short: "Continuously display current tasks per CPU",
	Long:  `Re-reads the snapshot on a timer and shows each CPU's current task in a table. Useful against a snapshot file that is being refreshed, or a paused target that is periodically resumed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, cfg, err := controllerFactory()
		if err != nil {
			return err
		}
		if err := openController(ctrl); err != nil {
			return err
		}
		defer ctrl.Close()

		interval := watchInterval
		if interval <= 0 {
			interval = cfg.WatchInterval
		}
		return tui.Run(ctrl, watchCPUs, interval)
	},
}
