package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var symbolsAt string

func init() {
	rootCmd.AddCommand(cmdSymbols)

	cmdSymbols.Flags().StringVar(&symbolsAt, "at", "", "Reverse-resolve an address (hex or decimal) to the nearest preceding symbol")
}

var cmdSymbols = &cobra.Command{
	Use:   "symbols [name...]",
	Short: "Resolve symbol addresses from the snapshot layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		if symbolsAt == "" && len(args) == 0 {
			return errors.New("provide symbol names or --at")
		}

		ctrl, _, err := controllerFactory()
		if err != nil {
			return err
		}
		if err := openController(ctrl); err != nil {
			return err
		}
		defer ctrl.Close()

		out := cmd.OutOrStdout()
		if symbolsAt != "" {
			addr, err := strconv.ParseUint(symbolsAt, 0, 64)
			if err != nil {
				return fmt.Errorf("parse address %q: %w", symbolsAt, err)
			}
			info, off, err := ctrl.SymbolAt(addr)
			if err != nil {
				return err
			}
			if off == 0 {
				fmt.Fprintf(out, "%#x %s\n", addr, info.Name)
			} else {
				fmt.Fprintf(out, "%#x %s+%#x\n", addr, info.Name, off)
			}
		}

		if len(args) > 0 {
			infos, err := ctrl.Symbols(args)
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%s %#x\n", info.Name, info.Addr)
			}
		}
		return nil
	},
}
