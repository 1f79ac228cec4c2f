package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"krunq/internal/app"
	"krunq/internal/config"
	"krunq/internal/runq"
)

var rootCmd = &cobra.Command{
	Use:   "krunq [command]",
	Short: "krunq: kernel run-queue inspector",
	Long:  `krunq reconstructs the Linux scheduler's per-CPU run-queue state from a recorded kernel memory snapshot: current tasks, RT and CFS waiting tasks, clocks, and derived metrics.`,
}

var (
	configPath string
	layoutPath string
	imagePath  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&layoutPath, "layout", "", "Path to the snapshot layout descriptor")
	rootCmd.PersistentFlags().StringVar(&imagePath, "image", "", "Path to the raw memory image")
}

// controllerAPI is the surface the commands need from app.App.
type controllerAPI interface {
	Open() error
	Close() error
	Dump(ctx context.Context, params app.DumpParams, w io.Writer) error
	Collect(ctx context.Context, cpuSpec string) ([]*runq.CPUReport, error)
	Symbols(names []string) ([]app.SymbolInfo, error)
	SymbolAt(addr uint64) (app.SymbolInfo, uint64, error)
}

// controllerFactory builds the controller from config and flags; tests
// substitute it.
var controllerFactory = func() (controllerAPI, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}
	if layoutPath != "" {
		cfg.LayoutPath = layoutPath
	}
	if imagePath != "" {
		cfg.ImagePath = imagePath
	}
	return app.New(app.Options{LayoutPath: cfg.LayoutPath, ImagePath: cfg.ImagePath}), cfg, nil
}

// openController loads the snapshot behind a progress spinner; images can
// be large. The spinner writes to stderr so report output stays clean.
func openController(ctrl controllerAPI) error {
	spin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " Loading snapshot..."
	spin.Start()
	err := ctrl.Open()
	spin.Stop()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
