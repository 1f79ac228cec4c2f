// Package app exposes the high-level operations the CLI and TUI reuse: open
// a snapshot target, dump run-queue reports in the selected shape, collect
// reports for the live view, resolve symbols.
package app

import (
	"errors"

	"krunq/internal/target/core"
)

// Options configures the top-level controller.
type Options struct {
	// LayoutPath points to the YAML layout descriptor for the snapshot.
	LayoutPath string
	// ImagePath points to the raw memory image file.
	ImagePath string
}

// App is the shared controller facade over one snapshot target.
type App struct {
	opts Options
	tgt  *core.Target
}

// openTarget is the snapshot constructor; tests substitute it.
var openTarget = core.Open

// New constructs the controller without touching the snapshot yet.
func New(opts Options) *App {
	return &App{opts: opts}
}

// Open loads the layout and maps the image. It must be called before any
// dump or collect operation.
func (a *App) Open() error {
	if a.opts.LayoutPath == "" {
		return errors.New("no layout path configured")
	}
	if a.opts.ImagePath == "" {
		return errors.New("no image path configured")
	}
	tgt, err := openTarget(a.opts.LayoutPath, a.opts.ImagePath)
	if err != nil {
		return err
	}
	a.tgt = tgt
	return nil
}

// Close releases the snapshot.
func (a *App) Close() error {
	if a.tgt == nil {
		return nil
	}
	err := a.tgt.Close()
	a.tgt = nil
	return err
}

var errNotOpen = errors.New("snapshot not open")
