package app

import (
	"context"
	"io"

	"krunq/internal/report"
	"krunq/internal/runq"
)

// DumpParams selects the CPU set and the output shape. The four mode flags
// are mutually exclusive; with none set the dump is the verbose RT+CFS
// listing for every selected CPU.
type DumpParams struct {
	// CPUSpec filters the CPU set ("0,2-4"); empty means all online CPUs.
	CPUSpec string

	// Timestamps switches to table output with raw clock columns.
	Timestamps bool
	// Runtime switches to table output with the formatted runtime column.
	Runtime bool
	// Lag prints the cross-CPU clock lag listing instead of any dump.
	Lag bool
	// Group prints the verbose form with the root task group and the
	// current task only.
	Group bool
}

// Dump writes the selected report to w. Verbose output streams one CPU at a
// time; the table buffers rows for alignment; the lag listing is strictly
// two-phase, emitting nothing until every selected CPU's clock was read.
// Any accessor failure aborts the dump.
func (a *App) Dump(ctx context.Context, params DumpParams, w io.Writer) error {
	if a.tgt == nil {
		return errNotOpen
	}
	cpus, err := runq.SelectCPUs(a.tgt, params.CPUSpec)
	if err != nil {
		return err
	}

	if params.Lag {
		clocks, err := runq.CollectClocks(a.tgt, cpus)
		if err != nil {
			return err
		}
		return report.WriteLags(w, runq.ComputeLags(clocks))
	}

	if params.Timestamps || params.Runtime {
		reps := make([]*runq.CPUReport, 0, len(cpus))
		for _, cpu := range cpus {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := runq.Snapshot(a.tgt, cpu, false)
			if err != nil {
				return err
			}
			reps = append(reps, rep)
		}
		return report.WriteTable(w, reps, report.TableOptions{
			Runtime:    params.Runtime,
			Timestamps: params.Timestamps,
		})
	}

	for _, cpu := range cpus {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep, err := runq.Snapshot(a.tgt, cpu, params.Group)
		if err != nil {
			return err
		}
		if err := report.WriteVerbose(w, rep); err != nil {
			return err
		}
	}
	return nil
}

// Collect gathers full per-CPU reports for programmatic consumers such as
// the watch TUI.
func (a *App) Collect(ctx context.Context, cpuSpec string) ([]*runq.CPUReport, error) {
	if a.tgt == nil {
		return nil, errNotOpen
	}
	cpus, err := runq.SelectCPUs(a.tgt, cpuSpec)
	if err != nil {
		return nil, err
	}
	reps := make([]*runq.CPUReport, 0, len(cpus))
	for _, cpu := range cpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep, err := runq.Snapshot(a.tgt, cpu, false)
		if err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, nil
}
