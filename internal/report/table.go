package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"krunq/internal/runq"
)

// TableOptions selects the optional table columns.
type TableOptions struct {
	// Runtime adds the formatted elapsed-run-time column.
	Runtime bool
	// Timestamps adds the raw run-queue and task timestamp columns.
	Timestamps bool
}

// WriteTable renders one row per CPU's current task. Rows are buffered so
// the column widths can be computed; the whole table is emitted at once.
func WriteTable(w io.Writer, reps []*runq.CPUReport, opts TableOptions) error {
	headers := []string{"CPU", "PID", "TASK", "PRIO", "COMMAND"}
	if opts.Runtime {
		headers = append(headers, "RUNTIME")
	}
	if opts.Timestamps {
		headers = append(headers, "RQ_TIMESTAMP", "TASK_TIMESTAMP")
	}

	cell := lipgloss.NewStyle().PaddingRight(2)
	tbl := table.New().
		BorderTop(false).BorderBottom(false).
		BorderLeft(false).BorderRight(false).
		BorderColumn(false).BorderRow(false).BorderHeader(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return cell }).
		Headers(headers...)

	for _, rep := range reps {
		curr := rep.Curr
		row := []string{
			fmt.Sprintf("%d", rep.CPU),
			fmt.Sprintf("%d", curr.PID),
			fmt.Sprintf("%#x", curr.Addr),
			fmt.Sprintf("%d", curr.Prio),
			EscapeComm(curr.Comm),
		}
		if opts.Runtime {
			row = append(row, runq.FormatRuntime(curr.Runtime()))
		}
		if opts.Timestamps {
			row = append(row,
				fmt.Sprintf("%013d", rep.Clock),
				fmt.Sprintf("%013d", curr.LastArrival),
			)
		}
		tbl.Row(row...)
	}

	_, err := fmt.Fprintln(w, tbl.String())
	return err
}
