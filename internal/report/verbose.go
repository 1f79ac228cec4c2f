package report

import (
	"fmt"
	"io"

	"krunq/internal/runq"
)

// WriteVerbose emits one CPU's run-queue in the default textual shape: a
// header with the run-queue address, the current task, then the RT and CFS
// waiting tasks. Callers stream one CPU at a time.
func WriteVerbose(w io.Writer, rep *runq.CPUReport) error {
	if _, err := fmt.Fprintf(w, "CPU %d RUNQUEUE: %#x\n", rep.CPU, rep.RQAddr); err != nil {
		return err
	}
	curr := rep.Curr
	if _, err := fmt.Fprintf(w, "  CURRENT:   PID: %-6d  TASK: %#x  PRIO: %d  COMMAND: \"%s\"\n",
		curr.PID, curr.Addr, curr.Prio, EscapeComm(curr.Comm)); err != nil {
		return err
	}

	if rep.Grouped {
		if _, err := fmt.Fprintf(w, "  ROOT_TASK_GROUP: %#x\n", rep.GroupAddr); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "     [%3d] PID: %-6d TASK: %#x  COMMAND: \"%s\" [CURRENT]\n",
			curr.Prio, curr.PID, curr.Addr, EscapeComm(curr.Comm)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "  RT PRIO_ARRAY: %#x\n", rep.RTArrayAddr); err != nil {
			return err
		}
		if err := writeTaskLines(w, rep.RT); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  CFS RB_ROOT: %#x\n", rep.CFSRootAddr); err != nil {
			return err
		}
		if err := writeTaskLines(w, rep.CFS); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

// writeTaskLines prints waiting tasks, or the explicit marker when the
// queue is empty. An empty queue is a normal condition, not an error.
func writeTaskLines(w io.Writer, tasks []runq.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "     [no tasks queued]")
		return err
	}
	for _, t := range tasks {
		if _, err := fmt.Fprintf(w, "     [%3d] PID: %-6d TASK: %#x  COMMAND: \"%s\"\n",
			t.Prio, t.PID, t.Addr, EscapeComm(t.Comm)); err != nil {
			return err
		}
	}
	return nil
}
