package runq

import (
	"fmt"

	"krunq/internal/target"
)

// CPUReport is everything the reporters need about one CPU's run-queue at
// read time.
type CPUReport struct {
	CPU    int
	RQAddr uint64
	Clock  uint64
	Curr   Task

	// Waiting tasks; nil in group mode.
	RT  []Task
	CFS []Task

	// Display addresses of the waiting-task containers.
	RTArrayAddr uint64
	CFSRootAddr uint64

	// Group mode: the global root scheduling group's address. The group
	// view deliberately shows only the current task and does not recurse
	// into nested groups.
	Grouped   bool
	GroupAddr uint64
}

// LocateRQ resolves one CPU's run-queue through the target's per-CPU
// variable resolution. A failed read aborts the whole run; per-CPU
// comparisons cannot be partially correct.
func LocateRQ(t target.Target, cpu int) (RQ, error) {
	obj, err := t.PerCPU(symRunqueues, cpu)
	if err != nil {
		return RQ{}, fmt.Errorf("locate runqueue for cpu %d: %w", cpu, err)
	}
	return AsRQ(obj), nil
}

// Snapshot reads one CPU's full run-queue state. With group set, the
// waiting-task walks are skipped and the root task group address is
// resolved instead.
func Snapshot(t target.Target, cpu int, group bool) (*CPUReport, error) {
	rq, err := LocateRQ(t, cpu)
	if err != nil {
		return nil, err
	}

	rep := &CPUReport{CPU: cpu, RQAddr: rq.Address()}
	if rep.Clock, err = rq.Clock(); err != nil {
		return nil, fmt.Errorf("cpu %d: read rq clock: %w", cpu, err)
	}
	curr, err := rq.Curr()
	if err != nil {
		return nil, fmt.Errorf("cpu %d: resolve current task: %w", cpu, err)
	}
	if rep.Curr, err = ReadTask(curr, rep.Clock); err != nil {
		return nil, fmt.Errorf("cpu %d: read current task: %w", cpu, err)
	}

	if group {
		sym, err := t.Symbol(symRootTaskGroup)
		if err != nil {
			return nil, err
		}
		rep.Grouped = true
		rep.GroupAddr = sym.Address()
		return rep, nil
	}

	rtArr, err := rq.RTPrioArray()
	if err != nil {
		return nil, fmt.Errorf("cpu %d: %w", cpu, err)
	}
	rep.RTArrayAddr = rtArr.Address()
	if rep.RT, err = RTTasks(rq).drain(); err != nil {
		return nil, fmt.Errorf("cpu %d: walk rt queue: %w", cpu, err)
	}

	if rep.CFSRootAddr, err = rq.CFSRootAddr(); err != nil {
		return nil, fmt.Errorf("cpu %d: %w", cpu, err)
	}
	if rep.CFS, err = CFSTasks(rq).drain(); err != nil {
		return nil, fmt.Errorf("cpu %d: walk cfs list: %w", cpu, err)
	}
	return rep, nil
}

// CollectClocks reads every requested CPU's run-queue clock. It is the
// collection phase of the lag protocol: it either returns a clock for every
// CPU in the set or an error, never a subset.
func CollectClocks(t target.Target, cpus []int) (map[int]uint64, error) {
	clocks := make(map[int]uint64, len(cpus))
	for _, cpu := range cpus {
		rq, err := LocateRQ(t, cpu)
		if err != nil {
			return nil, err
		}
		clock, err := rq.Clock()
		if err != nil {
			return nil, fmt.Errorf("cpu %d: read rq clock: %w", cpu, err)
		}
		clocks[cpu] = clock
	}
	return clocks, nil
}
