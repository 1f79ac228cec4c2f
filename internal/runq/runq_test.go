package runq

import (
	"errors"
	"reflect"
	"testing"

	"krunq/internal/target"
	"krunq/internal/target/core/coretest"
)

// twoCPUSnapshot builds a snapshot with a current task, RT waiters at two
// priority levels, and CFS waiters on each of two CPUs. The current task of
// cpu 0 is also linked into both waiting structures to exercise exclusion.
func twoCPUSnapshot(t *testing.T) (tgt target.Target, b *coretest.Builder, curr0 uint64) {
	t.Helper()
	b = coretest.NewBuilder(2)

	b.SetClock(0, 10_000_000_000)
	b.SetClock(1, 8_000_000_000)

	curr0 = b.AddTask(100, 120, "bash", 9_000_000_000)
	b.SetCurr(0, curr0)
	b.QueueRT(0, 5, curr0)
	b.QueueCFS(0, curr0)

	// FIFO within one level, ascending across levels.
	rtA := b.AddTask(201, 7, "irq/9-acpi", 9_500_000_000)
	rtB := b.AddTask(202, 7, "watchdogd", 9_600_000_000)
	rtC := b.AddTask(203, 2, "migration/0", 9_700_000_000)
	b.QueueRT(0, 7, rtA)
	b.QueueRT(0, 7, rtB)
	b.QueueRT(0, 2, rtC)

	cfsA := b.AddTask(301, 120, "kworker/0:1", 9_100_000_000)
	cfsB := b.AddTask(302, 130, "sshd", 9_200_000_000)
	b.QueueCFS(0, cfsA)
	b.QueueCFS(0, cfsB)

	curr1 := b.AddTask(0, 120, "swapper/1", 7_000_000_000)
	b.SetCurr(1, curr1)

	return b.Target(), b, curr0
}

func TestRTTasksOrderAndExclusion(t *testing.T) {
	tgt, _, curr0 := twoCPUSnapshot(t)

	rq, err := LocateRQ(tgt, 0)
	if err != nil {
		t.Fatalf("LocateRQ: %v", err)
	}
	tasks, err := RTTasks(rq).drain()
	if err != nil {
		t.Fatalf("RT walk: %v", err)
	}

	var pids []int64
	for _, task := range tasks {
		if task.Addr == curr0 {
			t.Fatal("current task leaked into the RT sequence")
		}
		pids = append(pids, task.PID)
	}
	// Level 2 before level 7; FIFO within level 7. The current task sits
	// at level 5 and must be skipped without leaving a hole.
	if !reflect.DeepEqual(pids, []int64{203, 201, 202}) {
		t.Fatalf("RT pids = %v, want [203 201 202]", pids)
	}
}

func TestCFSTasksExcludeCurrentByAddress(t *testing.T) {
	tgt, _, curr0 := twoCPUSnapshot(t)

	rq, err := LocateRQ(tgt, 0)
	if err != nil {
		t.Fatalf("LocateRQ: %v", err)
	}
	tasks, err := CFSTasks(rq).drain()
	if err != nil {
		t.Fatalf("CFS walk: %v", err)
	}

	var pids []int64
	for _, task := range tasks {
		if task.Addr == curr0 {
			t.Fatal("current task leaked into the CFS sequence")
		}
		pids = append(pids, task.PID)
	}
	if !reflect.DeepEqual(pids, []int64{301, 302}) {
		t.Fatalf("CFS pids = %v, want [301 302]", pids)
	}
}

func TestSnapshotFields(t *testing.T) {
	tgt, b, curr0 := twoCPUSnapshot(t)

	rep, err := Snapshot(tgt, 0, false)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if rep.CPU != 0 || rep.RQAddr != b.RQAddr(0) {
		t.Fatalf("rq addr %#x, want %#x", rep.RQAddr, b.RQAddr(0))
	}
	if rep.Clock != 10_000_000_000 {
		t.Fatalf("clock %d, want 10000000000", rep.Clock)
	}
	if rep.Curr.Addr != curr0 || rep.Curr.PID != 100 || rep.Curr.Prio != 120 {
		t.Fatalf("unexpected current task %+v", rep.Curr)
	}
	if string(rep.Curr.Comm) != "bash" {
		t.Fatalf("comm %q, want bash", rep.Curr.Comm)
	}
	if rep.Curr.LastArrival != 9_000_000_000 || rep.Curr.RQClock != rep.Clock {
		t.Fatalf("timing fields %+v", rep.Curr)
	}
	if got := rep.Curr.Runtime(); got != 1_000_000_000 {
		t.Fatalf("runtime %d, want 1e9", got)
	}
	if rep.RTArrayAddr == 0 || rep.CFSRootAddr == 0 {
		t.Fatalf("display addresses missing: %+v", rep)
	}
	if len(rep.RT) != 3 || len(rep.CFS) != 2 {
		t.Fatalf("walk lengths rt=%d cfs=%d", len(rep.RT), len(rep.CFS))
	}
}

func TestSnapshotEmptyQueues(t *testing.T) {
	tgt, _, _ := twoCPUSnapshot(t)

	rep, err := Snapshot(tgt, 1, false)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(rep.RT) != 0 || len(rep.CFS) != 0 {
		t.Fatalf("expected empty queues, got rt=%d cfs=%d", len(rep.RT), len(rep.CFS))
	}
}

func TestSnapshotGroupMode(t *testing.T) {
	tgt, b, _ := twoCPUSnapshot(t)

	rep, err := Snapshot(tgt, 0, true)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !rep.Grouped || rep.GroupAddr != b.GroupAddr() {
		t.Fatalf("group addr %#x, want %#x", rep.GroupAddr, b.GroupAddr())
	}
	if rep.RT != nil || rep.CFS != nil {
		t.Fatal("group mode must not walk waiting tasks")
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	tgt, _, _ := twoCPUSnapshot(t)

	first, err := Snapshot(tgt, 0, false)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	second, err := Snapshot(tgt, 0, false)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated reads of a static snapshot differ")
	}
}

func TestCollectClocks(t *testing.T) {
	tgt, _, _ := twoCPUSnapshot(t)

	clocks, err := CollectClocks(tgt, []int{0, 1})
	if err != nil {
		t.Fatalf("CollectClocks: %v", err)
	}
	want := map[int]uint64{0: 10_000_000_000, 1: 8_000_000_000}
	if !reflect.DeepEqual(clocks, want) {
		t.Fatalf("clocks = %v, want %v", clocks, want)
	}
}

func TestCollectClocksFailsWhole(t *testing.T) {
	tgt, _, _ := twoCPUSnapshot(t)

	clocks, err := CollectClocks(tgt, []int{0, 7})
	if !errors.Is(err, target.ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped for cpu 7, got %v", err)
	}
	if clocks != nil {
		t.Fatal("no clocks may be returned on a partial failure")
	}
}

func TestLocateRQFailurePropagates(t *testing.T) {
	tgt, _, _ := twoCPUSnapshot(t)

	if _, err := Snapshot(tgt, 9, false); !errors.Is(err, target.ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
}
