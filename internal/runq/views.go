// Package runq reconstructs per-CPU scheduler run-queue state from a typed
// memory target: which task runs on each CPU, which tasks wait in the RT
// priority array and on the CFS all-tasks list, and the derived clock
// metrics. All reads are unsynchronized with the source scheduler, so the
// package tolerates stale-but-structurally-valid data and never assumes
// atomicity across reads.
package runq

import (
	"krunq/internal/target"
)

// Kernel variable and type names the engine navigates by.
const (
	symRunqueues     = "runqueues"
	symRootTaskGroup = "root_task_group"

	typeTask     = "task_struct"
	typeRTEntity = "sched_rt_entity"
)

// RQ is a typed view of one CPU's struct rq, exposing only the fields the
// engine needs. Name resolution still happens dynamically in the target
// underneath; this surface keeps the engine statically shaped.
type RQ struct {
	obj target.Object
}

// AsRQ wraps a struct rq handle.
func AsRQ(obj target.Object) RQ { return RQ{obj: obj} }

// Object returns the underlying handle.
func (r RQ) Object() target.Object { return r.obj }

// Address is the run-queue's structural address.
func (r RQ) Address() uint64 { return r.obj.Address() }

// Clock reads the run-queue's monotonic clock in nanoseconds.
func (r RQ) Clock() (uint64, error) {
	f, err := r.obj.Field("clock")
	if err != nil {
		return 0, err
	}
	return f.Uint()
}

// Curr resolves the currently running task. Always present in practice;
// the idle task counts as current.
func (r RQ) Curr() (target.Object, error) {
	f, err := r.obj.Field("curr")
	if err != nil {
		return nil, err
	}
	return f.Deref()
}

// RTPrioArray returns the RT scheduling class's active priority array.
func (r RQ) RTPrioArray() (target.Object, error) {
	return r.obj.Field("rt.active")
}

// CFSTasksHead returns the head of the auxiliary list linking every task on
// the CFS class, current included. The list exists for enumeration only and
// does not reflect the scheduling tree's order.
func (r RQ) CFSTasksHead() (target.Object, error) {
	return r.obj.Field("cfs_tasks")
}

// CFSRootAddr is the address of the CFS ordering tree root, for display.
func (r RQ) CFSRootAddr() (uint64, error) {
	f, err := r.obj.Field("cfs.tasks_timeline")
	if err != nil {
		return 0, err
	}
	return f.Address(), nil
}

// taskView is a typed view of struct task_struct.
type taskView struct {
	obj target.Object
}

func (t taskView) pid() (int64, error) {
	f, err := t.obj.Field("pid")
	if err != nil {
		return 0, err
	}
	return f.Int()
}

func (t taskView) prio() (int64, error) {
	f, err := t.obj.Field("prio")
	if err != nil {
		return 0, err
	}
	return f.Int()
}

func (t taskView) comm() ([]byte, error) {
	f, err := t.obj.Field("comm")
	if err != nil {
		return nil, err
	}
	return f.Bytes()
}

func (t taskView) lastArrival() (uint64, error) {
	f, err := t.obj.Field("sched_info.last_arrival")
	if err != nil {
		return 0, err
	}
	return f.Uint()
}
