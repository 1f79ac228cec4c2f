package runq

import (
	"bytes"

	"krunq/internal/target"
)

// Task is a read-only snapshot of one task's identity and timing fields.
// Comm holds the raw command-name bytes exactly as read, cut at the first
// NUL; it may contain non-printable bytes and must be escaped before any
// display use. Addr is the task_struct address and is the only valid
// identity key; value fields can collide between distinct tasks.
type Task struct {
	PID         int64
	Addr        uint64
	Comm        []byte
	Prio        int64
	LastArrival uint64 // ns, last enqueue timestamp on the scheduler clock
	RQClock     uint64 // owning run-queue's clock at read time
}

// ReadTask extracts a task snapshot from a task_struct handle. Pure read:
// no escaping, no mutation of the source.
func ReadTask(obj target.Object, rqClock uint64) (Task, error) {
	v := taskView{obj: obj}
	t := Task{Addr: obj.Address(), RQClock: rqClock}

	var err error
	if t.PID, err = v.pid(); err != nil {
		return Task{}, err
	}
	if t.Prio, err = v.prio(); err != nil {
		return Task{}, err
	}
	if t.LastArrival, err = v.lastArrival(); err != nil {
		return Task{}, err
	}
	comm, err := v.comm()
	if err != nil {
		return Task{}, err
	}
	if i := bytes.IndexByte(comm, 0); i >= 0 {
		comm = comm[:i]
	}
	t.Comm = comm
	return t, nil
}

// Runtime is the elapsed run time: run-queue clock minus the task's last
// arrival. The two values come from unsynchronized reads, so a negative
// difference is possible on a live target and clamps to zero.
func (t Task) Runtime() uint64 {
	if t.RQClock < t.LastArrival {
		return 0
	}
	return t.RQClock - t.LastArrival
}
