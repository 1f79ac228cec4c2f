package runq

import "krunq/internal/target"

// TaskIter lazily yields waiting-task snapshots from one run-queue. The
// sequence is finite and non-restartable. The run-queue's current task is
// excluded by address identity, even when it is still linked into the
// underlying list structures.
type TaskIter struct {
	clock    uint64
	currAddr uint64

	// RT state; queue is nil for CFS iteration.
	queue   target.Object
	nlevels int
	level   int

	list target.ListIter

	elemIsEntity bool // RT links sched_rt_entity nodes, CFS links tasks directly

	task Task
	err  error
	done bool
}

// RTTasks iterates the RT priority array in array-index order, most-favored
// priority first, FIFO within one level. Each list node is a
// sched_rt_entity resolved back to its owning task_struct.
func RTTasks(rq RQ) *TaskIter {
	it := &TaskIter{elemIsEntity: true}
	it.init(rq)
	if it.err != nil {
		return it
	}
	queue, err := rq.RTPrioArray()
	if err == nil {
		queue, err = queue.Field("queue")
	}
	if err != nil {
		it.err = err
		return it
	}
	n, err := queue.Len()
	if err != nil {
		it.err = err
		return it
	}
	it.queue = queue
	it.nlevels = n
	return it
}

// CFSTasks iterates the auxiliary all-tasks list. List order only: the
// sequence must not be read as scheduling order.
func CFSTasks(rq RQ) *TaskIter {
	it := &TaskIter{}
	it.init(rq)
	if it.err != nil {
		return it
	}
	head, err := rq.CFSTasksHead()
	if err != nil {
		it.err = err
		return it
	}
	it.list = head.List(typeTask, "se.group_node")
	return it
}

// init reads the exclusion key and clock shared by both walks.
func (it *TaskIter) init(rq RQ) {
	curr, err := rq.Curr()
	if err != nil {
		it.err = err
		return
	}
	it.currAddr = curr.Address()
	it.clock, it.err = rq.Clock()
}

// Next advances to the next waiting task. It returns false at the end of
// the sequence or on error; check Err afterwards.
func (it *TaskIter) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	for {
		if it.list == nil {
			if it.queue == nil || it.level >= it.nlevels {
				it.done = true
				return false
			}
			head, err := it.queue.Index(it.level)
			if err != nil {
				it.err = err
				return false
			}
			it.level++
			it.list = head.List(typeRTEntity, "run_list")
		}
		for it.list.Next() {
			obj := it.list.Object()
			if it.elemIsEntity {
				owner, err := obj.Owner(typeTask, "rt")
				if err != nil {
					it.err = err
					return false
				}
				obj = owner
			}
			if obj.Address() == it.currAddr {
				continue
			}
			task, err := ReadTask(obj, it.clock)
			if err != nil {
				it.err = err
				return false
			}
			it.task = task
			return true
		}
		if err := it.list.Err(); err != nil {
			it.err = err
			return false
		}
		it.list = nil
		if it.queue == nil {
			it.done = true
			return false
		}
	}
}

// Task returns the snapshot produced by the last successful Next.
func (it *TaskIter) Task() Task { return it.task }

// Err reports the first failure encountered during the walk.
func (it *TaskIter) Err() error { return it.err }

// drain collects the remaining sequence into a slice.
func (it *TaskIter) drain() ([]Task, error) {
	var tasks []Task
	for it.Next() {
		tasks = append(tasks, it.Task())
	}
	return tasks, it.Err()
}
