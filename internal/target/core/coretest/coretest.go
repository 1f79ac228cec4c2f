// Package coretest synthesizes scheduler memory snapshots for tests: a
// layout descriptor plus an in-memory image holding per-CPU run-queues,
// task structs, and the intrusive lists linking them. The shapes mirror a
// minimal kernel layout so the full accessor and walk pipeline is exercised
// against real bytes.
package coretest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	yaml "github.com/goccy/go-yaml"

	"krunq/internal/target/core"
)

// NumRTLevels is the RT priority array depth, matching MAX_RT_PRIO.
const NumRTLevels = 100

// Synthetic struct offsets. Arbitrary but internally consistent; every
// navigation in the engine goes through these via the layout.
const (
	base = uint64(0x1000000)

	offListNext = 0
	offListPrev = 8
	sizeList    = 16

	offRQClock    = 0x10
	offRQCurr     = 0x18
	offRQRT       = 0x40
	offRQCFS      = 0x700
	offRQCFSTasks = 0x780
	sizeRQ        = 0x800

	offActiveQueue = 0x10 // bitmap precedes the list-head array
	sizePrioArray  = offActiveQueue + NumRTLevels*sizeList

	offCFSTimeline = 0x8

	offTaskPID       = 0x10
	offTaskPrio      = 0x14
	offTaskComm      = 0x20
	offTaskSE        = 0x40
	offTaskRT        = 0x70
	offTaskSchedInfo = 0x90
	sizeTask         = 0x100

	offSEGroupNode    = 0x8
	offSILastArrival  = 0x8
	sizeRootTaskGroup = 0x40
)

// Builder assembles one synthetic snapshot.
type Builder struct {
	arena   []byte
	rqAddrs []uint64
	// per cpu: priority level -> run_list node addresses, FIFO order
	rtLevels []map[int][]uint64
	// per cpu: group_node addresses, list order
	cfsNodes  [][]uint64
	groupAddr uint64
}

// NewBuilder allocates run-queues for ncpus CPUs plus the root task group.
func NewBuilder(ncpus int) *Builder {
	b := &Builder{
		rtLevels: make([]map[int][]uint64, ncpus),
		cfsNodes: make([][]uint64, ncpus),
	}
	for cpu := 0; cpu < ncpus; cpu++ {
		b.rqAddrs = append(b.rqAddrs, b.alloc(sizeRQ))
		b.rtLevels[cpu] = make(map[int][]uint64)
	}
	b.groupAddr = b.alloc(sizeRootTaskGroup)
	return b
}

func (b *Builder) alloc(size uint64) uint64 {
	addr := base + uint64(len(b.arena))
	b.arena = append(b.arena, make([]byte, size)...)
	return addr
}

func (b *Builder) putU64(addr, v uint64) {
	binary.LittleEndian.PutUint64(b.arena[addr-base:], v)
}

func (b *Builder) putU32(addr uint64, v uint32) {
	binary.LittleEndian.PutUint32(b.arena[addr-base:], v)
}

// RQAddr returns the run-queue address for a CPU.
func (b *Builder) RQAddr(cpu int) uint64 { return b.rqAddrs[cpu] }

// GroupAddr returns the root task group address.
func (b *Builder) GroupAddr() uint64 { return b.groupAddr }

// SetClock writes a CPU's run-queue clock.
func (b *Builder) SetClock(cpu int, ns uint64) {
	b.putU64(b.rqAddrs[cpu]+offRQClock, ns)
}

// AddTask allocates a task_struct and returns its address.
func (b *Builder) AddTask(pid int32, prio int32, comm string, lastArrival uint64) uint64 {
	addr := b.alloc(sizeTask)
	b.putU32(addr+offTaskPID, uint32(pid))
	b.putU32(addr+offTaskPrio, uint32(prio))
	copy(b.arena[addr+offTaskComm-base:addr+offTaskComm-base+16], comm)
	b.putU64(addr+offTaskSchedInfo+offSILastArrival, lastArrival)
	return addr
}

// SetCurr marks a task as the CPU's current task.
func (b *Builder) SetCurr(cpu int, taskAddr uint64) {
	b.putU64(b.rqAddrs[cpu]+offRQCurr, taskAddr)
}

// QueueRT links a task into the CPU's RT priority array at the given level,
// FIFO within the level.
func (b *Builder) QueueRT(cpu, level int, taskAddr uint64) {
	b.rtLevels[cpu][level] = append(b.rtLevels[cpu][level], taskAddr+offTaskRT)
}

// QueueCFS links a task onto the CPU's all-tasks list. Linking the current
// task is allowed; the walkers must exclude it by identity.
func (b *Builder) QueueCFS(cpu int, taskAddr uint64) {
	b.cfsNodes[cpu] = append(b.cfsNodes[cpu], taskAddr+offTaskSE+offSEGroupNode)
}

// linkCircular wires head and nodes into a circular doubly linked list.
func (b *Builder) linkCircular(head uint64, nodes []uint64) {
	all := append([]uint64{head}, nodes...)
	for i, node := range all {
		next := all[(i+1)%len(all)]
		prev := all[(i+len(all)-1)%len(all)]
		b.putU64(node+offListNext, next)
		b.putU64(node+offListPrev, prev)
	}
}

// Build links every list and returns the layout plus the image bytes.
func (b *Builder) Build() (core.Layout, []byte) {
	for cpu, rq := range b.rqAddrs {
		queueBase := rq + offRQRT + offActiveQueue
		for level := 0; level < NumRTLevels; level++ {
			b.linkCircular(queueBase+uint64(level)*sizeList, b.rtLevels[cpu][level])
		}
		b.linkCircular(rq+offRQCFSTasks, b.cfsNodes[cpu])
	}

	online := make([]int, len(b.rqAddrs))
	percpu := make([]uint64, len(b.rqAddrs))
	for cpu, addr := range b.rqAddrs {
		online[cpu] = cpu
		percpu[cpu] = addr - b.rqAddrs[0]
	}

	layout := core.Layout{
		WordSize:      8,
		OnlineCPUs:    online,
		PerCPUOffsets: percpu,
		Symbols: map[string]core.Symbol{
			"runqueues":       {Addr: b.rqAddrs[0], Type: "rq", PerCPU: true},
			"root_task_group": {Addr: b.groupAddr, Type: "task_group"},
		},
		Types:    layoutTypes(),
		Segments: []core.Segment{{Addr: base, Off: 0, Size: uint64(len(b.arena))}},
	}
	return layout, b.arena
}

// Target builds the snapshot and opens it in memory.
func (b *Builder) Target() *core.Target {
	layout, arena := b.Build()
	return core.New(layout, bytes.NewReader(arena))
}

// Materialize writes the layout and image under dir so file-based code
// paths (core.Open, the CLI) can be tested end to end.
func (b *Builder) Materialize(dir string) (layoutPath, imagePath string, err error) {
	layout, arena := b.Build()
	data, err := yaml.Marshal(layout)
	if err != nil {
		return "", "", fmt.Errorf("marshal layout: %w", err)
	}
	layoutPath = filepath.Join(dir, "layout.yaml")
	imagePath = filepath.Join(dir, "image.bin")
	if err := os.WriteFile(layoutPath, data, 0o600); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(imagePath, arena, 0o600); err != nil {
		return "", "", err
	}
	return layoutPath, imagePath, nil
}

func layoutTypes() map[string]core.StructLayout {
	return map[string]core.StructLayout{
		"list_head": {
			Size: sizeList,
			Fields: map[string]core.FieldLayout{
				"next": {Offset: offListNext, Kind: "ptr"},
				"prev": {Offset: offListPrev, Kind: "ptr"},
			},
		},
		"rq": {
			Size: sizeRQ,
			Fields: map[string]core.FieldLayout{
				"clock":     {Offset: offRQClock, Kind: "u64"},
				"curr":      {Offset: offRQCurr, Kind: "ptr", Elem: "task_struct"},
				"rt":        {Offset: offRQRT, Kind: "struct", Elem: "rt_rq"},
				"cfs":       {Offset: offRQCFS, Kind: "struct", Elem: "cfs_rq"},
				"cfs_tasks": {Offset: offRQCFSTasks, Kind: "struct", Elem: "list_head"},
			},
		},
		"rt_rq": {
			Size: sizePrioArray,
			Fields: map[string]core.FieldLayout{
				"active": {Offset: 0, Kind: "struct", Elem: "rt_prio_array"},
			},
		},
		"rt_prio_array": {
			Size: sizePrioArray,
			Fields: map[string]core.FieldLayout{
				"queue": {Offset: offActiveQueue, Kind: "array", Elem: "list_head", Count: NumRTLevels},
			},
		},
		"cfs_rq": {
			Size: 0x40,
			Fields: map[string]core.FieldLayout{
				"tasks_timeline": {Offset: offCFSTimeline, Kind: "struct", Elem: "rb_root_cached"},
			},
		},
		"rb_root_cached": {Size: 0x10, Fields: map[string]core.FieldLayout{}},
		"task_struct": {
			Size: sizeTask,
			Fields: map[string]core.FieldLayout{
				"pid":        {Offset: offTaskPID, Kind: "s32"},
				"prio":       {Offset: offTaskPrio, Kind: "s32"},
				"comm":       {Offset: offTaskComm, Kind: "bytes", Size: 16},
				"se":         {Offset: offTaskSE, Kind: "struct", Elem: "sched_entity"},
				"rt":         {Offset: offTaskRT, Kind: "struct", Elem: "sched_rt_entity"},
				"sched_info": {Offset: offTaskSchedInfo, Kind: "struct", Elem: "sched_info"},
			},
		},
		"sched_entity": {
			Size: 0x30,
			Fields: map[string]core.FieldLayout{
				"group_node": {Offset: offSEGroupNode, Kind: "struct", Elem: "list_head"},
			},
		},
		"sched_rt_entity": {
			Size: 0x20,
			Fields: map[string]core.FieldLayout{
				"run_list": {Offset: 0, Kind: "struct", Elem: "list_head"},
			},
		},
		"sched_info": {
			Size: 0x18,
			Fields: map[string]core.FieldLayout{
				"last_arrival": {Offset: offSILastArrival, Kind: "u64"},
			},
		},
		"task_group": {Size: sizeRootTaskGroup, Fields: map[string]core.FieldLayout{}},
	}
}
