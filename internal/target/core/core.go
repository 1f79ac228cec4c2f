// Package core implements the target accessor contract on top of a recorded
// kernel memory snapshot: a raw image file plus a YAML layout descriptor.
// The descriptor supplies what a debugger would pull from DWARF and the
// symbol table; the image supplies the bytes. Everything is read-only.
package core

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"krunq/internal/target"
)

// Target is a snapshot-backed implementation of target.Target.
type Target struct {
	layout Layout
	mem    *image
	// addr -> symbol name, for nearest-preceding-symbol queries.
	symsByAddr *redblacktree.Tree
	closer     io.Closer
}

// Open loads a layout descriptor and maps the named image file.
func Open(layoutPath, imagePath string) (*Target, error) {
	layout, err := LoadLayout(layoutPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", imagePath, err)
	}
	t := New(layout, f)
	t.closer = f
	return t, nil
}

// New builds a Target over an arbitrary byte source. Used by Open and by
// tests that assemble images in memory.
func New(layout Layout, r io.ReaderAt) *Target {
	syms := redblacktree.NewWith(utils.UInt64Comparator)
	for name, sym := range layout.Symbols {
		syms.Put(sym.Addr, name)
	}
	return &Target{
		layout:     layout,
		mem:        &image{r: r, segs: layout.Segments},
		symsByAddr: syms,
	}
}

// Close releases the underlying image file, if any.
func (t *Target) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

// OnlineCPUs returns the snapshot's online CPU set in ascending order.
func (t *Target) OnlineCPUs() ([]int, error) {
	cpus := append([]int(nil), t.layout.OnlineCPUs...)
	sort.Ints(cpus)
	return cpus, nil
}

// Symbol resolves a named global variable.
func (t *Target) Symbol(name string) (target.Object, error) {
	sym, ok := t.layout.Symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", target.ErrNoSymbol, name)
	}
	return t.structObject(sym.Type, sym.Addr), nil
}

// PerCPU resolves a per-CPU variable instance by displacing the symbol
// address with the CPU's per-CPU offset.
func (t *Target) PerCPU(name string, cpu int) (target.Object, error) {
	sym, ok := t.layout.Symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", target.ErrNoSymbol, name)
	}
	if !sym.PerCPU {
		return nil, fmt.Errorf("%w: %s is not per-cpu", target.ErrBadType, name)
	}
	if cpu < 0 || cpu >= len(t.layout.PerCPUOffsets) {
		return nil, fmt.Errorf("%w: no per-cpu offset for cpu %d", target.ErrUnmapped, cpu)
	}
	return t.structObject(sym.Type, sym.Addr+t.layout.PerCPUOffsets[cpu]), nil
}

// SymbolAt returns the name and base address of the symbol at or nearest
// below addr, if any.
func (t *Target) SymbolAt(addr uint64) (name string, base uint64, ok bool) {
	node, found := t.symsByAddr.Floor(addr)
	if !found {
		return "", 0, false
	}
	return node.Value.(string), node.Key.(uint64), true
}

func (t *Target) structObject(typeName string, addr uint64) *object {
	return &object{t: t, kind: kindStruct, elem: typeName, addr: addr}
}

// structLayout looks up a named struct layout.
func (t *Target) structLayout(name string) (StructLayout, error) {
	st, ok := t.layout.Types[name]
	if !ok {
		return StructLayout{}, fmt.Errorf("%w: %s", target.ErrNoType, name)
	}
	return st, nil
}
