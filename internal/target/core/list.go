package core

import (
	"fmt"

	"krunq/internal/target"
)

// maxListLen bounds intrusive list walks. A snapshot taken without
// synchronization can capture a torn list; the bound turns an endless walk
// into ErrBadList instead of a hang.
const maxListLen = 1 << 16

// List walks the intrusive list anchored at o. Each node address is
// back-resolved to its containing elemType through the linkField offset.
func (o *object) List(elemType, linkField string) target.ListIter {
	it := &listIter{t: o.t, head: o.addr}

	nextOff, err := o.t.offsetOf(typeNameOrListHead(o), "next")
	if err != nil {
		it.err = err
		return it
	}
	linkOff, err := o.t.offsetOf(elemType, linkField)
	if err != nil {
		it.err = err
		return it
	}
	it.elemType = elemType
	it.nextOff = nextOff
	it.linkOff = linkOff
	it.node = o.addr
	return it
}

// typeNameOrListHead names the list head's struct type so the "next" offset
// can be resolved from the layout rather than assumed to be zero.
func typeNameOrListHead(o *object) string {
	if o.kind == kindStruct {
		return o.elem
	}
	return "list_head"
}

type listIter struct {
	t        *Target
	elemType string
	head     uint64
	node     uint64
	nextOff  uint64
	linkOff  uint64
	steps    int
	cur      target.Object
	err      error
	done     bool
}

func (it *listIter) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	next, err := it.t.readWord(it.node + it.nextOff)
	if err != nil {
		it.err = err
		return false
	}
	if next == it.head {
		it.done = true
		return false
	}
	if next == 0 {
		it.err = fmt.Errorf("%w: null link after %#x", target.ErrBadList, it.node)
		return false
	}
	if it.steps++; it.steps > maxListLen {
		it.err = fmt.Errorf("%w: head %#x", target.ErrBadList, it.head)
		return false
	}
	it.node = next
	it.cur = it.t.structObject(it.elemType, next-it.linkOff)
	return true
}

func (it *listIter) Object() target.Object { return it.cur }

func (it *listIter) Err() error { return it.err }
