package core

import (
	"fmt"
	"strings"

	"krunq/internal/target"
)

// object is a typed handle into the snapshot. Navigation is pure address
// arithmetic against the layout; target memory is only touched by the
// scalar accessors.
type object struct {
	t    *Target
	kind string // one of the layout field kinds
	elem string // struct name for struct/ptr/array kinds
	addr uint64
	size uint64 // bytes kind
	// array shape
	count  int
	stride uint64
}

func (o *object) TypeName() string {
	switch o.kind {
	case kindStruct:
		return o.elem
	case kindPtr:
		if o.elem != "" {
			return o.elem + " *"
		}
		return kindPtr
	case kindArray:
		return fmt.Sprintf("%s[%d]", o.elem, o.count)
	default:
		return o.kind
	}
}

func (o *object) Address() uint64 { return o.addr }

// Field navigates a dotted path through embedded structs.
func (o *object) Field(name string) (target.Object, error) {
	cur := o
	for _, part := range strings.Split(name, ".") {
		if cur.kind != kindStruct {
			return nil, fmt.Errorf("%w: field %q of non-struct %s", target.ErrBadType, part, cur.TypeName())
		}
		st, err := cur.t.structLayout(cur.elem)
		if err != nil {
			return nil, err
		}
		f, ok := st.Fields[part]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", target.ErrNoField, cur.elem, part)
		}
		cur = cur.t.fieldObject(f, cur.addr+f.Offset)
	}
	return cur, nil
}

func (t *Target) fieldObject(f FieldLayout, addr uint64) *object {
	o := &object{t: t, kind: f.Kind, elem: f.Elem, addr: addr, size: f.Size}
	if f.Kind == kindArray {
		o.count = f.Count
		o.stride = f.Stride
		if o.stride == 0 {
			if st, ok := t.layout.Types[f.Elem]; ok {
				o.stride = st.Size
			}
		}
	}
	return o
}

func (o *object) Index(i int) (target.Object, error) {
	if o.kind != kindArray {
		return nil, fmt.Errorf("%w: index into %s", target.ErrBadType, o.TypeName())
	}
	if i < 0 || i >= o.count {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", target.ErrUnmapped, i, o.count)
	}
	if o.stride == 0 {
		return nil, fmt.Errorf("%w: array of %s has no stride", target.ErrNoType, o.elem)
	}
	return o.t.structObject(o.elem, o.addr+uint64(i)*o.stride), nil
}

func (o *object) Len() (int, error) {
	if o.kind != kindArray {
		return 0, fmt.Errorf("%w: len of %s", target.ErrBadType, o.TypeName())
	}
	return o.count, nil
}

func (o *object) Deref() (target.Object, error) {
	if o.kind != kindPtr || o.elem == "" {
		return nil, fmt.Errorf("%w: deref of %s", target.ErrBadType, o.TypeName())
	}
	val, err := o.t.readWord(o.addr)
	if err != nil {
		return nil, err
	}
	return o.t.structObject(o.elem, val), nil
}

func (o *object) Int() (int64, error) {
	switch o.kind {
	case kindS8, kindS16, kindS32, kindS64:
	default:
		return 0, fmt.Errorf("%w: signed read of %s", target.ErrBadType, o.TypeName())
	}
	raw, err := o.t.readScalar(o.addr, scalarWidth(o.kind, o.t.layout.WordSize))
	if err != nil {
		return 0, err
	}
	switch o.kind {
	case kindS8:
		return int64(int8(raw)), nil
	case kindS16:
		return int64(int16(raw)), nil
	case kindS32:
		return int64(int32(raw)), nil
	default:
		return int64(raw), nil
	}
}

func (o *object) Uint() (uint64, error) {
	switch o.kind {
	case kindU8, kindU16, kindU32, kindU64, kindPtr:
	default:
		return 0, fmt.Errorf("%w: unsigned read of %s", target.ErrBadType, o.TypeName())
	}
	return o.t.readScalar(o.addr, scalarWidth(o.kind, o.t.layout.WordSize))
}

func (o *object) Bytes() ([]byte, error) {
	if o.kind != kindBytes {
		return nil, fmt.Errorf("%w: byte read of %s", target.ErrBadType, o.TypeName())
	}
	buf := make([]byte, o.size)
	if err := o.t.mem.read(o.addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (o *object) Owner(owningType, linkField string) (target.Object, error) {
	off, err := o.t.offsetOf(owningType, linkField)
	if err != nil {
		return nil, err
	}
	return o.t.structObject(owningType, o.addr-off), nil
}

// offsetOf resolves a dotted field path to its cumulative offset within a
// struct type.
func (t *Target) offsetOf(typeName, path string) (uint64, error) {
	var off uint64
	cur := typeName
	for _, part := range strings.Split(path, ".") {
		st, err := t.structLayout(cur)
		if err != nil {
			return 0, err
		}
		f, ok := st.Fields[part]
		if !ok {
			return 0, fmt.Errorf("%w: %s.%s", target.ErrNoField, cur, part)
		}
		off += f.Offset
		cur = f.Elem
	}
	return off, nil
}

func scalarWidth(kind string, wordSize int) int {
	switch kind {
	case kindU8, kindS8:
		return 1
	case kindU16, kindS16:
		return 2
	case kindU32, kindS32:
		return 4
	case kindU64, kindS64:
		return 8
	default: // ptr
		return wordSize
	}
}

func (t *Target) readScalar(addr uint64, width int) (uint64, error) {
	buf := make([]byte, width)
	if err := t.mem.read(addr, buf); err != nil {
		return 0, err
	}
	order := t.layout.order()
	switch width {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(order.Uint16(buf)), nil
	case 4:
		return uint64(order.Uint32(buf)), nil
	default:
		return order.Uint64(buf), nil
	}
}

func (t *Target) readWord(addr uint64) (uint64, error) {
	return t.readScalar(addr, t.layout.WordSize)
}
