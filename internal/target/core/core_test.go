package core

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"krunq/internal/target"
)

// pairTarget maps one struct with a u32 and a u64 field at address 0x1000.
func pairTarget(t *testing.T) *Target {
	t.Helper()
	arena := make([]byte, 0x100)
	binary.LittleEndian.PutUint32(arena[0:], 0xdeadbeef)
	binary.LittleEndian.PutUint64(arena[8:], 0x1122334455667788)
	layout := Layout{
		WordSize: 8,
		Symbols: map[string]Symbol{
			"pair0": {Addr: 0x1000, Type: "pair"},
			"other": {Addr: 0x1080, Type: "pair"},
			"edge":  {Addr: 0x10f4, Type: "pair"},
		},
		Types: map[string]StructLayout{
			"pair": {
				Size: 16,
				Fields: map[string]FieldLayout{
					"a": {Offset: 0, Kind: "u32"},
					"b": {Offset: 8, Kind: "u64"},
				},
			},
		},
		Segments: []Segment{{Addr: 0x1000, Off: 0, Size: 0x100}},
	}
	if err := layout.validate(); err != nil {
		t.Fatalf("layout validate: %v", err)
	}
	return New(layout, bytes.NewReader(arena))
}

func TestScalarReads(t *testing.T) {
	tgt := pairTarget(t)
	obj, err := tgt.Symbol("pair0")
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	a, err := obj.Field("a")
	if err != nil {
		t.Fatalf("Field a: %v", err)
	}
	if v, err := a.Uint(); err != nil || v != 0xdeadbeef {
		t.Fatalf("a = %#x, %v; want 0xdeadbeef", v, err)
	}
	b, err := obj.Field("b")
	if err != nil {
		t.Fatalf("Field b: %v", err)
	}
	if v, err := b.Uint(); err != nil || v != 0x1122334455667788 {
		t.Fatalf("b = %#x, %v; want 0x1122334455667788", v, err)
	}
}

func TestUnknownSymbol(t *testing.T) {
	tgt := pairTarget(t)
	if _, err := tgt.Symbol("nope"); !errors.Is(err, target.ErrNoSymbol) {
		t.Fatalf("expected ErrNoSymbol, got %v", err)
	}
}

func TestUnknownField(t *testing.T) {
	tgt := pairTarget(t)
	obj, err := tgt.Symbol("pair0")
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	if _, err := obj.Field("c"); !errors.Is(err, target.ErrNoField) {
		t.Fatalf("expected ErrNoField, got %v", err)
	}
}

func TestUnmappedRead(t *testing.T) {
	tgt := pairTarget(t)
	obj, err := tgt.Symbol("edge")
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	// edge+8..16 crosses the end of the only segment.
	b, err := obj.Field("b")
	if err != nil {
		t.Fatalf("Field b: %v", err)
	}
	if _, err := b.Uint(); !errors.Is(err, target.ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
}

func TestScalarKindMismatch(t *testing.T) {
	tgt := pairTarget(t)
	obj, err := tgt.Symbol("pair0")
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	a, err := obj.Field("a")
	if err != nil {
		t.Fatalf("Field a: %v", err)
	}
	if _, err := a.Int(); !errors.Is(err, target.ErrBadType) {
		t.Fatalf("expected ErrBadType for signed read of u32, got %v", err)
	}
	if _, err := a.Bytes(); !errors.Is(err, target.ErrBadType) {
		t.Fatalf("expected ErrBadType for byte read of u32, got %v", err)
	}
}

func TestOwnerArithmetic(t *testing.T) {
	layout := Layout{
		WordSize: 8,
		Symbols:  map[string]Symbol{"node0": {Addr: 0x2010, Type: "list_head"}},
		Types: map[string]StructLayout{
			"list_head": {Size: 16, Fields: map[string]FieldLayout{
				"next": {Offset: 0, Kind: "ptr"},
				"prev": {Offset: 8, Kind: "ptr"},
			}},
			"container": {Size: 0x40, Fields: map[string]FieldLayout{
				"inner": {Offset: 0x10, Kind: "struct", Elem: "list_head"},
			}},
		},
		Segments: []Segment{{Addr: 0x2000, Off: 0, Size: 0x100}},
	}
	tgt := New(layout, bytes.NewReader(make([]byte, 0x100)))

	node, err := tgt.Symbol("node0")
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	owner, err := node.Owner("container", "inner")
	if err != nil {
		t.Fatalf("Owner: %v", err)
	}
	if owner.Address() != 0x2000 {
		t.Fatalf("owner at %#x, want 0x2000", owner.Address())
	}
	if owner.TypeName() != "container" {
		t.Fatalf("owner type %q, want container", owner.TypeName())
	}
}

func TestListNullLink(t *testing.T) {
	// A head whose next pointer is zero never returns to the head.
	arena := make([]byte, 0x40)
	layout := Layout{
		WordSize: 8,
		Symbols:  map[string]Symbol{"head": {Addr: 0x3000, Type: "list_head"}},
		Types: map[string]StructLayout{
			"list_head": {Size: 16, Fields: map[string]FieldLayout{
				"next": {Offset: 0, Kind: "ptr"},
				"prev": {Offset: 8, Kind: "ptr"},
			}},
			"elem": {Size: 0x20, Fields: map[string]FieldLayout{
				"link": {Offset: 0, Kind: "struct", Elem: "list_head"},
			}},
		},
		Segments: []Segment{{Addr: 0x3000, Off: 0, Size: 0x40}},
	}
	tgt := New(layout, bytes.NewReader(arena))

	head, err := tgt.Symbol("head")
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	it := head.List("elem", "link")
	if it.Next() {
		t.Fatal("expected no elements from a null-linked head")
	}
	if !errors.Is(it.Err(), target.ErrBadList) {
		t.Fatalf("expected ErrBadList, got %v", it.Err())
	}
}

func TestSymbolAtFloor(t *testing.T) {
	tgt := pairTarget(t)

	name, addr, ok := tgt.SymbolAt(0x1004)
	if !ok || name != "pair0" || addr != 0x1000 {
		t.Fatalf("SymbolAt(0x1004) = %q, %#x, %t; want pair0, 0x1000, true", name, addr, ok)
	}
	name, addr, ok = tgt.SymbolAt(0x1080)
	if !ok || name != "other" || addr != 0x1080 {
		t.Fatalf("SymbolAt(0x1080) = %q, %#x, %t; want other, 0x1080, true", name, addr, ok)
	}
	if _, _, ok := tgt.SymbolAt(0xfff); ok {
		t.Fatal("SymbolAt below every symbol should miss")
	}
}

func TestLayoutValidation(t *testing.T) {
	bad := Layout{
		Types: map[string]StructLayout{
			"x": {Fields: map[string]FieldLayout{
				"f": {Offset: 0, Kind: "float"},
			}},
		},
	}
	if err := bad.validate(); err == nil {
		t.Fatal("expected error for unknown field kind")
	}

	bad = Layout{
		Types: map[string]StructLayout{
			"x": {Fields: map[string]FieldLayout{
				"f": {Offset: 0, Kind: "bytes"},
			}},
		},
	}
	if err := bad.validate(); err == nil {
		t.Fatal("expected error for bytes field without size")
	}

	bad = Layout{WordSize: 3}
	if err := bad.validate(); err == nil {
		t.Fatal("expected error for word_size 3")
	}

	bad = Layout{
		Symbols: map[string]Symbol{"v": {Addr: 1, PerCPU: true}},
	}
	if err := bad.validate(); err == nil {
		t.Fatal("expected error for per-cpu symbol without offsets")
	}
}

func TestPerCPUResolution(t *testing.T) {
	layout := Layout{
		WordSize:      8,
		PerCPUOffsets: []uint64{0, 0x40},
		Symbols: map[string]Symbol{
			"counters": {Addr: 0x4000, Type: "pair", PerCPU: true},
			"global":   {Addr: 0x4080, Type: "pair"},
		},
		Types: map[string]StructLayout{
			"pair": {Size: 16, Fields: map[string]FieldLayout{
				"a": {Offset: 0, Kind: "u32"},
			}},
		},
		Segments: []Segment{{Addr: 0x4000, Off: 0, Size: 0x100}},
	}
	tgt := New(layout, bytes.NewReader(make([]byte, 0x100)))

	obj, err := tgt.PerCPU("counters", 1)
	if err != nil {
		t.Fatalf("PerCPU: %v", err)
	}
	if obj.Address() != 0x4040 {
		t.Fatalf("cpu 1 instance at %#x, want 0x4040", obj.Address())
	}

	if _, err := tgt.PerCPU("counters", 2); !errors.Is(err, target.ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped for cpu without offset, got %v", err)
	}
	if _, err := tgt.PerCPU("global", 0); !errors.Is(err, target.ErrBadType) {
		t.Fatalf("expected ErrBadType for non-per-cpu symbol, got %v", err)
	}
}
