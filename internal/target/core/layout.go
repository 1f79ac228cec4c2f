package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Field kinds understood by the layout descriptor.
const (
	kindU8     = "u8"
	kindU16    = "u16"
	kindU32    = "u32"
	kindU64    = "u64"
	kindS8     = "s8"
	kindS16    = "s16"
	kindS32    = "s32"
	kindS64    = "s64"
	kindPtr    = "ptr"
	kindBytes  = "bytes"
	kindStruct = "struct"
	kindArray  = "array"
)

// Layout mirrors the YAML layout descriptor that accompanies a memory image.
// It carries everything the snapshot itself cannot: symbol addresses, per-CPU
// displacement table, struct field layouts, and the segment map locating
// target addresses inside the image file.
type Layout struct {
	WordSize      int                     `yaml:"word_size"`  // 4 or 8; default 8
	ByteOrder     string                  `yaml:"byte_order"` // "little" (default) or "big"
	OnlineCPUs    []int                   `yaml:"online_cpus"`
	PerCPUOffsets []uint64                `yaml:"percpu_offsets"`
	Symbols       map[string]Symbol       `yaml:"symbols"`
	Types         map[string]StructLayout `yaml:"types"`
	Segments      []Segment               `yaml:"segments"`
}

// Symbol is one named kernel variable.
type Symbol struct {
	Addr   uint64 `yaml:"addr"`
	Type   string `yaml:"type,omitempty"`
	PerCPU bool   `yaml:"percpu,omitempty"`
}

// StructLayout describes one struct type's size and fields.
type StructLayout struct {
	Size   uint64                 `yaml:"size"`
	Fields map[string]FieldLayout `yaml:"fields"`
}

// FieldLayout describes one field: its offset and shape.
type FieldLayout struct {
	Offset uint64 `yaml:"offset"`
	Kind   string `yaml:"kind"`
	Elem   string `yaml:"elem,omitempty"`   // struct name for struct/ptr/array kinds
	Size   uint64 `yaml:"size,omitempty"`   // byte length for bytes kind
	Count  int    `yaml:"count,omitempty"`  // element count for array kind
	Stride uint64 `yaml:"stride,omitempty"` // array element spacing; defaults to elem size
}

// Segment maps a run of target addresses onto a byte range of the image file.
type Segment struct {
	Addr uint64 `yaml:"addr"`
	Off  int64  `yaml:"off"`
	Size uint64 `yaml:"size"`
}

// LoadLayout reads and validates a YAML layout descriptor.
func LoadLayout(path string) (Layout, error) {
	var l Layout
	data, err := os.ReadFile(path)
	if err != nil {
		return l, fmt.Errorf("read layout %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := l.validate(); err != nil {
		return l, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

func (l *Layout) validate() error {
	switch l.WordSize {
	case 0:
		l.WordSize = 8
	case 4, 8:
	default:
		return fmt.Errorf("unsupported word_size %d", l.WordSize)
	}
	switch l.ByteOrder {
	case "", "little", "big":
	default:
		return fmt.Errorf("unsupported byte_order %q", l.ByteOrder)
	}
	for name, sym := range l.Symbols {
		if sym.PerCPU && len(l.PerCPUOffsets) == 0 {
			return fmt.Errorf("symbol %s is per-cpu but percpu_offsets is empty", name)
		}
	}
	for name, st := range l.Types {
		for fname, f := range st.Fields {
			if err := f.validate(); err != nil {
				return fmt.Errorf("type %s field %s: %w", name, fname, err)
			}
		}
	}
	return nil
}

func (f FieldLayout) validate() error {
	switch f.Kind {
	case kindU8, kindU16, kindU32, kindU64, kindS8, kindS16, kindS32, kindS64, kindPtr:
	case kindBytes:
		if f.Size == 0 {
			return errors.New("bytes field needs a size")
		}
	case kindStruct:
		if f.Elem == "" {
			return errors.New("struct field needs an elem type")
		}
	case kindArray:
		if f.Elem == "" || f.Count <= 0 {
			return errors.New("array field needs an elem type and a count")
		}
	default:
		return fmt.Errorf("unknown kind %q", f.Kind)
	}
	return nil
}

func (l *Layout) order() binary.ByteOrder {
	if l.ByteOrder == "big" {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
