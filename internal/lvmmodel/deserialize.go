package lvmmodel

import (
	"fmt"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
)

// OrderedMap is a name-keyed map that preserves insertion order, used for
// every domain map the metadata format treats as semantically ordered
// (physical_volumes, logical_volumes, and a LV's segments). A plain Go map
// would randomize iteration order and silently break segment reconstruction.
type OrderedMap[T any] struct {
	keys   []string
	values map[string]T
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap[T any]() *OrderedMap[T] {
	return &OrderedMap[T]{values: make(map[string]T)}
}

// Set inserts key with a value, returning lvmerr.Serde if key is already
// present — the keyed-map primitive treats repeated keys as an error.
func (m *OrderedMap[T]) Set(key string, v T) error {
	if _, exists := m.values[key]; exists {
		return fmt.Errorf("%w: duplicate key %q", lvmerr.Serde, key)
	}
	m.keys = append(m.keys, key)
	m.values[key] = v
	return nil
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap[T]) Get(key string) (T, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[T]) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *OrderedMap[T]) Len() int { return len(m.keys) }

// Values returns the values in key-insertion order.
func (m *OrderedMap[T]) Values() []T {
	out := make([]T, 0, len(m.keys))
	for _, k := range m.keys {
		v := m.values[k]
		out = append(out, v)
	}
	return out
}

// findChild returns the first direct child of el named name, or nil.
func findChild(el *Element, name string) *Element {
	for i := range el.Children {
		if el.Children[i].Name == name {
			return &el.Children[i]
		}
	}
	return nil
}

// requireSection returns the required child section named name.
func requireSection(el *Element, name string) (*Element, error) {
	c := findChild(el, name)
	if c == nil || !c.IsSection {
		return nil, fmt.Errorf("%w: missing required section %q", lvmerr.Serde, name)
	}
	return c, nil
}

// requireScalar returns the required scalar child named name.
func requireScalar(el *Element, name string) (Value, error) {
	c := findChild(el, name)
	if c == nil || c.IsSection {
		return Value{}, fmt.Errorf("%w: missing required field %q", lvmerr.Serde, name)
	}
	return c.Value, nil
}

func requireStr(el *Element, name string) (string, error) {
	v, err := requireScalar(el, name)
	if err != nil {
		return "", err
	}
	if v.Kind != KindStr {
		return "", fmt.Errorf("%w: field %q is not a string", lvmerr.Serde, name)
	}
	return v.Str, nil
}

func requireInt(el *Element, name string) (int64, error) {
	v, err := requireScalar(el, name)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindInt {
		return 0, fmt.Errorf("%w: field %q is not an integer", lvmerr.Serde, name)
	}
	return v.Int, nil
}

func optionalInt(el *Element, name string, def int64) (int64, error) {
	c := findChild(el, name)
	if c == nil {
		return def, nil
	}
	if c.IsSection || c.Value.Kind != KindInt {
		return 0, fmt.Errorf("%w: field %q is not an integer", lvmerr.Serde, name)
	}
	return c.Value.Int, nil
}

func optionalStrArray(el *Element, name string) ([]string, error) {
	c := findChild(el, name)
	if c == nil {
		return nil, nil
	}
	if c.IsSection || c.Value.Kind != KindArray {
		return nil, fmt.Errorf("%w: field %q is not an array", lvmerr.Serde, name)
	}
	out := make([]string, 0, len(c.Value.Array))
	for _, item := range c.Value.Array {
		if item.Kind != KindStr {
			return nil, fmt.Errorf("%w: field %q contains a non-string element", lvmerr.Serde, name)
		}
		out = append(out, item.Str)
	}
	return out, nil
}

// deserializeKeyedMap is the typed-map deserializer's key primitive: given
// a section whose direct children are themselves sections, it produces an
// ordered name -> T map by running decode over each child section in
// source order.
func deserializeKeyedMap[T any](section *Element, decode func(name string, child *Element) (T, error)) (*OrderedMap[T], error) {
	out := NewOrderedMap[T]()
	for i := range section.Children {
		child := &section.Children[i]
		if !child.IsSection {
			return nil, fmt.Errorf("%w: expected section %q inside keyed map %q", lvmerr.Serde, child.Name, section.Name)
		}
		v, err := decode(child.Name, child)
		if err != nil {
			return nil, err
		}
		if err := out.Set(child.Name, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}
