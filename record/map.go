package record

import (
	"reflect"

	"golang.org/x/exp/maps"
)

// Map is a schemaless Record backed by an attribute map.
type Map struct {
	id        string
	attrs     map[string]any
	baseline  map[string]any
	persisted bool
}

// NewMap returns an unpersisted record with the given id and initial
// attributes. The map is copied.
func NewMap(id string, attrs map[string]any) *Map {
	return &Map{id: id, attrs: maps.Clone(ensure(attrs))}
}

// AdoptMap returns a persisted record whose save point is the given
// attributes. The map is copied.
func AdoptMap(id string, attrs map[string]any) *Map {
	return &Map{
		id:        id,
		attrs:     maps.Clone(ensure(attrs)),
		baseline:  maps.Clone(ensure(attrs)),
		persisted: true,
	}
}

func ensure(attrs map[string]any) map[string]any {
	if attrs == nil {
		return map[string]any{}
	}
	return attrs
}

// ID implements Record
func (m *Map) ID() string {
	return m.id
}

// Persisted implements Record
func (m *Map) Persisted() bool {
	return m.persisted
}

// Attributes implements Record
func (m *Map) Attributes() map[string]any {
	return maps.Clone(m.attrs)
}

// Changes implements Record
func (m *Map) Changes() map[string]Change {
	changes := map[string]Change{}
	for name, after := range m.attrs {
		before, had := m.baseline[name]
		if had && reflect.DeepEqual(before, after) {
			continue
		}
		changes[name] = Change{Before: before, After: after}
	}
	for name, before := range m.baseline {
		if _, still := m.attrs[name]; !still {
			changes[name] = Change{Before: before}
		}
	}
	return changes
}

// SetAttribute implements Record
func (m *Map) SetAttribute(name string, value any) error {
	m.attrs[name] = value
	return nil
}

// RemoveAttribute drops an attribute entirely, as opposed to setting it to
// nil.
func (m *Map) RemoveAttribute(name string) {
	delete(m.attrs, name)
}

// MarkSaved advances the save point to the current attributes.
func (m *Map) MarkSaved() {
	m.baseline = maps.Clone(m.attrs)
	m.persisted = true
}
