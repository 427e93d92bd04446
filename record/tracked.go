package record

import (
	"fmt"
	"reflect"

	"github.com/ridge/karst/meta"
)

// Tracked binds a struct to the Record contract using its surveyed schema.
// The struct is referenced, not copied: the caller keeps mutating it directly
// and Tracked picks the changes up by diffing against the last save point.
type Tracked struct {
	schema    meta.Struct
	value     reflect.Value // the struct, via pointer
	baseline  reflect.Value // struct copy at the last save point
	persisted bool
}

// Track starts tracking a new, never-persisted record. ptr must be a pointer
// to a struct of the schema's type.
func Track(schema meta.Struct, ptr any) *Tracked {
	tr := bind(schema, ptr)
	tr.baseline = reflect.New(schema.Type).Elem() // diff against the zero value
	return tr
}

// Adopt starts tracking an already-persisted record whose save point is its
// current state. ptr must be a pointer to a struct of the schema's type.
func Adopt(schema meta.Struct, ptr any) *Tracked {
	tr := bind(schema, ptr)
	tr.MarkSaved()
	return tr
}

func bind(schema meta.Struct, ptr any) *Tracked {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.Elem().Type() != schema.Type {
		panic(fmt.Sprintf("expected pointer to %v", schema.Type))
	}
	return &Tracked{schema: schema, value: v.Elem()}
}

// Schema returns the surveyed schema of the tracked struct.
func (tr *Tracked) Schema() meta.Struct {
	return tr.schema
}

// Entity returns the tracked struct as a pointer.
func (tr *Tracked) Entity() any {
	return tr.value.Addr().Interface()
}

// ID implements Record
func (tr *Tracked) ID() string {
	return tr.value.FieldByIndex(tr.schema.Identity().Index).String()
}

// Persisted implements Record
func (tr *Tracked) Persisted() bool {
	return tr.persisted
}

// Attributes implements Record
func (tr *Tracked) Attributes() map[string]any {
	attrs := make(map[string]any, len(tr.schema.Fields))
	for _, field := range tr.schema.Fields {
		attrs[field.DBName] = tr.value.FieldByIndex(field.Index).Interface()
	}
	return attrs
}

// Changes implements Record
func (tr *Tracked) Changes() map[string]Change {
	changes := map[string]Change{}
	for _, field := range tr.schema.Fields {
		before := tr.baseline.FieldByIndex(field.Index).Interface()
		after := tr.value.FieldByIndex(field.Index).Interface()
		if reflect.DeepEqual(before, after) {
			continue
		}
		changes[field.DBName] = Change{Before: before, After: after}
	}
	return changes
}

// SetAttribute implements Record
func (tr *Tracked) SetAttribute(name string, value any) error {
	field, ok := tr.schema.Field(name)
	if !ok {
		return fmt.Errorf("%s has no attribute %s", tr.schema, name)
	}
	target := tr.value.FieldByIndex(field.Index)
	if err := assign(target, value); err != nil {
		return fmt.Errorf("attribute %s of %s: %w", name, tr.schema, err)
	}
	return nil
}

// MarkSaved advances the save point to the current state.
func (tr *Tracked) MarkSaved() {
	tr.baseline = reflect.New(tr.schema.Type).Elem()
	tr.baseline.Set(tr.value)
	tr.persisted = true
}

// assign sets target to value, converting string kinds and slices of string
// kinds so that plain ids fit typed id fields.
func assign(target reflect.Value, value any) error {
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(target.Type()):
		target.Set(v)
	case v.Kind() == reflect.String && target.Kind() == reflect.String:
		target.SetString(v.String())
	case v.Kind() == reflect.Slice && target.Kind() == reflect.Slice &&
		v.Type().Elem().Kind() == reflect.String && target.Type().Elem().Kind() == reflect.String:
		s := reflect.MakeSlice(target.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			s.Index(i).SetString(v.Index(i).String())
		}
		target.Set(s)
	default:
		return fmt.Errorf("cannot assign %s to %s", v.Type(), target.Type())
	}
	return nil
}
