package index

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/record"
)

// Key derives the table key for the given attribute values. It returns false
// when the values do not place the record in the index: when every partition
// value is blank, and for ranged indexes also when every sort value is blank.
func (d *Definition) Key(attrs map[string]any) (kv.Key, bool) {
	parts := make([]string, 0, len(d.PartitionAttrs))
	populated := false
	for _, attr := range d.PartitionAttrs {
		v := attrs[attr]
		if !blank(v) {
			populated = true
		}
		parts = append(parts, coerceString(v))
	}
	if !populated {
		return kv.Key{}, false
	}
	hash := strings.Join(parts, ".")
	if !d.Ranged() {
		return kv.HashKey(hash), true
	}

	rng := 0.0
	populated = false
	for _, attr := range d.SortAttrs {
		v := attrs[attr]
		if !blank(v) {
			populated = true
		}
		rng += coerceFloat(v)
	}
	if !populated {
		return kv.Key{}, false
	}
	return kv.RangedKey(hash, rng), true
}

// PriorKey derives the key for the record's persisted state, with pending
// changes rolled back. It returns false when that state did not place the
// record in the index, and also when no key attribute has a pending change,
// since then the key cannot have moved.
func (d *Definition) PriorKey(rec record.Record) (kv.Key, bool) {
	changes := rec.Changes()
	moved := false
	for _, attr := range d.keyAttrs() {
		if _, ok := changes[attr]; ok {
			moved = true
			break
		}
	}
	if !moved {
		return kv.Key{}, false
	}
	attrs := rec.Attributes()
	for attr, ch := range changes {
		attrs[attr] = ch.Before
	}
	return d.Key(attrs)
}

// blank reports whether an attribute value does not count towards placing a
// record in an index. Zero numbers are not blank, empty strings are.
func blank(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return rv.IsNil()
	default:
		return false
	}
}

// coerceString renders an attribute value as a hash key component.
func coerceString(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// coerceFloat renders an attribute value as a range key component. Values
// that do not parse as numbers count as 0.
func coerceFloat(v any) float64 {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Bool:
		return 0
	case reflect.String:
		f, err := strconv.ParseFloat(rv.String(), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
