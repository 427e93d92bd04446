// Package meta surveys record struct types into schema descriptions.
//
// A record type carries a meta.Meta marker field whose tag names the record
// table root, and exactly one string field tagged as the identity:
//
//	type User struct {
//	    Meta  meta.Meta `karst:"name=users"`
//	    ID    string    `karst:"identity,name=id"`
//	    Email string    `karst:"name=email"`
//	}
//
// Surveying is done once at configuration time; malformed schemas panic.
package meta

import (
	"fmt"
	"reflect"

	"golang.org/x/exp/slices"
)

// Meta is a type for dummy fields bearing tags for the containing structure
type Meta struct{}

var metaType = reflect.TypeOf(Meta{})

// Field describes a leaf structure field (not an embedded substructure).
// All fields are read-only.
type Field struct {
	GoName string
	DBName string
	Index  []int
	Type   reflect.Type
}

// String returns the Go and DB field names
func (f Field) String() string {
	if f.DBName != "" && f.DBName != f.GoName {
		return fmt.Sprintf("%s (%s)", f.GoName, f.DBName)
	}
	return f.GoName
}

// Struct describes a structure.
// All fields are read-only.
type Struct struct {
	DBName   string
	Type     reflect.Type
	Fields   []Field
	identity int // index into Fields
}

const noIdentity = -1

// String returns the Go and DB type names
func (s Struct) String() string {
	return fmt.Sprintf("%s (%s)", s.Type, s.DBName)
}

// Identity returns the structure's identity field
func (s Struct) Identity() Field {
	return s.Fields[s.identity]
}

// Field finds the field with a given attribute name
func (s Struct) Field(attr string) (Field, bool) {
	for _, field := range s.Fields {
		if field.DBName == attr {
			return field, true
		}
	}
	return Field{}, false
}

// AttrNames returns the attribute names of all fields in ascending order
func (s Struct) AttrNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		names = append(names, field.DBName)
	}
	slices.Sort(names)
	return names
}
