// Package index declares secondary indexes over record schemas and maintains
// their tables in a key-value store.
//
// Each index owns one table. An entry of the table maps a derived key (a
// string hash value and, for ranged indexes, a numeric range value) to the
// set of ids of the records currently matching that key. The engine keeps
// entries consistent with record saves and deletes using optimistic
// concurrency: every write is conditional on the exact previous state of the
// entry, and losers of a race re-read and retry.
package index

import (
	"fmt"
	"strings"

	"github.com/ridge/karst/meta"
	"golang.org/x/exp/slices"
)

// Def declares a secondary index on one or more attributes. Declarations are
// built with On and compiled against a record schema with Compile.
type Def struct {
	on      []string
	rangeOn []string
	ranged  bool
	unique  bool
}

// On declares an index partitioned by the given attributes.
func On(attrs ...string) Def {
	return Def{on: attrs}
}

// RangeOn returns a copy of the declaration additionally sorted by the given
// attributes.
func (d Def) RangeOn(attrs ...string) Def {
	d.rangeOn = attrs
	return d
}

// Ranged returns a copy of the declaration sorted by its own partition
// attributes.
func (d Def) Ranged() Def {
	d.ranged = true
	return d
}

// Unique returns a copy of the declaration that allows at most one record per
// entry.
func (d Def) Unique() Def {
	d.unique = true
	return d
}

// Name returns the deterministic identity of the declared index: the sorted,
// deduplicated union of its attributes joined with _. Declaration order does
// not matter: On("a", "b") and On("b", "a") name the same index.
func (d Def) Name() string {
	return strings.Join(normalize(append(d.partition(), d.sort()...)), "_")
}

func (d Def) partition() []string {
	return normalize(d.on)
}

func (d Def) sort() []string {
	if d.ranged {
		return normalize(append(slices.Clone(d.rangeOn), d.on...))
	}
	return normalize(d.rangeOn)
}

// normalize returns a sorted, deduplicated copy of attrs.
func normalize(attrs []string) []string {
	attrs = slices.Clone(attrs)
	slices.Sort(attrs)
	return slices.Compact(attrs)
}

// FieldError reports an index declaration naming an attribute missing from
// the record schema.
type FieldError struct {
	Schema meta.Struct
	Attr   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("no attribute %s in %s", e.Attr, e.Schema)
}

// Compile resolves the declaration against a record schema. It fails with
// *FieldError if the declaration names an attribute the schema does not have.
func (d Def) Compile(s meta.Struct) (*Definition, error) {
	partition := d.partition()
	if len(partition) == 0 {
		return nil, fmt.Errorf("index on %s needs at least one partition attribute", s)
	}
	sort := d.sort()
	for _, attr := range normalize(append(slices.Clone(partition), sort...)) {
		if _, ok := s.Field(attr); !ok {
			return nil, &FieldError{Schema: s, Attr: attr}
		}
	}
	return &Definition{
		Source:         s,
		PartitionAttrs: partition,
		SortAttrs:      sort,
		Unique:         d.unique,
	}, nil
}

// MustCompile is Compile that panics on error, for configuration time.
func (d Def) MustCompile(s meta.Struct) *Definition {
	def, err := d.Compile(s)
	if err != nil {
		panic(err)
	}
	return def
}

// Definition is a compiled index declaration. All fields are read-only.
type Definition struct {
	Source         meta.Struct
	PartitionAttrs []string // canonical (sorted) order
	SortAttrs      []string // canonical order; empty means the index is not ranged
	Unique         bool
}

// Ranged reports whether entries of the index carry a range value.
func (d *Definition) Ranged() bool {
	return len(d.SortAttrs) > 0
}

// Name returns the deterministic identity of the index within its source
// schema.
func (d *Definition) Name() string {
	return strings.Join(d.keyAttrs(), "_")
}

// Table derives the name of the index table: the namespace, the singularized
// source root and the pluralized key attributes.
func (d *Definition) Table(namespace string) string {
	attrs := d.keyAttrs()
	plural := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		plural = append(plural, pluralize(attr))
	}
	return namespace + "_index_" + singularize(d.Source.DBName) + "_" + strings.Join(plural, "_and_")
}

// keyAttrs returns the sorted, deduplicated union of partition and sort
// attributes.
func (d *Definition) keyAttrs() []string {
	return normalize(append(slices.Clone(d.PartitionAttrs), d.SortAttrs...))
}

func (d *Definition) String() string {
	return fmt.Sprintf("%s of %s", d.Name(), d.Source)
}
