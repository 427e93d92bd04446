package karst

import (
	"fmt"
	"reflect"

	"github.com/ridge/karst/index"
	"github.com/ridge/karst/journal"
	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/meta"
	"github.com/ridge/karst/record"
	"github.com/ridge/karst/retry"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Meta is a type for dummy fields bearing tags for the containing structure
type Meta = meta.Meta

// Record is the contract stored entities must satisfy.
// See package documentation for github.com/ridge/karst/record.
type Record = record.Record

// On declares an index on the given partition attributes.
// See package documentation for github.com/ridge/karst/index.
var On = index.On

// Kind describes a particular type of records under index maintenance.
// All fields are read-only.
type Kind struct {
	meta.Struct
	Indexes map[string]*index.Definition
}

// KindOf creates a Kind from a record structure example and index
// declarations. The record's table root comes from the tag on its Meta field.
func KindOf(example any, defs ...index.Def) *Kind {
	schema := meta.Survey(reflect.TypeOf(example))
	kind := Kind{
		Struct:  schema,
		Indexes: map[string]*index.Definition{},
	}
	for _, def := range defs {
		name := def.Name()
		if kind.Indexes[name] != nil {
			panic(fmt.Sprintf("duplicate index name on %s: %s", schema, name))
		}
		kind.Indexes[name] = def.MustCompile(schema)
	}
	return &kind
}

// Definitions returns the kind's index definitions in maintenance order
// (ascending by index name).
func (k *Kind) Definitions() []*index.Definition {
	names := maps.Keys(k.Indexes)
	slices.Sort(names)
	defs := make([]*index.Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, k.Indexes[name])
	}
	return defs
}

// Config is the configuration of index maintenance
type Config struct {
	// Store is the KV backend holding the index tables
	Store kv.Store

	// Namespace prefixes the names of all index tables
	Namespace string

	// Kinds is the list of record kinds whose indexes to maintain
	Kinds []*Kind

	// Retry is the policy for conditional writes lost to concurrent writers.
	// nil selects index.DefaultRetry.
	Retry retry.Config

	// Journal receives an event for every index mutation. Can be nil.
	Journal journal.Writer
}

// DB maintains the index tables of the configured kinds.
// Safe for concurrent use.
type DB struct {
	engine *index.Engine
	kinds  map[string]*Kind
}

// New creates a DB. Configuration errors panic.
func New(config Config) *DB {
	db := DB{
		engine: index.New(config.Store, index.Options{
			Namespace: config.Namespace,
			Retry:     config.Retry,
			Journal:   config.Journal,
		}),
		kinds: map[string]*Kind{},
	}
	for _, kind := range config.Kinds {
		if db.kinds[kind.DBName] != nil {
			panic(fmt.Sprintf("duplicate kind name: %s", kind.DBName))
		}
		db.kinds[kind.DBName] = kind
	}
	return &db
}
