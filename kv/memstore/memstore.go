// Package memstore implements an in-process kv.Store on top of go-memdb.
//
// It is the reference backend for tests and for the development server.
// Conditions are checked inside a single memdb write transaction, so
// concurrent writers of the same entry observe the same semantics as a real
// conditional store.
package memstore

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/hashicorp/go-memdb"
	"github.com/ridge/karst/kv"
	"github.com/ridge/must/v2"
)

const tableEntries = "entries"

type row struct {
	PK    string
	Table string
	Entry kv.Entry
}

// Store is an in-memory kv.Store. It also implements kv.Lister.
type Store struct {
	db *memdb.MemDB
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableEntries: {
			Name: tableEntries,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "PK"},
				},
			},
		},
	},
}

// New creates an empty store.
func New() *Store {
	return &Store{db: must.OK1(memdb.NewMemDB(schema))}
}

// pk encodes (table, key) into a single primary key string. Table names are
// derived identifiers and never contain NUL, so the encoding is unambiguous.
func pk(table string, key kv.Key) string {
	rng := ""
	if key.Ranged() {
		rng = strconv.FormatUint(math.Float64bits(*key.Range), 16)
	}
	return table + "\x00" + key.Hash + "\x00" + rng
}

// Read implements kv.Store
func (s *Store) Read(ctx context.Context, table string, key kv.Key) (kv.Entry, bool, error) {
	txn := s.db.Txn(false)
	raw, err := txn.First(tableEntries, "id", pk(table, key))
	if err != nil {
		return kv.Entry{}, false, fmt.Errorf("memstore: read %s %s: %w", table, key, err)
	}
	if raw == nil {
		return kv.Entry{}, false, nil
	}
	entry := raw.(*row).Entry
	entry.IDs = entry.IDs.Clone()
	return entry, true, nil
}

// Write implements kv.Store
func (s *Store) Write(ctx context.Context, table string, entry kv.Entry, cond kv.Condition) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	id := pk(table, entry.Key)
	raw, err := txn.First(tableEntries, "id", id)
	if err != nil {
		return fmt.Errorf("memstore: write %s %s: %w", table, entry.Key, err)
	}
	if !holds(cond, raw) {
		return fmt.Errorf("memstore: write %s %s: %w", table, entry.Key, kv.ErrConditionFailed)
	}
	stored := kv.Entry{Key: entry.Key, IDs: entry.IDs.Clone()}
	if err := txn.Insert(tableEntries, &row{PK: id, Table: table, Entry: stored}); err != nil {
		return fmt.Errorf("memstore: write %s %s: %w", table, entry.Key, err)
	}
	txn.Commit()
	return nil
}

// Delete implements kv.Store
func (s *Store) Delete(ctx context.Context, table string, key kv.Key, cond kv.Condition) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableEntries, "id", pk(table, key))
	if err != nil {
		return fmt.Errorf("memstore: delete %s %s: %w", table, key, err)
	}
	if !holds(cond, raw) {
		return fmt.Errorf("memstore: delete %s %s: %w", table, key, kv.ErrConditionFailed)
	}
	if raw != nil {
		if err := txn.Delete(tableEntries, raw); err != nil {
			return fmt.Errorf("memstore: delete %s %s: %w", table, key, err)
		}
	}
	txn.Commit()
	return nil
}

// List implements kv.Lister
func (s *Store) List(ctx context.Context, table string, fn func(kv.Entry) error) error {
	txn := s.db.Txn(false)
	it, err := txn.Get(tableEntries, "id_prefix", table+"\x00")
	if err != nil {
		return fmt.Errorf("memstore: list %s: %w", table, err)
	}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := raw.(*row).Entry
		entry.IDs = entry.IDs.Clone()
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

func holds(cond kv.Condition, raw any) bool {
	if raw == nil {
		return cond.Holds(nil, false)
	}
	return cond.Holds(&raw.(*row).Entry, true)
}
