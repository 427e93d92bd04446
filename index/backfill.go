package index

import (
	"context"

	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/record"
	"github.com/ridge/karst/tlog"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Backfill populates a freshly declared index from a stream of existing
// records. It returns the number of records that landed in the index; records
// with blank key values are passed over.
func (e *Engine) Backfill(ctx context.Context, def *Definition, records <-chan record.Record) (int, error) {
	logger := tlog.Get(ctx).With(zap.String("table", def.Table(e.namespace)))
	logger.Info("Backfill started")

	indexed := 0
	for {
		select {
		case <-ctx.Done():
			return indexed, ctx.Err()
		case rec, ok := <-records:
			if !ok {
				logger.Info("Backfill finished", zap.Int("indexed", indexed))
				return indexed, nil
			}
			if err := e.Save(ctx, def, rec); err != nil {
				return indexed, err
			}
			if _, ok := def.Key(rec.Attributes()); ok {
				indexed++
			}
		}
	}
}

// DriftKind classifies a discrepancy between an index table and the records
// it is derived from.
type DriftKind string

// DriftKind values
const (
	DriftMissing DriftKind = "missing" // a record is absent from the entry it belongs to
	DriftStale   DriftKind = "stale"   // an entry holds an id no record maps to
)

// Drift is one discrepancy found by Verify.
type Drift struct {
	Kind  DriftKind
	Table string
	Key   kv.Key
	ID    string
}

// Verify compares an index table against the authoritative set of records,
// given as a map from record id. It reports records missing from their
// entries, and entry members without a matching record. Stale members of
// entries no record maps to are found only if the store supports listing.
func (e *Engine) Verify(ctx context.Context, def *Definition, records map[string]record.Record) ([]Drift, error) {
	table := def.Table(e.namespace)

	expected := map[string]kv.IDSet{}
	keys := map[string]kv.Key{}
	for id, rec := range records {
		key, ok := def.Key(rec.Attributes())
		if !ok {
			continue
		}
		ks := key.String()
		if _, ok := expected[ks]; !ok {
			expected[ks] = kv.NewIDSet()
			keys[ks] = key
		}
		expected[ks].Add(id)
	}

	var drifts []Drift
	lister, listable := e.store.(kv.Lister)

	for ks, want := range expected {
		entry, found, err := e.store.Read(ctx, table, keys[ks])
		if err != nil {
			return nil, err
		}
		for _, id := range want.Sorted() {
			if !found || !entry.IDs.Has(id) {
				drifts = append(drifts, Drift{Kind: DriftMissing, Table: table, Key: keys[ks], ID: id})
			}
		}
		if found && !listable {
			for _, id := range entry.IDs.Sorted() {
				if !want.Has(id) {
					drifts = append(drifts, Drift{Kind: DriftStale, Table: table, Key: keys[ks], ID: id})
				}
			}
		}
	}

	if listable {
		err := lister.List(ctx, table, func(entry kv.Entry) error {
			want := expected[entry.Key.String()]
			for _, id := range entry.IDs.Sorted() {
				if !want.Has(id) {
					drifts = append(drifts, Drift{Kind: DriftStale, Table: table, Key: entry.Key, ID: id})
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(drifts, func(a, b Drift) bool {
		if a.Key.String() != b.Key.String() {
			return a.Key.String() < b.Key.String()
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Kind < b.Kind
	})
	return drifts, nil
}
