package karst

import (
	"context"
	"fmt"

	"github.com/ridge/karst/index"
	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/record"
	"github.com/ridge/karst/tlog"
	"go.uber.org/zap"
)

// Save brings every index of the kind in line with the record's current
// state. Call it while persisting the record; the caller advances the
// record's save point only once the record itself is stored.
func (db *DB) Save(ctx context.Context, kind *Kind, rec record.Record) error {
	db.check(kind)
	for _, def := range kind.Definitions() {
		if err := db.engine.Save(ctx, def, rec); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the record from every index of the kind.
func (db *DB) Delete(ctx context.Context, kind *Kind, rec record.Record) error {
	db.check(kind)
	for _, def := range kind.Definitions() {
		if err := db.engine.Delete(ctx, def, rec); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the ids of the kind's records whose indexed attributes
// currently equal the criteria. def must be one of the kind's declared
// indexes.
func (db *DB) Lookup(ctx context.Context, kind *Kind, def index.Def, criteria map[string]any) (kv.IDSet, error) {
	db.check(kind)
	compiled := kind.Indexes[def.Name()]
	if compiled == nil {
		return nil, fmt.Errorf("no index %s on %s", def.Name(), kind.Struct)
	}
	return db.engine.Lookup(ctx, compiled, criteria)
}

// Backfill replays a stream of the kind's records through every index of the
// kind. Use it to populate the tables of indexes declared after records
// already exist. Returns the number of records processed.
func (db *DB) Backfill(ctx context.Context, kind *Kind, records <-chan record.Record) (int, error) {
	db.check(kind)
	logger := tlog.Get(ctx).With(zap.Stringer("kind", kind.Struct))
	logger.Info("Backfill started")
	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case rec, ok := <-records:
			if !ok {
				logger.Info("Backfill finished", zap.Int("records", count))
				return count, nil
			}
			if err := db.Save(ctx, kind, rec); err != nil {
				return count, err
			}
			count++
		}
	}
}

// Misconfiguration, not a runtime condition: all kinds are known when the DB
// is set up.
func (db *DB) check(kind *Kind) {
	if db.kinds[kind.DBName] != kind {
		panic(fmt.Sprintf("kind %s is not configured in this DB", kind.Struct))
	}
}
