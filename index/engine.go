package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ridge/karst/journal"
	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/record"
	"github.com/ridge/karst/retry"
	"github.com/ridge/karst/tlog"
	"go.uber.org/zap"
)

// DefaultRetry is the retry policy the engine uses when Options.Retry is not
// set. It retries lost races indefinitely with exponential backoff; callers
// bound it with the context deadline.
var DefaultRetry retry.Config = retry.ExpConfig{
	Min:   5 * time.Millisecond,
	Max:   time.Second,
	Scale: 2,
}

// Options configures an Engine
type Options struct {
	// Namespace prefixes every index table name. Required.
	Namespace string

	// Retry is the policy for rerunning mutations that lost a race.
	// DefaultRetry if nil.
	Retry retry.Config

	// Journal receives an event for every index mutation. Optional.
	Journal journal.Writer
}

// Engine maintains index tables in a key-value store.
//
// Methods of Engine are safe for concurrent use, including concurrent
// mutations of the same entry from multiple processes sharing the store.
type Engine struct {
	store     kv.Store
	namespace string
	retry     retry.Config
	journal   journal.Writer
}

// New creates an Engine over the given store. It panics if the namespace is
// empty.
func New(store kv.Store, opts Options) *Engine {
	if opts.Namespace == "" {
		panic("index: namespace must not be empty")
	}
	r := opts.Retry
	if r == nil {
		r = DefaultRetry
	}
	return &Engine{
		store:     store,
		namespace: opts.Namespace,
		retry:     r,
		journal:   opts.Journal,
	}
}

// Namespace returns the table name prefix of the engine.
func (e *Engine) Namespace() string {
	return e.namespace
}

// UniqueError reports an attempt to add a second record to an entry of a
// unique index. It is never retried.
type UniqueError struct {
	Index string
	Table string
	Key   kv.Key
	IDs   kv.IDSet // current occupants of the entry
}

func (e *UniqueError) Error() string {
	return fmt.Sprintf("unique index %s: key %s is already taken by %s",
		e.Index, e.Key, strings.Join(e.IDs.Sorted(), ", "))
}

// Save brings the index in line with the record being saved: the record's id
// leaves the entry derived from its persisted state and joins the entry
// derived from its current state. Records whose key values are all blank stay
// out of the index.
//
// Save must be called before the record itself is written to its table, so
// that a crash leaves a dangling index entry rather than an unindexed record.
func (e *Engine) Save(ctx context.Context, def *Definition, rec record.Record) error {
	id := rec.ID()
	if id == "" {
		return fmt.Errorf("cannot index a record of %s without an identity", def.Source)
	}

	key, indexed := def.Key(rec.Attributes())
	if rec.Persisted() {
		if prior, ok := def.PriorKey(rec); ok && (!indexed || !prior.Equal(key)) {
			if err := e.remove(ctx, def, prior, id); err != nil {
				return err
			}
		}
	}
	if !indexed {
		return nil
	}
	return e.add(ctx, def, key, id)
}

// Delete removes the record from the entry derived from its current state.
// Deleting a record that is not a member of that entry, or whose key values
// are all blank, succeeds trivially.
func (e *Engine) Delete(ctx context.Context, def *Definition, rec record.Record) error {
	id := rec.ID()
	if id == "" {
		return fmt.Errorf("cannot unindex a record of %s without an identity", def.Source)
	}
	key, ok := def.Key(rec.Attributes())
	if !ok {
		return nil
	}
	return e.remove(ctx, def, key, id)
}

// Lookup returns the ids of the records indexed under the key derived from
// the given criteria. The criteria must populate the key attributes of the
// index the same way record attributes do.
func (e *Engine) Lookup(ctx context.Context, def *Definition, criteria map[string]any) (kv.IDSet, error) {
	key, ok := def.Key(criteria)
	if !ok {
		return nil, fmt.Errorf("criteria for index %s produce no key", def)
	}
	entry, found, err := e.store.Read(ctx, def.Table(e.namespace), key)
	if err != nil {
		return nil, err
	}
	if !found {
		return kv.NewIDSet(), nil
	}
	return entry.IDs, nil
}

// add makes id a member of the entry at key, creating the entry if needed.
// Lost races are retried with a fresh read.
func (e *Engine) add(ctx context.Context, def *Definition, key kv.Key, id string) error {
	table := def.Table(e.namespace)
	return retry.Do(ctx, e.retry, func() error {
		entry, found, err := e.store.Read(ctx, table, key)
		if err != nil {
			return err
		}
		if !found {
			err := e.store.Write(ctx, table, kv.Entry{Key: key, IDs: kv.NewIDSet(id)}, kv.IfAbsent())
			if err != nil {
				return retriable(err)
			}
			e.emit(ctx, journal.OpAdd, table, key, id)
			return nil
		}

		joining := !entry.IDs.Has(id)
		ids := entry.IDs.Clone()
		ids.Add(id)
		if def.Unique && len(ids) > 1 {
			return &UniqueError{Index: def.Name(), Table: table, Key: key, IDs: entry.IDs}
		}
		err = e.store.Write(ctx, table, kv.Entry{Key: key, IDs: ids}, kv.IfIDsEqual(entry.IDs))
		if err != nil {
			return retriable(err)
		}
		if joining {
			e.emit(ctx, journal.OpAdd, table, key, id)
		}
		return nil
	})
}

// remove takes id out of the entry at key, deleting the entry once it
// empties. Removing an id that is not a member succeeds trivially.
func (e *Engine) remove(ctx context.Context, def *Definition, key kv.Key, id string) error {
	table := def.Table(e.namespace)
	return retry.Do(ctx, e.retry, func() error {
		entry, found, err := e.store.Read(ctx, table, key)
		if err != nil {
			return err
		}
		if !found || !entry.IDs.Has(id) {
			return nil
		}

		ids := entry.IDs.Clone()
		ids.Remove(id)
		if len(ids) == 0 {
			if err := e.store.Delete(ctx, table, key, kv.IfIDsEqual(entry.IDs)); err != nil {
				return retriable(err)
			}
			e.emit(ctx, journal.OpDrop, table, key, id)
			return nil
		}
		if err := e.store.Write(ctx, table, kv.Entry{Key: key, IDs: ids}, kv.IfIDsEqual(entry.IDs)); err != nil {
			return retriable(err)
		}
		e.emit(ctx, journal.OpRemove, table, key, id)
		return nil
	})
}

// retriable marks a lost race for another round; other store errors pass
// through as is.
func retriable(err error) error {
	if errors.Is(err, kv.ErrConditionFailed) {
		return retry.Retriable(err)
	}
	return err
}

// emit journals one index mutation. Journal failures are reported in the log
// and do not fail the mutation.
func (e *Engine) emit(ctx context.Context, op journal.Op, table string, key kv.Key, id string) {
	if e.journal == nil {
		return
	}
	ev := journal.Event{Time: time.Now().UTC(), Op: op, Table: table, Key: key, ID: id}
	if err := e.journal.Write(ctx, ev); err != nil {
		tlog.Get(ctx).Warn("Failed to journal an index change", zap.Object("event", ev), zap.Error(err))
	}
}
