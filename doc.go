// Package karst maintains secondary indexes for records stored in databases
// that only support primary-key lookup.
//
// The name continues the geological theme: karst is the landscape that water
// carves out of limestone by finding paths through it. Karst carves lookup
// paths through tables of opaque key-value rows.
//
// # The problem
//
// A typical serverless key-value database retrieves a record by its primary
// key and nothing else. Finding "all users on team X" requires either a full
// scan or a manually maintained mapping from team ids to user ids. Karst
// maintains such mappings, called indexes, as additional tables in the same
// database.
//
// For every declared index, karst maintains one table whose rows map a key
// derived from the record's attributes to the set of ids of the records
// currently matching that key. The key has a string hash value and, for
// ranged indexes, a numeric range value. When a record is saved or deleted,
// karst removes its id from the row matching the record's previous state and
// adds it to the row matching the current one.
//
// # Record kinds
//
// Records are described by Go structures surveyed at configuration time:
//
//	type UserID string
//
//	type User struct {
//	    karst.Meta `karst:"name=users"`
//	    ID         UserID `karst:"identity,name=id"`
//	    Email      string `karst:"name=email"`
//	    TeamID     string `karst:"name=team_id"`
//	    Score      int    `karst:"name=score"`
//	}
//
//	var KindUser = karst.KindOf(User{},
//	    karst.On("email").Unique(),
//	    karst.On("team_id"),
//	    karst.On("team_id").RangeOn("score"),
//	)
//
// The Meta field's tag names the kind; exactly one string-based field is the
// identity. Declaration mistakes panic inside KindOf: they are programming
// errors, not runtime conditions.
//
// # Maintenance
//
// A DB ties the declared kinds to a kv.Store holding the index tables:
//
//	db := karst.New(karst.Config{
//	    Store:     store,
//	    Namespace: "prod",
//	    Kinds:     []*karst.Kind{KindUser},
//	})
//
// The caller's persistence layer stores the records themselves; alongside
// every store of a record it calls db.Save, and alongside every removal
// db.Delete. Records are presented through the record.Record contract, which
// carries the identity, the current attribute values and the changes since
// the last save point. record.Tracked adapts a surveyed Go struct to the
// contract; record.Map is a schemaless alternative.
//
// Indexes are maintained with optimistic concurrency. Every row update is a
// conditional write on the exact previous contents of the row, and a write
// lost to a concurrent writer is re-read and retried. Concurrent saves of
// different records converge without locks; there are no cross-row
// transactions. A reader that looks up an index while another record's save
// is in flight may see the old row or the new one, but never a corrupted
// set.
//
// An index declared Unique refuses to add a second id to any of its rows;
// the offending save fails with *index.UniqueError and the existing
// membership stays intact.
//
// # Lookup
//
//	ids, err := db.Lookup(ctx, KindUser, karst.On("team_id"),
//	    map[string]any{"team_id": "t-123"})
//
// Lookup derives the row key from the criteria the same way maintenance
// derives it from a record, reads the one row, and returns the id set. The
// caller then fetches the records by primary key through its own storage
// layer. There is no range or scan API: karst reads and writes single rows.
//
// # Backfill
//
// An index declared after records already exist starts empty. Feed the
// existing records through db.Backfill (or index.Engine.Backfill for a
// single index) to populate it, and use index.Engine.Verify to audit an
// index against authoritative records.
//
// # Journal
//
// A journal.Writer configured in karst.Config receives an event for every
// index mutation: an id added to a row, removed from one, or removed
// together with the emptied row. The journal is advisory; a failed journal
// write is logged and does not fail the mutation. The journal/kafkago
// subpackage ships events to Kafka.
//
// # Backends
//
// Any implementation of kv.Store works as the backing database. Three ship
// with karst: kv/memstore (in-process, for tests and development), kv/dynamo
// (Amazon DynamoDB) and kv/remote (a client for the kv/server development
// server).
package karst
