// Package journal records successful index mutations as an append-only
// stream of events.
//
// The journal is advisory: the index engine reports a failed journal write in
// the log and carries on. Memory collects events in process for tests; the
// kafkago subpackage ships them to Kafka.
package journal

import (
	"context"
	"sync"
	"time"

	"github.com/ridge/karst/kv"
	"go.uber.org/zap/zapcore"
)

// Op is the kind of an index mutation
type Op string

// Op values
const (
	OpAdd    Op = "add"    // id added to an entry
	OpRemove Op = "remove" // id removed from an entry
	OpDrop   Op = "drop"   // id removed and the emptied entry deleted
)

// Event is one successful index mutation
type Event struct {
	Time  time.Time `json:"time"`
	Op    Op        `json:"op"`
	Table string    `json:"table"`
	Key   kv.Key    `json:"key"`
	ID    string    `json:"id"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler to allow logging of Event with zap.Object
func (ev Event) MarshalLogObject(e zapcore.ObjectEncoder) error {
	e.AddTime("time", ev.Time)
	e.AddString("op", string(ev.Op))
	e.AddString("table", ev.Table)
	if err := e.AddObject("key", ev.Key); err != nil {
		return err
	}
	e.AddString("id", ev.ID)
	return nil
}

// Writer is a destination for index mutation events
type Writer interface {
	Write(ctx context.Context, ev Event) error
}

// Memory is a Writer collecting events in memory. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// Write implements Writer
func (m *Memory) Write(ctx context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of the events recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
