// Package wire defines the request and response forms of the KV debug
// protocol spoken between kv/remote and kv/server.
//
// Requests are posted as JSON to /kv/{table}/read, /kv/{table}/write and
// /kv/{table}/delete. Reads answer with a ReadResponse; mutations answer 204,
// or 409 when the condition does not hold. GET /kv/{table} streams the
// table's entries as NDJSON.
package wire

import "github.com/ridge/karst/kv"

// ReadRequest asks for the entry at a key
type ReadRequest struct {
	Key kv.Key `json:"key"`
}

// ReadResponse carries the result of a read. Entry is present iff Found.
type ReadResponse struct {
	Entry *kv.Entry `json:"entry,omitempty"`
	Found bool      `json:"found"`
}

// WriteRequest asks to store an entry, subject to a condition
type WriteRequest struct {
	Entry     kv.Entry     `json:"entry"`
	Condition kv.Condition `json:"condition"`
}

// DeleteRequest asks to delete the entry at a key, subject to a condition
type DeleteRequest struct {
	Key       kv.Key       `json:"key"`
	Condition kv.Condition `json:"condition"`
}
