// Package server exposes a kv.Store over HTTP for development and debugging.
//
// The protocol is defined in kv/wire; kv/remote is the matching client.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ridge/karst/kv"
)

// Handler returns an HTTP handler serving the KV protocol over the given
// store.
func Handler(store kv.Store) http.Handler {
	h := handler{store: store}

	router := mux.NewRouter()
	router.Path("/kv/{table}").Methods(http.MethodGet).HandlerFunc(h.list)
	router.Path("/kv/{table}/read").Methods(http.MethodPost).HandlerFunc(h.read)
	router.Path("/kv/{table}/write").Methods(http.MethodPost).HandlerFunc(h.write)
	router.Path("/kv/{table}/delete").Methods(http.MethodPost).HandlerFunc(h.delete)
	return router
}

type handler struct {
	store kv.Store
}
