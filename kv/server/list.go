package server

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/thttp"
	"github.com/ridge/karst/tlog"
	"go.uber.org/zap"
)

// NDJSON, one entry per line, in the store's listing order.
//
// A listing of a large table is the one heavyweight payload this server
// produces, so it is served gzip-compressed when the request asks for it.
func (h handler) list(w http.ResponseWriter, r *http.Request) {
	lister, ok := h.store.(kv.Lister)
	if !ok {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Add("Vary", "Accept-Encoding")

	var writer io.Writer = w
	if thttp.ShouldGzip(r) {
		w.Header().Set("Content-Encoding", "gzip")
		gzw := gzip.NewWriter(w)
		defer gzw.Close()
		writer = gzw
	}

	enc := json.NewEncoder(writer)
	err := lister.List(r.Context(), mux.Vars(r)["table"], func(entry kv.Entry) error {
		return enc.Encode(entry)
	})
	if err != nil && !errors.Is(err, r.Context().Err()) {
		tlog.Get(r.Context()).Info("Failed to write response", zap.Error(err))
	}
}
