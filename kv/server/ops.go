package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/kv/wire"
	"github.com/ridge/karst/thttp"
	"github.com/ridge/karst/tlog"
	"go.uber.org/zap"
)

func (h handler) read(w http.ResponseWriter, r *http.Request) {
	var req wire.ReadRequest
	if !decode(w, r, &req) {
		return
	}
	entry, found, err := h.store.Read(r.Context(), mux.Vars(r)["table"], req.Key)
	if err != nil {
		fail(w, r, err)
		return
	}
	res := wire.ReadResponse{Found: found}
	if found {
		res.Entry = &entry
	}
	thttp.JSONResult(tlog.Get(r.Context()), w, res, http.StatusOK)
}

func (h handler) write(w http.ResponseWriter, r *http.Request) {
	var req wire.WriteRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.Write(r.Context(), mux.Vars(r)["table"], req.Entry, req.Condition); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h handler) delete(w http.ResponseWriter, r *http.Request) {
	var req wire.DeleteRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.Delete(r.Context(), mux.Vars(r)["table"], req.Key, req.Condition); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if _, err := w.Write([]byte(err.Error())); err != nil {
			tlog.Get(r.Context()).Info("Failed to write response", zap.Error(err))
		}
		return false
	}
	return true
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, kv.ErrConditionFailed) {
		status = http.StatusConflict
	}
	w.WriteHeader(status)
	if _, err := w.Write([]byte(err.Error())); err != nil {
		tlog.Get(r.Context()).Info("Failed to write response", zap.Error(err))
	}
}
