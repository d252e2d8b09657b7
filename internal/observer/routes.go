package observer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes builds the diagnostics server's handler: GET /healthz, GET
// /state, GET /observe (websocket), all loopback-only by virtue of the
// 127.0.0.1 listener address main binds (§4.11).
func Routes(h *Hub) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", Healthz)
	r.Get("/state", StateHandler(h))
	r.Get("/observe", WSHandler(h))
	return r
}

// Healthz reports process liveness only, not LCU connectivity.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// StateHandler returns the current Snapshot as JSON, for callers that
// just want a one-shot poll instead of the websocket stream.
func StateHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan Snapshot, 1)
		h.Inbox() <- GetState{Reply: reply}
		snap := <-reply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}
