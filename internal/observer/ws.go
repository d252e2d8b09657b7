package observer

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// WSHandler upgrades to a websocket and streams Snapshots to the client
// until it disconnects. Observers are read-only: unlike the teacher's
// per-lobby socket, this stream never accepts commands back.
func WSHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan Snapshot, 8)
		clientID := randID(6)

		h.Inbox() <- Join{ClientID: clientID, Outbox: out}
		defer func() { h.Inbox() <- Leave{ClientID: clientID} }()

		ctx := r.Context()
		for snap := range out {
			payload, _ := json.Marshal(snap)
			writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
