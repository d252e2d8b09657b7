// Package observer runs an optional, loopback-only diagnostics server
// that lets the excluded settings UI (or curl) watch this agent's phase,
// draft state, and last dispatch outcome without ever being a required
// collaborator (§4.11). Hub is a single actor: exactly one local session
// exists at a time, so there is no map of lobbies to keep — just one
// broadcast point, adapted from the teacher's hub+lobby pair.
package observer

import (
	"context"

	"github.com/lolscout/agent/internal/draft"
	"github.com/lolscout/agent/internal/phase"
)

// Snapshot is the full diagnostic picture broadcast to observers.
type Snapshot struct {
	Version     int          `json:"version"`
	Phase       phase.State  `json:"phase"`
	Draft       draft.State  `json:"draft"`
	LastDispatch *DispatchLog `json:"lastDispatch,omitempty"`
}

// DispatchLog records the most recent URL-open attempt, success or not.
type DispatchLog struct {
	URL     string `json:"url"`
	Feature string `json:"feature"`
	Error   string `json:"error,omitempty"`
}

// Msg is the Hub's inbox message union.
type Msg interface{ isHubMsg() }

// Publish updates the current snapshot and broadcasts it to observers.
type Publish struct {
	Phase        phase.State
	Draft        draft.State
	LastDispatch *DispatchLog
}

// Join registers a new observer; Outbox receives the current snapshot if
// it has room for it, then every future snapshot. An outbox that is full
// when a snapshot is broadcast is closed and the observer is dropped.
type Join struct {
	ClientID string
	Outbox   chan Snapshot
}

// Leave unregisters an observer.
type Leave struct{ ClientID string }

// GetState is a synchronous state read; StateHandler and tests use it.
type GetState struct{ Reply chan Snapshot }

// Shutdown closes every observer's outbox and stops the Hub.
type Shutdown struct{}

func (Publish) isHubMsg()   {}
func (Join) isHubMsg()      {}
func (Leave) isHubMsg()     {}
func (GetState) isHubMsg()  {}
func (Shutdown) isHubMsg()  {}

// Hub is the diagnostics actor: one goroutine owns all its state, so
// every field below is only ever touched from loop().
type Hub struct {
	inbox    chan Msg
	snapshot Snapshot
	clients  map[string]chan Snapshot
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewHub starts the Hub's loop and returns immediately.
func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan Msg, 64),
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

// Inbox exposes the send-only side for the HTTP/WS layer.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Publish:
				h.snapshot.Version++
				h.snapshot.Phase = msg.Phase
				h.snapshot.Draft = msg.Draft
				if msg.LastDispatch != nil {
					h.snapshot.LastDispatch = msg.LastDispatch
				}
				h.broadcast(h.snapshot)

			case Join:
				h.clients[msg.ClientID] = msg.Outbox
				select {
				case msg.Outbox <- h.snapshot:
				default:
					// Outbox isn't buffered deep enough to take the initial
					// snapshot without blocking the loop; the client still
					// gets the next broadcast instead.
				}

			case Leave:
				delete(h.clients, msg.ClientID)

			case GetState:
				msg.Reply <- h.snapshot

			case Shutdown:
				for id, ch := range h.clients {
					close(ch)
					delete(h.clients, id)
				}
				h.cancel()
				return
			}
		}
	}
}

// broadcast fans the current snapshot out to every observer, dropping
// (and disconnecting) any that isn't keeping up.
func (h *Hub) broadcast(snap Snapshot) {
	for id, ch := range h.clients {
		select {
		case ch <- snap:
		default:
			close(ch)
			delete(h.clients, id)
		}
	}
}
