package observer

import (
	"context"
	"testing"
	"time"

	"github.com/lolscout/agent/internal/phase"
	"github.com/stretchr/testify/require"
)

// recvSnapshot mirrors the teacher's channel-with-timeout helper style so
// these actor tests never hang on a missed broadcast.
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "outbox closed unexpectedly")
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func TestHub_PublishBumpsVersionAndBroadcasts(t *testing.T) {
	h := NewHub(context.Background())
	t.Cleanup(func() { h.Inbox() <- Shutdown{} })

	out := make(chan Snapshot, 4)
	h.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvSnapshot(t, out, time.Second)
	require.Equal(t, 0, first.Version)

	h.Inbox() <- Publish{Phase: phase.State{Status: phase.StatusInQueue}}

	next := recvSnapshot(t, out, time.Second)
	require.Equal(t, 1, next.Version)
	require.Equal(t, phase.StatusInQueue, next.Phase.Status)
}

func TestHub_GetStateReturnsCurrentSnapshotSynchronously(t *testing.T) {
	h := NewHub(context.Background())
	t.Cleanup(func() { h.Inbox() <- Shutdown{} })

	h.Inbox() <- Publish{Phase: phase.State{Status: phase.StatusInGame}}

	reply := make(chan Snapshot, 1)
	h.Inbox() <- GetState{Reply: reply}

	select {
	case snap := <-reply:
		require.Equal(t, phase.StatusInGame, snap.Phase.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for GetState reply")
	}
}

func TestHub_SlowClientDoesNotBlockHub(t *testing.T) {
	h := NewHub(context.Background())
	t.Cleanup(func() { h.Inbox() <- Shutdown{} })

	out := make(chan Snapshot) // unbuffered and never read: always "slow"
	h.Inbox() <- Join{ClientID: "slow", Outbox: out}

	// The join snapshot send is non-blocking from inside loop(), so the
	// hub must still answer a concurrent request instead of being wedged.
	reply := make(chan Snapshot, 1)
	h.Inbox() <- GetState{Reply: reply}

	select {
	case <-reply:
	case <-time.After(time.Second):
		t.Fatal("hub appears wedged by a slow client")
	}
}

func TestHub_ShutdownClosesClientOutboxes(t *testing.T) {
	h := NewHub(context.Background())
	out := make(chan Snapshot, 1)
	h.Inbox() <- Join{ClientID: "c1", Outbox: out}
	<-out // drain the initial join snapshot

	h.Inbox() <- Shutdown{}

	select {
	case _, ok := <-out:
		require.False(t, ok, "expected outbox to be closed after Shutdown")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbox close")
	}
}
