package phase

import (
	"testing"

	"github.com/lolscout/agent/internal/lcuevents"
	"github.com/lolscout/agent/pkg/lcu"
)

func phaseChanged(p lcu.Phase) Command {
	return Command{Type: CmdPhaseChanged, Phase: &lcuevents.PhaseChanged{Phase: p}}
}

func TestApply_IdleToInQueue(t *testing.T) {
	events, next := Apply(Initial(), phaseChanged(lcu.PhaseLobby))
	if next.Status != StatusInQueue {
		t.Fatalf("status = %v, want in_queue", next.Status)
	}
	if len(events) != 1 || events[0].Type != EvtEnteredQueue {
		t.Fatalf("events = %+v, want [entered_queue]", events)
	}
}

func TestApply_ChampSelectEntryAlwaysBumpsGeneration(t *testing.T) {
	s := Initial()
	events, next := Apply(s, phaseChanged(lcu.PhaseChampSelect))
	if next.Generation != s.Generation+1 {
		t.Fatalf("generation = %d, want %d", next.Generation, s.Generation+1)
	}
	if next.SessionID == "" {
		t.Fatalf("expected a generated session id")
	}
	if len(events) != 1 || !events[0].IsNewSession {
		t.Fatalf("events = %+v, want a single IsNewSession event", events)
	}

	// Re-entering champ select (e.g. remake) bumps again and changes id.
	_, next2 := Apply(next, phaseChanged(lcu.PhaseChampSelect))
	if next2.SessionID == next.SessionID {
		t.Fatalf("expected a new session id on re-entry, got the same: %q", next.SessionID)
	}
}

func TestApply_ChampSelectToInProgress(t *testing.T) {
	_, inSelect := Apply(Initial(), phaseChanged(lcu.PhaseChampSelect))
	events, next := Apply(inSelect, phaseChanged(lcu.PhaseInProgress))
	if next.Status != StatusInGame {
		t.Fatalf("status = %v, want in_game", next.Status)
	}
	if len(events) != 1 || events[0].Type != EvtGameStarted || events[0].SessionID != inSelect.SessionID {
		t.Fatalf("events = %+v, want [game_started] carrying %q", events, inSelect.SessionID)
	}
}

func TestApply_NoneFromNonIdleEntersGrace(t *testing.T) {
	_, inSelect := Apply(Initial(), phaseChanged(lcu.PhaseChampSelect))
	events, next := Apply(inSelect, phaseChanged(lcu.PhaseNone))
	if next.Status != StatusIdle {
		t.Fatalf("status = %v, want idle", next.Status)
	}
	if len(events) != 1 || events[0].Type != EvtEnteringGrace {
		t.Fatalf("events = %+v, want [entering_grace]", events)
	}
}

func TestApply_ImpossibleTransitionIsDiscardedAsNoise(t *testing.T) {
	events, next := Apply(Initial(), phaseChanged(lcu.PhaseInProgress))
	if events != nil {
		t.Fatalf("events = %+v, want nil (Idle->InProgress isn't a named transition)", events)
	}
	if next != Initial() {
		t.Fatalf("state changed on a discarded transition: %+v", next)
	}
}

func TestApply_SnapshotOnlyAppliesDuringChampSelect(t *testing.T) {
	events, next := Apply(Initial(), Command{Type: CmdChampSelectSnapshot, Snapshot: &lcuevents.ChampSelectSnapshot{}})
	if events != nil {
		t.Fatalf("expected snapshot to be ignored outside champ select, got %+v", events)
	}
	if next != Initial() {
		t.Fatalf("state changed on an out-of-phase snapshot")
	}
}

func TestApply_SnapshotAdoptsItsOwnSessionID(t *testing.T) {
	_, inSelect := Apply(Initial(), phaseChanged(lcu.PhaseChampSelect))
	events, next := Apply(inSelect, Command{
		Type:     CmdChampSelectSnapshot,
		Snapshot: &lcuevents.ChampSelectSnapshot{SessionID: "game:12345"},
	})
	if next.SessionID != "game:12345" {
		t.Fatalf("SessionID = %q, want game:12345", next.SessionID)
	}
	if len(events) != 1 || !events[0].IsNewSession {
		t.Fatalf("events = %+v, want IsNewSession=true on the id swap", events)
	}
}

func TestApply_GraceExpiredClearsSessionOnlyWhenIdle(t *testing.T) {
	_, inSelect := Apply(Initial(), phaseChanged(lcu.PhaseChampSelect))
	if _, next := Apply(inSelect, Command{Type: CmdGraceExpired}); next.SessionID != inSelect.SessionID {
		t.Fatalf("expected grace-expired to be a no-op outside idle")
	}

	_, idle := Apply(inSelect, phaseChanged(lcu.PhaseNone))
	events, next := Apply(idle, Command{Type: CmdGraceExpired})
	if next.SessionID != "" {
		t.Fatalf("SessionID = %q, want cleared", next.SessionID)
	}
	if len(events) != 1 || events[0].Type != EvtSessionCleared {
		t.Fatalf("events = %+v, want [session_cleared]", events)
	}
}
