// Package phase drives the gameflow phase / session lifecycle state
// machine described in spec §4.4. Apply deliberately mirrors the
// teacher's engine.Apply event-sourcing shape: a pure transition
// function that returns the events produced plus the new state.
package phase

import (
	"strconv"

	"github.com/lolscout/agent/internal/lcuevents"
	"github.com/lolscout/agent/pkg/lcu"
)

// Status is one of the five lifecycle states spec §4.4 names.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusInQueue     Status = "in_queue"
	StatusChampSelect Status = "champ_select"
	StatusInGame      Status = "in_game"
	StatusPostGame    Status = "post_game"
)

// State is the Phase State Machine's own state: lifecycle status plus
// session identity. DraftState itself is owned by the draft model, one
// layer up; this package only decides when a session starts and ends.
type State struct {
	Status     Status
	SessionID  string
	Generation uint64
	Connected  bool
}

// Initial is the state before any event has been observed.
func Initial() State {
	return State{Status: StatusIdle, Connected: true}
}

// CommandType discriminates the Command union.
type CommandType string

const (
	CmdPhaseChanged        CommandType = "phase_changed"
	CmdChampSelectSnapshot CommandType = "champ_select_snapshot"
	CmdDisconnected        CommandType = "disconnected"
	CmdGraceExpired        CommandType = "grace_expired"
)

// Command is one decoded input to Apply.
type Command struct {
	Type     CommandType
	Phase    *lcuevents.PhaseChanged
	Snapshot *lcuevents.ChampSelectSnapshot
}

// EventType discriminates the Event union emitted by Apply.
type EventType string

const (
	EvtEnteredQueue       EventType = "entered_queue"
	EvtChampSelectEntered EventType = "champ_select_entered"
	EvtDraftUpdated       EventType = "draft_updated"
	EvtGameStarted        EventType = "game_started"
	EvtGameEnded          EventType = "game_ended"
	EvtEnteringGrace      EventType = "entering_grace"
	EvtSessionCleared     EventType = "session_cleared"
	EvtDisconnected       EventType = "disconnected"
)

// Event is one side effect Apply produces for a transition.
type Event struct {
	Type         EventType
	SessionID    string
	IsNewSession bool
	Snapshot     *lcuevents.ChampSelectSnapshot
}

// Apply runs one Command against State and returns the Events it
// produces plus the new State. Transitions not named in §4.4's table are
// discarded as noise: Apply returns (nil, s) unchanged.
func Apply(s State, cmd Command) ([]Event, State) {
	switch cmd.Type {
	case CmdPhaseChanged:
		return applyPhaseChanged(s, cmd.Phase.Phase)
	case CmdChampSelectSnapshot:
		return applySnapshot(s, cmd.Snapshot)
	case CmdDisconnected:
		next := s
		next.Connected = false
		next.Status = StatusIdle
		return []Event{{Type: EvtDisconnected, SessionID: s.SessionID}}, next
	case CmdGraceExpired:
		if s.Status != StatusIdle {
			return nil, s
		}
		next := s
		next.SessionID = ""
		return []Event{{Type: EvtSessionCleared}}, next
	default:
		return nil, s
	}
}

func applyPhaseChanged(s State, newPhase lcu.Phase) ([]Event, State) {
	switch {
	case newPhase == lcu.PhaseChampSelect:
		next := s
		next.Status = StatusChampSelect
		next.Connected = true
		next.Generation = s.Generation + 1
		next.SessionID = sessionID(next.Generation)
		return []Event{{Type: EvtChampSelectEntered, SessionID: next.SessionID, IsNewSession: true}}, next

	case s.Status == StatusIdle && isQueuePhase(newPhase):
		next := s
		next.Status = StatusInQueue
		return []Event{{Type: EvtEnteredQueue}}, next

	case s.Status == StatusChampSelect && newPhase == lcu.PhaseInProgress:
		next := s
		next.Status = StatusInGame
		return []Event{{Type: EvtGameStarted, SessionID: s.SessionID}}, next

	case newPhase == lcu.PhasePostGame:
		next := s
		next.Status = StatusPostGame
		return []Event{{Type: EvtGameEnded, SessionID: s.SessionID}}, next

	case newPhase == lcu.PhaseNone && s.Status != StatusIdle:
		next := s
		next.Status = StatusIdle
		return []Event{{Type: EvtEnteringGrace, SessionID: s.SessionID}}, next

	default:
		return nil, s
	}
}

func isQueuePhase(p lcu.Phase) bool {
	switch p {
	case lcu.PhaseLobby, lcu.PhaseMatchmaking, lcu.PhaseReadyCheck:
		return true
	default:
		return false
	}
}

func applySnapshot(s State, snap *lcuevents.ChampSelectSnapshot) ([]Event, State) {
	if s.Status != StatusChampSelect {
		return nil, s
	}

	next := s
	isNew := false
	if snap.SessionID != "" && snap.SessionID != s.SessionID {
		next.SessionID = snap.SessionID
		isNew = true
	}

	return []Event{{Type: EvtDraftUpdated, SessionID: next.SessionID, IsNewSession: isNew, Snapshot: snap}}, next
}

// sessionID derives a stable identity from this machine's own generation
// counter, used when the champ-select resource hasn't yet assigned one
// of its own (§4.4).
func sessionID(generation uint64) string {
	return "gen:" + strconv.FormatUint(generation, 10)
}
