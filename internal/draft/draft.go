// Package draft maintains the canonical picture of the current champion
// select draft (§4.5) and answers the queries the trigger engine needs.
package draft

import (
	"github.com/lolscout/agent/internal/champions"
	"github.com/lolscout/agent/internal/lcuevents"
	"github.com/lolscout/agent/internal/role"
	"github.com/lolscout/agent/pkg/lcu"
)

// Pick is one seat's draft record.
type Pick struct {
	CellID       int
	ChampionID   uint32
	Team         lcu.Team
	PickOrder    int
	IsLocalPlayer bool
	Completed    bool
	AssignedLane lcu.Role
}

// rows is the fixed 5-slot, lane-ordered sequence spec §3 describes;
// a nil entry means that lane's row is still empty.
type rows [5]*Pick

func (r rows) clone() rows {
	var c rows
	copy(c[:], r[:])
	return c
}

// slice returns the occupied rows, in row order, as a value slice.
func (r rows) slice() []Pick {
	out := make([]Pick, 0, 5)
	for _, p := range r {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (r rows) findByCell(cellID int) (int, *Pick) {
	for i, p := range r {
		if p != nil && p.CellID == cellID {
			return i, p
		}
	}
	return -1, nil
}

// State is the evolving record of the current draft.
type State struct {
	SessionID     string
	LocalCellID   int
	LocalCellKnown bool
	Allies        rows
	Enemies       rows
	Bans          map[uint32]bool
}

// Empty returns a fresh State for a new session.
func Empty(sessionID string) State {
	return State{SessionID: sessionID, Bans: map[uint32]bool{}}
}

// LocalPick returns the ally pick belonging to the local player, if known.
func (s State) LocalPick() (Pick, bool) {
	for _, p := range s.Allies {
		if p != nil && p.IsLocalPlayer {
			return *p, true
		}
	}
	return Pick{}, false
}

// OpposingPickInLane returns the enemy occupying the given lane row.
func (s State) OpposingPickInLane(lane lcu.Role) (Pick, bool) {
	for i, r := range lcu.Roles {
		if r == lane {
			if p := s.Enemies[i]; p != nil {
				return *p, true
			}
			return Pick{}, false
		}
	}
	return Pick{}, false
}

// PendingEnemyHover is unused by the LCU (enemy hovers are never visible
// to the local client) and always returns false; kept as a named query
// per §4.5 so callers don't need a special case.
func (s State) PendingEnemyHover() (Pick, bool) {
	return Pick{}, false
}

// AlliesSlice returns the occupied ally rows in lane order.
func (s State) AlliesSlice() []Pick { return s.Allies.slice() }

// EnemiesSlice returns the occupied enemy rows in lane order.
func (s State) EnemiesSlice() []Pick { return s.Enemies.slice() }

// EventKind classifies a pick-level change for the trigger engine.
type EventKind string

const (
	KindHover  EventKind = "hover"
	KindPick   EventKind = "pick"
	KindLockIn EventKind = "lock_in"
)

// PickEvent is one commitment-level change produced by a Fold.
type PickEvent struct {
	Kind EventKind
	Pick Pick
}

// Model owns the State and the Champion Registry it consults for enemy
// lane placement (§4.5's "highest lane-aptitude score" rule).
type Model struct {
	registry *champions.Registry
	state    State
}

// New returns a Model seeded with an empty draft for sessionID.
func New(registry *champions.Registry, sessionID string) *Model {
	return &Model{registry: registry, state: Empty(sessionID)}
}

// State returns the current draft snapshot.
func (m *Model) State() State { return m.state }

// Reset clears the draft for a new session (§3: "session_id changes
// only at champion-select entry; all pick lists reset on change").
func (m *Model) Reset(sessionID string) {
	m.state = Empty(sessionID)
}

// Fold merges one decoded champ-select snapshot into the draft and
// returns the commitment-level changes it produced, in a stable order
// (ally seats in the snapshot's myTeam order, then enemy seats in its
// theirTeam order).
func (m *Model) Fold(snap *lcuevents.ChampSelectSnapshot) []PickEvent {
	s := m.state
	var events []PickEvent

	if snap.LocalPlayerCellID != 0 || !s.LocalCellKnown {
		s.LocalCellID = snap.LocalPlayerCellID
		s.LocalCellKnown = true
	}

	for _, id := range snap.Bans {
		if id > 0 {
			s.Bans[uint32(id)] = true
		}
	}

	actionsByActor := latestPickActionByActor(snap.Actions)

	s.Allies, events = foldTeam(s.Allies, snap.MyTeam, lcu.TeamAlly, s.LocalCellID, actionsByActor, m.registry, events)
	s.Enemies, events = foldTeam(s.Enemies, snap.TheirTeam, lcu.TeamEnemy, s.LocalCellID, actionsByActor, m.registry, events)

	m.state = s
	return events
}

type pickAction struct {
	ChampionID int
	Completed  bool
}

func latestPickActionByActor(grid [][]lcuevents.RawAction) map[int]pickAction {
	out := map[int]pickAction{}
	for _, group := range grid {
		for _, a := range group {
			if a.Type != "pick" {
				continue
			}
			// Later entries in the grid are later in the draft; a
			// completed action always wins over an in-progress one for
			// the same actor, matching §4.5's "completed action
			// precedence" rule.
			prev, ok := out[a.ActorCellID]
			if !ok || a.Completed || !prev.Completed {
				out[a.ActorCellID] = pickAction{ChampionID: a.ChampionID, Completed: a.Completed}
			}
		}
	}
	return out
}

func foldTeam(
	current rows,
	players []lcuevents.RawPlayer,
	team lcu.Team,
	localCellID int,
	actions map[int]pickAction,
	registry *champions.Registry,
	events []PickEvent,
) (rows, []PickEvent) {
	next := current.clone()

	for order, player := range players {
		idx, existing := next.findByCell(player.CellID)
		isLocal := team == lcu.TeamAlly && player.CellID == localCellID

		action, hasAction := actions[player.CellID]
		championID := player.ChampionID
		completed := player.ChampionID > 0 && !hasAction
		if hasAction {
			championID = action.ChampionID
			completed = action.Completed
		}

		if championID <= 0 {
			continue
		}

		// No-data-loss rule: never downgrade an already-completed pick.
		if existing != nil && existing.Completed && !completed {
			continue
		}

		wasCompleted := existing != nil && existing.Completed
		pick := Pick{
			CellID:        player.CellID,
			ChampionID:    uint32(championID),
			Team:          team,
			PickOrder:     order + 1,
			IsLocalPlayer: isLocal,
			Completed:     completed,
			AssignedLane:  lcu.RoleUnknown,
		}

		if existing != nil {
			pick.AssignedLane = existing.AssignedLane
			next[idx] = &pick
		} else {
			row, lane := placeRow(next, team, pick, player.AssignedPosition, registry)
			pick.AssignedLane = lane
			next[row] = &pick
		}

		if completed && !wasCompleted {
			events = append(events, PickEvent{Kind: KindPick, Pick: pick})
			if isLocal {
				events = append(events, PickEvent{Kind: KindLockIn, Pick: pick})
			}
		} else if !completed && isLocal {
			if existing == nil || existing.ChampionID != pick.ChampionID {
				events = append(events, PickEvent{Kind: KindHover, Pick: pick})
			}
		}
	}

	return next, events
}

// placeRow finds the row a newly-seen pick belongs in, per §4.5's ally
// and enemy placement rules, and the lane label that row carries.
func placeRow(r rows, team lcu.Team, pick Pick, assignedPosition string, registry *champions.Registry) (int, lcu.Role) {
	if team == lcu.TeamAlly {
		if lane, ok := parseAssignedPosition(assignedPosition); ok {
			if row := roleRow(lane); r[row] == nil {
				return row, lane
			}
		}
		// No LCU-assigned position (or its row is already taken): fall
		// back to role.Infer's aptitude-plus-pick-order guess rather than
		// silently mislabeling whatever row happens to be empty.
		if champ, ok := registry.ByID(pick.ChampionID); ok {
			if lane, ok := role.Infer(champ, pick.PickOrder); ok {
				if row := roleRow(lane); r[row] == nil {
					return row, lane
				}
			}
		}
		return firstEmptyRow(r), lcu.RoleUnknown
	}

	// Enemy: place into the empty row role.AssignRow ranks highest for
	// this champion (§4.5's aptitude tie-break, row index ascending).
	champ, ok := registry.ByID(pick.ChampionID)
	if !ok {
		return firstEmptyRow(r), lcu.RoleUnknown
	}
	var occupied [5]bool
	for i, p := range r {
		occupied[i] = p != nil
	}
	if row := role.AssignRow(champ, occupied); row != -1 {
		return row, lcu.Roles[row]
	}
	return firstEmptyRow(r), lcu.RoleUnknown
}

func firstEmptyRow(r rows) int {
	for i, p := range r {
		if p == nil {
			return i
		}
	}
	return len(r) - 1
}

func roleRow(role lcu.Role) int {
	for i, r := range lcu.Roles {
		if r == role {
			return i
		}
	}
	return 0
}

func parseAssignedPosition(raw string) (lcu.Role, bool) {
	switch raw {
	case "TOP":
		return lcu.RoleTop, true
	case "JUNGLE":
		return lcu.RoleJungle, true
	case "MIDDLE", "MID":
		return lcu.RoleMiddle, true
	case "BOTTOM", "BOT", "ADC":
		return lcu.RoleBottom, true
	case "UTILITY", "SUPPORT":
		return lcu.RoleSupport, true
	default:
		return "", false
	}
}
