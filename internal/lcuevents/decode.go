// Package lcuevents translates raw transport frames into typed domain
// events, discarding everything this agent doesn't track (§4.3).
package lcuevents

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/lolscout/agent/internal/transport"
	"github.com/lolscout/agent/pkg/lcu"
)

const (
	gameflowPhaseURI  = "/lol-gameflow/v1/gameflow-phase"
	champSelectURI    = "/lol-champ-select/v1/session"
)

// ErrMalformed is returned for a frame whose URI this agent tracks but
// whose payload doesn't decode into the expected shape.
var ErrMalformed = errors.New("lcuevents: malformed payload")

// Event is the decoder's output: exactly one of PhaseChanged or
// ChampSelectSnapshot is non-nil.
type Event struct {
	PhaseChanged       *PhaseChanged
	ChampSelectSnapshot *ChampSelectSnapshot
}

// PhaseChanged carries the new gameflow phase.
type PhaseChanged struct {
	Phase lcu.Phase
}

// RawAction is one cell of the champ-select actions grid.
type RawAction struct {
	ID           int    `json:"id"`
	ActorCellID  int    `json:"actorCellId"`
	ChampionID   int    `json:"championId"`
	Type         string `json:"type"`
	Completed    bool   `json:"completed"`
	IsInProgress bool   `json:"isInProgress"`
}

// RawPlayer is one seat in myTeam/theirTeam.
type RawPlayer struct {
	CellID            int    `json:"cellId"`
	ChampionID        int    `json:"championId"`
	SummonerID        int64  `json:"summonerId"`
	AssignedPosition  string `json:"assignedPosition"`
	ChampionPickIntent int   `json:"championPickIntent"`
}

// ChampSelectSnapshot is the full decoded champ-select session object.
type ChampSelectSnapshot struct {
	SessionID         string
	LocalPlayerCellID int
	MyTeam            []RawPlayer
	TheirTeam         []RawPlayer
	Bans              []int
	Actions           [][]RawAction
}

// Decode turns one transport.Frame into an Event, or (nil, nil) when the
// frame's URI is irrelevant (dropped silently per §4.3).
func Decode(frame transport.Frame) (*Event, error) {
	switch {
	case frame.URI == gameflowPhaseURI:
		return decodePhase(frame.Data)
	case strings.HasPrefix(frame.URI, champSelectURI):
		return decodeChampSelect(frame.Data)
	default:
		return nil, nil
	}
}

func decodePhase(data json.RawMessage) (*Event, error) {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrMalformed
	}
	return &Event{PhaseChanged: &PhaseChanged{Phase: lcu.ParsePhase(raw)}}, nil
}

type rawSession struct {
	GameID            int64 `json:"gameId"`
	LocalPlayerCellID int   `json:"localPlayerCellId"`
	MyTeam            []RawPlayer `json:"myTeam"`
	TheirTeam         []RawPlayer `json:"theirTeam"`
	Bans              struct {
		MyTeamBans    []int `json:"myTeamBans"`
		TheirTeamBans []int `json:"theirTeamBans"`
	} `json:"bans"`
	Actions [][]RawAction `json:"actions"`
}

func decodeChampSelect(data json.RawMessage) (*Event, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrMalformed
	}

	bans := append(append([]int{}, raw.Bans.MyTeamBans...), raw.Bans.TheirTeamBans...)

	return &Event{ChampSelectSnapshot: &ChampSelectSnapshot{
		SessionID:         sessionIDFor(raw.GameID),
		LocalPlayerCellID: raw.LocalPlayerCellID,
		MyTeam:            raw.MyTeam,
		TheirTeam:         raw.TheirTeam,
		Bans:              bans,
		Actions:           raw.Actions,
	}}, nil
}

// sessionIDFor derives a stable session identity from the session
// resource's own gameId when present. A zero gameId (seen before the
// client has assigned one) yields an empty string; the Phase State
// Machine treats that as "no authoritative id yet" and keeps its own
// generation counter instead (§4.4).
func sessionIDFor(gameID int64) string {
	if gameID == 0 {
		return ""
	}
	return "game:" + strconv.FormatInt(gameID, 10)
}
