// Package lcu holds the wire-level and closed-enum types shared between
// the core agent and anything that embeds it (a tray UI, a test harness).
// Nothing in this package talks to the network; it only names shapes.
package lcu

import "strconv"

// Role is the closed set of logical positions a pick can be assigned to.
type Role string

const (
	RoleTop     Role = "top"
	RoleJungle  Role = "jungle"
	RoleMiddle  Role = "middle"
	RoleBottom  Role = "bottom"
	RoleSupport Role = "support"
	RoleUnknown Role = "unknown"
)

// Roles is the canonical top-to-support row ordering used for DraftState
// ally/enemy placement (index 0 = top ... 4 = support).
var Roles = []Role{RoleTop, RoleJungle, RoleMiddle, RoleBottom, RoleSupport}

// Team distinguishes the local player's side from the opposing side.
type Team string

const (
	TeamAlly  Team = "ally"
	TeamEnemy Team = "enemy"
)

// Phase is the gameflow phase reported by /lol-gameflow/v1/gameflow-phase,
// collapsed to the values this agent distinguishes.
type Phase string

const (
	PhaseNone        Phase = "None"
	PhaseLobby       Phase = "Lobby"
	PhaseMatchmaking Phase = "Matchmaking"
	PhaseReadyCheck  Phase = "ReadyCheck"
	PhaseChampSelect Phase = "ChampSelect"
	PhaseInProgress  Phase = "InProgress"
	PhasePostGame    Phase = "PostGame"
)

// ParsePhase maps a raw gameflow-phase string to Phase, collapsing any
// value this agent doesn't distinguish down to PhaseNone per §4.3.
func ParsePhase(raw string) Phase {
	switch Phase(raw) {
	case PhaseLobby, PhaseMatchmaking, PhaseReadyCheck, PhaseChampSelect, PhaseInProgress, PhasePostGame:
		return Phase(raw)
	default:
		return PhaseNone
	}
}

// Feature is the closed set of analytics pages this agent can trigger.
type Feature string

const (
	FeatureMatchup        Feature = "matchup"
	FeatureMyCounters     Feature = "my_counters"
	FeatureEnemyCounters  Feature = "enemy_counters"
	FeatureBuildGuide     Feature = "build_guide"
)

// FeatureOrder is the dispatch ordering §4.8 mandates when multiple
// intents fire from a single draft update.
var FeatureOrder = []Feature{FeatureMatchup, FeatureMyCounters, FeatureEnemyCounters, FeatureBuildGuide}

// TriggerKind is the commitment level an event kind represents.
type TriggerKind string

const (
	TriggerHover     TriggerKind = "hover"
	TriggerPick      TriggerKind = "pick"
	TriggerLockIn    TriggerKind = "lock_in"
	TriggerGameStart TriggerKind = "game_start"
)

// Credentials are the ephemeral endpoint + auth token extracted from the
// running client. Immutable once obtained; the Supervisor replaces the
// whole value atomically on reacquisition, it never mutates one in place.
type Credentials struct {
	Host       string
	Port       uint16
	AuthToken  string
	Protocol   string // "wss" in practice; kept so a lockfile's 5th field round-trips
	Generation uint64
}

// BaseURL is the https://127.0.0.1:<port> root for HTTP calls.
func (c Credentials) BaseURL() string {
	return "https://" + c.Host + ":" + strconv.Itoa(int(c.Port))
}

// WebSocketURL is the wss://127.0.0.1:<port>/ root for the event stream.
func (c Credentials) WebSocketURL() string {
	return "wss://" + c.Host + ":" + strconv.Itoa(int(c.Port)) + "/"
}
