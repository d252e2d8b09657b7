// Package trigger maps draft-model deltas to URL-open intents under the
// user's feature policy (§4.8). It owns the per-session dedup ledger so
// the same fingerprint never dispatches twice.
package trigger

import (
	"fmt"
	"strings"

	"github.com/lolscout/agent/internal/champions"
	"github.com/lolscout/agent/internal/config"
	"github.com/lolscout/agent/internal/draft"
	"github.com/lolscout/agent/pkg/lcu"
)

// Feature and Kind are aliased from pkg/lcu so this package, the
// Supervisor, and anything embedding the agent all speak the same
// closed enums instead of each declaring their own.
type (
	Feature = lcu.Feature
	Kind    = lcu.TriggerKind
)

const (
	FeatureMatchup       = lcu.FeatureMatchup
	FeatureMyCounters    = lcu.FeatureMyCounters
	FeatureEnemyCounters = lcu.FeatureEnemyCounters
	FeatureBuildGuide    = lcu.FeatureBuildGuide

	KindHover     = lcu.TriggerHover
	KindPick      = lcu.TriggerPick
	KindLockIn    = lcu.TriggerLockIn
	KindGameStart = lcu.TriggerGameStart
)

// Fingerprint is the dedup key: {feature, trigger_kind, champion_id,
// opponent_id|∅, role|∅, session_id, phase_epoch}. Kind is part of the
// key so a feature configured with open_in_game can fire once on its
// configured trigger and once more on game_start for the same
// champion/lane — two distinct opens, not a dedup collision (§8
// scenario 4).
type Fingerprint struct {
	Feature    Feature
	Kind       Kind
	ChampionID uint32
	OpponentID uint32 // 0 means absent
	Role       lcu.Role
	SessionID  string
	PhaseEpoch uint64
}

// Intent is one URL-open request the Dispatcher should carry out.
type Intent struct {
	URL         string
	Feature     Feature
	Fingerprint Fingerprint
}

// Engine holds the per-session fingerprint ledger. A fresh Engine (or
// Reset) must be used for every new session per §3's "TriggerFingerprint
// lifetime equals the session" rule.
type Engine struct {
	features  config.Features
	registry  *champions.Registry
	baseURL   string
	sessionID string
	epoch     uint64
	seen      map[Fingerprint]bool
}

// New returns an Engine bound to the given feature policy and base URL.
func New(features config.Features, registry *champions.Registry, baseURL string) *Engine {
	return &Engine{
		features: features,
		registry: registry,
		baseURL:  strings.TrimRight(baseURL, "/"),
		seen:     map[Fingerprint]bool{},
	}
}

// Reset clears the dedup ledger for a new session and bumps the phase
// epoch so any fingerprint carried over from a stale in-flight update is
// no longer equal to a fresh one.
func (e *Engine) Reset(sessionID string) {
	e.sessionID = sessionID
	e.epoch++
	e.seen = map[Fingerprint]bool{}
}

// Evaluate inspects one commitment-level event against the current
// DraftState and returns the intents that should fire, in the canonical
// matchup → my_counters → enemy_counters → build_guide order. Each
// returned intent's fingerprint is recorded immediately, before the
// caller dispatches it, so a dispatch failure never causes a repeat.
func (e *Engine) Evaluate(state draft.State, kind Kind, pick draft.Pick) []Intent {
	var intents []Intent
	for _, feature := range lcu.FeatureOrder {
		cfg := e.featureConfig(feature)
		if !cfg.Enabled {
			continue
		}
		if !e.triggerMatches(cfg, kind) {
			continue
		}
		intent, ok := e.build(state, feature, kind, pick)
		if !ok {
			continue
		}
		if e.seen[intent.Fingerprint] {
			continue
		}
		e.seen[intent.Fingerprint] = true
		intents = append(intents, intent)
	}
	return intents
}

func (e *Engine) featureConfig(f Feature) config.FeatureConfig {
	switch f {
	case FeatureMatchup:
		return e.features.Matchup
	case FeatureMyCounters:
		return e.features.MyCounters
	case FeatureEnemyCounters:
		return e.features.EnemyCounters
	case FeatureBuildGuide:
		return e.features.BuildGuide
	default:
		return config.FeatureConfig{}
	}
}

func (e *Engine) triggerMatches(cfg config.FeatureConfig, kind Kind) bool {
	switch kind {
	case KindHover:
		return cfg.Trigger == config.TriggerHover
	case KindPick:
		return cfg.Trigger == config.TriggerPick
	case KindLockIn:
		return cfg.Trigger == config.TriggerLockIn
	case KindGameStart:
		return cfg.OpenInGame
	default:
		return false
	}
}

// build assembles the Intent for one feature, returning ok=false when a
// required input (§4.8 point 3) is missing.
func (e *Engine) build(state draft.State, feature Feature, kind Kind, pick draft.Pick) (Intent, bool) {
	local, ok := state.LocalPick()
	if !ok || local.ChampionID == 0 {
		return Intent{}, false
	}
	localChamp, ok := e.registry.ByID(local.ChampionID)
	if !ok {
		return Intent{}, false
	}

	switch feature {
	case FeatureMatchup:
		opp, ok := state.OpposingPickInLane(local.AssignedLane)
		if !ok || local.AssignedLane == lcu.RoleUnknown || opp.ChampionID == 0 {
			return Intent{}, false
		}
		oppChamp, ok := e.registry.ByID(opp.ChampionID)
		if !ok {
			return Intent{}, false
		}
		return Intent{
			URL:     e.matchupURL(localChamp, oppChamp, local.AssignedLane),
			Feature: feature,
			Fingerprint: Fingerprint{
				Feature: feature, Kind: kind, ChampionID: local.ChampionID, OpponentID: opp.ChampionID,
				Role: local.AssignedLane, SessionID: e.sessionID, PhaseEpoch: e.epoch,
			},
		}, true

	case FeatureMyCounters:
		return Intent{
			URL:     e.countersURL(localChamp, local.AssignedLane),
			Feature: feature,
			Fingerprint: Fingerprint{
				Feature: feature, Kind: kind, ChampionID: local.ChampionID,
				Role: local.AssignedLane, SessionID: e.sessionID, PhaseEpoch: e.epoch,
			},
		}, true

	case FeatureEnemyCounters:
		if pick.Team != lcu.TeamEnemy || !pick.Completed || pick.ChampionID == 0 {
			return Intent{}, false
		}
		enemyChamp, ok := e.registry.ByID(pick.ChampionID)
		if !ok {
			return Intent{}, false
		}
		return Intent{
			URL:     e.countersURL(enemyChamp, pick.AssignedLane),
			Feature: feature,
			Fingerprint: Fingerprint{
				Feature: feature, Kind: kind, ChampionID: pick.ChampionID,
				Role: pick.AssignedLane, SessionID: e.sessionID, PhaseEpoch: e.epoch,
			},
		}, true

	case FeatureBuildGuide:
		return Intent{
			URL:     e.buildURL(localChamp, local.AssignedLane),
			Feature: feature,
			Fingerprint: Fingerprint{
				Feature: feature, Kind: kind, ChampionID: local.ChampionID,
				Role: local.AssignedLane, SessionID: e.sessionID, PhaseEpoch: e.epoch,
			},
		}, true

	default:
		return Intent{}, false
	}
}

func (e *Engine) matchupURL(local, opp champions.Champion, lane lcu.Role) string {
	path := fmt.Sprintf("/champion/%s/matchup/%s", name(local), name(opp))
	return e.baseURL + withRole(path, lane)
}

func (e *Engine) countersURL(champ champions.Champion, lane lcu.Role) string {
	path := fmt.Sprintf("/champion/%s/counters", name(champ))
	return e.baseURL + withRole(path, lane)
}

func (e *Engine) buildURL(champ champions.Champion, lane lcu.Role) string {
	path := fmt.Sprintf("/champion/%s/build", name(champ))
	return e.baseURL + withRole(path, lane)
}

func name(c champions.Champion) string {
	return champions.NormaliseName(c.CanonicalName)
}

func withRole(path string, lane lcu.Role) string {
	if lane == lcu.RoleUnknown || lane == "" {
		return path
	}
	return path + "/" + string(lane)
}
