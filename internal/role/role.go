// Package role infers a draft pick's lane when the LCU snapshot doesn't
// assign one itself (§4.6). It never overwrites a lane the snapshot
// already dictates — callers only reach for it on a fresh, unassigned
// pick.
package role

import (
	"sort"

	"github.com/lolscout/agent/internal/champions"
	"github.com/lolscout/agent/pkg/lcu"
)

// Infer returns the champion's most likely lane, breaking ties between
// equally-scored lanes by pickOrder (1-based position in the draft):
// earlier picks favour solo lanes (top/jungle), later picks favour
// bottom/support. Returns (lcu.RoleUnknown, false) when the champion
// carries no aptitude data at all.
func Infer(champ champions.Champion, pickOrder int) (lcu.Role, bool) {
	candidates := rankedRoles(champ, pickOrder)
	if len(candidates) == 0 {
		return lcu.RoleUnknown, false
	}
	return candidates[0].role, true
}

// AssignRow picks the empty draft row (indexed per lcu.Roles order) with
// the highest lane aptitude for champ. occupied[i] true means that row
// already holds a pick. Ties break by row index ascending — a separate
// rule from Infer's pick-order bias above: this is choosing where to
// place an already-known pick, not which lane to display as inferred.
// Returns -1 when every row with positive aptitude for this champion is
// already taken.
func AssignRow(champ champions.Champion, occupied [5]bool) int {
	best := -1
	bestScore := uint8(0)
	for row, r := range lcu.Roles {
		if occupied[row] {
			continue
		}
		if s := champ.LaneAptitude[r]; s > bestScore {
			bestScore = s
			best = row
		}
	}
	return best
}

type scoredRole struct {
	role  lcu.Role
	score uint8
}

func rankedRoles(champ champions.Champion, pickOrder int) []scoredRole {
	var out []scoredRole
	for _, r := range lcu.Roles {
		if s := champ.LaneAptitude[r]; s > 0 {
			out = append(out, scoredRole{role: r, score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return soloLanePriority(out[i].role, pickOrder) < soloLanePriority(out[j].role, pickOrder)
	})
	return out
}

// soloLanePriority ranks a lane for tie-breaking: 0 is most preferred.
func soloLanePriority(r lcu.Role, pickOrder int) int {
	early := pickOrder <= 2
	switch r {
	case lcu.RoleTop, lcu.RoleJungle:
		if early {
			return 0
		}
		return 2
	case lcu.RoleBottom, lcu.RoleSupport:
		if early {
			return 2
		}
		return 0
	default:
		return 1
	}
}
