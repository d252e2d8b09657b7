// Package champions provides the id <-> name and lane-aptitude lookup
// used by the draft model and trigger engine.
package champions

import (
	"strings"

	"github.com/lolscout/agent/pkg/lcu"
)

// Champion is the immutable, runtime-wide record for one champion.
type Champion struct {
	ID            uint32            `json:"id"`
	CanonicalName string            `json:"canonicalName"`
	DisplayNames  map[string]string `json:"displayNames"`
	LaneAptitude  map[lcu.Role]uint8 `json:"laneAptitude"`
}

// NormaliseName implements the §4.7 name normaliser: lowercase, strip
// apostrophes/spaces/periods, with one fixed historical override.
func NormaliseName(name string) string {
	if strings.EqualFold(name, "MonkeyKing") {
		return "wukong"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case '\'', ' ', '.':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
