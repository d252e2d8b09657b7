package role

import (
	"testing"

	"github.com/lolscout/agent/internal/champions"
	"github.com/lolscout/agent/pkg/lcu"
)

func TestInfer_NoDataReturnsUnknown(t *testing.T) {
	champ := champions.Champion{ID: 1, LaneAptitude: map[lcu.Role]uint8{}}
	if _, ok := Infer(champ, 1); ok {
		t.Fatalf("expected Infer to fail for a champion with no aptitude data")
	}
}

func TestInfer_PicksHighestScore(t *testing.T) {
	champ := champions.Champion{ID: 1, LaneAptitude: map[lcu.Role]uint8{
		lcu.RoleTop:    5,
		lcu.RoleJungle: 9,
	}}
	got, ok := Infer(champ, 1)
	if !ok || got != lcu.RoleJungle {
		t.Fatalf("Infer() = (%v, %v), want (jungle, true)", got, ok)
	}
}

func TestInfer_TieBreaksByPickOrder(t *testing.T) {
	champ := champions.Champion{ID: 1, LaneAptitude: map[lcu.Role]uint8{
		lcu.RoleTop:    7,
		lcu.RoleSupport: 7,
	}}

	early, _ := Infer(champ, 1)
	if early != lcu.RoleTop {
		t.Fatalf("early pick tie-break = %v, want top", early)
	}

	late, _ := Infer(champ, 5)
	if late != lcu.RoleSupport {
		t.Fatalf("late pick tie-break = %v, want support", late)
	}
}

func TestAssignRow_SkipsOccupiedRows(t *testing.T) {
	champ := champions.Champion{ID: 1, LaneAptitude: map[lcu.Role]uint8{
		lcu.RoleMiddle: 9,
		lcu.RoleTop:    4,
	}}
	var occupied [5]bool
	occupied[2] = true // middle row already taken

	row := AssignRow(champ, occupied)
	if row != 0 { // top row
		t.Fatalf("AssignRow() = %d, want 0 (top)", row)
	}
}

func TestAssignRow_ReturnsMinusOneWhenNoAptitudeRowIsFree(t *testing.T) {
	champ := champions.Champion{ID: 1, LaneAptitude: map[lcu.Role]uint8{lcu.RoleMiddle: 9}}
	var occupied [5]bool
	occupied[2] = true

	if row := AssignRow(champ, occupied); row != -1 {
		t.Fatalf("AssignRow() = %d, want -1", row)
	}
}

// Lux carries equal aptitude for middle and support. AssignRow must
// break the tie by row index ascending (middle, row 2) regardless of
// how late the pick came — unlike Infer, which would favour support
// for a late pick order. This is the rule §4.5 actually specifies for
// enemy placement, distinct from §4.6's pick-order-biased inference.
func TestAssignRow_TiesBreakByRowIndexNotPickOrder(t *testing.T) {
	lux := champions.Champion{ID: 99, LaneAptitude: map[lcu.Role]uint8{
		lcu.RoleSupport: 7,
		lcu.RoleMiddle:  7,
	}}
	var occupied [5]bool

	if row := AssignRow(lux, occupied); row != 2 {
		t.Fatalf("AssignRow() = %d, want 2 (middle)", row)
	}

	// Unlike AssignRow, Infer's tie-break is pick-order-biased: a late
	// pick favours support over middle for the same aptitude data.
	if late, _ := Infer(lux, 5); late != lcu.RoleSupport {
		t.Fatalf("Infer() for a late pick = %v, want support (contrast case)", late)
	}
}
