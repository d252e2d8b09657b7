package lcuevents

import (
	"testing"

	"github.com/lolscout/agent/internal/transport"
	"github.com/lolscout/agent/pkg/lcu"
)

func TestDecode_GameflowPhase(t *testing.T) {
	evt, err := Decode(transport.Frame{URI: gameflowPhaseURI, Data: []byte(`"ChampSelect"`)})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if evt == nil || evt.PhaseChanged == nil || evt.PhaseChanged.Phase != lcu.PhaseChampSelect {
		t.Fatalf("Decode() = %+v, want PhaseChanged{ChampSelect}", evt)
	}
}

func TestDecode_MalformedGameflowPhase(t *testing.T) {
	_, err := Decode(transport.Frame{URI: gameflowPhaseURI, Data: []byte(`{"not":"a string"}`)})
	if err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestDecode_IrrelevantURIIsSilentlyIgnored(t *testing.T) {
	evt, err := Decode(transport.Frame{URI: "/lol-chat/v1/conversations", Data: []byte(`{}`)})
	if evt != nil || err != nil {
		t.Fatalf("Decode() = (%+v, %v), want (nil, nil)", evt, err)
	}
}

func TestDecode_ChampSelectSession(t *testing.T) {
	body := `{
		"gameId": 12345,
		"localPlayerCellId": 1,
		"myTeam": [{"cellId":1,"championId":103,"assignedPosition":"MIDDLE"}],
		"theirTeam": [{"cellId":6,"championId":238}],
		"bans": {"myTeamBans":[1], "theirTeamBans":[2]},
		"actions": [[{"id":1,"actorCellId":1,"championId":103,"type":"pick","completed":true}]]
	}`
	evt, err := Decode(transport.Frame{URI: champSelectURI, Data: []byte(body)})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	snap := evt.ChampSelectSnapshot
	if snap == nil {
		t.Fatalf("expected a ChampSelectSnapshot")
	}
	if snap.SessionID != "game:12345" {
		t.Fatalf("SessionID = %q, want game:12345", snap.SessionID)
	}
	if len(snap.MyTeam) != 1 || snap.MyTeam[0].ChampionID != 103 {
		t.Fatalf("MyTeam = %+v", snap.MyTeam)
	}
	if len(snap.Bans) != 2 {
		t.Fatalf("Bans = %+v, want 2 entries", snap.Bans)
	}
}

func TestDecode_ChampSelectZeroGameIDYieldsEmptySessionID(t *testing.T) {
	evt, err := Decode(transport.Frame{URI: champSelectURI, Data: []byte(`{"gameId":0}`)})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if evt.ChampSelectSnapshot.SessionID != "" {
		t.Fatalf("SessionID = %q, want empty", evt.ChampSelectSnapshot.SessionID)
	}
}
