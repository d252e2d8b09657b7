package champions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lolscout/agent/pkg/lcu"
	"go.uber.org/zap/zaptest"
)

func TestRegistry_LoadsEmbeddedData(t *testing.T) {
	reg, err := New(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if reg.Len() == 0 {
		t.Fatalf("expected embedded champion set to be non-empty")
	}

	ahri, ok := reg.ByID(103)
	if !ok || ahri.CanonicalName != "Ahri" {
		t.Fatalf("ByID(103) = (%+v, %v), want Ahri", ahri, ok)
	}

	byName, ok := reg.ByName("Ahri")
	if !ok || byName.ID != 103 {
		t.Fatalf("ByName(\"Ahri\") = (%+v, %v), want id 103", byName, ok)
	}
}

func TestRegistry_MonkeyKingNormalisesToWukong(t *testing.T) {
	reg, err := New(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	wukong, ok := reg.ByName("MonkeyKing")
	if !ok {
		t.Fatalf("expected embedded data to carry the MonkeyKing entry")
	}
	if got := NormaliseName(wukong.CanonicalName); got != "wukong" {
		t.Fatalf("NormaliseName(%q) = %q, want wukong", wukong.CanonicalName, got)
	}
}

func TestRegistry_RefreshPreservesLaneAptitude(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/versions.json":
			w.Write([]byte(`["14.1.1"]`))
		case "/cdn/14.1.1/data/en_US/champion.json":
			w.Write([]byte(`{"data":{"Ahri":{"key":"103","id":"Ahri","name":"Ahri","tags":["Mage"]}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	reg, err := New(zaptest.NewLogger(t), WithCDNBase(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	before, ok := reg.ByID(103)
	if !ok {
		t.Fatalf("expected embedded Ahri entry before refresh")
	}

	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	after, ok := reg.ByID(103)
	if !ok {
		t.Fatalf("expected Ahri entry after refresh")
	}
	if len(after.LaneAptitude) == 0 {
		t.Fatalf("Refresh() dropped embedded lane aptitude data")
	}
	if after.LaneAptitude[lcu.RoleMiddle] != before.LaneAptitude[lcu.RoleMiddle] {
		t.Fatalf("Refresh() changed lane aptitude: before=%v after=%v", before.LaneAptitude, after.LaneAptitude)
	}
}
