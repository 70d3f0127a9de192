package model

import (
	"encoding/json"
	"testing"
)

func TestServerIdentity(t *testing.T) {
	s := Server{IP: "1.2.3.4", Port: 27015, DefaultMap: "de_dust2"}
	if got := s.Identity(); got != "1.2.3.4:27015" {
		t.Fatalf("expected 1.2.3.4:27015, got %q", got)
	}
}

func TestSnapshotNormalize_NeverNil(t *testing.T) {
	var s Snapshot
	n := s.Normalize()
	if n.Servers == nil || n.Matches == nil || n.Groups == nil || n.Configs.Main == nil || n.Configs.Knife == nil {
		t.Fatalf("expected all lists non-nil, got %+v", n)
	}
}

func TestSnapshotNormalize_Copies(t *testing.T) {
	s := Snapshot{Groups: []string{"A"}}
	n := s.Normalize()
	n.Groups[0] = "B"
	if s.Groups[0] != "A" {
		t.Fatal("expected normalize to copy the groups list")
	}
}

func TestSnapshotDecodesFeedShape(t *testing.T) {
	raw := `{"servers":[{"ip":"1.2.3.4","port":27015,"default_map":"de_dust2"}],"groups":["A"],"configs":{"main":["m1"],"knife":["k1"]}}`
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	s = s.Normalize()
	if len(s.Servers) != 1 || s.Servers[0].DefaultMap != "de_dust2" {
		t.Fatalf("unexpected servers: %+v", s.Servers)
	}
	if len(s.Matches) != 0 {
		t.Fatalf("expected empty matches, got %+v", s.Matches)
	}
	if got := s.ServerIdentities(); len(got) != 1 || got[0] != "1.2.3.4:27015" {
		t.Fatalf("unexpected identities: %v", got)
	}
}
