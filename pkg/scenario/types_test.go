package scenario

import "testing"

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	doc := []byte(`
general:
  stop_time: 1h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  miner_0:
    hashrate: 100
bogus: true
`)
	_, err := Load(doc)
	if err == nil {
		t.Fatal("expected an error for an unrecognized top-level key")
	}
}

func TestLoadRequiresNetworkPath(t *testing.T) {
	doc := []byte(`
general:
  stop_time: 1h
network:
  peer_mode: Dynamic
agents:
  miner_0:
    hashrate: 100
`)
	_, err := Load(doc)
	if err == nil {
		t.Fatal("expected an error when network.path is missing")
	}
}

func TestLoadPreservesAgentGroupOrder(t *testing.T) {
	doc := []byte(`
general:
  stop_time: 1h
network:
  path: net.gml
  peer_mode: Hardcoded
  topology: Star
agents:
  "user_{1..3}":
    script: regular_user.py
  miner_0:
    hashrate: 100
`)
	s, err := Load(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Agents) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(s.Agents))
	}
	if s.Agents[0].Pattern != "user_{1..3}" {
		t.Fatalf("expected first group to be user_{1..3}, got %q", s.Agents[0].Pattern)
	}
	if s.Agents[1].Pattern != "miner_0" {
		t.Fatalf("expected second group to be miner_0, got %q", s.Agents[1].Pattern)
	}
}

func TestAgentGroupEntryIsRange(t *testing.T) {
	e := AgentGroupEntry{Pattern: "user_{001..010}"}
	prefix, suffix, start, end, width, ok := e.IsRange()
	if !ok {
		t.Fatal("expected a range match")
	}
	if prefix != "user_" || suffix != "" || start != 1 || end != 10 || width != 3 {
		t.Fatalf("unexpected parse: prefix=%q suffix=%q start=%d end=%d width=%d", prefix, suffix, start, end, width)
	}

	single := AgentGroupEntry{Pattern: "miner_0"}
	if _, _, _, _, _, ok := single.IsRange(); ok {
		t.Fatal("expected a singleton pattern to not match as a range")
	}
}
