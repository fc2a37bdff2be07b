package expand

import (
	"testing"

	"github.com/monerosim/monerosim/pkg/agent"
	"github.com/monerosim/monerosim/pkg/scenario"
)

func mustLoad(t *testing.T, doc string) *scenario.Scenario {
	t.Helper()
	s, err := scenario.Load([]byte(doc))
	if err != nil {
		t.Fatalf("scenario.Load: %v", err)
	}
	return s
}

func TestExpandRangeGroupProducesContiguousIDs(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 2h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  "user_{001..005}":
    script: regular_user.py
`)
	res, err := Expand(s)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(res.Agents) != 5 {
		t.Fatalf("expected 5 agents, got %d", len(res.Agents))
	}
	want := []string{"user_001", "user_002", "user_003", "user_004", "user_005"}
	for i, a := range res.Agents {
		if a.ID != want[i] {
			t.Errorf("agent %d: got id %q, want %q", i, a.ID, want[i])
		}
		if a.GroupIndex != i {
			t.Errorf("agent %d: got GroupIndex %d, want %d", i, a.GroupIndex, i)
		}
		if a.Kind != agent.KindUser {
			t.Errorf("agent %d: got kind %v, want User", i, a.Kind)
		}
	}
}

func TestExpandRejectsNonContiguousDaemonPhases(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 2h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  relay_0:
    daemon_0: monerod
    daemon_2: monerod
`)
	if _, err := Expand(s); err == nil {
		t.Fatal("expected an error for a non-contiguous daemon phase index set")
	}
}

func TestExpandLinearStaggerIsDeterministicAndMonotonic(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 2h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  "relay_{0..4}":
    daemon_0: monerod
    start_time: 0
    start_time_stagger: 5s
`)
	res1, err := Expand(s)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	res2, err := Expand(s)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for i := range res1.Agents {
		if res1.Agents[i].StartTime != res2.Agents[i].StartTime {
			t.Fatalf("non-deterministic start time at index %d: %v vs %v", i, res1.Agents[i].StartTime, res2.Agents[i].StartTime)
		}
	}
	for i := 1; i < len(res1.Agents); i++ {
		prev := res1.Agents[i-1].StartTime
		cur := res1.Agents[i].StartTime
		if cur-prev != agent.Time(5) {
			t.Errorf("agent %d: expected a 5s stagger step, got delta %v", i, cur-prev)
		}
	}
}

func TestExpandBroadcastsAutoBaseWithoutApplyingStagger(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 2h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  "user_{0..2}":
    script: regular_user.py
    start_time: auto
`)
	res, err := Expand(s)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for _, a := range res.Agents {
		if !a.StartTime.IsAuto() {
			t.Errorf("agent %s: expected an unresolved auto start time, got %v", a.ID, a.StartTime)
		}
	}
}

func TestExpandFinalPhaseStopTimeIsForever(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 2h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  relay_0:
    daemon_0: monerod
    daemon_0_start: 0
    daemon_0_stop: 30m
    daemon_1: monerod
    daemon_1_start: auto
`)
	res, err := Expand(s)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	a := res.Agents[0]
	if len(a.DaemonPhases) != 2 {
		t.Fatalf("expected 2 daemon phases, got %d", len(a.DaemonPhases))
	}
	if !a.DaemonPhases[1].StopTime.IsForever() {
		t.Fatalf("expected the final phase's stop time to be Forever, got %v", a.DaemonPhases[1].StopTime)
	}
	if a.DaemonPhases[0].StopTime.IsForever() {
		t.Fatalf("expected the non-final phase's stop time to remain as authored")
	}
}

func TestExpandUnrecognizedFieldsForwardAsAttributes(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 2h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  relay_0:
    daemon_0: monerod
    custom_tag: experiment-7
`)
	res, err := Expand(s)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got := res.Agents[0].Attributes["custom_tag"]; got != "experiment-7" {
		t.Fatalf("expected custom_tag attribute to be forwarded, got %q", got)
	}
}

func TestExpandRejectsDuplicateAgentIDsAcrossGroups(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 2h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  relay_0:
    daemon_0: monerod
  relay_1:
    daemon_0: monerod
`)
	s.Agents[1].Pattern = "relay_0"
	if _, err := Expand(s); err == nil {
		t.Fatal("expected an error for a duplicate agent id across groups")
	}
}

func TestStopStaggerContinuesAcrossGroupsForRollingUpgrade(t *testing.T) {
	s := mustLoad(t, `
general:
  stop_time: 4h
network:
  path: net.gml
  peer_mode: Dynamic
agents:
  "relay_{0..2}":
    daemon_0: monerod
    daemon_0_stop: 1h
    daemon_0_stop_stagger: 10s
    daemon_1: monerod_v2
    daemon_1_start: auto
  "relay_{3..5}":
    daemon_0: monerod
    daemon_0_stop: 1h
    daemon_0_stop_stagger: 10s
    daemon_1: monerod_v2
    daemon_1_start: auto
`)
	res, err := Expand(s)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(res.Agents) != 6 {
		t.Fatalf("expected 6 agents, got %d", len(res.Agents))
	}
	// The second group's stop-stagger offsets must continue from where the
	// first group's left off (3, 4, 5 -> offsets 30s, 40s, 50s), not restart
	// at 0s, since both groups share the same (phase index, delta) cadence.
	first := res.Agents[3].DaemonPhases[0].StopTime
	last := res.Agents[5].DaemonPhases[0].StopTime
	if last-first != agent.Time(20) {
		t.Fatalf("expected continuation offsets spaced by 10s across 3 agents (20s span), got %v", last-first)
	}
	prevGroupLast := res.Agents[2].DaemonPhases[0].StopTime
	if first-prevGroupLast != agent.Time(10) {
		t.Fatalf("expected the second group's first offset to continue 10s after the first group's last, got delta %v", first-prevGroupLast)
	}
}
