package timing

import (
	"testing"

	"github.com/monerosim/monerosim/pkg/agent"
	"github.com/monerosim/monerosim/pkg/scenario"
)

func minerAgent(id string, startTime agent.Time) *agent.Agent {
	return &agent.Agent{
		ID:        id,
		Kind:      agent.KindMiner,
		StartTime: startTime,
		DaemonPhases: []agent.DaemonPhase{
			{Index: 0, BinaryName: "monerod", StartTime: startTime, StopTime: agent.Forever},
		},
	}
}

func TestResolveBootstrapEndTimeHonorsMinimumAndMultiplier(t *testing.T) {
	agents := []*agent.Agent{
		minerAgent("miner_0", 0),
		minerAgent("miner_1", 5*3600), // 5h, above the 4h floor
	}
	res, err := Resolve(agents, Overrides{}, 42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := 5 * 3600 * bootstrapMultiplier
	if res.BootstrapEndTime != want {
		t.Fatalf("BootstrapEndTime = %v, want %v", res.BootstrapEndTime, want)
	}
}

func TestResolveBootstrapEndTimeFloorsAtFourHours(t *testing.T) {
	agents := []*agent.Agent{minerAgent("miner_0", 0)}
	res, err := Resolve(agents, Overrides{}, 42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.BootstrapEndTime != minBootstrapEnd {
		t.Fatalf("BootstrapEndTime = %v, want the %vs floor", res.BootstrapEndTime, minBootstrapEnd)
	}
}

func TestResolveOverrideWins(t *testing.T) {
	agents := []*agent.Agent{minerAgent("miner_0", 0)}
	overrides := Overrides{"bootstrap_end_time": scenario.FixedTime(1234)}
	res, err := Resolve(agents, overrides, 42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.BootstrapEndTime != 1234 {
		t.Fatalf("BootstrapEndTime = %v, want the overridden 1234", res.BootstrapEndTime)
	}
}

func TestResolveRejectsOverrideThatPrecedesItsDependency(t *testing.T) {
	agents := []*agent.Agent{minerAgent("miner_0", 0)}
	overrides := Overrides{
		"md_start_time":      scenario.FixedTime(100),
		"bootstrap_end_time": scenario.FixedTime(200),
	}
	if _, err := Resolve(agents, overrides, 1); err == nil {
		t.Fatal("expected an error when an overridden miner-distributor start precedes the overridden bootstrap end")
	}
}

func TestResolveIsDeterministicAcrossRuns(t *testing.T) {
	build := func() []*agent.Agent {
		return []*agent.Agent{
			minerAgent("miner_0", 0),
			{ID: "user_0", Kind: agent.KindUser, StartTime: agent.Auto, Script: &agent.ScriptInvocation{Name: "regular_user.py", StartTime: agent.Auto}},
			{ID: "user_1", Kind: agent.KindUser, StartTime: agent.Auto, Script: &agent.ScriptInvocation{Name: "regular_user.py", StartTime: agent.Auto}},
		}
	}
	a1 := build()
	a2 := build()
	if _, err := Resolve(a1, Overrides{}, 7); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := Resolve(a2, Overrides{}, 7); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := range a1 {
		if a1[i].StartTime != a2[i].StartTime {
			t.Fatalf("agent %d: resolved start time differs across identical runs: %v vs %v", i, a1[i].StartTime, a2[i].StartTime)
		}
	}
}

func TestResolveRejectsPhaseGapBelowThreshold(t *testing.T) {
	agents := []*agent.Agent{
		{
			ID:   "relay_0",
			Kind: agent.KindRelay,
			DaemonPhases: []agent.DaemonPhase{
				{Index: 0, BinaryName: "monerod", StartTime: 0, StopTime: 100},
				{Index: 1, BinaryName: "monerod", StartTime: 105, StopTime: agent.Forever},
			},
		},
	}
	if _, err := Resolve(agents, Overrides{}, 1); err == nil {
		t.Fatal("expected a TimingOrdering error for a sub-30s phase gap")
	}
}
