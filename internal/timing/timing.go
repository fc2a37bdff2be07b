// Package timing implements the Timing Resolver (C3): it resolves every
// remaining "auto" field left by the Expansion Engine using the fixed
// dependency graph described in spec.md §4.2, honoring explicit
// `timing:` overrides and rejecting cyclic or out-of-order results.
package timing

import (
	"math"
	"sort"

	"github.com/monerosim/monerosim/internal/randstream"
	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/pkg/agent"
	"github.com/monerosim/monerosim/pkg/scenario"
)

// Defaults for the activity-start batching described in spec.md §4.2.
const (
	defaultActivityBatchSize     = 10
	defaultActivityBatchInterval = 5 * 60
	defaultActivityJitterFrac    = 0.30
	minBootstrapEnd              = 4 * 3600
	bootstrapMultiplier          = 1.2
	phaseGap                     = 30
)

// Overrides carries the optional `timing:` section values (already
// decoded as scenario.TimeValue); an override wins over the derived
// value and every dependent reuses it (spec.md §4.2).
type Overrides map[string]scenario.TimeValue

// Resolved holds the global timing nodes computed once per scenario.
type Resolved struct {
	BootstrapEndTime      float64
	MDStartTime           float64
	DistributorWaitTime   float64
	ActivityBatchSize     int
	ActivityBatchInterval float64
	ActivityJitterFrac    float64
}

// Resolve runs C3 over the flat agent list, mutating auto fields in
// place and returning the resolved global nodes, which the pipeline
// stores in the expanded scenario document.
func Resolve(agents []*agent.Agent, overrides Overrides, scenarioSeed int64) (*Resolved, error) {
	if err := checkNoCycle(overrides); err != nil {
		return nil, err
	}

	res := &Resolved{
		ActivityBatchSize:     defaultActivityBatchSize,
		ActivityBatchInterval: defaultActivityBatchInterval,
		ActivityJitterFrac:    defaultActivityJitterFrac,
	}

	res.BootstrapEndTime = resolveBootstrapEndTime(agents, overrides)
	res.MDStartTime = resolveOverridable(overrides, "md_start_time", res.BootstrapEndTime)
	res.DistributorWaitTime = resolveOverridable(overrides, "miner-distributor.wait_time", res.MDStartTime)

	if err := resolveActivityStart(agents, overrides, res, scenarioSeed); err != nil {
		return nil, err
	}

	resolveDaemonPhaseStarts(agents)

	if err := checkOrdering(agents, res); err != nil {
		return nil, err
	}

	return res, nil
}

func resolveOverridable(overrides Overrides, key string, derived float64) float64 {
	if tv, ok := overrides[key]; ok && !tv.Auto {
		return tv.Seconds
	}
	return derived
}

// resolveBootstrapEndTime implements spec.md §4.2's
// `max(4h, last_bootstrap_spawn_time × 1.2)`.
func resolveBootstrapEndTime(agents []*agent.Agent, overrides Overrides) float64 {
	if tv, ok := overrides["bootstrap_end_time"]; ok && !tv.Auto {
		return tv.Seconds
	}
	last := 0.0
	for _, a := range agents {
		if !a.IsBootstrapParticipant(true) {
			continue
		}
		if a.StartTime.IsAuto() {
			continue
		}
		if s := float64(a.StartTime); s > last {
			last = s
		}
	}
	return math.Max(minBootstrapEnd, last*bootstrapMultiplier)
}

// resolveActivityStart dithers activity_start_time into batches, sorted
// by agent id, each user jittered by a deterministic per-agent draw
// (spec.md §4.2).
func resolveActivityStart(agents []*agent.Agent, overrides Overrides, res *Resolved, scenarioSeed int64) error {
	base := res.MDStartTime + 3600
	if tv, ok := overrides["activity_start_time"]; ok && !tv.Auto {
		base = tv.Seconds
	}

	var users []*agent.Agent
	for _, a := range agents {
		if a.Kind == agent.KindUser || a.Kind == agent.KindSpy {
			if a.StartTime.IsAuto() {
				users = append(users, a)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	for i, a := range users {
		bucket := i / res.ActivityBatchSize
		bucketStart := base + float64(bucket)*res.ActivityBatchInterval
		stream := randstream.New(scenarioSeed, "activity_start_time", a.ID)
		jittered := stream.JitterFraction(bucketStart, res.ActivityJitterFrac)
		a.StartTime = agent.Time(jittered)
		if a.Script != nil {
			a.Script.StartTime = a.StartTime
		}
	}
	return nil
}

// resolveDaemonPhaseStarts resolves daemon_0_start = agent.StartTime and
// daemon_{i+1}_start = daemon_i_stop + 30s for every agent independently
// (spec.md §4.2). Each agent's phases are already in index order.
func resolveDaemonPhaseStarts(agents []*agent.Agent) {
	for _, a := range agents {
		prevStop := a.StartTime
		for i := range a.DaemonPhases {
			ph := &a.DaemonPhases[i]
			if ph.Index == 0 {
				if ph.StartTime.IsAuto() {
					ph.StartTime = a.StartTime
				}
			} else if ph.StartTime.IsAuto() {
				ph.StartTime = prevStop + agent.Time(phaseGap)
			}
			if !ph.StopTime.IsForever() && !ph.StopTime.IsAuto() {
				prevStop = ph.StopTime
			}
		}
		if a.Wallet != nil && a.Wallet.StartTime.IsAuto() {
			a.Wallet.StartTime = a.StartTime
		}
	}
}

// checkOrdering enforces the post-timing validator gate inline so C3
// fails fast with a TimingOrdering error naming the offending agent
// (spec.md §4.8, §7, §8 property 8).
func checkOrdering(agents []*agent.Agent, res *Resolved) error {
	for _, a := range agents {
		for i := 0; i < len(a.DaemonPhases); i++ {
			ph := a.DaemonPhases[i]
			if ph.StartTime.IsAuto() || ph.StopTime.IsAuto() {
				return simerr.Newf(simerr.Validation, "agent %s phase %d has an unresolved auto time", a.ID, ph.Index).WithAgent(a.ID)
			}
			if !ph.StopTime.IsForever() && ph.StopTime < ph.StartTime+agent.Time(phaseGap) {
				return simerr.Newf(simerr.TimingOrdering, "agent %s phase %d stop_time must be at least %ds after start_time", a.ID, ph.Index, phaseGap).WithAgent(a.ID)
			}
			if i+1 < len(a.DaemonPhases) {
				next := a.DaemonPhases[i+1]
				if next.StartTime < ph.StopTime+agent.Time(phaseGap) {
					return simerr.Newf(simerr.TimingOrdering, "agent %s: phase %d start must be at least %ds after phase %d stop", a.ID, next.Index, phaseGap, ph.Index).WithAgent(a.ID)
				}
			}
		}
	}
	if res.MDStartTime < res.BootstrapEndTime {
		return simerr.New(simerr.TimingOrdering, "miner-distributor must not start before bootstrap finishes")
	}
	return nil
}

// checkNoCycle rejects a `timing:` override set that reintroduces a
// cycle into the fixed dependency DAG (spec.md §9 "Reject user-supplied
// overrides that would reintroduce a cycle").
func checkNoCycle(overrides Overrides) error {
	order := map[string]int{
		"bootstrap_end_time":           0,
		"md_start_time":                1,
		"miner-distributor.wait_time":  2,
		"activity_start_time":          3,
	}
	deps := map[string]string{
		"md_start_time":               "bootstrap_end_time",
		"miner-distributor.wait_time": "md_start_time",
		"activity_start_time":         "md_start_time",
	}
	for field, dep := range deps {
		if _, ok := overrides[field]; !ok {
			continue
		}
		if order[field] < order[dep] {
			return simerr.Newf(simerr.TimingCycle, "override of %q would precede its dependency %q", field, dep)
		}
	}
	return nil
}
