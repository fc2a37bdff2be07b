// Package pipeline wires C1-C9 together behind the three CLI verbs
// (expand, plan, validate), matching the data flow in spec.md §2:
// `Scenario → C1 → C2 → C3 → C9(partial) → C4 → C5 → C6 → C7 → C8`.
package pipeline

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/monerosim/monerosim/internal/buildplan"
	"github.com/monerosim/monerosim/internal/daemonphase"
	"github.com/monerosim/monerosim/internal/expand"
	"github.com/monerosim/monerosim/internal/planemit"
	"github.com/monerosim/monerosim/internal/seedpeers"
	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/internal/timing"
	"github.com/monerosim/monerosim/internal/topology"
	"github.com/monerosim/monerosim/internal/validate"
	"github.com/monerosim/monerosim/pkg/agent"
	"github.com/monerosim/monerosim/pkg/scenario"
)

// Expanded is the C1-C3 output written by `expand` and read back by
// `plan` (spec.md §6 CLI surface: "expand ... emit a fully-resolved
// scenario").
type Expanded struct {
	Agents   []*agent.Agent     `json:"agents"`
	General  scenario.GeneralConfig `json:"general"`
	Network  scenario.NetworkConfig `json:"network"`
	Resolved *timing.Resolved   `json:"resolved"`
}

// RunExpand executes C1-C3 (and the post-timing slice of C9) over a raw
// scenario document. seedOverride, when non-nil, replaces
// general.seed (spec.md §6 "expand ... --seed").
func RunExpand(log *logrus.Logger, data []byte, seedOverride *int64) (*Expanded, []simerr.Warning, error) {
	s, err := scenario.Load(data)
	if err != nil {
		return nil, nil, err
	}
	if seedOverride != nil {
		s.General.Seed = *seedOverride
	}
	log.Debugf("loaded scenario: %d agent groups", len(s.Agents))

	result, err := expand.Expand(s)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("expanded to %d agents", len(result.Agents))

	if err := validate.PostExpansion(result.Agents); err != nil {
		return nil, result.Warnings, err
	}

	overrides := timing.Overrides(s.Timing)
	resolved, err := timing.Resolve(result.Agents, overrides, s.General.Seed)
	if err != nil {
		return nil, result.Warnings, err
	}

	if err := validate.PostTiming(result.Agents, s.General.StopTime.Seconds); err != nil {
		return nil, result.Warnings, err
	}

	for _, w := range result.Warnings {
		log.Warn(w.String())
	}

	return &Expanded{
		Agents:   result.Agents,
		General:  s.General,
		Network:  s.Network,
		Resolved: resolved,
	}, result.Warnings, nil
}

// PlanOptions carries the inputs `plan` needs beyond the expanded
// scenario: where to write artifacts and how to build each binary.
type PlanOptions struct {
	OutputDir       string
	SharedDir       string
	BuildSpecs      map[string]buildplan.Spec
	PriorBuildPlan  *buildplan.Manifest
	ShadowRunahead  string
	ShadowThreads   int
}

// RunPlan executes C4-C8 over an already-expanded scenario.
func RunPlan(log *logrus.Logger, exp *Expanded, opts PlanOptions) error {
	manifest, err := buildplan.Build(exp.Agents, opts.BuildSpecs)
	if err != nil {
		return err
	}
	if opts.PriorBuildPlan != nil {
		buildplan.ApplyPrior(manifest, opts.PriorBuildPlan)
	}
	log.Debugf("build plan covers %d distinct binaries", len(manifest.Plans))

	artifactPaths := make(map[string]string, len(manifest.Plans))
	for _, p := range manifest.Plans {
		artifactPaths[p.BinaryName] = p.ArtifactPath
	}

	net, err := topology.Load(exp.Network.GMLPath, exp.General.Seed)
	if err != nil {
		return err
	}
	if err := topology.Bind(net, exp.Agents); err != nil {
		return err
	}
	if err := topology.AssignIPs(net, exp.Agents, exp.General.Seed); err != nil {
		return err
	}

	seedLists, warnings, err := seedpeers.Select(exp.Agents, exp.Network.PeerMode, exp.Network.Topology, exp.Network.Seeds)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warn(w.String())
	}

	if err := daemonphase.Compile(exp.Agents, seedLists, daemonphase.Options{
		DaemonDefaults: exp.General.DaemonDefaults,
		WalletDefaults: exp.General.WalletDefaults,
		ShadowDataDir:  opts.OutputDir,
		ArtifactPaths:  artifactPaths,
	}); err != nil {
		return err
	}

	if err := validate.PostTopology(exp.Agents, net, seedLists); err != nil {
		return err
	}

	shadowDoc := planemit.BuildShadowPlan(exp.Agents, planemit.ShadowOptions{
		StopTime:       exp.General.StopTime.Seconds,
		Seed:           exp.General.Seed,
		LogLevel:       exp.General.LogLevel,
		Runahead:       opts.ShadowRunahead,
		ThreadsPerHost: opts.ShadowThreads,
		GMLPath:        exp.Network.GMLPath,
	})

	if err := os.MkdirAll(opts.SharedDir, 0o755); err != nil {
		return simerr.New(simerr.EmitIO, "creating shared directory").WithCause(err)
	}

	return planemit.Emit(planemit.Paths{OutputDir: opts.OutputDir, SharedDir: opts.SharedDir}, exp.Agents, shadowDoc, manifest)
}

// MarshalExpanded serializes an Expanded scenario to the JSON document
// written by `expand -o EXPANDED` and read back by `plan --config` and
// `validate` (spec.md §6, §8 property 12 "CLI round-trip").
func MarshalExpanded(exp *Expanded) ([]byte, error) {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, simerr.New(simerr.EmitIO, "marshaling expanded scenario").WithCause(err)
	}
	return append(data, '\n'), nil
}

// UnmarshalExpanded parses the document written by MarshalExpanded.
func UnmarshalExpanded(data []byte) (*Expanded, error) {
	var exp Expanded
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, simerr.New(simerr.ScenarioSyntax, "parsing expanded scenario file").WithCause(err)
	}
	return &exp, nil
}

// DependencyGraph describes the fixed C3 timing dependency DAG for
// `expand --dump-graph` (spec.md §4.2, §6).
type DependencyGraph struct {
	Nodes []string   `json:"nodes"`
	Edges [][2]string `json:"edges"` // [from, to], from must resolve before to
}

// DumpGraph returns the fixed timing dependency graph. It does not
// depend on any particular scenario: the graph shape is the same for
// every run, only the resolved values differ.
func DumpGraph() DependencyGraph {
	return DependencyGraph{
		Nodes: []string{
			"bootstrap_end_time",
			"md_start_time",
			"miner-distributor.wait_time",
			"activity_start_time",
			"daemon_0_start",
			"daemon_{i+1}_start",
		},
		Edges: [][2]string{
			{"bootstrap_end_time", "md_start_time"},
			{"md_start_time", "miner-distributor.wait_time"},
			{"md_start_time", "activity_start_time"},
			{"activity_start_time", "daemon_0_start"},
			{"daemon_0_start", "daemon_{i+1}_start"},
		},
	}
}

// RunValidate runs C9 in full against an already-expanded scenario,
// without performing C4-C8 (spec.md §6 "validate FILE").
func RunValidate(exp *Expanded) error {
	if err := validate.PostExpansion(exp.Agents); err != nil {
		return err
	}
	if err := validate.PostTiming(exp.Agents, exp.General.StopTime.Seconds); err != nil {
		return err
	}
	return nil
}
