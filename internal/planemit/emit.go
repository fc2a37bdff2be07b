// Package planemit implements the Plan Emitter (C8): it writes the
// Shadow plan YAML, the agent registry JSON files, and the build plan
// manifest, all via scoped-acquire/write-temp/rename atomic writes
// (spec.md §4.7, §5).
package planemit

import (
	"encoding/json"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/monerosim/monerosim/internal/buildplan"
	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/pkg/agent"
)

// Paths names every artifact the emitter writes, rooted under the
// caller-chosen output directory and shared-state directory.
type Paths struct {
	OutputDir string
	SharedDir string
}

func (p Paths) shadowPlanPath() string     { return filepath.Join(p.OutputDir, "shadow_agents.yaml") }
func (p Paths) buildPlanPath() string      { return filepath.Join(p.OutputDir, "build_plan.json") }
func (p Paths) agentRegistryPath() string  { return filepath.Join(p.SharedDir, "agent_registry.json") }
func (p Paths) minersPath() string         { return filepath.Join(p.SharedDir, "miners.json") }
func (p Paths) walletsPath() string        { return filepath.Join(p.SharedDir, "wallets.json") }

// Emit writes every C8 artifact, each through its own atomic rename, so
// no artifact is ever left half-written. The artifacts are not committed
// as one unit: if a write errors, the artifacts written before it remain
// in place and Emit returns that first error.
func Emit(paths Paths, agents []*agent.Agent, shadowDoc *yaml.Node, manifest *buildplan.Manifest) error {
	shadowBytes, err := yaml.Marshal(shadowDoc)
	if err != nil {
		return simerr.New(simerr.EmitIO, "marshaling Shadow plan").WithCause(err)
	}
	if err := writeFileAtomic(paths.shadowPlanPath(), shadowBytes, 0o644); err != nil {
		return err
	}

	registry := agent.Registry{Agents: agents}
	if err := writeJSONAtomic(paths.agentRegistryPath(), registry); err != nil {
		return err
	}
	if err := writeJSONAtomic(paths.minersPath(), agent.Miners(agents)); err != nil {
		return err
	}
	if err := writeJSONAtomic(paths.walletsPath(), agent.Wallets(agents)); err != nil {
		return err
	}
	if err := writeJSONAtomic(paths.buildPlanPath(), manifest); err != nil {
		return err
	}
	return nil
}

func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return simerr.New(simerr.EmitIO, "marshaling JSON artifact").WithCause(err)
	}
	return writeFileAtomic(path, append(data, '\n'), 0o644)
}
