// Package scenario decodes and validates the scenario YAML described in
// spec.md §3 and §6: the ordered mapping of {general, network, agents,
// timing} that is the sole input to the expansion pipeline (C1).
package scenario

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/monerosim/monerosim/internal/simerr"
)

// ScriptNames names the canonical per-agent script files that drive kind
// classification (spec.md §3's "Agent (post-expansion)" rules).
type ScriptNames struct {
	MinerDistributor string `yaml:"miner_distributor"`
	SimulationMonitor string `yaml:"simulation_monitor"`
	AutonomousMiner  string `yaml:"autonomous_miner"`
	RegularUser      string `yaml:"regular_user"`
}

func defaultScriptNames() ScriptNames {
	return ScriptNames{
		MinerDistributor:  "miner_distributor.py",
		SimulationMonitor: "simulation_monitor.py",
		AutonomousMiner:   "autonomous_miner.py",
		RegularUser:       "regular_user.py",
	}
}

// GeneralConfig carries simulation-wide settings (spec.md §3).
type GeneralConfig struct {
	StopTime       TimeValue   `yaml:"stop_time"`
	Seed           int64       `yaml:"seed"`
	LogLevel       string      `yaml:"log_level"`
	DaemonDefaults []string    `yaml:"daemon_defaults"`
	WalletDefaults []string    `yaml:"wallet_defaults"`
	DNSEnabled     bool        `yaml:"dns_enabled"`
	Scripts        ScriptNames `yaml:"scripts"`
	SpyClusterName string      `yaml:"spy_cluster_name"`
}

// NetworkConfig carries topology settings (spec.md §3).
type NetworkConfig struct {
	GMLPath  string   `yaml:"path"`
	PeerMode string   `yaml:"peer_mode"` // Dynamic | Hardcoded | Hybrid
	Topology string   `yaml:"topology"`  // Star | Mesh | Ring | Dag, optional
	Seeds    []string `yaml:"seeds"`     // optional explicit seed list
}

// AgentGroupEntry is one {group-id-pattern: fields} entry from the
// scenario's `agents` mapping, in authored order.
type AgentGroupEntry struct {
	Pattern string
	Fields  map[string]interface{}
}

var rangePattern = regexp.MustCompile(`^([^{]*)\{(\d+)\.\.(\d+)\}([^}]*)$`)

// IsRange reports whether the pattern is a `{lo..hi}` range group, and if
// so returns its prefix, suffix, start, end, and zero-padding width (taken
// from the start token, per spec.md §3).
func (e AgentGroupEntry) IsRange() (prefix, suffix string, start, end, width int, ok bool) {
	m := rangePattern.FindStringSubmatch(e.Pattern)
	if m == nil {
		return "", "", 0, 0, 0, false
	}
	prefix, startTok, endTok, suffix := m[1], m[2], m[3], m[4]
	var s, en int
	fmt.Sscanf(startTok, "%d", &s)
	fmt.Sscanf(endTok, "%d", &en)
	return prefix, suffix, s, en, len(startTok), true
}

// Scenario is the fully decoded scenario document.
type Scenario struct {
	General GeneralConfig
	Network NetworkConfig
	Agents  []AgentGroupEntry
	Timing  map[string]TimeValue
}

// UnmarshalYAML decodes the four recognized top-level keys, preserving
// agent-group authoring order (required for deterministic expansion,
// spec.md §4.1).
func (s *Scenario) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return simerr.New(simerr.ScenarioSyntax, "scenario document must be a mapping").
			WithLine(value.Line)
	}
	s.General.Scripts = defaultScriptNames()

	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]
		switch keyNode.Value {
		case "general":
			if err := valNode.Decode(&s.General); err != nil {
				return simerr.New(simerr.ScenarioSyntax, "decoding general").
					WithLine(keyNode.Line).WithCause(err)
			}
		case "network":
			if err := valNode.Decode(&s.Network); err != nil {
				return simerr.New(simerr.ScenarioSyntax, "decoding network").
					WithLine(keyNode.Line).WithCause(err)
			}
		case "agents":
			groups, err := decodeAgentGroups(valNode)
			if err != nil {
				return err
			}
			s.Agents = groups
		case "timing":
			if err := valNode.Decode(&s.Timing); err != nil {
				return simerr.New(simerr.ScenarioSyntax, "decoding timing").
					WithLine(keyNode.Line).WithCause(err)
			}
		default:
			return simerr.Newf(simerr.ScenarioSyntax, "unrecognized top-level key %q", keyNode.Value).
				WithLine(keyNode.Line)
		}
	}
	return nil
}

func decodeAgentGroups(node *yaml.Node) ([]AgentGroupEntry, error) {
	if node.Kind != yaml.MappingNode {
		return nil, simerr.New(simerr.ScenarioSyntax, "agents must be a mapping").WithLine(node.Line)
	}
	groups := make([]AgentGroupEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		var fields map[string]interface{}
		if err := valNode.Decode(&fields); err != nil {
			return nil, simerr.Newf(simerr.ScenarioSyntax, "decoding group %q", keyNode.Value).
				WithLine(keyNode.Line).WithCause(err)
		}
		groups = append(groups, AgentGroupEntry{Pattern: keyNode.Value, Fields: fields})
	}
	return groups, nil
}

// Load parses and decodes a scenario document from raw YAML bytes (C1).
func Load(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		if se, ok := err.(*simerr.Error); ok {
			return nil, se
		}
		return nil, simerr.New(simerr.ScenarioSyntax, "parsing scenario YAML").WithCause(err)
	}
	if len(s.Agents) == 0 {
		return nil, simerr.New(simerr.ScenarioSyntax, "scenario has no agents")
	}
	if s.Network.GMLPath == "" {
		return nil, simerr.New(simerr.ScenarioSyntax, "network.path is required")
	}
	switch s.Network.PeerMode {
	case "Dynamic", "Hardcoded", "Hybrid":
	default:
		return nil, simerr.Newf(simerr.ScenarioSyntax, "network.peer_mode must be Dynamic, Hardcoded, or Hybrid, got %q", s.Network.PeerMode)
	}
	return &s, nil
}
