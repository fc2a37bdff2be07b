package planemit

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/monerosim/monerosim/pkg/agent"
	"github.com/monerosim/monerosim/pkg/scenario"
)

// ShadowOptions carries the general-section values the Shadow plan's
// global block needs beyond what is already on each Agent (spec.md
// §4.7).
type ShadowOptions struct {
	StopTime         float64
	Seed             int64
	LogLevel         string
	Runahead         string
	ThreadsPerHost   int
	GMLPath          string
}

// BuildShadowPlan renders the full Shadow plan document as an ordered
// yaml.Node tree: a global section, a network section, and a hosts map
// keyed by agent id with agents emitted in scenario-then-range-index
// order (spec.md §4.7, §5 "Ordering").
func BuildShadowPlan(agents []*agent.Agent, opts ShadowOptions) *yaml.Node {
	root := mapping(
		kv{"general", globalSection(opts)},
		kv{"network", networkSection(opts)},
		kv{"hosts", hostsSection(agents)},
	)
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return doc
}

func globalSection(opts ShadowOptions) *yaml.Node {
	runahead := opts.Runahead
	if runahead == "" {
		runahead = "10ms"
	}
	threads := opts.ThreadsPerHost
	if threads == 0 {
		threads = 1
	}
	return mapping(
		kv{"stop_time", scalar(scenario.FormatDuration(opts.StopTime))},
		kv{"seed", scalar(opts.Seed)},
		kv{"log_level", scalar(opts.LogLevel)},
		kv{"runahead", scalar(runahead)},
		kv{"model_unblocked_syscall_latency", scalar(true)},
		kv{"parallelism", scalar(threads)},
	)
}

func networkSection(opts ShadowOptions) *yaml.Node {
	return mapping(
		kv{"graph", mapping(
			kv{"type", scalar("gml")},
			kv{"file", mapping(kv{"path", scalar(opts.GMLPath)})},
		)},
	)
}

func hostsSection(agents []*agent.Agent) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, a := range agents {
		n.Content = append(n.Content, scalar(a.ID), hostNode(a))
	}
	return n
}

func hostNode(a *agent.Agent) *yaml.Node {
	pairs := []kv{
		{"ip_addr", scalar(a.IP)},
		{"network_node_id", scalar(a.NodeID)},
		{"bandwidth_down", scalar(fmt.Sprintf("%.0f kilobit", a.BandwidthDownKbps))},
		{"bandwidth_up", scalar(fmt.Sprintf("%.0f kilobit", a.BandwidthUpKbps))},
		{"processes", processesSection(a)},
	}
	return mapping(pairs...)
}

func processesSection(a *agent.Agent) *yaml.Node {
	var procs []*yaml.Node
	for _, ph := range a.DaemonPhases {
		args := append([]string{}, ph.Flags...)
		for _, peer := range ph.SeedPeers {
			args = append(args, "--add-priority-node="+peer)
		}
		args = append(args,
			fmt.Sprintf("--p2p-bind-port=%d", ph.P2PPort),
			fmt.Sprintf("--rpc-bind-port=%d", ph.RPCPort),
			fmt.Sprintf("--zmq-rpc-bind-port=%d", ph.ZMQPort),
			"--log-file="+ph.LogPath,
		)
		p := []kv{
			{"path", scalar(ph.ArtifactPath)},
			{"args", strSeq(args)},
			{"start_time", scalar(scenario.FormatDuration(float64(ph.StartTime)))},
		}
		if !ph.StopTime.IsForever() {
			p = append(p, kv{"stop_time", scalar(scenario.FormatDuration(float64(ph.StopTime)))})
		}
		procs = append(procs, mapping(p...))
	}
	if a.Wallet != nil {
		w := a.Wallet
		p := []kv{
			{"path", scalar(w.ArtifactPath)},
			{"args", strSeq(append(append([]string{}, w.Flags...), fmt.Sprintf("--rpc-bind-port=%d", w.WalletRPCPort)))},
			{"start_time", scalar(scenario.FormatDuration(float64(w.StartTime)))},
		}
		procs = append(procs, mapping(p...))
	}
	if a.Script != nil {
		s := a.Script
		p := []kv{
			{"path", scalar(s.Name)},
			{"args", strSeq(s.Args)},
			{"start_time", scalar(scenario.FormatDuration(float64(s.StartTime)))},
		}
		procs = append(procs, mapping(p...))
	}
	return sequence(procs...)
}
