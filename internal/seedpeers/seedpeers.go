// Package seedpeers implements the Seed Peer Selector (C6): it chooses,
// for every agent, an ordered list of seed peers admissible to monerod's
// own /24 deduplicating outbound policy, honoring the scenario's peer
// mode and optional topology template (spec.md §4.5).
package seedpeers

import (
	"fmt"
	"sort"

	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/internal/topology"
	"github.com/monerosim/monerosim/pkg/agent"
)

const defaultTopK = 5

// Peer is one resolved seed binding: an agent and the p2p port it should
// be dialed on.
type Peer struct {
	Agent *agent.Agent
	Port  int
}

// Select computes the seed peer list for every agent and returns it
// keyed by agent id, each list sorted by peer agent id (spec.md §4.5 "embedded as
// monerod --add-exclusive-node / --add-priority-node flags").
func Select(agents []*agent.Agent, peerMode, template string, explicitSeeds []string) (map[string][]*agent.Agent, []simerr.Warning, error) {
	daemonAgents := daemonCapableAgents(agents)
	byID := make(map[string]*agent.Agent, len(daemonAgents))
	for _, a := range daemonAgents {
		byID[a.ID] = a
	}

	out := map[string][]*agent.Agent{}
	var warnings []simerr.Warning

	switch peerMode {
	case "Hardcoded":
		adj, warns, err := topologyAdjacency(daemonAgents, template)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		for id, peers := range adj {
			out[id] = peers
		}
	case "Dynamic":
		dyn, err := dynamicSeedList(daemonAgents, explicitSeeds, byID)
		if err != nil {
			return nil, nil, err
		}
		for _, a := range daemonAgents {
			out[a.ID] = excludeSelf(dyn, a.ID)
		}
	case "Hybrid":
		adj, warns, err := topologyAdjacency(daemonAgents, template)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		dyn, err := dynamicSeedList(daemonAgents, explicitSeeds, byID)
		if err != nil {
			return nil, nil, err
		}
		for _, a := range daemonAgents {
			union := append([]*agent.Agent(nil), adj[a.ID]...)
			union = append(union, excludeSelf(dyn, a.ID)...)
			out[a.ID] = dedupAgents(union)
		}
	default:
		return nil, nil, simerr.Newf(simerr.Expansion, "unknown peer_mode %q", peerMode)
	}

	for id := range out {
		sort.Slice(out[id], func(i, j int) bool { return out[id][i].ID < out[id][j].ID })
	}

	return out, warnings, nil
}

func daemonCapableAgents(agents []*agent.Agent) []*agent.Agent {
	var out []*agent.Agent
	for _, a := range agents {
		if len(a.DaemonPhases) > 0 {
			out = append(out, a)
		}
	}
	return out
}

// topologyAdjacency implements the Star/Mesh/Ring/Dag templates
// (spec.md §4.5, §8 property 11).
func topologyAdjacency(agents []*agent.Agent, template string) (map[string][]*agent.Agent, []simerr.Warning, error) {
	n := len(agents)
	adj := make(map[string][]*agent.Agent, n)
	var warnings []simerr.Warning

	switch template {
	case "Star":
		if n < 2 {
			return nil, nil, simerr.New(simerr.Expansion, "Star topology requires at least 2 agents")
		}
		hub := agents[0]
		for i := 1; i < n; i++ {
			adj[agents[i].ID] = []*agent.Agent{hub}
			adj[hub.ID] = append(adj[hub.ID], agents[i])
		}
	case "Ring":
		if n < 3 {
			return nil, nil, simerr.New(simerr.Expansion, "Ring topology requires at least 3 agents")
		}
		for i := 0; i < n; i++ {
			prev := agents[(i-1+n)%n]
			next := agents[(i+1)%n]
			adj[agents[i].ID] = []*agent.Agent{prev, next}
		}
	case "Mesh":
		if n > 50 {
			warnings = append(warnings, simerr.Warning{Stage: "seedpeers", Msg: fmt.Sprintf("Mesh topology with %d agents exceeds the recommended 50-node limit", n)})
		}
		for i := 0; i < n; i++ {
			var peers []*agent.Agent
			for j := 0; j < n; j++ {
				if j != i {
					peers = append(peers, agents[j])
				}
			}
			adj[agents[i].ID] = peers
		}
	case "Dag":
		const fanInCap = 8
		for i := 0; i < n; i++ {
			lo := 0
			if i-fanInCap > 0 {
				lo = i - fanInCap
			}
			var peers []*agent.Agent
			for j := lo; j < i; j++ {
				peers = append(peers, agents[j])
			}
			adj[agents[i].ID] = peers
		}
	case "":
		// No template: Hardcoded mode with no explicit adjacency.
	default:
		return nil, nil, simerr.Newf(simerr.Expansion, "unknown topology template %q", template)
	}
	return adj, warnings, nil
}

// dynamicSeedList scores every daemon-capable agent and keeps the top K
// subject to /24 deduplication (spec.md §4.5 "Dynamic").
func dynamicSeedList(agents []*agent.Agent, explicitSeeds []string, byID map[string]*agent.Agent) ([]*agent.Agent, error) {
	if len(explicitSeeds) > 0 {
		out := make([]*agent.Agent, 0, len(explicitSeeds))
		for _, id := range explicitSeeds {
			a, ok := byID[id]
			if !ok {
				return nil, simerr.Newf(simerr.Addressing, "explicit seed %q is not a known daemon agent", id)
			}
			out = append(out, a)
		}
		return topology.Dedup24(out), nil
	}

	n := len(agents)
	scored := make([]*agent.Agent, n)
	copy(scored, agents)
	scores := make(map[string]float64, n)

	subnetCounts := map[string]int{}
	for _, a := range agents {
		if slash, ok := slash24(a.IP); ok {
			subnetCounts[slash]++
		}
	}

	for i, a := range agents {
		score := 20 * (1 - float64(i)/float64(n))
		if a.Kind == agent.KindMiner {
			score += 100
			score += a.Hashrate
		}
		if slash, ok := slash24(a.IP); ok && subnetCounts[slash] == 1 {
			score += 10
		}
		scores[a.ID] = score
	}

	sort.SliceStable(scored, func(i, j int) bool { return scores[scored[i].ID] > scores[scored[j].ID] })

	deduped := topology.Dedup24(scored)
	k := defaultTopK
	if k > len(deduped) {
		k = len(deduped)
	}
	return deduped[:k], nil
}

func excludeSelf(list []*agent.Agent, id string) []*agent.Agent {
	out := make([]*agent.Agent, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func dedupAgents(list []*agent.Agent) []*agent.Agent {
	seen := map[string]bool{}
	out := make([]*agent.Agent, 0, len(list))
	for _, a := range list {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

func slash24(ip string) (string, bool) {
	var a, b, c, d int
	n, err := fmt.Sscanf(ip, "%d.%d.%d.%d", &a, &b, &c, &d)
	if n != 4 || err != nil {
		return "", false
	}
	return fmt.Sprintf("%d.%d.%d", a, b, c), true
}
