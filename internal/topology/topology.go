// Package topology implements the Topology & Addressing stage (C5): it
// loads the GML network description, assigns every agent a host node, an
// IPv4 address, an AS, and a sampled bandwidth, and exposes the Monero
// /24 deduplication rule the Seed Peer Selector (C6) depends on
// (spec.md §4.4).
package topology

import (
	"fmt"
	"os"
	"sort"

	"github.com/monerosim/monerosim/internal/randstream"
	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/pkg/agent"
)

// Node is one addressable GML network node, with its sampled or
// GML-declared attributes resolved.
type Node struct {
	ID              int64
	AS              int
	Region          string
	BandwidthDown   float64
	BandwidthUp     float64
	assignedAgentID string
}

// Network is the loaded, attribute-resolved GML topology.
type Network struct {
	Nodes []Node
	Edges []rawEdge
}

// Load parses the GML file at path and resolves every node's AS, region,
// and bandwidth (sampling a deterministic truncated normal for any node
// that omits an explicit bandwidth attribute).
func Load(path string, scenarioSeed int64) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, simerr.New(simerr.Addressing, "reading GML network file").WithCause(err)
	}
	rawNodes, rawEdges, err := parseGML(data)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, len(rawNodes))
	for i, rn := range rawNodes {
		region := rn.Region
		if region == "" {
			region = defaultRegion()
		}
		profile := profileFor(region)
		stream := randstream.New(scenarioSeed, "topology.bandwidth", fmt.Sprintf("node:%d", rn.ID))

		down := rn.BandwidthDown
		if !rn.BandwidthDownSet {
			down = stream.TruncatedNormal(profile.MeanDownKbps, profile.StddevDownKbps, profile.MinDownKbps, profile.MaxDownKbps)
		}
		up := rn.BandwidthUp
		if !rn.BandwidthUpSet {
			up = stream.TruncatedNormal(profile.MeanUpKbps, profile.StddevUpKbps, profile.MinUpKbps, profile.MaxUpKbps)
		}

		nodes[i] = Node{ID: rn.ID, AS: rn.AS, Region: region, BandwidthDown: down, BandwidthUp: up}
	}

	return &Network{Nodes: nodes, Edges: rawEdges}, nil
}

// Bind assigns each agent a host node: round-robin over the network's
// nodes by default, always co-locating agents that share a `subnet_group`
// hint onto the node of the group's first agent (spec.md §4.4 item 2).
func Bind(net *Network, agents []*agent.Agent) error {
	if len(net.Nodes) == 0 {
		return simerr.New(simerr.Addressing, "GML network has no nodes to bind agents to")
	}

	groupNode := map[string]int{}
	next := 0
	for _, a := range agents {
		idx := -1
		if a.SubnetGroup != "" {
			if n, ok := groupNode[a.SubnetGroup]; ok {
				idx = n
			}
		}
		if idx == -1 {
			idx = next % len(net.Nodes)
			next++
			if a.SubnetGroup != "" {
				groupNode[a.SubnetGroup] = idx
			}
		}
		node := &net.Nodes[idx]
		a.AS = node.AS
		a.NodeID = node.ID
		a.HostName = a.ID
		a.BandwidthDownKbps = node.BandwidthDown
		a.BandwidthUpKbps = node.BandwidthUp
		node.assignedAgentID = a.ID
	}
	return nil
}

// AssignIPs gives every agent a distinct IPv4 address. The first octet
// is drawn (deterministically, per agent) from the RIR octet list for
// the agent's AS region; the second and third octets come from an
// internal per-region /24 counter that advances once per agent, so
// agents in the same region land in distinct /24 blocks rather than
// sharing one /24 and differing only in the host octet (spec.md §4.4
// item 3, §4.4 item 4's /24 deduplication only makes sense if agents
// are not already crowded into a single /24 by construction).
func AssignIPs(net *Network, agents []*agent.Agent, scenarioSeed int64) error {
	nodeByID := make(map[int64]Node, len(net.Nodes))
	for _, n := range net.Nodes {
		nodeByID[n.ID] = n
	}

	counters := map[string]int{} // region -> flat 16-bit /24 counter
	used := map[string]bool{}

	for _, a := range agents {
		region := regionForAgent(a, nodeByID)
		octets := octetsFor(region)
		stream := randstream.New(scenarioSeed, "topology.ip", a.ID)
		first := octets[int(stream.Int63()%int64(len(octets)))]

		const hostOctet = 1
		var ip string
		for {
			rest := counters[region]
			counters[region] = rest + 1
			if rest > 0xffff {
				return simerr.Newf(simerr.Addressing, "IP address space exhausted for region %q", region)
			}
			b2 := (rest >> 8) & 0xff
			b3 := rest & 0xff
			ip = fmt.Sprintf("%d.%d.%d.%d", first, b2, b3, hostOctet)
			if !used[ip] {
				break
			}
		}
		used[ip] = true
		a.IP = ip
	}
	return nil
}

func regionForAgent(a *agent.Agent, nodeByID map[int64]Node) string {
	if n, ok := nodeByID[a.NodeID]; ok {
		return n.Region
	}
	return defaultRegion()
}

// Dedup24 filters candidates, keeping agents in their given order and
// admitting at most one per /24 (mask 0xffffff00), per Monero's own
// outbound peer policy (spec.md §4.4 item 4).
func Dedup24(candidates []*agent.Agent) []*agent.Agent {
	seen := map[uint32]bool{}
	out := make([]*agent.Agent, 0, len(candidates))
	for _, a := range candidates {
		slash24, ok := ipTo24(a.IP)
		if !ok {
			out = append(out, a)
			continue
		}
		if seen[slash24] {
			continue
		}
		seen[slash24] = true
		out = append(out, a)
	}
	return out
}

func ipTo24(ip string) (uint32, bool) {
	var a, b, c, d int
	n, err := fmt.Sscanf(ip, "%d.%d.%d.%d", &a, &b, &c, &d)
	if n != 4 || err != nil {
		return 0, false
	}
	return uint32(a)<<16 | uint32(b)<<8 | uint32(c), true
}

// sortNodesByID returns a copy of nodes sorted by ID, giving a stable
// traversal regardless of GML node declaration order.
func sortNodesByID(nodes []Node) []Node {
	out := append([]Node(nil), nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
