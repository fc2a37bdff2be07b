package topology

import (
	"testing"

	"github.com/monerosim/monerosim/pkg/agent"
)

func TestDedup24KeepsAtMostOnePeerPerSubnet(t *testing.T) {
	candidates := []*agent.Agent{
		{ID: "a", IP: "10.0.0.1"},
		{ID: "b", IP: "10.0.0.2"}, // same /24 as a
		{ID: "c", IP: "10.0.1.1"},
	}
	out := Dedup24(candidates)
	if len(out) != 2 {
		t.Fatalf("expected 2 agents after /24 dedup, got %d: %v", len(out), out)
	}
	if out[0].ID != "a" || out[1].ID != "c" {
		t.Fatalf("expected dedup to keep the first agent per subnet in order, got %v", out)
	}
}

func TestDedup24PassesThroughUnparseableIPs(t *testing.T) {
	candidates := []*agent.Agent{{ID: "a", IP: "not-an-ip"}}
	out := Dedup24(candidates)
	if len(out) != 1 {
		t.Fatalf("expected unparseable IPs to pass through unfiltered, got %v", out)
	}
}

func TestAssignIPsGivesEveryAgentADistinctAddress(t *testing.T) {
	net := &Network{Nodes: []Node{{ID: 0, AS: 1, Region: "NA"}}}
	agents := []*agent.Agent{
		{ID: "a0", NodeID: 0},
		{ID: "a1", NodeID: 0},
		{ID: "a2", NodeID: 0},
	}
	if err := AssignIPs(net, agents, 42); err != nil {
		t.Fatalf("AssignIPs: %v", err)
	}
	seen := map[string]bool{}
	for _, a := range agents {
		if a.IP == "" {
			t.Fatalf("agent %s has no assigned IP", a.ID)
		}
		if seen[a.IP] {
			t.Fatalf("duplicate IP assigned: %s", a.IP)
		}
		seen[a.IP] = true
	}
}

func TestAssignIPsSpreadsAgentsInOneRegionAcrossDistinct24s(t *testing.T) {
	net := &Network{Nodes: []Node{{ID: 0, AS: 1, Region: "NA"}}}
	agents := []*agent.Agent{
		{ID: "spy0", NodeID: 0},
		{ID: "spy1", NodeID: 0},
		{ID: "spy2", NodeID: 0},
	}
	if err := AssignIPs(net, agents, 42); err != nil {
		t.Fatalf("AssignIPs: %v", err)
	}
	seen := map[string]bool{}
	for _, a := range agents {
		slash24, ok := ipTo24(a.IP)
		if !ok {
			t.Fatalf("agent %s got an unparseable IP %q", a.ID, a.IP)
		}
		if seen[slash24] {
			t.Fatalf("agent %s shares a /24 with another agent in the same region, got IP %s", a.ID, a.IP)
		}
		seen[slash24] = true
	}
}

func TestBindAssignsEveryAgentAHostNode(t *testing.T) {
	net := &Network{Nodes: []Node{{ID: 0, AS: 1}, {ID: 1, AS: 2}}}
	agents := []*agent.Agent{{ID: "a0"}, {ID: "a1"}, {ID: "a2"}}
	if err := Bind(net, agents); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	for _, a := range agents {
		if a.AS != 1 && a.AS != 2 {
			t.Fatalf("agent %s bound to unexpected AS %d", a.ID, a.AS)
		}
	}
}

func TestBindPropagatesNodeIDAndBandwidth(t *testing.T) {
	net := &Network{Nodes: []Node{{ID: 7, AS: 1, BandwidthDown: 50000, BandwidthUp: 8000}}}
	agents := []*agent.Agent{{ID: "a0"}}
	if err := Bind(net, agents); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if agents[0].NodeID != 7 {
		t.Fatalf("expected agent bound to node id 7, got %d", agents[0].NodeID)
	}
	if agents[0].BandwidthDownKbps != 50000 || agents[0].BandwidthUpKbps != 8000 {
		t.Fatalf("expected bandwidth copied from the bound node, got down=%v up=%v", agents[0].BandwidthDownKbps, agents[0].BandwidthUpKbps)
	}
}

func TestBindRejectsEmptyNetwork(t *testing.T) {
	net := &Network{}
	agents := []*agent.Agent{{ID: "a0"}}
	if err := Bind(net, agents); err == nil {
		t.Fatal("expected an error when the GML network has no nodes")
	}
}

func TestBindCoLocatesSharedSubnetGroup(t *testing.T) {
	net := &Network{Nodes: []Node{{ID: 0, AS: 1}, {ID: 1, AS: 2}, {ID: 2, AS: 3}}}
	agents := []*agent.Agent{
		{ID: "a0", SubnetGroup: "cluster-x"},
		{ID: "a1", SubnetGroup: "cluster-x"},
		{ID: "a2"},
	}
	if err := Bind(net, agents); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if agents[0].AS != agents[1].AS {
		t.Fatalf("expected agents sharing a subnet_group to bind to the same AS, got %d and %d", agents[0].AS, agents[1].AS)
	}
}
