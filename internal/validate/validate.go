// Package validate implements the Cross-cutting Validator (C9): the
// checks run as gates after expansion, after timing resolution, and
// after topology/addressing (spec.md §4.8).
package validate

import (
	"fmt"

	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/internal/topology"
	"github.com/monerosim/monerosim/pkg/agent"
)

// PostExpansion checks that initial-miner hashrates sum to 100 and that
// daemon phase indices are contiguous from 0 (spec.md §4.8, invariant 4).
// It does not check port or IP uniqueness; addresses are not assigned yet.
func PostExpansion(agents []*agent.Agent) error {
	sum := 0.0
	for _, a := range agents {
		if a.IsInitialMiner() {
			sum += a.Hashrate
		}
	}
	if len(initialMiners(agents)) > 0 && !approxEqual(sum, 100) {
		return simerr.Newf(simerr.Validation, "initial miner hashrates sum to %.4f, expected 100", sum)
	}

	for _, a := range agents {
		for i, ph := range a.DaemonPhases {
			if ph.Index != i {
				return simerr.Newf(simerr.Validation, "agent %s daemon phases are not contiguous from 0", a.ID).WithAgent(a.ID)
			}
		}
	}
	return nil
}

// PostTiming checks that no phase time is still auto, phase spacing, and
// that phase stop times stay within the global stop time (spec.md §4.8).
// The bootstrap-before-miner-distributor ordering is checked by
// timing.Resolve, not here.
func PostTiming(agents []*agent.Agent, stopTimeGlobal float64) error {
	for _, a := range agents {
		for i := 0; i < len(a.DaemonPhases); i++ {
			ph := a.DaemonPhases[i]
			if ph.StartTime.IsAuto() || ph.StopTime.IsAuto() {
				return simerr.Newf(simerr.Validation, "agent %s phase %d has an unresolved auto time", a.ID, ph.Index).WithAgent(a.ID)
			}
			if !ph.StopTime.IsForever() && float64(ph.StopTime) > stopTimeGlobal {
				return simerr.Newf(simerr.Validation, "agent %s phase %d stop_time exceeds general.stop_time", a.ID, ph.Index).WithAgent(a.ID)
			}
			if i+1 < len(a.DaemonPhases) {
				next := a.DaemonPhases[i+1]
				if float64(next.StartTime-ph.StopTime) < 30 {
					return simerr.Newf(simerr.TimingOrdering, "agent %s: phase %d to %d gap is less than 30s", a.ID, ph.Index, next.Index).WithAgent(a.ID)
				}
			}
		}
	}
	return nil
}

// PostTopology checks /24 deduplication and that every agent's AS
// appears in the loaded GML network (spec.md §4.8).
func PostTopology(agents []*agent.Agent, net *topology.Network, seedPeers map[string][]*agent.Agent) error {
	knownAS := map[int]bool{}
	for _, n := range net.Nodes {
		knownAS[n.AS] = true
	}
	for _, a := range agents {
		if !knownAS[a.AS] {
			return simerr.Newf(simerr.Addressing, "agent %s is bound to AS %d which is absent from the GML network", a.ID, a.AS).WithAgent(a.ID)
		}
	}

	ipPort := map[string]bool{}
	for _, a := range agents {
		for _, ph := range a.DaemonPhases {
			key := fmt.Sprintf("%s:%d/p2p", a.IP, ph.P2PPort)
			if ipPort[key] {
				return simerr.Newf(simerr.Addressing, "duplicate (ip, p2p_port) binding for agent %s", a.ID).WithAgent(a.ID)
			}
			ipPort[key] = true
			rpcKey := fmt.Sprintf("%s:%d/rpc", a.IP, ph.RPCPort)
			if ipPort[rpcKey] {
				return simerr.Newf(simerr.Addressing, "duplicate (ip, rpc_port) binding for agent %s", a.ID).WithAgent(a.ID)
			}
			ipPort[rpcKey] = true
		}
	}

	for id, peers := range seedPeers {
		seen := map[string]bool{}
		for _, p := range peers {
			slash, ok := slash24(p.IP)
			if !ok {
				continue
			}
			if seen[slash] {
				return simerr.Newf(simerr.Addressing, "agent %s's seed list contains more than one peer from /24 %s", id, slash).WithAgent(id)
			}
			seen[slash] = true
		}
	}
	return nil
}

func initialMiners(agents []*agent.Agent) []*agent.Agent {
	var out []*agent.Agent
	for _, a := range agents {
		if a.IsInitialMiner() {
			out = append(out, a)
		}
	}
	return out
}

func approxEqual(a, b float64) bool {
	const eps = 1e-6
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}

func slash24(ip string) (string, bool) {
	var a, b, c, d int
	n, err := fmt.Sscanf(ip, "%d.%d.%d.%d", &a, &b, &c, &d)
	if n != 4 || err != nil {
		return "", false
	}
	return fmt.Sprintf("%d.%d.%d", a, b, c), true
}
