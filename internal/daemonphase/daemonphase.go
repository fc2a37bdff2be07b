// Package daemonphase implements the Daemon Phase Compiler (C7): it
// allocates ports and merges flags for every agent's daemon and wallet
// process descriptors, and injects the C6 seed peer list into the daemon
// ones (spec.md §4.6).
package daemonphase

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/pkg/agent"
)

const (
	basePortP2P    = 28080
	basePortRPC    = 18080
	basePortZMQ    = 18082
	basePortWallet = 38080
)

// Options carries the general-section defaults and runtime paths the
// compiler needs.
type Options struct {
	DaemonDefaults []string
	WalletDefaults []string
	ShadowDataDir  string

	// ArtifactPaths maps a binary name to the on-disk path the Build
	// Planner (C4) resolved it to, so each emitted process descriptor
	// is actually executable (spec.md §3 "binary_name resolves to an
	// on-disk path through C4").
	ArtifactPaths map[string]string
}

// Compile assigns ports (by the agent's position in scenario-and-range
// order, spec.md §5 "Ordering"), merges command-line flags, injects
// `--disable-seed-nodes`/`--testnet`, sets log file paths, and attaches
// the C6 seed peer list to every daemon phase. Wallet phases get their
// own port, merged flags, and daemon address, but no seed peers.
func Compile(agents []*agent.Agent, seedPeers map[string][]*agent.Agent, opts Options) error {
	portsByAgent := make(map[string]int, len(agents))
	for i, a := range agents {
		portsByAgent[a.ID] = i
	}

	used := map[string]bool{}
	for _, a := range agents {
		hostIndex := portsByAgent[a.ID]
		p2p := overridePort(a, "p2p_port", basePortP2P+hostIndex)
		rpc := overridePort(a, "rpc_port", basePortRPC+hostIndex)
		zmq := overridePort(a, "zmq_port", basePortZMQ+hostIndex)

		for i := range a.DaemonPhases {
			ph := &a.DaemonPhases[i]
			ph.P2PPort = p2p
			ph.RPCPort = rpc
			ph.ZMQPort = zmq
			ph.Flags = mergeFlags(opts.DaemonDefaults, a.DaemonOptions, a.Attributes)
			ph.Flags = append(ph.Flags, "--disable-seed-nodes", "--testnet")
			ph.SeedPeers = seedPeerStrings(seedPeers[a.ID], portsByAgent)
			ph.LogPath = logPath(opts.ShadowDataDir, a.ID, ph.Index)
			ph.ArtifactPath = opts.ArtifactPaths[ph.BinaryName]
		}

		if a.Wallet != nil {
			wp := a.Wallet
			wp.WalletRPCPort = overridePort(a, "wallet_rpc_port", basePortWallet+hostIndex)
			wp.DaemonRPCAddress = fmt.Sprintf("127.0.0.1:%d", rpc)
			wp.Flags = mergeFlags(opts.WalletDefaults, a.WalletOptions, a.Attributes)
			wp.Flags = append(wp.Flags, "--daemon-address="+wp.DaemonRPCAddress)
			wp.ArtifactPath = opts.ArtifactPaths[wp.BinaryName]
		}

		key := fmt.Sprintf("%s:%d", a.IP, p2p)
		if used[key] {
			return simerr.Newf(simerr.Validation, "duplicate (ip, p2p_port) binding %s", key).WithAgent(a.ID)
		}
		used[key] = true
		rpcKey := fmt.Sprintf("%s:%d", a.IP, rpc)
		if used[rpcKey] {
			return simerr.Newf(simerr.Validation, "duplicate (ip, rpc_port) binding %s", rpcKey).WithAgent(a.ID)
		}
		used[rpcKey] = true
	}
	return nil
}

func overridePort(a *agent.Agent, attrKey string, def int) int {
	if v, ok := a.Attributes[attrKey]; ok {
		var p int
		if _, err := fmt.Sscanf(v, "%d", &p); err == nil {
			return p
		}
	}
	return def
}

// seedPeerStrings renders an agent's resolved seed peers into
// `ip:p2p_port` form, lexicographically sorted (spec.md §5 "seed peer
// lists are lexicographically sorted after scoring ties are broken").
func seedPeerStrings(peers []*agent.Agent, portsByAgent map[string]int) []string {
	out := make([]string, 0, len(peers))
	for _, p := range peers {
		hostIndex := portsByAgent[p.ID]
		out = append(out, fmt.Sprintf("%s:%d", p.IP, overridePort(p, "p2p_port", basePortP2P+hostIndex)))
	}
	sort.Strings(out)
	return out
}

// logPath is the per-phase log file path under the Shadow data
// directory (spec.md §4.6).
func logPath(shadowDataDir, agentID string, phaseIndex int) string {
	return filepath.Join(shadowDataDir, "hosts", agentID, fmt.Sprintf("monerod_%d.log", phaseIndex))
}
