// Package agent defines the post-expansion Agent record (spec.md §3) that
// flows through every later pipeline stage, and the registry projections
// written into the shared directory (spec.md §3 "Registry files").
package agent

// Kind classifies an agent's simulated role.
type Kind string

const (
	KindMiner       Kind = "Miner"
	KindUser        Kind = "User"
	KindRelay       Kind = "Relay"
	KindSpy         Kind = "Spy"
	KindDistributor Kind = "Distributor"
	KindMonitor     Kind = "Monitor"
)

// DaemonPhase is one contiguous run of a daemon binary (spec.md §3).
type DaemonPhase struct {
	Index        int      `json:"index"`
	BinaryName   string   `json:"binaryName"`
	ArtifactPath string   `json:"artifactPath,omitempty"`
	StartTime    Time     `json:"startTime"`
	StopTime     Time     `json:"stopTime"` // Forever for the final phase
	RPCPort      int      `json:"rpcPort"`
	P2PPort      int      `json:"p2pPort"`
	ZMQPort      int      `json:"zmqPort,omitempty"`
	Flags        []string `json:"flags"`
	SeedPeers    []string `json:"seedPeers"` // ip:port, ordered
	LogPath      string   `json:"logPath,omitempty"`
}

// WalletPhase is the parallel wallet-rpc process derived when a wallet
// binary is declared for a group (spec.md §4.6).
type WalletPhase struct {
	BinaryName       string   `json:"binaryName"`
	ArtifactPath     string   `json:"artifactPath,omitempty"`
	StartTime        Time     `json:"startTime"`
	StopTime         Time     `json:"stopTime"`
	WalletRPCPort    int      `json:"walletRpcPort"`
	DaemonRPCAddress string   `json:"daemonRpcAddress"`
	Flags            []string `json:"flags"`
}

// ScriptInvocation is the external Python agent-runtime process bound to
// this agent, if any (spec.md §1: "an external collaborator").
type ScriptInvocation struct {
	Name      string   `json:"name"`
	Args      []string `json:"args"`
	StartTime Time     `json:"startTime"`
}

// Agent is a fully expanded, fully addressed simulated participant
// (spec.md §3's "Agent (post-expansion)").
type Agent struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Group       string   `json:"group"`       // originating group-id pattern
	GroupIndex  int      `json:"groupIndex"`  // ascending position within the group
	SubnetGroup string   `json:"subnetGroup,omitempty"`

	DaemonPhases []DaemonPhase     `json:"daemonPhases,omitempty"`
	Wallet       *WalletPhase      `json:"wallet,omitempty"`
	Script       *ScriptInvocation `json:"script,omitempty"`

	StartTime Time `json:"startTime"`

	IP       string `json:"ip"`
	AS       int    `json:"as"`
	NodeID   int64  `json:"nodeId"`   // bound GML graph node id, distinct from AS
	HostName string `json:"hostName"` // Shadow host id

	// BandwidthDownKbps/BandwidthUpKbps are the bound GML node's
	// resolved bandwidth (spec.md §4.7 "each host has its IP,
	// bandwidth, and an ordered processes list").
	BandwidthDownKbps float64 `json:"bandwidthDownKbps,omitempty"`
	BandwidthUpKbps   float64 `json:"bandwidthUpKbps,omitempty"`

	Hashrate float64 `json:"hashrate,omitempty"`
	InPeers  int     `json:"inPeers,omitempty"`
	OutPeers int     `json:"outPeers,omitempty"`

	// DaemonOptions/WalletOptions are the group-authored flag overrides,
	// carried unmerged until the Daemon Phase Compiler folds them over
	// general.daemon_defaults/wallet_defaults (spec.md §4.6).
	DaemonOptions map[string]string `json:"daemonOptions,omitempty"`
	WalletOptions map[string]string `json:"walletOptions,omitempty"`

	Attributes map[string]string `json:"attributes,omitempty"`
}

// IsInitialMiner reports whether this agent is a miner whose first daemon
// phase starts at t=0 (spec.md §3 invariant 4: initial-miner hashrates
// must sum to 100).
func (a *Agent) IsInitialMiner() bool {
	if a.Kind != KindMiner {
		return false
	}
	if len(a.DaemonPhases) == 0 {
		return false
	}
	return a.DaemonPhases[0].StartTime == 0
}

// IsBootstrapParticipant reports whether this agent must have reached
// steady state before regular activity starts (spec.md §4.2): miners,
// daemon-only relays, and any user spawning within the first hour with an
// auto activity start.
func (a *Agent) IsBootstrapParticipant(activityStartIsAuto bool) bool {
	switch a.Kind {
	case KindMiner, KindRelay:
		return true
	case KindUser, KindSpy:
		return activityStartIsAuto && !a.StartTime.IsAuto() && a.StartTime < 3600
	default:
		return false
	}
}

// FinalPhase returns the agent's last daemon phase, or nil if it has none.
func (a *Agent) FinalPhase() *DaemonPhase {
	if len(a.DaemonPhases) == 0 {
		return nil
	}
	return &a.DaemonPhases[len(a.DaemonPhases)-1]
}
