package agent

// Registry is the full agent_registry.json payload (spec.md §3).
type Registry struct {
	Agents []*Agent `json:"agents"`
}

// MinerEntry is one row of the miners.json projection.
type MinerEntry struct {
	ID        string  `json:"id"`
	IP        string  `json:"ip"`
	Hashrate  float64 `json:"hashrate"`
	StartTime Time    `json:"startTime"`
}

// WalletEntry is one row of the wallets.json projection.
type WalletEntry struct {
	ID            string `json:"id"`
	IP            string `json:"ip"`
	WalletRPCPort int    `json:"walletRpcPort"`
	DaemonAddress string `json:"daemonAddress"`
}

// Miners projects the registry down to miner agents (miners.json).
func Miners(agents []*Agent) []MinerEntry {
	out := make([]MinerEntry, 0)
	for _, a := range agents {
		if a.Kind != KindMiner {
			continue
		}
		out = append(out, MinerEntry{
			ID:        a.ID,
			IP:        a.IP,
			Hashrate:  a.Hashrate,
			StartTime: a.StartTime,
		})
	}
	return out
}

// Wallets projects the registry down to agents carrying a wallet phase
// (wallets.json).
func Wallets(agents []*Agent) []WalletEntry {
	out := make([]WalletEntry, 0)
	for _, a := range agents {
		if a.Wallet == nil {
			continue
		}
		out = append(out, WalletEntry{
			ID:            a.ID,
			IP:            a.IP,
			WalletRPCPort: a.Wallet.WalletRPCPort,
			DaemonAddress: a.Wallet.DaemonRPCAddress,
		})
	}
	return out
}
