package daemonphase

import (
	"testing"

	"github.com/monerosim/monerosim/pkg/agent"
)

func relay(id, ip string) *agent.Agent {
	return &agent.Agent{
		ID: id,
		IP: ip,
		DaemonPhases: []agent.DaemonPhase{
			{Index: 0, BinaryName: "monerod", StartTime: 0, StopTime: agent.Forever},
		},
	}
}

func TestCompileAssignsSequentialPorts(t *testing.T) {
	agents := []*agent.Agent{relay("r0", "10.0.0.1"), relay("r1", "10.0.0.2")}
	opts := Options{ShadowDataDir: "/tmp/shadow"}
	if err := Compile(agents, map[string][]*agent.Agent{}, opts); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if agents[0].DaemonPhases[0].P2PPort != basePortP2P {
		t.Errorf("agent 0 p2p port = %d, want %d", agents[0].DaemonPhases[0].P2PPort, basePortP2P)
	}
	if agents[1].DaemonPhases[0].P2PPort != basePortP2P+1 {
		t.Errorf("agent 1 p2p port = %d, want %d", agents[1].DaemonPhases[0].P2PPort, basePortP2P+1)
	}
}

func TestCompileMergesDefaultsAndGroupOptions(t *testing.T) {
	a := relay("r0", "10.0.0.1")
	a.DaemonOptions = map[string]string{"--max-connections-per-ip": "5"}
	opts := Options{DaemonDefaults: []string{"--max-connections-per-ip=3", "--db-sync-mode=safe"}}
	if err := Compile([]*agent.Agent{a}, map[string][]*agent.Agent{}, opts); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	found := false
	for _, f := range a.DaemonPhases[0].Flags {
		if f == "--max-connections-per-ip=5" {
			found = true
		}
		if f == "--max-connections-per-ip=3" {
			t.Fatalf("expected the group override to replace the default flag, found %q", f)
		}
	}
	if !found {
		t.Fatalf("expected the group-overridden flag in %v", a.DaemonPhases[0].Flags)
	}
}

func TestCompileInjectsDisableSeedNodesAndTestnet(t *testing.T) {
	a := relay("r0", "10.0.0.1")
	if err := Compile([]*agent.Agent{a}, map[string][]*agent.Agent{}, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	has := func(flag string) bool {
		for _, f := range a.DaemonPhases[0].Flags {
			if f == flag {
				return true
			}
		}
		return false
	}
	if !has("--disable-seed-nodes") || !has("--testnet") {
		t.Fatalf("expected --disable-seed-nodes and --testnet, got %v", a.DaemonPhases[0].Flags)
	}
}

func TestCompileRejectsDuplicatePortBindings(t *testing.T) {
	a0 := relay("r0", "10.0.0.1")
	a1 := relay("r1", "10.0.0.1")
	a0.Attributes = map[string]string{"p2p_port": "30000"}
	a1.Attributes = map[string]string{"p2p_port": "30000"}
	if err := Compile([]*agent.Agent{a0, a1}, map[string][]*agent.Agent{}, Options{}); err == nil {
		t.Fatal("expected an error for two agents sharing the same (ip, p2p_port)")
	}
}

func TestCompileSetsArtifactPathFromBinaryName(t *testing.T) {
	a := relay("r0", "10.0.0.1")
	a.Wallet = &agent.WalletPhase{BinaryName: "monero-wallet-rpc"}
	opts := Options{ArtifactPaths: map[string]string{
		"monerod":           "/opt/build/monerod",
		"monero-wallet-rpc": "/opt/build/monero-wallet-rpc",
	}}
	if err := Compile([]*agent.Agent{a}, map[string][]*agent.Agent{}, opts); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a.DaemonPhases[0].ArtifactPath != "/opt/build/monerod" {
		t.Errorf("daemon phase artifact path = %q, want /opt/build/monerod", a.DaemonPhases[0].ArtifactPath)
	}
	if a.Wallet.ArtifactPath != "/opt/build/monero-wallet-rpc" {
		t.Errorf("wallet artifact path = %q, want /opt/build/monero-wallet-rpc", a.Wallet.ArtifactPath)
	}
}

func TestCompileLeavesArtifactPathEmptyWhenBinaryNotInManifest(t *testing.T) {
	a := relay("r0", "10.0.0.1")
	if err := Compile([]*agent.Agent{a}, map[string][]*agent.Agent{}, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a.DaemonPhases[0].ArtifactPath != "" {
		t.Errorf("expected empty artifact path when no build plan was supplied, got %q", a.DaemonPhases[0].ArtifactPath)
	}
}

func TestCompileOrdersSeedPeerStringsLexicographically(t *testing.T) {
	a := relay("r0", "10.0.0.1")
	p1 := relay("peer1", "10.0.0.9")
	p0 := relay("peer0", "10.0.0.2")
	agents := []*agent.Agent{a, p0, p1}
	seeds := map[string][]*agent.Agent{"r0": {p1, p0}}
	if err := Compile(agents, seeds, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got := a.DaemonPhases[0].SeedPeers
	if len(got) != 2 {
		t.Fatalf("expected 2 seed peer strings, got %v", got)
	}
	if got[0] > got[1] {
		t.Fatalf("expected seed peer strings in lexicographic order, got %v", got)
	}
}
