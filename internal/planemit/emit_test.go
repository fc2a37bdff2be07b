package planemit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/monerosim/monerosim/internal/buildplan"
	"github.com/monerosim/monerosim/pkg/agent"
)

func TestEmitWritesEveryArtifact(t *testing.T) {
	outDir := t.TempDir()
	sharedDir := t.TempDir()
	paths := Paths{OutputDir: outDir, SharedDir: sharedDir}

	agents := []*agent.Agent{relay("r0", "10.0.0.1")}
	doc := BuildShadowPlan(agents, ShadowOptions{StopTime: 3600})
	manifest := &buildplan.Manifest{Plans: []*buildplan.Plan{{BinaryName: "monerod", Identity: "abc"}}}

	if err := Emit(paths, agents, doc, manifest); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	for _, p := range []string{
		filepath.Join(outDir, "shadow_agents.yaml"),
		filepath.Join(outDir, "build_plan.json"),
		filepath.Join(sharedDir, "agent_registry.json"),
		filepath.Join(sharedDir, "miners.json"),
		filepath.Join(sharedDir, "wallets.json"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
	}
}

func TestEmitLeavesNoTempFilesBehind(t *testing.T) {
	outDir := t.TempDir()
	sharedDir := t.TempDir()
	paths := Paths{OutputDir: outDir, SharedDir: sharedDir}
	agents := []*agent.Agent{relay("r0", "10.0.0.1")}
	doc := BuildShadowPlan(agents, ShadowOptions{})
	manifest := &buildplan.Manifest{}

	if err := Emit(paths, agents, doc, manifest); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("expected no leftover temp files, found %s", e.Name())
		}
	}
}

func TestWriteFileAtomicCreatesMissingParentDirectories(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "nested", "deep", "file.txt")
	if err := writeFileAtomic(target, []byte("hello"), 0o644); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected file contents %q, got %q", "hello", data)
	}
}

func TestWriteFileAtomicOverwritesExistingFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "file.txt")
	if err := writeFileAtomic(target, []byte("first"), 0o644); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}
	if err := writeFileAtomic(target, []byte("second"), 0o644); err != nil {
		t.Fatalf("writeFileAtomic (overwrite): %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwritten contents %q, got %q", "second", data)
	}
}
