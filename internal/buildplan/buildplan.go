// Package buildplan implements the Build Planner (C4): for each distinct
// binary name referenced by any daemon phase or wallet, it produces a
// BuildPlan descriptor consumed by an external builder, detecting
// conflicting demands for the same name via content-addressed identity
// (spec.md §4.3, §9 "Binary variant identity").
package buildplan

import (
	"sort"

	"github.com/monerosim/monerosim/internal/contenthash"
	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/pkg/agent"
)

// Plan is one binary's build descriptor (spec.md §4.3).
type Plan struct {
	BinaryName     string   `json:"binaryName"`
	RepoURL        string   `json:"repoUrl"`
	CommitOrBranch string   `json:"commitOrBranch"`
	PatchSet       []string `json:"patchSet,omitempty"`
	BuildFlags     []string `json:"buildFlags,omitempty"`
	ArtifactPath   string   `json:"artifactPath,omitempty"`
	Identity       string   `json:"identity"` // contenthash.BuildIdentity, hex
}

// Manifest is the build_plan.json document (spec.md §4.7).
type Manifest struct {
	Plans []*Plan `json:"plans"`
}

// Spec carries the raw build coordinates a caller (typically the CLI's
// `plan` command, reading its --build-spec JSON file) supplies per
// binary name; the engine only knows names until this is given.
type Spec struct {
	RepoURL        string
	CommitOrBranch string
	PatchSet       []string
	BuildFlags     []string
}

// Build builds one Plan per distinct binary name referenced by any agent's
// daemon phases or wallet, using specs to fill in source coordinates.
// Two groups referencing the same binary name with different commit,
// patch set, or build flags fail with BuildPlanConflict (spec.md §4.3,
// §9).
func Build(agents []*agent.Agent, specs map[string]Spec) (*Manifest, error) {
	seen := map[string]*Plan{}
	originGroup := map[string]string{}

	record := func(name, group string) error {
		if name == "" {
			return nil
		}
		s, ok := specs[name]
		if !ok {
			return simerr.Newf(simerr.BuildPlanConflict, "no build spec supplied for binary %q", name).WithGroup(group)
		}
		identity := contenthash.BuildIdentity(s.CommitOrBranch, s.PatchSet, s.BuildFlags).String()
		if existing, ok := seen[name]; ok {
			if existing.Identity != identity {
				return simerr.Newf(simerr.BuildPlanConflict,
					"binary %q has conflicting build plans from groups %q and %q",
					name, originGroup[name], group).WithGroup(group)
			}
			return nil
		}
		p := &Plan{
			BinaryName:     name,
			RepoURL:        s.RepoURL,
			CommitOrBranch: s.CommitOrBranch,
			PatchSet:       sortedCopy(s.PatchSet),
			BuildFlags:     sortedCopy(s.BuildFlags),
			Identity:       identity,
		}
		seen[name] = p
		originGroup[name] = group
		return nil
	}

	for _, a := range agents {
		for _, ph := range a.DaemonPhases {
			if err := record(ph.BinaryName, a.Group); err != nil {
				return nil, err
			}
		}
		if a.Wallet != nil {
			if err := record(a.Wallet.BinaryName, a.Group); err != nil {
				return nil, err
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	m := &Manifest{Plans: make([]*Plan, 0, len(names))}
	for _, name := range names {
		m.Plans = append(m.Plans, seen[name])
	}
	return m, nil
}

// Reentrant reports whether every plan in m already has an artifact,
// making the build a no-op (spec.md §4.3 "The plan is re-entrant").
func Reentrant(m *Manifest) bool {
	for _, p := range m.Plans {
		if p.ArtifactPath == "" {
			return false
		}
	}
	return true
}

// ApplyPrior copies ArtifactPath forward from a previously emitted
// manifest for any plan whose identity is unchanged, so re-running
// `plan` after a successful build does not force a rebuild (spec.md §4.3
// "prior-build-plan").
func ApplyPrior(m, prior *Manifest) {
	byName := make(map[string]*Plan, len(prior.Plans))
	for _, p := range prior.Plans {
		byName[p.BinaryName] = p
	}
	for _, p := range m.Plans {
		if old, ok := byName[p.BinaryName]; ok && old.Identity == p.Identity {
			p.ArtifactPath = old.ArtifactPath
		}
	}
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
