// Package buildspec loads the build-source coordinates the Build
// Planner (C4) needs per binary name from a small JSON side file, since
// the scenario document itself only ever names binaries, never where to
// fetch and build them from (spec.md §4.3).
package buildspec

import (
	"encoding/json"
	"os"

	"github.com/monerosim/monerosim/internal/buildplan"
	"github.com/monerosim/monerosim/internal/simerr"
)

// entry mirrors buildplan.Spec with JSON tags; buildplan.Spec itself
// stays free of encoding concerns since it is also constructed directly
// by tests.
type entry struct {
	RepoURL        string   `json:"repoUrl"`
	CommitOrBranch string   `json:"commitOrBranch"`
	PatchSet       []string `json:"patchSet,omitempty"`
	BuildFlags     []string `json:"buildFlags,omitempty"`
}

// Load reads a JSON document mapping binary name to build coordinates,
// e.g. {"monerod": {"repoUrl": "...", "commitOrBranch": "release-v0.18"}}.
func Load(path string) (map[string]buildplan.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, simerr.New(simerr.BuildPlanConflict, "reading build spec file").WithCause(err)
	}
	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, simerr.New(simerr.BuildPlanConflict, "parsing build spec file").WithCause(err)
	}
	out := make(map[string]buildplan.Spec, len(raw))
	for name, e := range raw {
		out[name] = buildplan.Spec{
			RepoURL:        e.RepoURL,
			CommitOrBranch: e.CommitOrBranch,
			PatchSet:       e.PatchSet,
			BuildFlags:     e.BuildFlags,
		}
	}
	return out, nil
}
