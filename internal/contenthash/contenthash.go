// Package contenthash provides the content-addressed identity hashing used
// by the Build Planner (spec.md §4.3: "content-addressed by (commit,
// patches_hash, flags)") and by the deterministic random sub-stream keying
// (spec.md §5, §9). Both reuse the same primitive: a fixed-size,
// hex-printable digest over a canonically-joined byte sequence, following
// the shape of btcsuite's chainhash.Hash that the teacher already imports
// for transaction identity.
package contenthash

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const sep = "\x00"

// Digest is a 32-byte content-addressed identity, printable as hex.
type Digest = chainhash.Hash

// Of computes the digest of the canonical (sorted, NUL-joined) form of
// parts. Order of equal multisets never changes the result.
func Of(parts ...string) Digest {
	sorted := append([]string(nil), parts...)
	sort.Strings(sorted)
	return chainhash.HashH([]byte(strings.Join(sorted, sep)))
}

// OfOrdered computes the digest of parts joined in the given order. Use
// this instead of Of when argument order is semantically meaningful (e.g.
// commit, then patch set, then flags — where patch set and flags are
// independently order-normalized before being passed in).
func OfOrdered(parts ...string) Digest {
	return chainhash.HashH([]byte(strings.Join(parts, sep)))
}

// BuildIdentity computes the content-addressed identity of a binary build:
// (commit, sorted patch set, sorted build flags). Two BuildPlans for the
// same binary name with the same BuildIdentity are the same build; a
// differing BuildIdentity for the same binary name is a BuildPlanConflict.
func BuildIdentity(commit string, patches []string, flags []string) Digest {
	sortedPatches := append([]string(nil), patches...)
	sort.Strings(sortedPatches)
	sortedFlags := append([]string(nil), flags...)
	sort.Strings(sortedFlags)
	return OfOrdered(commit, strings.Join(sortedPatches, ","), strings.Join(sortedFlags, ","))
}

// StreamSeed derives a 64-bit seed for a named random sub-stream from the
// scenario's global seed, a stream name, and an optional agent id. The
// same three inputs always produce the same seed (spec.md §5: "every
// stochastic choice draws from a named sub-stream derived from
// (scenario_seed, stream_name, agent_id)").
func StreamSeed(scenarioSeed int64, streamName string, agentID string) uint64 {
	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], uint64(scenarioSeed))
	d := OfOrdered(string(seedBuf[:]), streamName, agentID)
	return binary.LittleEndian.Uint64(d[:8])
}
