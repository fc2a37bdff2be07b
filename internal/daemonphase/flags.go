package daemonphase

import (
	"sort"
	"strings"
)

// parseFlagList turns a `--key=value` / `--key` flag list into a
// key->value map (bare flags map to the empty string).
func parseFlagList(flags []string) map[string]string {
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		name := strings.TrimPrefix(f, "--")
		if i := strings.IndexByte(name, '='); i >= 0 {
			out[name[:i]] = name[i+1:]
		} else {
			out[name] = ""
		}
	}
	return out
}

// mergeFlags folds general defaults, the group's *_options override map,
// and per-agent attributes into one flag set, with later inputs winning
// on key collision (spec.md §4.6 "merged command-line: general defaults
// ← group options ← attributes (highest priority wins)"). The result is
// rendered back to `--key=value` / `--key` form, sorted by key for
// deterministic emission.
func mergeFlags(defaults []string, groupOptions, attributes map[string]string) []string {
	merged := parseFlagList(defaults)
	for k, v := range groupOptions {
		merged[strings.TrimPrefix(k, "--")] = v
	}
	for k, v := range attributes {
		if _, known := merged[k]; known {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := merged[k]; v != "" {
			out = append(out, "--"+k+"="+v)
		} else {
			out = append(out, "--"+k)
		}
	}
	return out
}
