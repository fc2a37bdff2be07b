package expand

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/monerosim/monerosim/pkg/scenario"
)

var (
	daemonBinaryKey     = regexp.MustCompile(`^daemon_(\d+)$`)
	daemonStartKey      = regexp.MustCompile(`^daemon_(\d+)_start$`)
	daemonStopKey       = regexp.MustCompile(`^daemon_(\d+)_stop$`)
	daemonStopStaggerKey = regexp.MustCompile(`^daemon_(\d+)_stop_stagger$`)
)

func getRaw(fields map[string]interface{}, key string) (interface{}, bool) {
	v, ok := fields[key]
	return v, ok
}

func asString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func getString(fields map[string]interface{}, key string) (string, bool) {
	v, ok := getRaw(fields, key)
	if !ok {
		return "", false
	}
	return asString(v)
}

func getBool(fields map[string]interface{}, key string) (bool, bool) {
	v, ok := getRaw(fields, key)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch t {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

func getFloat(fields map[string]interface{}, key string) (float64, bool) {
	v, ok := getRaw(fields, key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func getInt(fields map[string]interface{}, key string) (int, bool) {
	f, ok := getFloat(fields, key)
	return int(f), ok
}

func getStringMap(fields map[string]interface{}, key string) (map[string]string, bool) {
	v, ok := getRaw(fields, key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(m))
	for k, vv := range m {
		if s, ok := asString(vv); ok {
			out[k] = s
		}
	}
	return out, true
}

func getList(fields map[string]interface{}, key string) ([]interface{}, bool) {
	v, ok := getRaw(fields, key)
	if !ok {
		return nil, false
	}
	l, ok := v.([]interface{})
	return l, ok
}

func getStringList(fields map[string]interface{}, key string) ([]string, bool) {
	l, ok := getList(fields, key)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(l))
	for _, v := range l {
		s, ok := asString(v)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func getTimeValue(fields map[string]interface{}, key string) (scenario.TimeValue, bool, error) {
	v, ok := getRaw(fields, key)
	if !ok {
		return scenario.TimeValue{}, false, nil
	}
	s, ok := asString(v)
	if !ok {
		return scenario.TimeValue{}, false, fmt.Errorf("field %q: unsupported type %T", key, v)
	}
	if s == "auto" {
		return scenario.TimeValue{Auto: true}, true, nil
	}
	secs, err := scenario.ParseDuration(s)
	if err != nil {
		return scenario.TimeValue{}, false, fmt.Errorf("field %q: %w", key, err)
	}
	return scenario.FixedTime(secs), true, nil
}

func getStaggerSpec(fields map[string]interface{}, key string) (scenario.StaggerSpec, bool, error) {
	v, ok := getRaw(fields, key)
	if !ok {
		return scenario.StaggerSpec{}, false, nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		rangeVal, ok := m["range"]
		if !ok {
			return scenario.StaggerSpec{}, false, fmt.Errorf("field %q: mapping stagger must have a range key", key)
		}
		list, ok := rangeVal.([]interface{})
		if !ok || len(list) != 2 {
			return scenario.StaggerSpec{}, false, fmt.Errorf("field %q: range must have exactly 2 bounds", key)
		}
		loS, _ := asString(list[0])
		hiS, _ := asString(list[1])
		lo, err := scenario.ParseDuration(loS)
		if err != nil {
			return scenario.StaggerSpec{}, false, fmt.Errorf("field %q: range lo: %w", key, err)
		}
		hi, err := scenario.ParseDuration(hiS)
		if err != nil {
			return scenario.StaggerSpec{}, false, fmt.Errorf("field %q: range hi: %w", key, err)
		}
		return scenario.StaggerSpec{Kind: scenario.StaggerRandomRange, Lo: lo, Hi: hi}, true, nil
	}
	s, ok := asString(v)
	if !ok {
		return scenario.StaggerSpec{}, false, fmt.Errorf("field %q: unsupported type %T", key, v)
	}
	switch s {
	case "auto":
		return scenario.StaggerSpec{Kind: scenario.StaggerAuto}, true, nil
	case "batched":
		return scenario.StaggerSpec{Kind: scenario.StaggerBatched}, true, nil
	default:
		secs, err := scenario.ParseDuration(s)
		if err != nil {
			return scenario.StaggerSpec{}, false, fmt.Errorf("field %q: %w", key, err)
		}
		return scenario.StaggerSpec{Kind: scenario.StaggerLinear, Delta: secs}, true, nil
	}
}

// daemonIndices returns the sorted set of daemon phase indices referenced
// by any daemon_{i}* key in fields.
func daemonIndices(fields map[string]interface{}) []int {
	seen := map[int]bool{}
	for key := range fields {
		for _, re := range []*regexp.Regexp{daemonBinaryKey, daemonStartKey, daemonStopKey, daemonStopStaggerKey} {
			if m := re.FindStringSubmatch(key); m != nil {
				i, _ := strconv.Atoi(m[1])
				seen[i] = true
			}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
