package expand

import (
	"fmt"

	"github.com/monerosim/monerosim/pkg/agent"
	"github.com/monerosim/monerosim/pkg/scenario"
)

// resolveTimeSeries implements the per-field resolution order from
// spec.md §4.1 step 2 for a duration-typed field: an explicit list wins,
// then an explicit or default stagger applied to the base value, else the
// base value is broadcast unchanged. An "auto" base is broadcast as-is;
// the Timing Resolver (C3) owns resolving it per agent.
func resolveTimeSeries(fields map[string]interface{}, baseKey, staggerKey string, count int, defaultStagger *scenario.StaggerSpec, scenarioSeed int64, streamName string) ([]agent.Time, error) {
	if list, ok := getList(fields, baseKey); ok {
		if len(list) != count {
			return nil, fmt.Errorf("field %q: list length %d does not match agent count %d", baseKey, len(list), count)
		}
		out := make([]agent.Time, count)
		for k, v := range list {
			s, ok := asString(v)
			if !ok {
				return nil, fmt.Errorf("field %q[%d]: unsupported type %T", baseKey, k, v)
			}
			tv, err := timeValueFromString(s)
			if err != nil {
				return nil, fmt.Errorf("field %q[%d]: %w", baseKey, k, err)
			}
			out[k] = toAgentTime(tv)
		}
		return out, nil
	}

	base, found, err := getTimeValue(fields, baseKey)
	if err != nil {
		return nil, err
	}
	if !found {
		base = scenario.FixedTime(0)
	}

	out := make([]agent.Time, count)
	if base.Auto {
		for k := range out {
			out[k] = agent.Auto
		}
		return out, nil
	}

	var spec scenario.StaggerSpec
	haveSpec := false
	if staggerKey != "" {
		spec, haveSpec, err = getStaggerSpec(fields, staggerKey)
		if err != nil {
			return nil, err
		}
	}
	if !haveSpec && defaultStagger != nil {
		spec, haveSpec = *defaultStagger, true
	}

	if !haveSpec {
		for k := range out {
			out[k] = agent.Time(base.Seconds)
		}
		return out, nil
	}

	absolute := ApplyStagger(spec, base.Seconds, count, scenarioSeed, streamName)
	for k, v := range absolute {
		out[k] = agent.Time(v)
	}
	return out, nil
}

// resolveFloatSeries handles a list-or-scalar numeric field (e.g. hashrate).
func resolveFloatSeries(fields map[string]interface{}, key string, count int) ([]float64, error) {
	if list, ok := getList(fields, key); ok {
		if len(list) != count {
			return nil, fmt.Errorf("field %q: list length %d does not match agent count %d", key, len(list), count)
		}
		out := make([]float64, count)
		for k, v := range list {
			f, ok := numeric(v)
			if !ok {
				return nil, fmt.Errorf("field %q[%d]: unsupported type %T", key, k, v)
			}
			out[k] = f
		}
		return out, nil
	}
	v, ok := getFloat(fields, key)
	out := make([]float64, count)
	if ok {
		for k := range out {
			out[k] = v
		}
	}
	return out, nil
}

// resolveIntSeries handles a list-or-scalar integer field, defaulting to 0.
func resolveIntSeries(fields map[string]interface{}, key string, count int) ([]int, error) {
	floats, err := resolveFloatSeries(fields, key, count)
	if err != nil {
		return nil, err
	}
	out := make([]int, count)
	for k, f := range floats {
		out[k] = int(f)
	}
	return out, nil
}

// resolveStringSeriesWithDefault handles a list-or-scalar string field.
func resolveStringSeriesWithDefault(fields map[string]interface{}, key string, count int, def string) ([]string, error) {
	if list, ok := getList(fields, key); ok {
		if len(list) != count {
			return nil, fmt.Errorf("field %q: list length %d does not match agent count %d", key, len(list), count)
		}
		out := make([]string, count)
		for k, v := range list {
			s, ok := asString(v)
			if !ok {
				return nil, fmt.Errorf("field %q[%d]: unsupported type %T", key, k, v)
			}
			out[k] = s
		}
		return out, nil
	}
	v, ok := getString(fields, key)
	if !ok {
		v = def
	}
	out := make([]string, count)
	for k := range out {
		out[k] = v
	}
	return out, nil
}

func numeric(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, ok := getFloat(map[string]interface{}{"v": t}, "v")
		return f, ok
	default:
		return 0, false
	}
}
