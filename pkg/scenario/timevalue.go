package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TimeValue is a scalar scenario field that is either the literal "auto"
// (resolved later by the Timing Resolver, spec.md §4.2) or a fixed
// duration expressed in seconds from simulation start.
type TimeValue struct {
	Auto    bool
	Seconds float64
}

// UnmarshalYAML implements custom decoding for the "auto" | duration union.
func (t *TimeValue) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return t.fromRaw(raw)
}

func (t *TimeValue) fromRaw(raw interface{}) error {
	switch v := raw.(type) {
	case string:
		if v == "auto" {
			t.Auto = true
			return nil
		}
		secs, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("time value: %w", err)
		}
		t.Seconds = secs
		return nil
	case int:
		t.Seconds = float64(v)
		return nil
	case int64:
		t.Seconds = float64(v)
		return nil
	case float64:
		t.Seconds = v
		return nil
	default:
		return fmt.Errorf("time value: unsupported type %T", raw)
	}
}

// FixedTime constructs a resolved (non-auto) TimeValue.
func FixedTime(seconds float64) TimeValue {
	return TimeValue{Seconds: seconds}
}

func (t TimeValue) String() string {
	if t.Auto {
		return "auto"
	}
	return FormatDuration(t.Seconds)
}
