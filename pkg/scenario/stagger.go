package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StaggerKind selects which stagger function a StaggerSpec represents
// (spec.md §4.1).
type StaggerKind int

const (
	// StaggerLinear is an arithmetic progression base, base+Δ, base+2Δ, …
	StaggerLinear StaggerKind = iota
	// StaggerAuto behaves as Batched when count >= 50, else Linear with Δ=5s.
	StaggerAuto
	// StaggerBatched uses doubling batch sizes capped at 200, 20-minute batch spacing.
	StaggerBatched
	// StaggerRandomRange draws a per-agent uniform offset from [Lo, Hi].
	StaggerRandomRange
)

// StaggerSpec is the `_stagger` companion field value: a function that
// converts one authored field into a per-agent sequence.
type StaggerSpec struct {
	Kind  StaggerKind
	Delta float64 // seconds, for StaggerLinear
	Lo    float64 // seconds, for StaggerRandomRange
	Hi    float64 // seconds, for StaggerRandomRange
}

// UnmarshalYAML decodes a stagger field: a duration scalar (linear), the
// scalar "auto" or "batched", or a {range: [lo, hi]} mapping.
func (s *StaggerSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var m struct {
			Range []string `yaml:"range"`
		}
		if err := value.Decode(&m); err != nil {
			return fmt.Errorf("stagger: %w", err)
		}
		if len(m.Range) != 2 {
			return fmt.Errorf("stagger: range must have exactly 2 bounds, got %d", len(m.Range))
		}
		lo, err := ParseDuration(m.Range[0])
		if err != nil {
			return fmt.Errorf("stagger: range lo: %w", err)
		}
		hi, err := ParseDuration(m.Range[1])
		if err != nil {
			return fmt.Errorf("stagger: range hi: %w", err)
		}
		s.Kind = StaggerRandomRange
		s.Lo = lo
		s.Hi = hi
		return nil
	}

	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("stagger: %w", err)
	}
	switch raw {
	case "auto":
		s.Kind = StaggerAuto
		return nil
	case "batched":
		s.Kind = StaggerBatched
		return nil
	default:
		secs, err := ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("stagger: %w", err)
		}
		s.Kind = StaggerLinear
		s.Delta = secs
		return nil
	}
}

// Linear constructs a fixed-delta linear stagger spec.
func Linear(deltaSeconds float64) StaggerSpec {
	return StaggerSpec{Kind: StaggerLinear, Delta: deltaSeconds}
}
