package agent

import "math"

// Time is a pipeline timestamp in seconds from simulation start. Between
// the Expansion Engine (C2) and the Timing Resolver (C3) it may still be
// Auto — every field typed Time must satisfy IsAuto() == false by the
// time the Cross-cutting Validator's post-timing gate runs (spec.md §3
// invariant 5: "Every reference to auto resolves to a finite time").
type Time float64

// Auto is the sentinel value for a scenario field whose value is the
// literal "auto", not yet resolved by the Timing Resolver.
const Auto Time = Time(-1)

// Forever marks a DaemonPhase's StopTime when it is the agent's final
// phase (spec.md §3: "stop_time = ∞ for the final phase").
const Forever Time = Time(math.MaxFloat64)

// IsAuto reports whether this value is still the unresolved "auto" sentinel.
func (t Time) IsAuto() bool { return t == Auto }

// IsForever reports whether this value represents an open-ended phase.
func (t Time) IsForever() bool { return t == Forever }

// Seconds returns the resolved value as a float64. Calling this on an
// Auto value is a programming error in any stage downstream of C3.
func (t Time) Seconds() float64 { return float64(t) }
