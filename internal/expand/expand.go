// Package expand implements the Expansion Engine (C2): it turns the
// scenario's grouped agent declarations into a flat, ordered list of
// agent.Agent records with every field resolved to a scalar, per spec.md
// §4.1.
package expand

import (
	"fmt"
	"sort"

	"github.com/monerosim/monerosim/internal/simerr"
	"github.com/monerosim/monerosim/pkg/agent"
	"github.com/monerosim/monerosim/pkg/scenario"
)

// recognizedFields names every group field the engine itself consumes;
// everything else is forwarded opaquely as an attribute (spec.md §4.1
// "Failures": "Unknown field keys are forwarded opaquely").
var recognizedFields = map[string]bool{
	"start_time":         true,
	"start_time_stagger": true,
	"hashrate":           true,
	"subnet_group":       true,
	"wallet":             true,
	"wallet_options":     true,
	"daemon_options":     true,
	"script":             true,
	"is_miner":           true,
	"in_peers":           true,
	"out_peers":          true,
}

type continuationKey struct {
	PhaseIndex int
	Delta      float64
}

// Result is the C2 output: the flat agent list plus any non-fatal
// warnings surfaced along the way (spec.md §7: warnings don't block).
type Result struct {
	Agents   []*agent.Agent
	Warnings []simerr.Warning
}

// Expand runs the Expansion Engine over every group in scenario order,
// agents within a group in ascending index order (spec.md §4.1 contract).
func Expand(s *scenario.Scenario) (*Result, error) {
	res := &Result{}
	stopStaggerCounters := map[continuationKey]int{}

	for _, group := range s.Agents {
		agents, warnings, err := expandGroup(s, group, stopStaggerCounters)
		if err != nil {
			return nil, err
		}
		res.Agents = append(res.Agents, agents...)
		res.Warnings = append(res.Warnings, warnings...)
	}

	seen := make(map[string]bool, len(res.Agents))
	for _, a := range res.Agents {
		if seen[a.ID] {
			return nil, simerr.Newf(simerr.Expansion, "duplicate agent id %q", a.ID).WithAgent(a.ID)
		}
		seen[a.ID] = true
	}

	return res, nil
}

func expandGroup(s *scenario.Scenario, group scenario.AgentGroupEntry, stopStaggerCounters map[continuationKey]int) ([]*agent.Agent, []simerr.Warning, error) {
	fields := group.Fields

	var ids []string
	prefix, suffix, start, end, width, isRange := group.IsRange()
	if isRange {
		if end < start {
			return nil, nil, simerr.Newf(simerr.Expansion, "range end %d precedes start %d", end, start).WithGroup(group.Pattern)
		}
		count := end - start + 1
		ids = make([]string, count)
		for k := 0; k < count; k++ {
			ids[k] = fmt.Sprintf("%s%0*d%s", prefix, width, start+k, suffix)
		}
	} else {
		ids = []string{group.Pattern}
	}
	count := len(ids)

	hasWallet := has(fields, "wallet")
	scriptName, hasScript := getString(fields, "script")
	indices := daemonIndices(fields)
	hasDaemon := len(indices) > 0

	if hasDaemon {
		for i, idx := range indices {
			if idx != i {
				return nil, nil, simerr.Newf(simerr.Expansion,
					"daemon phase indices must be contiguous starting at 0, got %v", indices).
					WithGroup(group.Pattern).WithField(fmt.Sprintf("daemon_%d", idx))
			}
		}
	}

	var warnings []simerr.Warning

	streamBase := "group:" + group.Pattern

	startStaggerDefault := defaultStartStagger(s.General.Scripts, count, scriptName, hasDaemon, hasWallet, hasScript)
	startTimes, err := resolveTimeSeries(fields, "start_time", "start_time_stagger", count, startStaggerDefault, s.General.Seed, streamBase+":start_time")
	if err != nil {
		return nil, nil, wrapGroupErr(err, group.Pattern, "start_time")
	}

	hashrates, err := resolveFloatSeries(fields, "hashrate", count)
	if err != nil {
		return nil, nil, wrapGroupErr(err, group.Pattern, "hashrate")
	}

	subnetGroups, err := resolveStringSeriesWithDefault(fields, "subnet_group", count, "")
	if err != nil {
		return nil, nil, wrapGroupErr(err, group.Pattern, "subnet_group")
	}

	inPeers, err := resolveIntSeries(fields, "in_peers", count)
	if err != nil {
		return nil, nil, wrapGroupErr(err, group.Pattern, "in_peers")
	}
	outPeers, err := resolveIntSeries(fields, "out_peers", count)
	if err != nil {
		return nil, nil, wrapGroupErr(err, group.Pattern, "out_peers")
	}

	isMinerAttr, _ := getBool(fields, "is_miner")

	walletOptions, _ := getStringMap(fields, "wallet_options")
	daemonOptions, _ := getStringMap(fields, "daemon_options")

	var walletBins []string
	if hasWallet {
		walletBins, err = resolveStringSeriesWithDefault(fields, "wallet", count, "")
		if err != nil {
			return nil, nil, wrapGroupErr(err, group.Pattern, "wallet")
		}
	}

	phasesByAgent := make([][]agent.DaemonPhase, count)
	for _, idx := range indices {
		phases, err := resolveDaemonPhase(fields, idx, count, s.General.Seed, streamBase, stopStaggerCounters)
		if err != nil {
			return nil, nil, wrapGroupErr(err, group.Pattern, fmt.Sprintf("daemon_%d", idx))
		}
		for k := 0; k < count; k++ {
			phasesByAgent[k] = append(phasesByAgent[k], phases[k])
		}
	}
	for k := 0; k < count; k++ {
		if n := len(phasesByAgent[k]); n > 0 {
			phasesByAgent[k][n-1].StopTime = agent.Forever
		}
	}

	attrKeys := unrecognizedKeys(fields)

	agents := make([]*agent.Agent, count)
	for k := 0; k < count; k++ {
		a := &agent.Agent{
			ID:          ids[k],
			Group:       group.Pattern,
			GroupIndex:  k,
			SubnetGroup: subnetGroups[k],
			StartTime:   startTimes[k],
			Hashrate:    hashrates[k],
			InPeers:     inPeers[k],
			OutPeers:    outPeers[k],
		}
		if len(phasesByAgent[k]) > 0 {
			a.DaemonPhases = phasesByAgent[k]
		}
		if hasWallet {
			a.Wallet = &agent.WalletPhase{
				BinaryName:       walletBins[k],
				StartTime:        startTimes[k],
				DaemonRPCAddress: "127.0.0.1",
			}
		}
		if len(walletOptions) > 0 {
			a.WalletOptions = walletOptions
		}
		if len(daemonOptions) > 0 {
			a.DaemonOptions = daemonOptions
		}
		if hasScript {
			a.Script = &agent.ScriptInvocation{Name: scriptName, StartTime: startTimes[k]}
		}
		a.Kind = classifyKind(s.General.Scripts, s.General.SpyClusterName, scriptName, hasScript, hasDaemon, hasWallet, isMinerAttr, a.SubnetGroup, inPeers[k], outPeers[k])
		if len(attrKeys) > 0 {
			a.Attributes = make(map[string]string, len(attrKeys))
			for _, key := range attrKeys {
				if v, ok := getString(fields, key); ok {
					a.Attributes[key] = v
				}
			}
		}
		agents[k] = a
	}

	return agents, warnings, nil
}

func resolveDaemonPhase(fields map[string]interface{}, idx, count int, seed int64, streamBase string, counters map[continuationKey]int) ([]agent.DaemonPhase, error) {
	binKey := fmt.Sprintf("daemon_%d", idx)
	startKey := fmt.Sprintf("daemon_%d_start", idx)
	stopKey := fmt.Sprintf("daemon_%d_stop", idx)
	stopStaggerKey := fmt.Sprintf("daemon_%d_stop_stagger", idx)

	bins, err := resolveStringSeriesWithDefault(fields, binKey, count, "")
	if err != nil {
		return nil, err
	}
	for _, b := range bins {
		if b == "" {
			return nil, fmt.Errorf("field %q: binary name is required", binKey)
		}
	}

	starts, err := resolveTimeSeries(fields, startKey, "", count, nil, seed, streamBase+":"+startKey)
	if err != nil {
		return nil, err
	}

	stops, err := resolveStopTimes(fields, stopKey, stopStaggerKey, idx, count, seed, streamBase, counters)
	if err != nil {
		return nil, err
	}

	out := make([]agent.DaemonPhase, count)
	for k := 0; k < count; k++ {
		out[k] = agent.DaemonPhase{
			Index:      idx,
			BinaryName: bins[k],
			StartTime:  starts[k],
			StopTime:   stops[k],
		}
	}
	return out, nil
}

// resolveStopTimes handles daemon_i_stop, applying the dedicated
// _stop_stagger field (default 30s) with cross-group continuation for
// the linear case (spec.md §4.1 item 4).
func resolveStopTimes(fields map[string]interface{}, stopKey, staggerKey string, idx, count int, seed int64, streamBase string, counters map[continuationKey]int) ([]agent.Time, error) {
	if list, ok := getList(fields, stopKey); ok {
		if len(list) != count {
			return nil, fmt.Errorf("field %q: list length %d does not match agent count %d", stopKey, len(list), count)
		}
		out := make([]agent.Time, count)
		for k, v := range list {
			s, ok := asString(v)
			if !ok {
				return nil, fmt.Errorf("field %q: unsupported list element type %T", stopKey, v)
			}
			tv, err := timeValueFromString(s)
			if err != nil {
				return nil, fmt.Errorf("field %q[%d]: %w", stopKey, k, err)
			}
			out[k] = toAgentTime(tv)
		}
		return out, nil
	}

	base, found, err := getTimeValue(fields, stopKey)
	if err != nil {
		return nil, err
	}
	if !found {
		out := make([]agent.Time, count)
		for k := range out {
			out[k] = agent.Auto
		}
		return out, nil
	}
	if base.Auto {
		out := make([]agent.Time, count)
		for k := range out {
			out[k] = agent.Auto
		}
		return out, nil
	}

	spec, specFound, err := getStaggerSpec(fields, staggerKey)
	if err != nil {
		return nil, err
	}
	if !specFound {
		spec = scenario.StaggerSpec{Kind: scenario.StaggerLinear, Delta: 30}
	}

	var absolute []float64
	if spec.Kind == scenario.StaggerLinear {
		key := continuationKey{PhaseIndex: idx, Delta: spec.Delta}
		startIdx := counters[key]
		offsets := make([]float64, count)
		for k := range offsets {
			offsets[k] = float64(startIdx+k) * spec.Delta
		}
		absolute = addBase(offsets, base.Seconds)
		counters[key] = startIdx + count
	} else {
		absolute = ApplyStagger(spec, base.Seconds, count, seed, streamBase+":"+staggerKey)
	}

	out := make([]agent.Time, count)
	for k, v := range absolute {
		out[k] = agent.Time(v)
	}
	return out, nil
}

func defaultStartStagger(scripts scenario.ScriptNames, count int, scriptName string, hasDaemon, hasWallet, hasScript bool) *scenario.StaggerSpec {
	if count <= 1 {
		return nil
	}
	switch {
	case hasScript && scriptName == scripts.RegularUser:
		return &scenario.StaggerSpec{Kind: scenario.StaggerAuto}
	case hasScript && scriptName == scripts.AutonomousMiner:
		return &scenario.StaggerSpec{Kind: scenario.StaggerLinear, Delta: 1}
	case hasDaemon && !hasWallet && !hasScript:
		return &scenario.StaggerSpec{Kind: scenario.StaggerLinear, Delta: 5}
	default:
		return nil
	}
}

func classifyKind(scripts scenario.ScriptNames, spyCluster, scriptName string, hasScript, hasDaemon, hasWallet, isMinerAttr bool, subnetGroup string, inPeers, outPeers int) agent.Kind {
	switch {
	case hasScript && scriptName == scripts.MinerDistributor:
		return agent.KindDistributor
	case hasScript && scriptName == scripts.SimulationMonitor:
		return agent.KindMonitor
	case hasScript && scriptName == scripts.AutonomousMiner:
		return agent.KindMiner
	case isMinerAttr:
		return agent.KindMiner
	case hasScript && scriptName == scripts.RegularUser:
		if spyCluster != "" && subnetGroup == spyCluster {
			return agent.KindSpy
		}
		if inPeers >= 100 || outPeers >= 100 {
			return agent.KindSpy
		}
		return agent.KindUser
	case hasDaemon && !hasWallet && !hasScript:
		return agent.KindRelay
	default:
		return agent.KindUser
	}
}

func has(fields map[string]interface{}, key string) bool {
	_, ok := fields[key]
	return ok
}

func unrecognizedKeys(fields map[string]interface{}) []string {
	var out []string
	for key := range fields {
		if recognizedFields[key] {
			continue
		}
		if daemonBinaryKey.MatchString(key) || daemonStartKey.MatchString(key) ||
			daemonStopKey.MatchString(key) || daemonStopStaggerKey.MatchString(key) {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func wrapGroupErr(err error, group, field string) error {
	if se, ok := err.(*simerr.Error); ok {
		return se.WithGroup(group).WithField(field)
	}
	return simerr.New(simerr.Expansion, err.Error()).WithGroup(group).WithField(field)
}

func toAgentTime(tv scenario.TimeValue) agent.Time {
	if tv.Auto {
		return agent.Auto
	}
	return agent.Time(tv.Seconds)
}

func timeValueFromString(s string) (scenario.TimeValue, error) {
	if s == "auto" {
		return scenario.TimeValue{Auto: true}, nil
	}
	secs, err := scenario.ParseDuration(s)
	if err != nil {
		return scenario.TimeValue{}, err
	}
	return scenario.FixedTime(secs), nil
}
