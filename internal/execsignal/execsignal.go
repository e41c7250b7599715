// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package execsignal composes the 24 executive signals of a run from Ray,
// sub-facet, and tool scores. Every signal declared by the bank is always
// emitted; one without predictor data reports insufficient_data.
package execsignal

import (
	"math"
	"sort"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// Modifier names recorded on a signal.
const (
	ModEclipsePenalty         = "eclipse_penalty"
	ModLowConfidenceDampening = "low_confidence_dampening"
	ModStabilizeCap           = "stabilize_cap"
	ModSocialDesirability     = "social_desirability"
	ModImpressionManagement   = "impression_management"
	ModInconsistency          = "inconsistency"
)

// Catalog is the part of an item bank the composer reads.
type Catalog interface {
	Signals() []types.ExecSignalDef
	Rules() types.ScoringRules
}

// Input carries the scored run.
type Input struct {
	Rays        []types.RayOutput
	Tools       []types.ToolOutput
	DataQuality types.DataQualityOutput
}

// Compose returns one output per catalog signal, ordered by signal id.
func Compose(in Input, cat Catalog) []types.ExecutiveSignalOutput {
	rules := cat.Rules().Signals
	idx := newIndex(in)

	var flagMods []string
	for _, m := range []struct {
		flag types.ValidityFlag
		name string
	}{
		{types.FlagSocialDesirability, ModSocialDesirability},
		{types.FlagImpressionManagement, ModImpressionManagement},
		{types.FlagInconsistency, ModInconsistency},
	} {
		if in.DataQuality.HasFlag(m.flag) {
			flagMods = append(flagMods, m.name)
		}
	}

	defs := append([]types.ExecSignalDef(nil), cat.Signals()...)
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	out := make([]types.ExecutiveSignalOutput, 0, len(defs))
	for _, def := range defs {
		out = append(out, compose(def, idx, in.DataQuality, rules, flagMods))
	}
	return out
}

// index looks up predictor values by id.
type index struct {
	rays      map[string]types.RayOutput
	subfacets map[string]subfacet
	tools     map[string]types.ToolOutput
}

type subfacet struct {
	rayID string
	out   types.RaySubfacetOutput
}

func newIndex(in Input) index {
	idx := index{
		rays:      make(map[string]types.RayOutput, len(in.Rays)),
		subfacets: make(map[string]subfacet),
		tools:     make(map[string]types.ToolOutput, len(in.Tools)),
	}
	for _, r := range in.Rays {
		idx.rays[r.RayID] = r
		for id, sf := range r.Subfacets {
			idx.subfacets[id] = subfacet{rayID: r.RayID, out: sf}
		}
	}
	for _, t := range in.Tools {
		idx.tools[t.ToolID] = t
	}
	return idx
}

func compose(def types.ExecSignalDef, idx index, dq types.DataQualityOutput, rules types.SignalRules, flagMods []string) types.ExecutiveSignalOutput {
	out := types.ExecutiveSignalOutput{
		SignalID:         def.ID,
		Label:            def.Label,
		Level:            types.SignalLow,
		ContributingRays: []string{},
		ModifiersApplied: []string{},
	}

	var values []float64
	contributing := map[string]bool{}
	for _, id := range def.PredictorRays {
		r, ok := idx.rays[id]
		if !ok {
			continue
		}
		v := r.AccessScore
		if v == nil {
			v = r.Score
		}
		if v == nil {
			continue
		}
		values = append(values, *v)
		contributing[id] = true
	}
	for _, id := range def.PredictorSubfacets {
		sf, ok := idx.subfacets[id]
		if !ok || sf.out.Score == nil {
			continue
		}
		values = append(values, *sf.out.Score)
		contributing[sf.rayID] = true
	}
	for _, id := range def.PredictorTools {
		t, ok := idx.tools[id]
		if !ok {
			continue
		}
		v := t.Access
		if v == nil {
			v = t.Usage
		}
		if v == nil {
			continue
		}
		values = append(values, *v)
	}

	if len(values) == 0 {
		out.InsufficientData = true
		return out
	}
	for id := range contributing {
		out.ContributingRays = append(out.ContributingRays, id)
	}
	sort.Strings(out.ContributingRays)

	value := mean(values)
	if def.EclipseSensitive && rules.EclipsePenalty > 0 {
		var eclipse []float64
		for _, id := range out.ContributingRays {
			if e := idx.rays[id].EclipseScore; e != nil {
				eclipse = append(eclipse, *e)
			}
		}
		if len(eclipse) > 0 {
			value *= 1 - rules.EclipsePenalty*mean(eclipse)/100
			out.ModifiersApplied = append(out.ModifiersApplied, ModEclipsePenalty)
		}
	}
	if dq.ConfidenceBand == types.ConfidenceLow && rules.LowConfidenceDampening > 0 {
		value *= rules.LowConfidenceDampening
		out.ModifiersApplied = append(out.ModifiersApplied, ModLowConfidenceDampening)
	}
	value = math.Round(math.Max(0, math.Min(100, value))*100) / 100

	out.Value = value
	out.Level = Level(value, rules)
	if dq.Gating.Mode == types.GateStabilize && out.Level.Rank() > types.SignalModerate.Rank() {
		out.Level = types.SignalModerate
		out.ModifiersApplied = append(out.ModifiersApplied, ModStabilizeCap)
	}
	out.ModifiersApplied = append(out.ModifiersApplied, flagMods...)
	return out
}

// Level bands a 0-100 signal value.
func Level(v float64, r types.SignalRules) types.SignalLevel {
	switch {
	case v >= r.HighAt:
		return types.SignalHigh
	case v >= r.ElevatedAt:
		return types.SignalElevated
	case v >= r.ModerateAt:
		return types.SignalModerate
	}
	return types.SignalLow
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
