// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validity runs the nine data-quality checks over a response
// packet and maps the resulting flags onto a confidence band and a gating
// mode. Flags are data, never errors: a low-quality run still produces a
// complete result.
package validity

import (
	"math"

	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// Result holds the raised flags in canonical order and the measurements
// behind them.
type Result struct {
	Flags   []types.ValidityFlag
	Metrics types.QualityMetrics
}

// check is one independent data-quality test. It records its measurement
// in m and returns the flags it raises.
type check func(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag

var checks = []check{
	checkDesirability,
	checkInconsistency,
	checkSpeeding,
	checkStraightlining,
	checkAttention,
	checkInfrequency,
	checkReflection,
	checkMissingness,
}

// Check runs every data-quality check against p. It reads only the packet
// and the bank, so it can run concurrently with the scorer.
func Check(p *types.ResponsePacket, bank *itembank.Bank) Result {
	rules := bank.Rules().Validity
	var m types.QualityMetrics
	raised := make(map[types.ValidityFlag]bool)
	for _, c := range checks {
		for _, f := range c(p, bank, rules, &m) {
			raised[f] = true
		}
	}

	res := Result{Flags: []types.ValidityFlag{}, Metrics: m}
	for _, f := range types.AllValidityFlags {
		if raised[f] {
			res.Flags = append(res.Flags, f)
		}
	}
	return res
}

// on04 rescales an answer onto 0-4 without changing its direction.
func on04(it types.Item, v float64) float64 {
	s := it.EffectiveScale()
	return 4 * (v - s.Min) / (s.Max - s.Min)
}

func checkDesirability(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	var vals []float64
	for _, it := range bank.ValidityItems(types.CheckSocialDesirability) {
		if v, ok := p.Answer(it.ID); ok {
			vals = append(vals, on04(it, v))
		}
	}
	if len(vals) == 0 {
		return nil
	}
	avg := round2(mean(vals))
	m.SocialDesirabilityMean = &avg

	switch {
	case avg >= r.SDExtreme:
		return []types.ValidityFlag{types.FlagSocialDesirability, types.FlagImpressionManagement}
	case avg >= r.SDElevated:
		return []types.ValidityFlag{types.FlagImpressionManagement}
	}
	return nil
}

func checkInconsistency(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	var order []string
	pairs := make(map[string][]float64)
	for _, it := range bank.ValidityItems(types.CheckInconsistency) {
		v, ok := p.Answer(it.ID)
		if !ok {
			continue
		}
		if _, seen := pairs[it.PairID]; !seen {
			order = append(order, it.PairID)
		}
		pairs[it.PairID] = append(pairs[it.PairID], on04(it, v))
	}
	for _, id := range order {
		vals := pairs[id]
		if len(vals) == 2 && math.Abs(vals[0]-vals[1]) >= r.InconsistencyPairDiff {
			m.InconsistentPairs++
		}
	}
	if m.InconsistentPairs >= r.InconsistencyMinPairs {
		return []types.ValidityFlag{types.FlagInconsistency}
	}
	return nil
}

func checkSpeeding(p *types.ResponsePacket, _ *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	d, ok := p.Duration()
	if !ok {
		return nil
	}
	secs := d.Seconds()
	m.DurationSeconds = &secs

	if secs < r.SpeedingFloorSeconds {
		return []types.ValidityFlag{types.FlagSpeeding}
	}
	if r.PilotMedianSeconds > 0 && secs < r.SpeedingMedianFraction*r.PilotMedianSeconds {
		return []types.ValidityFlag{types.FlagSpeeding}
	}
	return nil
}

func checkStraightlining(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	var vals []float64
	run, longest := 0, 0
	for _, it := range bank.Items() {
		if it.Kind != types.KindRay && it.Kind != types.KindTool {
			continue
		}
		v, ok := p.Answer(it.ID)
		if !ok {
			continue
		}
		x := on04(it, v)
		if len(vals) > 0 && x == vals[len(vals)-1] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		vals = append(vals, x)
	}
	m.LongestRun = longest
	if len(vals) == 0 {
		return nil
	}
	sd := round2(stddev(vals))
	m.ResponseSD = &sd

	if longest >= r.StraightlineRun {
		return []types.ValidityFlag{types.FlagStraightlining}
	}
	if len(vals) >= r.StraightlineRun && sd < r.StraightlineMinSD {
		return []types.ValidityFlag{types.FlagStraightlining}
	}
	return nil
}

func checkAttention(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	for _, it := range bank.ValidityItems(types.CheckAttention) {
		v, ok := p.Answer(it.ID)
		if !ok || it.Expected == nil {
			continue
		}
		if math.Abs(v-*it.Expected) > r.AttentionTolerance {
			m.AttentionMisses++
		}
	}
	if m.AttentionMisses >= r.AttentionMinMisses {
		return []types.ValidityFlag{types.FlagAttention}
	}
	return nil
}

func checkInfrequency(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	for _, it := range bank.ValidityItems(types.CheckInfrequency) {
		if v, ok := p.Answer(it.ID); ok && on04(it, v) >= r.InfrequencyEndorse {
			m.InfrequencyHits++
		}
	}
	if m.InfrequencyHits >= r.InfrequencyMinHits {
		return []types.ValidityFlag{types.FlagInfrequency}
	}
	return nil
}

func checkReflection(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	if len(bank.ReflectionPrompts()) == 0 {
		return nil
	}
	avg, answered := Reflection(p, bank)
	m.ReflectionsAnswered = answered
	if avg == nil {
		return []types.ValidityFlag{types.FlagLowReflectionDepth}
	}
	d := round2(*avg)
	m.ReflectionDepth = &d
	if *avg < r.ReflectionMinDepth {
		return []types.ValidityFlag{types.FlagLowReflectionDepth}
	}
	return nil
}

func checkMissingness(p *types.ResponsePacket, bank *itembank.Bank, r types.ValidityRules, m *types.QualityMetrics) []types.ValidityFlag {
	if n := len(p.ApplicableItemIDs); n > 0 {
		unanswered := 0
		for _, id := range p.ApplicableItemIDs {
			if _, ok := p.Responses[id]; !ok {
				unanswered++
			}
		}
		m.MissingFraction = round2(float64(unanswered) / float64(n))
	}

	m.EmptySubfacets = []string{}
	for _, ray := range bank.Rays() {
		var shineAnswered, eclipseAnswered int
		for _, sf := range ray.Subfacets {
			var answered, shineTotal, shineHit int
			for _, it := range bank.SubfacetItems(sf.ID) {
				_, ok := p.Answer(it.ID)
				if ok {
					answered++
				}
				switch it.Bucket() {
				case types.BucketShine:
					if p.Applicable(it.ID) {
						shineTotal++
					}
					if ok {
						shineHit++
						shineAnswered++
					}
				case types.BucketEclipse:
					if ok {
						eclipseAnswered++
					}
				}
			}
			if answered == 0 {
				m.EmptySubfacets = append(m.EmptySubfacets, sf.ID)
			}
			if shineTotal > 0 && float64(shineHit)/float64(shineTotal) < r.SubfacetCoverageFloor {
				m.LowCoverageSubfacets++
			}
		}
		if shineAnswered == 0 || eclipseAnswered == 0 {
			m.UnscoreableRays++
		}
	}

	if m.MissingFraction > r.MissingFraction ||
		len(m.EmptySubfacets) > 0 ||
		m.LowCoverageSubfacets >= r.LowCoverageLimit ||
		m.UnscoreableRays >= r.MissingRayLimit {
		return []types.ValidityFlag{types.FlagMissingness}
	}
	return nil
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func stddev(xs []float64) float64 {
	mu := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - mu) * (x - mu)
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
