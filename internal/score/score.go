// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes Shine, Access, Eclipse and Net Energy for every
// Ray and sub-facet, the tool readiness composites, and the aggregate load
// indices of a run.
//
// Scoring is a pure function of the packet and the bank. Aggregates are
// always summed in bank declaration order so repeated runs produce
// bit-identical floats.
package score

import (
	"math"

	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// Result is everything the scorer derives from one packet.
type Result struct {
	Rays    []types.RayOutput
	Tools   []types.ToolOutput
	Eclipse types.EclipseSummary
}

// Score scores p against bank. It always returns one RayOutput per Ray in
// the bank, in Ray order; unscoreable values are nil.
func Score(p *types.ResponsePacket, bank *itembank.Bank) Result {
	rules := bank.Rules()

	lsi := globalLoad(p, bank.EclipseItems(), rules.Usability)

	res := Result{Rays: make([]types.RayOutput, 0, len(bank.Rays()))}
	for _, ray := range bank.Rays() {
		res.Rays = append(res.Rays, scoreRay(p, bank, ray, lsi, rules))
	}
	for _, id := range bank.ToolIDs() {
		res.Tools = append(res.Tools, scoreTool(p, id, bank.ToolItems(id), rules.Usability))
	}
	res.Eclipse = Summarize(res.Rays, lsi, rules.EclipseLevel)
	return res
}

// bucketScore is the usable weighted mean of one bucket on 0-100.
type bucketScore struct {
	score    *float64
	answered int
	total    int
}

func scoreRay(p *types.ResponsePacket, bank *itembank.Bank, ray types.RayDef, lsi *float64, rules types.ScoringRules) types.RayOutput {
	u := rules.Usability
	out := types.RayOutput{
		RayID:     ray.ID,
		RayName:   ray.Name,
		Subfacets: make(map[string]types.RaySubfacetOutput, len(ray.Subfacets)),
	}

	var shine, access, eclipse []float64
	var shineAvail, accessAvail, eclipseAvail int
	for _, sf := range ray.Subfacets {
		items := bank.SubfacetItems(sf.ID)
		s := aggregate(p, items, types.BucketShine, u.MinShineItems, u.UsableFraction)
		a := aggregate(p, items, types.BucketAccess, u.MinAccessItems, u.UsableFraction)
		e := aggregate(p, items, types.BucketEclipse, u.MinEclipseItems, u.UsableFraction)

		answered := s.answered + a.answered + e.answered
		total := s.total + a.total + e.total
		sub := types.RaySubfacetOutput{
			SubfacetID:   sf.ID,
			Label:        sf.Label,
			Score:        roundPtr(s.score),
			AccessScore:  roundPtr(a.score),
			EclipseScore: roundPtr(e.score),
			Missing:      answered == 0,
		}
		if total > 0 {
			sub.Coverage = round2(float64(answered) / float64(total))
		}
		out.Subfacets[sf.ID] = sub
		if sub.Missing || s.score == nil || (total > 0 && answered < total) {
			out.Partial = true
		}

		collect(&shine, &shineAvail, s)
		collect(&access, &accessAvail, a)
		collect(&eclipse, &eclipseAvail, e)
	}

	shineScore := rollup(shine, shineAvail, u.MinSubfacets)
	accessScore := rollup(access, accessAvail, u.MinSubfacets)
	rayEclipse := rollup(eclipse, eclipseAvail, u.MinSubfacets)
	eclipseScore := blend(rayEclipse, lsiTo100(lsi), rules.EclipseBlend)

	out.Score = roundPtr(shineScore)
	out.AccessScore = roundPtr(accessScore)
	out.EclipseScore = roundPtr(eclipseScore)
	if shineScore != nil && eclipseScore != nil {
		ne := NetEnergy(*shineScore, *eclipseScore, rules.NetEnergy)
		out.NetEnergy = &ne
	}
	out.EclipseModifier = modifier(out.Score, out.EclipseScore, rules.Modifier)
	return out
}

func scoreTool(p *types.ResponsePacket, toolID string, items []types.Item, u types.UsabilityRules) types.ToolOutput {
	usage := aggregate(p, items, types.BucketShine, u.ToolMinItems, u.ToolUsableFraction)
	access := aggregate(p, items, types.BucketAccess, u.ToolMinItems, u.ToolUsableFraction)
	distortion := aggregate(p, items, types.BucketEclipse, u.ToolMinItems, u.ToolUsableFraction)

	out := types.ToolOutput{
		ToolID:     toolID,
		Usage:      roundPtr(usage.score),
		Access:     roundPtr(access.score),
		Distortion: roundPtr(distortion.score),
	}
	if total := usage.total + access.total + distortion.total; total > 0 {
		out.Coverage = round2(float64(usage.answered+access.answered+distortion.answered) / float64(total))
	}
	return out
}

// NetEnergy applies the configured linear rule and clamps to [0,100].
func NetEnergy(shine, eclipse float64, r types.NetEnergyRule) float64 {
	v := (r.ShineWeight*shine - r.EclipseWeight*eclipse + r.Offset) / r.Divisor
	return round2(clamp(v, 0, 100))
}

// Normalize maps an answer onto [0,1] against the item's scale. Reverse
// items are inverted when they measure capacity (Shine, tool usage) or
// global load; under-pressure reverse items are the Eclipse measure and
// keep their raw direction.
func Normalize(it types.Item, v float64) float64 {
	s := it.EffectiveScale()
	x := clamp((v-s.Min)/(s.Max-s.Min), 0, 1)
	if it.Polarity == types.PolarityReverse && (it.Kind == types.KindEclipse || it.Bucket() == types.BucketShine) {
		x = 1 - x
	}
	return x
}

// aggregate returns the weighted mean of the answered items of one bucket,
// reported only when the answered count is usable.
func aggregate(p *types.ResponsePacket, items []types.Item, bucket types.Bucket, minItems int, fraction float64) bucketScore {
	var bs bucketScore
	var sum, weights float64
	for _, it := range items {
		if it.Bucket() != bucket || !p.Applicable(it.ID) {
			continue
		}
		bs.total++
		v, ok := p.Responses[it.ID]
		if !ok {
			continue
		}
		bs.answered++
		w := it.EffectiveWeight()
		sum += w * Normalize(it, v)
		weights += w
	}
	if bs.answered == 0 || bs.answered < minItems || float64(bs.answered) < fraction*float64(bs.total) {
		return bs
	}
	s := 100 * sum / weights
	bs.score = &s
	return bs
}

func globalLoad(p *types.ResponsePacket, items []types.Item, u types.UsabilityRules) *float64 {
	var sum, weights float64
	var answered, total int
	for _, it := range items {
		if !p.Applicable(it.ID) {
			continue
		}
		total++
		v, ok := p.Responses[it.ID]
		if !ok {
			continue
		}
		answered++
		w := it.EffectiveWeight()
		sum += w * Normalize(it, v)
		weights += w
	}
	if answered == 0 || answered < u.MinEclipseItems || float64(answered) < u.UsableFraction*float64(total) {
		return nil
	}
	lsi := 4 * sum / weights
	return &lsi
}

func collect(dst *[]float64, avail *int, b bucketScore) {
	if b.total == 0 {
		return
	}
	*avail++
	if b.score != nil {
		*dst = append(*dst, *b.score)
	}
}

// rollup averages the usable sub-facet scores when there are at least
// min(minSubfacets, available) of them.
func rollup(scores []float64, available, minSubfacets int) *float64 {
	need := minSubfacets
	if available < need {
		need = available
	}
	if len(scores) == 0 || len(scores) < need {
		return nil
	}
	m := mean(scores)
	return &m
}

// blend weights the Ray's own eclipse against the global load,
// renormalizing when either side is missing.
func blend(ray, global *float64, w types.EclipseBlend) *float64 {
	var sum, weights float64
	if ray != nil && w.RayWeight > 0 {
		sum += w.RayWeight * *ray
		weights += w.RayWeight
	}
	if global != nil && w.GlobalWeight > 0 {
		sum += w.GlobalWeight * *global
		weights += w.GlobalWeight
	}
	if weights == 0 {
		return nil
	}
	v := sum / weights
	return &v
}

func modifier(shine, eclipse *float64, r types.ModifierRules) types.EclipseModifier {
	if eclipse == nil || *eclipse < r.PresentAt {
		return types.ModifierNone
	}
	if shine == nil || *eclipse > *shine {
		return types.ModifierAmplified
	}
	return types.ModifierMuted
}

func lsiTo100(lsi *float64) *float64 {
	if lsi == nil {
		return nil
	}
	v := *lsi * 25
	return &v
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
