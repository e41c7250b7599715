// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import "github.com/pdiddy/ray-engine/pkg/types"

// eerSmoothing keeps the energy ratio finite when total Eclipse is zero.
const eerSmoothing = 5

// Summarize derives the aggregate load indices from the Ray outputs and
// the global load (LSI, 0-4) and bands them into an EclipseLevel.
func Summarize(rays []types.RayOutput, lsi *float64, r types.EclipseLevelRules) types.EclipseSummary {
	var shineSum, eclipseSum float64
	var paired, bri int
	for _, ray := range rays {
		if ray.Score == nil || ray.EclipseScore == nil {
			continue
		}
		paired++
		shineSum += *ray.Score / 25
		eclipseSum += *ray.EclipseScore / 25
		if *ray.EclipseScore > *ray.Score {
			bri++
		}
	}

	sum := types.EclipseSummary{BRI: bri, LSI: roundPtr(lsi)}
	if paired > 0 {
		eer := round2((shineSum + eerSmoothing) / (eclipseSum + eerSmoothing))
		sum.EER = &eer
	}
	sum.Level = Level(sum.LSI, sum.EER, bri, r)
	return sum
}

// Level bands the load indices. A missing LSI never reports LOW.
func Level(lsi, eer *float64, bri int, r types.EclipseLevelRules) types.EclipseLevel {
	lsiAtLeast := func(t float64) bool { return lsi != nil && *lsi >= t }
	eerBelow := func(t float64) bool { return eer != nil && *eer < t }

	switch {
	case lsiAtLeast(r.HighLSI) || eerBelow(r.HighEERBelow) || bri >= r.HighBRI:
		return types.EclipseHigh
	case lsiAtLeast(r.ElevatedLSI) || eerBelow(r.ElevatedEERBelow) || bri >= r.ElevatedBRI:
		return types.EclipseElevated
	case lsi == nil || *lsi >= r.ModerateLSI:
		return types.EclipseModerate
	default:
		return types.EclipseLow
	}
}
