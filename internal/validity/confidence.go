// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validity

import (
	"fmt"
	"strings"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// Band maps a flag set onto a confidence band: no flags is HIGH, any major
// flag or LowFlagCount flags is LOW, anything else is MODERATE.
func Band(flags []types.ValidityFlag, r types.ConfidenceRules) types.ConfidenceBand {
	if len(flags) == 0 {
		return types.ConfidenceHigh
	}
	if r.LowFlagCount > 0 && len(flags) >= r.LowFlagCount {
		return types.ConfidenceLow
	}
	for _, f := range flags {
		for _, major := range r.MajorFlags {
			if f == major {
				return types.ConfidenceLow
			}
		}
	}
	return types.ConfidenceModerate
}

// Gate decides the guidance mode from the confidence band and the
// aggregate Eclipse level. LOW confidence or a level at or above
// StabilizeAt forces STABILIZE.
func Gate(band types.ConfidenceBand, level types.EclipseLevel, r types.GatingRules) types.Gating {
	var reasons []string
	if band == types.ConfidenceLow {
		reasons = append(reasons, "low confidence")
	}
	if r.StabilizeAt != "" && level.Rank() >= r.StabilizeAt.Rank() {
		reasons = append(reasons, fmt.Sprintf("eclipse level %s", level))
	}
	if len(reasons) > 0 {
		return types.Gating{Mode: types.GateStabilize, Reason: strings.Join(reasons, ", ")}
	}
	return types.Gating{Mode: types.GateGrow, Reason: "confidence and load allow growth work"}
}

// Assess combines a check result with the aggregate Eclipse level into the
// published data-quality verdict.
func Assess(res Result, level types.EclipseLevel, rules types.ScoringRules) types.DataQualityOutput {
	band := Band(res.Flags, rules.Confidence)
	return types.DataQualityOutput{
		ValidityFlags:  res.Flags,
		ConfidenceBand: band,
		Gating:         Gate(band, level, rules.Gating),
		Metrics:        res.Metrics,
	}
}
