// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lightsig

import (
	"math"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// risePath builds the Rise Path entry for the lowest ranked Ray, scoring
// how ready it is for a move and routing it.
func risePath(c candidate, in Input, rules types.ScoringRules) *types.RisePath {
	move := moveScore(c, in, rules)
	return &types.RisePath{
		RayRef:    c.ref,
		MoveScore: move,
		Routing:   route(move, rules.Move),
	}
}

// moveScore blends access, tool readiness, and reflection depth on the 0-4
// scale. Missing parts drop out and the remaining weights are renormalized.
func moveScore(c candidate, in Input, rules types.ScoringRules) *float64 {
	m := rules.Move
	var sum, weight float64
	add := func(v *float64, w float64) {
		if v == nil || w <= 0 {
			return
		}
		sum += *v * w
		weight += w
	}

	access := c.ref.Shine / 25
	if c.access != nil {
		access = *c.access / 25
	}
	add(&access, m.AccessWeight)
	add(toolReadiness(c.ref.RayID, in.Tools, rules), m.ToolWeight)
	if in.ReflectionDepth != nil {
		r := *in.ReflectionDepth * 4 / 3
		add(&r, m.ReflectionWeight)
	}

	if weight == 0 {
		return nil
	}
	v := math.Round(sum/weight*100) / 100
	return &v
}

// toolReadiness is the mean readiness (0-4) of the tools mapped to a Ray.
func toolReadiness(rayID string, tools []types.ToolOutput, rules types.ScoringRules) *float64 {
	ids, ok := rules.ToolMap[rayID]
	if !ok {
		ids = rules.FallbackTools
	}
	byID := make(map[string]types.ToolOutput, len(tools))
	for _, t := range tools {
		byID[t.ToolID] = t
	}

	var sum float64
	var n int
	for _, id := range ids {
		t, ok := byID[id]
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
		sum += *v / 25
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func route(move *float64, m types.MoveRules) types.Routing {
	if move == nil {
		return types.RouteStabilizeRetest
	}
	switch v := *move; {
	case v >= m.StretchAt:
		return types.RouteStretch
	case v >= m.StandardAt:
		return types.RouteStandard
	case v >= m.MicroAt:
		return types.RouteStabilizeMicro
	}
	return types.RouteStabilizeRetest
}
