// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lightsig

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// candidate is a scoreable Ray in the ranking. primary is Net Energy, or
// Shine when the run has too few Net Energy values to rank by.
type candidate struct {
	ref     types.RayRef
	primary float64
	access  *float64
}

// tieBreak compares two candidates; a negative result ranks a first.
type tieBreak func(a, b candidate) int

// tieBreaks are applied in order after Net Energy: higher Shine, then
// lower Eclipse, then Ray id.
var tieBreaks = []tieBreak{
	func(a, b candidate) int { return cmpFloat(b.ref.Shine, a.ref.Shine) },
	func(a, b candidate) int { return cmpFloat(a.ref.Eclipse, b.ref.Eclipse) },
	func(a, b candidate) int { return strings.Compare(a.ref.RayID, b.ref.RayID) },
}

func byPrimary(a, b candidate) int { return cmpFloat(b.primary, a.primary) }

func compare(a, b candidate, chain []tieBreak) int {
	for _, tb := range chain {
		if c := tb(a, b); c != 0 {
			return c
		}
	}
	return 0
}

// candidates collects the rankable Rays. It falls back to Shine when fewer
// than two Rays have Net Energy.
func candidates(rays []types.RayOutput) []candidate {
	var withNE, withShine []candidate
	for _, r := range rays {
		if r.Score == nil {
			continue
		}
		c := candidate{
			ref:    types.RayRef{RayID: r.RayID, RayName: r.RayName, Shine: *r.Score},
			access: r.AccessScore,
		}
		if r.EclipseScore != nil {
			c.ref.Eclipse = *r.EclipseScore
		}
		c.primary = *r.Score
		withShine = append(withShine, c)
		if r.NetEnergy != nil {
			c.ref.NetEnergy = *r.NetEnergy
			c.primary = *r.NetEnergy
			withNE = append(withNE, c)
		}
	}
	if len(withNE) >= 2 {
		return withNE
	}
	for i := range withShine {
		withShine[i].ref.NetEnergy = withShine[i].primary
	}
	return withShine
}

// ranking is the outcome of ordering the candidates.
type ranking struct {
	// order is strict Net Energy descending, then the tie-break chain.
	order []candidate
	// top holds up to two slots picked with the near-tie window.
	top []candidate
	// closeCall is set when the tie-break chain picked a slot over a Ray
	// with higher Net Energy.
	closeCall bool
}

// last is the Ray with the lowest Net Energy. No window applies to it.
func (r ranking) last() (candidate, bool) {
	if len(r.order) == 0 {
		return candidate{}, false
	}
	return r.order[len(r.order)-1], true
}

// rank orders candidates by Net Energy and the tie-break chain, then fills
// the two top slots one at a time. Each slot goes to the best Ray by the
// tie-break chain among those within window of the highest remaining Net
// Energy.
func rank(cs []candidate, window float64) ranking {
	order := append([]candidate(nil), cs...)
	full := append([]tieBreak{byPrimary}, tieBreaks...)
	sort.SliceStable(order, func(i, j int) bool { return compare(order[i], order[j], full) < 0 })

	r := ranking{order: order}
	remaining := append([]candidate(nil), order...)
	for len(r.top) < 2 && len(remaining) > 0 {
		lead := remaining[0].primary
		best := 0
		for i := 1; i < len(remaining) && lead-remaining[i].primary <= window; i++ {
			if compare(remaining[i], remaining[best], tieBreaks) < 0 {
				best = i
			}
		}
		if best != 0 {
			r.closeCall = true
		}
		r.top = append(r.top, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return r
}

func flatProfile(cs []candidate, sdFloor float64) bool {
	if len(cs) < 2 {
		return false
	}
	var sum float64
	for _, c := range cs {
		sum += c.primary
	}
	mu := sum / float64(len(cs))
	var ss float64
	for _, c := range cs {
		ss += (c.primary - mu) * (c.primary - mu)
	}
	return math.Sqrt(ss/float64(len(cs))) < sdFloor
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
