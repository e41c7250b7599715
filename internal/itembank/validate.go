// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package itembank

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/ray-engine/pkg/types"
)

const (
	// RayCount is the number of Rays every bank declares.
	RayCount = 9

	// SubfacetsPerRay is the number of sub-facets of every Ray.
	SubfacetsPerRay = 4

	// SignalCount is the size of the executive signal catalog.
	SignalCount = 24
)

// ErrIntegrity marks rule-table defects. These are distinct from validity
// flags: they indicate a broken bank, not low-quality user data.
var ErrIntegrity = errors.New("item bank integrity error")

// IntegrityError lists every defect found in a bank.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIntegrity, strings.Join(e.Problems, "; "))
}

// Is matches ErrIntegrity.
func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// Validate checks the structural invariants of a bank: nine Rays of four
// sub-facets each, unique and well-formed items, a full executive signal
// catalog, and at least one archetype rule for every Ray pair.
func Validate(b types.ItemBank) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if b.Version == "" {
		addf("missing version")
	}

	rays := make(map[string]map[string]bool)
	numbers := make(map[int]bool)
	if len(b.Rays) != RayCount {
		addf("expected %d rays, got %d", RayCount, len(b.Rays))
	}
	for _, r := range b.Rays {
		n, ok := types.RayNumber(r.ID)
		if !ok {
			addf("ray %q: malformed id", r.ID)
			continue
		}
		if _, dup := rays[r.ID]; dup {
			addf("ray %s: duplicate", r.ID)
			continue
		}
		if numbers[n] {
			addf("ray %s: duplicate number %d", r.ID, n)
		}
		numbers[n] = true
		if len(r.Subfacets) != SubfacetsPerRay {
			addf("ray %s: expected %d subfacets, got %d", r.ID, SubfacetsPerRay, len(r.Subfacets))
		}
		subs := make(map[string]bool, len(r.Subfacets))
		for _, sf := range r.Subfacets {
			if sf.ID == "" || subs[sf.ID] {
				addf("ray %s: empty or duplicate subfacet %q", r.ID, sf.ID)
			}
			subs[sf.ID] = true
		}
		rays[r.ID] = subs
	}

	seen := make(map[string]bool, len(b.Items))
	pairs := make(map[string]int)
	for _, it := range b.Items {
		if it.ID == "" {
			addf("item with empty id")
			continue
		}
		if seen[it.ID] {
			addf("item %s: duplicate id", it.ID)
		}
		seen[it.ID] = true
		if it.Scale != (types.Scale{}) && !it.Scale.Valid() {
			addf("item %s: invalid scale %v-%v", it.ID, it.Scale.Min, it.Scale.Max)
		}
		if it.Polarity != "" && it.Polarity != types.PolarityNormal && it.Polarity != types.PolarityReverse {
			addf("item %s: unknown polarity %q", it.ID, it.Polarity)
		}

		switch it.Kind {
		case types.KindRay:
			subs, ok := rays[it.RayID]
			if !ok {
				addf("item %s: unknown ray %q", it.ID, it.RayID)
			} else if !subs[it.SubfacetID] {
				addf("item %s: subfacet %q does not belong to %s", it.ID, it.SubfacetID, it.RayID)
			}
		case types.KindTool:
			if it.ToolID == "" {
				addf("item %s: tool item without tool_id", it.ID)
			}
		case types.KindEclipse:
		case types.KindValidity:
			switch it.Check {
			case types.CheckSocialDesirability, types.CheckInfrequency:
			case types.CheckInconsistency:
				if it.PairID == "" {
					addf("item %s: inconsistency item without pair_id", it.ID)
				}
				pairs[it.PairID]++
			case types.CheckAttention:
				if it.Expected == nil {
					addf("item %s: attention item without expected answer", it.ID)
				}
			default:
				addf("item %s: unknown validity check %q", it.ID, it.Check)
			}
		default:
			addf("item %s: unknown kind %q", it.ID, it.Kind)
		}
	}
	pairIDs := make([]string, 0, len(pairs))
	for id := range pairs {
		pairIDs = append(pairIDs, id)
	}
	sort.Strings(pairIDs)
	for _, id := range pairIDs {
		if id != "" && pairs[id] != 2 {
			addf("inconsistency pair %s: expected 2 items, got %d", id, pairs[id])
		}
	}

	prompts := make(map[string]bool)
	for _, p := range b.ReflectionPrompts {
		if p.ID == "" || prompts[p.ID] {
			addf("reflection prompt %q: empty or duplicate id", p.ID)
		}
		prompts[p.ID] = true
	}

	if len(b.Signals) != SignalCount {
		addf("expected %d executive signals, got %d", SignalCount, len(b.Signals))
	}
	signals := make(map[string]bool)
	for _, s := range b.Signals {
		if s.ID == "" || signals[s.ID] {
			addf("signal %q: empty or duplicate id", s.ID)
		}
		signals[s.ID] = true
		for _, r := range s.PredictorRays {
			if _, ok := rays[r]; !ok {
				addf("signal %s: unknown predictor ray %q", s.ID, r)
			}
		}
	}

	covered := make(map[string]bool)
	for _, a := range b.Archetypes {
		if a.Name == "" {
			addf("archetype for %s: empty name", a.PairCode)
		}
		_, okA := rays[a.RayA]
		_, okB := rays[a.RayB]
		if !okA || !okB || a.RayA == a.RayB {
			addf("archetype %s: invalid ray pair %s/%s", a.Name, a.RayA, a.RayB)
			continue
		}
		if want := types.PairCode(a.RayA, a.RayB); a.PairCode != want {
			addf("archetype %s: pair code %q, want %q", a.Name, a.PairCode, want)
			continue
		}
		covered[a.PairCode] = true
	}
	for i := 0; i < len(b.Rays); i++ {
		for j := i + 1; j < len(b.Rays); j++ {
			code := types.PairCode(b.Rays[i].ID, b.Rays[j].ID)
			if !covered[code] {
				addf("no archetype rule for pair %s", code)
			}
		}
	}

	if b.Rules.NetEnergy.Divisor == 0 {
		addf("net energy divisor is zero")
	}

	if len(problems) > 0 {
		return &IntegrityError{Problems: problems}
	}
	return nil
}
