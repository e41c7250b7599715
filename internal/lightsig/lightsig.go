// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lightsig derives the Light Signature of a run: the two strongest
// Rays by Net Energy, the archetype their pair qualifies for, and the Rise
// Path Ray with the lowest Net Energy.
//
// Ranking tie-breaks, archetype qualifiers, and disqualifiers are ordered
// lists of predicates evaluated in a fixed sequence.
package lightsig

import (
	"fmt"
	"sort"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// IssueNoArchetypeRule is recorded when the bank has no rule for a pair.
const IssueNoArchetypeRule = "NO_ARCHETYPE_RULE"

// Rules is the part of an item bank the matcher reads. *itembank.Bank
// satisfies it.
type Rules interface {
	Version() string
	Rules() types.ScoringRules
	Archetypes(pairCode string) []types.ArchetypeRule
}

// Input is what the matcher reads from the scorer and the validity engine.
type Input struct {
	Rays  []types.RayOutput
	Tools []types.ToolOutput
	Flags []types.ValidityFlag

	// ReflectionDepth is the mean reflection rubric depth (0-3).
	ReflectionDepth *float64
}

// Result is the signature plus any rule-table defects found while matching.
type Result struct {
	Signature types.LightSignatureOutput
	Issues    []types.IntegrityIssue
}

// Match ranks the Rays and resolves the archetype of the top pair.
func Match(in Input, bank Rules) Result {
	rules := bank.Rules()
	cs := candidates(in.Rays)
	ranked := rank(cs, rules.Ranking.TieWindow)

	sig := types.LightSignatureOutput{
		TopTwo:      []types.RayRef{},
		MatchStatus: types.MatchInsufficientData,
		FlatProfile: flatProfile(cs, rules.Ranking.FlatProfileSD),
	}
	if last, ok := ranked.last(); ok {
		sig.JustInRay = risePath(last, in, rules)
	}
	if len(ranked.top) < 2 {
		return Result{Signature: sig}
	}

	a, b := ranked.top[0], ranked.top[1]
	sig.TopTwo = []types.RayRef{a.ref, b.ref}
	sig.CloseCall = ranked.closeCall

	code := types.PairCode(a.ref.RayID, b.ref.RayID)
	rulesForPair := bank.Archetypes(code)
	if len(rulesForPair) == 0 {
		sig.MatchStatus = types.MatchNoRule
		return Result{Signature: sig, Issues: []types.IntegrityIssue{{
			Code:   IssueNoArchetypeRule,
			Detail: fmt.Sprintf("bank %s has no archetype rule for pair %s", bank.Version(), code),
		}}}
	}

	pair := map[string]candidate{a.ref.RayID: a, b.ref.RayID: b}
	flags := make(map[types.ValidityFlag]bool, len(in.Flags))
	for _, f := range in.Flags {
		flags[f] = true
	}

	var qualified []types.ArchetypeRule
	disqualified := false
	for _, rule := range rulesForPair {
		switch evaluate(rule, pair, flags) {
		case types.MatchMatched:
			qualified = append(qualified, rule)
		case types.MatchDisqualified:
			disqualified = true
		}
	}

	if len(qualified) == 0 {
		sig.MatchStatus = types.MatchNotQualified
		if disqualified {
			sig.MatchStatus = types.MatchDisqualified
		}
		return Result{Signature: sig}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		if qualified[i].Priority != qualified[j].Priority {
			return qualified[i].Priority < qualified[j].Priority
		}
		return qualified[i].Name < qualified[j].Name
	})
	win := qualified[0]
	sig.Archetype = &types.Archetype{Name: win.Name, PairCode: code, TechnicalLabel: win.TechnicalLabel}
	sig.MatchStatus = types.MatchMatched
	for _, alt := range qualified[1:] {
		sig.Alternates = append(sig.Alternates, types.Archetype{Name: alt.Name, PairCode: code, TechnicalLabel: alt.TechnicalLabel})
	}
	return Result{Signature: sig}
}

// qualifier fails when a rule's thresholds are not met.
type qualifier func(rule types.ArchetypeRule, a, b candidate) bool

var qualifiers = []qualifier{
	func(rule types.ArchetypeRule, a, b candidate) bool {
		return a.primary+b.primary >= rule.MinCombinedNetEnergy
	},
	func(rule types.ArchetypeRule, a, b candidate) bool {
		return a.primary >= rule.MinNetEnergy && b.primary >= rule.MinNetEnergy
	},
}

// disqualifies reports whether d invalidates the match.
func disqualifies(d types.Disqualifier, pair map[string]candidate, flags map[types.ValidityFlag]bool) bool {
	if d.Kind == types.DisqualifyFlagPresent {
		return flags[d.Flag]
	}
	for id, c := range pair {
		if d.Ray != "" && d.Ray != id {
			continue
		}
		switch d.Kind {
		case types.DisqualifyEclipseAbove:
			if c.ref.Eclipse > d.Threshold {
				return true
			}
		case types.DisqualifyNetEnergyBelow:
			if c.primary < d.Threshold {
				return true
			}
		}
	}
	return false
}

// evaluate runs the qualifiers, then the disqualifiers, of one rule.
func evaluate(rule types.ArchetypeRule, pair map[string]candidate, flags map[types.ValidityFlag]bool) types.MatchStatus {
	a, okA := pair[rule.RayA]
	b, okB := pair[rule.RayB]
	if !okA || !okB {
		return types.MatchNotQualified
	}
	for _, q := range qualifiers {
		if !q(rule, a, b) {
			return types.MatchNotQualified
		}
	}
	for _, d := range rule.Disqualifiers {
		if disqualifies(d, pair, flags) {
			return types.MatchDisqualified
		}
	}
	return types.MatchMatched
}
