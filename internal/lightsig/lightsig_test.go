// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lightsig

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// --- test helpers ---

func f(v float64) *float64 { return &v }

func ray(id string, ne, shine, eclipse float64) types.RayOutput {
	return types.RayOutput{RayID: id, RayName: id, Score: f(shine), EclipseScore: f(eclipse), NetEnergy: f(ne)}
}

// profile returns nine Rays with low, descending Net Energy (R1 40 down to
// R9 32), with overrides replacing Rays by id.
func profile(overrides ...types.RayOutput) []types.RayOutput {
	byID := map[string]types.RayOutput{}
	for _, o := range overrides {
		byID[o.RayID] = o
	}
	var out []types.RayOutput
	for i := 1; i <= 9; i++ {
		id := fmt.Sprintf("R%d", i)
		if o, ok := byID[id]; ok {
			out = append(out, o)
			continue
		}
		out = append(out, ray(id, float64(41-i), 50, 60))
	}
	return out
}

// stubRules swaps the archetype table of the sample bank.
type stubRules struct {
	*itembank.Bank
	archetypes map[string][]types.ArchetypeRule
}

func (s stubRules) Archetypes(code string) []types.ArchetypeRule { return s.archetypes[code] }

func topIDs(sig types.LightSignatureOutput) []string {
	var ids []string
	for _, r := range sig.TopTwo {
		ids = append(ids, r.RayID)
	}
	return ids
}

// --- Match ---

func TestMatchStrongPair(t *testing.T) {
	bank := itembank.MustSample()
	res := Match(Input{Rays: profile(ray("R3", 90, 90, 10), ray("R7", 80, 80, 20))}, bank)
	sig := res.Signature

	assert.Empty(t, res.Issues)
	assert.Equal(t, []string{"R3", "R7"}, topIDs(sig))
	assert.Equal(t, types.MatchMatched, sig.MatchStatus)
	require.NotNil(t, sig.Archetype)
	assert.Equal(t, "R3-R7", sig.Archetype.PairCode)
	assert.Equal(t, bank.Archetypes("R3-R7")[0].Name, sig.Archetype.Name)
	assert.False(t, sig.CloseCall)

	require.NotNil(t, sig.JustInRay)
	assert.Equal(t, "R9", sig.JustInRay.RayID)
	require.NotNil(t, sig.JustInRay.MoveScore)
	assert.Equal(t, 2.0, *sig.JustInRay.MoveScore)
	assert.Equal(t, types.RouteStabilizeRetest, sig.JustInRay.Routing)
}

func TestMatchPairOrderDoesNotMatter(t *testing.T) {
	bank := itembank.MustSample()
	a := Match(Input{Rays: profile(ray("R3", 90, 90, 10), ray("R7", 80, 80, 20))}, bank)
	b := Match(Input{Rays: profile(ray("R3", 80, 80, 20), ray("R7", 90, 90, 10))}, bank)
	assert.Equal(t, a.Signature.Archetype, b.Signature.Archetype)
}

func TestMatchTieBreaks(t *testing.T) {
	tests := []struct {
		name string
		rays []types.RayOutput
		want []string
	}{
		{
			name: "higher shine wins equal net energy",
			rays: profile(ray("R5", 80, 70, 40), ray("R2", 80, 75, 45)),
			want: []string{"R2", "R5"},
		},
		{
			name: "lower eclipse wins equal shine",
			rays: profile(ray("R5", 80, 75, 30), ray("R2", 80, 75, 45)),
			want: []string{"R5", "R2"},
		},
		{
			name: "ray id breaks full ties",
			rays: profile(ray("R8", 80, 75, 30), ray("R4", 80, 75, 30)),
			want: []string{"R4", "R8"},
		},
		{
			name: "near tie inside the window goes to shine",
			rays: profile(ray("R1", 80, 60, 40), ray("R2", 79, 75, 45)),
			want: []string{"R2", "R1"},
		},
		{
			name: "gap wider than the window keeps net energy order",
			rays: profile(ray("R1", 80, 60, 40), ray("R2", 77, 75, 45)),
			want: []string{"R1", "R2"},
		},
	}
	bank := itembank.MustSample()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Match(Input{Rays: tt.rays}, bank).Signature
			assert.Equal(t, tt.want, topIDs(sig))
		})
	}
}

func TestMatchCloseCall(t *testing.T) {
	tests := []struct {
		name      string
		rays      []types.RayOutput
		want      []string
		closeCall bool
	}{
		{
			name:      "second slot taken by shine over higher net energy",
			rays:      profile(ray("R1", 90, 90, 10), ray("R2", 70, 70, 30), ray("R3", 69, 80, 30)),
			want:      []string{"R1", "R3"},
			closeCall: true,
		},
		{
			name: "near tie the chain agrees with",
			rays: profile(ray("R1", 90, 90, 10), ray("R2", 70, 70, 30), ray("R3", 69, 70, 30)),
			want: []string{"R1", "R2"},
		},
		{
			name: "equal net energy decided by shine",
			rays: profile(ray("R5", 80, 70, 40), ray("R2", 80, 75, 45)),
			want: []string{"R2", "R5"},
		},
	}
	bank := itembank.MustSample()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Match(Input{Rays: tt.rays}, bank).Signature
			assert.Equal(t, tt.want, topIDs(sig))
			assert.Equal(t, tt.closeCall, sig.CloseCall)
		})
	}
}

func TestMatchJustInRayIsLowestNetEnergy(t *testing.T) {
	// Every Ray sits inside the near-tie window of every other.
	rays := []types.RayOutput{ray("R1", 50, 40, 60)}
	for i := 2; i <= 8; i++ {
		rays = append(rays, ray(fmt.Sprintf("R%d", i), 50-0.1*float64(i-1), 50, 60))
	}
	rays = append(rays, ray("R9", 48.5, 95, 60))

	sig := Match(Input{Rays: rays}, itembank.MustSample()).Signature

	require.NotNil(t, sig.JustInRay)
	assert.Equal(t, "R9", sig.JustInRay.RayID)
	assert.Equal(t, []string{"R9", "R2"}, topIDs(sig))
	assert.True(t, sig.CloseCall)
}

func TestRankFillsSlotsFromRemainingLeader(t *testing.T) {
	cs := candidates([]types.RayOutput{
		ray("R1", 60, 50, 50),
		ray("R2", 59, 70, 50),
		ray("R3", 57.5, 90, 50),
	})
	r := rank(cs, 2)

	require.Len(t, r.top, 2)
	assert.Equal(t, "R2", r.top[0].ref.RayID)
	// R3 is 2.5 below R1, so it cannot take the second slot.
	assert.Equal(t, "R1", r.top[1].ref.RayID)
	assert.True(t, r.closeCall)

	last, ok := r.last()
	require.True(t, ok)
	assert.Equal(t, "R3", last.ref.RayID)

	_, ok = rank(nil, 2).last()
	assert.False(t, ok)
}

func TestMatchStatuses(t *testing.T) {
	bank := itembank.MustSample()
	tests := []struct {
		name string
		in   Input
		want types.MatchStatus
	}{
		{
			name: "below combined threshold",
			in:   Input{Rays: profile()},
			want: types.MatchNotQualified,
		},
		{
			name: "eclipse disqualifies",
			in:   Input{Rays: profile(ray("R3", 90, 100, 90), ray("R7", 80, 80, 20))},
			want: types.MatchDisqualified,
		},
		{
			name: "single scoreable ray",
			in:   Input{Rays: []types.RayOutput{ray("R1", 60, 60, 40), {RayID: "R2"}}},
			want: types.MatchInsufficientData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match(tt.in, bank)
			assert.Equal(t, tt.want, res.Signature.MatchStatus)
			assert.Nil(t, res.Signature.Archetype)
		})
	}
}

func TestMatchInsufficientDataStillNamesRisePath(t *testing.T) {
	bank := itembank.MustSample()
	sig := Match(Input{Rays: []types.RayOutput{ray("R4", 60, 60, 40)}}, bank).Signature
	assert.Empty(t, sig.TopTwo)
	require.NotNil(t, sig.JustInRay)
	assert.Equal(t, "R4", sig.JustInRay.RayID)
}

func TestMatchNoRuleRecordsIssue(t *testing.T) {
	stub := stubRules{Bank: itembank.MustSample(), archetypes: map[string][]types.ArchetypeRule{}}
	res := Match(Input{Rays: profile(ray("R3", 90, 90, 10), ray("R7", 80, 80, 20))}, stub)

	assert.Equal(t, types.MatchNoRule, res.Signature.MatchStatus)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueNoArchetypeRule, res.Issues[0].Code)
	assert.Contains(t, res.Issues[0].Detail, "R3-R7")
}

func TestMatchPicksByPriorityThenName(t *testing.T) {
	rule := func(name string, priority int) types.ArchetypeRule {
		return types.ArchetypeRule{
			Name: name, PairCode: "R3-R7", RayA: "R3", RayB: "R7",
			MinCombinedNetEnergy: 100, MinNetEnergy: 45, Priority: priority,
		}
	}
	flagged := rule("Flagged", 0)
	flagged.Disqualifiers = []types.Disqualifier{{Kind: types.DisqualifyFlagPresent, Flag: types.FlagAttention}}

	stub := stubRules{Bank: itembank.MustSample(), archetypes: map[string][]types.ArchetypeRule{
		"R3-R7": {rule("Zeta", 1), rule("Beta", 2), rule("Alpha", 1), flagged},
	}}
	in := Input{
		Rays:  profile(ray("R3", 90, 90, 10), ray("R7", 80, 80, 20)),
		Flags: []types.ValidityFlag{types.FlagAttention},
	}
	sig := Match(in, stub).Signature

	require.NotNil(t, sig.Archetype)
	assert.Equal(t, "Alpha", sig.Archetype.Name)
	require.Len(t, sig.Alternates, 2)
	assert.Equal(t, "Zeta", sig.Alternates[0].Name)
	assert.Equal(t, "Beta", sig.Alternates[1].Name)

	in.Flags = nil
	sig = Match(in, stub).Signature
	assert.Equal(t, "Flagged", sig.Archetype.Name)
}

func TestMatchNetEnergyBelowTargetsOneRay(t *testing.T) {
	r := types.ArchetypeRule{
		Name: "Guarded", PairCode: "R3-R7", RayA: "R3", RayB: "R7",
		MinCombinedNetEnergy: 100, MinNetEnergy: 45,
		Disqualifiers: []types.Disqualifier{{Kind: types.DisqualifyNetEnergyBelow, Ray: "R7", Threshold: 85}},
	}
	stub := stubRules{Bank: itembank.MustSample(), archetypes: map[string][]types.ArchetypeRule{"R3-R7": {r}}}
	sig := Match(Input{Rays: profile(ray("R3", 90, 90, 10), ray("R7", 80, 80, 20))}, stub).Signature
	assert.Equal(t, types.MatchDisqualified, sig.MatchStatus)
}

func TestMatchFallsBackToShine(t *testing.T) {
	bank := itembank.MustSample()
	rays := []types.RayOutput{
		{RayID: "R1", Score: f(60)},
		{RayID: "R2", Score: f(85)},
		{RayID: "R3", Score: f(70)},
	}
	sig := Match(Input{Rays: rays}, bank).Signature
	assert.Equal(t, []string{"R2", "R3"}, topIDs(sig))
	assert.Equal(t, 85.0, sig.TopTwo[0].NetEnergy)
}

func TestMatchFlatProfile(t *testing.T) {
	bank := itembank.MustSample()
	var rays []types.RayOutput
	for i := 1; i <= 9; i++ {
		rays = append(rays, ray(fmt.Sprintf("R%d", i), 50, 50, 50))
	}
	sig := Match(Input{Rays: rays}, bank).Signature
	assert.True(t, sig.FlatProfile)
	assert.Equal(t, []string{"R1", "R2"}, topIDs(sig))
}

// --- Move score ---

func TestMoveScoreBlendsAllParts(t *testing.T) {
	rules := types.DefaultScoringRules()
	c := candidate{ref: types.RayRef{RayID: "R5", Shine: 60}, access: f(80)}
	in := Input{
		Tools: []types.ToolOutput{
			{ToolID: "T010", Access: f(100)},
			{ToolID: "T005", Usage: f(50)},
		},
		ReflectionDepth: f(3),
	}
	got := moveScore(c, in, rules)
	require.NotNil(t, got)
	assert.Equal(t, 3.29, *got)
	assert.Equal(t, types.RouteStandard, route(got, rules.Move))
}

func TestMoveScoreUsesFallbackTools(t *testing.T) {
	rules := types.DefaultScoringRules()
	rules.Move.AccessWeight = 0
	rules.Move.ReflectionWeight = 0
	c := candidate{ref: types.RayRef{RayID: "R10", Shine: 60}}
	in := Input{Tools: []types.ToolOutput{{ToolID: "T008", Access: f(90)}}}
	got := moveScore(c, in, rules)
	require.NotNil(t, got)
	assert.Equal(t, 3.6, *got)
}

func TestRoute(t *testing.T) {
	m := types.DefaultScoringRules().Move
	tests := []struct {
		move *float64
		want types.Routing
	}{
		{f(4), types.RouteStretch},
		{f(3.4), types.RouteStretch},
		{f(3.0), types.RouteStandard},
		{f(2.4), types.RouteStabilizeMicro},
		{f(2.39), types.RouteStabilizeRetest},
		{nil, types.RouteStabilizeRetest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, route(tt.move, m))
	}
}
