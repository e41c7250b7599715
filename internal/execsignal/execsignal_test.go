// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package execsignal

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

// uniform scores every Ray, sub-facet, and tool at v with Eclipse e.
func uniform(v, e float64) Input {
	var in Input
	for i := 1; i <= 9; i++ {
		id := fmt.Sprintf("R%d", i)
		r := types.RayOutput{RayID: id, Score: f(v), AccessScore: f(v), EclipseScore: f(e), Subfacets: map[string]types.RaySubfacetOutput{}}
		for _, l := range []string{"a", "b", "c", "d"} {
			r.Subfacets[id+l] = types.RaySubfacetOutput{SubfacetID: id + l, Score: f(v)}
		}
		in.Rays = append(in.Rays, r)
	}
	for i := 1; i <= 12; i++ {
		in.Tools = append(in.Tools, types.ToolOutput{ToolID: fmt.Sprintf("T%03d", i), Access: f(v)})
	}
	in.DataQuality = types.DataQualityOutput{ConfidenceBand: types.ConfidenceHigh, Gating: types.Gating{Mode: types.GateGrow}}
	return in
}

type catalog struct {
	signals []types.ExecSignalDef
}

func (c catalog) Signals() []types.ExecSignalDef { return c.signals }
func (c catalog) Rules() types.ScoringRules      { return types.DefaultScoringRules() }

func byID(out []types.ExecutiveSignalOutput, id string) types.ExecutiveSignalOutput {
	for _, s := range out {
		if s.SignalID == id {
			return s
		}
	}
	return types.ExecutiveSignalOutput{}
}

// --- Compose ---

func TestComposeEmitsEverySignalWithoutData(t *testing.T) {
	out := Compose(Input{}, itembank.MustSample())
	require.Len(t, out, itembank.SignalCount)
	for i, s := range out {
		assert.Equal(t, fmt.Sprintf("M%03d", i+1), s.SignalID)
		assert.True(t, s.InsufficientData, s.SignalID)
		assert.Equal(t, 0.0, s.Value)
		assert.Equal(t, types.SignalLow, s.Level)
		assert.NotNil(t, s.ContributingRays)
		assert.NotNil(t, s.ModifiersApplied)
	}
}

func TestComposeUniformProfile(t *testing.T) {
	out := Compose(uniform(50, 50), itembank.MustSample())
	require.Len(t, out, itembank.SignalCount)

	plain := byID(out, "M001")
	assert.Equal(t, 50.0, plain.Value)
	assert.Equal(t, types.SignalModerate, plain.Level)
	assert.Equal(t, []string{"R1"}, plain.ContributingRays)
	assert.Empty(t, plain.ModifiersApplied)

	burnout := byID(out, "M019")
	assert.Equal(t, 43.75, burnout.Value)
	assert.Equal(t, []string{"R2", "R3"}, burnout.ContributingRays)
	assert.Equal(t, []string{ModEclipsePenalty}, burnout.ModifiersApplied)
}

func TestComposeModifiers(t *testing.T) {
	tests := []struct {
		name      string
		dq        types.DataQualityOutput
		wantValue float64
		wantLevel types.SignalLevel
		wantMods  []string
	}{
		{
			name:      "clean",
			dq:        types.DataQualityOutput{ConfidenceBand: types.ConfidenceHigh, Gating: types.Gating{Mode: types.GateGrow}},
			wantValue: 100,
			wantLevel: types.SignalHigh,
			wantMods:  []string{},
		},
		{
			name:      "low confidence dampens",
			dq:        types.DataQualityOutput{ConfidenceBand: types.ConfidenceLow, Gating: types.Gating{Mode: types.GateGrow}},
			wantValue: 80,
			wantLevel: types.SignalElevated,
			wantMods:  []string{ModLowConfidenceDampening},
		},
		{
			name:      "stabilize caps the level",
			dq:        types.DataQualityOutput{ConfidenceBand: types.ConfidenceModerate, Gating: types.Gating{Mode: types.GateStabilize}},
			wantValue: 100,
			wantLevel: types.SignalModerate,
			wantMods:  []string{ModStabilizeCap},
		},
		{
			name: "validity flags are recorded",
			dq: types.DataQualityOutput{
				ConfidenceBand: types.ConfidenceModerate,
				Gating:         types.Gating{Mode: types.GateGrow},
				ValidityFlags:  []types.ValidityFlag{types.FlagSocialDesirability, types.FlagImpressionManagement, types.FlagInconsistency},
			},
			wantValue: 100,
			wantLevel: types.SignalHigh,
			wantMods:  []string{ModSocialDesirability, ModImpressionManagement, ModInconsistency},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := uniform(100, 0)
			in.DataQuality = tt.dq
			s := byID(Compose(in, itembank.MustSample()), "M001")
			assert.Equal(t, tt.wantValue, s.Value)
			assert.Equal(t, tt.wantLevel, s.Level)
			assert.Equal(t, tt.wantMods, s.ModifiersApplied)
		})
	}
}

func TestComposePredictorFallbacks(t *testing.T) {
	cat := catalog{signals: []types.ExecSignalDef{
		{ID: "M002", Label: "tool", PredictorTools: []string{"T001"}},
		{ID: "M001", Label: "ray", PredictorRays: []string{"R1", "R2"}},
		{ID: "M003", Label: "subfacet", PredictorSubfacets: []string{"R1a", "R9z"}},
	}}
	in := Input{
		Rays: []types.RayOutput{
			{RayID: "R1", Score: f(60), AccessScore: f(80), Subfacets: map[string]types.RaySubfacetOutput{
				"R1a": {SubfacetID: "R1a", Score: f(70)},
			}},
			{RayID: "R2", Score: f(40)},
		},
		Tools: []types.ToolOutput{{ToolID: "T001", Usage: f(30)}},
	}
	out := Compose(in, cat)
	require.Len(t, out, 3)

	assert.Equal(t, "M001", out[0].SignalID)
	assert.Equal(t, 60.0, out[0].Value)
	assert.Equal(t, []string{"R1", "R2"}, out[0].ContributingRays)

	assert.Equal(t, 30.0, out[1].Value)
	assert.Empty(t, out[1].ContributingRays)
	assert.False(t, out[1].InsufficientData)

	assert.Equal(t, 70.0, out[2].Value)
	assert.Equal(t, []string{"R1"}, out[2].ContributingRays)
}

func TestComposeIsMonotoneInPredictors(t *testing.T) {
	bank := itembank.MustSample()
	lo := Compose(uniform(40, 30), bank)
	hi := Compose(uniform(70, 30), bank)
	for i := range lo {
		assert.GreaterOrEqual(t, hi[i].Value, lo[i].Value, lo[i].SignalID)
	}
}

// --- Level ---

func TestLevel(t *testing.T) {
	r := types.DefaultScoringRules().Signals
	tests := []struct {
		v    float64
		want types.SignalLevel
	}{
		{0, types.SignalLow},
		{37.49, types.SignalLow},
		{37.5, types.SignalModerate},
		{62.5, types.SignalElevated},
		{87.5, types.SignalHigh},
		{100, types.SignalHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.v, r), "value %v", tt.v)
	}
}
