// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// --- test helpers ---

var week0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// history builds one run per series index, a week apart. Rays are named
// after their ids. Runs are returned newest first.
func history(series map[int][]float64) []types.RunSnapshot {
	n := 0
	for _, s := range series {
		if len(s) > n {
			n = len(s)
		}
	}
	runs := make([]types.RunSnapshot, n)
	for i := range runs {
		runs[i] = types.RunSnapshot{
			RunID:       fmt.Sprintf("run-%d", i+1),
			RunNumber:   i + 1,
			CompletedAt: week0.AddDate(0, 0, 7*i),
		}
	}
	for num := 1; num <= 9; num++ {
		s, ok := series[num]
		if !ok {
			continue
		}
		for i, v := range s {
			v := v
			runs[i].Rays = append(runs[i].Rays, types.RaySnapshot{
				RayID: fmt.Sprintf("R%d", num), RayNumber: num, RayName: fmt.Sprintf("Ray%d", num), NetEnergy: &v,
			})
		}
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs
}

func predictor() *Predictor {
	return New(types.DefaultTrendRules(), itembank.DefaultInterventions())
}

func trendOf(t *testing.T, pred types.Prediction, rayID string) types.RayTrend {
	t.Helper()
	for _, tr := range pred.Trends {
		if tr.RayID == rayID {
			return tr
		}
	}
	t.Fatalf("no trend for %s", rayID)
	return types.RayTrend{}
}

// --- Predict ---

func TestPredictDecliningScenario(t *testing.T) {
	pred := predictor().Predict(history(map[int][]float64{
		3: {70, 65, 58, 50},
		5: {60, 60, 61, 60},
	}))

	assert.Equal(t, 4, pred.RunsAnalyzed)
	require.Len(t, pred.Trends, 2)
	r3 := trendOf(t, pred, "R3")
	assert.Equal(t, types.TrendCritical, r3.Direction)
	assert.Equal(t, -6.67, r3.Velocity)
	assert.Equal(t, 3, r3.Streak)
	assert.Equal(t, 50.0, r3.Current)
	assert.Equal(t, 36.67, r3.Predicted2W)
	assert.Equal(t, []float64{70, 65, 58, 50}, r3.History)

	assert.Equal(t, types.TrendStable, trendOf(t, pred, "R5").Direction)
	assert.Equal(t, types.OverallCritical, pred.OverallDirection)

	require.Len(t, pred.Warnings, 1)
	w := pred.Warnings[0]
	assert.Equal(t, types.WarningUrgent, w.Level)
	assert.Equal(t, []string{"R3"}, w.AffectedRays)
	assert.Contains(t, w.Message, "Ray3 has been declining for 3 consecutive runs")
	assert.Contains(t, w.Intervention, "Three breaths")
	assert.NotEmpty(t, w.Rationale)
}

func TestPredictNeedsTwoRuns(t *testing.T) {
	for _, runs := range [][]types.RunSnapshot{nil, history(map[int][]float64{1: {50}})} {
		pred := predictor().Predict(runs)
		assert.Empty(t, pred.Trends)
		assert.Empty(t, pred.Warnings)
		assert.NotNil(t, pred.Trends)
		assert.NotNil(t, pred.Warnings)
		assert.Equal(t, types.OverallStable, pred.OverallDirection)
		assert.Equal(t, len(runs), pred.RunsAnalyzed)
	}
}

func TestPredictWarningTiers(t *testing.T) {
	tests := []struct {
		name    string
		series  map[int][]float64
		levels  []types.WarningLevel
		overall types.OverallDirection
	}{
		{
			name:    "two rays declining together",
			series:  map[int][]float64{1: {60, 57, 54}, 2: {70, 67, 64}},
			levels:  []types.WarningLevel{types.WarningCaution},
			overall: types.OverallDeclining,
		},
		{
			name:    "one ray declining for two runs",
			series:  map[int][]float64{1: {60, 57, 54}, 2: {70, 70, 70}},
			levels:  []types.WarningLevel{types.WarningWatch},
			overall: types.OverallDeclining,
		},
		{
			name:    "one drop is not a streak",
			series:  map[int][]float64{1: {60, 57}, 2: {70, 70}},
			levels:  []types.WarningLevel{},
			overall: types.OverallDeclining,
		},
		{
			name:    "all improving",
			series:  map[int][]float64{1: {40, 45, 50}, 2: {50, 53, 56}},
			levels:  []types.WarningLevel{},
			overall: types.OverallImproving,
		},
		{
			name:    "critical plus declining stays urgent",
			series:  map[int][]float64{1: {60, 54, 48}, 2: {60, 57, 54}},
			levels:  []types.WarningLevel{types.WarningUrgent},
			overall: types.OverallCritical,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := predictor().Predict(history(tt.series))
			levels := []types.WarningLevel{}
			for _, w := range pred.Warnings {
				levels = append(levels, w.Level)
			}
			assert.Equal(t, tt.levels, levels)
			assert.Equal(t, tt.overall, pred.OverallDirection)
		})
	}
}

func TestPredictCautionUsesSteepestRay(t *testing.T) {
	pred := predictor().Predict(history(map[int][]float64{1: {60, 57, 54}, 2: {70, 66, 63}}))
	require.Len(t, pred.Warnings, 1)
	w := pred.Warnings[0]
	assert.Equal(t, []string{"R1", "R2"}, w.AffectedRays)
	assert.Contains(t, w.Intervention, "micro-joy")
}

func TestPredictOrdersRunsByCompletion(t *testing.T) {
	runs := history(map[int][]float64{4: {70, 65, 58, 50}})
	ordered := append([]types.RunSnapshot(nil), runs...)
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	assert.Equal(t, predictor().Predict(ordered), predictor().Predict(runs))
}

func TestPredictWithoutInterventionTable(t *testing.T) {
	pred := New(types.DefaultTrendRules(), nil).Predict(history(map[int][]float64{6: {60, 57, 54}}))
	require.Len(t, pred.Warnings, 1)
	assert.Contains(t, pred.Warnings[0].Intervention, "Ray6")
	assert.Empty(t, pred.Warnings[0].Rationale)
}

func TestPredictSkipsRaysWithoutNetEnergy(t *testing.T) {
	runs := history(map[int][]float64{1: {60, 61}})
	runs[0].Rays = append(runs[0].Rays, types.RaySnapshot{RayID: "R2", RayNumber: 2})
	pred := predictor().Predict(runs)
	require.Len(t, pred.Trends, 1)
	assert.Equal(t, "R1", pred.Trends[0].RayID)
}

// --- Classify ---

func TestClassify(t *testing.T) {
	rules := types.DefaultTrendRules()
	tests := []struct {
		name     string
		values   []float64
		want     types.TrendDirection
		velocity float64
		streak   int
	}{
		{"improving", []float64{50, 53}, types.TrendImproving, 3, 1},
		{"flat", []float64{50, 50}, types.TrendStable, 0, 1},
		{"small dip", []float64{50, 48.5}, types.TrendStable, -1.5, 1},
		{"declining", []float64{60, 57}, types.TrendDeclining, -3, 1},
		{"steep single drop", []float64{60, 55}, types.TrendDeclining, -5, 1},
		{"steep streak", []float64{60, 55, 50}, types.TrendCritical, -5, 2},
		{"broken streak", []float64{60, 50, 55}, types.TrendDeclining, -2.5, 1},
		{"low floor with any decline", []float64{36, 34.5}, types.TrendCritical, -1.5, 1},
		{"low floor while rising", []float64{20, 30}, types.TrendImproving, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, v, streak := Classify(tt.values, rules)
			assert.Equal(t, tt.want, dir)
			assert.InDelta(t, tt.velocity, v, 1e-9)
			assert.Equal(t, tt.streak, streak)
		})
	}
}
