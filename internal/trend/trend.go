// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trend predicts Eclipse build-up from a subject's run history.
// Each Ray's Net Energy series is classified by its mean run-to-run
// velocity and the length of its trailing streak, and the resulting trend
// set is turned into tiered warnings carrying Ray-specific guidance.
package trend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// Predictor classifies Ray trends and raises warnings. It holds no state
// beyond its thresholds and intervention table.
type Predictor struct {
	rules         types.TrendRules
	interventions map[string]types.Intervention
}

// New returns a predictor. Rays missing from interventions fall back to a
// generic practice recommendation.
func New(rules types.TrendRules, interventions []types.Intervention) *Predictor {
	p := &Predictor{rules: rules, interventions: make(map[string]types.Intervention, len(interventions))}
	for _, iv := range interventions {
		p.interventions[iv.RayID] = iv
	}
	return p
}

// Predict analyzes runs in completion order. Fewer than two runs yield an
// empty prediction.
func (p *Predictor) Predict(runs []types.RunSnapshot) types.Prediction {
	pred := types.Prediction{
		Trends:           []types.RayTrend{},
		Warnings:         []types.EclipseWarning{},
		OverallDirection: types.OverallStable,
		RunsAnalyzed:     len(runs),
	}
	if len(runs) < 2 {
		return pred
	}

	sorted := append([]types.RunSnapshot(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CompletedAt.Equal(sorted[j].CompletedAt) {
			return sorted[i].CompletedAt.Before(sorted[j].CompletedAt)
		}
		return sorted[i].RunNumber < sorted[j].RunNumber
	})

	pred.Trends = p.trends(sorted)
	pred.Warnings = p.warnings(pred.Trends)
	pred.OverallDirection = overall(pred.Trends)
	return pred
}

type series struct {
	id, name string
	number   int
	values   []float64
}

func (p *Predictor) trends(runs []types.RunSnapshot) []types.RayTrend {
	byID := map[string]*series{}
	for _, run := range runs {
		for _, r := range run.Rays {
			if r.NetEnergy == nil {
				continue
			}
			s, ok := byID[r.RayID]
			if !ok {
				s = &series{id: r.RayID, number: r.RayNumber, name: r.RayName}
				byID[r.RayID] = s
			}
			if r.RayName != "" {
				s.name = r.RayName
			}
			s.values = append(s.values, *r.NetEnergy)
		}
	}

	all := make([]*series, 0, len(byID))
	for _, s := range byID {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].number != all[j].number {
			return all[i].number < all[j].number
		}
		return all[i].id < all[j].id
	})

	trends := []types.RayTrend{}
	for _, s := range all {
		if len(s.values) < 2 {
			continue
		}
		dir, velocity, streak := Classify(s.values, p.rules)
		current := s.values[len(s.values)-1]
		name := s.name
		if name == "" {
			name = fmt.Sprintf("Ray %d", s.number)
		}
		trends = append(trends, types.RayTrend{
			RayID:       s.id,
			RayNumber:   s.number,
			RayName:     name,
			Direction:   dir,
			Streak:      streak,
			Velocity:    round2(velocity),
			Current:     round2(current),
			Predicted2W: round2(clamp(current + p.rules.HorizonRuns*velocity)),
			History:     s.values,
		})
	}
	return trends
}

// Classify returns the direction, mean velocity, and trailing streak of a
// series of at least two values.
func Classify(values []float64, r types.TrendRules) (types.TrendDirection, float64, int) {
	if len(values) < 2 {
		return types.TrendStable, 0, 0
	}
	deltas := make([]float64, len(values)-1)
	var sum float64
	for i := 1; i < len(values); i++ {
		deltas[i-1] = values[i] - values[i-1]
		sum += deltas[i-1]
	}
	velocity := sum / float64(len(deltas))

	last := deltas[len(deltas)-1]
	streak := 1
	for i := len(deltas) - 2; i >= 0; i-- {
		if (deltas[i] > 0 && last > 0) || (deltas[i] < 0 && last < 0) {
			streak++
			continue
		}
		break
	}

	var dir types.TrendDirection
	switch {
	case velocity > r.ImprovingAbove:
		dir = types.TrendImproving
	case velocity < r.CriticalBelow && streak >= r.CriticalStreak:
		dir = types.TrendCritical
	case velocity < r.DecliningBelow:
		dir = types.TrendDeclining
	default:
		dir = types.TrendStable
	}
	if values[len(values)-1] < r.CriticalFloor && velocity < 0 {
		dir = types.TrendCritical
	}
	return dir, velocity, streak
}

func (p *Predictor) warnings(trends []types.RayTrend) []types.EclipseWarning {
	var critical, declining, watch []types.RayTrend
	for _, t := range trends {
		switch t.Direction {
		case types.TrendCritical:
			critical = append(critical, t)
			declining = append(declining, t)
		case types.TrendDeclining:
			declining = append(declining, t)
			if t.Streak >= p.rules.WatchStreak {
				watch = append(watch, t)
			}
		}
	}

	warnings := []types.EclipseWarning{}
	if len(critical) > 0 {
		verb := "have"
		if len(critical) == 1 {
			verb = "has"
		}
		warnings = append(warnings, p.warning(types.WarningUrgent, critical,
			fmt.Sprintf("%s %s been declining for %d consecutive runs. The pattern suggests Eclipse is building.",
				joinNames(critical, " and "), verb, mostSevere(critical).Streak)))
	}
	if len(declining) >= p.rules.CautionMinRays && len(critical) == 0 {
		warnings = append(warnings, p.warning(types.WarningCaution, declining,
			fmt.Sprintf("%d Rays are declining together: %s. This pattern often precedes a deeper Eclipse.",
				len(declining), joinNames(declining, ", "))))
	}
	if len(watch) > 0 && len(declining) < p.rules.CautionMinRays {
		w := mostSevere(watch)
		warnings = append(warnings, p.warning(types.WarningWatch, watch,
			fmt.Sprintf("%s has dropped for %d consecutive runs. Worth watching.", w.RayName, w.Streak)))
	}
	return warnings
}

func (p *Predictor) warning(level types.WarningLevel, rays []types.RayTrend, msg string) types.EclipseWarning {
	primary := mostSevere(rays)
	w := types.EclipseWarning{Level: level, Message: msg}
	for _, r := range rays {
		w.AffectedRays = append(w.AffectedRays, r.RayID)
	}
	if iv, ok := p.interventions[primary.RayID]; ok {
		w.Intervention, w.Rationale = iv.Intervention, iv.Rationale
	} else {
		w.Intervention = fmt.Sprintf("Focus daily practice on %s. One targeted rep per day.", primary.RayName)
	}
	return w
}

// mostSevere picks the steepest decline, breaking ties by Ray number.
func mostSevere(rays []types.RayTrend) types.RayTrend {
	best := rays[0]
	for _, r := range rays[1:] {
		if r.Velocity < best.Velocity || (r.Velocity == best.Velocity && r.RayNumber < best.RayNumber) {
			best = r
		}
	}
	return best
}

func overall(trends []types.RayTrend) types.OverallDirection {
	if len(trends) == 0 {
		return types.OverallStable
	}
	improving := true
	declining := false
	for _, t := range trends {
		switch t.Direction {
		case types.TrendCritical:
			return types.OverallCritical
		case types.TrendDeclining:
			declining = true
		}
		if t.Direction != types.TrendImproving {
			improving = false
		}
	}
	switch {
	case declining:
		return types.OverallDeclining
	case improving:
		return types.OverallImproving
	}
	return types.OverallStable
}

func joinNames(rays []types.RayTrend, sep string) string {
	names := make([]string, len(rays))
	for i, r := range rays {
		names[i] = r.RayName
	}
	return strings.Join(names, sep)
}

func clamp(v float64) float64 { return math.Max(0, math.Min(100, v)) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
