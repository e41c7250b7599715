// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RaySnapshot is one Ray of a stored run, as seen by the trend predictor.
type RaySnapshot struct {
	RayID     string   `json:"ray_id" yaml:"ray_id"`
	RayNumber int      `json:"ray_number" yaml:"ray_number"`
	RayName   string   `json:"ray_name" yaml:"ray_name"`
	Shine     *float64 `json:"shine,omitempty" yaml:"shine,omitempty"`
	Eclipse   *float64 `json:"eclipse,omitempty" yaml:"eclipse,omitempty"`
	NetEnergy *float64 `json:"net_energy" yaml:"net_energy"`
}

// RunSnapshot is a read-only summary of one completed, signed run.
type RunSnapshot struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	RunNumber   int           `json:"run_number" yaml:"run_number"`
	CompletedAt time.Time     `json:"completed_at" yaml:"completed_at"`
	Rays        []RaySnapshot `json:"rays" yaml:"rays"`
}

// Snapshot reduces a pipeline output to the fields the trend predictor
// reads. completedAt is used when the output does not carry its own.
func (o *PipelineOutput) Snapshot(completedAt time.Time) RunSnapshot {
	if o.CompletedAt != nil {
		completedAt = *o.CompletedAt
	}
	snap := RunSnapshot{
		RunID:       o.RunID,
		RunNumber:   o.RunNumber,
		CompletedAt: completedAt,
		Rays:        make([]RaySnapshot, 0, len(o.Rays)),
	}
	for _, r := range o.Rays {
		n, _ := RayNumber(r.RayID)
		snap.Rays = append(snap.Rays, RaySnapshot{
			RayID:     r.RayID,
			RayNumber: n,
			RayName:   r.RayName,
			Shine:     r.Score,
			Eclipse:   r.EclipseScore,
			NetEnergy: r.NetEnergy,
		})
	}
	return snap
}

// TrendDirection classifies a Ray's Net Energy trajectory.
type TrendDirection string

const (
	TrendImproving TrendDirection = "IMPROVING"
	TrendStable    TrendDirection = "STABLE"
	TrendDeclining TrendDirection = "DECLINING"
	TrendCritical  TrendDirection = "CRITICAL"
)

// WarningLevel tiers an eclipse warning.
type WarningLevel string

const (
	WarningWatch   WarningLevel = "watch"
	WarningCaution WarningLevel = "caution"
	WarningUrgent  WarningLevel = "urgent"
)

// OverallDirection summarizes all Ray trends of a subject.
type OverallDirection string

const (
	OverallImproving OverallDirection = "improving"
	OverallStable    OverallDirection = "stable"
	OverallDeclining OverallDirection = "declining"
	OverallCritical  OverallDirection = "critical"
)

// RayTrend is the trajectory of one Ray across runs.
type RayTrend struct {
	RayID       string         `json:"ray_id"`
	RayNumber   int            `json:"ray_number"`
	RayName     string         `json:"ray_name"`
	Direction   TrendDirection `json:"direction"`
	Streak      int            `json:"streak"`
	Velocity    float64        `json:"velocity"`
	Current     float64        `json:"current"`
	Predicted2W float64        `json:"predicted_2w"`
	History     []float64      `json:"history"`
}

// EclipseWarning is a tiered early warning with its static guidance.
type EclipseWarning struct {
	Level        WarningLevel `json:"level"`
	AffectedRays []string     `json:"affected_rays"`
	Message      string       `json:"message"`
	Intervention string       `json:"intervention"`
	Rationale    string       `json:"rationale"`
}

// Prediction is the output of the trend predictor.
type Prediction struct {
	Trends           []RayTrend       `json:"trends"`
	Warnings         []EclipseWarning `json:"warnings"`
	OverallDirection OverallDirection `json:"overall_direction"`
	RunsAnalyzed     int              `json:"runs_analyzed"`
}
