// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ray-engine pipeline:
// the versioned item bank, the response packet, the pipeline output, the
// audit signature pair, and the run snapshots consumed by the trend predictor.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemKind identifies which part of the instrument an item belongs to.
type ItemKind string

const (
	KindRay      ItemKind = "ray"
	KindTool     ItemKind = "tool"
	KindEclipse  ItemKind = "eclipse"
	KindValidity ItemKind = "validity"
)

// Polarity tells the scorer whether an item is phrased toward (normal) or
// against (reverse) the measured capacity.
type Polarity string

const (
	PolarityNormal  Polarity = "normal"
	PolarityReverse Polarity = "reverse"
)

// PressureMode distinguishes everyday behavior from behavior under load.
type PressureMode string

const (
	PressureBaseline      PressureMode = "baseline"
	PressureUnderPressure PressureMode = "under_pressure"
)

// ValidityCheck names the data-quality check a validity item feeds.
type ValidityCheck string

const (
	CheckSocialDesirability ValidityCheck = "social_desirability"
	CheckInconsistency      ValidityCheck = "inconsistency"
	CheckAttention          ValidityCheck = "attention"
	CheckInfrequency        ValidityCheck = "infrequency"
)

// Bucket is the score a Ray or tool item contributes to.
type Bucket string

const (
	BucketShine   Bucket = "shine"
	BucketAccess  Bucket = "access"
	BucketEclipse Bucket = "eclipse"
)

// Scale is the declared response range of an item.
type Scale struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultScale is the 0-4 Likert range used when an item declares none.
var DefaultScale = Scale{Min: 0, Max: 4}

// Valid reports whether the scale has a positive width.
func (s Scale) Valid() bool { return s.Max > s.Min }

// Contains reports whether v lies within the scale, inclusive.
func (s Scale) Contains(v float64) bool { return v >= s.Min && v <= s.Max }

// Item is one scorable unit of the instrument. Items are immutable and
// versioned together with the bank that declares them.
type Item struct {
	ID   string   `json:"id" yaml:"id"`
	Kind ItemKind `json:"kind" yaml:"kind"`

	// RayID and SubfacetID are empty for items that are not Ray-scoped.
	RayID      string `json:"ray_id,omitempty" yaml:"ray_id,omitempty"`
	SubfacetID string `json:"subfacet_id,omitempty" yaml:"subfacet_id,omitempty"`

	// ToolID is set on tool items only.
	ToolID string `json:"tool_id,omitempty" yaml:"tool_id,omitempty"`

	Polarity     Polarity     `json:"polarity,omitempty" yaml:"polarity,omitempty"`
	PressureMode PressureMode `json:"pressure_mode,omitempty" yaml:"pressure_mode,omitempty"`

	// Weight scales the item inside its aggregate. Zero means 1.
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`

	// Scale is the declared response range. A zero scale means DefaultScale.
	Scale Scale `json:"scale" yaml:"scale"`

	// Required items must be answered before a run can be scored.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Check, PairID and Expected apply to validity items only. PairID groups
	// the two halves of an inconsistency pair; Expected is the correct answer
	// to an attention item.
	Check    ValidityCheck `json:"check,omitempty" yaml:"check,omitempty"`
	PairID   string        `json:"pair_id,omitempty" yaml:"pair_id,omitempty"`
	Expected *float64      `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// EffectiveWeight returns the item weight, defaulting to 1.
func (it Item) EffectiveWeight() float64 {
	if it.Weight <= 0 {
		return 1
	}
	return it.Weight
}

// EffectiveScale returns the declared scale, defaulting to DefaultScale.
func (it Item) EffectiveScale() Scale {
	if !it.Scale.Valid() {
		return DefaultScale
	}
	return it.Scale
}

// Bucket derives the score a Ray or tool item feeds: baseline items measure
// Shine (or tool usage), under-pressure items phrased toward the capacity
// measure Access, and under-pressure items phrased against it measure
// Eclipse (or tool distortion).
func (it Item) Bucket() Bucket {
	if it.PressureMode != PressureUnderPressure {
		return BucketShine
	}
	if it.Polarity == PolarityReverse {
		return BucketEclipse
	}
	return BucketAccess
}

// SubfacetDef is one of the four components of a Ray.
type SubfacetDef struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// RayDef describes one of the nine Rays.
type RayDef struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Verb      string        `json:"verb,omitempty" yaml:"verb,omitempty"`
	Phase     string        `json:"phase,omitempty" yaml:"phase,omitempty"`
	Subfacets []SubfacetDef `json:"subfacets" yaml:"subfacets"`
}

// Number returns the numeric part of the Ray id, or 0 if it is malformed.
func (r RayDef) Number() int {
	n, _ := RayNumber(r.ID)
	return n
}

// RayNumber parses a Ray id of the form "R<n>".
func RayNumber(id string) (int, bool) {
	if !strings.HasPrefix(id, "R") {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// PairCode returns the canonical, order-independent code for a Ray pair,
// lower Ray number first (e.g. "R2-R7").
func PairCode(a, b string) string {
	na, _ := RayNumber(a)
	nb, _ := RayNumber(b)
	if na > nb || (na == nb && a > b) {
		a, b = b, a
	}
	return fmt.Sprintf("%s-%s", a, b)
}

// ReflectionPrompt is a free-text question answered at the end of a run.
type ReflectionPrompt struct {
	ID    string `json:"id" yaml:"id"`
	RayID string `json:"ray_id,omitempty" yaml:"ray_id,omitempty"`
	Text  string `json:"text" yaml:"text"`
}

// DisqualifierKind names the condition a Disqualifier tests.
type DisqualifierKind string

const (
	DisqualifyEclipseAbove   DisqualifierKind = "eclipse_above"
	DisqualifyNetEnergyBelow DisqualifierKind = "net_energy_below"
	DisqualifyFlagPresent    DisqualifierKind = "flag_present"
)

// Disqualifier invalidates an archetype match even when its thresholds are
// met. An empty Ray applies the test to both Rays of the pair.
type Disqualifier struct {
	Kind      DisqualifierKind `json:"kind" yaml:"kind"`
	Ray       string           `json:"ray,omitempty" yaml:"ray,omitempty"`
	Threshold float64          `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Flag      ValidityFlag     `json:"flag,omitempty" yaml:"flag,omitempty"`
}

// ArchetypeRule qualifies a Light Signature archetype for one Ray pair.
type ArchetypeRule struct {
	Name           string `json:"name" yaml:"name"`
	PairCode       string `json:"pair_code" yaml:"pair_code"`
	TechnicalLabel string `json:"technical_label" yaml:"technical_label"`
	RayA           string `json:"ray_a" yaml:"ray_a"`
	RayB           string `json:"ray_b" yaml:"ray_b"`

	// MinCombinedNetEnergy is the minimum sum of the two Rays' Net Energy.
	MinCombinedNetEnergy float64 `json:"min_combined_net_energy" yaml:"min_combined_net_energy"`

	// MinNetEnergy is the minimum Net Energy of each Ray individually.
	MinNetEnergy float64 `json:"min_net_energy" yaml:"min_net_energy"`

	// Priority breaks ties between rules that qualify together; lower wins.
	Priority int `json:"priority" yaml:"priority"`

	Disqualifiers []Disqualifier `json:"disqualifiers,omitempty" yaml:"disqualifiers,omitempty"`
}

// ExecSignalDef declares the predictors of one executive signal.
type ExecSignalDef struct {
	ID                 string   `json:"id" yaml:"id"`
	Label              string   `json:"label" yaml:"label"`
	Category           string   `json:"category,omitempty" yaml:"category,omitempty"`
	PredictorRays      []string `json:"predictor_rays,omitempty" yaml:"predictor_rays,omitempty"`
	PredictorSubfacets []string `json:"predictor_subfacets,omitempty" yaml:"predictor_subfacets,omitempty"`
	PredictorTools     []string `json:"predictor_tools,omitempty" yaml:"predictor_tools,omitempty"`

	// EclipseSensitive signals are penalized by the Eclipse of their
	// predictor Rays.
	EclipseSensitive bool `json:"eclipse_sensitive,omitempty" yaml:"eclipse_sensitive,omitempty"`
}

// Intervention is the static guidance attached to a trend warning for a Ray.
type Intervention struct {
	RayID        string `json:"ray_id" yaml:"ray_id"`
	Intervention string `json:"intervention" yaml:"intervention"`
	Rationale    string `json:"rationale" yaml:"rationale"`
}

// ItemBank is the complete versioned rule and content set consumed by the
// pipeline. It is loaded once and never mutated.
type ItemBank struct {
	Version           string             `json:"version" yaml:"version"`
	Instrument        string             `json:"instrument,omitempty" yaml:"instrument,omitempty"`
	Rays              []RayDef           `json:"rays" yaml:"rays"`
	Items             []Item             `json:"items" yaml:"items"`
	ReflectionPrompts []ReflectionPrompt `json:"reflection_prompts" yaml:"reflection_prompts"`
	Rules             ScoringRules       `json:"rules" yaml:"rules"`
	Archetypes        []ArchetypeRule    `json:"archetypes" yaml:"archetypes"`
	Signals           []ExecSignalDef    `json:"signals" yaml:"signals"`
	Interventions     []Intervention     `json:"interventions,omitempty" yaml:"interventions,omitempty"`
}
