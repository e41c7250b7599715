// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ValidityFlag is one of the nine data-quality conditions a run can raise.
type ValidityFlag string

const (
	FlagSocialDesirability   ValidityFlag = "SOCIAL_DESIRABILITY"
	FlagImpressionManagement ValidityFlag = "IMPRESSION_MANAGEMENT"
	FlagInconsistency        ValidityFlag = "INCONSISTENCY"
	FlagSpeeding             ValidityFlag = "SPEEDING"
	FlagStraightlining       ValidityFlag = "STRAIGHTLINING"
	FlagAttention            ValidityFlag = "ATTENTION"
	FlagInfrequency          ValidityFlag = "INFREQUENCY"
	FlagLowReflectionDepth   ValidityFlag = "LOW_REFLECTION_DEPTH"
	FlagMissingness          ValidityFlag = "MISSINGNESS"
)

// AllValidityFlags lists the flags in their canonical order.
var AllValidityFlags = []ValidityFlag{
	FlagSocialDesirability,
	FlagImpressionManagement,
	FlagInconsistency,
	FlagSpeeding,
	FlagStraightlining,
	FlagAttention,
	FlagInfrequency,
	FlagLowReflectionDepth,
	FlagMissingness,
}

// ConfidenceBand is the trust verdict on a run's scores.
type ConfidenceBand string

const (
	ConfidenceHigh     ConfidenceBand = "HIGH"
	ConfidenceModerate ConfidenceBand = "MODERATE"
	ConfidenceLow      ConfidenceBand = "LOW"
)

// Rank orders bands from LOW (0) to HIGH (2).
func (b ConfidenceBand) Rank() int {
	switch b {
	case ConfidenceHigh:
		return 2
	case ConfidenceModerate:
		return 1
	default:
		return 0
	}
}

// EclipseLevel bands the aggregate load of a run.
type EclipseLevel string

const (
	EclipseLow      EclipseLevel = "LOW"
	EclipseModerate EclipseLevel = "MODERATE"
	EclipseElevated EclipseLevel = "ELEVATED"
	EclipseHigh     EclipseLevel = "HIGH"
)

// Rank orders levels from LOW (0) to HIGH (3).
func (l EclipseLevel) Rank() int {
	switch l {
	case EclipseHigh:
		return 3
	case EclipseElevated:
		return 2
	case EclipseModerate:
		return 1
	default:
		return 0
	}
}

// GatingMode selects recovery-first or growth-focused guidance downstream.
type GatingMode string

const (
	GateStabilize GatingMode = "STABILIZE"
	GateGrow      GatingMode = "GROW"
)

// EclipseModifier describes how a Ray's load relates to its capacity.
// NONE means the load is below the presence threshold, MUTED means load is
// present but capacity still leads, AMPLIFIED means load exceeds capacity.
type EclipseModifier string

const (
	ModifierNone      EclipseModifier = "NONE"
	ModifierMuted     EclipseModifier = "MUTED"
	ModifierAmplified EclipseModifier = "AMPLIFIED"
)

// MatchStatus reports how an archetype lookup resolved.
type MatchStatus string

const (
	MatchMatched          MatchStatus = "MATCHED"
	MatchNoRule           MatchStatus = "NO_RULE"
	MatchNotQualified     MatchStatus = "NOT_QUALIFIED"
	MatchDisqualified     MatchStatus = "DISQUALIFIED"
	MatchInsufficientData MatchStatus = "INSUFFICIENT_DATA"
)

// Routing is the training route chosen for the Rise Path Ray.
type Routing string

const (
	RouteStretch         Routing = "STRETCH"
	RouteStandard        Routing = "STANDARD"
	RouteStabilizeMicro  Routing = "STABILIZE_MICRO"
	RouteStabilizeRetest Routing = "STABILIZE_RETEST"
)

// SignalLevel bands an executive signal value.
type SignalLevel string

const (
	SignalLow      SignalLevel = "LOW"
	SignalModerate SignalLevel = "MODERATE"
	SignalElevated SignalLevel = "ELEVATED"
	SignalHigh     SignalLevel = "HIGH"
)

// Rank orders levels from LOW (0) to HIGH (3).
func (l SignalLevel) Rank() int {
	switch l {
	case SignalHigh:
		return 3
	case SignalElevated:
		return 2
	case SignalModerate:
		return 1
	default:
		return 0
	}
}

// RaySubfacetOutput is the score of one sub-facet. Missing sub-facets have
// no answered items and carry null scores.
type RaySubfacetOutput struct {
	SubfacetID   string   `json:"subfacet_id"`
	Label        string   `json:"label"`
	Score        *float64 `json:"score"`
	AccessScore  *float64 `json:"access_score"`
	EclipseScore *float64 `json:"eclipse_score"`
	Coverage     float64  `json:"coverage"`
	Missing      bool     `json:"missing"`
}

// RayOutput is the result for one Ray. Score is Shine.
type RayOutput struct {
	RayID           string                       `json:"ray_id"`
	RayName         string                       `json:"ray_name"`
	Score           *float64                     `json:"score"`
	AccessScore     *float64                     `json:"access_score"`
	EclipseScore    *float64                     `json:"eclipse_score"`
	NetEnergy       *float64                     `json:"net_energy"`
	EclipseModifier EclipseModifier              `json:"eclipse_modifier"`
	Partial         bool                         `json:"partial"`
	Subfacets       map[string]RaySubfacetOutput `json:"subfacets"`
}

// ToolOutput holds the readiness composites of one practice tool.
type ToolOutput struct {
	ToolID     string   `json:"tool_id"`
	Usage      *float64 `json:"usage"`
	Access     *float64 `json:"access"`
	Distortion *float64 `json:"distortion"`
	Coverage   float64  `json:"coverage"`
}

// EclipseSummary is the aggregate load of a run. LSI is the mean of the
// global Eclipse items on 0-4, EER the Shine to Eclipse energy ratio, BRI
// the number of Rays whose Eclipse exceeds their Shine.
type EclipseSummary struct {
	Level EclipseLevel `json:"level"`
	LSI   *float64     `json:"lsi"`
	EER   *float64     `json:"eer"`
	BRI   int          `json:"bri"`
}

// RayRef identifies a ranked Ray.
type RayRef struct {
	RayID     string  `json:"ray_id"`
	RayName   string  `json:"ray_name"`
	NetEnergy float64 `json:"net_energy"`
	Shine     float64 `json:"shine"`
	Eclipse   float64 `json:"eclipse"`
}

// RisePath is the lowest ranked Ray plus its training route.
type RisePath struct {
	RayRef
	MoveScore *float64 `json:"move_score"`
	Routing   Routing  `json:"routing"`
}

// Archetype is a matched Light Signature.
type Archetype struct {
	Name           string `json:"name"`
	PairCode       string `json:"pair_code"`
	TechnicalLabel string `json:"technical_label"`
}

// LightSignatureOutput is the archetype derived from the top two Rays.
type LightSignatureOutput struct {
	TopTwo      []RayRef    `json:"top_two"`
	JustInRay   *RisePath   `json:"just_in_ray"`
	Archetype   *Archetype  `json:"archetype"`
	MatchStatus MatchStatus `json:"match_status"`
	CloseCall   bool        `json:"close_call"`
	FlatProfile bool        `json:"flat_profile"`
	Alternates  []Archetype `json:"alternates,omitempty"`
}

// Gating is the guidance mode of a run and the reason it was chosen.
type Gating struct {
	Mode   GatingMode `json:"mode"`
	Reason string     `json:"reason"`
}

// QualityMetrics are the raw measurements behind the validity flags.
type QualityMetrics struct {
	SocialDesirabilityMean *float64 `json:"social_desirability_mean"`
	InconsistentPairs      int      `json:"inconsistent_pairs"`
	AttentionMisses        int      `json:"attention_misses"`
	InfrequencyHits        int      `json:"infrequency_hits"`
	DurationSeconds        *float64 `json:"duration_seconds"`
	LongestRun             int      `json:"longest_run"`
	ResponseSD             *float64 `json:"response_sd"`
	ReflectionDepth        *float64 `json:"reflection_depth"`
	ReflectionsAnswered    int      `json:"reflections_answered"`
	MissingFraction        float64  `json:"missing_fraction"`
	EmptySubfacets         []string `json:"empty_subfacets"`
	LowCoverageSubfacets   int      `json:"low_coverage_subfacets"`
	UnscoreableRays        int      `json:"unscoreable_rays"`
}

// DataQualityOutput is the confidence verdict of a run.
type DataQualityOutput struct {
	ValidityFlags  []ValidityFlag `json:"validity_flags"`
	ConfidenceBand ConfidenceBand `json:"confidence_band"`
	Gating         Gating         `json:"gating"`
	Metrics        QualityMetrics `json:"metrics"`
}

// HasFlag reports whether flag was raised.
func (d DataQualityOutput) HasFlag(flag ValidityFlag) bool {
	for _, f := range d.ValidityFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// ExecutiveSignalOutput is one of the 24 behavioral signals.
type ExecutiveSignalOutput struct {
	SignalID         string      `json:"signal_id"`
	Label            string      `json:"label"`
	Value            float64     `json:"value"`
	Level            SignalLevel `json:"level"`
	ContributingRays []string    `json:"contributing_rays"`
	ModifiersApplied []string    `json:"modifiers_applied"`
	InsufficientData bool        `json:"insufficient_data"`
}

// IntegrityIssue is a rule-table defect detected while scoring a run.
type IntegrityIssue struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// PipelineOutput is the persisted, signed result of one run. ComputedAt is
// never part of the audited payload.
type PipelineOutput struct {
	RunID            string                  `json:"run_id"`
	SubjectID        string                  `json:"subject_id,omitempty"`
	RunNumber        int                     `json:"run_number"`
	BankVersion      string                  `json:"bank_version"`
	CompletedAt      *time.Time              `json:"completed_at,omitempty"`
	Rays             []RayOutput             `json:"rays"`
	Tools            []ToolOutput            `json:"tools"`
	Eclipse          EclipseSummary          `json:"eclipse"`
	LightSignature   LightSignatureOutput    `json:"light_signature"`
	DataQuality      DataQualityOutput       `json:"data_quality"`
	ExecutiveSignals []ExecutiveSignalOutput `json:"executive_signals"`
	IntegrityIssues  []IntegrityIssue        `json:"integrity_issues"`
	ComputedAt       time.Time               `json:"computed_at"`
}

// Ray returns the output for rayID.
func (o *PipelineOutput) Ray(rayID string) (RayOutput, bool) {
	for _, r := range o.Rays {
		if r.RayID == rayID {
			return r, true
		}
	}
	return RayOutput{}, false
}
