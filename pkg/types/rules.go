// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ScoringRules carries every numeric rule the pipeline applies. The rules
// are data: a bank may override any field in scoring_rules.yaml and the
// remaining fields keep the values from DefaultScoringRules.
type ScoringRules struct {
	Usability    UsabilityRules    `json:"usability" yaml:"usability"`
	NetEnergy    NetEnergyRule     `json:"net_energy" yaml:"net_energy"`
	EclipseBlend EclipseBlend      `json:"eclipse_blend" yaml:"eclipse_blend"`
	EclipseLevel EclipseLevelRules `json:"eclipse_level" yaml:"eclipse_level"`
	Modifier     ModifierRules     `json:"eclipse_modifier" yaml:"eclipse_modifier"`
	Validity     ValidityRules     `json:"validity" yaml:"validity"`
	Reflection   ReflectionRubric  `json:"reflection" yaml:"reflection"`
	Confidence   ConfidenceRules   `json:"confidence" yaml:"confidence"`
	Gating       GatingRules       `json:"gating" yaml:"gating"`
	Ranking      RankingRules      `json:"ranking" yaml:"ranking"`
	Move         MoveRules         `json:"move" yaml:"move"`
	Signals      SignalRules       `json:"signals" yaml:"signals"`

	// ToolMap lists the tools whose readiness feeds the Move score of each
	// Ray. FallbackTools is used for Rays missing from the map.
	ToolMap       map[string][]string `json:"tool_map" yaml:"tool_map"`
	FallbackTools []string            `json:"fallback_tools" yaml:"fallback_tools"`
}

// UsabilityRules decide when an aggregate has enough answered items to be
// reported. A bucket is usable when its answered count reaches
// max(Min<bucket>Items, UsableFraction × bank items in the bucket).
type UsabilityRules struct {
	MinShineItems   int     `json:"min_shine_items" yaml:"min_shine_items"`
	MinAccessItems  int     `json:"min_access_items" yaml:"min_access_items"`
	MinEclipseItems int     `json:"min_eclipse_items" yaml:"min_eclipse_items"`
	UsableFraction  float64 `json:"usable_fraction" yaml:"usable_fraction"`

	// MinSubfacets is the number of usable sub-facets a Ray needs, capped
	// at the number of sub-facets with any usable bucket.
	MinSubfacets int `json:"min_subfacets" yaml:"min_subfacets"`

	ToolMinItems       int     `json:"tool_min_items" yaml:"tool_min_items"`
	ToolUsableFraction float64 `json:"tool_usable_fraction" yaml:"tool_usable_fraction"`
}

// NetEnergyRule is the linear combination
// clamp((ShineWeight·Shine − EclipseWeight·Eclipse + Offset) / Divisor, 0, 100).
type NetEnergyRule struct {
	ShineWeight   float64 `json:"shine_weight" yaml:"shine_weight"`
	EclipseWeight float64 `json:"eclipse_weight" yaml:"eclipse_weight"`
	Offset        float64 `json:"offset" yaml:"offset"`
	Divisor       float64 `json:"divisor" yaml:"divisor"`
}

// EclipseBlend weights a Ray's own eclipse items against the global
// Eclipse items. Weights are renormalized when one side is missing.
type EclipseBlend struct {
	RayWeight    float64 `json:"ray_weight" yaml:"ray_weight"`
	GlobalWeight float64 `json:"global_weight" yaml:"global_weight"`
}

// EclipseLevelRules band the aggregate load indices. LSI is on the 0-4
// scale, EER is a ratio, BRI is a Ray count.
type EclipseLevelRules struct {
	HighLSI          float64 `json:"high_lsi" yaml:"high_lsi"`
	HighEERBelow     float64 `json:"high_eer_below" yaml:"high_eer_below"`
	HighBRI          int     `json:"high_bri" yaml:"high_bri"`
	ElevatedLSI      float64 `json:"elevated_lsi" yaml:"elevated_lsi"`
	ElevatedEERBelow float64 `json:"elevated_eer_below" yaml:"elevated_eer_below"`
	ElevatedBRI      int     `json:"elevated_bri" yaml:"elevated_bri"`
	ModerateLSI      float64 `json:"moderate_lsi" yaml:"moderate_lsi"`
}

// ModifierRules classify each Ray's Eclipse relative to its Shine.
type ModifierRules struct {
	// PresentAt is the Eclipse score (0-100) below which no modifier applies.
	PresentAt float64 `json:"present_at" yaml:"present_at"`
}

// ValidityRules holds the thresholds of the nine data-quality checks.
// Response means are computed on the 0-4 scale.
type ValidityRules struct {
	SDElevated float64 `json:"sd_elevated" yaml:"sd_elevated"`
	SDExtreme  float64 `json:"sd_extreme" yaml:"sd_extreme"`

	InconsistencyPairDiff float64 `json:"inconsistency_pair_diff" yaml:"inconsistency_pair_diff"`
	InconsistencyMinPairs int     `json:"inconsistency_min_pairs" yaml:"inconsistency_min_pairs"`

	AttentionTolerance float64 `json:"attention_tolerance" yaml:"attention_tolerance"`
	AttentionMinMisses int     `json:"attention_min_misses" yaml:"attention_min_misses"`

	InfrequencyEndorse float64 `json:"infrequency_endorse" yaml:"infrequency_endorse"`
	InfrequencyMinHits int     `json:"infrequency_min_hits" yaml:"infrequency_min_hits"`

	SpeedingFloorSeconds   float64 `json:"speeding_floor_seconds" yaml:"speeding_floor_seconds"`
	PilotMedianSeconds     float64 `json:"pilot_median_seconds" yaml:"pilot_median_seconds"`
	SpeedingMedianFraction float64 `json:"speeding_median_fraction" yaml:"speeding_median_fraction"`

	StraightlineRun   int     `json:"straightline_run" yaml:"straightline_run"`
	StraightlineMinSD float64 `json:"straightline_min_sd" yaml:"straightline_min_sd"`

	ReflectionMinDepth float64 `json:"reflection_min_depth" yaml:"reflection_min_depth"`

	MissingFraction       float64 `json:"missing_fraction" yaml:"missing_fraction"`
	MissingRayLimit       int     `json:"missing_ray_limit" yaml:"missing_ray_limit"`
	SubfacetCoverageFloor float64 `json:"subfacet_coverage_floor" yaml:"subfacet_coverage_floor"`
	LowCoverageLimit      int     `json:"low_coverage_limit" yaml:"low_coverage_limit"`
}

// MarkerGroup is one rubric dimension of reflection depth. A reflection
// earns one indicator per group with at least one matching term.
type MarkerGroup struct {
	Name  string   `json:"name" yaml:"name"`
	Terms []string `json:"terms" yaml:"terms"`
}

// ReflectionRubric scores free-text reflections on a 0-3 depth scale.
type ReflectionRubric struct {
	MinWords    int           `json:"min_words" yaml:"min_words"`
	Depth2Words int           `json:"depth2_words" yaml:"depth2_words"`
	Depth3Words int           `json:"depth3_words" yaml:"depth3_words"`
	Markers     []MarkerGroup `json:"markers" yaml:"markers"`
}

// ConfidenceRules map validity flags onto a confidence band.
type ConfidenceRules struct {
	MajorFlags   []ValidityFlag `json:"major_flags" yaml:"major_flags"`
	LowFlagCount int            `json:"low_flag_count" yaml:"low_flag_count"`
}

// GatingRules decide when the aggregate load forces STABILIZE.
type GatingRules struct {
	StabilizeAt EclipseLevel `json:"stabilize_at" yaml:"stabilize_at"`
}

// RankingRules tune the Light Signature ranking.
type RankingRules struct {
	// TieWindow is the Net Energy distance inside which Rays are treated as
	// tied and ordered by the secondary tie-breaks.
	TieWindow float64 `json:"tie_window" yaml:"tie_window"`

	// FlatProfileSD is the Net Energy standard deviation below which the
	// profile is reported as flat.
	FlatProfileSD float64 `json:"flat_profile_sd" yaml:"flat_profile_sd"`
}

// MoveRules weight the Move score of the Rise Path Ray and route it. All
// thresholds are on the 0-4 scale.
type MoveRules struct {
	AccessWeight     float64 `json:"access_weight" yaml:"access_weight"`
	ToolWeight       float64 `json:"tool_weight" yaml:"tool_weight"`
	ReflectionWeight float64 `json:"reflection_weight" yaml:"reflection_weight"`
	StretchAt        float64 `json:"stretch_at" yaml:"stretch_at"`
	StandardAt       float64 `json:"standard_at" yaml:"standard_at"`
	MicroAt          float64 `json:"micro_at" yaml:"micro_at"`
}

// SignalRules band executive signal values (0-100) and set their
// modifiers.
type SignalRules struct {
	ModerateAt float64 `json:"moderate_at" yaml:"moderate_at"`
	ElevatedAt float64 `json:"elevated_at" yaml:"elevated_at"`
	HighAt     float64 `json:"high_at" yaml:"high_at"`

	// LowConfidenceDampening multiplies signal values on a LOW confidence run.
	LowConfidenceDampening float64 `json:"low_confidence_dampening" yaml:"low_confidence_dampening"`

	// EclipsePenalty scales the reduction Eclipse-sensitive signals take:
	// value × (1 − EclipsePenalty × eclipse/100).
	EclipsePenalty float64 `json:"eclipse_penalty" yaml:"eclipse_penalty"`
}

// DefaultScoringRules returns the rule set used when a bank does not
// override a field.
func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		Usability: UsabilityRules{
			MinShineItems:      1,
			MinAccessItems:     1,
			MinEclipseItems:    1,
			UsableFraction:     0.40,
			MinSubfacets:       3,
			ToolMinItems:       1,
			ToolUsableFraction: 0.40,
		},
		NetEnergy:    NetEnergyRule{ShineWeight: 1, EclipseWeight: 1, Offset: 100, Divisor: 2},
		EclipseBlend: EclipseBlend{RayWeight: 0.8, GlobalWeight: 0.2},
		EclipseLevel: EclipseLevelRules{
			HighLSI:          3.0,
			HighEERBelow:     0.8,
			HighBRI:          6,
			ElevatedLSI:      2.0,
			ElevatedEERBelow: 1.0,
			ElevatedBRI:      3,
			ModerateLSI:      1.0,
		},
		Modifier: ModifierRules{PresentAt: 40},
		Validity: ValidityRules{
			SDElevated:             3.2,
			SDExtreme:              3.6,
			InconsistencyPairDiff:  3,
			InconsistencyMinPairs:  2,
			AttentionTolerance:     0,
			AttentionMinMisses:     2,
			InfrequencyEndorse:     3,
			InfrequencyMinHits:     2,
			SpeedingFloorSeconds:   360,
			PilotMedianSeconds:     0,
			SpeedingMedianFraction: 0.25,
			StraightlineRun:        18,
			StraightlineMinSD:      0.35,
			ReflectionMinDepth:     1.0,
			MissingFraction:        0.20,
			MissingRayLimit:        3,
			SubfacetCoverageFloor:  0.60,
			LowCoverageLimit:       6,
		},
		Reflection: ReflectionRubric{
			MinWords:    15,
			Depth2Words: 40,
			Depth3Words: 80,
			Markers:     DefaultReflectionMarkers(),
		},
		Confidence: ConfidenceRules{
			MajorFlags:   []ValidityFlag{FlagAttention, FlagSpeeding},
			LowFlagCount: 3,
		},
		Gating:  GatingRules{StabilizeAt: EclipseElevated},
		Ranking: RankingRules{TieWindow: 2, FlatProfileSD: 3},
		Move: MoveRules{
			AccessWeight:     0.45,
			ToolWeight:       0.35,
			ReflectionWeight: 0.20,
			StretchAt:        3.4,
			StandardAt:       3.0,
			MicroAt:          2.4,
		},
		Signals: SignalRules{
			ModerateAt:             37.5,
			ElevatedAt:             62.5,
			HighAt:                 87.5,
			LowConfidenceDampening: 0.8,
			EclipsePenalty:         0.25,
		},
		ToolMap: map[string][]string{
			"R1": {"T010", "T001"},
			"R2": {"T004", "T007"},
			"R3": {"T008", "T006"},
			"R4": {"T009", "T002"},
			"R5": {"T010", "T005"},
			"R6": {"T003", "T002"},
			"R7": {"T003", "T011"},
			"R8": {"T005", "T001"},
			"R9": {"T004", "T012"},
		},
		FallbackTools: []string{"T008", "T010"},
	}
}

// DefaultReflectionMarkers returns the rubric dimensions used to score
// reflection depth.
func DefaultReflectionMarkers() []MarkerGroup {
	return []MarkerGroup{
		{Name: "specificity", Terms: []string{
			"meeting", "conversation", "moment", "yesterday", "last week",
			"morning", "when i", "i noticed", "i felt", "i realized", "specific",
			"example", "happened", "situation", "colleague", "partner", "boss",
			"team", "client",
		}},
		{Name: "ownership", Terms: []string{
			"i chose", "i decided", "my choice", "i could have", "next time",
			"i will", "i want to", "instead of", "i took", "i paused",
			"my responsibility", "i own",
		}},
		{Name: "body", Terms: []string{
			"body", "tension", "breath", "stomach", "chest", "heart rate", "jaw",
			"shoulders", "racing", "calm", "grounded", "activated", "numb",
			"anxious", "overwhelmed", "tight",
		}},
		{Name: "practice", Terms: []string{
			"watch me", "i rise", "go first", "reps", "143", "90-second",
			"ras reset", "presence pause", "boundary", "if/then", "question loop",
			"witness", "practice", "tool", "micro-rep", "cue",
		}},
		{Name: "plan", Terms: []string{
			"next 7 days", "this week", "my plan", "i commit", "one rep",
			"going to", "will try", "start with", "small step", "daily",
			"each day", "every morning", "before i",
		}},
	}
}

// TrendRules hold the thresholds of the longitudinal trend predictor.
// Velocities are Net Energy points per run.
type TrendRules struct {
	ImprovingAbove float64 `json:"improving_above" yaml:"improving_above" mapstructure:"improving_above"`
	DecliningBelow float64 `json:"declining_below" yaml:"declining_below" mapstructure:"declining_below"`
	CriticalBelow  float64 `json:"critical_below" yaml:"critical_below" mapstructure:"critical_below"`
	CriticalStreak int     `json:"critical_streak" yaml:"critical_streak" mapstructure:"critical_streak"`

	// CriticalFloor forces CRITICAL when the current Net Energy is below it
	// and the velocity is negative.
	CriticalFloor float64 `json:"critical_floor" yaml:"critical_floor" mapstructure:"critical_floor"`

	// HorizonRuns is how many runs ahead predicted_2w projects.
	HorizonRuns float64 `json:"horizon_runs" yaml:"horizon_runs" mapstructure:"horizon_runs"`

	CautionMinRays int `json:"caution_min_rays" yaml:"caution_min_rays" mapstructure:"caution_min_rays"`
	WatchStreak    int `json:"watch_streak" yaml:"watch_streak" mapstructure:"watch_streak"`
}

// DefaultTrendRules returns the predictor thresholds.
func DefaultTrendRules() TrendRules {
	return TrendRules{
		ImprovingAbove: 2,
		DecliningBelow: -2,
		CriticalBelow:  -4,
		CriticalStreak: 2,
		CriticalFloor:  35,
		HorizonRuns:    2,
		CautionMinRays: 2,
		WatchStreak:    2,
	}
}
