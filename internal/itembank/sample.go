// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package itembank

import (
	"fmt"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// SampleVersion is the version of the built-in sample bank.
const SampleVersion = "sample-1"

var sampleRays = []struct {
	name, verb, phase string
	subfacets         [4]string
}{
	{"Intention", "Choose", "Reconnect", [4]string{"Daily Intentionality", "Time/Attention Architecture", "Boundary Clarity", "Pre-Decision Practice"}},
	{"Joy", "Expand", "Reconnect", [4]string{"Joy Access", "Gratitude Practice", "Reinforcement Behavior", "Recovery Integration"}},
	{"Presence", "Anchor", "Reconnect", [4]string{"Attention Stability", "Cognitive Flexibility", "Body Signal Awareness", "Emotional Regulation"}},
	{"Power", "Act", "Radiate", [4]string{"Agency/Action Orientation", "Boundary Enforcement", "Conflict Engagement", "Power Under Pressure"}},
	{"Purpose", "Align", "Radiate", [4]string{"Purpose Clarity", "Values Alignment", "Meaningful Contribution", "Long-Range Thinking"}},
	{"Authenticity", "Reveal", "Radiate", [4]string{"Self-Disclosure", "Congruence", "Vulnerability Tolerance", "Identity Integration"}},
	{"Connection", "Attune", "Become", [4]string{"Relational Safety Creation", "Empathic Accuracy", "Repair Initiation", "Trust Building"}},
	{"Possibility", "Explore", "Become", [4]string{"Cognitive Openness", "Divergent Thinking", "Adaptive Flexibility", "Creative Problem-Solving"}},
	{"Be The Light", "Inspire", "Become", [4]string{"Behavioral Modeling", "Standard Setting", "Generative Impact", "Legacy Orientation"}},
}

var sampleSignals = []types.ExecSignalDef{
	{ID: "M001", Label: "Daily Intentionality", Category: "Core 18", PredictorRays: []string{"R1"}, PredictorSubfacets: []string{"R1a"}, PredictorTools: []string{"T010"}},
	{ID: "M002", Label: "Time/Attention Architecture", Category: "Core 18", PredictorRays: []string{"R1"}, PredictorSubfacets: []string{"R1b"}},
	{ID: "M003", Label: "Joy Access", Category: "Core 18", PredictorRays: []string{"R2"}, PredictorSubfacets: []string{"R2a"}},
	{ID: "M004", Label: "Gratitude Practice", Category: "Core 18", PredictorRays: []string{"R2"}, PredictorSubfacets: []string{"R2b"}, PredictorTools: []string{"T004"}},
	{ID: "M005", Label: "Attention Stability", Category: "Core 18", PredictorRays: []string{"R3"}, PredictorSubfacets: []string{"R3a"}, PredictorTools: []string{"T008"}},
	{ID: "M006", Label: "Interoception", Category: "Core 18", PredictorRays: []string{"R3"}, PredictorSubfacets: []string{"R3c"}, PredictorTools: []string{"T006"}},
	{ID: "M007", Label: "Fear Naming", Category: "Core 18", PredictorRays: []string{"R3", "R4"}, PredictorTools: []string{"T002"}},
	{ID: "M008", Label: "Agency/Control Focus", Category: "Core 18", PredictorRays: []string{"R4"}, PredictorSubfacets: []string{"R4a"}},
	{ID: "M009", Label: "Values Clarity", Category: "Core 18", PredictorRays: []string{"R5"}, PredictorSubfacets: []string{"R5a", "R5b"}},
	{ID: "M010", Label: "Decision Alignment", Category: "Core 18", PredictorRays: []string{"R1", "R5"}, PredictorTools: []string{"T010"}},
	{ID: "M011", Label: "Identity Coherence", Category: "Core 18", PredictorRays: []string{"R6"}, PredictorSubfacets: []string{"R6d"}},
	{ID: "M012", Label: "Boundary Setting", Category: "Core 18", PredictorRays: []string{"R4"}, PredictorSubfacets: []string{"R1c", "R4b"}, PredictorTools: []string{"T009"}},
	{ID: "M013", Label: "Attunement", Category: "Core 18", PredictorRays: []string{"R7"}, PredictorSubfacets: []string{"R7b"}, PredictorTools: []string{"T012"}},
	{ID: "M014", Label: "Conversation Agility", Category: "Core 18", PredictorRays: []string{"R7"}, PredictorTools: []string{"T011"}},
	{ID: "M015", Label: "Openness", Category: "Core 18", PredictorRays: []string{"R8"}, PredictorSubfacets: []string{"R8a"}},
	{ID: "M016", Label: "Opportunity Recognition", Category: "Core 18", PredictorRays: []string{"R8"}, PredictorTools: []string{"T007"}},
	{ID: "M017", Label: "Modeling", Category: "Core 18", PredictorRays: []string{"R9"}, PredictorSubfacets: []string{"R9a"}, PredictorTools: []string{"T001"}},
	{ID: "M018", Label: "Ripple Effect", Category: "Core 18", PredictorRays: []string{"R9"}, PredictorSubfacets: []string{"R9c"}},
	{ID: "M019", Label: "Burnout Risk", Category: "Exec 6", PredictorRays: []string{"R2", "R3"}, PredictorSubfacets: []string{"R2d"}, EclipseSensitive: true},
	{ID: "M020", Label: "Reliability Under Pressure", Category: "Exec 6", PredictorRays: []string{"R3", "R4"}, PredictorSubfacets: []string{"R4d"}, EclipseSensitive: true},
	{ID: "M021", Label: "Decision Quality", Category: "Exec 6", PredictorRays: []string{"R1", "R5", "R8"}, EclipseSensitive: true},
	{ID: "M022", Label: "Psychological Safety", Category: "Exec 6", PredictorRays: []string{"R6", "R7"}, PredictorSubfacets: []string{"R7a"}},
	{ID: "M023", Label: "Engagement", Category: "Exec 6", PredictorRays: []string{"R2", "R5"}, PredictorTools: []string{"T005"}},
	{ID: "M024", Label: "Leadership Readiness", Category: "Exec 6", PredictorRays: []string{"R4", "R7", "R9"}, PredictorTools: []string{"T003"}, EclipseSensitive: true},
}

// DefaultInterventions returns the Ray-keyed guidance attached to trend
// warnings when a bank declares none.
func DefaultInterventions() []types.Intervention {
	return []types.Intervention{
		{RayID: "R1", Intervention: "Set one clear intention each morning. Write it down. Review it at noon. That is the rep.",
			Rationale: "Implementation intentions roughly double follow-through on stated goals (Gollwitzer & Sheeran, 2006)."},
		{RayID: "R2", Intervention: "One micro-joy per day. Notice something beautiful. Say it out loud. 30 seconds.",
			Rationale: "Brief positive emotion broadens attention and rebuilds depleted resources (Fredrickson, broaden-and-build, 2001)."},
		{RayID: "R3", Intervention: "Three breaths before your next meeting. Name what you feel. That is Presence.",
			Rationale: "Labeling an emotion dampens the amygdala response to it (Lieberman et al., affect labeling, 2007)."},
		{RayID: "R4", Intervention: "One small action you have been avoiding. Do it before noon. That is Power.",
			Rationale: "Small scheduled actions break avoidance cycles faster than insight alone (behavioral activation, Jacobson et al., 2001)."},
		{RayID: "R5", Intervention: "Ask yourself: does this serve my values or someone else's expectations? Once per day.",
			Rationale: "Goals that are self-concordant are pursued with more sustained effort (Sheldon & Elliot, 1999)."},
		{RayID: "R6", Intervention: "Say one true thing today that you would normally hold back. Start small.",
			Rationale: "Chronic self-suppression raises physiological load and lowers well-being (Gross & John, 2003)."},
		{RayID: "R7", Intervention: "Ask one real question in your next conversation. Listen to the whole answer.",
			Rationale: "Perceived partner responsiveness predicts relationship quality and stress buffering (Reis et al., 2004)."},
		{RayID: "R8", Intervention: "Name one possibility you have dismissed. Sit with it for 60 seconds.",
			Rationale: "Psychological flexibility protects against the narrowing effect of chronic stress (Kashdan & Rottenberg, 2010)."},
		{RayID: "R9", Intervention: "Hold space for one person today without trying to fix anything.",
			Rationale: "Giving support buffers the giver against stress as well as the receiver (Cohen & Wills, 1985; Inagaki, 2018)."},
	}
}

// Sample builds a complete synthetic 143-item bank: 108 Ray items (three
// per sub-facet), 12 tool items, 8 Eclipse items and 15 validity items,
// plus 36 archetype rules and the 24-signal catalog. It backs tests and the
// `bank sample` command.
func Sample() types.ItemBank {
	bank := types.ItemBank{
		Version:       SampleVersion,
		Instrument:    "light-signature-143",
		Rules:         types.DefaultScoringRules(),
		Signals:       append([]types.ExecSignalDef(nil), sampleSignals...),
		Interventions: DefaultInterventions(),
	}

	letters := []string{"a", "b", "c", "d"}
	for i, r := range sampleRays {
		rayID := fmt.Sprintf("R%d", i+1)
		def := types.RayDef{ID: rayID, Name: r.name, Verb: r.verb, Phase: r.phase}
		for j, label := range r.subfacets {
			sf := rayID + letters[j]
			def.Subfacets = append(def.Subfacets, types.SubfacetDef{ID: sf, Label: label})

			second := types.Item{
				ID: sf + "-2", Kind: types.KindRay, RayID: rayID, SubfacetID: sf,
				Polarity: types.PolarityReverse, PressureMode: types.PressureBaseline,
			}
			if j%2 == 1 {
				second.Polarity = types.PolarityNormal
				second.PressureMode = types.PressureUnderPressure
			}
			bank.Items = append(bank.Items,
				types.Item{
					ID: sf + "-1", Kind: types.KindRay, RayID: rayID, SubfacetID: sf,
					Polarity: types.PolarityNormal, PressureMode: types.PressureBaseline, Required: true,
				},
				second,
				types.Item{
					ID: sf + "-3", Kind: types.KindRay, RayID: rayID, SubfacetID: sf,
					Polarity: types.PolarityReverse, PressureMode: types.PressureUnderPressure,
				},
			)
		}
		bank.Rays = append(bank.Rays, def)
	}

	for t := 1; t <= 12; t++ {
		mode := types.PressureBaseline
		if t > 6 {
			mode = types.PressureUnderPressure
		}
		bank.Items = append(bank.Items, types.Item{
			ID: fmt.Sprintf("TOOL-%02d", t), Kind: types.KindTool, ToolID: fmt.Sprintf("T%03d", t),
			Polarity: types.PolarityNormal, PressureMode: mode,
		})
	}

	for e := 1; e <= 8; e++ {
		pol := types.PolarityNormal
		if e > 6 {
			pol = types.PolarityReverse
		}
		bank.Items = append(bank.Items, types.Item{
			ID: fmt.Sprintf("ECL-%02d", e), Kind: types.KindEclipse, Polarity: pol,
		})
	}

	for s := 1; s <= 4; s++ {
		bank.Items = append(bank.Items, types.Item{
			ID: fmt.Sprintf("VAL-SD%d", s), Kind: types.KindValidity, Check: types.CheckSocialDesirability,
		})
	}
	for p := 1; p <= 2; p++ {
		for _, half := range []string{"a", "b"} {
			bank.Items = append(bank.Items, types.Item{
				ID: fmt.Sprintf("VAL-INC%d%s", p, half), Kind: types.KindValidity,
				Check: types.CheckInconsistency, PairID: fmt.Sprintf("P%d", p),
			})
		}
	}
	for a, want := range []float64{4, 0, 2} {
		want := want
		bank.Items = append(bank.Items, types.Item{
			ID: fmt.Sprintf("VAL-ATT%d", a+1), Kind: types.KindValidity,
			Check: types.CheckAttention, Expected: &want, Required: true,
		})
	}
	for f := 1; f <= 4; f++ {
		bank.Items = append(bank.Items, types.Item{
			ID: fmt.Sprintf("VAL-INF%d", f), Kind: types.KindValidity, Check: types.CheckInfrequency,
		})
	}

	bank.ReflectionPrompts = []types.ReflectionPrompt{
		{ID: "RP1", RayID: "R1", Text: "Describe a recent moment when you chose your direction before the day chose it for you."},
		{ID: "RP2", RayID: "R3", Text: "What happens in your body when pressure rises, and what do you do next?"},
		{ID: "RP3", RayID: "R4", Text: "Name one action you will take in the next 7 days and how you will know it happened."},
	}

	for i := range bank.Rays {
		for j := i + 1; j < len(bank.Rays); j++ {
			a, b := bank.Rays[i], bank.Rays[j]
			bank.Archetypes = append(bank.Archetypes, types.ArchetypeRule{
				Name:                 fmt.Sprintf("%s-%s Signature", a.Name, b.Name),
				PairCode:             types.PairCode(a.ID, b.ID),
				TechnicalLabel:       fmt.Sprintf("%s + %s", a.Verb, b.Verb),
				RayA:                 a.ID,
				RayB:                 b.ID,
				MinCombinedNetEnergy: 100,
				MinNetEnergy:         45,
				Priority:             1,
				Disqualifiers: []types.Disqualifier{
					{Kind: types.DisqualifyEclipseAbove, Threshold: 85},
				},
			})
		}
	}

	return bank
}

// MustSample returns the sample bank as a validated Bank.
func MustSample() *Bank {
	b, err := New(Sample())
	if err != nil {
		panic(err)
	}
	return b
}
