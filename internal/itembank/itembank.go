// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package itembank loads, validates, and indexes the versioned rule and
// content tables the pipeline scores against: Ray, tool, Eclipse and
// validity items, reflection prompts, scoring rules, archetype rules,
// executive signals, and trend interventions.
//
// A Bank is immutable once built and safe to share across goroutines.
package itembank

import (
	"sort"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// Bank is a validated item bank with read-only lookup indexes.
type Bank struct {
	raw types.ItemBank

	rays          []types.RayDef
	rayByID       map[string]types.RayDef
	subfacetLabel map[string]string
	items         map[string]types.Item
	bySubfacet    map[string][]types.Item
	toolIDs       []string
	byTool        map[string][]types.Item
	eclipse       []types.Item
	validity      []types.Item
	archetypes    map[string][]types.ArchetypeRule
	interventions map[string]types.Intervention
}

// New validates raw and builds its indexes. Item order inside every index
// follows the order the bank declares, so aggregates are summed in a
// stable order.
func New(raw types.ItemBank) (*Bank, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}

	b := &Bank{
		raw:           raw,
		rayByID:       make(map[string]types.RayDef, len(raw.Rays)),
		subfacetLabel: make(map[string]string),
		items:         make(map[string]types.Item, len(raw.Items)),
		bySubfacet:    make(map[string][]types.Item),
		byTool:        make(map[string][]types.Item),
		archetypes:    make(map[string][]types.ArchetypeRule),
		interventions: make(map[string]types.Intervention),
	}

	b.rays = append([]types.RayDef(nil), raw.Rays...)
	sort.SliceStable(b.rays, func(i, j int) bool { return b.rays[i].Number() < b.rays[j].Number() })
	for _, r := range b.rays {
		b.rayByID[r.ID] = r
		for _, sf := range r.Subfacets {
			b.subfacetLabel[sf.ID] = sf.Label
		}
	}

	for _, it := range raw.Items {
		b.items[it.ID] = it
		switch it.Kind {
		case types.KindRay:
			b.bySubfacet[it.SubfacetID] = append(b.bySubfacet[it.SubfacetID], it)
		case types.KindTool:
			if _, ok := b.byTool[it.ToolID]; !ok {
				b.toolIDs = append(b.toolIDs, it.ToolID)
			}
			b.byTool[it.ToolID] = append(b.byTool[it.ToolID], it)
		case types.KindEclipse:
			b.eclipse = append(b.eclipse, it)
		case types.KindValidity:
			b.validity = append(b.validity, it)
		}
	}
	sort.Strings(b.toolIDs)

	for _, a := range raw.Archetypes {
		b.archetypes[a.PairCode] = append(b.archetypes[a.PairCode], a)
	}
	for _, iv := range raw.Interventions {
		b.interventions[iv.RayID] = iv
	}
	return b, nil
}

// Version returns the bank version from its manifest.
func (b *Bank) Version() string { return b.raw.Version }

// Raw returns the bank as loaded.
func (b *Bank) Raw() types.ItemBank { return b.raw }

// Rules returns the scoring rules in effect for this bank.
func (b *Bank) Rules() types.ScoringRules { return b.raw.Rules }

// Rays returns the Ray catalog ordered by Ray number. Callers must not
// modify the slice.
func (b *Bank) Rays() []types.RayDef { return b.rays }

// Ray returns the definition of rayID.
func (b *Bank) Ray(rayID string) (types.RayDef, bool) {
	r, ok := b.rayByID[rayID]
	return r, ok
}

// SubfacetLabel returns the display label of a sub-facet.
func (b *Bank) SubfacetLabel(subfacetID string) string { return b.subfacetLabel[subfacetID] }

// Item returns the item with the given id.
func (b *Bank) Item(id string) (types.Item, bool) {
	it, ok := b.items[id]
	return it, ok
}

// Items returns every item in declaration order.
func (b *Bank) Items() []types.Item { return b.raw.Items }

// SubfacetItems returns the Ray items of one sub-facet.
func (b *Bank) SubfacetItems(subfacetID string) []types.Item { return b.bySubfacet[subfacetID] }

// ToolIDs returns the tool ids in sorted order.
func (b *Bank) ToolIDs() []string { return b.toolIDs }

// ToolItems returns the items of one tool.
func (b *Bank) ToolItems(toolID string) []types.Item { return b.byTool[toolID] }

// EclipseItems returns the global Eclipse items.
func (b *Bank) EclipseItems() []types.Item { return b.eclipse }

// ValidityItems returns the validity items feeding check.
func (b *Bank) ValidityItems(check types.ValidityCheck) []types.Item {
	var out []types.Item
	for _, it := range b.validity {
		if it.Check == check {
			out = append(out, it)
		}
	}
	return out
}

// ReflectionPrompts returns the reflection prompts in declaration order.
func (b *Bank) ReflectionPrompts() []types.ReflectionPrompt { return b.raw.ReflectionPrompts }

// Archetypes returns the rules declared for a canonical pair code.
func (b *Bank) Archetypes(pairCode string) []types.ArchetypeRule { return b.archetypes[pairCode] }

// Signals returns the executive signal catalog ordered by id.
func (b *Bank) Signals() []types.ExecSignalDef {
	out := append([]types.ExecSignalDef(nil), b.raw.Signals...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Intervention returns the trend intervention declared for rayID.
func (b *Bank) Intervention(rayID string) (types.Intervention, bool) {
	iv, ok := b.interventions[rayID]
	return iv, ok
}

// Interventions returns the declared trend interventions.
func (b *Bank) Interventions() []types.Intervention { return b.raw.Interventions }
