// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package itembank

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// Files of the on-disk bank layout.
const (
	manifestFile      = "manifest.yaml"
	raysFile          = "rays.yaml"
	rayItemsFile      = "ray_items.yaml"
	toolItemsFile     = "tool_items.yaml"
	eclipseItemsFile  = "eclipse_items.yaml"
	validityItemsFile = "validity_items.yaml"
	promptsFile       = "reflection_prompts.yaml"
	rulesFile         = "scoring_rules.yaml"
	archetypesFile    = "archetypes.yaml"
	signalsFile       = "executive_signals.yaml"
	interventionsFile = "interventions.yaml"
)

// Manifest identifies a bank on disk.
type Manifest struct {
	Version    string `yaml:"version"`
	Instrument string `yaml:"instrument,omitempty"`
}

// itemFiles maps each item file to the kind its items default to.
var itemFiles = []struct {
	name string
	kind types.ItemKind
}{
	{rayItemsFile, types.KindRay},
	{toolItemsFile, types.KindTool},
	{eclipseItemsFile, types.KindEclipse},
	{validityItemsFile, types.KindValidity},
}

// ReadManifest reads only the manifest of the bank in dir.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	if err := readYAML(filepath.Join(dir, manifestFile), &m, false); err != nil {
		return Manifest{}, err
	}
	if m.Version == "" {
		return Manifest{}, fmt.Errorf("%s: missing version", filepath.Join(dir, manifestFile))
	}
	return m, nil
}

// Load reads the bank in dir. Scoring rules start from
// types.DefaultScoringRules and any field present in scoring_rules.yaml
// overrides the default. Load does not validate; use New.
func Load(dir string) (types.ItemBank, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return types.ItemBank{}, err
	}

	bank := types.ItemBank{
		Version:    m.Version,
		Instrument: m.Instrument,
		Rules:      types.DefaultScoringRules(),
	}

	if err := readYAML(filepath.Join(dir, raysFile), &bank.Rays, false); err != nil {
		return types.ItemBank{}, err
	}

	for _, f := range itemFiles {
		var items []types.Item
		if err := readYAML(filepath.Join(dir, f.name), &items, f.kind != types.KindRay); err != nil {
			return types.ItemBank{}, err
		}
		for i := range items {
			if items[i].Kind == "" {
				items[i].Kind = f.kind
			}
		}
		bank.Items = append(bank.Items, items...)
	}

	optional := []struct {
		name string
		out  any
	}{
		{promptsFile, &bank.ReflectionPrompts},
		{rulesFile, &bank.Rules},
		{interventionsFile, &bank.Interventions},
	}
	for _, f := range optional {
		if err := readYAML(filepath.Join(dir, f.name), f.out, true); err != nil {
			return types.ItemBank{}, err
		}
	}

	if err := readYAML(filepath.Join(dir, archetypesFile), &bank.Archetypes, false); err != nil {
		return types.ItemBank{}, err
	}
	if err := readYAML(filepath.Join(dir, signalsFile), &bank.Signals, false); err != nil {
		return types.ItemBank{}, err
	}

	return bank, nil
}

// Save writes bank to dir in the layout Load reads.
func Save(dir string, bank types.ItemBank) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating bank directory: %w", err)
	}

	byKind := make(map[types.ItemKind][]types.Item)
	for _, it := range bank.Items {
		byKind[it.Kind] = append(byKind[it.Kind], it)
	}

	files := []struct {
		name string
		v    any
	}{
		{manifestFile, Manifest{Version: bank.Version, Instrument: bank.Instrument}},
		{raysFile, bank.Rays},
		{promptsFile, bank.ReflectionPrompts},
		{rulesFile, bank.Rules},
		{archetypesFile, bank.Archetypes},
		{signalsFile, bank.Signals},
		{interventionsFile, bank.Interventions},
	}
	for _, f := range itemFiles {
		files = append(files, struct {
			name string
			v    any
		}{f.name, byKind[f.kind]})
	}

	for _, f := range files {
		data, err := yaml.Marshal(f.v)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}
	return nil
}

func readYAML(path string, out any, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
