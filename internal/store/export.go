// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// ExportEntry is one run in an export: the snapshot of its newest output
// and every signature pair recorded for it.
type ExportEntry struct {
	RunID          string                `json:"run_id" yaml:"run_id"`
	SubjectID      string                `json:"subject_id,omitempty" yaml:"subject_id,omitempty"`
	RunNumber      int                   `json:"run_number" yaml:"run_number"`
	BankVersion    string                `json:"bank_version" yaml:"bank_version"`
	ConfidenceBand types.ConfidenceBand  `json:"confidence_band" yaml:"confidence_band"`
	Gating         types.GatingMode      `json:"gating" yaml:"gating"`
	EclipseLevel   types.EclipseLevel    `json:"eclipse_level" yaml:"eclipse_level"`
	Archetype      string                `json:"archetype,omitempty" yaml:"archetype,omitempty"`
	Snapshot       types.RunSnapshot     `json:"snapshot" yaml:"snapshot"`
	Signatures     []types.SignaturePair `json:"signatures" yaml:"signatures"`
}

// ExportYAML writes every run of subjectID (all subjects when empty) to
// path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path, subjectID string) error {
	entries, err := s.exportEntries(ctx, subjectID)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(path, data)
}

// ExportJSON writes every run of subjectID (all subjects when empty) to
// path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path, subjectID string) error {
	entries, err := s.exportEntries(ctx, subjectID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(path, data)
}

func writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, subjectID string) ([]ExportEntry, error) {
	outputs, err := s.latestOutputs(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(outputs))
	for _, o := range outputs {
		sigs, err := s.Signatures(ctx, o.RunID)
		if err != nil {
			return nil, err
		}
		e := ExportEntry{
			RunID:          o.RunID,
			SubjectID:      o.SubjectID,
			RunNumber:      o.RunNumber,
			BankVersion:    o.BankVersion,
			ConfidenceBand: o.DataQuality.ConfidenceBand,
			Gating:         o.DataQuality.Gating.Mode,
			EclipseLevel:   o.Eclipse.Level,
			Snapshot:       o.Snapshot(o.ComputedAt),
			Signatures:     sigs,
		}
		if a := o.LightSignature.Archetype; a != nil {
			e.Archetype = a.Name
		}
		entries = append(entries, e)
	}
	return entries, nil
}
