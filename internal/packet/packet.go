// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package packet builds the immutable ResponsePacket a run is scored from.
// It merges the stored answer rows, the free-text reflections, and the
// run's applicable item set, and rejects runs that cannot be scored.
package packet

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// ErrMissingInput is matched by MissingInputError.
var ErrMissingInput = errors.New("missing required answers")

// ErrInvalidInput is matched by InvalidInputError.
var ErrInvalidInput = errors.New("invalid response data")

// MissingInputError lists the required items a run left unanswered.
type MissingInputError struct {
	RunID   string
	Missing []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("run %s: %s: %s", e.RunID, ErrMissingInput, strings.Join(e.Missing, ", "))
}

// Is matches ErrMissingInput.
func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// InvalidInputError describes malformed answer rows.
type InvalidInputError struct {
	RunID    string
	Problems []string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("run %s: %s: %s", e.RunID, ErrInvalidInput, strings.Join(e.Problems, "; "))
}

// Is matches ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Build merges run into a ResponsePacket. Answers to items outside the
// applicable set are dropped. Item ids the bank does not know are an
// integrity error. Malformed rows and repeated reflection prompts are an
// InvalidInputError, and unanswered
// required items a MissingInputError.
func Build(run types.RunInput, bank *itembank.Bank) (*types.ResponsePacket, error) {
	applicable, err := applicableSet(run, bank)
	if err != nil {
		return nil, err
	}

	p := &types.ResponsePacket{
		RunID:             run.RunID,
		SubjectID:         run.SubjectID,
		RunNumber:         run.RunNumber,
		Responses:         make(map[string]float64, len(run.Responses)),
		Reflections:       make(map[string]string, len(run.Reflections)),
		ApplicableItemIDs: applicable,
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
	}

	var problems []string
	for _, r := range run.Responses {
		if !p.Applicable(r.QuestionID) {
			continue
		}
		if _, dup := p.Responses[r.QuestionID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate answer for %s", r.QuestionID))
			continue
		}
		it, _ := bank.Item(r.QuestionID)
		scale := it.EffectiveScale()
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) || !scale.Contains(r.Value) {
			problems = append(problems, fmt.Sprintf("%s: value %v outside %v-%v", r.QuestionID, r.Value, scale.Min, scale.Max))
			continue
		}
		p.Responses[r.QuestionID] = r.Value
	}

	prompts := make(map[string]bool, len(run.Reflections))
	for _, r := range run.Reflections {
		if prompts[r.PromptID] {
			problems = append(problems, fmt.Sprintf("duplicate reflection for %s", r.PromptID))
			continue
		}
		prompts[r.PromptID] = true
		if text := strings.TrimSpace(r.Text); text != "" {
			p.Reflections[r.PromptID] = text
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, &InvalidInputError{RunID: run.RunID, Problems: problems}
	}

	var missing []string
	for _, id := range applicable {
		it, _ := bank.Item(id)
		if !it.Required {
			continue
		}
		if _, ok := p.Responses[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingInputError{RunID: run.RunID, Missing: missing}
	}

	return p, nil
}

func applicableSet(run types.RunInput, bank *itembank.Bank) ([]string, error) {
	ids := run.ItemIDs
	if len(ids) == 0 {
		for _, it := range bank.Items() {
			ids = append(ids, it.ID)
		}
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := bank.Item(id); !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, id)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &itembank.IntegrityError{Problems: []string{
			fmt.Sprintf("run %s references items unknown to bank %s: %s", run.RunID, bank.Version(), strings.Join(unknown, ", ")),
		}}
	}
	sort.Strings(out)
	return out, nil
}
