// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"time"
)

// Response is one stored answer row.
type Response struct {
	QuestionID string  `json:"question_id" yaml:"question_id"`
	Value      float64 `json:"value" yaml:"value"`
}

// Reflection is one stored free-text answer row.
type Reflection struct {
	PromptID string `json:"prompt_id" yaml:"prompt_id"`
	Text     string `json:"text" yaml:"text"`
}

// RunInput is the stored state of one assessment run as handed to the
// pipeline by the surrounding application.
type RunInput struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	SubjectID string `json:"subject_id,omitempty" yaml:"subject_id,omitempty"`
	RunNumber int    `json:"run_number" yaml:"run_number"`

	// ItemIDs is the item set selected for this run. Empty means every
	// item in the bank applies.
	ItemIDs []string `json:"item_ids,omitempty" yaml:"item_ids,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	Responses   []Response   `json:"responses" yaml:"responses"`
	Reflections []Reflection `json:"reflections,omitempty" yaml:"reflections,omitempty"`
}

// ResponsePacket is the immutable scoring input built from a RunInput.
// Nothing downstream of the packet builder may modify it.
type ResponsePacket struct {
	RunID     string `json:"run_id"`
	SubjectID string `json:"subject_id,omitempty"`
	RunNumber int    `json:"run_number"`

	Responses   map[string]float64 `json:"responses"`
	Reflections map[string]string  `json:"reflections"`

	// ApplicableItemIDs is sorted and free of duplicates.
	ApplicableItemIDs []string `json:"applicable_item_ids"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Applicable reports whether id is in the run's applicable item set.
func (p *ResponsePacket) Applicable(id string) bool {
	i := sort.SearchStrings(p.ApplicableItemIDs, id)
	return i < len(p.ApplicableItemIDs) && p.ApplicableItemIDs[i] == id
}

// Answer returns the response to an applicable item.
func (p *ResponsePacket) Answer(id string) (float64, bool) {
	if !p.Applicable(id) {
		return 0, false
	}
	v, ok := p.Responses[id]
	return v, ok
}

// Duration returns the completion time of the run when both timestamps
// are known.
func (p *ResponsePacket) Duration() (time.Duration, bool) {
	if p.StartedAt == nil || p.CompletedAt == nil {
		return 0, false
	}
	return p.CompletedAt.Sub(*p.StartedAt), true
}
