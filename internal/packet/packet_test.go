// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package packet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/pkg/types"
)

func fullRun(bank *itembank.Bank) types.RunInput {
	run := types.RunInput{RunID: "run-1", SubjectID: "subj-1", RunNumber: 1}
	for _, it := range bank.Items() {
		v := 2.0
		if it.Expected != nil {
			v = *it.Expected
		}
		run.Responses = append(run.Responses, types.Response{QuestionID: it.ID, Value: v})
	}
	return run
}

func TestBuildFullRun(t *testing.T) {
	bank := itembank.MustSample()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)

	run := fullRun(bank)
	run.StartedAt, run.CompletedAt = &start, &end
	run.Reflections = []types.Reflection{
		{PromptID: "RP1", Text: "  I chose my focus this morning.  "},
		{PromptID: "RP2", Text: "   "},
	}

	p, err := Build(run, bank)
	require.NoError(t, err)

	assert.Len(t, p.ApplicableItemIDs, 143)
	assert.True(t, p.Applicable("R1a-1"))
	assert.Len(t, p.Responses, 143)
	assert.Equal(t, map[string]string{"RP1": "I chose my focus this morning."}, p.Reflections)

	d, ok := p.Duration()
	require.True(t, ok)
	assert.Equal(t, 20*time.Minute, d)
}

func TestBuildRejectsMissingRequired(t *testing.T) {
	bank := itembank.MustSample()
	run := fullRun(bank)

	var kept []types.Response
	for _, r := range run.Responses {
		if r.QuestionID != "R4b-1" && r.QuestionID != "R2a-1" {
			kept = append(kept, r)
		}
	}
	run.Responses = kept

	_, err := Build(run, bank)
	require.ErrorIs(t, err, ErrMissingInput)

	var mie *MissingInputError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, []string{"R2a-1", "R4b-1"}, mie.Missing)
}

func TestBuildRejectsInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		rows []types.Response
		want string
	}{
		{"out of scale", []types.Response{{QuestionID: "R1a-2", Value: 7}}, "R1a-2: value 7 outside 0-4"},
		{"duplicate", []types.Response{{QuestionID: "R1a-1", Value: 1}}, "duplicate answer for R1a-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := itembank.MustSample()
			run := fullRun(bank)
			if tt.name == "out of scale" {
				for i := range run.Responses {
					if run.Responses[i].QuestionID == "R1a-2" {
						run.Responses[i].Value = 7
					}
				}
			} else {
				run.Responses = append(run.Responses, tt.rows...)
			}

			_, err := Build(run, bank)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildRejectsDuplicateReflections(t *testing.T) {
	tests := []struct {
		name string
		rows []types.Reflection
	}{
		{"blank first", []types.Reflection{{PromptID: "RP1", Text: " "}, {PromptID: "RP1", Text: "I slowed down."}}},
		{"blank last", []types.Reflection{{PromptID: "RP1", Text: "I slowed down."}, {PromptID: "RP1", Text: " "}}},
		{"both answered", []types.Reflection{{PromptID: "RP1", Text: "first"}, {PromptID: "RP1", Text: "second"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := itembank.MustSample()
			run := fullRun(bank)
			run.Reflections = tt.rows

			p, err := Build(run, bank)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), "duplicate reflection for RP1")
		})
	}
}

func TestBuildRestrictsToApplicableItems(t *testing.T) {
	bank := itembank.MustSample()
	run := fullRun(bank)
	run.ItemIDs = []string{"R1a-1", "R1a-2", "R1a-1"}

	p, err := Build(run, bank)
	require.NoError(t, err)
	assert.Equal(t, []string{"R1a-1", "R1a-2"}, p.ApplicableItemIDs)
	assert.Len(t, p.Responses, 2)

	_, ok := p.Answer("R2a-1")
	assert.False(t, ok)
}

func TestBuildUnknownItemIsIntegrityError(t *testing.T) {
	bank := itembank.MustSample()
	run := fullRun(bank)
	run.ItemIDs = []string{"R1a-1", "NOPE-1"}

	_, err := Build(run, bank)
	assert.ErrorIs(t, err, itembank.ErrIntegrity)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	bank := itembank.MustSample()
	run := fullRun(bank)

	reversed := run
	reversed.Responses = make([]types.Response, len(run.Responses))
	for i, r := range run.Responses {
		reversed.Responses[len(run.Responses)-1-i] = r
	}

	a, err := Build(run, bank)
	require.NoError(t, err)
	b, err := Build(reversed, bank)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
