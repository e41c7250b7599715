// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validity

import (
	"strings"

	"github.com/pdiddy/ray-engine/internal/itembank"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// Depth scores one reflection on the 0-3 rubric. It returns false for an
// empty answer. Texts under MinWords score 0; otherwise the score grows
// with word count and the number of rubric dimensions the text touches.
func Depth(text string, rubric types.ReflectionRubric) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	words := len(strings.Fields(text))
	if words < rubric.MinWords {
		return 0, true
	}

	lower := strings.ToLower(text)
	indicators := 0
	for _, g := range rubric.Markers {
		for _, term := range g.Terms {
			if strings.Contains(lower, term) {
				indicators++
				break
			}
		}
	}

	switch {
	case words >= rubric.Depth3Words && indicators >= 3:
		return 3, true
	case words >= rubric.Depth2Words && indicators >= 2:
		return 2, true
	case indicators >= 1:
		return 1, true
	case words >= rubric.Depth2Words:
		return 1, true
	}
	return 0, true
}

// Reflection returns the mean rubric depth (0-3) across the bank's prompts
// and how many prompts were answered. The mean is nil when none were.
func Reflection(p *types.ResponsePacket, bank *itembank.Bank) (*float64, int) {
	rubric := bank.Rules().Reflection
	var sum, n int
	for _, prompt := range bank.ReflectionPrompts() {
		d, ok := Depth(p.Reflections[prompt.ID], rubric)
		if !ok {
			continue
		}
		sum += d
		n++
	}
	if n == 0 {
		return nil, 0
	}
	avg := float64(sum) / float64(n)
	return &avg, n
}
