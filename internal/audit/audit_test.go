package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// --- test helpers ---

var fixedNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func samplePacket() *types.ResponsePacket {
	return &types.ResponsePacket{
		RunID:             "run-1",
		RunNumber:         2,
		Responses:         map[string]float64{"R1a-1": 3, "R1a-2": 1, "ECL-01": 0.5},
		Reflections:       map[string]string{"RP1": "I chose to pause before the meeting."},
		ApplicableItemIDs: []string{"ECL-01", "R1a-1", "R1a-2"},
	}
}

func sampleOutput() *types.PipelineOutput {
	return &types.PipelineOutput{
		RunID:       "run-1",
		RunNumber:   2,
		BankVersion: "sample-1",
		Rays:        []types.RayOutput{{RayID: "R1", Score: f(62.5), NetEnergy: f(58.33)}},
		ComputedAt:  fixedNow,
	}
}

func signer(key string) Signer {
	return Signer{
		Version: "pipeline-test",
		Key:     []byte(key),
		Now:     func() time.Time { return fixedNow },
		NewID:   func() string { return "pair-1" },
	}
}

// --- hashes ---

func TestResponseHashIsOrderIndependent(t *testing.T) {
	a := samplePacket()
	b := &types.ResponsePacket{
		RunID:             "run-1",
		RunNumber:         2,
		Responses:         map[string]float64{"ECL-01": 0.5, "R1a-2": 1, "R1a-1": 3},
		Reflections:       map[string]string{"RP1": "I chose to pause before the meeting."},
		ApplicableItemIDs: []string{"R1a-2", "ECL-01", "R1a-1"},
	}
	ha, err := ResponseHash(a)
	require.NoError(t, err)
	hb, err := ResponseHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func TestResponseHashIgnoresTimestamps(t *testing.T) {
	a := samplePacket()
	b := samplePacket()
	later := fixedNow.Add(time.Hour)
	b.StartedAt, b.CompletedAt = &fixedNow, &later

	ha, _ := ResponseHash(a)
	hb, _ := ResponseHash(b)
	assert.Equal(t, ha, hb)
}

func TestResultHashIgnoresComputedAt(t *testing.T) {
	a := sampleOutput()
	b := sampleOutput()
	b.ComputedAt = fixedNow.Add(48 * time.Hour)

	ha, err := ResultHash(a)
	require.NoError(t, err)
	hb, err := ResultHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Rays[0].Score = f(62.51)
	hc, _ := ResultHash(b)
	assert.NotEqual(t, ha, hc)
}

// --- Signer ---

func TestSignAndVerify(t *testing.T) {
	s := signer("")
	pair, err := s.Sign(samplePacket(), sampleOutput())
	require.NoError(t, err)

	assert.Equal(t, "pair-1", pair.ID)
	assert.Equal(t, "run-1", pair.RunID)
	assert.Equal(t, "pipeline-test", pair.AlgorithmVersion)
	assert.Equal(t, fixedNow, pair.CreatedAt)
	assert.Empty(t, pair.Seal)

	v, err := s.Verify(samplePacket(), sampleOutput(), pair)
	require.NoError(t, err)
	assert.True(t, v.OK())
	assert.False(t, v.SealChecked)
	assert.Empty(t, v.Detail)
}

func TestSignDefaults(t *testing.T) {
	pair, err := Signer{}.Sign(samplePacket(), sampleOutput())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAlgorithmVersion, pair.AlgorithmVersion)
	assert.NotEmpty(t, pair.ID)
	assert.False(t, pair.CreatedAt.IsZero())
}

func TestVerifyDetectsTampering(t *testing.T) {
	s := signer("seal-key")
	pair, err := s.Sign(samplePacket(), sampleOutput())
	require.NoError(t, err)
	require.NotEmpty(t, pair.Seal)

	tests := []struct {
		name         string
		packet       func() *types.ResponsePacket
		output       func() *types.PipelineOutput
		pair         func() types.SignaturePair
		wantResponse bool
		wantResult   bool
		wantSeal     bool
	}{
		{
			name:         "untouched",
			wantResponse: true, wantResult: true, wantSeal: true,
		},
		{
			name: "response changed",
			packet: func() *types.ResponsePacket {
				p := samplePacket()
				p.Responses["R1a-1"] = 4
				return p
			},
			wantResponse: false, wantResult: true, wantSeal: true,
		},
		{
			name: "reflection changed",
			packet: func() *types.ResponsePacket {
				p := samplePacket()
				p.Reflections["RP1"] = "edited"
				return p
			},
			wantResponse: false, wantResult: true, wantSeal: true,
		},
		{
			name: "output changed",
			output: func() *types.PipelineOutput {
				o := sampleOutput()
				o.Rays[0].NetEnergy = f(90)
				return o
			},
			wantResponse: true, wantResult: false, wantSeal: true,
		},
		{
			name: "stored hash rewritten without the key",
			pair: func() types.SignaturePair {
				p := pair
				p.ResultHash = "0000"
				return p
			},
			wantResponse: true, wantResult: false, wantSeal: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, o, sp := samplePacket(), sampleOutput(), pair
			if tt.packet != nil {
				p = tt.packet()
			}
			if tt.output != nil {
				o = tt.output()
			}
			if tt.pair != nil {
				sp = tt.pair()
			}
			v, err := s.Verify(p, o, sp)
			require.NoError(t, err)
			assert.True(t, v.SealChecked)
			assert.Equal(t, tt.wantResponse, v.ResponseMatch)
			assert.Equal(t, tt.wantResult, v.ResultMatch)
			assert.Equal(t, tt.wantSeal, v.SealMatch)
			assert.Equal(t, tt.wantResponse && tt.wantResult && tt.wantSeal, v.OK())
			if !v.OK() {
				assert.NotEmpty(t, v.Detail)
			}
		})
	}
}

func TestVerifyWithWrongKey(t *testing.T) {
	pair, err := signer("one").Sign(samplePacket(), sampleOutput())
	require.NoError(t, err)

	v, err := signer("two").Verify(samplePacket(), sampleOutput(), pair)
	require.NoError(t, err)
	assert.True(t, v.ResponseMatch)
	assert.True(t, v.ResultMatch)
	assert.False(t, v.SealMatch)
	assert.False(t, v.OK())
}
