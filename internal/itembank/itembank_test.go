package itembank

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// --- Sample ---

func TestSampleShape(t *testing.T) {
	raw := Sample()

	counts := map[types.ItemKind]int{}
	for _, it := range raw.Items {
		counts[it.Kind]++
	}
	assert.Len(t, raw.Items, 143)
	assert.Equal(t, 108, counts[types.KindRay])
	assert.Equal(t, 12, counts[types.KindTool])
	assert.Equal(t, 8, counts[types.KindEclipse])
	assert.Equal(t, 15, counts[types.KindValidity])
	assert.Len(t, raw.Archetypes, 36)
	assert.Len(t, raw.Signals, SignalCount)

	b, err := New(raw)
	require.NoError(t, err)
	assert.Len(t, b.Rays(), RayCount)
	assert.Equal(t, "R1", b.Rays()[0].ID)
	assert.Equal(t, "R9", b.Rays()[8].ID)
	assert.Len(t, b.SubfacetItems("R3c"), 3)
	assert.Len(t, b.ToolIDs(), 12)
	assert.Len(t, b.EclipseItems(), 8)
	assert.Len(t, b.ValidityItems(types.CheckAttention), 3)
	assert.Len(t, b.Archetypes("R2-R7"), 1)
	assert.Equal(t, "Body Signal Awareness", b.SubfacetLabel("R3c"))

	iv, ok := b.Intervention("R3")
	require.True(t, ok)
	assert.Contains(t, iv.Intervention, "Presence")
}

// --- Validate ---

func TestValidateRejectsBrokenBanks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *types.ItemBank)
		want   string
	}{
		{
			name:   "missing ray",
			mutate: func(b *types.ItemBank) { b.Rays = b.Rays[:8] },
			want:   "expected 9 rays",
		},
		{
			name:   "three subfacets",
			mutate: func(b *types.ItemBank) { b.Rays[0].Subfacets = b.Rays[0].Subfacets[:3] },
			want:   "ray R1: expected 4 subfacets",
		},
		{
			name:   "duplicate item",
			mutate: func(b *types.ItemBank) { b.Items = append(b.Items, b.Items[0]) },
			want:   "duplicate id",
		},
		{
			name:   "unknown subfacet",
			mutate: func(b *types.ItemBank) { b.Items[0].SubfacetID = "R1z" },
			want:   "does not belong to R1",
		},
		{
			name:   "missing signal",
			mutate: func(b *types.ItemBank) { b.Signals = b.Signals[1:] },
			want:   "expected 24 executive signals",
		},
		{
			name: "uncovered pair",
			mutate: func(b *types.ItemBank) {
				var kept []types.ArchetypeRule
				for _, a := range b.Archetypes {
					if a.PairCode != "R4-R8" {
						kept = append(kept, a)
					}
				}
				b.Archetypes = kept
			},
			want: "no archetype rule for pair R4-R8",
		},
		{
			name:   "bad pair code",
			mutate: func(b *types.ItemBank) { b.Archetypes[0].PairCode = "R2-R1" },
			want:   `pair code "R2-R1", want "R1-R2"`,
		},
		{
			name: "attention item without answer",
			mutate: func(b *types.ItemBank) {
				for i := range b.Items {
					if b.Items[i].Check == types.CheckAttention {
						b.Items[i].Expected = nil
						return
					}
				}
			},
			want: "attention item without expected answer",
		},
		{
			name:   "zero divisor",
			mutate: func(b *types.ItemBank) { b.Rules.NetEnergy.Divisor = 0 },
			want:   "divisor is zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Sample()
			tt.mutate(&raw)

			err := Validate(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIntegrity))
			assert.Contains(t, err.Error(), tt.want)

			_, err = New(raw)
			assert.ErrorIs(t, err, ErrIntegrity)
		})
	}
}

func TestPairCodeIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "R2-R7", types.PairCode("R7", "R2"))
	assert.Equal(t, "R2-R7", types.PairCode("R2", "R7"))
	assert.Equal(t, "R1-R10", types.PairCode("R10", "R1"))
}

// --- Load / Save ---

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Sample()
	require.NoError(t, Save(dir, want))

	got, err := Load(dir)
	require.NoError(t, err)

	b, err := New(got)
	require.NoError(t, err)
	assert.Equal(t, SampleVersion, b.Version())
	assert.Len(t, got.Items, len(want.Items))
	assert.Equal(t, want.Rules.NetEnergy, got.Rules.NetEnergy)
	assert.Equal(t, want.Rays, got.Rays)
}

func TestLoadRulesOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Sample()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, rulesFile),
		[]byte("net_energy:\n  offset: 50\n  divisor: 1.5\n"), 0o644))

	got, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 50.0, got.Rules.NetEnergy.Offset)
	assert.Equal(t, 1.5, got.Rules.NetEnergy.Divisor)
	assert.Equal(t, 1.0, got.Rules.NetEnergy.ShineWeight, "unset fields keep defaults")
	assert.Equal(t, 18, got.Rules.Validity.StraightlineRun)
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), manifestFile)
}

// --- Cache ---

func TestCacheReloadsOnVersionBump(t *testing.T) {
	dir := t.TempDir()
	raw := Sample()
	require.NoError(t, Save(dir, raw))

	c := NewCache()
	first, err := c.Get(dir)
	require.NoError(t, err)

	again, err := c.Get(dir)
	require.NoError(t, err)
	assert.Same(t, first, again)

	raw.Version = "sample-2"
	require.NoError(t, Save(dir, raw))
	bumped, err := c.Get(dir)
	require.NoError(t, err)
	assert.NotSame(t, first, bumped)
	assert.Equal(t, "sample-2", bumped.Version())

	c.Invalidate(dir)
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrentGet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Sample()))

	c := NewCache()
	var wg sync.WaitGroup
	banks := make([]*Bank, 8)
	for i := range banks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := c.Get(dir)
			assert.NoError(t, err)
			banks[i] = b
		}(i)
	}
	wg.Wait()

	for _, b := range banks {
		require.NotNil(t, b)
		assert.Equal(t, SampleVersion, b.Version())
	}
	assert.Equal(t, 1, c.Len())
}

func TestCacheRejectsInvalidBank(t *testing.T) {
	dir := t.TempDir()
	raw := Sample()
	raw.Signals = raw.Signals[:10]
	require.NoError(t, Save(dir, raw))

	_, err := NewCache().Get(dir)
	assert.ErrorIs(t, err, ErrIntegrity)
}
