package sim

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leveller/internal/model"
	"leveller/internal/store"
	"leveller/internal/testutil"
	"leveller/internal/vault"
)

var simStart = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	collections := make([]string, 0, len(model.Collections()))
	for _, c := range model.Collections() {
		collections = append(collections, string(c))
	}
	kv := store.OpenKV(filepath.Join(t.TempDir(), "kv.json"), nil)
	return vault.New(store.NewMemory(collections), kv)
}

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestRadionics(t *testing.T, v *vault.Vault) (*Radionics, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock(simStart)
	r := NewRadionics(v)
	r.now = clock.Now
	r.newID = sequentialIDs()
	return r, clock
}

func TestRadionics_StartsWithFullPool(t *testing.T) {
	r, _ := newTestRadionics(t, newTestVault(t))
	assert.Equal(t, MaxEnergyPool, r.EnergyPool())
}

func TestEmit_ConsumesEnergyAndLogs(t *testing.T) {
	v := newTestVault(t)
	r, _ := newTestRadionics(t, v)
	ctx := context.Background()

	log, err := r.Emit(ctx, model.DefaultRadionicsRates(), 50, nil)
	require.NoError(t, err)

	assert.Equal(t, 5.0, log.EnergyConsumed)
	assert.Equal(t, 50, log.ResonanceStrength)
	assert.Equal(t, "No witness", log.WitnessInfo)
	assert.Equal(t, simStart.UnixMilli(), log.Timestamp)
	assert.Equal(t, MaxEnergyPool-5.0, r.EnergyPool())

	logs, err := v.EmissionLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestEmit_InsufficientEnergy(t *testing.T) {
	v := newTestVault(t)
	r, _ := newTestRadionics(t, v)
	ctx := context.Background()

	// Drain the pool: 1000 energy covers two emissions at cost 500.
	for i := 0; i < 2; i++ {
		_, err := r.Emit(ctx, model.RadionicsRates{}, 5000, nil)
		require.NoError(t, err)
	}
	require.Equal(t, 0.0, r.EnergyPool())

	_, err := r.Emit(ctx, model.RadionicsRates{}, 1, nil)
	assert.ErrorIs(t, err, ErrInsufficientEnergy)

	// The failed emission wrote no log.
	logs, err := v.EmissionLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestRecharge_RefillsPool(t *testing.T) {
	r, _ := newTestRadionics(t, newTestVault(t))
	ctx := context.Background()

	_, err := r.Emit(ctx, model.RadionicsRates{}, 1000, nil)
	require.NoError(t, err)
	require.Equal(t, 900.0, r.EnergyPool())

	r.Recharge()
	assert.Equal(t, MaxEnergyPool, r.EnergyPool())
}

func TestRegenerate_CapsAtMax(t *testing.T) {
	r, _ := newTestRadionics(t, newTestVault(t))
	ctx := context.Background()

	_, err := r.Emit(ctx, model.RadionicsRates{}, 20, nil)
	require.NoError(t, err)
	require.Equal(t, 998.0, r.EnergyPool())

	r.Regenerate()
	assert.Equal(t, 999.0, r.EnergyPool())
	r.Regenerate()
	r.Regenerate()
	assert.Equal(t, MaxEnergyPool, r.EnergyPool())
}

func TestEmit_WitnessSummaries(t *testing.T) {
	r, clock := newTestRadionics(t, newTestVault(t))
	ctx := context.Background()

	long := "this witness text is well over thirty characters long"
	log, err := r.Emit(ctx, model.RadionicsRates{}, 10,
		&model.RadionicsWitness{Type: model.WitnessText, Data: long})
	require.NoError(t, err)
	assert.Equal(t, "Text: "+long[:30]+"...", log.WitnessInfo)

	clock.Advance(time.Second)
	log, err = r.Emit(ctx, model.RadionicsRates{}, 10,
		&model.RadionicsWitness{Type: model.WitnessImage, Name: "photo.png"})
	require.NoError(t, err)
	assert.Equal(t, "Image: photo.png", log.WitnessInfo)

	clock.Advance(time.Second)
	log, err = r.Emit(ctx, model.RadionicsRates{}, 10,
		&model.RadionicsWitness{Type: model.WitnessImage})
	require.NoError(t, err)
	assert.Equal(t, "Image: Untitled", log.WitnessInfo)
}

func TestEmissionLogs_NewestFirst(t *testing.T) {
	r, clock := newTestRadionics(t, newTestVault(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Emit(ctx, model.RadionicsRates{}, 10, nil)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	logs, err := r.EmissionLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for i := 1; i < len(logs); i++ {
		assert.Greater(t, logs[i-1].Timestamp, logs[i].Timestamp)
	}
}

func TestSavePreset_AssignsIdentityAndPointer(t *testing.T) {
	v := newTestVault(t)
	r, _ := newTestRadionics(t, v)
	ctx := context.Background()

	saved, err := r.SavePreset(ctx, model.RadionicsPreset{
		Name:  "  Abundance  ",
		Rates: model.RadionicsRates{Trend1: 11, Target1: 22},
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", saved.ID)
	assert.Equal(t, "Abundance", saved.Name)
	assert.Equal(t, simStart.UnixMilli(), saved.CreatedAt)

	last, ok, err := r.LastActivePreset(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved.ID, last.ID)
}

func TestSavePreset_UpdateKeepsIdentity(t *testing.T) {
	r, clock := newTestRadionics(t, newTestVault(t))
	ctx := context.Background()

	saved, err := r.SavePreset(ctx, model.RadionicsPreset{Name: "v1"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	saved.Name = "v2"
	updated, err := r.SavePreset(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)

	presets, err := r.Presets(ctx)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "v2", presets[0].Name)
}

func TestDeletePreset_ClearsMatchingPointer(t *testing.T) {
	r, _ := newTestRadionics(t, newTestVault(t))
	ctx := context.Background()

	saved, err := r.SavePreset(ctx, model.RadionicsPreset{Name: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, r.DeletePreset(ctx, saved.ID))
	_, ok, err := r.LastActivePreset(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLastActivePreset_DanglingPointerDegrades(t *testing.T) {
	v := newTestVault(t)
	r, _ := newTestRadionics(t, v)

	v.SetLastActive(model.KeyLastActiveRadionicsPreset, "deleted-elsewhere")
	_, ok, err := r.LastActivePreset(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
