package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"leveller/internal/model"
	"leveller/internal/vault"
)

// ErrInvalidWaveform indicates an unknown frequency waveform.
var ErrInvalidWaveform = errors.New("invalid waveform")

// Healing owns quantum-healing presets.
type Healing struct {
	vault *vault.Vault
	now   func() time.Time
	newID func() string
}

// NewHealing constructs the service.
func NewHealing(v *vault.Vault) *Healing {
	return &Healing{vault: v, now: time.Now, newID: newRecordID}
}

// SavePreset persists a healing preset and records it as last active.
func (h *Healing) SavePreset(ctx context.Context, p model.HealingPreset) (model.HealingPreset, error) {
	p.Name = model.NormalizeName(p.Name, model.MaxPresetNameLen)
	if p.ID == "" {
		p.ID = h.newID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = h.now().UnixMilli()
	}
	if err := h.vault.SaveHealingPreset(ctx, p); err != nil {
		return p, err
	}
	h.vault.SetLastActive(model.KeyLastActiveHealingPreset, p.ID)
	return p, nil
}

// Presets returns saved healing presets, newest first.
func (h *Healing) Presets(ctx context.Context) ([]model.HealingPreset, error) {
	presets, err := h.vault.HealingPresets(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].CreatedAt > presets[j].CreatedAt })
	return presets, nil
}

// DeletePreset removes a healing preset, clearing its pointer if
// needed.
func (h *Healing) DeletePreset(ctx context.Context, id string) error {
	if err := h.vault.DeleteHealingPreset(ctx, id); err != nil {
		return err
	}
	if last, ok := h.vault.LastActive(model.KeyLastActiveHealingPreset); ok && last == id {
		h.vault.ClearLastActive(model.KeyLastActiveHealingPreset)
	}
	return nil
}

// Frequency owns frequency generator presets.
type Frequency struct {
	vault *vault.Vault
	now   func() time.Time
	newID func() string
}

// NewFrequency constructs the service.
func NewFrequency(v *vault.Vault) *Frequency {
	return &Frequency{vault: v, now: time.Now, newID: newRecordID}
}

// SavePreset validates and persists a frequency preset.
func (f *Frequency) SavePreset(ctx context.Context, p model.FrequencyPreset) (model.FrequencyPreset, error) {
	switch p.WaveformType {
	case model.WaveSine, model.WaveSquare, model.WaveSawtooth:
	case "":
		p.WaveformType = model.WaveSine
	default:
		return p, fmt.Errorf("%w: %q", ErrInvalidWaveform, p.WaveformType)
	}

	p.Name = model.NormalizeName(p.Name, model.MaxPresetNameLen)
	if p.ID == "" {
		p.ID = f.newID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = f.now().UnixMilli()
	}
	if err := f.vault.SaveFrequencyPreset(ctx, p); err != nil {
		return p, err
	}
	f.vault.SetLastActive(model.KeyLastActiveFrequencyPreset, p.ID)
	return p, nil
}

// Presets returns saved frequency presets, newest first.
func (f *Frequency) Presets(ctx context.Context) ([]model.FrequencyPreset, error) {
	presets, err := f.vault.FrequencyPresets(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].CreatedAt > presets[j].CreatedAt })
	return presets, nil
}

// DeletePreset removes a frequency preset, clearing its pointer if
// needed.
func (f *Frequency) DeletePreset(ctx context.Context, id string) error {
	if err := f.vault.DeleteFrequencyPreset(ctx, id); err != nil {
		return err
	}
	if last, ok := f.vault.LastActive(model.KeyLastActiveFrequencyPreset); ok && last == id {
		f.vault.ClearLastActive(model.KeyLastActiveFrequencyPreset)
	}
	return nil
}
