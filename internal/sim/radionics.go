package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"leveller/internal/model"
	"leveller/internal/vault"
)

// Radionics energy model constants.
const (
	MaxEnergyPool      = 1000.0
	PassiveRegenRate   = 1.0 // per regen tick
	EmissionCostFactor = 0.1 // per resonance point
)

// ErrInsufficientEnergy indicates the pool cannot cover the emission
// cost at the requested resonance strength.
var ErrInsufficientEnergy = errors.New("insufficient energy pool")

// Radionics owns the radionics module state: the energy pool and the
// preset/emission-log persistence.
type Radionics struct {
	mu     sync.Mutex
	vault  *vault.Vault
	energy float64
	now    func() time.Time
	newID  func() string
}

// NewRadionics constructs the service with a full energy pool.
func NewRadionics(v *vault.Vault) *Radionics {
	return &Radionics{
		vault:  v,
		energy: MaxEnergyPool,
		now:    time.Now,
		newID:  newRecordID,
	}
}

func newRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// EnergyPool returns the current pool level.
func (r *Radionics) EnergyPool() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.energy
}

// Recharge refills the pool.
func (r *Radionics) Recharge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.energy = MaxEnergyPool
}

// Regenerate applies one passive regeneration tick.
func (r *Radionics) Regenerate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.energy = math.Min(MaxEnergyPool, r.energy+PassiveRegenRate)
}

// Emit consumes energy proportional to resonance strength and appends
// an emission log entry. The log is append-only; the pool is debited
// before the write and not refunded on a write failure (in-memory
// state stays authoritative, the caller surfaces the warning).
func (r *Radionics) Emit(ctx context.Context, rates model.RadionicsRates, resonance int, witness *model.RadionicsWitness) (model.EmissionLog, error) {
	cost := float64(resonance) * EmissionCostFactor

	r.mu.Lock()
	if r.energy < cost {
		r.mu.Unlock()
		return model.EmissionLog{}, fmt.Errorf("%w: need %.1f, have %.1f", ErrInsufficientEnergy, cost, r.energy)
	}
	r.energy = math.Max(0, r.energy-cost)
	r.mu.Unlock()

	log := model.EmissionLog{
		ID:                r.newID(),
		Timestamp:         r.now().UnixMilli(),
		Rates:             rates,
		ResonanceStrength: resonance,
		WitnessInfo:       witnessSummary(witness),
		EnergyConsumed:    math.Round(cost*100) / 100,
	}
	if err := r.vault.AddEmissionLog(ctx, log); err != nil {
		return log, err
	}
	return log, nil
}

// witnessSummary renders the short witness description stored in logs.
func witnessSummary(w *model.RadionicsWitness) string {
	if w == nil {
		return "No witness"
	}
	if w.Type == model.WitnessText {
		text := []rune(w.Data)
		if len(text) > 30 {
			text = text[:30]
		}
		return fmt.Sprintf("Text: %s...", string(text))
	}
	name := w.Name
	if name == "" {
		name = "Untitled"
	}
	return fmt.Sprintf("Image: %s", name)
}

// EmissionLogs returns the log history, newest first.
func (r *Radionics) EmissionLogs(ctx context.Context) ([]model.EmissionLog, error) {
	logs, err := r.vault.EmissionLogs(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Timestamp > logs[j].Timestamp })
	return logs, nil
}

// SavePreset persists a preset, assigning id and createdAt on first
// save, and records it as last active.
func (r *Radionics) SavePreset(ctx context.Context, p model.RadionicsPreset) (model.RadionicsPreset, error) {
	p.Name = model.NormalizeName(p.Name, model.MaxPresetNameLen)
	if p.ID == "" {
		p.ID = r.newID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = r.now().UnixMilli()
	}
	if err := r.vault.SaveRadionicsPreset(ctx, p); err != nil {
		return p, err
	}
	r.vault.SetLastActive(model.KeyLastActiveRadionicsPreset, p.ID)
	return p, nil
}

// Presets returns saved presets, newest first.
func (r *Radionics) Presets(ctx context.Context) ([]model.RadionicsPreset, error) {
	presets, err := r.vault.RadionicsPresets(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].CreatedAt > presets[j].CreatedAt })
	return presets, nil
}

// DeletePreset removes a preset, clearing the last-active pointer if
// it referenced the deleted record.
func (r *Radionics) DeletePreset(ctx context.Context, id string) error {
	if err := r.vault.DeleteRadionicsPreset(ctx, id); err != nil {
		return err
	}
	if last, ok := r.vault.LastActive(model.KeyLastActiveRadionicsPreset); ok && last == id {
		r.vault.ClearLastActive(model.KeyLastActiveRadionicsPreset)
	}
	return nil
}

// LastActivePreset resolves the module pointer, degrading a dangling
// reference to "none".
func (r *Radionics) LastActivePreset(ctx context.Context) (model.RadionicsPreset, bool, error) {
	id, ok := r.vault.LastActive(model.KeyLastActiveRadionicsPreset)
	if !ok || id == "" {
		return model.RadionicsPreset{}, false, nil
	}
	presets, err := r.vault.RadionicsPresets(ctx)
	if err != nil {
		return model.RadionicsPreset{}, false, err
	}
	for _, p := range presets {
		if p.ID == id {
			return p, true, nil
		}
	}
	return model.RadionicsPreset{}, false, nil
}
