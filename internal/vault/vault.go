package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leveller/internal/model"
	"leveller/internal/store"
)

// Vault is the typed facade over the record store and KV layer.
type Vault struct {
	records store.Records
	kv      *store.KV
}

// New constructs a Vault over the given backends. Both are required;
// pass store.NewMemory for degraded operation.
func New(records store.Records, kv *store.KV) *Vault {
	return &Vault{records: records, kv: kv}
}

// KV exposes the scalar layer for callers that own their own keys.
func (v *Vault) KV() *store.KV { return v.kv }

// loadAll decodes every record in a collection. Records that fail to
// decode abort the load - a corrupt collection is a real error, not
// something to silently skip.
func loadAll[T any](ctx context.Context, v *Vault, collection model.Collection) ([]T, error) {
	payloads, err := v.records.GetAll(ctx, string(collection))
	if err != nil {
		return nil, persistErr("getAll", string(collection), err)
	}
	out := make([]T, 0, len(payloads))
	for _, p := range payloads {
		var rec T
		if err := json.Unmarshal(p, &rec); err != nil {
			return nil, persistErr("getAll", string(collection), fmt.Errorf("decode: %w", err))
		}
		out = append(out, rec)
	}
	return out, nil
}

// loadOne decodes the record under id. Absent records surface as
// PersistenceError wrapping store.ErrNotFound.
func loadOne[T any](ctx context.Context, v *Vault, collection model.Collection, id string) (T, error) {
	var rec T
	payload, err := v.records.Get(ctx, string(collection), id)
	if err != nil {
		return rec, persistErr("get", string(collection), err)
	}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return rec, persistErr("get", string(collection), fmt.Errorf("decode: %w", err))
	}
	return rec, nil
}

func save[T any](ctx context.Context, v *Vault, collection model.Collection, id string, rec T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return persistErr("put", string(collection), fmt.Errorf("encode: %w", err))
	}
	return persistErr("put", string(collection), v.records.Put(ctx, string(collection), id, payload))
}

func add[T any](ctx context.Context, v *Vault, collection model.Collection, id string, rec T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return persistErr("add", string(collection), fmt.Errorf("encode: %w", err))
	}
	return persistErr("add", string(collection), v.records.Add(ctx, string(collection), id, payload))
}

func (v *Vault) remove(ctx context.Context, collection model.Collection, id string) error {
	return persistErr("delete", string(collection), v.records.Delete(ctx, string(collection), id))
}

// IsNotFound reports whether err is an absent-record failure.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// --- Mantra sessions ---

func (v *Vault) Sessions(ctx context.Context) ([]model.MantraSession, error) {
	return loadAll[model.MantraSession](ctx, v, model.CollectionMantraSessions)
}

func (v *Vault) Session(ctx context.Context, id string) (model.MantraSession, error) {
	return loadOne[model.MantraSession](ctx, v, model.CollectionMantraSessions, id)
}

func (v *Vault) SaveSession(ctx context.Context, s model.MantraSession) error {
	return save(ctx, v, model.CollectionMantraSessions, s.ID, s)
}

func (v *Vault) DeleteSession(ctx context.Context, id string) error {
	return v.remove(ctx, model.CollectionMantraSessions, id)
}

// --- Radionics presets and emission logs ---

func (v *Vault) RadionicsPresets(ctx context.Context) ([]model.RadionicsPreset, error) {
	return loadAll[model.RadionicsPreset](ctx, v, model.CollectionRadionicsPresets)
}

func (v *Vault) SaveRadionicsPreset(ctx context.Context, p model.RadionicsPreset) error {
	return save(ctx, v, model.CollectionRadionicsPresets, p.ID, p)
}

func (v *Vault) DeleteRadionicsPreset(ctx context.Context, id string) error {
	return v.remove(ctx, model.CollectionRadionicsPresets, id)
}

// AddEmissionLog appends to the append-only emission log. Add (not
// Put) guarantees an existing id is never silently replaced.
func (v *Vault) AddEmissionLog(ctx context.Context, l model.EmissionLog) error {
	return add(ctx, v, model.CollectionEmissionLogs, l.ID, l)
}

func (v *Vault) EmissionLogs(ctx context.Context) ([]model.EmissionLog, error) {
	return loadAll[model.EmissionLog](ctx, v, model.CollectionEmissionLogs)
}

// --- Audio tracks ---

func (v *Vault) AudioTracks(ctx context.Context) ([]model.AudioTrack, error) {
	return loadAll[model.AudioTrack](ctx, v, model.CollectionAudioTracks)
}

func (v *Vault) AudioTrack(ctx context.Context, id string) (model.AudioTrack, error) {
	return loadOne[model.AudioTrack](ctx, v, model.CollectionAudioTracks, id)
}

func (v *Vault) SaveAudioTrack(ctx context.Context, t model.AudioTrack) error {
	return save(ctx, v, model.CollectionAudioTracks, t.ID, t)
}

func (v *Vault) DeleteAudioTrack(ctx context.Context, id string) error {
	return v.remove(ctx, model.CollectionAudioTracks, id)
}

// --- Subliminal profiles ---

func (v *Vault) SubliminalProfiles(ctx context.Context) ([]model.SubliminalProfile, error) {
	return loadAll[model.SubliminalProfile](ctx, v, model.CollectionSubliminalProfiles)
}

func (v *Vault) SubliminalProfile(ctx context.Context, id string) (model.SubliminalProfile, error) {
	return loadOne[model.SubliminalProfile](ctx, v, model.CollectionSubliminalProfiles, id)
}

func (v *Vault) SaveSubliminalProfile(ctx context.Context, p model.SubliminalProfile) error {
	return save(ctx, v, model.CollectionSubliminalProfiles, p.ID, p)
}

func (v *Vault) DeleteSubliminalProfile(ctx context.Context, id string) error {
	return v.remove(ctx, model.CollectionSubliminalProfiles, id)
}

// --- Healing and frequency presets ---

func (v *Vault) HealingPresets(ctx context.Context) ([]model.HealingPreset, error) {
	return loadAll[model.HealingPreset](ctx, v, model.CollectionHealingPresets)
}

func (v *Vault) SaveHealingPreset(ctx context.Context, p model.HealingPreset) error {
	return save(ctx, v, model.CollectionHealingPresets, p.ID, p)
}

func (v *Vault) DeleteHealingPreset(ctx context.Context, id string) error {
	return v.remove(ctx, model.CollectionHealingPresets, id)
}

func (v *Vault) FrequencyPresets(ctx context.Context) ([]model.FrequencyPreset, error) {
	return loadAll[model.FrequencyPreset](ctx, v, model.CollectionFrequencyPresets)
}

func (v *Vault) SaveFrequencyPreset(ctx context.Context, p model.FrequencyPreset) error {
	return save(ctx, v, model.CollectionFrequencyPresets, p.ID, p)
}

func (v *Vault) DeleteFrequencyPreset(ctx context.Context, id string) error {
	return v.remove(ctx, model.CollectionFrequencyPresets, id)
}

// --- Amplifier settings (singleton) ---

// AmplifierSettings reads the singleton settings record, returning the
// built-in defaults when absent. This is the only defaults-injection
// point for amplifier settings.
func (v *Vault) AmplifierSettings(ctx context.Context) (model.AmplifierSettings, error) {
	settings, err := loadOne[model.AmplifierSettings](ctx, v, model.CollectionAmplifierSettings, model.SingletonID)
	if err != nil {
		if IsNotFound(err) {
			return model.DefaultAmplifierSettings(), nil
		}
		return model.DefaultAmplifierSettings(), err
	}
	return settings, nil
}

// SaveAmplifierSettings writes the singleton record, forcing the fixed
// key so at most one live record exists.
func (v *Vault) SaveAmplifierSettings(ctx context.Context, s model.AmplifierSettings) error {
	s.ID = model.SingletonID
	return save(ctx, v, model.CollectionAmplifierSettings, model.SingletonID, s)
}
