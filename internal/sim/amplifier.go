package sim

import (
	"context"

	"leveller/internal/model"
	"leveller/internal/vault"
)

// AmplifierSlots is the fixed number of track slots.
const AmplifierSlots = 3

// Amplifier owns the subliminal amplifier's singleton settings and
// resolves its track references.
type Amplifier struct {
	vault *vault.Vault
}

// NewAmplifier constructs the service.
func NewAmplifier(v *vault.Vault) *Amplifier {
	return &Amplifier{vault: v}
}

// Settings reads the singleton, normalizing the slot count so callers
// always see exactly AmplifierSlots entries.
func (a *Amplifier) Settings(ctx context.Context) (model.AmplifierSettings, error) {
	s, err := a.vault.AmplifierSettings(ctx)
	if err != nil {
		return s, err
	}
	for len(s.ActiveTracks) < AmplifierSlots {
		s.ActiveTracks = append(s.ActiveTracks, "")
	}
	s.ActiveTracks = s.ActiveTracks[:AmplifierSlots]
	return s, nil
}

// SaveSettings writes the singleton record.
func (a *Amplifier) SaveSettings(ctx context.Context, s model.AmplifierSettings) error {
	return a.vault.SaveAmplifierSettings(ctx, s)
}

// SetTrack assigns a track id to a slot; empty id vacates the slot.
func (a *Amplifier) SetTrack(ctx context.Context, slot int, trackID string) (model.AmplifierSettings, error) {
	s, err := a.Settings(ctx)
	if err != nil {
		return s, err
	}
	if slot < 0 || slot >= AmplifierSlots {
		return s, nil
	}
	s.ActiveTracks[slot] = trackID
	return s, a.SaveSettings(ctx, s)
}

// ResolveTracks maps slot references to tracks. Track references are
// weak: a dangling id resolves to nil rather than erroring, matching
// the rule that deleting a track degrades its references to "no
// track".
func (a *Amplifier) ResolveTracks(ctx context.Context, s model.AmplifierSettings) ([]*model.AudioTrack, error) {
	out := make([]*model.AudioTrack, len(s.ActiveTracks))
	for i, id := range s.ActiveTracks {
		if id == "" {
			continue
		}
		track, err := a.vault.AudioTrack(ctx, id)
		if err != nil {
			if vault.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[i] = &track
	}
	return out, nil
}
