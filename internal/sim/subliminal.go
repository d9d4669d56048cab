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

// ErrInvalidAffirmation indicates an affirmation failed validation.
var ErrInvalidAffirmation = errors.New("invalid affirmation")

// Subliminal owns subliminal maker profiles.
type Subliminal struct {
	vault *vault.Vault
	now   func() time.Time
	newID func() string
}

// NewSubliminal constructs the service.
func NewSubliminal(v *vault.Vault) *Subliminal {
	return &Subliminal{vault: v, now: time.Now, newID: newRecordID}
}

// ValidateAffirmation checks one affirmation's field bounds.
func ValidateAffirmation(a model.Affirmation) error {
	if model.NormalizeText(a.Text, 0) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidAffirmation)
	}
	if len([]rune(a.Text)) > model.MaxAffirmationTextLen {
		return fmt.Errorf("%w: text exceeds %d characters", ErrInvalidAffirmation, model.MaxAffirmationTextLen)
	}
	if a.Intensity < 0 || a.Intensity > 100 {
		return fmt.Errorf("%w: intensity %d outside 0-100", ErrInvalidAffirmation, a.Intensity)
	}
	if a.DelayMs < 0 || a.DelayMs > model.MaxAffirmationDelayMs {
		return fmt.Errorf("%w: delay %dms outside 0-%d", ErrInvalidAffirmation, a.DelayMs, model.MaxAffirmationDelayMs)
	}
	return nil
}

// SaveProfile validates and persists a profile, assigning id,
// createdAt, affirmation ids and default infusion settings on first
// save, then records it as last active. BaseAudioID is a weak
// reference and is not checked for existence.
func (s *Subliminal) SaveProfile(ctx context.Context, p model.SubliminalProfile) (model.SubliminalProfile, error) {
	for _, a := range p.Affirmations {
		if err := ValidateAffirmation(a); err != nil {
			return p, err
		}
	}

	p.Name = model.NormalizeName(p.Name, model.MaxPresetNameLen)
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = s.now().UnixMilli()
	}
	if p.Infusion == (model.InfusionSettings{}) {
		p.Infusion = model.DefaultInfusionSettings()
	}
	for i := range p.Affirmations {
		if p.Affirmations[i].ID == "" {
			p.Affirmations[i].ID = s.newID()
		}
		p.Affirmations[i].Text = model.NormalizeText(p.Affirmations[i].Text, model.MaxAffirmationTextLen)
	}

	if err := s.vault.SaveSubliminalProfile(ctx, p); err != nil {
		return p, err
	}
	s.vault.SetLastActive(model.KeyLastActiveSubliminalProfile, p.ID)
	return p, nil
}

// Profiles returns saved profiles, newest first.
func (s *Subliminal) Profiles(ctx context.Context) ([]model.SubliminalProfile, error) {
	profiles, err := s.vault.SubliminalProfiles(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt > profiles[j].CreatedAt })
	return profiles, nil
}

// Profile returns one profile by id.
func (s *Subliminal) Profile(ctx context.Context, id string) (model.SubliminalProfile, error) {
	return s.vault.SubliminalProfile(ctx, id)
}

// BaseTrack resolves a profile's base track weak reference; a dangling
// or empty reference yields nil, not an error.
func (s *Subliminal) BaseTrack(ctx context.Context, p model.SubliminalProfile) (*model.AudioTrack, error) {
	if p.BaseAudioID == "" {
		return nil, nil
	}
	track, err := s.vault.AudioTrack(ctx, p.BaseAudioID)
	if err != nil {
		if vault.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &track, nil
}

// DeleteProfile removes a profile and clears its pointer if needed.
func (s *Subliminal) DeleteProfile(ctx context.Context, id string) error {
	if err := s.vault.DeleteSubliminalProfile(ctx, id); err != nil {
		return err
	}
	if last, ok := s.vault.LastActive(model.KeyLastActiveSubliminalProfile); ok && last == id {
		s.vault.ClearLastActive(model.KeyLastActiveSubliminalProfile)
	}
	return nil
}
