package sim

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leveller/internal/model"
	"leveller/internal/testutil"
)

func newTestSubliminal(t *testing.T, v ...*model.AudioTrack) (*Subliminal, *testutil.Clock) {
	t.Helper()
	vlt := newTestVault(t)
	for _, track := range v {
		require.NoError(t, vlt.SaveAudioTrack(context.Background(), *track))
	}
	clock := testutil.NewClock(simStart)
	s := NewSubliminal(vlt)
	s.now = clock.Now
	s.newID = sequentialIDs()
	return s, clock
}

func TestValidateAffirmation(t *testing.T) {
	cases := []struct {
		name string
		aff  model.Affirmation
		ok   bool
	}{
		{"valid", model.Affirmation{Text: "I am calm", Intensity: 50, DelayMs: 1000}, true},
		{"empty text", model.Affirmation{Text: "   ", Intensity: 50}, false},
		{"text too long", model.Affirmation{Text: strings.Repeat("x", 201), Intensity: 50}, false},
		{"text at limit", model.Affirmation{Text: strings.Repeat("x", 200), Intensity: 50}, true},
		{"intensity below range", model.Affirmation{Text: "ok", Intensity: -1}, false},
		{"intensity above range", model.Affirmation{Text: "ok", Intensity: 101}, false},
		{"intensity at bounds", model.Affirmation{Text: "ok", Intensity: 100}, true},
		{"delay negative", model.Affirmation{Text: "ok", DelayMs: -1}, false},
		{"delay above range", model.Affirmation{Text: "ok", DelayMs: 10001}, false},
		{"delay at limit", model.Affirmation{Text: "ok", DelayMs: 10000}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAffirmation(tc.aff)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAffirmation)
			}
		})
	}
}

func TestSaveProfile_AssignsIdentity(t *testing.T) {
	s, _ := newTestSubliminal(t)
	ctx := context.Background()

	saved, err := s.SaveProfile(ctx, model.SubliminalProfile{
		Name: "Confidence",
		Affirmations: []model.Affirmation{
			{Text: "I speak clearly", Intensity: 60, DelayMs: 500},
			{Text: "I am heard", Intensity: 70, DelayMs: 800},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, simStart.UnixMilli(), saved.CreatedAt)
	assert.Equal(t, model.DefaultInfusionSettings(), saved.Infusion)
	for _, a := range saved.Affirmations {
		assert.NotEmpty(t, a.ID)
	}
	assert.NotEqual(t, saved.Affirmations[0].ID, saved.Affirmations[1].ID)
}

func TestSaveProfile_RejectsInvalidAffirmation(t *testing.T) {
	s, _ := newTestSubliminal(t)

	_, err := s.SaveProfile(context.Background(), model.SubliminalProfile{
		Name: "Broken",
		Affirmations: []model.Affirmation{
			{Text: "fine", Intensity: 50},
			{Text: "", Intensity: 50},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidAffirmation)

	// Nothing was persisted.
	profiles, perr := s.Profiles(context.Background())
	require.NoError(t, perr)
	assert.Empty(t, profiles)
}

func TestSaveProfile_SetsLastActivePointer(t *testing.T) {
	s, _ := newTestSubliminal(t)
	ctx := context.Background()

	saved, err := s.SaveProfile(ctx, model.SubliminalProfile{Name: "p"})
	require.NoError(t, err)

	id, ok := s.vault.LastActive(model.KeyLastActiveSubliminalProfile)
	require.True(t, ok)
	assert.Equal(t, saved.ID, id)

	require.NoError(t, s.DeleteProfile(ctx, saved.ID))
	_, ok = s.vault.LastActive(model.KeyLastActiveSubliminalProfile)
	assert.False(t, ok)
}

func TestProfiles_NewestFirst(t *testing.T) {
	s, clock := newTestSubliminal(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.SaveProfile(ctx, model.SubliminalProfile{Name: name})
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	profiles, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "third", profiles[0].Name)
	assert.Equal(t, "first", profiles[2].Name)
}

func TestBaseTrack_WeakReference(t *testing.T) {
	track := model.AudioTrack{ID: "base-1", Name: "ocean"}
	s, _ := newTestSubliminal(t, &track)
	ctx := context.Background()

	// Present reference resolves.
	got, err := s.BaseTrack(ctx, model.SubliminalProfile{BaseAudioID: "base-1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ocean", got.Name)

	// Empty and dangling references both degrade to nil.
	got, err = s.BaseTrack(ctx, model.SubliminalProfile{})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.BaseTrack(ctx, model.SubliminalProfile{BaseAudioID: "deleted"})
	require.NoError(t, err)
	assert.Nil(t, got)
}
