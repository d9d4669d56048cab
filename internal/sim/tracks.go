package sim

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"leveller/internal/model"
	"leveller/internal/vault"
)

// Tracks manages the imported audio track library.
type Tracks struct {
	vault *vault.Vault
	newID func() string
}

// NewTracks constructs the service.
func NewTracks(v *vault.Vault) *Tracks {
	return &Tracks{vault: v, newID: newRecordID}
}

// Import reads an audio file and stores it as a data-URL-encoded
// track record. The display name defaults to the file name.
func (t *Tracks) Import(ctx context.Context, path, name string) (model.AudioTrack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.AudioTrack{}, fmt.Errorf("import track: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if name == "" {
		name = filepath.Base(path)
	}

	track := model.AudioTrack{
		ID:          t.newID(),
		Name:        model.NormalizeName(name, model.MaxPresetNameLen),
		FileDataURL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		MimeType:    mimeType,
	}
	if err := t.vault.SaveAudioTrack(ctx, track); err != nil {
		return track, err
	}
	return track, nil
}

// List returns all tracks sorted by display name.
func (t *Tracks) List(ctx context.Context) ([]model.AudioTrack, error) {
	tracks, err := t.vault.AudioTracks(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Name < tracks[j].Name })
	return tracks, nil
}

// Get returns one track by id.
func (t *Tracks) Get(ctx context.Context, id string) (model.AudioTrack, error) {
	return t.vault.AudioTrack(ctx, id)
}

// Delete removes a track. References from profiles and amplifier
// settings are weak and degrade lazily; nothing is scrubbed here.
func (t *Tracks) Delete(ctx context.Context, id string) error {
	return t.vault.DeleteAudioTrack(ctx, id)
}

// Decode extracts the raw payload from a track's data URL.
func Decode(track model.AudioTrack) ([]byte, error) {
	const marker = ";base64,"
	for i := 0; i+len(marker) <= len(track.FileDataURL); i++ {
		if track.FileDataURL[i:i+len(marker)] == marker {
			return base64.StdEncoding.DecodeString(track.FileDataURL[i+len(marker):])
		}
	}
	return nil, fmt.Errorf("decode track %s: not a base64 data url", track.ID)
}
