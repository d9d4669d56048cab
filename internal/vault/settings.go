package vault

import (
	"encoding/json"

	"leveller/internal/model"
)

// legacyAppSettingsFields lists fields written by earlier schema
// versions that must be stripped on read before the blob is re-saved.
var legacyAppSettingsFields = []string{"acknowledgedDisclaimer"}

// AppSettings reads the app-wide settings blob from the KV layer,
// stripping legacy fields. Absent or unreadable blobs yield defaults;
// this read never fails.
func (v *Vault) AppSettings() model.AppSettings {
	return loadBackwardCompatible(v.kv, model.KeyAppSettings,
		model.DefaultAppSettings(), legacyAppSettingsFields)
}

// SaveAppSettings writes the settings blob JSON-encoded into KV.
func (v *Vault) SaveAppSettings(s model.AppSettings) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	v.kv.SetString(model.KeyAppSettings, string(data))
}

// loadBackwardCompatible reads a JSON-encoded value from KV, deletes
// fields that existed in earlier schema versions, and decodes into T.
// Any failure falls back to defaults.
func loadBackwardCompatible[T any](kv kvGetter, key string, defaults T, legacyFields []string) T {
	raw, ok := kv.GetString(key)
	if !ok {
		return defaults
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return defaults
	}
	for _, f := range legacyFields {
		delete(fields, f)
	}
	cleaned, err := json.Marshal(fields)
	if err != nil {
		return defaults
	}
	out := defaults
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return defaults
	}
	return out
}

type kvGetter interface {
	GetString(key string) (string, bool)
}

// --- Flags and last-active pointers ---

func (v *Vault) MicPermissionGranted() bool {
	return v.kv.GetBool(model.KeyMicPermissionGranted)
}

func (v *Vault) SetMicPermissionGranted(granted bool) {
	v.kv.SetBool(model.KeyMicPermissionGranted, granted)
}

func (v *Vault) WelcomeMessageShown() bool {
	return v.kv.GetBool(model.KeyWelcomeMessageShown)
}

func (v *Vault) SetWelcomeMessageShown(shown bool) {
	v.kv.SetBool(model.KeyWelcomeMessageShown, shown)
}

// LastActive returns the "last active record id" pointer under key.
func (v *Vault) LastActive(key string) (string, bool) {
	return v.kv.GetString(key)
}

func (v *Vault) SetLastActive(key, id string) {
	v.kv.SetString(key, id)
}

func (v *Vault) ClearLastActive(key string) {
	v.kv.Remove(key)
}
