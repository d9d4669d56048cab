package model

// Collection names the record collections multiplexed over one store.
// Values are fixed wire names - renaming one orphans existing data.
type Collection string

const (
	CollectionRadionicsPresets   Collection = "presets-radionics"
	CollectionEmissionLogs       Collection = "emission-logs-radionics"
	CollectionAudioTracks        Collection = "audio-tracks"
	CollectionAmplifierSettings  Collection = "amplifier-settings"
	CollectionSubliminalProfiles Collection = "subliminal-profiles"
	CollectionHealingPresets     Collection = "healing-presets"
	CollectionFrequencyPresets   Collection = "frequency-presets"
	CollectionMantraSessions     Collection = "mantra-sessions"
)

// Collections lists every collection in declaration order. The store
// registers these at open; adding a new one requires a schema version
// bump (additive-only migration).
func Collections() []Collection {
	return []Collection{
		CollectionRadionicsPresets,
		CollectionEmissionLogs,
		CollectionAudioTracks,
		CollectionAmplifierSettings,
		CollectionSubliminalProfiles,
		CollectionHealingPresets,
		CollectionFrequencyPresets,
		CollectionMantraSessions,
	}
}

// SingletonID is the fixed well-known key for singleton collections
// (amplifier settings). Exactly one live record per such collection.
const SingletonID = "singleton"

// Scalar keys stored in the SimpleKV layer. These hold flags and
// "last active record id" pointers, not schema'd records.
const (
	KeyAppSettings          = "app-settings"
	KeyMicPermissionGranted = "mic-permission-granted"
	KeyWelcomeMessageShown  = "welcome-message-shown"

	KeyLastActiveRadionicsPreset   = "radionics-last-active-preset-id"
	KeyLastActiveHealingPreset     = "healing-last-active-preset-id"
	KeyLastActiveFrequencyPreset   = "frequency-last-active-preset-id"
	KeyLastActiveSubliminalProfile = "subliminal-last-active-profile-id"
	KeyLastActiveMantraSession     = "mantra-last-active-session-id"
)
