package model

// DefaultAmplifierSettings returns the built-in amplifier singleton.
// Injected by the persistence facade when no record exists; the rest
// of the system never observes "missing settings".
func DefaultAmplifierSettings() AmplifierSettings {
	return AmplifierSettings{
		ID:             SingletonID,
		AuraExpansion:  50,
		FrequencyField: 50,
		ActiveTracks:   []string{"", "", ""},
	}
}

// DefaultAppSettings returns the app-wide settings used when the KV
// blob is absent or unreadable.
func DefaultAppSettings() AppSettings {
	return AppSettings{ActiveModule: "radionics"}
}

// DefaultRadionicsRates centers all six dials.
func DefaultRadionicsRates() RadionicsRates {
	return RadionicsRates{
		Trend1: 50, Trend2: 50, Trend3: 50,
		Target1: 50, Target2: 50, Target3: 50,
	}
}

// DefaultInfusionSettings centers the subliminal blend parameters.
func DefaultInfusionSettings() InfusionSettings {
	return InfusionSettings{
		HarmonicResonance:   50,
		QuantumEntanglement: 50,
		EthericVibration:    50,
	}
}

// DefaultFrequencyPreset is the generator's initial configuration.
func DefaultFrequencyPreset() FrequencyPreset {
	return FrequencyPreset{
		FrequencyHz:       432,
		EmissionIntensity: 50,
		WaveformType:      WaveSine,
	}
}
