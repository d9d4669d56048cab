package model

// RadionicsRates is the six-dial tuning payload of a radionics preset.
type RadionicsRates struct {
	Trend1  int `json:"trend1"`
	Trend2  int `json:"trend2"`
	Trend3  int `json:"trend3"`
	Target1 int `json:"target1"`
	Target2 int `json:"target2"`
	Target3 int `json:"target3"`
}

// WitnessType distinguishes text witnesses from imported images.
type WitnessType string

const (
	WitnessText  WitnessType = "text"
	WitnessImage WitnessType = "image"
)

// RadionicsWitness is the optional focus object attached to a preset.
// Data holds either the witness text or a base64 image payload.
type RadionicsWitness struct {
	Type WitnessType `json:"type"`
	Data string      `json:"data"`
	Name string      `json:"name,omitempty"`
}

// RadionicsPreset is a saved dial configuration.
type RadionicsPreset struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Rates     RadionicsRates    `json:"rates"`
	Witness   *RadionicsWitness `json:"witness,omitempty"`
	CreatedAt int64             `json:"createdAt"`
}

// EmissionLog records one radionics emission. Append-only: logs are
// never mutated or deleted after being written.
type EmissionLog struct {
	ID                string         `json:"id"`
	Timestamp         int64          `json:"timestamp"`
	Rates             RadionicsRates `json:"rates"`
	ResonanceStrength int            `json:"resonanceStrength"`
	WitnessInfo       string         `json:"witnessInfo"`
	EnergyConsumed    float64        `json:"energyConsumed"`
}

// AudioTrack is an imported audio file, payload inlined as a data URL.
// Other records reference tracks by ID only; a dangling reference must
// degrade to "no track", never error.
type AudioTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FileDataURL string `json:"fileDataUrl"`
	MimeType    string `json:"mimeType"`
}

// AmplifierSettings is the singleton record for the amplifier module.
// ActiveTracks holds up to three slots; empty string means vacant.
type AmplifierSettings struct {
	ID             string   `json:"id"`
	AuraExpansion  int      `json:"auraExpansion"`
	FrequencyField int      `json:"frequencyField"`
	ActiveTracks   []string `json:"activeTracks"`
}

// Affirmation is one entry in a subliminal profile's ordered sequence.
type Affirmation struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Intensity int    `json:"intensity"` // 0-100
	DelayMs   int    `json:"delay"`     // 0-10000
}

// InfusionSettings are the subliminal profile's blend parameters.
type InfusionSettings struct {
	HarmonicResonance   int `json:"harmonicResonance"`
	QuantumEntanglement int `json:"quantumEntanglement"`
	EthericVibration    int `json:"ethericVibration"`
}

// SubliminalProfile is a saved affirmation program. BaseAudioID is a
// weak reference into the audio-tracks collection.
type SubliminalProfile struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	BaseAudioID  string           `json:"baseAudioId,omitempty"`
	Affirmations []Affirmation    `json:"affirmations"`
	Infusion     InfusionSettings `json:"infusionSettings"`
	CreatedAt    int64            `json:"createdAt"`
}

// HealingPreset is a saved quantum-healing target configuration.
type HealingPreset struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	ChakraFocus              string `json:"chakraFocus"`
	EnergyCoherenceTarget    int    `json:"energyCoherenceTarget"`
	HarmonyMeterTarget       int    `json:"harmonyMeterTarget"`
	AlignmentIndicatorTarget int    `json:"alignmentIndicatorTarget"`
	CreatedAt                int64  `json:"createdAt"`
}

// Waveform is the frequency generator's output shape.
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
)

// FrequencyPreset is a saved frequency generator configuration.
type FrequencyPreset struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	FrequencyHz       float64  `json:"frequencyHz"`
	EmissionIntensity int      `json:"emissionIntensity"`
	WaveformType      Waveform `json:"waveformType"`
	CreatedAt         int64    `json:"createdAt"`
}

// AppSettings is the app-wide settings blob stored JSON-encoded in the
// SimpleKV layer rather than the record store.
type AppSettings struct {
	ActiveModule string `json:"activeModule"`
}

// MaxPresetNameLen caps user-entered preset and profile names.
const MaxPresetNameLen = 50

// Affirmation field bounds.
const (
	MaxAffirmationTextLen = 200
	MaxAffirmationDelayMs = 10000
)
