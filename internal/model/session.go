package model

// Channel identifies the origin of a counting event.
type Channel string

const (
	ChannelTap    Channel = "tap"
	ChannelVoice  Channel = "voice"
	ChannelManual Channel = "manual"
)

// ValidChannel reports whether c is one of the three known channels.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelTap, ChannelVoice, ChannelManual:
		return true
	}
	return false
}

// Well-known repetition targets. Any other positive integer is a valid
// custom target.
const (
	TargetTenThousandEight = 10008
	TargetTwentyThousand   = 20000
	TargetHundredThousand  = 100000
)

// SessionLogEntry is one counted repetition, tagged with its channel.
// The session log is append-only and ordered by arrival.
type SessionLogEntry struct {
	Timestamp int64   `json:"timestamp"`
	Channel   Channel `json:"type"`
}

// MantraSession is a single counting run.
//
// Invariants:
//   - CurrentRepetitions is monotonically non-decreasing while active
//     and never exceeds RequiredRepetitions by more than the single
//     increment that triggered completion.
//   - CompletedAt is stamped only by an update that observes the
//     target reached; an explicit end below target leaves it unset.
type MantraSession struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	DateOfBirth         string            `json:"dateOfBirth,omitempty"`
	TimeOfBirth         string            `json:"timeOfBirth,omitempty"`
	RitualDescription   string            `json:"ritualDescription"`
	MantraText          string            `json:"mantraText"`
	RequiredRepetitions int               `json:"requiredRepetitions"`
	CurrentRepetitions  int               `json:"currentRepetitions"`
	IsActive            bool              `json:"isActive"`
	StartedAt           int64             `json:"startedAt"`
	CompletedAt         int64             `json:"completedAt,omitempty"`
	Log                 []SessionLogEntry `json:"log"`
}

// Completed reports whether the session reached its target.
func (s *MantraSession) Completed() bool {
	return s.CurrentRepetitions >= s.RequiredRepetitions
}

// Progress returns completion as a fraction in [0, +inf); callers cap
// display at 1.0 (a resumed completed session can count past 100%).
func (s *MantraSession) Progress() float64 {
	if s.RequiredRepetitions <= 0 {
		return 0
	}
	return float64(s.CurrentRepetitions) / float64(s.RequiredRepetitions)
}
