package model

import (
	"strings"
	"testing"
)

func TestNormalizeName_TrimsAndCaps(t *testing.T) {
	got := NormalizeName("  Morning Practice  ", MaxPresetNameLen)
	if got != "Morning Practice" {
		t.Errorf("NormalizeName = %q", got)
	}

	long := strings.Repeat("a", 60)
	got = NormalizeName(long, MaxPresetNameLen)
	if len([]rune(got)) != MaxPresetNameLen {
		t.Errorf("capped length = %d, want %d", len([]rune(got)), MaxPresetNameLen)
	}
}

func TestNormalizeName_NFCComposition(t *testing.T) {
	// "e" + combining acute vs the precomposed character: both must
	// store the same bytes so names written on different platforms
	// compare equal.
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	if NormalizeName(decomposed, 0) != NormalizeName(composed, 0) {
		t.Error("NFC forms of the same name do not compare equal")
	}
}

func TestNormalizeName_CapCountsRunesNotBytes(t *testing.T) {
	// Multi-byte runes: a cap of 3 keeps 3 characters, not 3 bytes.
	got := NormalizeName("日本語テスト", 3)
	if got != "日本語" {
		t.Errorf("NormalizeName = %q, want 日本語", got)
	}
}

func TestNormalizeText_EmptyAfterTrim(t *testing.T) {
	if got := NormalizeText(" \t\n ", 0); got != "" {
		t.Errorf("NormalizeText = %q, want empty", got)
	}
}

func TestValidChannel(t *testing.T) {
	for _, c := range []Channel{ChannelTap, ChannelVoice, ChannelManual} {
		if !ValidChannel(c) {
			t.Errorf("ValidChannel(%q) = false", c)
		}
	}
	if ValidChannel(Channel("telepathy")) {
		t.Error("ValidChannel accepted an unknown channel")
	}
	if ValidChannel(Channel("")) {
		t.Error("ValidChannel accepted the empty channel")
	}
}

func TestSessionCompletedAndProgress(t *testing.T) {
	s := MantraSession{RequiredRepetitions: 100, CurrentRepetitions: 50}
	if s.Completed() {
		t.Error("session at 50/100 reported completed")
	}
	if got := s.Progress(); got != 0.5 {
		t.Errorf("Progress = %v, want 0.5", got)
	}

	s.CurrentRepetitions = 120
	if !s.Completed() {
		t.Error("session past target not completed")
	}
	if got := s.Progress(); got != 1.2 {
		t.Errorf("Progress past target = %v, want 1.2", got)
	}

	zero := MantraSession{}
	if got := zero.Progress(); got != 0 {
		t.Errorf("Progress with zero target = %v, want 0", got)
	}
}
