package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims, NFC-normalizes and caps a user-entered record
// name. Records written on different platforms must compare equal by
// name, so normalization happens at write time, not display time.
func NormalizeName(name string, maxLen int) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if maxLen > 0 && len([]rune(name)) > maxLen {
		name = string([]rune(name)[:maxLen])
	}
	return name
}

// NormalizeText NFC-normalizes free text (mantra text, affirmations)
// without trimming interior whitespace.
func NormalizeText(text string, maxLen int) string {
	text = norm.NFC.String(strings.TrimSpace(text))
	if maxLen > 0 && len([]rune(text)) > maxLen {
		text = string([]rune(text)[:maxLen])
	}
	return text
}
