package tts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short text", Truncate("  short text  ", 100))
	assert.Equal(t, "no limit", Truncate("no limit", 0))

	text := "First sentence here. Second sentence is longer than the budget allows"
	assert.Equal(t, "First sentence here.", Truncate(text, 30))

	// no sentence end in the first half: hard cut
	assert.Equal(t, "abcdefghij", Truncate(strings.Repeat("abcdefghij", 5)+".", 10))
}

func TestTruncateCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 1500)
	got := Truncate(text, DefaultMaxChars)
	assert.Equal(t, DefaultMaxChars, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}
