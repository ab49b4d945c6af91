// Package tts is the boundary to the speech synthesis service.
package tts

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the longest text sent for synthesis
const DefaultMaxChars = 1000

// Synthesizer converts text to an audio stream
type Synthesizer interface {
	// SynthesizeStream returns encoded audio as it is generated.
	// Caller must Close the returned ReadCloser.
	SynthesizeStream(ctx context.Context, text string) (io.ReadCloser, error)
}

// Truncate cuts text to at most max runes, preferring the last sentence end that fits.
func Truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:max])

	// keep whole sentences when at least half of the budget survives
	if i := strings.LastIndexAny(cut, ".!?"); i >= 0 && utf8.RuneCountInString(cut[:i+1]) >= max/2 {
		return cut[:i+1]
	}
	return strings.TrimSpace(cut)
}
