package runner

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMinFinalLength guards against empty or garbage model output
const DefaultMinFinalLength = 50

// ValidateURL checks the raw input and builds a PipelineRequest
func ValidateURL(raw string) (PipelineRequest, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return PipelineRequest{}, &ValidationError{Input: raw, Reason: "URL is empty"}
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return PipelineRequest{}, &ValidationError{Input: raw, Reason: "URL must start with http:// or https://"}
	}
	host := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if host == "" {
		return PipelineRequest{}, &ValidationError{Input: raw, Reason: "URL has no host"}
	}
	return PipelineRequest{URL: url}, nil
}

// checkOutput enforces the minimum length of a stage output
func checkOutput(text string, minLength int) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("%w: empty response", ErrOutputTooShort)
	}
	if n := utf8.RuneCountInString(trimmed); minLength > 0 && n < minLength {
		return fmt.Errorf("%w: %d characters, want at least %d", ErrOutputTooShort, n, minLength)
	}
	return nil
}
