// Package script checks a podcast script against the styling rules given to the
// styling stage. The rules are instructions to the model; this check only reports
// how well the answer follows them.
package script

import (
	"fmt"
	"regexp"
	"strings"
)

// Transitions is the fixed vocabulary of spoken transition phrases
var Transitions = []string{
	// headings / main topics
	"As for the heading",
	"Now, regarding the main topic",
	"Let's start with",
	"The heading suggests that",
	// between sections
	"Now, coming to the main part",
	"Moving on to the next section",
	"As we transition to",
	"Let's dive deeper into",
	"Shifting our focus to",
	// key points
	"An important point here is",
	"What's interesting about this",
	"Here's something crucial",
	"Now, regarding this specific aspect",
	"This brings us to",
	// lists
	"First up",
	"Next",
	"Additionally",
	"Another key factor",
	"Furthermore",
	"On top of that",
	// conclusions
	"So, to summarize",
	"In conclusion",
	"Before we wrap up",
	"To bring it all together",
	"As a final takeaway",
	"Ultimately",
	// general
	"Now, moving forward",
	"With that said",
	"Shifting gears slightly",
	"Building on that idea",
	"Let's transition to",
	"At this point",
}

// Rules are the limits a script is checked against
type Rules struct {
	MinWords       int
	MaxWords       int
	MinTransitions int
	Opening        string
	Closing        string
}

// DefaultRules mirror the styling stage instructions
func DefaultRules() Rules {
	return Rules{
		MinWords:       200,
		MaxWords:       240,
		MinTransitions: 5,
		Opening:        "As for the heading",
		Closing:        "In conclusion",
	}
}

// Report is the outcome of Check
type Report struct {
	Words       int      `json:"words"`
	Transitions []string `json:"transitions"`
	Violations  []string `json:"violations,omitempty"`
}

// OK reports whether the script follows every rule
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Err returns the violations as an error, or nil
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("script breaks style rules: %s", strings.Join(r.Violations, "; "))
}

var (
	urlRe      = regexp.MustCompile(`(?i)\b(https?://|www\.)\S+`)
	markdownRe = regexp.MustCompile("(?m)(^\\s*#{1,6}\\s)|(^\\s*[-*+]\\s)|(^\\s*\\d+\\.\\s)|(\\*\\*[^*]+\\*\\*)|(__[^_]+__)|(`[^`]+`)|(\\[[^\\]]+\\]\\([^)]+\\))")
)

// Check measures text against rules
func Check(text string, rules Rules) Report {
	trimmed := strings.TrimSpace(text)
	report := Report{
		Words:       len(strings.Fields(trimmed)),
		Transitions: findTransitions(trimmed),
	}

	if rules.MinWords > 0 && report.Words < rules.MinWords {
		report.Violations = append(report.Violations, fmt.Sprintf("%d words, want at least %d", report.Words, rules.MinWords))
	}
	if rules.MaxWords > 0 && report.Words > rules.MaxWords {
		report.Violations = append(report.Violations, fmt.Sprintf("%d words, want at most %d", report.Words, rules.MaxWords))
	}
	if len(report.Transitions) < rules.MinTransitions {
		report.Violations = append(report.Violations, fmt.Sprintf("%d distinct transition phrases, want at least %d", len(report.Transitions), rules.MinTransitions))
	}
	if rules.Opening != "" && !hasPrefixFold(trimmed, rules.Opening) {
		report.Violations = append(report.Violations, fmt.Sprintf("does not open with %q", rules.Opening))
	}
	if rules.Closing != "" && !containsFold(trimmed, rules.Closing) {
		report.Violations = append(report.Violations, fmt.Sprintf("has no closing %q", rules.Closing))
	}
	if markdownRe.MatchString(trimmed) {
		report.Violations = append(report.Violations, "contains markdown")
	}
	if urlRe.MatchString(trimmed) {
		report.Violations = append(report.Violations, "contains a URL")
	}

	return report
}

// findTransitions returns the distinct vocabulary phrases present in text
func findTransitions(text string) []string {
	normalized := normalizeQuotes(strings.ToLower(text))
	found := make([]string, 0)
	for _, phrase := range Transitions {
		p := normalizeQuotes(strings.ToLower(phrase))
		if phraseIndex(normalized, p) >= 0 {
			found = append(found, phrase)
		}
	}
	return found
}

// phraseIndex finds p in s on word boundaries so "Next" does not match "nextgen"
func phraseIndex(s, p string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], p)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(p)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return start
		}
		offset = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '\'' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func normalizeQuotes(s string) string {
	return strings.NewReplacer("‘", "'", "’", "'").Replace(s)
}

func hasPrefixFold(s, prefix string) bool {
	s = normalizeQuotes(strings.TrimLeft(s, "\"'“ "))
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func containsFold(s, sub string) bool {
	return phraseIndex(normalizeQuotes(strings.ToLower(s)), strings.ToLower(sub)) >= 0
}
