package runner

import (
	"fmt"
	"regexp"
	"strings"
)

var varRe = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Vars is a map of variable names to values for instruction rendering.
type Vars map[string]string

// Render expands {{variable}} placeholders. Unknown variables are an error.
func Render(tmpl string, vars Vars) (string, error) {
	var missing []string
	expanded := varRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := varRe.FindStringSubmatch(match)[1]
		if val, ok := vars[name]; ok {
			return val
		}
		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}

// systemPrompt builds the persona of a stage
func systemPrompt(stage Stage) string {
	var b strings.Builder
	if stage.Role != "" {
		fmt.Fprintf(&b, "You are a %s.", stage.Role)
	}
	if stage.Goal != "" {
		fmt.Fprintf(&b, " Your goal: %s.", strings.TrimSuffix(stage.Goal, "."))
	}
	if stage.Backstory != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(stage.Backstory))
	}
	return strings.TrimSpace(b.String())
}

// userPrompt joins the rendered instructions with the output contract
func userPrompt(stage Stage, req PipelineRequest) (string, error) {
	instructions, err := Render(stage.Instructions, Vars{"url": req.URL, "stage": stage.Name})
	if err != nil {
		return "", fmt.Errorf("render instructions: %w", err)
	}
	instructions = strings.TrimSpace(instructions)
	if stage.ExpectedOutput != "" {
		instructions += "\n\nExpected output: " + strings.TrimSpace(stage.ExpectedOutput)
	}
	return instructions, nil
}
