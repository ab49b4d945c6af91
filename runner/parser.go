package runner

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed stages.yml
var defaultStages []byte

// DefinitionVersion is the only stage file format understood
const DefinitionVersion = 1

// Definition is a versioned set of stage records
type Definition struct {
	Version        int     `yaml:"version" json:"version"`
	MinFinalLength int     `yaml:"min_final_length" json:"min_final_length"`
	Stages         []Stage `yaml:"stages" json:"stages"`
}

// DefaultDefinition returns the built-in extract / structure / style pipeline
func DefaultDefinition() (*Definition, error) {
	return ParseDefinition(defaultStages)
}

// LoadDefinition reads a stage file, falling back to the built-in one for an empty path
func LoadDefinition(path string) (*Definition, error) {
	if path == "" {
		return DefaultDefinition()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stages file: %w", err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition decodes and validates a stage file
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse stages: %w", err)
	}
	if def.MinFinalLength == 0 {
		def.MinFinalLength = DefaultMinFinalLength
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the stage records and their dependency path
func (d *Definition) Validate() error {
	if d.Version != DefinitionVersion {
		return fmt.Errorf("unsupported stages version %d (want %d)", d.Version, DefinitionVersion)
	}
	if d.MinFinalLength < 0 {
		return fmt.Errorf("min_final_length must not be negative")
	}

	for i, stage := range d.Stages {
		if stage.Name == "" {
			return fmt.Errorf("stage #%d has no name", i+1)
		}
		switch stage.Kind {
		case KindExtract, KindGenerate:
		default:
			return fmt.Errorf("stage '%s' has unknown kind '%s'", stage.Name, stage.Kind)
		}
		if stage.Kind == KindGenerate && stage.Upstream == "" {
			return fmt.Errorf("stage '%s' generates text but has no upstream", stage.Name)
		}
		if stage.Kind == KindExtract && stage.Upstream != "" {
			return fmt.Errorf("extract stage '%s' cannot have an upstream", stage.Name)
		}
		if _, err := userPrompt(stage, PipelineRequest{URL: "https://example.com"}); err != nil {
			return fmt.Errorf("stage '%s': %w", stage.Name, err)
		}
	}

	_, err := orderStages(d.Stages)
	return err
}

// Ordered returns the stages in execution order
func (d *Definition) Ordered() ([]Stage, error) {
	return orderStages(d.Stages)
}
