package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"blogcast/runner"
)

// Extractor backends
const (
	ExtractorFirecrawl   = "firecrawl"
	ExtractorReadability = "readability"
)

// Config is the process-wide configuration, read once at startup
type Config struct {
	Port       string `yaml:"port"`
	DataDir    string `yaml:"data_dir"`
	AudioPath  string `yaml:"audio_path"`
	StagesPath string `yaml:"stages_path"`

	// Zero means no timeout: a stalled collaborator stalls the run
	HTTPTimeout Duration `yaml:"http_timeout"`

	Extractor string `yaml:"extractor"`
	Firecrawl struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"firecrawl"`
	Readability struct {
		UserAgent string `yaml:"user_agent"`
		MaxSizeMB int    `yaml:"max_size_mb"`
	} `yaml:"readability"`

	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	TTS struct {
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		VoiceID      string `yaml:"voice_id"`
		ModelID      string `yaml:"model_id"`
		OutputFormat string `yaml:"output_format"`
		MaxChars     int    `yaml:"max_chars"`
	} `yaml:"tts"`

	EnforceStyle bool              `yaml:"enforce_style"`
	Schedules    []runner.Schedule `yaml:"schedules"`
}

// Duration decodes "90s" style strings from YAML
type Duration time.Duration

// UnmarshalYAML parses a Go duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{
		Port:      "7777",
		DataDir:   "data",
		AudioPath: "data/podcast_audio.mp3",
		Extractor: ExtractorFirecrawl,
	}
	cfg.Readability.UserAgent = "Mozilla/5.0 (compatible; blogcast/1.0)"
	cfg.Readability.MaxSizeMB = 5
	cfg.LLM.BaseURL = "http://172.17.0.1:11434"
	cfg.LLM.Model = "deepseek-r1:1.5b"
	cfg.LLM.Temperature = 0.7
	cfg.TTS.MaxChars = 1000
	return cfg
}

// Load reads the configuration like Read and then validates it
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads .env, the optional YAML file at path and environment overrides
// without checking credentials. A missing file at path is not an error.
func Read(path string) (*Config, error) {
	// Load .env file if it exists (ignore errors if it doesn't)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config format: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment override file values
func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Port, "PORT")
	override(&c.AudioPath, "BLOGCAST_AUDIO_PATH")
	override(&c.StagesPath, "BLOGCAST_STAGES")
	override(&c.Extractor, "BLOGCAST_EXTRACTOR")
	override(&c.Firecrawl.APIKey, "FIRECRAWL_API_KEY")
	override(&c.TTS.APIKey, "ELEVENLABS_API_KEY")
	override(&c.LLM.BaseURL, "LLM_BASE_URL")
	override(&c.LLM.Model, "LLM_MODEL")
	override(&c.LLM.APIKey, "LLM_API_KEY")
}

// Validate reports missing credentials and malformed settings
func (c *Config) Validate() error {
	var problems []string

	switch c.Extractor {
	case ExtractorFirecrawl:
		if c.Firecrawl.APIKey == "" {
			problems = append(problems, "FIRECRAWL_API_KEY environment variable is not set")
		}
	case ExtractorReadability:
	default:
		problems = append(problems, fmt.Sprintf("unknown extractor %q (want %s or %s)", c.Extractor, ExtractorFirecrawl, ExtractorReadability))
	}
	if c.TTS.APIKey == "" {
		problems = append(problems, "ELEVENLABS_API_KEY environment variable is not set")
	}
	if c.LLM.BaseURL == "" || c.LLM.Model == "" {
		problems = append(problems, "llm base_url and model must be set")
	}
	if c.AudioPath == "" {
		problems = append(problems, "audio_path must be set")
	}
	if c.HTTPTimeout < 0 {
		problems = append(problems, "http_timeout must not be negative")
	}
	for i, s := range c.Schedules {
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("schedule #%d: %v", i+1, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Timeout returns the collaborator HTTP timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout)
}
