package podcast

import (
	"fmt"
	"log"

	"blogcast/config"
	"blogcast/events"
	"blogcast/llm"
	"blogcast/runner"
	"blogcast/runner/storage"
	"blogcast/scrape"
	"blogcast/tts"
)

// NewFromConfig builds a Generator with the collaborators named in cfg
func NewFromConfig(cfg *config.Config, store *storage.Storage, broker *events.EventBroker, streamToTerminal bool) (*Generator, error) {
	def, err := runner.LoadDefinition(cfg.StagesPath)
	if err != nil {
		return nil, err
	}

	extractor, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	generator := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.APIKey, cfg.LLM.Temperature, cfg.Timeout())
	synth := tts.NewElevenLabsClient(tts.ElevenLabsConfig{
		BaseURL:      cfg.TTS.BaseURL,
		APIKey:       cfg.TTS.APIKey,
		VoiceID:      cfg.TTS.VoiceID,
		ModelID:      cfg.TTS.ModelID,
		OutputFormat: cfg.TTS.OutputFormat,
		Timeout:      cfg.Timeout(),
	})

	log.Printf("[Podcast] extractor=%s model=%s audio=%s", cfg.Extractor, cfg.LLM.Model, cfg.AudioPath)

	return New(def, extractor, generator, synth, Options{
		AudioPath:        cfg.AudioPath,
		MaxChars:         cfg.TTS.MaxChars,
		EnforceStyle:     cfg.EnforceStyle,
		Storage:          store,
		Events:           broker,
		StreamToTerminal: streamToTerminal,
	})
}

// NewExtractor returns the extraction backend selected in cfg
func NewExtractor(cfg *config.Config) (runner.Extractor, error) {
	switch cfg.Extractor {
	case config.ExtractorFirecrawl:
		return scrape.NewFirecrawlClient(cfg.Firecrawl.BaseURL, cfg.Firecrawl.APIKey, cfg.Timeout()), nil
	case config.ExtractorReadability:
		return scrape.NewReadabilityExtractor(cfg.Timeout(), cfg.Readability.UserAgent, cfg.Readability.MaxSizeMB), nil
	default:
		return nil, fmt.Errorf("unknown extractor: %s", cfg.Extractor)
	}
}
