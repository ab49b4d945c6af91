package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ElevenLabs defaults
const (
	DefaultElevenLabsURL = "https://api.elevenlabs.io"
	DefaultVoiceID       = "JBFqnCBsd6RMkjVDRZzb"
	DefaultModelID       = "eleven_flash_v2_5"
	DefaultOutputFormat  = "mp3_44100_128"
)

// ElevenLabsConfig selects the voice and encoding
type ElevenLabsConfig struct {
	BaseURL      string
	APIKey       string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Timeout      time.Duration
}

// ElevenLabsClient streams speech from the ElevenLabs text-to-speech API
type ElevenLabsClient struct {
	cfg        ElevenLabsConfig
	httpClient *http.Client
}

// NewElevenLabsClient fills unset fields with the defaults
func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultElevenLabsURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &ElevenLabsClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// SynthesizeStream posts the text and returns the audio body
func (c *ElevenLabsClient) SynthesizeStream(ctx context.Context, text string) (io.ReadCloser, error) {
	body, err := json.Marshal(speechRequest{Text: text, ModelID: c.cfg.ModelID})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?output_format=%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.VoiceID), url.QueryEscape(c.cfg.OutputFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	log.Printf("[ElevenLabs] Synthesizing %d chars with voice %s (%s)", len(text), c.cfg.VoiceID, c.cfg.ModelID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("elevenlabs: status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	return resp.Body, nil
}
