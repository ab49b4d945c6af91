package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"blogcast/runner"
)

// ErrEmptyAnswer is returned when the model produced no text
var ErrEmptyAnswer = errors.New("no content returned from LLM")

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Client talks to an OpenAI-compatible chat completions endpoint (Ollama, vLLM, llama.cpp)
type Client struct {
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	httpClient  *http.Client
}

// NewClient creates a chat client. A zero timeout waits as long as the caller's context allows.
func NewClient(baseURL, model, apiKey string, temperature float64, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends the stage prompt and returns the model answer
func (c *Client) Generate(ctx context.Context, req runner.GenerateRequest) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: BuildUserMessage(req.Instructions, req.Context)})

	jsonData, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Stream:      false,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("LLM returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from LLM")
	}

	raw := result.Choices[0].Message.Content
	answer := CleanAnswer(raw)
	log.Printf("[LLM] %s answered in %s (%d chars, %d after cleanup)", c.model, time.Since(start).Round(time.Millisecond), len(raw), len(answer))
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// BuildUserMessage places the upstream text after the instructions
func BuildUserMessage(instructions, context string) string {
	if context == "" {
		return instructions
	}
	return instructions + "\n\nContext:\n" + context
}

// CleanAnswer drops <think> blocks emitted by reasoning models
func CleanAnswer(content string) string {
	content = thinkRe.ReplaceAllString(content, "")
	// an unterminated block means the model stopped while still reasoning
	if i := strings.Index(content, "<think>"); i >= 0 {
		content = content[:i]
	}
	return strings.TrimSpace(content)
}
