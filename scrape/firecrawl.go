package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultFirecrawlURL is the hosted Firecrawl API
const DefaultFirecrawlURL = "https://api.firecrawl.dev"

// ErrNoContent is returned when a page yields no article text
var ErrNoContent = errors.New("no article content extracted")

// FirecrawlClient extracts the main content of a page through the Firecrawl scrape API
type FirecrawlClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewFirecrawlClient creates a client; an empty baseURL uses the hosted API
func NewFirecrawlClient(baseURL, apiKey string, timeout time.Duration) *FirecrawlClient {
	if baseURL == "" {
		baseURL = DefaultFirecrawlURL
	}
	return &FirecrawlClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
}

// Extract returns the page's main content as markdown
func (c *FirecrawlClient) Extract(ctx context.Context, url string) (string, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return "", fmt.Errorf("firecrawl: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("firecrawl: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("firecrawl scrape %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("firecrawl scrape %q: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var result scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("firecrawl scrape %q: decode response: %w", url, err)
	}
	if !result.Success {
		return "", fmt.Errorf("firecrawl scrape %q: %s", url, result.Error)
	}
	if strings.TrimSpace(result.Data.Markdown) == "" {
		return "", fmt.Errorf("firecrawl scrape %q: %w", url, ErrNoContent)
	}

	log.Printf("[Firecrawl] Scraped %s: %q (%d chars)", url, result.Data.Metadata.Title, len(result.Data.Markdown))
	return result.Data.Markdown, nil
}
