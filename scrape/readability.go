package scrape

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ReadabilityExtractor fetches a page itself and keeps the main article
type ReadabilityExtractor struct {
	httpClient *http.Client
	userAgent  string
	maxSizeMB  int
}

// NewReadabilityExtractor creates a local extractor that needs no credentials
func NewReadabilityExtractor(timeout time.Duration, userAgent string, maxSizeMB int) *ReadabilityExtractor {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &ReadabilityExtractor{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxSizeMB: maxSizeMB,
	}
}

// Extract returns the article title and body as plain text with markdown headings
func (e *ReadabilityExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := nurl.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	html, err := e.fetchHTML(ctx, rawURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability %q: %w", rawURL, err)
	}

	text, err := HTMLToText(article.Content)
	if err != nil {
		return "", fmt.Errorf("readability %q: %w", rawURL, err)
	}
	if text == "" {
		text = strings.TrimSpace(article.TextContent)
	}
	if text == "" {
		return "", fmt.Errorf("readability %q: %w", rawURL, ErrNoContent)
	}

	if title := strings.TrimSpace(article.Title); title != "" && !strings.HasPrefix(text, "# ") {
		text = "# " + title + "\n\n" + text
	}
	log.Printf("[Readability] Extracted %s (%d chars)", rawURL, len(text))
	return text, nil
}

// fetchHTML retrieves HTML content from a URL
func (e *ReadabilityExtractor) fetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("http get: new request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http get %q: status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return "", fmt.Errorf("http get %q: unsupported content type %s", url, contentType)
	}

	maxBytes := int64(e.maxSizeMB) * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("http get %q: read body: %w", url, err)
	}
	if int64(len(body)) > maxBytes {
		return "", fmt.Errorf("http get %q: content exceeds size limit of %dMB", url, e.maxSizeMB)
	}

	return string(body), nil
}

// HTMLToText renders article HTML as paragraphs, markdown headings and dash lists.
// Links keep their text only; images, figures and embeds are dropped.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, iframe, img, picture, figure, svg, video, audio, form, button").Remove()

	var builder strings.Builder
	writeBlocks(&builder, doc.Find("body"))

	return strings.TrimSpace(collapseBlankLines(builder.String())), nil
}

// writeBlocks walks block elements and writes one block per paragraph
func writeBlocks(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(i int, s *goquery.Selection) {
		switch name := goquery.NodeName(s); name {
		case "#text":
			if text := squash(s.Text()); text != "" {
				b.WriteString(text)
				b.WriteString("\n\n")
			}
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := squash(s.Text()); text != "" {
				level := int(name[1] - '0')
				b.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
			}
		case "p", "blockquote", "pre":
			if text := squash(s.Text()); text != "" {
				b.WriteString(text)
				b.WriteString("\n\n")
			}
		case "ul", "ol":
			s.ChildrenFiltered("li").Each(func(j int, li *goquery.Selection) {
				if text := squash(li.Text()); text != "" {
					b.WriteString("- " + text + "\n")
				}
			})
			b.WriteString("\n")
		case "br", "hr":
			b.WriteString("\n")
		case "#comment":
		default:
			if s.Find(blockSelector).Length() == 0 {
				if text := squash(s.Text()); text != "" {
					b.WriteString(text)
					b.WriteString("\n\n")
				}
				return
			}
			writeBlocks(b, s)
		}
	})
}

const blockSelector = "p, div, section, article, main, header, h1, h2, h3, h4, h5, h6, ul, ol, blockquote, pre, table"

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
