package runner

import (
	"context"
	"strings"
	"sync"
)

type fakeExtractor struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	return f.text, f.err
}

// fakeGenerator answers prompts in order and records every request
type fakeGenerator struct {
	mu       sync.Mutex
	answers  []string
	err      error
	failAt   int // 1-based call that returns err; 0 means every call
	requests []GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	if f.err != nil && (f.failAt == 0 || f.failAt == n) {
		return "", f.err
	}
	if n > len(f.answers) {
		return "", nil
	}
	return f.answers[n-1], nil
}

const (
	fixtureArticle   = "# Go generics\n\nGenerics landed in Go 1.18 and changed how libraries are written."
	fixtureStructure = "Title: Go generics\nMain topic: type parameters\nKey points: libraries got simpler"
)

var fixtureScript = strings.Repeat("As for the heading, generics made Go libraries simpler. ", 3)
