package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"blogcast/podcast"
	"blogcast/runner"
	"blogcast/script"
)

// Podcaster produces episodes; *podcast.Generator implements it
type Podcaster interface {
	Generate(ctx context.Context, rawURL string) (*podcast.Episode, error)
	AudioPath() string
}

// GenerateResponse is what the page renders after a request
type GenerateResponse struct {
	State    podcast.State  `json:"state"`
	Status   string         `json:"status"`
	Stage    string         `json:"stage,omitempty"` // pipeline stage that failed
	Script   string         `json:"script"`
	AudioURL string         `json:"audio_url,omitempty"`
	RunID    int            `json:"run_id,omitempty"`
	Style    *script.Report `json:"style,omitempty"`
}

// Generate runs the whole pipeline for the posted URL and waits for it to finish
func Generate(gen Podcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
				"error": "Method not allowed",
			})
			return
		}

		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": fmt.Sprintf("Invalid request: %v", err),
			})
			return
		}

		log.Printf("🚀 Generate requested: %s", req.URL)

		episode, err := gen.Generate(r.Context(), req.URL)
		state, status := podcast.Outcome(err)
		resp := GenerateResponse{State: state, Status: status}

		switch state {
		case podcast.StateRejected:
			writeJSON(w, http.StatusBadRequest, resp)
		case podcast.StateError:
			resp.Stage, _ = runner.FailedStage(err)
			writeJSON(w, http.StatusBadGateway, resp)
		default:
			resp.Script = episode.Script
			resp.RunID = episode.RunID
			resp.AudioURL = fmt.Sprintf("/api/audio?run=%d", episode.RunID)
			resp.Style = &episode.Style
			writeJSON(w, http.StatusOK, resp)
		}
	}
}

// Audio serves the current episode file
func Audio(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "No audio generated yet", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open audio: %v", err), http.StatusInternalServerError)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to stat audio: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
