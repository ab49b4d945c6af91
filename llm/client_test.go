package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogcast/runner"
)

func chatServer(t *testing.T, status int, content string, got *chatRequest, auth *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(content))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	var auth string
	srv := chatServer(t, http.StatusOK, "<think>plan the outline</think>\n\nTitle: Go generics\n", &got, &auth)
	defer srv.Close()

	c := NewClient(srv.URL+"/", "deepseek-r1:1.5b", "secret", 0.7, 5*time.Second)
	answer, err := c.Generate(context.Background(), runner.GenerateRequest{
		System:       "You are a Content Analyst.",
		Instructions: "Structure the article.",
		Context:      "article text",
	})
	require.NoError(t, err)
	assert.Equal(t, "Title: Go generics", answer)

	assert.Equal(t, "deepseek-r1:1.5b", got.Model)
	assert.False(t, got.Stream)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a Content Analyst.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Structure the article.\n\nContext:\narticle text", got.Messages[1].Content)
	assert.Equal(t, "Bearer secret", auth)
}

func TestGenerateWithoutSystemOrKey(t *testing.T) {
	var got chatRequest
	var auth string
	srv := chatServer(t, http.StatusOK, "answer", &got, &auth)
	defer srv.Close()

	c := NewClient(srv.URL, "llama3", "", 0, 0)
	_, err := c.Generate(context.Background(), runner.GenerateRequest{Instructions: "Say hi."})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Say hi.", got.Messages[0].Content)
	assert.Empty(t, auth)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := chatServer(t, http.StatusInternalServerError, "model not loaded", nil, nil)
		defer srv.Close()

		_, err := NewClient(srv.URL, "m", "", 0, 0).Generate(context.Background(), runner.GenerateRequest{Instructions: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
		assert.Contains(t, err.Error(), "model not loaded")
	})

	t.Run("only reasoning", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, "<think>still thinking", nil, nil)
		defer srv.Close()

		_, err := NewClient(srv.URL, "m", "", 0, 0).Generate(context.Background(), runner.GenerateRequest{Instructions: "x"})
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "m", "", 0, 0).Generate(context.Background(), runner.GenerateRequest{Instructions: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})

	t.Run("cancelled", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, "answer", nil, nil)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(srv.URL, "m", "", 0, 0).Generate(ctx, runner.GenerateRequest{Instructions: "x"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCleanAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  plain  ", want: "plain"},
		{in: "<think>a</think>b<think>c</think> d", want: "b d"},
		{in: "<think>\nmulti\nline\n</think>\nanswer", want: "answer"},
		{in: "answer <think>cut off", want: "answer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanAnswer(tt.in))
	}
}

func TestBuildUserMessage(t *testing.T) {
	assert.Equal(t, "do it", BuildUserMessage("do it", ""))
	assert.Equal(t, "do it\n\nContext:\nstuff", BuildUserMessage("do it", "stuff"))
}
