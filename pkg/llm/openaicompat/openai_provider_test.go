package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse-companion-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderChat(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" I'm glad you reached out. "}}]}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{Name: "groq", APIKey: "gsk-test", BaseURL: srv.URL, Model: "llama"})
	out, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hello"}},
		llm.WithSystemPrompt("You are a health companion."),
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(500),
	)

	require.NoError(t, err)
	assert.Equal(t, "I'm glad you reached out.", out)
	assert.Equal(t, "groq", p.Name())

	assert.Equal(t, "llama", captured.Model)
	assert.Equal(t, 0.7, captured.Temperature)
	assert.Equal(t, 500, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "You are a health companion."}, captured.Messages[0])
}

func TestProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "api error payload", status: http.StatusUnauthorized, body: `{"error":{"message":"invalid key"}}`, wantMsg: "invalid key"},
		{name: "server error", status: http.StatusBadGateway, body: `upstream down`, wantMsg: "502"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantMsg: "empty choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewProvider(Config{Name: "groq", BaseURL: srv.URL}).Generate(context.Background(), "hi")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestProviderHonoursContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewProvider(Config{Name: "groq", BaseURL: srv.URL}).Generate(ctx, "hi")
	assert.Error(t, err)
}

func TestNamedConstructors(t *testing.T) {
	groq := NewGroqProvider("k", "", "", 0)
	assert.Equal(t, "groq", groq.Name())
	assert.Equal(t, GroqDefaultModel, groq.model)
	assert.Equal(t, GroqBaseURL, groq.client.BaseURL)
	assert.Equal(t, 30*time.Second, groq.Timeout())

	hf := NewHuggingFaceProvider("k", "", "m", 8*time.Second)
	assert.Equal(t, "huggingface", hf.Name())
	assert.Equal(t, HuggingFaceBaseURL, hf.client.BaseURL)
	assert.Equal(t, 8*time.Second, hf.Timeout())
}
