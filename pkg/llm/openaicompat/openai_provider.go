package openaicompat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pulse-companion-be/pkg/llm"

	"github.com/go-resty/resty/v2"
)

const (
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	GroqDefaultModel   = "meta-llama/llama-4-scout-17b-16e-instruct"
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"
)

// Request Payload Structure (OpenAI Compatible)
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Provider talks to any chat-completions endpoint (Groq, HuggingFace router, ...).
type Provider struct {
	name   string
	model  string
	client *resty.Client
}

var _ llm.LLMProvider = &Provider{}

type Config struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewProvider(cfg Config) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &Provider{
		name:   cfg.Name,
		model:  cfg.Model,
		client: client,
	}
}

func NewGroqProvider(apiKey, baseURL, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	if model == "" {
		model = GroqDefaultModel
	}
	return NewProvider(Config{Name: "groq", APIKey: apiKey, BaseURL: baseURL, Model: model, Timeout: timeout})
}

func NewHuggingFaceProvider(apiKey, baseURL, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = HuggingFaceBaseURL
	}
	return NewProvider(Config{Name: "huggingface", APIKey: apiKey, BaseURL: baseURL, Model: model, Timeout: timeout})
}

func (p *Provider) Name() string { return p.name }

// Timeout is the HTTP client deadline for one completion.
func (p *Provider) Timeout() time.Duration { return p.client.GetClient().Timeout }

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{
		Temperature: 0.7,
		MaxTokens:   500, // Default sane limit
		Model:       p.model,
	}, options...)

	messages := make([]llm.Message, 0, len(history)+1)
	if opts.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: opts.SystemPrompt})
	}
	messages = append(messages, history...)

	var chatResp chatResponse
	var errResp errorResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       opts.Model,
			Messages:    messages,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}).
		SetResult(&chatResp).
		SetError(&errResp).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}

	if resp.StatusCode() != http.StatusOK {
		if errResp.Error != nil {
			return "", fmt.Errorf("%s api error (status %d): %s", p.name, resp.StatusCode(), errResp.Error.Message)
		}
		return "", fmt.Errorf("%s api error (status %d): %s", p.name, resp.StatusCode(), resp.String())
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from %s api", p.name)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	// Wrap single prompt into a user message
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}
	return p.Chat(ctx, messages, options...)
}
