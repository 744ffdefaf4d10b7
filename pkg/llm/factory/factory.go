package factory

import (
	"errors"
	"fmt"
	"time"

	"pulse-companion-be/pkg/llm"
	"pulse-companion-be/pkg/llm/gemini"
	"pulse-companion-be/pkg/llm/ollama"
	"pulse-companion-be/pkg/llm/openaicompat"
)

// ErrNotConfigured means the provider was requested but its credentials are absent.
var ErrNotConfigured = errors.New("llm provider not configured")

type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewLLMProvider(providerType string, cfg ProviderConfig) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", providerType, ErrNotConfigured)
		}
		return gemini.NewGeminiProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", providerType, ErrNotConfigured)
		}
		return openaicompat.NewGroqProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "huggingface":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", providerType, ErrNotConfigured)
		}
		return openaicompat.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "ollama":
		if cfg.Model == "" {
			return nil, fmt.Errorf("%s: model name required: %w", providerType, ErrNotConfigured)
		}
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "", "none":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
