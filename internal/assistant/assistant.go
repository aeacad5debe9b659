// Package assistant picks the AI provider for the chat feature.
//
// Replies are a fixed placeholder: no provider is actually called yet. The
// provider is still resolved at startup so a missing key fails fast.
package assistant

import (
	"context"
	"errors"
	"strings"

	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/thread"

	"go.uber.org/zap"
)

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const PlaceholderResponse = "I'm a placeholder assistant. AI responses are not wired up yet, but your message has been saved."

var ErrNoProvider = errors.New("no AI provider configured: set OPENAI_API_KEY or ANTHROPIC_API_KEY")

type Config struct {
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// Assistant holds only the resolved provider. Keys are checked for
// presence, never stored.
type Assistant struct {
	provider Provider
}

// New resolves the provider: OpenAI first, then Anthropic.
func New(cfg Config) (*Assistant, error) {
	var a *Assistant
	switch {
	case strings.TrimSpace(cfg.OpenAIAPIKey) != "":
		a = &Assistant{provider: ProviderOpenAI}
	case strings.TrimSpace(cfg.AnthropicAPIKey) != "":
		a = &Assistant{provider: ProviderAnthropic}
	default:
		return nil, ErrNoProvider
	}

	logger.Info("Assistant: Provider resolved", zap.String("provider", string(a.provider)))
	return a, nil
}

func (a *Assistant) Provider() Provider {
	return a.provider
}

// Respond returns the reply to prompt given the earlier history of the thread.
func (a *Assistant) Respond(ctx context.Context, history []*thread.Message, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger.Debug("Assistant: Placeholder reply",
		zap.String("provider", string(a.provider)),
		zap.Int("history", len(history)),
		zap.Int("prompt_len", len(prompt)))
	return PlaceholderResponse, nil
}
