package assistant_test

import (
	"context"
	"testing"

	"taskAssistant/internal/assistant"
	"taskAssistant/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProviderFallback(t *testing.T) {
	tests := []struct {
		name    string
		cfg     assistant.Config
		want    assistant.Provider
		wantErr error
	}{
		{
			name: "openai preferred",
			cfg:  assistant.Config{OpenAIAPIKey: "sk-openai", AnthropicAPIKey: "sk-ant"},
			want: assistant.ProviderOpenAI,
		},
		{
			name: "anthropic fallback",
			cfg:  assistant.Config{AnthropicAPIKey: "sk-ant"},
			want: assistant.ProviderAnthropic,
		},
		{
			name: "blank openai key falls through",
			cfg:  assistant.Config{OpenAIAPIKey: "   ", AnthropicAPIKey: "sk-ant"},
			want: assistant.ProviderAnthropic,
		},
		{
			name:    "no keys",
			cfg:     assistant.Config{},
			wantErr: assistant.ErrNoProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := assistant.New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Provider())
		})
	}
}

func TestNewLogsProviderOnceWithoutKey(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = prev })

	_, err := assistant.New(assistant.Config{AnthropicAPIKey: "  sk-ant-secret "})
	require.NoError(t, err)

	entries := logs.FilterMessageSnippet("Provider resolved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Assistant: Provider resolved", entries[0].Message)
	assert.Equal(t, string(assistant.ProviderAnthropic), entries[0].ContextMap()["provider"])
	for _, e := range logs.All() {
		for _, v := range e.ContextMap() {
			assert.NotContains(t, v, "sk-ant-secret")
		}
	}
}

func TestRespondReturnsPlaceholder(t *testing.T) {
	a, err := assistant.New(assistant.Config{OpenAIAPIKey: "sk"})
	require.NoError(t, err)

	reply, err := a.Respond(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, assistant.PlaceholderResponse, reply)
}

func TestRespondCancelled(t *testing.T) {
	a, err := assistant.New(assistant.Config{OpenAIAPIKey: "sk"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Respond(ctx, nil, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}
