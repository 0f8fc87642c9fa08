package llm

import (
	"context"
	"fmt"
)

// NewProvider builds the configured provider wrapped as
// caller -> retry -> observer -> base, so every attempt is observed.
func NewProvider(ctx context.Context, cfg Config, obs Observer) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithObserver(base, obs), cfg.Retry), nil
}
