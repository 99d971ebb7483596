// Package translate defines the pluggable translation capability used by the
// converter, plus adapters for caching and provider selection.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"whisperxsubs/internal/config"
	"whisperxsubs/internal/logging"
	"whisperxsubs/internal/services"
	"whisperxsubs/internal/services/deepseek"
	"whisperxsubs/internal/services/llm"
	"whisperxsubs/internal/transcache"
)

// Translator renders text from sourceLang into targetLang. It is called once
// per transcript segment per target language.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// HealthChecker is implemented by translators that can verify their
// credentials without translating anything.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Func adapts an ordinary function to Translator.
type Func func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}

// Identity returns its input unchanged. It stands in when no provider is
// configured and keeps output deterministic in tests.
var Identity = Func(func(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
})

// Cached wraps a Translator with a persistent cache.
type Cached struct {
	Next     Translator
	Store    *transcache.Store
	Provider string
	Logger   *slog.Logger
}

// Translate returns the cached translation when present and otherwise
// delegates to Next, storing successful results. Cache failures are logged
// and never fail the translation.
func (c *Cached) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c.Store == nil || strings.TrimSpace(text) == "" {
		return c.Next.Translate(ctx, text, sourceLang, targetLang)
	}
	logger := logging.WithContext(ctx, c.Logger)
	key := transcache.Key{Provider: c.Provider, Source: sourceLang, Target: targetLang, Text: text}

	cached, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "translation cache read failed", "translation_cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "segment translated without cache"),
			logging.String(logging.FieldErrorHint, "run 'whisperxsubs cache clear' if the cache is corrupt"),
		)
	}
	if ok {
		logger.Debug("translation cache hit", logging.String(logging.FieldEventType, "translation_cache_hit"))
		return cached, nil
	}

	translated, err := c.Next.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	runID, _ := services.RunIDFromContext(ctx)
	if err := c.Store.Put(ctx, key, translated, runID); err != nil {
		logging.WarnWithContext(logger, "translation cache write failed", "translation_cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "segment will be translated again next run"),
		)
	}
	return translated, nil
}

// HealthCheck forwards to Next when it supports health checks.
func (c *Cached) HealthCheck(ctx context.Context) error {
	if hc, ok := c.Next.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Option adjusts how New builds a provider client.
type Option func(*options)

type options struct {
	llm []llm.Option
}

// WithLLMOptions passes options through to the OpenRouter client.
func WithLLMOptions(opts ...llm.Option) Option {
	return func(o *options) {
		o.llm = append(o.llm, opts...)
	}
}

// SingleAttempt disables retries, for health checks that should fail fast.
func SingleAttempt() Option {
	return WithLLMOptions(llm.WithRetryPolicy(llm.RetryPolicy{Attempts: 1}))
}

// New builds the translator selected by cfg. It returns nil when translation
// is disabled.
func New(cfg *config.Config, opts ...Option) (Translator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	switch cfg.Translation.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderLLM:
		return llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}, o.llm...), nil
	case config.ProviderDeepSeek:
		return deepseek.NewClient(cfg.DeepSeek.APIKey,
			deepseek.WithBaseURL(cfg.DeepSeek.BaseURL),
			deepseek.WithModel(cfg.DeepSeek.Model),
			deepseek.WithTimeout(secondsToDuration(cfg.DeepSeek.TimeoutSeconds)),
		), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "translate", "select provider",
			fmt.Sprintf("unknown provider %q", cfg.Translation.Provider), nil)
	}
}

// ProviderID identifies the provider and model for cache keys, so switching
// models does not serve translations from another model.
func ProviderID(cfg *config.Config) string {
	switch cfg.Translation.Provider {
	case config.ProviderLLM:
		return config.ProviderLLM + ":" + cfg.LLM.Model
	case config.ProviderDeepSeek:
		return config.ProviderDeepSeek + ":" + cfg.DeepSeek.Model
	default:
		return cfg.Translation.Provider
	}
}
