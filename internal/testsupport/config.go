package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"whisperxsubs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Translation is disabled unless an option enables it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Subtitles.TargetLanguages = nil
	cfgVal.Translation.Provider = config.ProviderNone
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTargets sets the translation target languages.
func WithTargets(langs ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Subtitles.TargetLanguages = langs
	}
}

// WithMaxChars overrides the per-cue character budget.
func WithMaxChars(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Subtitles.MaxChars = n
	}
}

// WithLLMServer points the LLM provider at baseURL, typically an
// httptest server, with a dummy key.
func WithLLMServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.Provider = config.ProviderLLM
		b.cfg.LLM.APIKey = "test-key"
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.LLM.Model = "test/model"
		b.cfg.LLM.TimeoutSeconds = 5
	}
}

// WithDeepSeekServer points the DeepSeek provider at baseURL with a dummy key.
func WithDeepSeekServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.Provider = config.ProviderDeepSeek
		b.cfg.DeepSeek.APIKey = "test-key"
		b.cfg.DeepSeek.BaseURL = baseURL
		b.cfg.DeepSeek.TimeoutSeconds = 5
	}
}

// WithoutCache disables the translation cache.
func WithoutCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.CacheEnabled = false
	}
}

// WithCreatedDirs creates the configured directories.
func WithCreatedDirs() ConfigOption {
	return func(b *configBuilder) {
		for _, dir := range []string{b.cfg.Paths.OutputDir, b.cfg.Paths.CacheDir, b.cfg.Paths.LogDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				b.t.Fatalf("mkdir %s: %v", dir, err)
			}
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
