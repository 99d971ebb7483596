package config

import (
	"fmt"
	"os"
	"strings"

	"whisperxsubs/internal/language"
)

// Normalize expands paths, applies environment fallbacks and canonicalizes
// language codes. Load calls it automatically; callers that mutate a Config
// afterwards should call it again before Validate.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSubtitles()
	c.normalizeTranslation()
	c.normalizeLLM()
	c.normalizeDeepSeek()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.TargetLanguages = language.NormalizeList(c.Subtitles.TargetLanguages)
	if c.Subtitles.Joiners == nil {
		c.Subtitles.Joiners = DefaultJoiners()
		return
	}
	joiners := make(map[string]string, len(c.Subtitles.Joiners))
	for lang, joiner := range c.Subtitles.Joiners {
		code := language.Canonical(lang)
		if code == "" {
			code = strings.ToLower(strings.TrimSpace(lang))
		}
		if code == "" {
			continue
		}
		joiners[code] = joiner
	}
	c.Subtitles.Joiners = joiners
}

func (c *Config) normalizeTranslation() {
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	if c.Translation.Provider == "" {
		c.Translation.Provider = defaultProvider
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if value, ok := lookupEnv("OPENROUTER_API_KEY", "LLM_API_KEY"); ok {
		c.LLM.APIKey = value
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
}

func (c *Config) normalizeDeepSeek() {
	c.DeepSeek.BaseURL = strings.TrimSpace(c.DeepSeek.BaseURL)
	if c.DeepSeek.BaseURL == "" {
		c.DeepSeek.BaseURL = defaultDeepSeekBaseURL
	}
	c.DeepSeek.Model = strings.TrimSpace(c.DeepSeek.Model)
	if c.DeepSeek.Model == "" {
		c.DeepSeek.Model = defaultDeepSeekModel
	}
	if c.DeepSeek.TimeoutSeconds <= 0 {
		c.DeepSeek.TimeoutSeconds = defaultDeepSeekTimeoutSec
	}
	if value, ok := lookupEnv("DEEPSEEK_API_KEY"); ok {
		c.DeepSeek.APIKey = value
	}
	c.DeepSeek.APIKey = strings.TrimSpace(c.DeepSeek.APIKey)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// lookupEnv returns the first non-empty value among keys.
func lookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}
