package config

import (
	"errors"
	"fmt"
	"strings"

	"whisperxsubs/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.MaxChars <= 0 {
		return fmt.Errorf("subtitles.max_chars must be positive, got %d", c.Subtitles.MaxChars)
	}
	for _, lang := range c.Subtitles.TargetLanguages {
		if language.Canonical(lang) == "" {
			return fmt.Errorf("subtitles.target_languages: unrecognized language %q", lang)
		}
	}
	return nil
}

func (c *Config) validateTranslation() error {
	switch c.Translation.Provider {
	case ProviderNone, ProviderLLM, ProviderDeepSeek:
	default:
		return fmt.Errorf("translation.provider must be one of none, llm, deepseek; got %q", c.Translation.Provider)
	}
	if len(c.Subtitles.TargetLanguages) == 0 {
		return nil
	}
	switch c.Translation.Provider {
	case ProviderNone:
		return errors.New("translation.provider must not be none when subtitles.target_languages is set")
	case ProviderLLM:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for translation. Set OPENROUTER_API_KEY or edit %s (create with 'whisperxsubs config init')", displayConfigPath())
		}
	case ProviderDeepSeek:
		if c.DeepSeek.APIKey == "" {
			return fmt.Errorf("deepseek.api_key is required for translation. Set DEEPSEEK_API_KEY or edit %s", displayConfigPath())
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func displayConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil || strings.TrimSpace(path) == "" {
		return defaultConfigPath
	}
	return path
}
