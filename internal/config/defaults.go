package config

// Translation providers.
const (
	ProviderNone     = "none"
	ProviderLLM      = "llm"
	ProviderDeepSeek = "deepseek"
)

const (
	defaultConfigPath         = "~/.config/whisperxsubs/config.toml"
	projectConfigName         = "whisperxsubs.toml"
	fallbackCacheDir          = "~/.cache/whisperxsubs"
	cacheFileName             = "translations.db"
	defaultLogDir             = "~/.local/share/whisperxsubs/logs"
	defaultLogRetentionDays   = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMaxChars           = 42
	defaultProvider           = ProviderLLM
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMTitle           = "whisperxsubs"
	defaultLLMTimeoutSeconds  = 60
	defaultDeepSeekBaseURL    = "https://api.deepseek.com"
	defaultDeepSeekModel      = "deepseek-chat"
	defaultDeepSeekTimeoutSec = 60
)

// DefaultJoiners returns the languages whose word tokens are concatenated
// without a separator.
func DefaultJoiners() map[string]string {
	return map[string]string{
		"ja": "",
		"zh": "",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Subtitles: Subtitles{
			MaxChars: defaultMaxChars,
			Joiners:  DefaultJoiners(),
		},
		Translation: Translation{
			Provider:     defaultProvider,
			CacheEnabled: true,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		DeepSeek: DeepSeek{
			BaseURL:        defaultDeepSeekBaseURL,
			Model:          defaultDeepSeekModel,
			TimeoutSeconds: defaultDeepSeekTimeoutSec,
		},
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
