package preflight

import (
	"context"

	"whisperxsubs/internal/config"
	"whisperxsubs/internal/translate"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if !cfg.TranslationEnabled() {
		return results
	}

	if cfg.Translation.CacheEnabled {
		results = append(results, CheckCache(ctx, cfg.CachePath()))
	}

	tr, err := translate.New(cfg, translate.SingleAttempt())
	if err != nil {
		return append(results, Result{Name: "Translation provider", Detail: err.Error()})
	}
	results = append(results, CheckTranslator(ctx, providerLabel(cfg), tr))
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func providerLabel(cfg *config.Config) string {
	switch cfg.Translation.Provider {
	case config.ProviderDeepSeek:
		return "DeepSeek"
	case config.ProviderLLM:
		return "Translation LLM"
	default:
		return "Translation provider"
	}
}
