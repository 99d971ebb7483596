package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisperxsubs/internal/language"
	"whisperxsubs/internal/preflight"
	"whisperxsubs/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, the translation cache and the provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			targets := "none"
			if len(cfg.Subtitles.TargetLanguages) > 0 {
				targets = ""
				for i, code := range cfg.Subtitles.TargetLanguages {
					if i > 0 {
						targets += ", "
					}
					targets += fmt.Sprintf("%s (%s)", language.DisplayName(code), code)
				}
			}
			fmt.Fprintf(out, "Max chars: %d\n", cfg.Subtitles.MaxChars)
			fmt.Fprintf(out, "Targets:   %s\n", targets)
			fmt.Fprintf(out, "Provider:  %s (cache %s)\n", cfg.Translation.Provider, yesNo(cfg.Translation.CacheEnabled))

			results := preflight.RunAll(cmd.Context(), cfg)
			if !cfg.TranslationEnabled() {
				fmt.Fprintln(out, renderStatusLine("Translation", statusWarn, "no target languages; source track only", colorize))
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No checks apply to this configuration")
				return nil
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrExternalTool, "cli", "check",
					fmt.Sprintf("%d of %d checks failed", len(failed), len(results)), nil)
			}
			return nil
		},
	}
}
