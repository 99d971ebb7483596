package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"whisperxsubs/internal/config"
	"whisperxsubs/internal/convert"
	"whisperxsubs/internal/cues"
	"whisperxsubs/internal/language"
	"whisperxsubs/internal/logging"
	"whisperxsubs/internal/output"
	"whisperxsubs/internal/services"
	"whisperxsubs/internal/transcache"
	"whisperxsubs/internal/transcript"
	"whisperxsubs/internal/translate"
)

type convertOptions struct {
	maxChars        int
	targets         []string
	noTranslate     bool
	outputDir       string
	stdoutLang      string
	transcripts     bool
	verify          bool
	noCache         bool
	isolateFailures bool
	jsonOutput      bool
}

type convertSummary struct {
	RunID     string            `json:"run_id"`
	Input     string            `json:"input"`
	Source    string            `json:"source_language"`
	Segments  int               `json:"segments"`
	Cues      int               `json:"cues"`
	Files     []convertFile     `json:"files"`
	Failed    map[string]string `json:"failed,omitempty"`
	EmptyCues int               `json:"empty_translated_cues"`
}

type convertFile struct {
	Language string `json:"language"`
	Kind     string `json:"kind"`
	Path     string `json:"path"`
	Cues     int    `json:"cues,omitempty"`
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <transcript.json>",
		Short: "Convert a WhisperX transcript into SRT subtitles",
		Long: "Convert a WhisperX word-timed transcript into one SRT file per language.\n\n" +
			"The source track is always produced. Each target language is translated\n" +
			"segment by segment and shares the source cue timing.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			applyConvertOverrides(cmd, &cfg, opts)
			if cfg.Subtitles.MaxChars <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "convert",
					fmt.Sprintf("--max-chars must be positive, got %d", cfg.Subtitles.MaxChars), nil)
			}

			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			return runConvert(cmd, &cfg, logger, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.maxChars, "max-chars", 0, "Per-cue character budget (overrides subtitles.max_chars)")
	cmd.Flags().StringSliceVarP(&opts.targets, "target", "t", nil, "Target language codes (overrides subtitles.target_languages)")
	cmd.Flags().BoolVar(&opts.noTranslate, "no-translate", false, "Only produce the source-language track")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (defaults to paths.output_dir or the transcript's directory)")
	cmd.Flags().StringVar(&opts.stdoutLang, "stdout", "", "Print one track to stdout instead of writing files")
	cmd.Flags().Lookup("stdout").NoOptDefVal = "source"
	cmd.Flags().BoolVar(&opts.transcripts, "transcripts", false, "Also write <base>.<lang>.txt plain transcripts")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Re-read and validate each written SRT file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Bypass the translation cache")
	cmd.Flags().BoolVar(&opts.isolateFailures, "isolate-failures", false, "Drop failing target languages instead of aborting")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print a JSON summary")
	return cmd
}

func applyConvertOverrides(cmd *cobra.Command, cfg *config.Config, opts convertOptions) {
	flags := cmd.Flags()
	if flags.Changed("max-chars") {
		cfg.Subtitles.MaxChars = opts.maxChars
	}
	if flags.Changed("target") {
		cfg.Subtitles.TargetLanguages = language.NormalizeList(opts.targets)
	}
	if opts.noTranslate {
		cfg.Subtitles.TargetLanguages = nil
	}
	if opts.noCache {
		cfg.Translation.CacheEnabled = false
	}
	if opts.isolateFailures {
		cfg.Translation.IsolateFailures = true
	}
	if opts.transcripts {
		cfg.Subtitles.WriteTranscripts = true
	}
}

func runConvert(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, input string, opts convertOptions) error {
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	inputPath, err := config.ExpandPath(input)
	if err != nil {
		return err
	}
	doc, err := transcript.Load(inputPath)
	if err != nil {
		return err
	}

	tr, closer, err := buildTranslator(runCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	converter := &convert.Converter{
		Segmenter: cues.Segmenter{
			MaxChars: cfg.Subtitles.MaxChars,
			Joiners:  cues.JoinerTable(cfg.Subtitles.Joiners),
		},
		Targets:         cfg.Subtitles.TargetLanguages,
		Translator:      tr,
		IsolateFailures: cfg.Translation.IsolateFailures,
		Logger:          logger,
	}
	result, err := converter.Convert(runCtx, doc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.stdoutLang != "" {
		return printTrack(out, result, opts.stdoutLang)
	}

	dir := strings.TrimSpace(opts.outputDir)
	if dir == "" {
		dir = cfg.Paths.OutputDir
	}
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	if dir, err = config.ExpandPath(dir); err != nil {
		return err
	}

	files, err := output.Write(runCtx, result, output.Options{
		Dir:              dir,
		Base:             output.BaseName(inputPath),
		WriteTranscripts: cfg.Subtitles.WriteTranscripts,
		Verify:           opts.verify,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	summary := summarizeConvert(inputPath, result, files)
	if opts.jsonOutput {
		return writeJSON(cmd, summary)
	}
	printConvertSummary(out, summary)
	return nil
}

// buildTranslator returns nil when no target is configured. A cache that
// cannot be opened is logged and skipped.
func buildTranslator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (translate.Translator, io.Closer, error) {
	if len(cfg.Subtitles.TargetLanguages) == 0 || !cfg.TranslationEnabled() {
		return nil, nil, nil
	}
	tr, err := translate.New(cfg)
	if err != nil || tr == nil {
		return nil, nil, err
	}
	if !cfg.Translation.CacheEnabled {
		return tr, nil, nil
	}
	store, err := transcache.Open(ctx, cfg.CachePath())
	if err != nil {
		logging.WarnWithContext(logger, "translation cache unavailable", "translation_cache_unavailable",
			logging.String("path", cfg.CachePath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "every segment is sent to the provider"),
			logging.String(logging.FieldErrorHint, "run 'whisperxsubs check' to diagnose the cache"),
		)
		return tr, nil, nil
	}
	return &translate.Cached{
		Next:     tr,
		Store:    store,
		Provider: translate.ProviderID(cfg),
		Logger:   logger,
	}, store, nil
}

func printTrack(out io.Writer, result *convert.Result, lang string) error {
	if lang == "source" {
		lang = result.Source
	}
	code := language.Canonical(lang)
	if code == "" {
		code = strings.ToLower(strings.TrimSpace(lang))
	}
	track := result.Track(code)
	if track == nil {
		return services.Wrap(services.ErrValidation, "cli", "convert",
			fmt.Sprintf("no %s track produced (have %s)", code, strings.Join(result.Languages, ", ")), nil)
	}
	_, err := io.WriteString(out, track.String())
	return err
}

func summarizeConvert(input string, result *convert.Result, files []output.File) convertSummary {
	summary := convertSummary{
		RunID:     result.RunID,
		Input:     input,
		Source:    result.Source,
		Segments:  result.Stats.Segments,
		Cues:      result.Stats.Cues,
		EmptyCues: result.Stats.EmptyPieces,
		Files:     make([]convertFile, 0, len(files)),
	}
	for _, f := range files {
		summary.Files = append(summary.Files, convertFile{
			Language: f.Language,
			Kind:     string(f.Kind),
			Path:     f.Path,
			Cues:     f.Cues,
		})
	}
	if len(result.Failed) > 0 {
		summary.Failed = make(map[string]string, len(result.Failed))
		for lang, err := range result.Failed {
			summary.Failed[lang] = err.Error()
		}
	}
	return summary
}

func printConvertSummary(out io.Writer, summary convertSummary) {
	fmt.Fprintf(out, "Converted %s (%s, %d segments, %d cues)\n",
		filepath.Base(summary.Input), language.DisplayName(summary.Source), summary.Segments, summary.Cues)
	for _, f := range summary.Files {
		if f.Kind == string(output.KindSubtitles) {
			fmt.Fprintf(out, "  %-4s %s (%d cues)\n", f.Language, f.Path, f.Cues)
			continue
		}
		fmt.Fprintf(out, "  %-4s %s\n", f.Language, f.Path)
	}
	if summary.EmptyCues > 0 {
		fmt.Fprintf(out, "Warning: %d translated cues are empty\n", summary.EmptyCues)
	}
	if len(summary.Failed) == 0 {
		return
	}
	langs := make([]string, 0, len(summary.Failed))
	for lang := range summary.Failed {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		fmt.Fprintf(out, "Skipped %s: %s\n", lang, summary.Failed[lang])
	}
}
