// Package convert turns a decoded transcript into per-language SRT tracks.
//
// Segments are processed in order on a single goroutine. The source track is
// built by the cue segmenter; each target track reuses the source cue timing
// and fills it with an evenly split translation of the segment text.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"whisperxsubs/internal/cues"
	"whisperxsubs/internal/language"
	"whisperxsubs/internal/logging"
	"whisperxsubs/internal/services"
	"whisperxsubs/internal/srt"
	"whisperxsubs/internal/textutil"
	"whisperxsubs/internal/transcript"
	"whisperxsubs/internal/translate"
)

// UndeterminedLanguage labels tracks when the transcript names no language.
const UndeterminedLanguage = "und"

const (
	echoMinTokens  = 4
	echoSimilarity = 0.9
)

// Converter holds the segmentation and translation settings for a run.
type Converter struct {
	Segmenter  cues.Segmenter
	Targets    []string
	Translator translate.Translator
	// IsolateFailures drops a failing target track instead of aborting the run.
	IsolateFailures bool
	Logger          *slog.Logger
}

// Stats summarizes a conversion.
type Stats struct {
	Segments         int
	EmptySegments    int
	Cues             int
	PlannedCues      int
	EmptyPieces      int
	Untranslated     int
	TranslationCalls int
	Duration         time.Duration
}

// Result carries every produced track keyed by language code.
type Result struct {
	RunID  string
	Source string
	// Languages lists the produced tracks, source first, in target order.
	Languages []string
	Tracks    map[string]*srt.Track
	// Texts holds the full segment text per language, one entry per segment.
	Texts  map[string][]string
	Failed map[string]error
	Stats  Stats
}

// Track returns the track for lang, or nil.
func (r *Result) Track(lang string) *srt.Track {
	if r == nil {
		return nil
	}
	return r.Tracks[lang]
}

// SourceLanguage resolves the code used for the source track.
func SourceLanguage(t *transcript.Transcript) string {
	if t == nil {
		return UndeterminedLanguage
	}
	if code := language.Canonical(t.Language); code != "" {
		return code
	}
	if raw := strings.ToLower(strings.TrimSpace(t.Language)); raw != "" {
		return raw
	}
	return UndeterminedLanguage
}

// targets normalizes the configured targets, dropping duplicates and the
// source language itself.
func (c *Converter) targets(source string) []string {
	normalized := language.NormalizeList(c.Targets)
	out := make([]string, 0, len(normalized))
	for _, target := range normalized {
		if target == source || language.Same(target, source) {
			continue
		}
		out = append(out, target)
	}
	return out
}

// Convert runs the segmenter over t and, for every configured target,
// translates and aligns each segment. A translation failure aborts the run
// unless IsolateFailures is set, in which case only that language's track is
// dropped and the error is recorded in Result.Failed.
func (c *Converter) Convert(ctx context.Context, t *transcript.Transcript) (*Result, error) {
	if t == nil {
		return nil, services.Wrap(services.ErrValidation, "convert", "convert", "transcript required", nil)
	}
	if c.Segmenter.MaxChars <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "convert",
			fmt.Sprintf("max_chars must be positive, got %d", c.Segmenter.MaxChars), nil)
	}

	source := SourceLanguage(t)
	targets := c.targets(source)
	if len(targets) > 0 && c.Translator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "convert",
			fmt.Sprintf("target languages %v configured without a translator", targets), nil)
	}

	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	ctx = services.WithStage(ctx, "convert")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(c.Logger, "convert"))

	result := &Result{
		RunID:     runID,
		Source:    source,
		Languages: append([]string{source}, targets...),
		Tracks:    make(map[string]*srt.Track, len(targets)+1),
		Texts:     make(map[string][]string, len(targets)+1),
		Failed:    make(map[string]error),
	}
	for _, lang := range result.Languages {
		result.Tracks[lang] = srt.NewTrack(lang)
		result.Texts[lang] = make([]string, 0, len(t.Segments))
	}

	logger.Info("conversion started",
		logging.String("source_language", source),
		logging.Strings("target_languages", targets),
		logging.Int("segments", len(t.Segments)),
		logging.Int("max_chars", c.Segmenter.MaxChars),
	)
	started := time.Now()

	state := cues.NewState()
	for i, seg := range t.Segments {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrTimeout, "convert", "convert",
				fmt.Sprintf("cancelled at segment %d", i+1), err)
		}
		segCtx := services.WithSegment(ctx, i+1)
		segLogger := logging.WithContext(segCtx, logging.NewComponentLogger(c.Logger, "convert"))

		var produced cues.Result
		produced, state = c.Segmenter.Segment(seg, source, state)
		result.Stats.Segments++
		result.Stats.PlannedCues += produced.Planned
		result.Stats.Cues += len(produced.Cues)
		if len(produced.Cues) == 0 {
			result.Stats.EmptySegments++
			segLogger.Debug("segment has no words",
				logging.Args(logging.DecisionAttrs("segment_cues", "skipped", "no word timing to anchor cues")...)...)
		} else if len(produced.Cues) != produced.Planned {
			segLogger.Debug("cue count differs from plan",
				logging.Int("planned", produced.Planned),
				logging.Int("produced", len(produced.Cues)),
				logging.Int("target_length", produced.TargetLength),
			)
		}

		sourceTrack := result.Tracks[source]
		for _, cue := range produced.Cues {
			sourceTrack.Append(cue)
		}
		result.Texts[source] = append(result.Texts[source], seg.Text)
		text := strings.TrimSpace(seg.Text)

		for _, target := range targets {
			if _, failed := result.Failed[target]; failed {
				continue
			}
			langCtx := services.WithLanguage(services.WithStage(segCtx, "translate"), target)
			translated, err := c.translate(langCtx, text, source, target, result)
			if err != nil {
				wrapped := services.Wrap(services.ErrTranslation, "translate", "segment",
					fmt.Sprintf("segment %d to %s", i+1, target), err)
				if !c.IsolateFailures {
					logging.ErrorWithContext(logging.WithContext(langCtx, c.Logger), "translation failed", "translation_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check the translation provider or set translation.isolate_failures"),
					)
					return nil, wrapped
				}
				c.dropTrack(langCtx, result, target, wrapped)
				continue
			}

			if textutil.LooksUntranslated(text, translated, echoMinTokens, echoSimilarity) {
				result.Stats.Untranslated++
				logging.WarnWithContext(logging.WithContext(langCtx, c.Logger), "translation matches source text", "translation_unchanged",
					logging.String(logging.FieldImpact, "segment appears in the source language"),
					logging.String(logging.FieldErrorHint, "check the provider model or clear the cached entry"),
				)
			}

			aligned := cues.Align(produced.Cues, translated)
			if empty := cues.CountEmpty(aligned); empty > 0 {
				result.Stats.EmptyPieces += empty
				logging.WarnWithContext(logging.WithContext(langCtx, c.Logger), "translated text split into empty cues", "empty_pieces",
					logging.Int("empty_pieces", empty),
					logging.Int("cues", len(aligned)),
					logging.String(logging.FieldImpact, "some translated cues are blank"),
					logging.String(logging.FieldErrorHint, "raise subtitles.max_chars or review the translation"),
				)
			}
			track := result.Tracks[target]
			for _, cue := range aligned {
				track.Append(cue)
			}
			result.Texts[target] = append(result.Texts[target], translated)
		}
	}

	result.Stats.Duration = time.Since(started)
	logger.Info("conversion completed",
		logging.Int("segments", result.Stats.Segments),
		logging.Int("cues", result.Stats.Cues),
		logging.Int("tracks", len(result.Languages)),
		logging.Int("translation_calls", result.Stats.TranslationCalls),
		logging.Int("empty_pieces", result.Stats.EmptyPieces),
		logging.Int("untranslated", result.Stats.Untranslated),
		logging.Duration("duration", result.Stats.Duration),
	)
	return result, nil
}

// translate skips the provider for blank segments.
func (c *Converter) translate(ctx context.Context, text, source, target string, result *Result) (string, error) {
	if text == "" {
		return "", nil
	}
	result.Stats.TranslationCalls++
	translated, err := c.Translator.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(translated), nil
}

func (c *Converter) dropTrack(ctx context.Context, result *Result, target string, err error) {
	result.Failed[target] = err
	delete(result.Tracks, target)
	delete(result.Texts, target)
	kept := result.Languages[:0]
	for _, lang := range result.Languages {
		if lang != target {
			kept = append(kept, lang)
		}
	}
	result.Languages = kept
	logging.WarnWithContext(logging.WithContext(ctx, c.Logger), "translation failed; dropping track", "translation_track_dropped",
		logging.Error(err),
		logging.String(logging.FieldImpact, fmt.Sprintf("no %s subtitles will be written", target)),
		logging.String(logging.FieldErrorHint, "rerun once the translation provider is reachable"),
	)
}
