package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"whisperxsubs/internal/cues"
	"whisperxsubs/internal/services"
	"whisperxsubs/internal/srt"
	"whisperxsubs/internal/transcript"
	"whisperxsubs/internal/translate"
)

func sec(v float64) *float64 { return transcript.Seconds(v) }

func greeting() *transcript.Transcript {
	return &transcript.Transcript{
		Language: "en",
		Segments: []transcript.Segment{{
			Text:  "Hello world, how are you today?",
			Start: sec(0),
			End:   sec(3),
			Words: []transcript.Word{
				{Text: "Hello", Start: sec(0), End: sec(0.5)},
				{Text: "world,", Start: sec(0.5), End: sec(1.0)},
				{Text: "how", Start: sec(1.0), End: sec(1.5)},
				{Text: "are", Start: sec(1.5), End: sec(2.0)},
				{Text: "you", Start: sec(2.0), End: sec(2.5)},
				{Text: "today?", Start: sec(2.5), End: sec(3.0)},
			},
		}},
	}
}

func newConverter(targets []string, tr translate.Translator) *Converter {
	return &Converter{
		Segmenter:  cues.Segmenter{MaxChars: 15, Joiners: cues.DefaultJoiners()},
		Targets:    targets,
		Translator: tr,
	}
}

func TestConvertSourceOnly(t *testing.T) {
	result, err := newConverter(nil, nil).Convert(context.Background(), greeting())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Source != "en" || len(result.Languages) != 1 {
		t.Fatalf("unexpected languages %v (source %q)", result.Languages, result.Source)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nHello world,\n\n" +
		"2\n00:00:01,000 --> 00:00:02,500\nhow are you\n\n" +
		"3\n00:00:02,500 --> 00:00:03,000\ntoday?\n\n"
	if got := result.Track("en").String(); got != want {
		t.Fatalf("source track mismatch:\n%s\nwant:\n%s", got, want)
	}
	if result.RunID == "" {
		t.Fatal("expected a generated run id")
	}
	if result.Stats.Cues != 3 || result.Stats.PlannedCues != 3 {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
}

func TestConvertTranslatedTracksShareTiming(t *testing.T) {
	tr := translate.Func(func(_ context.Context, text, source, target string) (string, error) {
		if source != "en" {
			return "", fmt.Errorf("unexpected source %q", source)
		}
		switch target {
		case "fr":
			return "Bonjour le monde, comment allez-vous aujourd'hui ?", nil
		case "de":
			return "Hallo Welt, wie geht es dir heute?", nil
		}
		return "", fmt.Errorf("unexpected target %q", target)
	})
	result, err := newConverter([]string{"fr", "de", "en", "FR"}, tr).Convert(context.Background(), greeting())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := strings.Join(result.Languages, ","); got != "en,fr,de" {
		t.Fatalf("languages = %s", got)
	}

	source := srt.Parse(result.Track("en").String())
	for _, lang := range []string{"fr", "de"} {
		track := srt.Parse(result.Track(lang).String())
		if len(track) != len(source) {
			t.Fatalf("%s: %d cues, source has %d", lang, len(track), len(source))
		}
		for i := range source {
			if track[i].Index != source[i].Index || track[i].Start != source[i].Start || track[i].End != source[i].End {
				t.Fatalf("%s cue %d timing differs: %+v vs %+v", lang, i, track[i], source[i])
			}
		}
		if len(result.Texts[lang]) != 1 {
			t.Fatalf("%s: expected one transcript line", lang)
		}
	}
	if result.Stats.TranslationCalls != 2 {
		t.Fatalf("expected 2 translation calls, got %d", result.Stats.TranslationCalls)
	}
}

func TestConvertIndicesContinueAcrossSegments(t *testing.T) {
	doc := greeting()
	doc.Segments = append(doc.Segments, transcript.Segment{
		Text:  "Fine thanks",
		Words: []transcript.Word{{Text: "Fine"}, {Text: "thanks", End: sec(4)}},
	})
	result, err := newConverter(nil, nil).Convert(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	parsed := srt.Parse(result.Track("en").String())
	if len(parsed) != 4 {
		t.Fatalf("expected 4 cues, got %d", len(parsed))
	}
	last := parsed[3]
	if last.Index != 4 || last.Start != 3.0 || last.End != 4.0 || last.Text != "Fine thanks" {
		t.Fatalf("unexpected chained cue %+v", last)
	}
}

func TestConvertTranslationFailureAbortsByDefault(t *testing.T) {
	boom := errors.New("provider down")
	tr := translate.Func(func(context.Context, string, string, string) (string, error) {
		return "", boom
	})
	_, err := newConverter([]string{"fr"}, tr).Convert(context.Background(), greeting())
	if !errors.Is(err, services.ErrTranslation) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped translation error, got %v", err)
	}
	if services.ExitCode(err) != services.ExitFailure {
		t.Fatalf("unexpected exit code %d", services.ExitCode(err))
	}
}

func TestConvertIsolatesFailingLanguage(t *testing.T) {
	tr := translate.Func(func(_ context.Context, text, _, target string) (string, error) {
		if target == "de" {
			return "", errors.New("quota exceeded")
		}
		return "Bonjour le monde, comment allez-vous ?", nil
	})
	var logs bytes.Buffer
	conv := newConverter([]string{"fr", "de"}, tr)
	conv.IsolateFailures = true
	conv.Logger = slog.New(slog.NewJSONHandler(&logs, nil))

	result, err := conv.Convert(context.Background(), greeting())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := strings.Join(result.Languages, ","); got != "en,fr" {
		t.Fatalf("languages = %s", got)
	}
	if result.Track("de") != nil {
		t.Fatal("expected de track to be dropped")
	}
	if !errors.Is(result.Failed["de"], services.ErrTranslation) {
		t.Fatalf("expected recorded failure, got %v", result.Failed["de"])
	}
	if !strings.Contains(logs.String(), `"event_type":"translation_track_dropped"`) {
		t.Fatalf("expected drop warning in logs: %s", logs.String())
	}
}

func TestConvertFlagsEmptyPieces(t *testing.T) {
	tr := translate.Func(func(context.Context, string, string, string) (string, error) {
		return "こんにちは世界、今日は元気ですか？", nil
	})
	var logs bytes.Buffer
	conv := newConverter([]string{"ja"}, tr)
	conv.Logger = slog.New(slog.NewJSONHandler(&logs, nil))

	result, err := conv.Convert(context.Background(), greeting())
	if err != nil {
		t.Fatal(err)
	}
	parsed := srt.Parse(result.Track("ja").String())
	if len(parsed) != 3 {
		t.Fatalf("expected 3 ja cues, got %d", len(parsed))
	}
	if result.Stats.EmptyPieces != 2 {
		t.Fatalf("EmptyPieces = %d, want 2", result.Stats.EmptyPieces)
	}
	if !strings.Contains(logs.String(), `"event_type":"empty_pieces"`) {
		t.Fatalf("expected empty_pieces warning: %s", logs.String())
	}
}

func TestConvertSegmentWithoutWords(t *testing.T) {
	calls := 0
	tr := translate.Func(func(_ context.Context, text, _, _ string) (string, error) {
		calls++
		return "[" + text + "]", nil
	})
	doc := &transcript.Transcript{Language: "en", Segments: []transcript.Segment{
		{Text: "music", Words: []transcript.Word{}},
		{Text: "   ", Words: []transcript.Word{}},
	}}
	result, err := newConverter([]string{"fr"}, tr).Convert(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if result.Track("en").Len() != 0 || result.Track("fr").Len() != 0 {
		t.Fatal("expected no cues")
	}
	if calls != 1 {
		t.Fatalf("expected blank segment to skip translation, got %d calls", calls)
	}
	if got := result.Texts["fr"]; len(got) != 2 || got[0] != "[music]" || got[1] != "" {
		t.Fatalf("unexpected fr transcript %q", got)
	}
	if result.Stats.EmptySegments != 2 {
		t.Fatalf("EmptySegments = %d", result.Stats.EmptySegments)
	}
}

func TestConvertKeepsSourceTextVerbatim(t *testing.T) {
	var sent []string
	tr := translate.Func(func(_ context.Context, text, _, _ string) (string, error) {
		sent = append(sent, text)
		return "Salut", nil
	})
	doc := &transcript.Transcript{Language: "en", Segments: []transcript.Segment{
		{Text: " Hi there ", Words: []transcript.Word{{Text: "Hi", End: sec(1)}, {Text: "there", End: sec(2)}}},
	}}
	result, err := newConverter([]string{"fr"}, tr).Convert(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Texts["en"]; len(got) != 1 || got[0] != " Hi there " {
		t.Fatalf("expected untouched source text, got %q", got)
	}
	if len(sent) != 1 || sent[0] != "Hi there" {
		t.Fatalf("expected trimmed text sent to translator, got %q", sent)
	}
}

func TestConvertValidatesInputs(t *testing.T) {
	if _, err := newConverter(nil, nil).Convert(context.Background(), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	conv := newConverter([]string{"fr"}, nil)
	if _, err := conv.Convert(context.Background(), greeting()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	conv = newConverter(nil, nil)
	conv.Segmenter.MaxChars = 0
	if _, err := conv.Convert(context.Background(), greeting()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestConvertHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newConverter(nil, nil).Convert(ctx, greeting())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestConvertPropagatesContextToTranslator(t *testing.T) {
	var seen []string
	tr := translate.Func(func(ctx context.Context, text, _, target string) (string, error) {
		runID, _ := services.RunIDFromContext(ctx)
		segment, _ := services.SegmentFromContext(ctx)
		lang, _ := services.LanguageFromContext(ctx)
		seen = append(seen, fmt.Sprintf("%s/%d/%s", runID, segment, lang))
		return text, nil
	})
	ctx := services.WithRunID(context.Background(), "run-42")
	result, err := newConverter([]string{"es"}, tr).Convert(ctx, greeting())
	if err != nil {
		t.Fatal(err)
	}
	if result.RunID != "run-42" {
		t.Fatalf("RunID = %q", result.RunID)
	}
	if len(seen) != 1 || seen[0] != "run-42/1/es" {
		t.Fatalf("translator context = %v", seen)
	}
}

func TestSourceLanguage(t *testing.T) {
	tests := map[string]string{
		"en":      "en",
		"English": "en",
		"":        UndeterminedLanguage,
		"  EN ":   "en",
	}
	for in, want := range tests {
		if got := SourceLanguage(&transcript.Transcript{Language: in}); got != want {
			t.Errorf("SourceLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConvertFlagsEchoedTranslation(t *testing.T) {
	var logs bytes.Buffer
	conv := newConverter([]string{"fr"}, translate.Identity)
	conv.Logger = slog.New(slog.NewJSONHandler(&logs, nil))

	result, err := conv.Convert(context.Background(), greeting())
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats.Untranslated != 1 {
		t.Fatalf("Untranslated = %d, want 1", result.Stats.Untranslated)
	}
	if !strings.Contains(logs.String(), `"event_type":"translation_unchanged"`) {
		t.Fatalf("expected translation_unchanged warning: %s", logs.String())
	}
}
