package main

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"whisperxsubs/internal/config"
	"whisperxsubs/internal/convert"
	"whisperxsubs/internal/cues"
	"whisperxsubs/internal/language"
	"whisperxsubs/internal/services"
	"whisperxsubs/internal/srt"
	"whisperxsubs/internal/transcript"
)

type inspectSegment struct {
	Number       int       `json:"segment"`
	Start        string    `json:"start,omitempty"`
	End          string    `json:"end,omitempty"`
	Chars        int       `json:"chars"`
	Words        int       `json:"words"`
	Planned      int       `json:"planned_cues"`
	TargetLength int       `json:"target_length"`
	Cues         []srt.Cue `json:"cues"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var maxChars int
	var showCues bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <transcript.json>",
		Short: "Show how a transcript would be segmented without writing files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-chars") {
				maxChars = cfg.Subtitles.MaxChars
			}
			if maxChars <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "inspect",
					fmt.Sprintf("--max-chars must be positive, got %d", maxChars), nil)
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			doc, err := transcript.Load(path)
			if err != nil {
				return err
			}

			source := convert.SourceLanguage(doc)
			segments := inspectTranscript(doc, source, cues.Segmenter{
				MaxChars: maxChars,
				Joiners:  cues.JoinerTable(cfg.Subtitles.Joiners),
			})
			if jsonOutput {
				return writeJSON(cmd, segments)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Language: %s (%s)\n", language.DisplayName(source), source)
			fmt.Fprintf(out, "Segments: %d  Words: %d  Max chars: %d\n", len(doc.Segments), doc.WordCount(), maxChars)
			printSegmentTable(out, segments)
			if showCues {
				printCueTable(out, segments)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Per-cue character budget (overrides subtitles.max_chars)")
	cmd.Flags().BoolVar(&showCues, "cues", false, "List every produced cue")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

func inspectTranscript(doc *transcript.Transcript, source string, segmenter cues.Segmenter) []inspectSegment {
	state := cues.NewState()
	segments := make([]inspectSegment, 0, len(doc.Segments))
	for i, seg := range doc.Segments {
		var result cues.Result
		result, state = segmenter.Segment(seg, source, state)
		segments = append(segments, inspectSegment{
			Number:       i + 1,
			Start:        optionalTimestamp(seg.Start),
			End:          optionalTimestamp(seg.End),
			Chars:        utf8.RuneCountInString(seg.Text),
			Words:        len(seg.Words),
			Planned:      result.Planned,
			TargetLength: result.TargetLength,
			Cues:         result.Cues,
		})
	}
	return segments
}

func optionalTimestamp(v *float64) string {
	if v == nil {
		return ""
	}
	return srt.FormatTimestamp(*v)
}

func printSegmentTable(out io.Writer, segments []inspectSegment) {
	headers := []string{"#", "Start", "End", "Chars", "Words", "Planned", "Cues", "Target"}
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{
			strconv.Itoa(seg.Number),
			dashIfEmpty(seg.Start),
			dashIfEmpty(seg.End),
			strconv.Itoa(seg.Chars),
			strconv.Itoa(seg.Words),
			strconv.Itoa(seg.Planned),
			strconv.Itoa(len(seg.Cues)),
			strconv.Itoa(seg.TargetLength),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
		alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight,
	}))
}

func printCueTable(out io.Writer, segments []inspectSegment) {
	headers := []string{"Cue", "Seg", "Start", "End", "Chars", "Text"}
	var rows [][]string
	for _, seg := range segments {
		for _, cue := range seg.Cues {
			rows = append(rows, []string{
				strconv.Itoa(cue.Index),
				strconv.Itoa(seg.Number),
				srt.FormatTimestamp(cue.Start),
				srt.FormatTimestamp(cue.End),
				strconv.Itoa(utf8.RuneCountInString(cue.Text)),
				cue.Text,
			})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No cues produced")
		return
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
		alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft,
	}))
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
