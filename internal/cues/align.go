package cues

import (
	"strings"
	"unicode"

	"whisperxsubs/internal/srt"
)

// SplitEven partitions text into exactly n trimmed pieces of roughly equal
// rune length. Every piece but the last is extended forward to the next
// whitespace so no word is cut; the last piece absorbs the remainder. When
// text has fewer break points than n-1, trailing pieces come back empty.
func SplitEven(text string, n int) []string {
	if n <= 0 {
		n = 1
	}
	runes := []rune(text)
	avg := len(runes) / n
	pieces := make([]string, 0, n)
	start := 0
	for k := 0; k < n; k++ {
		end := len(runes)
		if k < n-1 {
			end = min(start+avg, len(runes))
			for end < len(runes) && !unicode.IsSpace(runes[end]) {
				end++
			}
		}
		pieces = append(pieces, strings.TrimSpace(string(runes[start:end])))
		start = end
	}
	return pieces
}

// Align pairs translated text with the timing of source. The translation is
// split into len(source) pieces and piece i inherits source[i]'s index and
// timestamps, so every language shares timing at a given index.
func Align(source []srt.Cue, translated string) []srt.Cue {
	if len(source) == 0 {
		return nil
	}
	pieces := SplitEven(translated, len(source))
	out := make([]srt.Cue, len(source))
	for i, cue := range source {
		out[i] = srt.Cue{
			Index: cue.Index,
			Start: cue.Start,
			End:   cue.End,
			Text:  pieces[i],
		}
	}
	return out
}

// CountEmpty reports how many cues carry no text.
func CountEmpty(cues []srt.Cue) int {
	count := 0
	for _, cue := range cues {
		if strings.TrimSpace(cue.Text) == "" {
			count++
		}
	}
	return count
}
