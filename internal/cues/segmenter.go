package cues

import (
	"strings"
	"unicode/utf8"

	"whisperxsubs/internal/srt"
	"whisperxsubs/internal/transcript"
)

// State is the running accumulator carried from one segment to the next.
type State struct {
	// NextIndex is the index the next emitted cue receives.
	NextIndex int
	// Fallback is the most recently resolved end time. It stands in for any
	// missing start timestamp.
	Fallback float64
}

// NewState returns the state before the first segment.
func NewState() State {
	return State{NextIndex: 1}
}

// Result describes the cues produced for one segment.
type Result struct {
	Cues []srt.Cue
	// Planned is the target cue count derived from the character budget.
	Planned int
	// TargetLength is the soft per-cue length used while packing.
	TargetLength int
}

// Segmenter packs word tokens into cues under a character budget.
type Segmenter struct {
	MaxChars int
	Joiners  JoinerTable
}

// CueCount returns the planned number of cues for text. It is always at
// least one.
func CueCount(text string, maxChars int) int {
	if maxChars <= 0 {
		return 1
	}
	return utf8.RuneCountInString(text)/maxChars + 1
}

// TargetLength returns the soft per-cue length for text split n ways.
func TargetLength(text string, n int) int {
	if n <= 0 {
		n = 1
	}
	return utf8.RuneCountInString(text) / n
}

// Segment emits the cues of seg and returns the advanced state. Every word
// lands in exactly one cue; words are never split. lang selects the token
// joiner. A cue starts at the resolved start of its first word, where a
// missing word start falls back to the previous resolved end.
func (s Segmenter) Segment(seg transcript.Segment, lang string, state State) (Result, State) {
	if state.NextIndex <= 0 {
		state.NextIndex = 1
	}
	planned := CueCount(seg.Text, s.MaxChars)
	target := TargetLength(seg.Text, planned)
	result := Result{Planned: planned, TargetLength: target}
	if len(seg.Words) == 0 {
		return result, state
	}

	joiner := s.Joiners.Joiner(lang)
	joinerLen := utf8.RuneCountInString(joiner)

	fallback := state.Fallback
	// A cue that opens and closes on the segment's first word keeps the
	// nominal segment start.
	nominal := fallback
	if seg.Start != nil {
		nominal = *seg.Start
	}

	var (
		buf       strings.Builder
		bufLen    int
		pending   bool
		cueStart  float64
		lastIndex = len(seg.Words) - 1
	)
	result.Cues = make([]srt.Cue, 0, planned)

	for i, word := range seg.Words {
		start := fallback
		if word.Start != nil {
			start = *word.Start
		}
		end := start
		if word.End != nil {
			end = *word.End
		}
		fallback = end

		opened := !pending
		if opened {
			cueStart = start
			pending = true
		}

		tokenLen := utf8.RuneCountInString(word.Text)
		if bufLen+tokenLen > target || i == lastIndex {
			if opened && i == 0 {
				cueStart = nominal
			}
			buf.WriteString(word.Text)
			result.Cues = append(result.Cues, srt.Cue{
				Index: state.NextIndex,
				Start: cueStart,
				End:   end,
				Text:  strings.TrimSpace(buf.String()),
			})
			state.NextIndex++
			buf.Reset()
			bufLen = 0
			pending = false
			continue
		}
		buf.WriteString(word.Text)
		buf.WriteString(joiner)
		bufLen += tokenLen + joinerLen
	}

	state.Fallback = fallback
	return result, state
}
