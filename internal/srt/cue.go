package srt

import (
	"fmt"
	"strings"
)

// Cue is one timed subtitle entry.
type Cue struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// FormatCue renders a cue as an SRT block terminated by a blank line. The
// text is trimmed of surrounding whitespace.
func FormatCue(c Cue) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n\n",
		c.Index,
		FormatTimestamp(c.Start),
		FormatTimestamp(c.End),
		strings.TrimSpace(c.Text),
	)
}

// Track accumulates the SRT blocks of one language.
type Track struct {
	Language string
	buf      strings.Builder
	count    int
}

// NewTrack returns an empty track for lang.
func NewTrack(lang string) *Track {
	return &Track{Language: lang}
}

// Append serializes c onto the track.
func (t *Track) Append(c Cue) {
	t.buf.WriteString(FormatCue(c))
	t.count++
}

// Len reports how many cues have been appended.
func (t *Track) Len() int {
	return t.count
}

// String returns the accumulated SRT text.
func (t *Track) String() string {
	return t.buf.String()
}
