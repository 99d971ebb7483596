package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"whisperxsubs/internal/services"
)

// Word is a single timed token. Text keeps whatever spacing and punctuation
// the transcription system emitted.
type Word struct {
	Text  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// Segment is a contiguous unit of transcript text with its word breakdown.
type Segment struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	Words []Word   `json:"words"`
}

// Transcript is the top-level transcription record.
type Transcript struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Seconds returns a pointer to v for building optional timestamps.
func Seconds(v float64) *float64 {
	return &v
}

// WordCount returns the total number of words across all segments.
func (t *Transcript) WordCount() int {
	if t == nil {
		return 0
	}
	total := 0
	for _, seg := range t.Segments {
		total += len(seg.Words)
	}
	return total
}

type rawWord struct {
	Word  *string  `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type rawSegment struct {
	Text  *string    `json:"text"`
	Start *float64   `json:"start"`
	End   *float64   `json:"end"`
	Words *[]rawWord `json:"words"`
}

type rawTranscript struct {
	Language string        `json:"language"`
	Segments *[]rawSegment `json:"segments"`
}

// Decode parses a transcript from r. Missing structural fields are fatal;
// missing timestamps are not.
func Decode(r io.Reader) (*Transcript, error) {
	var raw rawTranscript
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcript", "decode", "parse json", err)
	}
	if raw.Segments == nil {
		return nil, services.Wrap(services.ErrValidation, "transcript", "decode", "missing segments", nil)
	}
	out := &Transcript{
		Language: strings.TrimSpace(raw.Language),
		Segments: make([]Segment, 0, len(*raw.Segments)),
	}
	for i, seg := range *raw.Segments {
		if seg.Text == nil {
			return nil, services.Wrap(services.ErrValidation, "transcript", "decode", fmt.Sprintf("segment %d: missing text", i+1), nil)
		}
		if seg.Words == nil {
			return nil, services.Wrap(services.ErrValidation, "transcript", "decode", fmt.Sprintf("segment %d: missing words", i+1), nil)
		}
		words := make([]Word, 0, len(*seg.Words))
		for j, w := range *seg.Words {
			if w.Word == nil {
				return nil, services.Wrap(services.ErrValidation, "transcript", "decode", fmt.Sprintf("segment %d word %d: missing word", i+1, j+1), nil)
			}
			words = append(words, Word{Text: *w.Word, Start: w.Start, End: w.End})
		}
		out.Segments = append(out.Segments, Segment{
			Text:  *seg.Text,
			Start: seg.Start,
			End:   seg.End,
			Words: words,
		})
	}
	return out, nil
}

// Load reads and decodes the transcript stored at path.
func Load(path string) (*Transcript, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrNotFound, "transcript", "load", "path required", os.ErrNotExist)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "transcript", "load", path, err)
	}
	defer file.Close()
	return Decode(file)
}
