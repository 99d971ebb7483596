package srt

import (
	"fmt"
	"strings"
)

// Parse splits SRT content into cues. Malformed blocks are skipped. A block
// with an index and timing line but no text yields a cue with empty text.
func Parse(content string) []Cue {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return nil
	}

	blocks := strings.Split(content, "\n\n")
	var cues []Cue
	for _, block := range blocks {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			continue
		}

		var index int
		if _, err := fmt.Sscanf(strings.TrimSpace(lines[0]), "%d", &index); err != nil {
			continue
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			continue
		}
		start, err := ParseTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := ParseTimestamp(parts[1])
		if err != nil {
			continue
		}

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues
}

// Validate checks SRT content for format issues.
// Returns a list of issues found; empty slice means validation passed.
func Validate(content string) []string {
	var issues []string

	cues := Parse(content)
	if len(cues) == 0 {
		issues = append(issues, "empty_subtitle_file")
		return issues
	}

	prev := 0
	for _, cue := range cues {
		if cue.Index <= prev {
			issues = append(issues, fmt.Sprintf("non_monotonic_index: %d after %d", cue.Index, prev))
		}
		prev = cue.Index
		if cue.End < cue.Start {
			issues = append(issues, fmt.Sprintf("inverted_timing: cue %d ends before it starts", cue.Index))
		}
	}
	return issues
}
