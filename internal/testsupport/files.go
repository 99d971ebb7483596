package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"whisperxsubs/internal/transcript"
)

// Greeting returns the one-segment transcript used across package tests:
// "Hello world, how are you today?" spoken over three seconds.
func Greeting() *transcript.Transcript {
	sec := transcript.Seconds
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

// WriteTranscript encodes doc as JSON at path, creating parent directories.
func WriteTranscript(t testing.TB, path string, doc *transcript.Transcript) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
