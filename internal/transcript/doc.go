// Package transcript models WhisperX-style transcription output: a source
// language plus ordered segments, each carrying word-level timing.
//
// Timestamps are optional at both the segment and word level; absent values
// decode to nil so downstream code can apply fallback chaining instead of
// treating them as zero. Structural problems (missing segments, words, or
// text) are reported as validation errors.
package transcript
