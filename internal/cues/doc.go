// Package cues turns transcript segments into timed subtitle cues.
//
// The Segmenter packs word tokens greedily against a per-segment soft length
// derived from the character budget, resolving missing word timestamps by
// inheriting the most recent resolved time. The running cue index and that
// fallback time travel between segments in an explicit State value so
// callers fold over a transcript without shared globals.
//
// SplitEven and Align re-segment translated text into the same number of
// pieces as the source cues, cutting only at whitespace, and reuse the
// source timestamps piece for piece.
package cues
