// Package srt formats and parses SubRip subtitle text.
//
// Timestamps use the HH:MM:SS,mmm layout with unbounded hours and truncated
// milliseconds. Track accumulates cue blocks for one language so the
// conversion pipeline can stream cues into per-language buffers.
package srt
