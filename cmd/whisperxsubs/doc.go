// Package main hosts the whisperxsubs CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, builds the logger and hands
// transcripts to the internal convert and output packages. Commands stay
// thin; segmentation, translation and file handling live under internal/.
package main
