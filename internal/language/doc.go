// Package language normalizes the language codes that appear in transcripts,
// configuration and command-line flags.
//
// Transcripts usually carry ISO 639-1 codes ("en"), while users tend to type
// regional tags ("pt-BR"), ISO 639-2 codes ("fre") or full names ("Japanese").
// Canonical folds all of these to the two-letter base code used to key joiner
// tables, output file names and the translation cache.
package language
