// Package textutil provides text helpers for filename sanitization and
// token-based similarity.
//
// Fingerprints are term-frequency vectors over lowercased letter and digit
// runs. The converter compares a segment with its translation to spot
// providers that echo the source text back instead of translating it.
package textutil
