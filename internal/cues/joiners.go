package cues

import (
	"strings"

	"whisperxsubs/internal/language"
)

// DefaultJoiner separates tokens for languages absent from a JoinerTable.
const DefaultJoiner = " "

// JoinerTable maps a language code to the string placed between word tokens.
type JoinerTable map[string]string

// DefaultJoiners returns the languages whose tokens are not space delimited.
func DefaultJoiners() JoinerTable {
	return JoinerTable{
		"ja": "",
		"zh": "",
	}
}

// Joiner returns the token separator for lang. Regional variants fall back
// to their base language, so "zh-TW" uses the "zh" entry.
func (t JoinerTable) Joiner(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || len(t) == 0 {
		return DefaultJoiner
	}
	if joiner, ok := t[lang]; ok {
		return joiner
	}
	if base := language.Canonical(lang); base != "" {
		if joiner, ok := t[base]; ok {
			return joiner
		}
	}
	return DefaultJoiner
}
