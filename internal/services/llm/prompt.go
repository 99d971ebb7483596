package llm

import (
	"fmt"
	"strings"

	"whisperxsubs/internal/language"
)

// TranslationPrompt builds the system prompt for translating one transcript
// segment from sourceLang into targetLang.
func TranslationPrompt(sourceLang, targetLang string) string {
	source := "the detected source language"
	if strings.TrimSpace(sourceLang) != "" {
		source = fmt.Sprintf("%s (%s)", language.DisplayName(sourceLang), strings.TrimSpace(sourceLang))
	}
	target := fmt.Sprintf("%s (%s)", language.DisplayName(targetLang), strings.TrimSpace(targetLang))
	return fmt.Sprintf(`You translate spoken-word transcripts for subtitles.

Translate the user's text from %s into %s.

Rules:

- Translate the whole text. Do not summarize, shorten, or add commentary.
- Keep the speaker's register and tone. Keep names, numbers, and units.
- Return a single line of plain text with no line breaks.
- If the text is already in the target language, return it unchanged.

You must respond ONLY with a JSON object like: {"translation": "..."}`, source, target)
}
