package language

import (
	"reflect"
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{" ja ", "ja"},
		// 3-letter codes convert
		{"eng", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"jpn", "ja"},
		{"chi", "zh"},
		{"zho", "zh"},
		// Regional tags collapse to the base language
		{"pt-BR", "pt"},
		{"zh-TW", "zh"},
		{"zh_Hant", "zh"},
		{"en-GB", "en"},
		{"sr-Latn-RS", "sr"},
		// Word forms
		{"english", "en"},
		{"Japanese", "ja"},
		{"Mandarin", "zh"},
		// Unknown well-formed 2-letter passes through
		{"xy", "xy"},
		// Garbage
		{"not a language", ""},
		{"12", ""},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Canonical(tt.input); got != tt.expected {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"fre", "French"},
		{"zh-TW", "Chinese"},
		{"japanese", "Japanese"},
		{"sw", "Swahili"},
		{"", "Unknown"},
		{"abcd", "ABCD"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil", nil, nil},
		{"empty", []string{}, nil},
		{"canonicalizes and dedupes", []string{"en", "eng", "English", "fr"}, []string{"en", "fr"}},
		{"regional tags", []string{"pt-BR", "pt-PT", "zh_TW"}, []string{"pt", "zh"}},
		{"skips blanks", []string{"", " ", "de"}, []string{"de"}},
		{"keeps unknown for validation", []string{"Klingon!"}, []string{"klingon!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeList(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("NormalizeList(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSame(t *testing.T) {
	if !Same("zh", "zh-Hans") {
		t.Error("expected zh and zh-Hans to match")
	}
	if Same("en", "fr") {
		t.Error("expected en and fr to differ")
	}
	if Same("", "") {
		t.Error("expected blank codes not to match")
	}
}
