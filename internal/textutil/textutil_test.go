package textutil

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"punctuation", "Hello, World! How are you?", []string{"hello", "world", "how", "are", "you"}},
		{"filters short", "a to the quick fox", []string{"the", "quick", "fox"}},
		{"accents", "Ça va très bien, merci", []string{"très", "bien", "merci"}},
		{"digits", "test123 456test", []string{"test123", "456test"}},
		{"cyrillic", "Привет мир, как дела", []string{"привет", "мир", "как", "дела"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFingerprint(t *testing.T) {
	if NewFingerprint("") != nil || NewFingerprint("a an it to") != nil {
		t.Fatal("expected nil fingerprint without usable tokens")
	}
	fp := NewFingerprint("hello hello world")
	if fp.TokenCount() != 2 {
		t.Fatalf("TokenCount = %d, want 2", fp.TokenCount())
	}
	if math.Abs(fp.norm-math.Sqrt(5)) > 1e-9 {
		t.Fatalf("norm = %v, want sqrt(5)", fp.norm)
	}
	var nilFP *Fingerprint
	if nilFP.TokenCount() != 0 {
		t.Fatal("nil fingerprint should have no tokens")
	}
}

func TestCosineSimilarity(t *testing.T) {
	same := CosineSimilarity(NewFingerprint("the quick brown fox"), NewFingerprint("The quick, brown fox!"))
	if math.Abs(same-1) > 1e-9 {
		t.Fatalf("identical text similarity = %v", same)
	}
	if got := CosineSimilarity(NewFingerprint("apple banana cherry"), NewFingerprint("dog elephant frog")); got != 0 {
		t.Fatalf("disjoint similarity = %v", got)
	}
	a, b := NewFingerprint("hello world program"), NewFingerprint("world program test")
	ab, ba := CosineSimilarity(a, b), CosineSimilarity(b, a)
	if ab != ba || ab <= 0 || ab >= 1 {
		t.Fatalf("partial similarity = %v / %v", ab, ba)
	}
	if CosineSimilarity(nil, a) != 0 || CosineSimilarity(&Fingerprint{}, a) != 0 {
		t.Fatal("expected zero for nil or empty fingerprints")
	}
}

func TestLooksUntranslated(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		translated string
		want       bool
	}{
		{"echoed", "Hello world, how are you today?", "Hello world, how are you today?", true},
		{"translated", "Hello world, how are you today?", "Bonjour le monde, comment allez-vous ?", false},
		{"too short", "Okay.", "Okay.", false},
		{"names only overlap", "Paris London Berlin tonight", "Paris London Berlin ce soir", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksUntranslated(tt.source, tt.translated, 3, 0.9); got != tt.want {
				t.Fatalf("LooksUntranslated = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  talk: part 1 ": "talk- part 1",
		"a/b\\c":          "a-b-c",
		"what?<>|\"":      "what",
		"":                "",
	}
	for in, want := range tests {
		if got := SanitizeFileName(in); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"zh-TW": "zh-tw",
		"pt_BR": "pt_br",
		"  ":    "unknown",
		"é":     "unknown",
		"EN!":   "en",
	}
	for in, want := range tests {
		if got := SanitizeToken(in); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
