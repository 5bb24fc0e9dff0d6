package classify_test

import (
	"testing"

	"github.com/fennlabs/fennlingo/internal/classify"
)

func TestKeyword_DetectLanguage(t *testing.T) {
	var k classify.Keyword

	tests := []struct {
		name string
		text string
		want string
	}{
		{"darija greeting", "salam, wach rak?", "dz"},
		{"darija request", "bghit quiz", "dz"},
		{"english question", "how are you today", "en"},
		{"english greeting", "hello there", "en"},
		{"french default", "je veux un quiz", "fr"},
		{"empty defaults to french", "", "fr"},
		{"darija beats english", "salam, how are you", "dz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestKeyword_PredictIntent(t *testing.T) {
	var k classify.Keyword

	tests := []struct {
		name string
		text string
		want string
	}{
		{"quiz phrase fr", "je veux un quiz", "quiz"},
		{"quiz phrase en", "I want a quiz please", "quiz"},
		{"parcours", "parcours d'apprentissage", "parcours"},
		{"context", "montre-moi le contexte", "context"},
		{"correction", "corrige ma phrase", "correction"},
		{"progression", "ma progression", "progression"},
		{"challenge", "un petit challenge", "challenge"},
		{"revision", "révision", "revision"},
		{"exit", "je veux quitter", "exit"},
		{"no match", "blablabla", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.PredictIntent(tt.text); got != tt.want {
				t.Errorf("PredictIntent(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
