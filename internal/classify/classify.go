// Package classify provides the two text classifiers the dialogue engine
// consumes: a language detector and an intent predictor. Both are pure
// functions over fixed keyword tables; the engine treats them as
// external collaborators with this exact contract.
package classify

import "strings"

// Languages the detector can report.
const (
	LangFR = "fr"
	LangEN = "en"
	LangDZ = "dz"
)

var darijaKeywords = []string{
	"wach", "kifach", "smahli", "bghit", "ch7al", "nta", "nti",
	"labas", "rani", "khir", "salam", "alaykoum", "wee", "kirek",
}

var englishKeywords = []string{
	"how", "what", "can", "do", "you", "my", "your", "the", "is",
	"hello", "hi", "hey", "good morning", "good evening", "good night",
}

// intentKeywords maps each menu intent to trigger words, checked in
// table order so the first matching intent wins.
var intentKeywords = []struct {
	label    string
	keywords []string
}{
	{"quiz", []string{"quiz", "كويز", "اختبار"}},
	{"parcours", []string{"parcours", "learning path", "apprendre", "learn", "مسار"}},
	{"context", []string{"contexte", "context", "سياق"}},
	{"correction", []string{"corrige", "corriger", "correction", "correct", "saha7", "تصحيح"}},
	{"progression", []string{"progression", "progress", "progrès", "stats", "statistiques", "تقدم"}},
	{"logs", []string{"logs", "journal", "historique", "history", "سجلات"}},
	{"challenge", []string{"challenge", "défi", "تحدي"}},
	{"revision", []string{"revision", "révision", "review", "مراجعة"}},
	{"exit", []string{"quitter", "exit", "bye", "خروج"}},
}

// Keyword is the default classifier implementation.
type Keyword struct{}

// DetectLanguage reports fr, en or dz for a piece of user text. Darija
// markers win over English markers; French is the default.
func (Keyword) DetectLanguage(text string) string {
	words := fields(text)
	if containsAny(words, darijaKeywords) {
		return LangDZ
	}
	if containsAny(words, englishKeywords) {
		return LangEN
	}
	return LangFR
}

// PredictIntent maps free text to a menu intent label, or "" when no
// table entry matches.
func (Keyword) PredictIntent(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.label
			}
		}
	}
	return ""
}

func fields(text string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[strings.Trim(w, ".,!?;:'\"")] = true
	}
	return words
}

func containsAny(words map[string]bool, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			continue // multi-word markers handled by single words already present
		}
		if words[kw] {
			return true
		}
	}
	return false
}
