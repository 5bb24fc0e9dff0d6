package dialogue

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// grammarRule is one pattern rewrite with its learner-facing note.
type grammarRule struct {
	pattern     string
	replacement string
	explanation string
}

// The rule set is deliberately small and ordered: each rule targets one
// recurring mistake of French-speaking English learners.
var grammarRules = []grammarRule{
	{"i has", "I have", "Avec 'I', on utilise 'have', jamais 'has'."},
	{"she go ", "she goes ", "À la 3e personne du singulier, le verbe prend un 's' : 'she goes'."},
	{"i am agree", "I agree", "'Agree' est un verbe en anglais : on dit 'I agree', pas 'I am agree'."},
	{"can to", "can", "Après 'can', le verbe s'emploie sans 'to'."},
	{"i am student", "I am a student", "On ajoute l'article : 'I am a student'."},
}

// correctionTurn applies the grammar rules to one sentence, logs the
// correction, and returns to the main menu. The mode is single-shot.
func (e *Engine) correctionTurn(ctx context.Context, userID, input, lower string, s *Session) Reply {
	lang := e.lang(s)

	if isEscape(lower) {
		return e.escapeToMenu(s)
	}
	if input == "" {
		return reply(TypeCorrection, seg(TypeCorrection, e.text("correction_prompt", lang)))
	}

	corrected, explanations := applyGrammarRules(input)
	s.State = StateMainMenu

	if len(explanations) == 0 {
		return reply(TypeCorrection,
			seg(TypeCorrection, e.text("correction_none", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}

	if e.corrections != nil {
		if err := e.corrections.Append(ctx, userID, input, corrected); err != nil {
			slog.Warn("failed to log correction", "user_id", userID, "error", err)
		}
	}

	return reply(TypeCorrection,
		seg(TypeCorrection, e.text("correction_result", lang, map[string]string{"corrected": corrected})),
		seg(TypeCorrectionExplanation, strings.Join(explanations, "\n")),
		seg(TypeMenu, e.menuText(lang)))
}

// applyGrammarRules runs every rule over the sentence, case-insensitive
// on the pattern, and returns the rewritten sentence plus the notes of
// the rules that fired.
func applyGrammarRules(sentence string) (string, []string) {
	out := sentence
	var notes []string
	for _, r := range grammarRules {
		rewritten, hit := replaceFold(out, r.pattern, r.replacement)
		if hit {
			out = rewritten
			notes = append(notes, r.explanation)
		}
	}
	return out, notes
}

// replaceFold replaces every case-insensitive occurrence of pattern.
// Matching walks rune windows of s rather than lowering it wholesale:
// ToLower can change byte lengths, so lowered-string indices cannot be
// used to slice the original.
func replaceFold(s, pattern, replacement string) (string, bool) {
	var b strings.Builder
	hit := false
	for i := 0; i < len(s); {
		if n := foldPrefixLen(s[i:], pattern); n > 0 {
			b.WriteString(replacement)
			i += n
			hit = true
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	if !hit {
		return s, false
	}
	return b.String(), true
}

// foldPrefixLen reports how many bytes at the start of s case-fold to
// pattern, or 0 when they do not.
func foldPrefixLen(s, pattern string) int {
	i := 0
	for _, pr := range pattern {
		if i >= len(s) {
			return 0
		}
		sr, size := utf8.DecodeRuneInString(s[i:])
		if sr != pr && unicode.ToLower(sr) != unicode.ToLower(pr) {
			return 0
		}
		i += size
	}
	return i
}
