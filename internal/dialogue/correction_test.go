package dialogue_test

import (
	"strings"
	"testing"

	"github.com/fennlabs/fennlingo/internal/dialogue"
)

func startCorrection(t *testing.T, eng *dialogue.Engine) dialogue.Session {
	t.Helper()
	sess := menuSession()
	_, sess = runTurn(t, eng, &sess, "4")
	if sess.State != dialogue.StateCorrection {
		t.Fatalf("state = %q, want correction", sess.State)
	}
	return sess
}

func TestCorrectionRules(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"i has a cat", "I have a cat"},
		{"she go to school every day", "she goes to school every day"},
		{"i am agree with you", "I agree with you"},
		{"I can to swim", "I can swim"},
		{"i am student", "I am a student"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			eng, _, _ := newTestEngine(t, nil)
			sess := startCorrection(t, eng)

			r, next := runTurn(t, eng, &sess, tt.input)
			if !strings.Contains(allText(r), tt.want) {
				t.Fatalf("correction of %q missing %q:\n%s", tt.input, tt.want, allText(r))
			}
			if next.State != dialogue.StateMainMenu {
				t.Fatalf("state = %q, want mainMenu after correction", next.State)
			}
		})
	}
}

func TestCorrectionPreservesMultibytePrefix(t *testing.T) {
	// Both prefixes change byte length under ToLower, which used to
	// desynchronize the match offsets from the original sentence.
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "length-growing lowercase",
			input: strings.Repeat("\u023A", 6) + "i has a cat",
			want:  strings.Repeat("\u023A", 6) + "I have a cat",
		},
		{
			name:  "dotted capital I",
			input: strings.Repeat("\u0130", 6) + "i has a cat",
			want:  strings.Repeat("\u0130", 6) + "I have a cat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, _ := newTestEngine(t, nil)
			sess := startCorrection(t, eng)

			r, next := runTurn(t, eng, &sess, tt.input)
			if !strings.Contains(allText(r), tt.want) {
				t.Fatalf("correction of %q missing %q:\n%s", tt.input, tt.want, allText(r))
			}
			if next.State != dialogue.StateMainMenu {
				t.Fatalf("state = %q, want mainMenu", next.State)
			}
		})
	}
}

func TestCorrectionIncludesExplanation(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	sess := startCorrection(t, eng)

	r, _ := runTurn(t, eng, &sess, "i has a dog")
	found := false
	for _, s := range r.Segments {
		if s.Type == dialogue.TypeCorrectionExplanation {
			found = true
			if !strings.Contains(s.Text, "have") {
				t.Fatalf("explanation does not mention the rule: %s", s.Text)
			}
		}
	}
	if !found {
		t.Fatal("no explanation segment in correction reply")
	}
}

func TestCorrectionCleanSentence(t *testing.T) {
	eng, _, corr := newTestEngine(t, nil)
	sess := startCorrection(t, eng)

	r, next := runTurn(t, eng, &sess, "I like learning English")
	if !strings.Contains(allText(r), "Aucune correction") {
		t.Fatalf("expected no-correction message, got: %s", allText(r))
	}
	if next.State != dialogue.StateMainMenu {
		t.Fatalf("state = %q, want mainMenu", next.State)
	}
	if len(corr.entries) != 0 {
		t.Fatalf("clean sentence was logged: %+v", corr.entries)
	}
}

func TestCorrectionIsLogged(t *testing.T) {
	eng, _, corr := newTestEngine(t, nil)
	sess := startCorrection(t, eng)

	_, _ = runTurn(t, eng, &sess, "i has a dog")
	if len(corr.entries) != 1 {
		t.Fatalf("logged %d corrections, want 1", len(corr.entries))
	}
	if corr.entries[0].Corrected != "I have a dog" {
		t.Fatalf("logged corrected = %q", corr.entries[0].Corrected)
	}
}

func TestCorrectionLogFailureIsSwallowed(t *testing.T) {
	eng, _, corr := newTestEngine(t, nil)
	corr.err = errFake
	sess := startCorrection(t, eng)

	r, next := runTurn(t, eng, &sess, "i has a dog")
	if !strings.Contains(allText(r), "I have a dog") {
		t.Fatalf("reply degraded on log failure: %s", allText(r))
	}
	if next.State != dialogue.StateMainMenu {
		t.Fatalf("state = %q, want mainMenu", next.State)
	}
}

func TestLogsShowRecentCorrections(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	sess := startCorrection(t, eng)
	_, sess = runTurn(t, eng, &sess, "i has a dog")

	r, next := runTurn(t, eng, &sess, "6")
	if next.State != dialogue.StateLogs {
		t.Fatalf("state = %q, want logs", next.State)
	}
	if !strings.Contains(allText(r), "i has a dog → I have a dog") {
		t.Fatalf("correction missing from logs: %s", allText(r))
	}

	_, next = runTurn(t, eng, &next, "ok")
	if next.State != dialogue.StateMainMenu {
		t.Fatalf("state = %q, want mainMenu after leaving logs", next.State)
	}
}

func TestProgressionReport(t *testing.T) {
	eng, prog, _ := newTestEngine(t, nil)
	if err := prog.Record(t.Context(), "u1", "quiz:beginner", 3); err != nil {
		t.Fatal(err)
	}
	if err := prog.Record(t.Context(), "u1", "parcours", 5); err != nil {
		t.Fatal(err)
	}

	sess := menuSession()
	r, next := runTurn(t, eng, &sess, "5")
	if next.State != dialogue.StateProgression {
		t.Fatalf("state = %q, want progression", next.State)
	}
	text := allText(r)
	if !strings.Contains(text, "Score total : 8") {
		t.Fatalf("total score missing: %s", text)
	}
	if !strings.Contains(text, "quiz:beginner : 3") || !strings.Contains(text, "parcours : 5") {
		t.Fatalf("per-quiz lines missing: %s", text)
	}
}

func TestProgressionEmpty(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	sess := menuSession()
	r, _ := runTurn(t, eng, &sess, "5")
	if !strings.Contains(allText(r), "Aucun quiz complété") {
		t.Fatalf("expected empty report, got: %s", allText(r))
	}
}

func TestProgressionStoreFailureDegrades(t *testing.T) {
	eng, prog, _ := newTestEngine(t, nil)
	prog.err = errFake

	sess := menuSession()
	r, next := runTurn(t, eng, &sess, "5")
	if r.Type != dialogue.TypeError {
		t.Fatalf("reply type = %q, want error", r.Type)
	}
	if next.State != dialogue.StateMainMenu {
		t.Fatalf("state = %q, want mainMenu", next.State)
	}
}
