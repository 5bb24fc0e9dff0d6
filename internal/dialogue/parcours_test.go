package dialogue_test

import (
	"strings"
	"testing"

	"github.com/fennlabs/fennlingo/internal/dialogue"
)

// parcoursAnswers maps every fixture question to its correct choice.
var parcoursAnswers = map[string]string{
	"Comment dit-on 'chat' en anglais ?":        "cat",
	"Comment dit-on 'rouge' en anglais ?":       "red",
	"Quel est le passé de 'go' ?":               "went",
	"Quel mot est un synonyme de 'happy' ?":     "glad",
}

func startParcours(t *testing.T, eng *dialogue.Engine) (dialogue.Reply, dialogue.Session) {
	t.Helper()
	sess := menuSession()
	r, sess := runTurn(t, eng, &sess, "2")
	if sess.State != dialogue.StateParcours {
		t.Fatalf("state = %q, want parcours", sess.State)
	}
	return r, sess
}

func TestParcoursStartsAtFirstLevel(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	r, sess := startParcours(t, eng)
	if !strings.Contains(allText(r), "Début du parcours") {
		t.Fatalf("expected path intro, got: %s", allText(r))
	}
	if !strings.Contains(allText(r), "débutant") {
		t.Fatalf("expected level banner, got: %s", allText(r))
	}
	if sess.Parcours == nil || sess.Parcours.LevelIndex != 0 {
		t.Fatalf("parcours state = %+v", sess.Parcours)
	}
}

func TestParcoursFullRunAccumulatesAcrossLevels(t *testing.T) {
	eng, prog, _ := newTestEngine(t, nil)

	r, sess := startParcours(t, eng)

	// 2 beginner + 1 intermediate + 1 advanced question.
	for i := 0; i < 4; i++ {
		q := currentQuestion(t, allText(r))
		answer, ok := parcoursAnswers[q]
		if !ok {
			t.Fatalf("unexpected question %q", q)
		}
		label := labelFor(t, allText(r), answer)
		r, sess = runTurn(t, eng, &sess, label)
	}

	if sess.State != dialogue.StateMainMenu {
		t.Fatalf("state = %q, want mainMenu", sess.State)
	}
	if sess.Parcours != nil {
		t.Fatal("parcours sub-state not cleared at the end")
	}
	if sess.PathScore != 4 {
		t.Fatalf("path score = %d, want 4", sess.PathScore)
	}
	if !strings.Contains(allText(r), "Parcours terminé") {
		t.Fatalf("expected completion message, got: %s", allText(r))
	}

	sum, err := prog.Summary(t.Context(), "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Quizzes["parcours"] != 4 {
		t.Fatalf("recorded path score = %d, want 4", sum.Quizzes["parcours"])
	}
}

func TestParcoursLevelTransitionMessage(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	r, sess := startParcours(t, eng)

	// Finish the two beginner questions.
	for i := 0; i < 2; i++ {
		q := currentQuestion(t, allText(r))
		label := labelFor(t, allText(r), parcoursAnswers[q])
		r, sess = runTurn(t, eng, &sess, label)
	}

	if !strings.Contains(allText(r), "tu passes au niveau") {
		t.Fatalf("expected level-up message, got: %s", allText(r))
	}
	if sess.Parcours == nil || sess.Parcours.LevelIndex != 1 {
		t.Fatalf("parcours state = %+v, want level index 1", sess.Parcours)
	}
}

func TestParcoursEscapeBeatsAnswerValidation(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	_, sess := startParcours(t, eng)
	sess.PathScore = 3

	r, next := runTurn(t, eng, &sess, "menu")
	if next.State != dialogue.StateMainMenu {
		t.Fatalf("state = %q, want mainMenu", next.State)
	}
	if next.Parcours != nil {
		t.Fatal("parcours sub-state not cleared on escape")
	}
	if next.PathScore != 3 {
		t.Fatalf("path score = %d, want preserved 3", next.PathScore)
	}
	if r.Type != dialogue.TypeMenu {
		t.Fatalf("reply type = %q, want menu", r.Type)
	}
}

func TestParcoursWrongAnswerStillAdvances(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	r, sess := startParcours(t, eng)
	q := currentQuestion(t, allText(r))
	if q != "Comment dit-on 'chat' en anglais ?" {
		t.Fatalf("unexpected first question %q", q)
	}
	label := labelFor(t, allText(r), "dog")

	r, sess = runTurn(t, eng, &sess, label)
	if sess.PathScore != 0 {
		t.Fatalf("path score = %d, want 0 after wrong answer", sess.PathScore)
	}
	if sess.Parcours.QuestionIndex != 1 {
		t.Fatalf("question index = %d, want 1", sess.Parcours.QuestionIndex)
	}
	if !strings.Contains(allText(r), "cat") {
		t.Fatalf("expected the correct answer in feedback, got: %s", allText(r))
	}
}
