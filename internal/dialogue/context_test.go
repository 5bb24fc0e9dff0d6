package dialogue_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/fennlabs/fennlingo/internal/classify"
	"github.com/fennlabs/fennlingo/internal/content"
	"github.com/fennlabs/fennlingo/internal/dialogue"
)

func startContext(t *testing.T, eng *dialogue.Engine) (dialogue.Reply, dialogue.Session) {
	t.Helper()
	sess := menuSession()
	r, sess := runTurn(t, eng, &sess, "3")
	if sess.State != dialogue.StateContext {
		t.Fatalf("state = %q, want context", sess.State)
	}
	return r, sess
}

func TestContextListsThemesInCatalogOrder(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	r, sess := startContext(t, eng)
	text := allText(r)
	first := strings.Index(text, "Journée de l'Indépendance")
	second := strings.Index(text, "Les pronoms personnels")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("theme list order wrong:\n%s", text)
	}
	if sess.Context == nil || len(sess.Context.AvailableThemes) != 2 {
		t.Fatalf("context state = %+v", sess.Context)
	}
}

func TestContextSelectByNumber(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	_, sess := startContext(t, eng)
	r, next := runTurn(t, eng, &sess, "1")
	if next.State != dialogue.StateContext {
		t.Fatalf("state = %q, want context (browser stays open)", next.State)
	}
	if !strings.Contains(allText(r), "5 juillet 1962") {
		t.Fatalf("summary not rendered: %s", allText(r))
	}
}

func TestContextFuzzyMatching(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // substring of the rendered theme
	}{
		{"exact key", "independence_day", "5 juillet 1962"},
		{"exact title", "Journée de l'Indépendance", "5 juillet 1962"},
		{"title without diacritics", "journee de l'independance", "5 juillet 1962"},
		{"substring of title", "indépendance", "5 juillet 1962"},
		{"key prefix", "independence", "5 juillet 1962"},
		{"vocab theme by title", "les pronoms personnels", "je : I"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, _ := newTestEngine(t, nil)
			_, sess := startContext(t, eng)
			r, _ := runTurn(t, eng, &sess, tt.input)
			if r.Type != dialogue.TypeContextTheme {
				t.Fatalf("reply type = %q, want context_theme (text: %s)", r.Type, allText(r))
			}
			if !strings.Contains(allText(r), tt.want) {
				t.Fatalf("rendered theme missing %q:\n%s", tt.want, allText(r))
			}
		})
	}
}

func TestContextEarlierDatasetWins(t *testing.T) {
	// A title-substring match in the first dataset must beat an exact
	// key in the second one.
	sets := []*content.ThemeSet{
		content.NewThemeSet("main",
			[]string{"food"},
			map[string]content.Node{
				"food": {Title: "La cuisine algérienne", Summary: "Couscous, chorba, makroud."},
			}),
		content.NewThemeSet("extra",
			[]string{"cuisine"},
			map[string]content.Node{
				"cuisine": {Title: "Cuisine", Summary: "Autre dataset."},
			}),
	}
	eng := dialogue.NewEngine(dialogue.EngineConfig{
		Catalog:    content.NewStaticCatalog(nil, sets, nil),
		Classifier: classify.Keyword{},
		Rand:       rand.New(rand.NewSource(7)),
	})

	_, sess := startContext(t, eng)
	r, _ := runTurn(t, eng, &sess, "cuisine")
	if r.Type != dialogue.TypeContextTheme {
		t.Fatalf("reply type = %q, want context_theme (text: %s)", r.Type, allText(r))
	}
	if !strings.Contains(allText(r), "Couscous") {
		t.Fatalf("expected the first dataset's theme, got:\n%s", allText(r))
	}
}

func TestContextUnknownTheme(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	_, sess := startContext(t, eng)
	r, next := runTurn(t, eng, &sess, "astrophysique")
	if r.Type != dialogue.TypeContextError {
		t.Fatalf("reply type = %q, want context_error", r.Type)
	}
	if next.State != dialogue.StateContext {
		t.Fatalf("state = %q, want context unchanged", next.State)
	}
}

func TestContextNumberOutOfRange(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	_, sess := startContext(t, eng)
	r, _ := runTurn(t, eng, &sess, "99")
	if r.Type != dialogue.TypeContextError {
		t.Fatalf("reply type = %q, want context_error", r.Type)
	}
}

func TestContextEscape(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)

	_, sess := startContext(t, eng)
	_, next := runTurn(t, eng, &sess, "retour")
	if next.State != dialogue.StateMainMenu {
		t.Fatalf("state = %q, want mainMenu", next.State)
	}
	if next.Context != nil {
		t.Fatal("context sub-state not cleared on escape")
	}
}
