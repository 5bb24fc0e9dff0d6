// Package dialogue implements the per-session conversation engine: the
// closed set of conversational states, the transitions between them,
// and the mode logic for quizzes, the timed challenge, the learning
// path, context browsing and grammar correction.
//
// The engine is stateless across turns: each call receives the prior
// session snapshot and returns the next one together with the reply
// segments. Persisting snapshots, and serializing concurrent turns for
// the same user, is the caller's job.
package dialogue

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/fennlabs/fennlingo/internal/content"
)

// Catalog is the read-only content surface the engine consumes.
type Catalog interface {
	Quizzes(lang, level string) []content.QuestionRecord
	ThemeSets() []*content.ThemeSet
	Text(id, lang string, params map[string]string) string
}

// Classifier predicts intent labels and language codes from raw text.
// Implementations must be pure and side-effect-free.
type Classifier interface {
	DetectLanguage(text string) string
	PredictIntent(text string) string
}

// ProgressSummary is a user's recorded scores, aggregated per quiz key.
type ProgressSummary struct {
	TotalScore int
	Quizzes    map[string]int
}

// ProgressStore records completed-mode scores and serves them back for
// the progression view. Failures are tolerated: a turn always completes
// even when a write is lost.
type ProgressStore interface {
	Record(ctx context.Context, userID, quizKey string, score int) error
	Summary(ctx context.Context, userID string) (ProgressSummary, error)
}

// CorrectionEntry is one logged grammar correction.
type CorrectionEntry struct {
	Original  string
	Corrected string
	At        time.Time
}

// CorrectionLog appends and tails a user's grammar corrections.
type CorrectionLog interface {
	Append(ctx context.Context, userID, original, corrected string) error
	Recent(ctx context.Context, userID string, n int) ([]CorrectionEntry, error)
}

// Turn is one inbound message with the caller-held session snapshot.
// A nil Session means first contact.
type Turn struct {
	UserID  string
	Input   string
	Session *Session
}

// EngineConfig holds the engine's injected dependencies. Rand and Now
// exist so tests can pin shuffles and the challenge clock.
type EngineConfig struct {
	Catalog     Catalog
	Classifier  Classifier
	Progress    ProgressStore
	Corrections CorrectionLog
	Rand        *rand.Rand
	Now         func() time.Time
}

// Engine is the dialogue router plus its mode engines.
type Engine struct {
	catalog     Catalog
	classifier  Classifier
	progress    ProgressStore
	corrections CorrectionLog
	rand        *rand.Rand
	now         func() time.Time
}

// NewEngine creates a dialogue engine.
func NewEngine(cfg EngineConfig) *Engine {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		catalog:     cfg.Catalog,
		classifier:  cfg.Classifier,
		progress:    cfg.Progress,
		corrections: cfg.Corrections,
		rand:        rng,
		now:         now,
	}
}

// ProcessTurn routes one inbound message to the handler for the
// session's state and returns the reply plus the next snapshot. User
// input never produces an error: every branch answers with text.
func (e *Engine) ProcessTurn(ctx context.Context, turn Turn) (Reply, Session) {
	sess := Session{State: StateInactive}
	if turn.Session != nil {
		sess = *turn.Session
	}

	slog.Info("processing turn",
		"user_id", turn.UserID,
		"state", sess.State,
		"text_len", len(turn.Input),
	)

	if !sess.State.Valid() {
		slog.Warn("unknown session state, resetting", "user_id", turn.UserID, "state", sess.State)
		sess = Session{State: StateInactive}
		return reply(TypeError, seg(TypeError, e.text("state_error", ""))), sess
	}

	input := strings.TrimSpace(turn.Input)
	lower := strings.ToLower(input)

	var r Reply
	switch sess.State {
	case StateInactive:
		r = e.inactiveTurn(lower, &sess)
	case StateWaitingLanguage:
		r = e.languageTurn(lower, &sess)
	case StateMainMenu:
		r = e.menuTurn(ctx, turn.UserID, input, lower, &sess)
	case StateQuizLevelSelect, StateQuizQuestion:
		r = e.quizTurn(ctx, turn.UserID, input, lower, &sess)
	case StateChallenge:
		r = e.challengeTurn(ctx, turn.UserID, input, lower, &sess)
	case StateParcours:
		r = e.parcoursTurn(ctx, turn.UserID, input, lower, &sess)
	case StateContext:
		r = e.contextTurn(input, lower, &sess)
	case StateCorrection:
		r = e.correctionTurn(ctx, turn.UserID, input, lower, &sess)
	case StateProgression:
		r = e.progressionTurn(ctx, turn.UserID, lower, &sess)
	case StateLogs:
		r = e.logsTurn(ctx, turn.UserID, lower, &sess)
	}
	return r, sess
}

// Activation greetings, matched as case-insensitive prefixes.
var greetings = []string{
	"salut fenn", "hello fenn", "coucou fenn", "hi fenn",
	"hey fenn", "bonjour fenn", "salam fenn",
}

func isGreeting(lower string) bool {
	for _, g := range greetings {
		if strings.HasPrefix(lower, g) {
			return true
		}
	}
	return false
}

// Universal escape tokens accepted in every mode state.
var escapeTokens = map[string]bool{
	"menu": true, "retour": true, "back": true, "exit": true, "quitter": true,
}

func isEscape(lower string) bool { return escapeTokens[lower] }

func (e *Engine) inactiveTurn(lower string, s *Session) Reply {
	if !isGreeting(lower) {
		return reply(TypeWelcome, seg(TypeWelcome, e.text("greet_prompt", s.Language)))
	}
	// Provisional language from the greeting itself, so prompts read
	// right until the user picks one explicitly.
	if e.classifier != nil {
		s.Language = e.classifier.DetectLanguage(lower)
	}
	s.State = StateWaitingLanguage
	return reply(TypeActivation, seg(TypeActivation, e.text("choose_language", "")))
}

var languageTokens = map[string]string{
	"fr": "fr", "français": "fr", "francais": "fr", "french": "fr",
	"en": "en", "anglais": "en", "english": "en",
	"dz": "dz", "ar": "dz", "darija": "dz", "arabe": "dz",
	"الدارجة": "dz", "العربية": "dz",
}

func (e *Engine) languageTurn(lower string, s *Session) Reply {
	lang, ok := languageTokens[lower]
	if !ok {
		return reply(TypeActivation, seg(TypeActivation, e.text("language_retry", s.Language)))
	}
	s.Language = lang
	s.State = StateMainMenu
	return reply(TypeMenu, seg(TypeMenu, e.menuText(lang)))
}

// menuChoices is the fixed keyword table of the main menu. The intent
// classifier backs it up for free-text phrasings.
var menuChoices = []struct {
	key    string
	tokens []string
}{
	{"quiz", []string{"1", "quiz", "كويز", "اختبار"}},
	{"parcours", []string{"2", "parcours", "learning path", "parcours d'apprentissage", "مسار التعلم", "مسار"}},
	{"context", []string{"3", "context", "contexte", "contextes", "سياق"}},
	{"correction", []string{"4", "grammar", "correction", "correction grammaticale", "saha7", "corrige", "تصحيح القواعد"}},
	{"progression", []string{"5", "progress", "progression", "progrès", "stats", "statistiques", "تقدم"}},
	{"logs", []string{"6", "logs", "journal", "سجلات"}},
	{"challenge", []string{"7", "challenge", "défi", "تحدي"}},
	{"revision", []string{"8", "review", "revision", "révision", "مراجعة"}},
	{"exit", []string{"9", "exit", "quitter", "خروج"}},
}

func (e *Engine) menuTurn(ctx context.Context, userID, input, lower string, s *Session) Reply {
	lang := e.lang(s)

	choice := ""
	for _, mc := range menuChoices {
		for _, tok := range mc.tokens {
			if lower == tok {
				choice = mc.key
				break
			}
		}
		if choice != "" {
			break
		}
	}
	if choice == "" && e.classifier != nil && lower != "" {
		choice = e.classifier.PredictIntent(input)
	}

	switch choice {
	case "quiz":
		s.State = StateQuizLevelSelect
		s.Score = 0
		return reply(TypeQuizSetup, seg(TypeQuizSetup,
			e.text("quiz_level_prompt", lang, map[string]string{"levels": e.levelList(lang)})))
	case "parcours":
		return e.startParcours(s)
	case "context":
		return e.startContext(s)
	case "correction":
		s.State = StateCorrection
		return reply(TypeCorrection, seg(TypeCorrection, e.text("correction_prompt", lang)))
	case "progression":
		s.State = StateProgression
		return e.progressionReply(ctx, userID, s)
	case "logs":
		s.State = StateLogs
		return e.logsReply(ctx, userID, s)
	case "challenge":
		s.State = StateChallenge
		s.ChallengeScore = 0
		s.Challenge = &ChallengeState{}
		return reply(TypeChallengeSelectLevel, seg(TypeChallengeSelectLevel,
			e.text("challenge_select_level", lang, map[string]string{"levels": e.levelList(lang)})))
	case "revision":
		return e.revisionReply(s)
	case "exit":
		s.State = StateInactive
		s.clearMode()
		return reply(TypeExit, seg(TypeExit, e.text("goodbye", lang)))
	}

	return reply(TypeMenu, seg(TypeMenu, e.menuText(lang)))
}

// escapeToMenu handles the universal escape tokens: back to the main
// menu, mode sub-state cleared, scores and language untouched.
func (e *Engine) escapeToMenu(s *Session) Reply {
	s.State = StateMainMenu
	s.clearMode()
	lang := e.lang(s)
	return reply(TypeMenu,
		seg(TypeMenu, e.text("menu_return", lang)),
		seg(TypeMenu, e.menuText(lang)))
}

func (e *Engine) menuText(lang string) string {
	var b strings.Builder
	b.WriteString(e.text("menu_title", lang))
	options := []string{
		"quiz_option", "parcours_option", "context_option", "correction_option",
		"progress_option", "logs_option", "challenge_option", "revision_option", "exit_option",
	}
	for i, id := range options {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(e.text(id, lang))
	}
	b.WriteString("\n")
	b.WriteString(e.text("menu_footer", lang))
	return b.String()
}

// Internal level keys in learning order.
var levelKeys = []string{"beginner", "intermediate", "advanced"}

// levelTokens maps every per-language level word to its internal key.
// English tokens are accepted for any session language.
var levelTokens = map[string]string{
	"débutant": "beginner", "debutant": "beginner", "beginner": "beginner",
	"moubtadi2": "beginner", "مبتدئ": "beginner",
	"intermédiaire": "intermediate", "intermediaire": "intermediate", "intermediate": "intermediate",
	"moutawasset": "intermediate", "متوسط": "intermediate",
	"avancé": "advanced", "avance": "advanced", "advanced": "advanced",
	"moutakadem": "advanced", "متقدم": "advanced",
}

func levelFromToken(lower string) (string, bool) {
	key, ok := levelTokens[lower]
	return key, ok
}

func (e *Engine) levelLabel(key, lang string) string {
	return e.text("level_"+key, lang)
}

func (e *Engine) levelList(lang string) string {
	labels := make([]string, len(levelKeys))
	for i, key := range levelKeys {
		labels[i] = e.levelLabel(key, lang)
	}
	return strings.Join(labels, ", ")
}

var quizLabels = []string{"a", "b", "c", "d"}

// labelPermutation returns a fresh random ordering of the answer labels.
func (e *Engine) labelPermutation() []string {
	perm := e.rand.Perm(len(quizLabels))
	order := make([]string, len(quizLabels))
	for i, p := range perm {
		order[i] = quizLabels[p]
	}
	return order
}

// renderChoices lays out choices under the given label order: line i
// shows label order[i] next to choice i.
func renderChoices(question string, choices, order []string) string {
	var b strings.Builder
	b.WriteString("❓ ")
	b.WriteString(question)
	for i, c := range choices {
		label := quizLabels[i%len(quizLabels)]
		if i < len(order) {
			label = order[i]
		}
		b.WriteString("\n   ")
		b.WriteString(label)
		b.WriteString(") ")
		b.WriteString(c)
	}
	return b.String()
}

// resolveSelection maps raw user input to the choice it designates,
// either via a shuffled label or the literal choice text.
func resolveSelection(lower string, choices, order []string) (string, bool) {
	for i, label := range order {
		if lower == label && i < len(choices) {
			return choices[i], true
		}
	}
	for _, c := range choices {
		if strings.EqualFold(strings.TrimSpace(c), lower) {
			return c, true
		}
	}
	return "", false
}

func labelSet(order []string) string {
	return strings.ToUpper(strings.Join(order, ", "))
}

func (e *Engine) lang(s *Session) string {
	if s.Language != "" {
		return s.Language
	}
	return "fr"
}

func (e *Engine) text(id, lang string, params ...map[string]string) string {
	var p map[string]string
	if len(params) > 0 {
		p = params[0]
	}
	if lang == "" {
		lang = "fr"
	}
	return e.catalog.Text(id, lang, p)
}

// recordScore persists a finished mode's score. A store failure is
// logged and swallowed so the reply path never blocks on it.
func (e *Engine) recordScore(ctx context.Context, userID, key string, score int) {
	if e.progress == nil {
		return
	}
	if err := e.progress.Record(ctx, userID, key, score); err != nil {
		slog.Error("failed to record score", "user_id", userID, "key", key, "error", err)
	}
}
