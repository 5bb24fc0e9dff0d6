package dialogue

import "time"

// State is the session's conversational mode. The set is closed: any
// value outside it is treated as corruption and reset to StateInactive.
type State string

const (
	StateInactive        State = "inactive"
	StateWaitingLanguage State = "waitingLanguage"
	StateMainMenu        State = "mainMenu"
	StateQuizLevelSelect State = "quizLevelSelect"
	StateQuizQuestion    State = "quizQuestion"
	StateContext         State = "context"
	StateCorrection      State = "correction"
	StateProgression     State = "progression"
	StateLogs            State = "logs"
	StateChallenge       State = "challenge"
	StateParcours        State = "parcours"
)

var validStates = map[State]bool{
	StateInactive:        true,
	StateWaitingLanguage: true,
	StateMainMenu:        true,
	StateQuizLevelSelect: true,
	StateQuizQuestion:    true,
	StateContext:         true,
	StateCorrection:      true,
	StateProgression:     true,
	StateLogs:            true,
	StateChallenge:       true,
	StateParcours:        true,
}

// Valid reports whether s belongs to the closed state set.
func (s State) Valid() bool { return validStates[s] }

// Session is the whole conversational memory for one user. It is the
// unit the caller persists between turns; the engine keeps no state of
// its own outside it. All fields round-trip through JSON unchanged.
//
// The three score counters live at the top level so that leaving a mode
// via an escape token never erases an accumulated score; positional
// sub-state lives in the mode structs and is cleared on exit.
type Session struct {
	State    State  `json:"state"`
	Language string `json:"language,omitempty"`

	Score          int      `json:"score,omitempty"`
	ChallengeScore int      `json:"challenge_score,omitempty"`
	PathScore      int      `json:"path_score,omitempty"`
	AskedQuestions []string `json:"asked_questions,omitempty"`

	Quiz      *QuizState      `json:"quiz,omitempty"`
	Challenge *ChallengeState `json:"challenge,omitempty"`
	Parcours  *ParcoursState  `json:"parcours,omitempty"`
	Context   *ContextState   `json:"context,omitempty"`
}

// QuizState is the single-pass quiz position.
type QuizState struct {
	Level        string   `json:"level"`    // token as the user typed it
	QuizKey      string   `json:"quiz_key"` // internal level key
	Index        int      `json:"index"`
	ChoicesOrder []string `json:"choices_order,omitempty"` // label permutation for the current question
}

// ChallengeState is the timed challenge position. Questions are a
// sampled copy so the run survives catalog iteration-order changes.
type ChallengeState struct {
	Level     string            `json:"level,omitempty"`
	Questions []ChallengeQuestion `json:"questions,omitempty"`
	Index     int               `json:"index"`
	StartedAt time.Time         `json:"started_at,omitzero"`
}

// ChallengeQuestion is the snapshot of one sampled question.
type ChallengeQuestion struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

// ParcoursState is the learning-path position across the three levels.
type ParcoursState struct {
	Levels        []string   `json:"levels"`
	LevelIndex    int        `json:"level_index"`
	QuestionIndex int        `json:"question_index"`
	ChoicesOrders [][]string `json:"choices_orders,omitempty"` // one label permutation per question of the current level
}

// ContextState remembers the theme keys surfaced for numeric selection.
type ContextState struct {
	AvailableThemes []string `json:"available_themes"`
}

// clearMode drops every mode's positional sub-state. Scores and the
// language are deliberately left alone.
func (s *Session) clearMode() {
	s.Quiz = nil
	s.Challenge = nil
	s.Parcours = nil
	s.Context = nil
}
