package dialogue

// Reply segment types on the wire. Transports pass these through
// untouched so clients can style each segment.
const (
	TypeWelcome               = "welcome"
	TypeActivation            = "activation"
	TypeMenu                  = "menu"
	TypeExit                  = "exit"
	TypeError                 = "error"
	TypeQuizSetup             = "quiz_setup"
	TypeQuizQuestion          = "quiz_question"
	TypeQuizFeedback          = "quiz_feedback"
	TypeQuizEnd               = "quiz_end"
	TypeChallengeSelectLevel  = "challenge_select_level"
	TypeChallengeQuestion     = "challenge_question"
	TypeChallengeEnd          = "challenge_end"
	TypeParcours              = "parcours"
	TypeParcoursQuestion      = "parcours_question"
	TypeParcoursFeedback      = "parcours_feedback"
	TypeParcoursInfo          = "parcours_info"
	TypeParcoursEnd           = "parcours_end"
	TypeContextIntro          = "context_intro"
	TypeContextList           = "context_list"
	TypeContextTheme          = "context_theme"
	TypeContextError          = "context_error"
	TypeCorrection            = "correction"
	TypeCorrectionExplanation = "correction_explanation"
	TypeProgression           = "progression"
	TypeLogs                  = "logs"
)

// Segment is one piece of a reply.
type Segment struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Reply is the ordered set of segments produced by one turn. Type
// describes the turn as a whole; by convention it is the type of the
// segment that carries the turn's outcome.
type Reply struct {
	Segments []Segment `json:"messages"`
	Type     string    `json:"type"`
}

func reply(typ string, segments ...Segment) Reply {
	return Reply{Segments: segments, Type: typ}
}

func seg(typ, text string) Segment {
	return Segment{Text: text, Type: typ}
}
