package dialogue

import (
	"context"
	"log/slog"
	"strconv"
)

// quizTurn drives the single-pass quiz: level selection first, then one
// question per turn until the bank is exhausted.
func (e *Engine) quizTurn(ctx context.Context, userID, input, lower string, s *Session) Reply {
	lang := e.lang(s)

	if isEscape(lower) {
		if s.State == StateQuizQuestion && s.Quiz != nil {
			e.recordScore(ctx, userID, "quiz:"+s.Quiz.QuizKey, s.Score)
		}
		return e.escapeToMenu(s)
	}

	if s.State == StateQuizLevelSelect {
		key, ok := levelFromToken(lower)
		if !ok {
			return reply(TypeQuizSetup, seg(TypeQuizSetup,
				e.text("quiz_level_invalid", lang, map[string]string{"levels": e.levelList(lang)})))
		}
		questions := e.catalog.Quizzes(lang, key)
		if len(questions) == 0 {
			s.State = StateMainMenu
			return reply(TypeError,
				seg(TypeError, e.text("no_questions_for_level", lang)),
				seg(TypeMenu, e.menuText(lang)))
		}
		s.State = StateQuizQuestion
		s.Score = 0
		s.Quiz = &QuizState{Level: lower, QuizKey: key}
		return reply(TypeQuizQuestion, e.askQuiz(s, lang))
	}

	// stateQuizQuestion from here on
	if s.Quiz == nil {
		s.State = StateMainMenu
		return reply(TypeError,
			seg(TypeError, e.text("internal_error", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}

	questions := e.catalog.Quizzes(lang, s.Quiz.QuizKey)
	if s.Quiz.Index >= len(questions) {
		return e.finishQuiz(ctx, userID, s, lang)
	}
	q := questions[s.Quiz.Index]

	selected, ok := resolveSelection(lower, q.Choices, s.Quiz.ChoicesOrder)
	if !ok {
		return reply(TypeQuizFeedback, seg(TypeQuizFeedback,
			e.text("invalid_answer", lang, map[string]string{"labels": labelSet(s.Quiz.ChoicesOrder)})))
	}

	answerIdx, err := q.ResolveAnswer()
	if err != nil {
		slog.Error("unresolvable quiz answer", "question", q.Question, "error", err)
		s.State = StateMainMenu
		s.Quiz = nil
		return reply(TypeError,
			seg(TypeError, e.text("internal_error", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}
	correct := q.Choices[answerIdx]

	var feedback Segment
	if selected == correct {
		s.Score++
		feedback = seg(TypeQuizFeedback, e.text("good_answer", lang))
	} else {
		feedback = seg(TypeQuizFeedback,
			e.text("bad_answer", lang, map[string]string{"answer": correct}))
	}

	s.Quiz.Index++
	if s.Quiz.Index >= len(questions) {
		end := e.finishQuiz(ctx, userID, s, lang)
		return reply(TypeQuizEnd, append([]Segment{feedback}, end.Segments...)...)
	}
	return reply(TypeQuizQuestion, feedback, e.askQuiz(s, lang))
}

// askQuiz renders the current question under a fresh label permutation
// and remembers it for the revision list.
func (e *Engine) askQuiz(s *Session, lang string) Segment {
	questions := e.catalog.Quizzes(lang, s.Quiz.QuizKey)
	q := questions[s.Quiz.Index]
	s.Quiz.ChoicesOrder = e.labelPermutation()
	s.AskedQuestions = append(s.AskedQuestions, q.Question)
	return seg(TypeQuizQuestion, renderChoices(q.Question, q.Choices, s.Quiz.ChoicesOrder))
}

func (e *Engine) finishQuiz(ctx context.Context, userID string, s *Session, lang string) Reply {
	score := s.Score
	e.recordScore(ctx, userID, "quiz:"+s.Quiz.QuizKey, score)
	s.State = StateMainMenu
	s.Quiz = nil
	return reply(TypeQuizEnd,
		seg(TypeQuizEnd, e.text("quiz_end", lang, map[string]string{"score": strconv.Itoa(score)})),
		seg(TypeMenu, e.menuText(lang)))
}
