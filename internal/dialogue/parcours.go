package dialogue

import (
	"context"
	"log/slog"
	"strconv"
)

// startParcours opens the learning path at the first level. The path
// walks every level in learning order with one cumulative score.
func (e *Engine) startParcours(s *Session) Reply {
	lang := e.lang(s)
	bank := e.catalog.Quizzes(lang, levelKeys[0])
	if len(bank) == 0 {
		s.State = StateMainMenu
		return reply(TypeError,
			seg(TypeError, e.text("no_questions_for_level", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}
	s.State = StateParcours
	s.PathScore = 0
	s.Parcours = &ParcoursState{Levels: levelKeys}
	s.Parcours.ChoicesOrders = e.levelPermutations(len(bank))
	return reply(TypeParcours,
		seg(TypeParcours, e.text("parcours_start", lang,
			map[string]string{"level": e.levelLabel(levelKeys[0], lang)})),
		e.askParcours(s, lang))
}

func (e *Engine) parcoursTurn(ctx context.Context, userID, input, lower string, s *Session) Reply {
	lang := e.lang(s)

	// Escape outranks answer validation: 'menu' is never read as an answer.
	if isEscape(lower) {
		return e.escapeToMenu(s)
	}

	p := s.Parcours
	if p == nil || p.LevelIndex >= len(p.Levels) {
		s.State = StateMainMenu
		s.Parcours = nil
		return reply(TypeError,
			seg(TypeError, e.text("internal_error", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}

	bank := e.catalog.Quizzes(lang, p.Levels[p.LevelIndex])
	if p.QuestionIndex >= len(bank) {
		return e.advanceParcoursLevel(ctx, userID, s, lang, nil)
	}
	q := bank[p.QuestionIndex]

	order := quizLabels[:len(q.Choices)]
	if p.QuestionIndex < len(p.ChoicesOrders) {
		order = p.ChoicesOrders[p.QuestionIndex]
	}
	selected, ok := resolveSelection(lower, q.Choices, order)
	if !ok {
		return reply(TypeParcoursFeedback, seg(TypeParcoursFeedback,
			e.text("invalid_answer", lang, map[string]string{"labels": labelSet(order)})))
	}

	answerIdx, err := q.ResolveAnswer()
	if err != nil {
		slog.Error("unresolvable parcours answer", "question", q.Question, "error", err)
		s.State = StateMainMenu
		s.Parcours = nil
		return reply(TypeError,
			seg(TypeError, e.text("internal_error", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}
	correct := q.Choices[answerIdx]

	var feedback Segment
	if selected == correct {
		s.PathScore++
		feedback = seg(TypeParcoursFeedback, e.text("good_answer", lang))
	} else {
		feedback = seg(TypeParcoursFeedback,
			e.text("bad_answer", lang, map[string]string{"answer": correct}))
	}

	p.QuestionIndex++
	if p.QuestionIndex >= len(bank) {
		return e.advanceParcoursLevel(ctx, userID, s, lang, &feedback)
	}
	return reply(TypeParcoursQuestion, feedback, e.askParcours(s, lang))
}

// advanceParcoursLevel moves to the next level, or closes the path when
// the last level is done or the next one has no questions.
func (e *Engine) advanceParcoursLevel(ctx context.Context, userID string, s *Session, lang string, feedback *Segment) Reply {
	p := s.Parcours
	p.LevelIndex++
	p.QuestionIndex = 0

	var lead []Segment
	if feedback != nil {
		lead = append(lead, *feedback)
	}

	if p.LevelIndex < len(p.Levels) {
		level := p.Levels[p.LevelIndex]
		bank := e.catalog.Quizzes(lang, level)
		if len(bank) > 0 {
			p.ChoicesOrders = e.levelPermutations(len(bank))
			lead = append(lead,
				seg(TypeParcoursInfo, e.text("level_completed_next", lang,
					map[string]string{"level": e.levelLabel(level, lang)})),
				e.askParcours(s, lang))
			return reply(TypeParcoursQuestion, lead...)
		}
		slog.Warn("learning path level has no questions, closing path", "level", level, "lang", lang)
		lead = append(lead, seg(TypeParcoursInfo, e.text("no_questions_for_level", lang)))
	}

	score := s.PathScore
	e.recordScore(ctx, userID, "parcours", score)
	s.State = StateMainMenu
	s.Parcours = nil
	lead = append(lead,
		seg(TypeParcoursEnd, e.text("parcours_end", lang, map[string]string{"score": strconv.Itoa(score)})),
		seg(TypeMenu, e.menuText(lang)))
	return reply(TypeParcoursEnd, lead...)
}

// askParcours renders the current path question with its level banner.
func (e *Engine) askParcours(s *Session, lang string) Segment {
	p := s.Parcours
	bank := e.catalog.Quizzes(lang, p.Levels[p.LevelIndex])
	q := bank[p.QuestionIndex]
	order := quizLabels[:len(q.Choices)]
	if p.QuestionIndex < len(p.ChoicesOrders) {
		order = p.ChoicesOrders[p.QuestionIndex]
	}
	s.AskedQuestions = append(s.AskedQuestions, q.Question)
	intro := e.text("level_question_intro", lang, map[string]string{
		"level": e.levelLabel(p.Levels[p.LevelIndex], lang),
		"num":   strconv.Itoa(p.QuestionIndex + 1),
	})
	return seg(TypeParcoursQuestion, intro+"\n"+renderChoices(q.Question, q.Choices, order))
}

// levelPermutations draws one label permutation per question of a level
// up front, so replays within the level keep the same layout.
func (e *Engine) levelPermutations(n int) [][]string {
	orders := make([][]string, n)
	for i := range orders {
		orders[i] = e.labelPermutation()
	}
	return orders
}
