package dialogue

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/fennlabs/fennlingo/internal/content"
)

// challengeWindow is the time budget for a whole run, measured from the
// moment the first question is shown.
const challengeWindow = 30 * time.Second

// challengeSize caps how many questions one run samples from the bank.
const challengeSize = 5

// challengeTurn drives the timed challenge: a sampled run of questions
// under fixed labels, where a wrong answer or a blown clock ends the
// run immediately with the score accumulated so far.
func (e *Engine) challengeTurn(ctx context.Context, userID, input, lower string, s *Session) Reply {
	lang := e.lang(s)

	if isEscape(lower) {
		if s.Challenge != nil && len(s.Challenge.Questions) > 0 {
			e.recordScore(ctx, userID, "challenge:"+s.Challenge.Level, s.ChallengeScore)
		}
		return e.escapeToMenu(s)
	}

	if s.Challenge == nil {
		s.Challenge = &ChallengeState{}
	}

	if len(s.Challenge.Questions) == 0 {
		key, ok := levelFromToken(lower)
		if !ok {
			return reply(TypeChallengeSelectLevel, seg(TypeChallengeSelectLevel,
				e.text("challenge_select_level", lang, map[string]string{"levels": e.levelList(lang)})))
		}
		bank := e.catalog.Quizzes(lang, key)
		if len(bank) == 0 {
			s.State = StateMainMenu
			s.Challenge = nil
			return reply(TypeError,
				seg(TypeError, e.text("no_questions_for_level", lang)),
				seg(TypeMenu, e.menuText(lang)))
		}
		questions := e.sampleChallenge(bank)
		if len(questions) == 0 {
			s.State = StateMainMenu
			s.Challenge = nil
			return reply(TypeError,
				seg(TypeError, e.text("no_questions_for_level", lang)),
				seg(TypeMenu, e.menuText(lang)))
		}
		s.Challenge.Level = key
		s.Challenge.Questions = questions
		s.Challenge.StartedAt = e.now()
		s.ChallengeScore = 0
		return reply(TypeChallengeQuestion, e.askChallenge(s))
	}

	q := s.Challenge.Questions[s.Challenge.Index]
	total := len(s.Challenge.Questions)

	if e.now().Sub(s.Challenge.StartedAt) > challengeWindow {
		return e.endChallenge(ctx, userID, s, lang, "challenge_timeout", q.Answer)
	}

	selected, ok := resolveSelection(lower, q.Choices, quizLabels[:len(q.Choices)])
	if !ok {
		return reply(TypeChallengeQuestion, seg(TypeChallengeQuestion,
			e.text("invalid_answer", lang, map[string]string{"labels": labelSet(quizLabels[:len(q.Choices)])})))
	}
	if selected != q.Answer {
		return e.endChallenge(ctx, userID, s, lang, "challenge_failed", q.Answer)
	}

	s.ChallengeScore++
	s.Challenge.Index++
	if s.Challenge.Index >= total {
		e.recordScore(ctx, userID, "challenge:"+s.Challenge.Level, s.ChallengeScore)
		score := s.ChallengeScore
		s.State = StateMainMenu
		s.Challenge = nil
		return reply(TypeChallengeEnd,
			seg(TypeChallengeEnd, e.text("challenge_end", lang, map[string]string{
				"score": strconv.Itoa(score),
				"total": strconv.Itoa(total),
			})),
			seg(TypeMenu, e.menuText(lang)))
	}
	return reply(TypeChallengeQuestion,
		seg(TypeQuizFeedback, e.text("good_answer", lang)),
		e.askChallenge(s))
}

// sampleChallenge snapshots up to challengeSize random questions so a
// run is stable even if the catalog is reloaded mid-game. Records whose
// answer does not resolve against their choices are skipped.
func (e *Engine) sampleChallenge(bank []content.QuestionRecord) []ChallengeQuestion {
	sample := make([]ChallengeQuestion, 0, challengeSize)
	for _, i := range e.rand.Perm(len(bank)) {
		q := bank[i]
		idx, err := q.ResolveAnswer()
		if err != nil {
			slog.Warn("skipping unresolvable challenge question", "question", q.Question, "error", err)
			continue
		}
		sample = append(sample, ChallengeQuestion{
			Question: q.Question,
			Choices:  q.Choices,
			Answer:   q.Choices[idx],
		})
		if len(sample) == challengeSize {
			break
		}
	}
	return sample
}

// askChallenge renders the current question under fixed labels. The run
// clock is armed once at start, not per question.
func (e *Engine) askChallenge(s *Session) Segment {
	q := s.Challenge.Questions[s.Challenge.Index]
	s.AskedQuestions = append(s.AskedQuestions, q.Question)
	return seg(TypeChallengeQuestion, renderChoices(q.Question, q.Choices, quizLabels[:len(q.Choices)]))
}

// endChallenge closes a run early (timeout or wrong answer), reporting
// the score accumulated so far.
func (e *Engine) endChallenge(ctx context.Context, userID string, s *Session, lang, reason, answer string) Reply {
	total := len(s.Challenge.Questions)
	score := s.ChallengeScore
	e.recordScore(ctx, userID, "challenge:"+s.Challenge.Level, score)
	s.State = StateMainMenu
	s.Challenge = nil
	return reply(TypeChallengeEnd,
		seg(TypeChallengeEnd, e.text(reason, lang, map[string]string{
			"answer": answer,
			"score":  strconv.Itoa(score),
			"total":  strconv.Itoa(total),
		})),
		seg(TypeMenu, e.menuText(lang)))
}
