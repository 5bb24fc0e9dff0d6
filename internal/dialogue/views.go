package dialogue

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// progressionReply renders the persisted score report. Store failures
// degrade to an apology instead of failing the turn.
func (e *Engine) progressionReply(ctx context.Context, userID string, s *Session) Reply {
	lang := e.lang(s)
	if e.progress == nil {
		return reply(TypeProgression, seg(TypeProgression, e.text("progression_empty", lang)))
	}
	sum, err := e.progress.Summary(ctx, userID)
	if err != nil {
		slog.Error("failed to load progress summary", "user_id", userID, "error", err)
		s.State = StateMainMenu
		return reply(TypeError,
			seg(TypeError, e.text("internal_error", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}
	if len(sum.Quizzes) == 0 {
		return reply(TypeProgression, seg(TypeProgression, e.text("progression_empty", lang)))
	}

	var b strings.Builder
	b.WriteString(e.text("progression_header", lang,
		map[string]string{"total": strconv.Itoa(sum.TotalScore)}))
	keys := make([]string, 0, len(sum.Quizzes))
	for k := range sum.Quizzes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n• ")
		b.WriteString(k)
		b.WriteString(" : ")
		b.WriteString(strconv.Itoa(sum.Quizzes[k]))
	}
	b.WriteString("\n")
	b.WriteString(e.text("progression_footer", lang))
	return reply(TypeProgression, seg(TypeProgression, b.String()))
}

// progressionTurn: the report was already shown; any input goes back.
func (e *Engine) progressionTurn(ctx context.Context, userID, lower string, s *Session) Reply {
	return e.escapeToMenu(s)
}

// logsReply renders the user's five most recent grammar corrections.
func (e *Engine) logsReply(ctx context.Context, userID string, s *Session) Reply {
	lang := e.lang(s)
	if e.corrections == nil {
		return reply(TypeLogs, seg(TypeLogs, e.text("logs_empty", lang)))
	}
	entries, err := e.corrections.Recent(ctx, userID, 5)
	if err != nil {
		slog.Error("failed to load correction log", "user_id", userID, "error", err)
		s.State = StateMainMenu
		return reply(TypeError,
			seg(TypeError, e.text("internal_error", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}
	if len(entries) == 0 {
		return reply(TypeLogs, seg(TypeLogs, e.text("logs_empty", lang)))
	}

	var b strings.Builder
	b.WriteString(e.text("logs_header", lang))
	for _, entry := range entries {
		b.WriteString("\n• ")
		b.WriteString(entry.Original)
		b.WriteString(" → ")
		b.WriteString(entry.Corrected)
	}
	return reply(TypeLogs, seg(TypeLogs, b.String()))
}

func (e *Engine) logsTurn(ctx context.Context, userID, lower string, s *Session) Reply {
	return e.escapeToMenu(s)
}

// revisionReply lists every question the session has already asked.
// It runs inline from the main menu; the state does not change.
func (e *Engine) revisionReply(s *Session) Reply {
	lang := e.lang(s)
	if len(s.AskedQuestions) == 0 {
		return reply(TypeQuizSetup,
			seg(TypeQuizSetup, e.text("revision_empty", lang)),
			seg(TypeMenu, e.menuText(lang)))
	}
	var b strings.Builder
	b.WriteString(e.text("revision_header", lang))
	for i, q := range s.AskedQuestions {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(q)
	}
	return reply(TypeQuizSetup,
		seg(TypeQuizSetup, b.String()),
		seg(TypeMenu, e.menuText(lang)))
}
