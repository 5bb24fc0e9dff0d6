// Package progress persists quiz scores and grammar-correction history.
// Both a process-local store and a PostgreSQL-backed store are provided;
// the server picks one from its configuration.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/fennlabs/fennlingo/internal/dialogue"
)

// Memory keeps scores and corrections in process memory. It backs
// development setups without a database, and tests.
type Memory struct {
	mu          sync.RWMutex
	scores      map[string]map[string]int
	corrections map[string][]dialogue.CorrectionEntry
	now         func() time.Time
}

// NewMemory creates an empty in-memory progress store.
func NewMemory() *Memory {
	return &Memory{
		scores:      make(map[string]map[string]int),
		corrections: make(map[string][]dialogue.CorrectionEntry),
		now:         time.Now,
	}
}

// Record adds a finished run's score under its quiz key.
func (m *Memory) Record(_ context.Context, userID, quizKey string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scores[userID] == nil {
		m.scores[userID] = make(map[string]int)
	}
	m.scores[userID][quizKey] += score
	return nil
}

// Summary aggregates a user's recorded scores per quiz key.
func (m *Memory) Summary(_ context.Context, userID string) (dialogue.ProgressSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := dialogue.ProgressSummary{Quizzes: make(map[string]int)}
	for key, score := range m.scores[userID] {
		sum.Quizzes[key] = score
		sum.TotalScore += score
	}
	return sum, nil
}

// Append logs one grammar correction.
func (m *Memory) Append(_ context.Context, userID, original, corrected string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corrections[userID] = append(m.corrections[userID], dialogue.CorrectionEntry{
		Original:  original,
		Corrected: corrected,
		At:        m.now(),
	})
	return nil
}

// Recent returns the user's last n corrections in chronological order.
func (m *Memory) Recent(_ context.Context, userID string, n int) ([]dialogue.CorrectionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.corrections[userID]
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]dialogue.CorrectionEntry, len(entries))
	copy(out, entries)
	return out, nil
}
