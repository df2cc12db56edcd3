package memory

import (
	"context"
	"sync"

	"fun-quiz/internal/domain"
)

// Leaderboard keeps entries in process memory. Scores are lost on restart.
type Leaderboard struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{}
}

func (l *Leaderboard) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *Leaderboard) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.RankTop(l.entries, n), nil
}

// Len reports how many entries were appended.
func (l *Leaderboard) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
