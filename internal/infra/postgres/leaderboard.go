package postgres

import (
	"context"
	"fmt"

	"fun-quiz/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Leaderboard stores entries in the leaderboard table. The serial id keeps
// insertion order for tie-breaking.
type Leaderboard struct {
	pool *pgxpool.Pool
}

func NewLeaderboard(pool *pgxpool.Pool) *Leaderboard {
	return &Leaderboard{pool: pool}
}

func (l *Leaderboard) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO leaderboard (name, score, total, category, created_at) VALUES ($1, $2, $3, $4, $5)`,
		entry.Name, entry.Score, entry.Total, entry.Category, entry.Time,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	entries := []domain.LeaderboardEntry{}
	if n <= 0 {
		return entries, nil
	}
	rows, err := l.pool.Query(ctx,
		`SELECT name, score, total, category, created_at FROM leaderboard ORDER BY score DESC, id ASC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Score, &e.Total, &e.Category, &e.Time); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
