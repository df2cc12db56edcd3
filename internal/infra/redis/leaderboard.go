package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fun-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// LeaderboardKey is the Redis list holding entries in insertion order.
const LeaderboardKey = "quiz:leaderboard"

// Leaderboard appends JSON-encoded entries to a Redis list. RPUSH is atomic,
// so unlike the CSV store concurrent writers do not lose entries.
type Leaderboard struct {
	client *redis.Client
	key    string
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, key: LeaderboardKey}
}

func (l *Leaderboard) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := l.client.RPush(ctx, l.key, raw).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	values, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(values))
	for _, v := range values {
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			slog.Warn("skipping corrupt leaderboard entry", "key", l.key, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return domain.RankTop(entries, n), nil
}
