package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"fun-quiz/internal/bank"
	"fun-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionsKey holds the cached question set as a JSON array.
const QuestionsKey = "quiz:questions"

// QuestionCache caches the question set in Redis and falls back to a loader on cache miss.
type QuestionCache struct {
	client *redis.Client
	loader bank.Loader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader bank.Loader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cached(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(QuestionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.cached(ctx); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, QuestionsKey, raw, c.ttlWithJitter()).Err(); err != nil {
			slog.Warn("caching questions in redis failed", "error", err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached set, e.g. after the backing store changed.
func (c *QuestionCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, QuestionsKey).Err()
}

func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, QuestionsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
