package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fun-quiz/internal/bank"
	"fun-quiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionCache caches the loaded question set with a TTL to avoid repeated DB hits.
type QuestionCache struct {
	loader bank.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader bank.Loader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cached(c.clock()); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		now := c.clock()
		if questions, ok := c.cached(now); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.questions = questions
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) cached(now time.Time) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.questions == nil || !c.expiresAt.After(now) {
		return nil, false
	}
	return c.questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
