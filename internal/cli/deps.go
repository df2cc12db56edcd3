package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fun-quiz/internal/app"
	"fun-quiz/internal/bank"
	"fun-quiz/internal/config"
	"fun-quiz/internal/domain"
	"fun-quiz/internal/infra/csvfile"
	"fun-quiz/internal/infra/memory"
	pgstore "fun-quiz/internal/infra/postgres"
	redisstore "fun-quiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// deps holds the wired infrastructure for one command invocation.
type deps struct {
	cfg     config.Config
	redis   *redis.Client
	pool    *pgxpool.Pool
	service *app.QuizService
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if logLevel == "" && cfg.Log.Level != "" {
		setupLogging(cfg.Log.Level)
	}
	return cfg, nil
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{cfg: cfg}

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
	}

	questions, err := bank.Load(ctx, questionLoader(d))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("load questions: %w", err)
	}

	board, err := leaderboardStore(d)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.service = app.NewQuizService(questions, board)
	slog.Info("quiz ready", "questions", questions.Len(), "leaderboard", cfg.Leaderboard.Backend)
	return d, nil
}

// questionLoader picks the question source: Postgres, then a CSV file, then the
// built-in samples. Redis, when configured, caches whichever source is used.
func questionLoader(d *deps) bank.Loader {
	var loader bank.Loader = memory.NewStaticLoader(memory.SampleQuestions())
	switch {
	case d.pool != nil:
		loader = pgstore.NewQuestionLoader(d.pool)
	case d.cfg.Quiz.QuestionsFile != "":
		loader = bank.NewFileLoader(d.cfg.Quiz.QuestionsFile)
	}

	ttl := config.TTLDuration(d.cfg.Quiz.CacheTTL, 10*time.Minute)
	if d.redis != nil {
		return redisstore.NewQuestionCache(d.redis, loader, ttl)
	}
	return memory.NewQuestionCache(loader, ttl)
}

func leaderboardStore(d *deps) (app.LeaderboardStore, error) {
	switch d.cfg.Leaderboard.Backend {
	case "", config.BackendCSV:
		path := d.cfg.Leaderboard.Path
		if path == "" {
			path = "quiz_leaderboard.csv"
		}
		return csvfile.NewLeaderboard(path), nil
	case config.BackendMemory:
		return memory.NewLeaderboard(), nil
	case config.BackendRedis:
		if d.redis == nil {
			return nil, fmt.Errorf("leaderboard backend redis requires redis.addr")
		}
		return redisstore.NewLeaderboard(d.redis), nil
	case config.BackendPostgres:
		if d.pool == nil {
			return nil, fmt.Errorf("leaderboard backend postgres requires postgres.url")
		}
		return pgstore.NewLeaderboard(d.pool), nil
	}
	return nil, fmt.Errorf("unknown leaderboard backend %q", d.cfg.Leaderboard.Backend)
}

// quizDefaults turns the quiz section of the config into run settings.
func quizDefaults(cfg config.Config) domain.QuizConfiguration {
	category := cfg.Quiz.Category
	if category == "" {
		category = domain.AllCategories
	}
	return domain.QuizConfiguration{
		Category:         category,
		QuestionCount:    cfg.Quiz.QuestionCount,
		ShowFeedback:     cfg.ShowFeedback(),
		TimeLimitSeconds: cfg.Quiz.TimeLimitSeconds,
	}
}
