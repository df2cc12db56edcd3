package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"fun-quiz/internal/bank"
	"fun-quiz/internal/config"
	pgstore "fun-quiz/internal/infra/postgres"
	pgmigrations "fun-quiz/internal/infra/postgres/migrations"
	redisstore "fun-quiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations and optionally seeds questions.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "CSV question file to insert after migrating")
	return cmd
}

func runMigrations(ctx context.Context, configPath, seedFile string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	if seedFile == "" {
		return nil
	}
	return seedQuestions(ctx, cfg, seedFile)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		slog.Info("database is up to date")
		return nil
	}
	slog.Info("migrations applied", "group", group.String())
	return nil
}

func seedQuestions(ctx context.Context, cfg config.Config, path string) error {
	questions, err := bank.NewFileLoader(path).LoadQuestions(ctx)
	if err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	loader := pgstore.NewQuestionLoader(pool)
	if err := loader.SaveQuestions(ctx, questions); err != nil {
		return err
	}
	slog.Info("questions seeded", "count", len(questions), "file", path)
	return invalidateQuestionCache(ctx, cfg, loader)
}

// invalidateQuestionCache drops the Redis copy of the question set so the next
// server start reads the seeded rows.
func invalidateQuestionCache(ctx context.Context, cfg config.Config, loader bank.Loader) error {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	ttl := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	if err := redisstore.NewQuestionCache(client, loader, ttl).Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate question cache: %w", err)
	}
	slog.Info("question cache invalidated", "key", redisstore.QuestionsKey)
	return nil
}
