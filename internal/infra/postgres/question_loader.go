package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"fun-quiz/internal/bank"
	"fun-quiz/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads question rows from Postgres and normalizes them like an upload.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT question, option1, option2, option3, option4, answer, COALESCE(category, '') FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var raw []bank.RawRecord
	for rows.Next() {
		var question, o1, o2, o3, o4, answer, category string
		if err := rows.Scan(&question, &o1, &o2, &o3, &o4, &answer, &category); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		raw = append(raw, bank.RawRecord{
			bank.ColQuestion: question,
			bank.ColOption1:  o1,
			bank.ColOption2:  o2,
			bank.ColOption3:  o3,
			bank.ColOption4:  o4,
			bank.ColAnswer:   answer,
			bank.ColCategory: category,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	questions, dropped := bank.Normalize(raw)
	if dropped > 0 {
		slog.Warn("dropped incomplete question rows", "count", dropped)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoValidQuestions
	}
	return questions, nil
}

// SaveQuestions appends questions to the table, e.g. to seed it from a CSV file.
func (l *QuestionLoader) SaveQuestions(ctx context.Context, questions []domain.Question) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, q := range questions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions (question, option1, option2, option3, option4, answer, category) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Answer, q.Category,
		); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	return tx.Commit(ctx)
}
