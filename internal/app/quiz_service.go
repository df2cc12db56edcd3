package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"fun-quiz/internal/bank"
	"fun-quiz/internal/domain"
)

// LeaderboardStore abstracts where finished runs are recorded (CSV file, Redis, Postgres, memory).
type LeaderboardStore interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// QuizService contains the quiz use cases around a Run.
type QuizService struct {
	bank  *bank.Bank
	board LeaderboardStore
	now   func() time.Time
}

func NewQuizService(questions *bank.Bank, board LeaderboardStore) *QuizService {
	return &QuizService{bank: questions, board: board, now: time.Now}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(questions *bank.Bank, board LeaderboardStore, now func() time.Time) *QuizService {
	return &QuizService{bank: questions, board: board, now: now}
}

// NewRun creates a run that uses the service clock.
func (s *QuizService) NewRun(playerName string) *Run {
	run := NewRun(playerName)
	run.now = s.now
	return run
}

// Categories lists the selectable categories of the current bank.
func (s *QuizService) Categories() []string {
	return s.bank.Categories()
}

// QuestionCount is the size of the current bank.
func (s *QuizService) QuestionCount() int {
	return s.bank.Len()
}

// Upload replaces the question bank from CSV. Runs prepared from the old bank
// are invalidated on their next action.
func (s *QuizService) Upload(_ context.Context, r io.Reader) (bank.Stats, error) {
	stats, err := s.bank.ReplaceFromCSV(r)
	if err != nil {
		slog.Warn("question upload rejected", "error", err, "dropped", stats.Dropped)
	}
	return stats, err
}

// Setup draws the run's questions from the current bank, refreshing it from
// its source first. A failed refresh keeps the questions already loaded.
func (s *QuizService) Setup(ctx context.Context, run *Run, cfg domain.QuizConfiguration) error {
	if run.State() != StateNotStarted {
		run.Reset()
	}
	if _, err := s.bank.Refresh(ctx); err != nil {
		slog.Warn("question refresh failed, using loaded questions", "error", err)
	}
	pool, version := s.bank.Snapshot()
	if err := run.SetupFromBank(pool, version, cfg); err != nil {
		slog.Warn("quiz setup failed", "run", run.ID, "category", cfg.Category, "error", err)
		return err
	}
	slog.Debug("quiz set up", "run", run.ID, "category", run.Config.Category, "questions", run.Total())
	return nil
}

// Start begins the run if its selection still belongs to the current bank.
func (s *QuizService) Start(_ context.Context, run *Run) error {
	if err := s.checkBank(run); err != nil {
		return err
	}
	if err := run.Start(); err != nil {
		return err
	}
	slog.Info("quiz started", "run", run.ID, "player", run.PlayerName, "questions", run.Total())
	return nil
}

// Submit forwards an answer to the run. Ignored events return applied=false.
func (s *QuizService) Submit(_ context.Context, run *Run, index int, option string) (domain.AnswerRecord, bool, error) {
	if err := s.checkBank(run); err != nil {
		return domain.AnswerRecord{}, false, err
	}
	rec, applied := run.Submit(index, option)
	return rec, applied, nil
}

func (s *QuizService) Skip(_ context.Context, run *Run, index int) (domain.AnswerRecord, bool, error) {
	if err := s.checkBank(run); err != nil {
		return domain.AnswerRecord{}, false, err
	}
	rec, applied := run.Skip(index)
	return rec, applied, nil
}

// Tick applies a pending timeout, if any.
func (s *QuizService) Tick(_ context.Context, run *Run) (domain.AnswerRecord, bool, error) {
	if err := s.checkBank(run); err != nil {
		return domain.AnswerRecord{}, false, err
	}
	rec, fired := run.Tick()
	if fired {
		slog.Debug("question timed out", "run", run.ID, "question", rec.Question)
	}
	return rec, fired, nil
}

func (s *QuizService) Next(_ context.Context, run *Run) error {
	if err := s.checkBank(run); err != nil {
		return err
	}
	return run.Next()
}

// Finish completes the run and records it on the leaderboard. When the write
// fails the result is still returned along with an error wrapping ErrStorageWrite.
func (s *QuizService) Finish(ctx context.Context, run *Run) (domain.Result, error) {
	if err := s.checkBank(run); err != nil {
		return domain.Result{}, err
	}
	result, err := run.Finish()
	if err != nil {
		return domain.Result{}, err
	}
	slog.Info("quiz finished", "run", run.ID, "player", result.PlayerName, "score", result.Score, "total", result.Total, "elapsed", result.Elapsed)

	if err := s.board.Append(ctx, domain.EntryFromResult(result, s.now())); err != nil {
		slog.Error("leaderboard append failed", "run", run.ID, "error", err)
		return result, fmt.Errorf("save score: %w", err)
	}
	return result, nil
}

// Leaderboard returns the top n entries.
func (s *QuizService) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	return s.board.Top(ctx, n)
}

// checkBank resets runs whose selection predates the current bank.
func (s *QuizService) checkBank(run *Run) error {
	if run.State() == StateNotStarted && run.Total() == 0 {
		return nil
	}
	if run.BankVersion() == s.bank.Version() {
		return nil
	}
	slog.Warn("run invalidated by bank reload", "run", run.ID)
	run.Reset()
	return domain.ErrBankReloaded
}
