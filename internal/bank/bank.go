package bank

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"sync"

	"fun-quiz/internal/domain"
)

// Loader fetches the initial question set from a backing store.
type Loader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// Bank holds the current question set. Each Replace installs a new immutable
// snapshot and bumps the version so runs built on the old set can detect it.
type Bank struct {
	mu        sync.RWMutex
	questions []domain.Question
	version   uint64
	source    Loader
	uploaded  bool
}

func New(questions []domain.Question) *Bank {
	b := &Bank{}
	b.Replace(questions)
	return b
}

// Load builds a bank from a loader. The loader stays attached as the source
// for Refresh until an upload replaces the bank.
func Load(ctx context.Context, loader Loader) (*Bank, error) {
	questions, err := loader.LoadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	b := New(questions)
	b.source = loader
	return b, nil
}

// Refresh reloads the questions from the source loader and replaces the bank
// when they changed. Banks without a source, or replaced by an upload, are left
// alone. Caching loaders decide how often the backing store is actually hit.
func (b *Bank) Refresh(ctx context.Context) (bool, error) {
	b.mu.RLock()
	source, uploaded := b.source, b.uploaded
	b.mu.RUnlock()
	if source == nil || uploaded {
		return false, nil
	}

	questions, err := source.LoadQuestions(ctx)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploaded || slices.Equal(b.questions, questions) {
		return false, nil
	}
	b.questions = slices.Clone(questions)
	b.version++
	slog.Info("question bank refreshed", "questions", len(questions), "version", b.version)
	return true, nil
}

// Snapshot returns a copy of the current questions and their version.
func (b *Bank) Snapshot() ([]domain.Question, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Question, len(b.questions))
	copy(out, b.questions)
	return out, b.version
}

func (b *Bank) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// Replace swaps in a new question set and returns the new version.
func (b *Bank) Replace(questions []domain.Question) uint64 {
	snapshot := make([]domain.Question, len(questions))
	copy(snapshot, questions)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = snapshot
	b.version++
	return b.version
}

// ReplaceFromCSV parses an upload and replaces the bank with it. The current
// questions are kept when the upload is malformed or holds no valid row.
func (b *Bank) ReplaceFromCSV(r io.Reader) (Stats, error) {
	questions, stats, err := ParseCSV(r)
	if err != nil {
		return stats, err
	}
	if len(questions) == 0 {
		return stats, domain.ErrNoValidQuestions
	}
	if stats.Unanswerable > 0 {
		slog.Warn("questions whose answer matches no option", "count", stats.Unanswerable)
	}
	b.mu.Lock()
	b.uploaded = true
	b.mu.Unlock()
	version := b.Replace(questions)
	slog.Info("question bank replaced", "loaded", stats.Loaded, "dropped", stats.Dropped, "version", version)
	return stats, nil
}

// Categories lists "All" followed by the distinct categories in sorted order.
func (b *Bank) Categories() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, q := range b.questions {
		seen[q.Category] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{domain.AllCategories}, names...)
}

// FileLoader reads questions from a CSV file on disk.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open questions file: %w", err)
	}
	defer f.Close()

	questions, stats, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%s: %w", l.path, domain.ErrNoValidQuestions)
	}
	slog.Info("questions loaded from file", "path", l.path, "loaded", stats.Loaded, "dropped", stats.Dropped)
	return questions, nil
}
