package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"fun-quiz/internal/domain"
)

// Header is the column layout of the leaderboard file.
var Header = []string{"name", "score", "total", "category", "time"}

// legacy timestamp layout written by older leaderboard files
const legacyTimeLayout = "2006-01-02 15:04:05.999999"

// Leaderboard stores entries in a CSV file. Every Append rewrites the whole
// file through a temp file and rename, so readers never see a partial write.
// Appends are serialised within the process only; concurrent processes race
// and the last writer wins.
type Leaderboard struct {
	path string
	mu   sync.Mutex
}

func NewLeaderboard(path string) *Leaderboard {
	return &Leaderboard{path: path}
}

func (l *Leaderboard) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readRecords()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if len(records) == 0 {
		records = append(records, Header)
	}
	records = append(records, []string{
		entry.Name,
		strconv.Itoa(entry.Score),
		strconv.Itoa(entry.Total),
		entry.Category,
		entry.Time.Format(time.RFC3339),
	})

	if err := l.writeRecords(records); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

// Top returns the n best entries. A missing file is an empty leaderboard.
func (l *Leaderboard) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	return domain.RankTop(entries, n), nil
}

// Entries returns every stored entry in insertion order.
func (l *Leaderboard) Entries() ([]domain.LeaderboardEntry, error) {
	l.mu.Lock()
	records, err := l.readRecords()
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []domain.LeaderboardEntry{}, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	entries := make([]domain.LeaderboardEntry, 0, len(records)-1)
	for line, record := range records[1:] {
		score, err := strconv.Atoi(get(record, "score"))
		if err != nil {
			slog.Warn("skipping leaderboard row", "path", l.path, "line", line+2, "error", err)
			continue
		}
		total, _ := strconv.Atoi(get(record, "total"))
		entries = append(entries, domain.LeaderboardEntry{
			Name:     get(record, "name"),
			Score:    score,
			Total:    total,
			Category: get(record, "category"),
			Time:     parseTime(get(record, "time")),
		})
	}
	return entries, nil
}

func (l *Leaderboard) readRecords() ([][]string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func (l *Leaderboard) writeRecords(records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), l.path)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, raw, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
