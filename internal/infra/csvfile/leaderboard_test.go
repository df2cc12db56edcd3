package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fun-quiz/internal/domain"
)

func TestTopOnMissingFileIsEmpty(t *testing.T) {
	lb := NewLeaderboard(filepath.Join(t.TempDir(), "leaderboard.csv"))
	top, err := lb.Top(context.Background(), 5)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected empty leaderboard, got %d entries", len(top))
	}
}

func TestTopReturnsRankedEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leaderboard.csv")
	lb := NewLeaderboard(path)
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	scores := []struct {
		name  string
		score int
	}{
		{"ann", 2}, {"bob", 5}, {"cid", 3}, {"dee", 5}, {"eve", 1}, {"fay", 3}, {"gus", 4},
	}
	for i, s := range scores {
		entry := domain.LeaderboardEntry{Name: s.name, Score: s.score, Total: 5, Category: "All", Time: at.Add(time.Duration(i) * time.Minute)}
		if err := lb.Append(ctx, entry); err != nil {
			t.Fatalf("append %s: %v", s.name, err)
		}
	}

	top, err := lb.Top(ctx, 5)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []string{"bob", "dee", "gus", "cid", "fay"}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, name := range want {
		if top[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i, name, top[i].Name, top)
		}
	}
	if !top[0].Time.Equal(at.Add(time.Minute)) {
		t.Fatalf("expected timestamp round trip, got %v", top[0].Time)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "name,score,total,category,time" || len(lines) != 8 {
		t.Fatalf("unexpected file layout: %q", lines)
	}
}

func TestAppendKeepsExistingRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leaderboard.csv")
	existing := "name,score,total,category,time\nPlayer,4,5,Science,2024-01-02 10:11:12.123456\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	lb := NewLeaderboard(path)
	if err := lb.Append(ctx, domain.LeaderboardEntry{Name: "New", Score: 1, Total: 2, Category: "All", Time: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := lb.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Player" || entries[1].Name != "New" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Time.IsZero() {
		t.Fatalf("expected legacy timestamp parsed")
	}
}

func TestAppendFailureIsStorageWriteError(t *testing.T) {
	lb := NewLeaderboard(filepath.Join(t.TempDir(), "missing-dir", "leaderboard.csv"))
	err := lb.Append(context.Background(), domain.LeaderboardEntry{Name: "x", Score: 1, Total: 1})
	if !errors.Is(err, domain.ErrStorageWrite) {
		t.Fatalf("expected storage write error, got %v", err)
	}
}

func TestEntriesReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.csv")
	legacy := "name,score,total,category,time\n" +
		"Ana,3,5,All,2023-11-04 18:22:01.504832\n" +
		"Broken,three,5,All,2023-11-04 18:25:00.000001\n" +
		"Ben,4,5,Science,2023-11-05 09:00:00\n" +
		"Cy,1,5,Animals,not a time\n"
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	entries, err := NewLeaderboard(path).Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 3 || entries[0].Name != "Ana" || entries[1].Name != "Ben" || entries[2].Name != "Cy" {
		t.Fatalf("expected bad score row skipped, got %+v", entries)
	}
	want := time.Date(2023, 11, 4, 18, 22, 1, 504832000, time.Local)
	if !entries[0].Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, entries[0].Time)
	}
	if !entries[1].Time.Equal(time.Date(2023, 11, 5, 9, 0, 0, 0, time.Local)) {
		t.Fatalf("expected whole-second legacy time, got %v", entries[1].Time)
	}
	if !entries[2].Time.IsZero() {
		t.Fatalf("expected zero time for unparsable value, got %v", entries[2].Time)
	}

	top, err := NewLeaderboard(path).Top(context.Background(), 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Name != "Ben" {
		t.Fatalf("unexpected top %+v", top)
	}
}
