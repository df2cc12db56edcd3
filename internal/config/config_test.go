package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
quiz:
  category: Science
  show_feedback: false
  time_limit_seconds: 15
leaderboard:
  backend: redis
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Quiz.Category != "Science" || cfg.Quiz.TimeLimitSeconds != 15 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.ShowFeedback() {
		t.Fatalf("expected feedback disabled")
	}
	if cfg.Leaderboard.Backend != BackendRedis || cfg.Leaderboard.Path != "quiz_leaderboard.csv" {
		t.Fatalf("expected defaults kept for unset keys, got %+v", cfg.Leaderboard)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Leaderboard.Backend != BackendCSV || !cfg.ShowFeedback() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := TTLDuration("30s", time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
}
