package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Leaderboard backends.
const (
	BackendCSV      = "csv"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		QuestionsFile    string `yaml:"questions_file"`
		Category         string `yaml:"category"`
		QuestionCount    int    `yaml:"question_count"`
		ShowFeedback     *bool  `yaml:"show_feedback"`
		TimeLimitSeconds int    `yaml:"time_limit_seconds"`
		TickInterval     string `yaml:"tick_interval"`
		CacheTTL         string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Leaderboard struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		Top     int    `yaml:"top"`
	} `yaml:"leaderboard"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Quiz.Category = "All"
	cfg.Quiz.QuestionCount = 5
	cfg.Quiz.TickInterval = "250ms"
	cfg.Quiz.CacheTTL = "10m"
	cfg.Leaderboard.Backend = BackendCSV
	cfg.Leaderboard.Path = "quiz_leaderboard.csv"
	cfg.Leaderboard.Top = 5
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to the defaults when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// ShowFeedback reports the configured feedback toggle, on unless disabled.
func (c Config) ShowFeedback() bool {
	if c.Quiz.ShowFeedback == nil {
		return true
	}
	return *c.Quiz.ShowFeedback
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
