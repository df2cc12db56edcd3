package domain

import "time"

// DefaultCategory is assigned to questions that carry no category.
const DefaultCategory = "General"

// AllCategories disables category filtering.
const AllCategories = "All"

// OptionCount is the number of choices every question offers.
const OptionCount = 4

// Question models an MCQ question with four options and a single correct answer text.
type Question struct {
	Text     string              `json:"question"`
	Options  [OptionCount]string `json:"options"`
	Answer   string              `json:"answer"`
	Category string              `json:"category"`
}

// HasAnswerOption reports whether the correct answer is one of the selectable options.
func (q Question) HasAnswerOption() bool {
	for _, opt := range q.Options {
		if opt == q.Answer {
			return true
		}
	}
	return false
}

// QuizConfiguration holds the player-facing settings of a run.
type QuizConfiguration struct {
	Category         string `json:"category"`
	QuestionCount    int    `json:"questionCount"`
	ShowFeedback     bool   `json:"showFeedback"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"` // 0 disables the timer
}

// TimeLimit returns the per-question limit, zero when the timer is off.
func (c QuizConfiguration) TimeLimit() time.Duration {
	if c.TimeLimitSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeLimitSeconds) * time.Second
}

// AnswerRecord captures the outcome of one question. Selected is nil when
// the question was skipped or timed out.
type AnswerRecord struct {
	Question  string  `json:"question"`
	Selected  *string `json:"selected"`
	Correct   string  `json:"correct"`
	IsCorrect bool    `json:"isCorrect"`
}

// Skipped reports whether no option was selected.
func (a AnswerRecord) Skipped() bool {
	return a.Selected == nil
}

// Outcome classifies a reviewed answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeSkipped   Outcome = "skipped"
)

// ReportRow is one line of the post-quiz review.
type ReportRow struct {
	Outcome  Outcome `json:"outcome"`
	Question string  `json:"question"`
	Selected string  `json:"selected,omitempty"`
	Correct  string  `json:"correct"`
}

// Result is produced once when a run finishes.
type Result struct {
	RunID          string         `json:"runId"`
	PlayerName     string         `json:"playerName"`
	Category       string         `json:"category"`
	Score          int            `json:"score"`
	Total          int            `json:"total"`
	Elapsed        time.Duration  `json:"-"`
	ElapsedSeconds int            `json:"elapsedSeconds"`
	Answers        []AnswerRecord `json:"answers"`
	Report         []ReportRow    `json:"report"`
}

// LeaderboardEntry is a persisted summary of a finished run. Entries are never mutated after write.
type LeaderboardEntry struct {
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	Total    int       `json:"total"`
	Category string    `json:"category"`
	Time     time.Time `json:"time"`
}

// EntryFromResult converts a finished run into its leaderboard row.
func EntryFromResult(res Result, at time.Time) LeaderboardEntry {
	return LeaderboardEntry{
		Name:     res.PlayerName,
		Score:    res.Score,
		Total:    res.Total,
		Category: res.Category,
		Time:     at,
	}
}
