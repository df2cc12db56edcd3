package bank

import (
	"strings"

	"fun-quiz/internal/domain"
)

// Column names of the question input schema.
const (
	ColQuestion = "question"
	ColOption1  = "option1"
	ColOption2  = "option2"
	ColOption3  = "option3"
	ColOption4  = "option4"
	ColAnswer   = "answer"
	ColCategory = "category"
)

var optionColumns = [domain.OptionCount]string{ColOption1, ColOption2, ColOption3, ColOption4}

// RawRecord is one untyped input row keyed by column name. Missing keys read as empty.
type RawRecord map[string]string

// Stats describes the outcome of normalizing a batch of rows.
type Stats struct {
	Rows         int `json:"rows"`
	Loaded       int `json:"loaded"`
	Dropped      int `json:"dropped"`
	Unanswerable int `json:"unanswerable"`
}

// Normalize converts raw rows into questions, preserving input order.
// Rows without question text or answer are dropped; the second return value counts them.
func Normalize(rows []RawRecord) ([]domain.Question, int) {
	questions, stats := normalize(rows)
	return questions, stats.Dropped
}

func normalize(rows []RawRecord) ([]domain.Question, Stats) {
	stats := Stats{Rows: len(rows)}
	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		q := domain.Question{
			Text:     field(row, ColQuestion),
			Answer:   field(row, ColAnswer),
			Category: field(row, ColCategory),
		}
		for i, col := range optionColumns {
			q.Options[i] = field(row, col)
		}
		if q.Category == "" {
			q.Category = domain.DefaultCategory
		}
		if q.Text == "" || q.Answer == "" {
			stats.Dropped++
			continue
		}
		// Kept as loaded: such a question can never be answered correctly.
		if !q.HasAnswerOption() {
			stats.Unanswerable++
		}
		questions = append(questions, q)
	}
	stats.Loaded = len(questions)
	return questions, stats
}

func field(row RawRecord, col string) string {
	return strings.TrimSpace(row[col])
}
