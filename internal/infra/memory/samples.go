package memory

import (
	"context"

	"fun-quiz/internal/domain"
)

// SampleQuestions is the built-in question set used when no file or database is configured.
func SampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Text:     "Which planet is known as the Red Planet?",
			Options:  [domain.OptionCount]string{"Earth", "Mars", "Jupiter", "Venus"},
			Answer:   "Mars",
			Category: "Science",
		},
		{
			Text:     "Which language is this app built with?",
			Options:  [domain.OptionCount]string{"JavaScript", "Go", "Python", "Ruby"},
			Answer:   "Go",
			Category: "Technology",
		},
		{
			Text:     "What is the capital of France?",
			Options:  [domain.OptionCount]string{"Berlin", "Madrid", "Rome", "Paris"},
			Answer:   "Paris",
			Category: "Geography",
		},
		{
			Text:     "Which animal is known for its black and white stripes?",
			Options:  [domain.OptionCount]string{"Tiger", "Zebra", "Leopard", "Panda"},
			Answer:   "Zebra",
			Category: "Animals",
		},
		{
			Text:     "Which element has the chemical symbol 'O'?",
			Options:  [domain.OptionCount]string{"Gold", "Oxygen", "Osmium", "Silver"},
			Answer:   "Oxygen",
			Category: "Science",
		},
	}
}

// StaticLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticLoader struct {
	questions []domain.Question
}

func NewStaticLoader(questions []domain.Question) *StaticLoader {
	return &StaticLoader{questions: questions}
}

func (l *StaticLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(l.questions))
	copy(out, l.questions)
	return out, nil
}
