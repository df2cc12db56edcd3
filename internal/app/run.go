package app

import (
	"math/rand"
	"time"

	"fun-quiz/internal/domain"
	"fun-quiz/internal/report"
	"github.com/google/uuid"
)

// State is the lifecycle position of a Run.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateAnswered
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateAnswered:
		return "answered"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// questionSlot tracks per-index progress.
type questionSlot struct {
	answered bool
	deadline time.Time // zero until presented with a timer
}

// Presentation is what a client needs to render the current question.
// Deadline is nil when the run has no time limit.
type Presentation struct {
	Index           int           `json:"index"`
	Total           int           `json:"total"`
	Question        string        `json:"question"`
	Options         []string      `json:"options"`
	Deadline        *time.Time    `json:"deadline,omitempty"`
	TimeLeft        time.Duration `json:"-"`
	TimeLeftSeconds int           `json:"timeLeftSeconds"`
	Answered        bool          `json:"answered"`
}

// Run is one attempt at a quiz. It is owned by a single caller and is not
// safe for concurrent use.
type Run struct {
	ID          string
	PlayerName  string
	Config      domain.QuizConfiguration
	Questions   []domain.Question
	OptionOrder [][]string
	Index       int
	Score       int
	Answers     []domain.AnswerRecord
	StartedAt   time.Time

	state       State
	slots       []questionSlot
	bankVersion uint64
	now         func() time.Time
	rnd         *rand.Rand
}

func NewRun(playerName string) *Run {
	return NewRunWithClock(playerName, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRunWithClock allows deterministic timestamps and shuffles in tests.
func NewRunWithClock(playerName string, now func() time.Time, rnd *rand.Rand) *Run {
	if playerName == "" {
		playerName = "Player"
	}
	return &Run{
		ID:         uuid.NewString(),
		PlayerName: playerName,
		now:        now,
		rnd:        rnd,
	}
}

func (r *Run) State() State {
	return r.state
}

// BankVersion is the question bank version the selection was drawn from.
func (r *Run) BankVersion() uint64 {
	return r.bankVersion
}

// Total is the number of selected questions.
func (r *Run) Total() int {
	return len(r.Questions)
}

// Setup filters the pool by category and draws a shuffled selection. The run
// must not have started yet; calling Setup again redraws the selection.
func (r *Run) Setup(pool []domain.Question, cfg domain.QuizConfiguration) error {
	if r.state != StateNotStarted {
		return domain.ErrInvalidTransition
	}
	if cfg.Category == "" {
		cfg.Category = domain.AllCategories
	}

	filtered := filterByCategory(pool, cfg.Category)
	if len(filtered) == 0 {
		r.clearSelection()
		return domain.ErrEmptyPool
	}

	count := cfg.QuestionCount
	if count < 1 {
		count = 1
	}
	if count > len(filtered) {
		count = len(filtered)
	}
	cfg.QuestionCount = count
	if cfg.TimeLimitSeconds < 0 {
		cfg.TimeLimitSeconds = 0
	}

	order := r.rnd.Perm(len(filtered))
	questions := make([]domain.Question, count)
	options := make([][]string, count)
	for i := 0; i < count; i++ {
		q := filtered[order[i]]
		questions[i] = q
		opts := append([]string(nil), q.Options[:]...)
		r.rnd.Shuffle(len(opts), func(a, b int) {
			opts[a], opts[b] = opts[b], opts[a]
		})
		options[i] = opts
	}

	r.Config = cfg
	r.Questions = questions
	r.OptionOrder = options
	r.slots = make([]questionSlot, count)
	return nil
}

// SetupFromBank is Setup with the bank version recorded for staleness checks.
func (r *Run) SetupFromBank(pool []domain.Question, version uint64, cfg domain.QuizConfiguration) error {
	if err := r.Setup(pool, cfg); err != nil {
		return err
	}
	r.bankVersion = version
	return nil
}

// Start moves a prepared run to the first question.
func (r *Run) Start() error {
	if r.state != StateNotStarted {
		return domain.ErrInvalidTransition
	}
	if len(r.Questions) == 0 {
		return domain.ErrNotReady
	}
	r.StartedAt = r.now()
	r.Index = 0
	r.Score = 0
	r.Answers = nil
	r.state = StateInProgress
	r.enter(0)
	return nil
}

// Present returns the current question. With a timer configured, the deadline
// of the index is fixed the first time it is presented.
func (r *Run) Present() (Presentation, error) {
	if r.state != StateInProgress && r.state != StateAnswered {
		return Presentation{}, domain.ErrInvalidTransition
	}
	r.enter(r.Index)
	slot := r.slots[r.Index]
	p := Presentation{
		Index:    r.Index,
		Total:    len(r.Questions),
		Question: r.Questions[r.Index].Text,
		Options:  append([]string(nil), r.OptionOrder[r.Index]...),
		Answered: slot.answered,
	}
	if !slot.deadline.IsZero() {
		deadline := slot.deadline
		p.Deadline = &deadline
		if left := deadline.Sub(r.now()); left > 0 {
			p.TimeLeft = left
			p.TimeLeftSeconds = int(left.Round(time.Second) / time.Second)
		}
	}
	return p, nil
}

// Submit answers question index with option. The returned bool is false when
// the event was ignored: wrong index, already answered or not in progress.
// An answer arriving at or after the deadline is recorded as a timeout instead.
func (r *Run) Submit(index int, option string) (domain.AnswerRecord, bool) {
	if !r.accepts(index) {
		return domain.AnswerRecord{}, false
	}
	if r.expired(index) {
		return r.Skip(index)
	}
	q := r.Questions[index]
	selected := option
	rec := domain.AnswerRecord{
		Question:  q.Text,
		Selected:  &selected,
		Correct:   q.Answer,
		IsCorrect: option == q.Answer,
	}
	if rec.IsCorrect {
		r.Score++
	}
	r.record(index, rec)
	return rec, true
}

// Skip records question index as unanswered and moves on to the next question
// when there is one. The last question stays answered until Finish.
func (r *Run) Skip(index int) (domain.AnswerRecord, bool) {
	if !r.accepts(index) {
		return domain.AnswerRecord{}, false
	}
	q := r.Questions[index]
	rec := domain.AnswerRecord{
		Question: q.Text,
		Correct:  q.Answer,
	}
	r.record(index, rec)
	if index+1 < len(r.Questions) {
		r.advance()
	}
	return rec, true
}

// Tick is polled by the caller on every refresh. When the current question's
// deadline has passed without an answer it is skipped; this fires once per index.
func (r *Run) Tick() (domain.AnswerRecord, bool) {
	if r.state != StateInProgress || r.Config.TimeLimit() == 0 {
		return domain.AnswerRecord{}, false
	}
	if r.slots[r.Index].answered || !r.expired(r.Index) {
		return domain.AnswerRecord{}, false
	}
	return r.Skip(r.Index)
}

// Next moves from an answered question to the following one.
func (r *Run) Next() error {
	if r.state != StateAnswered || r.Index+1 >= len(r.Questions) {
		return domain.ErrInvalidTransition
	}
	r.advance()
	return nil
}

// Finish closes an answered last question and produces the result.
func (r *Run) Finish() (domain.Result, error) {
	if r.state != StateAnswered || r.Index+1 != len(r.Questions) {
		return domain.Result{}, domain.ErrInvalidTransition
	}
	r.state = StateFinished
	answers := append([]domain.AnswerRecord(nil), r.Answers...)
	summary := report.Summarize(answers)
	elapsed := r.now().Sub(r.StartedAt)
	return domain.Result{
		RunID:          r.ID,
		PlayerName:     r.PlayerName,
		Category:       r.Config.Category,
		Score:          summary.Score,
		Total:          summary.Total,
		Elapsed:        elapsed,
		ElapsedSeconds: int(elapsed / time.Second),
		Answers:        answers,
		Report:         report.BuildReport(answers),
	}, nil
}

// Reset returns the run to NotStarted, dropping progress and the selection.
func (r *Run) Reset() {
	r.state = StateNotStarted
	r.Index = 0
	r.Score = 0
	r.Answers = nil
	r.StartedAt = time.Time{}
	r.clearSelection()
}

func (r *Run) clearSelection() {
	r.Questions = nil
	r.OptionOrder = nil
	r.slots = nil
	r.bankVersion = 0
}

func (r *Run) accepts(index int) bool {
	return r.state == StateInProgress && index == r.Index && !r.slots[index].answered
}

// expired reports whether the timed question at index reached its deadline.
func (r *Run) expired(index int) bool {
	deadline := r.slots[index].deadline
	return !deadline.IsZero() && !r.now().Before(deadline)
}

func (r *Run) record(index int, rec domain.AnswerRecord) {
	r.slots[index].answered = true
	r.Answers = append(r.Answers, rec)
	r.state = StateAnswered
}

func (r *Run) advance() {
	r.Index++
	r.state = StateInProgress
	r.enter(r.Index)
}

func (r *Run) enter(index int) {
	limit := r.Config.TimeLimit()
	if limit == 0 || !r.slots[index].deadline.IsZero() {
		return
	}
	r.slots[index].deadline = r.now().Add(limit)
}

func filterByCategory(pool []domain.Question, category string) []domain.Question {
	if category == domain.AllCategories {
		return pool
	}
	filtered := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if q.Category == category {
			filtered = append(filtered, q)
		}
	}
	return filtered
}
