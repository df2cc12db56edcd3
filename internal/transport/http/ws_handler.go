package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fun-quiz/internal/app"
	"fun-quiz/internal/domain"
	"fun-quiz/internal/report"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	defaults domain.QuizConfiguration
	tick     time.Duration
	topN     int
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, defaults domain.QuizConfiguration, tick time.Duration, topN int) *WSHandler {
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	if topN <= 0 {
		topN = 10
	}
	return &WSHandler{
		service:  service,
		defaults: defaults,
		tick:     tick,
		topN:     topN,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type setupPayload struct {
	Category         *string `json:"category"`
	QuestionCount    *int    `json:"questionCount"`
	ShowFeedback     *bool   `json:"showFeedback"`
	TimeLimitSeconds *int    `json:"timeLimitSeconds"`
}

type indexPayload struct {
	Index  int    `json:"index"`
	Option string `json:"option"`
}

type exportPayload struct {
	Format string `json:"format"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type readyPayload struct {
	RunID      string                   `json:"runId"`
	Player     string                   `json:"player"`
	Config     domain.QuizConfiguration `json:"config"`
	Total      int                      `json:"total"`
	Categories []string                 `json:"categories"`
}

type feedbackPayload struct {
	IsCorrect bool   `json:"isCorrect"`
	Correct   string `json:"correct"`
}

type answeredPayload struct {
	Index    int              `json:"index"`
	Skipped  bool             `json:"skipped"`
	Feedback *feedbackPayload `json:"feedback,omitempty"`
	Last     bool             `json:"last"`
}

type ignoredPayload struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

type finishedPayload struct {
	Result      domain.Result             `json:"result"`
	Saved       bool                      `json:"saved"`
	SaveError   string                    `json:"saveError,omitempty"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

type exportResult struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz run per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &wsConn{
		handler:    h,
		run:        h.service.NewRun(name),
		send:       make(chan outboundMessage[any], 16),
		writerDone: make(chan struct{}),
	}

	go func() {
		defer close(c.writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	inbound := make(chan inboundMessage)
	readerDone := make(chan struct{})
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-readerDone:
				return
			}
		}
	}()

	// The run is only touched from this loop; the ticker drives timeouts.
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	ctx := r.Context()
	c.emit("connected", c.readyPayload())
loop:
	for {
		select {
		case msg, ok := <-inbound:
			if !ok {
				break loop
			}
			c.handle(ctx, msg)
		case <-ticker.C:
			c.tick(ctx)
		case <-c.writerDone:
			break loop
		}
	}

	close(readerDone)
	close(c.send)
	<-c.writerDone
}

type wsConn struct {
	handler    *WSHandler
	run        *app.Run
	last       *domain.Result
	send       chan outboundMessage[any]
	writerDone chan struct{}
}

func (c *wsConn) emit(typ string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.writerDone:
	}
}

func (c *wsConn) fail(err error) {
	c.emit("error", errorPayload{Message: err.Error()})
}

func (c *wsConn) handle(ctx context.Context, msg inboundMessage) {
	service := c.handler.service
	switch msg.Type {
	case "setup":
		var payload setupPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.emit("error", errorPayload{Message: "invalid setup payload"})
				return
			}
		}
		if err := service.Setup(ctx, c.run, c.config(payload)); err != nil {
			if errors.Is(err, domain.ErrEmptyPool) {
				c.emit("error", errorPayload{Message: "No questions for the selected category. Try 'All' or upload a quiz."})
				return
			}
			c.fail(err)
			return
		}
		c.last = nil
		c.emit("ready", c.readyPayload())
	case "start":
		if err := service.Start(ctx, c.run); err != nil {
			c.fail(err)
			return
		}
		c.present()
	case "submit", "skip":
		var payload indexPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.emit("error", errorPayload{Message: "invalid " + msg.Type + " payload"})
			return
		}
		var (
			rec     domain.AnswerRecord
			applied bool
			err     error
		)
		if msg.Type == "submit" {
			rec, applied, err = service.Submit(ctx, c.run, payload.Index, payload.Option)
		} else {
			rec, applied, err = service.Skip(ctx, c.run, payload.Index)
		}
		if err != nil {
			c.fail(err)
			return
		}
		if !applied {
			c.emit("ignored", ignoredPayload{Action: msg.Type, Index: payload.Index})
			return
		}
		c.answered(payload.Index, rec)
	case "next":
		if err := service.Next(ctx, c.run); err != nil {
			c.fail(err)
			return
		}
		c.present()
	case "finish":
		c.finish(ctx)
	case "reset":
		c.run.Reset()
		c.last = nil
		c.emit("reset", c.readyPayload())
	case "export":
		var payload exportPayload
		if len(msg.Payload) > 0 {
			_ = json.Unmarshal(msg.Payload, &payload)
		}
		c.export(payload.Format)
	default:
		c.emit("error", errorPayload{Message: "unsupported message type"})
	}
}

func (c *wsConn) tick(ctx context.Context) {
	if c.run.State() != app.StateInProgress {
		return
	}
	index := c.run.Index
	rec, fired, err := c.handler.service.Tick(ctx, c.run)
	if err != nil {
		c.fail(err)
		return
	}
	if !fired {
		return
	}
	c.emit("timeout", ignoredPayload{Action: "timeout", Index: index})
	c.answered(index, rec)
}

// answered reports a recorded answer and, when the run already moved on
// (skip or timeout), presents the next question.
func (c *wsConn) answered(index int, rec domain.AnswerRecord) {
	payload := answeredPayload{
		Index:   index,
		Skipped: rec.Skipped(),
		Last:    index+1 == c.run.Total(),
	}
	if c.run.Config.ShowFeedback {
		payload.Feedback = &feedbackPayload{IsCorrect: rec.IsCorrect, Correct: rec.Correct}
	}
	c.emit("answered", payload)
	if c.run.State() == app.StateInProgress && c.run.Index != index {
		c.present()
	}
}

func (c *wsConn) present() {
	p, err := c.run.Present()
	if err != nil {
		c.fail(err)
		return
	}
	c.emit("question", p)
}

func (c *wsConn) finish(ctx context.Context) {
	service := c.handler.service
	result, err := service.Finish(ctx, c.run)
	if err != nil && !errors.Is(err, domain.ErrStorageWrite) {
		c.fail(err)
		return
	}
	c.last = &result

	payload := finishedPayload{Result: result, Saved: err == nil}
	if err != nil {
		payload.SaveError = err.Error()
	}
	top, lbErr := service.Leaderboard(ctx, c.handler.topN)
	if lbErr != nil {
		slog.Warn("leaderboard read failed", "error", lbErr)
	}
	payload.Leaderboard = top
	c.emit("finished", payload)
}

func (c *wsConn) export(format string) {
	if c.last == nil {
		c.emit("error", errorPayload{Message: "no finished quiz to export"})
		return
	}
	var buf bytes.Buffer
	out := exportResult{Format: format}
	var err error
	switch format {
	case "xlsx":
		out.Filename = "quiz_results.xlsx"
		err = report.WriteXLSX(&buf, c.last.Answers)
	case "", "csv":
		out.Format = "csv"
		out.Filename = "quiz_results.csv"
		err = report.WriteCSV(&buf, c.last.Answers)
	default:
		c.emit("error", errorPayload{Message: "unsupported export format"})
		return
	}
	if err != nil {
		c.fail(err)
		return
	}
	out.Data = buf.Bytes()
	c.emit("export", out)
}

func (c *wsConn) config(p setupPayload) domain.QuizConfiguration {
	cfg := c.handler.defaults
	if p.Category != nil {
		cfg.Category = *p.Category
	}
	if p.QuestionCount != nil {
		cfg.QuestionCount = *p.QuestionCount
	}
	if p.ShowFeedback != nil {
		cfg.ShowFeedback = *p.ShowFeedback
	}
	if p.TimeLimitSeconds != nil {
		cfg.TimeLimitSeconds = *p.TimeLimitSeconds
	}
	return cfg
}

func (c *wsConn) readyPayload() readyPayload {
	return readyPayload{
		RunID:      c.run.ID,
		Player:     c.run.PlayerName,
		Config:     c.run.Config,
		Total:      c.run.Total(),
		Categories: c.handler.service.Categories(),
	}
}
