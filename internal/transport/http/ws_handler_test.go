package http

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fun-quiz/internal/app"
	"fun-quiz/internal/bank"
	"fun-quiz/internal/domain"
	"fun-quiz/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketQuizFlow(t *testing.T) {
	board := memory.NewLeaderboard()
	conn, cleanup := dialQuiz(t, board, 50*time.Millisecond)
	defer cleanup()

	readNext(conn, t, "connected")

	send(conn, t, "setup", map[string]any{"category": "Science", "questionCount": 2, "showFeedback": true})
	_, ready := readNext(conn, t, "ready")
	if total, _ := ready["total"].(float64); total != 2 {
		t.Fatalf("expected 2 questions, got %v", ready["total"])
	}

	send(conn, t, "start", nil)
	answers := answerKey()
	for i := 0; i < 2; i++ {
		_, q := readNext(conn, t, "question")
		text, _ := q["question"].(string)
		send(conn, t, "submit", map[string]any{"index": i, "option": answers[text]})
		_, answered := readNext(conn, t, "answered")
		feedback, _ := answered["feedback"].(map[string]any)
		if feedback == nil || feedback["isCorrect"] != true {
			t.Fatalf("expected correct feedback, got %v", answered)
		}

		// a repeated submit is ignored
		send(conn, t, "submit", map[string]any{"index": i, "option": "wrong"})
		readNext(conn, t, "ignored")

		if i == 0 {
			send(conn, t, "next", nil)
		}
	}

	send(conn, t, "finish", nil)
	_, finished := readNext(conn, t, "finished")
	result, _ := finished["result"].(map[string]any)
	if result["score"] != float64(2) || result["total"] != float64(2) || finished["saved"] != true {
		t.Fatalf("unexpected finished payload %v", finished)
	}
	if board.Len() != 1 {
		t.Fatalf("expected leaderboard entry, got %d", board.Len())
	}

	send(conn, t, "export", map[string]any{"format": "csv"})
	_, export := readNext(conn, t, "export")
	if export["filename"] != "quiz_results.csv" {
		t.Fatalf("unexpected export %v", export)
	}
}

func TestWebSocketTimeout(t *testing.T) {
	conn, cleanup := dialQuiz(t, memory.NewLeaderboard(), 10*time.Millisecond)
	defer cleanup()

	readNext(conn, t, "connected")
	send(conn, t, "setup", map[string]any{"category": "All", "questionCount": 2, "timeLimitSeconds": 1})
	readNext(conn, t, "ready")
	send(conn, t, "start", nil)
	readNext(conn, t, "question")

	readNext(conn, t, "timeout")
	_, answered := readNext(conn, t, "answered")
	if answered["skipped"] != true || answered["index"] != float64(0) {
		t.Fatalf("expected skipped first question, got %v", answered)
	}
	_, q := readNext(conn, t, "question")
	if q["index"] != float64(1) {
		t.Fatalf("expected auto-advance to question 1, got %v", q["index"])
	}
}

func TestWebSocketEmptyCategory(t *testing.T) {
	conn, cleanup := dialQuiz(t, memory.NewLeaderboard(), time.Second)
	defer cleanup()

	readNext(conn, t, "connected")
	send(conn, t, "setup", map[string]any{"category": "Sports"})
	_, payload := readNext(conn, t, "error")
	if msg, _ := payload["message"].(string); !strings.Contains(msg, "No questions") {
		t.Fatalf("unexpected error message %q", msg)
	}
	send(conn, t, "start", nil)
	readNext(conn, t, "error")
}

func dialQuiz(t *testing.T, board app.LeaderboardStore, tick time.Duration) (*websocket.Conn, func()) {
	t.Helper()
	service := app.NewQuizService(bank.New(memory.SampleQuestions()), board)
	defaults := domain.QuizConfiguration{Category: domain.AllCategories, QuestionCount: 5, ShowFeedback: true}
	handler := NewHandler(service, 5)
	server := httptest.NewServer(handler.Routes(NewWSHandler(service, defaults, tick, 10)))

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func answerKey() map[string]string {
	key := make(map[string]string)
	for _, q := range memory.SampleQuestions() {
		key[q.Text] = q.Answer
	}
	return key
}

func send(conn *websocket.Conn, t *testing.T, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	payload := map[string]any{}
	_ = json.Unmarshal(msg.Payload, &payload)
	return msg.Type, payload
}
