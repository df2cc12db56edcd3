package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fun-quiz/internal/app"
	"fun-quiz/internal/bank"
	"fun-quiz/internal/domain"
	"fun-quiz/internal/infra/memory"
)

const uploadCSV = "question,option1,option2,option3,option4,answer,category\n" +
	"What is 2 + 2?,3,4,5,6,4,Math\n" +
	"Missing answer,a,b,c,d,,Math\n"

func newTestHandler() (*Handler, *app.QuizService, *memory.Leaderboard) {
	board := memory.NewLeaderboard()
	service := app.NewQuizService(bank.New(memory.SampleQuestions()), board)
	return NewHandler(service, 5), service, board
}

func TestCategoriesEndpoint(t *testing.T) {
	h, _, _ := newTestHandler()
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body categoriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Questions != 5 || body.Categories[0] != domain.AllCategories || len(body.Categories) != 5 {
		t.Fatalf("unexpected categories %+v", body)
	}
}

func TestUploadQuestionsRawBody(t *testing.T) {
	h, service, _ := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/questions", strings.NewReader(uploadCSV))
	req.Header.Set("Content-Type", "text/csv")
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var stats bank.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Loaded != 1 || stats.Dropped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if service.QuestionCount() != 1 {
		t.Fatalf("expected bank replaced, got %d questions", service.QuestionCount())
	}
}

func TestUploadQuestionsMultipart(t *testing.T) {
	h, service, _ := newTestHandler()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "quiz.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(uploadCSV))
	mw.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/questions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if service.QuestionCount() != 1 {
		t.Fatalf("expected bank replaced, got %d questions", service.QuestionCount())
	}
}

func TestUploadQuestionsRejected(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", "", http.StatusBadRequest},
		{"no valid rows", "question,answer\nonly question,\n", http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		h, service, _ := newTestHandler()
		rec := httptest.NewRecorder()
		h.Routes(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/questions", strings.NewReader(tc.body)))
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
		if service.QuestionCount() != 5 {
			t.Fatalf("%s: bank changed on rejected upload", tc.name)
		}
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	h, _, board := newTestHandler()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, score := range []int{1, 4, 2} {
		_ = board.Append(context.Background(), domain.LeaderboardEntry{Name: string(rune('a' + i)), Score: score, Total: 5, Category: "All", Time: at})
	}

	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?n=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []domain.LeaderboardEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "b" || entries[1].Name != "c" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	rec = httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?n=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad n, got %d", rec.Code)
	}
}
