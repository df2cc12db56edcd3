package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fun-quiz/internal/app"
	"fun-quiz/internal/domain"
)

const maxUploadBytes = 10 << 20

// Handler serves the REST endpoints next to the websocket quiz driver.
type Handler struct {
	service *app.QuizService
	topN    int
}

func NewHandler(service *app.QuizService, topN int) *Handler {
	if topN <= 0 {
		topN = 5
	}
	return &Handler{service: service, topN: topN}
}

// Routes wires every endpoint into a mux.
func (h *Handler) Routes(ws *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/categories", h.Categories)
	mux.HandleFunc("/api/questions", h.UploadQuestions)
	mux.HandleFunc("/api/leaderboard", h.Leaderboard)
	if ws != nil {
		mux.HandleFunc("/ws", ws.ServeWS)
	}
	return mux
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Questions  int      `json:"questions"`
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: h.service.Categories(),
		Questions:  h.service.QuestionCount(),
	})
}

// UploadQuestions replaces the question bank from a CSV body or a multipart "file" field.
func (h *Handler) UploadQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		body = file
	}

	stats, err := h.service.Upload(r.Context(), body)
	switch {
	case errors.Is(err, domain.ErrMalformedUpload):
		writeError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
		return
	case errors.Is(err, domain.ErrNoValidQuestions):
		writeError(w, http.StatusUnprocessableEntity, "couldn't find valid questions in the file")
		return
	case err != nil:
		slog.Error("question upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n := h.topN
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}
	entries, err := h.service.Leaderboard(r.Context(), n)
	if err != nil {
		slog.Error("leaderboard read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}
