package quote

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"quotes-sharer/internal/auth"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing access token")
		return
	}

	quotes, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to list quotes")
		return
	}

	writeJSON(w, http.StatusOK, quotes)
}

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing access token")
		return
	}

	input, ok := parseInput(w, r)
	if !ok {
		return
	}

	q, err := h.repo.Create(r.Context(), userID, input)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to create quote")
		return
	}

	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing access token")
		return
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return
	}

	input, ok := parseInput(w, r)
	if !ok {
		return
	}

	q, err := h.repo.Update(r.Context(), id, userID, input)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "quote not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to update quote")
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing access token")
		return
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return
	}

	if err := h.repo.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "quote not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to delete quote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseInput(w http.ResponseWriter, r *http.Request) (QuoteInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var input QuoteInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return QuoteInput{}, false
	}

	input.Content = strings.TrimSpace(input.Content)
	input.Author = strings.TrimSpace(input.Author)

	if input.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return QuoteInput{}, false
	}
	if !utf8.ValidString(input.Content) || utf8.RuneCountInString(input.Content) > 500 {
		writeError(w, http.StatusBadRequest, "content is invalid")
		return QuoteInput{}, false
	}
	if !utf8.ValidString(input.Author) || utf8.RuneCountInString(input.Author) > 100 {
		writeError(w, http.StatusBadRequest, "author is invalid")
		return QuoteInput{}, false
	}

	return input, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
