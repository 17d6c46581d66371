package maintenance

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StaleDeleter prunes refresh records whose credential lifetime has passed.
// The Redis-backed store has no deleter: its keys expire on their own.
type StaleDeleter interface {
	DeleteStale(ctx context.Context, olderThan time.Duration, batchSize int) (int64, error)
}

type CleanupHandler struct {
	deleter   StaleDeleter
	logger    *zap.Logger
	secret    string
	retention time.Duration
	batchSize int
}

func NewCleanupHandler(deleter StaleDeleter, logger *zap.Logger, cronSecret string, retention time.Duration, batchSize int) *CleanupHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupHandler{
		deleter:   deleter,
		logger:    logger,
		secret:    strings.TrimSpace(cronSecret),
		retention: retention,
		batchSize: batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.secret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	var deleted int64
	if h.deleter != nil {
		var err error
		deleted, err = h.deleter.DeleteStale(r.Context(), h.retention, h.batchSize)
		if err != nil {
			h.logger.Error("refresh_cleanup_failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "cleanup failed"})
			return
		}
	}

	h.logger.Info("refresh_cleanup_completed", zap.Int64("deleted_refresh_tokens", deleted))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "ok",
		"deleted_refresh_tokens": deleted,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
