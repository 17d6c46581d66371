package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"quotes-sharer/internal/provider"
	"quotes-sharer/internal/token"
)

// IdentityProvider exchanges an authorization code for a provider access token
// and resolves it into an external profile.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (provider.Profile, error)
}

// UserDirectory maps an external auth id to an internal user, creating the
// user on first sight. Must be idempotent.
type UserDirectory interface {
	FindOrCreate(ctx context.Context, externalAuthID string) (string, error)
}

type Handler struct {
	provider IdentityProvider
	users    UserDirectory
	issuer   *token.Issuer
	store    token.RefreshStore
	codec    *token.Codec
	binder   *CookieBinder
	logger   *zap.Logger
}

func NewHandler(idp IdentityProvider, users UserDirectory, issuer *token.Issuer, store token.RefreshStore, codec *token.Codec, binder *CookieBinder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{provider: idp, users: users, issuer: issuer, store: store, codec: codec, binder: binder, logger: logger}
}

// Login handles the OAuth callback: code exchange, profile fetch,
// find-or-create of the internal user, then a fresh credential pair bound as
// cookies. This route is never behind the gate.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	providerToken, err := h.provider.ExchangeCode(r.Context(), code)
	if err != nil {
		var apiErr *provider.APIError
		if errors.As(err, &apiErr) {
			h.logger.Warn("code_exchange_rejected", zap.String("provider_error", apiErr.Code))
			writeJSON(w, http.StatusBadGateway, apiErr)
			return
		}
		sentry.CaptureException(err)
		h.logger.Error("code_exchange_failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to reach identity provider")
		return
	}

	profile, err := h.provider.FetchProfile(r.Context(), providerToken)
	if err != nil {
		var profileErr *provider.ProfileError
		if errors.As(err, &profileErr) {
			h.logger.Warn("profile_fetch_rejected", zap.String("provider_message", profileErr.Message))
			writeJSON(w, http.StatusBadGateway, profileErr)
			return
		}
		sentry.CaptureException(err)
		h.logger.Error("profile_fetch_failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to reach identity provider")
		return
	}

	userID, err := h.users.FindOrCreate(r.Context(), profile.ID)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("find_or_create_user_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	pair, err := h.issuer.Issue(r.Context(), userID)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("issue_tokens_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.binder.BindPair(w, pair)
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}

// Logout deletes the presented refresh record best-effort and clears both
// cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(RefreshCookieName); err == nil && cookie.Value != "" {
		if claims, err := h.codec.DecodeUnverified(cookie.Value); err == nil && claims.TokenID != "" {
			if err := h.store.Delete(r.Context(), claims.TokenID); err != nil {
				sentry.CaptureException(err)
				h.logger.Error("logout_delete_failed", zap.Error(err))
			}
		}
	}

	h.binder.ClearAccess(w)
	h.binder.ClearRefresh(w)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
