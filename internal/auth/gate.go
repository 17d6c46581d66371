package auth

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"quotes-sharer/internal/token"
)

const (
	reasonMissingAccess  = "missing access token"
	reasonMissingRefresh = "missing refresh token"
	reasonInvalidAccess  = "invalid access token"
	reasonInvalidRefresh = "invalid refresh token"
)

// Gate guards protected routes. It verifies the access cookie on every
// request and, once the access credential has expired, redeems the one-time
// refresh cookie against the store to rotate both credentials in place.
type Gate struct {
	codec  *token.Codec
	store  token.RefreshStore
	issuer *token.Issuer
	binder *CookieBinder
	logger *zap.Logger
}

func NewGate(codec *token.Codec, store token.RefreshStore, issuer *token.Issuer, binder *CookieBinder, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{codec: codec, store: store, issuer: issuer, binder: binder, logger: logger}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessCookie, err := r.Cookie(AccessCookieName)
		if err != nil || accessCookie.Value == "" {
			g.reject(w, r, reasonMissingAccess)
			return
		}

		claims, err := g.codec.Verify(accessCookie.Value)
		switch {
		case err == nil:
			if claims.Purpose != token.PurposeAccess {
				g.binder.ClearAccess(w)
				g.reject(w, r, reasonInvalidAccess)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
			return
		case errors.Is(err, token.ErrTokenExpired):
			// Expired with a valid signature: rotate via the refresh cookie.
		default:
			g.binder.ClearAccess(w)
			g.reject(w, r, reasonInvalidAccess)
			return
		}

		refreshCookie, err := r.Cookie(RefreshCookieName)
		if err != nil || refreshCookie.Value == "" {
			g.reject(w, r, reasonMissingRefresh)
			return
		}

		// The unverified decode only feeds the store lookup; the record is
		// the authority on whether this token is still redeemable.
		refreshClaims, err := g.codec.DecodeUnverified(refreshCookie.Value)
		if err != nil || refreshClaims.Purpose != token.PurposeRefresh || refreshClaims.TokenID == "" {
			g.binder.ClearRefresh(w)
			g.reject(w, r, reasonInvalidRefresh)
			return
		}

		found, err := g.store.Consume(r.Context(), refreshClaims.TokenID, refreshClaims.UserID)
		if err != nil {
			// Fail closed: an unreachable store cannot vouch for the token.
			sentry.CaptureException(err)
			g.logger.Error("refresh_consume_failed", zap.Error(err))
			g.reject(w, r, reasonInvalidRefresh)
			return
		}
		if !found {
			// Never existed or already redeemed; the two are indistinguishable.
			g.binder.ClearRefresh(w)
			g.reject(w, r, reasonInvalidRefresh)
			return
		}

		pair, err := g.issuer.Issue(r.Context(), refreshClaims.UserID)
		if err != nil {
			sentry.CaptureException(err)
			g.logger.Error("token_rotation_failed", zap.Error(err))
			g.reject(w, r, reasonInvalidRefresh)
			return
		}

		g.binder.BindPair(w, pair)
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), refreshClaims.UserID)))
	})
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, reason string) {
	g.logger.Info("auth_rejected",
		zap.String("reason", reason),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	writeError(w, http.StatusUnauthorized, reason)
}
