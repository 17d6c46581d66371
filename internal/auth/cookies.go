package auth

import (
	"net/http"
	"time"

	"quotes-sharer/internal/token"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// CookieBinder translates issued credentials into response cookies. Domain and
// Secure depend on the deployment environment; everything else is fixed.
type CookieBinder struct {
	domain     string
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCookieBinder(domain string, secure bool, accessTTL, refreshTTL time.Duration) *CookieBinder {
	if accessTTL <= 0 {
		accessTTL = token.DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = token.DefaultRefreshTTL
	}
	return &CookieBinder{domain: domain, secure: secure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (b *CookieBinder) BindPair(w http.ResponseWriter, pair token.Pair) {
	http.SetCookie(w, b.cookie(AccessCookieName, pair.Access, b.accessTTL))
	http.SetCookie(w, b.cookie(RefreshCookieName, pair.Refresh, b.refreshTTL))
}

func (b *CookieBinder) ClearAccess(w http.ResponseWriter) {
	http.SetCookie(w, b.cookie(AccessCookieName, "", 0))
}

func (b *CookieBinder) ClearRefresh(w http.ResponseWriter) {
	http.SetCookie(w, b.cookie(RefreshCookieName, "", 0))
}

func (b *CookieBinder) cookie(name, value string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if value == "" {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   b.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   b.secure,
	}
}
