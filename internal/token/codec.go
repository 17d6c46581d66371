package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultIssuer = "QuotesSharer"

	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

var (
	// ErrNoSecret means the signing secret is not configured. Fatal: the
	// process must refuse to issue credentials at all.
	ErrNoSecret = errors.New("token signing secret is not configured")

	// ErrTokenExpired means the signature verified but the token is past its
	// expiry. ErrTokenInvalid covers everything else, including bad signatures.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id,omitempty"`
	Purpose string `json:"typ"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer credentials with a shared HS256 secret.
type Codec struct {
	secret []byte
	issuer string
}

func NewCodec(secret, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Codec{secret: []byte(secret), issuer: issuer}, nil
}

func (c *Codec) Sign(userID, tokenID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:  userID,
		TokenID: tokenID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}

	return encoded, nil
}

// Verify checks the signature before any claim is trusted. An expired but
// correctly signed token comes back as ErrTokenExpired; a token whose
// signature does not verify is ErrTokenInvalid regardless of its claims.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

// DecodeUnverified extracts claims without checking the signature. The result
// is never authoritative: callers must validate it against the refresh record
// store before acting on it.
func (c *Codec) DecodeUnverified(tokenString string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}
