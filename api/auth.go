package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid
const DefaultTokenTTL = 72 * time.Hour

// TokenCookie is read when no Authorization header is sent
const TokenCookie = "token"

var ErrUnauthorized = errors.New("unauthorized")

type contextKey string

const playerKey contextKey = "player"

// Claims carried in a player token
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 player tokens
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator creates an authenticator. A ttl of zero uses DefaultTokenTTL.
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the player
func (a *Authenticator) Issue(playerID, username string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks the signature and expiry and returns the claims
func (a *Authenticator) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims, nil
}

func bearerOrCookie(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// identify attaches the caller's claims to the request context when a valid
// token is present. Requests without a token pass through anonymously; a bad
// token is rejected.
func (a *Authenticator) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerOrCookie(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := a.Verify(tokenStr)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), playerKey, claims)))
	})
}

// requirePlayer rejects anonymous requests
func requirePlayer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if PlayerFrom(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// PlayerFrom returns the authenticated caller, or nil
func PlayerFrom(ctx context.Context) *Claims {
	claims, _ := ctx.Value(playerKey).(*Claims)
	return claims
}

func playerID(ctx context.Context) string {
	if c := PlayerFrom(ctx); c != nil {
		return c.Subject
	}
	return ""
}
