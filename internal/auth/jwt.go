// Package auth issues and verifies the HS256 bearer tokens of the API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fintrack/internal/core"
)

const issuer = "fintrack"

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInactiveUser = errors.New("user is not active")
)

// Claims carries the user id in the subject and the staff flag.
type Claims struct {
	Staff bool `json:"staff"`
	jwt.RegisteredClaims
}

func IssueToken(secret []byte, user core.User, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Staff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, expiry and issuer and returns the subject.
func ParseToken(secret []byte, raw string) (uuid.UUID, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// UserLookup resolves the token subject. Implemented by services.UserService.
type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (core.User, error)
}

type ctxKey struct{}

func WithActor(ctx context.Context, actor core.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

func ActorFromContext(ctx context.Context) (core.Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(core.Actor)
	return actor, ok
}

// Middleware authenticates the bearer token and stores the Actor in the
// request context. The staff flag is read from the stored user, not the token.
func Middleware(secret []byte, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := authenticate(r, secret, users)
			if err != nil {
				slog.DebugContext(r.Context(), "Authentication failed",
					"path", r.URL.Path,
					"error", err)
				writeUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func authenticate(r *http.Request, secret []byte, users UserLookup) (core.Actor, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return core.Actor{}, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return core.Actor{}, ErrInvalidToken
	}

	id, err := ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return core.Actor{}, err
	}
	user, err := users.Get(r.Context(), id)
	if err != nil {
		if core.IsNotFound(err) {
			return core.Actor{}, ErrInvalidToken
		}
		return core.Actor{}, err
	}
	if !user.IsActive {
		return core.Actor{}, ErrInactiveUser
	}
	return core.Actor{UserID: user.ID, IsStaff: user.IsStaff}, nil
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	msg := ErrInvalidToken.Error()
	switch {
	case errors.Is(err, ErrMissingToken):
		msg = ErrMissingToken.Error()
	case errors.Is(err, ErrInactiveUser):
		msg = ErrInactiveUser.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
