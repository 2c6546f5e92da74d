package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"totem/logger"
	"totem/model"
)

var ErrNoToken = errors.New("token mancante")

// Verifier turns bearer tokens into users. With a signing key it verifies
// HS256 signatures; without one it trusts claims already validated by the
// reverse proxy in front of the kiosk.
type Verifier struct {
	key            []byte
	allowAnonymous bool
}

func NewVerifier(signingKey string, allowAnonymous bool) *Verifier {
	v := &Verifier{allowAnonymous: allowAnonymous}
	if signingKey != "" {
		v.key = []byte(signingKey)
	}
	return v
}

// Anonymous is the user of an unauthenticated kiosk.
var Anonymous = model.User{Username: "totem", DisplayName: "Totem"}

func (v *Verifier) ParseUser(bearer string) (model.User, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(bearer), "Bearer "))
	if raw == "" {
		return model.User{}, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if v.key != nil {
		_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.key, nil
		})
		if err != nil {
			return model.User{}, fmt.Errorf("invalid token: %w", err)
		}
	} else {
		parser := jwt.NewParser(jwt.WithoutClaimsValidation())
		if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
			return model.User{}, fmt.Errorf("invalid token: %w", err)
		}
	}
	return userFromClaims(claims), nil
}

func userFromClaims(claims jwt.MapClaims) model.User {
	str := func(keys ...string) string {
		for _, k := range keys {
			if s, ok := claims[k].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	u := model.User{
		Username:    str("preferred_username", "upn", "email", "unique_name", "sub"),
		DisplayName: str("name"),
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				u.Roles = append(u.Roles, s)
			}
		}
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	return u
}

func IsAdmin(u model.User) bool {
	return slices.Contains(u.Roles, AdminRole)
}

type ctxKey struct{}

func WithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the request user set by Authenticate.
func UserFrom(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(model.User)
	return u, ok
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// Authenticate attaches the caller to the request context.
func (v *Verifier) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := v.ParseUser(r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, ErrNoToken) && v.allowAnonymous:
			u = Anonymous
		case err != nil:
			logger.Warn("request rejected", "path", r.URL.Path, "error", err)
			writeJSONError(w, "Autenticazione richiesta", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireAdmin lets only Totem.Admin callers through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		if !ok || !IsAdmin(u) {
			writeJSONError(w, "Accesso riservato agli amministratori", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MeHandler serves GET /api/me.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFrom(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user":    u,
			"isAdmin": IsAdmin(u),
		})
	}
}
