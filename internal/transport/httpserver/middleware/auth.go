package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"agile-board-go/internal/auth"
	userdomain "agile-board-go/internal/domain/user"
	"agile-board-go/pkg/logger"
)

// User is the authenticated caller placed on the request context. The
// username is what the domain services use as the caller identity.
type User struct {
	ID       uint
	Username string
	FullName string
	Admin    bool
}

// AccountLoader re-checks the token subject against the user store so a
// deleted or deactivated account stops working before its token expires.
type AccountLoader interface {
	FindByID(ctx context.Context, id uint) (*userdomain.User, error)
}

type JWTAuth struct {
	tokens   *auth.Manager
	accounts AccountLoader
	log      logger.Logger
}

type contextKey int

const userKey contextKey = iota

func NewJWTAuth(tokens *auth.Manager, accounts AccountLoader, log logger.Logger) *JWTAuth {
	return &JWTAuth{tokens: tokens, accounts: accounts, log: log}
}

func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			unauthorized(w)
			return
		}

		account, err := a.accounts.FindByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, userdomain.ErrNotFound) {
				unauthorized(w)
				return
			}
			a.log.InternalError("auth: load account failed", err, "user_id", claims.UserID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		if !account.Active {
			writeError(w, http.StatusForbidden, "account_inactive", "account is deactivated")
			return
		}

		user := User{
			ID:       account.ID,
			Username: account.Username,
			FullName: account.FullName,
			Admin:    account.IsSystemAdmin(),
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	if !ok || user.Username == "" {
		return User{}, false
	}
	return user, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
