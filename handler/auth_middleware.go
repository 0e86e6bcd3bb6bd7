package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"studylab-api/common"
	"studylab-api/logger"
	"studylab-api/model"
	"studylab-api/service"

	"github.com/google/uuid"
)

type contextKey string

const userKey contextKey = "user"

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user model.PublicUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext reports the user attached by the Authenticator, if any.
func UserFromContext(ctx context.Context) (model.PublicUser, bool) {
	user, ok := ctx.Value(userKey).(model.PublicUser)
	return user, ok
}

// Authenticator validates bearer access tokens and loads the caller's record.
type Authenticator struct {
	tokens *service.TokenService
	users  *service.UserService
	// fallbackOnStoreError lets Optional continue anonymously when the
	// user record cannot be loaded.
	fallbackOnStoreError bool
}

func NewAuthenticator(tokens *service.TokenService, users *service.UserService, fallbackOnStoreError bool) *Authenticator {
	return &Authenticator{
		tokens:               tokens,
		users:                users,
		fallbackOnStoreError: fallbackOnStoreError,
	}
}

// Required rejects requests without a valid access token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return a.wrap(next, true)
}

// Optional lets requests without an Authorization header through anonymously.
// A header that is present must still be valid.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return a.wrap(next, false)
}

func (a *Authenticator) wrap(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, appErr := a.authenticate(r, required)
		if appErr != nil {
			appErr.Send(w)
			return
		}
		if user != nil {
			r = r.WithContext(WithUser(r.Context(), *user))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authenticate(r *http.Request, required bool) (*model.PublicUser, *common.AppError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if required {
			return nil, common.NewAppError(http.StatusUnauthorized, "Missing Authorization header", nil)
		}
		return nil, nil
	}

	token, ok := bearerToken(header)
	if !ok {
		return nil, common.NewAppError(http.StatusUnauthorized, "Invalid Authorization format", nil)
	}

	claims, err := a.tokens.VerifyAccess(token)
	if err != nil {
		return nil, common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", err)
	}

	user, err := a.users.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, common.NewAppError(http.StatusUnauthorized, "User not found", nil)
		}
		if !required && a.fallbackOnStoreError {
			logger.Log.WithError(err).Warn("User store unavailable, continuing without identity")
			return nil, nil
		}
		return nil, common.NewAppError(http.StatusServiceUnavailable, "Authentication service unavailable", err)
	}
	return &user, nil
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively and the token must be a single non-empty word.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
