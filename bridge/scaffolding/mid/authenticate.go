package mid

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jrazmi/todolist/bridge/scaffolding/errs"
	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/infrastructure/web"
)

// TokenVerifier maps a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's user id for GetUserID. Expired tokens get their own error code so
// clients know a refresh may help.
func Authenticate(verifier TokenVerifier) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			token, ok := BearerToken(r)
			if !ok {
				return errs.Newf(errs.Unauthenticated, "expected authorization header format: Bearer <token>")
			}

			userID, err := verifier.Verify(token)
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				return errs.New(errs.TokenExpired, err)
			case err != nil:
				return errs.Newf(errs.Unauthenticated, "invalid token")
			}

			return next(setUserID(ctx, userID), r)
		}
	}
}
