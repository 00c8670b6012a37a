package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-users/internal/api/response"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/auth"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgBadCredentials   = "Could not validate credentials"
	msgUserNotFound     = "User not found"
	msgInactiveUser     = "Inactive user"
	msgNoPrivileges     = "The user doesn't have enough privileges"
)

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (user.User, error)
}

func TokenFromContext(ctx context.Context) (auth.TokenData, bool) {
	data, ok := ctx.Value(model.KeyContextToken).(auth.TokenData)
	return data, ok
}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, model.KeyContextUser, u)
}

func CurrentUser(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(model.KeyContextUser).(user.User)
	return u, ok
}

// Authentication accepts bearer access tokens. Password reset tokens are
// signed with the same key and are refused here.
func Authentication(secret []byte, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authFunc := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tokenStr, err := auth.BearerToken(r)
			if err != nil {
				log.LogAttrs(ctx, slog.LevelDebug, "failed to find token in request")
				response.Unauthorized(ctx, w, msgNotAuthenticated)
				return
			}

			data, err := auth.DecodeAccessToken(tokenStr, secret)
			if err != nil {
				log.LogAttrs(ctx,
					slog.LevelInfo,
					"authentication failed",
					slog.Any(model.KeyLoggerError, err),
				)
				response.Unauthorized(ctx, w, msgBadCredentials)
				return
			}
			if data.HasScope(model.ScopeResetPassword) {
				log.LogAttrs(ctx,
					slog.LevelWarn,
					"reset token used for API access",
					slog.Int64("user_id", data.UserID),
				)
				response.Unauthorized(ctx, w, msgBadCredentials)
				return
			}

			tokenCtx := context.WithValue(ctx, model.KeyContextToken, data)
			next.ServeHTTP(w, r.WithContext(tokenCtx))
		}
		return http.HandlerFunc(authFunc)
	}
}

// ActiveUser loads the token owner and rejects inactive accounts. It must
// run after Authentication.
func ActiveUser(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			data, ok := TokenFromContext(ctx)
			if !ok {
				response.Unauthorized(ctx, w, msgNotAuthenticated)
				return
			}

			u, err := users.FindByID(ctx, data.UserID)
			if err != nil {
				if errors.Is(err, serviceerrs.ErrNotFound) {
					response.Error(ctx, w, http.StatusNotFound, msgUserNotFound)
					return
				}
				response.Internal(ctx, w, "failed to load current user", err)
				return
			}
			if !u.IsActive {
				response.Error(ctx, w, http.StatusBadRequest, msgInactiveUser)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, u)))
		})
	}
}

func Superuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u, ok := CurrentUser(ctx)
		if !ok {
			response.Unauthorized(ctx, w, msgNotAuthenticated)
			return
		}
		if !u.IsSuperuser {
			response.Error(ctx, w, http.StatusBadRequest, msgNoPrivileges)
			return
		}
		next.ServeHTTP(w, r)
	})
}
