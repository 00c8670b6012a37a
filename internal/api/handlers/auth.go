package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talx-hub/gopher-users/internal/api/dto"
	"github.com/talx-hub/gopher-users/internal/api/response"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/auth"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

type AuthHandler struct {
	logger   *slog.Logger
	repo     UserRepository
	mailer   MailDispatcher
	tokens   ResetTokenStore
	throttle LoginThrottle
	settings Settings
}

// AccessToken implements the OAuth2 password grant.
func (h *AuthHandler) AccessToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, msgBadBody)
		return
	}
	form := dto.LoginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
		Scopes:   strings.Fields(r.PostForm.Get("scope")),
	}
	if err := form.Validate(); err != nil {
		invalid(ctx, w, err)
		return
	}

	if err := h.throttle.Check(ctx, form.Username); err != nil {
		var tooMany *serviceerrs.TooManyAttemptsError
		if errors.As(err, &tooMany) {
			h.logger.LogAttrs(ctx,
				slog.LevelWarn,
				"login throttled",
				slog.Int64("failures", tooMany.Failures),
			)
			response.Error(ctx, w, http.StatusTooManyRequests, msgTooManyAttempts)
			return
		}
		h.logger.LogAttrs(ctx,
			slog.LevelError,
			"login throttle is unavailable",
			slog.Any(model.KeyLoggerError, err),
		)
	}

	u, err := h.repo.FindByEmail(ctx, form.Username)
	if err != nil && !errors.Is(err, serviceerrs.ErrNotFound) {
		response.Internal(ctx, w, "failed to find user", err)
		return
	}
	hash := u.HashedPassword
	if err != nil {
		hash = auth.DummyHash()
	}
	if !auth.VerifyPassword(form.Password, hash) || err != nil {
		h.loginFailed(r, form.Username)
		response.Error(ctx, w, http.StatusBadRequest, msgBadLogin)
		return
	}
	if !u.IsActive {
		response.Error(ctx, w, http.StatusBadRequest, msgInactiveUser)
		return
	}

	if err = h.throttle.Reset(ctx, form.Username); err != nil {
		h.logger.LogAttrs(ctx,
			slog.LevelError,
			"failed to reset login failures",
			slog.Any(model.KeyLoggerError, err),
		)
	}

	token, err := auth.CreateAccessToken(
		auth.TokenData{UserID: u.ID, Scopes: form.GrantedScopes()},
		h.settings.SecretKey, h.settings.AccessTokenExpire)
	if err != nil {
		response.Internal(ctx, w, "failed to create access token", err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, dto.NewBearerToken(token))
}

func (h *AuthHandler) loginFailed(r *http.Request, username string) {
	ctx := r.Context()
	if err := h.throttle.Fail(ctx, username); err != nil {
		h.logger.LogAttrs(ctx,
			slog.LevelError,
			"failed to record login failure",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

func (h *AuthHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr := chi.URLParam(r, "email")

	u, err := h.repo.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, serviceerrs.ErrNotFound) {
			response.Error(ctx, w, http.StatusNotFound, msgUserNotExists)
			return
		}
		response.Internal(ctx, w, "failed to find user", err)
		return
	}

	token, err := auth.CreateAccessToken(
		auth.TokenData{UserID: u.ID, Scopes: []string{model.ScopeResetPassword}},
		h.settings.SecretKey, h.settings.ResetTokenExpire)
	if err != nil {
		response.Internal(ctx, w, "failed to create reset token", err)
		return
	}

	err = h.mailer.Dispatch(ctx, email.Job{
		Kind:     email.KindResetPassword,
		To:       u.Email,
		Username: u.Email,
		Token:    token,
	})
	switch {
	case errors.Is(err, serviceerrs.ErrEmailsDisabled):
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelWarn,
			"password recovery requested while e-mails are disabled",
			slog.Int64("user_id", u.ID),
		)
	case err != nil:
		response.Internal(ctx, w, "failed to dispatch recovery e-mail", err)
		return
	}

	response.JSON(ctx, w, http.StatusOK, dto.Msg{Msg: msgRecoverySent})
}

// ResetPassword consumes a reset token. Each token works once.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req dto.ResetPassword
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, msgBadBody)
		return
	}
	if err := req.Validate(h.settings.PasswordMinEntropy); err != nil {
		invalid(ctx, w, err)
		return
	}

	data, err := auth.DecodeAccessToken(req.Token, h.settings.SecretKey)
	if err != nil || !data.HasScope(model.ScopeResetPassword) {
		h.logger.LogAttrs(ctx,
			slog.LevelInfo,
			"rejected reset token",
			slog.Any(model.KeyLoggerError, err),
		)
		response.Error(ctx, w, http.StatusBadRequest, msgInvalidToken)
		return
	}

	u, err := h.repo.FindByID(ctx, data.UserID)
	if err != nil {
		if errors.Is(err, serviceerrs.ErrNotFound) {
			response.Error(ctx, w, http.StatusNotFound, msgUserNotFound)
			return
		}
		response.Internal(ctx, w, "failed to find user", err)
		return
	}
	if !u.IsActive {
		response.Error(ctx, w, http.StatusBadRequest, msgInactiveUser)
		return
	}

	if err = h.tokens.MarkUsed(ctx, data.ID, time.Until(data.ExpiresAt)); err != nil {
		if errors.Is(err, serviceerrs.ErrTokenAlreadyUsed) {
			response.Error(ctx, w, http.StatusBadRequest, msgInvalidToken)
			return
		}
		response.Internal(ctx, w, "failed to mark reset token as used", err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(ctx, w, "failed to hash password", err)
		return
	}
	if _, err = h.repo.Update(ctx, u.ID, &user.Update{HashedPassword: &hash}); err != nil {
		response.Internal(ctx, w, "failed to update password", err)
		return
	}

	response.JSON(ctx, w, http.StatusOK, dto.Msg{Msg: msgPasswordUpdated})
}
