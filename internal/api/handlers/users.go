package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/talx-hub/gopher-users/internal/api/dto"
	"github.com/talx-hub/gopher-users/internal/api/middlewares"
	"github.com/talx-hub/gopher-users/internal/api/response"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/auth"
)

type UserHandler struct {
	logger   *slog.Logger
	repo     UserRepository
	mailer   MailDispatcher
	settings Settings
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UserCreate
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(r.Context(), w, http.StatusBadRequest, msgBadBody)
		return
	}
	h.create(w, r, &req, h.settings.EmailsEnabled)
}

func (h *UserHandler) CreateUserOpen(w http.ResponseWriter, r *http.Request) {
	if !h.settings.OpenRegistration {
		response.Error(r.Context(), w, http.StatusForbidden, msgRegistrationOff)
		return
	}
	var req dto.UserOpen
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(r.Context(), w, http.StatusBadRequest, msgBadBody)
		return
	}
	h.create(w, r, req.ToCreate(), false)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request,
	req *dto.UserCreate, notify bool,
) {
	ctx := r.Context()
	if err := req.Validate(h.settings.PasswordMinEntropy); err != nil {
		invalid(ctx, w, err)
		return
	}

	exists, err := h.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		response.Internal(ctx, w, "failed to check if user exists", err)
		return
	}
	if exists {
		response.Error(ctx, w, http.StatusBadRequest, msgUserExists)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.Internal(ctx, w, "failed to hash password", err)
		return
	}
	created, err := h.repo.Create(ctx, req.ToUser(hash))
	if err != nil {
		if errors.Is(err, serviceerrs.ErrAlreadyExists) {
			response.Error(ctx, w, http.StatusBadRequest, msgUserExists)
			return
		}
		response.Internal(ctx, w, "failed to create user", err)
		return
	}

	if notify {
		err = h.mailer.Dispatch(ctx, email.Job{
			Kind:     email.KindNewAccount,
			To:       created.Email,
			Username: created.Email,
			Password: req.Password,
		})
		if err != nil {
			h.logger.LogAttrs(ctx,
				slog.LevelError,
				"failed to dispatch new account e-mail",
				slog.Int64("user_id", created.ID),
				slog.Any(model.KeyLoggerError, err),
			)
		}
	}

	response.JSON(ctx, w, http.StatusCreated, created)
}

// ListUsers pages by id: the next page starts after the last id seen.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	skipID, limit, err := pageParams(r)
	if err != nil {
		invalid(ctx, w, err)
		return
	}

	users, err := h.repo.List(ctx, skipID, limit)
	if err != nil {
		response.Internal(ctx, w, "failed to list users", err)
		return
	}
	if len(users) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	response.JSON(ctx, w, http.StatusOK, users)
}

func pageParams(r *http.Request) (int64, int, error) {
	q := r.URL.Query()
	errs := validation.Errors{}

	var skipID int64
	if raw := q.Get("skip_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			errs["skip_id"] = errors.New("must be a non-negative integer")
		}
		skipID = v
	}

	limit := model.DefaultPageLimit
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > model.MaxPageLimit {
			errs["limit"] = errors.New("must be an integer between 1 and 1000")
		}
		limit = v
	}

	if len(errs) != 0 {
		return 0, 0, errs
	}
	return skipID, limit, nil
}

func (h *UserHandler) ReadMe(w http.ResponseWriter, r *http.Request) {
	me, ok := middlewares.CurrentUser(r.Context())
	if !ok {
		response.Internal(r.Context(), w, "no user in context", serviceerrs.ErrUnexpected)
		return
	}
	response.JSON(r.Context(), w, http.StatusOK, me)
}

func (h *UserHandler) ReadUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me, ok := middlewares.CurrentUser(ctx)
	if !ok {
		response.Internal(ctx, w, "no user in context", serviceerrs.ErrUnexpected)
		return
	}
	id, err := userID(r)
	if err != nil {
		invalid(ctx, w, err)
		return
	}

	if id == me.ID {
		response.JSON(ctx, w, http.StatusOK, me)
		return
	}
	if !me.IsSuperuser {
		response.Error(ctx, w, http.StatusBadRequest, msgNoPrivileges)
		return
	}

	u, err := h.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceerrs.ErrNotFound) {
			response.Error(ctx, w, http.StatusNotFound, msgUserNotExists)
			return
		}
		response.Internal(ctx, w, "failed to find user", err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, u)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me, ok := middlewares.CurrentUser(ctx)
	if !ok {
		response.Internal(ctx, w, "no user in context", serviceerrs.ErrUnexpected)
		return
	}
	var req dto.UserUpdateMe
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, msgBadBody)
		return
	}
	h.update(w, r, me.ID, req.ToUserUpdate())
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := userID(r)
	if err != nil {
		invalid(ctx, w, err)
		return
	}
	var req dto.UserUpdate
	if err = decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, msgBadBody)
		return
	}

	exists, err := h.repo.ExistsByID(ctx, id)
	if err != nil {
		response.Internal(ctx, w, "failed to check if user exists", err)
		return
	}
	if !exists {
		response.Error(ctx, w, http.StatusNotFound, msgUserNotExists)
		return
	}
	h.update(w, r, id, &req)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request,
	id int64, req *dto.UserUpdate,
) {
	ctx := r.Context()
	if err := req.Validate(h.settings.PasswordMinEntropy); err != nil {
		invalid(ctx, w, err)
		return
	}

	var hash string
	if req.Password != nil {
		var err error
		if hash, err = auth.HashPassword(*req.Password); err != nil {
			response.Internal(ctx, w, "failed to hash password", err)
			return
		}
	}

	updated, err := h.repo.Update(ctx, id, req.ToUpdate(hash))
	if err != nil {
		switch {
		case errors.Is(err, serviceerrs.ErrAlreadyExists):
			response.Error(ctx, w, http.StatusBadRequest, msgUserExists)
		case errors.Is(err, serviceerrs.ErrNotFound):
			response.Error(ctx, w, http.StatusNotFound, msgUserNotExists)
		default:
			response.Internal(ctx, w, "failed to update user", err)
		}
		return
	}
	response.JSON(ctx, w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me, ok := middlewares.CurrentUser(ctx)
	if !ok {
		response.Internal(ctx, w, "no user in context", serviceerrs.ErrUnexpected)
		return
	}
	id, err := userID(r)
	if err != nil {
		invalid(ctx, w, err)
		return
	}
	if id == me.ID {
		response.Error(ctx, w, http.StatusBadRequest, msgSuperuserSelfKill)
		return
	}

	deleted, err := h.repo.Delete(ctx, id)
	if err != nil {
		response.Internal(ctx, w, "failed to delete user", err)
		return
	}
	if !deleted {
		response.Error(ctx, w, http.StatusNotFound, msgUserNotExists)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.Errors{"id": errors.New("must be a positive integer")}
	}
	return id, nil
}
