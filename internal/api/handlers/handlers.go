package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/talx-hub/gopher-users/internal/api/response"
	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/model/user"
)

const (
	msgBadBody           = "Could not decode request body"
	msgUserExists        = "The user with this username already exists in the system"
	msgUserNotExists     = "The user with this username does not exist in the system"
	msgUserNotFound      = "User not found"
	msgInactiveUser      = "Inactive user"
	msgNoPrivileges      = "The user doesn't have enough privileges"
	msgBadLogin          = "Incorrect email or password"
	msgTooManyAttempts   = "Too many failed login attempts, try again later"
	msgInvalidToken      = "Invalid token"
	msgRecoverySent      = "Password recovery email sent"
	msgPasswordUpdated   = "Password updated successfully"
	msgRegistrationOff   = "Open user registration is forbidden on this server"
	msgSuperuserSelfKill = "Super users are not allowed to delete themselves"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) (user.User, error)
	Update(ctx context.Context, id int64, upd *user.Update) (user.User, error)
	FindByID(ctx context.Context, id int64) (user.User, error)
	FindByEmail(ctx context.Context, email string) (user.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, skipID int64, limit int) ([]user.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type MailDispatcher interface {
	Dispatch(ctx context.Context, job email.Job) error
}

type ResetTokenStore interface {
	MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) error
}

type LoginThrottle interface {
	Check(ctx context.Context, username string) error
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type Settings struct {
	SecretKey          []byte
	AccessTokenExpire  time.Duration
	ResetTokenExpire   time.Duration
	PasswordMinEntropy float64
	OpenRegistration   bool
	EmailsEnabled      bool
}

// HTTPHandler serves every API route.
type HTTPHandler struct {
	*AuthHandler
	*UserHandler
	*HealthHandler
}

func New(
	repo UserRepository,
	mailer MailDispatcher,
	tokens ResetTokenStore,
	throttle LoginThrottle,
	pinger Pinger,
	settings Settings,
	log *slog.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		AuthHandler: &AuthHandler{
			logger:   log,
			repo:     repo,
			mailer:   mailer,
			tokens:   tokens,
			throttle: throttle,
			settings: settings,
		},
		UserHandler: &UserHandler{
			logger:   log,
			repo:     repo,
			mailer:   mailer,
			settings: settings,
		},
		HealthHandler: &HealthHandler{
			logger: log,
			pinger: pinger,
		},
	}
}

// maxJSONBody matches the 1MB cap ParseForm has for url-encoded bodies.
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// invalid answers 422 with the per-field messages of a failed validation.
func invalid(ctx context.Context, w http.ResponseWriter, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		response.Error(ctx, w, http.StatusUnprocessableEntity, fieldErrs)
		return
	}
	response.Internal(ctx, w, "failed to validate request", err)
}
