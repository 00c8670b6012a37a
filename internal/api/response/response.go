package response

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-users/internal/api/dto"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

const ContentTypeJSON = "application/json"

func JSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set(model.HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelError,
			"failed to write response",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

// Error writes {"detail": detail}. detail is a message or a field map.
func Error(ctx context.Context, w http.ResponseWriter, status int, detail any) {
	JSON(ctx, w, status, dto.ErrorResponse{Detail: detail})
}

// Unauthorized also sets the challenge header bearer clients expect.
func Unauthorized(ctx context.Context, w http.ResponseWriter, detail string) {
	w.Header().Set(model.HeaderWWWAuthenticate, "Bearer")
	Error(ctx, w, http.StatusUnauthorized, detail)
}

// Internal logs err and hides it from the client.
func Internal(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	logger.FromContext(ctx).LogAttrs(ctx,
		slog.LevelError,
		msg,
		slog.Any(model.KeyLoggerError, err),
	)
	Error(ctx, w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
