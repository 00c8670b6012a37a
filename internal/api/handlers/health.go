package handlers

import (
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-users/internal/model"
)

type HealthHandler struct {
	logger *slog.Logger
	pinger Pinger
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.HealthCheck(r.Context()); err != nil {
		h.logger.LogAttrs(r.Context(),
			slog.LevelError,
			"database is unreachable",
			slog.Any(model.KeyLoggerError, err),
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
