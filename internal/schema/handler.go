package schema

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sermac/ledger/internal/platform/httpx"
)

// Handler exposes the destructive reset on the admin surface.
type Handler struct {
	logger  *slog.Logger
	manager *Manager
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, manager *Manager) *Handler {
	return &Handler{logger: logger, manager: manager}
}

// MountRoutes registers admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/reset", h.reset)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Reset(r.Context()); err != nil {
		h.logger.Error("schema reset", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
