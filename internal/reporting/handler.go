package reporting

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sermac/ledger/internal/platform/httpx"
)

// Handler exposes reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers/{rut}", h.customerStatement)
	r.Get("/inventory", h.inventory)
	r.Get("/inventory/{code}", h.inventoryByCode)
}

func (h *Handler) customerStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := h.service.SalesByCustomer(r.Context(), chi.URLParam(r, "rut"))
	if err != nil {
		h.respondError(w, "customer statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.Inventory(r.Context())
	if err != nil {
		h.respondError(w, "inventory report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lots)
}

func (h *Handler) inventoryByCode(w http.ResponseWriter, r *http.Request) {
	lot, err := h.service.InventoryByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, "inventory report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lot)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
