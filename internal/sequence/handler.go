package sequence

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sermac/ledger/internal/platform/httpx"
)

// Handler exposes the sequence counters.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers counter routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/guide", h.lastGuide)
	r.Post("/guide/increment", h.incrementGuide)
	r.Get("/purchase", h.lastPurchase)
	r.Post("/purchase/increment", h.incrementPurchase)
	r.Post("/reset", h.reset)
}

type counterResponse struct {
	Value int64 `json:"value"`
}

func (h *Handler) lastGuide(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.LastGuideNumber(r.Context())
	if err != nil {
		h.respondError(w, "read guide counter", err)
		return
	}
	httpx.JSON(w, http.StatusOK, counterResponse{Value: value})
}

func (h *Handler) incrementGuide(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.IncrementGuideNumber(r.Context())
	if err != nil {
		h.respondError(w, "increment guide counter", err)
		return
	}
	httpx.JSON(w, http.StatusOK, counterResponse{Value: value})
}

func (h *Handler) lastPurchase(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.LastPurchaseNumber(r.Context())
	if err != nil {
		h.respondError(w, "read purchase counter", err)
		return
	}
	httpx.JSON(w, http.StatusOK, counterResponse{Value: value})
}

func (h *Handler) incrementPurchase(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.IncrementPurchaseNumber(r.Context())
	if err != nil {
		h.respondError(w, "increment purchase counter", err)
		return
	}
	httpx.JSON(w, http.StatusOK, counterResponse{Value: value})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetAll(r.Context()); err != nil {
		h.respondError(w, "reset counters", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrUnknownCounter) {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
