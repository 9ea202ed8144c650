package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sermac/ledger/internal/platform/httpx"
)

// Handler exposes inventory ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/inbound", h.applyInbound)
	r.Post("/outbound", h.applyOutbound)
	r.Get("/{code}", h.getByCode)
	r.Post("/{code}/dates", h.touchDates)
}

type inboundRequest struct {
	Code        string  `json:"code" validate:"required,max=50"`
	ProductName string  `json:"product_name" validate:"required,max=200"`
	Units       int64   `json:"units" validate:"gte=0"`
	Kg          float64 `json:"kg" validate:"gte=0"`
	OldestDate  string  `json:"oldest_date" validate:"omitempty,datetime=2006-01-02"`
	NewestDate  string  `json:"newest_date" validate:"omitempty,datetime=2006-01-02"`
}

type outboundRequest struct {
	Code  string  `json:"code" validate:"required,max=50"`
	Units int64   `json:"units" validate:"gte=0"`
	Kg    float64 `json:"kg" validate:"gte=0"`
}

type touchDatesRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, "list inventory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lots)
}

func (h *Handler) getByCode(w http.ResponseWriter, r *http.Request) {
	lot, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, "get lot", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lot)
}

func (h *Handler) applyInbound(w http.ResponseWriter, r *http.Request) {
	var req inboundRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lot, err := h.service.ApplyInbound(r.Context(), InboundDelta{
		Code:        req.Code,
		ProductName: req.ProductName,
		Units:       req.Units,
		Kg:          req.Kg,
		OldestDate:  req.OldestDate,
		NewestDate:  req.NewestDate,
	})
	if err != nil {
		h.respondError(w, "apply inbound", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lot)
}

func (h *Handler) applyOutbound(w http.ResponseWriter, r *http.Request) {
	var req outboundRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lot, err := h.service.ApplyOutbound(r.Context(), req.Code, req.Units, req.Kg)
	if err != nil {
		h.respondError(w, "apply outbound", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lot)
}

func (h *Handler) touchDates(w http.ResponseWriter, r *http.Request) {
	var req touchDatesRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lot, err := h.service.TouchDates(r.Context(), chi.URLParam(r, "code"), req.Date)
	if err != nil {
		h.respondError(w, "touch dates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lot)
}

func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("%w: malformed request body", httpx.ErrValidation)
	}
	if err := h.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return nil
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidDate):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	case errors.Is(err, ErrInsufficientStock):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrConstraint, err.Error()))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
