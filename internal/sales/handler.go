package sales

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sermac/ledger/internal/platform/httpx"
)

// Handler exposes the sale finalization endpoint.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/finalize", h.finalize)
	r.Get("/{guide}", h.getSale)
}

type finalizeLineRequest struct {
	ProductCode string  `json:"product_code" validate:"required,max=50"`
	Description string  `json:"description" validate:"max=300"`
	Units       int64   `json:"units" validate:"gte=0"`
	NetKg       float64 `json:"net_kg" validate:"gte=0"`
}

type finalizeRequest struct {
	GuideNumber int64                 `json:"guide_number" validate:"required,gt=0"`
	CustomerRUT string                `json:"customer_rut" validate:"omitempty,max=20"`
	PayOnCredit bool                  `json:"pay_on_credit"`
	Lines       []finalizeLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	input := FinalizeSaleInput{
		GuideNumber: req.GuideNumber,
		CustomerRUT: req.CustomerRUT,
		PayOnCredit: req.PayOnCredit,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, SaleLine{
			ProductCode: line.ProductCode,
			Description: line.Description,
			Units:       line.Units,
			NetKg:       line.NetKg,
		})
	}

	receipt, err := h.service.FinalizeSale(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	guide, err := strconv.ParseInt(chi.URLParam(r, "guide"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: guide number must be an integer", httpx.ErrValidation))
		return
	}
	records, err := h.service.GetSale(r.Context(), guide)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyItems), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrCustomerRequired), errors.Is(err, ErrPriceNotSet):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrCustomerNotFound), errors.Is(err, ErrSaleNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
	case errors.Is(err, ErrDuplicateLine):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, err.Error()))
	case errors.Is(err, ErrInsufficientStock):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrConstraint, err.Error()))
	default:
		h.logger.Error("finalize sale", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
