package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sermac/ledger/internal/platform/httpx"
)

// Handler exposes catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.listCustomers)
	r.Post("/customers", h.createCustomer)
	r.Get("/customers/{rut}", h.getCustomer)
	r.Post("/customers/{rut}/debt", h.adjustDebt)

	r.Get("/products", h.listProducts)
	r.Put("/products", h.upsertProduct)
	r.Get("/products/{code}", h.getProduct)

	r.Get("/suppliers", h.listSuppliers)
	r.Post("/suppliers", h.createSupplier)
	r.Get("/suppliers/names", h.listSupplierNames)
	r.Get("/suppliers/salesmen", h.listSalesmen)
}

type createCustomerRequest struct {
	RUT          string  `json:"rut" validate:"required,max=20"`
	Name         string  `json:"name" validate:"required,max=200"`
	Address      string  `json:"address" validate:"max=300"`
	BusinessLine string  `json:"business_line" validate:"max=200"`
	Debt         float64 `json:"debt"`
}

type adjustDebtRequest struct {
	Amount float64 `json:"amount" validate:"required"`
}

type upsertProductRequest struct {
	Code  string   `json:"code" validate:"required,max=50"`
	Name  string   `json:"name" validate:"required,max=200"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
}

type createSupplierRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Salesman string `json:"salesman" validate:"required,max=200"`
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.respondError(w, "list customers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetCustomerByRUT(r.Context(), chi.URLParam(r, "rut"))
	if err != nil {
		h.respondError(w, "get customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer := Customer{
		RUT:          req.RUT,
		Name:         req.Name,
		Address:      req.Address,
		BusinessLine: req.BusinessLine,
		Debt:         req.Debt,
	}
	if err := h.service.CreateCustomer(r.Context(), customer); err != nil {
		h.respondError(w, "create customer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) adjustDebt(w http.ResponseWriter, r *http.Request) {
	var req adjustDebtRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rut := chi.URLParam(r, "rut")
	if err := h.service.AdjustCustomerDebt(r.Context(), rut, req.Amount); err != nil {
		h.respondError(w, "adjust debt", err)
		return
	}
	customer, err := h.service.GetCustomerByRUT(r.Context(), rut)
	if err != nil {
		h.respondError(w, "get customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondError(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProductByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) upsertProduct(w http.ResponseWriter, r *http.Request) {
	var req upsertProductRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product := Product{Code: req.Code, Name: req.Name, Price: req.Price}
	if err := h.service.UpsertProduct(r.Context(), product); err != nil {
		h.respondError(w, "upsert product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.respondError(w, "list suppliers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, suppliers)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	supplier, err := h.service.CreateSupplier(r.Context(), Supplier{Name: req.Name, Salesman: req.Salesman})
	if err != nil {
		h.respondError(w, "create supplier", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

func (h *Handler) listSupplierNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListSupplierNames(r.Context())
	if err != nil {
		h.respondError(w, "list supplier names", err)
		return
	}
	httpx.JSON(w, http.StatusOK, names)
}

func (h *Handler) listSalesmen(w http.ResponseWriter, r *http.Request) {
	salesmen, err := h.service.ListSalesmen(r.Context())
	if err != nil {
		h.respondError(w, "list salesmen", err)
		return
	}
	httpx.JSON(w, http.StatusOK, salesmen)
}

func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed request body")
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
	case errors.Is(err, ErrAlreadyExists):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, err.Error()))
	case IsValidation(err):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
