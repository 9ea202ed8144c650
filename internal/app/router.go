package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sermac/ledger/internal/catalog"
	"github.com/sermac/ledger/internal/inventory"
	"github.com/sermac/ledger/internal/reporting"
	"github.com/sermac/ledger/internal/sales"
	"github.com/sermac/ledger/internal/schema"
	"github.com/sermac/ledger/internal/sequence"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	InventoryHandler *inventory.Handler
	SalesHandler     *sales.Handler
	ReportingHandler *reporting.Handler
	SequenceHandler  *sequence.Handler
	SchemaHandler    *schema.Handler
}

// NewRouter constructs the chi.Router with ledger defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/catalog", params.CatalogHandler.MountRoutes)
	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/reports", params.ReportingHandler.MountRoutes)
	r.Route("/counters", params.SequenceHandler.MountRoutes)
	r.Route("/admin", params.SchemaHandler.MountRoutes)

	return r
}
