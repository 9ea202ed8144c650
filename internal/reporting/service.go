package reporting

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	CustomerStatement(ctx context.Context, rut string) (CustomerStatement, error)
	InventoryByCode(ctx context.Context, code string) (LotView, error)
	Inventory(ctx context.Context) ([]LotView, error)
}

// Service serves read-only projections. Customer statements go through the
// TTL cache with concurrent builds for the same customer collapsed into one.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService builds Service.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// SalesByCustomer returns the credit statement for one customer.
func (s *Service) SalesByCustomer(ctx context.Context, rut string) (CustomerStatement, error) {
	resultChan := s.group.DoChan(statementKey(rut), func() (interface{}, error) {
		return s.cache.FetchStatement(ctx, rut, func(ctx context.Context) (CustomerStatement, error) {
			return s.repo.CustomerStatement(ctx, rut)
		})
	})
	select {
	case <-ctx.Done():
		return CustomerStatement{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return CustomerStatement{}, res.Err
		}
		return res.Val.(CustomerStatement), nil
	}
}

// InventoryByCode projects one lot.
func (s *Service) InventoryByCode(ctx context.Context, code string) (LotView, error) {
	return s.repo.InventoryByCode(ctx, code)
}

// Inventory lists every lot.
func (s *Service) Inventory(ctx context.Context) ([]LotView, error) {
	return s.repo.Inventory(ctx)
}

// InvalidateCustomer drops the cached statement after a sale touches the
// customer's account. Failures are logged and swallowed; the TTL bounds how
// long a stale statement can live.
func (s *Service) InvalidateCustomer(ctx context.Context, rut string) {
	if err := s.cache.Invalidate(ctx, rut); err != nil {
		s.logger.Warn("statement cache invalidation failed",
			slog.String("rut", rut),
			slog.Any("error", err))
	}
}
