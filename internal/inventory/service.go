package inventory

import (
	"context"
	"errors"
	"fmt"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetByCode(ctx context.Context, code string) (Lot, error)
	List(ctx context.Context) ([]Lot, error)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// AllowNegativeStock keeps the ledger permissive: outbound deltas may take
	// a lot below zero. Historical behavior, on by default in config.
	AllowNegativeStock bool
}

// Service coordinates inventory ledger operations.
type Service struct {
	repo     RepositoryPort
	allowNeg bool
}

// NewService builds Service.
func NewService(repo RepositoryPort, cfg ServiceConfig) *Service {
	return &Service{repo: repo, allowNeg: cfg.AllowNegativeStock}
}

// ApplyInbound inserts a new lot or merges the delta into an existing one:
// units and kg accumulate, the [oldest,newest] date window widens. The merge
// is monotone and deliberately not idempotent.
func (s *Service) ApplyInbound(ctx context.Context, delta InboundDelta) (Lot, error) {
	if delta.Code == "" || delta.ProductName == "" {
		return Lot{}, errors.New("inventory: code and product name required")
	}
	if delta.Units < 0 || delta.Kg < 0 {
		return Lot{}, ErrInvalidQuantity
	}
	if !validDate(delta.OldestDate) || !validDate(delta.NewestDate) {
		return Lot{}, ErrInvalidDate
	}

	var merged Lot
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lot, err := tx.GetLotForUpdate(ctx, delta.Code)
		switch {
		case errors.Is(err, ErrNotFound):
			lot = Lot{Code: delta.Code}
		case err != nil:
			return err
		}
		lot.ProductName = delta.ProductName
		lot.Units += delta.Units
		lot.Kg += delta.Kg
		lot.OldestDate = earlierDate(lot.OldestDate, delta.OldestDate)
		lot.NewestDate = laterDate(lot.NewestDate, delta.NewestDate)
		merged = lot
		return tx.UpsertLot(ctx, lot)
	})
	if err != nil {
		return Lot{}, fmt.Errorf("inventory: apply inbound %s: %w", delta.Code, err)
	}
	return merged, nil
}

// ApplyOutbound subtracts units and kg from the lot. The guard against going
// negative only fires when configured; by default the ledger stays permissive
// and the sales coordinator decides what to enforce.
func (s *Service) ApplyOutbound(ctx context.Context, code string, units int64, kg float64) (Lot, error) {
	if code == "" {
		return Lot{}, errors.New("inventory: code required")
	}
	if units < 0 || kg < 0 {
		return Lot{}, ErrInvalidQuantity
	}

	var updated Lot
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lot, err := tx.GetLotForUpdate(ctx, code)
		if err != nil {
			return err
		}
		lot.Units -= units
		lot.Kg -= kg
		if !s.allowNeg && (lot.Units < 0 || lot.Kg < 0) {
			return ErrInsufficientStock
		}
		updated = lot
		return tx.UpsertLot(ctx, lot)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) {
			return Lot{}, err
		}
		return Lot{}, fmt.Errorf("inventory: apply outbound %s: %w", code, err)
	}
	return updated, nil
}

// TouchDates widens the lot's date window with a single observed date.
func (s *Service) TouchDates(ctx context.Context, code, date string) (Lot, error) {
	if code == "" {
		return Lot{}, errors.New("inventory: code required")
	}
	if date == "" || !validDate(date) {
		return Lot{}, ErrInvalidDate
	}

	var updated Lot
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lot, err := tx.GetLotForUpdate(ctx, code)
		if err != nil {
			return err
		}
		lot.OldestDate = earlierDate(lot.OldestDate, date)
		lot.NewestDate = laterDate(lot.NewestDate, date)
		updated = lot
		return tx.UpsertLot(ctx, lot)
	})
	if err != nil {
		return Lot{}, err
	}
	return updated, nil
}

// GetByCode returns one lot.
func (s *Service) GetByCode(ctx context.Context, code string) (Lot, error) {
	if code == "" {
		return Lot{}, errors.New("inventory: code required")
	}
	return s.repo.GetByCode(ctx, code)
}

// List returns every lot.
func (s *Service) List(ctx context.Context) ([]Lot, error) {
	return s.repo.List(ctx)
}
