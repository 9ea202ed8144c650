package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByGuideNumber(ctx context.Context, guideNumber int64) ([]SaleRecord, error)
}

// CounterPort advances the guide number after a successful commit.
type CounterPort interface {
	IncrementGuideNumber(ctx context.Context) (int64, error)
}

// InvalidatorPort drops stale report projections after a sale. Best effort.
type InvalidatorPort interface {
	InvalidateCustomer(ctx context.Context, rut string)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// AllowNegativeStock preserves the historical permissive behavior. When
	// false, a sale that would take any product lot below zero is rejected
	// with ErrInsufficientStock before anything is written.
	AllowNegativeStock bool
}

// Service is the sales transaction coordinator. It holds no state across
// calls; every FinalizeSale opens a fresh transactional scope bound to its
// inputs.
type Service struct {
	repo        RepositoryPort
	counters    CounterPort
	invalidator InvalidatorPort
	logger      *slog.Logger
	allowNeg    bool
	now         func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, counters CounterPort, invalidator InvalidatorPort, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		counters:    counters,
		invalidator: invalidator,
		logger:      logger,
		allowNeg:    cfg.AllowNegativeStock,
		now:         time.Now,
	}
}

const dateLayout = "2006-01-02"

// FinalizeSale commits one sale as a single atomic unit: per line item, in
// input order, it decrements the inventory lot and appends an immutable sale
// row; if the sale is on credit it then posts one debt increment equal to
// Σ(NetKg × catalog price). Any failure anywhere rolls the whole scope back.
//
// The guide counter is advanced only after the commit succeeds, so a failed
// sale never burns a guide number. If the counter advance itself fails the
// sale stands: that inconsistency is logged and accepted.
func (s *Service) FinalizeSale(ctx context.Context, input FinalizeSaleInput) (SaleReceipt, error) {
	if len(input.Lines) == 0 {
		return SaleReceipt{}, ErrEmptyItems
	}
	for i, line := range input.Lines {
		if line.ProductCode == "" {
			return SaleReceipt{}, fmt.Errorf("%w: line %d has no product code", ErrProductNotFound, i)
		}
		if line.Units < 0 || line.NetKg < 0 {
			return SaleReceipt{}, fmt.Errorf("%w: line %d", ErrInvalidQuantity, i)
		}
	}
	if input.PayOnCredit && input.CustomerRUT == "" {
		return SaleReceipt{}, ErrCustomerRequired
	}

	saleDate := s.now().Format(dateLayout)
	receipt := SaleReceipt{
		Reference:   uuid.NewString(),
		GuideNumber: input.GuideNumber,
		SaleDate:    saleDate,
		OnCredit:    input.PayOnCredit,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if input.CustomerRUT != "" {
			exists, err := tx.CustomerExists(ctx, input.CustomerRUT)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", ErrCustomerNotFound, input.CustomerRUT)
			}
		}

		var total float64
		for _, line := range input.Lines {
			product, err := tx.GetProduct(ctx, line.ProductCode)
			if err != nil {
				return err
			}
			lot, err := tx.GetLotForUpdate(ctx, line.ProductCode)
			if err != nil {
				return err
			}
			if !s.allowNeg && (lot.Units-line.Units < 0 || lot.Kg-line.NetKg < 0) {
				return fmt.Errorf("%w: %s has %d units / %.2f kg on hand", ErrInsufficientStock, line.ProductCode, lot.Units, lot.Kg)
			}
			if err := tx.DecrementLot(ctx, line.ProductCode, line.Units, line.NetKg); err != nil {
				return err
			}

			description := line.Description
			if description == "" {
				description = product.Name
			}
			record := SaleRecord{
				GuideNumber:  input.GuideNumber,
				ProductCode:  line.ProductCode,
				Description:  description,
				Units:        line.Units,
				NetKg:        line.NetKg,
				SaleDate:     saleDate,
				PaidOnCredit: input.PayOnCredit,
				CustomerRUT:  input.CustomerRUT,
			}
			if err := tx.InsertSaleRecord(ctx, record); err != nil {
				return err
			}
			receipt.Lines = append(receipt.Lines, record)

			if input.PayOnCredit {
				// Price comes from the catalog at commit time, never from
				// the line item, so a stale client cannot skew the debt.
				if product.Price == nil {
					return fmt.Errorf("%w: %s", ErrPriceNotSet, line.ProductCode)
				}
				total += line.NetKg * *product.Price
			}
		}

		if input.PayOnCredit {
			if err := tx.AddCustomerDebt(ctx, input.CustomerRUT, total); err != nil {
				return err
			}
			receipt.Total = total
		}
		return nil
	})
	if err != nil {
		receipt.Lines = nil
		return SaleReceipt{}, err
	}

	// Commit first, counter second. A failed increment does not revert the
	// already-committed sale.
	if s.counters != nil {
		if _, err := s.counters.IncrementGuideNumber(ctx); err != nil {
			s.logger.Warn("guide counter increment failed after commit",
				slog.Int64("guide_number", input.GuideNumber),
				slog.Any("error", err))
		}
	}
	if s.invalidator != nil && input.CustomerRUT != "" {
		s.invalidator.InvalidateCustomer(ctx, input.CustomerRUT)
	}

	return receipt, nil
}

// GetSale reads back one finalized sale by guide number.
func (s *Service) GetSale(ctx context.Context, guideNumber int64) ([]SaleRecord, error) {
	records, err := s.repo.ListByGuideNumber(ctx, guideNumber)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrSaleNotFound, guideNumber)
	}
	return records, nil
}
