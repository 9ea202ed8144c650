// Package sequence owns the persisted guide and purchase number counters.
// Values are strictly increasing and never reused; the only way down is the
// explicit reset that accompanies a full ledger reset.
package sequence

import (
	"context"
	"errors"
	"fmt"
)

// Counter keys in the configuracion table. The historical key spelling is
// part of the storage contract and must not change.
const (
	KeyGuideNumber    = "UltimoNumeroGuia"
	KeyPurchaseNumber = "UltimoNumeroCompra"
)

// ErrUnknownCounter indicates a missing counter row.
var ErrUnknownCounter = errors.New("sequence: unknown counter")

// Store persists counter state. Increment must be an atomic single-statement
// read-modify-write so concurrent finalizations cannot lose updates.
type Store interface {
	Get(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Service exposes typed counter operations.
type Service struct {
	store Store
}

// NewService builds Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// LastGuideNumber returns the most recently issued guide number.
func (s *Service) LastGuideNumber(ctx context.Context) (int64, error) {
	return s.store.Get(ctx, KeyGuideNumber)
}

// IncrementGuideNumber advances the guide counter and returns the new value.
func (s *Service) IncrementGuideNumber(ctx context.Context) (int64, error) {
	return s.store.Increment(ctx, KeyGuideNumber)
}

// LastPurchaseNumber returns the most recently issued purchase number.
func (s *Service) LastPurchaseNumber(ctx context.Context) (int64, error) {
	return s.store.Get(ctx, KeyPurchaseNumber)
}

// IncrementPurchaseNumber advances the purchase counter and returns the new value.
func (s *Service) IncrementPurchaseNumber(ctx context.Context) (int64, error) {
	return s.store.Increment(ctx, KeyPurchaseNumber)
}

// ResetAll zeroes both counters. Only called from the full ledger reset.
func (s *Service) ResetAll(ctx context.Context) error {
	for _, key := range []string{KeyGuideNumber, KeyPurchaseNumber} {
		if err := s.store.Reset(ctx, key); err != nil {
			return fmt.Errorf("sequence: reset %s: %w", key, err)
		}
	}
	return nil
}
