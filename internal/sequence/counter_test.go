package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]int64{
		KeyGuideNumber:    0,
		KeyPurchaseNumber: 0,
	}}
}

func (s *memoryStore) Get(ctx context.Context, key string) (int64, error) {
	v, ok := s.values[key]
	if !ok {
		return 0, ErrUnknownCounter
	}
	return v, nil
}

func (s *memoryStore) Increment(ctx context.Context, key string) (int64, error) {
	if _, ok := s.values[key]; !ok {
		return 0, ErrUnknownCounter
	}
	s.values[key]++
	return s.values[key], nil
}

func (s *memoryStore) Reset(ctx context.Context, key string) error {
	if _, ok := s.values[key]; !ok {
		return ErrUnknownCounter
	}
	s.values[key] = 0
	return nil
}

func TestGuideNumberIncrement(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	before, err := svc.LastGuideNumber(ctx)
	require.NoError(t, err)

	next, err := svc.IncrementGuideNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, before+1, next)

	after, err := svc.LastGuideNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, before+1, after)

	// Reads are stable without intervening increments.
	again, err := svc.LastGuideNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, after, again)
}

func TestCountersAreIndependent(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, err := svc.IncrementGuideNumber(ctx)
	require.NoError(t, err)

	purchase, err := svc.LastPurchaseNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), purchase)
}

func TestResetAll(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, err := svc.IncrementGuideNumber(ctx)
	require.NoError(t, err)
	_, err = svc.IncrementPurchaseNumber(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.ResetAll(ctx))

	guide, err := svc.LastGuideNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), guide)
	purchase, err := svc.LastPurchaseNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), purchase)
}
