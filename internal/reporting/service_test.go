package reporting

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	statement      CustomerStatement
	statementErr   error
	statementCalls int
	lots           []LotView
}

func (m *mockRepo) CustomerStatement(ctx context.Context, rut string) (CustomerStatement, error) {
	m.statementCalls++
	if m.statementErr != nil {
		return CustomerStatement{}, m.statementErr
	}
	return m.statement, nil
}

func (m *mockRepo) InventoryByCode(ctx context.Context, code string) (LotView, error) {
	for _, lot := range m.lots {
		if lot.Code == code {
			return lot, nil
		}
	}
	return LotView{}, ErrNotFound
}

func (m *mockRepo) Inventory(ctx context.Context) ([]LotView, error) {
	return m.lots, nil
}

func newTestService(t *testing.T, repo RepositoryPort) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache, nil)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func sampleStatement() CustomerStatement {
	price := 1000.0
	total := 4500.0
	return CustomerStatement{
		RUT:  "11.111.111-1",
		Name: "Pesquera Austral",
		Debt: 8500,
		Lines: []SaleLineView{
			{GuideNumber: 7, ProductCode: "A", Description: "Salmon Fillet",
				Units: 3, NetKg: 4.5, SaleDate: "2024-02-01", UnitPrice: &price, Total: &total},
		},
	}
}

func TestSalesByCustomerCaches(t *testing.T) {
	repo := &mockRepo{statement: sampleStatement()}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	first, err := svc.SalesByCustomer(ctx, "11.111.111-1")
	require.NoError(t, err)
	require.Equal(t, repo.statement, first)
	require.Equal(t, 1, repo.statementCalls)

	// Second read is served from the cache, not the repository.
	second, err := svc.SalesByCustomer(ctx, "11.111.111-1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.statementCalls)
}

func TestInvalidateCustomerForcesReload(t *testing.T) {
	repo := &mockRepo{statement: sampleStatement()}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.SalesByCustomer(ctx, "11.111.111-1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.statementCalls)

	repo.statement.Debt = 17000
	svc.InvalidateCustomer(ctx, "11.111.111-1")

	reloaded, err := svc.SalesByCustomer(ctx, "11.111.111-1")
	require.NoError(t, err)
	require.InDelta(t, 17000.0, reloaded.Debt, 0.0001)
	require.Equal(t, 2, repo.statementCalls)
}

func TestSalesByCustomerUnknownCustomer(t *testing.T) {
	repo := &mockRepo{statementErr: ErrNotFound}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	_, err := svc.SalesByCustomer(context.Background(), "99.999.999-9")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSalesByCustomerWithoutRedis(t *testing.T) {
	repo := &mockRepo{statement: sampleStatement()}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	got, err := svc.SalesByCustomer(ctx, "11.111.111-1")
	require.NoError(t, err)
	require.Equal(t, repo.statement, got)

	// Every read hits the repository when no cache is configured.
	_, err = svc.SalesByCustomer(ctx, "11.111.111-1")
	require.NoError(t, err)
	require.Equal(t, 2, repo.statementCalls)
}

func TestInventoryProjections(t *testing.T) {
	repo := &mockRepo{lots: []LotView{
		{Code: "A", ProductName: "Salmon Fillet", Units: 50, Kg: 120},
		{Code: "B", ProductName: "Hake Box", Units: 10, Kg: 30},
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	lots, err := svc.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 2)

	lot, err := svc.InventoryByCode(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, int64(10), lot.Units)

	_, err = svc.InventoryByCode(ctx, "GHOST")
	require.ErrorIs(t, err, ErrNotFound)
}
