package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// memoryStore emulates the store with real rollback semantics: WithTx works
// on a deep copy and publishes it only when the callback succeeds.
type memoryStore struct {
	products map[string]ProductRow
	lots     map[string]LotRow
	sales    map[string]SaleRecord // keyed guide:code, mirrors the PK
	debts    map[string]float64
	order    []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: make(map[string]ProductRow),
		lots:     make(map[string]LotRow),
		sales:    make(map[string]SaleRecord),
		debts:    make(map[string]float64),
	}
}

func (s *memoryStore) clone() *memoryStore {
	c := newMemoryStore()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.debts {
		c.debts[k] = v
	}
	c.order = append(c.order, s.order...)
	return c
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := s.clone()
	if err := fn(ctx, &memoryTx{store: staged}); err != nil {
		return err
	}
	*s = *staged
	return nil
}

func (s *memoryStore) ListByGuideNumber(ctx context.Context, guideNumber int64) ([]SaleRecord, error) {
	var records []SaleRecord
	for _, key := range s.order {
		rec := s.sales[key]
		if rec.GuideNumber == guideNumber {
			records = append(records, rec)
		}
	}
	return records, nil
}

type memoryTx struct {
	store *memoryStore
}

func saleKey(guide int64, code string) string {
	return fmt.Sprintf("%d:%s", guide, code)
}

func (tx *memoryTx) GetProduct(ctx context.Context, code string) (ProductRow, error) {
	p, ok := tx.store.products[code]
	if !ok {
		return ProductRow{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
	}
	return p, nil
}

func (tx *memoryTx) GetLotForUpdate(ctx context.Context, code string) (LotRow, error) {
	lot, ok := tx.store.lots[code]
	if !ok {
		return LotRow{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
	}
	return lot, nil
}

func (tx *memoryTx) DecrementLot(ctx context.Context, code string, units int64, kg float64) error {
	lot := tx.store.lots[code]
	lot.Units -= units
	lot.Kg -= kg
	tx.store.lots[code] = lot
	return nil
}

func (tx *memoryTx) InsertSaleRecord(ctx context.Context, record SaleRecord) error {
	key := saleKey(record.GuideNumber, record.ProductCode)
	if _, exists := tx.store.sales[key]; exists {
		return fmt.Errorf("%w: guide %d product %s", ErrDuplicateLine, record.GuideNumber, record.ProductCode)
	}
	tx.store.sales[key] = record
	tx.store.order = append(tx.store.order, key)
	return nil
}

func (tx *memoryTx) CustomerExists(ctx context.Context, rut string) (bool, error) {
	_, ok := tx.store.debts[rut]
	return ok, nil
}

func (tx *memoryTx) AddCustomerDebt(ctx context.Context, rut string, amount float64) error {
	if _, ok := tx.store.debts[rut]; !ok {
		return fmt.Errorf("%w: %s", ErrCustomerNotFound, rut)
	}
	tx.store.debts[rut] += amount
	return nil
}

type fakeCounter struct {
	value int64
	calls int
	err   error
}

func (c *fakeCounter) IncrementGuideNumber(ctx context.Context) (int64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	c.value++
	return c.value, nil
}

type fakeInvalidator struct {
	ruts []string
}

func (f *fakeInvalidator) InvalidateCustomer(ctx context.Context, rut string) {
	f.ruts = append(f.ruts, rut)
}

func price(v float64) *float64 { return &v }

func seededStore() *memoryStore {
	store := newMemoryStore()
	store.products["A"] = ProductRow{Code: "A", Name: "Salmon Fillet", Price: price(1000)}
	store.products["B"] = ProductRow{Code: "B", Name: "Hake Box", Price: price(2000)}
	store.products["NOPRICE"] = ProductRow{Code: "NOPRICE", Name: "Unpriced"}
	store.lots["A"] = LotRow{Code: "A", ProductName: "Salmon Fillet", Units: 50, Kg: 120}
	store.lots["B"] = LotRow{Code: "B", ProductName: "Hake Box", Units: 10, Kg: 30}
	store.lots["NOPRICE"] = LotRow{Code: "NOPRICE", ProductName: "Unpriced", Units: 5, Kg: 5}
	store.debts["11.111.111-1"] = 0
	return store
}

func newTestService(store *memoryStore, counter *fakeCounter, allowNeg bool) *Service {
	return NewService(store, counter, nil, nil, ServiceConfig{AllowNegativeStock: allowNeg})
}

func TestFinalizeSaleConservation(t *testing.T) {
	store := seededStore()
	counter := &fakeCounter{}
	svc := newTestService(store, counter, true)

	receipt, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 7,
		Lines: []SaleLine{
			{ProductCode: "A", Units: 3, NetKg: 4.5},
			{ProductCode: "B", Units: 1, NetKg: 2.0},
		},
	})
	require.NoError(t, err)
	require.Len(t, receipt.Lines, 2)
	require.Len(t, store.sales, 2)

	require.Equal(t, int64(47), store.lots["A"].Units)
	require.InDelta(t, 115.5, store.lots["A"].Kg, 0.0001)
	require.Equal(t, int64(9), store.lots["B"].Units)
	require.InDelta(t, 28.0, store.lots["B"].Kg, 0.0001)

	// Counter advanced exactly once, after the commit.
	require.Equal(t, 1, counter.calls)

	// Name snapshot comes from the catalog when the line has no override.
	require.Equal(t, "Salmon Fillet", store.sales[saleKey(7, "A")].Description)
}

func TestFinalizeSaleAtomicOnUnknownProduct(t *testing.T) {
	store := seededStore()
	counter := &fakeCounter{}
	svc := newTestService(store, counter, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 8,
		Lines: []SaleLine{
			{ProductCode: "A", Units: 3, NetKg: 4.5},
			{ProductCode: "GHOST", Units: 1, NetKg: 1.0},
		},
	})
	require.ErrorIs(t, err, ErrProductNotFound)

	// Nothing persisted: no sale rows, no inventory change, no counter burn.
	require.Empty(t, store.sales)
	require.Equal(t, int64(50), store.lots["A"].Units)
	require.InDelta(t, 120.0, store.lots["A"].Kg, 0.0001)
	require.Equal(t, 0, counter.calls)
}

func TestFinalizeSaleCreditAccruesDebt(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, true)

	receipt, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 9,
		CustomerRUT: "11.111.111-1",
		PayOnCredit: true,
		Lines: []SaleLine{
			{ProductCode: "A", Units: 3, NetKg: 4.5},
			{ProductCode: "B", Units: 1, NetKg: 2.0},
		},
	})
	require.NoError(t, err)

	// 4.5×1000 + 2.0×2000 = 8500
	require.InDelta(t, 8500.0, receipt.Total, 0.0001)
	require.InDelta(t, 8500.0, store.debts["11.111.111-1"], 0.0001)
}

func TestFinalizeSaleCashLeavesDebtUnchanged(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 10,
		CustomerRUT: "11.111.111-1",
		PayOnCredit: false,
		Lines:       []SaleLine{{ProductCode: "A", Units: 1, NetKg: 1.0}},
	})
	require.NoError(t, err)
	require.InDelta(t, 0.0, store.debts["11.111.111-1"], 0.0001)
}

func TestFinalizeSaleEmptyItems(t *testing.T) {
	svc := newTestService(seededStore(), &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{GuideNumber: 11})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestFinalizeSaleNegativeQuantity(t *testing.T) {
	svc := newTestService(seededStore(), &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 12,
		Lines:       []SaleLine{{ProductCode: "A", Units: -1, NetKg: 1.0}},
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestFinalizeSaleCreditRequiresCustomer(t *testing.T) {
	svc := newTestService(seededStore(), &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 13,
		PayOnCredit: true,
		Lines:       []SaleLine{{ProductCode: "A", Units: 1, NetKg: 1.0}},
	})
	require.ErrorIs(t, err, ErrCustomerRequired)
}

func TestFinalizeSaleCreditUnknownCustomerRollsBack(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 14,
		CustomerRUT: "99.999.999-9",
		PayOnCredit: true,
		Lines:       []SaleLine{{ProductCode: "A", Units: 1, NetKg: 1.0}},
	})
	require.ErrorIs(t, err, ErrCustomerNotFound)
	require.Empty(t, store.sales)
	require.Equal(t, int64(50), store.lots["A"].Units)
}

func TestFinalizeSaleCreditUnpricedProductRollsBack(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 15,
		CustomerRUT: "11.111.111-1",
		PayOnCredit: true,
		Lines: []SaleLine{
			{ProductCode: "A", Units: 1, NetKg: 1.0},
			{ProductCode: "NOPRICE", Units: 1, NetKg: 1.0},
		},
	})
	require.ErrorIs(t, err, ErrPriceNotSet)
	require.Empty(t, store.sales)
	require.InDelta(t, 0.0, store.debts["11.111.111-1"], 0.0001)
}

func TestFinalizeSalePermissiveNegativeStock(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 16,
		Lines:       []SaleLine{{ProductCode: "B", Units: 25, NetKg: 60}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(-15), store.lots["B"].Units)
}

func TestFinalizeSaleGuardedNegativeStock(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, false)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 17,
		Lines:       []SaleLine{{ProductCode: "B", Units: 25, NetKg: 60}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, int64(10), store.lots["B"].Units)
	require.Empty(t, store.sales)
}

func TestFinalizeSaleDuplicateProductLine(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, true)

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 18,
		Lines: []SaleLine{
			{ProductCode: "A", Units: 1, NetKg: 1.0},
			{ProductCode: "A", Units: 2, NetKg: 2.0},
		},
	})
	require.ErrorIs(t, err, ErrDuplicateLine)
	require.Empty(t, store.sales)
	require.Equal(t, int64(50), store.lots["A"].Units)
}

func TestFinalizeSaleCounterFailureDoesNotRevert(t *testing.T) {
	store := seededStore()
	counter := &fakeCounter{err: errors.New("configuracion unavailable")}
	svc := newTestService(store, counter, true)

	receipt, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 19,
		Lines:       []SaleLine{{ProductCode: "A", Units: 1, NetKg: 1.0}},
	})
	require.NoError(t, err)
	require.Len(t, receipt.Lines, 1)
	require.Len(t, store.sales, 1)
	require.Equal(t, 1, counter.calls)
}

func TestFinalizeSaleInvalidatesCustomerProjection(t *testing.T) {
	store := seededStore()
	inv := &fakeInvalidator{}
	svc := NewService(store, &fakeCounter{}, inv, nil, ServiceConfig{AllowNegativeStock: true})

	_, err := svc.FinalizeSale(context.Background(), FinalizeSaleInput{
		GuideNumber: 20,
		CustomerRUT: "11.111.111-1",
		PayOnCredit: true,
		Lines:       []SaleLine{{ProductCode: "A", Units: 1, NetKg: 1.0}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"11.111.111-1"}, inv.ruts)
}

func TestGetSale(t *testing.T) {
	store := seededStore()
	svc := newTestService(store, &fakeCounter{}, true)
	ctx := context.Background()

	_, err := svc.FinalizeSale(ctx, FinalizeSaleInput{
		GuideNumber: 21,
		Lines: []SaleLine{
			{ProductCode: "A", Units: 1, NetKg: 1.0},
			{ProductCode: "B", Units: 1, NetKg: 1.0},
		},
	})
	require.NoError(t, err)

	records, err := svc.GetSale(ctx, 21)
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = svc.GetSale(ctx, 999)
	require.ErrorIs(t, err, ErrSaleNotFound)
}
