package catalog

import (
	"context"
)

// Service wraps the catalog repository with input validation.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCustomerByRUT(ctx context.Context, rut string) (Customer, error) {
	if err := validateRUT(rut); err != nil {
		return Customer{}, err
	}
	return s.repo.GetCustomerByRUT(ctx, rut)
}

// ListCustomers returns all customers. Ordering is not guaranteed.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, customer Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}
	return s.repo.CreateCustomer(ctx, customer)
}

// AdjustCustomerDebt posts a signed manual debt adjustment.
func (s *Service) AdjustCustomerDebt(ctx context.Context, rut string, amount float64) error {
	if err := validateRUT(rut); err != nil {
		return err
	}
	return s.repo.AdjustCustomerDebt(ctx, rut, amount)
}

func (s *Service) GetProductByCode(ctx context.Context, code string) (Product, error) {
	if err := validateCode(code); err != nil {
		return Product{}, err
	}
	return s.repo.GetProductByCode(ctx, code)
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) UpsertProduct(ctx context.Context, product Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.UpsertProduct(ctx, product)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	if err := validateSupplier(supplier); err != nil {
		return Supplier{}, err
	}
	id, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return Supplier{}, err
	}
	supplier.ID = id
	return supplier, nil
}

func (s *Service) ListSupplierNames(ctx context.Context) ([]string, error) {
	return s.repo.ListSupplierNames(ctx)
}

func (s *Service) ListSalesmen(ctx context.Context) ([]string, error) {
	return s.repo.ListSalesmen(ctx)
}
