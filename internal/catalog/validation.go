package catalog

import (
	"errors"
	"strings"
)

var errValidation = errors.New("catalog: validation failed")

func validateRUT(rut string) error {
	if strings.TrimSpace(rut) == "" {
		return errors.Join(errValidation, errors.New("rut is required"))
	}
	return nil
}

func validateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.Join(errValidation, errors.New("product code is required"))
	}
	return nil
}

func validateCustomer(c Customer) error {
	if err := validateRUT(c.RUT); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.Join(errValidation, errors.New("customer name is required"))
	}
	return nil
}

func validateProduct(p Product) error {
	if err := validateCode(p.Code); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.Join(errValidation, errors.New("product name is required"))
	}
	if p.Price != nil && *p.Price < 0 {
		return errors.Join(errValidation, errors.New("product price must be >= 0"))
	}
	return nil
}

func validateSupplier(s Supplier) error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.Join(errValidation, errors.New("supplier name is required"))
	}
	if strings.TrimSpace(s.Salesman) == "" {
		return errors.Join(errValidation, errors.New("supplier salesman is required"))
	}
	return nil
}

// IsValidation reports whether err is a catalog validation error.
func IsValidation(err error) bool {
	return errors.Is(err, errValidation)
}
