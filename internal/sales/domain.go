package sales

import "errors"

// SaleLine is one line item of a sale. NetKg arrives already tare-derived
// (gross minus 1.5 kg per tray, floored at zero) by the presentation layer;
// the coordinator persists it as given and only enforces non-negativity.
type SaleLine struct {
	ProductCode string  `json:"product_code"`
	Description string  `json:"description,omitempty"`
	Units       int64   `json:"units"`
	NetKg       float64 `json:"net_kg"`
}

// FinalizeSaleInput carries everything one sale needs. All line items share
// the guide number.
type FinalizeSaleInput struct {
	GuideNumber int64
	CustomerRUT string
	PayOnCredit bool
	Lines       []SaleLine
}

// SaleRecord mirrors one persisted ventas row. Created exactly once per line
// item per finalized sale; never mutated or deleted afterwards.
type SaleRecord struct {
	GuideNumber  int64   `json:"guide_number"`
	ProductCode  string  `json:"product_code"`
	Description  string  `json:"description"`
	Units        int64   `json:"units"`
	NetKg        float64 `json:"net_kg"`
	SaleDate     string  `json:"sale_date"`
	PaidOnCredit bool    `json:"paid_on_credit"`
	CustomerRUT  string  `json:"customer_rut,omitempty"`
}

// SaleReceipt is returned after a successful commit.
type SaleReceipt struct {
	Reference   string       `json:"reference"`
	GuideNumber int64        `json:"guide_number"`
	SaleDate    string       `json:"sale_date"`
	Total       float64      `json:"total"`
	OnCredit    bool         `json:"on_credit"`
	Lines       []SaleRecord `json:"lines"`
}

// Domain errors. Every one of them aborts the whole transaction; nothing is
// ever partially applied.
var (
	ErrEmptyItems        = errors.New("sales: line item list is empty")
	ErrProductNotFound   = errors.New("sales: product not found")
	ErrInvalidQuantity   = errors.New("sales: units and net kg must be >= 0")
	ErrCustomerNotFound  = errors.New("sales: customer not found")
	ErrCustomerRequired  = errors.New("sales: credit sale requires a customer")
	ErrPriceNotSet       = errors.New("sales: product has no price for credit sale")
	ErrInsufficientStock = errors.New("sales: insufficient stock")
	ErrDuplicateLine     = errors.New("sales: guide number already has this product line")
	ErrSaleNotFound      = errors.New("sales: no records for guide number")
)
