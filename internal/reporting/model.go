package reporting

import "errors"

// ErrNotFound marks a projection over a customer or product that does not
// exist.
var ErrNotFound = errors.New("reporting: not found")

// SaleLineView is one credit sale row projected for a customer statement.
// Total is NetKg times the current catalog price; it is nil when the product
// has no price on record.
type SaleLineView struct {
	GuideNumber int64    `json:"guide_number"`
	ProductCode string   `json:"product_code"`
	Description string   `json:"description"`
	Units       int64    `json:"units"`
	NetKg       float64  `json:"net_kg"`
	SaleDate    string   `json:"sale_date"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Total       *float64 `json:"total,omitempty"`
}

// CustomerStatement is the full credit statement for one customer: every
// credit row plus the running debt as currently posted on the account.
type CustomerStatement struct {
	RUT   string         `json:"rut"`
	Name  string         `json:"name"`
	Debt  float64        `json:"debt"`
	Lines []SaleLineView `json:"lines"`
}

// LotView projects one inventory lot for read-only listing.
type LotView struct {
	Code        string  `json:"code"`
	ProductName string  `json:"product_name"`
	Units       int64   `json:"units"`
	Kg          float64 `json:"kg"`
	OldestDate  string  `json:"oldest_date,omitempty"`
	NewestDate  string  `json:"newest_date,omitempty"`
}
