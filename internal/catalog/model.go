package catalog

// Customer is a client of the business, keyed by national tax ID (RUT).
// Debt is mutated only by the sales coordinator (credit sales) or by an
// explicit manual adjustment; no floor is enforced.
type Customer struct {
	RUT          string  `json:"rut"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	BusinessLine string  `json:"business_line"`
	Debt         float64 `json:"debt"`
}

// Product is a catalog reference entity. Price is nullable: products can be
// imported before a price is agreed.
type Product struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

// Supplier is a vendor reference entity.
type Supplier struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Salesman string `json:"salesman"`
}
