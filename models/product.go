package models

// Product is the display form of a ledger product record.
type Product struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`    // formatted, 18 decimals
	PriceRaw    string `json:"priceRaw"` // base units
	Stock       uint64 `json:"stock"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ProductType string `json:"productType"`
	Condition   string `json:"condition"`
	Seller      string `json:"seller"`
}
