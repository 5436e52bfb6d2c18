package models

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is the display form of a ledger order record.
type Order struct {
	ID          uint64      `json:"id"`
	ProductID   uint64      `json:"productId"`
	Buyer       string      `json:"buyer"`
	Seller      string      `json:"seller"`
	Amount      string      `json:"amount"`
	AmountRaw   string      `json:"amountRaw"`
	IsPaid      bool        `json:"isPaid"`
	IsDelivered bool        `json:"isDelivered"`
	Status      OrderStatus `json:"status"`
	Product     *Product    `json:"product,omitempty"`
}

// DeriveStatus maps the ledger flags to a lifecycle state. A zero buyer marks a
// cancelled order.
func DeriveStatus(buyerIsZero, isPaid, isDelivered bool) OrderStatus {
	switch {
	case buyerIsZero:
		return OrderStatusCancelled
	case isDelivered:
		return OrderStatusDelivered
	case isPaid:
		return OrderStatusPaid
	default:
		return OrderStatusPending
	}
}
