package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderEventKind string

const (
	EventOrderPlaced    OrderEventKind = "OrderPlaced"
	EventOrderPaid      OrderEventKind = "OrderPaid"
	EventOrderDelivered OrderEventKind = "OrderDelivered"
)

// OrderEvent is a ledger log captured by the listener.
type OrderEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind        OrderEventKind     `bson:"kind" json:"kind"`
	OrderID     uint64             `bson:"orderId" json:"orderId"`
	ProductID   uint64             `bson:"productId,omitempty" json:"productId,omitempty"`
	Buyer       string             `bson:"buyer,omitempty" json:"buyer,omitempty"`
	Seller      string             `bson:"seller,omitempty" json:"seller,omitempty"`
	IsPaid      bool               `bson:"isPaid" json:"isPaid"`
	AmountPaid  string             `bson:"amountPaid,omitempty" json:"amountPaid,omitempty"`
	TxHash      string             `bson:"txHash" json:"txHash"`
	BlockNumber uint64             `bson:"blockNumber" json:"blockNumber"`
	LogIndex    uint               `bson:"logIndex" json:"logIndex"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
