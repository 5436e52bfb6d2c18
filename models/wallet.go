package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet is the per-address document shared by the delivery app (data1/data2)
// and the marketplace (slugs).
type Wallet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	WalletID  string             `bson:"walletId" json:"walletId"`
	Slugs     []string           `bson:"slugs,omitempty" json:"slugs"`
	Data1     string             `bson:"data1,omitempty" json:"data1,omitempty"`
	Data2     string             `bson:"data2,omitempty" json:"data2,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Distributor holds the delivery agent settings. The id number is only kept
// as a bcrypt hash and its last four digits.
type Distributor struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	WalletID     string             `bson:"walletId" json:"walletId"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone" json:"phone"`
	IDNumberHash string             `bson:"idNumberHash,omitempty" json:"-"`
	IDNumberLast string             `bson:"idNumberLast,omitempty" json:"idNumberLast,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const DefaultDistributorPhone = "0000000000"
