package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// PaymentStatus is the result of a single payment check for an order.
type PaymentStatus struct {
	OrderID  uint64 `json:"orderId"`
	Paid     bool   `json:"paid"`
	OnChain  bool   `json:"onChain"`
	Seller   string `json:"seller"`
	Required string `json:"required"`
	Balance  string `json:"balance"`
	Token    string `json:"token"`
}

// PaymentNotDetectedError carries the instructions shown to the seller.
type PaymentNotDetectedError struct {
	Price  string
	Seller string
	Token  string
}

func (e *PaymentNotDetectedError) Error() string {
	return fmt.Sprintf("Payment not detected. Please send %s BRTX to %s using token contract %s and wait for confirmation",
		e.Price, e.Seller, e.Token)
}

func (e *PaymentNotDetectedError) Unwrap() error { return models.ErrPaymentNotDetected }

// PaymentGate guesses whether an unpaid order has been settled off-contract by
// comparing the seller's BRTX balance with the product price. The ledger
// contract remains the authority.
type PaymentGate struct {
	ledger   *Ledger
	detector *utils.PaymentDetector
}

func NewPaymentGate(ledger *Ledger, detector *utils.PaymentDetector) *PaymentGate {
	return &PaymentGate{ledger: ledger, detector: detector}
}

// Check runs one balance check for orderID.
func (g *PaymentGate) Check(ctx context.Context, orderID uint64) (*PaymentStatus, error) {
	order, err := g.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	product, err := g.ledger.GetProduct(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}

	status := &PaymentStatus{
		OrderID:  orderID,
		OnChain:  order.IsPaid,
		Seller:   order.Seller,
		Required: product.Price,
		Token:    g.ledger.TokenAddress().Hex(),
	}

	price, _ := new(big.Int).SetString(product.PriceRaw, 10)
	balance, err := g.ledger.BalanceOf(ctx, common.HexToAddress(order.Seller))
	if err != nil {
		return nil, err
	}
	status.Balance = utils.FormatUnits(balance, PriceDecimals)
	status.Paid = order.IsPaid || (price != nil && balance.Cmp(price) >= 0)
	return status, nil
}

// RequirePayment passes when order is paid on chain, and otherwise polls the
// seller balance. It returns a *PaymentNotDetectedError when nothing is found.
func (g *PaymentGate) RequirePayment(ctx context.Context, order *models.Order) error {
	if order.IsPaid {
		return nil
	}

	product, err := g.ledger.GetProduct(ctx, order.ProductID)
	if err != nil {
		return err
	}
	price, ok := new(big.Int).SetString(product.PriceRaw, 10)
	if !ok {
		return errors.Errorf("product %d has no valid price", product.ID)
	}
	seller := common.HexToAddress(order.Seller)

	paid := g.detector.Detect(ctx, func(ctx context.Context) (bool, error) {
		balance, err := g.ledger.BalanceOf(ctx, seller)
		if err != nil {
			return false, err
		}
		return balance.Cmp(price) >= 0, nil
	})
	if !paid {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &PaymentNotDetectedError{
			Price:  product.Price,
			Seller: order.Seller,
			Token:  g.ledger.TokenAddress().Hex(),
		}
	}
	return nil
}
