package services

import (
	"context"
	"math/big"
	"strings"

	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const (
	StepApprove         = "approve"
	StepBuy             = "buyProduct"
	StepConfirmDelivery = "confirmDelivery"
	StepCancelOrder     = "cancelOrder"
	StepAddProduct      = "addProduct"
)

// NewProduct is a seller's listing request in display units.
type NewProduct struct {
	Name        string `json:"name" validate:"required,max=31"`
	Price       string `json:"price" validate:"required,numeric"`
	Stock       uint64 `json:"stock" validate:"required,gt=0"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ProductType string `json:"productType" validate:"max=31"`
	Condition   string `json:"condition" validate:"max=31"`
}

// TxBuilder prepares unsigned ledger calls for the session wallet. Nothing is
// signed here.
type TxBuilder struct {
	ledger *Ledger
	gate   *PaymentGate
}

func NewTxBuilder(ledger *Ledger, gate *PaymentGate) *TxBuilder {
	return &TxBuilder{ledger: ledger, gate: gate}
}

func (b *TxBuilder) unsigned(step string, to common.Address, data []byte) models.UnsignedTx {
	return models.UnsignedTx{
		Step:  step,
		To:    to.Hex(),
		Data:  hexutil.Encode(data),
		Value: "0x0",
	}
}

// Buy returns the calls needed to order productID. A prepaid order whose
// buyer allowance is below the price gets an approve step first.
func (b *TxBuilder) Buy(ctx context.Context, buyer common.Address, productID uint64, prepaid bool) ([]models.UnsignedTx, error) {
	product, err := b.ledger.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock == 0 {
		return nil, errors.Wrapf(models.ErrBadRequest, "product %d is out of stock", productID)
	}

	var steps []models.UnsignedTx
	if prepaid {
		price, ok := new(big.Int).SetString(product.PriceRaw, 10)
		if !ok {
			return nil, errors.Errorf("product %d has no valid price", productID)
		}
		allowance, err := b.ledger.Allowance(ctx, buyer, b.ledger.MarketplaceAddress())
		if err != nil {
			return nil, err
		}
		if allowance.Cmp(price) < 0 {
			data, err := contracts.PackApprove(b.ledger.MarketplaceAddress(), price)
			if err != nil {
				return nil, errors.Wrap(err, "pack approve")
			}
			steps = append(steps, b.unsigned(StepApprove, b.ledger.TokenAddress(), data))
		}
	}

	data, err := contracts.PackBuyProduct(new(big.Int).SetUint64(productID), prepaid)
	if err != nil {
		return nil, errors.Wrap(err, "pack buyProduct")
	}
	return append(steps, b.unsigned(StepBuy, b.ledger.MarketplaceAddress(), data)), nil
}

// ConfirmDelivery prepares confirmDelivery for the seller of orderID. An
// unpaid order must pass the payment gate first.
func (b *TxBuilder) ConfirmDelivery(ctx context.Context, seller common.Address, orderID uint64) (models.UnsignedTx, error) {
	order, err := b.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return models.UnsignedTx{}, err
	}
	if order.Status == models.OrderStatusCancelled || order.IsDelivered {
		return models.UnsignedTx{}, errors.Wrapf(models.ErrBadRequest, "order %d is %s", orderID, strings.ToLower(string(order.Status)))
	}
	if !strings.EqualFold(order.Seller, seller.Hex()) {
		return models.UnsignedTx{}, errors.Wrapf(models.ErrUnauthorized, "order %d belongs to another seller", orderID)
	}

	if err := b.gate.RequirePayment(ctx, order); err != nil {
		return models.UnsignedTx{}, err
	}

	data, err := contracts.PackConfirmDelivery(new(big.Int).SetUint64(orderID))
	if err != nil {
		return models.UnsignedTx{}, errors.Wrap(err, "pack confirmDelivery")
	}
	return b.unsigned(StepConfirmDelivery, b.ledger.MarketplaceAddress(), data), nil
}

// CancelOrder prepares cancelOrder for a party of orderID.
func (b *TxBuilder) CancelOrder(ctx context.Context, caller common.Address, orderID uint64) (models.UnsignedTx, error) {
	order, err := b.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return models.UnsignedTx{}, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPaid {
		return models.UnsignedTx{}, errors.Wrapf(models.ErrBadRequest, "order %d is %s", orderID, strings.ToLower(string(order.Status)))
	}
	if !strings.EqualFold(order.Seller, caller.Hex()) && !strings.EqualFold(order.Buyer, caller.Hex()) {
		return models.UnsignedTx{}, errors.Wrapf(models.ErrUnauthorized, "not a party to order %d", orderID)
	}

	data, err := contracts.PackCancelOrder(new(big.Int).SetUint64(orderID))
	if err != nil {
		return models.UnsignedTx{}, errors.Wrap(err, "pack cancelOrder")
	}
	return b.unsigned(StepCancelOrder, b.ledger.MarketplaceAddress(), data), nil
}

// AddProduct prepares a listing call. Text fields stored as bytes32 must fit
// in 31 bytes.
func (b *TxBuilder) AddProduct(in NewProduct) (models.UnsignedTx, error) {
	price, ok := utils.ParseUnits(in.Price, PriceDecimals)
	if !ok || price.Sign() <= 0 {
		return models.UnsignedTx{}, errors.Wrapf(models.ErrBadRequest, "invalid price %q", in.Price)
	}

	var input contracts.AddProductInput
	for _, f := range []struct {
		name  string
		value string
		dst   *[32]byte
	}{
		{"name", in.Name, &input.Name},
		{"productType", in.ProductType, &input.ProductType},
		{"condition", in.Condition, &input.Condition},
	} {
		encoded, ok := utils.EncodeBytes32String(f.value)
		if !ok {
			return models.UnsignedTx{}, errors.Wrapf(models.ErrBadRequest, "%s is too long", f.name)
		}
		*f.dst = encoded
	}
	input.Price = price
	input.Stock = new(big.Int).SetUint64(in.Stock)
	input.Description = []byte(in.Description)
	input.Image = []byte(in.Image)

	data, err := contracts.PackAddProduct(input)
	if err != nil {
		return models.UnsignedTx{}, errors.Wrap(err, "pack addProduct")
	}
	return b.unsigned(StepAddProduct, b.ledger.MarketplaceAddress(), data), nil
}
