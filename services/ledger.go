// Package services holds the read and write paths over the ledger contract,
// the BRTX token and the OpenSea API that the HTTP handlers expose.
package services

import (
	"context"
	"math/big"
	"strings"

	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts"
	"github.com/Madhav-Gupta-28/barterx-backend-go/metrics"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// PriceDecimals is the fixed-point precision of ledger prices and BRTX amounts.
const PriceDecimals = 18

// Ledger reads products, orders and token balances from chain.
type Ledger struct {
	market      *contracts.MarketplaceCaller
	token       *contracts.ERC20Caller
	marketplace common.Address
	tokenAddr   common.Address
}

func NewLedger(caller bind.ContractCaller, marketplace, token common.Address) *Ledger {
	return &Ledger{
		market:      contracts.NewMarketplaceCaller(marketplace, caller),
		token:       contracts.NewERC20Caller(token, caller),
		marketplace: marketplace,
		tokenAddr:   token,
	}
}

func (l *Ledger) MarketplaceAddress() common.Address { return l.marketplace }
func (l *Ledger) TokenAddress() common.Address       { return l.tokenAddr }

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (l *Ledger) productCount(ctx context.Context) (uint64, error) {
	n, err := l.market.ProductCount(callOpts(ctx))
	metrics.ObserveChainCall("productCount", err)
	if err != nil {
		return 0, errors.Wrap(err, "read productCount")
	}
	return n.Uint64(), nil
}

func (l *Ledger) orderCount(ctx context.Context) (uint64, error) {
	n, err := l.market.OrderCount(callOpts(ctx))
	metrics.ObserveChainCall("orderCount", err)
	if err != nil {
		return 0, errors.Wrap(err, "read orderCount")
	}
	return n.Uint64(), nil
}

func (l *Ledger) storeRecord(ctx context.Context, id uint64) (contracts.StoreRecord, error) {
	rec, err := l.market.Store(callOpts(ctx), new(big.Int).SetUint64(id))
	metrics.ObserveChainCall("store", err)
	if err != nil {
		return rec, errors.Wrapf(err, "read store(%d)", id)
	}
	if rec.Seller == (common.Address{}) {
		return rec, errors.Wrapf(models.ErrNotFound, "product %d", id)
	}
	return rec, nil
}

func (l *Ledger) orderRecord(ctx context.Context, id uint64) (contracts.OrderRecord, error) {
	rec, err := l.market.Orders(callOpts(ctx), new(big.Int).SetUint64(id))
	metrics.ObserveChainCall("orders", err)
	if err != nil {
		return rec, errors.Wrapf(err, "read orders(%d)", id)
	}
	if (rec.ProductId == nil || rec.ProductId.Sign() == 0) && rec.Buyer == (common.Address{}) {
		return rec, errors.Wrapf(models.ErrNotFound, "order %d", id)
	}
	return rec, nil
}

// ProductFromRecord decodes a raw store record into its display form.
func ProductFromRecord(rec contracts.StoreRecord) models.Product {
	p := models.Product{
		Name:        utils.DecodeBytes32String(rec.Name),
		Price:       utils.FormatUnits(rec.Price, PriceDecimals),
		PriceRaw:    "0",
		Description: utils.ToUTF8String(rec.Description),
		Image:       utils.BytesToImageURL(rec.Image),
		ProductType: utils.DecodeBytes32String(rec.ProductType),
		Condition:   utils.DecodeBytes32String(rec.Condition),
		Seller:      rec.Seller.Hex(),
	}
	if rec.Id != nil {
		p.ID = rec.Id.Uint64()
	}
	if rec.Price != nil {
		p.PriceRaw = rec.Price.String()
	}
	if rec.Stock != nil {
		p.Stock = rec.Stock.Uint64()
	}
	return p
}

// OrderFromRecord decodes a raw order record into its display form.
func OrderFromRecord(id uint64, rec contracts.OrderRecord) models.Order {
	o := models.Order{
		ID:          id,
		Buyer:       rec.Buyer.Hex(),
		Seller:      rec.Seller.Hex(),
		Amount:      utils.FormatUnits(rec.AmountPaid, PriceDecimals),
		AmountRaw:   "0",
		IsPaid:      rec.IsPaid,
		IsDelivered: rec.IsDelivered,
		Status:      models.DeriveStatus(rec.Buyer == (common.Address{}), rec.IsPaid, rec.IsDelivered),
	}
	if rec.ProductId != nil {
		o.ProductID = rec.ProductId.Uint64()
	}
	if rec.AmountPaid != nil {
		o.AmountRaw = rec.AmountPaid.String()
	}
	return o
}

// ListProducts reads every product id from 1 to productCount in order. Ids
// that fail to load are logged and skipped.
func (l *Ledger) ListProducts(ctx context.Context) ([]models.Product, error) {
	count, err := l.productCount(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, count)
	for id := uint64(1); id <= count; id++ {
		rec, err := l.storeRecord(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Ctx(ctx).Warn().Err(err).Uint64("productId", id).Str("component", "ListProducts").Msg("skipping product")
			continue
		}
		products = append(products, ProductFromRecord(rec))
	}
	return products, nil
}

func (l *Ledger) GetProduct(ctx context.Context, id uint64) (*models.Product, error) {
	if id == 0 {
		return nil, errors.Wrap(models.ErrNotFound, "product 0")
	}
	rec, err := l.storeRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	p := ProductFromRecord(rec)
	return &p, nil
}

// SellerProducts returns the products listed by seller.
func (l *Ledger) SellerProducts(ctx context.Context, seller common.Address) ([]models.Product, error) {
	all, err := l.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.Product{}
	for _, p := range all {
		if strings.EqualFold(p.Seller, seller.Hex()) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListOrders reads every order id from 1 to orderCount. Cancelled orders (zero
// buyer) and ids that fail to load are skipped.
func (l *Ledger) ListOrders(ctx context.Context) ([]models.Order, error) {
	count, err := l.orderCount(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, count)
	for id := uint64(1); id <= count; id++ {
		rec, err := l.orderRecord(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Ctx(ctx).Warn().Err(err).Uint64("orderId", id).Str("component", "ListOrders").Msg("skipping order")
			continue
		}
		if rec.Buyer == (common.Address{}) {
			continue
		}
		orders = append(orders, OrderFromRecord(id, rec))
	}
	return orders, nil
}

// GetOrder returns a single order, including cancelled ones.
func (l *Ledger) GetOrder(ctx context.Context, id uint64) (*models.Order, error) {
	if id == 0 {
		return nil, errors.Wrap(models.ErrNotFound, "order 0")
	}
	rec, err := l.orderRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	o := OrderFromRecord(id, rec)
	return &o, nil
}

// AccountOrders returns the orders where account is buyer or seller, each
// joined with its product.
func (l *Ledger) AccountOrders(ctx context.Context, account common.Address) ([]models.Order, error) {
	all, err := l.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	products := map[uint64]*models.Product{}
	out := []models.Order{}
	for _, o := range all {
		if !strings.EqualFold(o.Buyer, account.Hex()) && !strings.EqualFold(o.Seller, account.Hex()) {
			continue
		}

		p, ok := products[o.ProductID]
		if !ok {
			p, err = l.GetProduct(ctx, o.ProductID)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Uint64("productId", o.ProductID).Str("component", "AccountOrders").Msg("order without product")
				p = nil
			}
			products[o.ProductID] = p
		}
		o.Product = p
		out = append(out, o)
	}
	return out, nil
}

// TokenBalance is a BRTX balance in base units and formatted.
type TokenBalance struct {
	Address  string `json:"address"`
	Token    string `json:"token"`
	Balance  string `json:"balance"`
	Raw      string `json:"raw"`
	Decimals uint8  `json:"decimals"`
}

func (l *Ledger) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := l.token.BalanceOf(callOpts(ctx), account)
	metrics.ObserveChainCall("balanceOf", err)
	if err != nil {
		return nil, errors.Wrap(err, "read balanceOf")
	}
	return bal, nil
}

func (l *Ledger) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	amount, err := l.token.Allowance(callOpts(ctx), owner, spender)
	metrics.ObserveChainCall("allowance", err)
	if err != nil {
		return nil, errors.Wrap(err, "read allowance")
	}
	return amount, nil
}

func (l *Ledger) TokenBalance(ctx context.Context, account common.Address) (*TokenBalance, error) {
	bal, err := l.BalanceOf(ctx, account)
	if err != nil {
		return nil, err
	}

	decimals, err := l.token.Decimals(callOpts(ctx))
	metrics.ObserveChainCall("decimals", err)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "TokenBalance").Msg("decimals unavailable, assuming 18")
		decimals = PriceDecimals
	}

	return &TokenBalance{
		Address:  account.Hex(),
		Token:    l.tokenAddr.Hex(),
		Balance:  utils.FormatUnits(bal, decimals),
		Raw:      bal.String(),
		Decimals: decimals,
	}, nil
}
