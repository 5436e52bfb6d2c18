package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StoreRecord is the raw output of store(id).
type StoreRecord struct {
	Id          *big.Int
	Name        [32]byte
	Price       *big.Int
	Stock       *big.Int
	Description []byte
	Image       []byte
	ProductType [32]byte
	Condition   [32]byte
	Seller      common.Address
}

// OrderRecord is the raw output of orders(id).
type OrderRecord struct {
	ProductId   *big.Int
	Buyer       common.Address
	Seller      common.Address
	AmountPaid  *big.Int
	IsPaid      bool
	IsDelivered bool
}

// MarketplaceCaller is a read-only binding to the ledger contract.
type MarketplaceCaller struct {
	contract *bind.BoundContract
}

func NewMarketplaceCaller(address common.Address, caller bind.ContractCaller) *MarketplaceCaller {
	return &MarketplaceCaller{contract: bind.NewBoundContract(address, marketplaceABI, caller, nil, nil)}
}

func (m *MarketplaceCaller) ProductCount(opts *bind.CallOpts) (*big.Int, error) {
	return m.callUint(opts, "productCount")
}

func (m *MarketplaceCaller) OrderCount(opts *bind.CallOpts) (*big.Int, error) {
	return m.callUint(opts, "orderCount")
}

func (m *MarketplaceCaller) callUint(opts *bind.CallOpts, method string) (*big.Int, error) {
	var out []interface{}
	if err := m.contract.Call(opts, &out, method); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (m *MarketplaceCaller) Store(opts *bind.CallOpts, id *big.Int) (StoreRecord, error) {
	var out []interface{}
	if err := m.contract.Call(opts, &out, "store", id); err != nil {
		return StoreRecord{}, err
	}

	return StoreRecord{
		Id:          *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Name:        *abi.ConvertType(out[1], new([32]byte)).(*[32]byte),
		Price:       *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		Stock:       *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		Description: *abi.ConvertType(out[4], new([]byte)).(*[]byte),
		Image:       *abi.ConvertType(out[5], new([]byte)).(*[]byte),
		ProductType: *abi.ConvertType(out[6], new([32]byte)).(*[32]byte),
		Condition:   *abi.ConvertType(out[7], new([32]byte)).(*[32]byte),
		Seller:      *abi.ConvertType(out[8], new(common.Address)).(*common.Address),
	}, nil
}

func (m *MarketplaceCaller) Orders(opts *bind.CallOpts, id *big.Int) (OrderRecord, error) {
	var out []interface{}
	if err := m.contract.Call(opts, &out, "orders", id); err != nil {
		return OrderRecord{}, err
	}

	return OrderRecord{
		ProductId:   *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Buyer:       *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		Seller:      *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		AmountPaid:  *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		IsPaid:      *abi.ConvertType(out[4], new(bool)).(*bool),
		IsDelivered: *abi.ConvertType(out[5], new(bool)).(*bool),
	}, nil
}

// AddProductInput mirrors addProduct's parameters.
type AddProductInput struct {
	Name        [32]byte
	Price       *big.Int
	Stock       *big.Int
	Description []byte
	Image       []byte
	ProductType [32]byte
	Condition   [32]byte
}

// PackAddProduct encodes an addProduct call.
func PackAddProduct(in AddProductInput) ([]byte, error) {
	return marketplaceABI.Pack("addProduct", in.Name, in.Price, in.Stock, in.Description, in.Image, in.ProductType, in.Condition)
}

// PackBuyProduct encodes a buyProduct call.
func PackBuyProduct(productID *big.Int, prepaid bool) ([]byte, error) {
	return marketplaceABI.Pack("buyProduct", productID, prepaid)
}

// PackConfirmDelivery encodes a confirmDelivery call.
func PackConfirmDelivery(orderID *big.Int) ([]byte, error) {
	return marketplaceABI.Pack("confirmDelivery", orderID)
}

// PackCancelOrder encodes a cancelOrder call.
func PackCancelOrder(orderID *big.Int) ([]byte, error) {
	return marketplaceABI.Pack("cancelOrder", orderID)
}

// MarketplaceOrderPlaced is the decoded OrderPlaced event.
type MarketplaceOrderPlaced struct {
	OrderId   *big.Int
	ProductId *big.Int
	Buyer     common.Address
	Seller    common.Address
	IsPaid    bool
	Raw       types.Log
}

// MarketplaceOrderPaid is the decoded OrderPaid event.
type MarketplaceOrderPaid struct {
	OrderId    *big.Int
	AmountPaid *big.Int
	Raw        types.Log
}

// MarketplaceOrderDelivered is the decoded OrderDelivered event.
type MarketplaceOrderDelivered struct {
	OrderId *big.Int
	Raw     types.Log
}

// MarketplaceFilterer decodes ledger logs.
type MarketplaceFilterer struct {
	address  common.Address
	contract *bind.BoundContract
}

func NewMarketplaceFilterer(address common.Address) *MarketplaceFilterer {
	return &MarketplaceFilterer{
		address:  address,
		contract: bind.NewBoundContract(address, marketplaceABI, nil, nil, nil),
	}
}

// Topics returns the event signatures of the three order events.
func (f *MarketplaceFilterer) Topics() []common.Hash {
	return []common.Hash{
		marketplaceABI.Events["OrderPlaced"].ID,
		marketplaceABI.Events["OrderPaid"].ID,
		marketplaceABI.Events["OrderDelivered"].ID,
	}
}

func (f *MarketplaceFilterer) Address() common.Address { return f.address }

func (f *MarketplaceFilterer) ParseOrderPlaced(log types.Log) (*MarketplaceOrderPlaced, error) {
	event := new(MarketplaceOrderPlaced)
	if err := f.contract.UnpackLog(event, "OrderPlaced", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

func (f *MarketplaceFilterer) ParseOrderPaid(log types.Log) (*MarketplaceOrderPaid, error) {
	event := new(MarketplaceOrderPaid)
	if err := f.contract.UnpackLog(event, "OrderPaid", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

func (f *MarketplaceFilterer) ParseOrderDelivered(log types.Log) (*MarketplaceOrderDelivered, error) {
	event := new(MarketplaceOrderDelivered)
	if err := f.contract.UnpackLog(event, "OrderDelivered", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// EventName resolves the event signature in topic 0, or "" when unknown.
func (f *MarketplaceFilterer) EventName(log types.Log) string {
	if len(log.Topics) == 0 {
		return ""
	}
	for name, ev := range marketplaceABI.Events {
		if ev.ID == log.Topics[0] {
			return name
		}
	}
	return ""
}
