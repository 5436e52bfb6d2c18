package services

import (
	"errors"
	"math/big"
	"sync"

	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts"
	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts/contractstest"
	"github.com/ethereum/go-ethereum/common"
)

var (
	marketAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenAddr  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	sellerAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyerAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	otherAddr  = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func bytes32(s string) [32]byte {
	var out [32]byte
	copy(out[:], s)
	return out
}

type fakeProduct struct {
	name   string
	price  *big.Int
	stock  int64
	seller common.Address
	broken bool
}

type fakeOrder struct {
	productID   int64
	buyer       common.Address
	seller      common.Address
	amountPaid  *big.Int
	isPaid      bool
	isDelivered bool
}

// chain is an in-memory ledger and token behind contractstest callers.
type chain struct {
	mu         sync.Mutex
	products   map[int64]fakeProduct
	orders     map[int64]fakeOrder
	balances   map[common.Address]*big.Int
	allowances map[common.Address]*big.Int

	market *contractstest.Caller
	token  *contractstest.Caller
	ledger *Ledger
}

func newChain() *chain {
	c := &chain{
		products:   map[int64]fakeProduct{},
		orders:     map[int64]fakeOrder{},
		balances:   map[common.Address]*big.Int{},
		allowances: map[common.Address]*big.Int{},
	}

	c.market = contractstest.NewCaller(contracts.ParsedMarketplaceABI()).
		Handle("productCount", func([]interface{}) ([]interface{}, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			return []interface{}{big.NewInt(int64(len(c.products)))}, nil
		}).
		Handle("orderCount", func([]interface{}) ([]interface{}, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			return []interface{}{big.NewInt(int64(len(c.orders)))}, nil
		}).
		Handle("store", func(args []interface{}) ([]interface{}, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			id := args[0].(*big.Int)
			p, ok := c.products[id.Int64()]
			if p.broken {
				return nil, errors.New("execution reverted")
			}
			if !ok {
				return []interface{}{big.NewInt(0), [32]byte{}, big.NewInt(0), big.NewInt(0), []byte{}, []byte{}, [32]byte{}, [32]byte{}, common.Address{}}, nil
			}
			return []interface{}{
				id, bytes32(p.name), p.price, big.NewInt(p.stock),
				[]byte("desc of " + p.name), []byte("ipfs://" + p.name),
				bytes32("Electronics"), bytes32("New"), p.seller,
			}, nil
		}).
		Handle("orders", func(args []interface{}) ([]interface{}, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			o, ok := c.orders[args[0].(*big.Int).Int64()]
			if !ok {
				return []interface{}{big.NewInt(0), common.Address{}, common.Address{}, big.NewInt(0), false, false}, nil
			}
			paid := o.amountPaid
			if paid == nil {
				paid = big.NewInt(0)
			}
			return []interface{}{big.NewInt(o.productID), o.buyer, o.seller, paid, o.isPaid, o.isDelivered}, nil
		})

	c.token = contractstest.NewCaller(contracts.ParsedERC20ABI()).
		Handle("balanceOf", func(args []interface{}) ([]interface{}, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			return []interface{}{c.amount(c.balances, args[0].(common.Address))}, nil
		}).
		Handle("allowance", func(args []interface{}) ([]interface{}, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			return []interface{}{c.amount(c.allowances, args[0].(common.Address))}, nil
		}).
		Returns("decimals", uint8(18))

	c.ledger = NewLedger(contractstest.Router{marketAddr: c.market, tokenAddr: c.token}, marketAddr, tokenAddr)
	return c
}

func (c *chain) amount(m map[common.Address]*big.Int, a common.Address) *big.Int {
	if v, ok := m[a]; ok {
		return v
	}
	return big.NewInt(0)
}

func (c *chain) setBalance(a common.Address, v *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[a] = v
}
