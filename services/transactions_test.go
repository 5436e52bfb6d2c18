package services

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(c *chain) *TxBuilder {
	gate := NewPaymentGate(c.ledger, utils.NewPaymentDetector(3, time.Millisecond))
	return NewTxBuilder(c.ledger, gate)
}

func decodeCall(t *testing.T, tx models.UnsignedTx) (string, []interface{}) {
	t.Helper()
	data, err := hexutil.Decode(tx.Data)
	require.NoError(t, err)

	parsed := contracts.ParsedMarketplaceABI()
	if tx.Step == StepApprove {
		parsed = contracts.ParsedERC20ABI()
	}
	method, err := parsed.MethodById(data[:4])
	require.NoError(t, err)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	return method.Name, args
}

func TestTxBuilder_BuyPrepaidNeedsApproval(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}
	c.allowances[buyerAddr] = ether(1)

	steps, err := newBuilder(c).Buy(context.Background(), buyerAddr, 1, true)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, StepApprove, steps[0].Step)
	assert.Equal(t, tokenAddr.Hex(), steps[0].To)
	name, args := decodeCall(t, steps[0])
	assert.Equal(t, "approve", name)
	assert.Equal(t, marketAddr, args[0])
	assert.Equal(t, ether(2).String(), args[1].(*big.Int).String())

	assert.Equal(t, StepBuy, steps[1].Step)
	assert.Equal(t, marketAddr.Hex(), steps[1].To)
	name, args = decodeCall(t, steps[1])
	assert.Equal(t, "buyProduct", name)
	assert.Equal(t, int64(1), args[0].(*big.Int).Int64())
	assert.Equal(t, true, args[1])
}

func TestTxBuilder_BuyWithEnoughAllowance(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}
	c.allowances[buyerAddr] = ether(2)

	steps, err := newBuilder(c).Buy(context.Background(), buyerAddr, 1, true)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, StepBuy, steps[0].Step)
}

func TestTxBuilder_BuyOnDeliverySkipsAllowance(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}

	steps, err := newBuilder(c).Buy(context.Background(), buyerAddr, 1, false)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	_, args := decodeCall(t, steps[0])
	assert.Equal(t, false, args[1])
	assert.Equal(t, 0, c.token.Calls("allowance"))
}

func TestTxBuilder_BuyOutOfStock(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 0, seller: sellerAddr}

	_, err := newBuilder(c).Buy(context.Background(), buyerAddr, 1, false)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestTxBuilder_ConfirmDeliveryPaidOnChain(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}
	c.orders[1] = fakeOrder{productID: 1, buyer: buyerAddr, seller: sellerAddr, isPaid: true}

	tx, err := newBuilder(c).ConfirmDelivery(context.Background(), sellerAddr, 1)
	require.NoError(t, err)
	name, args := decodeCall(t, tx)
	assert.Equal(t, "confirmDelivery", name)
	assert.Equal(t, int64(1), args[0].(*big.Int).Int64())
	assert.Equal(t, 0, c.token.Calls("balanceOf"))
}

func TestTxBuilder_ConfirmDeliveryDetectsPayment(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}
	c.orders[1] = fakeOrder{productID: 1, buyer: buyerAddr, seller: sellerAddr}
	c.setBalance(sellerAddr, ether(3))

	_, err := newBuilder(c).ConfirmDelivery(context.Background(), sellerAddr, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.token.Calls("balanceOf"))
}

func TestTxBuilder_ConfirmDeliveryPaymentNotDetected(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}
	c.orders[1] = fakeOrder{productID: 1, buyer: buyerAddr, seller: sellerAddr}
	c.setBalance(sellerAddr, ether(1))

	_, err := newBuilder(c).ConfirmDelivery(context.Background(), sellerAddr, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPaymentNotDetected)
	assert.Equal(t, 409, models.StatusCode(err))

	var notDetected *PaymentNotDetectedError
	require.True(t, errors.As(err, &notDetected))
	assert.Equal(t, "Payment not detected. Please send 2.0 BRTX to "+sellerAddr.Hex()+
		" using token contract "+tokenAddr.Hex()+" and wait for confirmation", err.Error())

	// three checks, never more
	assert.Equal(t, 3, c.token.Calls("balanceOf"))
}

func TestTxBuilder_ConfirmDeliveryRejects(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}
	c.orders[1] = fakeOrder{productID: 1, buyer: buyerAddr, seller: sellerAddr, isPaid: true}
	c.orders[2] = fakeOrder{productID: 1, buyer: buyerAddr, seller: sellerAddr, isPaid: true, isDelivered: true}

	b := newBuilder(c)

	_, err := b.ConfirmDelivery(context.Background(), buyerAddr, 1)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = b.ConfirmDelivery(context.Background(), sellerAddr, 2)
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = b.ConfirmDelivery(context.Background(), sellerAddr, 8)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTxBuilder_CancelOrder(t *testing.T) {
	c := newChain()
	c.orders[1] = fakeOrder{productID: 1, buyer: buyerAddr, seller: sellerAddr}
	c.orders[2] = fakeOrder{productID: 1, seller: sellerAddr}

	b := newBuilder(c)

	tx, err := b.CancelOrder(context.Background(), buyerAddr, 1)
	require.NoError(t, err)
	name, _ := decodeCall(t, tx)
	assert.Equal(t, "cancelOrder", name)

	_, err = b.CancelOrder(context.Background(), otherAddr, 1)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = b.CancelOrder(context.Background(), sellerAddr, 2)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestTxBuilder_AddProduct(t *testing.T) {
	b := newBuilder(newChain())

	tx, err := b.AddProduct(NewProduct{
		Name:        "Laptop",
		Price:       "1.5",
		Stock:       2,
		Description: "fast",
		Image:       "ipfs://cid",
		ProductType: "Electronics",
		Condition:   "Used",
	})
	require.NoError(t, err)
	assert.Equal(t, marketAddr.Hex(), tx.To)

	name, args := decodeCall(t, tx)
	assert.Equal(t, "addProduct", name)
	assert.Equal(t, bytes32("Laptop"), args[0])
	assert.Equal(t, "1500000000000000000", args[1].(*big.Int).String())
	assert.Equal(t, int64(2), args[2].(*big.Int).Int64())
	assert.Equal(t, []byte("fast"), args[3])
	assert.Equal(t, bytes32("Used"), args[6])

	_, err = b.AddProduct(NewProduct{Name: "Laptop", Price: "abc", Stock: 1})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = b.AddProduct(NewProduct{Name: "a name that is definitely longer than 31 bytes", Price: "1", Stock: 1})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestPaymentGate_Check(t *testing.T) {
	c := newChain()
	c.products[1] = fakeProduct{name: "Laptop", price: ether(2), stock: 1, seller: sellerAddr}
	c.orders[1] = fakeOrder{productID: 1, buyer: buyerAddr, seller: sellerAddr}
	c.setBalance(sellerAddr, ether(2))

	gate := NewPaymentGate(c.ledger, utils.NewPaymentDetector(3, time.Millisecond))
	status, err := gate.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.False(t, status.OnChain)
	assert.Equal(t, "2.0", status.Required)
	assert.Equal(t, "2.0", status.Balance)
}
