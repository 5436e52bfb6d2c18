package handlers_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Madhav-Gupta-28/barterx-backend-go/database"
	"github.com/Madhav-Gupta-28/barterx-backend-go/handlers"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/routes"
	"github.com/Madhav-Gupta-28/barterx-backend-go/services"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/Madhav-Gupta-28/barterx-backend-go/validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler-secret"
	sellerAddr = "0x059a36538f6357DEe444c2f566B16847d9cfB511"
)

type fakeWallets struct {
	wallets map[string]*models.Wallet
	err     error
}

func (f *fakeWallets) FindWalletBySlugOwner(_ context.Context, walletID string) (*models.Wallet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.wallets[walletID], nil
}

func (f *fakeWallets) UpsertSlug(_ context.Context, walletID, slug string) (*models.Wallet, error) {
	if f.err != nil {
		return nil, f.err
	}
	w, ok := f.wallets[walletID]
	if !ok {
		w = &models.Wallet{WalletID: walletID}
		f.wallets[walletID] = w
	}
	for _, s := range w.Slugs {
		if s == slug {
			return w, nil
		}
	}
	w.Slugs = append(w.Slugs, slug)
	return w, nil
}

func (f *fakeWallets) InsertWalletIfAbsent(_ context.Context, walletID, data1, data2 string) (*models.Wallet, error) {
	if f.err != nil {
		return nil, f.err
	}
	if w, ok := f.wallets[walletID]; ok {
		return w, models.ErrWalletExists
	}
	w := &models.Wallet{WalletID: walletID, Data1: data1, Data2: data2}
	f.wallets[walletID] = w
	return w, nil
}

type fakeDistributors struct {
	stored map[string]*models.Distributor
}

func (f *fakeDistributors) Get(_ context.Context, walletID string) (*models.Distributor, error) {
	if d, ok := f.stored[walletID]; ok {
		return d, nil
	}
	return &models.Distributor{WalletID: walletID, Phone: models.DefaultDistributorPhone}, nil
}

func (f *fakeDistributors) Upsert(_ context.Context, walletID string, in database.DistributorSettings) (*models.Distributor, error) {
	d := &models.Distributor{WalletID: walletID, Name: in.Name, Phone: in.Phone}
	f.stored[walletID] = d
	return d, nil
}

type fakeEvents struct {
	events []models.OrderEvent
	err    error
}

func (f *fakeEvents) EventsForOrder(_ context.Context, orderID uint64) ([]models.OrderEvent, error) {
	var out []models.OrderEvent
	for _, e := range f.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, f.err
}

type fakeLedger struct {
	products []models.Product
	orders   []models.Order
	err      error
	gotAddr  common.Address
}

func (f *fakeLedger) ListProducts(context.Context) ([]models.Product, error) {
	return f.products, f.err
}

func (f *fakeLedger) GetProduct(_ context.Context, id uint64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeLedger) SellerProducts(_ context.Context, seller common.Address) ([]models.Product, error) {
	f.gotAddr = seller
	var out []models.Product
	for _, p := range f.products {
		if common.HexToAddress(p.Seller) == seller {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeLedger) ListOrders(context.Context) ([]models.Order, error) {
	return f.orders, f.err
}

func (f *fakeLedger) AccountOrders(_ context.Context, account common.Address) ([]models.Order, error) {
	f.gotAddr = account
	return f.orders, f.err
}

func (f *fakeLedger) TokenBalance(_ context.Context, account common.Address) (*services.TokenBalance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.TokenBalance{Address: account.Hex(), Balance: "1.5", Raw: "1500000000000000000", Decimals: 18}, nil
}

type fakePayments struct {
	status *services.PaymentStatus
	err    error
}

func (f *fakePayments) Check(context.Context, uint64) (*services.PaymentStatus, error) {
	return f.status, f.err
}

type fakeTx struct {
	err      error
	caller   common.Address
	orderID  uint64
	prepaid  bool
	products []services.NewProduct
}

func (f *fakeTx) Buy(_ context.Context, buyer common.Address, productID uint64, prepaid bool) ([]models.UnsignedTx, error) {
	f.caller, f.prepaid = buyer, prepaid
	if f.err != nil {
		return nil, f.err
	}
	steps := []models.UnsignedTx{{Step: services.StepBuy, Value: "0x0"}}
	if prepaid {
		steps = append([]models.UnsignedTx{{Step: services.StepApprove, Value: "0x0"}}, steps...)
	}
	return steps, nil
}

func (f *fakeTx) ConfirmDelivery(_ context.Context, seller common.Address, orderID uint64) (models.UnsignedTx, error) {
	f.caller, f.orderID = seller, orderID
	return models.UnsignedTx{Step: services.StepConfirmDelivery, Value: "0x0"}, f.err
}

func (f *fakeTx) CancelOrder(_ context.Context, caller common.Address, orderID uint64) (models.UnsignedTx, error) {
	f.caller, f.orderID = caller, orderID
	return models.UnsignedTx{Step: services.StepCancelOrder, Value: "0x0"}, f.err
}

func (f *fakeTx) AddProduct(in services.NewProduct) (models.UnsignedTx, error) {
	f.products = append(f.products, in)
	return models.UnsignedTx{Step: services.StepAddProduct, Value: "0x0"}, f.err
}

type fakeStore struct {
	nfts        []services.EnrichedNFT
	collections *services.WalletCollections
	err         error
}

func (f *fakeStore) EnrichAccountNFTs(context.Context, string) ([]services.EnrichedNFT, error) {
	return f.nfts, f.err
}

func (f *fakeStore) WalletCollections(context.Context, string) (*services.WalletCollections, error) {
	return f.collections, f.err
}

type fakeOpenSea struct {
	data json.RawMessage
	err  error
}

func (f *fakeOpenSea) ListingsForCollection(context.Context, string) (json.RawMessage, error) {
	return f.data, f.err
}

type fakeSale struct {
	result *utils.SaleResult
	err    error
	got    utils.SaleRequest
}

func (f *fakeSale) Sell(_ context.Context, req utils.SaleRequest) (*utils.SaleResult, error) {
	f.got = req
	return f.result, f.err
}

type fakeListener struct {
	health utils.HealthStatus
}

func (f fakeListener) GetHealth() utils.HealthStatus { return f.health }

type fakeChain struct {
	id  int64
	err error
}

func (f fakeChain) ChainID(context.Context) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return big.NewInt(f.id), nil
}

func newHandler() *handlers.Handler {
	return &handlers.Handler{
		Wallets:      &fakeWallets{wallets: map[string]*models.Wallet{}},
		Distributors: &fakeDistributors{stored: map[string]*models.Distributor{}},
		Events:       &fakeEvents{},
		Ledger:       &fakeLedger{},
		Payments:     &fakePayments{},
		Tx:           &fakeTx{},
		Store:        &fakeStore{},
		OpenSea:      &fakeOpenSea{},
		ChainID:      11155111,
		JWTSecret:    testSecret,
	}
}

func newServer(h *handlers.Handler) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	routes.SetupRoutes(e, h)
	return e
}

// do sends body (marshalled unless it is already a string) and decodes the
// JSON answer into a generic value.
func do(t *testing.T, h *handlers.Handler, method, target string, body interface{}, token string) (int, interface{}) {
	t.Helper()

	var payload string
	switch b := body.(type) {
	case nil:
	case string:
		payload = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		payload = string(raw)
	}

	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	newServer(h).ServeHTTP(rec, req)

	var out interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func sessionToken(t *testing.T, address string) string {
	t.Helper()
	token, err := utils.GenerateJWT(testSecret, address)
	require.NoError(t, err)
	return token
}
