package handlers

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"github.com/Madhav-Gupta-28/barterx-backend-go/database"
	customMiddleware "github.com/Madhav-Gupta-28/barterx-backend-go/middleware"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/services"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type WalletRepository interface {
	FindWalletBySlugOwner(ctx context.Context, walletID string) (*models.Wallet, error)
	UpsertSlug(ctx context.Context, walletID, slug string) (*models.Wallet, error)
	InsertWalletIfAbsent(ctx context.Context, walletID, data1, data2 string) (*models.Wallet, error)
}

type DistributorRepository interface {
	Get(ctx context.Context, walletID string) (*models.Distributor, error)
	Upsert(ctx context.Context, walletID string, in database.DistributorSettings) (*models.Distributor, error)
}

type EventHistory interface {
	EventsForOrder(ctx context.Context, orderID uint64) ([]models.OrderEvent, error)
}

type LedgerReader interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint64) (*models.Product, error)
	SellerProducts(ctx context.Context, seller common.Address) ([]models.Product, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	AccountOrders(ctx context.Context, account common.Address) ([]models.Order, error)
	TokenBalance(ctx context.Context, account common.Address) (*services.TokenBalance, error)
}

type PaymentChecker interface {
	Check(ctx context.Context, orderID uint64) (*services.PaymentStatus, error)
}

type TxPreparer interface {
	Buy(ctx context.Context, buyer common.Address, productID uint64, prepaid bool) ([]models.UnsignedTx, error)
	ConfirmDelivery(ctx context.Context, seller common.Address, orderID uint64) (models.UnsignedTx, error)
	CancelOrder(ctx context.Context, caller common.Address, orderID uint64) (models.UnsignedTx, error)
	AddProduct(in services.NewProduct) (models.UnsignedTx, error)
}

type StoreViews interface {
	EnrichAccountNFTs(ctx context.Context, address string) ([]services.EnrichedNFT, error)
	WalletCollections(ctx context.Context, walletID string) (*services.WalletCollections, error)
}

type ListingsProxy interface {
	ListingsForCollection(ctx context.Context, slug string) (json.RawMessage, error)
}

type NFTSeller interface {
	Sell(ctx context.Context, req utils.SaleRequest) (*utils.SaleResult, error)
}

type ListenerHealth interface {
	GetHealth() utils.HealthStatus
}

type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Handler serves the HTTP API. Sale and Listener may be nil when the
// custodial key or the websocket endpoint are not configured.
type Handler struct {
	Wallets      WalletRepository
	Distributors DistributorRepository
	Events       EventHistory
	Ledger       LedgerReader
	Payments     PaymentChecker
	Tx           TxPreparer
	Store        StoreViews
	OpenSea      ListingsProxy
	Sale         NFTSeller
	Listener     ListenerHealth
	Chain        ChainIDReader
	ChainID      int64
	JWTSecret    string
}

// errorJSON answers with the status mapped from err. Server-side failures are
// logged and not echoed.
func errorJSON(c echo.Context, err error, component string) error {
	status := models.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Ctx(c.Request().Context()).Error().Err(err).Str("component", component).Msg("")
		return c.JSON(status, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func sessionAddress(c echo.Context) (common.Address, bool) {
	s, ok := customMiddleware.SessionFrom(c)
	if !ok || !common.IsHexAddress(s.Address) {
		return common.Address{}, false
	}
	return common.HexToAddress(s.Address), true
}

// bind decodes and validates the request body into v. When ok is false the
// 400 response has already been written.
func bind(c echo.Context, v interface{}) (ok bool, err error) {
	if err := c.Bind(v); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(v); err != nil {
		if he, isHTTP := err.(*echo.HTTPError); isHTTP {
			return false, c.JSON(he.Code, map[string]interface{}{"error": he.Message})
		}
		return false, c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return true, nil
}
