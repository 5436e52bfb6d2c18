package handlers

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/opensea"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type MyStoreRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// BuyNFTRequest accepts tokenId and paymentAmount as JSON numbers, decimal
// strings or 0x-prefixed hex strings. paymentAmount is in wei.
type BuyNFTRequest struct {
	NFTContract   string    `json:"nftContract"`
	TokenID       BigNumber `json:"tokenId"`
	BuyerAddress  string    `json:"buyerAddress"`
	PaymentAmount BigNumber `json:"paymentAmount"`
}

// BigNumber keeps a JSON number or string as written.
type BigNumber string

func (n *BigNumber) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = BigNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = BigNumber(num)
	return nil
}

// Int parses n as a 0x-prefixed hex or a decimal integer.
func (n BigNumber) Int() (*big.Int, bool) {
	s := string(n)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}

// upstreamError answers with the OpenSea status and message when err came
// from the API, 500 otherwise.
func upstreamError(c echo.Context, err error, component string) error {
	var apiErr *opensea.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "Internal server error"
		}
		log.Ctx(c.Request().Context()).Warn().Err(err).Str("component", component).Msg("")
		return c.JSON(apiErr.HTTPStatus(), map[string]string{"error": message})
	}
	log.Ctx(c.Request().Context()).Error().Err(err).Str("component", component).Msg("")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

// CollectionListings proxies the OpenSea listings of a collection.
func (h *Handler) CollectionListings(c echo.Context) error {
	slug := c.QueryParam("slug")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Slug parameter is required"})
	}

	data, err := h.OpenSea.ListingsForCollection(c.Request().Context(), slug)
	if err != nil {
		return upstreamError(c, err, "CollectionListings")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "success",
		"data":    data,
	})
}

// MyStore returns the wallet's NFTs enriched with collection and listing data.
func (h *Handler) MyStore(c echo.Context) error {
	var req MyStoreRequest
	if err := c.Bind(&req); err != nil || req.WalletAddress == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Wallet address is required"})
	}

	nfts, err := h.Store.EnrichAccountNFTs(c.Request().Context(), req.WalletAddress)
	if err != nil {
		return upstreamError(c, err, "MyStore")
	}
	return c.JSON(http.StatusOK, nfts)
}

// WalletCollections builds the per-slug collection views for a wallet.
func (h *Handler) WalletCollections(c echo.Context) error {
	walletID := c.QueryParam("walletId")
	if walletID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "walletId is required"})
	}

	views, err := h.Store.WalletCollections(c.Request().Context(), walletID)
	if err != nil {
		return errorJSON(c, err, "WalletCollections")
	}
	return c.JSON(http.StatusOK, views)
}

// BuyNFT sells a marketplace-held NFT to the buyer through the custodial
// account.
func (h *Handler) BuyNFT(c echo.Context) error {
	var req BuyNFTRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.NFTContract == "" || req.TokenID == "" || req.BuyerAddress == "" || req.PaymentAmount == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing required parameters"})
	}
	if !common.IsHexAddress(req.NFTContract) || !common.IsHexAddress(req.BuyerAddress) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid address format"})
	}

	tokenID, ok := req.TokenID.Int()
	if !ok || tokenID.Sign() <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid token ID"})
	}
	payment, ok := req.PaymentAmount.Int()
	if !ok || payment.Sign() <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payment amount"})
	}

	if h.Sale == nil {
		return errorJSON(c, models.ErrSignerUnavailable, "BuyNFT")
	}

	result, err := h.Sale.Sell(c.Request().Context(), utils.SaleRequest{
		NFTContract: common.HexToAddress(req.NFTContract),
		TokenID:     tokenID,
		Buyer:       common.HexToAddress(req.BuyerAddress),
		Payment:     payment,
	})
	if errors.Is(err, models.ErrNotOwner) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "NFT not owned by marketplace"})
	}
	if err != nil {
		log.Ctx(c.Request().Context()).Error().Err(err).Str("component", "BuyNFT").Msg("")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Transaction failed",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"feeCollected": utils.FormatEther(result.FeeCollected),
		"sellerAmount": utils.FormatEther(result.SellerAmount),
		"feeTxHash":    result.FeeTxHash.Hex(),
		"txHash":       result.TxHash.Hex(),
	})
}
