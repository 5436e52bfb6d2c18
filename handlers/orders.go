package handlers

import (
	"context"
	"net/http"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/services"
	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

type BuyRequest struct {
	ProductID uint64 `json:"productId" validate:"required,gt=0"`
	Prepaid   bool   `json:"prepaid"`
}

// GetOrders lists every live order on the marketplace contract.
func (h *Handler) GetOrders(c echo.Context) error {
	orders, err := h.Ledger.ListOrders(c.Request().Context())
	if err != nil {
		return errorJSON(c, err, "GetOrders")
	}
	return c.JSON(http.StatusOK, orEmptyOrders(orders))
}

// GetMyOrders lists the orders where the session wallet is buyer or seller.
func (h *Handler) GetMyOrders(c echo.Context) error {
	addr, ok := sessionAddress(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	orders, err := h.Ledger.AccountOrders(c.Request().Context(), addr)
	if err != nil {
		return errorJSON(c, err, "GetMyOrders")
	}
	return c.JSON(http.StatusOK, orEmptyOrders(orders))
}

// GetPaymentStatus reports whether the seller's token balance covers the
// order price.
func (h *Handler) GetPaymentStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	status, err := h.Payments.Check(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err, "GetPaymentStatus")
	}
	return c.JSON(http.StatusOK, status)
}

// GetOrderEvents returns the ledger events recorded for an order, oldest
// first.
func (h *Handler) GetOrderEvents(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	events, err := h.Events.EventsForOrder(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err, "GetOrderEvents")
	}
	if events == nil {
		events = []models.OrderEvent{}
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) GetTokenBalance(c echo.Context) error {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid address format"})
	}

	balance, err := h.Ledger.TokenBalance(c.Request().Context(), common.HexToAddress(address))
	if err != nil {
		return errorJSON(c, err, "GetTokenBalance")
	}
	return c.JSON(http.StatusOK, balance)
}

// PrepareBuy returns the transactions the buyer signs to place an order.
func (h *Handler) PrepareBuy(c echo.Context) error {
	addr, ok := sessionAddress(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req BuyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	steps, err := h.Tx.Buy(c.Request().Context(), addr, req.ProductID, req.Prepaid)
	if err != nil {
		return errorJSON(c, err, "PrepareBuy")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"steps": steps})
}

// PrepareConfirmDelivery returns the confirmDelivery call once the seller's
// payment has been detected.
func (h *Handler) PrepareConfirmDelivery(c echo.Context) error {
	return h.prepareOrderTx(c, "PrepareConfirmDelivery", h.Tx.ConfirmDelivery)
}

func (h *Handler) PrepareCancelOrder(c echo.Context) error {
	return h.prepareOrderTx(c, "PrepareCancelOrder", h.Tx.CancelOrder)
}

func (h *Handler) prepareOrderTx(c echo.Context, component string, build func(ctx context.Context, caller common.Address, orderID uint64) (models.UnsignedTx, error)) error {
	addr, ok := sessionAddress(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	tx, err := build(c.Request().Context(), addr, id)
	if err != nil {
		return errorJSON(c, err, component)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tx": tx})
}

// PrepareAddProduct returns the addProduct call for a new listing.
func (h *Handler) PrepareAddProduct(c echo.Context) error {
	if _, ok := sessionAddress(c); !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req services.NewProduct
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.Tx.AddProduct(req)
	if err != nil {
		return errorJSON(c, err, "PrepareAddProduct")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tx": tx})
}

func orEmptyOrders(o []models.Order) []models.Order {
	if o == nil {
		return []models.Order{}
	}
	return o
}
