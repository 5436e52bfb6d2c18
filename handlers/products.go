package handlers

import (
	"net/http"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

// GetProducts lists every product registered on the marketplace contract.
func (h *Handler) GetProducts(c echo.Context) error {
	products, err := h.Ledger.ListProducts(c.Request().Context())
	if err != nil {
		return errorJSON(c, err, "GetProducts")
	}
	return c.JSON(http.StatusOK, orEmptyProducts(products))
}

func (h *Handler) GetProduct(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	product, err := h.Ledger.GetProduct(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err, "GetProduct")
	}
	return c.JSON(http.StatusOK, product)
}

// GetSellerProducts lists the products listed by the seller in the path.
func (h *Handler) GetSellerProducts(c echo.Context) error {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid address format"})
	}

	products, err := h.Ledger.SellerProducts(c.Request().Context(), common.HexToAddress(address))
	if err != nil {
		return errorJSON(c, err, "GetSellerProducts")
	}
	return c.JSON(http.StatusOK, orEmptyProducts(products))
}

// GetMyProducts is the seller dashboard listing for the session wallet.
func (h *Handler) GetMyProducts(c echo.Context) error {
	addr, ok := sessionAddress(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	products, err := h.Ledger.SellerProducts(c.Request().Context(), addr)
	if err != nil {
		return errorJSON(c, err, "GetMyProducts")
	}
	return c.JSON(http.StatusOK, orEmptyProducts(products))
}

func orEmptyProducts(p []models.Product) []models.Product {
	if p == nil {
		return []models.Product{}
	}
	return p
}
