package handlers

import (
	"net/http"
	"strings"

	"github.com/Madhav-Gupta-28/barterx-backend-go/database"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type StoreWalletRequest struct {
	WalletID string `json:"walletid"`
	Data1    string `json:"data1"`
	Data2    string `json:"data2"`
}

type SlugRequest struct {
	WalletID string `json:"walletId"`
	Slug     string `json:"slug"`
}

type SettingsRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Phone    string `json:"phone" validate:"required,numeric,min=7,max=15"`
	IDNumber string `json:"idNumber" validate:"omitempty,max=32"`
}

// StoreWalletData records the delivery app payload for a wallet once.
func (h *Handler) StoreWalletData(c echo.Context) error {
	var req StoreWalletRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}
	if strings.TrimSpace(req.WalletID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "walletid is required"})
	}

	wallet, err := h.Wallets.InsertWalletIfAbsent(c.Request().Context(), req.WalletID, req.Data1, req.Data2)
	if errors.Is(err, models.ErrWalletExists) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message":      "Wallet already exists",
			"existingData": wallet,
		})
	}
	if err != nil {
		log.Ctx(c.Request().Context()).Error().Err(err).Str("component", "StoreWalletData").Msg("")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":    "Wallet data stored successfully",
		"insertedId": wallet.ID,
	})
}

// GetSlugs returns the collection slugs registered by a wallet.
func (h *Handler) GetSlugs(c echo.Context) error {
	var req SlugRequest
	if err := c.Bind(&req); err != nil || req.WalletID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "walletId is required"})
	}

	wallet, err := h.Wallets.FindWalletBySlugOwner(c.Request().Context(), req.WalletID)
	if err != nil {
		log.Ctx(c.Request().Context()).Error().Err(err).Str("component", "GetSlugs").Msg("")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if wallet == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "No user found",
			"data":    map[string][]string{"Slug": {}},
		})
	}

	slugs := wallet.Slugs
	if slugs == nil {
		slugs = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Success",
		"data":    map[string][]string{"Slug": slugs},
	})
}

// StoreSlug adds a slug to the wallet's set, creating the wallet if needed.
func (h *Handler) StoreSlug(c echo.Context) error {
	var req SlugRequest
	if err := c.Bind(&req); err != nil || req.WalletID == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "walletId and slug are required"})
	}

	wallet, err := h.Wallets.UpsertSlug(c.Request().Context(), req.WalletID, req.Slug)
	if err != nil {
		log.Ctx(c.Request().Context()).Error().Err(err).Str("component", "StoreSlug").Msg("")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, wallet)
}

// GetSettings returns the distributor settings of the session wallet.
func (h *Handler) GetSettings(c echo.Context) error {
	addr, ok := sessionAddress(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	settings, err := h.Distributors.Get(c.Request().Context(), strings.ToLower(addr.Hex()))
	if err != nil {
		return errorJSON(c, err, "GetSettings")
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings stores the distributor settings of the session wallet.
func (h *Handler) UpdateSettings(c echo.Context) error {
	addr, ok := sessionAddress(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req SettingsRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	settings, err := h.Distributors.Upsert(c.Request().Context(), strings.ToLower(addr.Hex()), database.DistributorSettings{
		Name:     req.Name,
		Phone:    req.Phone,
		IDNumber: req.IDNumber,
	})
	if err != nil {
		return errorJSON(c, err, "UpdateSettings")
	}
	return c.JSON(http.StatusOK, settings)
}
