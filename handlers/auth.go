package handlers

import (
	"net/http"

	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type ChallengeRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
}

type SessionRequest struct {
	Address   string `json:"address" validate:"required,eth_addr"`
	Challenge string `json:"challenge" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// CreateChallenge issues the message a wallet signs to open a session.
func (h *Handler) CreateChallenge(c echo.Context) error {
	var req ChallengeRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	challenge, message, err := utils.GenerateChallenge(h.JWTSecret, req.Address)
	if err != nil {
		return errorJSON(c, err, "CreateChallenge")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":   message,
		"challenge": challenge,
	})
}

// CreateSession exchanges a signed challenge for a session token.
func (h *Handler) CreateSession(c echo.Context) error {
	var req SessionRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	if err := utils.VerifyChallenge(h.JWTSecret, req.Address, req.Challenge, req.Signature); err != nil {
		log.Ctx(c.Request().Context()).Debug().Err(err).Str("component", "CreateSession").Msg("challenge rejected")
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
	}

	token, err := utils.GenerateJWT(h.JWTSecret, req.Address)
	if err != nil {
		return errorJSON(c, err, "CreateSession")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"token":   token,
		"address": req.Address,
	})
}
