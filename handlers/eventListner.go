package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ListenerHealth reports the order event listener status. 503 when the
// listener is not running or unhealthy.
func (h *Handler) ListenerHealth(c echo.Context) error {
	if h.Listener == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Listener not initialized"})
	}

	health := h.Listener.GetHealth()
	status := http.StatusOK
	if !health.IsHealthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}

// ChainInfo compares the configured chain with the one the RPC node reports,
// so clients can prompt a network switch.
func (h *Handler) ChainInfo(c echo.Context) error {
	resp := map[string]interface{}{
		"chainId": h.ChainID,
	}
	if h.Chain == nil {
		return c.JSON(http.StatusOK, resp)
	}

	network, err := h.Chain.ChainID(c.Request().Context())
	if err != nil {
		log.Ctx(c.Request().Context()).Warn().Err(err).Str("component", "ChainInfo").Msg("")
		resp["error"] = "Failed to reach RPC node"
		return c.JSON(http.StatusBadGateway, resp)
	}

	resp["networkChainId"] = network.Int64()
	resp["match"] = network.IsInt64() && network.Int64() == h.ChainID
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
