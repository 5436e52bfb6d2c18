package middleware

import (
	"net/http"
	"strings"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/labstack/echo/v4"
)

// SessionMiddleware requires a session token issued by POST /api/session and
// stores the wallet behind it on the context under models.SessionKey.
func SessionMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "No authorization header",
				})
			}

			// Extract the token from the "Bearer" scheme
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Invalid authorization header format",
				})
			}

			claims, err := utils.ValidateJWT(secret, parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Invalid or expired token",
				})
			}

			c.Set(models.SessionKey, &models.Session{Address: claims.Address})
			return next(c)
		}
	}
}

// SessionFrom returns the session set by SessionMiddleware.
func SessionFrom(c echo.Context) (*models.Session, bool) {
	s, ok := c.Get(models.SessionKey).(*models.Session)
	return s, ok && s != nil
}
