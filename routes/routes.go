package routes

import (
	"github.com/Madhav-Gupta-28/barterx-backend-go/handlers"
	customMiddleware "github.com/Madhav-Gupta-28/barterx-backend-go/middleware"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(e *echo.Echo, h *handlers.Handler) {
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// Delivery tracker
	api.POST("/product", h.StoreWalletData)

	// NFT marketplace
	api.POST("/getslug", h.GetSlugs)
	api.POST("/slugstore", h.StoreSlug)
	api.GET("/opensea", h.CollectionListings)
	api.POST("/mystore", h.MyStore)
	api.POST("/buynft", h.BuyNFT)
	api.GET("/collections", h.WalletCollections)

	// Chain
	api.GET("/chain", h.ChainInfo)
	api.GET("/listener/health", h.ListenerHealth)
	api.GET("/products", h.GetProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/sellers/:address/products", h.GetSellerProducts)
	api.GET("/orders", h.GetOrders)
	api.GET("/orders/:id/payment", h.GetPaymentStatus)
	api.GET("/orders/:id/events", h.GetOrderEvents)
	api.GET("/tokens/balance/:address", h.GetTokenBalance)

	// Sessions
	api.POST("/session/challenge", h.CreateChallenge)
	api.POST("/session", h.CreateSession)

	// Seller dashboard
	me := api.Group("/me", customMiddleware.SessionMiddleware(h.JWTSecret))
	me.GET("/orders", h.GetMyOrders)
	me.GET("/products", h.GetMyProducts)
	me.GET("/settings", h.GetSettings)
	me.PUT("/settings", h.UpdateSettings)
	me.POST("/tx/buy", h.PrepareBuy)
	me.POST("/tx/orders/:id/confirm", h.PrepareConfirmDelivery)
	me.POST("/tx/orders/:id/cancel", h.PrepareCancelOrder)
	me.POST("/tx/products", h.PrepareAddProduct)
}
