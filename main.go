package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Madhav-Gupta-28/barterx-backend-go/config"
	"github.com/Madhav-Gupta-28/barterx-backend-go/database"
	"github.com/Madhav-Gupta-28/barterx-backend-go/handlers"
	"github.com/Madhav-Gupta-28/barterx-backend-go/logger"
	customMiddleware "github.com/Madhav-Gupta-28/barterx-backend-go/middleware"
	"github.com/Madhav-Gupta-28/barterx-backend-go/opensea"
	"github.com/Madhav-Gupta-28/barterx-backend-go/routes"
	"github.com/Madhav-Gupta-28/barterx-backend-go/services"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/Madhav-Gupta-28/barterx-backend-go/validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.CreateNewConfig()
	appLogger := logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}
	for name, addr := range map[string]string{
		"MARKETPLACE_ADDRESS": cfg.ChainConfig.MarketplaceAddress,
		"TOKEN_ADDRESS":       cfg.ChainConfig.TokenAddress,
	} {
		if !common.IsHexAddress(addr) {
			log.Fatal().Str("key", name).Msg("invalid contract address")
		}
	}

	// Connect to MongoDB
	db, err := database.ConnectDB(ctx, cfg.MongoConfig.URI, cfg.MongoConfig.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from database")
		}
	}()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	client, err := ethclient.DialContext(ctx, cfg.ChainConfig.RPCURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RPC node")
	}
	defer client.Close()
	checkChain(ctx, client, cfg.ChainConfig.ChainID)

	wallets := database.NewWalletStore(db)
	distributors := database.NewDistributorStore(db)
	events := database.NewEventStore(db)

	marketplace := common.HexToAddress(cfg.ChainConfig.MarketplaceAddress)
	ledger := services.NewLedger(client, marketplace, common.HexToAddress(cfg.ChainConfig.TokenAddress))
	gate := services.NewPaymentGate(ledger, utils.NewPaymentDetector(cfg.Payment.Attempts, cfg.Payment.Delay))

	openSea := opensea.NewClient(opensea.Config{
		BaseURL: cfg.OpenSea.BaseURL,
		Chain:   cfg.OpenSea.Chain,
		APIKey:  cfg.OpenSea.APIKey,
		Timeout: cfg.OpenSea.Timeout,
	})

	h := &handlers.Handler{
		Wallets:      wallets,
		Distributors: distributors,
		Events:       events,
		Ledger:       ledger,
		Payments:     gate,
		Tx:           services.NewTxBuilder(ledger, gate),
		Store:        services.NewStoreService(openSea, wallets, cfg.EnrichConcurrency),
		OpenSea:      openSea,
		Chain:        client,
		ChainID:      cfg.ChainConfig.ChainID,
		JWTSecret:    cfg.JWTSecret,
	}

	if cfg.SaleConfig.PrivateKey != "" {
		sale, err := utils.NewNFTSaleProcessor(client, cfg.SaleConfig.PrivateKey, cfg.SaleConfig.FeeRecipient, cfg.SaleConfig.FeePercent, cfg.ChainConfig.ChainID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure marketplace signer")
		}
		log.Info().Str("account", sale.Address().Hex()).Msg("custodial sales enabled")
		h.Sale = sale
	} else {
		log.Warn().Msg("MARKETPLACE_PRIVATE_KEY not set, /api/buynft is disabled")
	}

	if wsURL := cfg.ChainConfig.WebsocketURL; wsURL != "" {
		listener := utils.NewOrderEventListener(func(ctx context.Context) (utils.LogSubscriber, error) {
			return ethclient.DialContext(ctx, wsURL)
		}, marketplace, events)
		h.Listener = listener
		go func() {
			if err := listener.Run(ctx); err != nil {
				log.Error().Err(err).Str("component", "OrderEventListener").Msg("")
			}
		}()
	} else {
		log.Warn().Msg("WEB3_WEBSOCKET_URL not set, order event listener is disabled")
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(customMiddleware.RequestContext(appLogger))
	e.Use(customMiddleware.RequestLogger(appLogger))
	e.Use(customMiddleware.Metrics())

	routes.SetupRoutes(e, h)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// checkChain warns when the RPC node serves another chain than configured.
func checkChain(ctx context.Context, client *ethclient.Client, want int64) {
	got, err := client.ChainID(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read chain id")
		return
	}
	if !got.IsInt64() || got.Int64() != want {
		log.Warn().Str("network", got.String()).Int64("configured", want).Msg("RPC node is on a different chain")
	}
}
