package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string
	LogLevel    string
	LogPretty   bool
	MongoConfig MongoConfig
	ChainConfig ChainConfig
	SaleConfig  SaleConfig
	OpenSea     OpenSeaConfig
	JWTSecret   string
	Payment     PaymentConfig

	// EnrichConcurrency bounds the number of in-flight OpenSea calls per request.
	EnrichConcurrency int
}

type MongoConfig struct {
	URI      string
	Database string
}

type ChainConfig struct {
	RPCURL             string
	WebsocketURL       string
	ChainID            int64
	MarketplaceAddress string
	TokenAddress       string
}

type SaleConfig struct {
	PrivateKey   string
	FeeRecipient string
	FeePercent   int64
}

type OpenSeaConfig struct {
	BaseURL string
	Chain   string
	APIKey  string
	Timeout time.Duration
}

type PaymentConfig struct {
	Attempts int
	Delay    time.Duration
}

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Str("component", "LoadEnv").Msg("no .env file loaded")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("invalid integer, using default")
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("invalid duration, using default")
		return fallback
	}
	return v
}

// CreateNewConfig reads the process environment (after LoadEnv) into a Config.
func CreateNewConfig() *Config {
	LoadEnv()

	return &Config{
		Port:      GetEnv("PORT", "3000"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogPretty: GetEnv("LOG_PRETTY", "false") == "true",
		MongoConfig: MongoConfig{
			URI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGODB_DATABASE", "barterx"),
		},
		ChainConfig: ChainConfig{
			RPCURL:             GetEnv("SEPOLIA_RPC_URL", ""),
			WebsocketURL:       GetEnv("WEB3_WEBSOCKET_URL", ""),
			ChainID:            getInt("CHAIN_ID", 11155111),
			MarketplaceAddress: GetEnv("MARKETPLACE_ADDRESS", ""),
			TokenAddress:       GetEnv("TOKEN_ADDRESS", ""),
		},
		SaleConfig: SaleConfig{
			PrivateKey:   GetEnv("MARKETPLACE_PRIVATE_KEY", ""),
			FeeRecipient: GetEnv("FEE_RECIPIENT", "0x059a36538f6357DEe444c2f566B16847d9cfB511"),
			FeePercent:   getInt("FEE_PERCENT", 2),
		},
		OpenSea: OpenSeaConfig{
			BaseURL: GetEnv("OPENSEA_BASE_URL", "https://testnets-api.opensea.io/api/v2"),
			Chain:   GetEnv("OPENSEA_CHAIN", "sepolia"),
			APIKey:  GetEnv("OPENSEA_API_KEY", ""),
			Timeout: getDuration("OPENSEA_TIMEOUT", 10*time.Second),
		},
		JWTSecret: GetEnv("JWT_SECRET", ""),
		Payment: PaymentConfig{
			Attempts: int(getInt("PAYMENT_ATTEMPTS", 3)),
			Delay:    getDuration("PAYMENT_DELAY", 5*time.Second),
		},
		EnrichConcurrency: int(getInt("ENRICH_CONCURRENCY", 4)),
	}
}
