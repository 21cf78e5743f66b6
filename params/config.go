package params

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sparkdex/sparkbook/pkg/types"
)

// Config is the process-wide engine configuration, set once at deploy time
// and immutable thereafter. The quote asset and its decimals are shared by
// every market; price decimals fix the scaling of all order prices.
type Config struct {
	QuoteAsset    types.AssetID
	QuoteDecimals uint32
	PriceDecimals uint32

	// DBPath is the pebble database directory. Empty disables persistence.
	DBPath string
}

func Default() Config {
	return Config{
		QuoteAsset:    types.AssetID{},
		QuoteDecimals: 6,
		PriceDecimals: 9,
		DBPath:        "data/engine.db",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if quote := os.Getenv("ENGINE_QUOTE_ASSET"); quote != "" {
		cfg.QuoteAsset = types.AssetFromHex(quote)
	}
	if dec := os.Getenv("ENGINE_QUOTE_DECIMALS"); dec != "" {
		if v, err := strconv.ParseUint(dec, 10, 32); err == nil {
			cfg.QuoteDecimals = uint32(v)
		}
	}
	if dec := os.Getenv("ENGINE_PRICE_DECIMALS"); dec != "" {
		if v, err := strconv.ParseUint(dec, 10, 32); err == nil {
			cfg.PriceDecimals = uint32(v)
		}
	}
	if path := os.Getenv("ENGINE_DB_PATH"); path != "" {
		cfg.DBPath = path
	}

	return cfg
}
