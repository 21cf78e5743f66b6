package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sparkdex/sparkbook/params"
	"github.com/sparkdex/sparkbook/pkg/engine"
	"github.com/sparkdex/sparkbook/pkg/storage"
	"github.com/sparkdex/sparkbook/pkg/types"
	"github.com/sparkdex/sparkbook/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	// Setup logging (write to both console and file)
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "data/engine.log"
	}
	level := zapcore.InfoLevel
	if s := os.Getenv("ENGINE_LOG_LEVEL"); s != "" {
		if parsed, err := zapcore.ParseLevel(s); err == nil {
			level = parsed
		}
	}
	logger, err := util.NewLoggerWithFile(logFile, level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// The engine owner gates market creation and fee changes.
	owner := types.AddressIdentity(common.HexToAddress(os.Getenv("ENGINE_OWNER")))

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	eng, err := engine.New(cfg, owner,
		engine.WithLogger(logger),
		engine.WithStore(store),
	)
	if err != nil {
		logger.Fatal("failed to start engine", zap.Error(err))
	}

	logger.Info("engine started",
		zap.String("owner", owner.String()),
		zap.String("quote_asset", cfg.QuoteAsset.Hex()),
		zap.String("db_path", cfg.DBPath),
		zap.Int("markets", len(eng.Markets())),
	)

	// The submission layer driving the engine is out of process; run until
	// interrupted so state stays loaded and queryable.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
}
