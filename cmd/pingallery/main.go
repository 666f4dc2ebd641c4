package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/pingallery/internal/blobstore"
	"github.com/vbonduro/pingallery/internal/blobstore/local"
	"github.com/vbonduro/pingallery/internal/collection"
	"github.com/vbonduro/pingallery/internal/config"
	"github.com/vbonduro/pingallery/internal/db"
	"github.com/vbonduro/pingallery/internal/describe"
	claudedescribe "github.com/vbonduro/pingallery/internal/describe/claude"
	ollamadescribe "github.com/vbonduro/pingallery/internal/describe/ollama"
	"github.com/vbonduro/pingallery/internal/live"
	"github.com/vbonduro/pingallery/internal/logging"
	"github.com/vbonduro/pingallery/internal/search"
	"github.com/vbonduro/pingallery/internal/store"
	"github.com/vbonduro/pingallery/internal/unsplash"
	"github.com/vbonduro/pingallery/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	blob, err := newBlobStore(cfg, database)
	if err != nil {
		logger.Error("failed to initialize blob store", "error", err)
		return
	}
	collections := collection.NewStore(blob, logger)

	if cfg.UnsplashAccessKey == "" {
		logger.Warn("UNSPLASH_ACCESS_KEY is not set, photo searches will fail")
	}
	photos := search.NewService(
		unsplash.NewClientWithURL(cfg.UnsplashAccessKey, cfg.UnsplashAPIURL),
		store.NewPhotoStore(database),
		logger,
	)

	hub := live.NewHub(logger)
	go hub.Run(ctx)
	liveHandler := live.NewHandler(hub, live.Deps{Searcher: photos, Store: collections, Logger: logger})

	server := web.NewServer(photos, collections, newDescriber(cfg, logger), hub, liveHandler, logger)
	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
	}
}

func newBlobStore(cfg *config.Config, database *sql.DB) (blobstore.Store, error) {
	switch cfg.StoreBackend {
	case "local":
		return local.NewLocalBlobStore(cfg.StoreLocalPath)
	default:
		return store.NewKVStore(database), nil
	}
}

// newDescriber returns nil when no backend is configured, which disables
// collection descriptions.
func newDescriber(cfg *config.Config, logger *slog.Logger) describe.Describer {
	switch cfg.DescribeBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when DESCRIBE_BACKEND=claude")
			return nil
		}
		logger.Info("using Claude describe backend", "model", cfg.ClaudeModel)
		return claudedescribe.NewClaudeDescriber(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama describe backend", "model", cfg.OllamaModel)
		return ollamadescribe.NewOllamaDescriber(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("collection descriptions disabled")
		return nil
	}
}
