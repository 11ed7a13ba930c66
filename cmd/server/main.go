/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the club ledger server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment, flag overrides)
  2. Open the persistence backend (text files or SQLite)
  3. Load catalogs and replay the ledger stream
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (overrides CLUB_PORT)
  -data     data directory (overrides CLUB_DATA_DIR)
  -backend  "file" or "sqlite" (overrides CLUB_BACKEND)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the store, exit.

SEE ALSO:
  - config/config.go: environment configuration
  - api/server.go: router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/club-ledger/api"
	"github.com/warp/club-ledger/club"
	"github.com/warp/club-ledger/config"
	"github.com/warp/club-ledger/ledger"
	"github.com/warp/club-ledger/store/ledgerfile"
	"github.com/warp/club-ledger/store/sqlite"
)

func main() {
	cfg := config.Load()

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dataDir := flag.String("data", cfg.DataDir, "data directory")
	backend := flag.String("backend", cfg.Backend, "persistence backend: file or sqlite")
	flag.Parse()
	cfg.Port = *port
	cfg.DataDir = *dataDir
	cfg.Backend = *backend

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	identity := cfg.Identity()
	seed := ledger.Header{
		Name:          identity.Name,
		TaxID:         identity.TaxID,
		Address:       identity.Address,
		Region:        identity.Region,
		AccountNumber: identity.AccountNumber,
	}

	var gateway ledger.Gateway
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.DBPath(), seed)
		if err != nil {
			logger.Error("failed to open database", "path", cfg.DBPath(), "error", err)
			os.Exit(1)
		}
		defer store.Close()
		gateway = store
	case config.BackendFile:
		gateway = ledgerfile.NewGateway(cfg.LedgerPath(), seed)
	default:
		logger.Error("unknown backend", "backend", cfg.Backend)
		os.Exit(1)
	}

	catalogs := ledgerfile.NewCatalog(cfg.CatalogDir())
	org := club.NewOrganization(identity, gateway, catalogs, logger)
	if err := org.Load(context.Background()); err != nil {
		logger.Error("failed to load ledger", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(org, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", fmt.Sprintf("http://localhost:%d", cfg.Port),
			"backend", cfg.Backend,
			"balance", org.AccountBalance().String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
