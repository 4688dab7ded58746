package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starbooks/config"
	"starbooks/internal/adapter/blobstore"
	"starbooks/internal/adapter/chain"
	httpHandler "starbooks/internal/adapter/http/handler"
	"starbooks/internal/adapter/payrail"
	pgStorage "starbooks/internal/adapter/storage/postgres"
	redisStorage "starbooks/internal/adapter/storage/redis"
	"starbooks/internal/cache"
	"starbooks/internal/core/ports"
	"starbooks/internal/service"
	"starbooks/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Starbooks")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	purchaseRepo := pgStorage.NewPurchaseRepo(pool)
	bookRepo := pgStorage.NewBookRepo(pool)

	// Initialize Redis stores
	confirmCache := redisStorage.NewConfirmationCache(rdb)
	walletCache := redisStorage.NewWalletCache(rdb)

	// Initialize external clients
	railClient := payrail.NewClient(cfg.PayRail, log)
	storageClient := blobstore.NewClient(cfg.Storage, log)
	chainClient := chain.NewClient(cfg.Chain, log)

	walletAddr, err := chain.DeriveAddress(cfg.Chain.WalletSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to derive wallet address")
	}

	// Initialize core services
	crypto, err := service.NewAESContentCrypto(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize content crypto")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	blobCache := cache.NewBlobCache(cfg.Cache.BlobCapacity)

	// Initialize business services
	mintSvc := service.NewMintService(purchaseRepo, chainClient, walletAddr, cfg.Mint, log)
	invoiceSvc := service.NewInvoiceService(bookRepo, railClient, log)
	purchaseSvc := service.NewPurchaseService(
		purchaseRepo,
		bookRepo,
		railClient,
		confirmCache,
		mintSvc,
		log,
	)
	contentSvc := service.NewContentService(purchaseRepo, storageClient, blobCache, crypto, log)
	walletSvc := service.NewWalletService(chainClient, walletCache, walletAddr, cfg.Chain.SnapshotTTL, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		InvoiceSvc:     invoiceSvc,
		PurchaseSvc:    purchaseSvc,
		ContentSvc:     contentSvc,
		WalletSvc:      walletSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Drain queued mints before letting the process exit.
	mintSvc.Stop(shutdownCtx)

	log.Info().Msg("Server exited")
}
