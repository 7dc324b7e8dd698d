package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokensale-platform/config"
	"tokensale-platform/internal/adapter/chain"
	httpHandler "tokensale-platform/internal/adapter/http/handler"
	pgStorage "tokensale-platform/internal/adapter/storage/postgres"
	redisStorage "tokensale-platform/internal/adapter/storage/redis"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/internal/service"
	"tokensale-platform/pkg/logger"
	"tokensale-platform/pkg/metrics"

	"github.com/shopspring/decimal"
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
		Msg("Starting Token Sale Platform")

	totalSupply, err := decimal.NewFromString(cfg.Staking.TotalSupply)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid staking.total_supply")
	}

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
	accountRepo := pgStorage.NewAccountRepo(pool)
	tokenRepo := pgStorage.NewTokenRepo(pool)
	txnRepo := pgStorage.NewTransactionRepo(pool)
	contentRepo := pgStorage.NewContentRepo(pool)
	configRepo := pgStorage.NewConfigRepo(pool)
	newsletterRepo := pgStorage.NewNewsletterRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Seed bootstrap admin and default configs
	if err := pgStorage.Seed(ctx, accountRepo, tokenRepo, configRepo, cfg.Admin.BootstrapWallet, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	// Redis-backed stores
	configCache := redisStorage.NewConfigCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Metrics registry
	m := metrics.New()

	// Chain boundary: on-chain collaborators are optional; without them
	// the oracle is skipped and transfers are simulated.
	var oracle ports.BalanceOracle
	var executor ports.TransferExecutor = chain.NewSimulatedExecutor(log)
	if cfg.Chain.Enabled {
		erc20Oracle, err := chain.NewERC20Oracle(ctx, cfg.Chain.RPCURL, cfg.Chain.TokenContract, m, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to chain RPC")
		}
		defer erc20Oracle.Close()
		oracle = erc20Oracle

		onChainExec, err := chain.NewOnChainExecutor(ctx, cfg.Chain.RPCURL, cfg.Chain.TokenContract, cfg.Chain.TreasuryKey, m, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize on-chain executor")
		}
		executor = onChainExec
		log.Info().Str("contract", cfg.Chain.TokenContract).Msg("On-chain executor enabled")
	}

	// Core services
	verifier := service.NewEthSignatureVerifier()
	sessionSvc := service.NewJWTSessionService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Business services
	accountSvc := service.NewAccountService(
		accountRepo,
		tokenRepo,
		txnRepo,
		transactor,
		verifier,
		sessionSvc,
		executor,
		cfg.Admin.BootstrapWallet,
		decimal.RequireFromString("0.001"),
		log,
	)
	stakingSvc := service.NewStakingService(
		tokenRepo,
		accountRepo,
		txnRepo,
		configRepo,
		transactor,
		oracle,
		executor,
		m,
		cfg.Staking.LockPeriod,
		totalSupply,
		cfg.Chain.Timeout,
		log,
	)
	adminSvc := service.NewAdminService(accountRepo, tokenRepo, newsletterRepo, contentRepo, totalSupply)
	contentSvc := service.NewContentService(contentRepo, adminSvc)
	configSvc := service.NewConfigService(configRepo, configCache, adminSvc, log)
	newsletterSvc := service.NewNewsletterService(newsletterRepo, adminSvc)

	// Health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:     accountSvc,
		StakingSvc:     stakingSvc,
		AdminSvc:       adminSvc,
		ContentSvc:     contentSvc,
		ConfigSvc:      configSvc,
		NewsletterSvc:  newsletterSvc,
		SessionSvc:     sessionSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Metrics:        m,
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
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Server stopped")
}
