package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hybe/bookinghub/internal/config"
	"hybe/bookinghub/internal/handler"
	"hybe/bookinghub/internal/model"
	"hybe/bookinghub/internal/repository"
	"hybe/bookinghub/internal/service"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Initialize the KV store (Redis or in-memory)
	var kvStore repository.KVStore
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Cache.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		kvStore = repository.NewRedisKVStore(redisClient)
		logger.Info("using Redis KV store")
	case "memory":
		memStore := repository.NewMemoryKVStore(cfg.Cache.SweepInterval, logger)
		defer memStore.Close()
		kvStore = memStore
		logger.Info("using in-memory KV store",
			zap.Duration("sweep_interval", cfg.Cache.SweepInterval))
	default:
		logger.Fatal("unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}

	// 4. Build the membership lookup chain. A backend that fails to open is
	// skipped with a warning; the chain degrades instead of the process dying.
	var pgBackend, sqliteBackend repository.SubscriptionBackend

	if cfg.Database.Postgres.Host != "" {
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Warn("postgres unavailable, continuing without it", zap.Error(err))
		} else {
			if cfg.Database.Postgres.AutoMigrate {
				if err := model.AutoMigrate(db); err != nil {
					logger.Warn("postgres migration failed", zap.Error(err))
				}
			}
			pgBackend = repository.NewPGSubscriptionBackend(db)
			logger.Info("postgres subscription backend ready")
		}
	}

	if cfg.Database.SQLite.Path != "" {
		db, err := config.NewSQLiteDB(cfg.Database.SQLite)
		if err != nil {
			logger.Warn("sqlite unavailable, continuing without it", zap.Error(err))
		} else {
			if cfg.Database.SQLite.AutoMigrate {
				if err := model.AutoMigrate(db); err != nil {
					logger.Warn("sqlite migration failed", zap.Error(err))
				}
			}
			if cfg.Database.SQLite.Seed {
				if err := model.SeedSubscriptions(db); err != nil {
					logger.Warn("sqlite seeding failed", zap.Error(err))
				}
			}
			sqliteBackend = repository.NewSQLiteSubscriptionBackend(db)
			logger.Info("sqlite subscription backend ready",
				zap.String("path", cfg.Database.SQLite.Path))
		}
	}

	var backends []repository.SubscriptionBackend
	if cfg.Database.PrimarySQL() == "sqlite" {
		backends = appendBackends(backends, sqliteBackend, pgBackend)
	} else {
		backends = appendBackends(backends, pgBackend, sqliteBackend)
	}
	backends = appendBackends(backends, repository.NewFileSubscriptionBackend(cfg.Subscription.FilePath))

	chain := repository.NewLookupChain(logger, backends...)
	logger.Info("lookup chain assembled", zap.Strings("backends", chain.BackendNames()))

	// 5. Mail delivery (real SMTP or the simulated local sender)
	var mailSender service.MailSender
	if cfg.SMTP.Host != "" {
		mailSender, err = service.NewSMTPSender(cfg.SMTP)
		if err != nil {
			logger.Fatal("failed to init smtp sender", zap.Error(err))
		}
		logger.Info("smtp sender initialized", zap.String("host", cfg.SMTP.Host))
	} else {
		mailSender = service.NewLogMailSender(logger)
		logger.Info("smtp not configured, logging OTP emails instead")
	}

	// 6. Initialize services
	otpService := service.NewOTPService(kvStore, mailSender, service.OTPConfig{
		CodeTTL:        cfg.OTP.CodeTTL,
		ResendCooldown: cfg.OTP.ResendCooldown,
		MaxAttempts:    cfg.OTP.MaxAttempts,
	}, logger)

	subscriptionService := service.NewSubscriptionService(kvStore, chain, service.SubscriptionConfig{
		PositiveCacheTTL: cfg.Subscription.PositiveCacheTTL,
		NegativeCacheTTL: cfg.Subscription.NegativeCacheTTL,
		MinIDLength:      cfg.Subscription.MinIDLength,
		MaxIDLength:      cfg.Subscription.MaxIDLength,
	}, logger)

	bookingSink := service.NewLogBookingSink(logger)

	// 7. Initialize handlers
	otpHandler := handler.NewOTPHandler(otpService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	bookingHandler := handler.NewBookingHandler(bookingSink, subscriptionService)
	healthHandler := handler.NewHealthHandler(chain)

	// 8. Setup router
	router := handler.SetupRouter(cfg, logger, kvStore,
		otpHandler, subscriptionHandler, bookingHandler, healthHandler)

	// 9. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 10. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func appendBackends(dst []repository.SubscriptionBackend, backends ...repository.SubscriptionBackend) []repository.SubscriptionBackend {
	for _, b := range backends {
		if b != nil {
			dst = append(dst, b)
		}
	}
	return dst
}
