package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appaudit "github.com/knawat/mp-backend/internal/application/audit"
	"github.com/knawat/mp-backend/internal/application/discount"
	"github.com/knawat/mp-backend/internal/application/orders"
	"github.com/knawat/mp-backend/internal/application/shipment"
	"github.com/knawat/mp-backend/internal/application/stock"
	"github.com/knawat/mp-backend/internal/application/taxes"
	"github.com/knawat/mp-backend/internal/infrastructure/cache"
	"github.com/knawat/mp-backend/internal/infrastructure/config"
	"github.com/knawat/mp-backend/internal/infrastructure/logger"
	"github.com/knawat/mp-backend/internal/infrastructure/notification"
	"github.com/knawat/mp-backend/internal/infrastructure/oms"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence"
	"github.com/knawat/mp-backend/internal/infrastructure/tasks"
	"github.com/knawat/mp-backend/internal/interfaces/http/handler"
	"github.com/knawat/mp-backend/internal/interfaces/http/middleware"
	"github.com/knawat/mp-backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database, with gorm logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	taxRepo := persistence.NewGormTaxRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentPolicyRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	invoiceTaskRepo := persistence.NewGormInvoiceTaskRepository(db.DB)

	// Shared services
	auditSvc := appaudit.NewService(auditRepo, log)
	runner := tasks.NewBestEffort(log)
	mailer := notification.NewMailer(notification.Config{
		Host:        cfg.Mail.Host,
		Port:        cfg.Mail.Port,
		Username:    cfg.Mail.Username,
		Password:    cfg.Mail.Password,
		From:        cfg.Mail.From,
		SupportAddr: cfg.Mail.SupportAddr,
	}, log)

	omsClient, err := oms.NewHTTPClient(oms.Config{
		BaseURL:   cfg.OMS.BaseURL,
		Username:  cfg.OMS.Username,
		Password:  cfg.OMS.Password,
		Timeout:   cfg.OMS.Timeout,
		MaxBodyKB: cfg.OMS.MaxBodyKB,
	}, auditSvc, log)
	if err != nil {
		log.Fatal("Failed to create OMS client", zap.Error(err))
	}

	orderCache := cache.NewRedisOrderCache(redisClient, cfg.Redis.CacheTTL)
	invoiceQueue := tasks.NewInvoiceQueue(invoiceTaskRepo, cfg.Invoice.Delay)

	// Order pipeline and its collaborators
	pipeline := orders.NewPipeline(orders.Deps{
		Stores:        storeRepo,
		Products:      productRepo,
		Subscriptions: subscriptionRepo,
		Coupons:       couponRepo,
		OMS:           omsClient,
		Verifier:      stock.NewVerifier(productRepo),
		Taxes:         taxes.NewResolver(taxRepo, cfg.Orders.TaxableCountries, mailer, runner, log),
		Rates:         shipment.NewRateEngine(shipmentRepo),
		Discounts:     discount.NewEngine(couponRepo, log),
		Audit:         auditSvc,
		Cache:         orderCache,
		Invoices:      invoiceQueue,
		Notifier:      mailer,
		Runner:        runner,
		Logger:        log,
	})

	// Deferred invoice worker
	invoiceWorker := tasks.NewInvoiceWorker(invoiceTaskRepo, pipeline, tasks.InvoiceWorkerConfig{
		PollInterval: cfg.Invoice.PollInterval,
		BatchSize:    cfg.Invoice.BatchSize,
		MaxAttempts:  cfg.Invoice.MaxAttempts,
	}, log)
	if cfg.Invoice.WorkerEnabled {
		if err := invoiceWorker.Start(context.Background()); err != nil {
			log.Fatal("Failed to start invoice worker", zap.Error(err))
		}
		log.Info("Invoice worker started",
			zap.Duration("poll_interval", cfg.Invoice.PollInterval),
			zap.Duration("delay", cfg.Invoice.Delay),
		)
	}

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.RequestLogging(log))
	engine.Use(logger.Recovery(log))

	storeAuth := middleware.StoreAuth(storeRepo, log)
	router.NewRouter(engine).
		Register(handler.NewSystemHandler(db, redisClient)).
		Register(router.Protected(storeAuth,
			handler.NewOrdersHandler(pipeline),
			handler.NewAuditHandler(auditSvc),
		)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cfg.Invoice.WorkerEnabled {
		if err := invoiceWorker.Stop(ctx); err != nil {
			log.Error("Invoice worker shutdown timed out", zap.Error(err))
		}
	}
	runner.Wait()
	if err := orderCache.Close(); err != nil {
		log.Error("Error closing redis", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
