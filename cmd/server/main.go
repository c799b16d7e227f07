package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app-builder-api/internal/api"
	"app-builder-api/internal/config"
	"app-builder-api/internal/database"
	"app-builder-api/internal/middleware"
	"app-builder-api/internal/services"
	"app-builder-api/internal/storage"
	"app-builder-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	logging.InitLogging(cfg.Mode)

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	redisClient, err := database.OpenRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to initialize Redis:", err)
	}
	defer database.Close(db, redisClient)

	var locker services.Locker
	if redisClient != nil {
		locker = services.NewRedisLocker(redisClient, 0)
	} else {
		logging.Infof("Redis URL not set, using in-process package locks")
		locker = services.NewLocalLocker()
	}

	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal("Failed to initialize file store:", err)
	}
	builder := storage.NewStubGenerator(files)

	var mailer services.Mailer = services.LogMailer{}
	if cfg.BrevoAPIKey != "" {
		mailer = services.NewBrevoMailer(cfg.BrevoAPIKey, cfg.BrevoFromEmail, cfg.BrevoFromName)
	} else {
		logging.Warnf("BREVO_API_KEY not set, emails will only be logged")
	}
	notifier := services.NewNotifier(mailer, services.DefaultRetryDelays)

	store := database.NewAppRecordStore(db)
	gateway := services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	submissions := services.NewSubmissionService(store, files, builder, notifier, locker, cfg.StoreTimeout)
	payments := services.NewPaymentService(gateway, store, files, builder, notifier, locker, services.PaymentOptions{
		Amount:         cfg.OrderAmount,
		Currency:       cfg.OrderCurrency,
		GatewayTimeout: cfg.GatewayTimeout,
		StoreTimeout:   cfg.StoreTimeout,
	})

	stop := make(chan struct{})
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	rateLimiter.StartCleanup(time.Minute, stop)

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.Default()
	r.MaxMultipartMemory = 16 << 20

	// Setup routes
	api.SetupRoutes(r, api.Dependencies{
		Submissions: submissions,
		Payments:    payments,
		RateLimiter: rateLimiter,
		UploadRoot:  files.Root(),
		ServiceName: cfg.ServiceName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Infof("Shutting down server")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Errorf("Server shutdown failed: %v", err)
	}
	if err := notifier.Close(ctx); err != nil {
		logging.Errorf("Pending emails abandoned: %v", err)
	}
}
