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

	"github.com/gorilla/handlers"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hapipet/internal/api"
	"hapipet/internal/auth"
	"hapipet/internal/config"
	"hapipet/internal/db"
	"hapipet/internal/logger"
	"hapipet/internal/repository"
	"hapipet/internal/service"
	"hapipet/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("Failed to connect to DB", zap.Error(err))
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		zlog.Fatal("Failed to migrate DB", zap.Error(err))
	}

	loc := cfg.Location()

	users := repository.NewUserRepository(conn)
	sitters := repository.NewSitterRepository(conn)
	bookings := repository.NewBookingRepository(conn)
	dogs := repository.NewDogRepository(conn)
	reviews := repository.NewReviewRepository(conn)
	messages := repository.NewMessageRepository(conn)
	payments := repository.NewStripeRepository(conn)
	jobs := repository.NewJobRepository(conn)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	notify := service.NewNotifyService(service.NotifyConfig{
		SendGridAPIKey:    cfg.SendGridAPIKey,
		SendGridFromEmail: cfg.SendGridFromEmail,
		SendGridFromName:  cfg.SendGridFromName,
		TwilioAccountSID:  cfg.TwilioAccountSID,
		TwilioAuthToken:   cfg.TwilioAuthToken,
		TwilioFromNumber:  cfg.TwilioFromNumber,
	}, zlog)
	sender := service.NewSenderService(users, bookings, dogs, notify, notify, loc, zlog)

	if cfg.NotifyQueueEnabled {
		redisCfg := worker.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		queue := worker.NewQueue(redisCfg, zlog)
		defer queue.Close()
		sender.UseDispatcher(queue)

		consumer := worker.NewServer(redisCfg, sender, zlog)
		if err := consumer.Start(); err != nil {
			zlog.Fatal("Failed to start notification worker", zap.Error(err))
		}
		defer consumer.Shutdown()
		go worker.MonitorRedis(ctx, redisCfg, 30*time.Second, zlog)
	}

	if cfg.StripeSecretKey == "" {
		zlog.Warn("STRIPE_SECRET_KEY not set, payments will fail")
	}
	gateway := service.NewStripeService(cfg.StripeSecretKey)

	authSvc := service.NewAuthService(users, tokens, zlog)
	sitterSvc := service.NewSitterService(sitters, bookings, reviews, loc, zlog)
	bookingSvc := service.NewBookingService(service.BookingStores{
		Bookings: bookings,
		Sitters:  sitters,
		Dogs:     dogs,
		Reviews:  reviews,
		Payments: payments,
	}, gateway, sender, loc, cfg.Currency, zlog)
	dogSvc := service.NewDogService(dogs)
	messageSvc := service.NewMessageService(messages, users)
	jobSvc := service.NewJobService(jobs, sender, zlog)

	scheduler := cron.New(cron.WithLocation(loc))
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, func() {
		if _, err := jobSvc.SendReminders(ctx); err != nil {
			zlog.Error("Reminder job failed", zap.Error(err))
		}
	}); err != nil {
		zlog.Fatal("Invalid REMINDER_SCHEDULE", zap.String("schedule", cfg.ReminderSchedule), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(api.Handlers{
		Auth:     api.NewAuthHandler(authSvc, zlog),
		Sitters:  api.NewSitterHandler(sitterSvc, zlog),
		Dogs:     api.NewDogHandler(dogSvc, zlog),
		Bookings: api.NewBookingHandler(bookingSvc, zlog),
		Messages: api.NewMessageHandler(messageSvc, zlog),
		Stripe:   api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, bookingSvc, zlog),
		Health:   api.NewHealthHandler(conn, zlog),
	}, tokens, api.NewRateLimiter(cfg.MaxRequestsPerMin, zlog))

	handler := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins()),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(router)
	handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(!cfg.IsProduction()))(handler)
	handler = handlers.CombinedLoggingHandler(os.Stdout, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("Server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
