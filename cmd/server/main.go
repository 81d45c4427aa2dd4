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

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/unidesk/uniadmin/internal/config"
	"github.com/unidesk/uniadmin/internal/database"
	"github.com/unidesk/uniadmin/internal/handlers"
	"github.com/unidesk/uniadmin/internal/realtime"
	"github.com/unidesk/uniadmin/internal/repository"
	cron "github.com/unidesk/uniadmin/internal/scheduler"
	"github.com/unidesk/uniadmin/internal/services"
	"github.com/unidesk/uniadmin/internal/validation"
	"github.com/unidesk/uniadmin/pkg/email"
	"github.com/unidesk/uniadmin/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx := context.Background()

	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Log.Fatalf("Index creation error: %v", err)
	}

	broadcaster := newBroadcaster(ctx, cfg)

	var mailer services.Mailer
	if cfg.SMTP.Enabled() {
		mailer = email.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Sender, cfg.SMTP.Password)
		logger.Log.WithField("host", cfg.SMTP.Host).Info("Email notifications enabled")
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	medicalRepo := repository.NewMedicalRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db, cfg.NotificationTTL)
	moduleRepo := repository.NewModuleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, broadcaster, mailer, cfg.NotifyTimeout)
	medicalService := services.NewMedicalService(medicalRepo, userRepo, notificationService)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo, moduleRepo, userRepo, notificationService)

	admin := cfg.BootstrapAdmin
	if err := userService.EnsureAdmin(ctx, admin.Name, admin.Email, admin.Password, admin.AdminType); err != nil {
		logger.Log.Fatalf("Bootstrap admin error: %v", err)
	}

	validator, err := validation.New()
	if err != nil {
		logger.Log.Fatalf("Schema compilation error: %v", err)
	}

	// --- Handlers ---
	router := mux.NewRouter()
	handlers.RegisterRoutes(router, &handlers.Handlers{
		User:         handlers.NewUserHandler(userService, validator, cfg.JWTSecret, cfg.TokenExpiry),
		Medical:      handlers.NewMedicalHandler(medicalService, validator),
		Enrollment:   handlers.NewEnrollmentHandler(enrollmentService, validator),
		Notification: handlers.NewNotificationHandler(notificationService),
		Stream:       handlers.NewNotificationStreamHandler(broadcaster, cfg.JWTSecret, cfg.AllowedOrigins),
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
	}, cfg.JWTSecret)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})

	scheduler, err := cron.StartNotificationCronJobs(notificationService, cfg.CleanupSchedule)
	if err != nil {
		logger.Log.Fatalf("Scheduler error: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Log.Info("Shutting down")

	shutdown(srv, scheduler.Stop(), notificationService, broadcaster, db.Client())
}

// newBroadcaster uses Redis when configured so every instance sees every
// notification; otherwise fan-out stays in process.
func newBroadcaster(ctx context.Context, cfg *config.Config) realtime.Broadcaster {
	if cfg.RedisAddr == "" {
		return realtime.NewLocalBroadcaster()
	}
	client, err := realtime.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Log.Fatalf("Redis connection error: %v", err)
	}
	logger.Log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	return realtime.NewRedisBroadcaster(client, cfg.NotificationChannel)
}

func shutdown(srv *http.Server, cronDone context.Context, notifier *services.NotificationService, broadcaster realtime.Broadcaster, client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("HTTP server shutdown incomplete")
	}

	select {
	case <-cronDone.Done():
	case <-ctx.Done():
		logger.Log.Warn("Timed out waiting for scheduled jobs")
	}

	notifier.Wait()

	if err := broadcaster.Close(); err != nil {
		logger.Log.WithError(err).Warn("Broadcaster close failed")
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.Log.WithError(err).Warn("MongoDB disconnect failed")
	}
	logger.Log.Info("Server stopped")
}
