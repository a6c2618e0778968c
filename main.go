package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artvoid/artvoid-api/config"
	"github.com/artvoid/artvoid-api/events"
	"github.com/artvoid/artvoid-api/logger"
	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/artvoid/artvoid-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger's level comes from config, so fall back to a default one
		logger.New("info").Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	log.Info("starting Art Void API server", zap.String("env", cfg.GoEnv))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	log.Info("database migration completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := buildDependencies(ctx, cfg, db, log)
	if err != nil {
		log.Fatal("failed to initialise services", zap.Error(err))
	}
	defer closeDeps()

	authenticate, err := middleware.EnsureValidToken(cfg, true)
	if err != nil {
		log.Fatal("failed to set up authentication", zap.Error(err))
	}
	deps.Authenticate = authenticate

	// long-lived event streams end when the server starts shutting down
	streamCtx, cancelStreams := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
	}
	server.RegisterOnShutdown(cancelStreams)

	go func() {
		log.Info("server is listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shut down", zap.Error(err))
	}
	log.Info("server exited")
}

// buildDependencies wires repositories, storage, events and services. The
// returned func releases anything that holds a connection.
func buildDependencies(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   log,
		Users:    repository.NewUserRepository(db),
		Orders:   repository.NewOrderRepository(db),
		Products: repository.NewProductRepository(db),
		Gallery:  repository.NewGalleryRepository(db),
		Comments: repository.NewCommentRepository(db),
		Messages: repository.NewMessageRepository(db),
		Settings: repository.NewSettingsRepository(db, cfg.CommissionRate),
		Hub:      events.NewHub(log),
		UserInfo: services.NewAuth0Service(cfg),
	}

	if cfg.UsesS3() {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		deps.Images = services.NewS3ImageService(s3Service)
		log.Info("storing uploads in S3", zap.String("bucket", cfg.AWSS3Bucket))
	} else {
		deps.Images = services.NewLocalImageService(cfg.UploadDir)
		deps.UploadDir = cfg.UploadDir
		log.Info("storing uploads on local disk", zap.String("dir", cfg.UploadDir))
	}

	var publisher events.Publisher = deps.Hub
	closeFn := func() {}
	if cfg.UsesKafka() {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		publisher = events.Multi{deps.Hub, kafka}
		closeFn = func() {
			if err := kafka.Close(); err != nil {
				log.Warn("failed to close kafka writer", zap.Error(err))
			}
		}
		log.Info("publishing order events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	deps.OrderService = services.NewOrderService(deps.Orders, deps.Products, deps.Gallery, deps.Settings, deps.Users, publisher, log)
	deps.AccountService = services.NewAccountService(deps.Users, log)
	deps.AdminService = services.NewAdminService(deps.Settings, deps.Users, log)

	if err := deps.AdminService.BootstrapPassword(ctx, cfg.AdminPassword); err != nil {
		closeFn()
		return nil, nil, err
	}

	return deps, closeFn, nil
}
