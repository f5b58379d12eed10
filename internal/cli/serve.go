package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openquiz/quiz-service/internal/auth"
	"github.com/openquiz/quiz-service/internal/cache"
	"github.com/openquiz/quiz-service/internal/config"
	"github.com/openquiz/quiz-service/internal/events"
	"github.com/openquiz/quiz-service/internal/handlers"
	"github.com/openquiz/quiz-service/internal/repositories/postgres"
	"github.com/openquiz/quiz-service/internal/services"
	"github.com/openquiz/quiz-service/internal/utils"
	"github.com/openquiz/quiz-service/internal/validator"
	"github.com/openquiz/quiz-service/pkg"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	leaderboard := cache.NewNoopLeaderboardCache()
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		leaderboard = cache.NewRedisLeaderboardCache(redisClient, logger)
	}

	publisher := events.Publisher(events.NewNoopPublisher())
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			Topic:        cfg.ResultsTopic,
			Logger:       utils.ToSlogLogger(logger),
		})
		if err != nil {
			return err
		}
		publisher = kafkaPublisher
	}
	defer publisher.Close()

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	serviceManager := services.NewServiceManager(
		repo,
		utils.ToSlogLogger(logger),
		validator.New(),
		tokens,
		leaderboard,
		publisher,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, repo, tokens, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("Shutting down server")
	case <-ctx.Done():
		logger.Info("Context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
