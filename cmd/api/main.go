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

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/dealmatch/internal/ai"
	"github.com/octobees/dealmatch/internal/auth"
	"github.com/octobees/dealmatch/internal/config"
	"github.com/octobees/dealmatch/internal/database"
	"github.com/octobees/dealmatch/internal/filestore"
	"github.com/octobees/dealmatch/internal/handler"
	"github.com/octobees/dealmatch/internal/logger"
	middlewarepkg "github.com/octobees/dealmatch/internal/middleware"
	"github.com/octobees/dealmatch/internal/notify"
	"github.com/octobees/dealmatch/internal/realtime"
	"github.com/octobees/dealmatch/internal/repository"
	"github.com/octobees/dealmatch/internal/router"
	"github.com/octobees/dealmatch/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()

	var broker realtime.Broker
	if cfg.RedisURL != "" {
		client, err := realtime.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close()
		broker = realtime.NewRedisBroker(client, "")
	}
	hub := realtime.NewHub(broker, zlog.Named("realtime"))
	go func() {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Error("realtime broker stopped", zap.Error(err))
		}
	}()

	var notifier notify.Notifier = notify.NewLogNotifier(zlog.Named("notify"))
	if cfg.SESEnabled() {
		ses, err := notify.NewSESNotifier(ctx, cfg.Notify.SESRegion, cfg.Notify.SESSender)
		if err != nil {
			zlog.Fatal("failed to configure SES", zap.Error(err))
		}
		notifier = ses
	}

	var completer ai.Completer
	if cfg.AIEnabled() {
		openAI, err := ai.NewOpenAICompleter(ctx, ai.OpenAIConfig{
			APIKey:   cfg.AI.APIKey,
			BaseURL:  cfg.AI.BaseURL,
			Model:    cfg.AI.Model,
			Audience: cfg.AI.Audience,
		})
		if err != nil {
			zlog.Fatal("failed to configure AI provider", zap.Error(err))
		}
		completer = openAI
	} else {
		zlog.Warn("AI provider not configured, advisor runs in degraded mode")
	}
	advisor := ai.NewAdvisor(completer,
		ai.WithTimeout(cfg.AI.Timeout),
		ai.WithInsightRecorder(store),
		ai.WithLogger(zlog.Named("ai")),
	)

	files, err := filestore.NewLocalStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		zlog.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	contacts := service.NewContactNormalizer(cfg.DefaultPhoneRegion)

	authService := service.NewAuthService(store, jwtManager, contacts)
	profileService := service.NewProfileService(store, contacts, authService)
	discoveryService := service.NewDiscoveryService(store, advisor, zlog.Named("discovery"))
	matchService := service.NewMatchService(store, advisor, notifier, hub, zlog.Named("matches"))
	dealService := service.NewDealService(store, advisor, notifier, hub, zlog.Named("deals"))
	documentService := service.NewDocumentService(store, files, advisor, hub, zlog.Named("documents"))
	messageService := service.NewMessageService(store, hub, zlog.Named("messages"))
	insightService := service.NewInsightService(store, advisor)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zlog.Named("http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Profiles:  handler.NewProfileHandler(profileService),
		Discovery: handler.NewDiscoveryHandler(discoveryService),
		Matches:   handler.NewMatchHandler(matchService),
		Deals:     handler.NewDealHandler(dealService),
		Documents: handler.NewDocumentHandler(documentService, cfg.MaxUploadBytes),
		Messages:  handler.NewMessageHandler(messageService),
		AI:        handler.NewAIHandler(insightService, dealService),
		WS:        handler.NewWSHandler(hub, jwtManager, dealService, cfg.WSInsecureSkipVerify),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()
	zlog.Info("api listening",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
		zap.Bool("ai_provider", completer != nil),
		zap.Bool("redis_fanout", broker != nil),
	)

	select {
	case <-ctx.Done():
		zlog.Info("received shutdown signal")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server error", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore returns the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return repository.NewMemoryStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(connectCtx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repository.NewPGXStore(pool), pool.Close, nil
}
