package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"rentalhub/internal/adapter/api"
	"rentalhub/internal/adapter/api/handler"
	apimiddleware "rentalhub/internal/adapter/api/middleware"
	"rentalhub/internal/adapter/api/router"
	"rentalhub/internal/adapter/repository"
	domainrepo "rentalhub/internal/domain/repository"
	"rentalhub/internal/infrastructure/firebase"
	"rentalhub/internal/infrastructure/jwtauth"
	"rentalhub/internal/infrastructure/ratelimit"
	"rentalhub/internal/infrastructure/taskqueue"
	"rentalhub/internal/infrastructure/websocket"
	"rentalhub/internal/usecase"
	"rentalhub/pkg/config"
	"rentalhub/pkg/logger"
	"rentalhub/pkg/response"
)

type tokenService interface {
	apimiddleware.TokenVerifier
	handler.TokenIssuer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.OpenDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open %s database: %v", cfg.DBDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to access database handle: %v", err)
	}
	defer sqlDB.Close()

	store := repository.NewGormStore(db)

	var (
		tokens     tokenService
		users      domainrepo.UserDirectory
		properties domainrepo.PropertyDirectory
	)

	if cfg.FirebaseProject != "" {
		firebaseApp, err := firebase.NewApp(ctx, cfg.FirebaseProject, cfg.FirebaseServiceAccount, cfg.FirebaseServiceAccountRaw)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		firestoreClient, err := firebaseApp.Firestore(ctx)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		users = repository.NewFirestoreUserRepository(firestoreClient)
		properties = repository.NewFirestorePropertyRepository(firestoreClient)

		if cfg.AuthProvider == "firebase" {
			authClient, err := firebaseApp.Auth(ctx)
			if err != nil {
				log.Fatalf("Failed to initialize Firebase Auth: %v", err)
			}
			tokens = firebase.NewFirebaseAuthClient(authClient)
		}
		logger.Info("Using Firestore directory for project %s", cfg.FirebaseProject)
	} else {
		directory := repository.NewStaticDirectory()
		users = directory
		properties = directory
		logger.Warn("FIREBASE_PROJECT_ID not set, user and property lookups use an empty in-memory directory")
	}

	if tokens == nil {
		tokens = jwtauth.NewAuthority(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
	}
	logger.Info("Authenticating with %s tokens", cfg.AuthProvider)

	wsManager := websocket.NewManager()
	tasks := taskqueue.New(cfg.WorkerCount, cfg.WorkerQueueSize)

	messageBurst := cfg.MessageRatePerMinute / 3
	if messageBurst < 1 {
		messageBurst = 1
	}
	rateLimiter := ratelimit.NewRateLimiter(ratelimit.Policy{PerMinute: 120, Burst: 30}, map[string]ratelimit.Policy{
		usecase.ActionSendMessage: {PerMinute: cfg.MessageRatePerMinute, Burst: messageBurst},
		"connect":                 {PerMinute: 20, Burst: 5},
		"rest":                    {PerMinute: 300, Burst: 60},
	})
	rateLimiter.StartCleanupRoutine(ctx, 10*time.Minute)

	chatUseCase := usecase.NewChatUseCase(store, store.Interactions(), users, properties, wsManager, tasks, rateLimiter)
	readTracker := usecase.NewReadTracker(store, wsManager)

	validator := api.NewValidator()

	var devTokenHandler *handler.DevTokenHandler
	if cfg.IsDevelopment() {
		devTokenHandler = handler.NewDevTokenHandler(tokens)
	}
	handler.Setup(
		handler.NewChatHandler(chatUseCase, readTracker),
		handler.NewWebSocketHandler(wsManager, chatUseCase, readTracker, validator, cfg.AllowedOrigins),
		handler.NewHealthHandler(sqlDB.PingContext, wsManager.ClientCount),
		devTokenHandler,
	)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins(cfg.AllowedOrigins),
	}))

	e.Validator = validator
	e.HTTPErrorHandler = response.ErrorHandler

	router.Setup(e, apimiddleware.NewAuthMiddleware(tokens), rateLimiter, cfg.Environment)

	go func() {
		logger.Info("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed: %v", err)
	}
	wsManager.Shutdown()
	if err := tasks.Stop(shutdownCtx); err != nil {
		logger.Error("Background tasks did not drain: %v", err)
	}
	cancel()
	logger.Info("Server stopped")
}

func allowOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
