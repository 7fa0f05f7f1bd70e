package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"rewear/internal/adapter/api"
	"rewear/internal/adapter/api/handler"
	apimiddleware "rewear/internal/adapter/api/middleware"
	"rewear/internal/adapter/api/router"
	"rewear/internal/adapter/repository"
	"rewear/internal/adapter/repository/memory"
	domainrepo "rewear/internal/domain/repository"
	"rewear/internal/domain/service"
	"rewear/internal/infrastructure/auth"
	"rewear/internal/infrastructure/firebase"
	"rewear/internal/infrastructure/metrics"
	"rewear/internal/infrastructure/ratelimit"
	"rewear/internal/infrastructure/storage"
	"rewear/internal/infrastructure/websocket"
	"rewear/internal/usecase"
	"rewear/pkg/config"
	"rewear/pkg/logger"
	"rewear/pkg/response"
)

type repositories struct {
	users domainrepo.UserRepository
	items domainrepo.ItemRepository
	swaps domainrepo.SwapRepository
	uow   domainrepo.UnitOfWork
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		opts        []option.ClientOption
		firebaseApp *fbapp.App
		repos       repositories
		healthCheck = map[string]handler.HealthCheck{}
	)

	if cfg.StoreDriver == config.StoreFirestore || cfg.AuthProvider == config.AuthFirebase || cfg.StorageBucket != "" {
		opts = credentials(cfg)
		firebaseApp, err = fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject, StorageBucket: cfg.StorageBucket}, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase: %v", err)
		}
	}

	switch cfg.StoreDriver {
	case config.StoreFirestore:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			logger.Fatal("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		repos = repositories{
			users: repository.NewFirestoreUserRepository(firestoreClient),
			items: repository.NewFirestoreItemRepository(firestoreClient),
			swaps: repository.NewFirestoreSwapRepository(firestoreClient),
			uow:   repository.NewFirestoreUnitOfWork(firestoreClient),
		}
		healthCheck["firestore"] = func(ctx context.Context) error {
			_, err := firestoreClient.Collections(ctx).Next()
			if stderrors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
	default:
		logger.Warn("Using the in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			users: store.Users(),
			items: store.Items(),
			swaps: store.Swaps(),
			uow:   store.UnitOfWork(),
		}
	}

	var identity service.IdentityProvider
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Auth: %v", err)
		}
		identity = firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseWebAPIKey)
	default:
		identity = auth.NewJWTProvider(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
	}

	var images service.ImageStorage
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		images = storageClient
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	messageThrottle := ratelimit.NewMessageThrottle(cfg.MessageRatePerMinute)
	messageThrottle.StartCleanupRoutine(ctx, 10*time.Minute)

	notifier := service.NewMultiNotifier(wsManager, metrics.SwapEventCounter{})

	authUseCase := usecase.NewAuthUseCase(repos.users, identity, auth.NewBcryptHasher(0), cfg.DefaultPoints)
	userUseCase := usecase.NewUserUseCase(repos.users, repos.items, repos.swaps)
	itemUseCase := usecase.NewItemUseCase(repos.items, repos.users, repos.swaps, images, cfg.ListingAutoApprove)
	swapUseCase := usecase.NewSwapUseCase(repos.uow, repos.swaps, repos.items, repos.users, notifier, messageThrottle)
	adminUseCase := usecase.NewAdminUseCase(repos.users, repos.items, repos.swaps, itemUseCase, identity)

	handler.Setup(authUseCase, userUseCase, itemUseCase, swapUseCase, adminUseCase)
	if images != nil {
		handler.SetupFileHandler(itemUseCase)
	}
	handler.SetupHealthHandler(healthCheck)
	handler.SetupWebSocketHandler(wsManager, cfg.CORSOrigins)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.Logger().WithFields(logrus.Fields{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"remote_ip": v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(metrics.Middleware())

	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware()
	rateLimiter := apimiddleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	rateLimiter.StartCleanup(ctx)

	router.Setup(e, authMiddleware, adminMiddleware, rateLimiter)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

// credentials prefers inline service account JSON and falls back to a key file.
// With neither set, application default credentials are used.
func credentials(cfg *config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
	}
	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			logger.Fatal("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
	}
	logger.Info("Using application default credentials")
	return nil
}
