package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/offerdesk/internal/app/auth"
	appControllers "github.com/yigit/offerdesk/internal/app/controllers"
	appMigrations "github.com/yigit/offerdesk/internal/app/migrations"
	appRepos "github.com/yigit/offerdesk/internal/app/repositories"
	appRoutes "github.com/yigit/offerdesk/internal/app/routes"
	appServices "github.com/yigit/offerdesk/internal/app/services"
	"github.com/yigit/offerdesk/internal/config"
	"github.com/yigit/offerdesk/internal/db"
	appMiddleware "github.com/yigit/offerdesk/internal/middleware"
	pkgAuth "github.com/yigit/offerdesk/internal/pkg/auth"
	"github.com/yigit/offerdesk/internal/pkg/document"
	"github.com/yigit/offerdesk/internal/pkg/email"
	"github.com/yigit/offerdesk/internal/pkg/filestorage"
	"github.com/yigit/offerdesk/internal/pkg/logger"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
	"github.com/yigit/offerdesk/internal/pkg/validation"
	"github.com/yigit/offerdesk/internal/pkg/websocket"
	"github.com/yigit/offerdesk/internal/relay"
	"github.com/yigit/offerdesk/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	AuthzService        *appAuth.AuthorizationService
	AuthService         *appServices.AuthService
	OfferLetterService  appServices.OfferLetterService
	VerificationService appServices.VerificationService
	Reconciler          *appServices.Reconciler
	Storage             filestorage.Storage
	Hub                 *websocket.Hub
	VerifyLimiter       *appMiddleware.RateLimiter
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Metrics             *metrics.Metrics
	Handlers            appRoutes.Handlers
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// service tags every log entry of this process.
func LoadConfigAndSetupLogger(configPath, service string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: service,
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and applies pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := appMigrations.Run(ctx, database.Pool, appMigrations.Up); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, m *metrics.Metrics, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.RegisterRules(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	deps := &Dependencies{Logger: lgr, Metrics: m}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	storage, err := filestorage.New(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize document storage")
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}
	deps.Storage = storage

	logoOpts, err := document.LoadLogo(cfg.Document.LogoPath)
	if err != nil {
		return nil, err
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.MustDuration(cfg.JWT.AccessTokenExpiration),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "events").Logger())

	deps.OfferLetterService = appServices.NewOfferLetterService(appServices.OfferLetterDeps{
		Store:          deps.Repos.OfferLetterRepository,
		Renderer:       document.NewRenderer(logoOpts...),
		Storage:        storage,
		Notifier:       relay.NewClient(cfg.Relay.URL, config.MustDuration(cfg.Relay.Timeout)),
		Events:         deps.Hub,
		Authz:          deps.AuthzService,
		Metrics:        m,
		Logger:         lgr.With().Str("component", "offer_letters").Logger(),
		MaxRefAttempts: cfg.Document.MaxRefAttempts,
	})
	deps.VerificationService = appServices.NewVerificationService(deps.Repos.OfferLetterRepository, m)
	deps.Reconciler = appServices.NewReconciler(deps.Repos.OfferLetterRepository, storage, m, lgr.With().Str("component", "reconciler").Logger())

	deps.VerifyLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.VerifyPerSecond, cfg.RateLimit.VerifyBurst)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Handlers = appRoutes.Handlers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		OfferLetters: appControllers.NewOfferLetterController(deps.OfferLetterService, lgr),
		Verification: appControllers.NewVerificationController(deps.VerificationService),
		Health:       appControllers.NewHealthController(database, lgr),
		Events:       websocket.NewHandler(deps.Hub, lgr),
	}

	if err := seed.CreateDefaultData(ctx, cfg, deps.AuthService, lgr); err != nil {
		// The API is usable without the seed account
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return deps, nil
}

// setGinMode switches gin to release mode in production
func setGinMode(cfg *config.Config, lgr zerolog.Logger) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	setGinMode(cfg, lgr)

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr, deps.Metrics))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupMetrics(router, deps.Metrics)
	if local, ok := deps.Storage.(*filestorage.LocalStorage); ok {
		appRoutes.SetupDocuments(router, local)
		lgr.Info().Str("path", local.BasePath()).Msg("Static file serving configured for documents")
	}

	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, deps.VerifyLimiter)

	return router
}

// BuildRelay assembles the email relay HTTP handler.
func BuildRelay(cfg *config.Config, m *metrics.Metrics, lgr zerolog.Logger) (http.Handler, error) {
	setGinMode(cfg, lgr)

	sender, err := email.NewSender(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail provider: %w", err)
	}
	lgr.Info().Str("provider", cfg.Mail.Provider).Msg("Mail provider configured")

	fetcher := relay.NewPDFFetcher(config.MustDuration(cfg.Relay.FetchTimeout), cfg.Relay.MaxPDFBytes)
	handler := relay.NewHandler(fetcher, sender, m, lgr)
	return relay.NewRouter(handler, m, lgr, cfg.Relay.AllowedOrigins), nil
}

// BuildReconciler wires the draft reconciliation pass without the HTTP stack.
func BuildReconciler(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*appServices.Reconciler, error) {
	storage, err := filestorage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}
	repo := appRepos.NewOfferLetterRepository(database.Pool)
	return appServices.NewReconciler(repo, storage, metrics.New(), lgr.With().Str("component", "reconciler").Logger()), nil
}
