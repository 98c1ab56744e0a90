package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/backend"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/cache"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/handlers"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/repositories"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/services"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/session"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/rigsite-dashboard-be/cmd/dashboard-api/docs"
)

// stores is the document store selected by DOCUMENT_STORE
type stores struct {
	profiles repositories.ProfileRepo
	logs     repositories.LogRepo
	audit    audit.Store
	close    func()
}

// @title RigBot Client Dashboard API
// @version 1.0
// @description Client dashboard for RigBot chatbot customers: profile settings, calendar integration, widget embed and chat logs
// @contact.name API Support
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel, cfg.Env)
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting dashboard-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Feature gates: a missing variable disables the feature, not the process
	identityCfg := featureError("Inicio de sesión", cfg.MissingIdentity())
	databaseCfg := featureError("Base de datos", cfg.MissingDatabase())
	logsCfg := featureError("Visor de registros", cfg.MissingLogsGate())
	for _, e := range []*config.Error{identityCfg, databaseCfg, logsCfg, featureError("Integración RigBot", cfg.MissingBackend())} {
		if e != nil {
			log.Warn().Str("feature", e.Feature).Strs("missing", e.Missing).Msg("⚠️ Feature disabled by configuration")
		}
	}

	m := metrics.Registry("rigbot_dashboard")

	st, storeErr := openStores(ctx, cfg, databaseCfg)
	defer st.close()
	if storeErr != nil {
		databaseCfg = storeErr
	}

	// Auth + session provider
	authService := auth.NewService(auth.NewGoogleOAuthService(cfg.GoogleClientID), cfg.JWTSecret, cfg.SessionTTL)
	provider := session.NewProvider(st.profiles).WithMetrics(m)
	if databaseCfg == nil {
		changes, unsubscribe := authService.Subscribe()
		defer unsubscribe()
		go provider.Watch(ctx, changes)
	}

	backendClient := backend.NewClient(cfg.BackendBaseURL)

	// Email (optional)
	emailService := email.NewService(email.NewProvider(cfg.EmailProvider, cfg.BrevoAPIKey, cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailFromName))
	if emailService.Configured() {
		log.Info().Str("provider", emailService.GetProviderName()).Msg("📧 Email provider enabled")
	} else {
		log.Warn().Msg("⚠️ Email service not configured")
	}

	// Log viewer
	limiter, closeLimiter := newLimiter(ctx, cfg)
	defer closeLimiter()

	var gate *services.LogsGate
	if logsCfg == nil {
		var err error
		gate, err = services.NewLogsGate(cfg.LogsAccessPassword, cfg.JWTSecret, limiter, m, auth.DefaultPasswordCost)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to initialize log viewer gate")
		}
	}

	loc, err := time.LoadLocation(cfg.LogsTimezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.LogsTimezone).Msg("⚠️ Unknown log timezone, using UTC")
		loc = time.UTC
	}

	// Services
	board := services.NewStatusBoard()
	provider.OnSignOut(board.Clear)
	settingsService := services.NewSettingsService(provider, st.profiles, st.audit, board, m, emailService, backendClient.BaseURL())
	calendarService := services.NewCalendarService(provider, backendClient, authService, st.audit, m)
	logsService := services.NewLogsService(st.logs, export.NewService(), m, loc)

	app := fiber.New(fiber.Config{
		AppName:      "RigBot Client Dashboard",
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowCredentials: cfg.AllowedOrigins() != "*",
	}))

	// Swagger + metrics
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.Register(app, handlers.Routes{
		AuthService:    authService,
		Auth:           auth.NewHandler(authService, cfg.CookieSecure),
		Settings:       handlers.NewSettingsHandler(settingsService),
		Calendar:       handlers.NewCalendarHandler(calendarService),
		Logs:           handlers.NewLogsHandler(logsService, gate, cfg.CookieSecure),
		Session:        handlers.NewSessionHandler(provider),
		Health:         handlers.NewHealthHandler(cfg.DocumentStore, emailService.GetProviderName()),
		Pages:          handlers.NewPagesHandler(),
		IdentityConfig: identityCfg,
		DatabaseConfig: databaseCfg,
		LogsConfig:     logsCfg,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("🛑 Shutting down dashboard-api...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("❌ Graceful shutdown failed")
		}
	}()

	log.Info().Msgf("✅ dashboard-api running at :%s", cfg.Port)
	log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("❌ Server stopped")
	}
}

func featureError(feature string, missing []string) *config.Error {
	if len(missing) == 0 {
		return nil
	}
	return &config.Error{Feature: feature, Missing: missing}
}

// openStores connects the configured document store. With the database
// feature disabled, or the store unreachable, the repositories stay nil and
// every route that needs them answers 503.
func openStores(ctx context.Context, cfg *config.Config, databaseCfg *config.Error) (stores, *config.Error) {
	st := stores{audit: audit.NewMemoryStore(), close: func() {}}
	if databaseCfg != nil {
		return st, nil
	}

	switch cfg.DocumentStore {
	case config.StorePostgres:
		db, err := database.NewDB(cfg.DatabaseURL, cfg.IsDevelopment() && cfg.LogLevel == "debug")
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to connect to postgres, database features disabled")
			return st, &config.Error{Feature: "Base de datos", Cause: err}
		}
		st.profiles = repositories.NewProfileRepo(db.GORM)
		st.logs = repositories.NewLogRepo(db.GORM)
		st.audit = audit.NewService(db.GORM)
		st.close = func() { _ = db.Close() }

	case config.StoreMongo:
		mg, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to connect to mongo, database features disabled")
			return st, &config.Error{Feature: "Base de datos", Cause: err}
		}
		st.profiles = repositories.NewMongoProfileRepo(mg.DB)
		st.logs = repositories.NewMongoLogRepo(mg.DB)
		st.close = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mg.Close(closeCtx)
		}

	case config.StoreMemory:
		log.Warn().Msg("⚠️ Using in-memory document store, data is lost on restart")
		st.profiles = repositories.NewMemoryProfileRepo()
		st.logs = repositories.NewMemoryLogRepo()
	}

	log.Info().Str("store", cfg.DocumentStore).Msg("💾 Document store ready")
	return st, nil
}

// newLimiter prefers redis so lockouts survive restarts and span instances
func newLimiter(ctx context.Context, cfg *config.Config) (cache.AttemptLimiter, func()) {
	memory := cache.NewMemoryLimiter(services.GateMaxFailures, services.GateWindow)
	if cfg.RedisAddr == "" {
		return memory, func() {}
	}

	rdb := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("⚠️ Redis unavailable, using in-memory attempt limiter")
		_ = rdb.Close()
		return memory, func() {}
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("✅ Redis connected")
	return cache.NewRedisLimiter(rdb, "rigbot:logs-gate", services.GateMaxFailures, services.GateWindow),
		func() { _ = rdb.Close() }
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("❌ Unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
