package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
	"github.com/cardsavvy/cardsavvy/internal/classify"
	"github.com/cardsavvy/cardsavvy/internal/config"
	"github.com/cardsavvy/cardsavvy/internal/gemini"
	"github.com/cardsavvy/cardsavvy/internal/middleware"
	"github.com/cardsavvy/cardsavvy/internal/notification"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
	"github.com/cardsavvy/cardsavvy/internal/verify"
	"github.com/cardsavvy/cardsavvy/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories
	var catalogRepo catalog.Repository
	var walletRepo wallet.Repository
	var auditLog catalog.AuditLog
	if d.DB != nil {
		catalogRepo = catalog.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		auditLog = catalog.NewPostgresAuditLog(d.DB)
	} else {
		catalogRepo = catalog.NewMemoryRepository(catalog.Seed()...)
		walletRepo = wallet.NewMemoryRepository(catalogRepo)
		auditLog = catalog.NewMemoryAuditLog()
	}

	// Classification and extraction. Without a Gemini key the keyword table
	// still serves development mode; extraction is simply off.
	var classifier rewards.Classifier
	var extractor catalog.Extractor
	if d.Cfg.GeminiAPIKey != "" {
		client := gemini.New(d.Cfg.GeminiAPIKey, d.Cfg.GeminiModel)
		classifier = classify.NewGemini(client)
		extractor = catalog.NewGeminiExtractor(client)
	} else {
		classifier = classify.NewKeyword()
	}
	if d.Cache != nil {
		classifier = classify.NewCached(classifier, d.Cache, d.Cfg.ClassifyCacheTTL, d.Logger)
	}

	// Services and handlers
	engine := rewards.NewEngine(classifier, d.Cfg.ClassifyTimeout, d.Cfg.RewardUnit)
	lookupSvc := catalog.NewLookupService(catalogRepo, nil, extractor, d.Logger)
	notifier := notification.NewLoggerNotifier(d.Logger)
	workflow := verify.New(catalogRepo, walletRepo, notifier, d.Logger)

	analyzeHandler := NewAnalyzeHandler(engine, walletRepo)
	cardsHandler := NewCardsHandler(lookupSvc, workflow, catalogRepo, walletRepo, auditLog, d.Logger)
	adminHandler := NewAdminHandler(workflow)

	api := app.Group("/api")

	// Public routes
	api.Get("/cards/public", cardsHandler.Public)

	// Protected routes
	authmw := middleware.Auth(d.Cfg.AuthSecret)
	protected := api.Group("", authmw)
	protected.Post("/analyze", analyzeHandler.Analyze)

	cards := protected.Group("/cards")
	if d.Cache != nil {
		cards.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	cards.Post("/lookup", middleware.LookupRateLimit(d.Cache, d.Cfg.LookupRatePerMin), cardsHandler.Lookup)
	cards.Post("/confirm", cardsHandler.Confirm)
	cards.Post("/wallet", cardsHandler.Admit)
	cards.Get("/wallet", cardsHandler.Wallet)
	cards.Get("/catalog", cardsHandler.Catalog)

	// Reviewer routes
	admin := api.Group("/admin", AdminToken(d.Cfg.AdminToken))
	admin.Post("/cards/:id/resolve", adminHandler.Resolve)

	return nil
}
