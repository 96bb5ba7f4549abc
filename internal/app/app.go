package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/handlers"
	"tokoadmin/internal/middleware"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/resource"
	"tokoadmin/internal/services"
	"tokoadmin/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminBasePath is where the product resource pages are mounted.
const AdminBasePath = "/api/v1/admin/products"

// App is the wired HTTP service and the resources it owns.
type App struct {
	Fiber *fiber.App
	DB    *gorm.DB
	MQ    *rabbitmq.Client
	Auth  *services.AuthService
}

// New opens the database, connects to RabbitMQ when configured, seeds the
// bootstrap admin and registers every route.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a := &App{DB: db}
	// fail releases everything opened so far
	fail := func(err error) (*App, error) {
		return nil, errors.Join(err, a.Close())
	}

	if err := database.Migrate(db); err != nil {
		return fail(err)
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			return fail(err)
		}
		a.MQ = mq
		publisher = mq
	} else {
		log.Info().Msg("RABBITMQ_URL not set, product events are disabled")
	}

	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo, categoryRepo, tagRepo, publisher)
	catalogService := services.NewCatalogService(categoryRepo, tagRepo)
	a.Auth = services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	if cfg.AdminPassword != "" {
		if err := a.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fail(err)
		}
	}
	if cfg.SeedDemo {
		if err := database.SeedDemo(ctx, productRepo, categoryRepo, tagRepo); err != nil {
			return fail(fmt.Errorf("failed to seed demo data: %w", err))
		}
	}

	productResource := resource.NewProductResource(cfg.Currency, AdminBasePath)

	app := fiber.New(fiber.Config{
		AppName: "toko-admin",
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": a.MQ != nil,
		}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["status"] = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	apiV1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(a.Auth)
	authHandler.RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AuthRequired(a.Auth))
	handlers.NewProductHandler(productService, catalogService, productResource).RegisterRoutes(admin)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(admin)
	authHandler.RegisterAdminRoutes(admin)

	a.Fiber = app
	return a, nil
}

// Close releases the RabbitMQ connection and the database pool.
func (a *App) Close() error {
	var errs []error
	if a.MQ != nil {
		errs = append(errs, a.MQ.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
