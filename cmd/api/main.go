package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/sjpos/pos-api/internal/application/auth"
	"github.com/sjpos/pos-api/internal/application/sales"
	"github.com/sjpos/pos-api/internal/application/usecase"
	"github.com/sjpos/pos-api/internal/infrastructure/mail"
	infrapdf "github.com/sjpos/pos-api/internal/infrastructure/pdf"
	"github.com/sjpos/pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/sjpos/pos-api/internal/interfaces/http"
	"github.com/sjpos/pos-api/pkg/config"
	"github.com/sjpos/pos-api/pkg/logger"
	"github.com/sjpos/pos-api/pkg/publicid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: os.Getenv("LOG_LEVEL"),
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	mailer := mail.New(cfg.Mail, cfg.App.Name, log.Component("mail"))
	authUC := auth.NewAuthUseCase(userRepo, mailer, auth.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Issuer:        cfg.JWT.Issuer,
		AccessTTL:     time.Duration(cfg.JWT.AccessMinutes) * time.Minute,
		RefreshTTL:    time.Duration(cfg.JWT.RefreshHours) * time.Hour,
	}, log.Component("auth"))

	// Ventas: transacción por venta + lectura de tickets
	createSaleUC := sales.NewCreateSaleUseCase(txRunner, publicid.New(cfg.Sale.PublicIDPrefix), log.Component("sales"))
	receiptUC := sales.NewReceiptUseCase(saleRepo, infrapdf.NewReceiptGenerator(cfg.App.Name), log.Component("receipts"))

	app := httpRouter.NewApp(httpRouter.ServerOptions{
		AppName:         cfg.App.Name,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		BodyLimitMB:     cfg.HTTP.BodyLimitMB,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute,
	}, log.Component("http"))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SJPOS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale: createSaleUC,
		Receipts:   receiptUC,
		AuthUC:     authUC,
		CashierUC:  usecase.NewCashierUseCase(userRepo),
		CategoryUC: usecase.NewCategoryUseCase(categoryRepo),
		ProductUC:  usecase.NewProductUseCase(productRepo, categoryRepo),

		AccessSecret: cfg.JWT.AccessSecret,
		Cookie: httpRouter.CookieOptions{
			Secure: cfg.App.IsProduction(),
			MaxAge: time.Duration(cfg.JWT.RefreshHours) * time.Hour,
		},
		Log: log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
