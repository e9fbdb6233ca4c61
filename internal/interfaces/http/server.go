package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// ServerOptions parámetros del servidor HTTP (vienen de config.HTTPConfig y RateLimitConfig).
type ServerOptions struct {
	AppName         string
	CORSOrigins     string
	BodyLimitMB     int
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// NewApp construye la app fiber con el middleware común: recover, request id,
// cabeceras de seguridad, CORS, log de peticiones y límite de peticiones por IP en /api.
func NewApp(opts ServerOptions, log zerolog.Logger) *fiber.App {
	bodyLimit := opts.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 4
	}
	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New(helmet.Config{
		// Swagger UI necesita recursos externos
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(cors.New(corsConfig(opts.CORSOrigins)))
	app.Use(RequestLogger(log))

	if opts.RateLimitMax > 0 {
		window := opts.RateLimitWindow
		if window <= 0 {
			window = 15 * time.Minute
		}
		app.Use("/api", limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: window,
			LimitReached: func(c *fiber.Ctx) error {
				return errorBody(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later")
			},
		}))
	}
	return app
}

func corsConfig(origins string) cors.Config {
	if origins == "" || origins == "*" {
		return cors.Config{AllowOrigins: "*"}
	}
	// El refresh token viaja en cookie: con orígenes explícitos se permiten credenciales.
	return cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
	}
}

// RequestLogger registra una línea por petición con zerolog.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.Info().
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("http")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	s, _ := c.Locals("requestid").(string)
	return s
}
