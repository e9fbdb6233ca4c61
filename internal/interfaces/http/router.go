package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sjpos/pos-api/internal/application/auth"
	"github.com/sjpos/pos-api/internal/application/sales"
	"github.com/sjpos/pos-api/internal/application/usecase"
	"github.com/sjpos/pos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale   *sales.CreateSaleUseCase
	Receipts     *sales.ReceiptUseCase
	AuthUC       *auth.AuthUseCase
	CashierUC    *usecase.CashierUseCase
	CategoryUC   *usecase.CategoryUseCase
	ProductUC    *usecase.ProductUseCase
	AccessSecret string
	Cookie       CookieOptions
	Log          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authMW := AuthMiddleware(deps.AccessSecret)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Users: registro y sesión públicos, cuenta protegida
	userHandler := NewUserHandler(deps.AuthUC, deps.Cookie, deps.Log.With().Str("handler", "users").Logger())
	users := api.Group("/users")
	users.Post("/signup", userHandler.Signup)
	users.Get("/verify_email", userHandler.VerifyEmail)
	users.Post("/resend_verification_email", userHandler.ResendVerification)
	users.Post("/login", userHandler.Login)
	users.Post("/refresh", userHandler.Refresh)
	users.Post("/logout", userHandler.Logout)
	users.Get("/profile", authMW, userHandler.Profile)
	users.Patch("/profile", authMW, userHandler.UpdateProfile)
	users.Patch("/update_profile", authMW, userHandler.UpdateProfile)
	users.Patch("/change_password", authMW, userHandler.ChangePassword)
	users.Patch("/change_theme_preference", authMW, userHandler.ChangeTheme)
	users.Delete("/delete", authMW, userHandler.Delete)

	// Admin: gestión de cajeros
	adminHandler := NewAdminHandler(deps.CashierUC, deps.Log.With().Str("handler", "admin").Logger())
	admin := api.Group("/admin", authMW, adminOnly)
	admin.Get("/cashiers", adminHandler.ListCashiers)
	admin.Get("/cashier/:id", adminHandler.GetCashier)
	admin.Patch("/approve_cashier/:id", adminHandler.ApproveCashier)

	// Categories: lectura para cualquier usuario autenticado, escritura admin
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.Log.With().Str("handler", "categories").Logger())
	categories := api.Group("/category", authMW)
	categories.Post("/create", adminOnly, categoryHandler.Create)
	categories.Get("/get_all", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Patch("/:id/update", adminOnly, categoryHandler.Update)
	categories.Delete("/:id/delete", adminOnly, categoryHandler.Delete)

	// Products
	productHandler := NewProductHandler(deps.ProductUC, deps.Log.With().Str("handler", "products").Logger())
	products := api.Group("/product", authMW)
	products.Post("/create", adminOnly, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Patch("/:id/update", adminOnly, productHandler.Update)

	// Sales: cada usuario solo ve sus propias ventas
	saleHandler := NewSaleHandler(deps.CreateSale, deps.Receipts, deps.Log.With().Str("handler", "sales").Logger())
	salesGroup := api.Group("/sales", authMW)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:public_id", saleHandler.Get)
	salesGroup.Get("/:public_id/pdf", saleHandler.PDF)
}
