package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sjpos/pos-api/internal/application/auth"
	"github.com/sjpos/pos-api/internal/application/dto"
)

// RefreshCookie nombre de la cookie httpOnly con el refresh token.
const RefreshCookie = "refreshToken"

// CookieOptions atributos de la cookie de refresco.
type CookieOptions struct {
	Secure bool // solo HTTPS (producción)
	MaxAge time.Duration
}

// UserHandler cuenta del usuario: registro, sesión y perfil.
type UserHandler struct {
	uc     *auth.AuthUseCase
	cookie CookieOptions
	log    zerolog.Logger
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *auth.AuthUseCase, cookie CookieOptions, log zerolog.Logger) *UserHandler {
	return &UserHandler{uc: uc, cookie: cookie, log: log}
}

// Signup godoc
// @Summary      Registrar cajero
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Datos de registro"
// @Success      201   {object}  dto.UserEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/signup [post]
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	user, err := h.uc.Signup(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UserEnvelope{
		Success: true,
		Message: "signup successful, check your email to verify your account",
		User:    user,
	})
}

// VerifyEmail godoc
// @Summary      Verificar email
// @Tags         users
// @Produce      json
// @Param        token  query  string  true  "Token recibido por correo"
// @Success      200    {object}  dto.MessageResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/users/verify_email [get]
func (h *UserHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.uc.VerifyEmail(c.UserContext(), c.Query("token")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "email verified successfully"})
}

// ResendVerification godoc
// @Summary      Reenviar correo de verificación
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EmailRequest  true  "Email"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/resend_verification_email [post]
func (h *UserHandler) ResendVerification(c *fiber.Ctx) error {
	var in dto.EmailRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.ResendVerification(c.UserContext(), in.Email); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "verification email sent"})
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Devuelve el access token; el refresh token va en la cookie httpOnly refreshToken.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/users/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.setRefreshCookie(c, out.RefreshToken)
	return c.JSON(out)
}

// Refresh godoc
// @Summary      Rotar refresh token
// @Tags         users
// @Produce      json
// @Success      200  {object}  dto.TokenResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/users/refresh [post]
func (h *UserHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.uc.Refresh(c.UserContext(), c.Cookies(RefreshCookie))
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.setRefreshCookie(c, out.RefreshToken)
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         users
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/users/logout [post]
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	err := h.uc.Logout(c.UserContext(), c.Cookies(RefreshCookie))
	h.clearRefreshCookie(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "logged out"})
}

// Profile godoc
// @Summary      Perfil del usuario autenticado
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserEnvelope
// @Router       /api/users/profile [get]
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user, err := h.uc.Profile(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.UserEnvelope{Success: true, User: user})
}

// UpdateProfile godoc
// @Summary      Actualizar perfil
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateProfileRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.UserEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users/profile [patch]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	user, err := h.uc.UpdateProfile(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.UserEnvelope{Success: true, Message: "profile updated", User: user})
}

// ChangePassword godoc
// @Summary      Cambiar contraseña
// @Description  Revoca el refresh token vigente: hay que volver a iniciar sesión.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePasswordRequest  true  "Contraseña actual y nueva"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/users/change_password [patch]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.ChangePassword(c.UserContext(), GetUserID(c), in); err != nil {
		return writeError(c, h.log, err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Success: true, Message: "password changed, please log in again"})
}

// ChangeTheme godoc
// @Summary      Cambiar tema
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ThemeRequest  true  "light | dark"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users/change_theme_preference [patch]
func (h *UserHandler) ChangeTheme(c *fiber.Ctx) error {
	var in dto.ThemeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.ChangeTheme(c.UserContext(), GetUserID(c), in.ThemePreference); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "theme preference updated"})
}

// Delete godoc
// @Summary      Eliminar cuenta
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeleteAccountRequest  true  "Contraseña"
// @Success      200   {object}  dto.MessageResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/delete [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	var in dto.DeleteAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.DeleteAccount(c.UserContext(), GetUserID(c), in.Password); err != nil {
		return writeError(c, h.log, err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Success: true, Message: "account deleted"})
}

func (h *UserHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    token,
		Path:     "/api/users",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *UserHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/api/users",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
