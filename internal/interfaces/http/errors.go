package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
)

// Códigos de error legibles por máquina del envoltorio de respuesta.
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL"
)

const msgInternal = "internal server error"

// errorStatus clasifica un error de dominio en status HTTP y código.
func errorStatus(err error) (int, string) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr), errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, CodeInsufficientStock
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, CodeForbidden
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, CodeConflict
	}
	return fiber.StatusInternalServerError, CodeInternal
}

// writeError registra el error con el contexto de la petición y responde el envoltorio.
// Los 500 nunca exponen el error interno.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := errorStatus(err)
	resp := dto.ErrorResponse{Success: false, Error: err.Error(), Code: code}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Error = domain.ErrInvalidInput.Error()
		resp.Issues = verr.Issues
	}

	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
		resp.Error = msgInternal
	}
	ev = ev.Err(err).
		Int("status", status).
		Str("method", c.Method()).
		Str("path", c.Path())
	if rid := requestID(c); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	if uid := GetUserID(c); uid != "" {
		ev = ev.Str("user_id", uid)
	}
	if pid := c.Params("public_id"); pid != "" {
		ev = ev.Str("public_id", pid)
	}
	ev.Msg("petición fallida")

	return c.Status(status).JSON(resp)
}

// errorBody respuesta de error sin pasar por el logger (middlewares de auth).
func errorBody(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Success: false, Error: msg, Code: code})
}

// badBody cuerpo JSON ilegible.
func badBody(c *fiber.Ctx) error {
	return errorBody(c, fiber.StatusBadRequest, CodeValidation, "invalid request body")
}

// ErrorHandler responde con el envoltorio estándar los errores que llegan a fiber
// (rutas inexistentes, cuerpo demasiado grande, panics recuperados).
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := CodeInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				code = CodeNotFound
			case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
				code = CodeValidation
			case fiber.StatusTooManyRequests:
				code = "RATE_LIMITED"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			}
			if fe.Code < fiber.StatusInternalServerError {
				return errorBody(c, fe.Code, code, fe.Message)
			}
		}
		return writeError(c, log, err)
	}
}
