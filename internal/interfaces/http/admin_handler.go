package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/application/usecase"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

// AdminHandler gestión de cajeros (solo admin).
type AdminHandler struct {
	uc  *usecase.CashierUseCase
	log zerolog.Logger
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *usecase.CashierUseCase, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, log: log}
}

// ListCashiers godoc
// @Summary      Listar cajeros
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        is_approved  query  bool    false  "Filtrar por aprobación"
// @Param        search       query  string  false  "Nombre, apellido o email"
// @Param        sortBy       query  string  false  "lastname | created_at"
// @Success      200  {object}  dto.CashierListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/cashiers [get]
func (h *AdminHandler) ListCashiers(c *fiber.Ctx) error {
	filter := repository.CashierFilter{
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
	}
	if raw := c.Query("is_approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			verr := &domain.ValidationError{}
			verr.Add("is_approved", "must be true or false")
			return writeError(c, h.log, verr)
		}
		filter.IsApproved = &v
	}
	list, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CashierListResponse{Success: true, Cashiers: list})
}

// GetCashier godoc
// @Summary      Obtener cajero
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cajero"
// @Success      200  {object}  dto.UserEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/cashier/{id} [get]
func (h *AdminHandler) GetCashier(c *fiber.Ctx) error {
	u, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if u == nil {
		return writeError(c, h.log, domain.WithKind(domain.ErrNotFound, "cashier not found"))
	}
	return c.JSON(dto.UserEnvelope{Success: true, User: u})
}

// ApproveCashier godoc
// @Summary      Aprobar cajero
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cajero"
// @Success      200  {object}  dto.UserEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/approve_cashier/{id} [patch]
func (h *AdminHandler) ApproveCashier(c *fiber.Ctx) error {
	u, err := h.uc.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.UserEnvelope{Success: true, Message: "cashier approved", User: u})
}
