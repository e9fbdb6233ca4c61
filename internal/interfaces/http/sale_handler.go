package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/application/sales"
	"github.com/sjpos/pos-api/internal/domain"
)

// SaleHandler registro de ventas y lectura de tickets (protegido).
type SaleHandler struct {
	create   *sales.CreateSaleUseCase
	receipts *sales.ReceiptUseCase
	log      zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(create *sales.CreateSaleUseCase, receipts *sales.ReceiptUseCase, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{create: create, receipts: receipts, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock y guarda cabecera y líneas en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Medio de pago y líneas"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return writeError(c, h.log, domain.ErrUnauthorized)
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	receipt, err := h.create.CreateSale(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleResponse{
		Success: true,
		Message: "sale recorded",
		Sale:    receipt,
	})
}

// Get godoc
// @Summary      Obtener ticket de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        public_id  path  string  true  "ID público (SJPOS-2026-123456)"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{public_id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	receipt, err := h.receipts.GetReceipt(c.UserContext(), GetUserID(c), c.Params("public_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SaleResponse{Success: true, Sale: receipt})
}

// PDF godoc
// @Summary      Descargar ticket en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        public_id  path  string  true  "ID público"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{public_id}/pdf [get]
func (h *SaleHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.receipts.DownloadReceiptPDF(c.UserContext(), GetUserID(c), c.Params("public_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(data)
}

// List godoc
// @Summary      Historial de ventas del usuario
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.receipts.ListSales(c.UserContext(), GetUserID(c), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
