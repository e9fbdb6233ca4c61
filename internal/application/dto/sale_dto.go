package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea solicitada: producto y cantidad.
type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateSaleRequest cuerpo de POST /api/sales.
type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method"`
	Items         []SaleItemRequest `json:"items"`
}

// SaleItemResponse línea del ticket con el snapshot de nombre y precio.
type SaleItemResponse struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

// SaleReceipt ticket de una venta registrada.
type SaleReceipt struct {
	ID            string             `json:"id"`
	PublicID      string             `json:"public_id"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SaleResponse envoltorio de una venta.
type SaleResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Sale    *SaleReceipt `json:"sale"`
}

// SaleSummary cabecera de venta para el historial del cajero.
type SaleSummary struct {
	ID            string          `json:"id"`
	PublicID      string          `json:"public_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleListResponse historial paginado.
type SaleListResponse struct {
	Success bool          `json:"success"`
	Sales   []SaleSummary `json:"sales"`
	Page    PageResponse  `json:"page"`
}
