package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de pago de una venta.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

// Valid indica si el medio de pago es uno de los admitidos.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}

// Sale cabecera de una venta. Inmutable una vez registrada.
type Sale struct {
	ID            string // uuid interno
	PublicID      string // PREFIJO-AAAA-NNNNNN, impreso en el ticket
	UserID        string
	PaymentMethod PaymentMethod
	Total         decimal.Decimal
	CreatedAt     time.Time
}

// SaleItem línea de venta con snapshot de nombre y precio al momento de la venta.
type SaleItem struct {
	SaleID       string
	ProductID    string
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
	Price        decimal.Decimal // ProductPrice × Quantity
}
