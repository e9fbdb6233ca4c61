package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. Stock nunca es negativo (CHECK en la tabla).
type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	Price       decimal.Decimal // NUMERIC(12,2)
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockSnapshot lectura de precio y stock usada por el registro de ventas.
type StockSnapshot struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}
