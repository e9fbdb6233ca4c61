package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sjpos/pos-api/internal/domain/entity"
)

// ProductPatch actualización parcial: cada campo no nil se asigna, el resto se conserva.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *string
	ImageURL    *string
}

// Empty indica si el patch no modifica nada.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Stock == nil && p.CategoryID == nil && p.ImageURL == nil
}

// ProductRepository define el puerto de persistencia del catálogo de productos (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, categoryID string, limit, offset int) ([]*entity.Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*entity.Product, error)
}

// StockLedger acceso al stock usado por el registro de ventas (siempre dentro de una tx).
type StockLedger interface {
	// FindStock devuelve precio y stock de los ids encontrados; los ausentes simplemente no aparecen.
	FindStock(ctx context.Context, ids []string) ([]entity.StockSnapshot, error)
	// DecrementStock descuenta quantity solo si stock >= quantity (UPDATE condicional atómico).
	// Devuelve domain.ErrStockConflict si no afectó ninguna fila.
	DecrementStock(ctx context.Context, productID string, quantity int) error
}
