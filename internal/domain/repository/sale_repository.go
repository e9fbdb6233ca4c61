package repository

import (
	"context"

	"github.com/sjpos/pos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	// Create inserta la cabecera y completa sale.CreatedAt con el valor de la DB.
	// Devuelve domain.ErrPublicIDTaken si el public_id ya existe.
	Create(ctx context.Context, sale *entity.Sale) error
	// CreateItems inserta todas las líneas en un solo viaje a la DB.
	CreateItems(ctx context.Context, items []entity.SaleItem) error
	// GetByPublicIDAndUser devuelve nil, nil si no existe o pertenece a otro usuario.
	GetByPublicIDAndUser(ctx context.Context, publicID, userID string) (*entity.Sale, error)
	GetItems(ctx context.Context, saleID string) ([]entity.SaleItem, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Sale, error)
}
