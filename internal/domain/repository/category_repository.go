package repository

import (
	"context"

	"github.com/sjpos/pos-api/internal/domain/entity"
)

// CategoryPatch actualización parcial de una categoría.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, id string, patch CategoryPatch) (*entity.Category, error)
	// Delete devuelve domain.ErrNotFound si no existía y domain.ErrConflict si aún tiene productos.
	Delete(ctx context.Context, id string) error
}
