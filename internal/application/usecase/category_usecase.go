package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
	"github.com/sjpos/pos-api/pkg/normalize"
)

// ErrCategoryInUse la categoría todavía tiene productos.
var ErrCategoryInUse = domain.WithKind(domain.ErrConflict, "category still has products")

// ErrCategoryExists nombre de categoría repetido.
var ErrCategoryExists = domain.WithKind(domain.ErrDuplicate, "a category with this name already exists")

// CategoryUseCase casos de uso CRUD para categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría con nombre capitalizado y único.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := normalize.Name(in.Name)
	desc := strings.TrimSpace(in.Description)
	verr := &domain.ValidationError{}
	checkCategoryName(verr, name)
	checkCategoryDescription(verr, desc)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: desc,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// GetByID obtiene una categoría. Devuelve nil, nil si no existe.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// List todas las categorías por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Update actualización parcial. Devuelve domain.ErrNotFound si no existe.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	verr := &domain.ValidationError{}
	patch := repository.CategoryPatch{}
	if in.Name != nil {
		name := normalize.Name(*in.Name)
		checkCategoryName(verr, name)
		patch.Name = &name
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		checkCategoryDescription(verr, desc)
		patch.Description = &desc
	}
	if patch.Name == nil && patch.Description == nil {
		verr.Add("body", "no field provided to update")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(c), nil
}

// Delete elimina una categoría sin productos.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	err := uc.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrConflict) {
		return ErrCategoryInUse
	}
	return err
}

func checkCategoryName(verr *domain.ValidationError, name string) {
	if !normalize.LenBetween(name, 2, 20) {
		verr.Add("name", "category name must be between 2 and 20 characters")
	}
}

func checkCategoryDescription(verr *domain.ValidationError, desc string) {
	if !normalize.LenBetween(desc, 2, 100) {
		verr.Add("description", "description must be between 2 and 100 characters")
	}
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
