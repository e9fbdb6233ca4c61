package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
	"github.com/sjpos/pos-api/pkg/normalize"
)

// ErrCategoryNotFound la categoría indicada no existe.
var ErrCategoryNotFound = domain.WithKind(domain.ErrNotFound, "category not found")

// maxPrice límite de NUMERIC(12,2).
var maxPrice = decimal.New(1, 10)

// ProductUseCase casos de uso CRUD para productos. El stock solo baja por ventas;
// aquí se fija al crear o al reponer.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo}
}

// Create crea un nuevo producto en una categoría existente.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := normalize.Name(in.Name)
	desc := strings.TrimSpace(in.Description)
	verr := &domain.ValidationError{}
	checkProductName(verr, name)
	checkDescription(verr, desc)
	checkPrice(verr, in.Price)
	checkStock(verr, in.Stock)
	checkImageURL(verr, in.ImageURL)
	if _, err := uuid.Parse(in.CategoryID); err != nil {
		verr.Add("category_id", "must be a valid uuid")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if err := uc.ensureCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		CategoryID:  in.CategoryID,
		Name:        name,
		Description: desc,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Devuelve nil, nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil || product == nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos (opcionalmente de una categoría) con paginación.
func (uc *ProductUseCase) List(ctx context.Context, categoryID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			verr := &domain.ValidationError{}
			verr.Add("category_id", "must be a valid uuid")
			return nil, verr
		}
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, categoryID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Success:  true,
		Products: items,
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update actualización parcial. Devuelve domain.ErrNotFound si el producto no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	verr := &domain.ValidationError{}
	patch := repository.ProductPatch{
		Price:      in.Price,
		Stock:      in.Stock,
		CategoryID: in.CategoryID,
		ImageURL:   in.ImageURL,
	}
	if in.Name != nil {
		name := normalize.Name(*in.Name)
		checkProductName(verr, name)
		patch.Name = &name
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		checkDescription(verr, desc)
		patch.Description = &desc
	}
	if in.Price != nil {
		checkPrice(verr, *in.Price)
	}
	if in.Stock != nil {
		checkStock(verr, *in.Stock)
	}
	if in.ImageURL != nil {
		checkImageURL(verr, *in.ImageURL)
	}
	if in.CategoryID != nil {
		if _, err := uuid.Parse(*in.CategoryID); err != nil {
			verr.Add("category_id", "must be a valid uuid")
		}
	}
	if patch.Empty() {
		verr.Add("body", "no field provided to update")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	if in.CategoryID != nil {
		if err := uc.ensureCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	product, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

func (uc *ProductUseCase) ensureCategory(ctx context.Context, id string) error {
	c, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func checkProductName(verr *domain.ValidationError, name string) {
	if !normalize.LenBetween(name, 2, 100) {
		verr.Add("name", "product name must be between 2 and 100 characters")
	}
}

func checkDescription(verr *domain.ValidationError, desc string) {
	if !normalize.LenBetween(desc, 0, 500) {
		verr.Add("description", "description cannot exceed 500 characters")
	}
}

func checkPrice(verr *domain.ValidationError, p decimal.Decimal) {
	switch {
	case !p.IsPositive():
		verr.Add("price", "price must be greater than zero")
	case !p.Equal(p.Round(2)):
		verr.Add("price", "price must have at most 2 decimal places")
	case p.GreaterThanOrEqual(maxPrice):
		verr.Add("price", "price is too large")
	}
}

func checkStock(verr *domain.ValidationError, stock int) {
	switch {
	case stock < 0:
		verr.Add("stock", "stock cannot be negative")
	case stock > math.MaxInt32:
		verr.Add("stock", "stock is too large")
	}
}

func checkImageURL(verr *domain.ValidationError, u string) {
	if u != "" && !normalize.ValidURL(u) {
		verr.Add("image_url", "invalid image URL")
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
