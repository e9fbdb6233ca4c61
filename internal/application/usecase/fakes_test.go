package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

// memCatalog implementa CategoryRepository y ProductRepository en memoria,
// con las mismas restricciones que la tabla (nombre único, FK de categoría).
type memCatalog struct {
	mu         sync.Mutex
	categories map[string]*entity.Category
	products   map[string]*entity.Product
}

func newMemCatalog() *memCatalog {
	return &memCatalog{categories: map[string]*entity.Category{}, products: map[string]*entity.Product{}}
}

type memCategories struct{ *memCatalog }

type memProducts struct{ *memCatalog }

func (m memCategories) Create(_ context.Context, c *entity.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.categories {
		if strings.EqualFold(other.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m memCategories) GetByID(_ context.Context, id string) (*entity.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m memCategories) List(_ context.Context) ([]*entity.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Category, 0, len(m.categories))
	for _, c := range m.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memCategories) Update(_ context.Context, id string, p repository.CategoryPatch) (*entity.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	if p.Name != nil {
		for oid, other := range m.categories {
			if oid != id && strings.EqualFold(other.Name, *p.Name) {
				return nil, domain.ErrDuplicate
			}
		}
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	cp := *c
	return &cp, nil
}

func (m memCategories) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range m.products {
		if p.CategoryID == id {
			return domain.ErrConflict
		}
	}
	delete(m.categories, id)
	return nil
}

func (m memProducts) Create(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[p.CategoryID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m memProducts) List(_ context.Context, categoryID string, limit, offset int) ([]*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Product
	for _, p := range m.products {
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memProducts) Update(_ context.Context, id string, patch repository.ProductPatch) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	if patch.CategoryID != nil {
		if _, ok := m.categories[*patch.CategoryID]; !ok {
			return nil, domain.ErrNotFound
		}
		p.CategoryID = *patch.CategoryID
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	cp := *p
	return &cp, nil
}

// memCashiers cubre solo la parte del repositorio de usuarios que usa el panel admin.
type memCashiers struct {
	repository.UserRepository
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemCashiers(users ...*entity.User) *memCashiers {
	m := &memCashiers{users: map[string]*entity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memCashiers) ListCashiers(_ context.Context, f repository.CashierFilter) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.User
	for _, u := range m.users {
		if u.Role != entity.RoleCashier {
			continue
		}
		if f.IsApproved != nil && u.IsApproved != *f.IsApproved {
			continue
		}
		hay := strings.ToLower(u.Firstname + " " + u.Lastname + " " + u.Email)
		if f.Search != "" && !strings.Contains(hay, strings.ToLower(f.Search)) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortBy == "lastname" {
			return out[i].Lastname < out[j].Lastname
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memCashiers) GetCashierByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Role != entity.RoleCashier {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memCashiers) ApproveCashier(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Role != entity.RoleCashier {
		return domain.ErrUserNotFound
	}
	u.IsApproved = true
	return nil
}
