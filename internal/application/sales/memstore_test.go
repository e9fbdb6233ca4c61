package sales_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

// memState estado de la "base de datos" en memoria.
type memState struct {
	products map[string]entity.StockSnapshot
	sales    map[string]entity.Sale // por ID
	items    map[string][]entity.SaleItem
}

func (s *memState) clone() *memState {
	c := &memState{
		products: make(map[string]entity.StockSnapshot, len(s.products)),
		sales:    make(map[string]entity.Sale, len(s.sales)),
		items:    make(map[string][]entity.SaleItem, len(s.items)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.SaleItem(nil), v...)
	}
	return c
}

// memStore implementa SaleTxRunner: cada RunSale trabaja sobre una copia y solo
// la publica si fn termina sin error (commit); si no, la descarta (rollback).
type memStore struct {
	mu    sync.Mutex
	state *memState
	runs  int

	// staleFind altera los snapshots leídos (simula una lectura desactualizada).
	staleFind func([]entity.StockSnapshot)
}

func newMemStore(products ...entity.StockSnapshot) *memStore {
	st := &memState{
		products: map[string]entity.StockSnapshot{},
		sales:    map[string]entity.Sale{},
		items:    map[string][]entity.SaleItem{},
	}
	for _, p := range products {
		st.products[p.ID] = p
	}
	return &memStore{state: st}
}

func (m *memStore) RunSale(ctx context.Context, fn func(repository.StockLedger, repository.SaleRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	tx := &memTx{st: m.state.clone(), staleFind: m.staleFind}
	if err := fn(tx, tx); err != nil {
		return err
	}
	m.state = tx.st
	return nil
}

func (m *memStore) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.products[id].Stock
}

func (m *memStore) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.sales)
}

func (m *memStore) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// reader repositorio de solo lectura sobre el estado confirmado.
func (m *memStore) reader() repository.SaleRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memTx{st: m.state.clone()}
}

// seedSale inserta una venta ya confirmada.
func (m *memStore) seedSale(s entity.Sale, items ...entity.SaleItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.sales[s.ID] = s
	m.state.items[s.ID] = items
}

// memTx implementa StockLedger y SaleRepository sobre un memState.
type memTx struct {
	st        *memState
	staleFind func([]entity.StockSnapshot)
}

func (t *memTx) FindStock(_ context.Context, ids []string) ([]entity.StockSnapshot, error) {
	var out []entity.StockSnapshot
	for _, id := range ids {
		if p, ok := t.st.products[id]; ok {
			out = append(out, p)
		}
	}
	if t.staleFind != nil {
		t.staleFind(out)
	}
	return out, nil
}

func (t *memTx) DecrementStock(_ context.Context, id string, qty int) error {
	p, ok := t.st.products[id]
	if !ok || p.Stock < qty {
		return domain.ErrStockConflict
	}
	p.Stock -= qty
	t.st.products[id] = p
	return nil
}

func (t *memTx) Create(_ context.Context, s *entity.Sale) error {
	for _, existing := range t.st.sales {
		if existing.PublicID == s.PublicID {
			return domain.ErrPublicIDTaken
		}
	}
	s.CreatedAt = time.Now().UTC()
	t.st.sales[s.ID] = *s
	return nil
}

func (t *memTx) CreateItems(_ context.Context, items []entity.SaleItem) error {
	for _, it := range items {
		t.st.items[it.SaleID] = append(t.st.items[it.SaleID], it)
	}
	return nil
}

func (t *memTx) GetByPublicIDAndUser(_ context.Context, publicID, userID string) (*entity.Sale, error) {
	for _, s := range t.st.sales {
		if s.PublicID == publicID && s.UserID == userID {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (t *memTx) GetItems(_ context.Context, saleID string) ([]entity.SaleItem, error) {
	return append([]entity.SaleItem(nil), t.st.items[saleID]...), nil
}

func (t *memTx) ListByUser(_ context.Context, userID string, limit, offset int) ([]*entity.Sale, error) {
	var list []*entity.Sale
	for _, s := range t.st.sales {
		if s.UserID == userID {
			out := s
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return []*entity.Sale{}, nil
	}
	list = list[offset:]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// seqIDs generador de public_id con una secuencia fija (luego repite el último).
type seqIDs struct {
	mu  sync.Mutex
	ids []string
	i   int
}

func (g *seqIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.ids[g.i]
	if g.i < len(g.ids)-1 {
		g.i++
	}
	return id
}
