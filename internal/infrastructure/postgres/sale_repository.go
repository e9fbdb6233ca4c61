package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementa SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el repositorio de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera. created_at lo fija la DB y se devuelve en sale.CreatedAt.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, public_id, user_id, total, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		sale.ID, sale.PublicID, sale.UserID, sale.Total, string(sale.PaymentMethod),
	).Scan(&sale.CreatedAt)
	if err != nil {
		code, constraint := pgCode(err)
		if code == codeUniqueViolation && constraint == constraintSalePublicID {
			return domain.ErrPublicIDTaken
		}
		if code == codeForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItems inserta todas las líneas en un único batch (un viaje de red).
func (r *SaleRepo) CreateItems(ctx context.Context, items []entity.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `
		INSERT INTO sale_items (sale_id, product_id, product_name, product_price, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(query, it.SaleID, it.ProductID, it.ProductName, it.ProductPrice, it.Quantity, it.Price)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return br.Close()
}

// GetByPublicIDAndUser busca la venta del usuario. Devuelve nil, nil si no existe o es de otro usuario.
func (r *SaleRepo) GetByPublicIDAndUser(ctx context.Context, publicID, userID string) (*entity.Sale, error) {
	query := `
		SELECT id, public_id, user_id, total, payment_method, created_at
		FROM sales WHERE public_id = $1 AND user_id = $2`
	s, err := scanSale(r.q.QueryRow(ctx, query, publicID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetItems devuelve las líneas de una venta ordenadas por nombre de producto.
func (r *SaleRepo) GetItems(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	query := `
		SELECT sale_id, product_id, product_name, product_price, quantity, price
		FROM sale_items WHERE sale_id = $1
		ORDER BY product_name ASC`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.SaleID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByUser lista las ventas del usuario, más recientes primero.
func (r *SaleRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT id, public_id, user_id, total, payment_method, created_at
		FROM sales WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Sale, 0, limit)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var method string
	if err := row.Scan(&s.ID, &s.PublicID, &s.UserID, &s.Total, &method, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.PaymentMethod = entity.PaymentMethod(method)
	return &s, nil
}
