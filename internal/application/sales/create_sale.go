package sales

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

// maxPublicIDAttempts intentos de transacción ante colisión de public_id.
const maxPublicIDAttempts = 3

// maxLineQuantity tope de cantidad por producto (columna INTEGER de sale_items).
const maxLineQuantity = math.MaxInt32

// CreateSaleUseCase registra una venta: valida, reserva stock y persiste cabecera y líneas
// en una sola transacción. Ninguna venta parcial llega a la base de datos.
type CreateSaleUseCase struct {
	txRunner SaleTxRunner
	ids      IDGenerator
	log      zerolog.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(txRunner SaleTxRunner, ids IDGenerator, log zerolog.Logger) *CreateSaleUseCase {
	return &CreateSaleUseCase{txRunner: txRunner, ids: ids, log: log}
}

// saleLine producto y cantidad ya validados y agrupados por producto.
type saleLine struct {
	productID string
	quantity  int
}

// CreateSale valida la petición antes de tocar la DB y registra la venta.
// Ids de producto repetidos se agrupan sumando sus cantidades.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleReceipt, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	method, lines, err := validateSale(in)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxPublicIDAttempts; attempt++ {
		var receipt *dto.SaleReceipt
		err := uc.txRunner.RunSale(ctx, func(ledger repository.StockLedger, saleRepo repository.SaleRepository) error {
			r, err := uc.record(ctx, userID, method, lines, ledger, saleRepo)
			if err != nil {
				return err
			}
			receipt = r
			return nil
		})
		if errors.Is(err, domain.ErrPublicIDTaken) {
			uc.log.Warn().Int("attempt", attempt).Str("user_id", userID).Msg("colisión de public_id, reintentando")
			continue
		}
		if err != nil {
			return nil, err
		}
		uc.log.Info().
			Str("public_id", receipt.PublicID).
			Str("user_id", userID).
			Str("total", receipt.Total.StringFixed(2)).
			Int("items", len(receipt.Items)).
			Msg("venta registrada")
		return receipt, nil
	}
	return nil, fmt.Errorf("create sale: public id collided %d times", maxPublicIDAttempts)
}

// record ejecuta el algoritmo de la venta dentro de la transacción abierta.
func (uc *CreateSaleUseCase) record(
	ctx context.Context,
	userID string,
	method entity.PaymentMethod,
	lines []saleLine,
	ledger repository.StockLedger,
	saleRepo repository.SaleRepository,
) (*dto.SaleReceipt, error) {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.productID
	}
	snapshots, err := ledger.FindStock(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, domain.ErrNoMatchingProducts
	}
	if len(snapshots) != len(lines) {
		return nil, domain.ErrProductsMissing
	}
	byID := make(map[string]entity.StockSnapshot, len(snapshots))
	for _, s := range snapshots {
		byID[s.ID] = s
	}

	// Primer producto sin stock suficiente, en el orden de la petición.
	for _, l := range lines {
		s, ok := byID[l.productID]
		if !ok {
			return nil, domain.ErrProductsMissing
		}
		if s.Stock < l.quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   s.ID,
				ProductName: s.Name,
				Available:   s.Stock,
				Requested:   l.quantity,
			}
		}
	}

	sale := &entity.Sale{
		ID:            uuid.NewString(),
		PublicID:      uc.ids.Next(),
		UserID:        userID,
		PaymentMethod: method,
		Total:         decimal.Zero,
	}
	items := make([]entity.SaleItem, 0, len(lines))
	for _, l := range lines {
		s := byID[l.productID]
		price := s.Price.Mul(decimal.NewFromInt(int64(l.quantity)))
		sale.Total = sale.Total.Add(price)
		items = append(items, entity.SaleItem{
			SaleID:       sale.ID,
			ProductID:    s.ID,
			ProductName:  s.Name,
			ProductPrice: s.Price,
			Quantity:     l.quantity,
			Price:        price,
		})
	}

	if err := saleRepo.Create(ctx, sale); err != nil {
		return nil, err
	}
	if err := saleRepo.CreateItems(ctx, items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := ledger.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}
	return toSaleReceipt(sale, items), nil
}

// validateSale comprueba la forma de la petición y agrupa productos repetidos.
func validateSale(in dto.CreateSaleRequest) (entity.PaymentMethod, []saleLine, error) {
	verr := &domain.ValidationError{}
	method := entity.PaymentMethod(in.PaymentMethod)
	if !method.Valid() {
		verr.Add("payment_method", "must be one of cash, card, mobile")
	}
	if len(in.Items) == 0 {
		verr.Add("items", "at least one item is required")
	}

	lines := make([]saleLine, 0, len(in.Items))
	index := make(map[string]int, len(in.Items))
	for i, it := range in.Items {
		prefix := "items." + strconv.Itoa(i)
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			verr.Add(prefix+".product_id", "must be a valid uuid")
		}
		qtyOK := it.Quantity > 0 && it.Quantity <= maxLineQuantity
		switch {
		case it.Quantity <= 0:
			verr.Add(prefix+".quantity", "must be a positive integer")
		case it.Quantity > maxLineQuantity:
			verr.Add(prefix+".quantity", "is too large")
		}
		if err != nil || !qtyOK {
			continue
		}
		key := id.String()
		if j, ok := index[key]; ok {
			// Ambos operandos están acotados a MaxInt32: la resta no desborda.
			if it.Quantity > maxLineQuantity-lines[j].quantity {
				verr.Add(prefix+".quantity", "combined quantity for this product is too large")
				continue
			}
			lines[j].quantity += it.Quantity
			continue
		}
		index[key] = len(lines)
		lines = append(lines, saleLine{productID: key, quantity: it.Quantity})
	}
	if err := verr.OrNil(); err != nil {
		return "", nil, err
	}
	return method, lines, nil
}

func toSaleReceipt(s *entity.Sale, items []entity.SaleItem) *dto.SaleReceipt {
	out := &dto.SaleReceipt{
		ID:            s.ID,
		PublicID:      s.PublicID,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		Items:         make([]dto.SaleItemResponse, 0, len(items)),
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			Price:        it.Price,
		})
	}
	return out
}
